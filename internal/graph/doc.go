// Package graph holds the reference graph between declarations and the
// audience projection derived from it.
//
// A Graph is written while declaration files are merged and read once
// the merge is over. The first read (Build, HasNoAudiences,
// TypesReferencedByService, Validate or Snapshot) freezes it; writes
// after that fail with ErrFrozen. A Graph is not safe for concurrent
// writers.
//
// Audience filtering is a closure: an endpoint whose effective audience
// intersects the filter is a seed, as is any type or error whose own
// tag intersects it. Everything a seed references is then included
// regardless of its own tag. Untagged endpoints are seeds under every
// filter. Untagged types and errors are only included when referenced.
package graph
