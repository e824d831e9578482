// Package converter turns raw declarations into IR nodes.
//
// Converters are pure: they read the workspace only through a file context
// and the resolvers, and return the node together with every type it
// references. The same input always yields the same ids and edges.
package converter
