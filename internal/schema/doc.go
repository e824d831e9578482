// Package schema holds the raw, per-file declaration trees of an API
// definition as they are written in YAML (or CUE re-encoded to YAML).
//
// Several keys accept more than one form, e.g. a type declaration may be a
// bare type expression or an object with properties. Each such key decodes
// through UnmarshalYAML into a struct with an explicit Kind, so consumers
// switch on Kind instead of sniffing which fields happen to be set.
//
// Declaration maps are OrderedMap values: source order is preserved because
// endpoint and property order is part of the generated SDK surface.
package schema
