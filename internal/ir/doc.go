// Package ir defines the intermediate representation produced by the
// apigraph compiler and consumed by every target-language generator.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal, which keeps IR
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Identifiers are derived from declaration names only, never counters,
//     so two builds of the same definition produce byte-identical ids
//   - Polymorphic nodes are tagged structs: a Kind discriminant plus one
//     non-nil payload pointer per variant
//   - All JSON tags use snake_case and the document shape is identical for
//     filtered and unfiltered builds
package ir
