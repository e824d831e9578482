// Package workspace loads an API definition tree into memory.
//
// A definition is a directory holding one root file (api.yml, api.yaml or
// api.cue), any number of declaration files (*.yml, *.yaml, *.cue) in
// nested folders and optional __package__.yml markers. Every document is
// checked against an embedded JSON Schema before it is decoded.
package workspace

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/apigraph/internal/schema"
)

// MarkerFile is the name of a package marker.
const MarkerFile = "__package__.yml"

// RootFiles are the accepted names of the root file, in lookup order.
var RootFiles = []string{"api.yml", "api.yaml", "api.cue"}

var (
	// ErrNoRootFile means the tree has no api.yml.
	ErrNoRootFile = errors.New("no root api file")
	// ErrInvalidDocument means a document failed its structural check.
	ErrInvalidDocument = errors.New("invalid document")
)

// Workspace is a loaded definition.
type Workspace struct {
	Name     string
	RootFile string

	RootAPIFile schema.RootAPIFile
	// DefinitionFiles is keyed by slash-separated path relative to the
	// root, extension included ("commons/money.yml").
	DefinitionFiles map[string]schema.DefinitionFile
	// PackageMarkers is keyed by the directory holding the marker; "" is
	// the root directory.
	PackageMarkers map[string]schema.PackageMarkerFile
}

// DefinitionPaths returns definition file paths in sorted order.
func (w *Workspace) DefinitionPaths() []string {
	return slices.Sorted(maps.Keys(w.DefinitionFiles))
}

// MarkerDirs returns directories holding package markers, sorted.
func (w *Workspace) MarkerDirs() []string {
	return slices.Sorted(maps.Keys(w.PackageMarkers))
}

// LoadError describes a file that could not be loaded.
type LoadError struct {
	File    string
	Line    int
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
