// Package resolver answers symbol queries over a fully loaded workspace:
// type, error and variable names, and the validation of examples against
// types. Every resolver is read-only and safe for concurrent use.
package resolver

import (
	"errors"
	"slices"
	"strings"

	"github.com/roach88/apigraph/internal/casing"
	"github.com/roach88/apigraph/internal/filecontext"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/schema"
	"github.com/roach88/apigraph/internal/workspace"
)

// Resolvers bundles the resolvers of one workspace.
type Resolvers struct {
	Index     *Index
	Types     *TypeResolver
	Errors    *ErrorResolver
	Variables *VariableResolver
	Examples  *ExampleResolver
}

// New indexes ws and wires every file context to the type resolver.
func New(ws *workspace.Workspace, gen *casing.Generator) *Resolvers {
	idx := newIndex(ws, gen)
	types := &TypeResolver{index: idx}
	for _, c := range idx.contexts {
		c.Types = types
	}
	idx.root.Types = types
	return &Resolvers{
		Index:     idx,
		Types:     types,
		Errors:    &ErrorResolver{index: idx},
		Variables: &VariableResolver{root: &ws.RootAPIFile, gen: gen},
		Examples:  &ExampleResolver{types: types},
	}
}

// Index holds the per-file contexts of a workspace.
type Index struct {
	ws        *workspace.Workspace
	gen       *casing.Generator
	root      *filecontext.Context
	contexts  map[string]*filecontext.Context
	rootLevel []string
	typesByID map[ir.TypeID]declKey
}

type declKey struct {
	file string
	name string
}

func newIndex(ws *workspace.Workspace, gen *casing.Generator) *Index {
	paths := ws.DefinitionPaths()
	idx := &Index{
		ws:        ws,
		gen:       gen,
		root:      filecontext.NewRoot(&ws.RootAPIFile, paths, gen),
		contexts:  make(map[string]*filecontext.Context, len(paths)),
		typesByID: make(map[ir.TypeID]declKey),
	}
	for _, p := range paths {
		def := ws.DefinitionFiles[p]
		c := filecontext.New(p, &def, &ws.RootAPIFile, gen)
		idx.contexts[p] = c
		if !strings.Contains(p, "/") {
			idx.rootLevel = append(idx.rootLevel, p)
		}
		for name := range def.Types.All() {
			idx.typesByID[ir.NewTypeID(c.Filepath, name)] = declKey{file: p, name: name}
		}
	}
	return idx
}

// Root returns the root api file context.
func (x *Index) Root() *filecontext.Context {
	return x.root
}

// Context returns the context of the definition file at p.
func (x *Index) Context(p string) (*filecontext.Context, bool) {
	c, ok := x.contexts[p]
	return c, ok
}

// Paths returns definition paths in sorted order.
func (x *Index) Paths() []string {
	return x.ws.DefinitionPaths()
}

// Workspace returns the indexed workspace.
func (x *Index) Workspace() *workspace.Workspace {
	return x.ws
}

// locate finds the file declaring ref. has reports whether a definition
// file declares the name.
func (x *Index) locate(symbol string, ref filecontext.Reference, from *filecontext.Context, has func(*schema.DefinitionFile, string) bool) (string, error) {
	fail := func(err error, candidates ...string) error {
		return &ResolutionError{Symbol: symbol, Reference: ref.Raw, File: from.String(), Candidates: candidates, Err: err}
	}
	if ref.Qualified {
		def, ok := x.ws.DefinitionFiles[ref.File]
		if !ok {
			return "", fail(ErrBrokenImport)
		}
		if !has(&def, ref.Name) {
			return "", fail(ErrUnknownSymbol)
		}
		return ref.File, nil
	}
	if !from.IsRoot() {
		if def, ok := x.ws.DefinitionFiles[from.Path]; ok && has(&def, ref.Name) {
			return from.Path, nil
		}
	}
	var candidates []string
	for _, p := range x.rootLevel {
		if p == from.Path {
			continue
		}
		def := x.ws.DefinitionFiles[p]
		if has(&def, ref.Name) {
			candidates = append(candidates, p)
		}
	}
	switch len(candidates) {
	case 0:
		return "", fail(ErrUnknownSymbol)
	case 1:
		return candidates[0], nil
	default:
		slices.Sort(candidates)
		return "", fail(ErrAmbiguousReference, candidates...)
	}
}

// resolveRaw parses raw against from's imports and locates its file.
func (x *Index) resolveRaw(symbol, raw string, from *filecontext.Context, has func(*schema.DefinitionFile, string) bool) (filecontext.Reference, string, error) {
	ref, err := from.Resolve(raw)
	if err != nil {
		if errors.Is(err, filecontext.ErrUnknownAlias) {
			return ref, "", &ResolutionError{Symbol: symbol, Reference: raw, File: from.String(), Err: ErrUnknownSymbol, Cause: err}
		}
		return ref, "", err
	}
	file, err := x.locate(symbol, ref, from, has)
	return ref, file, err
}
