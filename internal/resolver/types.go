package resolver

import (
	"github.com/roach88/apigraph/internal/filecontext"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/schema"
)

// ResolvedType is a type declaration found by name.
type ResolvedType struct {
	Name        ir.DeclaredTypeName
	File        string
	Declaration schema.TypeDeclarationSchema
	// Context is the declaring file's context; references inside the
	// declaration resolve against it.
	Context *filecontext.Context
}

// TypeResolver resolves type names.
type TypeResolver struct {
	index *Index
}

func hasType(def *schema.DefinitionFile, name string) bool {
	return def.Types.Has(name)
}

// ResolveType resolves raw ("Name" or "alias.Name") written in from.
func (r *TypeResolver) ResolveType(raw string, from *filecontext.Context) (ResolvedType, error) {
	ref, file, err := r.index.resolveRaw("type", raw, from, hasType)
	if err != nil {
		return ResolvedType{}, err
	}
	return r.declared(file, ref.Name), nil
}

// ResolveTypeName implements filecontext.TypeNames.
func (r *TypeResolver) ResolveTypeName(ref filecontext.Reference, from *filecontext.Context) (ir.DeclaredTypeName, error) {
	file, err := r.index.locate("type", ref, from, hasType)
	if err != nil {
		return ir.DeclaredTypeName{}, err
	}
	return r.declared(file, ref.Name).Name, nil
}

// Declaration returns the declaration behind id.
func (r *TypeResolver) Declaration(id ir.TypeID) (ResolvedType, bool) {
	key, ok := r.index.typesByID[id]
	if !ok {
		return ResolvedType{}, false
	}
	return r.declared(key.file, key.name), true
}

func (r *TypeResolver) declared(file, name string) ResolvedType {
	c := r.index.contexts[file]
	def := r.index.ws.DefinitionFiles[file]
	decl, _ := def.Types.Get(name)
	return ResolvedType{
		Name: ir.DeclaredTypeName{
			TypeID:   ir.NewTypeID(c.Filepath, name),
			Filepath: c.Filepath,
			Name:     r.index.gen.GenerateName(name),
		},
		File:        file,
		Declaration: decl,
		Context:     c,
	}
}
