package resolver

import (
	"github.com/roach88/apigraph/internal/filecontext"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/schema"
)

// ResolvedError is an error declaration found by name.
type ResolvedError struct {
	Name        ir.DeclaredErrorName
	File        string
	Declaration schema.ErrorDeclarationSchema
	Context     *filecontext.Context
}

// ErrorResolver resolves error names.
type ErrorResolver struct {
	index *Index
}

func hasError(def *schema.DefinitionFile, name string) bool {
	return def.Errors.Has(name)
}

// ResolveError resolves raw written in from.
func (r *ErrorResolver) ResolveError(raw string, from *filecontext.Context) (ResolvedError, error) {
	ref, file, err := r.index.resolveRaw("error", raw, from, hasError)
	if err != nil {
		return ResolvedError{}, err
	}
	c := r.index.contexts[file]
	def := r.index.ws.DefinitionFiles[file]
	decl, _ := def.Errors.Get(ref.Name)
	return ResolvedError{
		Name: ir.DeclaredErrorName{
			ErrorID:  ir.NewErrorID(c.Filepath, ref.Name),
			Filepath: c.Filepath,
			Name:     r.index.gen.GenerateName(ref.Name),
		},
		File:        file,
		Declaration: decl,
		Context:     c,
	}, nil
}

// ResolveGlobalErrors resolves the root file's errors list in order.
func (r *ErrorResolver) ResolveGlobalErrors() ([]ResolvedError, error) {
	root := r.index.root
	out := make([]ResolvedError, 0, len(root.Root.Errors))
	for _, raw := range root.Root.Errors {
		resolved, err := r.ResolveError(raw, root)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}
