package converter

import (
	"fmt"

	"github.com/roach88/apigraph/internal/filecontext"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/resolver"
	"github.com/roach88/apigraph/internal/schema"
)

// ConvertedError is a converted error declaration and its audience tag.
type ConvertedError struct {
	Declaration ir.ErrorDeclaration
	Audiences   []string
}

// ConvertErrorDeclaration converts the error declared as name in c.
func ConvertErrorDeclaration(name string, decl schema.ErrorDeclarationSchema, c *filecontext.Context, r *resolver.Resolvers) (ConvertedError, error) {
	self, err := r.Errors.ResolveError(name, c)
	if err != nil {
		return ConvertedError{}, err
	}
	refs := make(typeSet)
	out := ir.ErrorDeclaration{
		Name:              self.Name,
		DiscriminantValue: c.Casing.GenerateNameAndWireValue(name, name),
		Docs:              decl.Docs,
		StatusCode:        decl.StatusCode,
	}
	if decl.Type != "" {
		ref, err := c.ParseTypeReference(decl.Type)
		if err != nil {
			return ConvertedError{}, fmt.Errorf("error %s: %w", name, err)
		}
		refs.addRef(ref)
		out.Type = &ref
	}
	out.ReferencedTypes = refs.sorted()
	return ConvertedError{Declaration: out, Audiences: decl.Audiences}, nil
}
