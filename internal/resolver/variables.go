package resolver

import (
	"fmt"
	"strings"

	"github.com/roach88/apigraph/internal/casing"
	"github.com/roach88/apigraph/internal/filecontext"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/schema"
)

// VariablePrefix starts every variable reference.
const VariablePrefix = "$"

// ResolvedVariable is a root-level variable found by reference.
type ResolvedVariable struct {
	ID          ir.VariableID
	Name        ir.Name
	Declaration schema.TypeReferenceSchema
}

// VariableResolver resolves "$name" references against the root file's
// variables. The namespace is flat.
type VariableResolver struct {
	root *schema.RootAPIFile
	gen  *casing.Generator
}

// ResolveVariable resolves raw written in from.
func (r *VariableResolver) ResolveVariable(raw string, from *filecontext.Context) (ResolvedVariable, error) {
	name, ok := strings.CutPrefix(raw, VariablePrefix)
	if !ok {
		return ResolvedVariable{}, &ResolutionError{
			Symbol:    "variable",
			Reference: raw,
			File:      from.String(),
			Err:       ErrUnknownSymbol,
			Cause:     fmt.Errorf("variable references start with %q", VariablePrefix),
		}
	}
	decl, ok := r.root.Variables.Get(name)
	if !ok {
		return ResolvedVariable{}, &ResolutionError{Symbol: "variable", Reference: raw, File: from.String(), Err: ErrUnknownSymbol}
	}
	return ResolvedVariable{ID: ir.VariableID(name), Name: r.gen.GenerateName(name), Declaration: decl}, nil
}
