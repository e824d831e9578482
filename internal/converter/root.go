package converter

import (
	"fmt"
	"strings"

	"github.com/roach88/apigraph/internal/filecontext"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/resolver"
	"github.com/roach88/apigraph/internal/schema"
)

// ConvertAPIAuth converts the root auth block. Schemes named in auth are
// looked up in auth-schemes; "bearer" and "basic" need no declaration.
func ConvertAPIAuth(root *schema.RootAPIFile, c *filecontext.Context) (ir.APIAuth, error) {
	out := ir.APIAuth{Requirement: ir.AuthRequirementAll, Schemes: []ir.AuthScheme{}}
	if root.Auth == nil {
		return out, nil
	}
	if root.Auth.Any {
		out.Requirement = ir.AuthRequirementAny
	}
	for _, name := range root.Auth.Schemes {
		decl, ok := root.AuthSchemes.Get(name)
		if !ok {
			switch name {
			case "bearer", "basic":
				decl = schema.AuthSchemeDeclarationSchema{Scheme: name}
			default:
				return ir.APIAuth{}, structural(c.String(), "auth", "unknown auth scheme %q", name)
			}
		}
		scheme, err := convertAuthScheme(name, decl, c)
		if err != nil {
			return ir.APIAuth{}, err
		}
		out.Schemes = append(out.Schemes, scheme)
	}
	return out, nil
}

func convertAuthScheme(name string, decl schema.AuthSchemeDeclarationSchema, c *filecontext.Context) (ir.AuthScheme, error) {
	gen := c.Casing
	or := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	switch {
	case decl.Header != "":
		typ, err := c.ParseTypeReference(or(decl.Type, "string"))
		if err != nil {
			return ir.AuthScheme{}, err
		}
		return ir.AuthScheme{
			Kind: ir.AuthSchemeHeader,
			Header: &ir.HeaderAuthScheme{
				Name:      gen.GenerateNameAndWireValue(or(decl.Name, decl.Header), decl.Header),
				ValueType: typ,
				Prefix:    decl.Prefix,
			},
			Docs: decl.Docs,
		}, nil
	case decl.Scheme == "bearer":
		return ir.AuthScheme{
			Kind:   ir.AuthSchemeBearer,
			Bearer: &ir.BearerAuthScheme{Token: gen.GenerateName(or(decl.Token, "token"))},
			Docs:   decl.Docs,
		}, nil
	case decl.Scheme == "basic":
		return ir.AuthScheme{
			Kind: ir.AuthSchemeBasic,
			Basic: &ir.BasicAuthScheme{
				Username: gen.GenerateName(or(decl.Username, "username")),
				Password: gen.GenerateName(or(decl.Password, "password")),
			},
			Docs: decl.Docs,
		}, nil
	default:
		return ir.AuthScheme{}, structural(c.String(), "auth-schemes."+name, "scheme must be bearer, basic or a header")
	}
}

// ConvertHeaders converts a header block keyed by wire name.
func ConvertHeaders(headers schema.OrderedMap[schema.TypeReferenceSchema], c *filecontext.Context) ([]ir.HTTPHeader, error) {
	out := make([]ir.HTTPHeader, 0, headers.Len())
	for wire, h := range headers.All() {
		typ, err := c.ParseTypeReference(h.Type)
		if err != nil {
			return nil, fmt.Errorf("header %s: %w", wire, err)
		}
		out = append(out, ir.HTTPHeader{Name: nameAndWire(c, h.Name, wire), ValueType: typ, Docs: h.Docs})
	}
	return out, nil
}

// ConvertEnvironments converts the environments block. It returns nil when
// no environments are declared.
func ConvertEnvironments(root *schema.RootAPIFile, c *filecontext.Context) (*ir.EnvironmentsConfig, error) {
	if root.Environments.Len() == 0 {
		if root.DefaultEnvironment != "" {
			return nil, structural(c.String(), "default-environment", "%q is not a declared environment", root.DefaultEnvironment)
		}
		return nil, nil
	}
	out := &ir.EnvironmentsConfig{Environments: make([]ir.Environment, 0, root.Environments.Len())}
	for name, env := range root.Environments.All() {
		out.Environments = append(out.Environments, ir.Environment{
			ID:   ir.EnvironmentID(name),
			Name: c.Casing.GenerateName(name),
			URL:  env.URL,
			Docs: env.Docs,
		})
	}
	if root.DefaultEnvironment != "" {
		if !root.Environments.Has(root.DefaultEnvironment) {
			return nil, structural(c.String(), "default-environment", "%q is not a declared environment", root.DefaultEnvironment)
		}
		id := ir.EnvironmentID(root.DefaultEnvironment)
		out.DefaultEnvironment = &id
	}
	return out, nil
}

// ConvertErrorDiscriminationStrategy converts error-discrimination. It
// returns nil when the block is absent.
func ConvertErrorDiscriminationStrategy(root *schema.RootAPIFile, c *filecontext.Context) (*ir.ErrorDiscriminationStrategy, error) {
	d := root.ErrorDiscrimination
	if d == nil {
		return nil, nil
	}
	switch d.Strategy {
	case schema.StrategyStatusCode:
		return &ir.ErrorDiscriminationStrategy{Kind: ir.ErrorDiscriminationStatusCode}, nil
	case schema.StrategyProperty:
		if d.PropertyName == "" || d.ContentProperty == "" {
			return nil, structural(c.String(), "error-discrimination", "property strategy needs property-name and content-property")
		}
		return &ir.ErrorDiscriminationStrategy{
			Kind: ir.ErrorDiscriminationByProperty,
			Property: &ir.ErrorDiscriminationProperty{
				Discriminant:    c.Casing.GenerateNameAndWireValue(d.PropertyName, d.PropertyName),
				ContentProperty: c.Casing.GenerateNameAndWireValue(d.ContentProperty, d.ContentProperty),
			},
		}, nil
	default:
		return nil, structural(c.String(), "error-discrimination", "unknown strategy %q", d.Strategy)
	}
}

// ConvertPathParameters converts declared path parameters. A parameter may
// reference a root variable ("$tenant" or {variable: $tenant}); it then
// takes the variable's type.
func ConvertPathParameters(params schema.OrderedMap[schema.TypeReferenceSchema], location ir.PathParameterLocation, c *filecontext.Context, r *resolver.Resolvers) ([]ir.PathParameter, error) {
	out := make([]ir.PathParameter, 0, params.Len())
	for name, p := range params.All() {
		param := ir.PathParameter{Name: c.Casing.GenerateName(name), Location: location, Docs: p.Docs}
		variable := p.Variable
		if variable == "" && strings.HasPrefix(p.Type, resolver.VariablePrefix) {
			variable = p.Type
		}
		typ := p.Type
		if variable != "" {
			v, err := r.Variables.ResolveVariable(variable, c)
			if err != nil {
				return nil, err
			}
			id := v.ID
			param.Variable = &id
			typ = v.Declaration.Type
		}
		ref, err := c.ParseTypeReference(typ)
		if err != nil {
			return nil, fmt.Errorf("path parameter %s: %w", name, err)
		}
		param.ValueType = ref
		out = append(out, param)
	}
	return out, nil
}

// ConvertVariables converts the root variables block.
func ConvertVariables(root *schema.RootAPIFile, c *filecontext.Context) ([]ir.VariableDeclaration, error) {
	out := make([]ir.VariableDeclaration, 0, root.Variables.Len())
	for name, v := range root.Variables.All() {
		ref, err := c.ParseTypeReference(v.Type)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		out = append(out, ir.VariableDeclaration{
			ID:   ir.VariableID(name),
			Name: c.Casing.GenerateName(name),
			Type: ref,
			Docs: v.Docs,
		})
	}
	return out, nil
}
