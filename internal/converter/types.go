package converter

import (
	"errors"
	"fmt"

	"github.com/roach88/apigraph/internal/filecontext"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/resolver"
	"github.com/roach88/apigraph/internal/schema"
)

// ConvertedType is a converted type declaration and its audience tag.
type ConvertedType struct {
	Declaration ir.TypeDeclaration
	Audiences   []string
	Warnings    []Warning
}

// ConvertTypeDeclaration converts the type declared as name in c.
func ConvertTypeDeclaration(name string, decl schema.TypeDeclarationSchema, c *filecontext.Context, r *resolver.Resolvers) (ConvertedType, error) {
	self, err := r.Types.ResolveType(name, c)
	if err != nil {
		return ConvertedType{}, err
	}
	refs := make(typeSet)
	shape, err := convertShape(decl, c, r, refs)
	if err != nil {
		return ConvertedType{}, fmt.Errorf("type %s: %w", name, err)
	}

	out := ConvertedType{
		Declaration: ir.TypeDeclaration{
			Name:            self.Name,
			Shape:           shape,
			Docs:            decl.Docs,
			ReferencedTypes: refs.sorted(),
			Examples:        []ir.ExampleType{},
		},
		Audiences: decl.Audiences,
	}
	for i, ex := range decl.Examples {
		example, err := convertExample(ex, self, r)
		if err != nil {
			if !errors.Is(err, resolver.ErrExampleMismatch) {
				return ConvertedType{}, fmt.Errorf("type %s example %d: %w", name, i, err)
			}
			out.Warnings = append(out.Warnings, Warning{
				File:        c.String(),
				Declaration: name,
				Message:     fmt.Sprintf("dropped example %d: %v", i, err),
			})
			continue
		}
		out.Declaration.Examples = append(out.Declaration.Examples, example)
	}
	return out, nil
}

func convertExample(ex schema.ExampleSchema, self resolver.ResolvedType, r *resolver.Resolvers) (ir.ExampleType, error) {
	node, err := r.Examples.ResolveExample(ex.Value, self)
	if err != nil {
		return ir.ExampleType{}, err
	}
	value, err := ir.ValueFrom(ex.Value)
	if err != nil {
		return ir.ExampleType{}, err
	}
	raw, err := ir.MarshalCanonical(value)
	if err != nil {
		return ir.ExampleType{}, err
	}
	id, err := ir.ExampleID(self.Name.TypeID, value)
	if err != nil {
		return ir.ExampleType{}, err
	}
	return ir.ExampleType{ID: id, Name: ex.Name, Docs: ex.Docs, JSONExample: raw, Shape: node}, nil
}

func convertShape(decl schema.TypeDeclarationSchema, c *filecontext.Context, r *resolver.Resolvers, refs typeSet) (ir.TypeShape, error) {
	switch decl.Kind {
	case schema.DeclarationAlias:
		target, err := c.ParseTypeReference(decl.AliasOf)
		if err != nil {
			return ir.TypeShape{}, err
		}
		refs.addRef(target)
		return ir.TypeShape{Kind: ir.ShapeAlias, Alias: &ir.AliasTypeDeclaration{AliasOf: target}}, nil

	case schema.DeclarationObject:
		extends, err := convertExtends(decl.Extends, c, r, refs)
		if err != nil {
			return ir.TypeShape{}, err
		}
		props, err := convertProperties(decl.Properties, c, refs)
		if err != nil {
			return ir.TypeShape{}, err
		}
		return ir.TypeShape{Kind: ir.ShapeObject, Object: &ir.ObjectTypeDeclaration{Extends: extends, Properties: props}}, nil

	case schema.DeclarationEnum:
		values := make([]ir.EnumValue, 0, len(decl.Values))
		for _, v := range decl.Values {
			name := v.Name
			if name == "" {
				name = v.Value
			}
			values = append(values, ir.EnumValue{Name: c.Casing.GenerateNameAndWireValue(name, v.Value), Docs: v.Docs})
		}
		return ir.TypeShape{Kind: ir.ShapeEnum, Enum: &ir.EnumTypeDeclaration{Values: values}}, nil

	case schema.DeclarationUnion:
		return convertUnion(decl, c, r, refs)

	case schema.DeclarationUndiscriminatedUnion:
		members := make([]ir.UndiscriminatedUnionMember, 0, len(decl.Members))
		for _, m := range decl.Members {
			ref, err := c.ParseTypeReference(m.Type)
			if err != nil {
				return ir.TypeShape{}, err
			}
			refs.addRef(ref)
			members = append(members, ir.UndiscriminatedUnionMember{Type: ref, Docs: m.Docs})
		}
		return ir.TypeShape{Kind: ir.ShapeUndiscriminatedUnion, UndiscriminatedUnion: &ir.UndiscriminatedUnionTypeDeclaration{Members: members}}, nil

	default:
		return ir.TypeShape{}, fmt.Errorf("unknown declaration kind %q", decl.Kind)
	}
}

func convertUnion(decl schema.TypeDeclarationSchema, c *filecontext.Context, r *resolver.Resolvers, refs typeSet) (ir.TypeShape, error) {
	extends, err := convertExtends(decl.Extends, c, r, refs)
	if err != nil {
		return ir.TypeShape{}, err
	}
	base, err := convertProperties(decl.BaseProperties, c, refs)
	if err != nil {
		return ir.TypeShape{}, err
	}
	union := &ir.UnionTypeDeclaration{
		Discriminant:   c.Casing.GenerateNameAndWireValue(decl.Discriminant, decl.Discriminant),
		Extends:        extends,
		BaseProperties: base,
		Types:          make([]ir.SingleUnionType, 0, decl.Variants.Len()),
	}
	for value, variant := range decl.Variants.All() {
		single := ir.SingleUnionType{
			DiscriminantValue: c.Casing.GenerateNameAndWireValue(value, value),
			Docs:              variant.Docs,
		}
		if variant.Type == "" {
			single.Shape = ir.SingleUnionTypeProperties{Kind: ir.SingleUnionNoProperties}
			union.Types = append(union.Types, single)
			continue
		}
		ref, err := c.ParseTypeReference(variant.Type)
		if err != nil {
			return ir.TypeShape{}, err
		}
		refs.addRef(ref)
		switch {
		case variant.Key == "" && ref.Kind == ir.TypeReferenceNamed:
			named := *ref.Named
			single.Shape = ir.SingleUnionTypeProperties{Kind: ir.SingleUnionSamePropertiesAsObject, SamePropertiesAsObject: &named}
		default:
			key := variant.Key
			if key == "" {
				key = "value"
			}
			single.Shape = ir.SingleUnionTypeProperties{
				Kind:           ir.SingleUnionSingleProperty,
				SingleProperty: &ir.SingleUnionTypeProperty{Name: c.Casing.GenerateNameAndWireValue(key, key), Type: ref},
			}
		}
		union.Types = append(union.Types, single)
	}
	return ir.TypeShape{Kind: ir.ShapeUnion, Union: union}, nil
}

func convertExtends(extends []string, c *filecontext.Context, r *resolver.Resolvers, refs typeSet) ([]ir.DeclaredTypeName, error) {
	out := make([]ir.DeclaredTypeName, 0, len(extends))
	for _, raw := range extends {
		parent, err := r.Types.ResolveType(raw, c)
		if err != nil {
			return nil, err
		}
		refs.addName(parent.Name)
		out = append(out, parent.Name)
	}
	return out, nil
}

func convertProperties(props schema.OrderedMap[schema.TypeReferenceSchema], c *filecontext.Context, refs typeSet) ([]ir.ObjectProperty, error) {
	out := make([]ir.ObjectProperty, 0, props.Len())
	for key, p := range props.All() {
		ref, err := c.ParseTypeReference(p.Type)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", key, err)
		}
		refs.addRef(ref)
		out = append(out, ir.ObjectProperty{
			Name:      nameAndWire(c, p.Name, key),
			ValueType: ref,
			Docs:      p.Docs,
		})
	}
	return out, nil
}

// nameAndWire uses override as the code name when set; the wire value is
// always the declared key.
func nameAndWire(c *filecontext.Context, override, key string) ir.NameAndWireValue {
	name := override
	if name == "" {
		name = key
	}
	return c.Casing.GenerateNameAndWireValue(name, key)
}
