package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefinitionFile is one declaration file below the definition root.
type DefinitionFile struct {
	Imports map[string]string                  `yaml:"imports"`
	Docs    string                             `yaml:"docs"`
	Types   OrderedMap[TypeDeclarationSchema]  `yaml:"types"`
	Errors  OrderedMap[ErrorDeclarationSchema] `yaml:"errors"`
	Service *ServiceSchema                     `yaml:"service"`
}

// DeclarationKind says which shape a type declaration was written in.
type DeclarationKind string

const (
	DeclarationAlias                DeclarationKind = "alias"
	DeclarationObject               DeclarationKind = "object"
	DeclarationUnion                DeclarationKind = "union"
	DeclarationUndiscriminatedUnion DeclarationKind = "undiscriminatedUnion"
	DeclarationEnum                 DeclarationKind = "enum"
)

// TypeDeclarationSchema is a declared type. A scalar value is an alias; a
// mapping is classified by its keys: enum, union (a mapping of variants is
// discriminated, a list is not), type (alias) or properties/extends (object).
type TypeDeclarationSchema struct {
	Kind      DeclarationKind
	Docs      string
	Audiences StringList
	Examples  []ExampleSchema

	AliasOf string

	Extends    StringList
	Properties OrderedMap[TypeReferenceSchema]

	Discriminant   string
	BaseProperties OrderedMap[TypeReferenceSchema]
	Variants       OrderedMap[UnionVariantSchema]

	Members []UndiscriminatedMemberSchema

	Values []EnumValueSchema
}

type rawTypeDeclaration struct {
	Docs           string                          `yaml:"docs"`
	Audiences      StringList                      `yaml:"audiences"`
	Examples       []ExampleSchema                 `yaml:"examples"`
	Type           string                          `yaml:"type"`
	Extends        StringList                      `yaml:"extends"`
	Properties     OrderedMap[TypeReferenceSchema] `yaml:"properties"`
	Discriminant   string                          `yaml:"discriminant"`
	Discriminated  *bool                           `yaml:"discriminated"`
	BaseProperties OrderedMap[TypeReferenceSchema] `yaml:"base-properties"`
	Union          yaml.Node                       `yaml:"union"`
	Enum           []EnumValueSchema               `yaml:"enum"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *TypeDeclarationSchema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*d = TypeDeclarationSchema{Kind: DeclarationAlias, AliasOf: node.Value}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: type declaration must be a type or a mapping, got %s", node.Line, kindName(node))
	}
	var raw rawTypeDeclaration
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*d = TypeDeclarationSchema{
		Docs:      raw.Docs,
		Audiences: raw.Audiences,
		Examples:  raw.Examples,
	}

	hasUnion := raw.Union.Kind != 0
	hasObject := raw.Properties.Len() > 0 || len(raw.Extends) > 0
	shapes := 0
	for _, set := range []bool{hasUnion, raw.Enum != nil, raw.Type != "", hasObject} {
		if set {
			shapes++
		}
	}
	if shapes > 1 && !(hasUnion && len(raw.Extends) > 0 && raw.Properties.Len() == 0) {
		return fmt.Errorf("line %d: type declaration mixes incompatible keys", node.Line)
	}

	switch {
	case hasUnion:
		return d.decodeUnion(&raw)
	case raw.Enum != nil:
		if len(raw.Enum) == 0 {
			return fmt.Errorf("line %d: enum must list at least one value", node.Line)
		}
		d.Kind = DeclarationEnum
		d.Values = raw.Enum
	case raw.Type != "":
		d.Kind = DeclarationAlias
		d.AliasOf = raw.Type
	default:
		d.Kind = DeclarationObject
		d.Extends = raw.Extends
		d.Properties = raw.Properties
	}
	return nil
}

func (d *TypeDeclarationSchema) decodeUnion(raw *rawTypeDeclaration) error {
	undiscriminated := raw.Union.Kind == yaml.SequenceNode ||
		(raw.Discriminated != nil && !*raw.Discriminated)
	if undiscriminated {
		if raw.Union.Kind != yaml.SequenceNode {
			return fmt.Errorf("line %d: undiscriminated union members must be a list", raw.Union.Line)
		}
		d.Kind = DeclarationUndiscriminatedUnion
		return raw.Union.Decode(&d.Members)
	}
	d.Kind = DeclarationUnion
	d.Discriminant = raw.Discriminant
	if d.Discriminant == "" {
		d.Discriminant = "type"
	}
	d.Extends = raw.Extends
	d.BaseProperties = raw.BaseProperties
	return raw.Union.Decode(&d.Variants)
}

// UnionVariantSchema is one discriminated union variant: a bare type name
// (whose properties are spread into the variant) or a mapping whose key
// field, when set, nests the type under that property.
type UnionVariantSchema struct {
	Type string `yaml:"type"`
	Key  string `yaml:"key"`
	Docs string `yaml:"docs"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *UnionVariantSchema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		v.Type = node.Value
		return nil
	}
	type plain UnionVariantSchema
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*v = UnionVariantSchema(p)
	return nil
}

// UndiscriminatedMemberSchema is one member of an undiscriminated union.
type UndiscriminatedMemberSchema struct {
	Type string `yaml:"type"`
	Docs string `yaml:"docs"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *UndiscriminatedMemberSchema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		m.Type = node.Value
		return nil
	}
	type plain UndiscriminatedMemberSchema
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*m = UndiscriminatedMemberSchema(p)
	return nil
}

// EnumValueSchema is an enum value, optionally renamed for generated code.
type EnumValueSchema struct {
	Value string `yaml:"value"`
	Name  string `yaml:"name"`
	Docs  string `yaml:"docs"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *EnumValueSchema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Value = node.Value
		return nil
	}
	type plain EnumValueSchema
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	if p.Value == "" {
		return fmt.Errorf("line %d: enum value is required", node.Line)
	}
	*e = EnumValueSchema(p)
	return nil
}

// ExampleSchema is a user-supplied example. Value is whatever the YAML
// decoder produced: maps, slices, strings, numbers, booleans or nil.
type ExampleSchema struct {
	Name  string `yaml:"name"`
	Docs  string `yaml:"docs"`
	Value any    `yaml:"value"`
}

// ErrorDeclarationSchema is a declared error.
type ErrorDeclarationSchema struct {
	StatusCode int        `yaml:"status-code"`
	Type       string     `yaml:"type"`
	Docs       string     `yaml:"docs"`
	Audiences  StringList `yaml:"audiences"`
}
