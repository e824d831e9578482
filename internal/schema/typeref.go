package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TypeReferenceSchema is a type expression with optional metadata. It is
// written either as the bare expression ("optional<string>") or as a
// mapping with a type key. Properties, headers, query parameters, path
// parameters and variables all share this form.
type TypeReferenceSchema struct {
	Type          string     `yaml:"type"`
	Docs          string     `yaml:"docs"`
	Name          string     `yaml:"name"`
	AllowMultiple bool       `yaml:"allow-multiple"`
	Variable      string     `yaml:"variable"`
	Audiences     StringList `yaml:"audiences"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *TypeReferenceSchema) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		s.Type = node.Value
		return nil
	case yaml.MappingNode:
		type plain TypeReferenceSchema
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		if p.Type == "" && p.Variable == "" {
			return fmt.Errorf("line %d: type is required", node.Line)
		}
		*s = TypeReferenceSchema(p)
		return nil
	default:
		return fmt.Errorf("line %d: expected a type or a mapping with a type key, got %s", node.Line, kindName(node))
	}
}

// Ref returns a schema holding only a type expression.
func Ref(typ string) TypeReferenceSchema {
	return TypeReferenceSchema{Type: typ}
}
