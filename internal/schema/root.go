package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// RootAPIFile is the api.yml at the root of a definition.
type RootAPIFile struct {
	Name                string                                  `yaml:"name"`
	DisplayName         string                                  `yaml:"display-name"`
	Docs                string                                  `yaml:"docs"`
	Auth                *AuthSchema                             `yaml:"auth"`
	AuthSchemes         OrderedMap[AuthSchemeDeclarationSchema] `yaml:"auth-schemes"`
	Headers             OrderedMap[TypeReferenceSchema]         `yaml:"headers"`
	Errors              []string                                `yaml:"errors"`
	ErrorDiscrimination *ErrorDiscriminationSchema              `yaml:"error-discrimination"`
	Environments        OrderedMap[EnvironmentSchema]           `yaml:"environments"`
	DefaultEnvironment  string                                  `yaml:"default-environment"`
	BasePath            string                                  `yaml:"base-path"`
	PathParameters      OrderedMap[TypeReferenceSchema]         `yaml:"path-parameters"`
	Variables           OrderedMap[TypeReferenceSchema]         `yaml:"variables"`
	Audiences           []string                                `yaml:"audiences"`
}

// AuthSchema selects which schemes authenticate requests. "auth: bearer"
// names one scheme; "auth: {any: [a, b]}" accepts any of several;
// "auth: {all: [a, b]}" requires every one.
type AuthSchema struct {
	Schemes []string
	Any     bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *AuthSchema) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		a.Schemes = []string{node.Value}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Any []string `yaml:"any"`
			All []string `yaml:"all"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		switch {
		case len(raw.Any) > 0 && len(raw.All) > 0:
			return fmt.Errorf("line %d: auth cannot set both any and all", node.Line)
		case len(raw.Any) > 0:
			a.Schemes, a.Any = raw.Any, true
		case len(raw.All) > 0:
			a.Schemes = raw.All
		default:
			return fmt.Errorf("line %d: auth must list schemes under any or all", node.Line)
		}
		return nil
	default:
		return fmt.Errorf("line %d: auth must be a scheme name or a mapping, got %s", node.Line, kindName(node))
	}
}

// AuthSchemeDeclarationSchema declares a named auth scheme. Either Scheme
// (bearer, basic) or Header is set.
type AuthSchemeDeclarationSchema struct {
	Scheme   string `yaml:"scheme"`
	Header   string `yaml:"header"`
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Prefix   string `yaml:"prefix"`
	Docs     string `yaml:"docs"`
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ErrorDiscriminationSchema is the root error-discrimination block.
type ErrorDiscriminationSchema struct {
	Strategy        string `yaml:"strategy"`
	PropertyName    string `yaml:"property-name"`
	ContentProperty string `yaml:"content-property"`
}

// Error discrimination strategies.
const (
	StrategyStatusCode = "status-code"
	StrategyProperty   = "property"
)

// EnvironmentSchema is a bare URL or a mapping with url and docs.
type EnvironmentSchema struct {
	URL  string `yaml:"url"`
	Docs string `yaml:"docs"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *EnvironmentSchema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.URL = node.Value
		return nil
	}
	type plain EnvironmentSchema
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = EnvironmentSchema(p)
	return nil
}
