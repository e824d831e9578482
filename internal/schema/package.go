package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PackageMarkerFile is a __package__.yml file.
type PackageMarkerFile struct {
	Docs       string            `yaml:"docs"`
	Navigation *NavigationSchema `yaml:"navigation"`
}

// NavigationKind distinguishes the two navigation forms.
type NavigationKind string

const (
	// NavigationRedirect points the package at another package.
	NavigationRedirect NavigationKind = "redirect"
	// NavigationOrder fixes the order of the package's children.
	NavigationOrder NavigationKind = "order"
)

// NavigationSchema is a string (redirect) or a list (child order).
type NavigationSchema struct {
	Kind     NavigationKind
	PointsTo string
	Order    []string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *NavigationSchema) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*n = NavigationSchema{Kind: NavigationRedirect, PointsTo: node.Value}
		return nil
	case yaml.SequenceNode:
		var order []string
		if err := node.Decode(&order); err != nil {
			return err
		}
		*n = NavigationSchema{Kind: NavigationOrder, Order: order}
		return nil
	default:
		return fmt.Errorf("line %d: navigation must be a package name or a list, got %s", node.Line, kindName(node))
	}
}
