package schema

import (
	"fmt"
	"iter"

	"gopkg.in/yaml.v3"
)

// OrderedMap is a string-keyed YAML mapping that remembers key order and
// the source line of every key.
type OrderedMap[T any] struct {
	keys   []string
	values map[string]T
	lines  map[string]int
}

// NewOrderedMap builds a map from entries, keeping their order.
func NewOrderedMap[T any](entries ...Entry[T]) OrderedMap[T] {
	var m OrderedMap[T]
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Entry is one key/value pair for NewOrderedMap.
type Entry[T any] struct {
	Key   string
	Value T
}

// E is shorthand for Entry.
func E[T any](key string, value T) Entry[T] {
	return Entry[T]{Key: key, Value: value}
}

// Set inserts or replaces key. Replacing keeps the original position.
func (m *OrderedMap[T]) Set(key string, value T) {
	if m.values == nil {
		m.values = make(map[string]T)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key.
func (m OrderedMap[T]) Get(key string) (T, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m OrderedMap[T]) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Len returns the number of entries.
func (m OrderedMap[T]) Len() int {
	return len(m.keys)
}

// Keys returns keys in source order.
func (m OrderedMap[T]) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Line returns the 1-based source line of key, or 0 when unknown.
func (m OrderedMap[T]) Line(key string) int {
	return m.lines[key]
}

// All iterates entries in source order.
func (m OrderedMap[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// UnmarshalYAML decodes a mapping node, rejecting duplicate keys.
func (m *OrderedMap[T]) UnmarshalYAML(node *yaml.Node) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping, got %s", node.Line, kindName(node))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		key := keyNode.Value
		if m.Has(key) {
			return fmt.Errorf("line %d: duplicate key %q", keyNode.Line, key)
		}
		var v T
		if err := valueNode.Decode(&v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		m.Set(key, v)
		if m.lines == nil {
			m.lines = make(map[string]int)
		}
		m.lines[key] = keyNode.Line
	}
	return nil
}

// StringList accepts either a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch {
	case isNull(node):
		return nil
	case node.Kind == yaml.ScalarNode:
		*l = StringList{node.Value}
		return nil
	case node.Kind == yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings, got %s", node.Line, kindName(node))
	}
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "a document"
	}
}
