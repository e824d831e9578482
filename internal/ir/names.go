package ir

import "strings"

// SafeAndUnsafeString pairs a raw casing with a spelling that is safe to use
// as an identifier in the target language (reserved words escaped).
type SafeAndUnsafeString struct {
	UnsafeName string `json:"unsafe_name"`
	SafeName   string `json:"safe_name"`
}

// Name is a declaration name with every casing generators need.
type Name struct {
	OriginalName       string              `json:"original_name"`
	CamelCase          SafeAndUnsafeString `json:"camel_case"`
	PascalCase         SafeAndUnsafeString `json:"pascal_case"`
	SnakeCase          SafeAndUnsafeString `json:"snake_case"`
	ScreamingSnakeCase SafeAndUnsafeString `json:"screaming_snake_case"`
}

// NameAndWireValue is a name whose serialized form may differ from its
// identifier (e.g. a property renamed on the wire).
type NameAndWireValue struct {
	WireValue string `json:"wire_value"`
	Name      Name   `json:"name"`
}

// Filepath locates a declaration file inside the definition tree.
//
// For "commons/money.yml": AllParts = [commons, money],
// PackagePath = [commons], File = money.
type Filepath struct {
	AllParts    []Name `json:"all_parts"`
	PackagePath []Name `json:"package_path"`
	File        *Name  `json:"file,omitempty"`
}

// Key returns the original path segments joined by "/". It is the stable
// component of every id derived from this path.
func (p Filepath) Key() string {
	parts := make([]string, len(p.AllParts))
	for i, part := range p.AllParts {
		parts[i] = part.OriginalName
	}
	return strings.Join(parts, "/")
}

// IsRoot reports whether the path has no segments.
func (p Filepath) IsRoot() bool {
	return len(p.AllParts) == 0
}

// Parent returns the path with its last segment removed.
func (p Filepath) Parent() Filepath {
	if len(p.AllParts) == 0 {
		return p
	}
	parts := p.AllParts[:len(p.AllParts)-1]
	parent := Filepath{
		AllParts:    append([]Name(nil), parts...),
		PackagePath: append([]Name(nil), parts...),
	}
	return parent
}
