package ir

import "encoding/json"

// PrimitiveType enumerates built-in scalar types.
type PrimitiveType string

const (
	PrimitiveString   PrimitiveType = "STRING"
	PrimitiveInteger  PrimitiveType = "INTEGER"
	PrimitiveLong     PrimitiveType = "LONG"
	PrimitiveDouble   PrimitiveType = "DOUBLE"
	PrimitiveBoolean  PrimitiveType = "BOOLEAN"
	PrimitiveDateTime PrimitiveType = "DATE_TIME"
	PrimitiveDate     PrimitiveType = "DATE"
	PrimitiveUUID     PrimitiveType = "UUID"
	PrimitiveBase64   PrimitiveType = "BASE_64"
)

// TypeReferenceKind discriminates TypeReference.
type TypeReferenceKind string

const (
	TypeReferencePrimitive TypeReferenceKind = "primitive"
	TypeReferenceNamed     TypeReferenceKind = "named"
	TypeReferenceContainer TypeReferenceKind = "container"
	TypeReferenceUnknown   TypeReferenceKind = "unknown"
)

// TypeReference is the structured form of a textual type expression.
// Exactly one payload field is set, selected by Kind.
type TypeReference struct {
	Kind      TypeReferenceKind `json:"type"`
	Primitive PrimitiveType     `json:"primitive,omitempty"`
	Named     *DeclaredTypeName `json:"named,omitempty"`
	Container *ContainerType    `json:"container,omitempty"`
}

// ContainerKind discriminates ContainerType.
type ContainerKind string

const (
	ContainerList     ContainerKind = "list"
	ContainerSet      ContainerKind = "set"
	ContainerOptional ContainerKind = "optional"
	ContainerMap      ContainerKind = "map"
	ContainerLiteral  ContainerKind = "literal"
)

// ContainerType wraps other references. Item is set for list, set and
// optional; Key and Value for map; Literal for literal.
type ContainerType struct {
	Kind    ContainerKind  `json:"type"`
	Item    *TypeReference `json:"item,omitempty"`
	Key     *TypeReference `json:"key,omitempty"`
	Value   *TypeReference `json:"value,omitempty"`
	Literal *Literal       `json:"literal,omitempty"`
}

// Literal is a constant string or boolean.
type Literal struct {
	String  *string `json:"string,omitempty"`
	Boolean *bool   `json:"boolean,omitempty"`
}

// Primitive returns a primitive reference.
func Primitive(p PrimitiveType) TypeReference {
	return TypeReference{Kind: TypeReferencePrimitive, Primitive: p}
}

// Named returns a reference to a declared type.
func Named(name DeclaredTypeName) TypeReference {
	return TypeReference{Kind: TypeReferenceNamed, Named: &name}
}

// Unknown returns the reference used for untyped values.
func Unknown() TypeReference {
	return TypeReference{Kind: TypeReferenceUnknown}
}

// List returns list<item>.
func List(item TypeReference) TypeReference {
	return container(ContainerType{Kind: ContainerList, Item: &item})
}

// Set returns set<item>.
func Set(item TypeReference) TypeReference {
	return container(ContainerType{Kind: ContainerSet, Item: &item})
}

// Optional returns optional<item>.
func Optional(item TypeReference) TypeReference {
	return container(ContainerType{Kind: ContainerOptional, Item: &item})
}

// Map returns map<key, value>.
func Map(key, value TypeReference) TypeReference {
	return container(ContainerType{Kind: ContainerMap, Key: &key, Value: &value})
}

// StringLiteral returns literal<"s">.
func StringLiteral(s string) TypeReference {
	return container(ContainerType{Kind: ContainerLiteral, Literal: &Literal{String: &s}})
}

// BooleanLiteral returns literal<b>.
func BooleanLiteral(b bool) TypeReference {
	return container(ContainerType{Kind: ContainerLiteral, Literal: &Literal{Boolean: &b}})
}

func container(c ContainerType) TypeReference {
	return TypeReference{Kind: TypeReferenceContainer, Container: &c}
}

// IsOptional reports whether r is optional<...>.
func (r TypeReference) IsOptional() bool {
	return r.Kind == TypeReferenceContainer && r.Container != nil && r.Container.Kind == ContainerOptional
}

// IsPrimitive reports whether r is the given primitive.
func (r TypeReference) IsPrimitive(p PrimitiveType) bool {
	return r.Kind == TypeReferencePrimitive && r.Primitive == p
}

// NamedTypes returns every declared type appearing anywhere in r, in
// traversal order, including nested container positions and map keys.
func (r TypeReference) NamedTypes() []DeclaredTypeName {
	var out []DeclaredTypeName
	r.walkNamed(func(n DeclaredTypeName) { out = append(out, n) })
	return out
}

func (r TypeReference) walkNamed(visit func(DeclaredTypeName)) {
	switch r.Kind {
	case TypeReferenceNamed:
		if r.Named != nil {
			visit(*r.Named)
		}
	case TypeReferenceContainer:
		if r.Container == nil {
			return
		}
		for _, inner := range []*TypeReference{r.Container.Item, r.Container.Key, r.Container.Value} {
			if inner != nil {
				inner.walkNamed(visit)
			}
		}
	case TypeReferencePrimitive, TypeReferenceUnknown:
	}
}

// ShapeKind discriminates TypeShape.
type ShapeKind string

const (
	ShapeAlias                ShapeKind = "alias"
	ShapeObject               ShapeKind = "object"
	ShapeUnion                ShapeKind = "union"
	ShapeEnum                 ShapeKind = "enum"
	ShapeUndiscriminatedUnion ShapeKind = "undiscriminatedUnion"
)

// TypeShape is the body of a type declaration.
type TypeShape struct {
	Kind                 ShapeKind                            `json:"type"`
	Alias                *AliasTypeDeclaration                `json:"alias,omitempty"`
	Object               *ObjectTypeDeclaration               `json:"object,omitempty"`
	Union                *UnionTypeDeclaration                `json:"union,omitempty"`
	Enum                 *EnumTypeDeclaration                 `json:"enum,omitempty"`
	UndiscriminatedUnion *UndiscriminatedUnionTypeDeclaration `json:"undiscriminated_union,omitempty"`
}

// AliasTypeDeclaration declares a new name for another reference.
type AliasTypeDeclaration struct {
	AliasOf TypeReference `json:"alias_of"`
}

// ObjectTypeDeclaration is a record with named properties.
type ObjectTypeDeclaration struct {
	Extends    []DeclaredTypeName `json:"extends"`
	Properties []ObjectProperty   `json:"properties"`
}

// ObjectProperty is one property of an object or inlined request.
type ObjectProperty struct {
	Name      NameAndWireValue `json:"name"`
	ValueType TypeReference    `json:"value_type"`
	Docs      string           `json:"docs,omitempty"`
}

// EnumTypeDeclaration is a closed set of string values.
type EnumTypeDeclaration struct {
	Values []EnumValue `json:"values"`
}

// EnumValue is one member of an enum.
type EnumValue struct {
	Name NameAndWireValue `json:"name"`
	Docs string           `json:"docs,omitempty"`
}

// UnionTypeDeclaration is a discriminated union.
type UnionTypeDeclaration struct {
	Discriminant   NameAndWireValue   `json:"discriminant"`
	Extends        []DeclaredTypeName `json:"extends"`
	BaseProperties []ObjectProperty   `json:"base_properties"`
	Types          []SingleUnionType  `json:"types"`
}

// SingleUnionType is one variant of a discriminated union.
type SingleUnionType struct {
	DiscriminantValue NameAndWireValue          `json:"discriminant_value"`
	Shape             SingleUnionTypeProperties `json:"shape"`
	Docs              string                    `json:"docs,omitempty"`
}

// SingleUnionPropertiesKind discriminates SingleUnionTypeProperties.
type SingleUnionPropertiesKind string

const (
	SingleUnionSamePropertiesAsObject SingleUnionPropertiesKind = "samePropertiesAsObject"
	SingleUnionSingleProperty         SingleUnionPropertiesKind = "singleProperty"
	SingleUnionNoProperties           SingleUnionPropertiesKind = "noProperties"
)

// SingleUnionTypeProperties is the payload of a union variant.
type SingleUnionTypeProperties struct {
	Kind                   SingleUnionPropertiesKind `json:"properties_type"`
	SamePropertiesAsObject *DeclaredTypeName         `json:"same_properties_as_object,omitempty"`
	SingleProperty         *SingleUnionTypeProperty  `json:"single_property,omitempty"`
}

// SingleUnionTypeProperty carries a non-object variant under a key.
type SingleUnionTypeProperty struct {
	Name NameAndWireValue `json:"name"`
	Type TypeReference    `json:"type"`
}

// UndiscriminatedUnionTypeDeclaration is a union resolved by shape.
type UndiscriminatedUnionTypeDeclaration struct {
	Members []UndiscriminatedUnionMember `json:"members"`
}

// UndiscriminatedUnionMember is one candidate of an undiscriminated union.
type UndiscriminatedUnionMember struct {
	Type TypeReference `json:"type"`
	Docs string        `json:"docs,omitempty"`
}

// TypeDeclaration is a canonical named type.
type TypeDeclaration struct {
	Name            DeclaredTypeName `json:"name"`
	Shape           TypeShape        `json:"shape"`
	Docs            string           `json:"docs,omitempty"`
	ReferencedTypes []TypeID         `json:"referenced_types"`
	Examples        []ExampleType    `json:"examples"`
}

// ExampleType is a user-supplied example that validated against its type.
type ExampleType struct {
	ID          string          `json:"id"`
	Name        string          `json:"name,omitempty"`
	Docs        string          `json:"docs,omitempty"`
	JSONExample json.RawMessage `json:"json_example"`
	Shape       ExampleNode     `json:"shape"`
}

// ErrorDeclaration is a canonical named error.
type ErrorDeclaration struct {
	Name              DeclaredErrorName `json:"name"`
	DiscriminantValue NameAndWireValue  `json:"discriminant_value"`
	Docs              string            `json:"docs,omitempty"`
	StatusCode        int               `json:"status_code,omitempty"`
	Type              *TypeReference    `json:"type,omitempty"`
	ReferencedTypes   []TypeID          `json:"referenced_types"`
}
