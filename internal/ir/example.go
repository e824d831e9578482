package ir

import "encoding/json"

// ExampleKind discriminates ExampleNode.
type ExampleKind string

const (
	ExamplePrimitive            ExampleKind = "primitive"
	ExampleList                 ExampleKind = "list"
	ExampleSet                  ExampleKind = "set"
	ExampleOptional             ExampleKind = "optional"
	ExampleMap                  ExampleKind = "map"
	ExampleLiteral              ExampleKind = "literal"
	ExampleObject               ExampleKind = "object"
	ExampleAlias                ExampleKind = "alias"
	ExampleEnum                 ExampleKind = "enum"
	ExampleUnion                ExampleKind = "union"
	ExampleUndiscriminatedUnion ExampleKind = "undiscriminatedUnion"
	ExampleUnknown              ExampleKind = "unknown"
)

// ExampleNode is an example value annotated with the shape it matched.
//
// Field usage by kind:
//   - primitive, literal, unknown, enum: Value
//   - list, set: Items
//   - optional: Inner (nil when the example is null or absent)
//   - map: Entries
//   - object: TypeID, Properties
//   - alias: TypeID, Inner
//   - union: TypeID, Discriminant, Properties (base + variant object
//     properties) and Inner (single-property variant)
//   - undiscriminatedUnion: TypeID, MemberIndex, Inner
type ExampleNode struct {
	Kind         ExampleKind       `json:"type"`
	Primitive    PrimitiveType     `json:"primitive,omitempty"`
	TypeID       TypeID            `json:"type_id,omitempty"`
	Value        json.RawMessage   `json:"value,omitempty"`
	Items        []ExampleNode     `json:"items,omitempty"`
	Entries      []ExampleEntry    `json:"entries,omitempty"`
	Properties   []ExampleProperty `json:"properties,omitempty"`
	Inner        *ExampleNode      `json:"inner,omitempty"`
	Discriminant string            `json:"discriminant,omitempty"`
	MemberIndex  *int              `json:"member_index,omitempty"`
}

// ExampleEntry is one key/value pair of a map example.
type ExampleEntry struct {
	Key   ExampleNode `json:"key"`
	Value ExampleNode `json:"value"`
}

// ExampleProperty is one property of an object example. OriginalTypeID is
// the declaration that owns the property, which differs from the example's
// own type when the property is inherited through extends.
type ExampleProperty struct {
	WireKey        string      `json:"wire_key"`
	Value          ExampleNode `json:"value"`
	OriginalTypeID TypeID      `json:"original_type_id"`
}

// ExampleEndpointCall is an example request to an endpoint and the
// response it gets back. Parameters follow the endpoint's declaration
// order; ones the example leaves out are omitted.
type ExampleEndpointCall struct {
	ID              string              `json:"id"`
	Name            string              `json:"name,omitempty"`
	Docs            string              `json:"docs,omitempty"`
	PathParameters  []ExampleNamedValue `json:"path_parameters"`
	QueryParameters []ExampleNamedValue `json:"query_parameters"`
	Headers         []ExampleNamedValue `json:"headers"`
	Request         *ExampleNode        `json:"request,omitempty"`
	Response        ExampleResponse     `json:"response"`
}

// ExampleNamedValue is a parameter or header value keyed by wire name.
type ExampleNamedValue struct {
	WireKey string      `json:"wire_key"`
	Value   ExampleNode `json:"value"`
}

// ExampleResponseKind discriminates ExampleResponse.
type ExampleResponseKind string

const (
	ExampleResponseOK    ExampleResponseKind = "ok"
	ExampleResponseError ExampleResponseKind = "error"
)

// ExampleResponse is the body of an example call. Error is set for the
// error kind; Body is nil when the example shows no body.
type ExampleResponse struct {
	Kind  ExampleResponseKind `json:"type"`
	Error *DeclaredErrorName  `json:"error,omitempty"`
	Body  *ExampleNode        `json:"body,omitempty"`
}
