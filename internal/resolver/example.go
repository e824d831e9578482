package resolver

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/schema"
)

// ExampleResolver checks untyped example values against types and
// annotates them with the shape they matched.
type ExampleResolver struct {
	types *TypeResolver
}

// ResolveExample validates value against the declared type decl.
func (r *ExampleResolver) ResolveExample(value any, decl ResolvedType) (ir.ExampleNode, error) {
	return r.declared("$", value, decl, nil)
}

// ResolveReference validates value against a type reference.
func (r *ExampleResolver) ResolveReference(value any, ref ir.TypeReference) (ir.ExampleNode, error) {
	return r.reference("$", value, ref, nil)
}

// ResolveReferenceAt is ResolveReference with mismatch paths rooted at
// path instead of "$".
func (r *ExampleResolver) ResolveReferenceAt(path string, value any, ref ir.TypeReference) (ir.ExampleNode, error) {
	return r.reference(path, value, ref, nil)
}

// ResolveObject validates value against an anonymous object made of the
// properties of every type in extends followed by props. The node carries
// no TypeID.
func (r *ExampleResolver) ResolveObject(path string, value any, extends []ir.TypeID, props []ir.ObjectProperty) (ir.ExampleNode, error) {
	m, ok := asMap(value)
	if !ok {
		return ir.ExampleNode{}, mismatch(path, WrongShape, "expected an object, got %s", describe(value))
	}
	var all []property
	for _, id := range extends {
		parent, ok := r.types.Declaration(id)
		if !ok {
			return ir.ExampleNode{}, fmt.Errorf("%s: %w: %s", path, ErrUnknownSymbol, id)
		}
		if parent.Declaration.Kind != schema.DeclarationObject {
			return ir.ExampleNode{}, fmt.Errorf("%s: extends non-object %s", path, id)
		}
		inherited, err := r.objectProperties(parent, nil)
		if err != nil {
			return ir.ExampleNode{}, err
		}
		all = append(all, inherited...)
	}
	for _, p := range props {
		all = append(all, property{wireKey: p.Name.WireValue, ref: &p.ValueType})
	}
	out, err := r.properties(path, m, all, nil)
	if err != nil {
		return ir.ExampleNode{}, err
	}
	return ir.ExampleNode{Kind: ir.ExampleObject, Properties: out}, nil
}

// visiting holds the named types entered since the example last descended
// into a list, map or object value. Seeing one again means the type can
// expand forever without consuming input.
type visiting map[ir.TypeID]bool

func (seen visiting) enter(path string, id ir.TypeID) (visiting, error) {
	if seen[id] {
		return nil, mismatch(path, RecursiveType, "%s refers back to itself", id)
	}
	next := make(visiting, len(seen)+1)
	for k := range seen {
		next[k] = true
	}
	next[id] = true
	return next, nil
}

func (r *ExampleResolver) reference(path string, v any, ref ir.TypeReference, seen visiting) (ir.ExampleNode, error) {
	switch ref.Kind {
	case ir.TypeReferencePrimitive:
		return primitiveExample(path, v, ref.Primitive)
	case ir.TypeReferenceUnknown:
		raw, err := rawJSON(path, v)
		if err != nil {
			return ir.ExampleNode{}, err
		}
		return ir.ExampleNode{Kind: ir.ExampleUnknown, Value: raw}, nil
	case ir.TypeReferenceNamed:
		decl, ok := r.types.Declaration(ref.Named.TypeID)
		if !ok {
			return ir.ExampleNode{}, fmt.Errorf("%s: %w: %s", path, ErrUnknownSymbol, ref.Named.TypeID)
		}
		return r.declared(path, v, decl, seen)
	case ir.TypeReferenceContainer:
		return r.container(path, v, ref.Container, seen)
	default:
		return ir.ExampleNode{}, fmt.Errorf("%s: unsupported type reference %q", path, ref.Kind)
	}
}

func (r *ExampleResolver) container(path string, v any, c *ir.ContainerType, seen visiting) (ir.ExampleNode, error) {
	switch c.Kind {
	case ir.ContainerOptional:
		if v == nil {
			return ir.ExampleNode{Kind: ir.ExampleOptional}, nil
		}
		inner, err := r.reference(path, v, *c.Item, seen)
		if err != nil {
			return ir.ExampleNode{}, err
		}
		return ir.ExampleNode{Kind: ir.ExampleOptional, Inner: &inner}, nil
	case ir.ContainerList, ir.ContainerSet:
		items, ok := v.([]any)
		if !ok {
			return ir.ExampleNode{}, mismatch(path, WrongShape, "expected a list, got %s", describe(v))
		}
		kind := ir.ExampleList
		if c.Kind == ir.ContainerSet {
			kind = ir.ExampleSet
		}
		node := ir.ExampleNode{Kind: kind, Items: make([]ir.ExampleNode, 0, len(items))}
		for i, item := range items {
			child, err := r.reference(fmt.Sprintf("%s[%d]", path, i), item, *c.Item, nil)
			if err != nil {
				return ir.ExampleNode{}, err
			}
			node.Items = append(node.Items, child)
		}
		return node, nil
	case ir.ContainerMap:
		m, ok := asMap(v)
		if !ok {
			return ir.ExampleNode{}, mismatch(path, WrongShape, "expected a map, got %s", describe(v))
		}
		node := ir.ExampleNode{Kind: ir.ExampleMap, Entries: make([]ir.ExampleEntry, 0, len(m))}
		for _, k := range sortedKeys(m) {
			childPath := path + "." + k
			key, err := r.reference(childPath, mapKey(k, *c.Key), *c.Key, nil)
			if err != nil {
				return ir.ExampleNode{}, err
			}
			value, err := r.reference(childPath, m[k], *c.Value, nil)
			if err != nil {
				return ir.ExampleNode{}, err
			}
			node.Entries = append(node.Entries, ir.ExampleEntry{Key: key, Value: value})
		}
		return node, nil
	case ir.ContainerLiteral:
		return literalExample(path, v, c.Literal)
	default:
		return ir.ExampleNode{}, fmt.Errorf("%s: unsupported container %q", path, c.Kind)
	}
}

func (r *ExampleResolver) declared(path string, v any, decl ResolvedType, seen visiting) (ir.ExampleNode, error) {
	id := decl.Name.TypeID
	d := decl.Declaration
	switch d.Kind {
	case schema.DeclarationAlias:
		next, err := seen.enter(path, id)
		if err != nil {
			return ir.ExampleNode{}, err
		}
		target, err := decl.Context.ParseTypeReference(d.AliasOf)
		if err != nil {
			return ir.ExampleNode{}, err
		}
		inner, err := r.reference(path, v, target, next)
		if err != nil {
			return ir.ExampleNode{}, err
		}
		return ir.ExampleNode{Kind: ir.ExampleAlias, TypeID: id, Inner: &inner}, nil
	case schema.DeclarationEnum:
		s, ok := v.(string)
		if !ok {
			return ir.ExampleNode{}, mismatch(path, WrongPrimitiveKind, "expected an enum string, got %s", describe(v))
		}
		if !slices.ContainsFunc(d.Values, func(e schema.EnumValueSchema) bool { return e.Value == s }) {
			return ir.ExampleNode{}, mismatch(path, NotAnEnumValue, "%q", s)
		}
		raw, _ := json.Marshal(s)
		return ir.ExampleNode{Kind: ir.ExampleEnum, TypeID: id, Value: raw}, nil
	case schema.DeclarationObject:
		m, ok := asMap(v)
		if !ok {
			return ir.ExampleNode{}, mismatch(path, WrongShape, "expected an object, got %s", describe(v))
		}
		props, err := r.objectProperties(decl, nil)
		if err != nil {
			return ir.ExampleNode{}, err
		}
		out, err := r.properties(path, m, props, nil)
		if err != nil {
			return ir.ExampleNode{}, err
		}
		return ir.ExampleNode{Kind: ir.ExampleObject, TypeID: id, Properties: out}, nil
	case schema.DeclarationUnion:
		return r.union(path, v, decl)
	case schema.DeclarationUndiscriminatedUnion:
		next, err := seen.enter(path, id)
		if err != nil {
			return ir.ExampleNode{}, err
		}
		for i, member := range d.Members {
			ref, err := decl.Context.ParseTypeReference(member.Type)
			if err != nil {
				return ir.ExampleNode{}, err
			}
			inner, err := r.reference(path, v, ref, next)
			if err != nil {
				continue
			}
			idx := i
			return ir.ExampleNode{Kind: ir.ExampleUndiscriminatedUnion, TypeID: id, MemberIndex: &idx, Inner: &inner}, nil
		}
		return ir.ExampleNode{}, mismatch(path, NoMatchingMember, "%d members tried", len(d.Members))
	default:
		return ir.ExampleNode{}, fmt.Errorf("%s: unsupported declaration kind %q", path, d.Kind)
	}
}

func (r *ExampleResolver) union(path string, v any, decl ResolvedType) (ir.ExampleNode, error) {
	d := decl.Declaration
	m, ok := asMap(v)
	if !ok {
		return ir.ExampleNode{}, mismatch(path, WrongShape, "expected an object, got %s", describe(v))
	}
	rawDisc, present := m[d.Discriminant]
	if !present {
		return ir.ExampleNode{}, mismatch(path+"."+d.Discriminant, MissingRequiredField, "discriminant")
	}
	disc, ok := rawDisc.(string)
	if !ok {
		return ir.ExampleNode{}, mismatch(path+"."+d.Discriminant, WrongPrimitiveKind, "discriminant must be a string")
	}
	variant, ok := d.Variants.Get(disc)
	if !ok {
		return ir.ExampleNode{}, mismatch(path+"."+d.Discriminant, UnknownDiscriminant, "%q", disc)
	}

	base, err := r.extendedProperties(decl, d.Extends, nil)
	if err != nil {
		return ir.ExampleNode{}, err
	}
	for name, p := range d.BaseProperties.All() {
		base = append(base, property{wireKey: name, typ: p.Type, owner: decl})
	}
	reserved := map[string]bool{d.Discriminant: true}
	node := ir.ExampleNode{Kind: ir.ExampleUnion, TypeID: decl.Name.TypeID, Discriminant: disc}

	switch {
	case variant.Type == "":
	case variant.Key != "":
		reserved[variant.Key] = true
		ref, err := decl.Context.ParseTypeReference(variant.Type)
		if err != nil {
			return ir.ExampleNode{}, err
		}
		inner, err := r.reference(path+"."+variant.Key, m[variant.Key], ref, nil)
		if err != nil {
			return ir.ExampleNode{}, err
		}
		node.Inner = &inner
	default:
		target, err := r.types.ResolveType(variant.Type, decl.Context)
		if err != nil {
			return ir.ExampleNode{}, err
		}
		if target.Declaration.Kind != schema.DeclarationObject {
			return ir.ExampleNode{}, fmt.Errorf("%s: union variant %q is not an object", path, disc)
		}
		extra, err := r.objectProperties(target, nil)
		if err != nil {
			return ir.ExampleNode{}, err
		}
		base = append(base, extra...)
	}

	props, err := r.properties(path, m, base, reserved)
	if err != nil {
		return ir.ExampleNode{}, err
	}
	node.Properties = props
	return node, nil
}

// property is an object property still to be checked. Declared
// properties carry their type expression and owner; inline ones carry an
// already parsed ref.
type property struct {
	wireKey string
	typ     string
	owner   ResolvedType
	ref     *ir.TypeReference
}

// objectProperties lists the properties of an object type, inherited ones
// first. seen guards against extends cycles.
func (r *ExampleResolver) objectProperties(decl ResolvedType, seen map[ir.TypeID]bool) ([]property, error) {
	if seen == nil {
		seen = make(map[ir.TypeID]bool)
	}
	if seen[decl.Name.TypeID] {
		return nil, fmt.Errorf("%s: extends cycle through %s", decl.File, decl.Name.TypeID)
	}
	seen[decl.Name.TypeID] = true
	props, err := r.extendedProperties(decl, decl.Declaration.Extends, seen)
	if err != nil {
		return nil, err
	}
	for name, p := range decl.Declaration.Properties.All() {
		props = append(props, property{wireKey: name, typ: p.Type, owner: decl})
	}
	return props, nil
}

func (r *ExampleResolver) extendedProperties(decl ResolvedType, extends []string, seen map[ir.TypeID]bool) ([]property, error) {
	var props []property
	for _, parent := range extends {
		p, err := r.types.ResolveType(parent, decl.Context)
		if err != nil {
			return nil, err
		}
		if p.Declaration.Kind != schema.DeclarationObject {
			return nil, fmt.Errorf("%s: %s extends non-object %s", decl.File, decl.Name.TypeID, p.Name.TypeID)
		}
		inherited, err := r.objectProperties(p, seen)
		if err != nil {
			return nil, err
		}
		props = append(props, inherited...)
	}
	return props, nil
}

func (r *ExampleResolver) properties(path string, m map[string]any, props []property, reserved map[string]bool) ([]ir.ExampleProperty, error) {
	known := make(map[string]bool, len(props))
	out := make([]ir.ExampleProperty, 0, len(props))
	for _, p := range props {
		known[p.wireKey] = true
		var ref ir.TypeReference
		if p.ref != nil {
			ref = *p.ref
		} else {
			parsed, err := p.owner.Context.ParseTypeReference(p.typ)
			if err != nil {
				return nil, err
			}
			ref = parsed
		}
		childPath := path + "." + p.wireKey
		value, present := m[p.wireKey]
		if !present {
			if ref.IsOptional() {
				continue
			}
			return nil, mismatch(childPath, MissingRequiredField, "")
		}
		node, err := r.reference(childPath, value, ref, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, ir.ExampleProperty{WireKey: p.wireKey, Value: node, OriginalTypeID: p.owner.Name.TypeID})
	}
	for _, k := range sortedKeys(m) {
		if !known[k] && !reserved[k] {
			return nil, mismatch(path+"."+k, UnexpectedProperty, "")
		}
	}
	return out, nil
}

func primitiveExample(path string, v any, p ir.PrimitiveType) (ir.ExampleNode, error) {
	wrong := func(want string) error {
		return mismatch(path, WrongPrimitiveKind, "expected %s, got %s", want, describe(v))
	}
	switch p {
	case ir.PrimitiveString:
		if _, ok := v.(string); !ok {
			return ir.ExampleNode{}, wrong("a string")
		}
	case ir.PrimitiveInteger, ir.PrimitiveLong:
		n, ok := asInteger(v)
		if !ok {
			return ir.ExampleNode{}, wrong("an integer")
		}
		if p == ir.PrimitiveInteger && (n < math.MinInt32 || n > math.MaxInt32) {
			return ir.ExampleNode{}, mismatch(path, InvalidFormat, "%d overflows a 32-bit integer", n)
		}
	case ir.PrimitiveDouble:
		if _, ok := asFloat(v); !ok {
			return ir.ExampleNode{}, wrong("a number")
		}
	case ir.PrimitiveBoolean:
		if _, ok := v.(bool); !ok {
			return ir.ExampleNode{}, wrong("a boolean")
		}
	case ir.PrimitiveDateTime, ir.PrimitiveDate, ir.PrimitiveUUID, ir.PrimitiveBase64:
		s, ok := v.(string)
		if !ok {
			return ir.ExampleNode{}, wrong("a string")
		}
		if err := checkFormat(p, s); err != nil {
			return ir.ExampleNode{}, mismatch(path, InvalidFormat, "%v", err)
		}
	default:
		return ir.ExampleNode{}, fmt.Errorf("%s: unsupported primitive %q", path, p)
	}
	raw, err := rawJSON(path, v)
	if err != nil {
		return ir.ExampleNode{}, err
	}
	return ir.ExampleNode{Kind: ir.ExamplePrimitive, Primitive: p, Value: raw}, nil
}

func checkFormat(p ir.PrimitiveType, s string) error {
	var err error
	switch p {
	case ir.PrimitiveDateTime:
		_, err = time.Parse(time.RFC3339, s)
	case ir.PrimitiveDate:
		_, err = time.Parse(time.DateOnly, s)
	case ir.PrimitiveUUID:
		_, err = uuid.Parse(s)
	case ir.PrimitiveBase64:
		_, err = base64.StdEncoding.DecodeString(s)
	}
	return err
}

func literalExample(path string, v any, lit *ir.Literal) (ir.ExampleNode, error) {
	switch {
	case lit.String != nil:
		if s, ok := v.(string); !ok || s != *lit.String {
			return ir.ExampleNode{}, mismatch(path, LiteralMismatch, "expected %q", *lit.String)
		}
	case lit.Boolean != nil:
		if b, ok := v.(bool); !ok || b != *lit.Boolean {
			return ir.ExampleNode{}, mismatch(path, LiteralMismatch, "expected %t", *lit.Boolean)
		}
	}
	raw, err := rawJSON(path, v)
	if err != nil {
		return ir.ExampleNode{}, err
	}
	return ir.ExampleNode{Kind: ir.ExampleLiteral, Value: raw}, nil
}

// mapKey converts a map key to the value its key type expects; YAML keys
// always arrive as strings.
func mapKey(k string, keyType ir.TypeReference) any {
	if keyType.Kind != ir.TypeReferencePrimitive {
		return k
	}
	switch keyType.Primitive {
	case ir.PrimitiveInteger, ir.PrimitiveLong:
		if n, err := strconv.ParseInt(k, 10, 64); err == nil {
			return n
		}
	case ir.PrimitiveDouble:
		if f, err := strconv.ParseFloat(k, 64); err == nil {
			return f
		}
	case ir.PrimitiveBoolean:
		if b, err := strconv.ParseBool(k); err == nil {
			return b
		}
	}
	return k
}

func rawJSON(path string, v any) (json.RawMessage, error) {
	value, err := ir.ValueFrom(v)
	if err != nil {
		return nil, mismatch(path, WrongShape, "%v", err)
	}
	b, err := ir.MarshalCanonical(value)
	if err != nil {
		return nil, mismatch(path, WrongShape, "%v", err)
	}
	return b, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func asInteger(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	default:
		return 0, false
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case int, int64, uint64, float64:
		return "a number"
	case []any:
		return "a list"
	case map[string]any, map[any]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
