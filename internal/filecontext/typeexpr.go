package filecontext

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/apigraph/internal/ir"
)

// ErrInvalidTypeExpression means a type expression does not parse.
var ErrInvalidTypeExpression = errors.New("invalid type expression")

var primitives = map[string]ir.PrimitiveType{
	"string":   ir.PrimitiveString,
	"integer":  ir.PrimitiveInteger,
	"long":     ir.PrimitiveLong,
	"double":   ir.PrimitiveDouble,
	"boolean":  ir.PrimitiveBoolean,
	"datetime": ir.PrimitiveDateTime,
	"date":     ir.PrimitiveDate,
	"uuid":     ir.PrimitiveUUID,
	"base64":   ir.PrimitiveBase64,
}

// ParseTypeReference turns a type expression into a structured reference.
//
//	string | integer | long | double | boolean | datetime | date | uuid | base64
//	unknown
//	optional<T> | list<T> | set<T> | map<K, V>
//	literal<"value"> | literal<true> | literal<false>
//	Name | alias.Name
func (c *Context) ParseTypeReference(raw string) (ir.TypeReference, error) {
	ref, err := c.parse(strings.TrimSpace(raw))
	if err != nil {
		return ir.TypeReference{}, fmt.Errorf("%s: %q: %w", c, raw, err)
	}
	return ref, nil
}

func (c *Context) parse(expr string) (ir.TypeReference, error) {
	if expr == "" {
		return ir.TypeReference{}, fmt.Errorf("%w: empty", ErrInvalidTypeExpression)
	}
	if p, ok := primitives[expr]; ok {
		return ir.Primitive(p), nil
	}
	if expr == "unknown" {
		return ir.Unknown(), nil
	}
	if head, body, ok := generic(expr); ok {
		return c.parseGeneric(head, body)
	}
	if strings.ContainsAny(expr, "<>, ") {
		return ir.TypeReference{}, fmt.Errorf("%w: unexpected characters", ErrInvalidTypeExpression)
	}
	ref, err := c.Resolve(expr)
	if err != nil {
		return ir.TypeReference{}, err
	}
	if c.Types == nil {
		return ir.TypeReference{}, fmt.Errorf("no type resolver for named reference %q", expr)
	}
	name, err := c.Types.ResolveTypeName(ref, c)
	if err != nil {
		return ir.TypeReference{}, err
	}
	return ir.Named(name), nil
}

func (c *Context) parseGeneric(head, body string) (ir.TypeReference, error) {
	switch head {
	case "optional", "list", "set":
		item, err := c.parse(strings.TrimSpace(body))
		if err != nil {
			return ir.TypeReference{}, err
		}
		switch head {
		case "optional":
			return ir.Optional(item), nil
		case "list":
			return ir.List(item), nil
		default:
			return ir.Set(item), nil
		}
	case "map":
		k, v, ok := splitTopLevel(body)
		if !ok {
			return ir.TypeReference{}, fmt.Errorf("%w: map needs a key and a value type", ErrInvalidTypeExpression)
		}
		key, err := c.parse(k)
		if err != nil {
			return ir.TypeReference{}, err
		}
		value, err := c.parse(v)
		if err != nil {
			return ir.TypeReference{}, err
		}
		return ir.Map(key, value), nil
	case "literal":
		return parseLiteral(strings.TrimSpace(body))
	default:
		return ir.TypeReference{}, fmt.Errorf("%w: unknown container %q", ErrInvalidTypeExpression, head)
	}
}

func parseLiteral(body string) (ir.TypeReference, error) {
	switch body {
	case "true":
		return ir.BooleanLiteral(true), nil
	case "false":
		return ir.BooleanLiteral(false), nil
	}
	s, err := strconv.Unquote(body)
	if err != nil || !strings.HasPrefix(body, `"`) {
		return ir.TypeReference{}, fmt.Errorf("%w: literal must be a quoted string or a boolean", ErrInvalidTypeExpression)
	}
	return ir.StringLiteral(s), nil
}

// generic splits "head<body>" when the outer brackets match.
func generic(expr string) (head, body string, ok bool) {
	open := strings.IndexByte(expr, '<')
	if open <= 0 || !strings.HasSuffix(expr, ">") {
		return "", "", false
	}
	body = expr[open+1 : len(expr)-1]
	depth := 0
	inQuote := false
	for _, r := range body {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '<':
			depth++
		case r == '>':
			depth--
			if depth < 0 {
				return "", "", false
			}
		}
	}
	if depth != 0 || inQuote {
		return "", "", false
	}
	return strings.TrimSpace(expr[:open]), body, true
}

// splitTopLevel splits "K, V" at the comma outside any brackets.
func splitTopLevel(body string) (string, string, bool) {
	depth := 0
	inQuote := false
	for i, r := range body {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '<':
			depth++
		case r == '>':
			depth--
		case r == ',' && depth == 0:
			return strings.TrimSpace(body[:i]), strings.TrimSpace(body[i+1:]), true
		}
	}
	return "", "", false
}
