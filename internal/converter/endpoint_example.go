package converter

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/resolver"
	"github.com/roach88/apigraph/internal/schema"
)

// examples converts the example calls of an endpoint. Examples that do not
// fit the endpoint are dropped with a warning; unresolvable error names
// abort the conversion.
func (ec *endpointConverter) examples(name string, ep schema.EndpointSchema, endpoint *ir.HTTPEndpoint) ([]Warning, error) {
	var warnings []Warning
	for i, ex := range ep.Examples {
		call, err := ec.example(ex, endpoint)
		if err != nil {
			if !errors.Is(err, resolver.ErrExampleMismatch) {
				return nil, fmt.Errorf("%s: endpoint %s example %d: %w", ec.c, name, i, err)
			}
			warnings = append(warnings, Warning{
				File:        ec.c.String(),
				Declaration: name,
				Message:     fmt.Sprintf("dropped example %d: %v", i, err),
			})
			continue
		}
		endpoint.Examples = append(endpoint.Examples, call)
	}
	return warnings, nil
}

func (ec *endpointConverter) example(ex schema.EndpointExampleSchema, endpoint *ir.HTTPEndpoint) (ir.ExampleEndpointCall, error) {
	r := ec.r.Examples
	call := ir.ExampleEndpointCall{Name: ex.Name, Docs: ex.Docs}

	pathParams := make([]namedType, 0, len(endpoint.AllPathParameters))
	for _, p := range endpoint.AllPathParameters {
		// A variable supplies the value when the example leaves it out.
		pathParams = append(pathParams, namedType{key: p.Name.OriginalName, typ: p.ValueType, optional: p.Variable != nil})
	}
	var err error
	if call.PathParameters, err = namedValues(r, "$.path-parameters", ex.PathParameters, pathParams); err != nil {
		return ir.ExampleEndpointCall{}, err
	}

	query := make([]namedType, 0, len(endpoint.QueryParameters))
	for _, q := range endpoint.QueryParameters {
		query = append(query, namedType{key: q.Name.WireValue, typ: q.ValueType, multiple: q.AllowMultiple})
	}
	if call.QueryParameters, err = namedValues(r, "$.query-parameters", ex.QueryParameters, query); err != nil {
		return ir.ExampleEndpointCall{}, err
	}

	// The most specific declaration of a header wins.
	var headers []namedType
	seen := make(map[string]bool)
	for _, h := range slices.Concat(endpoint.Headers, ec.service.Headers, ec.root.Headers) {
		if seen[h.Name.WireValue] {
			continue
		}
		seen[h.Name.WireValue] = true
		headers = append(headers, namedType{key: h.Name.WireValue, typ: h.ValueType})
	}
	if call.Headers, err = namedValues(r, "$.headers", ex.Headers, headers); err != nil {
		return ir.ExampleEndpointCall{}, err
	}

	if ex.Request != nil {
		node, err := ec.exampleRequest(ex.Request, endpoint.RequestBody)
		if err != nil {
			return ir.ExampleEndpointCall{}, err
		}
		call.Request = &node
	}

	call.Response = ir.ExampleResponse{Kind: ir.ExampleResponseOK}
	if ex.Response != nil {
		if call.Response, err = ec.exampleResponse(ex.Response, endpoint); err != nil {
			return ir.ExampleEndpointCall{}, err
		}
	}

	value, err := ir.ValueFrom(examplePayload(ex))
	if err != nil {
		return ir.ExampleEndpointCall{}, exampleMismatch("$", resolver.WrongShape, "%v", err)
	}
	if call.ID, err = ir.EndpointExampleID(endpoint.ID, value); err != nil {
		return ir.ExampleEndpointCall{}, err
	}
	return call, nil
}

func (ec *endpointConverter) exampleRequest(v any, body *ir.HTTPRequestBody) (ir.ExampleNode, error) {
	const path = "$.request"
	if body == nil {
		return ir.ExampleNode{}, exampleMismatch(path, resolver.UnexpectedProperty, "endpoint takes no request body")
	}
	switch body.Kind {
	case ir.RequestBodyReference:
		return ec.r.Examples.ResolveReferenceAt(path, v, body.Reference.RequestBodyType)
	case ir.RequestBodyInlined:
		extends := make([]ir.TypeID, 0, len(body.Inlined.Extends))
		for _, e := range body.Inlined.Extends {
			extends = append(extends, e.TypeID)
		}
		return ec.r.Examples.ResolveObject(path, v, extends, body.Inlined.Properties)
	default:
		return ir.ExampleNode{}, exampleMismatch(path, resolver.WrongShape, "%s requests have no example body", body.Kind)
	}
}

func (ec *endpointConverter) exampleResponse(resp *schema.EndpointExampleResponseSchema, endpoint *ir.HTTPEndpoint) (ir.ExampleResponse, error) {
	const path = "$.response.body"
	if resp.Error != "" {
		resolved, err := ec.r.Errors.ResolveError(resp.Error, ec.c)
		if err != nil {
			return ir.ExampleResponse{}, err
		}
		declared := slices.ContainsFunc(endpoint.Errors, func(e ir.ResponseError) bool {
			return e.Error.ErrorID == resolved.Name.ErrorID
		})
		if !declared {
			return ir.ExampleResponse{}, exampleMismatch("$.response.error", resolver.UnexpectedProperty, "%s is not an error of this endpoint", resolved.Name.ErrorID)
		}
		errName := resolved.Name
		out := ir.ExampleResponse{Kind: ir.ExampleResponseError, Error: &errName}
		if resp.Body == nil {
			return out, nil
		}
		if resolved.Declaration.Type == "" {
			return ir.ExampleResponse{}, exampleMismatch(path, resolver.UnexpectedProperty, "%s has no body", resolved.Name.ErrorID)
		}
		typ, err := resolved.Context.ParseTypeReference(resolved.Declaration.Type)
		if err != nil {
			return ir.ExampleResponse{}, err
		}
		node, err := ec.r.Examples.ResolveReferenceAt(path, resp.Body, typ)
		if err != nil {
			return ir.ExampleResponse{}, err
		}
		out.Body = &node
		return out, nil
	}

	out := ir.ExampleResponse{Kind: ir.ExampleResponseOK}
	if resp.Body == nil {
		return out, nil
	}
	var typ ir.TypeReference
	switch r := endpoint.Response; {
	case r == nil:
		return ir.ExampleResponse{}, exampleMismatch(path, resolver.UnexpectedProperty, "endpoint returns no body")
	case r.Kind == ir.ResponseJSON:
		typ = r.JSON.ResponseBodyType
	case r.Kind == ir.ResponseStreaming:
		typ = r.Streaming.DataEventType
	case r.Kind == ir.ResponseText:
		typ = ir.Primitive(ir.PrimitiveString)
	default:
		return ir.ExampleResponse{}, exampleMismatch(path, resolver.WrongShape, "%s responses have no example body", r.Kind)
	}
	node, err := ec.r.Examples.ResolveReferenceAt(path, resp.Body, typ)
	if err != nil {
		return ir.ExampleResponse{}, err
	}
	out.Body = &node
	return out, nil
}

type namedType struct {
	key      string
	typ      ir.TypeReference
	optional bool
	multiple bool
}

// namedValues checks a parameter or header map against the declared
// names and returns the values in declaration order.
func namedValues(r *resolver.ExampleResolver, path string, values map[string]any, declared []namedType) ([]ir.ExampleNamedValue, error) {
	out := []ir.ExampleNamedValue{}
	known := make(map[string]bool, len(declared))
	for _, d := range declared {
		known[d.key] = true
		childPath := path + "." + d.key
		v, ok := values[d.key]
		if !ok {
			if d.optional || d.typ.IsOptional() {
				continue
			}
			return nil, exampleMismatch(childPath, resolver.MissingRequiredField, "")
		}
		typ := d.typ
		if _, isList := v.([]any); isList && d.multiple {
			typ = ir.List(typ)
		}
		node, err := r.ResolveReferenceAt(childPath, v, typ)
		if err != nil {
			return nil, err
		}
		out = append(out, ir.ExampleNamedValue{WireKey: d.key, Value: node})
	}
	for _, k := range slices.Sorted(maps.Keys(values)) {
		if !known[k] {
			return nil, exampleMismatch(path+"."+k, resolver.UnexpectedProperty, "")
		}
	}
	return out, nil
}

// examplePayload is the part of an example that identifies it. Name and
// docs are left out so renaming an example keeps its id.
func examplePayload(ex schema.EndpointExampleSchema) map[string]any {
	out := make(map[string]any)
	for key, v := range map[string]map[string]any{
		"path-parameters":  ex.PathParameters,
		"query-parameters": ex.QueryParameters,
		"headers":          ex.Headers,
	} {
		if len(v) > 0 {
			out[key] = v
		}
	}
	if ex.Request != nil {
		out["request"] = ex.Request
	}
	if resp := ex.Response; resp != nil {
		r := make(map[string]any)
		if resp.Error != "" {
			r["error"] = resp.Error
		}
		if resp.Body != nil {
			r["body"] = resp.Body
		}
		out["response"] = r
	}
	return out
}

func exampleMismatch(path string, kind resolver.MismatchKind, format string, args ...any) *resolver.ExampleMismatchError {
	return &resolver.ExampleMismatchError{Path: path, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
