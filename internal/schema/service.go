package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ServiceSchema is the service block of a definition file.
type ServiceSchema struct {
	Auth           bool                            `yaml:"auth"`
	BasePath       string                          `yaml:"base-path"`
	DisplayName    string                          `yaml:"display-name"`
	Docs           string                          `yaml:"docs"`
	Audiences      StringList                      `yaml:"audiences"`
	Headers        OrderedMap[TypeReferenceSchema] `yaml:"headers"`
	PathParameters OrderedMap[TypeReferenceSchema] `yaml:"path-parameters"`
	Endpoints      OrderedMap[EndpointSchema]      `yaml:"endpoints"`
}

// EndpointSchema is one endpoint of a service.
type EndpointSchema struct {
	Path           string                          `yaml:"path"`
	Method         string                          `yaml:"method"`
	DisplayName    string                          `yaml:"display-name"`
	Docs           string                          `yaml:"docs"`
	Auth           *bool                           `yaml:"auth"`
	Audiences      StringList                      `yaml:"audiences"`
	PathParameters OrderedMap[TypeReferenceSchema] `yaml:"path-parameters"`
	Request        *RequestSchema                  `yaml:"request"`
	Response       *ResponseSchema                 `yaml:"response"`
	ResponseStream *ResponseStreamSchema           `yaml:"response-stream"`
	Errors         []string                        `yaml:"errors"`
	Examples       []EndpointExampleSchema         `yaml:"examples"`
}

// EndpointExampleSchema is an example call of an endpoint. Values are
// untyped until they are checked against the endpoint.
type EndpointExampleSchema struct {
	Name            string                         `yaml:"name"`
	Docs            string                         `yaml:"docs"`
	PathParameters  map[string]any                 `yaml:"path-parameters"`
	QueryParameters map[string]any                 `yaml:"query-parameters"`
	Headers         map[string]any                 `yaml:"headers"`
	Request         any                            `yaml:"request"`
	Response        *EndpointExampleResponseSchema `yaml:"response"`
}

// EndpointExampleResponseSchema is the response half of an example. Error
// names one of the endpoint's errors; without it the body is a success.
type EndpointExampleResponseSchema struct {
	Error string `yaml:"error"`
	Body  any    `yaml:"body"`
}

// RequestSchema is an endpoint request. A scalar is shorthand for a body
// type reference.
type RequestSchema struct {
	Name            string                          `yaml:"name"`
	Body            *RequestBodySchema              `yaml:"body"`
	QueryParameters OrderedMap[TypeReferenceSchema] `yaml:"query-parameters"`
	Headers         OrderedMap[TypeReferenceSchema] `yaml:"headers"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *RequestSchema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*r = RequestSchema{Body: &RequestBodySchema{Kind: BodyReference, Type: node.Value}}
		return nil
	}
	type plain RequestSchema
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = RequestSchema(p)
	return nil
}

// RequestBodyKind distinguishes the written forms of a request body.
type RequestBodyKind string

const (
	BodyReference RequestBodyKind = "reference"
	BodyInlined   RequestBodyKind = "inlined"
	BodyFile      RequestBodyKind = "fileUpload"
)

// RequestBodySchema is a request body: a type reference (scalar or
// {type, docs}) or an inline object ({properties, extends}). A reference
// to the type "file" or an inline object with a file-typed property is a
// file upload.
type RequestBodySchema struct {
	Kind       RequestBodyKind
	Type       string
	Docs       string
	Extends    StringList
	Properties OrderedMap[TypeReferenceSchema]
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *RequestBodySchema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*b = RequestBodySchema{Kind: BodyReference, Type: node.Value}
		b.classify()
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: request body must be a type or a mapping, got %s", node.Line, kindName(node))
	}
	var raw struct {
		Type       string                          `yaml:"type"`
		Docs       string                          `yaml:"docs"`
		Extends    StringList                      `yaml:"extends"`
		Properties OrderedMap[TypeReferenceSchema] `yaml:"properties"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Type != "" && (raw.Properties.Len() > 0 || len(raw.Extends) > 0) {
		return fmt.Errorf("line %d: request body cannot set both type and properties", node.Line)
	}
	if raw.Type != "" {
		*b = RequestBodySchema{Kind: BodyReference, Type: raw.Type, Docs: raw.Docs}
	} else {
		*b = RequestBodySchema{Kind: BodyInlined, Docs: raw.Docs, Extends: raw.Extends, Properties: raw.Properties}
	}
	b.classify()
	return nil
}

func (b *RequestBodySchema) classify() {
	switch b.Kind {
	case BodyReference:
		if b.Type == "file" {
			b.Kind = BodyFile
		}
	case BodyInlined:
		for _, p := range b.Properties.All() {
			if IsFileType(p.Type) {
				b.Kind = BodyFile
				return
			}
		}
	}
}

// IsFileType reports whether typ names an uploaded file.
func IsFileType(typ string) bool {
	return typ == "file" || typ == "optional<file>"
}

// ResponseKind distinguishes response encodings.
type ResponseKind string

const (
	ResponseJSON ResponseKind = "json"
	ResponseFile ResponseKind = "fileDownload"
	ResponseText ResponseKind = "text"
)

// ResponseSchema is an endpoint response: a type or {type, docs}. The
// types "file" and "text" select download and plain-text responses.
type ResponseSchema struct {
	Kind ResponseKind
	Type string
	Docs string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *ResponseSchema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Type = node.Value
	} else {
		var raw struct {
			Type string `yaml:"type"`
			Docs string `yaml:"docs"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		r.Type, r.Docs = raw.Type, raw.Docs
	}
	switch r.Type {
	case "":
		return fmt.Errorf("line %d: response type is required", node.Line)
	case "file":
		r.Kind = ResponseFile
	case "text":
		r.Kind = ResponseText
	default:
		r.Kind = ResponseJSON
	}
	return nil
}

// ResponseStreamSchema is a streaming response.
type ResponseStreamSchema struct {
	Type       string `yaml:"type"`
	Terminator string `yaml:"terminator"`
	Docs       string `yaml:"docs"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *ResponseStreamSchema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.Type = node.Value
		return nil
	}
	type plain ResponseStreamSchema
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = ResponseStreamSchema(p)
	return nil
}
