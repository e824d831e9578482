package ir

// HTTPMethod is an endpoint's HTTP verb.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodPatch  HTTPMethod = "PATCH"
	MethodDelete HTTPMethod = "DELETE"
)

// HTTPPath is a path template split at its parameters:
// "/users/{id}/posts" => Head "/users/", Parts [{id, "/posts"}].
type HTTPPath struct {
	Head  string         `json:"head"`
	Parts []HTTPPathPart `json:"parts"`
}

// HTTPPathPart is a path parameter followed by literal text.
type HTTPPathPart struct {
	PathParameter string `json:"path_parameter"`
	Tail          string `json:"tail"`
}

// PathParameterLocation records where a path parameter was declared.
type PathParameterLocation string

const (
	PathParameterRoot     PathParameterLocation = "ROOT"
	PathParameterService  PathParameterLocation = "SERVICE"
	PathParameterEndpoint PathParameterLocation = "ENDPOINT"
)

// PathParameter is a templated segment of an endpoint path.
type PathParameter struct {
	Name      Name                  `json:"name"`
	ValueType TypeReference         `json:"value_type"`
	Location  PathParameterLocation `json:"location"`
	Variable  *VariableID           `json:"variable,omitempty"`
	Docs      string                `json:"docs,omitempty"`
}

// QueryParameter is a query-string parameter.
type QueryParameter struct {
	Name          NameAndWireValue `json:"name"`
	ValueType     TypeReference    `json:"value_type"`
	AllowMultiple bool             `json:"allow_multiple"`
	Docs          string           `json:"docs,omitempty"`
}

// HTTPHeader is a request header.
type HTTPHeader struct {
	Name      NameAndWireValue `json:"name"`
	ValueType TypeReference    `json:"value_type"`
	Docs      string           `json:"docs,omitempty"`
}

// RequestBodyKind discriminates HTTPRequestBody.
type RequestBodyKind string

const (
	RequestBodyInlined    RequestBodyKind = "inlinedRequestBody"
	RequestBodyReference  RequestBodyKind = "reference"
	RequestBodyFileUpload RequestBodyKind = "fileUpload"
)

// HTTPRequestBody is an endpoint's request payload.
type HTTPRequestBody struct {
	Kind       RequestBodyKind           `json:"type"`
	Inlined    *InlinedRequestBody       `json:"inlined_request_body,omitempty"`
	Reference  *HTTPRequestBodyReference `json:"reference,omitempty"`
	FileUpload *FileUploadRequest        `json:"file_upload,omitempty"`
}

// InlinedRequestBody is a request object declared in place.
type InlinedRequestBody struct {
	Name       Name               `json:"name"`
	Extends    []DeclaredTypeName `json:"extends"`
	Properties []ObjectProperty   `json:"properties"`
}

// HTTPRequestBodyReference is a request body of an existing type.
type HTTPRequestBodyReference struct {
	RequestBodyType TypeReference `json:"request_body_type"`
	Docs            string        `json:"docs,omitempty"`
}

// FileUploadRequest is a multipart body with at least one file property.
type FileUploadRequest struct {
	Name       Name                 `json:"name"`
	Properties []FileUploadProperty `json:"properties"`
}

// FileUploadProperty is either a file part or a typed body part.
type FileUploadProperty struct {
	Key        NameAndWireValue `json:"key"`
	IsFile     bool             `json:"is_file"`
	IsOptional bool             `json:"is_optional"`
	ValueType  *TypeReference   `json:"value_type,omitempty"`
}

// ResponseKind discriminates HTTPResponse.
type ResponseKind string

const (
	ResponseJSON         ResponseKind = "json"
	ResponseFileDownload ResponseKind = "fileDownload"
	ResponseText         ResponseKind = "text"
	ResponseStreaming    ResponseKind = "streaming"
)

// HTTPResponse is an endpoint's successful response.
type HTTPResponse struct {
	Kind      ResponseKind       `json:"type"`
	JSON      *JSONResponse      `json:"json,omitempty"`
	Streaming *StreamingResponse `json:"streaming,omitempty"`
	Docs      string             `json:"docs,omitempty"`
}

// JSONResponse is a JSON body of a declared type.
type JSONResponse struct {
	ResponseBodyType TypeReference `json:"response_body_type"`
}

// StreamingResponse is a stream of JSON events.
type StreamingResponse struct {
	DataEventType TypeReference `json:"data_event_type"`
	Terminator    string        `json:"terminator,omitempty"`
}

// ResponseError is an error an endpoint may return.
type ResponseError struct {
	Error DeclaredErrorName `json:"error"`
	Docs  string            `json:"docs,omitempty"`
}

// HTTPEndpoint is one operation of a service.
type HTTPEndpoint struct {
	ID                EndpointID            `json:"id"`
	Name              Name                  `json:"name"`
	DisplayName       string                `json:"display_name,omitempty"`
	Method            HTTPMethod            `json:"method"`
	Path              HTTPPath              `json:"path"`
	FullPath          HTTPPath              `json:"full_path"`
	PathParameters    []PathParameter       `json:"path_parameters"`
	AllPathParameters []PathParameter       `json:"all_path_parameters"`
	QueryParameters   []QueryParameter      `json:"query_parameters"`
	Headers           []HTTPHeader          `json:"headers"`
	RequestBody       *HTTPRequestBody      `json:"request_body,omitempty"`
	Response          *HTTPResponse         `json:"response,omitempty"`
	Errors            []ResponseError       `json:"errors"`
	Auth              bool                  `json:"auth"`
	Examples          []ExampleEndpointCall `json:"examples"`
	Docs              string                `json:"docs,omitempty"`
}

// HTTPService groups the endpoints declared in one file.
type HTTPService struct {
	Name           DeclaredServiceName `json:"name"`
	DisplayName    string              `json:"display_name,omitempty"`
	BasePath       HTTPPath            `json:"base_path"`
	Headers        []HTTPHeader        `json:"headers"`
	PathParameters []PathParameter     `json:"path_parameters"`
	Endpoints      []HTTPEndpoint      `json:"endpoints"`
}
