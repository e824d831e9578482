package converter

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/apigraph/internal/filecontext"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/resolver"
	"github.com/roach88/apigraph/internal/schema"
)

// ConvertedService is a converted service with the edges and audience
// tags the graph needs.
type ConvertedService struct {
	Service   ir.HTTPService
	Audiences []string
	Endpoints []ConvertedEndpoint
	Warnings  []Warning
}

// ConvertedEndpoint carries the outgoing edges of one endpoint. Audiences
// is the endpoint's own tag; nil means it inherits the service's.
type ConvertedEndpoint struct {
	ID               ir.EndpointID
	ReferencedTypes  []ir.TypeID
	ReferencedErrors []ir.ErrorID
	Audiences        []string
}

// RootParts are the converted root-level pieces every service inherits.
type RootParts struct {
	BasePath       string
	PathParameters []ir.PathParameter
	Headers        []ir.HTTPHeader
	GlobalErrors   []resolver.ResolvedError
}

// ConvertHTTPService converts the service block of the file behind c.
func ConvertHTTPService(svc schema.ServiceSchema, c *filecontext.Context, r *resolver.Resolvers, root RootParts) (ConvertedService, error) {
	file := c.String()
	basePath, err := ConstructHTTPPath(svc.BasePath)
	if err != nil {
		return ConvertedService{}, structural(file, "service", "%v", err)
	}
	headers, err := ConvertHeaders(svc.Headers, c)
	if err != nil {
		return ConvertedService{}, err
	}
	pathParams, err := ConvertPathParameters(svc.PathParameters, ir.PathParameterService, c, r)
	if err != nil {
		return ConvertedService{}, err
	}
	if err := CheckPathParameters(file, "service base-path", basePath, pathParams); err != nil {
		return ConvertedService{}, err
	}

	out := ConvertedService{
		Service: ir.HTTPService{
			Name:           ir.DeclaredServiceName{ServiceID: ir.NewServiceID(c.Filepath), Filepath: c.Filepath},
			DisplayName:    svc.DisplayName,
			BasePath:       basePath,
			Headers:        headers,
			PathParameters: pathParams,
			Endpoints:      make([]ir.HTTPEndpoint, 0, svc.Endpoints.Len()),
		},
		Audiences: svc.Audiences,
	}

	shared := make(typeSet)
	for _, h := range root.Headers {
		shared.addRef(h.ValueType)
	}
	for _, h := range headers {
		shared.addRef(h.ValueType)
	}

	ec := endpointConverter{c: c, r: r, svc: &svc, root: root, service: &out.Service, shared: shared}
	for name, ep := range svc.Endpoints.All() {
		endpoint, edges, err := ec.convert(name, ep)
		if err != nil {
			return ConvertedService{}, err
		}
		warnings, err := ec.examples(name, ep, &endpoint)
		if err != nil {
			return ConvertedService{}, err
		}
		out.Service.Endpoints = append(out.Service.Endpoints, endpoint)
		out.Endpoints = append(out.Endpoints, edges)
		out.Warnings = append(out.Warnings, warnings...)
	}
	return out, nil
}

type endpointConverter struct {
	c       *filecontext.Context
	r       *resolver.Resolvers
	svc     *schema.ServiceSchema
	root    RootParts
	service *ir.HTTPService
	shared  typeSet
}

func (ec *endpointConverter) convert(name string, ep schema.EndpointSchema) (ir.HTTPEndpoint, ConvertedEndpoint, error) {
	c := ec.c
	file := c.String()
	decl := "endpoint " + name
	refs := make(typeSet)
	refs.addAll(ec.shared.sorted())

	path, err := ConstructHTTPPath(ep.Path)
	if err != nil {
		return ir.HTTPEndpoint{}, ConvertedEndpoint{}, structural(file, decl, "%v", err)
	}
	fullPath, err := ConstructHTTPPath(joinPaths(ec.root.BasePath, ec.svc.BasePath, ep.Path))
	if err != nil {
		return ir.HTTPEndpoint{}, ConvertedEndpoint{}, structural(file, decl, "%v", err)
	}
	pathParams, err := ConvertPathParameters(ep.PathParameters, ir.PathParameterEndpoint, c, ec.r)
	if err != nil {
		return ir.HTTPEndpoint{}, ConvertedEndpoint{}, err
	}
	if err := CheckPathParameters(file, decl, path, pathParams); err != nil {
		return ir.HTTPEndpoint{}, ConvertedEndpoint{}, err
	}
	all := slices.Concat(ec.root.PathParameters, ec.service.PathParameters, pathParams)
	for _, p := range all {
		refs.addRef(p.ValueType)
	}

	method := ir.HTTPMethod(ep.Method)
	switch method {
	case ir.MethodGet, ir.MethodPost, ir.MethodPut, ir.MethodPatch, ir.MethodDelete:
	default:
		return ir.HTTPEndpoint{}, ConvertedEndpoint{}, structural(file, decl, "unsupported method %q", ep.Method)
	}

	auth := ec.svc.Auth
	if ep.Auth != nil {
		auth = *ep.Auth
	}

	endpoint := ir.HTTPEndpoint{
		ID:                ir.NewEndpointID(c.Filepath, name),
		Name:              c.Casing.GenerateName(name),
		DisplayName:       ep.DisplayName,
		Method:            method,
		Path:              path,
		FullPath:          fullPath,
		PathParameters:    pathParams,
		AllPathParameters: all,
		QueryParameters:   []ir.QueryParameter{},
		Headers:           []ir.HTTPHeader{},
		Errors:            []ir.ResponseError{},
		Auth:              auth,
		Examples:          []ir.ExampleEndpointCall{},
		Docs:              ep.Docs,
	}

	if ep.Request != nil {
		if err := ec.request(name, ep.Request, &endpoint, refs); err != nil {
			return ir.HTTPEndpoint{}, ConvertedEndpoint{}, fmt.Errorf("%s: %s: %w", file, decl, err)
		}
	}
	if err := ec.response(ep, &endpoint, refs); err != nil {
		return ir.HTTPEndpoint{}, ConvertedEndpoint{}, fmt.Errorf("%s: %s: %w", file, decl, err)
	}

	errorIDs, err := ec.errors(ep, &endpoint)
	if err != nil {
		return ir.HTTPEndpoint{}, ConvertedEndpoint{}, err
	}

	edges := ConvertedEndpoint{
		ID:               endpoint.ID,
		ReferencedTypes:  refs.sorted(),
		ReferencedErrors: errorIDs,
		Audiences:        ep.Audiences,
	}
	return endpoint, edges, nil
}

func (ec *endpointConverter) request(name string, req *schema.RequestSchema, endpoint *ir.HTTPEndpoint, refs typeSet) error {
	c := ec.c
	for wire, q := range req.QueryParameters.All() {
		typ, err := c.ParseTypeReference(q.Type)
		if err != nil {
			return fmt.Errorf("query parameter %s: %w", wire, err)
		}
		refs.addRef(typ)
		endpoint.QueryParameters = append(endpoint.QueryParameters, ir.QueryParameter{
			Name:          nameAndWire(c, q.Name, wire),
			ValueType:     typ,
			AllowMultiple: q.AllowMultiple,
			Docs:          q.Docs,
		})
	}
	headers, err := ConvertHeaders(req.Headers, c)
	if err != nil {
		return err
	}
	for _, h := range headers {
		refs.addRef(h.ValueType)
	}
	endpoint.Headers = headers

	if req.Body == nil {
		return nil
	}
	requestName := req.Name
	if requestName == "" {
		requestName = c.Casing.GenerateName(name).PascalCase.UnsafeName + "Request"
	}
	body := req.Body
	switch body.Kind {
	case schema.BodyReference:
		typ, err := c.ParseTypeReference(body.Type)
		if err != nil {
			return err
		}
		refs.addRef(typ)
		endpoint.RequestBody = &ir.HTTPRequestBody{
			Kind:      ir.RequestBodyReference,
			Reference: &ir.HTTPRequestBodyReference{RequestBodyType: typ, Docs: body.Docs},
		}
	case schema.BodyInlined:
		extends, err := convertExtends(body.Extends, c, ec.r, refs)
		if err != nil {
			return err
		}
		props, err := convertProperties(body.Properties, c, refs)
		if err != nil {
			return err
		}
		endpoint.RequestBody = &ir.HTTPRequestBody{
			Kind: ir.RequestBodyInlined,
			Inlined: &ir.InlinedRequestBody{
				Name:       c.Casing.GenerateName(requestName),
				Extends:    extends,
				Properties: props,
			},
		}
	case schema.BodyFile:
		upload, err := ec.fileUpload(requestName, body, refs)
		if err != nil {
			return err
		}
		endpoint.RequestBody = &ir.HTTPRequestBody{Kind: ir.RequestBodyFileUpload, FileUpload: upload}
	default:
		return fmt.Errorf("unknown request body kind %q", body.Kind)
	}
	return nil
}

func (ec *endpointConverter) fileUpload(requestName string, body *schema.RequestBodySchema, refs typeSet) (*ir.FileUploadRequest, error) {
	c := ec.c
	upload := &ir.FileUploadRequest{Name: c.Casing.GenerateName(requestName), Properties: []ir.FileUploadProperty{}}
	if body.Properties.Len() == 0 {
		upload.Properties = append(upload.Properties, ir.FileUploadProperty{
			Key:    c.Casing.GenerateNameAndWireValue("file", "file"),
			IsFile: true,
		})
		return upload, nil
	}
	for key, p := range body.Properties.All() {
		prop := ir.FileUploadProperty{Key: nameAndWire(c, p.Name, key)}
		if schema.IsFileType(p.Type) {
			prop.IsFile = true
			prop.IsOptional = p.Type != "file"
		} else {
			typ, err := c.ParseTypeReference(p.Type)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", key, err)
			}
			refs.addRef(typ)
			prop.ValueType = &typ
			prop.IsOptional = typ.IsOptional()
		}
		upload.Properties = append(upload.Properties, prop)
	}
	return upload, nil
}

func (ec *endpointConverter) response(ep schema.EndpointSchema, endpoint *ir.HTTPEndpoint, refs typeSet) error {
	c := ec.c
	if ep.Response != nil && ep.ResponseStream != nil {
		return fmt.Errorf("response and response-stream are mutually exclusive")
	}
	if s := ep.ResponseStream; s != nil {
		typ, err := c.ParseTypeReference(s.Type)
		if err != nil {
			return err
		}
		refs.addRef(typ)
		endpoint.Response = &ir.HTTPResponse{
			Kind:      ir.ResponseStreaming,
			Streaming: &ir.StreamingResponse{DataEventType: typ, Terminator: s.Terminator},
			Docs:      s.Docs,
		}
		return nil
	}
	resp := ep.Response
	if resp == nil {
		return nil
	}
	switch resp.Kind {
	case schema.ResponseFile:
		endpoint.Response = &ir.HTTPResponse{Kind: ir.ResponseFileDownload, Docs: resp.Docs}
	case schema.ResponseText:
		endpoint.Response = &ir.HTTPResponse{Kind: ir.ResponseText, Docs: resp.Docs}
	default:
		typ, err := c.ParseTypeReference(resp.Type)
		if err != nil {
			return err
		}
		refs.addRef(typ)
		endpoint.Response = &ir.HTTPResponse{
			Kind: ir.ResponseJSON,
			JSON: &ir.JSONResponse{ResponseBodyType: typ},
			Docs: resp.Docs,
		}
	}
	return nil
}

// errors lists the endpoint's declared errors, then every global error it
// did not already declare.
func (ec *endpointConverter) errors(ep schema.EndpointSchema, endpoint *ir.HTTPEndpoint) ([]ir.ErrorID, error) {
	seen := make(map[ir.ErrorID]struct{})
	for _, raw := range ep.Errors {
		resolved, err := ec.r.Errors.ResolveError(raw, ec.c)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[resolved.Name.ErrorID]; dup {
			continue
		}
		seen[resolved.Name.ErrorID] = struct{}{}
		endpoint.Errors = append(endpoint.Errors, ir.ResponseError{Error: resolved.Name, Docs: resolved.Declaration.Docs})
	}
	for _, global := range ec.root.GlobalErrors {
		if _, dup := seen[global.Name.ErrorID]; dup {
			continue
		}
		seen[global.Name.ErrorID] = struct{}{}
		endpoint.Errors = append(endpoint.Errors, ir.ResponseError{Error: global.Name, Docs: global.Declaration.Docs})
	}
	return slices.Sorted(maps.Keys(seen)), nil
}
