package compiler

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/apigraph/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrDanglingTypeReference  = "E101" // edge to a type that is not in the document
	ErrDanglingErrorReference = "E102" // endpoint error that is not in the document
	ErrDanglingSubpackage     = "E103" // package child or redirect that is not in the document
	ErrDuplicateRoute         = "E104" // two endpoints share method and full path
	ErrServiceTypePartition   = "E105" // type both exclusive and shared, or exclusive twice
	ErrMissingServicePackage  = "E106" // service without a package
)

// ValidationError is one inconsistency found in a built document.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks that a document, filtered or not, is self-consistent.
// It returns every problem found, sorted by field.
func Validate(doc *ir.IntermediateRepresentation) []ValidationError {
	var errs []ValidationError
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}
	hasType := func(id ir.TypeID) bool {
		_, ok := doc.Types[id]
		return ok
	}

	for _, id := range slices.Sorted(maps.Keys(doc.Types)) {
		for _, ref := range doc.Types[id].ReferencedTypes {
			if !hasType(ref) {
				add(ErrDanglingTypeReference, string(id), "references missing type %s", ref)
			}
		}
	}
	for _, id := range slices.Sorted(maps.Keys(doc.Errors)) {
		for _, ref := range doc.Errors[id].ReferencedTypes {
			if !hasType(ref) {
				add(ErrDanglingTypeReference, string(id), "references missing type %s", ref)
			}
		}
	}

	routes := make(map[string]ir.EndpointID)
	packaged := make(map[ir.ServiceID]bool)
	if doc.RootPackage.Service != nil {
		packaged[*doc.RootPackage.Service] = true
	}
	for _, sp := range doc.Subpackages {
		if sp.Service != nil {
			packaged[*sp.Service] = true
		}
	}
	for _, sid := range slices.Sorted(maps.Keys(doc.Services)) {
		if !packaged[sid] {
			add(ErrMissingServicePackage, string(sid), "service is not attached to any package")
		}
		for _, ep := range doc.Services[sid].Endpoints {
			for _, e := range ep.Errors {
				if _, ok := doc.Errors[e.Error.ErrorID]; !ok {
					add(ErrDanglingErrorReference, string(ep.ID), "references missing error %s", e.Error.ErrorID)
				}
			}
			for _, ref := range endpointTypes(ep) {
				if !hasType(ref) {
					add(ErrDanglingTypeReference, string(ep.ID), "references missing type %s", ref)
				}
			}
			route := string(ep.Method) + " " + renderPath(ep.FullPath)
			if prev, dup := routes[route]; dup {
				add(ErrDuplicateRoute, string(ep.ID), "%s is already served by %s", route, prev)
				continue
			}
			routes[route] = ep.ID
		}
	}

	checkPackage := func(field string, pkg ir.Package) {
		for _, child := range pkg.Subpackages {
			if _, ok := doc.Subpackages[child]; !ok {
				add(ErrDanglingSubpackage, field, "lists missing subpackage %s", child)
			}
		}
		if nav := pkg.NavigationConfig; nav != nil {
			if _, ok := doc.Subpackages[nav.PointsTo]; !ok {
				add(ErrDanglingSubpackage, field, "navigation points at missing subpackage %s", nav.PointsTo)
			}
		}
	}
	checkPackage("root_package", doc.RootPackage)
	for _, id := range slices.Sorted(maps.Keys(doc.Subpackages)) {
		checkPackage(string(id), doc.Subpackages[id].Package)
	}

	seen := make(map[ir.TypeID]string)
	info := doc.ServiceTypeReferenceInfo
	for _, sid := range slices.Sorted(maps.Keys(info.TypesReferencedOnlyByService)) {
		for _, id := range info.TypesReferencedOnlyByService[sid] {
			if prev, dup := seen[id]; dup {
				add(ErrServiceTypePartition, string(id), "exclusive to both %s and %s", prev, sid)
			}
			seen[id] = string(sid)
		}
	}
	for _, id := range info.SharedTypes {
		if prev, dup := seen[id]; dup {
			add(ErrServiceTypePartition, string(id), "shared and exclusive to %s", prev)
		}
	}

	slices.SortStableFunc(errs, func(a, b ValidationError) int {
		return strings.Compare(a.Field, b.Field)
	})
	return errs
}

// endpointTypes lists every named type an endpoint mentions directly.
func endpointTypes(ep ir.HTTPEndpoint) []ir.TypeID {
	var refs []ir.TypeReference
	for _, p := range ep.AllPathParameters {
		refs = append(refs, p.ValueType)
	}
	for _, q := range ep.QueryParameters {
		refs = append(refs, q.ValueType)
	}
	for _, h := range ep.Headers {
		refs = append(refs, h.ValueType)
	}
	if b := ep.RequestBody; b != nil {
		switch b.Kind {
		case ir.RequestBodyReference:
			refs = append(refs, b.Reference.RequestBodyType)
		case ir.RequestBodyInlined:
			for _, parent := range b.Inlined.Extends {
				refs = append(refs, ir.Named(parent))
			}
			for _, p := range b.Inlined.Properties {
				refs = append(refs, p.ValueType)
			}
		case ir.RequestBodyFileUpload:
			for _, p := range b.FileUpload.Properties {
				if p.ValueType != nil {
					refs = append(refs, *p.ValueType)
				}
			}
		}
	}
	if resp := ep.Response; resp != nil {
		switch resp.Kind {
		case ir.ResponseJSON:
			refs = append(refs, resp.JSON.ResponseBodyType)
		case ir.ResponseStreaming:
			refs = append(refs, resp.Streaming.DataEventType)
		}
	}
	var out []ir.TypeID
	for _, ref := range refs {
		for _, n := range ref.NamedTypes() {
			out = append(out, n.TypeID)
		}
	}
	return out
}

func renderPath(p ir.HTTPPath) string {
	out := p.Head
	for _, part := range p.Parts {
		out += "{" + part.PathParameter + "}" + part.Tail
	}
	return out
}
