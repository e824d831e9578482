package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/testutil"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateDanglingReferences(t *testing.T) {
	doc := compile(t, testutil.MoviesAPI()).IR
	broken := *doc
	broken.Types = map[ir.TypeID]ir.TypeDeclaration{}
	for id, decl := range doc.Types {
		if id != "type_imdb:MovieId" {
			broken.Types[id] = decl
		}
	}
	broken.Errors = map[ir.ErrorID]ir.ErrorDeclaration{}

	errs := Validate(&broken)
	require.NotEmpty(t, errs)
	assert.Contains(t, codes(errs), ErrDanglingTypeReference)
	assert.Contains(t, codes(errs), ErrDanglingErrorReference)
	var errorFields []string
	for _, e := range errs {
		if e.Code == ErrDanglingErrorReference {
			errorFields = append(errorFields, e.Field)
		}
	}
	// Both endpoints inherit the global error; getMovie also declares its own.
	assert.Contains(t, errorFields, "endpoint_imdb.getMovie")
	assert.Contains(t, errorFields, "endpoint_imdb.createMovie")
}

func TestValidateDuplicateRoute(t *testing.T) {
	doc := compile(t, map[string]string{
		"a.yml": `service:
  endpoints:
    one:
      method: GET
      path: /things/{id}
      path-parameters:
        id: string
    two:
      method: GET
      path: /things/{thingId}
      path-parameters:
        thingId: string
    three:
      method: POST
      path: /things/{id}
      path-parameters:
        id: string
`,
	}).IR

	errs := Validate(doc)
	require.Len(t, errs, 0, "parameter names differ so the rendered routes differ")

	svc := doc.Services["service_a"]
	svc.Endpoints = append(svc.Endpoints, svc.Endpoints[0])
	svc.Endpoints[3].ID = "endpoint_a.copy"
	doc.Services["service_a"] = svc

	errs = Validate(doc)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateRoute, errs[0].Code)
	assert.Equal(t, "[E104] endpoint_a.copy: GET /things/{id} is already served by endpoint_a.one", errs[0].Error())
}

func TestValidatePackagesAndPartition(t *testing.T) {
	doc := compile(t, sharedAPI()).IR
	broken := *doc
	broken.RootPackage.Subpackages = append([]ir.SubpackageID{"subpackage_gone"}, doc.RootPackage.Subpackages...)
	broken.Subpackages = map[ir.SubpackageID]ir.Subpackage{}
	for id, sp := range doc.Subpackages {
		if id != "subpackage_s2" {
			broken.Subpackages[id] = sp
		}
	}
	broken.ServiceTypeReferenceInfo = ir.ServiceTypeReferenceInfo{
		TypesReferencedOnlyByService: map[ir.ServiceID][]ir.TypeID{
			"service_s1": {"type_common:Foo"},
		},
		SharedTypes: []ir.TypeID{"type_common:Foo"},
	}

	errs := Validate(&broken)
	assert.ElementsMatch(t,
		[]string{ErrDanglingSubpackage, ErrDanglingSubpackage, ErrMissingServicePackage, ErrServiceTypePartition},
		codes(errs),
	)
	for i := 1; i < len(errs); i++ {
		assert.LessOrEqual(t, errs[i-1].Field, errs[i].Field)
	}
}
