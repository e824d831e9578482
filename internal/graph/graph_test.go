package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apigraph/internal/ir"
)

const (
	money    ir.TypeID     = "type_a:Money"
	secret   ir.TypeID     = "type_a:Secret"
	price    ir.EndpointID = "endpoint_b.getPrice"
	audit    ir.EndpointID = "endpoint_b.audit"
	servB    ir.ServiceID  = "service_b"
	notFound ir.ErrorID    = "error_b:NotFound"
)

func errorDecl(id ir.ErrorID, refs ...ir.TypeID) ir.ErrorDeclaration {
	return ir.ErrorDeclaration{Name: ir.DeclaredErrorName{ErrorID: id}, ReferencedTypes: refs}
}

// pricing builds a.yml{Money} and b.yml{getPrice -> Money} with getPrice
// tagged external.
func pricing(t *testing.T, filter Filter) *Graph {
	t.Helper()
	g := New(filter)
	require.NoError(t, g.AddType(money, nil))
	require.NoError(t, g.AddEndpoint(servB, Endpoint{ID: price, ReferencedTypes: []ir.TypeID{money}}))
	require.NoError(t, g.MarkEndpointForAudience(servB, []ir.EndpointID{price}, []string{"external"}))
	return g
}

func TestFilterPullsInReferencedTypes(t *testing.T) {
	external := pricing(t, ForAudiences("external")).Build()
	assert.True(t, external.HasEndpoint(price))
	assert.True(t, external.HasType(money))
	assert.True(t, external.HasService(servB))

	internal := pricing(t, ForAudiences("internal")).Build()
	assert.False(t, internal.HasEndpoint(price))
	assert.False(t, internal.HasType(money))
	assert.False(t, internal.HasService(servB))
}

func TestClosureIgnoresNarrowerTag(t *testing.T) {
	g := New(ForAudiences("public"))
	require.NoError(t, g.AddType(secret, nil))
	require.NoError(t, g.MarkTypeForAudiences(secret, []string{"internal"}))
	require.NoError(t, g.AddEndpoint(servB, Endpoint{ID: price, ReferencedTypes: []ir.TypeID{secret}}))
	require.NoError(t, g.MarkEndpointForAudience(servB, []ir.EndpointID{price}, []string{"public"}))

	f := g.Build()
	assert.True(t, f.HasEndpoint(price))
	assert.True(t, f.HasType(secret))
}

func TestSeedsAndUntaggedNodes(t *testing.T) {
	g := New(ForAudiences("internal"))
	require.NoError(t, g.AddType(money, nil))
	require.NoError(t, g.AddType(secret, []ir.TypeID{money}))
	require.NoError(t, g.MarkTypeForAudiences(secret, []string{"internal"}))
	require.NoError(t, g.AddError(errorDecl(notFound)))
	require.NoError(t, g.AddEndpoint(servB, Endpoint{ID: price, ReferencedErrors: []ir.ErrorID{notFound}}))
	require.NoError(t, g.AddEndpoint(servB, Endpoint{ID: audit}))
	require.NoError(t, g.MarkEndpointForAudience(servB, []ir.EndpointID{audit}, []string{"public"}))

	f := g.Build()
	assert.True(t, f.HasType(secret), "tagged seed")
	assert.True(t, f.HasType(money), "reached from a seed")
	assert.True(t, f.HasEndpoint(price), "untagged endpoints are unrestricted")
	assert.True(t, f.HasError(notFound))
	assert.False(t, f.HasEndpoint(audit))
	assert.Equal(t, []ir.EndpointID{price}, f.Endpoints())
}

func TestNoAudiencesKeepsEverything(t *testing.T) {
	g := New(ForAudiences("anything"))
	require.NoError(t, g.AddType(money, nil))
	require.NoError(t, g.AddError(errorDecl(notFound)))
	require.NoError(t, g.AddEndpoint(servB, Endpoint{ID: price}))
	require.NoError(t, g.AddSubpackage(Subpackage{ID: "subpackage_empty"}))

	assert.True(t, g.HasNoAudiences())
	f := g.Build()
	assert.Equal(t, []ir.TypeID{money}, f.Types())
	assert.Equal(t, []ir.ErrorID{notFound}, f.Errors())
	assert.Equal(t, []ir.SubpackageID{"subpackage_empty"}, f.Subpackages())
}

func TestSubpackagesFollowTheirContent(t *testing.T) {
	g := pricing(t, ForAudiences("internal"))
	service := servB
	require.NoError(t, g.AddType(secret, nil))
	require.NoError(t, g.MarkTypeForAudiences(secret, []string{"internal"}))
	require.NoError(t, g.AddSubpackage(Subpackage{ID: "subpackage_a", Types: []ir.TypeID{money}}))
	require.NoError(t, g.AddSubpackage(Subpackage{ID: "subpackage_b", Service: &service}))
	require.NoError(t, g.AddSubpackage(Subpackage{ID: "subpackage_c", Types: []ir.TypeID{secret}}))
	require.NoError(t, g.AddSubpackage(Subpackage{ID: "subpackage_dir", Subpackages: []ir.SubpackageID{"subpackage_c"}}))

	f := g.Build()
	assert.Equal(t, []ir.SubpackageID{"subpackage_c", "subpackage_dir"}, f.Subpackages())
}

func TestGraphFreezesOnFirstRead(t *testing.T) {
	g := New(All())
	require.NoError(t, g.AddType(money, nil))
	_ = g.HasNoAudiences()

	assert.ErrorIs(t, g.AddType(secret, nil), ErrFrozen)
	assert.ErrorIs(t, g.AddError(errorDecl(notFound)), ErrFrozen)
	assert.ErrorIs(t, g.AddEndpoint(servB, Endpoint{ID: price}), ErrFrozen)
	assert.ErrorIs(t, g.MarkTypeForAudiences(money, []string{"x"}), ErrFrozen)
}

func TestGraphWriteErrors(t *testing.T) {
	g := New(All())
	require.NoError(t, g.AddType(money, nil))
	assert.ErrorIs(t, g.AddType(money, nil), ErrDuplicateNode)
	assert.ErrorIs(t, g.MarkTypeForAudiences(secret, []string{"x"}), ErrUnknownNode)
	assert.ErrorIs(t, g.MarkErrorForAudiences(notFound, []string{"x"}), ErrUnknownNode)
	require.NoError(t, g.AddEndpoint(servB, Endpoint{ID: price}))
	assert.ErrorIs(t, g.MarkEndpointForAudience("service_other", []ir.EndpointID{price}, []string{"x"}), ErrUnknownNode)
}

func TestValidateReportsDanglingEdges(t *testing.T) {
	g := New(All())
	require.NoError(t, g.AddType(money, []ir.TypeID{secret}))
	err := g.Validate()
	require.ErrorIs(t, err, ErrUnknownNode)
	assert.Contains(t, err.Error(), string(secret))

	ok := pricing(t, All())
	assert.NoError(t, ok.Validate())
}

func TestTypesReferencedByService(t *testing.T) {
	g := New(All())
	require.NoError(t, g.AddType("type_x:Foo", nil))
	require.NoError(t, g.AddType("type_x:Bar", []ir.TypeID{"type_x:Foo"}))
	require.NoError(t, g.AddType("type_x:Baz", nil))
	require.NoError(t, g.AddError(errorDecl("error_x:Oops", "type_x:Baz")))
	require.NoError(t, g.AddEndpoint("service_s1", Endpoint{ID: "endpoint_s1.a", ReferencedTypes: []ir.TypeID{"type_x:Bar"}}))
	require.NoError(t, g.AddEndpoint("service_s2", Endpoint{
		ID:               "endpoint_s2.b",
		ReferencedTypes:  []ir.TypeID{"type_x:Foo"},
		ReferencedErrors: []ir.ErrorID{"error_x:Oops"},
	}))

	got := g.TypesReferencedByService()
	assert.Equal(t, map[ir.TypeID][]ir.ServiceID{
		"type_x:Foo": {"service_s1", "service_s2"},
		"type_x:Bar": {"service_s1"},
		"type_x:Baz": {"service_s2"},
	}, got)
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := pricing(t, ForAudiences("external"))
	require.NoError(t, g.AddError(errorDecl(notFound, money)))
	require.NoError(t, g.MarkErrorForAudiences(notFound, []string{"internal"}))
	snap := g.Snapshot()

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	again, err := FromSnapshot(decoded, ForAudiences("external"))
	require.NoError(t, err)
	assert.True(t, g.Build().Equal(again.Build()))
	assert.Equal(t, snap, again.Snapshot())

	internal, err := FromSnapshot(decoded, ForAudiences("internal"))
	require.NoError(t, err)
	f := internal.Build()
	assert.True(t, f.HasError(notFound))
	assert.True(t, f.HasType(money))
	assert.False(t, f.HasEndpoint(price))
}

func TestFilter(t *testing.T) {
	assert.True(t, All().IsAll())
	assert.True(t, ForAudiences().IsAll())
	f := ForAudiences("b", "a", "b")
	assert.Equal(t, []string{"a", "b"}, f.Audiences())
	assert.Equal(t, "a,b", f.String())
	assert.Equal(t, "all", All().String())
	assert.True(t, f.Matches([]string{"z", "a"}))
	assert.False(t, f.Matches(nil))
}
