package graph

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/roach88/apigraph/internal/ir"
)

var testAudiences = []string{"public", "internal", "beta"}

// declarationSet is a random well-formed set of declarations: every edge
// points at a declared node.
type declarationSet struct {
	types     []TypeNode
	errors    []ErrorNode
	endpoints []EndpointNode
}

func genDeclarationSet(tagged bool) gopter.Gen {
	return gopter.CombineGens(
		gen.Int64(),
		gen.IntRange(1, 12),
		gen.IntRange(0, 4),
		gen.IntRange(0, 8),
	).Map(func(vals []any) declarationSet {
		rng := rand.New(rand.NewSource(vals[0].(int64)))
		return randomDeclarations(rng, vals[1].(int), vals[2].(int), vals[3].(int), tagged)
	})
}

func randomDeclarations(rng *rand.Rand, nTypes, nErrors, nEndpoints int, tagged bool) declarationSet {
	var ds declarationSet
	typeID := func(i int) ir.TypeID { return ir.TypeID(fmt.Sprintf("type_f%d:T%d", i%3, i)) }
	someTypes := func() []ir.TypeID {
		var out []ir.TypeID
		for range rng.Intn(3) {
			out = append(out, typeID(rng.Intn(nTypes)))
		}
		return out
	}
	tags := func() []string {
		if !tagged || rng.Intn(2) == 0 {
			return nil
		}
		return []string{testAudiences[rng.Intn(len(testAudiences))]}
	}
	for i := range nTypes {
		ds.types = append(ds.types, TypeNode{ID: typeID(i), References: someTypes(), Audiences: tags()})
	}
	for i := range nErrors {
		ds.errors = append(ds.errors, ErrorNode{ID: ir.ErrorID(fmt.Sprintf("error_f:E%d", i)), References: someTypes(), Audiences: tags()})
	}
	for i := range nEndpoints {
		ep := EndpointNode{
			ID:        ir.EndpointID(fmt.Sprintf("endpoint_s.e%d", i)),
			Service:   ir.ServiceID(fmt.Sprintf("service_s%d", rng.Intn(3))),
			Types:     someTypes(),
			Audiences: tags(),
		}
		if nErrors > 0 && rng.Intn(2) == 0 {
			ep.Errors = []ir.ErrorID{ds.errors[rng.Intn(nErrors)].ID}
		}
		ds.endpoints = append(ds.endpoints, ep)
	}
	return ds
}

func (ds declarationSet) graph(filter Filter) *Graph {
	g, err := FromSnapshot(Snapshot{Types: ds.types, Errors: ds.errors, Endpoints: ds.endpoints}, filter)
	if err != nil {
		panic(err)
	}
	return g
}

func genFilter() gopter.Gen {
	return gen.SliceOfN(2, gen.OneConstOf("public", "internal", "beta", "other")).Map(func(a []string) Filter {
		return ForAudiences(a...)
	})
}

func TestGraphProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("well-formed declarations never leave dangling edges", prop.ForAll(
		func(ds declarationSet) bool {
			return ds.graph(All()).Validate() == nil
		},
		genDeclarationSet(true),
	))

	properties.Property("projection is closed over references", prop.ForAll(
		func(ds declarationSet, filter Filter) bool {
			f := ds.graph(filter).Build()
			for _, n := range ds.types {
				if !f.HasType(n.ID) {
					if filter.Matches(n.Audiences) {
						return false
					}
					continue
				}
				for _, ref := range n.References {
					if !f.HasType(ref) {
						return false
					}
				}
			}
			for _, n := range ds.errors {
				if !f.HasError(n.ID) {
					continue
				}
				for _, ref := range n.References {
					if !f.HasType(ref) {
						return false
					}
				}
			}
			for _, n := range ds.endpoints {
				seed := n.Audiences == nil || filter.Matches(n.Audiences)
				if seed != f.HasEndpoint(n.ID) {
					return false
				}
				if !seed {
					continue
				}
				if !f.HasService(n.Service) {
					return false
				}
				for _, ref := range n.Types {
					if !f.HasType(ref) {
						return false
					}
				}
				for _, ref := range n.Errors {
					if !f.HasError(ref) {
						return false
					}
				}
			}
			return true
		},
		genDeclarationSet(true),
		genFilter(),
	))

	properties.Property("untagged declarations project to everything", prop.ForAll(
		func(ds declarationSet, filter Filter) bool {
			return ds.graph(filter).Build().Equal(ds.graph(All()).Build())
		},
		genDeclarationSet(false),
		genFilter(),
	))

	properties.Property("re-filtering a snapshot is idempotent", prop.ForAll(
		func(ds declarationSet, filter Filter) bool {
			snap := ds.graph(filter).Snapshot()
			first, err := FromSnapshot(snap, filter)
			if err != nil {
				return false
			}
			second, err := FromSnapshot(snap, filter)
			if err != nil {
				return false
			}
			return first.Build().Equal(second.Build()) && first.Build().Equal(ds.graph(filter).Build())
		},
		genDeclarationSet(true),
		genFilter(),
	))

	properties.Property("service references cover every reachable type once per service", prop.ForAll(
		func(ds declarationSet) bool {
			refs := ds.graph(All()).TypesReferencedByService()
			for _, services := range refs {
				if len(services) == 0 {
					return false
				}
				for i := 1; i < len(services); i++ {
					if services[i-1] >= services[i] {
						return false
					}
				}
			}
			for _, n := range ds.endpoints {
				for _, ref := range n.Types {
					if len(refs[ref]) == 0 {
						return false
					}
				}
			}
			return true
		},
		genDeclarationSet(true),
	))

	properties.TestingRun(t)
}
