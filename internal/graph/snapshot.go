package graph

import (
	"maps"
	"slices"

	"github.com/roach88/apigraph/internal/ir"
)

// Snapshot is the serialisable content of a graph, without its filter.
// Entries are sorted by id.
type Snapshot struct {
	Types       []TypeNode       `json:"types"`
	Errors      []ErrorNode      `json:"errors"`
	Endpoints   []EndpointNode   `json:"endpoints"`
	Subpackages []SubpackageNode `json:"subpackages"`
}

type TypeNode struct {
	ID         ir.TypeID   `json:"id"`
	References []ir.TypeID `json:"references"`
	Audiences  []string    `json:"audiences,omitempty"`
}

type ErrorNode struct {
	ID         ir.ErrorID  `json:"id"`
	References []ir.TypeID `json:"references"`
	Audiences  []string    `json:"audiences,omitempty"`
}

// EndpointNode carries the endpoint's effective audience, already
// resolved against its service.
type EndpointNode struct {
	ID        ir.EndpointID `json:"id"`
	Service   ir.ServiceID  `json:"service"`
	Types     []ir.TypeID   `json:"types"`
	Errors    []ir.ErrorID  `json:"errors"`
	Audiences []string      `json:"audiences,omitempty"`
}

type SubpackageNode struct {
	ID          ir.SubpackageID   `json:"id"`
	Types       []ir.TypeID       `json:"types"`
	Errors      []ir.ErrorID      `json:"errors"`
	Service     *ir.ServiceID     `json:"service,omitempty"`
	Subpackages []ir.SubpackageID `json:"subpackages"`
}

// Snapshot freezes the graph and copies out its nodes.
func (g *Graph) Snapshot() Snapshot {
	g.frozen = true
	var s Snapshot
	for _, id := range slices.Sorted(maps.Keys(g.types)) {
		n := g.types[id]
		s.Types = append(s.Types, TypeNode{ID: id, References: n.refs, Audiences: n.audiences})
	}
	for _, id := range slices.Sorted(maps.Keys(g.errors)) {
		n := g.errors[id]
		s.Errors = append(s.Errors, ErrorNode{ID: id, References: n.refs, Audiences: n.audiences})
	}
	for _, id := range slices.Sorted(maps.Keys(g.endpoints)) {
		n := g.endpoints[id]
		s.Endpoints = append(s.Endpoints, EndpointNode{
			ID:        id,
			Service:   n.service,
			Types:     n.types,
			Errors:    n.errors,
			Audiences: n.audiences,
		})
	}
	for _, id := range slices.Sorted(maps.Keys(g.subpackages)) {
		sp := g.subpackages[id]
		s.Subpackages = append(s.Subpackages, SubpackageNode{
			ID:          id,
			Types:       sp.Types,
			Errors:      sp.Errors,
			Service:     sp.Service,
			Subpackages: sp.Subpackages,
		})
	}
	return s
}

// FromSnapshot rebuilds a graph in its write phase with a new filter.
func FromSnapshot(s Snapshot, filter Filter) (*Graph, error) {
	g := New(filter)
	for _, n := range s.Types {
		if err := g.AddType(n.ID, n.References); err != nil {
			return nil, err
		}
		if err := g.MarkTypeForAudiences(n.ID, n.Audiences); err != nil {
			return nil, err
		}
	}
	for _, n := range s.Errors {
		decl := ir.ErrorDeclaration{Name: ir.DeclaredErrorName{ErrorID: n.ID}, ReferencedTypes: n.References}
		if err := g.AddError(decl); err != nil {
			return nil, err
		}
		if err := g.MarkErrorForAudiences(n.ID, n.Audiences); err != nil {
			return nil, err
		}
	}
	for _, n := range s.Endpoints {
		if err := g.AddEndpoint(n.Service, Endpoint{ID: n.ID, ReferencedTypes: n.Types, ReferencedErrors: n.Errors}); err != nil {
			return nil, err
		}
		if err := g.MarkEndpointForAudience(n.Service, []ir.EndpointID{n.ID}, n.Audiences); err != nil {
			return nil, err
		}
	}
	for _, n := range s.Subpackages {
		sp := Subpackage{ID: n.ID, Types: n.Types, Errors: n.Errors, Service: n.Service, Subpackages: n.Subpackages}
		if err := g.AddSubpackage(sp); err != nil {
			return nil, err
		}
	}
	return g, nil
}
