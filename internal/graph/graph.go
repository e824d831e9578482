package graph

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/apigraph/internal/ir"
)

var (
	// ErrFrozen is returned by writes after the graph has been read.
	ErrFrozen = errors.New("graph is frozen")

	// ErrUnknownNode is returned when an operation names an id that was
	// never added, and by Validate for dangling edges.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateNode is returned when an id is added twice.
	ErrDuplicateNode = errors.New("duplicate node")
)

// Endpoint is an endpoint's outgoing edges.
type Endpoint struct {
	ID               ir.EndpointID
	ReferencedTypes  []ir.TypeID
	ReferencedErrors []ir.ErrorID
}

// Subpackage is the content of one package tree node, used to decide
// whether the node survives filtering.
type Subpackage struct {
	ID          ir.SubpackageID
	Types       []ir.TypeID
	Errors      []ir.ErrorID
	Service     *ir.ServiceID
	Subpackages []ir.SubpackageID
}

type typeNode struct {
	refs      []ir.TypeID
	audiences []string
}

type errorNode struct {
	refs      []ir.TypeID
	audiences []string
}

type endpointNode struct {
	service   ir.ServiceID
	types     []ir.TypeID
	errors    []ir.ErrorID
	audiences []string
}

// Graph is the build-time reference graph.
type Graph struct {
	filter      Filter
	types       map[ir.TypeID]*typeNode
	errors      map[ir.ErrorID]*errorNode
	endpoints   map[ir.EndpointID]*endpointNode
	services    map[ir.ServiceID][]ir.EndpointID
	subpackages map[ir.SubpackageID]Subpackage
	tagged      bool
	frozen      bool
}

// New returns an empty graph that Build will project through filter.
func New(filter Filter) *Graph {
	return &Graph{
		filter:      filter,
		types:       make(map[ir.TypeID]*typeNode),
		errors:      make(map[ir.ErrorID]*errorNode),
		endpoints:   make(map[ir.EndpointID]*endpointNode),
		services:    make(map[ir.ServiceID][]ir.EndpointID),
		subpackages: make(map[ir.SubpackageID]Subpackage),
	}
}

// Filter returns the filter the graph was created with.
func (g *Graph) Filter() Filter {
	return g.filter
}

// AddType adds a type and its outgoing type edges.
func (g *Graph) AddType(id ir.TypeID, refs []ir.TypeID) error {
	if g.frozen {
		return ErrFrozen
	}
	if _, ok := g.types[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	g.types[id] = &typeNode{refs: sortedCopy(refs)}
	return nil
}

// AddError adds an error and the types it references.
func (g *Graph) AddError(decl ir.ErrorDeclaration) error {
	if g.frozen {
		return ErrFrozen
	}
	id := decl.Name.ErrorID
	if _, ok := g.errors[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	g.errors[id] = &errorNode{refs: sortedCopy(decl.ReferencedTypes)}
	return nil
}

// AddEndpoint adds an endpoint of service. The service node exists as
// soon as one of its endpoints does.
func (g *Graph) AddEndpoint(service ir.ServiceID, endpoint Endpoint) error {
	if g.frozen {
		return ErrFrozen
	}
	if _, ok := g.endpoints[endpoint.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, endpoint.ID)
	}
	g.endpoints[endpoint.ID] = &endpointNode{
		service: service,
		types:   sortedCopy(endpoint.ReferencedTypes),
		errors:  sortedCopy(endpoint.ReferencedErrors),
	}
	g.services[service] = append(g.services[service], endpoint.ID)
	return nil
}

// AddSubpackage records the content of a package tree node.
func (g *Graph) AddSubpackage(sp Subpackage) error {
	if g.frozen {
		return ErrFrozen
	}
	if _, ok := g.subpackages[sp.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, sp.ID)
	}
	sp.Types = sortedCopy(sp.Types)
	sp.Errors = sortedCopy(sp.Errors)
	sp.Subpackages = sortedCopy(sp.Subpackages)
	g.subpackages[sp.ID] = sp
	return nil
}

// MarkTypeForAudiences tags a type. An empty audience list leaves it
// untagged.
func (g *Graph) MarkTypeForAudiences(id ir.TypeID, audiences []string) error {
	if g.frozen {
		return ErrFrozen
	}
	n, ok := g.types[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	n.audiences = g.tag(audiences)
	return nil
}

// MarkErrorForAudiences tags an error.
func (g *Graph) MarkErrorForAudiences(id ir.ErrorID, audiences []string) error {
	if g.frozen {
		return ErrFrozen
	}
	n, ok := g.errors[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	n.audiences = g.tag(audiences)
	return nil
}

// MarkEndpointForAudience sets the effective audience of endpoints of
// service. Callers pass the endpoint's own tag, or the service tag for
// endpoints without one. A later mark replaces an earlier one.
func (g *Graph) MarkEndpointForAudience(service ir.ServiceID, endpoints []ir.EndpointID, audiences []string) error {
	if g.frozen {
		return ErrFrozen
	}
	for _, id := range endpoints {
		n, ok := g.endpoints[id]
		if !ok || n.service != service {
			return fmt.Errorf("%w: %s in %s", ErrUnknownNode, id, service)
		}
	}
	tag := g.tag(audiences)
	for _, id := range endpoints {
		g.endpoints[id].audiences = tag
	}
	return nil
}

func (g *Graph) tag(audiences []string) []string {
	if len(audiences) == 0 {
		return nil
	}
	g.tagged = true
	return sortedCopy(audiences)
}

// HasNoAudiences reports whether no declaration carries an audience tag.
func (g *Graph) HasNoAudiences() bool {
	g.frozen = true
	return !g.tagged
}

// Services returns every service id, sorted.
func (g *Graph) Services() []ir.ServiceID {
	g.frozen = true
	return slices.Sorted(maps.Keys(g.services))
}

// TypesReferencedByService maps every type reachable from a service's
// endpoints, through types and errors, to the sorted services that reach
// it. It ignores audiences.
func (g *Graph) TypesReferencedByService() map[ir.TypeID][]ir.ServiceID {
	g.frozen = true
	out := make(map[ir.TypeID][]ir.ServiceID)
	for _, service := range slices.Sorted(maps.Keys(g.services)) {
		var w walk
		for _, id := range g.services[service] {
			w.endpoint(g, id)
		}
		w.close(g)
		for id := range w.types {
			out[id] = append(out[id], service)
		}
	}
	return out
}

// Validate reports the first edge whose target was never added.
func (g *Graph) Validate() error {
	g.frozen = true
	for _, id := range slices.Sorted(maps.Keys(g.types)) {
		for _, ref := range g.types[id].refs {
			if _, ok := g.types[ref]; !ok {
				return fmt.Errorf("%w: %s references %s", ErrUnknownNode, id, ref)
			}
		}
	}
	for _, id := range slices.Sorted(maps.Keys(g.errors)) {
		for _, ref := range g.errors[id].refs {
			if _, ok := g.types[ref]; !ok {
				return fmt.Errorf("%w: %s references %s", ErrUnknownNode, id, ref)
			}
		}
	}
	for _, id := range slices.Sorted(maps.Keys(g.endpoints)) {
		n := g.endpoints[id]
		for _, ref := range n.types {
			if _, ok := g.types[ref]; !ok {
				return fmt.Errorf("%w: %s references %s", ErrUnknownNode, id, ref)
			}
		}
		for _, ref := range n.errors {
			if _, ok := g.errors[ref]; !ok {
				return fmt.Errorf("%w: %s references %s", ErrUnknownNode, id, ref)
			}
		}
	}
	return nil
}

// Build freezes the graph and returns the projection for its filter.
// When the filter is All, or nothing is tagged, every node is included.
func (g *Graph) Build() FilteredIR {
	g.frozen = true
	if g.filter.IsAll() || !g.tagged {
		return g.everything()
	}

	var w walk
	for id, n := range g.endpoints {
		if n.audiences == nil || g.filter.Matches(n.audiences) {
			w.endpoint(g, id)
		}
	}
	for id, n := range g.types {
		if g.filter.Matches(n.audiences) {
			w.pushType(id)
		}
	}
	for id, n := range g.errors {
		if g.filter.Matches(n.audiences) {
			w.pushError(id)
		}
	}
	w.close(g)

	out := FilteredIR{
		types:     w.types,
		errors:    w.errors,
		endpoints: w.endpoints,
		services:  make(map[ir.ServiceID]struct{}),
	}
	for id := range w.endpoints {
		out.services[g.endpoints[id].service] = struct{}{}
	}
	out.subpackages = g.survivingSubpackages(out)
	return out
}

func (g *Graph) everything() FilteredIR {
	out := FilteredIR{
		types:       make(map[ir.TypeID]struct{}, len(g.types)),
		errors:      make(map[ir.ErrorID]struct{}, len(g.errors)),
		endpoints:   make(map[ir.EndpointID]struct{}, len(g.endpoints)),
		services:    make(map[ir.ServiceID]struct{}, len(g.services)),
		subpackages: make(map[ir.SubpackageID]struct{}, len(g.subpackages)),
	}
	for id := range g.types {
		out.types[id] = struct{}{}
	}
	for id := range g.errors {
		out.errors[id] = struct{}{}
	}
	for id := range g.endpoints {
		out.endpoints[id] = struct{}{}
	}
	for id := range g.services {
		out.services[id] = struct{}{}
	}
	for id := range g.subpackages {
		out.subpackages[id] = struct{}{}
	}
	return out
}

// survivingSubpackages keeps a subpackage when it holds an included type,
// error or service, or a surviving child.
func (g *Graph) survivingSubpackages(f FilteredIR) map[ir.SubpackageID]struct{} {
	memo := make(map[ir.SubpackageID]bool, len(g.subpackages))
	var keep func(ir.SubpackageID, map[ir.SubpackageID]bool) bool
	keep = func(id ir.SubpackageID, visiting map[ir.SubpackageID]bool) bool {
		if v, ok := memo[id]; ok {
			return v
		}
		sp, ok := g.subpackages[id]
		if !ok || visiting[id] {
			return false
		}
		visiting[id] = true
		result := sp.Service != nil && f.HasService(*sp.Service)
		for _, t := range sp.Types {
			result = result || f.HasType(t)
		}
		for _, e := range sp.Errors {
			result = result || f.HasError(e)
		}
		for _, child := range sp.Subpackages {
			if keep(child, visiting) {
				result = true
			}
		}
		memo[id] = result
		return result
	}
	out := make(map[ir.SubpackageID]struct{})
	for id := range g.subpackages {
		if keep(id, make(map[ir.SubpackageID]bool)) {
			out[id] = struct{}{}
		}
	}
	return out
}

// walk is a worklist closure over type and error edges.
type walk struct {
	types      map[ir.TypeID]struct{}
	errors     map[ir.ErrorID]struct{}
	endpoints  map[ir.EndpointID]struct{}
	typeQueue  []ir.TypeID
	errorQueue []ir.ErrorID
}

func (w *walk) init() {
	if w.types == nil {
		w.types = make(map[ir.TypeID]struct{})
		w.errors = make(map[ir.ErrorID]struct{})
		w.endpoints = make(map[ir.EndpointID]struct{})
	}
}

func (w *walk) endpoint(g *Graph, id ir.EndpointID) {
	w.init()
	w.endpoints[id] = struct{}{}
	n := g.endpoints[id]
	for _, t := range n.types {
		w.pushType(t)
	}
	for _, e := range n.errors {
		w.pushError(e)
	}
}

func (w *walk) pushType(id ir.TypeID) {
	w.init()
	if _, seen := w.types[id]; seen {
		return
	}
	w.types[id] = struct{}{}
	w.typeQueue = append(w.typeQueue, id)
}

func (w *walk) pushError(id ir.ErrorID) {
	w.init()
	if _, seen := w.errors[id]; seen {
		return
	}
	w.errors[id] = struct{}{}
	w.errorQueue = append(w.errorQueue, id)
}

// close follows edges until both queues are empty. Targets that were
// never added are kept in the sets; Validate reports them.
func (w *walk) close(g *Graph) {
	w.init()
	for len(w.typeQueue) > 0 || len(w.errorQueue) > 0 {
		if n := len(w.errorQueue); n > 0 {
			id := w.errorQueue[n-1]
			w.errorQueue = w.errorQueue[:n-1]
			if e, ok := g.errors[id]; ok {
				for _, t := range e.refs {
					w.pushType(t)
				}
			}
			continue
		}
		n := len(w.typeQueue)
		id := w.typeQueue[n-1]
		w.typeQueue = w.typeQueue[:n-1]
		if t, ok := g.types[id]; ok {
			for _, ref := range t.refs {
				w.pushType(ref)
			}
		}
	}
}

func sortedCopy[T ~string](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
