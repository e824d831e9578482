package graph

import (
	"maps"
	"slices"

	"github.com/roach88/apigraph/internal/ir"
)

// FilteredIR is the set of ids one audience projection keeps. It is
// never modified after Build returns it.
type FilteredIR struct {
	types       map[ir.TypeID]struct{}
	errors      map[ir.ErrorID]struct{}
	services    map[ir.ServiceID]struct{}
	endpoints   map[ir.EndpointID]struct{}
	subpackages map[ir.SubpackageID]struct{}
}

// HasType reports whether the projection keeps the type id.
func (f FilteredIR) HasType(id ir.TypeID) bool {
	_, ok := f.types[id]
	return ok
}

// HasError reports whether the projection keeps the error id.
func (f FilteredIR) HasError(id ir.ErrorID) bool {
	_, ok := f.errors[id]
	return ok
}

// HasService reports whether the projection keeps the service id.
func (f FilteredIR) HasService(id ir.ServiceID) bool {
	_, ok := f.services[id]
	return ok
}

// HasEndpoint reports whether the projection keeps the endpoint id.
func (f FilteredIR) HasEndpoint(id ir.EndpointID) bool {
	_, ok := f.endpoints[id]
	return ok
}

// HasSubpackage reports whether the projection keeps the subpackage id.
func (f FilteredIR) HasSubpackage(id ir.SubpackageID) bool {
	_, ok := f.subpackages[id]
	return ok
}

// Types returns the kept type ids, sorted.
func (f FilteredIR) Types() []ir.TypeID {
	return slices.Sorted(maps.Keys(f.types))
}

// Errors returns the kept error ids, sorted.
func (f FilteredIR) Errors() []ir.ErrorID {
	return slices.Sorted(maps.Keys(f.errors))
}

// Services returns the kept service ids, sorted.
func (f FilteredIR) Services() []ir.ServiceID {
	return slices.Sorted(maps.Keys(f.services))
}

// Endpoints returns the kept endpoint ids, sorted.
func (f FilteredIR) Endpoints() []ir.EndpointID {
	return slices.Sorted(maps.Keys(f.endpoints))
}

// Subpackages returns the kept subpackage ids, sorted.
func (f FilteredIR) Subpackages() []ir.SubpackageID {
	return slices.Sorted(maps.Keys(f.subpackages))
}

// Equal reports whether f and other keep the same ids.
func (f FilteredIR) Equal(other FilteredIR) bool {
	return maps.Equal(f.types, other.types) &&
		maps.Equal(f.errors, other.errors) &&
		maps.Equal(f.services, other.services) &&
		maps.Equal(f.endpoints, other.endpoints) &&
		maps.Equal(f.subpackages, other.subpackages)
}

// Membership is the JSON form of a FilteredIR.
type Membership struct {
	Types       []ir.TypeID       `json:"types"`
	Errors      []ir.ErrorID      `json:"errors"`
	Services    []ir.ServiceID    `json:"services"`
	Endpoints   []ir.EndpointID   `json:"endpoints"`
	Subpackages []ir.SubpackageID `json:"subpackages"`
}

// Membership lists every kept id.
func (f FilteredIR) Membership() Membership {
	return Membership{
		Types:       f.Types(),
		Errors:      f.Errors(),
		Services:    f.Services(),
		Endpoints:   f.Endpoints(),
		Subpackages: f.Subpackages(),
	}
}
