// Package packagetree builds the namespace hierarchy emitted alongside
// the IR: one subpackage per directory and per definition file.
package packagetree

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/apigraph/internal/graph"
	"github.com/roach88/apigraph/internal/ir"
)

// ErrUnknownSubpackage is returned when navigation names a package that
// does not exist.
var ErrUnknownSubpackage = errors.New("unknown subpackage")

// Membership decides which declarations survive Build. graph.FilteredIR
// implements it.
type Membership interface {
	HasType(ir.TypeID) bool
	HasError(ir.ErrorID) bool
	HasService(ir.ServiceID) bool
	HasSubpackage(ir.SubpackageID) bool
}

type node struct {
	pkg          ir.Package
	name         ir.Name
	hasEndpoints bool
}

// Tree accumulates packages while definition files are merged. It is
// consumed by Build.
type Tree struct {
	root        node
	subpackages map[ir.SubpackageID]*node
}

// New returns a tree holding only the root package.
func New() *Tree {
	return &Tree{
		root:        node{pkg: emptyPackage(ir.Filepath{AllParts: []ir.Name{}, PackagePath: []ir.Name{}})},
		subpackages: make(map[ir.SubpackageID]*node),
	}
}

func emptyPackage(fp ir.Filepath) ir.Package {
	return ir.Package{
		Filepath:    fp,
		Types:       []ir.TypeID{},
		Errors:      []ir.ErrorID{},
		Subpackages: []ir.SubpackageID{},
	}
}

// AddSubpackage makes sure fp and every directory above it exist, each
// linked to its parent. It returns the id of fp's package.
func (t *Tree) AddSubpackage(fp ir.Filepath) ir.SubpackageID {
	id := ir.NewSubpackageID(fp)
	if fp.IsRoot() {
		return id
	}
	if _, ok := t.subpackages[id]; ok {
		return id
	}
	parent := t.packageFor(fp.Parent())
	t.subpackages[id] = &node{
		pkg:  emptyPackage(fp),
		name: fp.AllParts[len(fp.AllParts)-1],
	}
	parent.pkg.Subpackages = append(parent.pkg.Subpackages, id)
	return id
}

func (t *Tree) packageFor(fp ir.Filepath) *node {
	if fp.IsRoot() {
		return &t.root
	}
	id := t.AddSubpackage(fp)
	return t.subpackages[id]
}

// AddDocs sets the docs of fp's package.
func (t *Tree) AddDocs(fp ir.Filepath, docs string) {
	t.packageFor(fp).pkg.Docs = docs
}

// AddType files a type under fp's package.
func (t *Tree) AddType(id ir.TypeID, fp ir.Filepath) {
	n := t.packageFor(fp)
	n.pkg.Types = append(n.pkg.Types, id)
}

// AddError files an error under fp's package.
func (t *Tree) AddError(id ir.ErrorID, fp ir.Filepath) {
	n := t.packageFor(fp)
	n.pkg.Errors = append(n.pkg.Errors, id)
}

// AddService attaches the service declared in fp.
func (t *Tree) AddService(id ir.ServiceID, fp ir.Filepath, hasEndpoints bool) {
	n := t.packageFor(fp)
	n.pkg.Service = &id
	n.hasEndpoints = hasEndpoints
}

// AddPackageRedirection makes from's package point at to's.
func (t *Tree) AddPackageRedirection(from, to ir.Filepath) error {
	target := ir.NewSubpackageID(to)
	if _, ok := t.subpackages[target]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSubpackage, target)
	}
	source := t.lookup(from)
	if source == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSubpackage, ir.NewSubpackageID(from))
	}
	source.pkg.NavigationConfig = &ir.NavigationConfig{PointsTo: target}
	return nil
}

func (t *Tree) lookup(fp ir.Filepath) *node {
	if fp.IsRoot() {
		return &t.root
	}
	return t.subpackages[ir.NewSubpackageID(fp)]
}

// SortRootPackage moves the listed children of the root package to the
// front, in the given order.
func (t *Tree) SortRootPackage(order []ir.SubpackageID) error {
	return sortChildren(&t.root, order)
}

// SortSubpackage moves the listed children of id to the front.
func (t *Tree) SortSubpackage(id ir.SubpackageID, order []ir.SubpackageID) error {
	n, ok := t.subpackages[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSubpackage, id)
	}
	return sortChildren(n, order)
}

func sortChildren(n *node, order []ir.SubpackageID) error {
	children := n.pkg.Subpackages
	sorted := make([]ir.SubpackageID, 0, len(children))
	for _, id := range order {
		if !slices.Contains(children, id) {
			return fmt.Errorf("%w: %s is not a child of %q", ErrUnknownSubpackage, id, n.pkg.Filepath.Key())
		}
		if !slices.Contains(sorted, id) {
			sorted = append(sorted, id)
		}
	}
	for _, id := range children {
		if !slices.Contains(sorted, id) {
			sorted = append(sorted, id)
		}
	}
	n.pkg.Subpackages = sorted
	return nil
}

// Nodes lists every subpackage's content for the reference graph.
func (t *Tree) Nodes() []graph.Subpackage {
	ids := slices.Sorted(maps.Keys(t.subpackages))
	out := make([]graph.Subpackage, 0, len(ids))
	for _, id := range ids {
		pkg := t.subpackages[id].pkg
		out = append(out, graph.Subpackage{
			ID:          id,
			Types:       pkg.Types,
			Errors:      pkg.Errors,
			Service:     pkg.Service,
			Subpackages: pkg.Subpackages,
		})
	}
	return out
}

// Build returns the root package and the subpackages that survive m. A
// nil m keeps everything. The tree itself is left untouched.
func (t *Tree) Build(m Membership) (ir.Package, map[ir.SubpackageID]ir.Subpackage) {
	subpackages := make(map[ir.SubpackageID]ir.Subpackage, len(t.subpackages))
	var visit func(n *node) (ir.Package, bool)
	visit = func(n *node) (ir.Package, bool) {
		pkg := n.pkg
		pkg.Types = keep(pkg.Types, m, func(id ir.TypeID) bool { return m.HasType(id) })
		pkg.Errors = keep(pkg.Errors, m, func(id ir.ErrorID) bool { return m.HasError(id) })
		hasEndpoints := n.hasEndpoints
		if pkg.Service != nil && m != nil && !m.HasService(*pkg.Service) {
			pkg.Service = nil
			hasEndpoints = false
		}
		pkg.Subpackages = []ir.SubpackageID{}
		for _, id := range n.pkg.Subpackages {
			if m != nil && !m.HasSubpackage(id) {
				continue
			}
			child, childHasEndpoints := visit(t.subpackages[id])
			subpackages[id] = ir.Subpackage{Name: t.subpackages[id].name, Package: child}
			pkg.Subpackages = append(pkg.Subpackages, id)
			hasEndpoints = hasEndpoints || childHasEndpoints
		}
		if nav := pkg.NavigationConfig; nav != nil && m != nil && !m.HasSubpackage(nav.PointsTo) {
			pkg.NavigationConfig = nil
		}
		pkg.HasEndpointsInTree = hasEndpoints
		return pkg, hasEndpoints
	}
	root, _ := visit(&t.root)
	return root, subpackages
}

func keep[T comparable](ids []T, m Membership, has func(T) bool) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if m == nil || has(id) {
			out = append(out, id)
		}
	}
	return out
}

// FromPackages rebuilds a tree from a previously built, unfiltered
// package hierarchy. hasEndpoints reports whether a service has any
// endpoints.
func FromPackages(root ir.Package, subpackages map[ir.SubpackageID]ir.Subpackage, hasEndpoints func(ir.ServiceID) bool) *Tree {
	t := &Tree{root: fromPackage(root, ir.Name{}, hasEndpoints), subpackages: make(map[ir.SubpackageID]*node, len(subpackages))}
	for id, sp := range subpackages {
		n := fromPackage(sp.Package, sp.Name, hasEndpoints)
		t.subpackages[id] = &n
	}
	return t
}

func fromPackage(pkg ir.Package, name ir.Name, hasEndpoints func(ir.ServiceID) bool) node {
	n := node{pkg: pkg, name: name}
	n.pkg.Types = slices.Clone(pkg.Types)
	n.pkg.Errors = slices.Clone(pkg.Errors)
	n.pkg.Subpackages = slices.Clone(pkg.Subpackages)
	if pkg.Service != nil {
		n.hasEndpoints = hasEndpoints(*pkg.Service)
	}
	return n
}
