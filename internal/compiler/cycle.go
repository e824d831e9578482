package compiler

import (
	"maps"
	"slices"
	"strings"

	"github.com/roach88/apigraph/internal/ir"
)

// AliasCycle is a set of aliases that resolve to each other and never
// to a concrete shape, e.g. A: B and B: A.
type AliasCycle struct {
	Path []ir.TypeID `json:"path"` // [A, B, A]
}

func (c AliasCycle) String() string {
	parts := make([]string, len(c.Path))
	for i, id := range c.Path {
		parts[i] = string(id)
	}
	return strings.Join(parts, " -> ")
}

// FindAliasCycles reports every alias cycle among types. Only direct
// aliases of a named type count; list<A> inside A is a recursive type,
// not a cycle. Cycles come back sorted by their first id.
//
// The algorithm:
//  1. Build an alias -> target graph
//  2. Find strongly connected components with Tarjan's algorithm
//  3. Report each SCC with more than one node, or with a self-loop
func FindAliasCycles(types map[ir.TypeID]ir.TypeDeclaration) []AliasCycle {
	graph := buildAliasGraph(types)

	var cycles []AliasCycle
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, AliasCycle{Path: reconstructCyclePath(scc, graph)})
		}
	}
	slices.SortFunc(cycles, func(a, b AliasCycle) int {
		return strings.Compare(string(a.Path[0]), string(b.Path[0]))
	})
	return cycles
}

// aliasGraph maps an alias to the type it directly aliases.
type aliasGraph map[ir.TypeID][]ir.TypeID

func buildAliasGraph(types map[ir.TypeID]ir.TypeDeclaration) aliasGraph {
	graph := make(aliasGraph)
	for id, decl := range types {
		if decl.Shape.Kind != ir.ShapeAlias || decl.Shape.Alias == nil {
			continue
		}
		target := decl.Shape.Alias.AliasOf
		if target.Kind != ir.TypeReferenceNamed || target.Named == nil {
			continue
		}
		graph[id] = append(graph[id], target.Named.TypeID)
	}
	return graph
}

func hasSelfLoop(node ir.TypeID, graph aliasGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components. Nodes are visited in
// sorted order and each SCC is returned sorted, so output is stable.
func tarjanSCC(graph aliasGraph) [][]ir.TypeID {
	var (
		index   = 0
		stack   []ir.TypeID
		indices = make(map[ir.TypeID]int)
		lowlink = make(map[ir.TypeID]int)
		onStack = make(map[ir.TypeID]bool)
		sccs    [][]ir.TypeID
	)

	var strongConnect func(ir.TypeID)
	strongConnect = func(v ir.TypeID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []ir.TypeID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range slices.Sorted(maps.Keys(graph)) {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// reconstructCyclePath walks alias edges from the smallest id in the SCC
// until it returns to it. An alias has one target, so the walk is unique.
func reconstructCyclePath(scc []ir.TypeID, graph aliasGraph) []ir.TypeID {
	start := scc[0]
	path := []ir.TypeID{start}
	current := start
	for range len(scc) {
		next := graph[current][0]
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
