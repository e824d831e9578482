package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apigraph/internal/ir"
)

func aliasOf(id ir.TypeID, target ir.TypeReference) ir.TypeDeclaration {
	return ir.TypeDeclaration{
		Name:  ir.DeclaredTypeName{TypeID: id},
		Shape: ir.TypeShape{Kind: ir.ShapeAlias, Alias: &ir.AliasTypeDeclaration{AliasOf: target}},
	}
}

func named(id ir.TypeID) ir.TypeReference {
	return ir.Named(ir.DeclaredTypeName{TypeID: id})
}

func object(id ir.TypeID, refs ...ir.TypeID) ir.TypeDeclaration {
	return ir.TypeDeclaration{
		Name:            ir.DeclaredTypeName{TypeID: id},
		Shape:           ir.TypeShape{Kind: ir.ShapeObject, Object: &ir.ObjectTypeDeclaration{}},
		ReferencedTypes: refs,
	}
}

func typeMap(decls ...ir.TypeDeclaration) map[ir.TypeID]ir.TypeDeclaration {
	m := make(map[ir.TypeID]ir.TypeDeclaration, len(decls))
	for _, d := range decls {
		m[d.Name.TypeID] = d
	}
	return m
}

func TestFindAliasCycles_Empty(t *testing.T) {
	assert.Empty(t, FindAliasCycles(nil))
}

func TestFindAliasCycles_Chain(t *testing.T) {
	types := typeMap(
		aliasOf("a", named("b")),
		aliasOf("b", named("c")),
		object("c"),
	)
	assert.Empty(t, FindAliasCycles(types), "a chain ending in an object is not a cycle")
}

func TestFindAliasCycles_SelfLoop(t *testing.T) {
	cycles := FindAliasCycles(typeMap(aliasOf("a", named("a"))))
	require.Len(t, cycles, 1)
	assert.Equal(t, []ir.TypeID{"a", "a"}, cycles[0].Path)
	assert.Equal(t, "a -> a", cycles[0].String())
}

func TestFindAliasCycles_TwoNodeCycle(t *testing.T) {
	cycles := FindAliasCycles(typeMap(
		aliasOf("b", named("a")),
		aliasOf("a", named("b")),
	))
	require.Len(t, cycles, 1)
	assert.Equal(t, []ir.TypeID{"a", "b", "a"}, cycles[0].Path, "path starts at the smallest id")
}

func TestFindAliasCycles_ThreeNodeCycleWithTail(t *testing.T) {
	cycles := FindAliasCycles(typeMap(
		aliasOf("entry", named("x")),
		aliasOf("x", named("y")),
		aliasOf("y", named("z")),
		aliasOf("z", named("x")),
	))
	require.Len(t, cycles, 1)
	assert.Equal(t, "x -> y -> z -> x", cycles[0].String())
}

func TestFindAliasCycles_MultipleIndependentCycles(t *testing.T) {
	cycles := FindAliasCycles(typeMap(
		aliasOf("q", named("r")),
		aliasOf("r", named("q")),
		aliasOf("a", named("b")),
		aliasOf("b", named("a")),
	))
	require.Len(t, cycles, 2)
	assert.Equal(t, ir.TypeID("a"), cycles[0].Path[0])
	assert.Equal(t, ir.TypeID("q"), cycles[1].Path[0])
}

func TestFindAliasCycles_ContainersAreRecursion(t *testing.T) {
	types := typeMap(
		aliasOf("tree", ir.List(named("tree"))),
		object("node", "node"),
	)
	assert.Empty(t, FindAliasCycles(types), "list<tree> and self-referencing objects are recursive types")
}
