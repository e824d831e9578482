package converter

import (
	"maps"
	"slices"

	"github.com/roach88/apigraph/internal/ir"
)

// typeSet accumulates referenced type ids.
type typeSet map[ir.TypeID]struct{}

func (s typeSet) addRef(ref ir.TypeReference) {
	for _, n := range ref.NamedTypes() {
		s[n.TypeID] = struct{}{}
	}
}

func (s typeSet) addName(n ir.DeclaredTypeName) {
	s[n.TypeID] = struct{}{}
}

func (s typeSet) addAll(ids []ir.TypeID) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

func (s typeSet) sorted() []ir.TypeID {
	return slices.Sorted(maps.Keys(s))
}
