package compiler

import (
	"maps"
	"slices"

	"github.com/roach88/apigraph/internal/graph"
	"github.com/roach88/apigraph/internal/ir"
)

// ComputeServiceTypeReferenceInfo splits the types reachable from
// services into those one service uses alone and those several share.
// It runs on the unfiltered graph.
func ComputeServiceTypeReferenceInfo(g *graph.Graph) ir.ServiceTypeReferenceInfo {
	info := ir.ServiceTypeReferenceInfo{
		TypesReferencedOnlyByService: make(map[ir.ServiceID][]ir.TypeID),
		SharedTypes:                  []ir.TypeID{},
	}
	refs := g.TypesReferencedByService()
	for _, id := range slices.Sorted(maps.Keys(refs)) {
		services := refs[id]
		if len(services) == 1 {
			info.TypesReferencedOnlyByService[services[0]] = append(info.TypesReferencedOnlyByService[services[0]], id)
			continue
		}
		info.SharedTypes = append(info.SharedTypes, id)
	}
	return info
}
