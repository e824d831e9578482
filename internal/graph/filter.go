package graph

import (
	"maps"
	"slices"
	"strings"
)

// Filter selects the audiences a projection is built for. The zero
// value selects everything.
type Filter struct {
	audiences map[string]struct{}
}

// All returns the filter that keeps every declaration.
func All() Filter {
	return Filter{}
}

// ForAudiences returns a filter for the given audiences. With no
// audiences it is the same as All.
func ForAudiences(audiences ...string) Filter {
	if len(audiences) == 0 {
		return All()
	}
	set := make(map[string]struct{}, len(audiences))
	for _, a := range audiences {
		set[a] = struct{}{}
	}
	return Filter{audiences: set}
}

// IsAll reports whether the filter keeps every declaration.
func (f Filter) IsAll() bool {
	return len(f.audiences) == 0
}

// Audiences returns the selected audiences, sorted. It is empty for All.
func (f Filter) Audiences() []string {
	return slices.Sorted(maps.Keys(f.audiences))
}

// Matches reports whether a declaration tagged with tags is a seed. An
// empty tag list never matches; unrestricted endpoints are handled by
// the graph.
func (f Filter) Matches(tags []string) bool {
	for _, t := range tags {
		if _, ok := f.audiences[t]; ok {
			return true
		}
	}
	return false
}

func (f Filter) String() string {
	if f.IsAll() {
		return "all"
	}
	return strings.Join(f.Audiences(), ",")
}
