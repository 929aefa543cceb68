package cards

import (
	"sort"
	"strings"
)

// Universe is the immutable set of card names considered valid. Lands are
// tracked separately so samplers can exclude them.
type Universe struct {
	all     map[string]struct{}
	lands   map[string]struct{}
	names   []string // sorted
	nonland []string // sorted
}

// NewUniverse builds a universe from every known card name and the subset of
// those names that are lands. Land names missing from allNames are ignored.
func NewUniverse(allNames, landNames []string) *Universe {
	u := &Universe{
		all:   make(map[string]struct{}, len(allNames)),
		lands: make(map[string]struct{}, len(landNames)),
	}

	for _, name := range allNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		u.all[name] = struct{}{}
	}
	for _, name := range landNames {
		name = strings.TrimSpace(name)
		if _, ok := u.all[name]; ok {
			u.lands[name] = struct{}{}
		}
	}

	u.names = make([]string, 0, len(u.all))
	u.nonland = make([]string, 0, len(u.all)-len(u.lands))
	for name := range u.all {
		u.names = append(u.names, name)
		if _, land := u.lands[name]; !land {
			u.nonland = append(u.nonland, name)
		}
	}
	sort.Strings(u.names)
	sort.Strings(u.nonland)

	return u
}

// Len returns the number of card names in the universe.
func (u *Universe) Len() int {
	return len(u.all)
}

// Contains reports whether name is a known card.
func (u *Universe) Contains(name string) bool {
	_, ok := u.all[name]
	return ok
}

// IsLand reports whether name is a known land card.
func (u *Universe) IsLand(name string) bool {
	_, ok := u.lands[name]
	return ok
}

// IsNonland reports whether name is a known card that is not a land.
func (u *Universe) IsNonland(name string) bool {
	return u.Contains(name) && !u.IsLand(name)
}

// All returns every card name, sorted.
func (u *Universe) All() []string {
	out := make([]string, len(u.names))
	copy(out, u.names)
	return out
}

// Nonland returns every card name that is not a land, sorted.
func (u *Universe) Nonland() []string {
	out := make([]string, len(u.nonland))
	copy(out, u.nonland)
	return out
}

// Lands returns every land name, sorted.
func (u *Universe) Lands() []string {
	out := make([]string, 0, len(u.lands))
	for name := range u.lands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
