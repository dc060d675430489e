// Package selection tracks row checkboxes of a list screen.
package selection

import "sort"

// Set is a set of selected record ids. Operations return new sets and never modify
// their inputs.
type Set map[string]struct{}

// New builds a set from ids.
func New(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether id is selected.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of selected ids.
func (s Set) Len() int { return len(s) }

// IDs returns the selected ids sorted.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ordered returns the selected ids in the order they appear in projectionIDs.
func (s Set) Ordered(projectionIDs []string) []string {
	ids := make([]string, 0, len(s))
	for _, id := range projectionIDs {
		if s.Has(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// ToggleAll selects exactly the projection when checked and clears the selection
// otherwise.
func ToggleAll(projectionIDs []string, prev Set, checked bool) Set {
	if !checked {
		return Set{}
	}
	return New(projectionIDs...)
}

// ToggleOne flips the membership of id.
func ToggleOne(id string, prev Set) Set {
	next := make(Set, len(prev)+1)
	for k := range prev {
		next[k] = struct{}{}
	}
	if _, ok := next[id]; ok {
		delete(next, id)
	} else if id != "" {
		next[id] = struct{}{}
	}
	return next
}

// Reconcile drops every selected id that is not in projectionIDs.
func Reconcile(prev Set, projectionIDs []string) Set {
	next := make(Set, len(prev))
	for _, id := range projectionIDs {
		if prev.Has(id) {
			next[id] = struct{}{}
		}
	}
	return next
}
