package kensaku

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// FilterState is a compiled term list together with the matcher state the
// world keeps for it. States are produced only by the world's compile step.
// Exactly one owner releases a state; any number of handles may borrow it
// while the owner keeps it alive.
type FilterState struct {
	world     *World
	terms     []Term
	names     []string
	fields    []int // indices of data terms, in term order
	include   bitmask256
	exclude   bitmask256
	shared    bool // some data term reads a fixed source
	instanced bool
	name      string
	cache     matchCache
}

// matchCache remembers which archetypes matched, so a pass only tests the
// archetypes created since the previous one.
type matchCache struct {
	archetypes []int
	seen       int
}

// IsEmpty reports whether s holds no compiled terms, either because it was
// released or because its contents were adopted by a handle.
func (s *FilterState) IsEmpty() bool {
	return s == nil || s.terms == nil
}

func (s *FilterState) TermCount() int {
	if s.IsEmpty() {
		return 0
	}
	return len(s.terms)
}

// Terms returns a copy of the compiled terms.
func (s *FilterState) Terms() []Term {
	if s.IsEmpty() {
		return nil
	}
	return slices.Clone(s.terms)
}

// compileFilter is the engine's compile step. The returned state is owned by
// the caller and counted as live until released.
func (w *World) compileFilter(terms []Term, instanced bool, name string) (*FilterState, error) {
	s, err := w.buildState(terms)
	if err != nil {
		return nil, err
	}
	s.instanced = instanced
	s.name = name
	w.liveFilters++
	return s, nil
}

// buildState validates terms and derives the matcher. It does not count the
// state as live, which makes it suitable for one-shot passes.
func (w *World) buildState(terms []Term) (*FilterState, error) {
	if len(terms) == 0 {
		return nil, eris.Wrap(ErrCompile, "empty term list")
	}
	type termKey struct {
		id  ComponentID
		src Entity
	}
	seen := make(map[termKey]int, len(terms))
	s := &FilterState{
		world: w,
		terms: slices.Clone(terms),
		names: make([]string, len(terms)),
	}
	required := false
	for i, t := range terms {
		if !w.isRegistered(t.ID) {
			return nil, eris.Wrapf(ErrCompile, "term %d: component %d is not registered", i, t.ID)
		}
		name := w.components.names[t.ID]
		if t.Access > AccessNone {
			return nil, eris.Wrapf(ErrCompile, "term %d (%s): invalid access %d", i, name, t.Access)
		}
		if t.Oper > OperOptional {
			return nil, eris.Wrapf(ErrCompile, "term %d (%s): invalid operator %d", i, name, t.Oper)
		}
		if t.Oper == OperNot && t.Access != AccessDefault && t.Access != AccessNone {
			return nil, eris.Wrapf(ErrCompile, "term %d (%s): a not term cannot have [%s] access", i, name, t.Access)
		}
		key := termKey{id: t.ID, src: t.Src}
		if prev, dup := seen[key]; dup {
			return nil, eris.Wrapf(ErrCompile, "term %d (%s) conflicts with term %d", i, name, prev)
		}
		seen[key] = i
		if t.IsSelf() {
			switch t.Oper {
			case OperAnd:
				required = true
				s.include.set(t.ID)
			case OperNot:
				s.exclude.set(t.ID)
			}
		} else if !w.IsValid(t.Src) {
			return nil, eris.Wrapf(ErrCompile, "term %d (%s): source %s is not alive", i, name, t.Src)
		}
		if t.IsData() {
			s.fields = append(s.fields, i)
			if !t.IsSelf() {
				s.shared = true
			}
		}
		s.names[i] = name
	}
	// optional and not terms alone would match every entity, including ones
	// without components
	if !required {
		return nil, eris.Wrap(ErrCompile, "filter has no required term on the iterated entity")
	}
	return s, nil
}

// copyFilterState deep-clones s into a new live state.
func (w *World) copyFilterState(s *FilterState) *FilterState {
	c := *s
	c.terms = slices.Clone(s.terms)
	c.names = slices.Clone(s.names)
	c.fields = slices.Clone(s.fields)
	c.cache.archetypes = slices.Clone(s.cache.archetypes)
	w.liveFilters++
	return &c
}

// releaseFilterState empties s. Releasing an empty state is a no-op.
func (w *World) releaseFilterState(s *FilterState) {
	if s.IsEmpty() {
		return
	}
	*s = FilterState{world: s.world}
	w.liveFilters--
}

// moveFilterState transfers the contents of s into a new state and leaves s
// empty. The live count is unchanged.
func moveFilterState(s *FilterState) *FilterState {
	dst := new(FilterState)
	*dst = *s
	*s = FilterState{world: s.world}
	return dst
}

// formatFilter renders s as a term expression.
func (w *World) formatFilter(s *FilterState) string {
	if s.IsEmpty() {
		return ""
	}
	parts := make([]string, len(s.terms))
	for i, t := range s.terms {
		parts[i] = formatTerm(t, s.names[i])
	}
	return strings.Join(parts, ", ")
}

// matchArchetypes refreshes the archetype cache of s and returns the indices
// of all matching archetypes.
func (w *World) matchArchetypes(s *FilterState) []int {
	arches := w.archetypes.archetypes
	for i := s.cache.seen; i < len(arches); i++ {
		a := arches[i]
		if a.mask.contains(s.include) && !a.mask.intersects(s.exclude) {
			s.cache.archetypes = append(s.cache.archetypes, i)
		}
	}
	s.cache.seen = len(arches)
	return s.cache.archetypes
}

// sourcesMatch evaluates the terms bound to fixed entities.
func (w *World) sourcesMatch(s *FilterState) bool {
	for _, t := range s.terms {
		if t.IsSelf() {
			continue
		}
		has := HasComponent(w, t.Src, t.ID)
		switch t.Oper {
		case OperAnd:
			if !has {
				return false
			}
		case OperNot:
			if has {
				return false
			}
		}
	}
	return true
}

// bindFields checks that the data terms of s line up one-to-one with ids and
// returns the term index of each.
func (s *FilterState) bindFields(ids ...ComponentID) ([]int, error) {
	if len(s.fields) != len(ids) {
		return nil, eris.Wrapf(ErrShapeMismatch, "filter %q has %d data terms, %d component types declared",
			s.world.formatFilter(s), len(s.fields), len(ids))
	}
	for k, ti := range s.fields {
		if s.terms[ti].ID != ids[k] {
			return nil, eris.Wrapf(ErrShapeMismatch, "data term %d is %s, component %d is %s",
				ti, s.names[ti], k, s.world.components.names[ids[k]])
		}
	}
	return slices.Clone(s.fields), nil
}
