package kensaku

import (
	"cmp"
	"slices"

	"github.com/rotisserie/eris"
)

// matchedSnapshot returns the entities f matches, grouped by the archetype
// they live in so that consecutive moves leave the same source and land in
// the same target. The snapshot is taken before any entity moves, so a pass
// that changes what f matches never sees its own changes.
func (w *World) matchedSnapshot(f *Filter) ([]Entity, error) {
	ents, err := f.Entities()
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(ents, func(a, b Entity) int {
		return cmp.Compare(w.entities.metas[a.ID].archetypeIndex, w.entities.metas[b.ID].archetypeIndex)
	})
	return ents, nil
}

// DeleteEntities removes every entity f matches and returns how many were
// removed.
func (w *World) DeleteEntities(f *Filter) (int, error) {
	ents, err := w.matchedSnapshot(f)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range ents {
		if w.RemoveEntity(e) {
			n++
		}
	}
	w.logBatch(f, "delete", n)
	return n, nil
}

// AddComponentByFilter adds a zero T to every entity f matches that does not
// have one yet, registering T if needed. Existing values are left untouched.
//
// Parameters:
//   - w: The world f was compiled against.
//   - f: The filter selecting the entities.
//
// Returns:
//   - The number of entities that gained the component.
func AddComponentByFilter[T any](w *World, f *Filter) (int, error) {
	return AddComponentIDByFilter(w, f, RegisterComponent[T](w))
}

// AddComponentIDByFilter is AddComponentByFilter for a component ID.
func AddComponentIDByFilter(w *World, f *Filter, id ComponentID) (int, error) {
	if !w.isRegistered(id) {
		return 0, eris.Wrapf(ErrUnknownComponent, "component %d", id)
	}
	ents, err := w.matchedSnapshot(f)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range ents {
		if HasComponent(w, e, id) {
			continue
		}
		if w.ensureComponent(e, id) != nil {
			n++
		}
	}
	w.logBatch(f, "add", n)
	return n, nil
}

// SetComponentByFilter sets T to val on every entity f matches, adding the
// component where it is missing, and returns how many entities were written.
func SetComponentByFilter[T any](w *World, f *Filter, val T) (int, error) {
	id := RegisterComponent[T](w)
	ents, err := w.matchedSnapshot(f)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range ents {
		if p := w.ensureComponent(e, id); p != nil {
			*(*T)(p) = val
			n++
		}
	}
	w.logBatch(f, "set", n)
	return n, nil
}

// RemoveComponentByFilter removes T from every entity f matches. If T was
// never registered no entity can have it and nothing is removed.
func RemoveComponentByFilter[T any](w *World, f *Filter) (int, error) {
	id, ok := ComponentIDOf[T](w)
	if !ok {
		if _, err := f.checked(); err != nil {
			return 0, err
		}
		return 0, nil
	}
	return RemoveComponentIDByFilter(w, f, id)
}

// RemoveComponentIDByFilter removes component id from every entity f matches
// and returns how many entities lost it. OnRemove observers run for each one.
func RemoveComponentIDByFilter(w *World, f *Filter, id ComponentID) (int, error) {
	if !w.isRegistered(id) {
		return 0, eris.Wrapf(ErrUnknownComponent, "component %d", id)
	}
	ents, err := w.matchedSnapshot(f)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range ents {
		if RemoveComponentID(w, e, id) {
			n++
		}
	}
	w.logBatch(f, "remove", n)
	return n, nil
}

func (w *World) logBatch(f *Filter, op string, n int) {
	w.logger.Debug().
		Str("filter_id", f.id.String()).
		Str("op", op).
		Int("entities", n).
		Msg("bulk operation by filter")
}
