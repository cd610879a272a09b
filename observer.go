package kensaku

import "github.com/rotisserie/eris"

// ComponentRemoved is published on the world's event bus right before a
// component value is discarded, either because the component is removed from
// the entity or because the entity is deleted.
type ComponentRemoved struct {
	Entity    Entity
	Component ComponentID
	// Iter is a one-entity cursor whose term 0 is the component being
	// removed. It is valid only while the event is being delivered.
	Iter *Iter
}

// OnRemove calls fn before any entity loses component id. The cursor passed
// to fn holds exactly that entity, and Field(it, 0) still reads the value
// being removed.
func OnRemove(w *World, id ComponentID, fn func(*Iter)) error {
	if !w.isRegistered(id) {
		return eris.Wrapf(ErrUnknownComponent, "component %d", id)
	}
	Subscribe(&w.events, func(ev ComponentRemoved) {
		if ev.Component == id {
			fn(ev.Iter)
		}
	})
	w.logger.Debug().Int("component_id", int(id)).Str("component_name", w.components.names[id]).Msg("remove observer added")
	return nil
}

// OnRemoveOf is OnRemove for a component backed by a Go type.
func OnRemoveOf[T any](w *World, fn func(Entity, *T)) {
	id := RegisterComponent[T](w)
	Subscribe(&w.events, func(ev ComponentRemoved) {
		if ev.Component == id {
			fn(ev.Entity, at(column[T](ev.Iter, 0), true, 0))
		}
	})
}

// publishRemoved notifies observers that e is about to lose id.
func (w *World) publishRemoved(e Entity, id ComponentID) {
	if !HasSubscribers[ComponentRemoved](&w.events) {
		return
	}
	it, err := w.entityIter(e, id)
	if err != nil {
		w.logger.Error().Err(err).Stringer("entity", e).Int("component_id", int(id)).Msg("cannot build remove event")
		return
	}
	Publish(&w.events, ComponentRemoved{Entity: e, Component: id, Iter: it})
}

// entityIter returns a cursor positioned on the single row of e, with id as
// its only term.
func (w *World) entityIter(e Entity, id ComponentID) (*Iter, error) {
	s, err := w.buildState([]Term{{ID: id}})
	if err != nil {
		return nil, err
	}
	meta := w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]
	it := &Iter{
		world:     w,
		state:     s,
		fields:    make([]field, 1),
		instanced: true,
	}
	it.bind(a, a.chunks[meta.chunkIndex])
	it.setWindow(meta.index, 1)
	return it, nil
}
