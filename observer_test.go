package kensaku_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/edwinsyarief/kensaku"
)

// go test -run ^TestOnRemove$ . -count 1
func TestOnRemove(t *testing.T) {
	w := newTestWorld(t)
	ents := spawnMovers(w, 6)
	vel, _ := kensaku.ComponentIDOf[Velocity](w)

	var removed []kensaku.Entity
	var values []Velocity
	assert.NilError(t, kensaku.OnRemove(w, vel, func(it *kensaku.Iter) {
		assert.Equal(t, it.Count(), 1)
		removed = append(removed, it.Entity(0))
		values = append(values, kensaku.Field[Velocity](it, 0)[0])
	}))

	// removing the component
	kensaku.RemoveComponent[Velocity](w, ents[2])
	// deleting the entity
	w.RemoveEntity(ents[4])
	// unrelated component
	kensaku.RemoveComponent[Position](w, ents[0])

	assert.DeepEqual(t, removed, []kensaku.Entity{ents[2], ents[4]})
	assert.DeepEqual(t, values, []Velocity{{VX: 1, VY: 2}, {VX: 1, VY: 2}})

	err := kensaku.OnRemove(w, 250, func(*kensaku.Iter) {})
	assert.ErrorIs(t, err, kensaku.ErrUnknownComponent)
}

// go test -run ^TestOnRemoveOf$ . -count 1
func TestOnRemoveOf(t *testing.T) {
	w := newTestWorld(t)
	ents := spawnMovers(w, 3)

	sum := float32(0)
	kensaku.OnRemoveOf(w, func(e kensaku.Entity, p *Position) {
		assert.Assert(t, w.IsValid(e))
		sum += p.X
	})

	f, err := kensaku.NewFilter1[Position](w)
	assert.NilError(t, err)
	defer f.Release()
	n, err := w.DeleteEntities(&f.Filter)
	assert.NilError(t, err)
	assert.Equal(t, n, len(ents))
	assert.Equal(t, sum, float32(0+1+2))
	assert.Equal(t, w.EntityCount(), 0)
}
