package kensaku_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/edwinsyarief/kensaku"
)

// go test -run ^TestCreateEntity$ . -count 1
func TestCreateEntity(t *testing.T) {
	w := newTestWorld(t)
	e1 := w.CreateEntity()
	e2 := w.CreateEntity()

	assert.Equal(t, e1, kensaku.Entity{ID: 0, Version: 1})
	assert.Equal(t, e2.ID, uint32(1))
	assert.Assert(t, !e1.IsZero())
	assert.Equal(t, e1.String(), "0v1")
	assert.Equal(t, w.EntityCount(), 2)

	batch := w.CreateEntities(5)
	assert.Equal(t, len(batch), 5)
	assert.Equal(t, w.EntityCount(), 7)
	assert.Assert(t, w.CreateEntities(0) == nil)
}

// go test -run ^TestRemoveEntityRecyclesID$ . -count 1
func TestRemoveEntityRecyclesID(t *testing.T) {
	w := newTestWorld(t)
	e := w.CreateEntity()
	assert.Assert(t, w.RemoveEntity(e))
	assert.Assert(t, !w.IsValid(e))
	assert.Assert(t, !w.RemoveEntity(e))

	again := w.CreateEntity()
	assert.Equal(t, again.ID, e.ID)
	assert.Assert(t, again.Version != e.Version)
	assert.Assert(t, w.IsValid(again))

	got, ok := w.EntityByID(e.ID)
	assert.Assert(t, ok)
	assert.Equal(t, got, again)
	_, ok = w.EntityByID(99)
	assert.Assert(t, !ok)
}

// go test -run ^TestSetComponent$ . -count 1
func TestSetComponent(t *testing.T) {
	w := newTestWorld(t)
	e := w.CreateEntity()

	// --- SCENARIO 1: ADD A NEW COMPONENT ---
	t.Run("AddNewComponent", func(t *testing.T) {
		assert.Assert(t, kensaku.SetComponent(w, e, Position{X: 100, Y: 200}))
		p := kensaku.GetComponent[Position](w, e)
		assert.Assert(t, p != nil)
		assert.Equal(t, *p, Position{X: 100, Y: 200})
	})

	// --- SCENARIO 2: UPDATE AN EXISTING COMPONENT ---
	t.Run("UpdateExistingComponent", func(t *testing.T) {
		kensaku.SetComponent(w, e, Velocity{VX: 1, VY: 2})
		assert.Assert(t, kensaku.SetComponent(w, e, Position{X: 555, Y: 777}))
		assert.Equal(t, *kensaku.GetComponent[Position](w, e), Position{X: 555, Y: 777})
		assert.Equal(t, *kensaku.GetComponent[Velocity](w, e), Velocity{VX: 1, VY: 2})
	})

	// --- SCENARIO 3: REMOVE KEEPS THE OTHERS ---
	t.Run("RemoveComponent", func(t *testing.T) {
		assert.Assert(t, kensaku.RemoveComponent[Position](w, e))
		assert.Assert(t, kensaku.GetComponent[Position](w, e) == nil)
		assert.Equal(t, *kensaku.GetComponent[Velocity](w, e), Velocity{VX: 1, VY: 2})
		assert.Assert(t, !kensaku.RemoveComponent[Position](w, e))
		assert.Assert(t, !kensaku.RemoveComponent[Health](w, e))
	})

	// --- SCENARIO 4: DEAD ENTITY ---
	t.Run("DeadEntity", func(t *testing.T) {
		dead := w.CreateEntity()
		w.RemoveEntity(dead)
		assert.Assert(t, !kensaku.SetComponent(w, dead, Position{}))
		assert.Assert(t, kensaku.GetComponent[Position](w, dead) == nil)
	})
}

// go test -run ^TestRemoveKeepsNeighbours$ . -count 1
func TestRemoveKeepsNeighbours(t *testing.T) {
	w := newTestWorld(t)
	ents := spawnMovers(w, 11)

	// remove from the middle of a chunk, a chunk's last row, and a whole chunk
	removed := map[int]bool{1: true, 3: true, 8: true, 9: true, 10: true}
	for i := range removed {
		assert.Assert(t, w.RemoveEntity(ents[i]))
	}
	for i, e := range ents {
		if removed[i] {
			assert.Assert(t, !w.IsValid(e))
			continue
		}
		p := kensaku.GetComponent[Position](w, e)
		assert.Assert(t, p != nil, "entity %d", i)
		assert.Equal(t, *p, Position{X: float32(i), Y: float32(i)})
	}

	f, err := kensaku.NewFilter1[Position](w)
	assert.NilError(t, err)
	defer f.Release()
	n, err := f.Count()
	assert.NilError(t, err)
	assert.Equal(t, n, 6)
}

// go test -run ^TestComponentRegistry$ . -count 1
func TestComponentRegistry(t *testing.T) {
	w := newTestWorld(t)
	pos := kensaku.RegisterComponent[Position](w)
	assert.Equal(t, kensaku.RegisterComponent[Position](w), pos)
	id, ok := kensaku.ComponentIDOf[Position](w)
	assert.Assert(t, ok)
	assert.Equal(t, id, pos)
	_, ok = kensaku.ComponentIDOf[Velocity](w)
	assert.Assert(t, !ok)

	assert.Equal(t, w.ComponentName(pos), "Position")
	byName, ok := w.LookupComponent("Position")
	assert.Assert(t, ok)
	assert.Equal(t, byName, pos)
	assert.Equal(t, w.ComponentName(200), "")
	assert.Assert(t, w.ComponentType(200) == nil)

	_, err := kensaku.RegisterDynamicComponent(w, "Position", 4)
	assert.ErrorContains(t, err, "already registered")
	_, err = kensaku.RegisterDynamicComponent(w, "", 4)
	assert.Assert(t, err != nil)

	e := w.CreateEntity()
	assert.Assert(t, kensaku.AddComponentID(w, e, pos))
	assert.Assert(t, kensaku.HasComponent(w, e, pos))
	assert.Equal(t, *kensaku.GetComponent[Position](w, e), Position{})
	assert.Assert(t, !kensaku.SetComponentData(w, e, pos, []byte{1, 2, 3}))
	assert.Assert(t, kensaku.RemoveComponentID(w, e, pos))
	assert.Assert(t, !kensaku.HasComponent(w, e, pos))
}

// go test -run ^TestBuilder$ . -count 1
func TestBuilder(t *testing.T) {
	w := newTestWorld(t)
	b := kensaku.NewBuilder[Health](w)
	e := b.NewEntity()
	assert.Equal(t, *b.Get(e), Health{})
	assert.Assert(t, b.Set(e, Health{Current: 3, Max: 5}))
	assert.Equal(t, *kensaku.GetComponent[Health](w, e), Health{Current: 3, Max: 5})

	ents := b.NewEntitiesWithValue(9, Health{Current: 1, Max: 1})
	assert.Equal(t, len(ents), 9)
	for _, e := range ents {
		assert.Equal(t, *b.Get(e), Health{Current: 1, Max: 1})
	}

	other := w.CreateEntity()
	assert.Assert(t, b.Get(other) == nil)
	assert.Assert(t, b.Set(other, Health{Max: 2}))
	assert.Equal(t, b.Get(other).Max, 2)

	b2 := kensaku.NewBuilder2[Position, Health](w)
	pairs := b2.NewEntitiesWithValues(3, Position{X: 1}, Health{Max: 9})
	for _, e := range pairs {
		p, h := b2.Get(e)
		assert.Equal(t, *p, Position{X: 1})
		assert.Equal(t, *h, Health{Max: 9})
	}
	assert.Equal(t, w.EntityCount(), 1+9+1+3)
}
