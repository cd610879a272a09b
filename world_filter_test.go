package kensaku_test

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"gotest.tools/v3/assert"

	"github.com/edwinsyarief/kensaku"
)

// go test -run ^TestEachShapes$ . -count 1
func TestEachShapes(t *testing.T) {
	w := newTestWorld(t)
	spawnMovers(w, 5)
	spawnStatics(w, 2)

	calls := 0
	assert.NilError(t, kensaku.Each[Velocity](w, func(v *Velocity) {
		calls++
		v.VX = 7
	}))
	assert.Equal(t, calls, 5)
	assert.NilError(t, kensaku.Each[Velocity](w, func(e kensaku.Entity, v *Velocity) {
		assert.Equal(t, v, kensaku.GetComponent[Velocity](w, e))
		assert.Equal(t, v.VX, float32(7))
	}))

	// Each registers unknown types and matches nothing
	assert.NilError(t, kensaku.Each[Health](w, func(*Health) { t.Fatal("no entity has Health") }))
	_, ok := kensaku.ComponentIDOf[Health](w)
	assert.Assert(t, ok)

	var nilFn func(*Position)
	assert.ErrorIs(t, kensaku.Each[Position](w, nilFn), kensaku.ErrShapeMismatch)
	assert.Equal(t, w.LiveFilters(), 0)
}

// go test -run ^TestUnsafeEach$ . -count 1
func TestUnsafeEach(t *testing.T) {
	w := newTestWorld(t)
	score, err := kensaku.RegisterDynamicComponent(w, "Score", 8)
	assert.NilError(t, err)
	assert.Equal(t, w.ComponentName(score), "Score")

	want := make(map[kensaku.Entity]uint64)
	for i := range 6 {
		e := w.CreateEntity()
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(i*i))
		assert.Assert(t, kensaku.SetComponentData(w, e, score, buf[:]))
		want[e] = uint64(i * i)
	}
	w.CreateEntity()

	got := make(map[kensaku.Entity]uint64)
	assert.NilError(t, kensaku.UnsafeEach(w, score, func(e kensaku.Entity, p unsafe.Pointer) {
		got[e] = binary.LittleEndian.Uint64(unsafe.Slice((*byte)(p), 8))
	}))
	assert.DeepEqual(t, got, want)

	err = kensaku.UnsafeEach(w, 250, func(kensaku.Entity, unsafe.Pointer) {})
	assert.ErrorIs(t, err, kensaku.ErrUnknownComponent)

	f, err := kensaku.NewFilter(w, kensaku.WithExpr("[in] Score"))
	assert.NilError(t, err)
	defer f.Release()
	n, err := f.Count()
	assert.NilError(t, err)
	assert.Equal(t, n, 6)
}

// go test -run ^TestEachFunc$ . -count 1
func TestEachFunc(t *testing.T) {
	w := newTestWorld(t)
	movers := spawnMovers(w, 6)
	spawnStatics(w, 4)

	calls := 0
	assert.NilError(t, kensaku.EachFunc(w, func(p *Position, v *Velocity) {
		calls++
		p.Y += v.VY
	}))
	assert.Equal(t, calls, 6)

	seen := make(map[kensaku.Entity]bool)
	fn := func(e kensaku.Entity, p *Position, v *Velocity) {
		seen[e] = true
		assert.Equal(t, p, kensaku.GetComponent[Position](w, e))
		assert.Equal(t, v, kensaku.GetComponent[Velocity](w, e))
	}
	assert.NilError(t, kensaku.EachFunc(w, fn))
	assert.DeepEqual(t, seen, entitySet(movers))
	for i, e := range movers {
		assert.Equal(t, kensaku.GetComponent[Position](w, e).Y, float32(i)+2)
	}

	// same callback type again goes through the cached plan
	clear(seen)
	assert.NilError(t, kensaku.EachFunc(w, fn))
	assert.Equal(t, len(seen), len(movers))

	positions := 0
	assert.NilError(t, kensaku.EachFunc(w, func(*Position) { positions++ }))
	assert.Equal(t, positions, 10)
	assert.Equal(t, w.LiveFilters(), 0)
}

// go test -run ^TestEachFuncRejects$ . -count 1
func TestEachFuncRejects(t *testing.T) {
	w := newTestWorld(t)
	spawnMovers(w, 2)

	for name, fn := range map[string]any{
		"nil":           nil,
		"not a func":    "Position",
		"no components": func(kensaku.Entity) {},
		"value param":   func(Position) {},
		"returns":       func(*Position) error { return nil },
		"variadic":      func(...*Position) {},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, kensaku.EachFunc(w, fn), kensaku.ErrShapeMismatch)
		})
	}
	assert.ErrorIs(t, kensaku.EachFunc(w, func(*Position, *Position) {}), kensaku.ErrCompile)
}

// go test -run ^TestFilterOptions$ . -count 1
func TestFilterOptions(t *testing.T) {
	w := newTestWorld(t)
	spawnMovers(w, 3)
	statics := spawnStatics(w, 2)
	frozen := kensaku.RegisterComponent[Frozen](w)
	kensaku.SetComponent(w, statics[0], Frozen{})
	pos, _ := kensaku.ComponentIDOf[Position](w)
	vel, _ := kensaku.ComponentIDOf[Velocity](w)

	f, err := kensaku.NewFilter(w,
		kensaku.WithTerms(kensaku.Term{ID: pos}),
		kensaku.Without(frozen),
		kensaku.With(vel),
		kensaku.WithAccess(0, kensaku.AccessOut),
		kensaku.WithName("writers"),
	)
	assert.NilError(t, err)
	defer f.Release()
	assert.Equal(t, f.String(), "[out] Position, !Frozen, [none] Velocity")
	n, err := f.Count()
	assert.NilError(t, err)
	assert.Equal(t, n, 3)

	g, err := kensaku.NewFilter(w, kensaku.WithExpr("Position, !Frozen"))
	assert.NilError(t, err)
	defer g.Release()
	n, err = g.Count()
	assert.NilError(t, err)
	assert.Equal(t, n, 4)

	_, err = kensaku.NewFilter(w, kensaku.WithOptional(0))
	assert.ErrorIs(t, err, kensaku.ErrIndexOutOfRange)
	_, err = kensaku.NewFilter(w, kensaku.WithExpr("Position"), kensaku.WithSource(-1, statics[1]))
	assert.ErrorIs(t, err, kensaku.ErrIndexOutOfRange)
}
