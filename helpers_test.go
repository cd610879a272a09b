package kensaku_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/edwinsyarief/kensaku"
)

// --- Test Components ---
type Position struct{ X, Y float32 }
type Velocity struct{ VX, VY float32 }
type Health struct{ Current, Max int }
type Mass struct{ Value float64 }
type Frozen struct{}
type Pair[T any] struct{ A, B T }

// testChunkSize is small so that every test pass crosses chunk boundaries.
const testChunkSize = 4

// --- Test Suite Setup ---
func newTestWorld(_ testing.TB, opts ...kensaku.WorldOption) *kensaku.World {
	base := []kensaku.WorldOption{kensaku.WithLogger(zerolog.Nop()), kensaku.WithChunkSize(testChunkSize)}
	return kensaku.NewWorld(append(base, opts...)...)
}

// spawnMovers creates n entities with Position{i, i} and Velocity{1, 2}.
func spawnMovers(w *kensaku.World, n int) []kensaku.Entity {
	ents := kensaku.NewBuilder2[Position, Velocity](w).NewEntities(n)
	for i, e := range ents {
		p := kensaku.GetComponent[Position](w, e)
		p.X, p.Y = float32(i), float32(i)
		*kensaku.GetComponent[Velocity](w, e) = Velocity{VX: 1, VY: 2}
	}
	return ents
}

// spawnStatics creates n entities with only Position{-1, -1}.
func spawnStatics(w *kensaku.World, n int) []kensaku.Entity {
	return kensaku.NewBuilder[Position](w).NewEntitiesWithValue(n, Position{X: -1, Y: -1})
}

func entitySet(ents []kensaku.Entity) map[kensaku.Entity]bool {
	set := make(map[kensaku.Entity]bool, len(ents))
	for _, e := range ents {
		set[e] = true
	}
	return set
}
