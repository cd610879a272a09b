// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/pkg/profile"
	"github.com/rs/zerolog"

	"github.com/edwinsyarief/kensaku"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	count := 50
	iters := 10000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(count, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w := kensaku.NewWorld(kensaku.WithInitialCapacity(numEntities), kensaku.WithLogger(zerolog.Nop()))
		query, err := kensaku.NewFilter2[comp1, comp2](w)
		if err != nil {
			panic(err)
		}
		batch := kensaku.NewBuilder2[comp1, comp2](w)

		for range iters {
			batch.NewEntities(numEntities)
			_ = query.Each(func(c1 *comp1, c2 *comp2) {
				c1.V += c2.V
				c1.W += c2.W
			})
			if _, err := w.DeleteEntities(&query.Filter); err != nil {
				panic(err)
			}
		}
		query.Release()
	}
}
