// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

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

type comp3 struct {
	V int64
	W int64
}

type comp4 struct {
	V int64
	W int64
}

func main() {
	count := 50
	iters := 10000
	entities := 100000
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(count, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w := kensaku.NewWorld(kensaku.WithInitialCapacity(numEntities), kensaku.WithLogger(zerolog.Nop()))
		batch := kensaku.NewBuilder2[comp1, comp2](w)
		for _, e := range batch.NewEntities(numEntities) {
			kensaku.SetComponent(w, e, comp3{})
			kensaku.SetComponent(w, e, comp4{})
		}
		query, err := kensaku.NewFilter4[comp1, comp2, comp3, comp4](w)
		if err != nil {
			panic(err)
		}

		for range iters {
			_ = query.Iter(func(_ *kensaku.Iter, c1 []comp1, c2 []comp2, _ []comp3, _ []comp4) {
				for i := range c1 {
					c1[i].V += c2[i].V
					c1[i].W += c2[i].W
				}
			})
		}
		query.Release()
	}
}
