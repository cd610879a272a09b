package kensaku_test

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/edwinsyarief/kensaku"
)

func benchWorld(size int) *kensaku.World {
	w := kensaku.NewWorld(kensaku.WithInitialCapacity(size), kensaku.WithLogger(zerolog.Nop()))
	kensaku.NewBuilder2[Position, Velocity](w).NewEntitiesWithValues(size, Position{}, Velocity{VX: 1, VY: 1})
	return w
}

func benchName(size int) string {
	if size == 1000000 {
		return "1M"
	}
	return fmt.Sprintf("%dK", size/1000)
}

// Filter Benchmarks
func BenchmarkFilter2Iter(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		b.Run(benchName(size), func(b *testing.B) {
			w := benchWorld(size)
			f, _ := kensaku.NewFilter2[Position, Velocity](w)
			defer f.Release()
			b.ReportAllocs()
			for b.Loop() {
				_ = f.Iter(func(_ *kensaku.Iter, p []Position, v []Velocity) {
					for i := range p {
						p[i].X += v[i].VX
						p[i].Y += v[i].VY
					}
				})
			}
		})
	}
}

func BenchmarkFilter2Each(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		b.Run(benchName(size), func(b *testing.B) {
			w := benchWorld(size)
			f, _ := kensaku.NewFilter2[Position, Velocity](w)
			defer f.Release()
			b.ReportAllocs()
			for b.Loop() {
				_ = f.Each(func(p *Position, v *Velocity) {
					p.X += v.VX
					p.Y += v.VY
				})
			}
		})
	}
}

func BenchmarkEachFunc(b *testing.B) {
	sizes := []int{1000, 10000}
	for _, size := range sizes {
		b.Run(benchName(size), func(b *testing.B) {
			w := benchWorld(size)
			b.ReportAllocs()
			for b.Loop() {
				_ = kensaku.EachFunc(w, func(p *Position, v *Velocity) {
					p.X += v.VX
				})
			}
		})
	}
}

func BenchmarkNewFilter(b *testing.B) {
	w := benchWorld(1000)
	b.ReportAllocs()
	for b.Loop() {
		f, _ := kensaku.NewFilter(w, kensaku.WithExpr("Position, [in] Velocity"))
		f.Release()
	}
}
