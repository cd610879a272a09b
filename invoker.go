package kensaku

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// invokeKind is the iteration strategy chosen for a callback. It is decided
// once per callback shape, never per chunk.
type invokeKind uint8

const (
	// invokeChunk calls the callback once per chunk with bulk slices.
	invokeChunk invokeKind = iota
	// invokeEachEntity calls the callback per entity with its identity first.
	invokeEachEntity
	// invokeEach calls the callback per entity with component pointers only.
	invokeEach
)

// instanced reports whether the strategy consumes a whole chunk natively.
// Per-entity strategies read shared fields per row, so they never need the
// cursor to split chunks for them.
func (k invokeKind) instanced() bool {
	return k != invokeChunk
}

func (k invokeKind) String() string {
	switch k {
	case invokeChunk:
		return "chunk"
	case invokeEachEntity:
		return "each_entity"
	case invokeEach:
		return "each"
	}
	return "invalid"
}

// drive advances it until the engine reports exhaustion and hands every
// chunk to dispatch exactly once.
func drive(it *Iter, kind invokeKind, dispatch func(*Iter)) int {
	it.instanced = it.instanced || kind.instanced()
	chunks := 0
	for it.next() {
		dispatch(it)
		chunks++
	}
	return chunks
}

func isNilFunc(fn any) bool {
	if fn == nil {
		return true
	}
	v := reflect.ValueOf(fn)
	return v.Kind() == reflect.Func && v.IsNil()
}

func nilCallback(kind invokeKind) error {
	return eris.Wrapf(ErrShapeMismatch, "nil %s callback", kind)
}

func shapeError(fn any) error {
	return eris.Wrapf(ErrShapeMismatch, "unsupported callback type %T", fn)
}

type invoker1[T any] struct {
	kind       invokeKind
	chunk      func(*Iter, []T)
	eachEntity func(Entity, *T)
	each       func(*T)
}

// bound reports whether the callback for the selected kind is set.
func (inv *invoker1[T]) bound() bool {
	switch inv.kind {
	case invokeChunk:
		return inv.chunk != nil
	case invokeEachEntity:
		return inv.eachEntity != nil
	}
	return inv.each != nil
}

// selectInvoker1 picks the strategy matching the parameter list of fn.
func selectInvoker1[T any](fn any) (invoker1[T], error) {
	if !isNilFunc(fn) {
		switch fn := fn.(type) {
		case func(*Iter, []T):
			return invoker1[T]{kind: invokeChunk, chunk: fn}, nil
		case func(Entity, *T):
			return invoker1[T]{kind: invokeEachEntity, eachEntity: fn}, nil
		case func(*T):
			return invoker1[T]{kind: invokeEach, each: fn}, nil
		}
	}
	return invoker1[T]{}, shapeError(fn)
}

func (inv *invoker1[T]) invoke(it *Iter, fields [1]int) {
	switch inv.kind {
	case invokeChunk:
		it.forChunk(func() {
			inv.chunk(it, column[T](it, fields[0]))
		})
	case invokeEachEntity:
		c0, s0 := column[T](it, fields[0]), it.fields[fields[0]].self
		for i, e := range it.entities {
			inv.eachEntity(e, at(c0, s0, i))
		}
	case invokeEach:
		c0, s0 := column[T](it, fields[0]), it.fields[fields[0]].self
		for i := range it.entities {
			inv.each(at(c0, s0, i))
		}
	}
}
