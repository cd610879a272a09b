package kensaku

import (
	"reflect"
	"unsafe"

	"github.com/rotisserie/eris"
)

// field is the per-term data binding of the current chunk.
type field struct {
	ptr  unsafe.Pointer // column base for self terms, the source cell otherwise
	set  bool
	self bool
}

// Iter is a cursor over the chunks matched by a filter. The world owns the
// storage it points into; an Iter handed to a callback is only valid for the
// duration of that call.
//
// Within one chunk, every entity shares the same archetype, so self fields are
// contiguous slices indexed like Entities. Fields read from a fixed source
// entity hold a single value (see IsSelf).
type Iter struct {
	world     *World
	state     *FilterState
	fields    []field
	entities  []Entity
	matched   []int
	chk       *chunk
	archPos   int
	chunkIdx  int
	offset    int
	count     int
	instanced bool
	stopped   bool
	err       error
}

// openIter is the engine's open step for a compiled state.
func (w *World) openIter(s *FilterState) *Iter {
	it := &Iter{
		world:     w,
		state:     s,
		fields:    make([]field, len(s.terms)),
		chunkIdx:  -1,
		instanced: s.instanced,
	}
	if !w.sourcesMatch(s) {
		return it
	}
	for i, t := range s.terms {
		if t.IsSelf() || !t.IsData() {
			continue
		}
		if p := UnsafeComponent(w, t.Src, t.ID); p != nil {
			it.fields[i] = field{ptr: p, set: true}
		}
	}
	it.matched = w.matchArchetypes(s)
	return it
}

// openTermIter opens a one-shot cursor for a single term. The transient state
// is never counted as a live filter.
func (w *World) openTermIter(t Term) (*Iter, error) {
	s, err := w.buildState([]Term{t})
	if err != nil {
		return nil, err
	}
	return w.openIter(s), nil
}

// next is the engine's advance step. It binds the next non-empty chunk and
// reports false once the pass is exhausted.
func (it *Iter) next() bool {
	if it.stopped || it.err != nil {
		return false
	}
	if it.state.IsEmpty() {
		it.err = eris.Wrap(ErrUseOfEmptyHandle, "filter state released during iteration")
		return false
	}
	arches := it.world.archetypes.archetypes
	for it.archPos < len(it.matched) {
		a := arches[it.matched[it.archPos]]
		it.chunkIdx++
		if it.chunkIdx >= len(a.chunks) {
			it.archPos++
			it.chunkIdx = -1
			continue
		}
		c := a.chunks[it.chunkIdx]
		if c.size == 0 {
			continue
		}
		it.bind(a, c)
		return true
	}
	return false
}

func (it *Iter) bind(a *archetype, c *chunk) {
	it.chk = c
	it.setWindow(0, c.size)
	for i, t := range it.state.terms {
		if !t.IsSelf() || !t.IsData() {
			continue
		}
		if a.mask.has(t.ID) {
			it.fields[i] = field{ptr: c.columns[t.ID], set: true, self: true}
		} else {
			it.fields[i] = field{self: true}
		}
	}
}

// setWindow narrows the cursor to count rows starting at offset of the
// current chunk.
func (it *Iter) setWindow(offset, count int) {
	it.offset = offset
	it.count = count
	it.entities = it.chk.entityIDs[offset : offset+count]
}

// forChunk calls fn once for the chunk, or once per entity when the chunk
// carries shared fields and the pass is not instanced.
func (it *Iter) forChunk(fn func()) {
	if it.instanced || !it.state.shared {
		fn()
		return
	}
	n, base := it.count, it.offset
	for row := 0; row < n && !it.stopped; row++ {
		it.setWindow(base+row, 1)
		fn()
	}
	it.setWindow(base, n)
}

// cellAt returns the address of term's value for row of the current window.
func (it *Iter) cellAt(term, row int) unsafe.Pointer {
	f := it.fields[term]
	if !f.set {
		return nil
	}
	if !f.self {
		return f.ptr
	}
	id := it.state.terms[term].ID
	return unsafe.Add(f.ptr, uintptr(it.offset+row)*it.world.components.sizes[id])
}

// World returns the world the cursor iterates.
func (it *Iter) World() *World {
	return it.world
}

// Count returns the number of entities in the current chunk.
func (it *Iter) Count() int {
	return it.count
}

// Entities returns the entities of the current chunk. The slice aliases world
// storage and must not be retained.
func (it *Iter) Entities() []Entity {
	return it.entities
}

func (it *Iter) Entity(row int) Entity {
	return it.entities[row]
}

func (it *Iter) TermCount() int {
	return len(it.state.terms)
}

// IsSelf reports whether term is read from the iterated entities rather than
// from a fixed source.
func (it *Iter) IsSelf(term int) bool {
	return term >= 0 && term < len(it.fields) && it.state.terms[term].IsSelf()
}

// IsSet reports whether term has data in the current chunk. Optional terms
// are unset in chunks lacking the component.
func (it *Iter) IsSet(term int) bool {
	return term >= 0 && term < len(it.fields) && it.fields[term].set
}

// Instanced reports whether shared fields are delivered to the callback as
// single values for the whole chunk.
func (it *Iter) Instanced() bool {
	return it.instanced
}

// Stop ends the pass after the current callback returns.
func (it *Iter) Stop() {
	it.stopped = true
}

// Err returns the error that ended the pass early, if any.
func (it *Iter) Err() error {
	return it.err
}

// UnsafeField returns the address of the first value of term in the current
// chunk, or nil if the term is unset or has no data. Self fields hold Count()
// values laid out back to back; shared fields hold one. The caller is
// responsible for reading the memory with the component's real layout.
func (it *Iter) UnsafeField(term int) unsafe.Pointer {
	if term < 0 || term >= len(it.fields) {
		return nil
	}
	return it.cellAt(term, 0)
}

// Field returns the values of term in the current chunk as a []T. It returns
// nil if the term is unset, carries no data, or is not stored as T.
func Field[T any](it *Iter, term int) []T {
	if term < 0 || term >= len(it.fields) {
		return nil
	}
	if it.world.components.types[it.state.terms[term].ID] != reflect.TypeFor[T]() {
		return nil
	}
	return column[T](it, term)
}

// column is Field without the type check, for callers that validated the
// component types when the filter was built.
func column[T any](it *Iter, term int) []T {
	f := it.fields[term]
	if !f.set {
		return nil
	}
	if !f.self {
		return unsafe.Slice((*T)(f.ptr), 1)
	}
	return unsafe.Slice((*T)(it.cellAt(term, 0)), it.count)
}

// at returns the address of row within col, honouring shared columns.
func at[T any](col []T, self bool, row int) *T {
	if col == nil {
		return nil
	}
	if self {
		return &col[row]
	}
	return &col[0]
}
