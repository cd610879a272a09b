package kensaku

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

type ownership uint8

const (
	ownEmpty ownership = iota
	ownOwned
	ownBorrowed
)

func (o ownership) String() string {
	switch o {
	case ownOwned:
		return "owned"
	case ownBorrowed:
		return "borrowed"
	}
	return "empty"
}

// Filter is a handle to a compiled filter. A handle either owns its state and
// releases it, borrows a state owned elsewhere, or is empty after being moved
// from or released. Iterating or inspecting an empty handle fails with
// ErrUseOfEmptyHandle.
//
// A Filter is not safe for concurrent passes without external locking.
type Filter struct {
	world *World
	state *FilterState
	own   ownership
	id    uuid.UUID
}

// NewFilter compiles a filter from the terms described by opts.
//
// Example:
//
//	f, err := kensaku.NewFilter(w, kensaku.WithExpr("Position, [in] Velocity, !Frozen"))
//	if err != nil {
//	    return err
//	}
//	defer f.Release()
func NewFilter(w *World, opts ...FilterOption) (*Filter, error) {
	s, err := compileFromOptions(w, nil, opts)
	if err != nil {
		return nil, err
	}
	return w.ownFilter(s, "filter compiled"), nil
}

// CompileFilterState runs the world's compile step and hands the raw state
// to the caller, who must either release it with ReleaseFilterState or give
// it to AdoptFilter.
func CompileFilterState(w *World, opts ...FilterOption) (*FilterState, error) {
	return compileFromOptions(w, nil, opts)
}

// ReleaseFilterState releases a state obtained from CompileFilterState.
func (w *World) ReleaseFilterState(s *FilterState) {
	w.releaseFilterState(s)
}

// BorrowFilter returns a handle that references s without owning it. The
// owner of s must keep it alive for as long as the handle is used; once s is
// released the handle behaves as empty.
func BorrowFilter(w *World, s *FilterState) *Filter {
	if s.IsEmpty() {
		return &Filter{world: w}
	}
	return &Filter{world: w, state: s, own: ownBorrowed, id: uuid.New()}
}

// AdoptFilter moves the contents of s into a new owning handle. s is left
// empty, and any handle borrowing s sees it as empty from then on.
func AdoptFilter(w *World, s *FilterState) *Filter {
	if s.IsEmpty() {
		return &Filter{world: w}
	}
	return w.ownFilter(moveFilterState(s), "filter adopted")
}

func (w *World) ownFilter(s *FilterState, msg string) *Filter {
	f := &Filter{world: w, state: s, own: ownOwned, id: uuid.New()}
	logFilter(&w.logger, zerolog.DebugLevel, f, msg)
	return f
}

// Copy deep-clones the state of f into a new owning handle whose lifetime is
// independent of f.
func (f *Filter) Copy() (*Filter, error) {
	s, err := f.checked()
	if err != nil {
		return nil, err
	}
	return f.world.ownFilter(f.world.copyFilterState(s), "filter copied"), nil
}

// Move transfers the state and ownership of f to a new handle and leaves f
// empty.
func (f *Filter) Move() *Filter {
	dst := &Filter{world: f.world, state: f.state, own: f.own, id: f.id}
	f.reset()
	return dst
}

// Release frees the state if f owns it and leaves f empty. Releasing an
// empty handle is a no-op.
func (f *Filter) Release() {
	switch f.own {
	case ownEmpty:
		return
	case ownOwned:
		logFilter(&f.world.logger, zerolog.DebugLevel, f, "filter released")
		f.world.releaseFilterState(f.state)
	}
	f.reset()
}

func (f *Filter) reset() {
	f.state = nil
	f.own = ownEmpty
}

// IsEmpty reports whether f has no usable state.
func (f *Filter) IsEmpty() bool {
	return f.own == ownEmpty || f.state.IsEmpty()
}

// Owned reports whether f is responsible for releasing its state.
func (f *Filter) Owned() bool {
	return f.own == ownOwned
}

func (f *Filter) ID() uuid.UUID {
	return f.id
}

func (f *Filter) World() *World {
	return f.world
}

// State returns the compiled state of f for borrowing, or nil if f is empty.
func (f *Filter) State() *FilterState {
	if f.IsEmpty() {
		return nil
	}
	return f.state
}

func (f *Filter) checked() (*FilterState, error) {
	if f.own == ownEmpty {
		return nil, eris.Wrap(ErrUseOfEmptyHandle, "filter was moved or released")
	}
	if f.state.IsEmpty() {
		return nil, eris.Wrap(ErrUseOfEmptyHandle, "borrowed filter state is no longer alive")
	}
	return f.state, nil
}

// TermCount returns the number of compiled terms, or 0 for an empty handle.
func (f *Filter) TermCount() int {
	if f.IsEmpty() {
		return 0
	}
	return len(f.state.terms)
}

// Term returns a view of the term at index.
func (f *Filter) Term(index int) (TermView, error) {
	s, err := f.checked()
	if err != nil {
		return TermView{}, err
	}
	if index < 0 || index >= len(s.terms) {
		return TermView{}, eris.Wrapf(ErrIndexOutOfRange, "index %d, filter has %d terms", index, len(s.terms))
	}
	return TermView{term: s.terms[index], name: s.names[index], index: index}, nil
}

// EachTerm calls fn with a view of every term in order.
func (f *Filter) EachTerm(fn func(TermView)) error {
	s, err := f.checked()
	if err != nil {
		return err
	}
	for i, t := range s.terms {
		fn(TermView{term: t, name: s.names[i], index: i})
	}
	return nil
}

// String renders the compiled terms as a term expression. Equal term lists
// always render identically. An empty handle renders as "".
func (f *Filter) String() string {
	if f.IsEmpty() {
		return ""
	}
	return f.world.formatFilter(f.state)
}

// Iter calls fn once per matched chunk. Unless the filter was built
// WithInstanced, chunks carrying shared fields are delivered one entity at a
// time so every field can be indexed by row.
func (f *Filter) Iter(fn func(*Iter)) error {
	if fn == nil {
		return nilCallback(invokeChunk)
	}
	return f.run(invokeChunk, func(it *Iter) {
		it.forChunk(func() { fn(it) })
	})
}

// Count returns the number of entities the filter currently matches.
func (f *Filter) Count() (int, error) {
	n := 0
	err := f.run(invokeEach, func(it *Iter) {
		n += it.Count()
	})
	return n, err
}

// Entities returns a snapshot of the entities the filter currently matches.
func (f *Filter) Entities() ([]Entity, error) {
	var out []Entity
	err := f.run(invokeEach, func(it *Iter) {
		out = append(out, it.Entities()...)
	})
	return out, err
}

// run drives one pass: open a cursor, advance until the engine reports
// exhaustion, and dispatch every chunk exactly once.
func (f *Filter) run(kind invokeKind, dispatch func(*Iter)) error {
	s, err := f.checked()
	if err != nil {
		return err
	}
	version := f.world.mutationVersion
	it := f.world.openIter(s)
	chunks := drive(it, kind, dispatch)
	if version != f.world.mutationVersion {
		f.world.logger.Debug().Str("filter_id", f.id.String()).Msg("structural change during filter pass")
	}
	f.world.logger.Trace().
		Str("filter_id", f.id.String()).
		Stringer("invoker", kind).
		Int("chunks", chunks).
		Bool("stopped", it.stopped).
		Msg("filter pass done")
	return it.Err()
}
