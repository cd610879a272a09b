package kensaku

// compileTyped compiles a filter whose leading terms are ids, in order, and
// checks that its data terms line up with ids.
func compileTyped(w *World, ids []ComponentID, opts []FilterOption) (*Filter, []int, error) {
	s, err := compileFromOptions(w, ids, opts)
	if err != nil {
		return nil, nil, err
	}
	fields, err := s.bindFields(ids...)
	if err != nil {
		w.releaseFilterState(s)
		return nil, nil, err
	}
	return w.ownFilter(s, "filter compiled"), fields, nil
}

// Filter1 is a filter over entities with component T1. Extra options may add
// presence-only or not terms, but the data terms of the compiled filter must
// be exactly T1.
type Filter1[T1 any] struct {
	Filter
	fields [1]int
}

// NewFilter1 creates a typed filter for T1, registering it if needed.
//
// Example:
//
//	f, err := kensaku.NewFilter1[Position](w, kensaku.Without(frozenID))
//	if err != nil {
//	    return err
//	}
//	defer f.Release()
//	f.Each(func(p *Position) { p.X++ })
func NewFilter1[T1 any](w *World, opts ...FilterOption) (*Filter1[T1], error) {
	ids := []ComponentID{RegisterComponent[T1](w)}
	f, fields, err := compileTyped(w, ids, opts)
	if err != nil {
		return nil, err
	}
	out := &Filter1[T1]{Filter: *f}
	copy(out.fields[:], fields)
	return out, nil
}

// Each calls fn for every matched entity.
func (f *Filter1[T1]) Each(fn func(*T1)) error {
	return f.dispatch(invoker1[T1]{kind: invokeEach, each: fn})
}

// EachEntity calls fn for every matched entity, passing the entity first.
func (f *Filter1[T1]) EachEntity(fn func(Entity, *T1)) error {
	return f.dispatch(invoker1[T1]{kind: invokeEachEntity, eachEntity: fn})
}

// Iter calls fn once per chunk with the chunk's T1 values.
func (f *Filter1[T1]) Iter(fn func(*Iter, []T1)) error {
	return f.dispatch(invoker1[T1]{kind: invokeChunk, chunk: fn})
}

// Run dispatches on the type of fn, which must be one of the callback types
// accepted by Each, EachEntity or Iter. Any other type fails with
// ErrShapeMismatch before the pass starts.
func (f *Filter1[T1]) Run(fn any) error {
	inv, err := selectInvoker1[T1](fn)
	if err != nil {
		return err
	}
	return f.dispatch(inv)
}

func (f *Filter1[T1]) dispatch(inv invoker1[T1]) error {
	if !inv.bound() {
		return nilCallback(inv.kind)
	}
	return f.run(inv.kind, func(it *Iter) {
		inv.invoke(it, f.fields)
	})
}

// AsFilter returns an untyped handle borrowing the state of f, for code that
// only needs term introspection or raw chunk passes. It must not outlive f.
func (f *Filter1[T1]) AsFilter() *Filter {
	return BorrowFilter(f.world, f.State())
}

func (f *Filter1[T1]) Copy() (*Filter1[T1], error) {
	c, err := f.Filter.Copy()
	if err != nil {
		return nil, err
	}
	return &Filter1[T1]{Filter: *c, fields: f.fields}, nil
}

func (f *Filter1[T1]) Move() *Filter1[T1] {
	return &Filter1[T1]{Filter: *f.Filter.Move(), fields: f.fields}
}
