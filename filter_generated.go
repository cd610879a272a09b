package kensaku

type invoker2[T1 any, T2 any] struct {
	kind       invokeKind
	chunk      func(*Iter, []T1, []T2)
	eachEntity func(Entity, *T1, *T2)
	each       func(*T1, *T2)
}

func (inv *invoker2[T1, T2]) bound() bool {
	switch inv.kind {
	case invokeChunk:
		return inv.chunk != nil
	case invokeEachEntity:
		return inv.eachEntity != nil
	}
	return inv.each != nil
}

func selectInvoker2[T1 any, T2 any](fn any) (invoker2[T1, T2], error) {
	if !isNilFunc(fn) {
		switch fn := fn.(type) {
		case func(*Iter, []T1, []T2):
			return invoker2[T1, T2]{kind: invokeChunk, chunk: fn}, nil
		case func(Entity, *T1, *T2):
			return invoker2[T1, T2]{kind: invokeEachEntity, eachEntity: fn}, nil
		case func(*T1, *T2):
			return invoker2[T1, T2]{kind: invokeEach, each: fn}, nil
		}
	}
	return invoker2[T1, T2]{}, shapeError(fn)
}

func (inv *invoker2[T1, T2]) invoke(it *Iter, fields [2]int) {
	switch inv.kind {
	case invokeChunk:
		it.forChunk(func() {
			inv.chunk(it, column[T1](it, fields[0]), column[T2](it, fields[1]))
		})
	case invokeEachEntity:
		c0, s0 := column[T1](it, fields[0]), it.fields[fields[0]].self
		c1, s1 := column[T2](it, fields[1]), it.fields[fields[1]].self
		for i, e := range it.entities {
			inv.eachEntity(e, at(c0, s0, i), at(c1, s1, i))
		}
	case invokeEach:
		c0, s0 := column[T1](it, fields[0]), it.fields[fields[0]].self
		c1, s1 := column[T2](it, fields[1]), it.fields[fields[1]].self
		for i := range it.entities {
			inv.each(at(c0, s0, i), at(c1, s1, i))
		}
	}
}

// Filter2 is a filter over entities with the 2 components: T1, T2.
// Its data terms must be exactly T1, T2, in that order.
type Filter2[T1 any, T2 any] struct {
	Filter
	fields [2]int
}

// NewFilter2 creates a typed filter for the 2 components: T1, T2.
// Component types are registered if needed.
//
// Parameters:
//   - w: The World to query.
//   - opts: Extra terms or term adjustments. Term indices 0 to 1 address
//     T1, T2.
//
// Returns:
//   - The compiled filter, owned by the caller.
//   - An error wrapping ErrCompile or ErrShapeMismatch.
func NewFilter2[T1 any, T2 any](w *World, opts ...FilterOption) (*Filter2[T1, T2], error) {
	ids := []ComponentID{RegisterComponent[T1](w), RegisterComponent[T2](w)}
	f, fields, err := compileTyped(w, ids, opts)
	if err != nil {
		return nil, err
	}
	out := &Filter2[T1, T2]{Filter: *f}
	copy(out.fields[:], fields)
	return out, nil
}

// Each calls fn for every matched entity.
func (f *Filter2[T1, T2]) Each(fn func(*T1, *T2)) error {
	return f.dispatch(invoker2[T1, T2]{kind: invokeEach, each: fn})
}

// EachEntity calls fn for every matched entity, passing the entity first.
func (f *Filter2[T1, T2]) EachEntity(fn func(Entity, *T1, *T2)) error {
	return f.dispatch(invoker2[T1, T2]{kind: invokeEachEntity, eachEntity: fn})
}

// Iter calls fn once per chunk with the chunk's component values.
func (f *Filter2[T1, T2]) Iter(fn func(*Iter, []T1, []T2)) error {
	return f.dispatch(invoker2[T1, T2]{kind: invokeChunk, chunk: fn})
}

// Run dispatches on the type of fn. See Filter1.Run.
func (f *Filter2[T1, T2]) Run(fn any) error {
	inv, err := selectInvoker2[T1, T2](fn)
	if err != nil {
		return err
	}
	return f.dispatch(inv)
}

func (f *Filter2[T1, T2]) dispatch(inv invoker2[T1, T2]) error {
	if !inv.bound() {
		return nilCallback(inv.kind)
	}
	return f.run(inv.kind, func(it *Iter) {
		inv.invoke(it, f.fields)
	})
}

// AsFilter returns an untyped handle borrowing the state of f.
func (f *Filter2[T1, T2]) AsFilter() *Filter {
	return BorrowFilter(f.world, f.State())
}

func (f *Filter2[T1, T2]) Copy() (*Filter2[T1, T2], error) {
	c, err := f.Filter.Copy()
	if err != nil {
		return nil, err
	}
	return &Filter2[T1, T2]{Filter: *c, fields: f.fields}, nil
}

func (f *Filter2[T1, T2]) Move() *Filter2[T1, T2] {
	return &Filter2[T1, T2]{Filter: *f.Filter.Move(), fields: f.fields}
}

type invoker3[T1 any, T2 any, T3 any] struct {
	kind       invokeKind
	chunk      func(*Iter, []T1, []T2, []T3)
	eachEntity func(Entity, *T1, *T2, *T3)
	each       func(*T1, *T2, *T3)
}

func (inv *invoker3[T1, T2, T3]) bound() bool {
	switch inv.kind {
	case invokeChunk:
		return inv.chunk != nil
	case invokeEachEntity:
		return inv.eachEntity != nil
	}
	return inv.each != nil
}

func selectInvoker3[T1 any, T2 any, T3 any](fn any) (invoker3[T1, T2, T3], error) {
	if !isNilFunc(fn) {
		switch fn := fn.(type) {
		case func(*Iter, []T1, []T2, []T3):
			return invoker3[T1, T2, T3]{kind: invokeChunk, chunk: fn}, nil
		case func(Entity, *T1, *T2, *T3):
			return invoker3[T1, T2, T3]{kind: invokeEachEntity, eachEntity: fn}, nil
		case func(*T1, *T2, *T3):
			return invoker3[T1, T2, T3]{kind: invokeEach, each: fn}, nil
		}
	}
	return invoker3[T1, T2, T3]{}, shapeError(fn)
}

func (inv *invoker3[T1, T2, T3]) invoke(it *Iter, fields [3]int) {
	switch inv.kind {
	case invokeChunk:
		it.forChunk(func() {
			inv.chunk(it, column[T1](it, fields[0]), column[T2](it, fields[1]), column[T3](it, fields[2]))
		})
	case invokeEachEntity:
		c0, s0 := column[T1](it, fields[0]), it.fields[fields[0]].self
		c1, s1 := column[T2](it, fields[1]), it.fields[fields[1]].self
		c2, s2 := column[T3](it, fields[2]), it.fields[fields[2]].self
		for i, e := range it.entities {
			inv.eachEntity(e, at(c0, s0, i), at(c1, s1, i), at(c2, s2, i))
		}
	case invokeEach:
		c0, s0 := column[T1](it, fields[0]), it.fields[fields[0]].self
		c1, s1 := column[T2](it, fields[1]), it.fields[fields[1]].self
		c2, s2 := column[T3](it, fields[2]), it.fields[fields[2]].self
		for i := range it.entities {
			inv.each(at(c0, s0, i), at(c1, s1, i), at(c2, s2, i))
		}
	}
}

// Filter3 is a filter over entities with the 3 components: T1, T2, T3.
// Its data terms must be exactly T1, T2, T3, in that order.
type Filter3[T1 any, T2 any, T3 any] struct {
	Filter
	fields [3]int
}

// NewFilter3 creates a typed filter for the 3 components: T1, T2, T3.
// Component types are registered if needed.
//
// Parameters:
//   - w: The World to query.
//   - opts: Extra terms or term adjustments. Term indices 0 to 2 address
//     T1, T2, T3.
//
// Returns:
//   - The compiled filter, owned by the caller.
//   - An error wrapping ErrCompile or ErrShapeMismatch.
func NewFilter3[T1 any, T2 any, T3 any](w *World, opts ...FilterOption) (*Filter3[T1, T2, T3], error) {
	ids := []ComponentID{RegisterComponent[T1](w), RegisterComponent[T2](w), RegisterComponent[T3](w)}
	f, fields, err := compileTyped(w, ids, opts)
	if err != nil {
		return nil, err
	}
	out := &Filter3[T1, T2, T3]{Filter: *f}
	copy(out.fields[:], fields)
	return out, nil
}

// Each calls fn for every matched entity.
func (f *Filter3[T1, T2, T3]) Each(fn func(*T1, *T2, *T3)) error {
	return f.dispatch(invoker3[T1, T2, T3]{kind: invokeEach, each: fn})
}

// EachEntity calls fn for every matched entity, passing the entity first.
func (f *Filter3[T1, T2, T3]) EachEntity(fn func(Entity, *T1, *T2, *T3)) error {
	return f.dispatch(invoker3[T1, T2, T3]{kind: invokeEachEntity, eachEntity: fn})
}

// Iter calls fn once per chunk with the chunk's component values.
func (f *Filter3[T1, T2, T3]) Iter(fn func(*Iter, []T1, []T2, []T3)) error {
	return f.dispatch(invoker3[T1, T2, T3]{kind: invokeChunk, chunk: fn})
}

// Run dispatches on the type of fn. See Filter1.Run.
func (f *Filter3[T1, T2, T3]) Run(fn any) error {
	inv, err := selectInvoker3[T1, T2, T3](fn)
	if err != nil {
		return err
	}
	return f.dispatch(inv)
}

func (f *Filter3[T1, T2, T3]) dispatch(inv invoker3[T1, T2, T3]) error {
	if !inv.bound() {
		return nilCallback(inv.kind)
	}
	return f.run(inv.kind, func(it *Iter) {
		inv.invoke(it, f.fields)
	})
}

// AsFilter returns an untyped handle borrowing the state of f.
func (f *Filter3[T1, T2, T3]) AsFilter() *Filter {
	return BorrowFilter(f.world, f.State())
}

func (f *Filter3[T1, T2, T3]) Copy() (*Filter3[T1, T2, T3], error) {
	c, err := f.Filter.Copy()
	if err != nil {
		return nil, err
	}
	return &Filter3[T1, T2, T3]{Filter: *c, fields: f.fields}, nil
}

func (f *Filter3[T1, T2, T3]) Move() *Filter3[T1, T2, T3] {
	return &Filter3[T1, T2, T3]{Filter: *f.Filter.Move(), fields: f.fields}
}

type invoker4[T1 any, T2 any, T3 any, T4 any] struct {
	kind       invokeKind
	chunk      func(*Iter, []T1, []T2, []T3, []T4)
	eachEntity func(Entity, *T1, *T2, *T3, *T4)
	each       func(*T1, *T2, *T3, *T4)
}

func (inv *invoker4[T1, T2, T3, T4]) bound() bool {
	switch inv.kind {
	case invokeChunk:
		return inv.chunk != nil
	case invokeEachEntity:
		return inv.eachEntity != nil
	}
	return inv.each != nil
}

func selectInvoker4[T1 any, T2 any, T3 any, T4 any](fn any) (invoker4[T1, T2, T3, T4], error) {
	if !isNilFunc(fn) {
		switch fn := fn.(type) {
		case func(*Iter, []T1, []T2, []T3, []T4):
			return invoker4[T1, T2, T3, T4]{kind: invokeChunk, chunk: fn}, nil
		case func(Entity, *T1, *T2, *T3, *T4):
			return invoker4[T1, T2, T3, T4]{kind: invokeEachEntity, eachEntity: fn}, nil
		case func(*T1, *T2, *T3, *T4):
			return invoker4[T1, T2, T3, T4]{kind: invokeEach, each: fn}, nil
		}
	}
	return invoker4[T1, T2, T3, T4]{}, shapeError(fn)
}

func (inv *invoker4[T1, T2, T3, T4]) invoke(it *Iter, fields [4]int) {
	switch inv.kind {
	case invokeChunk:
		it.forChunk(func() {
			inv.chunk(it, column[T1](it, fields[0]), column[T2](it, fields[1]), column[T3](it, fields[2]), column[T4](it, fields[3]))
		})
	case invokeEachEntity:
		c0, s0 := column[T1](it, fields[0]), it.fields[fields[0]].self
		c1, s1 := column[T2](it, fields[1]), it.fields[fields[1]].self
		c2, s2 := column[T3](it, fields[2]), it.fields[fields[2]].self
		c3, s3 := column[T4](it, fields[3]), it.fields[fields[3]].self
		for i, e := range it.entities {
			inv.eachEntity(e, at(c0, s0, i), at(c1, s1, i), at(c2, s2, i), at(c3, s3, i))
		}
	case invokeEach:
		c0, s0 := column[T1](it, fields[0]), it.fields[fields[0]].self
		c1, s1 := column[T2](it, fields[1]), it.fields[fields[1]].self
		c2, s2 := column[T3](it, fields[2]), it.fields[fields[2]].self
		c3, s3 := column[T4](it, fields[3]), it.fields[fields[3]].self
		for i := range it.entities {
			inv.each(at(c0, s0, i), at(c1, s1, i), at(c2, s2, i), at(c3, s3, i))
		}
	}
}

// Filter4 is a filter over entities with the 4 components: T1, T2, T3, T4.
// Its data terms must be exactly T1, T2, T3, T4, in that order.
type Filter4[T1 any, T2 any, T3 any, T4 any] struct {
	Filter
	fields [4]int
}

// NewFilter4 creates a typed filter for the 4 components: T1, T2, T3, T4.
// Component types are registered if needed.
//
// Parameters:
//   - w: The World to query.
//   - opts: Extra terms or term adjustments. Term indices 0 to 3 address
//     T1, T2, T3, T4.
//
// Returns:
//   - The compiled filter, owned by the caller.
//   - An error wrapping ErrCompile or ErrShapeMismatch.
func NewFilter4[T1 any, T2 any, T3 any, T4 any](w *World, opts ...FilterOption) (*Filter4[T1, T2, T3, T4], error) {
	ids := []ComponentID{RegisterComponent[T1](w), RegisterComponent[T2](w), RegisterComponent[T3](w), RegisterComponent[T4](w)}
	f, fields, err := compileTyped(w, ids, opts)
	if err != nil {
		return nil, err
	}
	out := &Filter4[T1, T2, T3, T4]{Filter: *f}
	copy(out.fields[:], fields)
	return out, nil
}

// Each calls fn for every matched entity.
func (f *Filter4[T1, T2, T3, T4]) Each(fn func(*T1, *T2, *T3, *T4)) error {
	return f.dispatch(invoker4[T1, T2, T3, T4]{kind: invokeEach, each: fn})
}

// EachEntity calls fn for every matched entity, passing the entity first.
func (f *Filter4[T1, T2, T3, T4]) EachEntity(fn func(Entity, *T1, *T2, *T3, *T4)) error {
	return f.dispatch(invoker4[T1, T2, T3, T4]{kind: invokeEachEntity, eachEntity: fn})
}

// Iter calls fn once per chunk with the chunk's component values.
func (f *Filter4[T1, T2, T3, T4]) Iter(fn func(*Iter, []T1, []T2, []T3, []T4)) error {
	return f.dispatch(invoker4[T1, T2, T3, T4]{kind: invokeChunk, chunk: fn})
}

// Run dispatches on the type of fn. See Filter1.Run.
func (f *Filter4[T1, T2, T3, T4]) Run(fn any) error {
	inv, err := selectInvoker4[T1, T2, T3, T4](fn)
	if err != nil {
		return err
	}
	return f.dispatch(inv)
}

func (f *Filter4[T1, T2, T3, T4]) dispatch(inv invoker4[T1, T2, T3, T4]) error {
	if !inv.bound() {
		return nilCallback(inv.kind)
	}
	return f.run(inv.kind, func(it *Iter) {
		inv.invoke(it, f.fields)
	})
}

// AsFilter returns an untyped handle borrowing the state of f.
func (f *Filter4[T1, T2, T3, T4]) AsFilter() *Filter {
	return BorrowFilter(f.world, f.State())
}

func (f *Filter4[T1, T2, T3, T4]) Copy() (*Filter4[T1, T2, T3, T4], error) {
	c, err := f.Filter.Copy()
	if err != nil {
		return nil, err
	}
	return &Filter4[T1, T2, T3, T4]{Filter: *c, fields: f.fields}, nil
}

func (f *Filter4[T1, T2, T3, T4]) Move() *Filter4[T1, T2, T3, T4] {
	return &Filter4[T1, T2, T3, T4]{Filter: *f.Filter.Move(), fields: f.fields}
}
