package kensaku

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/rotisserie/eris"

	"github.com/edwinsyarief/kensaku/cql"
)

// FilterOption adds terms to, or adjusts, a filter under construction.
type FilterOption func(*filterBuilder) error

// filterBuilder accumulates terms until the filter is compiled.
type filterBuilder struct {
	world     *World
	terms     []Term
	instanced bool
	name      string
}

var termBufferPool = sync.Pool{
	New: func() any {
		buf := make([]Term, 0, 8)
		return &buf
	},
}

// compileFromOptions stages typed terms followed by the terms from opts,
// compiles them and returns the staging buffer to the pool.
func compileFromOptions(w *World, typed []ComponentID, opts []FilterOption) (*FilterState, error) {
	buf := termBufferPool.Get().(*[]Term)
	b := filterBuilder{world: w, terms: (*buf)[:0]}
	defer func() {
		*buf = b.terms[:0]
		termBufferPool.Put(buf)
	}()
	for _, id := range typed {
		b.terms = append(b.terms, Term{ID: id})
	}
	for _, opt := range opts {
		if err := opt(&b); err != nil {
			return nil, err
		}
	}
	s, err := w.compileFilter(b.terms, b.instanced, b.name)
	if err != nil {
		w.logger.Debug().Err(err).Msg("filter rejected")
		return nil, err
	}
	return s, nil
}

func (b *filterBuilder) term(i int) (*Term, error) {
	if i < 0 || i >= len(b.terms) {
		return nil, eris.Wrapf(ErrIndexOutOfRange, "index %d, %d terms staged", i, len(b.terms))
	}
	return &b.terms[i], nil
}

// WithTerms appends terms as given.
func WithTerms(terms ...Term) FilterOption {
	return func(b *filterBuilder) error {
		b.terms = append(b.terms, terms...)
		return nil
	}
}

// With appends presence-only terms: matched entities must have every
// component in ids, but the callback does not receive their data.
func With(ids ...ComponentID) FilterOption {
	return func(b *filterBuilder) error {
		for _, id := range ids {
			b.terms = append(b.terms, Term{ID: id, Access: AccessNone})
		}
		return nil
	}
}

// Without appends not terms excluding entities that have any of ids.
func Without(ids ...ComponentID) FilterOption {
	return func(b *filterBuilder) error {
		for _, id := range ids {
			b.terms = append(b.terms, Term{ID: id, Oper: OperNot})
		}
		return nil
	}
}

// WithExpr appends the terms of a term expression. Component names are
// resolved against the world, and (#id) sources against its alive entities.
func WithExpr(expr string) FilterOption {
	return func(b *filterBuilder) error {
		parsed, err := cql.Parse(expr)
		if err != nil {
			return eris.Wrap(ErrCompile, err.Error())
		}
		for _, pt := range parsed {
			t, err := b.world.resolveTerm(pt)
			if err != nil {
				return err
			}
			b.terms = append(b.terms, t)
		}
		return nil
	}
}

func (w *World) resolveTerm(pt *cql.Term) (Term, error) {
	id, ok := w.LookupComponent(pt.Name)
	if !ok {
		return Term{}, eris.Wrapf(ErrCompile, "%s: unknown component %q", pt, pt.Name)
	}
	t := Term{ID: id}
	switch pt.Access {
	case "in":
		t.Access = AccessIn
	case "out":
		t.Access = AccessOut
	case "inout":
		t.Access = AccessInOut
	case "none":
		t.Access = AccessNone
	}
	if pt.Not {
		t.Oper = OperNot
	} else if pt.Optional {
		t.Oper = OperOptional
	}
	if pt.Source != nil {
		src, ok := w.EntityByID(pt.Source.ID)
		if !ok {
			return Term{}, eris.Wrapf(ErrCompile, "%s: source entity %d is not alive", pt, pt.Source.ID)
		}
		t.Src = src
	}
	return t, nil
}

// WithSource reads term i from the fixed entity src instead of from the
// iterated entities.
func WithSource(i int, src Entity) FilterOption {
	return func(b *filterBuilder) error {
		t, err := b.term(i)
		if err != nil {
			return err
		}
		t.Src = src
		return nil
	}
}

func WithAccess(i int, access Access) FilterOption {
	return func(b *filterBuilder) error {
		t, err := b.term(i)
		if err != nil {
			return err
		}
		t.Access = access
		return nil
	}
}

// WithOptional makes term i optional. Chunks lacking the component pass a nil
// field for it. A filter still needs one term on the iterated entity that is
// neither optional nor not.
func WithOptional(i int) FilterOption {
	return func(b *filterBuilder) error {
		t, err := b.term(i)
		if err != nil {
			return err
		}
		t.Oper = OperOptional
		return nil
	}
}

// WithInstanced delivers chunks with shared fields to chunk callbacks in one
// call. Shared fields are then single element slices that must not be indexed
// by row.
func WithInstanced() FilterOption {
	return func(b *filterBuilder) error {
		b.instanced = true
		return nil
	}
}

// WithName attaches a name that shows up in the filter's log lines.
func WithName(name string) FilterOption {
	return func(b *filterBuilder) error {
		b.name = name
		return nil
	}
}

// EachFn is the set of callback shapes accepted by Each.
type EachFn[T any] interface {
	func(*T) | func(Entity, *T)
}

// Each calls fn for every entity that has a T, without keeping a filter
// around. T is registered if needed.
//
// Example:
//
//	kensaku.Each[Position](w, func(e kensaku.Entity, p *Position) {
//	    p.X++
//	})
func Each[T any, F EachFn[T]](w *World, fn F) error {
	inv, err := selectInvoker1[T](any(fn))
	if err != nil {
		return err
	}
	it, err := w.openTermIter(Term{ID: RegisterComponent[T](w)})
	if err != nil {
		return err
	}
	drive(it, inv.kind, func(it *Iter) {
		inv.invoke(it, [1]int{0})
	})
	return it.Err()
}

// UnsafeEach calls fn for every entity that has component id, passing the
// address of the component value. Nothing checks that the caller reads the
// memory with the component's real layout, and the pointer is only valid for
// the duration of the call. Prefer Each for components backed by a Go type.
func UnsafeEach(w *World, id ComponentID, fn func(Entity, unsafe.Pointer)) error {
	if fn == nil {
		return nilCallback(invokeEachEntity)
	}
	if !w.isRegistered(id) {
		return eris.Wrapf(ErrUnknownComponent, "component %d", id)
	}
	it, err := w.openTermIter(Term{ID: id})
	if err != nil {
		return err
	}
	drive(it, invokeEachEntity, func(it *Iter) {
		for i, e := range it.entities {
			fn(e, it.cellAt(0, i))
		}
	})
	return it.Err()
}

// eachPlan is the filter derived from one callback type.
type eachPlan struct {
	withEntity bool
	terms      []Term
	types      []reflect.Type
}

var entityType = reflect.TypeFor[Entity]()

// EachFunc derives a filter from the parameters of fn and calls fn for every
// matching entity. fn must be a function returning nothing whose parameters
// are an optional leading Entity followed by one pointer per component, e.g.
// func(kensaku.Entity, *Position, *Velocity). Component types are registered
// if needed.
func EachFunc(w *World, fn any) error {
	if isNilFunc(fn) {
		return shapeError(fn)
	}
	fv := reflect.ValueOf(fn)
	plan, err := w.eachPlanFor(fv.Type())
	if err != nil {
		return err
	}
	s, err := w.buildState(plan.terms)
	if err != nil {
		return err
	}
	kind := invokeEach
	if plan.withEntity {
		kind = invokeEachEntity
	}
	args := make([]reflect.Value, fv.Type().NumIn())
	it := w.openIter(s)
	drive(it, kind, func(it *Iter) {
		for row, e := range it.entities {
			n := 0
			if plan.withEntity {
				args[0] = reflect.ValueOf(e)
				n = 1
			}
			for k, typ := range plan.types {
				args[n+k] = reflect.NewAt(typ, it.cellAt(k, row))
			}
			fv.Call(args)
		}
	})
	return it.Err()
}

func (w *World) eachPlanFor(ft reflect.Type) (*eachPlan, error) {
	if plan, ok := w.eachPlans[ft]; ok {
		return plan, nil
	}
	if ft.Kind() != reflect.Func || ft.NumOut() != 0 || ft.IsVariadic() {
		return nil, eris.Wrapf(ErrShapeMismatch, "unsupported callback type %s", ft)
	}
	plan := &eachPlan{}
	start := 0
	if ft.NumIn() > 0 && ft.In(0) == entityType {
		plan.withEntity = true
		start = 1
	}
	for i := start; i < ft.NumIn(); i++ {
		in := ft.In(i)
		if in.Kind() != reflect.Pointer {
			return nil, eris.Wrapf(ErrShapeMismatch, "parameter %d of %s is not a component pointer", i, ft)
		}
		plan.types = append(plan.types, in.Elem())
		plan.terms = append(plan.terms, Term{ID: w.registerType(in.Elem(), "")})
	}
	if len(plan.terms) == 0 {
		return nil, eris.Wrapf(ErrShapeMismatch, "callback %s declares no components", ft)
	}
	w.eachPlans[ft] = plan
	return plan, nil
}
