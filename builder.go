package kensaku

// Builder creates entities that start out with component T, placing them
// straight into their archetype instead of moving them there one component
// at a time.
type Builder[T any] struct {
	world  *World
	arch   *archetype
	compID ComponentID
}

// NewBuilder returns a Builder for T, registering T if needed.
func NewBuilder[T any](w *World) *Builder[T] {
	id := RegisterComponent[T](w)
	var mask bitmask256
	mask.set(id)
	return &Builder[T]{world: w, arch: w.getOrCreateArchetype(mask), compID: id}
}

// NewEntity creates one entity with a zero T.
func (b *Builder[T]) NewEntity() Entity {
	return b.world.createEntity(b.arch)
}

// NewEntities creates count entities with a zero T.
func (b *Builder[T]) NewEntities(count int) []Entity {
	if count <= 0 {
		return nil
	}
	ents := make([]Entity, count)
	for i := range ents {
		ents[i] = b.world.createEntity(b.arch)
	}
	return ents
}

// NewEntitiesWithValue creates count entities whose T is set to comp.
func (b *Builder[T]) NewEntitiesWithValue(count int, comp T) []Entity {
	ents := b.NewEntities(count)
	for _, e := range ents {
		*b.Get(e) = comp
	}
	return ents
}

// Get returns e's T, or nil.
func (b *Builder[T]) Get(e Entity) *T {
	return (*T)(UnsafeComponent(b.world, e, b.compID))
}

// Set adds or updates T on e. It returns false if e is not alive.
func (b *Builder[T]) Set(e Entity, comp T) bool {
	p := b.world.ensureComponent(e, b.compID)
	if p == nil {
		return false
	}
	*(*T)(p) = comp
	return true
}

// Builder2 creates entities that start out with components T1 and T2.
type Builder2[T1 any, T2 any] struct {
	world *World
	arch  *archetype
	ids   [2]ComponentID
}

// NewBuilder2 returns a Builder2 for T1 and T2, registering them if needed.
func NewBuilder2[T1 any, T2 any](w *World) *Builder2[T1, T2] {
	id1 := RegisterComponent[T1](w)
	id2 := RegisterComponent[T2](w)
	if id1 == id2 {
		panic("kensaku: duplicate component types in Builder2")
	}
	var mask bitmask256
	mask.set(id1)
	mask.set(id2)
	return &Builder2[T1, T2]{world: w, arch: w.getOrCreateArchetype(mask), ids: [2]ComponentID{id1, id2}}
}

func (b *Builder2[T1, T2]) NewEntity() Entity {
	return b.world.createEntity(b.arch)
}

func (b *Builder2[T1, T2]) NewEntities(count int) []Entity {
	if count <= 0 {
		return nil
	}
	ents := make([]Entity, count)
	for i := range ents {
		ents[i] = b.world.createEntity(b.arch)
	}
	return ents
}

// NewEntitiesWithValues creates count entities set to c1 and c2.
func (b *Builder2[T1, T2]) NewEntitiesWithValues(count int, c1 T1, c2 T2) []Entity {
	ents := b.NewEntities(count)
	for _, e := range ents {
		p1, p2 := b.Get(e)
		*p1, *p2 = c1, c2
	}
	return ents
}

// Get returns e's T1 and T2. Either is nil if e lacks it.
func (b *Builder2[T1, T2]) Get(e Entity) (*T1, *T2) {
	return (*T1)(UnsafeComponent(b.world, e, b.ids[0])), (*T2)(UnsafeComponent(b.world, e, b.ids[1]))
}
