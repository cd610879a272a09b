package kensaku

import (
	"reflect"
	"strconv"
	"unsafe"

	"github.com/rs/zerolog"
)

// MaxComponentTypes defines the maximum number of unique component types that can be
// registered in a World. This value is fixed at 256.
const MaxComponentTypes = 256

// ComponentID identifies a registered component type within one World.
type ComponentID uint8

// Entity represents a unique identifier for an object in the World. It combines
// a 32-bit ID with a 32-bit version to ensure that recycled IDs are not confused
// with new entities. The zero Entity is never alive.
type Entity struct {
	// ID is the unique, recyclable identifier for the entity.
	ID uint32
	// Version is a generation counter to protect against stale entity references.
	Version uint32
}

// IsZero reports whether e is the zero Entity.
func (e Entity) IsZero() bool {
	return e == Entity{}
}

// String renders e as "<id>v<version>".
func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.ID), 10) + "v" + strconv.FormatUint(uint64(e.Version), 10)
}

// entityMeta holds the internal location and state of an entity.
type entityMeta struct {
	archetypeIndex int    // index in World.archetypes
	chunkIndex     int    // index in archetype.chunks
	index          int    // position inside the chunk's columns
	version        uint32 // current version, 0 if the entity is dead
}

// chunk holds fixed-size storage for chunkSize entities of one archetype.
type chunk struct {
	entityIDs []Entity
	columns   [MaxComponentTypes]unsafe.Pointer
	size      int // number of entities in this chunk
}

// archetype holds storage for one unique component-set mask.
type archetype struct {
	chunks    []*chunk
	compOrder []ComponentID // ascending component IDs in this arch
	mask      bitmask256
	index     int // position in world.archetypes
	size      int // total entity count across chunks
}

type componentRegistry struct {
	types  [MaxComponentTypes]reflect.Type
	sizes  [MaxComponentTypes]uintptr
	names  [MaxComponentTypes]string
	byType map[reflect.Type]ComponentID
	byName map[string]ComponentID
	count  int
}

type entityRegistry struct {
	freeIDs       []uint32     // stack of recycled entity IDs
	metas         []entityMeta // indexed by entity ID
	nextEntityVer uint32
	alive         int
}

type archetypeRegistry struct {
	maskToArcIndex map[bitmask256]int
	archetypes     []*archetype
}

// World owns the entity storage and is the engine every filter compiles
// against and iterates over.
type World struct {
	logger          zerolog.Logger
	events          EventBus
	eachPlans       map[reflect.Type]*eachPlan
	archetypes      archetypeRegistry
	entities        entityRegistry
	components      componentRegistry
	chunkSize       int
	liveFilters     int
	mutationVersion uint32
}

// NewWorld creates a World. Without options it uses DefaultConfig and logs
// to stderr at info level.
func NewWorld(opts ...WorldOption) *World {
	o := worldOptions{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cfg.ChunkSize <= 0 {
		o.cfg.ChunkSize = DefaultConfig().ChunkSize
	}
	if o.cfg.InitialCapacity < 0 {
		o.cfg.InitialCapacity = 0
	}
	logger := o.cfg.newLogger()
	if o.logger != nil {
		logger = *o.logger
	}
	w := &World{
		logger:    logger,
		eachPlans: make(map[reflect.Type]*eachPlan),
		chunkSize: o.cfg.ChunkSize,
		components: componentRegistry{
			byType: make(map[reflect.Type]ComponentID, 16),
			byName: make(map[string]ComponentID, 16),
		},
		entities: entityRegistry{
			freeIDs:       make([]uint32, 0, o.cfg.InitialCapacity),
			metas:         make([]entityMeta, 0, o.cfg.InitialCapacity),
			nextEntityVer: 1,
		},
		archetypes: archetypeRegistry{
			maskToArcIndex: make(map[bitmask256]int),
			archetypes:     make([]*archetype, 0, 16),
		},
	}
	w.getOrCreateArchetype(bitmask256{})
	w.logger.Debug().
		Int("initial_capacity", o.cfg.InitialCapacity).
		Int("chunk_size", w.chunkSize).
		Msg("world created")
	return w
}

// Logger returns the world's logger.
func (w *World) Logger() *zerolog.Logger {
	return &w.logger
}

// Events returns the world's event bus. Structural events such as
// ComponentRemoved are published on it.
func (w *World) Events() *EventBus {
	return &w.events
}

// LiveFilters returns the number of compiled filter states currently owned by
// a handle or by a caller of CompileFilterState.
func (w *World) LiveFilters() int {
	return w.liveFilters
}

// EntityCount returns the number of alive entities.
func (w *World) EntityCount() int {
	return w.entities.alive
}

// IsValid checks if the entity is currently alive in the world.
func (w *World) IsValid(e Entity) bool {
	if int(e.ID) >= len(w.entities.metas) {
		return false
	}
	meta := w.entities.metas[e.ID]
	return meta.version != 0 && meta.version == e.Version
}

// EntityByID returns the alive entity currently occupying id.
func (w *World) EntityByID(id uint32) (Entity, bool) {
	if int(id) >= len(w.entities.metas) {
		return Entity{}, false
	}
	meta := w.entities.metas[id]
	if meta.version == 0 {
		return Entity{}, false
	}
	return Entity{ID: id, Version: meta.version}, true
}

// CreateEntity creates a new entity with no components.
func (w *World) CreateEntity() Entity {
	return w.createEntity(w.archetypes.archetypes[0])
}

// CreateEntities creates a batch of entities with no components.
func (w *World) CreateEntities(count int) []Entity {
	if count <= 0 {
		return nil
	}
	ents := make([]Entity, count)
	a := w.archetypes.archetypes[0]
	for i := range ents {
		ents[i] = w.createEntity(a)
	}
	return ents
}

// RemoveEntity deletes e and all of its components. OnRemove observers run
// for every component before its data is discarded. It returns false if e
// was not alive.
func (w *World) RemoveEntity(e Entity) bool {
	if !w.IsValid(e) {
		return false
	}
	a := w.archetypes.archetypes[w.entities.metas[e.ID].archetypeIndex]
	for _, id := range a.compOrder {
		w.publishRemoved(e, id)
	}
	// observers may have removed or moved e
	if !w.IsValid(e) {
		return true
	}
	meta := &w.entities.metas[e.ID]
	a = w.archetypes.archetypes[meta.archetypeIndex]
	w.removeFromArchetype(a, meta)
	meta.archetypeIndex = -1
	meta.chunkIndex = -1
	meta.index = -1
	meta.version = 0
	w.entities.freeIDs = append(w.entities.freeIDs, e.ID)
	w.entities.alive--
	w.mutationVersion++
	return true
}

func (w *World) createEntity(a *archetype) Entity {
	var id uint32
	if n := len(w.entities.freeIDs); n > 0 {
		id = w.entities.freeIDs[n-1]
		w.entities.freeIDs = w.entities.freeIDs[:n-1]
	} else {
		id = uint32(len(w.entities.metas))
		w.entities.metas = append(w.entities.metas, entityMeta{})
	}
	meta := &w.entities.metas[id]
	meta.version = w.entities.nextEntityVer
	w.entities.nextEntityVer++
	ent := Entity{ID: id, Version: meta.version}
	meta.archetypeIndex = a.index
	meta.chunkIndex, meta.index = w.appendRow(a, ent)
	w.entities.alive++
	w.mutationVersion++
	return ent
}

// getOrCreateArchetype returns the archetype for mask, creating it on first use.
func (w *World) getOrCreateArchetype(mask bitmask256) *archetype {
	if idx, ok := w.archetypes.maskToArcIndex[mask]; ok {
		return w.archetypes.archetypes[idx]
	}
	a := &archetype{
		index:     len(w.archetypes.archetypes),
		mask:      mask,
		chunks:    make([]*chunk, 0, 4),
		compOrder: mask.ids(),
	}
	w.archetypes.archetypes = append(w.archetypes.archetypes, a)
	w.archetypes.maskToArcIndex[mask] = a.index
	return a
}

// newChunk allocates typed columns for every component of a. Columns are
// allocated through reflect so the collector sees the real element types.
func (w *World) newChunk(a *archetype) *chunk {
	c := &chunk{entityIDs: make([]Entity, w.chunkSize)}
	for _, id := range a.compOrder {
		typ := w.components.types[id]
		c.columns[id] = reflect.MakeSlice(reflect.SliceOf(typ), w.chunkSize, w.chunkSize).UnsafePointer()
	}
	return c
}

// appendRow places e at the end of a's last chunk and returns its location.
func (w *World) appendRow(a *archetype, e Entity) (chunkIdx, row int) {
	if len(a.chunks) == 0 || a.chunks[len(a.chunks)-1].size == w.chunkSize {
		a.chunks = append(a.chunks, w.newChunk(a))
	}
	chunkIdx = len(a.chunks) - 1
	c := a.chunks[chunkIdx]
	row = c.size
	c.entityIDs[row] = e
	c.size++
	a.size++
	return chunkIdx, row
}

// cell returns the address of component id for row of c.
func (w *World) cell(c *chunk, id ComponentID, row int) unsafe.Pointer {
	return unsafe.Add(c.columns[id], uintptr(row)*w.components.sizes[id])
}

// moveEntity moves e into the archetype for newMask, carrying over every
// component both archetypes share.
func (w *World) moveEntity(e Entity, meta *entityMeta, newMask bitmask256) *archetype {
	src := w.archetypes.archetypes[meta.archetypeIndex]
	dst := w.getOrCreateArchetype(newMask)
	srcChunk := src.chunks[meta.chunkIndex]
	chunkIdx, row := w.appendRow(dst, e)
	dstChunk := dst.chunks[chunkIdx]
	for _, id := range src.compOrder {
		if !newMask.has(id) {
			continue
		}
		typedCopy(w.components.types[id], w.cell(dstChunk, id, row), w.cell(srcChunk, id, meta.index))
	}
	w.removeFromArchetype(src, meta)
	meta.archetypeIndex = dst.index
	meta.chunkIndex = chunkIdx
	meta.index = row
	w.mutationVersion++
	return dst
}

// removeFromArchetype removes the entity from the archetype without freeing
// the ID or invalidating the version. The last row of the chunk is swapped
// into the hole, and an emptied chunk is replaced by the archetype's last one.
func (w *World) removeFromArchetype(a *archetype, meta *entityMeta) {
	chunkIdx := meta.chunkIndex
	c := a.chunks[chunkIdx]
	idx := meta.index
	lastIdx := c.size - 1
	if idx < lastIdx {
		lastEnt := c.entityIDs[lastIdx]
		c.entityIDs[idx] = lastEnt
		for _, id := range a.compOrder {
			typedCopy(w.components.types[id], w.cell(c, id, idx), w.cell(c, id, lastIdx))
		}
		w.entities.metas[lastEnt.ID].index = idx
	}
	for _, id := range a.compOrder {
		typedZero(w.components.types[id], w.cell(c, id, lastIdx))
	}
	c.entityIDs[lastIdx] = Entity{}
	c.size--
	a.size--
	if c.size == 0 {
		lastChunkIdx := len(a.chunks) - 1
		if chunkIdx < lastChunkIdx {
			a.chunks[chunkIdx] = a.chunks[lastChunkIdx]
			moved := a.chunks[chunkIdx]
			for j := 0; j < moved.size; j++ {
				w.entities.metas[moved.entityIDs[j].ID].chunkIndex = chunkIdx
			}
		}
		a.chunks[lastChunkIdx] = nil
		a.chunks = a.chunks[:lastChunkIdx]
	}
}

// typedCopy copies one value of typ from src to dst with write barriers intact.
func typedCopy(typ reflect.Type, dst, src unsafe.Pointer) {
	if typ.Size() == 0 || dst == src {
		return
	}
	reflect.NewAt(typ, dst).Elem().Set(reflect.NewAt(typ, src).Elem())
}

func typedZero(typ reflect.Type, p unsafe.Pointer) {
	if typ.Size() == 0 {
		return
	}
	reflect.NewAt(typ, p).Elem().SetZero()
}
