package kensaku

import (
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unsafe"

	"github.com/rotisserie/eris"
)

// RegisterComponent registers T as a component type in w and returns its ID.
// Registering an already registered type returns the existing ID. It panics
// once MaxComponentTypes types are registered.
func RegisterComponent[T any](w *World) ComponentID {
	return w.registerType(reflect.TypeFor[T](), "")
}

// RegisterDynamicComponent registers a component known only by name and byte
// size, for data whose layout is not described by a Go type. Its values are
// reachable through UnsafeEach, Iter.UnsafeField and SetComponentData.
func RegisterDynamicComponent(w *World, name string, size uintptr) (ComponentID, error) {
	if !isIdent(name) {
		return 0, eris.Errorf("dynamic component name %q is not an identifier", name)
	}
	if _, ok := w.components.byName[name]; ok {
		return 0, eris.Errorf("component %q is already registered", name)
	}
	if w.components.count >= MaxComponentTypes {
		return 0, eris.Errorf("cannot register %q: maximum number of component types (%d) reached", name, MaxComponentTypes)
	}
	return w.registerType(reflect.ArrayOf(int(size), reflect.TypeFor[byte]()), name), nil
}

// ComponentIDOf returns the ID of T if it is registered in w.
func ComponentIDOf[T any](w *World) (ComponentID, bool) {
	id, ok := w.components.byType[reflect.TypeFor[T]()]
	return id, ok
}

// LookupComponent returns the ID registered under name.
func (w *World) LookupComponent(name string) (ComponentID, bool) {
	id, ok := w.components.byName[name]
	return id, ok
}

// ComponentName returns the name id was registered under, or "" if id is not
// registered.
func (w *World) ComponentName(id ComponentID) string {
	if !w.isRegistered(id) {
		return ""
	}
	return w.components.names[id]
}

// ComponentType returns the storage type of id. Dynamic components report a
// byte array type.
func (w *World) ComponentType(id ComponentID) reflect.Type {
	if !w.isRegistered(id) {
		return nil
	}
	return w.components.types[id]
}

func (w *World) isRegistered(id ComponentID) bool {
	return int(id) < w.components.count
}

func (w *World) registerType(t reflect.Type, name string) ComponentID {
	if name == "" {
		if id, ok := w.components.byType[t]; ok {
			return id
		}
	}
	if w.components.count >= MaxComponentTypes {
		panic("kensaku: too many component types")
	}
	id := ComponentID(w.components.count)
	w.components.count++
	if name == "" {
		name = w.typeName(t)
		w.components.byType[t] = id
	}
	w.components.types[id] = t
	w.components.sizes[id] = t.Size()
	w.components.names[id] = name
	w.components.byName[name] = id
	w.logger.Debug().Int("component_id", int(id)).Str("component_name", name).Msg("component registered")
	return id
}

// typeName picks the name a Go type is registered under. Names are always
// identifiers so that filters render to expressions that parse back: the bare
// type name when it is free, otherwise the qualified one, e.g. Pair[int]
// becomes Pair_int and a second Position becomes mypkg_Position.
func (w *World) typeName(t reflect.Type) string {
	if name := identName(t.Name()); name != "" {
		if _, taken := w.components.byName[name]; !taken {
			return name
		}
	}
	base := identName(t.String())
	if base == "" {
		base = "component"
	}
	name := base
	for n := 2; ; n++ {
		if _, taken := w.components.byName[name]; !taken {
			return name
		}
		name = base + "_" + strconv.Itoa(n)
	}
}

// identName replaces every run of characters that cannot appear in an
// identifier with a single underscore.
func identName(s string) string {
	var sb strings.Builder
	pending := false
	for _, r := range s {
		if !isIdentRune(r, true) {
			pending = true
			continue
		}
		if pending && sb.Len() > 0 {
			sb.WriteByte('_')
		}
		pending = false
		sb.WriteRune(r)
	}
	name := sb.String()
	if name != "" && !isIdentRune([]rune(name)[0], false) {
		name = "_" + name
	}
	return name
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isIdentRune(r, i > 0) {
			return false
		}
	}
	return true
}

func isIdentRune(r rune, digitOK bool) bool {
	return r == '_' || unicode.IsLetter(r) || digitOK && unicode.IsDigit(r)
}

// GetComponent retrieves a pointer to the component of type T for e, or nil
// if e is not alive or does not have the component.
func GetComponent[T any](w *World, e Entity) *T {
	id, ok := ComponentIDOf[T](w)
	if !ok {
		return nil
	}
	return (*T)(UnsafeComponent(w, e, id))
}

// UnsafeComponent returns the address of component id on e, or nil. The
// caller is responsible for interpreting the memory with the right layout.
func UnsafeComponent(w *World, e Entity, id ComponentID) unsafe.Pointer {
	if !w.IsValid(e) || !w.isRegistered(id) {
		return nil
	}
	meta := w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]
	if !a.mask.has(id) {
		return nil
	}
	return w.cell(a.chunks[meta.chunkIndex], id, meta.index)
}

// HasComponent reports whether e is alive and has component id.
func HasComponent(w *World, e Entity, id ComponentID) bool {
	if !w.IsValid(e) {
		return false
	}
	return w.archetypes.archetypes[w.entities.metas[e.ID].archetypeIndex].mask.has(id)
}

// SetComponent adds a component of type T with the given value to e, or
// updates it if the component already exists. Adding moves e to a different
// archetype. It returns false if e is not alive.
func SetComponent[T any](w *World, e Entity, val T) bool {
	id := RegisterComponent[T](w)
	p := w.ensureComponent(e, id)
	if p == nil {
		return false
	}
	*(*T)(p) = val
	return true
}

// AddComponentID adds component id to e with a zero value. Existing values
// are left untouched.
func AddComponentID(w *World, e Entity, id ComponentID) bool {
	return w.isRegistered(id) && w.ensureComponent(e, id) != nil
}

// SetComponentData copies data into component id of e, adding the component
// if needed. len(data) must equal the component size.
func SetComponentData(w *World, e Entity, id ComponentID, data []byte) bool {
	if !w.isRegistered(id) || uintptr(len(data)) != w.components.sizes[id] {
		return false
	}
	p := w.ensureComponent(e, id)
	if p == nil {
		return false
	}
	copy(unsafe.Slice((*byte)(p), len(data)), data)
	return true
}

// RemoveComponent removes the component of type T from e.
func RemoveComponent[T any](w *World, e Entity) bool {
	id, ok := ComponentIDOf[T](w)
	if !ok {
		return false
	}
	return RemoveComponentID(w, e, id)
}

// RemoveComponentID removes component id from e. OnRemove observers for id
// run before the value is discarded. It returns false if e is not alive or
// does not have the component.
func RemoveComponentID(w *World, e Entity, id ComponentID) bool {
	if !HasComponent(w, e, id) {
		return false
	}
	w.publishRemoved(e, id)
	if !HasComponent(w, e, id) {
		return true
	}
	meta := &w.entities.metas[e.ID]
	newMask := w.archetypes.archetypes[meta.archetypeIndex].mask
	newMask.unset(id)
	w.moveEntity(e, meta, newMask)
	return true
}

// ensureComponent returns the address of component id on e, moving e into an
// archetype that has it if necessary.
func (w *World) ensureComponent(e Entity, id ComponentID) unsafe.Pointer {
	if !w.IsValid(e) {
		return nil
	}
	meta := &w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]
	if !a.mask.has(id) {
		newMask := a.mask
		newMask.set(id)
		a = w.moveEntity(e, meta, newMask)
	}
	return w.cell(a.chunks[meta.chunkIndex], id, meta.index)
}
