// Package kensaku implements typed filters over an archetype-based entity
// component store.
//
// A filter is a compiled list of terms. Each term names a component and says
// whether entities must have it (and expose its data), must not have it, or
// may have it. Terms can also read a component from a fixed entity instead of
// from the entities being iterated.
//
// Filters are built from options, from a term expression, or from Go types:
//
//	f, err := kensaku.NewFilter(w, kensaku.WithExpr("Position, [in] Velocity, !Frozen"))
//	pv, err := kensaku.NewFilter2[Position, Velocity](w, kensaku.Without(frozen))
//
// A Filter owns its compiled state, borrows a state owned elsewhere, or is
// empty after Move or Release. Typed filters (Filter1 to Filter4) dispatch a
// callback per chunk (Iter), per entity (Each) or per entity with its
// identity (EachEntity). Each, UnsafeEach and EachFunc run one-shot passes
// without a persistent handle.
//
// Features:
//   - Archetype storage in fixed-size chunks, at most 256 component types.
//   - Bitmask archetype matching cached per filter.
//   - Not, optional and fixed-source terms.
//   - JSON rendering of a pass with SerializeFilter.
//   - Bulk add, set, remove and delete over everything a filter matches.
//   - OnRemove observers delivered through the world's EventBus.
package kensaku
