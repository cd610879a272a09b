package kensaku

import "math/bits"

// bitmask256 represents a set of up to 256 component IDs. It is used to
// uniquely identify archetypes and to describe the include and exclude sets of
// a compiled filter. Each bit corresponds to a component ID.
type bitmask256 [4]uint64

// set enables the bit corresponding to the given component ID.
func (m *bitmask256) set(id ComponentID) {
	m[id>>6] |= uint64(1) << (id & 63)
}

// unset disables the bit corresponding to the given component ID.
func (m *bitmask256) unset(id ComponentID) {
	m[id>>6] &^= uint64(1) << (id & 63)
}

// has reports whether the bit for id is set.
func (m bitmask256) has(id ComponentID) bool {
	return m[id>>6]&(uint64(1)<<(id&63)) != 0
}

// contains checks if all the bits set in sub are also set in m. This is used
// to determine if an archetype's component set is a superset of a filter's
// required components.
func (m bitmask256) contains(sub bitmask256) bool {
	return (m[0]&sub[0]) == sub[0] &&
		(m[1]&sub[1]) == sub[1] &&
		(m[2]&sub[2]) == sub[2] &&
		(m[3]&sub[3]) == sub[3]
}

// intersects checks if m has any bits in common with other.
func (m bitmask256) intersects(other bitmask256) bool {
	return (m[0]&other[0] != 0) ||
		(m[1]&other[1] != 0) ||
		(m[2]&other[2] != 0) ||
		(m[3]&other[3] != 0)
}

// ids returns the set component IDs in ascending order.
func (m bitmask256) ids() []ComponentID {
	out := make([]ComponentID, 0, m.count())
	for w, word := range m {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			out = append(out, ComponentID(w*64+b))
			word &= word - 1
		}
	}
	return out
}

func (m bitmask256) count() int {
	return bits.OnesCount64(m[0]) + bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) + bits.OnesCount64(m[3])
}
