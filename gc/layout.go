package gc

// PointerLayout is a packed per-word pointer bitmap for a class
// descriptor's body: bit i set means field i is a reference. It is an
// alternative to ClassDescriptor.RefFields for classes with many
// fields, trading an explicit index list for one bitmap word -- the
// same bit-per-field encoding a precise conservative scanner uses to
// decide which words of an object are pointers without consulting a
// full field list.
//
// A zero PointerLayout (words == nil) means "no layout recorded"; the
// visitor then falls back to ClassDescriptor.RefFields.
type PointerLayout struct {
	words []uint64
}

// NewPointerLayout builds a layout from the field indices that hold
// references, the same set ClassDescriptor.RefFields would list.
func NewPointerLayout(refFields []int, numFields int) PointerLayout {
	l := PointerLayout{words: make([]uint64, (numFields+63)/64)}
	for _, idx := range refFields {
		l.Set(idx)
	}
	return l
}

// Set marks field index i as a reference.
func (l PointerLayout) Set(i int) {
	l.words[i/64] |= 1 << uint(i%64)
}

// IsPointer reports whether field index i is a reference.
func (l PointerLayout) IsPointer(i int) bool {
	w := i / 64
	if w >= len(l.words) {
		return false
	}
	return l.words[w]&(1<<uint(i%64)) != 0
}

// PointerFree reports whether the layout has no reference fields at
// all, letting the visitor skip a scan entirely.
func (l PointerLayout) PointerFree() bool {
	for _, w := range l.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// refFieldIndices returns the indices flagged as pointers, in
// ascending order.
func (l PointerLayout) refFieldIndices(numFields int) []int {
	var out []int
	for i := 0; i < numFields; i++ {
		if l.IsPointer(i) {
			out = append(out, i)
		}
	}
	return out
}
