package gc

// newTestMarker builds a heap with a single page large enough for the
// small object graphs these tests construct, and a marker with the
// given flags already wired to it.
func newTestMarker(flags Flags) (*Heap, *Marker) {
	heap := NewHeap()
	heap.EnsurePage(OldSpace, 0x1000, 0x100000)
	return heap, NewMarker(heap, flags)
}

// plainClass registers a KindPlain class descriptor at addr whose
// fields at refFields indices are references.
func plainClass(h *Heap, addr Address, refFields []int) *ClassDescriptor {
	class := &ClassDescriptor{Addr: addr, Name: "plain", Kind: KindPlain, RefFields: refFields}
	h.PutClass(class)
	return class
}

func fillerClass(h *Heap, addr Address) *ClassDescriptor {
	class := &ClassDescriptor{Addr: addr, Name: "filler", Kind: KindFiller}
	h.PutClass(class)
	return class
}
