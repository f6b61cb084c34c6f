package gc

// EnsurePage returns the page covering addr, creating one of the given
// size on the given space if none does yet. An existing page is returned
// as it is, whatever its space and size. Real address-space layout is the
// allocator's job (out of scope, §1); this is the minimal seam tests and
// the CLI harness need to place objects at specific addresses.
func (h *Heap) EnsurePage(space SpaceKind, addr Address, size uintptr) *Page {
	if p := h.PageFor(addr); p != nil {
		return p
	}
	page := NewPage(addr, size, h.Space(space))
	h.AddPage(page)
	return page
}

// AllocateObject registers a new white object of the given class and
// fields at addr, on a page ensured to cover it. If black allocation is
// active for the target space, the object is colored black immediately
// instead of white (§4.9).
func (m *Marker) AllocateObject(space SpaceKind, addr Address, size uintptr, class Address, fields []Address) *Object {
	m.heap.EnsurePage(space, addr, size)
	obj := &Object{Addr: addr, Size: size, Class: class, Fields: fields}
	m.heap.PutObject(obj)
	m.AllocateBlack(obj, space)
	return obj
}

// AllocateClass registers a class descriptor as a colorable heap value of
// its own, defaulting to white like any other fresh allocation.
func (m *Marker) AllocateClass(space SpaceKind, class *ClassDescriptor, size uintptr) *ClassDescriptor {
	m.heap.EnsurePage(space, class.Addr, size)
	m.heap.PutClass(class)
	return class
}
