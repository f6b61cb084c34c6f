package gc

import "sort"

// Heap owns the object table, the page/space layout, and the roots the
// marker scans. The marker itself owns only the color bitmaps (embedded
// in each Page), the work-list, and the lifecycle state; it reads Heap's
// structure and toggles page flags, and never moves pages. Objects reach
// the heap through Marker.AllocateObject/AllocateClass or PutObject/PutClass.
type Heap struct {
	objects map[Address]*Object
	classes map[Address]*ClassDescriptor
	spaces  []*Space
	pages   []*Page // kept sorted by Base for pageFor lookups

	roots []Address

	// Compactor, Embedder, StackGuard are the external collaborators a
	// host wires in; noop defaults stand in when nothing is set.
	Compactor  Compactor
	Embedder   EmbedderTracer
	StackGuard StackGuard

	// RetainedMaps is the retained-map table (§3, §4.11).
	RetainedMaps         []RetainedMapEntry
	NumberOfDisposedMaps int

	// NativeContexts is the linked list of native context objects the
	// original walks via next_context_link; modeled as a slice.
	NativeContexts []Address
}

// NewHeap creates an empty heap with the five standard spaces.
func NewHeap() *Heap {
	h := &Heap{objects: map[Address]*Object{}, classes: map[Address]*ClassDescriptor{}}
	for _, k := range []SpaceKind{NewSpace, OldSpace, MapSpace, CodeSpace, LargeObjectSpace} {
		h.spaces = append(h.spaces, &Space{Kind: k})
	}
	h.Compactor = noopCompactor{}
	h.Embedder = noopEmbedder{}
	h.StackGuard = noopStackGuard{}
	return h
}

func (h *Heap) Space(k SpaceKind) *Space {
	for _, s := range h.spaces {
		if s.Kind == k {
			return s
		}
	}
	return nil
}

func (h *Heap) Spaces() []*Space { return h.spaces }

// AddPage registers a page with the heap and keeps the lookup table
// sorted by base address.
func (h *Heap) AddPage(p *Page) {
	p.Space.AddPage(p)
	h.pages = append(h.pages, p)
	sort.Slice(h.pages, func(i, j int) bool { return h.pages[i].Base < h.pages[j].Base })
}

// PageFor returns the page containing addr, or nil.
func (h *Heap) PageFor(addr Address) *Page {
	i := sort.Search(len(h.pages), func(i int) bool { return h.pages[i].Base+Address(h.pages[i].Size) > addr })
	if i < len(h.pages) && h.pages[i].Base <= addr {
		return h.pages[i]
	}
	return nil
}

// PutObject registers obj in the heap's object table. It does not create
// a page for obj's address; EnsurePage does that.
func (h *Heap) PutObject(obj *Object) {
	h.objects[obj.Addr] = obj
}

func (h *Heap) Object(addr Address) *Object { return h.objects[addr] }

// Objects and Classes expose the full object/class tables for snapshot
// tooling (heapfile, cmd/trimarkctl); the marker itself never iterates
// these wholesale.
func (h *Heap) Objects() map[Address]*Object        { return h.objects }
func (h *Heap) Classes() map[Address]*ClassDescriptor { return h.classes }

func (h *Heap) RemoveObject(addr Address) { delete(h.objects, addr) }

// PutClass registers a class descriptor, which is itself colorable.
func (h *Heap) PutClass(c *ClassDescriptor) { h.classes[c.Addr] = c }

func (h *Heap) Class(addr Address) *ClassDescriptor { return h.classes[addr] }

// AddRoot registers addr as a strong root.
func (h *Heap) AddRoot(addr Address) { h.roots = append(h.roots, addr) }

func (h *Heap) Roots() []Address { return h.roots }

// isHeapObject reports whether addr names a live object or class.
func (h *Heap) isHeapObject(addr Address) bool {
	if addr == 0 {
		return false
	}
	if _, ok := h.objects[addr]; ok {
		return true
	}
	_, ok := h.classes[addr]
	return ok
}

// isFiller reports whether addr is a one-word filler object, or has
// simply ceased to exist -- left-trimmed objects and dead roots land on
// the work-list as fillers that must be dropped on sight (§4.8, §7).
// Class descriptors ("maps") are heap objects themselves and are never
// fillers.
func (h *Heap) isFiller(addr Address) bool {
	if obj, ok := h.objects[addr]; ok {
		class := h.classes[obj.Class]
		return class != nil && class.Kind == KindFiller
	}
	if _, ok := h.classes[addr]; ok {
		return false
	}
	return true
}
