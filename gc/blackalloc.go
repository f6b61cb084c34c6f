package gc

// StartBlackAllocation turns on black allocation in old/map/code space:
// freshly allocated bytes there are colored black immediately, so fresh
// allocations never need to be pushed onto the work-list (§4.9).
func (m *Marker) StartBlackAllocation() {
	if !m.Flags.BlackAllocation {
		invariantPanic("start_black_allocation called with black_allocation disabled")
	}
	if !m.IsMarking() {
		invariantPanic("start_black_allocation called while not marking")
	}
	m.blackAllocation = true
	for _, k := range []SpaceKind{OldSpace, MapSpace, CodeSpace} {
		m.heap.Space(k).blackAllocation = true
	}
}

// PauseBlackAllocation is used across scavenges, which may move objects
// whose freshness can no longer be assumed.
func (m *Marker) PauseBlackAllocation() {
	if !m.Flags.BlackAllocation {
		invariantPanic("pause_black_allocation called with black_allocation disabled")
	}
	if !m.IsMarking() {
		invariantPanic("pause_black_allocation called while not marking")
	}
	for _, k := range []SpaceKind{OldSpace, MapSpace, CodeSpace} {
		m.heap.Space(k).blackAllocation = false
	}
	m.blackAllocation = false
}

// FinishBlackAllocation is called from Stop.
func (m *Marker) FinishBlackAllocation() {
	m.blackAllocation = false
}

// AbortBlackAllocation is called when a full GC cancels the cycle.
func (m *Marker) AbortBlackAllocation() {
	m.blackAllocation = false
}

func (m *Marker) BlackAllocationEnabled() bool { return m.blackAllocation }

// AllocateBlack records a freshly born object as already black when
// black allocation is active for its space; it is the allocator's half
// of §4.9 (the allocator otherwise colors fresh objects white).
func (m *Marker) AllocateBlack(obj *Object, space SpaceKind) {
	if !m.heap.Space(space).blackAllocation {
		return
	}
	m.WhiteToBlack(obj.Addr)
}

// ProcessBlackAllocatedObject is called by the mutator when it mutates a
// black-allocated object in a way that may have introduced white
// outgoing pointers; the object is revisited so those pointers are
// discovered (§4.9).
func (m *Marker) ProcessBlackAllocatedObject(addr Address) {
	if m.IsMarking() && m.Color(addr) == Black {
		m.RevisitObject(addr)
	}
}

// RevisitObject re-greys obj's map, resets any large-object progress bar,
// and rescans it from scratch (§4.9).
func (m *Marker) RevisitObject(addr Address) {
	if !m.IsMarking() {
		invariantPanic("revisit_object called while not marking")
	}
	obj := m.heap.Object(addr)
	if obj == nil {
		invariantPanic("revisit_object called on unknown address %#x", addr)
	}

	if page := m.heap.PageFor(addr); page != nil && page.Space.Kind == LargeObjectSpace {
		page.ResetProgressBar()
	}

	m.WhiteToGreyAndPush(obj.Class)
	m.VisitObject(obj)
}
