package gc

import "sync/atomic"

// BarrierMode selects which in-line write-barrier fast path is active.
// A real stub-compiler patches machine code at each of these call sites;
// here "stub patching" is modeled as an atomic tag read on the barrier
// entry point, an observably equivalent and more portable substitute.
type BarrierMode int32

const (
	ModeStoreBufferOnly BarrierMode = iota
	ModeIncremental
	ModeIncrementalCompaction
)

// Barrier holds the activation state of the write barrier: the current
// mode tag plus the page-flag toggling that goes with each mode switch.
type Barrier struct {
	marker *Marker
	mode   int32 // atomic BarrierMode
}

func newBarrier(m *Marker) *Barrier { return &Barrier{marker: m} }

func (b *Barrier) Mode() BarrierMode { return BarrierMode(atomic.LoadInt32(&b.mode)) }

// Activate patches every space's page flags for the given mode and
// records the new barrier tag (§4.3, §4.6).
func (b *Barrier) Activate(mode BarrierMode) {
	atomic.StoreInt32(&b.mode, int32(mode))
	marking := mode != ModeStoreBufferOnly
	for _, space := range b.marker.heap.Spaces() {
		for _, page := range space.Pages {
			if space.Kind == NewSpace {
				setNewSpacePageFlags(page, marking)
			} else {
				setOldSpacePageFlags(page, marking)
			}
		}
	}
}

func setOldSpacePageFlags(p *Page, isMarking bool) {
	if isMarking {
		p.SetFlag(FlagPointersToHereAreInteresting)
		p.SetFlag(FlagPointersFromHereAreInteresting)
	} else {
		p.ClearFlag(FlagPointersToHereAreInteresting)
		p.SetFlag(FlagPointersFromHereAreInteresting)
	}
}

func setNewSpacePageFlags(p *Page, isMarking bool) {
	p.SetFlag(FlagPointersToHereAreInteresting)
	if isMarking {
		p.SetFlag(FlagPointersFromHereAreInteresting)
	} else {
		p.ClearFlag(FlagPointersFromHereAreInteresting)
	}
}

// ShouldRecordWrite is the barrier fast path: it filters out stores
// where either page flag is clear (§4.3).
func (m *Marker) ShouldRecordWrite(host, value Address) bool {
	hostPage := m.heap.PageFor(host)
	valuePage := m.heap.PageFor(value)
	if hostPage == nil || valuePage == nil {
		return false
	}
	return hostPage.HasFlag(FlagPointersFromHereAreInteresting) &&
		valuePage.HasFlag(FlagPointersToHereAreInteresting)
}

// RecordWrite is the write-barrier slow path (§4.3): the mutator calls
// this, with host/slot/value already known to have passed the fast-path
// flag filter, whenever it stores value into *slot inside host.
func (m *Marker) RecordWrite(host Address, slot int, value Address) {
	m.recordWriteSlow(host, slot, value)
}

// RecordWriteIntoCode is RecordWrite for a code object's reloc info slot.
func (m *Marker) RecordWriteIntoCode(host Address, reloc int, value Address) {
	if m.baseRecordWrite(host, value) && m.isCompacting {
		m.heap.Compactor.RecordRelocSlot(host, reloc, value)
	}
}

// RecordCodeTargetPatch is the analogue for a direct pc-relative code
// target patch (§6).
func (m *Marker) RecordCodeTargetPatch(host Address, pc int, value Address) {
	if m.IsMarking() {
		m.RecordWriteIntoCode(host, pc, value)
	}
}

func (m *Marker) recordWriteSlow(host Address, slot int, value Address) {
	if m.baseRecordWrite(host, value) && slot >= 0 {
		m.heap.Compactor.RecordSlot(host, slot, value)
	}
}

// baseRecordWrite implements §4.3 steps 1-2 and returns whether slot
// recording is also needed (is_compacting ∧ need_recording), matching
// BaseRecordWrite in the original.
func (m *Marker) baseRecordWrite(host, value Address) bool {
	needRecording := m.Flags.ConcurrentMarking || m.Color(host) == Black

	if needRecording {
		if m.WhiteToGrey(value) {
			if !m.worklist.Push(value) {
				m.BlackToGrey(value)
			}
			m.restartIfNotMarking()
		}
	}
	return m.isCompacting && needRecording
}

// restartIfNotMarking restarts a sweeping or complete marker into MARKING
// when a barrier discovers new work (§4.3 step 2).
func (m *Marker) restartIfNotMarking() {
	if m.state == Complete || m.state == Sweeping {
		m.setState(Marking)
	}
}
