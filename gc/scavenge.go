package gc

// ScavengeInfo tells UpdateMarkingWorklistAfterScavenge how to resolve
// each work-list entry: whether it was in from-space and, if so, its
// forwarding address (§4.8).
type ScavengeInfo struct {
	InFromSpace      func(Address) bool
	Forwarded        func(Address) (Address, bool)
	InToSpace        func(Address) bool
	ExternallyGrey   func(Address) bool
}

// UpdateMarkingWorklistAfterScavenge rewrites the work-list after a
// young-generation copy (§4.8):
//
//   - from-space entries: forwarded → emit the new address; otherwise
//     drop (dead roots, left-trimmed objects).
//   - to-space entries on a SWEEP_TO_ITERATE page: keep iff externally
//     grey.
//   - everything else (old-space, or a page moved from new to old):
//     SWEEP_TO_ITERATE → keep iff externally grey; a one-word filler →
//     drop; otherwise keep.
func (m *Marker) UpdateMarkingWorklistAfterScavenge(info ScavengeInfo) {
	if !m.IsMarking() {
		return
	}

	m.worklist.Update(func(addr Address) (Address, bool) {
		if info.InFromSpace(addr) {
			dest, ok := info.Forwarded(addr)
			if !ok {
				return 0, false
			}
			return dest, true
		}

		page := m.heap.PageFor(addr)

		if info.InToSpace(addr) {
			if page == nil || !page.HasFlag(FlagSweepToIterate) {
				invariantPanic("to-space object %#x missing SWEEP_TO_ITERATE flag", addr)
			}
			return addr, info.ExternallyGrey(addr)
		}

		// Old-space, possibly on a page that moved from new to old.
		if page != nil && page.HasFlag(FlagSweepToIterate) {
			return addr, info.ExternallyGrey(addr)
		}
		if m.heap.isFiller(addr) {
			return addr, false
		}
		return addr, true
	})
}
