package gc

// MarkRoots enumerates strong roots and marks every referenced heap
// object grey-and-pushed (§4.5). It is re-invoked during finalization to
// catch roots that changed since marking began.
func (m *Marker) MarkRoots() {
	for _, root := range m.heap.Roots() {
		if !m.heap.isHeapObject(root) {
			continue
		}
		m.WhiteToGreyAndPush(root)
	}
}
