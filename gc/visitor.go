package gc

// kProgressBarScanningChunk is the window size the large-array protocol
// scans per re-enqueue (§4.4).
const kProgressBarScanningChunk = 32 * 1024

// WhiteToGreyAndPush performs W→G and, on success, pushes the object
// onto the main work-list channel.
func (m *Marker) WhiteToGreyAndPush(addr Address) bool {
	if m.WhiteToGrey(addr) {
		m.worklist.Push(addr)
		return true
	}
	return false
}

// markObject is the visitor's reference-field hook: mark addr grey and
// push it, recording the slot for the compactor along the way.
func (m *Marker) markObject(host Address, slotIndex int, target Address) {
	if !m.heap.isHeapObject(target) {
		return
	}
	m.heap.Compactor.RecordSlot(host, slotIndex, target)
	m.WhiteToGreyAndPush(target)
}

// VisitObject blackens obj, marks its map grey, and scans its fields
// according to the map's kind (§4.4). It returns the number of bytes
// that were *not* scanned this call (always 0 except for the large-array
// progress-bar case), matching unscanned_bytes_of_large_object_ in the
// original.
func (m *Marker) VisitObject(obj *Object) (unscanned uintptr) {
	class := m.heap.Class(obj.Class)
	if class == nil {
		invariantPanic("object %#x has no class descriptor", obj.Addr)
	}

	// The object can already be black in the three documented races:
	// a large array mid-progress-bar, or a JSObject/string that was
	// blackened before an unsafe layout change. GreyToBlack tolerates
	// this (returns false without violating an invariant).
	m.GreyToBlack(obj.Addr)

	m.WhiteToGreyAndPush(obj.Class)

	switch class.Kind {
	case KindFixedArray:
		return m.visitFixedArray(obj, class)
	case KindNativeContext:
		m.visitNativeContext(obj, class)
	case KindString, KindFiller:
		// No reference fields.
	default:
		m.visitPlain(obj, class)
	}
	return 0
}

// visitClass blackens a class descriptor ("map") and marks its
// constructor and prototype grey-and-pushed. Maps are heap objects in
// their own right and must progress to black like anything else the
// work-list hands out (§4.4, §4.11).
func (m *Marker) visitClass(class *ClassDescriptor) {
	m.GreyToBlack(class.Addr)
	for _, target := range [2]Address{class.Constructor, class.Prototype} {
		if m.heap.isHeapObject(target) {
			m.heap.Compactor.RecordSlot(class.Addr, -1, target)
			m.WhiteToGreyAndPush(target)
		}
	}
}

func (m *Marker) visitPlain(obj *Object, class *ClassDescriptor) {
	refFields := class.RefFields
	if class.Layout.words != nil {
		refFields = class.Layout.refFieldIndices(len(obj.Fields))
	}
	for _, idx := range refFields {
		m.markObject(obj.Addr, idx, obj.Fields[idx])
	}
}

// visitNativeContext marks the normalized-map-cache slot grey without
// enqueueing it, then scans the remaining reference fields normally. The
// cache itself is finalized to black later during Hurry (§4.4).
func (m *Marker) visitNativeContext(obj *Object, class *ClassDescriptor) {
	idx := class.NormalizedMapCacheIndex
	if idx >= 0 && idx < len(obj.Fields) {
		cache := obj.Fields[idx]
		if m.heap.isHeapObject(cache) {
			m.WhiteToGrey(cache)
		}
	}
	for _, fi := range class.RefFields {
		if fi == idx {
			continue
		}
		m.markObject(obj.Addr, fi, obj.Fields[fi])
	}
}

// visitFixedArray implements the large-array progress-bar protocol
// (§4.4) for objects on a page flagged HasProgressBar; ordinary fixed
// arrays are scanned in one pass, every field as a reference.
func (m *Marker) visitFixedArray(obj *Object, class *ClassDescriptor) uintptr {
	page := m.heap.PageFor(obj.Addr)
	if !obj.LargeArray || page == nil || !page.HasFlag(FlagHasProgressBar) {
		for i, target := range obj.Fields {
			m.markObject(obj.Addr, i, target)
		}
		return 0
	}

	size := obj.Size
	start := page.ProgressBar()
	if start < bodyStartOffset {
		start = bodyStartOffset
	}
	if start >= size {
		return 0
	}

	// Re-enqueue before scanning the window: bailout channel under
	// concurrent marking (cannot fail), main channel otherwise with the
	// push-fail → black-to-grey fallback.
	if m.Flags.ConcurrentMarking {
		m.worklist.PushBailout(obj.Addr)
	} else {
		if m.Color(obj.Addr) == Grey {
			m.worklist.Push(obj.Addr)
		} else if !m.worklist.Push(obj.Addr) {
			m.BlackToGrey(obj.Addr)
		}
	}

	alreadyScanned := start
	end := min(size, start+kProgressBarScanningChunk)
	for {
		for i := int(start / WordSize); i < int(end/WordSize) && i < len(obj.Fields); i++ {
			m.markObject(obj.Addr, i, obj.Fields[i])
		}
		start = end
		end = min(size, end+kProgressBarScanningChunk)
		if m.worklist.IsFull() && start < size {
			continue
		}
		break
	}
	page.SetProgressBar(start)
	if start < size {
		unscanned := size - (start - alreadyScanned)
		return unscanned
	}
	return 0
}

// bodyStartOffset is the first byte offset holding a scannable field; a
// FixedArray's header occupies the first word.
const bodyStartOffset = WordSize

func min(a, b uintptr) uintptr {
	if a < b {
		return a
	}
	return b
}
