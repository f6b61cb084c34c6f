package gc

// Color is the tri-color marking state of an object. Grey stores as bit0
// set / bit1 clear; black as both bits set. Bit pattern 01 (bit0 clear,
// bit1 set) is impossible and its observation is a hard bug.
type Color int

const (
	White Color = iota
	Grey
	Black
	Impossible
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Grey:
		return "grey"
	case Black:
		return "black"
	default:
		return "impossible"
	}
}

func (m *Marker) bitmapSlot(addr Address) (*colorBitmap, int) {
	page := m.heap.PageFor(addr)
	if page == nil {
		invariantPanic("no page contains address %#x", addr)
	}
	return page.bitmap, page.bitmap.slot(addr)
}

// Color returns the current color of the object at addr.
func (m *Marker) Color(addr Address) Color {
	bm, i := m.bitmapSlot(addr)
	bit0 := bm.getBit(i)
	bit1 := bm.getBit(i + 1)
	switch {
	case !bit0 && !bit1:
		return White
	case bit0 && !bit1:
		return Grey
	case bit0 && bit1:
		return Black
	default:
		invariantPanic("impossible color observed at %#x", addr)
		return Impossible
	}
}

func (b *colorBitmap) checkNotImpossible(i int, addr Address) {
	if !b.getBit(i) && b.getBit(i+1) {
		invariantPanic("impossible color observed at %#x", addr)
	}
}

// WhiteToGrey performs W→G: sets bit0 if both bits were zero. It is a CAS
// whether or not concurrent marking is on, so both configurations see
// the same ordering (§4.1). Called on an already
// grey or black object it is a harmless CAS failure, not an error.
func (m *Marker) WhiteToGrey(addr Address) bool {
	bm, i := m.bitmapSlot(addr)
	bm.checkNotImpossible(i, addr)
	return bm.casBit(i, true)
}

// GreyToBlack performs G→B: sets bit1 if bit0 was one and bit1 was zero.
// Calling it on a white object is a transition violation (fatal); calling
// it on an already-black object is a documented idempotent no-op the
// visitor relies on for the large-array progress-bar and unsafe-layout
// races (§4.4, §7).
func (m *Marker) GreyToBlack(addr Address) bool {
	bm, i := m.bitmapSlot(addr)
	bm.checkNotImpossible(i, addr)
	if !bm.getBit(i) {
		invariantPanic("grey_to_black on white object at %#x", addr)
	}
	return bm.casBit(i+1, true)
}

// WhiteToBlack performs W→B: sets both bits, for objects visited without
// ever being enqueued. Implemented as two ordered CASes; see §9's note on
// accepting the extra load in exchange for portability.
func (m *Marker) WhiteToBlack(addr Address) bool {
	bm, i := m.bitmapSlot(addr)
	bm.checkNotImpossible(i, addr)
	if !bm.casBit(i, true) {
		return false
	}
	if !bm.casBit(i+1, true) {
		invariantPanic("white_to_black lost the second bit at %#x", addr)
	}
	return true
}

// BlackToGrey performs B→G: the reverse of GreyToBlack, used only by the
// concurrent-marker bailout path and the non-concurrent work-list
// push-failure fallback (§4.2).
func (m *Marker) BlackToGrey(addr Address) bool {
	bm, i := m.bitmapSlot(addr)
	bm.checkNotImpossible(i, addr)
	if !bm.getBit(i) || !bm.getBit(i+1) {
		invariantPanic("black_to_grey on non-black object at %#x", addr)
	}
	return bm.casBit(i+1, false)
}
