package gc

// NotifyLeftTrimming transfers color from an array's old header position
// to its new one after left-trimming shrinks it from front-address from
// to front-address to (§4.10, §6 mutator hook).
//
// Two address layouts occur: to = from + WordSize, where the new and old
// color pairs overlap by one bit (bit1 of from's pair is bit0 of to's
// pair), and the general case, where to is an independent bitmap slot.
func (m *Marker) NotifyLeftTrimming(from, to Address) {
	if !m.IsMarking() {
		invariantPanic("notify_left_trimming called while not marking")
	}
	if from == to {
		invariantPanic("notify_left_trimming called with from == to")
	}

	overlapping := to == from+WordSize

	if m.blackAllocation && m.Color(to) == Black {
		// Nothing to do: to already lives in the black-allocation area.
		return
	}

	fromWasBlack := m.Color(from) == Black
	markedBlackByUs := false
	if m.Flags.ConcurrentMarking {
		// Drive from to black before the header is overwritten so the
		// concurrent marker never observes a half-overwritten header.
		m.WhiteToGrey(from)
		if m.GreyToBlack(from) {
			markedBlackByUs = true
		}
	}

	switch {
	case fromWasBlack && !markedBlackByUs:
		// from was legitimately black already: transfer black to to.
		if overlapping {
			m.setSecondBit(to)
		} else {
			m.WhiteToBlack(to)
		}
	case m.Color(from) == Grey || markedBlackByUs:
		// from was grey, or we just made it black ourselves: publish to
		// as grey and push it.
		if overlapping {
			m.setFirstBit(to)
		} else {
			m.WhiteToGrey(to)
		}
		m.worklist.Push(to)
		m.restartIfNotMarking()
	}
}

func (m *Marker) setFirstBit(addr Address) {
	bm, i := m.bitmapSlot(addr)
	bm.casBit(i, true)
}

func (m *Marker) setSecondBit(addr Address) {
	bm, i := m.bitmapSlot(addr)
	bm.casBit(i+1, true)
}
