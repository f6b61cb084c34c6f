package gc

import "testing"

func TestColorTransitions(t *testing.T) {
	heap, m := newTestMarker(DefaultFlags())
	heap.EnsurePage(OldSpace, 0x1000, 0x1000)
	addr := Address(0x1000)

	if got := m.Color(addr); got != White {
		t.Fatalf("fresh object color = %s, want white", got)
	}

	if !m.WhiteToGrey(addr) {
		t.Fatalf("white_to_grey on white object should succeed")
	}
	if got := m.Color(addr); got != Grey {
		t.Fatalf("color after white_to_grey = %s, want grey", got)
	}
	if m.WhiteToGrey(addr) {
		t.Fatalf("white_to_grey on already-grey object should fail")
	}

	if !m.GreyToBlack(addr) {
		t.Fatalf("grey_to_black on grey object should succeed")
	}
	if got := m.Color(addr); got != Black {
		t.Fatalf("color after grey_to_black = %s, want black", got)
	}
	// Idempotent: grey_to_black on an already-black object is tolerated.
	if m.GreyToBlack(addr) {
		t.Fatalf("grey_to_black on already-black object should report no change")
	}

	if !m.BlackToGrey(addr) {
		t.Fatalf("black_to_grey on black object should succeed")
	}
	if got := m.Color(addr); got != Grey {
		t.Fatalf("color after black_to_grey = %s, want grey", got)
	}
}

func TestWhiteToBlack(t *testing.T) {
	heap, m := newTestMarker(DefaultFlags())
	heap.EnsurePage(OldSpace, 0x2000, 0x1000)
	addr := Address(0x2000)

	if !m.WhiteToBlack(addr) {
		t.Fatalf("white_to_black on white object should succeed")
	}
	if got := m.Color(addr); got != Black {
		t.Fatalf("color after white_to_black = %s, want black", got)
	}
	if m.WhiteToBlack(addr) {
		t.Fatalf("white_to_black on already-black object should fail")
	}
}

func TestGreyToBlackOnWhitePanics(t *testing.T) {
	heap, m := newTestMarker(DefaultFlags())
	heap.EnsurePage(OldSpace, 0x3000, 0x1000)
	addr := Address(0x3000)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic calling grey_to_black on a white object")
		} else if _, ok := r.(*InvariantError); !ok {
			t.Fatalf("expected *InvariantError panic, got %T", r)
		}
	}()
	m.GreyToBlack(addr)
}

func TestBlackToGreyOnWhitePanics(t *testing.T) {
	heap, m := newTestMarker(DefaultFlags())
	heap.EnsurePage(OldSpace, 0x4000, 0x1000)
	addr := Address(0x4000)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic calling black_to_grey on a white object")
		}
	}()
	m.BlackToGrey(addr)
}
