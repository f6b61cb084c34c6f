package gc

import "testing"

// TestScenarioSimpleCycle builds heap {a→b, b→a, root→a}, runs it to
// COMPLETE, and expects a and b black, work-list empty, no compaction.
func TestScenarioSimpleCycle(t *testing.T) {
	heap, m := newTestMarker(DefaultFlags())
	classAddr := Address(0x1000)
	aAddr := Address(0x1010)
	bAddr := Address(0x1020)

	plainClass(heap, classAddr, []int{0})
	m.AllocateObject(OldSpace, aAddr, WordSize, classAddr, []Address{bAddr})
	m.AllocateObject(OldSpace, bAddr, WordSize, classAddr, []Address{aAddr})
	heap.AddRoot(aAddr)

	m.Start("scenario", true, false)
	m.Step(1<<20, GCViaStackGuard, ForceCompletion, StepOriginMainThread)
	if m.RequestType() != RequestFinalization {
		t.Fatalf("request type after worklist drains = %v, want finalization request first", m.RequestType())
	}
	m.FinalizeIncrementally()
	m.Step(1<<20, GCViaStackGuard, ForceCompletion, StepOriginMainThread)

	if m.State() != Complete {
		t.Fatalf("state = %s, want complete", m.State())
	}
	if got := m.Color(aAddr); got != Black {
		t.Fatalf("a's color = %s, want black", got)
	}
	if got := m.Color(bAddr); got != Black {
		t.Fatalf("b's color = %s, want black", got)
	}
	if !m.worklist.IsEmpty() {
		t.Fatalf("work-list should be empty at completion")
	}
	if m.IsCompacting() {
		t.Fatalf("a cycle with no compactor request should not be compacting")
	}
}

// TestScenarioWriteBarrierDiscoversNewPointer checks that marking is
// paused with a freshly grey(a); the mutator writes a new pointer a.f = c
// (c white) through the barrier, which greys and pushes c; draining the
// work-list reaches {a,b,c: black}.
func TestScenarioWriteBarrierDiscoversNewPointer(t *testing.T) {
	heap, m := newTestMarker(DefaultFlags())
	classAddr := Address(0x1000)
	aAddr := Address(0x1010)
	bAddr := Address(0x1020)
	cAddr := Address(0x1030)

	plainClass(heap, classAddr, []int{0, 1})
	m.AllocateObject(OldSpace, bAddr, WordSize, classAddr, []Address{0, 0})
	m.AllocateObject(OldSpace, aAddr, WordSize, classAddr, []Address{bAddr, 0})
	m.AllocateObject(OldSpace, cAddr, WordSize, classAddr, []Address{0, 0})
	heap.AddRoot(aAddr)

	m.Start("scenario", true, false)
	// Marking is paused right after roots are scanned: a is grey and on
	// the work-list, nothing has been popped yet.
	if got := m.Color(aAddr); got != Grey {
		t.Fatalf("a's color right after start = %s, want grey", got)
	}

	// Mutator stores c into a's second field; barrier runs after the
	// store is already visible.
	a := heap.Object(aAddr)
	a.Fields[1] = cAddr
	if !m.ShouldRecordWrite(aAddr, cAddr) {
		t.Fatalf("should_record_write should pass while marking is active")
	}
	m.RecordWrite(aAddr, 1, cAddr)

	if got := m.Color(cAddr); got != Grey {
		t.Fatalf("c's color after record_write = %s, want grey", got)
	}

	m.ProcessMarkingWorklist(0, ForceCompletion)

	for _, addr := range []Address{aAddr, bAddr, cAddr} {
		if got := m.Color(addr); got != Black {
			t.Fatalf("color(%#x) = %s, want black", addr, got)
		}
	}
}

// TestScenarioLargeArrayProgressBar scans a 1 MiB FixedArray on a
// HAS_PROGRESS_BAR page through 4 budgeted steps of 256 KiB.
func TestScenarioLargeArrayProgressBar(t *testing.T) {
	heap := NewHeap()
	m := NewMarker(heap, DefaultFlags())
	classAddr := Address(0x1000)
	arrayAddr := Address(0x2000)

	class := &ClassDescriptor{Addr: classAddr, Name: "array", Kind: KindFixedArray}
	heap.PutClass(class)

	const size = 1024 * 1024
	fields := make([]Address, size/WordSize)
	arr := &Object{Addr: arrayAddr, Size: size, Class: classAddr, Fields: fields, LargeArray: true}
	heap.PutObject(arr)
	page := heap.EnsurePage(LargeObjectSpace, 0, uintptr(arrayAddr)+size+WordSize)
	page.SetFlag(FlagHasProgressBar)

	// An ordinary, non-saturated work-list: each VisitObject call scans
	// exactly one 32 KiB chunk and re-enqueues the array via the bailout
	// channel, so it's the outer budgeted Step loop -- not a single call
	// -- that drives the array across 4 steps of 256 KiB (8 chunks each).
	m.WhiteToGreyAndPush(arrayAddr)
	m.setState(Marking)

	const stepBudget = 256 * 1024
	m.Step(stepBudget, NoAction, DoNotForceCompletion, StepOriginMainThread)

	if got := page.ProgressBar(); got < stepBudget {
		t.Fatalf("progress bar after one 256 KiB step = %d, want at least %d", got, uintptr(stepBudget))
	}
	if got := page.ProgressBar(); got >= 2*stepBudget {
		t.Fatalf("progress bar after one 256 KiB step = %d, want it bounded by the step's own budget, not the whole array scanned in one call", got)
	}
	if m.unscannedBytesOfLargeObject < 768*1024 {
		t.Fatalf("unscanned bytes reported to the pacer = %d, want at least 768 KiB", m.unscannedBytesOfLargeObject)
	}
	if got := m.Color(arrayAddr); got != Black {
		t.Fatalf("array color mid-scan = %s, want black", got)
	}

	for i := 0; i < 3; i++ {
		m.Step(stepBudget, NoAction, DoNotForceCompletion, StepOriginMainThread)
	}

	if got := page.ProgressBar(); got != size {
		t.Fatalf("progress bar after 4 steps of 256 KiB = %d, want %d (fully scanned)", got, uintptr(size))
	}
}

// TestScenarioScavengeReconciliationDropsFiller checks that a scavenge
// reconciliation drops a dead from-space entry and a stale filler while
// forwarding a live one.
func TestScenarioScavengeReconciliationDropsFiller(t *testing.T) {
	heap, m := newTestMarker(DefaultFlags())
	m.setState(Marking)

	x := Address(0x3000)  // from-space, forwarded
	xPrime := Address(0x9000)
	y := Address(0x3010) // from-space, not forwarded (dead root)
	z := Address(0x1030) // old-space, one-word filler

	filler := fillerClass(heap, Address(0x1000))
	heap.PutObject(&Object{Addr: z, Size: WordSize, Class: filler.Addr})

	m.worklist.Push(x)
	m.worklist.Push(y)
	m.worklist.Push(z)

	info := ScavengeInfo{
		InFromSpace: func(a Address) bool { return a == x || a == y },
		Forwarded: func(a Address) (Address, bool) {
			if a == x {
				return xPrime, true
			}
			return 0, false
		},
		InToSpace:      func(Address) bool { return false },
		ExternallyGrey: func(Address) bool { return false },
	}
	m.UpdateMarkingWorklistAfterScavenge(info)

	var remaining []Address
	for {
		addr, ok := m.worklist.Pop()
		if !ok {
			break
		}
		remaining = append(remaining, addr)
	}
	if len(remaining) != 1 || remaining[0] != xPrime {
		t.Fatalf("work-list after scavenge reconciliation = %v, want [%#x] only", remaining, xPrime)
	}
}

// TestScenarioLeftTrimOverlap checks the overlapping bit-sharing case of
// a left-trim notification.
func TestScenarioLeftTrimOverlap(t *testing.T) {
	heap, m := newTestMarker(DefaultFlags())
	heap.EnsurePage(OldSpace, 0x4000, 0x1000)
	from := Address(0x4008)
	to := from + WordSize

	m.setState(Marking)
	m.WhiteToGrey(from)

	m.NotifyLeftTrimming(from, to)

	if got := m.Color(to); got != Grey {
		t.Fatalf("color(to) = %s, want grey", got)
	}
	addr, ok := m.worklist.Pop()
	if !ok || addr != to {
		t.Fatalf("work-list should contain to; popped (%v, %v)", addr, ok)
	}
	bm, i := m.bitmapSlot(to)
	if bm.getBit(i + 1) {
		t.Fatalf("the second mark bit of the new position must not be set")
	}
}

// TestScenarioFinalizeHandshake checks that the first completion
// triggers finalize_marking (not marking_complete); after one round of
// finalize_incrementally with small residual, finalize_marking_completed
// becomes true and the next completion triggers marking_complete.
func TestScenarioFinalizeHandshake(t *testing.T) {
	heap, m := newTestMarker(DefaultFlags())
	classAddr := Address(0x1000)
	objAddr := Address(0x1010)
	plainClass(heap, classAddr, nil)
	m.AllocateObject(OldSpace, objAddr, WordSize, classAddr, nil)
	heap.AddRoot(objAddr)

	m.Start("scenario", true, false)

	m.Step(1<<20, GCViaStackGuard, ForceCompletion, StepOriginMainThread)
	if m.RequestType() != RequestFinalization {
		t.Fatalf("request type after first completion = %v, want finalization", m.RequestType())
	}
	if m.State() == Complete {
		t.Fatalf("state should not be complete after the first completion alone")
	}

	m.FinalizeIncrementally()
	if !m.finalizeMarkingCompleted {
		t.Fatalf("finalize_marking_completed should be true after one round with zero residual work")
	}

	m.Step(1<<20, GCViaStackGuard, ForceCompletion, StepOriginMainThread)
	if m.RequestType() != RequestCompleteMarking {
		t.Fatalf("request type after second completion = %v, want complete_marking", m.RequestType())
	}
	if m.State() != Complete {
		t.Fatalf("state after second completion = %s, want complete", m.State())
	}
	if !m.shouldHurry {
		t.Fatalf("should_hurry must be set once marking_complete fires")
	}
}
