package gc

// Pacing constants governing how the step size ramps up and floors.
const (
	kTargetStepCount      = 128
	kTargetStepCountAtOOM = 16
	kAllocatedThreshold   = 64 * 1024 // bytes; also the allocation-observer sampling threshold
	kStepSizeInMs         = 50.0
	kMaxStepSizeInMs      = 5.0
	kRampUpIntervalMs     = 300.0
	oomSlackMB            = 64 * 1024 * 1024
)

// addAllocationObservers/removeAllocationObservers stand in for
// space.AddAllocationObserver/RemoveAllocationObserver (§6): in this
// model allocation events are delivered explicitly via NotifyAllocation
// rather than polled per-space, so there is no per-space observer object
// to register.
func (m *Marker) addAllocationObservers() {
	// No-op bookkeeping hook: allocation events are delivered explicitly
	// via NotifyAllocation in this model rather than polled from spaces.
}

func (m *Marker) removeAllocationObservers() {}

// NotifyAllocation is the allocation-observer callback: the allocator
// calls this after every kAllocatedThreshold bytes allocated, driving
// AdvanceIncrementalMarkingOnAllocation (§3, §4.7).
func (m *Marker) NotifyAllocation(bytesAllocated uintptr) {
	m.AdvanceIncrementalMarkingOnAllocation(bytesAllocated)
}

// promotedSpaceSizeOfObjects sums live object bytes in the generations
// the pacer paces against (old/map/code/large-object space).
func (m *Marker) promotedSpaceSizeOfObjects() uintptr {
	var total uintptr
	for _, space := range m.heap.Spaces() {
		if space.Kind == NewSpace {
			continue
		}
		for _, page := range space.Pages {
			for _, obj := range m.heap.objects {
				if obj.Addr >= page.Base && obj.Addr < page.Base+Address(page.Size) {
					total += obj.Size
				}
			}
		}
	}
	return total
}

func (m *Marker) newSpaceCapacity() uintptr {
	space := m.heap.Space(NewSpace)
	var total uintptr
	for _, p := range space.Pages {
		total += p.Size
	}
	return total
}

// CloseToOutOfMemory models heap->IsCloseToOutOfMemory(slack); overridable
// by tests/callers that want to force the near-OOM pacer branch.
var CloseToOutOfMemory = func(m *Marker, slack uintptr) bool { return false }

// stepSizeToKeepUpWithAllocations is the keep-up term: bytes newly
// allocated since the last step must be paid for.
func (m *Marker) stepSizeToKeepUpWithAllocations(currentAllocationCounter uintptr) uintptr {
	m.bytesAllocated += currentAllocationCounter - m.oldGenerationAllocationCounter
	m.oldGenerationAllocationCounter = currentAllocationCounter
	return m.bytesAllocated
}

// stepSizeToMakeProgress is the progress term: a steady budget scaled by
// a 300ms ramp-up, with a near-OOM override (§4.7).
func (m *Marker) stepSizeToMakeProgress() uintptr {
	oomSlack := m.newSpaceCapacity() + oomSlackMB
	if CloseToOutOfMemory(m, oomSlack) {
		return m.promotedSpaceSizeOfObjects() / kTargetStepCountAtOOM
	}

	stepSize := m.initialOldGenerationSize / kTargetStepCount
	if stepSize < kAllocatedThreshold {
		stepSize = kAllocatedThreshold
	}
	timePassedMs := m.Now() - m.startTimeMs
	factor := timePassedMs / kRampUpIntervalMs
	if factor > 1.0 {
		factor = 1.0
	}
	if factor < 0 {
		factor = 0
	}
	return uintptr(factor * float64(stepSize))
}

// EstimateStepSize converts a time budget and a measured marking speed
// (bytes/ms) into a byte budget, capping bursts to a smooth rate. A speed
// of 0 (unknown) degrades to the unscaled time budget in bytes at the
// kAllocatedThreshold/ms baseline rate used throughout §4.7.
func EstimateStepSize(stepSizeMs float64, markingSpeedBytesPerMs float64) uintptr {
	if markingSpeedBytesPerMs <= 0 {
		markingSpeedBytesPerMs = kAllocatedThreshold
	}
	return uintptr(stepSizeMs * markingSpeedBytesPerMs)
}

// AdvanceIncrementalMarkingOnAllocation is the observer callback invoked
// by NotifyAllocation; a no-op outside SWEEPING/MARKING or while an
// always-allocate override is active (§4.7). bytesAllocated is the real
// allocation volume reported since the last call.
func (m *Marker) AdvanceIncrementalMarkingOnAllocation(bytesAllocated uintptr) {
	if !m.Flags.IncrementalMarking || (m.state != Sweeping && m.state != Marking) || m.AlwaysAllocate {
		return
	}

	bytesToProcess := m.stepSizeToKeepUpWithAllocations(m.oldGenerationAllocationCounter+bytesAllocated) + m.stepSizeToMakeProgress()

	if bytesToProcess < kAllocatedThreshold {
		return
	}

	maxStepSize := EstimateStepSize(kMaxStepSizeInMs, m.MarkingSpeedBytesPerMs)
	if bytesToProcess > maxStepSize {
		bytesToProcess = maxStepSize
	}

	var bytesProcessed uintptr
	if m.bytesMarkedAheadOfSchedule >= bytesToProcess {
		// Credit from concurrent/idle tasks pays for this step; shift
		// marking time from the mutator to those tasks.
		m.bytesMarkedAheadOfSchedule -= bytesToProcess
		bytesProcessed = bytesToProcess
	} else {
		bytesProcessed = m.Step(bytesToProcess, GCViaStackGuard, ForceCompletion, StepOriginMainThread)
	}

	if bytesProcessed > m.bytesAllocated {
		m.bytesAllocated = 0
	} else {
		m.bytesAllocated -= bytesProcessed
	}
}

// AdvanceIncrementalMarking is the idle-task callback: it alternates real
// marking steps with embedder wrapper-tracing slices until the deadline
// is too close or marking is done (§4.7).
func (m *Marker) AdvanceIncrementalMarking(deadlineMs float64, completion CompletionAction, force ForceCompletionAction) float64 {
	if m.IsStopped() {
		invariantPanic("advance_incremental_marking called while stopped")
	}

	stepSizeBytes := EstimateStepSize(kStepSizeInMs, m.MarkingSpeedBytesPerMs)
	incrementalWrapperTracing := m.state == Marking && m.Flags.IncrementalMarkingWrappers && m.heap.Embedder.InUse()

	remaining := 0.0
	for {
		if incrementalWrapperTracing && m.traceWrappersToggle {
			wrapperDeadline := m.Now() + kStepSizeInMs
			if !m.heap.Embedder.ShouldFinalizeIncrementalMarking() {
				m.heap.Embedder.Trace(wrapperDeadline, false)
			}
		} else {
			m.Step(stepSizeBytes, completion, force, StepOriginTask)
		}
		m.traceWrappersToggle = !m.traceWrappersToggle
		remaining = deadlineMs - m.Now()
		if remaining < kStepSizeInMs || m.IsComplete() || m.worklist.IsEmpty() {
			break
		}
	}
	return remaining
}
