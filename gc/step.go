package gc

// ProcessMarkingWorklist pops and visits grey objects until bytesToProcess
// bytes have been scanned, or (with completion == ForceCompletion) until
// the work-list is empty regardless of budget (§4.6, original
// ProcessMarkingWorklist).
func (m *Marker) ProcessMarkingWorklist(bytesToProcess uintptr, completion ForceCompletionAction) uintptr {
	var bytesProcessed uintptr
	for bytesProcessed < bytesToProcess || completion == ForceCompletion {
		addr, ok := m.worklist.Pop()
		if !ok {
			break
		}
		// Left trimming may leave white, grey, or black filler objects on
		// the work-list; ignore them (§4.8, §7).
		if m.heap.isFiller(addr) {
			continue
		}

		if obj := m.heap.Object(addr); obj != nil {
			m.unscannedBytesOfLargeObject = 0
			unscanned := m.VisitObject(obj)
			m.unscannedBytesOfLargeObject = unscanned
			bytesProcessed += obj.Size - unscanned
			continue
		}
		if class := m.heap.Class(addr); class != nil {
			m.visitClass(class)
			bytesProcessed += 2 * WordSize
			continue
		}
	}

	m.heap.Embedder.RegisterWrappersWithRemoteTracer()
	return bytesProcessed
}

// Step is the non-blocking marking slice: it finalizes sweeping if still
// sweeping, processes up to bytesToProcess bytes of work, and on an empty
// work-list with the embedder ready decides between FinalizeMarking and
// MarkingComplete — unless completion is not forced and the idle-delay
// limit is not yet reached, in which case it only bumps the idle-delay
// counter. When the embedder is not ready, it is told the work-list is
// empty instead (§4.6, §5 "a step is non-blocking").
func (m *Marker) Step(bytesToProcess uintptr, action CompletionAction, completion ForceCompletionAction, origin StepOrigin) uintptr {
	if m.state == Sweeping {
		m.FinalizeSweeping()
	}

	var bytesProcessed uintptr
	if m.state == Marking {
		bytesProcessed = m.ProcessMarkingWorklist(bytesToProcess, completion)
		if origin == StepOriginTask {
			m.bytesMarkedAheadOfSchedule += bytesProcessed
		}

		if m.worklist.IsEmpty() {
			if m.heap.Embedder.ShouldFinalizeIncrementalMarking() {
				if completion == ForceCompletion || m.isIdleMarkingDelayCounterLimitReached() {
					if !m.finalizeMarkingCompleted {
						m.FinalizeMarking(action)
					} else {
						m.MarkingComplete(action)
					}
				} else {
					m.incrementIdleMarkingDelayCounter()
				}
			} else {
				m.heap.Embedder.NotifyV8MarkingWorklistWasEmpty()
			}
		}
	}
	return bytesProcessed
}

func (m *Marker) isIdleMarkingDelayCounterLimitReached() bool {
	return m.idleMarkingDelayCounter > kMaxIdleMarkingDelayCounter
}

func (m *Marker) incrementIdleMarkingDelayCounter() { m.idleMarkingDelayCounter++ }

func (m *Marker) clearIdleMarkingDelayCounter() { m.idleMarkingDelayCounter = 0 }
