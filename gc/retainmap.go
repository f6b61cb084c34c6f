package gc

// RetainedMapEntry is a (weak-ref-to-map, age) pair from the retained-map
// table (§3).
type RetainedMapEntry struct {
	Map     Address
	Cleared bool
	Age     int
}

func (m *Marker) shouldRetainMap(class *ClassDescriptor, age int) bool {
	if age == 0 {
		return false
	}
	if !m.heap.isHeapObject(class.Constructor) {
		return false
	}
	return m.Color(class.Constructor) != White
}

// RetainMaps ages class descriptors across GCs to avoid retransitioning
// thrash (§4.11): for entries past the number-of-disposed-maps prefix
// whose map is white, the map is pushed grey if its constructor is live,
// and the age goes down by one if the prototype is also unmarked;
// everything else resets to the configured retention age.
func (m *Marker) RetainMaps() {
	mapRetainingDisabled := m.ReduceMemoryFootprint || m.AbortIncrementalMarking || m.Flags.RetainMapsForNGC == 0

	for i := range m.heap.RetainedMaps {
		entry := &m.heap.RetainedMaps[i]
		if entry.Cleared {
			continue
		}

		class := m.heap.Class(entry.Map)
		if class == nil {
			continue
		}

		disposed := i < m.heap.NumberOfDisposedMaps
		newAge := entry.Age

		if !disposed && !mapRetainingDisabled && m.Color(entry.Map) == White {
			if m.shouldRetainMap(class, entry.Age) {
				m.WhiteToGreyAndPush(entry.Map)
			}
			if entry.Age > 0 && m.heap.isHeapObject(class.Prototype) && m.Color(class.Prototype) == White {
				newAge = entry.Age - 1
			}
			// else: prototype and constructor are both marked; keep age.
		} else {
			newAge = m.Flags.RetainMapsForNGC
		}

		entry.Age = newAge
	}
}
