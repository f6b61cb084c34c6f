// Package gc implements an incremental, tri-color, mostly-concurrent mark
// phase for a generational managed-object heap: colored bits with atomic
// transitions, a grey work-list with a bailout channel, a write barrier
// that keeps the strong invariant under concurrent mutation, and a pacer
// that paces marking against allocation.
//
// The sweeper, the compacting collector, the concurrent marker worker
// pool, the allocator/page layer and the embedder tracer are all external
// collaborators; gc only specifies the contract it calls into them with.
package gc

import "fmt"

// Address is a heap address. Real memory management is out of scope for
// this package; addresses are opaque keys into a Heap's object table.
type Address uintptr

// WordSize is the simulated pointer width used to derive mark-bit slots
// from addresses. One color pair occupies two consecutive bit slots
// starting at an object's word index, so objects one word apart (the
// left-trim-by-one-word case) share a bit between their color pairs.
const WordSize = 8

// Kind selects how the visitor scans an object's body.
type Kind int

const (
	// KindPlain objects (JSObject-alikes) expose a fixed set of reference
	// field indices via ClassDescriptor.RefFields.
	KindPlain Kind = iota
	// KindFixedArray objects hold only reference fields and, on a page
	// flagged HAS_PROGRESS_BAR, are scanned through the progress-bar
	// protocol instead of in one pass.
	KindFixedArray
	// KindNativeContext objects have a normalized-map-cache slot that is
	// marked grey without being enqueued, then blackened at hurry/finalize.
	KindNativeContext
	// KindString objects carry no reference fields; they are one of the
	// documented already-black races tolerated by the visitor.
	KindString
	// KindFiller is the one-word filler object left behind by left
	// trimming; it is never scanned and is dropped wherever encountered.
	KindFiller
)

// ClassDescriptor is a "map": the per-object class descriptor that tells
// the visitor an object's field layout. Maps are themselves heap objects
// (they have an Addr and participate in coloring).
type ClassDescriptor struct {
	Addr Address
	Name string
	Kind Kind

	// RefFields lists the indices into an object's Fields slice that hold
	// references, for KindPlain and KindNativeContext. KindFixedArray
	// objects treat every field as a reference.
	RefFields []int

	// Layout, when set, is a packed pointer bitmap equivalent to
	// RefFields, used for classes with wide field lists where a bitmap is
	// cheaper than an index slice (see PointerLayout). The visitor
	// consults Layout first and falls back to RefFields when it is zero.
	Layout PointerLayout

	// NormalizedMapCacheIndex is the field index of a KindNativeContext's
	// map-cache slot.
	NormalizedMapCacheIndex int

	// Constructor and Prototype back §4.11 map retention.
	Constructor Address
	Prototype   Address
}

// Object is a heap-allocated value.
type Object struct {
	Addr   Address
	Size   uintptr
	Class  Address // address of this object's ClassDescriptor
	Fields []Address

	// LargeArray marks an object as the large, progress-bar-scanned
	// FixedArray described in §4.4. Only meaningful together with a page
	// flagged HasProgressBar.
	LargeArray bool
}

// RecordedSlot is a (host, slot-index, value) triple handed to the
// compacting collector's slot recorder (§4.3 step 3).
type RecordedSlot struct {
	Host  Address
	Slot  int
	Value Address
}

// RecordedRelocSlot is the code-object analogue of RecordedSlot.
type RecordedRelocSlot struct {
	Host  Address
	Reloc int
	Value Address
}

// InvariantError reports a fatal internal invariant violation: an
// impossible color, a transition attempted without its precondition, or
// a work-list push failure with no fallback applied.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "gc: " + e.Msg }

// invariantPanic is the single named panic helper for fatal invariant
// violations.
func invariantPanic(format string, args ...interface{}) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
}
