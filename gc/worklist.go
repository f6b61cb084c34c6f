package gc

import "sync"

// defaultWorklistCapacity bounds the main channel; pushes past this fail
// and the caller must revert the color to grey (§4.2).
const defaultWorklistCapacity = 4096

// WorkList is the unordered multiset of grey objects described in §3: a
// main channel any producer/consumer may use, and a bailout channel the
// concurrent marker hands work back through with priority.
type WorkList struct {
	mu       sync.Mutex
	main     []Address
	bailout  []Address
	capacity int
}

// NewWorkList creates a work-list with the given main-channel capacity.
// A capacity of 0 means the default.
func NewWorkList(capacity int) *WorkList {
	if capacity <= 0 {
		capacity = defaultWorklistCapacity
	}
	return &WorkList{capacity: capacity}
}

// Push adds addr to the main channel, returning false if it is full. On
// failure the caller must reverse the object's color via BlackToGrey.
func (w *WorkList) Push(addr Address) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.main) >= w.capacity {
		return false
	}
	w.main = append(w.main, addr)
	return true
}

// PushBailout adds addr to the bailout channel. In the concurrent
// configuration this channel is sized to always accept, so it never
// fails; this implementation never bounds it.
func (w *WorkList) PushBailout(addr Address) {
	w.mu.Lock()
	w.bailout = append(w.bailout, addr)
	w.mu.Unlock()
}

// Pop drains the bailout channel first, then the main channel.
func (w *WorkList) Pop() (Address, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if n := len(w.bailout); n > 0 {
		addr := w.bailout[n-1]
		w.bailout = w.bailout[:n-1]
		return addr, true
	}
	if n := len(w.main); n > 0 {
		addr := w.main[n-1]
		w.main = w.main[:n-1]
		return addr, true
	}
	return 0, false
}

func (w *WorkList) IsEmpty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.main) == 0 && len(w.bailout) == 0
}

func (w *WorkList) IsFull() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.main) >= w.capacity
}

func (w *WorkList) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.main) + len(w.bailout)
}

// Update rewrites/filters the entire list: f receives each entry and
// returns (replacement, keep). Used by scavenge reconciliation (§4.8).
func (w *WorkList) Update(f func(Address) (Address, bool)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.main = updateSlice(w.main, f)
	w.bailout = updateSlice(w.bailout, f)
}

func updateSlice(in []Address, f func(Address) (Address, bool)) []Address {
	out := in[:0]
	for _, addr := range in {
		if next, keep := f(addr); keep {
			out = append(out, next)
		}
	}
	return out
}
