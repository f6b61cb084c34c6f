// Package heapfile persists a snapshot of a gc.Heap's object graph and
// marker state to disk, exclusively locked via gofrs/flock so a
// concurrently running inspector never reads or writes a half-written
// snapshot.
package heapfile

import (
	"os"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v2"

	"github.com/rwwiv/trimark/gc"
)

// Snapshot is the serializable shape of a heap + marker state, flattened
// for YAML round-tripping (gc.Heap and gc.Marker hold unexported state
// and Go values like function fields that don't serialize).
type Snapshot struct {
	State        string             `yaml:"state"`
	Flags        gc.Flags           `yaml:"flags"`
	Objects      []ObjectSnapshot   `yaml:"objects"`
	Classes      []ClassSnapshot    `yaml:"classes"`
	Roots        []uintptr          `yaml:"roots"`
	WorkListMain []uintptr          `yaml:"worklist_main"`
}

type ObjectSnapshot struct {
	Addr   uintptr   `yaml:"addr"`
	Size   uintptr   `yaml:"size"`
	Class  uintptr   `yaml:"class"`
	Fields []uintptr `yaml:"fields"`
	Space  int       `yaml:"space"`
}

type ClassSnapshot struct {
	Addr        uintptr `yaml:"addr"`
	Name        string  `yaml:"name"`
	Kind        int     `yaml:"kind"`
	RefFields   []int   `yaml:"ref_fields"`
	Constructor uintptr `yaml:"constructor"`
	Prototype   uintptr `yaml:"prototype"`
	Space       int     `yaml:"space"`
}

// lockTimeout bounds how long Save/Load wait for the exclusive lock
// before giving up, so a stuck inspector can't hang the mutator forever.
const lockTimeout = 5 * time.Second

// Save writes snap to path under an exclusive file lock.
func Save(path string, snap Snapshot) error {
	lock := flock.New(path + ".lock")
	locked, err := lockWithTimeout(lock)
	if err != nil {
		return err
	}
	if !locked {
		return errTimeout{path: path}
	}
	defer lock.Unlock()

	data, err := yaml.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a Snapshot from path under the same exclusive lock Save
// uses, so a reader never observes a partially written file.
func Load(path string) (Snapshot, error) {
	var snap Snapshot
	lock := flock.New(path + ".lock")
	locked, err := lockWithTimeout(lock)
	if err != nil {
		return snap, err
	}
	if !locked {
		return snap, errTimeout{path: path}
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	err = yaml.Unmarshal(data, &snap)
	return snap, err
}

func lockWithTimeout(lock *flock.Flock) (bool, error) {
	deadline := time.Now().Add(lockTimeout)
	for {
		locked, err := lock.TryLock()
		if err != nil {
			return false, err
		}
		if locked {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		time.Sleep(20 * time.Millisecond)
	}
}

type errTimeout struct{ path string }

func (e errTimeout) Error() string { return "heapfile: timed out locking " + e.path }

// spaceOf reports the SpaceKind of the page covering addr, defaulting to
// OldSpace for an address with no page (never the case for a live
// object or class, but keeps this total).
func spaceOf(h *gc.Heap, addr gc.Address) gc.SpaceKind {
	if page := h.PageFor(addr); page != nil {
		return page.Space.Kind
	}
	return gc.OldSpace
}

// ToSnapshot flattens a heap + marker into a serializable Snapshot.
func ToSnapshot(h *gc.Heap, m *gc.Marker) Snapshot {
	snap := Snapshot{State: m.State().String(), Flags: m.Flags}
	for _, obj := range h.Objects() {
		fields := make([]uintptr, len(obj.Fields))
		for i, f := range obj.Fields {
			fields[i] = uintptr(f)
		}
		snap.Objects = append(snap.Objects, ObjectSnapshot{
			Addr: uintptr(obj.Addr), Size: obj.Size, Class: uintptr(obj.Class), Fields: fields,
			Space: int(spaceOf(h, obj.Addr)),
		})
	}
	for _, class := range h.Classes() {
		snap.Classes = append(snap.Classes, ClassSnapshot{
			Addr: uintptr(class.Addr), Name: class.Name, Kind: int(class.Kind),
			RefFields:   class.RefFields,
			Constructor: uintptr(class.Constructor), Prototype: uintptr(class.Prototype),
			Space: int(spaceOf(h, class.Addr)),
		})
	}
	for _, r := range h.Roots() {
		snap.Roots = append(snap.Roots, uintptr(r))
	}
	for {
		addr, ok := m.WorkList().Pop()
		if !ok {
			break
		}
		snap.WorkListMain = append(snap.WorkListMain, uintptr(addr))
	}
	for _, addr := range snap.WorkListMain {
		m.WorkList().Push(gc.Address(addr))
	}
	return snap
}

// FromSnapshot rebuilds a fresh heap and a marker over it from snap,
// including a page for every loaded object, class and root so the
// result is immediately usable by the marker (Color, WhiteToGrey, ...).
// The marker is returned in gc.Stopped regardless of snap.State; callers
// that need to resume mid-cycle re-issue Start themselves.
func FromSnapshot(snap Snapshot) (*gc.Heap, *gc.Marker) {
	h := gc.NewHeap()
	for _, cs := range snap.Classes {
		h.EnsurePage(gc.SpaceKind(cs.Space), gc.Address(cs.Addr), gc.WordSize)
		h.PutClass(&gc.ClassDescriptor{
			Addr:        gc.Address(cs.Addr),
			Name:        cs.Name,
			Kind:        gc.Kind(cs.Kind),
			RefFields:   cs.RefFields,
			Constructor: gc.Address(cs.Constructor),
			Prototype:   gc.Address(cs.Prototype),
		})
	}
	for _, os := range snap.Objects {
		fields := make([]gc.Address, len(os.Fields))
		for i, f := range os.Fields {
			fields[i] = gc.Address(f)
		}
		size := os.Size
		if size == 0 {
			size = gc.WordSize
		}
		h.EnsurePage(gc.SpaceKind(os.Space), gc.Address(os.Addr), size)
		h.PutObject(&gc.Object{
			Addr:   gc.Address(os.Addr),
			Size:   os.Size,
			Class:  gc.Address(os.Class),
			Fields: fields,
		})
	}
	for _, r := range snap.Roots {
		addr := gc.Address(r)
		h.EnsurePage(gc.OldSpace, addr, gc.WordSize)
		h.AddRoot(addr)
	}

	m := gc.NewMarker(h, snap.Flags)
	for _, addr := range snap.WorkListMain {
		m.WorkList().Push(gc.Address(addr))
	}
	return h, m
}

