//go:build !unix

package pagearena

import "unsafe"

// Reserve falls back to a plain Go allocation on non-unix platforms; the
// returned Base still satisfies gc.Heap's "opaque but stable" contract,
// it just isn't backed by an mmap'd region.
func Reserve(size uintptr) (*Arena, error) {
	mem := make([]byte, size)
	return &Arena{Base: uintptr(unsafe.Pointer(&mem[0])), Size: size, mem: mem}, nil
}

func release(mem []byte) error {
	return nil
}
