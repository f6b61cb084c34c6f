//go:build unix

package pagearena

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Reserve maps a private, anonymous region of size bytes (rounded up to
// a page) and returns an Arena whose Base is that region's address.
func Reserve(size uintptr) (*Arena, error) {
	pageSize := uintptr(os.Getpagesize())
	rounded := (size + pageSize - 1) &^ (pageSize - 1)

	mem, err := unix.Mmap(-1, 0, int(rounded), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errNotReserved{size: size}
	}
	return &Arena{Base: uintptr(unsafe.Pointer(&mem[0])), Size: rounded, mem: mem}, nil
}

func release(mem []byte) error {
	return unix.Munmap(mem)
}
