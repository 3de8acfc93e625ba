package align

import "unsafe"

// sliceAddr returns the address of a slice's backing array. Used only
// to expose Buffer.Addr for alignment assertions and to compute the
// aligned offset inside Allocate's over-allocated backing array; it
// never dereferences the pointer.
func sliceAddr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}
