// Package align implements AlignedBuffer: a reference-counted, 64-byte
// cache-line-aligned byte buffer with a pluggable destructor, suitable
// for handing off to foreign decoders that write into its memory.
package align

import (
	"sync"
	"sync/atomic"

	"github.com/xpra-org/pixelcore/pixerr"
)

// Alignment is the byte boundary every Buffer's base address is
// aligned to. External decoder engines (AV1, H.264, NVENC) require
// 64-byte alignment for their stride/SIMD constraints; the general
// purpose heap allocator gives no such guarantee, hence this package.
const Alignment = 64

// Destructor is invoked exactly once, when the last reference to a
// Buffer is released. For Buffers created by Allocate it is nil (the
// backing array is left to the garbage collector). For Buffers created
// by Wrap it runs the caller-supplied cleanup.
type Destructor func(ptr uintptr, length int, arg any)

// Buffer is an aligned, reference-counted region of bytes. The zero
// Buffer is not valid; construct one with Allocate or Wrap.
//
// A Buffer may be shared by multiple owners via Ref/Release; the
// destructor (if any) fires exactly once, when the refcount reaches
// zero. Len never changes after construction.
type Buffer struct {
	data  []byte
	dtor  Destructor
	arg   any
	refs  *int32
	mu    *sync.Mutex
	freed *bool
}

// Pad rounds size up to the next multiple of Alignment.
func Pad(size int) int {
	if size <= 0 {
		return 0
	}
	return (size + Alignment - 1) &^ (Alignment - 1)
}

// Allocate returns a Buffer of exactly length bytes whose base address
// is aligned to Alignment. It over-allocates by up to Alignment-1
// bytes and slices the aligned window out of the backing array, the
// standard Go technique for aligned allocation (the runtime allocator
// exposes no alignment control of its own).
//
// Allocate never returns a partially-initialized Buffer. A negative
// length is rejected with a nil Buffer and pixerr.ErrInvalidArgument.
// Allocate has no pixerr.ErrOutOfMemory path: a backing array the Go
// runtime cannot provide surfaces as a runtime panic or fatal error,
// not as a returned error.
func Allocate(length int) (*Buffer, error) {
	if length < 0 {
		return nil, pixerr.ErrInvalidArgument
	}
	if length == 0 {
		return newBuffer(make([]byte, 0), nil, nil), nil
	}

	raw := make([]byte, length+Alignment-1)
	base := uintptr(0)
	if len(raw) > 0 {
		base = sliceAddr(raw)
	}
	offset := (Alignment - int(base%Alignment)) % Alignment
	data := raw[offset : offset+length : offset+length]
	return newBuffer(data, nil, nil), nil
}

// Wrap takes ownership of foreign memory already described by a Go
// byte slice backed by externally-managed storage (e.g. a decoder's
// frame-pool surface). Releasing the last reference invokes
// dtor(ptr, len, arg) exactly once. The caller is responsible for
// ensuring ptr/length describe data of at least Alignment-byte
// alignment; Wrap does not re-validate foreign alignment since it has
// no way to reclaim misaligned foreign memory.
func Wrap(data []byte, dtor Destructor, arg any) *Buffer {
	return newBuffer(data, dtor, arg)
}

func newBuffer(data []byte, dtor Destructor, arg any) *Buffer {
	refs := int32(1)
	freed := false
	return &Buffer{
		data:  data,
		dtor:  dtor,
		arg:   arg,
		refs:  &refs,
		mu:    &sync.Mutex{},
		freed: &freed,
	}
}

// Len returns the buffer's fixed length in bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns a read-only view of the buffer's content.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Mutable returns a writable view of the buffer's content. Callers
// must not retain or share a mutable view across goroutines that
// concurrently take another mutable view (spec's "content is writable
// only via a mutable borrow").
func (b *Buffer) Mutable() []byte {
	return b.data
}

// Addr reports the buffer's base address as an integer, for tests
// asserting the alignment invariant. It is never zero for a Buffer of
// positive length.
func (b *Buffer) Addr() uintptr {
	if len(b.data) == 0 {
		return 0
	}
	return sliceAddr(b.data)
}

// Ref increments the buffer's reference count and returns the same
// Buffer, for callers handing a shared reference to a second owner.
func (b *Buffer) Ref() *Buffer {
	atomic.AddInt32(b.refs, 1)
	return b
}

// Release drops a reference. When the last reference is released, the
// destructor (if any) runs exactly once. Release is safe to call from
// any goroutine, including one different from the one that created or
// last referenced the Buffer; destructors that care about thread
// affinity must arrange their own handoff.
func (b *Buffer) Release() {
	if atomic.AddInt32(b.refs, -1) > 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if *b.freed {
		return
	}
	*b.freed = true
	if b.dtor != nil {
		var addr uintptr
		if len(b.data) > 0 {
			addr = sliceAddr(b.data)
		}
		b.dtor(addr, len(b.data), b.arg)
	}
}
