package pixel

import (
	"fmt"

	"github.com/xpra-org/pixelcore/align"
	"github.com/xpra-org/pixelcore/pixerr"
)

// ColorRange distinguishes full-range (0-255) from studio-range
// (16-235/240) 8-bit value mapping, per spec.md's glossary.
type ColorRange int

const (
	RangeUnspecified ColorRange = iota
	RangeFull
	RangeStudio
)

// Primaries carries colour primaries opaquely for downstream
// consumers; this package never interprets the value.
type Primaries int

const (
	PrimariesUnspecified Primaries = iota
	PrimariesBT601
	PrimariesBT709
	PrimariesBT2020
)

// Buffer describes a rectangular image: its format, geometry, and one
// align.Buffer-backed plane per format.Layout. Construct with Packed
// or Planar; never via a zero Buffer.
type Buffer struct {
	width, height int
	format        Format
	strides       []int
	offsets       []int
	storage       []*align.Buffer
	fullRange     bool
	primaries     Primaries
}

// Packed constructs a single-plane Buffer backed by buf, with the
// given row stride. stride must be at least width*bytesPerPixel(format);
// a smaller stride is rejected at construction per spec.md §4.2.
func Packed(width, height, stride int, format Format, buf *align.Buffer) (*Buffer, error) {
	if !format.IsPacked() {
		return nil, fmt.Errorf("pixel: %s is not a packed format: %w", format, pixerr.ErrInvalidArgument)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("pixel: non-positive dimensions %dx%d: %w", width, height, pixerr.ErrInvalidArgument)
	}
	bpp := format.BytesPerPixel()
	if stride < width*bpp {
		return nil, fmt.Errorf("pixel: stride %d smaller than row bytes %d: %w", stride, width*bpp, pixerr.ErrInvalidArgument)
	}
	// Plane/MutablePlane hand out stride*height bytes (full stride on
	// the last row, including any padding), so the backing buffer must
	// cover that whole span, not just the last row's live bytes.
	needed := stride * height
	if buf.Len() < needed {
		return nil, fmt.Errorf("pixel: backing buffer too small (%d < %d): %w", buf.Len(), needed, pixerr.ErrInvalidArgument)
	}
	return &Buffer{
		width: width, height: height, format: format,
		strides: []int{stride}, offsets: []int{0},
		storage: []*align.Buffer{buf},
	}, nil
}

// Planar constructs a multi-plane Buffer, one align.Buffer per plane,
// each with its own row stride. len(strides) and len(buffers) must
// equal format.PlaneCount().
func Planar(width, height int, strides []int, format Format, buffers []*align.Buffer) (*Buffer, error) {
	if format.IsPacked() {
		return nil, fmt.Errorf("pixel: %s is a packed format, use Packed: %w", format, pixerr.ErrInvalidArgument)
	}
	n := format.PlaneCount()
	if n == 0 {
		return nil, fmt.Errorf("pixel: unknown format %v: %w", format, pixerr.ErrInvalidArgument)
	}
	if len(strides) != n || len(buffers) != n {
		return nil, fmt.Errorf("pixel: %s needs %d planes, got %d strides / %d buffers: %w", format, n, len(strides), len(buffers), pixerr.ErrInvalidArgument)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("pixel: non-positive dimensions %dx%d: %w", width, height, pixerr.ErrInvalidArgument)
	}
	offsets := make([]int, n)
	for p := 0; p < n; p++ {
		pw, ph, _ := format.PlaneDimensions(p, width, height)
		bpg, ppg, _ := format.PlaneBytesPerGroup(p)
		minStride := ceilDiv(pw, ppg) * bpg
		if strides[p] < minStride {
			return nil, fmt.Errorf("pixel: plane %d stride %d smaller than row bytes %d: %w", p, strides[p], minStride, pixerr.ErrInvalidArgument)
		}
		// Plane/MutablePlane hand out strides[p]*ph bytes at offset 0
		// (full stride on the last row, including any padding), so the
		// backing buffer must cover that whole span, matching what the
		// accessors actually slice.
		needed := strides[p] * ph
		if buffers[p].Len() < needed {
			return nil, fmt.Errorf("pixel: plane %d backing buffer too small (%d < %d): %w", p, buffers[p].Len(), needed, pixerr.ErrInvalidArgument)
		}
	}
	return &Buffer{
		width: width, height: height, format: format,
		strides: append([]int(nil), strides...),
		offsets: offsets,
		storage: append([]*align.Buffer(nil), buffers...),
	}, nil
}

// PlanarShared constructs a multi-plane Buffer whose planes are all
// views into a single shared align.Buffer at the given byte offsets,
// the layout the CSC engine produces: one allocation per output
// frame, with each plane pointer a view into it (spec.md §4.3).
// PlanarShared takes its own reference on shared; callers retain
// ownership of the reference they passed in.
func PlanarShared(width, height int, strides, offsets []int, format Format, shared *align.Buffer) (*Buffer, error) {
	if format.IsPacked() {
		return nil, fmt.Errorf("pixel: %s is a packed format: %w", format, pixerr.ErrInvalidArgument)
	}
	n := format.PlaneCount()
	if len(strides) != n || len(offsets) != n {
		return nil, fmt.Errorf("pixel: %s needs %d planes, got %d strides / %d offsets: %w", format, n, len(strides), len(offsets), pixerr.ErrInvalidArgument)
	}
	storage := make([]*align.Buffer, n)
	for i := range storage {
		storage[i] = shared.Ref()
	}
	return &Buffer{
		width: width, height: height, format: format,
		strides: append([]int(nil), strides...),
		offsets: append([]int(nil), offsets...),
		storage: storage,
	}, nil
}

// Width returns the image width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the image height in pixels.
func (b *Buffer) Height() int { return b.height }

// Format returns the pixel format.
func (b *Buffer) Format() Format { return b.format }

// PlaneCount returns the number of planes.
func (b *Buffer) PlaneCount() int { return len(b.storage) }

// Stride returns plane p's row stride in bytes.
func (b *Buffer) Stride(p int) (int, error) {
	if p < 0 || p >= len(b.strides) {
		return 0, fmt.Errorf("pixel: plane %d out of range [0,%d): %w", p, len(b.strides), pixerr.ErrOutOfRange)
	}
	return b.strides[p], nil
}

// PlaneDimensions returns plane p's width and height in pixels.
func (b *Buffer) PlaneDimensions(p int) (width, height int, err error) {
	if p < 0 || p >= b.PlaneCount() {
		return 0, 0, fmt.Errorf("pixel: plane %d out of range [0,%d): %w", p, b.PlaneCount(), pixerr.ErrOutOfRange)
	}
	w, h, _ := b.format.PlaneDimensions(p, b.width, b.height)
	return w, h, nil
}

// Plane returns a read-only view of plane p's bytes (stride*height
// bytes, including any row padding).
func (b *Buffer) Plane(p int) ([]byte, error) {
	if p < 0 || p >= len(b.storage) {
		return nil, fmt.Errorf("pixel: plane %d out of range [0,%d): %w", p, len(b.storage), pixerr.ErrOutOfRange)
	}
	_, h, _ := b.PlaneDimensions(p)
	size := b.strides[p] * h
	return b.storage[p].Bytes()[b.offsets[p] : b.offsets[p]+size], nil
}

// MutablePlane returns a writable view of plane p's bytes.
func (b *Buffer) MutablePlane(p int) ([]byte, error) {
	if p < 0 || p >= len(b.storage) {
		return nil, fmt.Errorf("pixel: plane %d out of range [0,%d): %w", p, len(b.storage), pixerr.ErrOutOfRange)
	}
	_, h, _ := b.PlaneDimensions(p)
	size := b.strides[p] * h
	return b.storage[p].Mutable()[b.offsets[p] : b.offsets[p]+size], nil
}

// SetFullRange records whether sample values use full range (0-255)
// versus studio range (16-235/240). It is an attribute, not computed.
func (b *Buffer) SetFullRange(full bool) { b.fullRange = full }

// FullRange reports the range attribute set by SetFullRange.
func (b *Buffer) FullRange() bool { return b.fullRange }

// SetPrimaries records colour primaries opaquely.
func (b *Buffer) SetPrimaries(p Primaries) { b.primaries = p }

// Primaries returns the colour primaries attribute.
func (b *Buffer) Primaries() Primaries { return b.primaries }

// Release drops this Buffer's reference to each underlying
// align.Buffer. Call when the Buffer's last consumer is done with it.
func (b *Buffer) Release() {
	for _, s := range b.storage {
		s.Release()
	}
}

// CloneDeep copies every plane into freshly allocated align.Buffers,
// for a consumer that must outlive the producer's frame pool.
func (b *Buffer) CloneDeep() (*Buffer, error) {
	newStorage := make([]*align.Buffer, len(b.storage))
	for p := range b.storage {
		_, h, _ := b.PlaneDimensions(p)
		size := b.strides[p] * h
		nb, err := align.Allocate(size)
		if err != nil {
			for _, done := range newStorage[:p] {
				if done != nil {
					done.Release()
				}
			}
			return nil, err
		}
		src, _ := b.Plane(p)
		copy(nb.Mutable(), src)
		newStorage[p] = nb
	}
	return &Buffer{
		width: b.width, height: b.height, format: b.format,
		strides: append([]int(nil), b.strides...),
		// Each plane was just copied to offset 0 of its own fresh
		// align.Buffer, regardless of what offset it lived at in the
		// (possibly shared) source storage; the clone's offsets must
		// reflect that, not the source's.
		offsets:   make([]int, len(b.offsets)),
		storage:   newStorage,
		fullRange: b.fullRange,
		primaries: b.primaries,
	}, nil
}
