package csc

import (
	"fmt"
	"time"

	"github.com/xpra-org/pixelcore/align"
	"github.com/xpra-org/pixelcore/pixel"
	"github.com/xpra-org/pixelcore/pixerr"
	"github.com/xpra-org/pixelcore/stats"
)

// Converter performs one fixed (SrcFormat,SrcWidth,SrcHeight) ->
// (DstFormat,DstWidth,DstHeight) conversion repeatedly across frames.
// When scaling is required on top of a format transform, it holds one
// persistent intermediate buffer (the "unscaled output") reused for
// the lifetime of the Converter, per spec.md §4.3's performance
// contract. A Converter is not safe for concurrent use by multiple
// goroutines against the same instance.
type Converter struct {
	opts         Options
	filter       Filter
	kernel       conversionSpec
	intermediate *pixel.Buffer

	Stats stats.Counters
}

// NewConverter validates opts and prepares a Converter, allocating the
// persistent intermediate buffer up front if the configured conversion
// both transforms format and scales.
func NewConverter(opts Options) (*Converter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	kernel := conversions[pairKey{opts.SrcFormat, opts.DstFormat}]
	c := &Converter{
		opts:   opts,
		filter: filterForSpeed(opts.Speed),
		kernel: kernel,
	}
	if kernel.transform != nil && opts.scaling() {
		inter, err := allocateForFormat(opts.DstFormat, opts.SrcWidth, opts.SrcHeight)
		if err != nil {
			return nil, err
		}
		c.intermediate = inter
	}
	return c, nil
}

// Close releases the persistent intermediate buffer, if any. Call it
// once the Converter is no longer needed.
func (c *Converter) Close() {
	if c.intermediate != nil {
		c.intermediate.Release()
		c.intermediate = nil
	}
}

// Convert converts src (which must match the Converter's configured
// source geometry and format) into a freshly allocated destination
// buffer in the configured format and size.
func (c *Converter) Convert(src *pixel.Buffer) (*pixel.Buffer, error) {
	start := time.Now()
	o := c.opts
	if src.Width() != o.SrcWidth || src.Height() != o.SrcHeight || src.Format() != o.SrcFormat {
		return nil, fmt.Errorf("csc: source %dx%d %s does not match configured %dx%d %s: %w",
			src.Width(), src.Height(), src.Format(), o.SrcWidth, o.SrcHeight, o.SrcFormat, pixerr.ErrInvalidArgument)
	}

	var dst *pixel.Buffer
	var err error
	switch {
	case c.kernel.transform == nil && !o.scaling():
		dst, err = src.CloneDeep()
	case c.kernel.transform == nil:
		dst, err = allocateForFormat(o.DstFormat, o.DstWidth, o.DstHeight)
		if err == nil {
			scaleBuffer(src, dst, c.filter)
		}
	case !o.scaling():
		dst, err = allocateForFormat(o.DstFormat, o.DstWidth, o.DstHeight)
		if err == nil {
			err = c.kernel.transform(src, dst)
		}
	default:
		if err = c.kernel.transform(src, c.intermediate); err == nil {
			dst, err = allocateForFormat(o.DstFormat, o.DstWidth, o.DstHeight)
			if err == nil {
				scaleBuffer(c.intermediate, dst, c.filter)
			}
		}
	}
	if err != nil {
		if dst != nil {
			dst.Release()
		}
		return nil, err
	}

	c.Stats.AddTiming(time.Since(start))
	return dst, nil
}

// allocateForFormat allocates a fresh pixel.Buffer in format at the
// given size, with plane geometry precomputed per spec.md §4.3: each
// plane's stride aligned up to 64 bytes, with two extra rowstrides of
// slack past the last row (external YUV encoders may read past it on
// odd heights), all backed by a single AlignedBuffer.
func allocateForFormat(format pixel.Format, width, height int) (*pixel.Buffer, error) {
	if format.IsPacked() {
		return allocatePacked(format, width, height)
	}
	return allocatePlanar(format, width, height)
}

func allocatePacked(format pixel.Format, width, height int) (*pixel.Buffer, error) {
	stride := align.Pad(width * format.BytesPerPixel())
	buf, err := align.Allocate(stride * (height + 2))
	if err != nil {
		return nil, err
	}
	pb, err := pixel.Packed(width, height, stride, format, buf)
	if err != nil {
		buf.Release()
		return nil, err
	}
	return pb, nil
}

func allocatePlanar(format pixel.Format, width, height int) (*pixel.Buffer, error) {
	n := format.PlaneCount()
	strides := make([]int, n)
	offsets := make([]int, n)
	total := 0
	for p := 0; p < n; p++ {
		_, ph, _ := format.PlaneDimensions(p, width, height)
		rowBytes, _ := format.MinPlaneStride(p, width)
		stride := align.Pad(rowBytes)
		strides[p] = stride
		offsets[p] = total
		total += stride * (ph + 2)
	}
	buf, err := align.Allocate(total)
	if err != nil {
		return nil, err
	}
	pb, err := pixel.PlanarShared(width, height, strides, offsets, format, buf)
	if err != nil {
		buf.Release()
		return nil, err
	}
	buf.Release() // PlanarShared took its own reference per plane; drop ours.
	return pb, nil
}

// scaleBuffer resamples every plane of src into the matching plane of
// dst (both already allocated at their respective sizes in the same
// format), dispatching on each plane's byte layout.
func scaleBuffer(src, dst *pixel.Buffer, filter Filter) {
	format := src.Format()
	for p := 0; p < src.PlaneCount(); p++ {
		sp, _ := src.Plane(p)
		sStride, _ := src.Stride(p)
		sw, sh, _ := src.PlaneDimensions(p)
		dp, _ := dst.MutablePlane(p)
		dStride, _ := dst.Stride(p)
		dw, dh, _ := dst.PlaneDimensions(p)
		groupBytes, _, _ := format.PlaneBytesPerGroup(p)

		switch groupBytes {
		case 1:
			scale1(sp, sStride, sw, sh, dp, dStride, dw, dh, filter)
		case 4:
			scale4(sp, sStride, sw, sh, dp, dStride, dw, dh, filter, format)
		default:
			scaleGeneric(sp, sStride, sw, sh, groupBytes, dp, dStride, dw, dh, filter)
		}
	}
}
