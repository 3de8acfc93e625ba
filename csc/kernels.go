package csc

import (
	"fmt"

	"github.com/xpra-org/pixelcore/pixel"
	"github.com/xpra-org/pixelcore/pixerr"
)

type pairKey struct {
	src, dst pixel.Format
}

// transformFunc converts src into dst at src's own geometry (the
// "unscaled output" of spec.md §4.3); dst is pre-allocated by the
// caller at (src.Width(), src.Height()) in the destination format.
// A nil transformFunc marks an identity pair (src.Format() ==
// dst.Format()): Converter skips the transform step entirely and
// scales straight from src.
type transformFunc func(src, dst *pixel.Buffer) error

type conversionSpec struct {
	scalable  bool
	transform transformFunc
}

var conversions = map[pairKey]conversionSpec{
	{pixel.FormatBGRX, pixel.FormatI420}: {scalable: true, transform: convertBGRXToI420},
	{pixel.FormatBGRX, pixel.FormatNV12}: {scalable: true, transform: convertBGRXToNV12},

	{pixel.FormatNV12, pixel.FormatRGB}:  {scalable: false, transform: convertNV12ToPacked(pixel.FormatRGB)},
	{pixel.FormatNV12, pixel.FormatBGRX}: {scalable: false, transform: convertNV12ToPacked(pixel.FormatBGRX)},
	{pixel.FormatNV12, pixel.FormatRGBX}: {scalable: false, transform: convertNV12ToPacked(pixel.FormatRGBX)},

	{pixel.FormatRGBA, pixel.FormatRGBAPlanes}: {scalable: false, transform: convertRGBAToPlanes},

	{pixel.FormatR210, pixel.FormatR210}:     {scalable: true, transform: nil},
	{pixel.FormatBGR565, pixel.FormatBGR565}: {scalable: true, transform: nil},
	{pixel.FormatBGRX, pixel.FormatBGRX}:     {scalable: true, transform: nil},
	{pixel.FormatBGRA, pixel.FormatBGRA}:     {scalable: true, transform: nil},
}

// convertBGRXToI420 implements BT.601 JPEG full-range BGRX -> YUV420P,
// averaging each 2x2 source block before the chroma matrix, per
// spec.md §4.3.
func convertBGRXToI420(src, dst *pixel.Buffer) error {
	width, height := src.Width(), src.Height()
	srcPlane, err := src.Plane(0)
	if err != nil {
		return err
	}
	srcStride, _ := src.Stride(0)

	yPlane, _ := dst.MutablePlane(0)
	yStride, _ := dst.Stride(0)
	uPlane, _ := dst.MutablePlane(1)
	uStride, _ := dst.Stride(1)
	vPlane, _ := dst.MutablePlane(2)
	vStride, _ := dst.Stride(2)

	bgrxAt := func(x, y int) (r, g, b uint8) {
		off := y*srcStride + x*4
		return srcPlane[off+2], srcPlane[off+1], srcPlane[off]
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b := bgrxAt(x, y)
			yv, _, _ := rgbToYUV(r, g, b)
			yPlane[y*yStride+x] = yv
		}
	}

	cw, ch, _ := dst.PlaneDimensions(1)
	for cy := 0; cy < ch; cy++ {
		for cx := 0; cx < cw; cx++ {
			samples := collectBlock(bgrxAt, cx*2, cy*2, width, height)
			ar, ag, ab := avgBlock(samples...)
			_, u, v := rgbToYUV(ar, ag, ab)
			uPlane[cy*uStride+cx] = u
			vPlane[cy*vStride+cx] = v
		}
	}
	return nil
}

// convertBGRXToNV12 is convertBGRXToI420 with U/V interleaved into a
// single chroma plane instead of split across two.
func convertBGRXToNV12(src, dst *pixel.Buffer) error {
	width, height := src.Width(), src.Height()
	srcPlane, err := src.Plane(0)
	if err != nil {
		return err
	}
	srcStride, _ := src.Stride(0)

	yPlane, _ := dst.MutablePlane(0)
	yStride, _ := dst.Stride(0)
	uvPlane, _ := dst.MutablePlane(1)
	uvStride, _ := dst.Stride(1)

	bgrxAt := func(x, y int) (r, g, b uint8) {
		off := y*srcStride + x*4
		return srcPlane[off+2], srcPlane[off+1], srcPlane[off]
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b := bgrxAt(x, y)
			yv, _, _ := rgbToYUV(r, g, b)
			yPlane[y*yStride+x] = yv
		}
	}

	cw, ch, _ := dst.PlaneDimensions(1)
	for cy := 0; cy < ch; cy++ {
		for cx := 0; cx < cw; cx++ {
			samples := collectBlock(bgrxAt, cx*2, cy*2, width, height)
			ar, ag, ab := avgBlock(samples...)
			_, u, v := rgbToYUV(ar, ag, ab)
			uvPlane[cy*uvStride+cx*2] = u
			uvPlane[cy*uvStride+cx*2+1] = v
		}
	}
	return nil
}

// collectBlock gathers the up-to-4 samples of the 2x2 source block
// starting at (x0,y0), truncated against (width,height) for odd edges.
func collectBlock(at func(x, y int) (r, g, b uint8), x0, y0, width, height int) []rgbSample {
	var samples []rgbSample
	for _, dy := range [2]int{0, 1} {
		y := y0 + dy
		if y >= height {
			continue
		}
		for _, dx := range [2]int{0, 1} {
			x := x0 + dx
			if x >= width {
				continue
			}
			r, g, b := at(x, y)
			samples = append(samples, rgbSample{r, g, b})
		}
	}
	return samples
}

// convertNV12ToPacked returns a transform from NV12 to one of the
// packed RGB-family targets spec.md §4.3 names ("no scaling").
func convertNV12ToPacked(target pixel.Format) transformFunc {
	return func(src, dst *pixel.Buffer) error {
		width, height := src.Width(), src.Height()
		yPlane, err := src.Plane(0)
		if err != nil {
			return err
		}
		yStride, _ := src.Stride(0)
		uvPlane, _ := src.Plane(1)
		uvStride, _ := src.Stride(1)

		dstPlane, _ := dst.MutablePlane(0)
		dstStride, _ := dst.Stride(0)
		bpp := target.BytesPerPixel()

		for y := 0; y < height; y++ {
			cy := y / 2
			for x := 0; x < width; x++ {
				cx := x / 2
				yv := yPlane[y*yStride+x]
				u := uvPlane[cy*uvStride+cx*2]
				v := uvPlane[cy*uvStride+cx*2+1]
				r, g, b := yuvToRGB(yv, u, v)
				off := y*dstStride + x*bpp
				switch target {
				case pixel.FormatRGB:
					dstPlane[off], dstPlane[off+1], dstPlane[off+2] = r, g, b
				case pixel.FormatBGRX:
					dstPlane[off], dstPlane[off+1], dstPlane[off+2], dstPlane[off+3] = b, g, r, 0xFF
				case pixel.FormatRGBX:
					dstPlane[off], dstPlane[off+1], dstPlane[off+2], dstPlane[off+3] = r, g, b, 0xFF
				default:
					return fmt.Errorf("csc: NV12 has no packed target %s: %w", target, pixerr.ErrUnsupported)
				}
			}
		}
		return nil
	}
}

// convertRGBAToPlanes splits interleaved RGBA into four single-channel
// planes, per spec.md §4.3's "RGBA -> planar R/G/B/A (channel split)".
func convertRGBAToPlanes(src, dst *pixel.Buffer) error {
	width, height := src.Width(), src.Height()
	srcPlane, err := src.Plane(0)
	if err != nil {
		return err
	}
	srcStride, _ := src.Stride(0)

	rPlane, _ := dst.MutablePlane(0)
	rStride, _ := dst.Stride(0)
	gPlane, _ := dst.MutablePlane(1)
	gStride, _ := dst.Stride(1)
	bPlane, _ := dst.MutablePlane(2)
	bStride, _ := dst.Stride(2)
	aPlane, _ := dst.MutablePlane(3)
	aStride, _ := dst.Stride(3)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := y*srcStride + x*4
			rPlane[y*rStride+x] = srcPlane[off]
			gPlane[y*gStride+x] = srcPlane[off+1]
			bPlane[y*bStride+x] = srcPlane[off+2]
			aPlane[y*aStride+x] = srcPlane[off+3]
		}
	}
	return nil
}
