package csc

import (
	"errors"
	"testing"

	"github.com/xpra-org/pixelcore/align"
	"github.com/xpra-org/pixelcore/pixel"
	"github.com/xpra-org/pixelcore/pixerr"
)

func solidBGRX(t *testing.T, width, height, stride int, r, g, b, x byte) *pixel.Buffer {
	t.Helper()
	buf, err := align.Allocate(stride * height)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	data := buf.Mutable()
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			off := row*stride + col*4
			data[off], data[off+1], data[off+2], data[off+3] = b, g, r, x
		}
	}
	pb, err := pixel.Packed(width, height, stride, pixel.FormatBGRX, buf)
	if err != nil {
		t.Fatalf("pixel.Packed: %v", err)
	}
	return pb
}

func TestSolidRedBGRXToI420(t *testing.T) {
	const size = 16
	src := solidBGRX(t, size, size, 64, 255, 0, 0, 0)
	defer src.Release()

	conv, err := NewConverter(Options{
		SrcWidth: size, SrcHeight: size, SrcFormat: pixel.FormatBGRX,
		DstWidth: size, DstHeight: size, DstFormat: pixel.FormatI420,
		Speed: 100,
	})
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	defer conv.Close()

	dst, err := conv.Convert(src)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	defer dst.Release()

	yPlane, _ := dst.Plane(0)
	yStride, _ := dst.Stride(0)
	assertPlaneNear(t, "Y", yPlane, yStride, size, size, 76)

	uPlane, _ := dst.Plane(1)
	uStride, _ := dst.Stride(1)
	cw, ch, _ := dst.PlaneDimensions(1)
	assertPlaneNear(t, "U", uPlane, uStride, cw, ch, 85)

	vPlane, _ := dst.Plane(2)
	vStride, _ := dst.Stride(2)
	assertPlaneNear(t, "V", vPlane, vStride, cw, ch, 255)
}

func assertPlaneNear(t *testing.T, name string, plane []byte, stride, width, height int, want int) {
	t.Helper()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			got := int(plane[y*stride+x])
			if diff := got - want; diff < -1 || diff > 1 {
				t.Fatalf("%s plane (%d,%d) = %d, want %d +-1", name, x, y, got, want)
			}
		}
	}
}

func TestMinimumSizeBoundary(t *testing.T) {
	_, err := NewConverter(Options{
		SrcWidth: 8, SrcHeight: 2, SrcFormat: pixel.FormatBGRX,
		DstWidth: 8, DstHeight: 2, DstFormat: pixel.FormatI420,
		Speed: 50,
	})
	if err != nil {
		t.Fatalf("8x2 should be accepted: %v", err)
	}
}

func TestBelowMinimumSizeRejected(t *testing.T) {
	_, err := NewConverter(Options{
		SrcWidth: 7, SrcHeight: 2, SrcFormat: pixel.FormatBGRX,
		DstWidth: 7, DstHeight: 2, DstFormat: pixel.FormatI420,
		Speed: 50,
	})
	if !errors.Is(err, pixerr.ErrInvalidArgument) {
		t.Fatalf("7x2 error = %v, want ErrInvalidArgument", err)
	}
}

func TestUnsupportedPairRejected(t *testing.T) {
	_, err := NewConverter(Options{
		SrcWidth: 16, SrcHeight: 16, SrcFormat: pixel.FormatGBRP,
		DstWidth: 16, DstHeight: 16, DstFormat: pixel.FormatI444,
		Speed: 50,
	})
	if !errors.Is(err, pixerr.ErrUnsupported) {
		t.Fatalf("unsupported pair error = %v, want ErrUnsupported", err)
	}
}

func TestNV12ScalingRejected(t *testing.T) {
	_, err := NewConverter(Options{
		SrcWidth: 16, SrcHeight: 16, SrcFormat: pixel.FormatNV12,
		DstWidth: 32, DstHeight: 32, DstFormat: pixel.FormatBGRX,
		Speed: 50,
	})
	if !errors.Is(err, pixerr.ErrUnsupported) {
		t.Fatalf("NV12->BGRX with scaling error = %v, want ErrUnsupported", err)
	}
}

func TestBGRXToNV12RoundTripThroughRGB(t *testing.T) {
	const size = 16
	src := solidBGRX(t, size, size, 64, 10, 200, 40, 0)
	defer src.Release()

	toNV12, err := NewConverter(Options{
		SrcWidth: size, SrcHeight: size, SrcFormat: pixel.FormatBGRX,
		DstWidth: size, DstHeight: size, DstFormat: pixel.FormatNV12,
		Speed: 100,
	})
	if err != nil {
		t.Fatalf("NewConverter BGRX->NV12: %v", err)
	}
	defer toNV12.Close()
	nv12, err := toNV12.Convert(src)
	if err != nil {
		t.Fatalf("Convert BGRX->NV12: %v", err)
	}
	defer nv12.Release()

	toRGB, err := NewConverter(Options{
		SrcWidth: size, SrcHeight: size, SrcFormat: pixel.FormatNV12,
		DstWidth: size, DstHeight: size, DstFormat: pixel.FormatRGB,
		Speed: 100,
	})
	if err != nil {
		t.Fatalf("NewConverter NV12->RGB: %v", err)
	}
	defer toRGB.Close()
	rgb, err := toRGB.Convert(nv12)
	if err != nil {
		t.Fatalf("Convert NV12->RGB: %v", err)
	}
	defer rgb.Release()

	plane, _ := rgb.Plane(0)
	stride, _ := rgb.Stride(0)
	off := 8*stride + 8*3
	r, g, b := plane[off], plane[off+1], plane[off+2]
	if absDiff(int(r), 10) > 4 || absDiff(int(g), 200) > 4 || absDiff(int(b), 40) > 4 {
		t.Fatalf("round trip RGB = (%d,%d,%d), want roughly (10,200,40)", r, g, b)
	}
}

func absDiff(a, b int) int {
	if a < b {
		return b - a
	}
	return a - b
}

func TestUpscaleIdentityBGRX(t *testing.T) {
	const srcSize, dstSize = 8, 16
	src := solidBGRX(t, srcSize, srcSize, 64, 30, 60, 90, 255)
	defer src.Release()

	conv, err := NewConverter(Options{
		SrcWidth: srcSize, SrcHeight: srcSize, SrcFormat: pixel.FormatBGRX,
		DstWidth: dstSize, DstHeight: dstSize, DstFormat: pixel.FormatBGRX,
		Speed: 80, // nearest
	})
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	defer conv.Close()

	dst, err := conv.Convert(src)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	defer dst.Release()

	if dst.Width() != dstSize || dst.Height() != dstSize {
		t.Fatalf("dst dims = %dx%d, want %dx%d", dst.Width(), dst.Height(), dstSize, dstSize)
	}
	plane, _ := dst.Plane(0)
	stride, _ := dst.Stride(0)
	off := 4*stride + 4*4
	// solidBGRX stores each pixel as B, G, R, X: (r=30, g=60, b=90, x=255)
	// is the byte sequence 90, 60, 30, 255.
	if plane[off] != 90 || plane[off+1] != 60 || plane[off+2] != 30 || plane[off+3] != 255 {
		t.Fatalf("upscaled solid colour corrupted at (4,4): %v", plane[off:off+4])
	}
}

func TestRGBAChannelSplit(t *testing.T) {
	const size = 8
	buf, err := align.Allocate(size * size * 4)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	data := buf.Mutable()
	for i := 0; i < size*size; i++ {
		data[i*4], data[i*4+1], data[i*4+2], data[i*4+3] = 11, 22, 33, 44
	}
	src, err := pixel.Packed(size, size, size*4, pixel.FormatRGBA, buf)
	if err != nil {
		t.Fatalf("pixel.Packed: %v", err)
	}
	defer src.Release()

	conv, err := NewConverter(Options{
		SrcWidth: size, SrcHeight: size, SrcFormat: pixel.FormatRGBA,
		DstWidth: size, DstHeight: size, DstFormat: pixel.FormatRGBAPlanes,
		Speed: 100,
	})
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	defer conv.Close()

	dst, err := conv.Convert(src)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	defer dst.Release()

	want := [4]byte{11, 22, 33, 44}
	for p := 0; p < 4; p++ {
		plane, _ := dst.Plane(p)
		if plane[0] != want[p] {
			t.Fatalf("plane %d byte 0 = %d, want %d", p, plane[0], want[p])
		}
	}
}
