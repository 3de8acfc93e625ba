package pixwire

import (
	"errors"
	"testing"

	"github.com/xpra-org/pixelcore/align"
	"github.com/xpra-org/pixelcore/bencode"
	"github.com/xpra-org/pixelcore/pixel"
	"github.com/xpra-org/pixelcore/pixerr"
)

func packedBGRX(t *testing.T, width, height, stride int) *pixel.Buffer {
	t.Helper()
	buf, err := align.Allocate(stride * height)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	data := buf.Mutable()
	for i := range data {
		data[i] = byte(i)
	}
	pb, err := pixel.Packed(width, height, stride, pixel.FormatBGRX, buf)
	if err != nil {
		t.Fatalf("pixel.Packed: %v", err)
	}
	return pb
}

func planarI420(t *testing.T, width, height int) *pixel.Buffer {
	t.Helper()
	strides := make([]int, 3)
	buffers := make([]*align.Buffer, 3)
	for p := 0; p < 3; p++ {
		pw, ph, _ := pixel.FormatI420.PlaneDimensions(p, width, height)
		strides[p] = pw
		buf, err := align.Allocate(pw * ph)
		if err != nil {
			t.Fatalf("allocate plane %d: %v", p, err)
		}
		data := buf.Mutable()
		for i := range data {
			data[i] = byte(p*50 + i)
		}
		buffers[p] = buf
	}
	pb, err := pixel.Planar(width, height, strides, pixel.FormatI420, buffers)
	if err != nil {
		t.Fatalf("pixel.Planar: %v", err)
	}
	return pb
}

func TestRoundTripPackedBGRX(t *testing.T) {
	const w, h, stride = 16, 8, 16 * 4
	src := packedBGRX(t, w, h, stride)
	defer src.Release()

	v, err := Encode(src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dst, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	defer dst.Release()

	if dst.Width() != w || dst.Height() != h || dst.Format() != pixel.FormatBGRX {
		t.Fatalf("dims/format = %dx%d %v, want %dx%d %v", dst.Width(), dst.Height(), dst.Format(), w, h, pixel.FormatBGRX)
	}
	wantPlane, _ := src.Plane(0)
	gotPlane, _ := dst.Plane(0)
	if string(gotPlane) != string(wantPlane) {
		t.Fatalf("plane bytes differ after round trip")
	}
}

func TestRoundTripPlanarI420(t *testing.T) {
	const w, h = 32, 16
	src := planarI420(t, w, h)
	defer src.Release()

	v, err := Encode(src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dst, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	defer dst.Release()

	if dst.PlaneCount() != 3 {
		t.Fatalf("PlaneCount = %d, want 3", dst.PlaneCount())
	}
	for p := 0; p < 3; p++ {
		want, _ := src.Plane(p)
		got, _ := dst.Plane(p)
		if string(got) != string(want) {
			t.Fatalf("plane %d bytes differ after round trip", p)
		}
	}
}

func TestEncodeThenBencodeRoundTrip(t *testing.T) {
	src := packedBGRX(t, 8, 2, 8*4)
	defer src.Release()

	v, err := Encode(src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	wire := bencode.Encode(v)
	back, _, err := bencode.DecodeLimited(wire, bencode.DecodeLimits{MaxDecompressedSize: 1 << 20})
	if err != nil {
		t.Fatalf("bencode.Decode: %v", err)
	}

	dst, err := Decode(back)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	defer dst.Release()

	if dst.Width() != 8 || dst.Height() != 2 {
		t.Fatalf("dims = %dx%d, want 8x2", dst.Width(), dst.Height())
	}
}

func TestDecodeRejectsMissingKey(t *testing.T) {
	v := bencode.Dict(map[string]bencode.Value{
		"h":       bencode.Int(2),
		"fmt":     bencode.String("BGRX"),
		"planes":  bencode.Int(1),
		"strides": bencode.List(bencode.Int(32)),
		"data":    bencode.Bytes(make([]byte, 64)),
	})
	_, err := Decode(v)
	if !errors.Is(err, pixerr.ErrInvalidArgument) {
		t.Fatalf("missing 'w' error = %v, want ErrInvalidArgument", err)
	}
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	v := bencode.Dict(map[string]bencode.Value{
		"w":       bencode.Int(8),
		"h":       bencode.Int(2),
		"fmt":     bencode.String("NOT-A-FORMAT"),
		"planes":  bencode.Int(1),
		"strides": bencode.List(bencode.Int(32)),
		"data":    bencode.Bytes(make([]byte, 64)),
	})
	_, err := Decode(v)
	if !errors.Is(err, pixerr.ErrInvalidArgument) {
		t.Fatalf("unknown format error = %v, want ErrInvalidArgument", err)
	}
}

func TestDecodeRejectsStrideBelowMinimum(t *testing.T) {
	v := bencode.Dict(map[string]bencode.Value{
		"w":       bencode.Int(16),
		"h":       bencode.Int(2),
		"fmt":     bencode.String("BGRX"),
		"planes":  bencode.Int(1),
		"strides": bencode.List(bencode.Int(16)), // 16 < 16*4
		"data":    bencode.Bytes(make([]byte, 32)),
	})
	_, err := Decode(v)
	if !errors.Is(err, pixerr.ErrInvalidArgument) {
		t.Fatalf("short stride error = %v, want ErrInvalidArgument", err)
	}
}

func TestDecodeRejectsWrongPlaneCountForFormat(t *testing.T) {
	v := bencode.Dict(map[string]bencode.Value{
		"w":       bencode.Int(16),
		"h":       bencode.Int(2),
		"fmt":     bencode.String("I420"),
		"planes":  bencode.Int(1),
		"strides": bencode.List(bencode.Int(16)),
		"data":    bencode.Bytes(make([]byte, 32)),
	})
	_, err := Decode(v)
	if !errors.Is(err, pixerr.ErrInvalidArgument) {
		t.Fatalf("wrong plane count error = %v, want ErrInvalidArgument", err)
	}
}

func TestDecodeRejectsDataShapeMismatchedToPlaneCount(t *testing.T) {
	v := bencode.Dict(map[string]bencode.Value{
		"w":       bencode.Int(16),
		"h":       bencode.Int(2),
		"fmt":     bencode.String("BGRX"),
		"planes":  bencode.Int(1),
		"strides": bencode.List(bencode.Int(64)),
		"data":    bencode.List(bencode.Bytes(make([]byte, 64))), // list instead of bytes
	})
	_, err := Decode(v)
	if !errors.Is(err, pixerr.ErrInvalidArgument) {
		t.Fatalf("data shape mismatch error = %v, want ErrInvalidArgument", err)
	}
}
