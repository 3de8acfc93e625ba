// Package pixwire bencodes a pixel.Buffer's self-description for the
// transport boundary spec.md §6 describes: a dictionary of `w`, `h`,
// `fmt`, `planes`, `strides`, and `data`, with stride-vs-format rules
// from spec.md §3 re-validated on decode since the bytes may have
// crossed an untrusted boundary.
package pixwire

import (
	"fmt"

	"github.com/xpra-org/pixelcore/align"
	"github.com/xpra-org/pixelcore/bencode"
	"github.com/xpra-org/pixelcore/pixel"
	"github.com/xpra-org/pixelcore/pixerr"
)

var formatNames = map[pixel.Format]string{
	pixel.FormatRGB:        "RGB",
	pixel.FormatBGR:        "BGR",
	pixel.FormatRGBX:       "RGBX",
	pixel.FormatBGRX:       "BGRX",
	pixel.FormatXRGB:       "XRGB",
	pixel.FormatXBGR:       "XBGR",
	pixel.FormatRGBA:       "RGBA",
	pixel.FormatBGRA:       "BGRA",
	pixel.FormatABGR:       "ABGR",
	pixel.FormatARGB:       "ARGB",
	pixel.FormatR210:       "r210",
	pixel.FormatBGR565:     "BGR565",
	pixel.FormatI420:       "I420",
	pixel.FormatI422:       "I422",
	pixel.FormatI444:       "I444",
	pixel.FormatNV12:       "NV12",
	pixel.FormatGBRP:       "GBRP",
	pixel.FormatGBRP9:      "GBRP9LE",
	pixel.FormatRGBAPlanes: "RGBA-planar",
}

var namesToFormat = func() map[string]pixel.Format {
	m := make(map[string]pixel.Format, len(formatNames))
	for f, name := range formatNames {
		m[name] = f
	}
	return m
}()

// Encode serialises a pixel.Buffer into the bencoded self-description
// dictionary spec.md §6 specifies.
func Encode(pb *pixel.Buffer) (bencode.Value, error) {
	name, ok := formatNames[pb.Format()]
	if !ok {
		return bencode.Value{}, fmt.Errorf("pixwire: format %v has no wire name: %w", pb.Format(), pixerr.ErrInvalidArgument)
	}

	n := pb.PlaneCount()
	strides := make([]bencode.Value, n)
	var data bencode.Value
	if n == 1 {
		stride, _ := pb.Stride(0)
		strides[0] = bencode.Int(int64(stride))
		plane, err := pb.Plane(0)
		if err != nil {
			return bencode.Value{}, err
		}
		data = bencode.Bytes(plane)
	} else {
		planes := make([]bencode.Value, n)
		for p := 0; p < n; p++ {
			stride, _ := pb.Stride(p)
			strides[p] = bencode.Int(int64(stride))
			plane, err := pb.Plane(p)
			if err != nil {
				return bencode.Value{}, err
			}
			planes[p] = bencode.Bytes(plane)
		}
		data = bencode.List(planes...)
	}

	return bencode.Dict(map[string]bencode.Value{
		"w":       bencode.Int(int64(pb.Width())),
		"h":       bencode.Int(int64(pb.Height())),
		"fmt":     bencode.String(name),
		"planes":  bencode.Int(int64(n)),
		"strides": bencode.List(strides...),
		"data":    data,
	}), nil
}

// Decode reconstructs a pixel.Buffer from a bencoded self-description,
// re-validating stride-vs-format rules (spec.md §3) since the bytes
// may have arrived over an untrusted transport. The returned Buffer
// owns freshly allocated, 64-byte-aligned storage; it does not alias
// the bencode.Value's own byte slices.
func Decode(v bencode.Value) (*pixel.Buffer, error) {
	dict, ok := v.DictValue()
	if !ok {
		return nil, fmt.Errorf("pixwire: top-level value is not a dictionary: %w", pixerr.ErrInvalidArgument)
	}

	width, err := requireInt(dict, "w")
	if err != nil {
		return nil, err
	}
	height, err := requireInt(dict, "h")
	if err != nil {
		return nil, err
	}
	fmtName, ok := dict["fmt"].StringValue()
	if !ok {
		return nil, fmt.Errorf("pixwire: missing or non-string 'fmt': %w", pixerr.ErrInvalidArgument)
	}
	format, ok := namesToFormat[fmtName]
	if !ok {
		return nil, fmt.Errorf("pixwire: unknown format name %q: %w", fmtName, pixerr.ErrInvalidArgument)
	}
	planeCount, err := requireInt(dict, "planes")
	if err != nil {
		return nil, err
	}
	if int(planeCount) != format.PlaneCount() {
		return nil, fmt.Errorf("pixwire: %s expects %d planes, wire says %d: %w", format, format.PlaneCount(), planeCount, pixerr.ErrInvalidArgument)
	}

	strideVals, ok := dict["strides"].ListValue()
	if !ok || len(strideVals) != int(planeCount) {
		return nil, fmt.Errorf("pixwire: 'strides' must be a %d-element list: %w", planeCount, pixerr.ErrInvalidArgument)
	}
	strides := make([]int, planeCount)
	for p, sv := range strideVals {
		s, ok := sv.Int64()
		if !ok {
			return nil, fmt.Errorf("pixwire: stride %d is not an integer: %w", p, pixerr.ErrInvalidArgument)
		}
		minStride, _ := format.MinPlaneStride(p, int(width))
		if int(s) < minStride {
			return nil, fmt.Errorf("pixwire: plane %d stride %d smaller than row bytes %d: %w", p, s, minStride, pixerr.ErrInvalidArgument)
		}
		strides[p] = int(s)
	}

	var planeBytes [][]byte
	if planeCount == 1 {
		b, ok := dict["data"].BytesValue()
		if !ok {
			return nil, fmt.Errorf("pixwire: 'data' must be a byte-string for a packed format: %w", pixerr.ErrInvalidArgument)
		}
		planeBytes = [][]byte{b}
	} else {
		items, ok := dict["data"].ListValue()
		if !ok || len(items) != int(planeCount) {
			return nil, fmt.Errorf("pixwire: 'data' must be a %d-element list for a planar format: %w", planeCount, pixerr.ErrInvalidArgument)
		}
		planeBytes = make([][]byte, planeCount)
		for p, item := range items {
			b, ok := item.BytesValue()
			if !ok {
				return nil, fmt.Errorf("pixwire: plane %d is not a byte-string: %w", p, pixerr.ErrInvalidArgument)
			}
			planeBytes[p] = b
		}
	}

	if format.IsPacked() {
		buf, err := align.Allocate(len(planeBytes[0]))
		if err != nil {
			return nil, err
		}
		copy(buf.Mutable(), planeBytes[0])
		return pixel.Packed(int(width), int(height), strides[0], format, buf)
	}

	buffers := make([]*align.Buffer, planeCount)
	for p, b := range planeBytes {
		buf, err := align.Allocate(len(b))
		if err != nil {
			for _, done := range buffers[:p] {
				if done != nil {
					done.Release()
				}
			}
			return nil, err
		}
		copy(buf.Mutable(), b)
		buffers[p] = buf
	}
	return pixel.Planar(int(width), int(height), strides, format, buffers)
}

func requireInt(dict map[string]bencode.Value, key string) (int64, error) {
	v, present := dict[key]
	if !present {
		return 0, fmt.Errorf("pixwire: missing key %q: %w", key, pixerr.ErrInvalidArgument)
	}
	n, ok := v.Int64()
	if !ok {
		return 0, fmt.Errorf("pixwire: key %q is not an integer: %w", key, pixerr.ErrInvalidArgument)
	}
	return n, nil
}
