// Package pixel describes rectangular pixel buffers: the PixelFormat
// enumeration and the Buffer type that pairs format/geometry metadata
// with one or more align.Buffer-backed planes.
package pixel

// Format identifies one of the packed or planar pixel layouts spec.md
// §4.2 enumerates.
type Format int

const (
	FormatUnknown Format = iota

	// Packed RGB/BGR family. One plane.
	FormatRGB
	FormatBGR
	FormatRGBX
	FormatBGRX
	FormatXRGB
	FormatXBGR
	FormatRGBA
	FormatBGRA
	FormatABGR
	FormatARGB
	FormatR210
	FormatBGR565

	// Planar YUV family.
	FormatI420  // YUV420P: 3 planes, chroma subsampled 2x2.
	FormatI422  // 3 planes, chroma subsampled 2x1.
	FormatI444  // 3 planes, no subsampling.
	FormatNV12  // 2 planes: Y, interleaved UV subsampled 2x2.
	FormatGBRP  // 3 planes, full resolution, 8 bits/sample.
	FormatGBRP9 // 3 planes, full resolution, 9 bits/sample, little-endian.

	FormatRGBAPlanes // 4 planes, full resolution: R, G, B, A split out of RGBA.
)

func (f Format) String() string {
	switch f {
	case FormatRGB:
		return "RGB"
	case FormatBGR:
		return "BGR"
	case FormatRGBX:
		return "RGBX"
	case FormatBGRX:
		return "BGRX"
	case FormatXRGB:
		return "XRGB"
	case FormatXBGR:
		return "XBGR"
	case FormatRGBA:
		return "RGBA"
	case FormatBGRA:
		return "BGRA"
	case FormatABGR:
		return "ABGR"
	case FormatARGB:
		return "ARGB"
	case FormatR210:
		return "r210"
	case FormatBGR565:
		return "BGR565"
	case FormatI420:
		return "I420"
	case FormatI422:
		return "I422"
	case FormatI444:
		return "I444"
	case FormatNV12:
		return "NV12"
	case FormatGBRP:
		return "GBRP"
	case FormatGBRP9:
		return "GBRP9LE"
	case FormatRGBAPlanes:
		return "RGBA-planar"
	default:
		return "unknown"
	}
}

// PlaneLayout describes how many planes a format has and how they
// relate to the image's pixel dimensions.
type PlaneLayout int

const (
	LayoutPacked PlaneLayout = iota
	Layout2Plane
	Layout3Plane
	Layout4Plane
)

// planeDesc describes one plane of a format: its bytes per sample
// group and its horizontal/vertical subsampling divisor relative to
// the image's width/height.
type planeDesc struct {
	bytesPerGroup int // bytes consumed per group of pixelsPerGroup samples
	pixelsPerGroup int // samples described by one bytesPerGroup chunk (1 for everything here)
	xdiv          int
	ydiv          int
}

type formatInfo struct {
	layout PlaneLayout
	planes []planeDesc
	// packedBPP is the bytes-per-pixel for packed formats (single
	// plane); zero for planar formats.
	packedBPP int
}

var formatTable = map[Format]formatInfo{
	FormatRGB:    {layout: LayoutPacked, packedBPP: 3, planes: []planeDesc{{3, 1, 1, 1}}},
	FormatBGR:    {layout: LayoutPacked, packedBPP: 3, planes: []planeDesc{{3, 1, 1, 1}}},
	FormatRGBX:   {layout: LayoutPacked, packedBPP: 4, planes: []planeDesc{{4, 1, 1, 1}}},
	FormatBGRX:   {layout: LayoutPacked, packedBPP: 4, planes: []planeDesc{{4, 1, 1, 1}}},
	FormatXRGB:   {layout: LayoutPacked, packedBPP: 4, planes: []planeDesc{{4, 1, 1, 1}}},
	FormatXBGR:   {layout: LayoutPacked, packedBPP: 4, planes: []planeDesc{{4, 1, 1, 1}}},
	FormatRGBA:   {layout: LayoutPacked, packedBPP: 4, planes: []planeDesc{{4, 1, 1, 1}}},
	FormatBGRA:   {layout: LayoutPacked, packedBPP: 4, planes: []planeDesc{{4, 1, 1, 1}}},
	FormatABGR:   {layout: LayoutPacked, packedBPP: 4, planes: []planeDesc{{4, 1, 1, 1}}},
	FormatARGB:   {layout: LayoutPacked, packedBPP: 4, planes: []planeDesc{{4, 1, 1, 1}}},
	FormatR210:   {layout: LayoutPacked, packedBPP: 4, planes: []planeDesc{{4, 1, 1, 1}}},
	FormatBGR565: {layout: LayoutPacked, packedBPP: 2, planes: []planeDesc{{2, 1, 1, 1}}},

	FormatI420: {layout: Layout3Plane, planes: []planeDesc{{1, 1, 1, 1}, {1, 1, 2, 2}, {1, 1, 2, 2}}},
	FormatI422: {layout: Layout3Plane, planes: []planeDesc{{1, 1, 1, 1}, {1, 1, 2, 1}, {1, 1, 2, 1}}},
	FormatI444: {layout: Layout3Plane, planes: []planeDesc{{1, 1, 1, 1}, {1, 1, 1, 1}, {1, 1, 1, 1}}},
	FormatNV12: {layout: Layout2Plane, planes: []planeDesc{{1, 1, 1, 1}, {2, 1, 2, 2}}},
	FormatGBRP: {layout: Layout3Plane, planes: []planeDesc{{1, 1, 1, 1}, {1, 1, 1, 1}, {1, 1, 1, 1}}},
	// GBRP9LE: 9-bit samples stored in 16-bit little-endian words.
	FormatGBRP9: {layout: Layout3Plane, planes: []planeDesc{{2, 1, 1, 1}, {2, 1, 1, 1}, {2, 1, 1, 1}}},

	FormatRGBAPlanes: {layout: Layout4Plane, planes: []planeDesc{{1, 1, 1, 1}, {1, 1, 1, 1}, {1, 1, 1, 1}, {1, 1, 1, 1}}},
}

// IsPacked reports whether f has a single interleaved plane.
func (f Format) IsPacked() bool {
	info, ok := formatTable[f]
	return ok && info.layout == LayoutPacked
}

// PlaneCount returns the number of planes the format is composed of.
func (f Format) PlaneCount() int {
	info, ok := formatTable[f]
	if !ok {
		return 0
	}
	return len(info.planes)
}

// Layout returns the plane arrangement tag for the format.
func (f Format) Layout() PlaneLayout {
	return formatTable[f].layout
}

// BytesPerPixel returns the packed bytes-per-pixel for packed formats.
// It returns 0 for planar formats, where bytes-per-sample varies per
// plane (use PlaneBytesPerGroup instead).
func (f Format) BytesPerPixel() int {
	return formatTable[f].packedBPP
}

// SubsampleDivisors returns the (xdiv, ydiv) subsampling divisor for
// plane p: the plane's dimensions are ceil(width/xdiv) x
// ceil(height/ydiv).
func (f Format) SubsampleDivisors(p int) (xdiv, ydiv int, ok bool) {
	info, exists := formatTable[f]
	if !exists || p < 0 || p >= len(info.planes) {
		return 0, 0, false
	}
	return info.planes[p].xdiv, info.planes[p].ydiv, true
}

// PlaneBytesPerGroup returns the number of bytes plane p consumes per
// pixelsPerGroup horizontal samples (pixelsPerGroup is always 1 for
// the formats in this table, so this is effectively bytes per sample).
func (f Format) PlaneBytesPerGroup(p int) (bytesPerGroup, pixelsPerGroup int, ok bool) {
	info, exists := formatTable[f]
	if !exists || p < 0 || p >= len(info.planes) {
		return 0, 0, false
	}
	pd := info.planes[p]
	return pd.bytesPerGroup, pd.pixelsPerGroup, true
}

// PlaneDimensions returns plane p's width and height for an image of
// the given overall width/height.
func (f Format) PlaneDimensions(p, width, height int) (planeWidth, planeHeight int, ok bool) {
	xdiv, ydiv, exists := f.SubsampleDivisors(p)
	if !exists {
		return 0, 0, false
	}
	planeWidth = ceilDiv(width, xdiv)
	planeHeight = ceilDiv(height, ydiv)
	return planeWidth, planeHeight, true
}

// MinPlaneStride returns the minimum valid stride (bytes per row) for
// plane p given the overall image width.
func (f Format) MinPlaneStride(p, width int) (stride int, ok bool) {
	planeWidth, _, exists := f.PlaneDimensions(p, width, 1)
	if !exists {
		return 0, false
	}
	bpg, ppg, _ := f.PlaneBytesPerGroup(p)
	return ceilDiv(planeWidth, ppg) * bpg, true
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
