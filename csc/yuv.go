package csc

import "math"

// BT.601 full-range (JPEG) RGB<->YUV coefficients, spec.md §4.3. Unlike
// the studio-range 16-235 fixed-point shortcuts common in video
// pipelines, full range maps black/white to 0/255 directly and needs
// no headroom clamping beyond [0,255] itself.

// rgbToYUV converts one full-range 8-bit RGB triple to Y/U/V, rounding
// to the nearest integer and saturating to [0, 255].
func rgbToYUV(r, g, b uint8) (y, u, v uint8) {
	rf, gf, bf := float64(r), float64(g), float64(b)
	yf := 0.299*rf + 0.587*gf + 0.114*bf
	uf := -0.168736*rf - 0.331264*gf + 0.5*bf + 128
	vf := 0.5*rf - 0.418688*gf - 0.081312*bf + 128
	return clampRound(yf), clampRound(uf), clampRound(vf)
}

// yuvToRGB is the inverse of rgbToYUV.
func yuvToRGB(y, u, v uint8) (r, g, b uint8) {
	yf, uf, vf := float64(y), float64(u)-128, float64(v)-128
	rf := yf + 1.402*vf
	gf := yf - 0.344136*uf - 0.714136*vf
	bf := yf + 1.772*uf
	return clampRound(rf), clampRound(gf), clampRound(bf)
}

func clampRound(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// rgbSample is one source pixel's RGB triple, used by avgBlock to
// average a 2x2 source block before chroma subsampling.
type rgbSample struct{ r, g, b uint8 }

// avgBlock averages 1, 2, or 4 samples (a full 2x2 block, or a half
// block truncated by an odd width/height edge) before the RGB->YUV
// matrix is applied, per spec.md §4.3.
func avgBlock(samples ...rgbSample) (r, g, b uint8) {
	var rs, gs, bs int
	for _, s := range samples {
		rs += int(s.r)
		gs += int(s.g)
		bs += int(s.b)
	}
	n := len(samples)
	return uint8((rs + n/2) / n), uint8((gs + n/2) / n), uint8((bs + n/2) / n)
}
