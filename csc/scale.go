package csc

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/xpra-org/pixelcore/pixel"
)

// planeImage wraps a single-byte-per-sample plane (Y, U, V, or a
// planar R/G/B/A channel) in image.Gray so it can ride x/image/draw's
// nearest-neighbour and bilinear scalers unchanged.
func planeImage(data []byte, stride, width, height int) *image.Gray {
	return &image.Gray{Pix: data, Stride: stride, Rect: image.Rect(0, 0, width, height)}
}

// packedImage wraps a 4-byte-per-pixel packed plane in image.NRGBA so
// it can ride x/image/draw's nearest-neighbour and bilinear scalers.
// Those scalers read and write colours through premultiplied RGBA64,
// treating the fourth byte as alpha, so r210 (whose fourth byte holds
// channel bits) is not scaled through this adapter (see scale4).
func packedImage(data []byte, stride, width, height int) *image.NRGBA {
	return &image.NRGBA{Pix: data, Stride: stride, Rect: image.Rect(0, 0, width, height)}
}

// scale1 resamples a single-byte-per-sample plane from (srcW,srcH) to
// (dstW,dstH) into a freshly sliced dst region, honouring filter.
func scale1(src []byte, srcStride, srcW, srcH int, dst []byte, dstStride, dstW, dstH int, filter Filter) {
	if filter == FilterBox {
		boxScale(src, srcStride, srcW, srcH, 1, dst, dstStride, dstW, dstH)
		return
	}
	srcImg := planeImage(src, srcStride, srcW, srcH)
	dstImg := planeImage(dst, dstStride, dstW, dstH)
	scaler(filter).Scale(dstImg, dstImg.Bounds(), srcImg, srcImg.Bounds(), draw.Src, nil)
}

// scale4 resamples a 4-byte-per-pixel packed plane. format is used
// only to send r210 to a plain byte-group nearest copy, whatever the
// filter: bilinear/box interpolation would corrupt its 10-bit packed
// channels, and the draw adapter would alter its fourth byte.
func scale4(src []byte, srcStride, srcW, srcH int, dst []byte, dstStride, dstW, dstH int, filter Filter, format pixel.Format) {
	if format == pixel.FormatR210 {
		nearestScale(src, srcStride, srcW, srcH, 4, dst, dstStride, dstW, dstH)
		return
	}
	if filter == FilterBox {
		boxScale(src, srcStride, srcW, srcH, 4, dst, dstStride, dstW, dstH)
		return
	}
	srcImg := packedImage(src, srcStride, srcW, srcH)
	dstImg := packedImage(dst, dstStride, dstW, dstH)
	scaler(filter).Scale(dstImg, dstImg.Bounds(), srcImg, srcImg.Bounds(), draw.Src, nil)
}

func scaler(filter Filter) draw.Scaler {
	if filter == FilterNearest {
		return draw.NearestNeighbor
	}
	return draw.BiLinear
}

// scaleGeneric resamples a plane with an arbitrary groupBytes-per-
// sample layout (BGR565's 2-byte pixels, NV12's 2-byte interleaved UV
// plane) that has no faithful x/image/draw colour model: nearest is a
// byte-group copy, bilinear interpolates each byte independently
// (reasonable for two independent 8-bit channels like NV12's U/V, not
// bit-exact for BGR565's packed 5/6/5 fields but consistent with
// spec.md's "identity/scale" treating these formats as opaque data),
// box averages each byte independently over the source block.
func scaleGeneric(src []byte, srcStride, srcW, srcH, groupBytes int, dst []byte, dstStride, dstW, dstH int, filter Filter) {
	switch filter {
	case FilterNearest:
		nearestScale(src, srcStride, srcW, srcH, groupBytes, dst, dstStride, dstW, dstH)
	case FilterBox:
		boxScale(src, srcStride, srcW, srcH, groupBytes, dst, dstStride, dstW, dstH)
	default:
		bilinearScale(src, srcStride, srcW, srcH, groupBytes, dst, dstStride, dstW, dstH)
	}
}

func nearestScale(src []byte, srcStride, srcW, srcH, groupBytes int, dst []byte, dstStride, dstW, dstH int) {
	for dy := 0; dy < dstH; dy++ {
		sy := dy * srcH / dstH
		for dx := 0; dx < dstW; dx++ {
			sx := dx * srcW / dstW
			so := sy*srcStride + sx*groupBytes
			do := dy*dstStride + dx*groupBytes
			copy(dst[do:do+groupBytes], src[so:so+groupBytes])
		}
	}
}

func bilinearScale(src []byte, srcStride, srcW, srcH, groupBytes int, dst []byte, dstStride, dstW, dstH int) {
	for dy := 0; dy < dstH; dy++ {
		fy := (float64(dy)+0.5)*float64(srcH)/float64(dstH) - 0.5
		y0 := clampInt(int(fy), 0, srcH-1)
		y1 := clampInt(y0+1, 0, srcH-1)
		wy := fy - float64(y0)
		if wy < 0 {
			wy = 0
		}
		for dx := 0; dx < dstW; dx++ {
			fx := (float64(dx)+0.5)*float64(srcW)/float64(dstW) - 0.5
			x0 := clampInt(int(fx), 0, srcW-1)
			x1 := clampInt(x0+1, 0, srcW-1)
			wx := fx - float64(x0)
			if wx < 0 {
				wx = 0
			}
			do := dy*dstStride + dx*groupBytes
			for c := 0; c < groupBytes; c++ {
				v00 := float64(src[y0*srcStride+x0*groupBytes+c])
				v01 := float64(src[y0*srcStride+x1*groupBytes+c])
				v10 := float64(src[y1*srcStride+x0*groupBytes+c])
				v11 := float64(src[y1*srcStride+x1*groupBytes+c])
				top := v00 + (v01-v00)*wx
				bot := v10 + (v11-v10)*wx
				dst[do+c] = byte(top + (bot-top)*wy + 0.5)
			}
		}
	}
}

func boxScale(src []byte, srcStride, srcW, srcH, groupBytes int, dst []byte, dstStride, dstW, dstH int) {
	for dy := 0; dy < dstH; dy++ {
		sy0 := dy * srcH / dstH
		sy1 := (dy + 1) * srcH / dstH
		if sy1 <= sy0 {
			sy1 = sy0 + 1
		}
		for dx := 0; dx < dstW; dx++ {
			sx0 := dx * srcW / dstW
			sx1 := (dx + 1) * srcW / dstW
			if sx1 <= sx0 {
				sx1 = sx0 + 1
			}
			do := dy*dstStride + dx*groupBytes
			n := (sy1 - sy0) * (sx1 - sx0)
			for c := 0; c < groupBytes; c++ {
				sum := 0
				for sy := sy0; sy < sy1 && sy < srcH; sy++ {
					for sx := sx0; sx < sx1 && sx < srcW; sx++ {
						sum += int(src[sy*srcStride+sx*groupBytes+c])
					}
				}
				dst[do+c] = byte((sum + n/2) / n)
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
