// Package csc implements the colourspace/size conversion engine:
// converting one pixel.Buffer into another format and/or size while
// minimising allocations across frames, per spec.md §4.3.
package csc

import (
	"fmt"

	"github.com/xpra-org/pixelcore/pixel"
	"github.com/xpra-org/pixelcore/pixerr"
)

// Filter selects the resampling kernel used when the destination size
// differs from the source size.
type Filter int

const (
	// FilterNearest duplicates/drops samples; cheapest, speed > 66.
	FilterNearest Filter = iota
	// FilterBilinear interpolates linearly between four neighbours;
	// 33 < speed <= 66.
	FilterBilinear
	// FilterBox averages a block of source samples per destination
	// sample; speed <= 33, the highest-quality (and slowest) option.
	FilterBox
)

// filterForSpeed maps the [0,100] speed dial to a Filter, per spec.md
// §4.3: "speed > 66 selects nearest, > 33 bilinear, otherwise box".
func filterForSpeed(speed int) Filter {
	switch {
	case speed > 66:
		return FilterNearest
	case speed > 33:
		return FilterBilinear
	default:
		return FilterBox
	}
}

// Options configures a Converter: source and destination geometry and
// format, plus the speed dial that picks a scaling filter when sizes
// differ.
type Options struct {
	SrcWidth, SrcHeight int
	SrcFormat           pixel.Format
	DstWidth, DstHeight int
	DstFormat           pixel.Format
	// Speed is in [0, 100]; see filterForSpeed.
	Speed int
}

const minWidth = 8
const minHeight = 2

// Validate reports whether o describes a conversion this package can
// perform: both ends at least 8x2, the (SrcFormat, DstFormat) pair
// supported, and scaling (if requested) permitted for that pair.
func (o Options) Validate() error {
	if o.SrcWidth < minWidth || o.SrcHeight < minHeight || o.DstWidth < minWidth || o.DstHeight < minHeight {
		return fmt.Errorf("csc: dimensions below the %dx%d minimum: %w", minWidth, minHeight, pixerr.ErrInvalidArgument)
	}
	if o.Speed < 0 || o.Speed > 100 {
		return fmt.Errorf("csc: speed %d outside [0,100]: %w", o.Speed, pixerr.ErrInvalidArgument)
	}
	conv, ok := conversions[pairKey{o.SrcFormat, o.DstFormat}]
	if !ok {
		return fmt.Errorf("csc: unsupported conversion %s -> %s: %w", o.SrcFormat, o.DstFormat, pixerr.ErrUnsupported)
	}
	scaling := o.SrcWidth != o.DstWidth || o.SrcHeight != o.DstHeight
	if scaling && !conv.scalable {
		return fmt.Errorf("csc: %s -> %s does not support scaling: %w", o.SrcFormat, o.DstFormat, pixerr.ErrUnsupported)
	}
	return nil
}

func (o Options) scaling() bool {
	return o.SrcWidth != o.DstWidth || o.SrcHeight != o.DstHeight
}
