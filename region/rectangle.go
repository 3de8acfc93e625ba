// Package region implements rectangle set algebra: maintaining a list
// of non-overlapping Rectangles under add/remove/merge, the structure
// the damage tracker uses to produce a minimal dirty-rectangle list.
package region

import (
	"fmt"

	"github.com/xpra-org/pixelcore/pixerr"
)

// Rectangle is an axis-aligned integer rectangle.
type Rectangle struct {
	X, Y, Width, Height int
}

// New constructs a Rectangle, rejecting negative width or height per
// spec.md §4.5.
func New(x, y, width, height int) (Rectangle, error) {
	if width < 0 || height < 0 {
		return Rectangle{}, fmt.Errorf("region: negative dimension %dx%d: %w", width, height, pixerr.ErrInvalidArgument)
	}
	return Rectangle{X: x, Y: y, Width: width, Height: height}, nil
}

// Right returns the exclusive right edge (X + Width).
func (r Rectangle) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge (Y + Height).
func (r Rectangle) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle covers zero area.
func (r Rectangle) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Area returns width*height.
func (r Rectangle) Area() int { return r.Width * r.Height }

// Intersects reports whether r and o share any area.
func (r Rectangle) Intersects(o Rectangle) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether r fully contains o.
func (r Rectangle) Contains(o Rectangle) bool {
	if o.Empty() {
		return true
	}
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Intersection returns the overlapping rectangle of r and o, and
// whether one exists.
func (r Rectangle) Intersection(o Rectangle) (Rectangle, bool) {
	if !r.Intersects(o) {
		return Rectangle{}, false
	}
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	return Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

// Union returns the axis-aligned bounding rectangle of r and o.
func (r Rectangle) Union(o Rectangle) Rectangle {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.Right(), o.Right()), max(r.Bottom(), o.Bottom())
	return Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Subtract returns the list of rectangles covering rect \ cut. The
// cut order is width-first per spec.md §4.5: the full-width top strip
// first, then the full-remaining-height left and right strips, then
// the full-width bottom strip. This avoids redundant corner overlap
// and prefers wider rectangles, which compress better downstream.
func Subtract(rect, cut Rectangle) []Rectangle {
	inter, ok := rect.Intersection(cut)
	if !ok {
		if rect.Empty() {
			return nil
		}
		return []Rectangle{rect}
	}
	if inter == rect {
		return nil
	}

	var out []Rectangle

	// Full-width top strip.
	if inter.Y > rect.Y {
		out = append(out, Rectangle{X: rect.X, Y: rect.Y, Width: rect.Width, Height: inter.Y - rect.Y})
	}
	// Full-remaining-height left strip.
	midTop, midBottom := inter.Y, inter.Bottom()
	midHeight := midBottom - midTop
	if inter.X > rect.X {
		out = append(out, Rectangle{X: rect.X, Y: midTop, Width: inter.X - rect.X, Height: midHeight})
	}
	// Full-remaining-height right strip.
	if inter.Right() < rect.Right() {
		out = append(out, Rectangle{X: inter.Right(), Y: midTop, Width: rect.Right() - inter.Right(), Height: midHeight})
	}
	// Full-width bottom strip.
	if inter.Bottom() < rect.Bottom() {
		out = append(out, Rectangle{X: rect.X, Y: inter.Bottom(), Width: rect.Width, Height: rect.Bottom() - inter.Bottom()})
	}

	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
