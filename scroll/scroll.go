// Package scroll implements the scroll-change detector: per-row
// content hashing and distance voting that discovers vertical scroll
// offsets between two successive frames of an observed window region,
// per spec.md §4.4.
package scroll

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/xpra-org/pixelcore/pixerr"
	"github.com/xpra-org/pixelcore/stats"
)

// MinLineCount is the shortest run of consecutive matching rows that
// scroll_values will report; shorter runs are discarded as noise.
const MinLineCount = 5

// MaxScrollEntries bounds how many (distance, run) entries ScrollValues
// returns per call, per spec.md §4.4 ("top K (K <= 20)").
const MaxScrollEntries = 20

// Scroll describes one detected vertical shift: rows
// [StartRow, StartRow+Count) of the current frame match rows
// [StartRow-Shift, StartRow-Shift+Count) of the previous frame.
// Shift is positive when content has moved down the frame, negative
// when it has moved up, matching spec.md's sign convention.
type Scroll struct {
	Shift    int
	StartRow int
	Count    int
}

// Residual is a band of consecutive rows the scroll search could not
// attribute to any vote; these are reported as dirty rows needing a
// full re-encode.
type Residual struct {
	StartRow int
	Count    int
}

// Detector holds the per-region row-hash state across successive
// frames. A single Detector's update/calculate/scroll_values sequence
// must be serialised by the caller (spec.md §5); different Detectors
// (different regions) are independent.
type Detector struct {
	x, y, width, height int
	a1, a2              []uint64 // previous, current row hashes
	distances           []int    // vote histogram, length 2*height
	initialized         bool

	Stats stats.Counters
}

// NewDetector returns a Detector with no frame state; the first Update
// call establishes the region geometry.
func NewDetector() *Detector {
	return &Detector{}
}

// Update ingests a new frame of the region (x, y, width, height) from
// pixels, row_stride bytes per row, bpp bytes per pixel. If the region
// size differs from the previous call, all state is discarded and
// reinitialised (a fresh a2, an empty a1). Otherwise the previous a2
// becomes a1 and a fresh a2 is computed.
func (d *Detector) Update(pixels []byte, x, y, width, height, rowStride, bpp int) error {
	if width == 0 && height == 0 {
		return fmt.Errorf("scroll: zero-sized region: %w", pixerr.ErrInvalidArgument)
	}
	if width < 0 || height < 0 || rowStride < width*bpp {
		return fmt.Errorf("scroll: row_stride %d too small for width %d bpp %d: %w", rowStride, width, bpp, pixerr.ErrInvalidArgument)
	}
	rowBytes := width * bpp
	if len(pixels) < rowStride*(height-1)+rowBytes {
		return fmt.Errorf("scroll: pixel buffer shorter than declared region: %w", pixerr.ErrInvalidArgument)
	}

	sameRegion := d.initialized && d.width == width && d.height == height
	if !sameRegion {
		d.x, d.y, d.width, d.height = x, y, width, height
		d.a1 = make([]uint64, height)
		d.a2 = make([]uint64, height)
		d.distances = make([]int, 2*height)
		d.initialized = true
	} else {
		d.x, d.y = x, y
		d.a1, d.a2 = d.a2, d.a1
	}

	for row := 0; row < height; row++ {
		start := row * rowStride
		d.a2[row] = hashRow(pixels[start : start+rowBytes])
	}

	d.Stats.AddFrame()
	return nil
}

// hashRow computes the 64-bit row hash (xxHash-64, seed 0) spec.md §6
// names by name.
func hashRow(row []byte) uint64 {
	h := xxhash.Sum64(row)
	if h == 0 {
		// A zeroed hash is reserved to mean "invalidated row" (spec.md
		// §3); remap the vanishingly rare genuine zero to 1 so that a
		// real row is never treated as "invalidated" by accident. Such
		// a row then compares equal to any row whose hash is genuinely
		// 1, a collision as unlikely as the zero itself; this guard
		// exists purely to uphold the invariant exactly.
		return 1
	}
	return h
}

// Calculate votes on every row-pair within maxDistance whose hashes
// match: for a1[y1] == a2[y2] (both non-zero) with |y1-y2| <=
// maxDistance, distances[height+(y1-y2)] is incremented. Calculate
// before any Update is a no-op.
func (d *Detector) Calculate(maxDistance int) {
	if !d.initialized {
		return
	}
	for i := range d.distances {
		d.distances[i] = 0
	}
	h := d.height
	for y2 := 0; y2 < h; y2++ {
		hash2 := d.a2[y2]
		if hash2 == 0 {
			continue
		}
		lo := y2 - maxDistance
		if lo < 0 {
			lo = 0
		}
		hi := y2 + maxDistance
		if hi > h-1 {
			hi = h - 1
		}
		for y1 := lo; y1 <= hi; y1++ {
			if d.a1[y1] == hash2 {
				d.distances[h+(y1-y2)]++
			}
		}
	}
}

// ScrollValues finds the top MaxScrollEntries distances whose vote
// count exceeds minHits, and for each (in decreasing vote order) scans
// a1 against a2 shifted by that distance to enumerate runs of
// consecutive matching rows (runs shorter than MinLineCount are
// discarded). A chosen run marks its destination rows as accounted
// for so a later, smaller-vote distance cannot double-claim them.
// Remaining unaccounted rows are coalesced into Residual spans.
func (d *Detector) ScrollValues(minHits int) ([]Scroll, []Residual) {
	if !d.initialized {
		return nil, nil
	}
	h := d.height

	type candidate struct {
		shift int
		votes int
	}
	var candidates []candidate
	for idx, v := range d.distances {
		if v > minHits {
			candidates = append(candidates, candidate{shift: idx - h, votes: v})
		}
	}
	// Decreasing vote order; ties broken by smaller |shift| first for
	// determinism.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0; j-- {
			a, b := candidates[j-1], candidates[j]
			swap := a.votes < b.votes
			if a.votes == b.votes {
				swap = abs(a.shift) > abs(b.shift)
			}
			if !swap {
				break
			}
			candidates[j-1], candidates[j] = candidates[j], candidates[j-1]
		}
	}
	if len(candidates) > MaxScrollEntries {
		candidates = candidates[:MaxScrollEntries]
	}

	accounted := make([]bool, h)
	var scrolls []Scroll

	for _, c := range candidates {
		// c.shift is y1-y2 (the distances[] index convention); the
		// public Scroll.Shift is the destination-relative convention
		// y2-y1 (positive = content moved down), so it is the negation.
		delta := c.shift
		reported := -delta
		y2 := 0
		for y2 < h {
			y1 := y2 + delta
			if accounted[y2] || y1 < 0 || y1 >= h || d.a2[y2] == 0 || d.a1[y1] != d.a2[y2] {
				y2++
				continue
			}
			runStart := y2
			for y2 < h {
				y1 := y2 + delta
				if accounted[y2] || y1 < 0 || y1 >= h || d.a2[y2] == 0 || d.a1[y1] != d.a2[y2] {
					break
				}
				y2++
			}
			count := y2 - runStart
			if count >= MinLineCount {
				scrolls = append(scrolls, Scroll{Shift: reported, StartRow: runStart, Count: count})
				for r := runStart; r < runStart+count; r++ {
					accounted[r] = true
				}
			}
		}
	}

	var residuals []Residual
	row := 0
	for row < h {
		if accounted[row] {
			row++
			continue
		}
		start := row
		for row < h && !accounted[row] {
			row++
		}
		residuals = append(residuals, Residual{StartRow: start, Count: row - start})
	}

	return scrolls, residuals
}

// Invalidate zeroes every row of a2 whose y-interval intersects the
// given rectangle (in the region's own coordinate space), marking
// those rows as never-matching for the next Calculate. If more than
// half of a2 is zeroed, a2 is discarded entirely so the next frame
// starts scroll detection from scratch.
func (d *Detector) Invalidate(x, y, w, h int) {
	if !d.initialized {
		return
	}
	lo := y
	if lo < 0 {
		lo = 0
	}
	hi := y + h
	if hi > d.height {
		hi = d.height
	}
	zeroed := 0
	for row := 0; row < d.height; row++ {
		if d.a2[row] == 0 {
			zeroed++
		}
	}
	for row := lo; row < hi; row++ {
		if d.a2[row] != 0 {
			d.a2[row] = 0
			zeroed++
		}
	}
	if zeroed*2 > d.height {
		for row := range d.a2 {
			d.a2[row] = 0
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
