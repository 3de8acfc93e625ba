package region

// Set maintains a list of Rectangles with the invariant that no two
// members intersect. The zero Set is empty and ready to use. A Set is
// single-owner; callers sharing one across goroutines must wrap it in
// their own lock (spec.md §5).
type Set struct {
	rects []Rectangle
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{}
}

// Rectangles returns the set's non-overlapping members. The returned
// slice is a copy; mutating it does not affect the Set.
func (s *Set) Rectangles() []Rectangle {
	out := make([]Rectangle, len(s.rects))
	copy(out, s.rects)
	return out
}

// Iterate calls fn for each of the set's non-overlapping members, in
// no particular order, stopping early if fn returns false. It is a
// read-only view over the same members Rectangles copies out, for a
// caller that wants to avoid the copy's allocation.
func (s *Set) Iterate(fn func(Rectangle) bool) {
	for _, r := range s.rects {
		if !fn(r) {
			return
		}
	}
}

// Len returns the number of rectangles currently in the set.
func (s *Set) Len() int { return len(s.rects) }

// Contains reports whether rect is fully covered by the set's current
// members (true immediately after Add(rect)).
func (s *Set) Contains(rect Rectangle) bool {
	if rect.Empty() {
		return true
	}
	remaining := []Rectangle{rect}
	for _, r := range s.rects {
		var next []Rectangle
		for _, piece := range remaining {
			next = append(next, Subtract(piece, r)...)
		}
		remaining = next
		if len(remaining) == 0 {
			return true
		}
	}
	return len(remaining) == 0
}

// Add inserts rect into the set. If an existing member already fully
// contains rect, the set is unchanged. Otherwise every existing member
// that intersects rect is replaced by its subtraction-by-rect pieces,
// and rect itself is appended, restoring the non-overlap invariant.
func (s *Set) Add(rect Rectangle) {
	if rect.Empty() {
		return
	}
	for _, r := range s.rects {
		if r.Contains(rect) {
			return
		}
	}

	kept := s.rects[:0:0]
	for _, r := range s.rects {
		if r.Intersects(rect) {
			kept = append(kept, Subtract(r, rect)...)
		} else {
			kept = append(kept, r)
		}
	}
	s.rects = append(kept, rect)
}

// Remove deletes rect's coverage from the set: every member is
// replaced by its subtraction-by-rect pieces.
func (s *Set) Remove(rect Rectangle) {
	if rect.Empty() || len(s.rects) == 0 {
		return
	}
	var next []Rectangle
	for _, r := range s.rects {
		next = append(next, Subtract(r, rect)...)
	}
	s.rects = next
}

// MergeAll returns the axis-aligned bounding rectangle of every member,
// and false if the set is empty.
func (s *Set) MergeAll() (Rectangle, bool) {
	if len(s.rects) == 0 {
		return Rectangle{}, false
	}
	bound := s.rects[0]
	for _, r := range s.rects[1:] {
		bound = bound.Union(r)
	}
	return bound, true
}
