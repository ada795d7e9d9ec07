// Package selection implements the rectangular-crop selection state
// machine: None -> Clicked -> Selecting, driven by mouse events.
package selection

// Point is a window-physical pixel coordinate.
type Point struct {
	X, Y int32
}

// Rect is a normalized selection rectangle: Left <= Right, Top <= Bottom.
type Rect struct {
	Left, Top, Right, Bottom int32
}

// Position returns the rectangle's top-left corner.
func (r Rect) Position() Point {
	return Point{X: r.Left, Y: r.Top}
}

// Size returns the rectangle's extent; each axis is at least 1.
func (r Rect) Size() (width, height int32) {
	return r.Right - r.Left, r.Bottom - r.Top
}

// state tags which variant a Selection currently holds.
type state int

const (
	stateNone state = iota
	stateClicked
	stateSelecting
)

// Selection is the tagged selection state described in spec.md §4.8 and
// §8: None | Clicked(anchor) | Selecting(start, end).
type Selection struct {
	state state
	start Point
	end   Point
}

// New returns a Selection in the None state.
func New() Selection {
	return Selection{state: stateNone}
}

// Reset returns the selection to None; called on every new capture.
func (s *Selection) Reset() {
	*s = New()
}

// IsSelecting reports whether the selection currently exposes a rectangle.
func (s *Selection) IsSelecting() bool {
	return s.state == stateSelecting
}

// MouseDown transitions None -> Clicked(p).
func (s *Selection) MouseDown(p Point) {
	s.state = stateClicked
	s.start = p
	s.end = p
}

// MouseUp transitions Selecting -> None, signalling the caller should
// submit (fire Save); it also handles Clicked -> None (click without
// drag, nothing to submit).
func (s *Selection) MouseUp() (submit bool) {
	switch s.state {
	case stateSelecting:
		s.state = stateNone
		return true
	case stateClicked:
		s.state = stateNone
		return false
	default:
		return false
	}
}

// MouseMove updates the selection for pointer position q.
//
// From Clicked, it transitions to Selecting only once q differs from the
// anchor on both axes. From Selecting, end tracks q, except that an axis
// sharing q's value with start is nudged by ±1 pixel to guarantee
// non-zero extent (spec.md §9's resolved open question: nudge away from
// start by +1 if end >= start, else -1, where end is the end held before
// this move).
func (s *Selection) MouseMove(q Point) {
	switch s.state {
	case stateClicked:
		if q.X != s.start.X && q.Y != s.start.Y {
			s.state = stateSelecting
			s.end = q
		}
	case stateSelecting:
		s.end = nudge(s.start, s.end, q)
	}
}

func nudge(start, prev, end Point) Point {
	if end.X == start.X {
		end.X = nudgeAxis(start.X, prev.X)
	}
	if end.Y == start.Y {
		end.Y = nudgeAxis(start.Y, prev.Y)
	}
	return end
}

func nudgeAxis(start, prev int32) int32 {
	if prev >= start {
		return start + 1
	}
	return start - 1
}

// Rect returns the current rectangle. Only meaningful while Selecting;
// callers should check IsSelecting first.
func (s *Selection) Rect() Rect {
	left, right := s.start.X, s.end.X
	if left > right {
		left, right = right, left
	}
	top, bottom := s.start.Y, s.end.Y
	if top > bottom {
		top, bottom = bottom, top
	}
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}
