package renderer

import (
	"sync"

	"github.com/hdrsnip/hdrsnip/internal/hdrimage"
	"github.com/hdrsnip/hdrsnip/internal/selection"
)

// State is the only mutable cross-thread data in the application
// (spec.md §5): the main thread writes it and posts a Render message;
// the renderer thread reads it under lock once per frame into a local
// Snapshot, then records the frame using only that snapshot (spec.md
// §4.5's "state coupling" rule).
type State struct {
	mu sync.Mutex

	whitepoint float32

	captureLoaded bool
	captureView   *hdrimage.HdrImage

	selectionActive bool
	selectionRect   selection.Rect

	mouseX, mouseY int32

	windowWidth, windowHeight uint32
}

// NewState returns a State with no capture loaded and the given
// initial window extent.
func NewState(windowWidth, windowHeight uint32) *State {
	return &State{windowWidth: windowWidth, windowHeight: windowHeight}
}

// SetWhitepoint updates the whitepoint the capture pipeline divides by.
func (s *State) SetWhitepoint(w float32) {
	s.mu.Lock()
	s.whitepoint = w
	s.mu.Unlock()
}

// SetCapture installs the HDR image the capture pipeline samples.
func (s *State) SetCapture(img *hdrimage.HdrImage) {
	s.mu.Lock()
	s.captureView = img
	s.captureLoaded = img != nil
	s.mu.Unlock()
}

// ClearCapture removes the current capture, e.g. on Active->Inactive.
func (s *State) ClearCapture() {
	s.SetCapture(nil)
}

// SetSelection installs the active selection rectangle.
func (s *State) SetSelection(r selection.Rect) {
	s.mu.Lock()
	s.selectionRect = r
	s.selectionActive = true
	s.mu.Unlock()
}

// ClearSelection hides the selection overlay.
func (s *State) ClearSelection() {
	s.mu.Lock()
	s.selectionActive = false
	s.mu.Unlock()
}

// SetMouse updates the crosshair guide position.
func (s *State) SetMouse(x, y int32) {
	s.mu.Lock()
	s.mouseX, s.mouseY = x, y
	s.mu.Unlock()
}

// SetWindowSize updates the window extent used for clip-space
// conversion in the line pipeline.
func (s *State) SetWindowSize(width, height uint32) {
	s.mu.Lock()
	s.windowWidth, s.windowHeight = width, height
	s.mu.Unlock()
}

// Snapshot is an immutable copy of State taken under its lock, per
// spec.md §4.5's state-coupling rule: the renderer thread records a
// frame from a Snapshot alone, never from State directly.
type Snapshot struct {
	Whitepoint float32

	CaptureLoaded bool
	CaptureView   *hdrimage.HdrImage

	SelectionActive bool
	SelectionRect   selection.Rect

	MouseX, MouseY int32

	WindowWidth, WindowHeight uint32
}

// Snapshot copies State under its lock.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Whitepoint:      s.whitepoint,
		CaptureLoaded:   s.captureLoaded,
		CaptureView:     s.captureView,
		SelectionActive: s.selectionActive,
		SelectionRect:   s.selectionRect,
		MouseX:          s.mouseX,
		MouseY:          s.mouseY,
		WindowWidth:     s.windowWidth,
		WindowHeight:    s.windowHeight,
	}
}
