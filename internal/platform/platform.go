// Package platform defines the seam between the GPU-facing pipeline and
// the OS-specific capture collaborator (SPEC_FULL.md §4.11, spec.md §6
// "Consumed — Platform capture collaborator"). GPU-facing components
// (internal/hdrimage, internal/scanner, internal/tonemap, internal/gpu)
// never import this package or any platform-specific package directly;
// only the CaptureTaker worker (internal/workers) does.
package platform

import "github.com/hdrsnip/hdrsnip/internal/hdrimage"

// Capture is the bundle a CaptureProvider hands back: a shareable HDR
// texture handle plus the monitor it was taken from (spec.md §6).
type Capture struct {
	Width          uint32
	Height         uint32
	Handle         uintptr
	AllocationSize uint64
	Monitor        hdrimage.MonitorDescriptor

	// Token identifies this capture to ReleaseCapture. Platform handles
	// have thread affinity (spec.md §5): they must be released on the
	// same thread that took the capture, which is why release is a
	// separate call rather than part of Capture's destructor.
	Token uintptr
}

// CaptureProvider is the platform collaborator's contract (spec.md §6):
// take a capture of the monitor under the cursor, and release the
// token once the caller is done importing it.
type CaptureProvider interface {
	// TakeCapture returns a shared HDR texture handle and the
	// descriptor of the monitor it was captured from. The handle is
	// valid for external import as an RGBA16F 2D image and must
	// survive until ReleaseCapture is called with the returned token.
	TakeCapture() (Capture, error)

	// ReleaseCapture releases the platform-side resources associated
	// with token. Must run on the same OS thread that produced the
	// capture (spec.md §5's platform handle thread-affinity rule).
	ReleaseCapture(token uintptr) error
}
