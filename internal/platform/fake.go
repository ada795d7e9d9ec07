//go:build !windows

package platform

import (
	"fmt"
	"sync"

	"github.com/hdrsnip/hdrsnip/internal/hdrimage"
)

// FakeProvider is the non-Windows/testing CaptureProvider double
// (SPEC_FULL.md §4.11): it returns a synthetic in-memory texture handle
// instead of an OS-acquired shared handle, so unit tests of the worker
// threads and state machine can run without a Windows capture backend.
type FakeProvider struct {
	Width, Height uint32
	Monitor       hdrimage.MonitorDescriptor

	mu       sync.Mutex
	released map[uintptr]bool
	nextTok  uintptr
}

// NewFakeProvider builds a FakeProvider reporting the given extent and
// monitor descriptor on every TakeCapture call.
func NewFakeProvider(width, height uint32, monitor hdrimage.MonitorDescriptor) *FakeProvider {
	return &FakeProvider{Width: width, Height: height, Monitor: monitor, released: make(map[uintptr]bool)}
}

// TakeCapture implements CaptureProvider. The returned handle is a
// synthetic, non-zero uintptr; it does not reference real GPU memory,
// so it is only valid against the gpu package's noop backend.
func (f *FakeProvider) TakeCapture() (Capture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextTok++
	token := f.nextTok
	f.released[token] = false

	return Capture{
		Width:          f.Width,
		Height:         f.Height,
		Handle:         0xF00D0000 | uintptr(token),
		AllocationSize: uint64(f.Width) * uint64(f.Height) * 8,
		Monitor:        f.Monitor,
		Token:          token,
	}, nil
}

// ReleaseCapture implements CaptureProvider.
func (f *FakeProvider) ReleaseCapture(token uintptr) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.released[token]; !ok {
		return fmt.Errorf("platform: release of unknown token %d", token)
	}
	f.released[token] = true
	return nil
}

// Released reports whether ReleaseCapture has been called for token.
// Test helper only.
func (f *FakeProvider) Released(token uintptr) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released[token]
}
