// Package workers implements spec.md §4.6's three long-lived worker
// threads (CaptureTaker, CaptureSaver, Renderer), each a single-consumer
// message loop grounded on internal/thread's OS-thread-locked worker.
//
// Platform capture handles are thread-affine (spec.md §5): they must be
// released on the thread that took them. CaptureTaker is therefore the
// only place platform.CaptureProvider is driven from, including its own
// cleanup calls.
package workers

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hdrsnip/hdrsnip/internal/gpu"
	"github.com/hdrsnip/hdrsnip/internal/hdrimage"
	"github.com/hdrsnip/hdrsnip/internal/platform"
	"github.com/hdrsnip/hdrsnip/internal/thread"
)

// refreshCacheInterval matches spec.md §4.6's "fires RefreshCache every
// 10 minutes" requirement for CaptureTaker's cache-refresh thread.
const refreshCacheInterval = 10 * time.Minute

// CaptureBundle is what TakeCapture hands back: an HDR image already
// imported onto the device, plus the platform token needed to later
// release the external capture handle (spec.md §4.6).
type CaptureBundle struct {
	Image   *hdrimage.HdrImage
	Monitor hdrimage.MonitorDescriptor
	Token   uintptr
}

// CaptureTaker is the single-consumer owner of the platform capture
// collaborator (spec.md §4.6). All calls into provider, including
// ReleaseCapture, run on CaptureTaker's locked OS thread.
type CaptureTaker struct {
	th       *thread.Thread
	provider platform.CaptureProvider
	device   *gpu.Device
	log      *zap.Logger

	refreshDone chan struct{}
}

// NewCaptureTaker starts the CaptureTaker thread and its cache-refresh
// ticker (spec.md §4.6's "second thread inside this component").
func NewCaptureTaker(provider platform.CaptureProvider, device *gpu.Device, log *zap.Logger) *CaptureTaker {
	ct := &CaptureTaker{
		th:          thread.New(),
		provider:    provider,
		device:      device,
		log:         log,
		refreshDone: make(chan struct{}),
	}

	go ct.refreshLoop()

	return ct
}

func (ct *CaptureTaker) refreshLoop() {
	ticker := time.NewTicker(refreshCacheInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ct.th.CallAsync(func() {
				ct.log.Debug("refreshing capture cache")
			})
		case <-ct.refreshDone:
			return
		}
	}
}

// TakeCapture asks the platform collaborator for a capture of the
// monitor under the cursor and imports it into an HDR image (spec.md
// §4.6). Runs synchronously on the CaptureTaker thread.
func (ct *CaptureTaker) TakeCapture() (CaptureBundle, error) {
	result := ct.th.Call(func() any {
		cap, err := ct.provider.TakeCapture()
		if err != nil {
			return captureResult{err: fmt.Errorf("capturetaker: take capture: %w", err)}
		}

		img, err := hdrimage.Import(ct.device, cap.Width, cap.Height, cap.Handle, cap.AllocationSize)
		if err != nil {
			if relErr := ct.provider.ReleaseCapture(cap.Token); relErr != nil {
				ct.log.Warn("release capture after failed import", zap.Error(relErr))
			}
			return captureResult{err: fmt.Errorf("capturetaker: import capture: %w", err)}
		}

		return captureResult{
			bundle: CaptureBundle{Image: img, Monitor: cap.Monitor, Token: cap.Token},
		}
	})

	r := result.(captureResult)
	return r.bundle, r.err
}

type captureResult struct {
	bundle CaptureBundle
	err    error
}

// CleanupExternalHandle releases a platform token on CaptureTaker's own
// thread (spec.md §4.6: many platform APIs demand same-apartment
// release). Called by the owning component after the HDR image it
// backs has been destroyed and the device is idle.
func (ct *CaptureTaker) CleanupExternalHandle(token uintptr) {
	ct.th.CallVoid(func() {
		if err := ct.provider.ReleaseCapture(token); err != nil {
			ct.log.Warn("cleanup external handle", zap.Error(err))
		}
	})
}

// Shutdown stops the cache-refresh ticker and the CaptureTaker thread,
// joining both (spec.md §4.6: "Drop-send Shutdown and join").
func (ct *CaptureTaker) Shutdown() {
	close(ct.refreshDone)
	ct.th.Stop()
}
