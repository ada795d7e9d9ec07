package workers_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/hdrsnip/hdrsnip/internal/gpu"
	"github.com/hdrsnip/hdrsnip/internal/hdrimage"
	"github.com/hdrsnip/hdrsnip/internal/platform"
	"github.com/hdrsnip/hdrsnip/internal/workers"

	_ "github.com/hdrsnip/hdrsnip/internal/gpu/hal/noop"
)

func newTestDevice(t *testing.T) *gpu.Device {
	t.Helper()

	instance, err := gpu.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	t.Cleanup(instance.Release)

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		t.Fatalf("RequestAdapter: %v", err)
	}
	t.Cleanup(adapter.Release)

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		t.Fatalf("RequestDevice: %v", err)
	}
	t.Cleanup(device.Release)

	if device.Queue() == nil {
		t.Skip("skipping: device has no HAL integration (mock adapter; no real GPU backend available)")
	}

	return device
}

func TestCaptureTaker_TakeCapture(t *testing.T) {
	device := newTestDevice(t)

	monitor := hdrimage.MonitorDescriptor{Width: 1920, Height: 1080, SdrWhiteNits: 80, MaxLuminanceNits: 1000}
	provider := platform.NewFakeProvider(1920, 1080, monitor)

	ct := workers.NewCaptureTaker(provider, device, zap.NewNop())
	defer ct.Shutdown()

	bundle, err := ct.TakeCapture()
	if err != nil {
		t.Fatalf("TakeCapture: %v", err)
	}
	defer bundle.Image.Destroy()

	if bundle.Image.Width() != 1920 || bundle.Image.Height() != 1080 {
		t.Fatalf("unexpected image extent: %dx%d", bundle.Image.Width(), bundle.Image.Height())
	}
	if provider.Released(bundle.Token) {
		t.Fatal("expected token not yet released")
	}

	ct.CleanupExternalHandle(bundle.Token)
	if !provider.Released(bundle.Token) {
		t.Fatal("expected token released after CleanupExternalHandle")
	}
}

func TestCaptureTaker_TakeCapture_ReleasesOnImportFailure(t *testing.T) {
	device := newTestDevice(t)

	monitor := hdrimage.MonitorDescriptor{Width: 0, Height: 0}
	provider := platform.NewFakeProvider(0, 0, monitor)

	ct := workers.NewCaptureTaker(provider, device, zap.NewNop())
	defer ct.Shutdown()

	_, err := ct.TakeCapture()
	if err == nil {
		t.Fatal("expected error for empty-extent capture")
	}
	if !provider.Released(1) {
		t.Fatal("expected the capture's token released after the failed import")
	}
}
