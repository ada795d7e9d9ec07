//go:build !windows

package platform_test

import (
	"testing"

	"github.com/hdrsnip/hdrsnip/internal/hdrimage"
	"github.com/hdrsnip/hdrsnip/internal/platform"
)

func TestFakeProvider_TakeCapture(t *testing.T) {
	monitor := hdrimage.MonitorDescriptor{Width: 1920, Height: 1080, SdrWhiteNits: 80, MaxLuminanceNits: 1000}
	p := platform.NewFakeProvider(1920, 1080, monitor)

	cap, err := p.TakeCapture()
	if err != nil {
		t.Fatalf("TakeCapture: %v", err)
	}
	if cap.Width != 1920 || cap.Height != 1080 {
		t.Errorf("extent = %dx%d, want 1920x1080", cap.Width, cap.Height)
	}
	if cap.Handle == 0 {
		t.Error("expected non-zero synthetic handle")
	}
	if cap.Monitor != monitor {
		t.Errorf("monitor = %+v, want %+v", cap.Monitor, monitor)
	}
}

func TestFakeProvider_TakeCapture_DistinctTokens(t *testing.T) {
	p := platform.NewFakeProvider(4, 4, hdrimage.MonitorDescriptor{})

	a, err := p.TakeCapture()
	if err != nil {
		t.Fatalf("TakeCapture: %v", err)
	}
	b, err := p.TakeCapture()
	if err != nil {
		t.Fatalf("TakeCapture: %v", err)
	}

	if a.Token == b.Token {
		t.Error("expected distinct tokens across captures")
	}
	if a.Handle == b.Handle {
		t.Error("expected distinct synthetic handles across captures")
	}
}

func TestFakeProvider_ReleaseCapture(t *testing.T) {
	p := platform.NewFakeProvider(4, 4, hdrimage.MonitorDescriptor{})

	cap, err := p.TakeCapture()
	if err != nil {
		t.Fatalf("TakeCapture: %v", err)
	}
	if p.Released(cap.Token) {
		t.Fatal("token reported released before ReleaseCapture")
	}

	if err := p.ReleaseCapture(cap.Token); err != nil {
		t.Fatalf("ReleaseCapture: %v", err)
	}
	if !p.Released(cap.Token) {
		t.Error("token not reported released after ReleaseCapture")
	}
}

func TestFakeProvider_ReleaseCapture_UnknownToken(t *testing.T) {
	p := platform.NewFakeProvider(4, 4, hdrimage.MonitorDescriptor{})

	if err := p.ReleaseCapture(999); err == nil {
		t.Error("expected error releasing an unknown token")
	}
}
