package pngsave_test

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hdrsnip/hdrsnip/internal/pngsave"
)

func TestSave(t *testing.T) {
	dir := t.TempDir()
	rgba := make([]byte, 4*4*4)
	for i := range rgba {
		rgba[i] = byte(i)
	}

	at := time.Date(2026, 7, 30, 14, 5, 9, 0, time.UTC)
	path, err := pngsave.Save(dir, 4, 4, rgba, at)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	wantName := "Screenshot 2026-07-30 140509.png"
	if filepath.Base(path) != wantName {
		t.Errorf("file name = %q, want %q", filepath.Base(path), wantName)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 4 || bounds.Dy() != 4 {
		t.Errorf("decoded size = %dx%d, want 4x4", bounds.Dx(), bounds.Dy())
	}
}

func TestSave_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "screenshots")
	rgba := make([]byte, 2*2*4)

	if _, err := pngsave.Save(dir, 2, 2, rgba, time.Now()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestSave_InvalidDimensions(t *testing.T) {
	if _, err := pngsave.Save(t.TempDir(), 0, 4, nil, time.Now()); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestSave_MismatchedBufferLength(t *testing.T) {
	if _, err := pngsave.Save(t.TempDir(), 4, 4, make([]byte, 10), time.Now()); err == nil {
		t.Error("expected error for mismatched rgba length")
	}
}
