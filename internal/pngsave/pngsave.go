// Package pngsave writes a captured, tonemapped image to disk
// (SPEC_FULL.md §4.13, spec.md §6 "Produced — CaptureSaver output").
//
// PNG encoding is treated as an external collaborator per spec.md §1
// ("Clipboard and PNG encoding... we specify only the byte layout handed
// to them") — no repo in the corpus implements or imports a third-party
// PNG encoder, so the standard library's image/png is used directly
// (see DESIGN.md for the stdlib justification).
package pngsave

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// fileNameLayout matches spec.md §6: "Screenshot YYYY-MM-DD HHMMSS.png".
const fileNameLayout = "Screenshot 2006-01-02 150405.png"

// Save encodes rgba (row-major, no row padding, width*height*4 bytes) as
// an 8-bit sRGB PNG and writes it to <dir>/Screenshot YYYY-MM-DD
// HHMMSS.png, creating dir if absent. Returns the written path.
func Save(dir string, width, height int, rgba []byte, at time.Time) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("pngsave: invalid dimensions %dx%d", width, height)
	}
	if len(rgba) != width*height*4 {
		return "", fmt.Errorf("pngsave: rgba length %d, want %d", len(rgba), width*height*4)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("pngsave: create dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, at.Format(fileNameLayout))

	img := &image.RGBA{
		Pix:    rgba,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("pngsave: create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("pngsave: encode %s: %w", path, err)
	}

	return path, nil
}
