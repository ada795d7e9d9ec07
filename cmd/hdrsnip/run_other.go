//go:build !windows

package main

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/hdrsnip/hdrsnip/internal/config"
	"github.com/hdrsnip/hdrsnip/internal/renderer"
)

// run is unimplemented on non-Windows platforms: the capture pipeline
// depends on DXGI desktop duplication and the Win32 message pump
// (spec.md §1's Windows-only scope).
func run(cfg *config.Config, log *zap.Logger, gctx *gpuContext, rendererState *renderer.State) error {
	return fmt.Errorf("hdrsnip: unsupported platform %q (Windows only)", runtime.GOOS)
}
