// Command hdrsnip is the application entry point (spec.md §2's C7/C8
// wiring over C1-C6): load config, construct the logger, build the GPU
// context and domain pipelines, then hand off to the platform-specific
// event loop.
//
// Grounded on LanternOps-breeze/apps/agent/cmd/breeze-agent/main.go's
// wiring order (load config -> construct logger -> construct subsystems
// -> run -> graceful shutdown on signal), adapted from a long-running
// service to a tray-resident capture tool.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hdrsnip/hdrsnip/internal/config"
	"github.com/hdrsnip/hdrsnip/internal/gpu"
	_ "github.com/hdrsnip/hdrsnip/internal/gpu/hal/allbackends"
	"github.com/hdrsnip/hdrsnip/internal/logging"
	"github.com/hdrsnip/hdrsnip/internal/renderer"
	"github.com/hdrsnip/hdrsnip/internal/scanner"
	"github.com/hdrsnip/hdrsnip/internal/tonemap"
)

// defaultSubgroupSize matches internal/scanner's documented fallback
// when the device exposes no subgroup-size query.
const defaultSubgroupSize = 32

// gpuContext bundles the GPU resources every domain pipeline shares
// (spec.md C1's "device, queue, allocators... debug messenger").
type gpuContext struct {
	instance *gpu.Instance
	adapter  *gpu.Adapter
	device   *gpu.Device

	scanner    *scanner.Scanner
	tonemapper *tonemap.Tonemapper
}

func newGPUContext() (*gpuContext, error) {
	instance, err := gpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapter, err := instance.RequestAdapter(&gpu.RequestAdapterOptions{PowerPreference: gpu.PowerPreferenceHighPerformance})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}

	sc, err := scanner.New(device, defaultSubgroupSize)
	if err != nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("new scanner: %w", err)
	}

	tm, err := tonemap.New(device)
	if err != nil {
		sc.Release()
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("new tonemapper: %w", err)
	}

	return &gpuContext{instance: instance, adapter: adapter, device: device, scanner: sc, tonemapper: tm}, nil
}

// Close waits for device idle and releases GPU resources in reverse
// creation order (spec.md §5's destruction discipline).
func (c *gpuContext) Close(log *zap.Logger) {
	if err := c.device.WaitIdle(); err != nil {
		log.Warn("wait idle before shutdown", zap.Error(err))
	}
	c.tonemapper.Release()
	c.scanner.Release()
	c.device.Release()
	c.adapter.Release()
	c.instance.Release()
}

// surfaceFormat is the renderer's colour target. It is a fixed choice:
// the surface's supported formats are not queried and no other
// candidate format (RGBA16F, BGRA8) is tried.
const surfaceFormat = gpu.TextureFormatRGBA8Unorm

func main() {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, "hdrsnip: config load:", err)
		cfg = config.Default()
	}

	log, cleanup, err := logging.New(logging.Options{
		LogDir:     cfg.LogDir,
		Level:      cfg.LogLevel,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "hdrsnip: logger init:", err)
		os.Exit(1)
	}
	defer cleanup()
	defer log.Sync()

	gctx, err := newGPUContext()
	if err != nil {
		log.Fatal("gpu context init", zap.Error(err))
	}
	defer gctx.Close(log)

	rendererState := renderer.NewState(0, 0)

	if err := run(cfg, log, gctx, rendererState); err != nil {
		log.Fatal("run", zap.Error(err))
	}
}
