//go:build windows

package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hdrsnip/hdrsnip/internal/appstate"
	"github.com/hdrsnip/hdrsnip/internal/config"
	"github.com/hdrsnip/hdrsnip/internal/gpu"
	"github.com/hdrsnip/hdrsnip/internal/platform"
	"github.com/hdrsnip/hdrsnip/internal/renderer"
	"github.com/hdrsnip/hdrsnip/internal/scanner"
	"github.com/hdrsnip/hdrsnip/internal/selection"
	"github.com/hdrsnip/hdrsnip/internal/workers"
)

// unimplementedDuplicator is the explicit stand-in for the desktop-
// duplication collaborator spec.md §1 places out of scope ("assumed
// upstream of this module... we specify only the handle/metadata it
// must deliver"). A production deployment wires a real DXGI
// IDXGIOutputDuplication-backed Duplicator here; this module's contract
// ends at platform.Duplicator.
type unimplementedDuplicator struct{}

func (unimplementedDuplicator) Duplicate(hMonitor uintptr) (width, height uint32, handle uintptr, allocationSize uint64, release func() error, err error) {
	return 0, 0, 0, 0, nil, fmt.Errorf("platform: desktop duplication not wired (see platform.Duplicator)")
}

// app holds everything the event loop touches: the state machine, the
// selection model, and handles to the three worker threads.
type app struct {
	log  *zap.Logger
	cfg  *config.Config
	gctx *gpuContext

	window  *Window
	rstate  *renderer.State
	rend    *renderer.Renderer
	rworker *workers.RendererWorker

	captureTaker *workers.CaptureTaker
	captureSaver *workers.CaptureSaver

	appState appstate.State
	sel      selection.Selection
	current  *workers.CaptureBundle
}

func run(cfg *config.Config, log *zap.Logger, gctx *gpuContext, rendererState *renderer.State) error {
	window, err := NewWindow("hdrsnip", 1, 1)
	if err != nil {
		return fmt.Errorf("new window: %w", err)
	}
	defer window.Destroy()

	instanceForSurface := gctx.instance
	surface, err := instanceForSurface.CreateSurface(0, window.Handle())
	if err != nil {
		return fmt.Errorf("create surface: %w", err)
	}
	defer surface.Release()

	width, height := window.Size()
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	if err := surface.Configure(gctx.device, &gpu.SurfaceConfiguration{
		Width:       uint32(width),
		Height:      uint32(height),
		Format:      surfaceFormat,
		Usage:       gpu.TextureUsageRenderAttachment,
		PresentMode: gpu.PresentModeFifo,
	}); err != nil {
		return fmt.Errorf("configure surface: %w", err)
	}

	rend, err := renderer.New(gctx.device, surface, surfaceFormat)
	if err != nil {
		return fmt.Errorf("new renderer: %w", err)
	}
	defer rend.Release()

	rworker := workers.NewRendererWorker(rend, rendererState, log)
	defer rworker.Shutdown()

	provider := platform.NewProvider(unimplementedDuplicator{})
	captureTaker := workers.NewCaptureTaker(provider, gctx.device, log)
	defer captureTaker.Shutdown()

	captureSaver := workers.NewCaptureSaver(gctx.device, gctx.tonemapper, cfg.ScreenshotDir, log)
	defer captureSaver.Shutdown()

	a := &app{
		log:          log,
		cfg:          cfg,
		gctx:         gctx,
		window:       window,
		rstate:       rendererState,
		rend:         rend,
		rworker:      rworker,
		captureTaker: captureTaker,
		captureSaver: captureSaver,
		appState:     appstate.NewInactive(),
		sel:          selection.New(),
	}

	window.OnHotkey = a.onScreenshot
	window.OnMouseDown = a.onMouseDown
	window.OnMouseMove = a.onMouseMove
	window.OnMouseUp = a.onMouseUp
	window.OnEscape = a.onEscape
	window.OnEnter = a.onEnter
	window.OnResize = a.onResize
	window.OnClose = a.onShutdown

	for window.PollEvents() {
		if a.appState.Kind == appstate.Exited {
			break
		}
	}

	a.teardownCapture()
	return nil
}

// onScreenshot handles the global hotkey: Inactive -> Loading (spec.md
// §4.7). The capture is taken synchronously on CaptureTaker's thread;
// user input during Loading queues but does not dismiss it.
func (a *app) onScreenshot() {
	if a.appState.Kind != appstate.Inactive {
		return
	}

	a.appState = a.appState.Screenshot(a.window.Handle())

	bundle, err := a.captureTaker.TakeCapture()
	if err != nil {
		a.log.Error("take capture", zap.Error(err))
		a.appState = a.appState.Cancel()
		return
	}
	a.current = &bundle

	a.rstate.SetCapture(bundle.Image)
	a.rstate.SetWindowSize(bundle.Image.Width(), bundle.Image.Height())
	a.window.Show()

	whitepoint, err := a.gctx.scanner.Scan(bundle.Image)
	if err != nil {
		a.log.Error("scan capture", zap.Error(err))
		a.appState = a.appState.Cancel()
		a.teardownCapture()
		return
	}

	wp := scanner.HalfToFloat32(whitepoint)
	if wp < 1 {
		wp = a.cfg.HDRWhitepoint
	}
	a.rstate.SetWhitepoint(wp)
	a.appState = a.appState.ImportedCapture(wp)
	a.rworker.Resize(bundle.Image.Width(), bundle.Image.Height(), gpu.PresentModeFifo)
	a.rworker.Render()
}

func (a *app) onMouseDown(x, y int32) {
	if a.appState.Kind != appstate.Active {
		return
	}
	a.sel.MouseDown(selection.Point{X: x, Y: y})
}

func (a *app) onMouseMove(x, y int32) {
	if a.appState.Kind != appstate.Active {
		return
	}
	a.sel.MouseMove(selection.Point{X: x, Y: y})
	a.rstate.SetMouse(x, y)
	if a.sel.IsSelecting() {
		a.rstate.SetSelection(a.sel.Rect())
	}
	a.rworker.Render()
}

func (a *app) onMouseUp(x, y int32) {
	if a.appState.Kind != appstate.Active {
		return
	}
	if a.sel.MouseUp() {
		a.save()
	}
}

// onEscape cancels Loading or Active back to Inactive (spec.md §4.7).
func (a *app) onEscape() {
	switch a.appState.Kind {
	case appstate.Loading, appstate.Active:
		a.appState = a.appState.Cancel()
		a.teardownCapture()
	}
}

// onEnter triggers Save from Active, same as a completed drag release
// (spec.md §4.7's "Enter or selection-released").
func (a *app) onEnter() {
	if a.appState.Kind == appstate.Active {
		a.save()
	}
}

func (a *app) save() {
	active, ok := a.appState.Active()
	if !ok || a.current == nil {
		return
	}

	rect := active.Selection.Rect()
	if _, err := a.captureSaver.Save(workers.SaveRequest{
		HDR:        a.current.Image,
		Whitepoint: active.Whitepoint,
		Selection:  rect,
	}); err != nil {
		a.log.Error("save capture", zap.Error(err))
	}

	a.appState = a.appState.Save()
	a.teardownCapture()
}

func (a *app) onResize(width, height uint32) {
	a.rstate.SetWindowSize(width, height)
	a.rworker.Resize(width, height, gpu.PresentModeFifo)
}

func (a *app) onShutdown() {
	a.appState = a.appState.Shutdown()
}

// teardownCapture implements spec.md §5's exit-from-Loading/Active
// routine: wait for device idle, destroy the HDR image, return the
// platform token to CaptureTaker for cleanup, hide the window, and reset
// the selection model. Focus is not restored to the previously focused
// window.
func (a *app) teardownCapture() {
	if a.current == nil {
		a.window.Hide()
		return
	}

	if err := a.gctx.device.WaitIdle(); err != nil {
		a.log.Warn("wait idle before capture teardown", zap.Error(err))
	}

	a.rstate.ClearCapture()
	a.rstate.ClearSelection()
	a.sel.Reset()

	token := a.current.Token
	a.current.Image.Destroy()
	a.current = nil

	a.captureTaker.CleanupExternalHandle(token)
	a.window.Hide()
}
