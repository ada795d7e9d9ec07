package workers

import (
	"time"

	"go.uber.org/zap"

	"github.com/hdrsnip/hdrsnip/internal/clipboard"
	"github.com/hdrsnip/hdrsnip/internal/gpu"
	"github.com/hdrsnip/hdrsnip/internal/hdrimage"
	"github.com/hdrsnip/hdrsnip/internal/pngsave"
	"github.com/hdrsnip/hdrsnip/internal/selection"
	"github.com/hdrsnip/hdrsnip/internal/thread"
	"github.com/hdrsnip/hdrsnip/internal/tonemap"
)

// SaveRequest is CaptureSaver's single message type (spec.md §4.6:
// `Save(hdr, whitepoint, selection)`).
type SaveRequest struct {
	HDR        *hdrimage.HdrImage
	Whitepoint float32
	Selection  selection.Rect
}

// CaptureSaver tonemaps the selected rectangle, writes it to disk as a
// PNG, and publishes it to the clipboard (spec.md §4.6). Any failure is
// reported and the thread continues. A clipboard failure is logged and
// does not fail the save; the clipboard is only tried after the PNG
// write succeeded.
type CaptureSaver struct {
	th         *thread.Thread
	device     *gpu.Device
	tonemapper *tonemap.Tonemapper
	dir        string
	log        *zap.Logger
}

// NewCaptureSaver starts the CaptureSaver thread. device and tonemapper
// are owned by the caller and must outlive the CaptureSaver (spec.md
// §4.4's liveness note: pipelines are reused across captures).
func NewCaptureSaver(device *gpu.Device, tonemapper *tonemap.Tonemapper, dir string, log *zap.Logger) *CaptureSaver {
	return &CaptureSaver{
		th:         thread.New(),
		device:     device,
		tonemapper: tonemapper,
		dir:        dir,
		log:        log,
	}
}

// Save tonemaps hdr against whitepoint, copies the selected rectangle to
// host memory, writes it to disk, and attempts clipboard publication
// (spec.md §4.6). Runs synchronously on the CaptureSaver thread and
// returns the written path, if the PNG write succeeded.
func (cs *CaptureSaver) Save(req SaveRequest) (string, error) {
	result := cs.th.Call(func() any {
		return cs.save(req)
	})
	r := result.(saveResult)
	return r.path, r.err
}

type saveResult struct {
	path string
	err  error
}

func (cs *CaptureSaver) save(req SaveRequest) saveResult {
	sdr, err := hdrimage.NewSdrImage(cs.device, req.HDR.Width(), req.HDR.Height())
	if err != nil {
		return saveResult{err: err}
	}
	defer sdr.Destroy()

	if err := cs.tonemapper.Tonemap(req.HDR, sdr, req.Whitepoint); err != nil {
		return saveResult{err: err}
	}

	x, y := uint32(req.Selection.Left), uint32(req.Selection.Top)
	w, h := uint32(req.Selection.Right-req.Selection.Left), uint32(req.Selection.Bottom-req.Selection.Top)

	rgba, err := cs.tonemapper.ReadRect(sdr, x, y, w, h)
	if err != nil {
		return saveResult{err: err}
	}

	path, err := pngsave.Save(cs.dir, int(w), int(h), rgba, time.Now())
	if err != nil {
		return saveResult{err: err}
	}
	cs.log.Info("saved screenshot", zap.String("path", path))

	if err := clipboard.Publish(int(w), int(h), rgba); err != nil {
		cs.log.Warn("clipboard publish failed", zap.Error(err))
	}

	return saveResult{path: path}
}

// Shutdown stops the CaptureSaver thread, joining it (spec.md §4.6).
func (cs *CaptureSaver) Shutdown() {
	cs.th.Stop()
}
