package workers

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/hdrsnip/hdrsnip/internal/gpu"
	"github.com/hdrsnip/hdrsnip/internal/renderer"
)

// rendererMsg is the Renderer thread's message alphabet (spec.md §4.6:
// `{Render, Resize, Shutdown}`).
type rendererMsg struct {
	kind rendererMsgKind

	// resize payload
	width, height uint32
	presentMode   gpu.PresentMode
}

type rendererMsgKind int

const (
	msgRender rendererMsgKind = iota
	msgResize
	msgShutdown
)

// RendererWorker runs internal/renderer.Renderer on its own OS-thread-
// locked goroutine, applying spec.md §4.6's coalescing rule: after a
// blocking recv, the channel is drained non-blockingly, duplicate
// Render/Resize messages collapse to one of each, Shutdown pre-empts
// everything, and any coalesced Resize is applied before any coalesced
// Render.
type RendererWorker struct {
	r     *renderer.Renderer
	state *renderer.State
	msgs  chan rendererMsg
	done  chan struct{}
	log   *zap.Logger
}

// NewRendererWorker starts the Renderer thread. r and state are owned by
// the caller and must outlive the worker.
func NewRendererWorker(r *renderer.Renderer, state *renderer.State, log *zap.Logger) *RendererWorker {
	w := &RendererWorker{
		r:     r,
		state: state,
		msgs:  make(chan rendererMsg, 32),
		done:  make(chan struct{}),
		log:   log,
	}

	go w.run()

	return w
}

func (w *RendererWorker) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)

	for {
		first, ok := <-w.msgs
		if !ok {
			return
		}

		render, resize, shutdown := coalesce(first, w.msgs)

		if shutdown {
			return
		}
		if resize != nil {
			if err := w.r.Resize(resize.width, resize.height, resize.presentMode); err != nil {
				w.log.Error("renderer resize", zap.Error(err))
			}
		}
		if render {
			if err := w.r.Render(w.state.Snapshot()); err != nil {
				w.log.Error("renderer render", zap.Error(err))
			}
		}
	}
}

// coalesce drains pending non-blockingly starting from first, folding
// duplicate Render/Resize messages into a single decision per spec.md
// §4.6/§5: Shutdown always wins; otherwise at most one Resize (the
// latest) is applied before at most one Render.
func coalesce(first rendererMsg, pending <-chan rendererMsg) (render bool, resize *rendererMsg, shutdown bool) {
	apply := func(m rendererMsg) {
		switch m.kind {
		case msgShutdown:
			shutdown = true
		case msgResize:
			resize = &rendererMsg{width: m.width, height: m.height, presentMode: m.presentMode}
		case msgRender:
			render = true
		}
	}

	apply(first)
	for {
		select {
		case m := <-pending:
			apply(m)
		default:
			return
		}
	}
}

// Render posts a Render message (spec.md §4.5's redraw policy: a frame
// is recorded iff a Render message has been received since the last
// present).
func (w *RendererWorker) Render() {
	select {
	case w.msgs <- rendererMsg{kind: msgRender}:
	case <-w.done:
	}
}

// Resize posts a Resize message; coalesced Resize is always applied
// before any coalesced Render (spec.md §4.6).
func (w *RendererWorker) Resize(width, height uint32, presentMode gpu.PresentMode) {
	select {
	case w.msgs <- rendererMsg{kind: msgResize, width: width, height: height, presentMode: presentMode}:
	case <-w.done:
	}
}

// Shutdown posts Shutdown and joins the thread (spec.md §4.6). Shutdown
// pre-empts any other pending message once observed.
func (w *RendererWorker) Shutdown() {
	select {
	case w.msgs <- rendererMsg{kind: msgShutdown}:
	case <-w.done:
		return
	}
	<-w.done
}
