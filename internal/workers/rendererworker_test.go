package workers

import "testing"

func TestCoalesce_RenderRenderResizeRender(t *testing.T) {
	ch := make(chan rendererMsg, 8)
	ch <- rendererMsg{kind: msgRender}
	ch <- rendererMsg{kind: msgResize, width: 800, height: 600}
	ch <- rendererMsg{kind: msgRender}

	first := <-ch
	render, resize, shutdown := coalesce(first, ch)

	if shutdown {
		t.Fatal("expected no shutdown")
	}
	if !render {
		t.Fatal("expected a coalesced Render")
	}
	if resize == nil || resize.width != 800 || resize.height != 600 {
		t.Fatalf("expected coalesced Resize(800,600), got %+v", resize)
	}
}

func TestCoalesce_ShutdownPreempts(t *testing.T) {
	ch := make(chan rendererMsg, 8)
	ch <- rendererMsg{kind: msgRender}
	ch <- rendererMsg{kind: msgShutdown}
	ch <- rendererMsg{kind: msgRender}

	first := <-ch
	_, _, shutdown := coalesce(first, ch)

	if !shutdown {
		t.Fatal("expected Shutdown to win when present among coalesced messages")
	}
}

func TestCoalesce_SingleRender(t *testing.T) {
	ch := make(chan rendererMsg, 8)
	first := rendererMsg{kind: msgRender}

	render, resize, shutdown := coalesce(first, ch)
	if !render || resize != nil || shutdown {
		t.Fatalf("unexpected coalesce result: render=%v resize=%v shutdown=%v", render, resize, shutdown)
	}
}
