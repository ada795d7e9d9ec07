// Package renderer implements the swapchain + renderer of spec.md §4.5:
// a per-frame draw sequence over three pipelines (capture, selection,
// line) recorded from a single immutable Snapshot of State.
//
// Grounded on internal/gpu/surface.go's acquire/configure/present cycle
// and on the render-pipeline construction sequence in
// examples/cmd/vulkan-triangle/main.go (shader modules -> pipeline
// layout -> render pipeline -> per-frame BeginRenderPass/Draw/End). Push
// constants (spec.md §4.5's "push constant" wording for per-draw
// parameters) are substituted with uniform buffers, the same
// ComputePassEncoder API-gap workaround used by internal/scanner and
// internal/tonemap: render pipelines have no push-constant call either.
package renderer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hdrsnip/hdrsnip/internal/gpu"
)

// lineParamsStride is the per-draw stride into the line params buffer.
// 256 bytes satisfies typical minimum uniform-buffer dynamic-offset
// alignment (Vulkan's minUniformBufferOffsetAlignment commonly reports
// 256 on desktop GPUs); actual struct content is much smaller.
const lineParamsStride = 256

// maxLineDraws bounds the per-frame line params buffer: 4 selection
// border edges + 2 mouse crosshair guides (spec.md §4.5).
const maxLineDraws = 6

// Renderer owns the three draw pipelines and the swapchain surface
// (spec.md §4.5). It is constructed once and driven by the Renderer
// worker thread (internal/workers), which reads State under lock into
// a Snapshot once per frame before calling Render.
type Renderer struct {
	device  *gpu.Device
	surface *gpu.Surface
	format  gpu.TextureFormat

	sampler *gpu.Sampler

	captureLayout *gpu.BindGroupLayout
	capturePL     *gpu.PipelineLayout
	captureShader *gpu.ShaderModule
	capturePipe   *gpu.RenderPipeline

	selectionLayout *gpu.BindGroupLayout
	selectionPL     *gpu.PipelineLayout
	selectionShader *gpu.ShaderModule
	selectionPipe   *gpu.RenderPipeline

	lineLayout *gpu.BindGroupLayout
	linePL     *gpu.PipelineLayout
	lineShader *gpu.ShaderModule
	linePipe   *gpu.RenderPipeline
}

// New builds the Renderer's three pipelines against the given surface
// and the colour format the caller configured it with. New uses format
// as given; it does not query the surface or try other candidate formats.
func New(device *gpu.Device, surface *gpu.Surface, format gpu.TextureFormat) (*Renderer, error) {
	r := &Renderer{device: device, surface: surface, format: format}

	sampler, err := device.CreateSampler(&gpu.SamplerDescriptor{
		Label:        "renderer-capture-sampler",
		AddressModeU: gpu.AddressModeClampToEdge,
		AddressModeV: gpu.AddressModeClampToEdge,
		MagFilter:    gpu.FilterModeLinear,
		MinFilter:    gpu.FilterModeLinear,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create sampler: %w", err)
	}
	r.sampler = sampler

	if err := r.buildCapturePipeline(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.buildSelectionPipeline(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.buildLinePipeline(); err != nil {
		r.Release()
		return nil, err
	}

	return r, nil
}

func (r *Renderer) colorTarget() gpu.ColorTargetState {
	return gpu.ColorTargetState{
		Format: r.format,
		Blend: &gpu.BlendState{
			Color: gpu.BlendComponent{SrcFactor: gpu.BlendFactorSrcAlpha, DstFactor: gpu.BlendFactorOneMinusSrcAlpha, Operation: gpu.BlendOperationAdd},
			Alpha: gpu.BlendComponent{SrcFactor: gpu.BlendFactorOne, DstFactor: gpu.BlendFactorOneMinusSrcAlpha, Operation: gpu.BlendOperationAdd},
		},
		WriteMask: gpu.ColorWriteMaskAll,
	}
}

func (r *Renderer) buildCapturePipeline() error {
	layout, err := r.device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "renderer-capture-bgl",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gpu.ShaderStageFragment, Texture: &gpu.TextureBindingLayout{SampleType: gpu.TextureSampleTypeFloat, ViewDimension: gpu.TextureViewDimension2D}},
			{Binding: 1, Visibility: gpu.ShaderStageFragment, Sampler: &gpu.SamplerBindingLayout{Type: gpu.SamplerBindingTypeFiltering}},
			{Binding: 2, Visibility: gpu.ShaderStageFragment, Buffer: &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeUniform}},
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: create capture bgl: %w", err)
	}
	r.captureLayout = layout

	pl, err := r.device.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{Label: "renderer-capture-pl", BindGroupLayouts: []*gpu.BindGroupLayout{layout}})
	if err != nil {
		return fmt.Errorf("renderer: create capture pl: %w", err)
	}
	r.capturePL = pl

	shader, err := r.device.CreateShaderModule(&gpu.ShaderModuleDescriptor{Label: "renderer-capture-shader", WGSL: captureWGSL})
	if err != nil {
		return fmt.Errorf("renderer: create capture shader: %w", err)
	}
	r.captureShader = shader

	pipe, err := r.device.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Label:     "renderer-capture-pipeline",
		Layout:    pl,
		Vertex:    gpu.VertexState{Module: shader, EntryPoint: "vs_main"},
		Primitive: gpu.PrimitiveState{Topology: gpu.PrimitiveTopologyTriangleList, FrontFace: gpu.FrontFaceCCW, CullMode: gpu.CullModeNone},
		Multisample: gpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Fragment:  &gpu.FragmentState{Module: shader, EntryPoint: "fs_main", Targets: []gpu.ColorTargetState{{Format: r.format, WriteMask: gpu.ColorWriteMaskAll}}},
	})
	if err != nil {
		return fmt.Errorf("renderer: create capture pipeline: %w", err)
	}
	r.capturePipe = pipe
	return nil
}

func (r *Renderer) buildSelectionPipeline() error {
	layout, err := r.device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "renderer-selection-bgl",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gpu.ShaderStageFragment, Buffer: &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeUniform}},
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: create selection bgl: %w", err)
	}
	r.selectionLayout = layout

	pl, err := r.device.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{Label: "renderer-selection-pl", BindGroupLayouts: []*gpu.BindGroupLayout{layout}})
	if err != nil {
		return fmt.Errorf("renderer: create selection pl: %w", err)
	}
	r.selectionPL = pl

	shader, err := r.device.CreateShaderModule(&gpu.ShaderModuleDescriptor{Label: "renderer-selection-shader", WGSL: selectionWGSL})
	if err != nil {
		return fmt.Errorf("renderer: create selection shader: %w", err)
	}
	r.selectionShader = shader

	pipe, err := r.device.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Label:       "renderer-selection-pipeline",
		Layout:      pl,
		Vertex:      gpu.VertexState{Module: shader, EntryPoint: "vs_main"},
		Primitive:   gpu.PrimitiveState{Topology: gpu.PrimitiveTopologyTriangleList, FrontFace: gpu.FrontFaceCCW, CullMode: gpu.CullModeNone},
		Multisample: gpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Fragment:    &gpu.FragmentState{Module: shader, EntryPoint: "fs_main", Targets: []gpu.ColorTargetState{r.colorTarget()}},
	})
	if err != nil {
		return fmt.Errorf("renderer: create selection pipeline: %w", err)
	}
	r.selectionPipe = pipe
	return nil
}

func (r *Renderer) buildLinePipeline() error {
	layout, err := r.device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "renderer-line-bgl",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gpu.ShaderStageVertex | gpu.ShaderStageFragment, Buffer: &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeUniform, HasDynamicOffset: true}},
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: create line bgl: %w", err)
	}
	r.lineLayout = layout

	pl, err := r.device.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{Label: "renderer-line-pl", BindGroupLayouts: []*gpu.BindGroupLayout{layout}})
	if err != nil {
		return fmt.Errorf("renderer: create line pl: %w", err)
	}
	r.linePL = pl

	shader, err := r.device.CreateShaderModule(&gpu.ShaderModuleDescriptor{Label: "renderer-line-shader", WGSL: lineWGSL})
	if err != nil {
		return fmt.Errorf("renderer: create line shader: %w", err)
	}
	r.lineShader = shader

	pipe, err := r.device.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Label:       "renderer-line-pipeline",
		Layout:      pl,
		Vertex:      gpu.VertexState{Module: shader, EntryPoint: "vs_main"},
		Primitive:   gpu.PrimitiveState{Topology: gpu.PrimitiveTopologyTriangleList, FrontFace: gpu.FrontFaceCCW, CullMode: gpu.CullModeNone},
		Multisample: gpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Fragment:    &gpu.FragmentState{Module: shader, EntryPoint: "fs_main", Targets: []gpu.ColorTargetState{r.colorTarget()}},
	})
	if err != nil {
		return fmt.Errorf("renderer: create line pipeline: %w", err)
	}
	r.linePipe = pipe
	return nil
}

// Release tears down the renderer's pipelines, layouts, shaders and
// sampler. The caller must have already waited for the device to be
// idle (spec.md §5's destruction discipline).
func (r *Renderer) Release() {
	if r == nil {
		return
	}
	releasePipe(r.linePipe, r.lineShader, r.linePL, r.lineLayout)
	releasePipe(r.selectionPipe, r.selectionShader, r.selectionPL, r.selectionLayout)
	releaseCapturePipe(r.capturePipe, r.captureShader, r.capturePL, r.captureLayout)
	if r.sampler != nil {
		r.sampler.Release()
	}
}

func releasePipe(pipe *gpu.RenderPipeline, shader *gpu.ShaderModule, pl *gpu.PipelineLayout, layout *gpu.BindGroupLayout) {
	if pipe != nil {
		pipe.Release()
	}
	if shader != nil {
		shader.Release()
	}
	if pl != nil {
		pl.Release()
	}
	if layout != nil {
		layout.Release()
	}
}

func releaseCapturePipe(pipe *gpu.RenderPipeline, shader *gpu.ShaderModule, pl *gpu.PipelineLayout, layout *gpu.BindGroupLayout) {
	releasePipe(pipe, shader, pl, layout)
}

// Resize reconfigures the surface for a new window extent (spec.md
// §4.5's rebuild condition: explicit resize request).
func (r *Renderer) Resize(width, height uint32, presentMode gpu.PresentMode) error {
	return r.surface.Configure(r.device, &gpu.SurfaceConfiguration{
		Width:       width,
		Height:      height,
		Format:      r.format,
		Usage:       gpu.TextureUsageRenderAttachment,
		PresentMode: presentMode,
	})
}

type f32Pair struct{ x, y float32 }

func putF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}

func putF32Pair(buf []byte, off int, p f32Pair) {
	putF32(buf, off, p.x)
	putF32(buf, off+4, p.y)
}

// lineDraw is one line-pipeline draw: a screen-aligned rectangle of
// width physical pixels between start and end, filled with color
// (straight rgba in [0,1]).
type lineDraw struct {
	start, end f32Pair
	width      float32
	color      [4]float32
}

func (d lineDraw) bytes(windowWidth, windowHeight float32) []byte {
	buf := make([]byte, lineParamsStride)
	putF32Pair(buf, 0, d.start)
	putF32Pair(buf, 8, d.end)
	putF32(buf, 16, d.width)
	for i, c := range d.color {
		putF32(buf, 32+i*4, c)
	}
	putF32Pair(buf, 48, f32Pair{windowWidth, windowHeight})
	return buf
}

// buildLineDraws assembles spec.md §4.5's line pipeline draws: the four
// selection border edges (white, 4px, overhang so corners are square)
// when a selection is active, plus the two mouse crosshair guides
// (50% grey, 25% alpha, 1px) always present once a capture is loaded.
func buildLineDraws(s Snapshot) []lineDraw {
	var draws []lineDraw

	if s.SelectionActive {
		const borderWidth = 4
		white := [4]float32{1, 1, 1, 1}
		left, top := float32(s.SelectionRect.Left), float32(s.SelectionRect.Top)
		right, bottom := float32(s.SelectionRect.Right), float32(s.SelectionRect.Bottom)

		draws = append(draws,
			lineDraw{start: f32Pair{left, top}, end: f32Pair{right, top}, width: borderWidth, color: white},
			lineDraw{start: f32Pair{left, bottom}, end: f32Pair{right, bottom}, width: borderWidth, color: white},
			lineDraw{start: f32Pair{left, top}, end: f32Pair{left, bottom}, width: borderWidth, color: white},
			lineDraw{start: f32Pair{right, top}, end: f32Pair{right, bottom}, width: borderWidth, color: white},
		)
	}

	if s.CaptureLoaded {
		grey := [4]float32{0.5, 0.5, 0.5, 0.25}
		w, h := float32(s.WindowWidth), float32(s.WindowHeight)
		mx, my := float32(s.MouseX), float32(s.MouseY)

		draws = append(draws,
			lineDraw{start: f32Pair{0, my}, end: f32Pair{w, my}, width: 1, color: grey},
			lineDraw{start: f32Pair{mx, 0}, end: f32Pair{mx, h}, width: 1, color: grey},
		)
	}

	return draws
}

// Render records and presents one frame from snapshot (spec.md §4.5's
// frame record): acquire, clear, capture pipeline if loaded, selection
// overlay, border/crosshair lines, present.
func (r *Renderer) Render(snapshot Snapshot) error {
	surfaceTexture, suboptimal, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("renderer: acquire: %w", err)
	}
	_ = suboptimal // surface rebuild on suboptimal is the caller's Resize responsibility

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("renderer: create swapchain view: %w", err)
	}

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("renderer: create encoder: %w", err)
	}

	pass, err := encoder.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label: "renderer-frame",
		ColorAttachments: []gpu.RenderPassColorAttachment{
			{View: view, LoadOp: gpu.LoadOpClear, StoreOp: gpu.StoreOpStore, ClearValue: gpu.Color{R: 0, G: 0, B: 0, A: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: begin render pass: %w", err)
	}

	var releaseFns []func()
	defer func() {
		for _, fn := range releaseFns {
			fn()
		}
	}()

	if snapshot.CaptureLoaded && snapshot.CaptureView != nil {
		if err := r.drawCapture(pass, snapshot, &releaseFns); err != nil {
			return err
		}
	}

	if snapshot.SelectionActive {
		if err := r.drawSelection(pass, snapshot, &releaseFns); err != nil {
			return err
		}
	}

	if err := r.drawLines(pass, snapshot, &releaseFns); err != nil {
		return err
	}

	if err := pass.End(); err != nil {
		return fmt.Errorf("renderer: end render pass: %w", err)
	}

	cmdBuf, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("renderer: finish encoder: %w", err)
	}

	if err := r.device.Queue().Submit(cmdBuf); err != nil {
		return fmt.Errorf("renderer: submit: %w", err)
	}

	return r.surface.Present(surfaceTexture)
}

func (r *Renderer) drawCapture(pass *gpu.RenderPassEncoder, snapshot Snapshot, releaseFns *[]func()) error {
	paramsBuf, err := r.device.CreateBuffer(&gpu.BufferDescriptor{Label: "renderer-capture-params", Size: 16, Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst})
	if err != nil {
		return fmt.Errorf("renderer: create capture params: %w", err)
	}
	*releaseFns = append(*releaseFns, paramsBuf.Release)

	buf := make([]byte, 16)
	putF32(buf, 0, snapshot.Whitepoint)
	if err := r.device.Queue().WriteBuffer(paramsBuf, 0, buf); err != nil {
		return fmt.Errorf("renderer: write capture params: %w", err)
	}

	bindGroup, err := r.device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:  "renderer-capture-bg",
		Layout: r.captureLayout,
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, TextureView: snapshot.CaptureView.View()},
			{Binding: 1, Sampler: r.sampler},
			{Binding: 2, Buffer: paramsBuf, Size: 16},
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: create capture bind group: %w", err)
	}
	*releaseFns = append(*releaseFns, bindGroup.Release)

	pass.SetPipeline(r.capturePipe)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	return nil
}

func (r *Renderer) drawSelection(pass *gpu.RenderPassEncoder, snapshot Snapshot, releaseFns *[]func()) error {
	paramsBuf, err := r.device.CreateBuffer(&gpu.BufferDescriptor{Label: "renderer-selection-params", Size: 16, Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst})
	if err != nil {
		return fmt.Errorf("renderer: create selection params: %w", err)
	}
	*releaseFns = append(*releaseFns, paramsBuf.Release)

	buf := make([]byte, 16)
	putF32Pair(buf, 0, f32Pair{float32(snapshot.SelectionRect.Left), float32(snapshot.SelectionRect.Top)})
	putF32Pair(buf, 8, f32Pair{float32(snapshot.SelectionRect.Right), float32(snapshot.SelectionRect.Bottom)})
	if err := r.device.Queue().WriteBuffer(paramsBuf, 0, buf); err != nil {
		return fmt.Errorf("renderer: write selection params: %w", err)
	}

	bindGroup, err := r.device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:   "renderer-selection-bg",
		Layout:  r.selectionLayout,
		Entries: []gpu.BindGroupEntry{{Binding: 0, Buffer: paramsBuf, Size: 16}},
	})
	if err != nil {
		return fmt.Errorf("renderer: create selection bind group: %w", err)
	}
	*releaseFns = append(*releaseFns, bindGroup.Release)

	pass.SetPipeline(r.selectionPipe)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	return nil
}

func (r *Renderer) drawLines(pass *gpu.RenderPassEncoder, snapshot Snapshot, releaseFns *[]func()) error {
	draws := buildLineDraws(snapshot)
	if len(draws) == 0 {
		return nil
	}
	if len(draws) > maxLineDraws {
		draws = draws[:maxLineDraws]
	}

	paramsBuf, err := r.device.CreateBuffer(&gpu.BufferDescriptor{
		Label: "renderer-line-params",
		Size:  uint64(maxLineDraws * lineParamsStride),
		Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("renderer: create line params: %w", err)
	}
	*releaseFns = append(*releaseFns, paramsBuf.Release)

	for i, d := range draws {
		if err := r.device.Queue().WriteBuffer(paramsBuf, uint64(i*lineParamsStride), d.bytes(float32(snapshot.WindowWidth), float32(snapshot.WindowHeight))); err != nil {
			return fmt.Errorf("renderer: write line params[%d]: %w", i, err)
		}
	}

	bindGroup, err := r.device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:   "renderer-line-bg",
		Layout:  r.lineLayout,
		Entries: []gpu.BindGroupEntry{{Binding: 0, Buffer: paramsBuf, Size: lineParamsStride}},
	})
	if err != nil {
		return fmt.Errorf("renderer: create line bind group: %w", err)
	}
	*releaseFns = append(*releaseFns, bindGroup.Release)

	pass.SetPipeline(r.linePipe)
	for i := range draws {
		pass.SetBindGroup(0, bindGroup, []uint32{uint32(i * lineParamsStride)})
		pass.Draw(6, 1, 0, 0)
	}
	return nil
}
