// Package tonemap implements the tonemapper of spec.md §4.4: a compute
// shader that normalizes an HDR scRGB image against a whitepoint, clamps,
// applies sRGB gamma encoding, and quantizes to an 8-bit SDR image. It
// also exposes the host-readback contract ("tonemap and copy a rectangle
// to host memory") used by the capture-save path.
//
// Grounded on the same compute-pipeline idiom as internal/scanner
// (examples/compute-sum/main.go), with host readback following
// Queue.ReadBuffer (queue.go) via a staging buffer, as the teacher's own
// compute-sum example reads results back through a dedicated staging
// buffer rather than mapping the storage buffer directly.
package tonemap

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hdrsnip/hdrsnip/internal/gpu"
	"github.com/hdrsnip/hdrsnip/internal/hdrimage"
)

const workgroupTile = 32

// OutOfBounds is returned by ReadRect when the requested rectangle does
// not fit within the image extent.
type OutOfBounds struct {
	X, Y, Width, Height   uint32
	ImageWidth, ImageHeight uint32
}

func (e OutOfBounds) Error() string {
	return fmt.Sprintf("tonemap: rect (%d,%d,%d,%d) out of bounds for %dx%d image",
		e.X, e.Y, e.Width, e.Height, e.ImageWidth, e.ImageHeight)
}

// Tonemapper is constructed once and reused across captures (spec.md
// §4.4's liveness note): it holds only its pipeline and descriptor
// layouts, not per-capture buffers.
type Tonemapper struct {
	device *gpu.Device

	layout       *gpu.BindGroupLayout
	pipeLayout   *gpu.PipelineLayout
	shader       *gpu.ShaderModule
	pipeline     *gpu.ComputePipeline
}

// New creates a Tonemapper.
func New(device *gpu.Device) (*Tonemapper, error) {
	t := &Tonemapper{device: device}

	layout, err := device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "tonemap-bgl",
		Entries: []gpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gpu.ShaderStageCompute,
				Storage: &gpu.StorageTextureBindingLayout{
					Access:        gpu.StorageTextureAccessReadOnly,
					Format:        gpu.TextureFormatRGBA16Float,
					ViewDimension: gpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gpu.ShaderStageCompute,
				Storage: &gpu.StorageTextureBindingLayout{
					Access:        gpu.StorageTextureAccessWriteOnly,
					Format:        gpu.TextureFormatRGBA8Unorm,
					ViewDimension: gpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gpu.ShaderStageCompute,
				Buffer:     &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("tonemap: create bind group layout: %w", err)
	}
	t.layout = layout

	pipeLayout, err := device.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{
		Label:            "tonemap-pl",
		BindGroupLayouts: []*gpu.BindGroupLayout{layout},
	})
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("tonemap: create pipeline layout: %w", err)
	}
	t.pipeLayout = pipeLayout

	shader, err := device.CreateShaderModule(&gpu.ShaderModuleDescriptor{
		Label: "tonemap-shader",
		WGSL:  tonemapWGSL,
	})
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("tonemap: create shader: %w", err)
	}
	t.shader = shader

	pipeline, err := device.CreateComputePipeline(&gpu.ComputePipelineDescriptor{
		Label:      "tonemap-pipeline",
		Layout:     pipeLayout,
		Module:     shader,
		EntryPoint: "main",
	})
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("tonemap: create pipeline: %w", err)
	}
	t.pipeline = pipeline

	return t, nil
}

// Release destroys the tonemapper's pipeline and layouts.
func (t *Tonemapper) Release() {
	if t == nil {
		return
	}
	if t.pipeline != nil {
		t.pipeline.Release()
	}
	if t.shader != nil {
		t.shader.Release()
	}
	if t.pipeLayout != nil {
		t.pipeLayout.Release()
	}
	if t.layout != nil {
		t.layout.Release()
	}
}

// whitepointParams mirrors the compute shader's uniform Params struct.
type whitepointParams struct {
	Whitepoint float32
}

func (p whitepointParams) bytes() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(p.Whitepoint))
	return buf
}

// Tonemap applies the per-pixel rule of spec.md §4.4 to hdr, writing the
// result into sdr. hdr and sdr must share the same extent.
func (t *Tonemapper) Tonemap(hdr *hdrimage.HdrImage, sdr *hdrimage.SdrImage, whitepoint float32) error {
	if hdr.Width() != sdr.Width() || hdr.Height() != sdr.Height() {
		return fmt.Errorf("tonemap: extent mismatch: hdr %dx%d, sdr %dx%d",
			hdr.Width(), hdr.Height(), sdr.Width(), sdr.Height())
	}

	paramsBuf, err := t.device.CreateBuffer(&gpu.BufferDescriptor{
		Label: "tonemap-params",
		Size:  4,
		Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("tonemap: create params buffer: %w", err)
	}
	defer paramsBuf.Release()

	if err := t.device.Queue().WriteBuffer(paramsBuf, 0, whitepointParams{Whitepoint: whitepoint}.bytes()); err != nil {
		return fmt.Errorf("tonemap: write params: %w", err)
	}

	bindGroup, err := t.device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:  "tonemap-bg",
		Layout: t.layout,
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, TextureView: hdr.View()},
			{Binding: 1, TextureView: sdr.View()},
			{Binding: 2, Buffer: paramsBuf, Size: 4},
		},
	})
	if err != nil {
		return fmt.Errorf("tonemap: create bind group: %w", err)
	}
	defer bindGroup.Release()

	encoder, err := t.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("tonemap: create encoder: %w", err)
	}

	pass, err := encoder.BeginComputePass(nil)
	if err != nil {
		return fmt.Errorf("tonemap: begin compute pass: %w", err)
	}
	pass.SetPipeline(t.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch(divCeil(hdr.Width(), workgroupTile), divCeil(hdr.Height(), workgroupTile), 1)
	if err := pass.End(); err != nil {
		return fmt.Errorf("tonemap: end compute pass: %w", err)
	}

	cmdBuf, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("tonemap: finish encoder: %w", err)
	}

	return t.device.Queue().Submit(cmdBuf)
}

// ReadRect copies the rectangle (x,y,w,h) of sdr to host memory, returning
// w*h*4 bytes in row-major RGBA order with no row padding (spec.md §4.4's
// host-readback contract). sdr must already hold a tonemapped image.
func (t *Tonemapper) ReadRect(sdr *hdrimage.SdrImage, x, y, w, h uint32) ([]byte, error) {
	if w == 0 || h == 0 || x+w > sdr.Width() || y+h > sdr.Height() {
		return nil, OutOfBounds{X: x, Y: y, Width: w, Height: h, ImageWidth: sdr.Width(), ImageHeight: sdr.Height()}
	}

	bytesPerRow := w * 4
	stagingSize := uint64(bytesPerRow) * uint64(h)

	staging, err := t.device.CreateBuffer(&gpu.BufferDescriptor{
		Label: "tonemap-readback",
		Size:  stagingSize,
		Usage: gpu.BufferUsageCopyDst | gpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, fmt.Errorf("tonemap: create staging buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := t.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("tonemap: create encoder: %w", err)
	}

	encoder.CopyTextureToBuffer(
		sdr.Texture(),
		gpu.Origin3D{X: x, Y: y, Z: 0},
		gpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		staging, 0, bytesPerRow,
	)

	cmdBuf, err := encoder.Finish()
	if err != nil {
		return nil, fmt.Errorf("tonemap: finish encoder: %w", err)
	}

	if err := t.device.Queue().Submit(cmdBuf); err != nil {
		return nil, fmt.Errorf("tonemap: submit: %w", err)
	}

	result := make([]byte, stagingSize)
	if err := t.device.Queue().ReadBuffer(staging, 0, result); err != nil {
		return nil, fmt.Errorf("tonemap: read buffer: %w", err)
	}

	return result, nil
}

func divCeil(a, b uint32) uint32 {
	return (a + b - 1) / b
}
