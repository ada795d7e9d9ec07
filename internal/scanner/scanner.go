// Package scanner implements the maximum-value scanner of spec.md §4.3: a
// two-stage GPU parallel reduction that finds the brightest colour
// component (R, G, or B; alpha excluded) across an entire HDR image.
//
// The algorithm mirrors the teacher corpus's compute-pipeline idiom
// (examples/compute-sum/main.go): bind group layout -> bind group ->
// pipeline layout -> compute pipeline -> encoder -> dispatch -> readback.
// Stage one (the image pass) reduces the source texture into an
// intermediate buffer, one half-float per subgroup. Stage two (the buffer
// pass) repeatedly folds that buffer down by a further factor of
// subgroupSize, swapping read/write buffers, until a single element
// remains.
package scanner

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hdrsnip/hdrsnip/internal/gpu"
	"github.com/hdrsnip/hdrsnip/internal/hdrimage"
)

// defaultSubgroupSize is used when the caller does not know the device's
// reported subgroup size. gputypes exposes no subgroup-size query (unlike
// the Vulkan instance this was grounded on, which reads
// VkPhysicalDeviceSubgroupProperties directly) so New takes it as an
// explicit parameter; 32 matches the common NVIDIA/Intel warp/wave size.
const defaultSubgroupSize = 32

// imageWorkgroupSize is the compute workgroup's invocation count (16x16),
// matching the original image scanner's dispatch tiling: each workgroup
// covers a 32x32 texel tile, each invocation loading a 2x2 quad (4 texels).
const imageWorkgroupSize = 16 * 16

// bufferWorkgroupSize is the buffer pass's invocation count per workgroup.
const bufferWorkgroupSize = 128

// EmptyInput is returned when the input extent is zero on either axis.
type EmptyInput struct{}

func (EmptyInput) Error() string { return "scanner: empty input extent" }

// Scanner finds the maximum colour component of an HDR image via a
// two-stage GPU reduction. It is constructed once and reused across scans
// (spec.md §4.4's liveness note for the tonemapper applies equally here:
// only pipelines and layouts are held, no per-scan buffers).
type Scanner struct {
	device       *gpu.Device
	subgroupSize uint32

	imageLayout    *gpu.BindGroupLayout
	imagePipeLayout *gpu.PipelineLayout
	imageShader    *gpu.ShaderModule
	imagePipeline  *gpu.ComputePipeline

	bufferLayout    *gpu.BindGroupLayout
	bufferPipeLayout *gpu.PipelineLayout
	bufferShader    *gpu.ShaderModule
	bufferPipeline  *gpu.ComputePipeline
}

// New creates a Scanner. subgroupSize is the device's reported subgroup
// (warp/wave) size; if zero, defaultSubgroupSize is assumed.
func New(device *gpu.Device, subgroupSize uint32) (*Scanner, error) {
	if subgroupSize == 0 {
		subgroupSize = defaultSubgroupSize
	}

	s := &Scanner{device: device, subgroupSize: subgroupSize}

	if err := s.buildImagePass(); err != nil {
		return nil, fmt.Errorf("scanner: image pass: %w", err)
	}
	if err := s.buildBufferPass(); err != nil {
		s.releaseImagePass()
		return nil, fmt.Errorf("scanner: buffer pass: %w", err)
	}

	return s, nil
}

func (s *Scanner) buildImagePass() error {
	layout, err := s.device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "scanner-image-bgl",
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
				Buffer:     &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeStorage},
			},
		},
	})
	if err != nil {
		return err
	}
	s.imageLayout = layout

	pipeLayout, err := s.device.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{
		Label:            "scanner-image-pl",
		BindGroupLayouts: []*gpu.BindGroupLayout{layout},
	})
	if err != nil {
		return err
	}
	s.imagePipeLayout = pipeLayout

	shader, err := s.device.CreateShaderModule(&gpu.ShaderModuleDescriptor{
		Label: "scanner-image-shader",
		WGSL:  imageReductionWGSL,
	})
	if err != nil {
		return err
	}
	s.imageShader = shader

	pipeline, err := s.device.CreateComputePipeline(&gpu.ComputePipelineDescriptor{
		Label:      "scanner-image-pipeline",
		Layout:     pipeLayout,
		Module:     shader,
		EntryPoint: "main",
	})
	if err != nil {
		return err
	}
	s.imagePipeline = pipeline

	return nil
}

func (s *Scanner) buildBufferPass() error {
	layout, err := s.device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "scanner-buffer-bgl",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gpu.ShaderStageCompute, Buffer: &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 1, Visibility: gpu.ShaderStageCompute, Buffer: &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeStorage}},
			{Binding: 2, Visibility: gpu.ShaderStageCompute, Buffer: &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeUniform}},
		},
	})
	if err != nil {
		return err
	}
	s.bufferLayout = layout

	pipeLayout, err := s.device.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{
		Label:            "scanner-buffer-pl",
		BindGroupLayouts: []*gpu.BindGroupLayout{layout},
	})
	if err != nil {
		return err
	}
	s.bufferPipeLayout = pipeLayout

	shader, err := s.device.CreateShaderModule(&gpu.ShaderModuleDescriptor{
		Label: "scanner-buffer-shader",
		WGSL:  bufferReductionWGSL,
	})
	if err != nil {
		return err
	}
	s.bufferShader = shader

	pipeline, err := s.device.CreateComputePipeline(&gpu.ComputePipelineDescriptor{
		Label:      "scanner-buffer-pipeline",
		Layout:     pipeLayout,
		Module:     shader,
		EntryPoint: "main",
	})
	if err != nil {
		return err
	}
	s.bufferPipeline = pipeline

	return nil
}

func (s *Scanner) releaseImagePass() {
	if s.imagePipeline != nil {
		s.imagePipeline.Release()
	}
	if s.imageShader != nil {
		s.imageShader.Release()
	}
	if s.imagePipeLayout != nil {
		s.imagePipeLayout.Release()
	}
	if s.imageLayout != nil {
		s.imageLayout.Release()
	}
}

func (s *Scanner) releaseBufferPass() {
	if s.bufferPipeline != nil {
		s.bufferPipeline.Release()
	}
	if s.bufferShader != nil {
		s.bufferShader.Release()
	}
	if s.bufferPipeLayout != nil {
		s.bufferPipeLayout.Release()
	}
	if s.bufferLayout != nil {
		s.bufferLayout.Release()
	}
}

// Release destroys the scanner's pipelines and layouts.
func (s *Scanner) Release() {
	if s == nil {
		return
	}
	s.releaseBufferPass()
	s.releaseImagePass()
}

// imageDispatch returns the image pass's workgroup dispatch count.
func imageDispatch(width, height uint32) (x, y uint32) {
	x = divCeil(width, 32)
	y = divCeil(height, 32)
	return
}

// imageOutputCount returns the number of half-float elements the image
// pass writes: one per subgroup across every dispatched workgroup,
// sized conservatively (subgroupsPerWorkgroup rounds up) so every lane
// that could address an output slot has room to do so.
func imageOutputCount(width, height, subgroupSize uint32) uint32 {
	x, y := imageDispatch(width, height)
	subgroupsPerWorkgroup := divCeil(imageWorkgroupSize, subgroupSize)
	return x * y * subgroupsPerWorkgroup
}

// bufferOutputCount mirrors the original BufferScanner::output_count: the
// number of half-floats produced by one buffer-pass dispatch over
// inputCount elements.
func bufferOutputCount(inputCount, subgroupSize uint32) uint32 {
	consumedPerDispatch := uint64(bufferWorkgroupSize) * uint64(subgroupSize)
	producedPerDispatch := uint64(bufferWorkgroupSize) / uint64(subgroupSize)
	if producedPerDispatch == 0 {
		producedPerDispatch = 1
	}
	dispatches := (uint64(inputCount) + consumedPerDispatch - 1) / consumedPerDispatch
	return uint32(dispatches * producedPerDispatch)
}

// bufferDispatchCount mirrors BufferScanner::dispatch_count.
func bufferDispatchCount(inputCount, subgroupSize uint32) uint32 {
	perDispatch := bufferWorkgroupSize * subgroupSize
	return divCeil(inputCount, perDispatch)
}

func divCeil(a, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// bufferParams mirrors the original BufferScanner::PushConstants. The gpu
// package's ComputePassEncoder has no push-constant call (see DESIGN.md's
// "core pass state binding" note), so the teacher's own uniform-buffer
// idiom from examples/compute-sum/main.go is used instead: a small
// uniform buffer rewritten with WriteBuffer before each dispatch.
type bufferParams struct {
	InputLength uint32
}

func (p bufferParams) bytes() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, p.InputLength)
	return buf
}

// HalfToFloat32 widens a raw IEEE 754 binary16 value, as returned by
// Scan, to float32. No library in the retrieval corpus exports a
// binary16 decoder, so this follows the standard branch-based widening
// (sign/exponent/mantissa split, subnormal and Inf/NaN handling).
func HalfToFloat32(bits uint16) float32 {
	sign := uint32(bits&0x8000) << 16
	exp := uint32(bits&0x7C00) >> 10
	frac := uint32(bits & 0x03FF)

	switch exp {
	case 0:
		if frac == 0 {
			return math.Float32frombits(sign)
		}
		// Subnormal half: normalize by shifting the fraction left until
		// its implicit leading bit would land in position 10.
		e := int32(0)
		for frac&0x0400 == 0 {
			frac <<= 1
			e--
		}
		frac &= 0x03FF
		exp32 := uint32(int32(127-15+1) + e)
		return math.Float32frombits(sign | (exp32 << 23) | (frac << 13))
	case 0x1F:
		return math.Float32frombits(sign | 0x7F800000 | (frac << 13))
	default:
		exp32 := exp - 15 + 127
		return math.Float32frombits(sign | (exp32 << 23) | (frac << 13))
	}
}

// Scan runs the two-stage reduction over img and returns the brightest
// colour component as raw half-float bits (IEEE 754 binary16). Callers
// widen to float32 as needed (spec.md §4.3: "Result type is half-float;
// callers widen as needed").
func (s *Scanner) Scan(img *hdrimage.HdrImage) (uint16, error) {
	width, height := img.Width(), img.Height()
	if width == 0 || height == 0 {
		return 0, EmptyInput{}
	}

	queue := s.device.Queue()
	if queue == nil {
		return 0, fmt.Errorf("scanner: device has no queue")
	}

	outputCount := imageOutputCount(width, height, s.subgroupSize)
	if outputCount == 0 {
		outputCount = 1
	}

	readBuf, err := s.device.CreateBuffer(&gpu.BufferDescriptor{
		Label: "scanner-read",
		Size:  uint64(outputCount) * 2,
		Usage: gpu.BufferUsageStorage | gpu.BufferUsageCopySrc | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("scanner: create read buffer: %w", err)
	}
	defer readBuf.Release()

	if err := s.runImagePass(img, readBuf, width, height); err != nil {
		return 0, fmt.Errorf("scanner: image pass: %w", err)
	}

	result, err := s.reduceBuffer(readBuf, outputCount)
	if err != nil {
		return 0, fmt.Errorf("scanner: buffer pass: %w", err)
	}

	return result, nil
}

func (s *Scanner) runImagePass(img *hdrimage.HdrImage, readBuf *gpu.Buffer, width, height uint32) error {
	bindGroup, err := s.device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:  "scanner-image-bg",
		Layout: s.imageLayout,
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, TextureView: img.View()},
			{Binding: 1, Buffer: readBuf, Size: readBuf.Size()},
		},
	})
	if err != nil {
		return err
	}
	defer bindGroup.Release()

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	pass, err := encoder.BeginComputePass(nil)
	if err != nil {
		return err
	}
	pass.SetPipeline(s.imagePipeline)
	pass.SetBindGroup(0, bindGroup, nil)

	x, y := imageDispatch(width, height)
	pass.Dispatch(x, y, 1)
	if err := pass.End(); err != nil {
		return err
	}

	cmdBuf, err := encoder.Finish()
	if err != nil {
		return err
	}

	return s.device.Queue().Submit(cmdBuf)
}

// reduceBuffer repeatedly folds buf (holding inputCount half-floats) down
// by the buffer pass until one element remains, swapping read/write
// buffers between iterations (spec.md §4.3 stage 2: "Swap read/write.
// Repeat until one element remains").
func (s *Scanner) reduceBuffer(buf *gpu.Buffer, inputCount uint32) (uint16, error) {
	read := buf
	ownsRead := false

	paramsBuf, err := s.device.CreateBuffer(&gpu.BufferDescriptor{
		Label: "scanner-params",
		Size:  4,
		Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("create params buffer: %w", err)
	}
	defer paramsBuf.Release()

	for inputCount > 1 {
		outputCount := bufferOutputCount(inputCount, s.subgroupSize)
		if outputCount == 0 {
			outputCount = 1
		}

		writeBuf, err := s.device.CreateBuffer(&gpu.BufferDescriptor{
			Label: "scanner-write",
			Size:  uint64(outputCount) * 2,
			Usage: gpu.BufferUsageStorage | gpu.BufferUsageCopySrc | gpu.BufferUsageCopyDst,
		})
		if err != nil {
			return 0, fmt.Errorf("create write buffer: %w", err)
		}

		if err := s.device.Queue().WriteBuffer(paramsBuf, 0, bufferParams{InputLength: inputCount}.bytes()); err != nil {
			writeBuf.Release()
			return 0, fmt.Errorf("write params: %w", err)
		}

		if err := s.dispatchBufferPass(read, writeBuf, paramsBuf, inputCount); err != nil {
			writeBuf.Release()
			return 0, err
		}

		if ownsRead {
			read.Release()
		}
		read = writeBuf
		ownsRead = true
		inputCount = outputCount
	}

	result := make([]byte, 2)
	if err := s.device.Queue().ReadBuffer(read, 0, result); err != nil {
		if ownsRead {
			read.Release()
		}
		return 0, fmt.Errorf("read result: %w", err)
	}
	if ownsRead {
		read.Release()
	}

	return binary.LittleEndian.Uint16(result), nil
}

func (s *Scanner) dispatchBufferPass(read, write, params *gpu.Buffer, inputCount uint32) error {
	bindGroup, err := s.device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:  "scanner-buffer-bg",
		Layout: s.bufferLayout,
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, Buffer: read, Size: read.Size()},
			{Binding: 1, Buffer: write, Size: write.Size()},
			{Binding: 2, Buffer: params, Size: 4},
		},
	})
	if err != nil {
		return err
	}
	defer bindGroup.Release()

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	pass, err := encoder.BeginComputePass(nil)
	if err != nil {
		return err
	}
	pass.SetPipeline(s.bufferPipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch(bufferDispatchCount(inputCount, s.subgroupSize), 1, 1)
	if err := pass.End(); err != nil {
		return err
	}

	cmdBuf, err := encoder.Finish()
	if err != nil {
		return err
	}

	return s.device.Queue().Submit(cmdBuf)
}
