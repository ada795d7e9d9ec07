// Package hdrimage implements the HDR capture's image types (spec.md §3,
// §4.2): HdrImage (an imported or allocated RGBA16F device image plus its
// default view) and SdrImage (the tonemapper's RGBA8 output), along with
// the MonitorDescriptor the platform capture collaborator supplies.
package hdrimage

import (
	"fmt"

	"github.com/hdrsnip/hdrsnip/internal/gpu"
)

// MonitorDescriptor describes the monitor a capture was taken from
// (spec.md §3, external/consumed). Position and Size are in desktop
// coordinates.
type MonitorDescriptor struct {
	Handle           uintptr
	PositionX        int32
	PositionY        int32
	Width            uint32
	Height           uint32
	SdrWhiteNits     float32
	MaxLuminanceNits float32
}

// HdrImage wraps a device-resident RGBA16F image plus its default 2D
// view (spec.md §3). While alive, memory outlives the image and the
// image outlives the view; Destroy tears these down in the reverse
// order they were created, and the caller must have waited for the
// owning queue to be idle first (spec.md §4.2).
type HdrImage struct {
	device  *gpu.Device
	texture *gpu.Texture
	view    *gpu.TextureView
	width   uint32
	height  uint32
}

// Width returns the image width in texels.
func (h *HdrImage) Width() uint32 { return h.width }

// Height returns the image height in texels.
func (h *HdrImage) Height() uint32 { return h.height }

// Texture returns the underlying device texture, for binding into the
// scanner and tonemapper's storage-image descriptors.
func (h *HdrImage) Texture() *gpu.Texture { return h.texture }

// View returns the default 2D view, for binding into the renderer's
// sampled-texture descriptor.
func (h *HdrImage) View() *gpu.TextureView { return h.view }

const hdrFormat = gpu.TextureFormatRGBA16Float

// hdrUsage is shared by Import and Allocate: the image must be usable
// both as a sampled texture (renderer) and a storage image (scanner,
// tonemapper), per spec.md §4.2's contract.
const hdrUsage = gpu.TextureUsageTextureBinding | gpu.TextureUsageStorageBinding

// Import adopts a platform-provided shared texture handle as an HdrImage
// (spec.md §4.2). The import does not copy pixels through host memory;
// the device image is bound directly to the external allocation. Returns
// an error if the extent is empty or the device cannot import the handle.
func Import(device *gpu.Device, width, height uint32, handle uintptr, allocationSize uint64) (*HdrImage, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("hdrimage: empty extent")
	}

	texture, err := device.ImportTexture(&gpu.ExternalTextureDescriptor{
		Label:          "hdr-capture",
		Size:           gpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		Format:         hdrFormat,
		Usage:          hdrUsage,
		Handle:         handle,
		AllocationSize: allocationSize,
	})
	if err != nil {
		return nil, fmt.Errorf("hdrimage: import: %w", err)
	}

	view, err := device.CreateTextureView(texture, nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("hdrimage: create view: %w", err)
	}

	return &HdrImage{device: device, texture: texture, view: view, width: width, height: height}, nil
}

// Allocate creates a device-local HdrImage without importing external
// memory. Used for synthetic test fixtures (spec.md §8's concrete
// scenarios) and any path that produces HDR content on-device instead
// of via capture.
func Allocate(device *gpu.Device, width, height uint32) (*HdrImage, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("hdrimage: empty extent")
	}

	texture, err := device.CreateTexture(&gpu.TextureDescriptor{
		Label:         "hdr-image",
		Size:          gpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gpu.TextureDimension2D,
		Format:        hdrFormat,
		Usage:         hdrUsage | gpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("hdrimage: allocate: %w", err)
	}

	view, err := device.CreateTextureView(texture, nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("hdrimage: create view: %w", err)
	}

	return &HdrImage{device: device, texture: texture, view: view, width: width, height: height}, nil
}

// Destroy releases the view then the image, per spec.md §4.2's ordering
// contract. The caller must have already waited for the device to be
// idle.
func (h *HdrImage) Destroy() {
	if h == nil {
		return
	}
	if h.view != nil {
		h.view.Release()
		h.view = nil
	}
	if h.texture != nil {
		h.texture.Release()
		h.texture = nil
	}
}

// SdrImage is the tonemapper's RGBA8 UNORM output (spec.md §3):
// storage-writable so the tonemap compute shader can write it, and
// copy-source so the save path can read its cropped region back to
// host memory.
type SdrImage struct {
	device  *gpu.Device
	texture *gpu.Texture
	view    *gpu.TextureView
	width   uint32
	height  uint32
}

// Width returns the image width in texels.
func (s *SdrImage) Width() uint32 { return s.width }

// Height returns the image height in texels.
func (s *SdrImage) Height() uint32 { return s.height }

// Texture returns the underlying device texture.
func (s *SdrImage) Texture() *gpu.Texture { return s.texture }

// View returns the default 2D view.
func (s *SdrImage) View() *gpu.TextureView { return s.view }

// NewSdrImage allocates a same-extent RGBA8 UNORM image for tonemapper
// output.
func NewSdrImage(device *gpu.Device, width, height uint32) (*SdrImage, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("hdrimage: empty extent")
	}

	texture, err := device.CreateTexture(&gpu.TextureDescriptor{
		Label:         "sdr-image",
		Size:          gpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gpu.TextureDimension2D,
		Format:        gpu.TextureFormatRGBA8Unorm,
		Usage:         gpu.TextureUsageStorageBinding | gpu.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("hdrimage: allocate sdr: %w", err)
	}

	view, err := device.CreateTextureView(texture, nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("hdrimage: create sdr view: %w", err)
	}

	return &SdrImage{device: device, texture: texture, view: view, width: width, height: height}, nil
}

// Destroy releases the view then the image.
func (s *SdrImage) Destroy() {
	if s == nil {
		return
	}
	if s.view != nil {
		s.view.Release()
		s.view = nil
	}
	if s.texture != nil {
		s.texture.Release()
		s.texture = nil
	}
}
