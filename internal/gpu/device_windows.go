//go:build windows

package gpu

import (
	"fmt"
	"syscall"

	"github.com/gogpu/wgpu/hal"

	"github.com/hdrsnip/hdrsnip/internal/gpu/hal/vulkan"
)

// ImportTexture adopts a platform shared memory handle as a GPU texture
// without copying pixels through host memory (spec.md §4.2). Unlike the
// rest of Device, this is not backed by hal.Device: only the Vulkan
// backend can bind a DXGI shared handle directly to a VkImage, so the
// underlying HAL device is type-asserted to *vulkan.Device rather than
// called through the generic interface.
func (d *Device) ImportTexture(desc *ExternalTextureDescriptor) (*Texture, error) {
	if d.released {
		return nil, ErrReleased
	}
	if desc == nil {
		return nil, fmt.Errorf("wgpu: external texture descriptor is nil")
	}

	halDevice := d.halDevice()
	if halDevice == nil {
		return nil, ErrReleased
	}

	vd, ok := halDevice.(*vulkan.Device)
	if !ok {
		return nil, fmt.Errorf("wgpu: ImportTexture requires the vulkan backend")
	}

	halTexture, err := vd.ImportTexture(&vulkan.ExternalTextureDescriptor{
		Label:          desc.Label,
		Size:           hal.Extent3D{Width: desc.Size.Width, Height: desc.Size.Height, DepthOrArrayLayers: 1},
		Format:         desc.Format,
		Usage:          desc.Usage,
		Handle:         syscall.Handle(desc.Handle),
		AllocationSize: desc.AllocationSize,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: failed to import texture: %w", err)
	}

	return &Texture{hal: halTexture, device: d, format: desc.Format, extent: desc.Size}, nil
}
