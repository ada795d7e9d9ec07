//go:build !windows

package gpu

import "fmt"

// ImportTexture is unavailable outside Windows: the zero-copy DXGI
// shared-handle import (spec.md §4.2) only exists on the Vulkan backend's
// Windows build (see device_windows.go).
func (d *Device) ImportTexture(desc *ExternalTextureDescriptor) (*Texture, error) {
	return nil, fmt.Errorf("wgpu: ImportTexture requires Windows+Vulkan")
}
