// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build windows

package allbackends

import (
	// Windows-specific HAL backend imports. Only Vulkan is registered:
	// spec.md §1/§4.2 target Windows+Vulkan exclusively, and the DX12/GLES
	// backends carry no HDR external-memory import support.
	_ "github.com/hdrsnip/hdrsnip/internal/gpu/hal/vulkan"
)
