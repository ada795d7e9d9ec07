// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package allbackends registers this module's HAL backends.
//
// Import this package for side effects to register all available backends:
//
//	import (
//		_ "github.com/hdrsnip/hdrsnip/internal/gpu/hal/allbackends"
//	)
//
// This will register:
//   - Vulkan backend (Windows only; spec.md §1/§4.2 scope)
//   - No-op backend (all platforms, for testing)
//
// After importing, use hal.GetBackend or hal.SelectBestBackend to access backends.
//
// Example usage:
//
//	import (
//		_ "github.com/hdrsnip/hdrsnip/internal/gpu/hal/allbackends"
//		"github.com/gogpu/wgpu/core"
//	)
//
//	func main() {
//		// Instance will now enumerate real GPUs
//		instance := core.NewInstance(nil)
//		adapters := instance.EnumerateAdapters()
//		for _, a := range adapters {
//			fmt.Println(a) // Real GPU adapters
//		}
//	}
package allbackends
