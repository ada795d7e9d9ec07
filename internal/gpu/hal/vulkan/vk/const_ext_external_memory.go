// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build windows

package vk

import "syscall"

// Hand-added VK_KHR_external_memory_win32 / VK_KHR_dedicated_allocation
// bindings, following the promoted-extension pattern in const_ext.go: the
// vk.xml-generated bindings this package wraps do not cover win32 external
// memory import, which spec.md §4.2's zero-copy HDR capture import needs to
// bind a DXGI shared handle directly to a VkImage.

const (
	// StructureTypeExternalMemoryImageCreateInfo = VK_STRUCTURE_TYPE_EXTERNAL_MEMORY_IMAGE_CREATE_INFO
	StructureTypeExternalMemoryImageCreateInfo StructureType = 1000072001

	// StructureTypeImportMemoryWin32HandleInfoKHR = VK_STRUCTURE_TYPE_IMPORT_MEMORY_WIN32_HANDLE_INFO_KHR
	StructureTypeImportMemoryWin32HandleInfoKHR StructureType = 1000073000

	// StructureTypeMemoryDedicatedRequirements = VK_STRUCTURE_TYPE_MEMORY_DEDICATED_REQUIREMENTS
	StructureTypeMemoryDedicatedRequirements StructureType = 1000127000

	// StructureTypeMemoryDedicatedAllocateInfo = VK_STRUCTURE_TYPE_MEMORY_DEDICATED_ALLOCATE_INFO
	StructureTypeMemoryDedicatedAllocateInfo StructureType = 1000127001
)

// ExternalMemoryHandleTypeFlags mirrors VkExternalMemoryHandleTypeFlagBits.
type ExternalMemoryHandleTypeFlags uint32

const (
	// ExternalMemoryHandleTypeOpaqueWin32Bit = VK_EXTERNAL_MEMORY_HANDLE_TYPE_OPAQUE_WIN32_BIT,
	// the handle type DXGI shared resources use.
	ExternalMemoryHandleTypeOpaqueWin32Bit ExternalMemoryHandleTypeFlags = 0x00000002
)

// ExternalMemoryImageCreateInfo = VkExternalMemoryImageCreateInfo, chained
// onto ImageCreateInfo.PNext to mark an image as importable from an
// external handle.
type ExternalMemoryImageCreateInfo struct {
	SType       StructureType
	PNext       *uintptr
	HandleTypes ExternalMemoryHandleTypeFlags
}

// ImportMemoryWin32HandleInfoKHR = VkImportMemoryWin32HandleInfoKHR,
// chained onto MemoryAllocateInfo.PNext to import an existing Win32 NT
// handle (a DXGI shared resource handle) as device memory.
type ImportMemoryWin32HandleInfoKHR struct {
	SType      StructureType
	PNext      *uintptr
	HandleType ExternalMemoryHandleTypeFlags
	Handle     syscall.Handle
	Name       *uint16
}

// MemoryDedicatedAllocateInfo = VkMemoryDedicatedAllocateInfo. The Vulkan
// spec requires a dedicated allocation whenever the exporting API (DXGI)
// created a dedicated allocation for the resource being imported.
type MemoryDedicatedAllocateInfo struct {
	SType  StructureType
	PNext  *uintptr
	Image  Image
	Buffer Buffer
}
