// Package clipboard publishes a captured image to the Windows clipboard
// (SPEC_FULL.md §4.12, spec.md §6 "Produced — CaptureSaver output"): a
// CF_DIB payload built from row-major RGBA bytes.
//
// Grounded on the clipboard read direction in
// other_examples/214ae81c_itsharex-winshot__internal-screenshot-clipboard.go.go
// (BITMAPINFOHEADER layout, LazyDLL procs, same-thread OpenClipboard/
// CloseClipboard discipline) mirrored into the write direction.
package clipboard

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32             = windows.NewLazySystemDLL("user32.dll")
	procOpenClipboard  = user32.NewProc("OpenClipboard")
	procCloseClipboard = user32.NewProc("CloseClipboard")
	procEmptyClipboard = user32.NewProc("EmptyClipboard")
	procSetClipboard   = user32.NewProc("SetClipboardData")

	kernel32         = windows.NewLazySystemDLL("kernel32.dll")
	procGlobalAlloc  = kernel32.NewProc("GlobalAlloc")
	procGlobalLock   = kernel32.NewProc("GlobalLock")
	procGlobalUnlock = kernel32.NewProc("GlobalUnlock")
)

const (
	cfDIB          = 8
	gmemMoveable   = 0x0002
	bitmapInfoSize = 40 // sizeof(BITMAPINFOHEADER)
)

// bitmapInfoHeader mirrors the Windows BITMAPINFOHEADER structure.
type bitmapInfoHeader struct {
	biSize          uint32
	biWidth         int32
	biHeight        int32
	biPlanes        uint16
	biBitCount      uint16
	biCompression   uint32
	biSizeImage     uint32
	biXPelsPerMeter int32
	biYPelsPerMeter int32
	biClrUsed       uint32
	biClrImportant  uint32
}

// Publish writes rgba (row-major, no row padding, width*height*4 bytes)
// to the clipboard as a top-down 32bpp BGRA DIB. Must run on an
// OS-thread-locked goroutine, since OpenClipboard/CloseClipboard are
// thread-affine on Windows (SPEC_FULL.md §4.12 — the caller is the
// CaptureSaver worker thread, which already locks its OS thread).
func Publish(width, height int, rgba []byte) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("clipboard: invalid dimensions %dx%d", width, height)
	}
	if len(rgba) != width*height*4 {
		return fmt.Errorf("clipboard: rgba length %d, want %d", len(rgba), width*height*4)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ret, _, err := procOpenClipboard.Call(0)
	if ret == 0 {
		return fmt.Errorf("clipboard: OpenClipboard: %w", err)
	}
	defer procCloseClipboard.Call()

	if ret, _, err := procEmptyClipboard.Call(); ret == 0 {
		return fmt.Errorf("clipboard: EmptyClipboard: %w", err)
	}

	dibSize := uintptr(bitmapInfoSize + width*height*4)
	hMem, _, err := procGlobalAlloc.Call(gmemMoveable, dibSize)
	if hMem == 0 {
		return fmt.Errorf("clipboard: GlobalAlloc: %w", err)
	}

	ptr, _, err := procGlobalLock.Call(hMem)
	if ptr == 0 {
		return fmt.Errorf("clipboard: GlobalLock: %w", err)
	}

	header := (*bitmapInfoHeader)(unsafe.Pointer(ptr))
	*header = bitmapInfoHeader{
		biSize:        bitmapInfoSize,
		biWidth:       int32(width),
		biHeight:      -int32(height), // negative: top-down DIB, no row flip needed
		biPlanes:      1,
		biBitCount:    32,
		biCompression: 0, // BI_RGB
		biSizeImage:   uint32(width * height * 4),
	}

	pixels := unsafe.Slice((*byte)(unsafe.Pointer(ptr+bitmapInfoSize)), width*height*4)
	rgbaToBGRA(pixels, rgba)

	// GlobalUnlock returns 0 both on failure and when the memory object
	// is already unlocked (the expected case here, since it was locked
	// exactly once above); MSDN directs callers to check GetLastError,
	// which LazyDLL.Call already surfaces as err.
	procGlobalUnlock.Call(hMem)

	if ret, _, err := procSetClipboard.Call(cfDIB, hMem); ret == 0 {
		return fmt.Errorf("clipboard: SetClipboardData: %w", err)
	}

	return nil
}

// rgbaToBGRA swaps the R and B channels of each pixel, writing into dst.
func rgbaToBGRA(dst, src []byte) {
	for i := 0; i+4 <= len(src); i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = src[i+3]
	}
}
