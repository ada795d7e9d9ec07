//go:build windows

// The Win32 window and message pump, adapted from the teacher's
// examples/cmd/vulkan-triangle/window_windows.go hybrid
// GetMessage/PeekMessage pattern. Unlike the triangle demo this window
// starts hidden (spec.md §4.7's Inactive state is tray-only) and is
// shown/hidden on Loading/Active <-> Inactive transitions; it also
// registers the screenshot hotkey and forwards mouse/keyboard input to
// the application's event loop via callbacks instead of global state.
package main

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procRegisterClassExW  = user32.NewProc("RegisterClassExW")
	procCreateWindowExW   = user32.NewProc("CreateWindowExW")
	procDefWindowProcW    = user32.NewProc("DefWindowProcW")
	procDestroyWindow     = user32.NewProc("DestroyWindow")
	procShowWindow        = user32.NewProc("ShowWindow")
	procUpdateWindow      = user32.NewProc("UpdateWindow")
	procPeekMessageW      = user32.NewProc("PeekMessageW")
	procTranslateMessage  = user32.NewProc("TranslateMessage")
	procDispatchMessageW  = user32.NewProc("DispatchMessageW")
	procPostQuitMessage   = user32.NewProc("PostQuitMessage")
	procGetClientRect     = user32.NewProc("GetClientRect")
	procSetWindowLongPtrW = user32.NewProc("SetWindowLongPtrW")
	procLoadCursorW       = user32.NewProc("LoadCursorW")
	procSetCursor         = user32.NewProc("SetCursor")
	procRegisterHotKey    = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey  = user32.NewProc("UnregisterHotKey")

	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandleW = kernel32.NewProc("GetModuleHandleW")
)

const (
	csOwnDC = 0x0020

	wsPopup = 0x80000000

	swShow = 5
	swHide = 0

	wmDestroy     = 0x0002
	wmSize        = 0x0005
	wmClose       = 0x0010
	wmQuit        = 0x0012
	wmSetCursor   = 0x0020
	wmKeyDown     = 0x0100
	wmHotkey      = 0x0312
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmMouseMove   = 0x0200

	pmRemove = 0x0001

	idcArrow = 32512

	htClient = 1

	vkEscape = 0x1B
	vkReturn = 0x0D

	hotkeyID = 1
)

type wndClassExW struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   uintptr
	Icon       uintptr
	Cursor     uintptr
	Background uintptr
	MenuName   *uint16
	ClassName  *uint16
	IconSm     uintptr
}

type winMsg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      winPoint
}

type winPoint struct{ X, Y int32 }
type winRect struct{ Left, Top, Right, Bottom int32 }

// Window is the application's single hidden/shown top-level window: the
// borderless popup overlay shown during Loading/Active (spec.md §4.7) and
// the source of mouse/keyboard/hotkey input. It keeps the size NewWindow
// created it with; Show does not resize it to cover the monitor.
type Window struct {
	hwnd    uintptr
	cursor  uintptr
	running bool

	OnHotkey    func()
	OnMouseDown func(x, y int32)
	OnMouseMove func(x, y int32)
	OnMouseUp   func(x, y int32)
	OnEscape    func()
	OnEnter     func()
	OnResize    func(width, height uint32)
	OnClose     func()
}

var globalWindow *Window

// NewWindow creates the application's overlay window, initially hidden.
func NewWindow(title string, width, height int32) (*Window, error) {
	hInstance, _, _ := procGetModuleHandleW.Call(0)

	className, err := windows.UTF16PtrFromString("HdrSnipWindow")
	if err != nil {
		return nil, fmt.Errorf("class name: %w", err)
	}
	windowTitle, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return nil, fmt.Errorf("window title: %w", err)
	}

	cursor, _, _ := procLoadCursorW.Call(0, uintptr(idcArrow))

	wc := wndClassExW{
		Size:      uint32(unsafe.Sizeof(wndClassExW{})),
		Style:     csOwnDC,
		WndProc:   windows.NewCallback(wndProc),
		Instance:  hInstance,
		Cursor:    cursor,
		ClassName: className,
	}
	if ret, _, callErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); ret == 0 {
		return nil, fmt.Errorf("RegisterClassExW: %w", callErr)
	}

	hwnd, _, callErr := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(windowTitle)),
		uintptr(wsPopup),
		0, 0,
		uintptr(width), uintptr(height),
		0, 0, hInstance, 0,
	)
	if hwnd == 0 {
		return nil, fmt.Errorf("CreateWindowExW: %w", callErr)
	}

	w := &Window{hwnd: hwnd, cursor: cursor, running: true}
	globalWindow = w
	procSetWindowLongPtrW.Call(hwnd, ^uintptr(20), uintptr(unsafe.Pointer(w)))

	if ret, _, callErr := procRegisterHotKey.Call(hwnd, hotkeyID, 0, vkPrintScreen); ret == 0 {
		return nil, fmt.Errorf("RegisterHotKey: %w", callErr)
	}

	return w, nil
}

// vkPrintScreen is the virtual-key code for the default screenshot
// hotkey (spec.md §6's config default "PrintScreen").
const vkPrintScreen = 0x2C

// Destroy unregisters the hotkey and destroys the window.
func (w *Window) Destroy() {
	procUnregisterHotKey.Call(w.hwnd, hotkeyID)
	if w.hwnd != 0 {
		procDestroyWindow.Call(w.hwnd)
		w.hwnd = 0
	}
	if globalWindow == w {
		globalWindow = nil
	}
}

// Handle returns the native HWND.
func (w *Window) Handle() uintptr { return w.hwnd }

// Show makes the overlay visible (Loading/Active entry).
func (w *Window) Show() { procShowWindow.Call(w.hwnd, uintptr(swShow)); procUpdateWindow.Call(w.hwnd) }

// Hide dismisses the overlay (Inactive entry).
func (w *Window) Hide() { procShowWindow.Call(w.hwnd, uintptr(swHide)) }

// Size returns the client area size.
func (w *Window) Size() (width, height int32) {
	var rc winRect
	procGetClientRect.Call(w.hwnd, uintptr(unsafe.Pointer(&rc)))
	return rc.Right - rc.Left, rc.Bottom - rc.Top
}

// PollEvents pumps pending window messages non-blockingly. Returns
// false once WM_QUIT has been posted.
func (w *Window) PollEvents() bool {
	var m winMsg
	for {
		ret, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, uintptr(pmRemove))
		if ret == 0 {
			break
		}
		if m.Message == wmQuit {
			w.running = false
			return false
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
	return w.running
}

func wndProc(hwnd, message, wParam, lParam uintptr) uintptr {
	w := globalWindow
	if w == nil || w.hwnd != hwnd {
		ret, _, _ := procDefWindowProcW.Call(hwnd, message, wParam, lParam)
		return ret
	}

	switch message {
	case wmDestroy, wmClose:
		procPostQuitMessage.Call(0)
		return 0

	case wmHotkey:
		if wParam == hotkeyID && w.OnHotkey != nil {
			w.OnHotkey()
		}
		return 0

	case wmLButtonDown:
		if w.OnMouseDown != nil {
			w.OnMouseDown(int32(lParam&0xFFFF), int32((lParam>>16)&0xFFFF))
		}
		return 0

	case wmMouseMove:
		if w.OnMouseMove != nil {
			w.OnMouseMove(int32(lParam&0xFFFF), int32((lParam>>16)&0xFFFF))
		}
		return 0

	case wmLButtonUp:
		if w.OnMouseUp != nil {
			w.OnMouseUp(int32(lParam&0xFFFF), int32((lParam>>16)&0xFFFF))
		}
		return 0

	case wmKeyDown:
		switch wParam {
		case vkEscape:
			if w.OnEscape != nil {
				w.OnEscape()
			}
		case vkReturn:
			if w.OnEnter != nil {
				w.OnEnter()
			}
		}
		return 0

	case wmSize:
		width := uint32(lParam & 0xFFFF)
		height := uint32((lParam >> 16) & 0xFFFF)
		if width > 0 && height > 0 && w.OnResize != nil {
			w.OnResize(width, height)
		}
		return 0

	case wmSetCursor:
		if lParam&0xFFFF == htClient {
			procSetCursor.Call(w.cursor)
			return 1
		}
		ret, _, _ := procDefWindowProcW.Call(hwnd, message, wParam, lParam)
		return ret

	default:
		ret, _, _ := procDefWindowProcW.Call(hwnd, message, wParam, lParam)
		return ret
	}
}
