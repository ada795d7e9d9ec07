//go:build windows

package platform

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/hdrsnip/hdrsnip/internal/hdrimage"
)

// Windows DISPLAYCONFIG constants (grounded on
// other_examples/37fc4b06_JiPaix-lumos__hdr-hdr.go.go).
const (
	qdcOnlyActivePaths                           = 0x00000002
	displayConfigDeviceInfoGetAdvancedColorInfo  = 9
	displayConfigDeviceInfoGetSdrWhiteLevel      = 11
	monitorInfoFlagsPrimary                      = 0x00000001
	monitorFromPointDefaultToNearest             = 0x00000002
)

type luid struct {
	LowPart  uint32
	HighPart int32
}

type displayConfigPathSourceInfo struct {
	AdapterID   luid
	ID          uint32
	ModeInfoIdx uint32
	StatusFlags uint32
}

type displayConfigRational struct {
	Numerator   uint32
	Denominator uint32
}

type displayConfigPathTargetInfo struct {
	AdapterID        luid
	ID               uint32
	ModeInfoIdx      uint32
	OutputTechnology uint32
	Rotation         uint32
	Scaling          uint32
	RefreshRate      displayConfigRational
	ScanLineOrdering uint32
	TargetAvailable  uint32
	StatusFlags      uint32
}

type displayConfigPathInfo struct {
	Source displayConfigPathSourceInfo
	Target displayConfigPathTargetInfo
	Flags  uint32
}

type displayConfigModeInfo struct {
	InfoType  uint32
	ID        uint32
	AdapterID luid
	// Union of target/source mode; largest member is 20 bytes, padded
	// here to that size since Go has no native C union.
	modeInfo [20]byte
}

type displayConfigDeviceInfoHeader struct {
	Type      uint32
	Size      uint32
	AdapterID luid
	ID        uint32
}

// displayConfigAdvancedColorInfo mirrors DISPLAYCONFIG_GET_ADVANCED_COLOR_INFO.
// The bitfield (advancedColorSupported, advancedColorEnabled, ...) is
// packed into a single uint32; only bit 1 (enabled) is consumed here.
type displayConfigAdvancedColorInfo struct {
	Header       displayConfigDeviceInfoHeader
	Value        uint32
	ColorEncoding     uint32
	BitsPerColorChannel uint32
}

// displayConfigSdrWhiteLevel mirrors DISPLAYCONFIG_SDR_WHITE_LEVEL.
// SDRWhiteLevel is in units of 1/1000 of a nit relative to 80 nits
// reference white, i.e. nits = SDRWhiteLevel / 1000 * 80.
type displayConfigSdrWhiteLevel struct {
	Header         displayConfigDeviceInfoHeader
	SDRWhiteLevel  uint32
}

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procGetDisplayConfigBufferSizes = user32.NewProc("GetDisplayConfigBufferSizes")
	procQueryDisplayConfig          = user32.NewProc("QueryDisplayConfig")
	procDisplayConfigGetDeviceInfo  = user32.NewProc("DisplayConfigGetDeviceInfo")
	procGetCursorPos                = user32.NewProc("GetCursorPos")
	procMonitorFromPoint             = user32.NewProc("MonitorFromPoint")
	procGetMonitorInfoW              = user32.NewProc("GetMonitorInfoW")
)

type point struct{ X, Y int32 }

type rect struct{ Left, Top, Right, Bottom int32 }

type monitorInfoEx struct {
	CbSize    uint32
	RcMonitor rect
	RcWork    rect
	DwFlags   uint32
	SzDevice  [32]uint16
}

// Duplicator is the out-of-scope collaborator (spec.md §1, §6):
// "the OS-specific API that produces a shareable HDR texture handle...
// we specify only the handle/metadata it must deliver." Desktop
// duplication (DXGI) acquisition is assumed upstream of this module;
// Provider calls through this interface for the extent/handle and owns
// only the monitor-under-cursor and HDR white-level queries below.
type Duplicator interface {
	// Duplicate acquires a shared handle to the current frame of the
	// monitor identified by hMonitor. Release, if non-nil, is called
	// by Provider.ReleaseCapture and must run on the same OS thread
	// that produced the capture (spec.md §5).
	Duplicate(hMonitor uintptr) (width, height uint32, handle uintptr, allocationSize uint64, release func() error, err error)
}

// Provider is the Windows CaptureProvider (SPEC_FULL.md §4.11): it
// resolves the monitor under the cursor and its HDR metadata itself,
// and delegates the shared-handle acquisition to dup.
type Provider struct {
	dup Duplicator

	mu       sync.Mutex
	nextTok  uintptr
	releases map[uintptr]func() error
}

// NewProvider builds a Windows CaptureProvider backed by dup for the
// actual desktop-duplication handle acquisition.
func NewProvider(dup Duplicator) *Provider {
	return &Provider{dup: dup, releases: make(map[uintptr]func() error)}
}

// TakeCapture implements CaptureProvider (spec.md §6).
func (p *Provider) TakeCapture() (Capture, error) {
	var cursor point
	if ret, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&cursor))); ret == 0 {
		return Capture{}, fmt.Errorf("platform: GetCursorPos: %w", err)
	}

	hMonitor, _, _ := procMonitorFromPoint.Call(
		uintptr(cursor.X), uintptr(cursor.Y),
		monitorFromPointDefaultToNearest,
	)
	if hMonitor == 0 {
		return Capture{}, fmt.Errorf("platform: no monitor under cursor")
	}

	monitor, err := describeMonitor(hMonitor)
	if err != nil {
		return Capture{}, err
	}

	width, height, handle, allocSize, release, err := p.dup.Duplicate(hMonitor)
	if err != nil {
		return Capture{}, fmt.Errorf("platform: duplicate: %w", err)
	}

	p.mu.Lock()
	p.nextTok++
	token := p.nextTok
	if release != nil {
		p.releases[token] = release
	}
	p.mu.Unlock()

	return Capture{
		Width:          width,
		Height:         height,
		Handle:         handle,
		AllocationSize: allocSize,
		Monitor:        monitor,
		Token:          token,
	}, nil
}

// ReleaseCapture implements CaptureProvider (spec.md §6).
func (p *Provider) ReleaseCapture(token uintptr) error {
	p.mu.Lock()
	release, ok := p.releases[token]
	delete(p.releases, token)
	p.mu.Unlock()

	if !ok || release == nil {
		return nil
	}
	return release()
}

func describeMonitor(hMonitor uintptr) (hdrimage.MonitorDescriptor, error) {
	var info monitorInfoEx
	info.CbSize = uint32(unsafe.Sizeof(info))
	if ret, _, err := procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&info))); ret == 0 {
		return hdrimage.MonitorDescriptor{}, fmt.Errorf("platform: GetMonitorInfoW: %w", err)
	}

	sdrWhite, maxLum, err := queryHDRMetadata(hMonitor)
	if err != nil {
		// HDR metadata is best-effort: an SDR-only monitor still
		// yields a usable capture target with reference defaults.
		sdrWhite, maxLum = 80, 80
	}

	return hdrimage.MonitorDescriptor{
		Handle:           hMonitor,
		PositionX:        info.RcMonitor.Left,
		PositionY:        info.RcMonitor.Top,
		Width:            uint32(info.RcMonitor.Right - info.RcMonitor.Left),
		Height:           uint32(info.RcMonitor.Bottom - info.RcMonitor.Top),
		SdrWhiteNits:     sdrWhite,
		MaxLuminanceNits: maxLum,
	}, nil
}

// queryHDRMetadata reads the SDR white level of the first active
// DISPLAYCONFIG target that reports one; hMonitor does not select the
// path (grounded on
// other_examples/37fc4b06_JiPaix-lumos__hdr-hdr.go.go's path/mode
// enumeration, extended with the GET_SDR_WHITE_LEVEL device-info call
// that file only stubs out).
func queryHDRMetadata(hMonitor uintptr) (sdrWhiteNits, maxLuminanceNits float32, err error) {
	var pathCount, modeCount uint32
	ret, _, e := procGetDisplayConfigBufferSizes.Call(
		qdcOnlyActivePaths,
		uintptr(unsafe.Pointer(&pathCount)),
		uintptr(unsafe.Pointer(&modeCount)),
	)
	if ret != 0 {
		return 0, 0, fmt.Errorf("platform: GetDisplayConfigBufferSizes: %w", e)
	}
	if pathCount == 0 {
		return 0, 0, fmt.Errorf("platform: no active display paths")
	}

	paths := make([]displayConfigPathInfo, pathCount)
	modes := make([]displayConfigModeInfo, modeCount)
	ret, _, e = procQueryDisplayConfig.Call(
		qdcOnlyActivePaths,
		uintptr(unsafe.Pointer(&pathCount)),
		uintptr(unsafe.Pointer(&paths[0])),
		uintptr(unsafe.Pointer(&modeCount)),
		uintptr(unsafe.Pointer(&modes[0])),
		0,
	)
	if ret != 0 {
		return 0, 0, fmt.Errorf("platform: QueryDisplayConfig: %w", e)
	}

	// Without a reverse mapping from HMONITOR to adapter/target LUID
	// this picks the first available target; multi-monitor HDR
	// disambiguation is tracked as a follow-up (none of the pack's
	// examples implement it either).
	for i := uint32(0); i < pathCount; i++ {
		target := &paths[i].Target
		if target.TargetAvailable == 0 {
			continue
		}

		white, err := readSDRWhiteLevel(target.AdapterID, target.ID)
		if err != nil {
			continue
		}
		maxLum, _ := readAdvancedColorInfo(target.AdapterID, target.ID)
		return white, maxLum, nil
	}

	return 0, 0, fmt.Errorf("platform: no displays with SDR white level info")
}

func readSDRWhiteLevel(adapter luid, id uint32) (float32, error) {
	info := displayConfigSdrWhiteLevel{}
	info.Header.Type = displayConfigDeviceInfoGetSdrWhiteLevel
	info.Header.Size = uint32(unsafe.Sizeof(info))
	info.Header.AdapterID = adapter
	info.Header.ID = id

	ret, _, err := procDisplayConfigGetDeviceInfo.Call(uintptr(unsafe.Pointer(&info)))
	if ret != 0 {
		return 0, fmt.Errorf("platform: DisplayConfigGetDeviceInfo(SDR_WHITE_LEVEL): %w", err)
	}

	// SDRWhiteLevel is in units of 1/1000 nit relative to 80 nits
	// reference white (spec.md §6's sdr_reference_white_nits, default
	// 80 matches spec.md §4.4's W=6.25 scRGB ≈ 500 nits convention).
	return float32(info.SDRWhiteLevel) / 1000 * 80, nil
}

func readAdvancedColorInfo(adapter luid, id uint32) (float32, error) {
	info := displayConfigAdvancedColorInfo{}
	info.Header.Type = displayConfigDeviceInfoGetAdvancedColorInfo
	info.Header.Size = uint32(unsafe.Sizeof(info))
	info.Header.AdapterID = adapter
	info.Header.ID = id

	ret, _, err := procDisplayConfigGetDeviceInfo.Call(uintptr(unsafe.Pointer(&info)))
	if ret != 0 {
		return 0, fmt.Errorf("platform: DisplayConfigGetDeviceInfo(ADVANCED_COLOR_INFO): %w", err)
	}

	const advancedColorEnabledBit = 1 << 1
	if info.Value&advancedColorEnabledBit == 0 {
		// HDR not enabled on this display: report its SDR white point
		// as the max, i.e. no HDR headroom.
		return 80, nil
	}

	// DISPLAYCONFIG_GET_ADVANCED_COLOR_INFO does not itself carry a
	// luminance value; Windows exposes peak luminance only via
	// DXGI_OUTPUT_DESC1.MaxLuminance on the adapter enumeration side,
	// which is part of the out-of-scope duplication collaborator.
	// 1000 nits is used as the conservative HDR10 default used
	// throughout the corpus's capture examples.
	return 1000, nil
}
