//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// processSystemDPIAware is PROCESS_SYSTEM_DPI_AWARE from shellscalingapi.h.
const processSystemDPIAware = 1

var (
	shcore                     = windows.NewLazySystemDLL("shcore.dll")
	procSetProcessDpiAwareness = shcore.NewProc("SetProcessDpiAwareness")
)

// EnableDPIAwareness makes pointer coordinates match physical pixels.
// It reports whether the call applies to this platform.
func EnableDPIAwareness() (bool, error) {
	if err := procSetProcessDpiAwareness.Find(); err != nil {
		return true, fmt.Errorf("locate SetProcessDpiAwareness: %w", err)
	}
	hr, _, _ := procSetProcessDpiAwareness.Call(uintptr(processSystemDPIAware))
	if hr != 0 {
		return true, fmt.Errorf("SetProcessDpiAwareness failed: HRESULT 0x%08X", uint32(hr))
	}
	return true, nil
}
