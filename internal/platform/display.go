// Package platform holds OS-specific setup for input automation.
package platform

import (
	"errors"
	"os"
	"runtime"
	"strings"
)

// ErrNoDisplay indicates no graphical session is reachable for input injection.
var ErrNoDisplay = errors.New("no graphical display available for mouse automation")

// ErrWayland indicates a Wayland-only session, which rejects synthetic input from X11 clients.
var ErrWayland = errors.New("wayland session without XWayland DISPLAY; mouse automation needs X11")

// LookupEnvFunc exposes environment probing for testability.
type LookupEnvFunc func(string) (string, bool)

var lookupEnv LookupEnvFunc = os.LookupEnv

// ProbeDisplay reports whether the current session can receive synthetic clicks.
// Only Linux and the BSDs depend on environment variables here.
func ProbeDisplay(goos string, lookup LookupEnvFunc) error {
	if lookup == nil {
		lookup = lookupEnv
	}
	switch goos {
	case "windows", "darwin":
		return nil
	}
	if v, ok := lookup("DISPLAY"); ok && strings.TrimSpace(v) != "" {
		return nil
	}
	if v, ok := lookup("WAYLAND_DISPLAY"); ok && strings.TrimSpace(v) != "" {
		return ErrWayland
	}
	return ErrNoDisplay
}

// CheckDisplay probes the running process environment.
func CheckDisplay() error {
	return ProbeDisplay(runtime.GOOS, nil)
}
