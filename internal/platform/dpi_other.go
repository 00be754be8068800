//go:build !windows

package platform

// EnableDPIAwareness is a no-op outside Windows.
func EnableDPIAwareness() (bool, error) {
	return false, nil
}
