//go:build darwin
// +build darwin

package platform

// Stubs for non-Darwin platforms when building for Darwin
func newWindowsPlatform() (Platform, error) {
	return nil, &UnsupportedPlatformError{OS: "windows (building for darwin)"}
}

func newLinuxPlatform() (Platform, error) {
	return nil, &UnsupportedPlatformError{OS: "linux (building for darwin)"}
}
