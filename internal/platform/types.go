package platform

import "time"

// Platform defines the interface for platform-specific activity queries.
// Both calls are read-only OS queries with no side effects.
type Platform interface {
	// GetForegroundProcess returns the name of the process owning the
	// currently focused window.
	GetForegroundProcess() (string, error)

	// GetIdleDuration returns the time since the last keyboard or mouse
	// input.
	GetIdleDuration() (time.Duration, error)
}
