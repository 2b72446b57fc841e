//go:build darwin
// +build darwin

package platform

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

type darwinImpl struct{}

func newDarwinPlatform() (Platform, error) {
	return &darwinImpl{}, nil
}

func (p *darwinImpl) GetForegroundProcess() (string, error) {
	out, err := exec.Command("osascript", "-e",
		`tell application "System Events" to get name of first application process whose frontmost is true`,
	).Output()
	if err != nil {
		return "", fmt.Errorf("failed to query frontmost application: %w", err)
	}

	name := strings.TrimSpace(string(out))
	if name == "" {
		return "", fmt.Errorf("empty frontmost application name")
	}
	return name, nil
}

func (p *darwinImpl) GetIdleDuration() (time.Duration, error) {
	// HIDIdleTime is reported in nanoseconds by the IOHIDSystem registry entry.
	out, err := exec.Command("sh", "-c",
		`ioreg -c IOHIDSystem | awk '/HIDIdleTime/ {print $NF; exit}'`,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("failed to query HIDIdleTime: %w", err)
	}

	ns, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected HIDIdleTime output %q: %w", string(out), err)
	}

	return time.Duration(ns), nil
}
