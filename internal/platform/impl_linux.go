//go:build linux
// +build linux

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// linuxImpl shells out to the standard X11 tooling. xprintidle reports the
// idle time in milliseconds; xdotool resolves the focused window's pid, and
// /proc/<pid>/comm gives the process name.
type linuxImpl struct{}

func newLinuxPlatform() (Platform, error) {
	if _, err := exec.LookPath("xprintidle"); err != nil {
		return nil, fmt.Errorf("xprintidle not found in PATH (required for idle detection): %w", err)
	}
	return &linuxImpl{}, nil
}

func (p *linuxImpl) GetForegroundProcess() (string, error) {
	out, err := exec.Command("xdotool", "getactivewindow", "getwindowpid").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get active window pid: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return "", fmt.Errorf("unexpected xdotool output %q: %w", string(out), err)
	}

	comm, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return "", fmt.Errorf("failed to read process name for pid %d: %w", pid, err)
	}

	name := strings.TrimSpace(string(comm))
	if name == "" {
		return "", fmt.Errorf("empty process name for pid %d", pid)
	}
	return name, nil
}

func (p *linuxImpl) GetIdleDuration() (time.Duration, error) {
	out, err := exec.Command("xprintidle").Output()
	if err != nil {
		return 0, fmt.Errorf("xprintidle failed: %w", err)
	}

	ms, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected xprintidle output %q: %w", string(out), err)
	}

	return time.Duration(ms) * time.Millisecond, nil
}
