//go:build windows
// +build windows

package platform

import (
	"fmt"
	"strings"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

type windowsImpl struct{}

var (
	user32   = windows.NewLazyDLL("user32.dll")
	kernel32 = windows.NewLazyDLL("kernel32.dll")
	psapi    = windows.NewLazyDLL("psapi.dll")

	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetLastInputInfo         = user32.NewProc("GetLastInputInfo")

	procGetModuleFileNameEx = psapi.NewProc("GetModuleFileNameExW")
	procOpenProcess         = kernel32.NewProc("OpenProcess")
	procCloseHandle         = kernel32.NewProc("CloseHandle")
	procGetTickCount        = kernel32.NewProc("GetTickCount")
)

const (
	PROCESS_QUERY_INFORMATION = 0x0400
	PROCESS_VM_READ           = 0x0010
)

// lastInputInfo mirrors the win32 LASTINPUTINFO struct.
type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

func newWindowsPlatform() (Platform, error) {
	return &windowsImpl{}, nil
}

func (p *windowsImpl) GetForegroundProcess() (string, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return "", fmt.Errorf("failed to get foreground window")
	}

	var processID uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&processID)))
	if processID == 0 {
		return "", fmt.Errorf("failed to resolve process for foreground window")
	}

	handle, _, _ := procOpenProcess.Call(
		PROCESS_QUERY_INFORMATION|PROCESS_VM_READ,
		0,
		uintptr(processID),
	)
	if handle == 0 {
		return "", fmt.Errorf("failed to open process %d", processID)
	}
	defer procCloseHandle.Call(handle)

	buf := make([]uint16, 260)
	ret, _, _ := procGetModuleFileNameEx.Call(
		handle,
		0,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
	)
	if ret == 0 {
		return "", fmt.Errorf("failed to get module path for process %d", processID)
	}

	path := windows.UTF16ToString(buf)
	parts := strings.Split(path, "\\")
	name := parts[len(parts)-1]
	name = strings.TrimSuffix(name, ".exe")
	if name == "" {
		return "", fmt.Errorf("empty process name for pid %d", processID)
	}
	return name, nil
}

func (p *windowsImpl) GetIdleDuration() (time.Duration, error) {
	info := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}
	ret, _, _ := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return 0, fmt.Errorf("GetLastInputInfo failed")
	}

	tick, _, _ := procGetTickCount.Call()

	// Both values are 32-bit millisecond tick counts that wrap every ~49
	// days; unsigned subtraction handles the wraparound.
	elapsed := uint32(tick) - info.dwTime
	return time.Duration(elapsed) * time.Millisecond, nil
}
