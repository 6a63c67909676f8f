//go:build windows

package services

import (
	"fmt"
	"os/exec"
	"syscall"
)

// Windows API constants
const (
	PROCESS_TERMINATE         = 0x0001
	PROCESS_QUERY_INFORMATION = 0x0400
)

// Windows API functions
var (
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	procOpenProcess      = kernel32.NewProc("OpenProcess")
	procTerminateProcess = kernel32.NewProc("TerminateProcess")
	procCloseHandle      = kernel32.NewProc("CloseHandle")
)

// configureProcAttr configures the process attributes for Windows
func configureProcAttr(cmd *exec.Cmd) {
	// On Windows, we can't create process groups the same way as Unix
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// terminateProcessGroup attempts to terminate a process on Windows.
// There is no graceful SIGTERM equivalent, so this forcibly terminates.
func terminateProcessGroup(pid int) error {
	return killProcessGroup(pid)
}

// killProcessGroup terminates a process on Windows
func killProcessGroup(pid int) error {
	// Windows has no Unix-style process groups, terminate the individual process
	handle, _, err := procOpenProcess.Call(
		uintptr(PROCESS_TERMINATE|PROCESS_QUERY_INFORMATION),
		uintptr(0), // bInheritHandle = FALSE
		uintptr(pid),
	)

	if handle == 0 {
		return fmt.Errorf("failed to open process %d: %v", pid, err)
	}
	defer procCloseHandle.Call(handle)

	success, _, err := procTerminateProcess.Call(handle, uintptr(1))
	if success == 0 {
		return fmt.Errorf("failed to terminate process %d: %v", pid, err)
	}

	return nil
}
