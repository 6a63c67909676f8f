//go:build !windows

package services

import (
	"fmt"
	"os/exec"
	"syscall"
)

// configureProcAttr configures the process attributes for creating a new process group
func configureProcAttr(cmd *exec.Cmd) {
	// Configure the process to run in its own process group
	// This allows us to signal the entire process group (parent + children) later
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true, // Create new process group with this process as leader
	}
}

// terminateProcessGroup asks an entire process group to shut down gracefully
func terminateProcessGroup(pid int) error {
	return signalProcessGroup(pid, syscall.SIGTERM)
}

// killProcessGroup forcibly kills an entire process group
func killProcessGroup(pid int) error {
	return signalProcessGroup(pid, syscall.SIGKILL)
}

func signalProcessGroup(pid int, sig syscall.Signal) error {
	// Signal the process group (negative PID targets the entire process group)
	if err := syscall.Kill(-pid, sig); err != nil {
		// If the process group signal fails, try the individual process
		if err2 := syscall.Kill(pid, sig); err2 != nil {
			return fmt.Errorf("failed to signal process group -%d: %v, also failed to signal process %d: %v", pid, err, pid, err2)
		}
	}
	return nil
}
