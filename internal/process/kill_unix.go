//go:build !windows

// Package process terminates browser process trees left behind by the renderer.
package process

import "syscall"

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID). Non-positive PIDs are ignored.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort: the launcher's own Kill is the fallback.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
