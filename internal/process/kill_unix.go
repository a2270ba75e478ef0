//go:build !windows

// Package process stops the headless Chrome started for math rendering
// together with the helper processes it forks.
package process

import "syscall"

// KillTree sends SIGKILL to the process group led by pid. Chrome is
// launched as a group leader so its renderers go with it. A pid <= 0 is
// ignored: kill(0) would hit the caller's own group.
func KillTree(pid int) error {
	if pid <= 0 {
		return nil
	}
	return syscall.Kill(-pid, syscall.SIGKILL)
}
