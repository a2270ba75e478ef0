//go:build windows

// Package process stops the headless Chrome started for math rendering
// together with the helper processes it forks.
package process

import (
	"os/exec"
	"strconv"
)

// KillTree force-terminates pid and its descendants with taskkill.
func KillTree(pid int) error {
	if pid <= 0 {
		return nil
	}
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
