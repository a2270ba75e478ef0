//go:build !windows

package main

import (
	"os"
	"syscall"
)

// stopSignals end a run. SIGHUP covers a --watch session whose terminal closed.
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
