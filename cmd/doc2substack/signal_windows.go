//go:build windows

package main

import "os"

// stopSignals end a run. Windows only delivers os.Interrupt (Ctrl+C, Ctrl+Break).
var stopSignals = []os.Signal{os.Interrupt}
