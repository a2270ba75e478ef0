package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-doc2substack/internal/config"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, environment variables and the base configuration.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string
	Config  *config.Config // Used when no config file is named
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		Config:  config.DefaultConfig(),
	}
}
