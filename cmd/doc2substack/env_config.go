package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-doc2substack/internal/config"
)

// envPrefix marks the environment variables read by the CLI.
const envPrefix = "DOC2SUBSTACK_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // DOC2SUBSTACK_CONFIG: config file name or path
	DPI        int    // DOC2SUBSTACK_DPI: display image resolution
	Renderer   string // DOC2SUBSTACK_RENDERER: webtex, fetch, browser
	OutputDir  string // DOC2SUBSTACK_OUTPUT_DIR: default output directory
}

// knownEnvVars lists valid DOC2SUBSTACK_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOC2SUBSTACK_CONFIG":     true,
	"DOC2SUBSTACK_DPI":        true,
	"DOC2SUBSTACK_RENDERER":   true,
	"DOC2SUBSTACK_OUTPUT_DIR": true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable numbers are ignored; range checks happen in config.Validate.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("DOC2SUBSTACK_CONFIG"),
		Renderer:   getenv("DOC2SUBSTACK_RENDERER"),
		OutputDir:  getenv("DOC2SUBSTACK_OUTPUT_DIR"),
	}

	if dpi := getenv("DOC2SUBSTACK_DPI"); dpi != "" {
		if n, err := strconv.Atoi(dpi); err == nil && n > 0 {
			cfg.DPI = n
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized DOC2SUBSTACK_* variables.
// Helps catch typos like DOC2SUBSTACK_RENDER instead of DOC2SUBSTACK_RENDERER.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, envPrefix) {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; CLI flags are applied later via
// mergeFlags, giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.DPI != 0 {
		cfg.Math.DPI = env.DPI
	}
	if env.Renderer != "" {
		cfg.Math.Renderer = env.Renderer
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
}
