package main

// Notes:
// - loadEnvConfig and warnUnknownEnvVars take the lookup functions as
//   arguments, so tests run in parallel without t.Setenv.
// - applyEnvConfig: we verify env values override the config file and that
//   unset variables leave it untouched.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alnah/go-doc2substack/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable parsing
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vars map[string]string
		want envConfig
	}{
		{
			name: "empty environment",
			vars: nil,
			want: envConfig{},
		},
		{
			name: "all variables",
			vars: map[string]string{
				"DOC2SUBSTACK_CONFIG":     "work",
				"DOC2SUBSTACK_DPI":        "300",
				"DOC2SUBSTACK_RENDERER":   "fetch",
				"DOC2SUBSTACK_OUTPUT_DIR": "/tmp/out",
			},
			want: envConfig{ConfigPath: "work", DPI: 300, Renderer: "fetch", OutputDir: "/tmp/out"},
		},
		{
			name: "invalid dpi ignored",
			vars: map[string]string{"DOC2SUBSTACK_DPI": "high"},
			want: envConfig{},
		},
		{
			name: "negative dpi ignored",
			vars: map[string]string{"DOC2SUBSTACK_DPI": "-5"},
			want: envConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := loadEnvConfig(func(k string) string { return tt.vars[k] })
			if *got != tt.want {
				t.Errorf("loadEnvConfig() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf, []string{
		"DOC2SUBSTACK_DPI=300",
		"DOC2SUBSTACK_RENDER=browser",
		"DOC2SUBSTACK_OUTPUT=out",
		"HOME=/home/user",
		"PANDOC_DATA_DIR=x",
	})
	output := buf.String()

	for _, want := range []string{"DOC2SUBSTACK_RENDER ", "DOC2SUBSTACK_OUTPUT "} {
		if !strings.Contains(output, "unknown environment variable "+strings.TrimSpace(want)) {
			t.Errorf("output %q should warn about %s", output, want)
		}
	}
	for _, notWant := range []string{"DOC2SUBSTACK_DPI", "HOME", "PANDOC_DATA_DIR"} {
		if strings.Contains(output, notWant) {
			t.Errorf("output %q should not mention %s", output, notWant)
		}
	}
}

func TestKnownEnvVars_MatchLoader(t *testing.T) {
	t.Parallel()

	// Every known variable must be read by loadEnvConfig
	for name := range knownEnvVars {
		var read bool
		loadEnvConfig(func(k string) string {
			if k == name {
				read = true
			}
			return ""
		})
		if !read {
			t.Errorf("%s is listed as known but never read", name)
		}
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Precedence over the config file
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("overrides config file", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Math.DPI = 150
		cfg.Output.DefaultDir = "from-config"

		applyEnvConfig(&envConfig{DPI: 300, Renderer: "browser", OutputDir: "from-env"}, cfg)

		if cfg.Math.DPI != 300 {
			t.Errorf("DPI = %d, want 300", cfg.Math.DPI)
		}
		if cfg.Math.Renderer != "browser" {
			t.Errorf("Renderer = %q, want browser", cfg.Math.Renderer)
		}
		if cfg.Output.DefaultDir != "from-env" {
			t.Errorf("DefaultDir = %q, want from-env", cfg.Output.DefaultDir)
		}
	})

	t.Run("unset variables keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Math.DPI = 150
		cfg.Math.Renderer = "fetch"

		applyEnvConfig(&envConfig{}, cfg)

		if cfg.Math.DPI != 150 || cfg.Math.Renderer != "fetch" {
			t.Errorf("config changed: %+v", cfg.Math)
		}
	})
}
