package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-doc2substack/internal/config"
	"github.com/alnah/go-doc2substack/internal/yamlutil"
)

func TestRunConfigCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "blog.yaml", "math:\n  dpi: 300\n  renderer: fetch\nhtml:\n  title: Blog\n")
	badPath := writeFile(t, dir, "bad.yaml", "math:\n  dpi: 10\n")

	tests := []struct {
		name       string
		args       []string
		vars       map[string]string
		wantCode   int
		wantStdout []string
		wantStderr string
	}{
		{
			name:       "defaults",
			wantCode:   ExitSuccess,
			wantStdout: []string{"dpi: 200", "renderer: webtex", "quotes: straight"},
		},
		{
			name:       "config file",
			args:       []string{"-c", cfgPath},
			wantCode:   ExitSuccess,
			wantStdout: []string{"dpi: 300", "renderer: fetch", "title: Blog"},
		},
		{
			name:       "env overrides config file",
			args:       []string{"--config", cfgPath},
			vars:       map[string]string{"DOC2SUBSTACK_DPI": "400", "DOC2SUBSTACK_OUTPUT_DIR": "/srv/out"},
			wantCode:   ExitSuccess,
			wantStdout: []string{"dpi: 400", "defaultDir: /srv/out", "renderer: fetch"},
		},
		{
			name:       "config from env",
			vars:       map[string]string{"DOC2SUBSTACK_CONFIG": cfgPath},
			wantCode:   ExitSuccess,
			wantStdout: []string{"title: Blog"},
		},
		{
			name:       "missing config",
			args:       []string{"-c", filepath.Join(dir, "missing.yaml")},
			wantCode:   ExitUsage,
			wantStderr: "config file not found",
		},
		{
			name:       "invalid config",
			args:       []string{"-c", badPath},
			wantCode:   ExitUsage,
			wantStderr: "dpi",
		},
		{
			name:       "env value out of range",
			vars:       map[string]string{"DOC2SUBSTACK_RENDERER": "pdf"},
			wantCode:   ExitUsage,
			wantStderr: "math.renderer",
		},
		{
			name:     "unknown flag",
			args:     []string{"--format", "json"},
			wantCode: ExitUsage,
		},
		{
			name:     "help flag",
			args:     []string{"--help"},
			wantCode: ExitSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(tt.vars)
			if code := runConfigCmd(tt.args, env); code != tt.wantCode {
				t.Errorf("runConfigCmd(%v) = %d, want %d (stderr %q)", tt.args, code, tt.wantCode, stderr.String())
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout = %q, want to contain %q", stdout.String(), want)
				}
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

// The printed YAML must load back as the same config.
func TestPrintEffectiveConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(map[string]string{"DOC2SUBSTACK_RENDERER": "browser"})

	var buf strings.Builder
	if err := printEffectiveConfig(&buf, "", env); err != nil {
		t.Fatalf("printEffectiveConfig() error = %v", err)
	}

	var got config.Config
	if err := yamlutil.UnmarshalStrict([]byte(buf.String()), &got); err != nil {
		t.Fatalf("output is not a valid config: %v\n%s", err, buf.String())
	}
	if got.Math.Renderer != "browser" || got.Math.DPI != config.DefaultDPI {
		t.Errorf("round trip = %+v", got.Math)
	}
}
