package main

// Notes:
// - poolAdapter: we test Acquire/Release/Size and panic on wrong type.
// - isCommand, looksLikeInput, hasVerboseFlag: we test argument routing.
// - runMain: we test exit codes end to end. Markdown input with the default
//   WebTeX renderer needs no network or external binary, so conversions run
//   for real here; LaTeX input (pandoc) is covered by integration tests.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	doc2substack "github.com/alnah/go-doc2substack"
)

// ---------------------------------------------------------------------------
// TestPoolAdapter - Pool adapter over doc2substack.ConverterPool
// ---------------------------------------------------------------------------

// wrongTypeConverter is a CLIConverter that is NOT *doc2substack.Converter.
type wrongTypeConverter struct{}

func (w *wrongTypeConverter) Convert(_ context.Context, _ doc2substack.Input) (*doc2substack.ConvertResult, error) {
	return &doc2substack.ConvertResult{}, nil
}

func TestPoolAdapter_Release_WrongType(t *testing.T) {
	t.Parallel()

	pool := doc2substack.NewConverterPool(1)
	defer pool.Close()

	adapter := &poolAdapter{pool: pool}

	// Release with wrong type should panic (programmer error)
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for wrong type, got none")
		}
		msg, ok := r.(string)
		if !ok {
			t.Fatalf("expected string panic, got %T", r)
		}
		if !strings.Contains(msg, "unexpected type") {
			t.Errorf("panic message should contain 'unexpected type', got %q", msg)
		}
	}()

	adapter.Release(&wrongTypeConverter{})
}

func TestPoolAdapter_Size(t *testing.T) {
	t.Parallel()

	pool := doc2substack.NewConverterPool(3)
	defer pool.Close()

	adapter := &poolAdapter{pool: pool}
	if adapter.Size() != 3 {
		t.Errorf("Size() = %d, want 3", adapter.Size())
	}
}

func TestPoolAdapter_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := doc2substack.NewConverterPool(1)
	defer pool.Close()

	adapter := &poolAdapter{pool: pool}

	conv, err := adapter.Acquire(t.Context())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if conv == nil {
		t.Fatal("Acquire() returned nil")
	}

	// Release should not panic
	adapter.Release(conv)
}

func TestPoolAdapter_AcquireError(t *testing.T) {
	t.Parallel()

	pool := doc2substack.NewConverterPool(1, doc2substack.WithDPI(1))
	defer pool.Close()

	adapter := &poolAdapter{pool: pool}

	conv, err := adapter.Acquire(t.Context())
	if err == nil {
		t.Fatal("expected error for invalid DPI")
	}
	// A nil *Converter must not leak out as a non-nil interface
	if conv != nil {
		t.Errorf("Acquire() = %v, want nil interface", conv)
	}
}

// ---------------------------------------------------------------------------
// TestIsCommand - Command name detection
// ---------------------------------------------------------------------------

func TestIsCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"convert", true},
		{"version", true},
		{"help", true},
		{"doctor", true},
		{"completion", true},
		{"config", true},
		{"foo", false},
		{"", false},
		{"notes.tex", false},
		{"Convert", false}, // case sensitive
		{"VERSION", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := isCommand(tt.input); got != tt.want {
				t.Errorf("isCommand(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLooksLikeInput - Implicit convert detection
// ---------------------------------------------------------------------------

func TestLooksLikeInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "drafts")
	if err := os.Mkdir(existing, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"latex file", "notes.tex", true},
		{"markdown file", "post.md", true},
		{"markdown long extension", "post.markdown", true},
		{"uppercase extension", "POST.MD", true},
		{"relative path", "docs/post", true},
		{"existing directory", existing, true},
		{"unknown word", "vresion", false},
		{"empty", "", false},
		{"other extension", "notes.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := looksLikeInput(tt.input); got != tt.want {
				t.Errorf("looksLikeInput(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHasVerboseFlag - Pre-parse for maxprocs logging
// ---------------------------------------------------------------------------

func TestHasVerboseFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"short", []string{"doc2substack", "-v", "a.md"}, true},
		{"long", []string{"doc2substack", "convert", "--verbose", "a.md"}, true},
		{"absent", []string{"doc2substack", "a.md"}, false},
		{"after terminator", []string{"doc2substack", "--", "-v"}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := hasVerboseFlag(tt.args); got != tt.want {
				t.Errorf("hasVerboseFlag(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch and exit codes
// ---------------------------------------------------------------------------

func TestRunMain_Commands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "no arguments",
			args:       []string{"doc2substack"},
			wantCode:   ExitUsage,
			wantStderr: "Usage: doc2substack",
		},
		{
			name:       "version command",
			args:       []string{"doc2substack", "version"},
			wantCode:   ExitSuccess,
			wantStdout: "doc2substack " + Version,
		},
		{
			name:       "version flag",
			args:       []string{"doc2substack", "--version"},
			wantCode:   ExitSuccess,
			wantStdout: "doc2substack " + Version,
		},
		{
			name:       "help flag",
			args:       []string{"doc2substack", "--help"},
			wantCode:   ExitSuccess,
			wantStdout: "Commands:",
		},
		{
			name:       "help convert",
			args:       []string{"doc2substack", "help", "convert"},
			wantCode:   ExitSuccess,
			wantStdout: "--renderer",
		},
		{
			name:       "unknown command",
			args:       []string{"doc2substack", "vresion"},
			wantCode:   ExitUsage,
			wantStderr: "Unknown command: vresion",
		},
		{
			name:       "completion unsupported shell",
			args:       []string{"doc2substack", "completion", "tcsh"},
			wantCode:   ExitUsage,
			wantStderr: "unsupported shell",
		},
		{
			name:       "completion bash",
			args:       []string{"doc2substack", "completion", "bash"},
			wantCode:   ExitSuccess,
			wantStdout: "complete -F",
		},
		{
			name:       "missing input file",
			args:       []string{"doc2substack", "missing.md"},
			wantCode:   ExitIO,
			wantStderr: "error:",
		},
		{
			name:       "convert without input",
			args:       []string{"doc2substack", "convert"},
			wantCode:   ExitIO,
			wantStderr: "no input specified",
		},
		{
			name:       "invalid workers",
			args:       []string{"doc2substack", "convert", "-w", "99", "a.md"},
			wantCode:   ExitUsage,
			wantStderr: "invalid worker count",
		},
		{
			name:     "unknown flag",
			args:     []string{"doc2substack", "convert", "--page-size", "a4", "a.md"},
			wantCode: ExitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil)
			code := runMain(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d\nstderr: %s", tt.args, code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunMain_ConvertMarkdown(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "post.md", "# Post\n\nLet $\\alpha$ and $w^T$.\n\n$$\\int_0^1 x\\,dx$$\n")

	env, stdout, stderr := testEnv(nil)
	code := runMain([]string{"doc2substack", input}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d\nstderr: %s", code, ExitSuccess, stderr.String())
	}

	outPath := filepath.Join(dir, "post.html")
	if !strings.Contains(stdout.String(), "Created "+outPath) {
		t.Errorf("stdout = %q, want Created line", stdout.String())
	}

	html, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	for _, want := range []string{"α", "wᵀ", `class="math display"`, "<title>post</title>"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRunMain_UnterminatedMath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "broken.md", "Price is $5 and\nmore text\n")

	env, _, stderr := testEnv(nil)
	code := runMain([]string{"doc2substack", "convert", input}, env)

	if code != ExitUsage {
		t.Fatalf("runMain() = %d, want %d\nstderr: %s", code, ExitUsage, stderr.String())
	}
	if !strings.Contains(stderr.String(), "hint:") {
		t.Errorf("stderr = %q, want an unterminated math hint", stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "broken.html")); !os.IsNotExist(err) {
		t.Errorf("output file should not exist after a fatal error, stat err = %v", err)
	}
}

func TestRunMain_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "notes/readme.txt", "text")

	env, _, stderr := testEnv(nil)
	code := runMain([]string{"doc2substack", "convert", input}, env)

	if code != ExitUsage {
		t.Errorf("runMain() = %d, want %d\nstderr: %s", code, ExitUsage, stderr.String())
	}
}

func TestRunMain_EnvOutputDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "src/post.md", "Hello $x^2$\n")
	outDir := filepath.Join(dir, "out")

	env, _, stderr := testEnv(map[string]string{"DOC2SUBSTACK_OUTPUT_DIR": outDir})
	code := runMain([]string{"doc2substack", input, "-q"}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d\nstderr: %s", code, stderr.String())
	}

	if _, err := os.Stat(filepath.Join(outDir, "post.html")); err != nil {
		t.Errorf("expected output in DOC2SUBSTACK_OUTPUT_DIR: %v", err)
	}
}
