package main

// Notes:
// - Test helpers and fakes shared across the command tests.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	doc2substack "github.com/alnah/go-doc2substack"
	"github.com/alnah/go-doc2substack/internal/config"
)

// ---------------------------------------------------------------------------
// Environment
// ---------------------------------------------------------------------------

// testEnv returns an Environment with captured output and the given
// environment variables instead of the process environment.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	environ := make([]string, 0, len(vars))
	for k, v := range vars {
		environ = append(environ, k+"="+v)
	}
	return &Environment{
		Now:     func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
		Stdout:  &stdout,
		Stderr:  &stderr,
		Getenv:  func(k string) string { return vars[k] },
		Environ: func() []string { return environ },
		Config:  config.DefaultConfig(),
	}, &stdout, &stderr
}

// writeFile creates dir/name with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

// mockConverter returns a fixed result and records the documents it saw.
type mockConverter struct {
	mu     sync.Mutex
	seen   []doc2substack.Input
	result *doc2substack.ConvertResult
	err    error
	notify chan string // receives the document name of each call, if set
}

func (m *mockConverter) Convert(_ context.Context, input doc2substack.Input) (*doc2substack.ConvertResult, error) {
	m.mu.Lock()
	m.seen = append(m.seen, input)
	m.mu.Unlock()

	if m.notify != nil {
		m.notify <- input.Document.Name
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &doc2substack.ConvertResult{HTML: []byte("<p>" + input.Document.Name + "</p>")}, nil
}

func (m *mockConverter) Inputs() []doc2substack.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]doc2substack.Input(nil), m.seen...)
}

// mockPool hands out a single converter, or fails every Acquire.
type mockPool struct {
	conv       CLIConverter
	size       int
	acquireErr error

	mu       sync.Mutex
	acquired int
	released int
}

func (p *mockPool) Acquire(ctx context.Context) (CLIConverter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return p.conv, nil
}

func (p *mockPool) Release(CLIConverter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}

func (p *mockPool) Size() int {
	if p.size == 0 {
		return 1
	}
	return p.size
}

// Compile-time check that mockPool implements Pool.
var _ Pool = (*mockPool)(nil)
