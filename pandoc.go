package doc2substack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DocumentConverter turns a source document into Markdown whose math is
// delimited with dollars.
type DocumentConverter interface {
	ToMarkup(ctx context.Context, doc Document) (string, error)
}

// Compile-time interface implementation checks.
var (
	_ DocumentConverter = (*PandocConverter)(nil)
	_ DocumentConverter = (*PassthroughConverter)(nil)
	_ CommandRunner     = (*ExecRunner)(nil)
)

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, stdin string, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

// Run executes name with args, feeding stdin and capturing both streams.
// The process is killed when ctx is done.
func (r *ExecRunner) Run(ctx context.Context, stdin string, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- binary comes from config or PATH

	var stdout, stderr bytes.Buffer
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// DefaultPandocPath is the pandoc binary looked up on PATH.
const DefaultPandocPath = "pandoc"

// pandocWriter is the Markdown flavor requested from pandoc. Extensions that
// produce syntax goldmark does not read (attributes, spans, grid tables,
// raw HTML) are disabled so pandoc falls back to plain constructs.
const pandocWriter = "markdown" +
	"-header_attributes-link_attributes-bracketed_spans-native_spans" +
	"-raw_attribute-raw_html-simple_tables-multiline_tables-grid_tables"

// PandocConverter converts LaTeX to Markdown by invoking the pandoc CLI.
// Math is written as $..$ and $$..$$.
type PandocConverter struct {
	Runner CommandRunner
	Path   string
}

// NewPandocConverter creates a PandocConverter with a real command runner.
// An empty path uses pandoc from PATH.
func NewPandocConverter(path string) *PandocConverter {
	if path == "" {
		path = DefaultPandocPath
	}
	return &PandocConverter{Runner: &ExecRunner{}, Path: path}
}

// ToMarkup runs pandoc on the document content. A missing binary wraps
// ErrConverterMissing; any other failure wraps ErrConverterFailed and
// carries pandoc's diagnostic.
func (c *PandocConverter) ToMarkup(ctx context.Context, doc Document) (string, error) {
	if doc.Content == "" {
		return "", ErrEmptyDocument
	}

	args := []string{"-f", "latex", "-t", pandocWriter, "--wrap=none"}
	if doc.SourceDir != "" {
		args = append(args, "--resource-path="+doc.SourceDir)
	}

	stdout, stderr, err := c.Runner.Run(ctx, doc.Content, c.Path, args...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %s: %v", ErrConverterMissing, c.Path, err)
		}
		if msg := strings.TrimSpace(stderr); msg != "" {
			return "", fmt.Errorf("%w: %s: %v", ErrConverterFailed, msg, err)
		}
		return "", fmt.Errorf("%w: %v", ErrConverterFailed, err)
	}

	return stdout, nil
}

// PassthroughConverter returns Markdown documents unchanged.
type PassthroughConverter struct{}

// ToMarkup returns the document content.
func (PassthroughConverter) ToMarkup(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if doc.Content == "" {
		return "", ErrEmptyDocument
	}
	return doc.Content, nil
}
