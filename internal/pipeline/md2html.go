package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// ErrHTMLConversion indicates the Markdown renderer failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultHighlightStyle is the chroma style for fenced code.
const DefaultHighlightStyle = "github"

// HTMLConverter renders Markdown to an HTML fragment.
type HTMLConverter interface {
	ToHTMLFragment(ctx context.Context, markdown string) (string, error)
}

var _ HTMLConverter = (*GoldmarkConverter)(nil)

// GoldmarkConverter renders GFM with footnotes. Code is highlighted with
// inline style attributes since the editor drops classes and stylesheets on
// paste. Raw HTML in the source is omitted; math comes back in through
// placeholders after rendering.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM, footnotes and
// inline-styled syntax highlighting.
func NewGoldmarkConverter() *GoldmarkConverter {
	return &GoldmarkConverter{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithStyle(DefaultHighlightStyle),
				highlighting.WithFormatOptions(chromahtml.WithClasses(false)),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // stable anchors for pasted headings
		),
	)}
}

// ToHTMLFragment returns the body markup only. goldmark takes no context, so
// rendering runs on its own goroutine and a canceled ctx returns at once;
// the abandoned render finishes in the background.
func (c *GoldmarkConverter) ToHTMLFragment(ctx context.Context, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type rendered struct {
		html string
		err  error
	}
	out := make(chan rendered, 1)
	go func() {
		var buf bytes.Buffer
		err := c.md.Convert([]byte(markdown), &buf)
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrHTMLConversion, err)
		}
		out <- rendered{html: buf.String(), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-out:
		if r.err != nil {
			return "", r.err
		}
		return r.html, nil
	}
}
