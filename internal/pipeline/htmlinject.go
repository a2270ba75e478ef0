package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

var ErrDocumentRender = errors.New("document template rendering failed")

// CSSInjector places the page style into a rendered document.
type CSSInjector interface {
	InjectCSS(ctx context.Context, page, css string) string
}

var _ CSSInjector = (*CSSInjection)(nil)

// CSSInjection adds one <style> element to a page: before </head> when the
// page has one, right after the <body> start tag otherwise, or in front of a
// bare fragment. The Substack editor ignores it on paste; it only shapes the
// preview opened in a browser.
type CSSInjection struct{}

func (s *CSSInjection) InjectCSS(ctx context.Context, page, css string) string {
	if css == "" || ctx.Err() != nil {
		return page
	}
	at := styleOffset(page)
	return page[:at] + "<style>" + sanitizeCSS(css) + "</style>" + page[at:]
}

// styleOffset returns the byte offset the style element goes at.
func styleOffset(page string) int {
	lower := strings.ToLower(page)
	if i := strings.Index(lower, "</head>"); i >= 0 {
		return i
	}
	if i := strings.Index(lower, "<body"); i >= 0 {
		if end := strings.IndexByte(page[i:], '>'); end >= 0 {
			return i + end + 1
		}
	}
	return 0
}

// sanitizeCSS keeps css from closing its <style> element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// DocumentData fills the document template.
type DocumentData struct {
	Title string
	// Body is trusted: goldmark and the embed policy escaped every user
	// string in it.
	Body template.HTML
}

// DocumentRenderer wraps a body fragment into a standalone page.
type DocumentRenderer interface {
	RenderDocument(ctx context.Context, data DocumentData) (string, error)
}

var _ DocumentRenderer = (*DocumentTemplate)(nil)

// DocumentTemplate is an html/template receiving DocumentData.
type DocumentTemplate struct {
	tmpl *template.Template
}

func NewDocumentTemplate(source string) (*DocumentTemplate, error) {
	tmpl, err := template.New("document").Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}
	return &DocumentTemplate{tmpl: tmpl}, nil
}

func (d *DocumentTemplate) RenderDocument(ctx context.Context, data DocumentData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var page bytes.Buffer
	if err := d.tmpl.Execute(&page, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}
	return page.String(), nil
}
