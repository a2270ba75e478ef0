package mathimg

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// DefaultWebTeXURL is the CodeCogs PNG endpoint.
const DefaultWebTeXURL = "https://latex.codecogs.com/png.latex"

// WebTeX builds image URLs for a WebTeX-style service. It performs no I/O:
// the editor that receives the HTML fetches the image.
type WebTeX struct {
	BaseURL string
}

// NewWebTeX returns a WebTeX renderer, defaulting to CodeCogs.
func NewWebTeX(baseURL string) *WebTeX {
	if baseURL == "" {
		baseURL = DefaultWebTeXURL
	}
	return &WebTeX{BaseURL: baseURL}
}

// Render returns the URL of latex rendered at dpi.
func (w *WebTeX) Render(ctx context.Context, latex string, dpi int) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}
	if err := validateDPI(dpi); err != nil {
		return Ref{}, err
	}
	return Ref{Latex: latex, DPI: dpi, Locator: w.URL(latex, dpi)}, nil
}

// URL is the image address for latex at dpi. The whole expression is
// percent-encoded with %20 for spaces; the service reads the raw query as
// LaTeX, so a form-encoded '+' would turn into a space.
func (w *WebTeX) URL(latex string, dpi int) string {
	expr := `\dpi{` + strconv.Itoa(dpi) + `} ` + latex
	sep := "?"
	if strings.Contains(w.BaseURL, "?") {
		sep = ""
	}
	return w.BaseURL + sep + strings.ReplaceAll(url.QueryEscape(expr), "+", "%20")
}
