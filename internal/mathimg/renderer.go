package mathimg

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for image rendering.
var (
	ErrInvalidDPI     = errors.New("invalid DPI")
	ErrFetch          = errors.New("image fetch failed")
	ErrNotImage       = errors.New("response is not an image")
	ErrImageTooLarge  = errors.New("image exceeds size limit")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrRender         = errors.New("math rendering failed")
)

// CSSPixelsPerInch is the CSS reference resolution.
const CSSPixelsPerInch = 96

// Renderer turns a LaTeX math string into an image reference.
type Renderer interface {
	Render(ctx context.Context, latex string, dpi int) (Ref, error)
}

// Ref locates a rendered image. Locator is an http(s) URL or a data: URI.
// Width and Height are CSS pixels; zero means unknown.
type Ref struct {
	Latex   string
	DPI     int
	Locator string
	Width   int
	Height  int
}

// Compile-time interface checks.
var (
	_ Renderer = (*WebTeX)(nil)
	_ Renderer = (*Fetcher)(nil)
	_ Renderer = (*Browser)(nil)
)

func validateDPI(dpi int) error {
	if dpi <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDPI, dpi)
	}
	return nil
}

// cssSize converts device pixels rendered at dpi into CSS pixels.
func cssSize(px, dpi int) int {
	if dpi <= 0 {
		return 0
	}
	return (px*CSSPixelsPerInch + dpi/2) / dpi
}
