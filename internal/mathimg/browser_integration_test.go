//go:build integration

package mathimg

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

const testTimeout = 60 * time.Second

func TestBrowser_Render_Integration(t *testing.T) {
	b := NewBrowser(testTimeout)
	t.Cleanup(func() { _ = b.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	ref, err := b.Render(ctx, `\displaystyle\int_0^1 x\,dx`, 192)
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	if !strings.HasPrefix(ref.Locator, "data:image/png;base64,") {
		t.Errorf("Locator should be a PNG data URI")
	}
	if ref.Width <= 0 || ref.Height <= 0 {
		t.Errorf("size = %dx%d, want positive", ref.Width, ref.Height)
	}
}

func TestBrowser_Render_KaTeXError_Integration(t *testing.T) {
	b := NewBrowser(testTimeout)
	t.Cleanup(func() { _ = b.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	_, err := b.Render(ctx, `\frac{1}{`, 150)
	if !errors.Is(err, ErrRender) {
		t.Errorf("Render() error = %v, want ErrRender", err)
	}
}
