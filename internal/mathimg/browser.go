package mathimg

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"image/png"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-doc2substack/internal/process"
)

// DefaultKaTeXURL is the KaTeX distribution loaded by the browser renderer.
const DefaultKaTeXURL = "https://cdn.jsdelivr.net/npm/katex@0.16.11/dist"

// defaultBrowserTimeout bounds page load and rendering when ctx has no deadline.
const defaultBrowserTimeout = 30 * time.Second

// renderScript typesets the expression and returns KaTeX's error message,
// or an empty string on success.
const renderScript = `(tex) => {
	try {
		katex.render(tex, document.getElementById("math"), {throwOnError: true, output: "html"});
		return "";
	} catch (e) {
		return String(e && e.message || e);
	}
}`

// Browser renders LaTeX with KaTeX in headless Chrome and screenshots the
// result at the requested DPI. The browser is launched on first use and
// reused until Close. Safe for concurrent use; renders are serialized.
type Browser struct {
	KaTeXURL string
	Timeout  time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewBrowser returns a Browser renderer. A zero timeout uses 30s.
func NewBrowser(timeout time.Duration) *Browser {
	if timeout <= 0 {
		timeout = defaultBrowserTimeout
	}
	return &Browser{KaTeXURL: DefaultKaTeXURL, Timeout: timeout}
}

// ensureBrowser lazily launches and connects to Chrome. Callers hold b.mu.
func (b *Browser) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		_ = process.KillTree(l.PID())
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b.launcher = l
	b.browser = browser
	return nil
}

// Render typesets latex and returns a PNG data: URI sized in CSS pixels.
func (b *Browser) Render(ctx context.Context, latex string, dpi int) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}
	if err := validateDPI(dpi); err != nil {
		return Ref{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureBrowser(); err != nil {
		return Ref{}, err
	}

	timeout := b.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return Ref{}, context.DeadlineExceeded
		}
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()
	page = page.Context(ctx).Timeout(timeout)

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1200,
		Height:            800,
		DeviceScaleFactor: float64(dpi) / CSSPixelsPerInch,
	})
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := page.SetDocumentContent(b.pageHTML()); err != nil {
		return Ref{}, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return Ref{}, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	res, err := page.Eval(renderScript, latex)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %v", ErrRender, err)
	}
	if msg := res.Value.Str(); msg != "" {
		return Ref{}, fmt.Errorf("%w: %s", ErrRender, msg)
	}
	if _, err := page.Eval(`() => document.fonts.ready.then(() => true)`); err != nil {
		return Ref{}, fmt.Errorf("%w: waiting for fonts: %v", ErrRender, err)
	}

	el, err := page.Element("#math .katex")
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %v", ErrRender, err)
	}
	shot, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: screenshot: %v", ErrRender, err)
	}

	ref := Ref{Latex: latex, DPI: dpi, Locator: DataURI("image/png", shot)}
	if cfg, err := png.DecodeConfig(bytes.NewReader(shot)); err == nil {
		ref.Width = cssSize(cfg.Width, dpi)
		ref.Height = cssSize(cfg.Height, dpi)
	}
	return ref, nil
}

// pageHTML is the blank page that hosts KaTeX.
func (b *Browser) pageHTML() string {
	base := html.EscapeString(b.KaTeXURL)
	return `<!DOCTYPE html><html><head><meta charset="utf-8">` +
		`<link rel="stylesheet" href="` + base + `/katex.min.css">` +
		`<script src="` + base + `/katex.min.js"></script>` +
		`<style>body{margin:0;background:#fff}#math{display:inline-block;padding:2px;font-size:16px}</style>` +
		`</head><body><span id="math"></span></body></html>`
}

// Close shuts down the browser and kills its process group.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		_ = process.KillTree(b.launcher.PID())
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}
