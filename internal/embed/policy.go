package embed

import (
	"context"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-doc2substack/internal/mathimg"
	"github.com/alnah/go-doc2substack/internal/mathspan"
	"github.com/alnah/go-doc2substack/internal/unimath"
)

// Defaults for image rendering.
const (
	DefaultDisplayDPI = 200
	DefaultInlineDPI  = 150
	DefaultTimeout    = 10 * time.Second
)

// RawMarker prefixes math that could not be rendered at all.
const RawMarker = "⚠"

// Outcome records how a span was embedded.
type Outcome int

const (
	// Unicode means the span was transliterated to text.
	Unicode Outcome = iota
	// Image means the span references a rendered image.
	Image
	// Raw means image rendering failed and the LaTeX source is shown.
	Raw
)

// Warning describes a span that degraded to raw LaTeX.
type Warning struct {
	Latex  string
	Reason string
}

// Fragment is the HTML that replaces one span.
type Fragment struct {
	HTML string
	// Text is a plain rendering for places that cannot hold markup: the
	// transliteration, or the LaTeX source otherwise.
	Text    string
	Kind    mathspan.Kind
	Outcome Outcome
	// Refusal holds the transliteration refusal for inline spans that took
	// the image path.
	Refusal string
	Warning *Warning
}

// Policy decides how each math span is embedded: inline spans that the
// engine renders become text, every other span becomes an image, and a
// failed image degrades to the raw source with a marker.
type Policy struct {
	Renderer   mathimg.Renderer
	Engine     *unimath.Engine
	DisplayDPI int
	InlineDPI  int
	Timeout    time.Duration
}

// NewPolicy returns a policy with default DPIs and timeout. A nil engine
// uses the default symbol table.
func NewPolicy(renderer mathimg.Renderer, engine *unimath.Engine) *Policy {
	if engine == nil {
		engine = unimath.NewEngine(nil)
	}
	return &Policy{
		Renderer:   renderer,
		Engine:     engine,
		DisplayDPI: DefaultDisplayDPI,
		InlineDPI:  DefaultInlineDPI,
		Timeout:    DefaultTimeout,
	}
}

// Embed returns the fragment for span. It never fails: image errors degrade
// the span and are reported through Fragment.Warning. cache may be nil.
func (p *Policy) Embed(ctx context.Context, span mathspan.Span, cache *Cache) Fragment {
	if span.Kind == mathspan.Display {
		frag := p.image(ctx, span, NormalizeDisplay(span), p.displayDPI(), "display", cache)
		frag.Kind = mathspan.Display
		return frag
	}

	switch r := p.Engine.Transliterate(span.Latex).(type) {
	case unimath.Rendered:
		return Fragment{HTML: html.EscapeString(r.Text), Text: r.Text, Kind: mathspan.Inline, Outcome: Unicode}
	case unimath.Refused:
		frag := p.image(ctx, span, strings.TrimSpace(span.Latex), p.inlineDPI(), "inline", cache)
		frag.Kind = mathspan.Inline
		frag.Refusal = r.Reason
		return frag
	}
	// Unreachable while Result stays sealed.
	return p.raw(span, "unknown transliteration result")
}

func (p *Policy) displayDPI() int {
	if p.DisplayDPI > 0 {
		return p.DisplayDPI
	}
	return DefaultDisplayDPI
}

func (p *Policy) inlineDPI() int {
	if p.InlineDPI > 0 {
		return p.InlineDPI
	}
	return p.displayDPI() * 3 / 4
}

func (p *Policy) image(ctx context.Context, span mathspan.Span, latex string, dpi int, class string, cache *Cache) Fragment {
	if p.Renderer == nil {
		return p.raw(span, "no image renderer configured")
	}

	render := func() (mathimg.Ref, error) {
		timeout := p.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		rctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return p.Renderer.Render(rctx, latex, dpi)
	}

	var ref mathimg.Ref
	var err error
	if cache != nil {
		ref, err = cache.get(latex, dpi, render)
	} else {
		ref, err = render()
	}
	if err != nil {
		return p.raw(span, err.Error())
	}
	return Fragment{HTML: imgTag(ref, class, span.Latex), Text: strings.TrimSpace(span.Latex), Outcome: Image}
}

func (p *Policy) raw(span mathspan.Span, reason string) Fragment {
	var b strings.Builder
	b.WriteString(`<code class="math-raw" title="`)
	b.WriteString(html.EscapeString("image rendering failed: " + reason))
	b.WriteString(`">`)
	b.WriteString(RawMarker + " ")
	b.WriteString(html.EscapeString(span.Raw))
	b.WriteString(`</code>`)
	return Fragment{
		HTML:    b.String(),
		Text:    span.Raw,
		Kind:    span.Kind,
		Outcome: Raw,
		Warning: &Warning{Latex: span.Raw, Reason: reason},
	}
}

func imgTag(ref mathimg.Ref, class, alt string) string {
	var b strings.Builder
	b.WriteString(`<img class="math `)
	b.WriteString(class)
	b.WriteString(`" src="`)
	b.WriteString(html.EscapeString(ref.Locator))
	b.WriteString(`" alt="`)
	b.WriteString(html.EscapeString(strings.TrimSpace(alt)))
	b.WriteString(`"`)
	if ref.Width > 0 && ref.Height > 0 {
		b.WriteString(` width="` + strconv.Itoa(ref.Width) + `" height="` + strconv.Itoa(ref.Height) + `"`)
	}
	if class == "inline" {
		b.WriteString(` style="vertical-align:middle;"`)
	}
	b.WriteString(`>`)
	return b.String()
}
