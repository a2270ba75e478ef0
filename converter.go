package doc2substack

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/alnah/go-doc2substack/internal/assets"
	"github.com/alnah/go-doc2substack/internal/embed"
	"github.com/alnah/go-doc2substack/internal/fileutil"
	"github.com/alnah/go-doc2substack/internal/mathimg"
	"github.com/alnah/go-doc2substack/internal/mathspan"
	"github.com/alnah/go-doc2substack/internal/pipeline"
	"github.com/alnah/go-doc2substack/internal/unimath"
)

// Compile-time interface implementation checks.
// These ensure implementations satisfy their interfaces at compile time,
// catching signature mismatches before runtime.
var (
	_ pipeline.MarkupPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter      = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector        = (*pipeline.CSSInjection)(nil)
	_ pipeline.DocumentRenderer   = (*pipeline.DocumentTemplate)(nil)
)

// Converter orchestrates the document-to-HTML pipeline.
// Create with NewConverter(), use Convert() for conversion, and Close() when done.
// A Converter is safe for sequential use; use a ConverterPool for parallelism.
type Converter struct {
	cfg               converterConfig
	assetLoader       assets.AssetLoader
	publicAssetLoader AssetLoader
	docConverters     map[Format]DocumentConverter
	renderer          ImageRenderer
	policy            *embed.Policy
	preprocessor      pipeline.MarkupPreprocessor
	htmlConverter     pipeline.HTMLConverter
	cssInjector       pipeline.CSSInjector
	documentRenderer  pipeline.DocumentRenderer
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithDPI, WithRenderer, WithStyle).
// Returns error if an option is out of range or asset loading fails.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:      defaultTimeout,
			dpi:          DefaultDPI,
			imageTimeout: DefaultImageTimeout,
			renderer:     RendererWebTeX,
			quotes:       QuotesStraight,
			styleInput:   DefaultStyle,
		},
		assetLoader:   assets.NewEmbeddedLoader(),
		docConverters: make(map[Format]DocumentConverter),
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		cssInjector:   &pipeline.CSSInjection{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.validateConfig(); err != nil {
		return nil, err
	}

	// Handle WithAssetPath: resolve to internal loader
	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, publicAssetError(err)
		}
		c.assetLoader = resolver
	}

	// A loader given with WithAssetLoader wins over WithAssetPath.
	if c.publicAssetLoader != nil {
		c.assetLoader = c.publicAssetLoader
	}

	// Resolve style input (name, path, or CSS content) to CSS content
	if err := c.resolveStyle(); err != nil {
		return nil, err
	}

	if c.documentRenderer == nil {
		tmpl, err := c.assetLoader.LoadTemplate(assets.DocumentTemplateName)
		if err != nil {
			return nil, fmt.Errorf("loading document template: %w", publicAssetError(err))
		}
		c.documentRenderer, err = pipeline.NewDocumentTemplate(tmpl)
		if err != nil {
			return nil, fmt.Errorf("initializing document template: %w", err)
		}
	}

	table := unimath.DefaultTable()
	if len(c.cfg.symbols) > 0 {
		var err error
		table, err = unimath.NewTable(c.cfg.symbols)
		if err != nil {
			return nil, err
		}
	}

	if _, ok := c.docConverters[FormatLaTeX]; !ok {
		c.docConverters[FormatLaTeX] = NewPandocConverter(c.cfg.pandocPath)
	}
	if _, ok := c.docConverters[FormatMarkdown]; !ok {
		c.docConverters[FormatMarkdown] = PassthroughConverter{}
	}

	// Create image renderer if not injected (e.g., by tests)
	if c.renderer == nil {
		c.renderer = c.newRenderer()
	}

	c.policy = &embed.Policy{
		Renderer:   c.renderer,
		Engine:     unimath.NewEngine(table),
		DisplayDPI: c.cfg.dpi,
		InlineDPI:  c.cfg.inlineDPI,
		Timeout:    c.cfg.imageTimeout,
	}

	return c, nil
}

// newRenderer builds the configured built-in renderer.
func (c *Converter) newRenderer() ImageRenderer {
	switch c.cfg.renderer {
	case RendererFetch:
		return mathimg.NewFetcher(mathimg.NewWebTeX(c.cfg.webtexURL), nil)
	case RendererBrowser:
		return mathimg.NewBrowser(c.cfg.imageTimeout)
	default:
		return mathimg.NewWebTeX(c.cfg.webtexURL)
	}
}

// validateConfig checks option values that come from user input.
func (c *Converter) validateConfig() error {
	if c.cfg.dpi < MinDPI || c.cfg.dpi > MaxDPI {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidDPI, c.cfg.dpi, MinDPI, MaxDPI)
	}
	if c.cfg.inlineDPI != 0 {
		if c.cfg.inlineDPI < MinDPI || c.cfg.inlineDPI >= c.cfg.dpi {
			return fmt.Errorf("%w: inline %d (must be at least %d and below display DPI %d)", ErrInvalidDPI, c.cfg.inlineDPI, MinDPI, c.cfg.dpi)
		}
	}
	kind, err := ParseRendererKind(string(c.cfg.renderer))
	if err != nil {
		return err
	}
	c.cfg.renderer = kind
	if _, err := ParseQuoteStyle(c.cfg.quotes.String()); err != nil {
		return err
	}
	return nil
}

// Convert runs the full pipeline and returns the HTML document.
// Structural failures (unsupported format, unterminated math, converter
// failure) return an error and no HTML; image failures only add warnings.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	doc := input.Document

	// Convert source to Markdown with dollar-delimited math
	markup, err := c.docConverters[doc.Format].ToMarkup(ctx, doc)
	if err != nil {
		return nil, err
	}

	markup = c.preprocessor.PreprocessMarkup(ctx, markup)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Pandoc escapes literal brackets as \[ \], so only dollars delimit
	// math in its output.
	ext, err := mathspan.ExtractWith(markup, mathspan.Options{DollarsOnly: doc.Format == FormatLaTeX})
	if err != nil {
		return nil, fmt.Errorf("extracting math: %w", err)
	}

	res := &ConvertResult{}
	fragments, err := c.embedSpans(ctx, ext.Spans, res)
	if err != nil {
		return nil, err
	}

	md := pipeline.CleanMarkup(pipeline.ReplaceWithPlaceholders(ext))

	body, err := c.htmlConverter.ToHTMLFragment(ctx, md)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	body, missing, err := pipeline.SubstitutePlaceholders(body, fragments)
	if err != nil {
		return nil, fmt.Errorf("reassembling math: %w", err)
	}
	for _, i := range missing {
		res.Warnings = append(res.Warnings, Warning{Latex: ext.Spans[i].Raw, Reason: "math lost in Markdown rendering"})
	}

	body, err = pipeline.CleanHTML(body, c.cfg.quotes)
	if err != nil {
		return nil, fmt.Errorf("cleaning HTML: %w", err)
	}

	// Editors cannot load local files, so relative images are embedded
	if doc.SourceDir != "" {
		var skipped []error
		body, skipped, err = pipeline.InlineLocalImages(body, doc.SourceDir)
		if err != nil {
			return nil, fmt.Errorf("embedding local images: %w", err)
		}
		for _, s := range skipped {
			res.Warnings = append(res.Warnings, imageWarning(s))
		}
	}

	title := input.Title
	if title == "" {
		title = doc.Name
	}
	page, err := c.documentRenderer.RenderDocument(ctx, pipeline.DocumentData{
		Title: title,
		Body:  template.HTML(body), // #nosec G203 -- body is goldmark output without raw HTML plus generated fragments
	})
	if err != nil {
		return nil, err
	}

	// Converter style first (base), user CSS last (can override)
	cssContent := c.cfg.resolvedStyle
	if input.CSS != "" {
		cssContent += "\n" + input.CSS
	}
	page = c.cssInjector.InjectCSS(ctx, page, cssContent)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res.HTML = []byte(page)
	return res, nil
}

// embedSpans resolves every span to its HTML fragment and tallies stats.
// One cache per call keeps identical expressions to a single request.
func (c *Converter) embedSpans(ctx context.Context, spans []mathspan.Span, res *ConvertResult) ([]pipeline.MathFragment, error) {
	cache := embed.NewCache()
	fragments := make([]pipeline.MathFragment, len(spans))

	for i, span := range spans {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		frag := c.policy.Embed(ctx, span, cache)
		fragments[i] = pipeline.MathFragment{HTML: frag.HTML, Text: frag.Text}

		if span.Kind == mathspan.Display {
			res.Stats.Display++
		} else {
			res.Stats.Inline++
		}
		switch frag.Outcome {
		case embed.Unicode:
			res.Stats.Unicode++
		case embed.Image:
			res.Stats.Images++
		case embed.Raw:
			res.Stats.Fallbacks++
		}
		if frag.Warning != nil {
			res.Warnings = append(res.Warnings, Warning{Latex: frag.Warning.Latex, Reason: frag.Warning.Reason})
		}
	}

	// A cancellation during the last request degrades that span instead of
	// failing, so check once more before reporting success.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return fragments, nil
}

// imageWarning converts a skipped-image error into a Warning.
func imageWarning(err error) Warning {
	var skipped *pipeline.SkippedImageError
	if errors.As(err, &skipped) {
		return Warning{Image: skipped.Src, Reason: skipped.Reason}
	}
	return Warning{Reason: err.Error()}
}

// Close releases resources held by the image renderer (headless Chrome).
func (c *Converter) Close() error {
	if closer, ok := c.renderer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS content.
// Called during NewConverter() after options are applied and asset loader is configured.
func (c *Converter) resolveStyle() error {
	input := c.cfg.styleInput
	if c.cfg.noStyle || input == "" {
		c.cfg.resolvedStyle = ""
		return nil
	}

	// File path? (contains / or \)
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		c.cfg.resolvedStyle = string(content)
		return nil
	}

	// CSS content? (contains {)
	if fileutil.IsCSS(input) {
		c.cfg.resolvedStyle = input
		return nil
	}

	// Style name -> use asset loader
	css, err := c.assetLoader.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("loading style %q: %w", input, publicAssetError(err))
	}
	c.cfg.resolvedStyle = css
	return nil
}

// validateInput checks that required fields are present and valid.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI users have their documents loaded through LoadDocument, which already
// rejects unsupported formats.
func (c *Converter) validateInput(input Input) error {
	if input.Document.Content == "" {
		return ErrEmptyDocument
	}
	if _, ok := c.docConverters[input.Document.Format]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, input.Document.Format)
	}
	return nil
}
