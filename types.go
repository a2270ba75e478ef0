package doc2substack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-doc2substack/internal/mathimg"
	"github.com/alnah/go-doc2substack/internal/pipeline"
)

// Format identifies the markup language of a source document.
type Format int

// Supported source formats.
const (
	FormatUnknown Format = iota
	FormatLaTeX
	FormatMarkdown
)

func (f Format) String() string {
	switch f {
	case FormatLaTeX:
		return "latex"
	case FormatMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// formatExtensions maps lowercase file extensions to formats.
var formatExtensions = map[string]Format{
	".tex":      FormatLaTeX,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
}

// DetectFormat returns the format implied by the file extension of path.
// The comparison is case-insensitive.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := formatExtensions[ext]; ok {
		return f, nil
	}
	return FormatUnknown, fmt.Errorf("%w: %q (supported: .tex, .md, .markdown)", ErrUnsupportedFormat, filepath.Ext(path))
}

// IsSupportedFile reports whether path has a recognized source extension.
func IsSupportedFile(path string) bool {
	_, ok := formatExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Document is a loaded source document. Treat it as immutable: every
// pipeline stage derives a new value instead of changing this one.
type Document struct {
	Content   string
	Format    Format
	Name      string // base name without extension, used as the default title
	SourceDir string // directory for resolving relative paths (images, \input)
}

// NewDocument builds a Document from in-memory content.
func NewDocument(content string, format Format, name string) Document {
	return Document{Content: content, Format: format, Name: name}
}

// LoadDocument reads path and detects its format. Unsupported extensions
// fail before the file is read.
func LoadDocument(path string) (Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return Document{}, err
	}

	content, err := os.ReadFile(path) // #nosec G304 -- user-provided input path
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	base := filepath.Base(path)

	return Document{
		Content:   string(content),
		Format:    format,
		Name:      strings.TrimSuffix(base, filepath.Ext(base)),
		SourceDir: filepath.Dir(absPath),
	}, nil
}

// Input is the per-conversion payload.
type Input struct {
	Document Document
	Title    string // "" uses Document.Name
	CSS      string // appended after the converter style
}

// Stats counts how math spans were embedded.
type Stats struct {
	Inline    int // inline spans found
	Display   int // display spans found
	Unicode   int // inline spans rendered as text
	Images    int // spans rendered as images
	Fallbacks int // spans degraded to raw LaTeX
}

// Warning describes a non-fatal degradation: a math span shown as raw
// LaTeX, or a local image left unembedded.
type Warning struct {
	Latex  string // raw span source, with delimiters
	Image  string // image src, for skipped images
	Reason string
}

func (w Warning) String() string {
	if w.Image != "" {
		return fmt.Sprintf("image %s: %s", w.Image, w.Reason)
	}
	return fmt.Sprintf("math %s rendered as raw LaTeX: %s", w.Latex, w.Reason)
}

// ConvertResult holds the output of a successful conversion.
type ConvertResult struct {
	HTML     []byte
	Stats    Stats
	Warnings []Warning
}

// ImageRenderer turns a LaTeX math string into an image reference.
type ImageRenderer = mathimg.Renderer

// ImageRef locates a rendered math image.
type ImageRef = mathimg.Ref

// QuoteStyle selects how quotation marks are normalized in text.
type QuoteStyle = pipeline.QuoteStyle

// Quote styles.
const (
	QuotesStraight = pipeline.QuotesStraight
	QuotesCurly    = pipeline.QuotesCurly
	QuotesPreserve = pipeline.QuotesPreserve
)

// ParseQuoteStyle maps a name ("straight", "curly", "preserve") to a style.
// The empty string selects QuotesStraight.
func ParseQuoteStyle(name string) (QuoteStyle, error) {
	return pipeline.ParseQuoteStyle(name)
}

// RendererKind names a built-in image renderer.
type RendererKind string

// Built-in image renderers.
const (
	// RendererWebTeX references images on a WebTeX service by URL.
	RendererWebTeX RendererKind = "webtex"
	// RendererFetch downloads WebTeX images and embeds them as data URIs.
	RendererFetch RendererKind = "fetch"
	// RendererBrowser renders with KaTeX in headless Chrome.
	RendererBrowser RendererKind = "browser"
)

// ParseRendererKind validates a renderer name.
func ParseRendererKind(name string) (RendererKind, error) {
	switch k := RendererKind(strings.ToLower(name)); k {
	case RendererWebTeX, RendererFetch, RendererBrowser:
		return k, nil
	case "":
		return RendererWebTeX, nil
	}
	return "", fmt.Errorf("%w: %q (must be webtex, fetch or browser)", ErrInvalidRenderer, name)
}

// DPI bounds and defaults.
const (
	MinDPI              = 50
	MaxDPI              = 1200
	DefaultDPI          = 200
	DefaultImageTimeout = 10 * time.Second
)

// defaultTimeout bounds a whole conversion when no timeout is specified.
const defaultTimeout = 2 * time.Minute

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout       time.Duration
	dpi           int
	inlineDPI     int
	imageTimeout  time.Duration
	renderer      RendererKind
	webtexURL     string
	quotes        QuoteStyle
	styleInput    string
	noStyle       bool
	resolvedStyle string
	symbols       map[string]string
	assetPath     string
	pandocPath    string
}

// WithTimeout sets the overall conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("doc2substack: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithDPI sets the resolution of display math images.
func WithDPI(dpi int) Option {
	return func(c *Converter) {
		c.cfg.dpi = dpi
	}
}

// WithInlineDPI sets the resolution of inline math images.
// Zero derives it as three quarters of the display DPI.
func WithInlineDPI(dpi int) Option {
	return func(c *Converter) {
		c.cfg.inlineDPI = dpi
	}
}

// WithImageTimeout bounds each image request.
// Panics if d <= 0 (programmer error).
func WithImageTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("doc2substack: WithImageTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.imageTimeout = d
	}
}

// WithRenderer selects a built-in image renderer.
func WithRenderer(kind RendererKind) Option {
	return func(c *Converter) {
		c.cfg.renderer = kind
	}
}

// WithWebTeXURL overrides the WebTeX service endpoint.
func WithWebTeXURL(url string) Option {
	return func(c *Converter) {
		c.cfg.webtexURL = url
	}
}

// WithImageRenderer replaces the built-in renderer. The converter closes r
// on Close if it implements io.Closer.
func WithImageRenderer(r ImageRenderer) Option {
	return func(c *Converter) {
		c.renderer = r
	}
}

// WithDocumentConverter sets the collaborator used for documents of format f.
func WithDocumentConverter(f Format, dc DocumentConverter) Option {
	return func(c *Converter) {
		c.docConverters[f] = dc
	}
}

// WithPandocPath sets the pandoc binary used for LaTeX input.
func WithPandocPath(path string) Option {
	return func(c *Converter) {
		c.cfg.pandocPath = path
	}
}

// WithQuoteStyle sets the quotation mark normalization.
func WithQuoteStyle(q QuoteStyle) Option {
	return func(c *Converter) {
		c.cfg.quotes = q
	}
}

// WithStyle sets the CSS style: a built-in name, a file path or CSS content.
func WithStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.styleInput = style
		c.cfg.noStyle = false
	}
}

// WithNoStyle disables the converter style; only Input.CSS is injected.
func WithNoStyle() Option {
	return func(c *Converter) {
		c.cfg.noStyle = true
	}
}

// WithSymbols adds symbol table entries (command name to Unicode text).
func WithSymbols(symbols map[string]string) Option {
	return func(c *Converter) {
		c.cfg.symbols = symbols
	}
}

// WithAssetPath sets a directory whose styles/ and templates/ override the
// built-in assets.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = path
	}
}

// WithAssetLoader sets a custom asset loader.
func WithAssetLoader(loader AssetLoader) Option {
	return func(c *Converter) {
		c.publicAssetLoader = loader
	}
}
