// Package doc2substack converts LaTeX and Markdown documents to HTML that
// survives being pasted into the Substack editor.
//
// # Quick Start
//
// Create a converter, convert a document, and close when done:
//
//	conv, err := doc2substack.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	doc, err := doc2substack.LoadDocument("notes.tex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := conv.Convert(ctx, doc2substack.Input{Document: doc})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("notes.html", result.HTML, 0644)
//
// The result also carries Stats (how each math span was embedded) and
// Warnings (spans shown as raw LaTeX, local images left unembedded).
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. LaTeX to Markdown via pandoc (Markdown input is used as is)
//  2. Math extraction: $..$, $$..$$, \(..\), \[..\] and math environments
//  3. Embedding: inline math with an exact Unicode form becomes text, every
//     other span becomes an image, and a failed image keeps the raw LaTeX
//  4. Markdown to HTML via Goldmark, with math held in placeholders
//  5. Cleanup: display math centered, empty paragraphs removed, spaces and
//     quotes normalized, local images embedded as data URIs
//  6. Document template and CSS injection
//
// An unterminated math delimiter fails the whole conversion with an
// *UnterminatedError giving its line and column. Image failures never do.
//
// # Image Renderers
//
// Three built-in renderers are selected with WithRenderer:
//
//   - RendererWebTeX references images on a WebTeX service by URL (default)
//   - RendererFetch downloads those images and embeds them as data URIs
//   - RendererBrowser renders with KaTeX in headless Chrome, offline
//
// WithImageRenderer plugs in any other ImageRenderer.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := doc2substack.NewConverter(
//	    doc2substack.WithDPI(300),
//	    doc2substack.WithRenderer(doc2substack.RendererFetch),
//	    doc2substack.WithQuoteStyle(doc2substack.QuotesCurly),
//	    doc2substack.WithSymbols(map[string]string{`\R`: "ℝ"}),
//	)
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool. Each converter owns its renderer,
// so browser rendering runs in parallel:
//
//	pool := doc2substack.NewConverterPool(4, doc2substack.WithRenderer(doc2substack.RendererBrowser))
//	defer pool.Close()
//
//	conv, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, input)
//
// # Custom Assets
//
// Override the built-in styles and document template using AssetLoader:
//
//	loader, err := doc2substack.NewAssetLoader("/path/to/assets")
//	conv, err := doc2substack.NewConverter(doc2substack.WithAssetLoader(loader))
//
// Asset directory structure:
//
//	assets/
//	├── styles/
//	│   └── custom.css
//	└── templates/
//	    └── document.html
//
// # External Requirements
//
// LaTeX input requires pandoc on PATH (or WithPandocPath). The browser
// renderer requires Chrome/Chromium; go-rod downloads a managed Chromium on
// first run (~/.cache/rod/browser/). Set ROD_BROWSER_BIN to use a
// pre-installed Chrome binary; the sandbox is disabled when it is set, when
// ROD_NO_SANDBOX=1 or when CI=true.
package doc2substack
