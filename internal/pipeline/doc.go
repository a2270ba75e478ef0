// Package pipeline reassembles converted markup and embedded math into the
// final HTML document.
//
// The stages run in this order:
//   - Markup preprocessing (line endings, blank lines)
//   - Placeholder substitution for math spans, so goldmark never sees LaTeX
//   - Markup cleanup of converter artifacts (pandoc fenced divs, escapes)
//   - Markdown to HTML fragment conversion via goldmark
//   - Placeholder replacement with the embedded math fragments
//   - HTML cleanup (display centering, empty paragraphs, quotes, spaces)
//   - Local image inlining as data URIs
//   - Document template rendering and CSS injection
//
// Math extraction and the embedding decision live in the mathspan and embed
// packages. This package only moves text around them.
package pipeline
