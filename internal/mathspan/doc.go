// Package mathspan locates math spans in intermediate Markdown markup.
//
// Extract splits a document into literal text segments and math spans
// without modifying either. Segments and spans interleave, starting and
// ending with a segment (possibly empty):
//
//	seg0 span0 seg1 span1 ... segN
//
// Concatenating the segments with each span's Raw text reproduces the input
// byte-for-byte (see Extraction.Reconstruct).
//
// Recognized delimiters:
//
//	inline:  $...$   \(...\)   \begin{math}...\end{math}
//	display: $$...$$ \[...\]   \begin{equation}...\end{equation} (and align,
//	         gather, multline, eqnarray, displaymath, starred variants)
//
// An escaped dollar (\$) never opens a span. Fenced code blocks and backtick
// code spans are treated as literal text.
package mathspan
