package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Pandoc fenced div markers: "::: {.center}", ":::: note", ":::"
	fencedDivMarker = regexp.MustCompile(`^ {0,3}:{3,}(?:\s.*)?$|^ {0,3}:{3,}\{.*$`)

	// Ordered list marker whose dot pandoc escaped ("1\. ") to keep it literal
	escapedListMarker = regexp.MustCompile(`^\s*\d+\\\.`)
)

// MarkupPreprocessor defines the contract for markup preprocessing.
type MarkupPreprocessor interface {
	PreprocessMarkup(ctx context.Context, content string) string
}

// Compile-time interface check.
var _ MarkupPreprocessor = (*CommonMarkPreprocessor)(nil)

// CommonMarkPreprocessor normalizes markup before math extraction.
type CommonMarkPreprocessor struct{}

// PreprocessMarkup normalizes line endings and compresses blank lines.
// Span offsets reported by extraction refer to the preprocessed text.
func (p *CommonMarkPreprocessor) PreprocessMarkup(ctx context.Context, content string) string {
	// Check for cancellation before processing
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	content = compressBlankLines(content)
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// CleanMarkup removes artifacts the document converter leaves in its
// Markdown output: fenced div markers are dropped, \. and \" escapes are
// unescaped outside code, and runs of blank lines are compressed.
// CleanMarkup(CleanMarkup(s)) == CleanMarkup(s).
func CleanMarkup(content string) string {
	content = normalizeLineEndings(content)

	lines := strings.Split(content, "\n")
	out := lines[:0]
	var fence string
	for _, line := range lines {
		if fence != "" {
			out = append(out, line)
			if closesFence(line, fence) {
				fence = ""
			}
			continue
		}
		if f := openingFence(line); f != "" {
			fence = f
			out = append(out, line)
			continue
		}
		if fencedDivMarker.MatchString(line) {
			continue
		}
		out = append(out, unescapeLine(line))
	}

	return compressBlankLines(strings.Join(out, "\n"))
}

// openingFence returns the fence run (``` or ~~~, 3 or more) that opens a
// code block on line, or "".
func openingFence(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return ""
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return ""
	}
	if c == '`' && strings.IndexByte(trimmed[n:], '`') >= 0 {
		return ""
	}
	return trimmed[:n]
}

// closesFence reports whether line closes a block opened by fence.
func closesFence(line, fence string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	trimmed = strings.TrimRight(trimmed, " \t")
	if len(trimmed) < len(fence) {
		return false
	}
	return strings.Trim(trimmed, fence[:1]) == ""
}

// unescapeLine rewrites \. and \" to . and " outside backtick code spans.
// An escaped backslash stays escaped, and an escaped ordered list marker
// keeps its backslash so the line does not become a list item.
func unescapeLine(line string) string {
	if !strings.Contains(line, `\`) {
		return line
	}

	keepFrom := -1
	if loc := escapedListMarker.FindStringIndex(line); loc != nil {
		keepFrom = loc[1]
	}

	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case c == '`':
			n := runLength(line, i, '`')
			end := closingRun(line, i+n, n)
			if end < 0 {
				b.WriteString(line[i : i+n])
				i += n
				continue
			}
			b.WriteString(line[i : end+n])
			i = end + n
		case c == '\\' && i+1 < len(line):
			next := line[i+1]
			if (next == '.' || next == '"') && i+2 != keepFrom {
				b.WriteByte(next)
			} else {
				b.WriteString(line[i : i+2])
			}
			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func runLength(s string, i int, c byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == c {
		n++
	}
	return n
}

// closingRun returns the index of the next run of exactly n backticks at or
// after i, or -1.
func closingRun(s string, i, n int) int {
	for i < len(s) {
		if s[i] != '`' {
			i++
			continue
		}
		m := runLength(s, i, '`')
		if m == n {
			return i
		}
		i += m
	}
	return -1
}
