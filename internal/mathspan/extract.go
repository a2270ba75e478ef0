package mathspan

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrUnterminated indicates a math delimiter without a matching closer.
var ErrUnterminated = errors.New("unterminated math span")

// Kind distinguishes inline from display math.
type Kind int

const (
	// Inline math flows within a sentence.
	Inline Kind = iota
	// Display math stands as its own block.
	Display
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if k == Display {
		return "display"
	}
	return "inline"
}

// Span is one math expression located in the input.
type Span struct {
	Kind  Kind
	Latex string // body without delimiters
	Raw   string // exact source text, delimiters included
	Open  string // opening delimiter as written
	Close string // closing delimiter as written
	Env   string // environment name for \begin{...} spans, empty otherwise
	Start int    // byte offset of Raw in the input
	End   int    // exclusive byte offset
}

// Extraction holds the literal segments and math spans of a document.
// Invariant: len(Segments) == len(Spans)+1.
type Extraction struct {
	Segments []string
	Spans    []Span
}

// Reconstruct concatenates segments and raw spans back into the input.
func (e *Extraction) Reconstruct() string {
	return e.Join(func(_ int, s Span) string { return s.Raw })
}

// Join concatenates segments, replacing each span with replace(i, span).
func (e *Extraction) Join(replace func(i int, s Span) string) string {
	var b strings.Builder
	for i, seg := range e.Segments {
		b.WriteString(seg)
		if i < len(e.Spans) {
			b.WriteString(replace(i, e.Spans[i]))
		}
	}
	return b.String()
}

// UnterminatedError reports where an unclosed delimiter was opened.
type UnterminatedError struct {
	Delim  string
	Offset int
	Line   int // 1-based
	Column int // 1-based, in runes
}

func (e *UnterminatedError) Error() string {
	return fmt.Sprintf("%v: %q opened at line %d, column %d", ErrUnterminated, e.Delim, e.Line, e.Column)
}

// Is makes errors.Is(err, ErrUnterminated) succeed.
func (e *UnterminatedError) Is(target error) bool {
	return target == ErrUnterminated
}

// Options tunes which delimiters Extract recognizes.
type Options struct {
	// DollarsOnly disables \(..\), \[..\] and \begin{..} delimiters.
	// Pandoc's Markdown writer emits math exclusively with dollars and may
	// escape literal brackets as \[ \], which must then stay text.
	DollarsOnly bool
}

// environments maps recognized math environments to their kind.
var environments = map[string]Kind{
	"equation":    Display,
	"equation*":   Display,
	"align":       Display,
	"align*":      Display,
	"gather":      Display,
	"gather*":     Display,
	"multline":    Display,
	"multline*":   Display,
	"eqnarray":    Display,
	"eqnarray*":   Display,
	"displaymath": Display,
	"math":        Inline,
}

// Extract scans markup with all delimiters enabled.
func Extract(markup string) (*Extraction, error) {
	return ExtractWith(markup, Options{})
}

// ExtractWith scans markup and returns its segments and spans.
// An unterminated span fails the whole extraction with *UnterminatedError.
func ExtractWith(markup string, opts Options) (*Extraction, error) {
	sc := scanner{src: markup, opts: opts}
	if err := sc.run(); err != nil {
		return nil, err
	}
	ext := &Extraction{Spans: sc.spans}
	prev := 0
	for _, sp := range sc.spans {
		ext.Segments = append(ext.Segments, markup[prev:sp.Start])
		prev = sp.End
	}
	ext.Segments = append(ext.Segments, markup[prev:])
	return ext, nil
}

type scanner struct {
	src   string
	opts  Options
	spans []Span
}

func (sc *scanner) run() error {
	s := sc.src
	i := 0
	for i < len(s) {
		if i == 0 || s[i-1] == '\n' {
			if end, ok := sc.skipFence(i); ok {
				i = end
				continue
			}
		}
		switch s[i] {
		case '`':
			i = sc.skipCodeSpan(i)
		case ']':
			i = sc.skipLinkDestination(i)
		case '<':
			i = sc.skipAutolink(i)
		case '$':
			next, err := sc.dollar(i)
			if err != nil {
				return err
			}
			i = next
		case '\\':
			next, err := sc.backslash(i)
			if err != nil {
				return err
			}
			i = next
		default:
			i++
		}
	}
	return nil
}

// skipFence returns the offset after a fenced code block starting at the
// line beginning at i. An unclosed fence runs to the end of the input.
func (sc *scanner) skipFence(i int) (int, bool) {
	s := sc.src
	j := i
	for j < len(s) && j-i < 3 && s[j] == ' ' {
		j++
	}
	if j >= len(s) || (s[j] != '`' && s[j] != '~') {
		return 0, false
	}
	ch := s[j]
	n := 0
	for j+n < len(s) && s[j+n] == ch {
		n++
	}
	if n < 3 {
		return 0, false
	}
	if ch == '`' && strings.IndexByte(lineAt(s, j+n), '`') >= 0 {
		return 0, false
	}
	pos := lineEnd(s, j)
	for pos < len(s) {
		line := lineAt(s, pos)
		trimmed := strings.TrimLeft(line, " ")
		if len(line)-len(trimmed) <= 3 {
			run := 0
			for run < len(trimmed) && trimmed[run] == ch {
				run++
			}
			if run >= n && strings.TrimSpace(trimmed[run:]) == "" {
				return lineEnd(s, pos), true
			}
		}
		pos = lineEnd(s, pos)
	}
	return len(s), true
}

// skipCodeSpan skips a backtick code span opened at i. Backticks without a
// matching run of the same length are literal.
func (sc *scanner) skipCodeSpan(i int) int {
	s := sc.src
	n := 0
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	j := i + n
	for j < len(s) {
		if s[j] != '`' {
			j++
			continue
		}
		run := 0
		for j+run < len(s) && s[j+run] == '`' {
			run++
		}
		if run == n {
			return j + run
		}
		j += run
	}
	return i + n
}

// skipLinkDestination skips the "(...)" after a link text closed at i.
// Dollars in a URL or title are literal. Parentheses nest; an unclosed
// destination leaves the bracket as text.
func (sc *scanner) skipLinkDestination(i int) int {
	s := sc.src
	if i+1 >= len(s) || s[i+1] != '(' {
		return i + 1
	}
	depth := 0
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return j + 1
			}
		case '\n':
			if blankLineAfter(s, j+1) {
				return i + 1
			}
		}
	}
	return i + 1
}

// skipAutolink skips a URI autolink such as <https://host/$a$> opened at i.
// Anything else starting with '<' is text.
func (sc *scanner) skipAutolink(i int) int {
	s := sc.src
	j := i + 1
	for j < len(s) && j-i <= 32 && isSchemeByte(s[j], j == i+1) {
		j++
	}
	if j-i-1 < 2 || j >= len(s) || s[j] != ':' {
		return i + 1
	}
	for j++; j < len(s); j++ {
		switch s[j] {
		case '>':
			return j + 1
		case ' ', '\t', '\n', '\r', '<':
			return i + 1
		}
	}
	return i + 1
}

func isSchemeByte(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case first:
		return false
	}
	return isDigit(c) || c == '+' || c == '.' || c == '-'
}

func (sc *scanner) dollar(i int) (int, error) {
	s := sc.src
	if strings.HasPrefix(s[i:], "$$") {
		end := sc.findDelim(i+2, "$$", false)
		if end < 0 {
			return 0, sc.unterminated("$$", i)
		}
		sc.add(Display, i, "$$", end, "$$", "")
		return end + 2, nil
	}
	if i+1 >= len(s) || isSpace(s[i+1]) {
		return i + 1, nil
	}
	end := sc.findDelim(i+1, "$", true)
	if end < 0 || isSpace(s[end-1]) || (end+1 < len(s) && isDigit(s[end+1])) {
		return 0, sc.unterminated("$", i)
	}
	sc.add(Inline, i, "$", end, "$", "")
	return end + 1, nil
}

func (sc *scanner) backslash(i int) (int, error) {
	s := sc.src
	if i+1 >= len(s) {
		return i + 1, nil
	}
	if sc.opts.DollarsOnly {
		return i + 2, nil
	}
	switch s[i+1] {
	case '(':
		end := sc.findDelim(i+2, `\)`, true)
		if end < 0 {
			return 0, sc.unterminated(`\(`, i)
		}
		sc.add(Inline, i, `\(`, end, `\)`, "")
		return end + 2, nil
	case '[':
		end := sc.findDelim(i+2, `\]`, false)
		if end < 0 {
			return 0, sc.unterminated(`\[`, i)
		}
		sc.add(Display, i, `\[`, end, `\]`, "")
		return end + 2, nil
	}
	if env, ok := beginEnv(s[i:]); ok {
		kind, known := environments[env]
		if known {
			open := `\begin{` + env + `}`
			closeDelim := `\end{` + env + `}`
			end := strings.Index(s[i+len(open):], closeDelim)
			if end < 0 {
				return 0, sc.unterminated(open, i)
			}
			end += i + len(open)
			sc.add(kind, i, open, end, closeDelim, env)
			return end + len(closeDelim), nil
		}
	}
	// Control symbol or word: \$ and \\ are consumed whole.
	return i + 2, nil
}

// findDelim returns the offset of the first unescaped delim at or after
// from, or -1. Inline bodies may not cross a blank line.
func (sc *scanner) findDelim(from int, delim string, inline bool) int {
	s := sc.src
	for j := from; j < len(s); {
		if strings.HasPrefix(s[j:], delim) {
			return j
		}
		switch s[j] {
		case '\\':
			j += 2
			continue
		case '\n':
			if inline && blankLineAfter(s, j+1) {
				return -1
			}
		case '$':
			// A lone $ closes an inline dollar span; any other inline
			// delimiter cannot contain an unescaped dollar either.
			if inline {
				return -1
			}
		}
		j++
	}
	return -1
}

func (sc *scanner) add(kind Kind, start int, open string, bodyEnd int, closeDelim, env string) {
	end := bodyEnd + len(closeDelim)
	sc.spans = append(sc.spans, Span{
		Kind:  kind,
		Latex: sc.src[start+len(open) : bodyEnd],
		Raw:   sc.src[start:end],
		Open:  open,
		Close: closeDelim,
		Env:   env,
		Start: start,
		End:   end,
	})
}

func (sc *scanner) unterminated(delim string, offset int) error {
	before := sc.src[:offset]
	line := strings.Count(before, "\n") + 1
	col := utf8.RuneCountInString(before[strings.LastIndexByte(before, '\n')+1:]) + 1
	return &UnterminatedError{Delim: delim, Offset: offset, Line: line, Column: col}
}

// beginEnv parses "\begin{name}" at the start of s.
func beginEnv(s string) (string, bool) {
	const prefix = `\begin{`
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	end := strings.IndexByte(s[len(prefix):], '}')
	if end <= 0 {
		return "", false
	}
	return s[len(prefix) : len(prefix)+end], true
}

func blankLineAfter(s string, i int) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

func lineAt(s string, i int) string {
	if end := strings.IndexByte(s[i:], '\n'); end >= 0 {
		return s[i : i+end]
	}
	return s[i:]
}

func lineEnd(s string, i int) int {
	if end := strings.IndexByte(s[i:], '\n'); end >= 0 {
		return i + end + 1
	}
	return len(s)
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
