package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrInvalidQuoteStyle indicates an unknown quote style name.
var ErrInvalidQuoteStyle = errors.New("invalid quote style")

// QuoteStyle selects how quotation marks are normalized in text.
type QuoteStyle int

const (
	// QuotesStraight turns curly quotes into ASCII quotes.
	QuotesStraight QuoteStyle = iota
	// QuotesCurly turns ASCII quotes into typographic quotes.
	QuotesCurly
	// QuotesPreserve leaves quotes untouched.
	QuotesPreserve
)

// String returns the configuration name of the style.
func (q QuoteStyle) String() string {
	switch q {
	case QuotesStraight:
		return "straight"
	case QuotesCurly:
		return "curly"
	case QuotesPreserve:
		return "preserve"
	default:
		return fmt.Sprintf("QuoteStyle(%d)", int(q))
	}
}

// ParseQuoteStyle parses a configuration name. The empty string selects
// QuotesStraight.
func ParseQuoteStyle(name string) (QuoteStyle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "straight":
		return QuotesStraight, nil
	case "curly":
		return QuotesCurly, nil
	case "preserve":
		return QuotesPreserve, nil
	}
	return 0, fmt.Errorf("%w: %q (expected straight, curly or preserve)", ErrInvalidQuoteStyle, name)
}

const centeredStyle = "text-align:center;"

// CleanHTML normalizes the reassembled HTML:
//   - display math images are moved into their own centered paragraph
//   - empty paragraphs are removed
//   - quotes are normalized to style outside code
//   - runs of spaces and tabs collapse outside code
//
// CleanHTML(CleanHTML(h)) == CleanHTML(h).
func CleanHTML(htmlContent string, style QuoteStyle) (string, error) {
	t, err := parseTree(htmlContent)
	if err != nil {
		return "", err
	}
	doc := t.root

	centerDisplayMath(doc)
	removeEmptyParagraphs(doc)
	mergeText(doc)
	q := &quoter{style: style, prev: ' '}
	normalizeText(doc, q)

	return t.render()
}

// isDisplayMath reports whether n is <img class="math display">.
func isDisplayMath(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.Img {
		return false
	}
	classes := strings.Fields(attr(n, "class"))
	var math, display bool
	for _, c := range classes {
		switch c {
		case "math":
			math = true
		case "display":
			display = true
		}
	}
	return math && display
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isBlank(n *html.Node) bool {
	return n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}

// isCentered reports whether p already is a centered wrapper around a
// single display image.
func isCentered(p *html.Node) bool {
	if attr(p, "style") != centeredStyle {
		return false
	}
	images := 0
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isDisplayMath(c):
			images++
		case isBlank(c):
		default:
			return false
		}
	}
	return images == 1
}

// centerDisplayMath splits every paragraph containing display images into
// text paragraphs and one centered paragraph per image.
func centerDisplayMath(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && c.DataAtom == atom.P {
			splitParagraph(c)
		} else {
			centerDisplayMath(c)
		}
		c = next
	}
}

func splitParagraph(p *html.Node) {
	if isCentered(p) {
		return
	}
	hasDisplay := false
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		if isDisplayMath(c) {
			hasDisplay = true
			break
		}
	}
	if !hasDisplay {
		return
	}

	parent := p.Parent
	var run *html.Node
	flush := func() {
		if run == nil {
			return
		}
		trimRun(run)
		if run.FirstChild != nil {
			parent.InsertBefore(run, p)
		}
		run = nil
	}

	for c := p.FirstChild; c != nil; {
		next := c.NextSibling
		p.RemoveChild(c)
		if isDisplayMath(c) {
			flush()
			centered := &html.Node{
				Type:     html.ElementNode,
				DataAtom: atom.P,
				Data:     "p",
				Attr:     []html.Attribute{{Key: "style", Val: centeredStyle}},
			}
			centered.AppendChild(c)
			parent.InsertBefore(centered, p)
		} else {
			if run == nil {
				run = &html.Node{Type: html.ElementNode, DataAtom: atom.P, Data: "p", Attr: p.Attr}
			}
			run.AppendChild(c)
		}
		c = next
	}
	flush()
	parent.RemoveChild(p)
}

// trimRun removes line breaks and whitespace left at the edges of a text
// run after a display image was split out. A run with no content is
// emptied.
func trimRun(p *html.Node) {
	for p.FirstChild != nil && (isBlank(p.FirstChild) || p.FirstChild.DataAtom == atom.Br) {
		p.RemoveChild(p.FirstChild)
	}
	for p.LastChild != nil && (isBlank(p.LastChild) || p.LastChild.DataAtom == atom.Br) {
		p.RemoveChild(p.LastChild)
	}
	if p.FirstChild != nil && p.FirstChild.Type == html.TextNode {
		p.FirstChild.Data = strings.TrimLeft(p.FirstChild.Data, " \t\n")
	}
	if p.LastChild != nil && p.LastChild.Type == html.TextNode {
		p.LastChild.Data = strings.TrimRight(p.LastChild.Data, " \t\n")
	}
}

// removeEmptyParagraphs drops <p> elements whose children are all blank
// text.
func removeEmptyParagraphs(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && c.DataAtom == atom.P && isEmpty(c) {
			n.RemoveChild(c)
		} else {
			removeEmptyParagraphs(c)
		}
		c = next
	}
}

// mergeText joins adjacent text siblings, such as the text on both sides
// of a removed paragraph, so that spacing collapses across the join.
func mergeText(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode && next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			n.RemoveChild(next)
			continue
		}
		mergeText(c)
		c = next
	}
}

func isEmpty(p *html.Node) bool {
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		if !isBlank(c) {
			return false
		}
	}
	return true
}

// preformatted elements keep their text verbatim.
func preformatted(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Pre, atom.Code, atom.Kbd, atom.Samp, atom.Script, atom.Style, atom.Textarea:
		return true
	}
	return false
}

// normalizeText walks text nodes in document order, skipping preformatted
// subtrees.
func normalizeText(n *html.Node, q *quoter) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			c.Data = q.apply(collapseSpaces(c.Data))
		case html.ElementNode:
			if preformatted(c) {
				q.prev = 'x'
				continue
			}
			if c.DataAtom == atom.Br || c.DataAtom == atom.P || c.DataAtom == atom.Li {
				q.prev = ' '
			}
			normalizeText(c, q)
		default:
			normalizeText(c, q)
		}
	}
}

// collapseSpaces replaces runs of spaces and tabs with one space. Newlines,
// no-break and thin spaces are kept.
func collapseSpaces(s string) string {
	if !strings.Contains(s, "  ") && !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if !inRun {
				b.WriteByte(' ')
			}
			inRun = true
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

// quoter rewrites quotation marks, tracking the previous rune across text
// nodes so that quotes around inline elements pair up.
type quoter struct {
	style QuoteStyle
	prev  rune
}

func (q *quoter) apply(s string) string {
	if s == "" {
		return s
	}
	defer func() {
		if r, _ := utf8.DecodeLastRuneInString(s); r != utf8.RuneError {
			q.prev = r
		}
	}()

	switch q.style {
	case QuotesStraight:
		s = straightQuotes.Replace(s)
		return s
	case QuotesCurly:
		s = q.curly(s)
		return s
	default:
		return s
	}
}

var straightQuotes = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
)

func (q *quoter) curly(s string) string {
	if !strings.ContainsAny(s, `"'`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	prev := q.prev
	for _, r := range s {
		switch r {
		case '"':
			if opensQuote(prev) {
				r = '“'
			} else {
				r = '”'
			}
		case '\'':
			if opensQuote(prev) {
				r = '‘'
			} else {
				r = '’'
			}
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// opensQuote reports whether a quote following prev opens a quotation.
func opensQuote(prev rune) bool {
	switch prev {
	case '(', '[', '{', '—', '–', '-', '/', '“', '‘':
		return true
	}
	return unicode.IsSpace(prev)
}
