package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-doc2substack/internal/mathspan"
)

// Math placeholders use Unicode Private Use Area characters.
// They pass through goldmark unchanged (no WithUnsafe needed) and are
// replaced with the embedded fragments after HTML generation.
const (
	PlaceholderStart = "\uE010" // U+E010: Private Use Area
	PlaceholderEnd   = "\uE011" // U+E011: Private Use Area
)

// ErrPlaceholder indicates a placeholder in the HTML does not match any
// math fragment.
var ErrPlaceholder = errors.New("invalid math placeholder")

var placeholderPattern = regexp.MustCompile(PlaceholderStart + `([0-9]+)` + PlaceholderEnd)

// MathFragment is what one placeholder turns into. HTML replaces it in
// text content; Text replaces it inside attribute values, such as the alt
// of an image whose description holds math.
type MathFragment struct {
	HTML string
	Text string
}

// Placeholder returns the marker standing in for span i.
func Placeholder(i int) string {
	return PlaceholderStart + strconv.Itoa(i) + PlaceholderEnd
}

// ReplaceWithPlaceholders joins the extraction's text segments with one
// placeholder per span.
func ReplaceWithPlaceholders(ext *mathspan.Extraction) string {
	return ext.Join(func(i int, _ mathspan.Span) string {
		return Placeholder(i)
	})
}

// SubstitutePlaceholders replaces each placeholder in htmlContent with its
// fragment and returns the indexes of fragments whose placeholder never
// appeared. A placeholder whose index is out of range, or stray placeholder
// delimiters, return ErrPlaceholder.
func SubstitutePlaceholders(htmlContent string, fragments []MathFragment) (string, []int, error) {
	matches := placeholderPattern.FindAllStringSubmatch(htmlContent, -1)
	seen := make([]bool, len(fragments))
	for _, m := range matches {
		i, err := strconv.Atoi(m[1])
		if err != nil || i >= len(fragments) {
			return "", nil, fmt.Errorf("%w: index %s with %d fragments", ErrPlaceholder, m[1], len(fragments))
		}
		seen[i] = true
	}
	if strings.ContainsAny(placeholderPattern.ReplaceAllString(htmlContent, ""), PlaceholderStart+PlaceholderEnd) {
		return "", nil, fmt.Errorf("%w: unmatched placeholder delimiter", ErrPlaceholder)
	}

	var missing []int
	for i, ok := range seen {
		if !ok {
			missing = append(missing, i)
		}
	}
	if len(matches) == 0 {
		return htmlContent, missing, nil
	}

	t, err := parseTree(htmlContent)
	if err != nil {
		return "", nil, err
	}

	var texts []*html.Node
	t.walk(func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			for k, a := range n.Attr {
				if strings.Contains(a.Val, PlaceholderStart) {
					n.Attr[k].Val = placeholderPattern.ReplaceAllStringFunc(a.Val, func(m string) string {
						return fragments[placeholderIndex(m)].Text
					})
				}
			}
		case html.TextNode:
			if strings.Contains(n.Data, PlaceholderStart) {
				texts = append(texts, n)
			}
		}
	})
	for _, n := range texts {
		if err := splice(n, fragments); err != nil {
			return "", nil, err
		}
	}

	out, err := t.render()
	if err != nil {
		return "", nil, err
	}
	return out, missing, nil
}

// splice replaces text node n with its text around the parsed fragments.
func splice(n *html.Node, fragments []MathFragment) error {
	parent := n.Parent
	context := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	if parent.Type == html.ElementNode {
		context = &html.Node{Type: html.ElementNode, DataAtom: parent.DataAtom, Data: parent.Data, Namespace: parent.Namespace}
	}

	text := n.Data
	prev := 0
	for _, loc := range placeholderPattern.FindAllStringIndex(text, -1) {
		if loc[0] > prev {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[prev:loc[0]]}, n)
		}
		nodes, err := html.ParseFragment(strings.NewReader(fragments[placeholderIndex(text[loc[0]:loc[1]])].HTML), context)
		if err != nil {
			return err
		}
		for _, c := range nodes {
			parent.InsertBefore(c, n)
		}
		prev = loc[1]
	}
	if prev < len(text) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[prev:]}, n)
	}
	parent.RemoveChild(n)
	return nil
}

// placeholderIndex reads the index of a marker already checked against
// the fragment count.
func placeholderIndex(m string) int {
	i, _ := strconv.Atoi(m[len(PlaceholderStart) : len(m)-len(PlaceholderEnd)])
	return i
}
