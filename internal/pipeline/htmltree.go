package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tree is parsed HTML that renders back in the shape it came in: a full
// page stays a page, a body fragment stays a fragment with no html, head
// or body elements added.
type tree struct {
	root     *html.Node
	fragment bool
}

func parseTree(content string) (*tree, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		if err != nil {
			return nil, err
		}
		return &tree{root: doc}, nil
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &tree{root: root, fragment: true}, nil
}

func (t *tree) render() (string, error) {
	var sb strings.Builder
	if !t.fragment {
		err := html.Render(&sb, t.root)
		return sb.String(), err
	}
	for n := t.root.FirstChild; n != nil; n = n.NextSibling {
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// elements calls fn for every element of type a, in document order.
func (t *tree) elements(a atom.Atom, fn func(*html.Node)) {
	t.walk(func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			fn(n)
		}
	})
}

// walk calls fn for every node in document order. fn must not detach n.
func (t *tree) walk(fn func(*html.Node)) {
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		fn(n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(t.root)
}
