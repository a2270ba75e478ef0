//go:build bench

package pipeline

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"testing"

	"github.com/alnah/go-doc2substack/internal/mathspan"
)

// generateArticle builds a post shaped like converted lecture notes: prose
// with inline math, a display equation, a table and a code listing per
// section.
func generateArticle(sections int) string {
	var sb strings.Builder
	for i := range sections {
		fmt.Fprintf(&sb, "## Step %d\n\n", i+1)
		sb.WriteString("Let $x_i$ be the input and $\\alpha \\to \\beta$ the map, with \\(\\frac{1}{n}\\) as weight.\n\n")
		sb.WriteString("$$\n\\sum_{i=1}^{n} w_i x_i = \\int_0^1 f(t)\\,dt\n$$\n\n")
		sb.WriteString("| n | cost |\n|---|------|\n| 1 | $O(1)$ |\n| n | $O(n)$ |\n\n")
		sb.WriteString("```python\ndef step(x):\n    return sum(w * v for w, v in zip(W, x))\n```\n\n")
	}
	return sb.String()
}

// generateMathHTML mimics the fragment goldmark produces once math is
// substituted back.
func generateMathHTML(paragraphs int) string {
	var sb strings.Builder
	for i := range paragraphs {
		fmt.Fprintf(&sb, "<p>Step %d uses “wᵗ”  and  x²:\n", i+1)
		sb.WriteString(`<img class="math display" src="data:image/png;base64,AA==" alt="x"></p>`)
		sb.WriteString("\n<p></p>\n<pre><code>a  \"b\"</code></pre>\n")
	}
	return sb.String()
}

func BenchmarkToHTMLFragment(b *testing.B) {
	conv := NewGoldmarkConverter()
	ctx := context.Background()

	for _, n := range []int{1, 20, 200} {
		content := CleanMarkup(generateArticle(n))
		b.Run(fmt.Sprintf("sections_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := conv.ToHTMLFragment(ctx, content); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkToHTMLFragment_Parallel(b *testing.B) {
	conv := NewGoldmarkConverter()
	ctx := context.Background()
	content := CleanMarkup(generateArticle(20))

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := conv.ToHTMLFragment(ctx, content); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkReassemble covers placeholders around goldmark followed by the
// cleanup pass, with math fragments fixed in advance.
func BenchmarkReassemble(b *testing.B) {
	conv := NewGoldmarkConverter()
	ctx := context.Background()

	for _, n := range []int{10, 100} {
		ext, err := mathspan.Extract(generateArticle(n))
		if err != nil {
			b.Fatal(err)
		}
		fragments := make([]MathFragment, len(ext.Spans))
		for i, s := range ext.Spans {
			fragments[i] = MathFragment{HTML: "x", Text: "x"}
			if s.Kind == mathspan.Display {
				fragments[i].HTML = `<img class="math display" src="data:image/png;base64,AA==" alt="x">`
			}
		}

		b.Run(fmt.Sprintf("sections_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				fragment, err := conv.ToHTMLFragment(ctx, CleanMarkup(ReplaceWithPlaceholders(ext)))
				if err != nil {
					b.Fatal(err)
				}
				merged, _, err := SubstitutePlaceholders(fragment, fragments)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := CleanHTML(merged, QuotesStraight); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCleanHTML(b *testing.B) {
	for _, style := range []QuoteStyle{QuotesStraight, QuotesCurly} {
		for _, n := range []int{10, 500} {
			content := generateMathHTML(n)
			b.Run(fmt.Sprintf("%s_%d", style, n), func(b *testing.B) {
				b.ReportAllocs()
				for b.Loop() {
					if _, err := CleanHTML(content, style); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkAssemblePage renders the document template and injects the page
// style, the last two steps of every conversion.
func BenchmarkAssemblePage(b *testing.B) {
	tmpl, err := NewDocumentTemplate(`<!DOCTYPE html><html><head><title>{{.Title}}</title></head><body>{{.Body}}</body></html>`)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	data := DocumentData{Title: "Bench", Body: template.HTML(generateMathHTML(200))}
	css := strings.Repeat("p { margin: 0 0 1em; }\n", 50)
	injector := &CSSInjection{}

	b.ReportAllocs()
	for b.Loop() {
		page, err := tmpl.RenderDocument(ctx, data)
		if err != nil {
			b.Fatal(err)
		}
		_ = injector.InjectCSS(ctx, page, css)
	}
}
