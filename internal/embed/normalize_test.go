package embed

import (
	"testing"

	"github.com/alnah/go-doc2substack/internal/mathspan"
)

func TestNormalizeDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		span mathspan.Span
		want string
	}{
		{
			name: "plain body",
			span: mathspan.Span{Latex: " x^2 "},
			want: `\displaystyle x^2`,
		},
		{
			name: "equation wrapper inside dollars",
			span: mathspan.Span{Latex: "\\begin{equation}\na=b\n\\end{equation}"},
			want: `\displaystyle a=b`,
		},
		{
			name: "starred equation wrapper",
			span: mathspan.Span{Latex: `\begin{equation*}a\end{equation*}`},
			want: `\displaystyle a`,
		},
		{
			name: "align wrapper becomes aligned",
			span: mathspan.Span{Latex: `\begin{align}a&=b\\c&=d\end{align}`},
			want: `\displaystyle \begin{aligned}a&=b\\c&=d\end{aligned}`,
		},
		{
			name: "environment span",
			span: mathspan.Span{Latex: "a&=b", Env: "align*"},
			want: `\displaystyle \begin{aligned}a&=b\end{aligned}`,
		},
		{
			name: "gather environment",
			span: mathspan.Span{Latex: "a\\\\b", Env: "gather"},
			want: `\displaystyle \begin{gathered}a\\b\end{gathered}`,
		},
		{
			name: "label and nonumber removed",
			span: mathspan.Span{Latex: `E=mc^2 \label{eq:einstein}\nonumber`},
			want: `\displaystyle E=mc^2`,
		},
		{
			name: "aligned kept as is",
			span: mathspan.Span{Latex: `\begin{aligned}a\end{aligned}`},
			want: `\displaystyle \begin{aligned}a\end{aligned}`,
		},
		{
			name: "unterminated begin kept",
			span: mathspan.Span{Latex: `\begin{equation x`},
			want: `\displaystyle \begin{equation x`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeDisplay(tt.span); got != tt.want {
				t.Errorf("NormalizeDisplay() = %q, want %q", got, tt.want)
			}
		})
	}
}
