package embed

import (
	"regexp"
	"strings"

	"github.com/alnah/go-doc2substack/internal/mathspan"
)

// numberingCommands are dropped from display math.
var numberingCommands = regexp.MustCompile(`\\(?:label|tag)\{[^{}]*\}|\\(?:nonumber|notag)\b`)

// envWrappers maps numbered environments to the inner environment that
// renders the same body in math mode.
var envWrappers = map[string]string{
	"equation":    "",
	"displaymath": "",
	"align":       "aligned",
	"eqnarray":    "aligned",
	"gather":      "gathered",
	"multline":    "gathered",
}

// NormalizeDisplay returns the LaTeX to render for a display span: the
// outer numbered environment is unwrapped (align bodies become aligned),
// numbering commands are removed and \displaystyle is prefixed.
func NormalizeDisplay(span mathspan.Span) string {
	body := span.Latex
	env := span.Env
	if env == "" {
		env, body = unwrapEnvironment(strings.TrimSpace(body))
	}

	if inner, ok := envWrappers[strings.TrimSuffix(env, "*")]; ok && inner != "" {
		body = `\begin{` + inner + `}` + body + `\end{` + inner + `}`
	}

	body = numberingCommands.ReplaceAllString(body, "")
	return `\displaystyle ` + strings.TrimSpace(body)
}

// unwrapEnvironment strips a \begin{env}...\end{env} pair enclosing the
// whole body, as pandoc emits for numbered equations inside $$.
func unwrapEnvironment(body string) (string, string) {
	const begin = `\begin{`
	if !strings.HasPrefix(body, begin) {
		return "", body
	}
	end := strings.IndexByte(body, '}')
	if end < 0 {
		return "", body
	}
	env := body[len(begin):end]
	if _, ok := envWrappers[strings.TrimSuffix(env, "*")]; !ok {
		return "", body
	}
	closing := `\end{` + env + `}`
	if !strings.HasSuffix(body, closing) {
		return "", body
	}
	return env, body[end+1 : len(body)-len(closing)]
}
