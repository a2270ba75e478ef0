package unimath

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// mathPunct lists the ASCII characters that render as themselves in math.
const mathPunct = "+-=<>()[],.;:!/|*?@"

// combiningNot overlays a slash; NFC composes it with relations (= to ≠).
const combiningNot = '\u0338'

// Engine transliterates inline LaTeX math into Unicode text.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	table *SymbolTable
}

// NewEngine returns an engine over table, or over DefaultTable when nil.
func NewEngine(table *SymbolTable) *Engine {
	if table == nil {
		table = DefaultTable()
	}
	return &Engine{table: table}
}

// Table returns the engine's symbol table.
func (e *Engine) Table() *SymbolTable { return e.table }

// Transliterate renders latex exactly or refuses it as a whole. A refusal
// never carries partial output.
func (e *Engine) Transliterate(latex string) Result {
	if strings.TrimSpace(latex) == "" {
		return Refused{Reason: "empty expression"}
	}
	toks, err := lex(latex)
	if err != nil {
		return Refused{Reason: err.Error()}
	}
	p := &parser{table: e.table, toks: toks}
	text, err := p.sequence(false)
	if err != nil {
		return Refused{Reason: err.Error()}
	}
	text = collapseSpaces(text)
	if text == "" {
		return Refused{Reason: "empty expression"}
	}
	return Rendered{Text: text}
}

// refusal aborts parsing; its message becomes Refused.Reason.
type refusal struct {
	reason string
}

func (r *refusal) Error() string { return r.reason }

func refuse(format string, args ...any) error {
	return &refusal{reason: fmt.Sprintf(format, args...)}
}

type parser struct {
	table *SymbolTable
	toks  []token
	pos   int
}

// atom is one rendered base. limitOp names the operator when scripts on it
// would be typeset as limits.
type atom struct {
	text    string
	limitOp string
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.toks) && p.toks[p.pos].kind == tokSpace {
		p.pos++
	}
}

// sequence renders atoms with their scripts until the end of input or, in
// a group, until the closing brace (left unconsumed).
func (p *parser) sequence(inGroup bool) (string, error) {
	var b strings.Builder
	for {
		tok, ok := p.peek()
		if !ok {
			if inGroup {
				return "", refuse("unbalanced braces")
			}
			return b.String(), nil
		}
		switch tok.kind {
		case tokClose:
			if !inGroup {
				return "", refuse("unbalanced braces")
			}
			return b.String(), nil
		case tokSpace:
			p.pos++
			b.WriteByte(' ')
			continue
		}

		a, err := p.atom()
		if err != nil {
			return "", err
		}
		scripts, err := p.scripts(a)
		if err != nil {
			return "", err
		}
		b.WriteString(a.text)
		b.WriteString(scripts)
	}
}

func (p *parser) atom() (atom, error) {
	tok, ok := p.peek()
	if !ok {
		return atom{}, nil
	}
	switch tok.kind {
	case tokSup, tokSub:
		// Script with an empty base.
		return atom{}, nil
	case tokOpen:
		p.pos++
		s, err := p.sequence(true)
		if err != nil {
			return atom{}, err
		}
		p.pos++
		return atom{text: s}, nil
	case tokChar:
		p.pos++
		s, err := mathChar(tok.r)
		return atom{text: s}, err
	case tokCommand:
		p.pos++
		return p.command(tok.text)
	}
	return atom{}, refuse("unbalanced braces")
}

func (p *parser) command(name string) (atom, error) {
	t := p.table
	switch {
	case t.IsUnsupported(name):
		return atom{}, refuse("unsupported construct: %s", name)
	case t.IsSizing(name):
		return p.delimiter(name)
	case name == `\not`:
		return p.negation()
	case t.IsFont(name):
		s, err := p.fontArg(name)
		return atom{text: s}, err
	case t.IsText(name):
		var limit string
		if name == `\operatorname` && p.star() {
			limit = `\operatorname*`
		}
		s, err := p.textArg(name)
		return atom{text: s, limitOp: limit}, err
	}
	if mark, ok := t.Accent(name); ok {
		s, err := p.accentArg(name, mark)
		return atom{text: s}, err
	}

	var limit string
	if t.IsLimitOperator(name) {
		limit = name
	}
	if fn, ok := t.Function(name); ok {
		return atom{text: fn, limitOp: limit}, nil
	}
	if s, ok := t.Command(name); ok {
		return atom{text: s, limitOp: limit}, nil
	}
	return atom{}, refuse("unknown command %s", name)
}

// star consumes the `*` of a starred command form.
func (p *parser) star() bool {
	p.skipSpaces()
	if tok, ok := p.peek(); ok && tok.kind == tokChar && tok.r == '*' {
		p.pos++
		return true
	}
	return false
}

// delimiter renders the delimiter after \left, \big and friends. The null
// delimiter `.` renders as nothing.
func (p *parser) delimiter(name string) (atom, error) {
	p.skipSpaces()
	tok, ok := p.peek()
	if !ok || (tok.kind != tokChar && tok.kind != tokCommand) {
		return atom{}, refuse("missing argument for %s", name)
	}
	if tok.kind == tokChar && tok.r == '.' {
		p.pos++
		return atom{}, nil
	}
	return p.atom()
}

// negation composes the next relation with U+0338 and accepts the result
// only when Unicode has a precomposed form.
func (p *parser) negation() (atom, error) {
	p.skipSpaces()
	tok, ok := p.peek()
	if !ok || (tok.kind != tokChar && tok.kind != tokCommand) {
		return atom{}, refuse(`missing argument for \not`)
	}
	a, err := p.atom()
	if err != nil {
		return atom{}, err
	}
	composed := norm.NFC.String(a.text + string(combiningNot))
	if utf8.RuneCountInString(composed) != 1 {
		return atom{}, refuse(`unsupported construct: \not %s`, tok.text)
	}
	return atom{text: composed}, nil
}

func (p *parser) scripts(base atom) (string, error) {
	var b strings.Builder
	var haveSup, haveSub bool
	for {
		tok, ok := p.peek()
		if !ok || (tok.kind != tokSup && tok.kind != tokSub) {
			return b.String(), nil
		}
		if base.limitOp != "" {
			return "", refuse("unsupported construct: %s with limits", base.limitOp)
		}
		p.pos++
		sup := tok.kind == tokSup
		if sup {
			if haveSup {
				return "", refuse("double superscript")
			}
			haveSup = true
		} else {
			if haveSub {
				return "", refuse("double subscript")
			}
			haveSub = true
		}
		s, err := p.scriptArg(sup, tok.text)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
}

func (p *parser) scriptArg(sup bool, op string) (string, error) {
	p.skipSpaces()
	tok, ok := p.peek()
	if !ok {
		return "", refuse("missing argument for %s", op)
	}
	switch tok.kind {
	case tokClose:
		return "", refuse("unbalanced braces")
	case tokSup, tokSub:
		return "", refuse("nested script")
	case tokOpen:
		p.pos++
		return p.scriptGroup(sup)
	}
	p.pos++
	return p.scriptToken(tok, sup)
}

func (p *parser) scriptGroup(sup bool) (string, error) {
	var b strings.Builder
	for {
		tok, ok := p.peek()
		if !ok {
			return "", refuse("unbalanced braces")
		}
		p.pos++
		switch tok.kind {
		case tokClose:
			return b.String(), nil
		case tokSpace:
			continue
		case tokSup, tokSub:
			return "", refuse("nested script")
		case tokOpen:
			s, err := p.scriptGroup(sup)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		default:
			s, err := p.scriptToken(tok, sup)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
}

// scriptToken maps one character or symbol command to its script form.
func (p *parser) scriptToken(tok token, sup bool) (string, error) {
	lookup, where := p.table.Subscript, "subscript"
	if sup {
		lookup, where = p.table.Superscript, "superscript"
	}

	var src string
	switch tok.kind {
	case tokChar:
		src = string(tok.r)
		if tok.r == '\'' {
			src = "′"
		}
	case tokCommand:
		if p.table.IsUnsupported(tok.text) {
			return "", refuse("unsupported construct: %s", tok.text)
		}
		s, ok := p.table.Command(tok.text)
		if !ok {
			if p.isKnownStructural(tok.text) {
				return "", refuse(`no %s form for "%s"`, where, tok.text)
			}
			return "", refuse("unknown command %s", tok.text)
		}
		src = s
	}

	var b strings.Builder
	for _, r := range src {
		m, ok := lookup(r)
		if !ok {
			return "", refuse(`no %s form for "%s"`, where, tok.text)
		}
		b.WriteRune(m)
	}
	return b.String(), nil
}

func (p *parser) isKnownStructural(name string) bool {
	_, accent := p.table.Accent(name)
	_, fn := p.table.Function(name)
	return accent || fn || p.table.IsFont(name) || p.table.IsText(name) ||
		p.table.IsSizing(name) || name == `\not`
}

// argTokens returns the tokens of a command argument: a braced group or a
// single token.
func (p *parser) argTokens(name string) ([]token, error) {
	p.skipSpaces()
	tok, ok := p.peek()
	if !ok || tok.kind == tokClose {
		return nil, refuse("missing argument for %s", name)
	}
	p.pos++
	if tok.kind != tokOpen {
		return []token{tok}, nil
	}
	start := p.pos
	depth := 1
	for ; p.pos < len(p.toks); p.pos++ {
		switch p.toks[p.pos].kind {
		case tokOpen:
			depth++
		case tokClose:
			depth--
			if depth == 0 {
				inner := p.toks[start:p.pos]
				p.pos++
				return inner, nil
			}
		}
	}
	return nil, refuse("unbalanced braces")
}

// fontArg maps the argument through a font alphabet. Spaces are dropped in
// math fonts and kept in text fonts such as \textbf.
func (p *parser) fontArg(name string) (string, error) {
	toks, err := p.argTokens(name)
	if err != nil {
		return "", err
	}
	textMode := strings.HasPrefix(name, `\text`)
	var b strings.Builder
	for _, tok := range toks {
		if tok.kind == tokSpace {
			if textMode {
				b.WriteByte(' ')
			}
			continue
		}
		if tok.kind != tokChar {
			return "", refuse(`no %s form for "%s"`, name, tok.text)
		}
		r, ok := p.table.Font(name, tok.r)
		if !ok {
			return "", refuse(`no %s form for "%s"`, name, tok.text)
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

func (p *parser) textArg(name string) (string, error) {
	toks, err := p.argTokens(name)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, tok := range toks {
		switch tok.kind {
		case tokSpace:
			b.WriteByte(' ')
		case tokOpen, tokClose:
			// Groups inside text are invisible.
		case tokChar:
			switch {
			case tok.r == '~':
				b.WriteRune('\u00A0')
			case strings.ContainsRune("&#%$", tok.r):
				return "", refuse(`unsupported character "%s"`, tok.text)
			default:
				b.WriteString(tok.text)
			}
		case tokCommand:
			s, ok := p.table.Command(tok.text)
			if !ok || len(tok.text) != 2 {
				return "", refuse("unsupported construct: %s in %s", tok.text, name)
			}
			b.WriteString(s)
		default:
			return "", refuse("unsupported construct: %s in %s", tok.text, name)
		}
	}
	return b.String(), nil
}

func (p *parser) accentArg(name string, mark rune) (string, error) {
	toks, err := p.argTokens(name)
	if err != nil {
		return "", err
	}
	var parts []token
	for _, tok := range toks {
		if tok.kind != tokSpace {
			parts = append(parts, tok)
		}
	}
	if len(parts) == 0 {
		return "", refuse("missing argument for %s", name)
	}
	if len(parts) > 1 {
		return "", refuse("accent over multiple characters")
	}

	var base string
	switch tok := parts[0]; tok.kind {
	case tokChar:
		base = tok.text
	case tokCommand:
		s, ok := p.table.Command(tok.text)
		if !ok {
			return "", refuse("unknown command %s", tok.text)
		}
		base = s
	default:
		return "", refuse("missing argument for %s", name)
	}
	r, size := utf8.DecodeRuneInString(base)
	if size != len(base) || !unicode.IsLetter(r) {
		return "", refuse("accent over multiple characters")
	}
	return norm.NFC.String(base + string(mark)), nil
}

func mathChar(r rune) (string, error) {
	switch {
	case r < utf8.RuneSelf && (isASCIILetter(byte(r)) || (r >= '0' && r <= '9')):
		return string(r), nil
	case r == '\'':
		return "′", nil
	case r == '~':
		return "\u00A0", nil
	case strings.ContainsRune(mathPunct, r):
		return string(r), nil
	case r < utf8.RuneSelf:
		return "", refuse(`unsupported character "%c"`, r)
	case unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSymbol(r) || unicode.IsPunct(r):
		return string(r), nil
	}
	return "", refuse(`unsupported character "%c"`, r)
}

// collapseSpaces reduces runs of ASCII spaces to one and trims the ends.
// Typographic spaces from spacing commands are kept.
func collapseSpaces(s string) string {
	var b strings.Builder
	prevSpace := false
	for _, r := range s {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), " ")
}
