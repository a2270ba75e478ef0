package unimath

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"strings"
	"sync"
)

// ErrInvalidSymbol indicates a configuration-supplied table entry is malformed.
var ErrInvalidSymbol = errors.New("invalid symbol mapping")

// SymbolTable maps LaTeX tokens to Unicode. It is immutable once built and
// safe to share between goroutines.
type SymbolTable struct {
	commands    map[string]string
	super       map[rune]rune
	sub         map[rune]rune
	fonts       map[string]map[rune]rune
	text        map[string]bool
	accents     map[string]rune
	functions   map[string]bool
	limitOps    map[string]bool
	sizing      map[string]bool
	unsupported map[string]bool
}

// DefaultTable returns the shared built-in table.
var DefaultTable = sync.OnceValue(func() *SymbolTable {
	return buildTable()
})

var commandName = regexp.MustCompile(`^\\[A-Za-z]+$`)

// NewTable returns a table holding the built-in entries plus extra, keyed by
// command name with its backslash (e.g. `\R` -> "ℝ"). Extra entries may
// override built-in commands but not structural ones.
func NewTable(extra map[string]string) (*SymbolTable, error) {
	t := buildTable()
	for name, value := range extra {
		if !commandName.MatchString(name) {
			return nil, fmt.Errorf("%w: name %q must be a backslash followed by letters", ErrInvalidSymbol, name)
		}
		if value == "" || strings.ContainsRune(value, '\\') {
			return nil, fmt.Errorf("%w: value for %s must be non-empty and free of backslashes", ErrInvalidSymbol, name)
		}
		if t.isStructural(name) {
			return nil, fmt.Errorf("%w: %s is a structural command", ErrInvalidSymbol, name)
		}
		t.commands[name] = value
	}
	return t, nil
}

// Command returns the Unicode text for a symbol command such as `\alpha`.
func (t *SymbolTable) Command(name string) (string, bool) {
	s, ok := t.commands[name]
	return s, ok
}

// Superscript returns the superscript form of r.
func (t *SymbolTable) Superscript(r rune) (rune, bool) {
	s, ok := t.super[r]
	return s, ok
}

// Subscript returns the subscript form of r.
func (t *SymbolTable) Subscript(r rune) (rune, bool) {
	s, ok := t.sub[r]
	return s, ok
}

// IsFont reports whether name is a font-alphabet command.
func (t *SymbolTable) IsFont(name string) bool {
	_, ok := t.fonts[name]
	return ok
}

// Font returns r in the alphabet selected by the font command name.
func (t *SymbolTable) Font(name string, r rune) (rune, bool) {
	s, ok := t.fonts[name][r]
	return s, ok
}

// IsText reports whether name renders its argument literally (\text, \mathrm).
func (t *SymbolTable) IsText(name string) bool { return t.text[name] }

// Accent returns the combining mark applied by an accent command.
func (t *SymbolTable) Accent(name string) (rune, bool) {
	r, ok := t.accents[name]
	return r, ok
}

// Function returns the upright text of a named function such as `\sin`.
func (t *SymbolTable) Function(name string) (string, bool) {
	if !t.functions[name] {
		return "", false
	}
	return name[1:], true
}

// IsLimitOperator reports whether scripts on name are typeset as limits.
func (t *SymbolTable) IsLimitOperator(name string) bool { return t.limitOps[name] }

// IsSizing reports whether name only resizes the following delimiter.
func (t *SymbolTable) IsSizing(name string) bool { return t.sizing[name] }

// IsUnsupported reports whether name is a construct Unicode cannot express.
func (t *SymbolTable) IsUnsupported(name string) bool { return t.unsupported[name] }

// Outputs returns every rune the table can produce.
func (t *SymbolTable) Outputs() map[rune]struct{} {
	out := make(map[rune]struct{})
	add := func(s string) {
		for _, r := range s {
			out[r] = struct{}{}
		}
	}
	for _, v := range t.commands {
		add(v)
	}
	for _, v := range t.super {
		out[v] = struct{}{}
	}
	for _, v := range t.sub {
		out[v] = struct{}{}
	}
	for _, alphabet := range t.fonts {
		for _, v := range alphabet {
			out[v] = struct{}{}
		}
	}
	for _, v := range t.accents {
		out[v] = struct{}{}
	}
	for name := range t.functions {
		add(name[1:])
	}
	return out
}

func (t *SymbolTable) isStructural(name string) bool {
	_, accent := t.accents[name]
	return t.unsupported[name] || t.IsFont(name) || t.text[name] || accent ||
		t.sizing[name] || t.functions[name] || name == `\not`
}

func buildTable() *SymbolTable {
	t := &SymbolTable{
		commands:    maps.Clone(symbolCommands),
		super:       maps.Clone(superscripts),
		sub:         maps.Clone(subscripts),
		fonts:       buildFonts(),
		text:        setOf(textCommands),
		accents:     maps.Clone(accentMarks),
		functions:   setOf(functionNames),
		limitOps:    setOf(limitOperators),
		sizing:      setOf(sizingCommands),
		unsupported: setOf(unsupportedCommands),
	}
	return t
}

func setOf(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// ---------------------------------------------------------------------------
// Table data
// ---------------------------------------------------------------------------

var symbolCommands = map[string]string{
	// Greek lowercase
	`\alpha`: "α", `\beta`: "β", `\gamma`: "γ", `\delta`: "δ",
	`\epsilon`: "ϵ", `\varepsilon`: "ε", `\zeta`: "ζ", `\eta`: "η",
	`\theta`: "θ", `\vartheta`: "ϑ", `\iota`: "ι", `\kappa`: "κ",
	`\varkappa`: "ϰ", `\lambda`: "λ", `\mu`: "μ", `\nu`: "ν",
	`\xi`: "ξ", `\pi`: "π", `\varpi`: "ϖ", `\rho`: "ρ",
	`\varrho`: "ϱ", `\sigma`: "σ", `\varsigma`: "ς", `\tau`: "τ",
	`\upsilon`: "υ", `\phi`: "ϕ", `\varphi`: "φ", `\chi`: "χ",
	`\psi`: "ψ", `\omega`: "ω",

	// Greek capitals
	`\Gamma`: "Γ", `\Delta`: "Δ", `\Theta`: "Θ", `\Lambda`: "Λ",
	`\Xi`: "Ξ", `\Pi`: "Π", `\Sigma`: "Σ", `\Upsilon`: "Υ",
	`\Phi`: "Φ", `\Psi`: "Ψ", `\Omega`: "Ω",

	// Binary operators
	`\pm`: "±", `\mp`: "∓", `\times`: "×", `\div`: "÷", `\cdot`: "⋅",
	`\ast`: "∗", `\star`: "⋆", `\circ`: "∘", `\bullet`: "∙",
	`\oplus`: "⊕", `\ominus`: "⊖", `\otimes`: "⊗", `\odot`: "⊙",
	`\cup`: "∪", `\cap`: "∩", `\setminus`: "∖", `\wedge`: "∧",
	`\land`: "∧", `\vee`: "∨", `\lor`: "∨", `\dagger`: "†",

	// Relations
	`\leq`: "≤", `\le`: "≤", `\geq`: "≥", `\ge`: "≥", `\neq`: "≠",
	`\ne`: "≠", `\approx`: "≈", `\equiv`: "≡", `\sim`: "∼",
	`\simeq`: "≃", `\cong`: "≅", `\propto`: "∝", `\ll`: "≪",
	`\gg`: "≫", `\in`: "∈", `\notin`: "∉", `\ni`: "∋",
	`\subset`: "⊂", `\subseteq`: "⊆", `\supset`: "⊃", `\supseteq`: "⊇",
	`\perp`: "⊥", `\parallel`: "∥", `\mid`: "∣", `\models`: "⊨",
	`\vdash`: "⊢", `\dashv`: "⊣", `\lt`: "<", `\gt`: ">",
	`\prec`: "≺", `\succ`: "≻", `\preceq`: "⪯", `\succeq`: "⪰",

	// Arrows
	`\to`: "→", `\rightarrow`: "→", `\leftarrow`: "←", `\gets`: "←",
	`\leftrightarrow`: "↔", `\Rightarrow`: "⇒", `\Leftarrow`: "⇐",
	`\Leftrightarrow`: "⇔", `\implies`: "⟹", `\impliedby`: "⟸",
	`\iff`: "⟺", `\mapsto`: "↦", `\uparrow`: "↑", `\downarrow`: "↓",
	`\longrightarrow`: "⟶", `\longleftarrow`: "⟵", `\hookrightarrow`: "↪",

	// Miscellaneous symbols
	`\nabla`: "∇", `\partial`: "∂", `\infty`: "∞", `\emptyset`: "∅",
	`\varnothing`: "∅", `\forall`: "∀", `\exists`: "∃", `\nexists`: "∄",
	`\neg`: "¬", `\lnot`: "¬", `\hbar`: "ℏ", `\ell`: "ℓ", `\Re`: "ℜ",
	`\Im`: "ℑ", `\aleph`: "ℵ", `\prime`: "′", `\angle`: "∠",
	`\triangle`: "△", `\square`: "□", `\top`: "⊤", `\bot`: "⊥",
	`\degree`: "°", `\cdots`: "⋯", `\ldots`: "…", `\dots`: "…",
	`\vdots`: "⋮", `\ddots`: "⋱", `\colon`: ":", `\vert`: "|",
	`\Vert`: "‖", `\lvert`: "|", `\rvert`: "|", `\lVert`: "‖",
	`\rVert`: "‖", `\langle`: "⟨", `\rangle`: "⟩", `\lfloor`: "⌊",
	`\rfloor`: "⌋", `\lceil`: "⌈", `\rceil`: "⌉",

	// Big operators, rendered bare; scripts on them refuse
	`\sum`: "∑", `\prod`: "∏", `\coprod`: "∐", `\int`: "∫",
	`\iint`: "∬", `\iiint`: "∭", `\oint`: "∮", `\bigcup`: "⋃",
	`\bigcap`: "⋂",

	// Spacing
	`\,`: "\u2009", `\:`: "\u205F", `\>`: "\u205F", `\;`: "\u2004",
	`\!`: "", `\quad`: "\u2003", `\qquad`: "\u2003\u2003", `\ `: " ",

	// Escaped punctuation
	`\{`: "{", `\}`: "}", `\|`: "‖", `\%`: "%", `\&`: "&", `\#`: "#",
	`\_`: "_", `\$`: "$",
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',

	'a': 'ᵃ', 'b': 'ᵇ', 'c': 'ᶜ', 'd': 'ᵈ', 'e': 'ᵉ', 'f': 'ᶠ',
	'g': 'ᵍ', 'h': 'ʰ', 'i': 'ⁱ', 'j': 'ʲ', 'k': 'ᵏ', 'l': 'ˡ',
	'm': 'ᵐ', 'n': 'ⁿ', 'o': 'ᵒ', 'p': 'ᵖ', 'r': 'ʳ', 's': 'ˢ',
	't': 'ᵗ', 'u': 'ᵘ', 'v': 'ᵛ', 'w': 'ʷ', 'x': 'ˣ', 'y': 'ʸ',
	'z': 'ᶻ',

	'A': 'ᴬ', 'B': 'ᴮ', 'D': 'ᴰ', 'E': 'ᴱ', 'G': 'ᴳ', 'H': 'ᴴ',
	'I': 'ᴵ', 'J': 'ᴶ', 'K': 'ᴷ', 'L': 'ᴸ', 'M': 'ᴹ', 'N': 'ᴺ',
	'O': 'ᴼ', 'P': 'ᴾ', 'R': 'ᴿ', 'T': 'ᵀ', 'U': 'ᵁ', 'V': 'ⱽ',
	'W': 'ᵂ',

	// Only modifier letters named after the Greek letter itself. ᵋ and ᶥ
	// are Latin open e and iota and stay out.
	'α': 'ᵅ', 'β': 'ᵝ', 'γ': 'ᵞ', 'δ': 'ᵟ', 'θ': 'ᶿ', 'φ': 'ᵠ', 'χ': 'ᵡ',

	// Symbols whose conventional superscript use has a text form.
	'′': '′', '∘': '°', '†': '†', '⊤': 'ᵀ',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',

	'a': 'ₐ', 'e': 'ₑ', 'h': 'ₕ', 'i': 'ᵢ', 'j': 'ⱼ', 'k': 'ₖ',
	'l': 'ₗ', 'm': 'ₘ', 'n': 'ₙ', 'o': 'ₒ', 'p': 'ₚ', 'r': 'ᵣ',
	's': 'ₛ', 't': 'ₜ', 'u': 'ᵤ', 'v': 'ᵥ', 'x': 'ₓ',

	'β': 'ᵦ', 'γ': 'ᵧ', 'ρ': 'ᵨ', 'φ': 'ᵩ', 'χ': 'ᵪ',
}

var accentMarks = map[string]rune{
	`\hat`:       '\u0302',
	`\widehat`:   '\u0302',
	`\check`:     '\u030C',
	`\tilde`:     '\u0303',
	`\widetilde`: '\u0303',
	`\acute`:     '\u0301',
	`\grave`:     '\u0300',
	`\dot`:       '\u0307',
	`\ddot`:      '\u0308',
	`\breve`:     '\u0306',
	`\bar`:       '\u0304',
	`\overline`:  '\u0305',
	`\vec`:       '\u20D7',
	`\mathring`:  '\u030A',
}

var textCommands = []string{
	`\text`, `\mathrm`, `\mathit`, `\operatorname`, `\mbox`,
	`\textit`, `\textrm`, `\textnormal`, `\textup`,
}

var functionNames = []string{
	`\sin`, `\cos`, `\tan`, `\cot`, `\sec`, `\csc`,
	`\arcsin`, `\arccos`, `\arctan`, `\sinh`, `\cosh`, `\tanh`, `\coth`,
	`\log`, `\ln`, `\lg`, `\exp`, `\det`, `\dim`, `\ker`, `\deg`,
	`\gcd`, `\hom`, `\arg`, `\Pr`,
	`\lim`, `\liminf`, `\limsup`, `\max`, `\min`, `\sup`, `\inf`,
}

var limitOperators = []string{
	`\sum`, `\prod`, `\coprod`, `\int`, `\iint`, `\iiint`, `\oint`,
	`\bigcup`, `\bigcap`, `\lim`, `\liminf`, `\limsup`,
	`\max`, `\min`, `\sup`, `\inf`,
}

var sizingCommands = []string{
	`\left`, `\right`, `\middle`,
	`\big`, `\Big`, `\bigg`, `\Bigg`,
	`\bigl`, `\bigr`, `\Bigl`, `\Bigr`,
	`\biggl`, `\biggr`, `\Biggl`, `\Biggr`,
}

var unsupportedCommands = []string{
	`\frac`, `\dfrac`, `\tfrac`, `\cfrac`, `\sqrt`,
	`\binom`, `\dbinom`, `\tbinom`,
	`\begin`, `\end`, `\matrix`, `\pmatrix`, `\bmatrix`, `\vmatrix`,
	`\cases`, `\array`,
	`\underbrace`, `\overbrace`, `\substack`, `\stackrel`,
	`\overset`, `\underset`, `\xrightarrow`, `\xleftarrow`,
	`\label`, `\tag`, `\nonumber`, `\limits`, `\nolimits`,
}

// ---------------------------------------------------------------------------
// Font alphabets
// ---------------------------------------------------------------------------

func buildFonts() map[string]map[rune]rune {
	bold := alphabet('\U0001D400', '\U0001D41A', '\U0001D7CE', nil)
	return map[string]map[rune]rune{
		`\mathbb`: alphabet('\U0001D538', '\U0001D552', '\U0001D7D8', map[rune]rune{
			'C': 'ℂ', 'H': 'ℍ', 'N': 'ℕ', 'P': 'ℙ', 'Q': 'ℚ', 'R': 'ℝ', 'Z': 'ℤ',
		}),
		`\mathcal`: alphabet('\U0001D49C', '\U0001D4B6', 0, map[rune]rune{
			'B': 'ℬ', 'E': 'ℰ', 'F': 'ℱ', 'H': 'ℋ', 'I': 'ℐ', 'L': 'ℒ', 'M': 'ℳ', 'R': 'ℛ',
			'e': 'ℯ', 'g': 'ℊ', 'o': 'ℴ',
		}),
		`\mathfrak`: alphabet('\U0001D504', '\U0001D51E', 0, map[rune]rune{
			'C': 'ℭ', 'H': 'ℌ', 'I': 'ℑ', 'R': 'ℜ', 'Z': 'ℨ',
		}),
		`\mathbf`: bold,
		`\textbf`: bold,
	}
}

// alphabet lays out a mathematical alphanumeric block. Letters listed in
// holes live in the Letterlike Symbols block instead; digits is 0 when the
// style has none.
func alphabet(upper, lower, digits rune, holes map[rune]rune) map[rune]rune {
	m := make(map[rune]rune, 62)
	for i := range rune(26) {
		m['A'+i] = upper + i
		m['a'+i] = lower + i
		if i < 10 && digits != 0 {
			m['0'+i] = digits + i
		}
	}
	maps.Copy(m, holes)
	return m
}
