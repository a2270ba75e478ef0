package unimath

import (
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokChar tokenKind = iota
	tokCommand
	tokOpen
	tokClose
	tokSup
	tokSub
	tokSpace
)

type token struct {
	kind tokenKind
	text string // source text; for commands the name with its backslash
	r    rune   // tokChar only
}

// lex splits a math body into tokens. Whitespace runs become one tokSpace;
// a backslash before whitespace is the control space `\ `.
func lex(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '\\':
			j := i + 1
			if j >= len(s) {
				return nil, refuse("trailing backslash")
			}
			for j < len(s) && isASCIILetter(s[j]) {
				j++
			}
			name := s[i:j]
			if j == i+1 {
				sym, sz := utf8.DecodeRuneInString(s[j:])
				j += sz
				name = s[i:j]
				if unicode.IsSpace(sym) {
					name = `\ `
				}
			}
			toks = append(toks, token{kind: tokCommand, text: name})
			i = j
			continue
		case r == '{':
			toks = append(toks, token{kind: tokOpen, text: "{"})
		case r == '}':
			toks = append(toks, token{kind: tokClose, text: "}"})
		case r == '^':
			toks = append(toks, token{kind: tokSup, text: "^"})
		case r == '_':
			toks = append(toks, token{kind: tokSub, text: "_"})
		case unicode.IsSpace(r):
			if len(toks) == 0 || toks[len(toks)-1].kind != tokSpace {
				toks = append(toks, token{kind: tokSpace, text: " "})
			}
		default:
			toks = append(toks, token{kind: tokChar, text: s[i : i+size], r: r})
		}
		i += size
	}
	return toks, nil
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
