// Package unimath transliterates inline LaTeX math into exact Unicode text.
//
// The engine is all-or-nothing: an expression either renders completely
// (Rendered) or is refused with a reason (Refused) so the caller can fall
// back to an image. Approximations are never produced; a superscript that
// Unicode cannot express, an unknown command or a structural construct such
// as \frac refuses the whole expression.
//
// Symbol data lives in an immutable SymbolTable. DefaultTable is built once
// and shared; NewTable layers configuration-supplied commands on top of it.
package unimath
