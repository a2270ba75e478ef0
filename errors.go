package doc2substack

import (
	"errors"

	"github.com/alnah/go-doc2substack/internal/mathspan"
	"github.com/alnah/go-doc2substack/internal/pipeline"
	"github.com/alnah/go-doc2substack/internal/unimath"
)

// Sentinel errors for library operations.
var (
	ErrEmptyDocument     = errors.New("document content cannot be empty")
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrReadInput         = errors.New("failed to read input file")
	ErrHTMLConversion    = pipeline.ErrHTMLConversion
	ErrDocumentRender    = pipeline.ErrDocumentRender

	// Document converter errors.
	ErrConverterFailed  = errors.New("document converter failed")
	ErrConverterMissing = errors.New("document converter not found")

	// ErrUnterminatedMath matches *UnterminatedError via errors.Is.
	ErrUnterminatedMath = mathspan.ErrUnterminated

	// Option validation errors.
	ErrInvalidDPI        = errors.New("invalid DPI")
	ErrInvalidRenderer   = errors.New("invalid image renderer")
	ErrInvalidQuoteStyle = pipeline.ErrInvalidQuoteStyle
	ErrInvalidSymbol     = unimath.ErrInvalidSymbol

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")

	ErrPoolClosed = errors.New("converter pool closed")
)

// UnterminatedError reports the position of a math delimiter that was
// opened but never closed.
type UnterminatedError = mathspan.UnterminatedError
