package main

import (
	"errors"
	"os"

	doc2substack "github.com/alnah/go-doc2substack"
	"github.com/alnah/go-doc2substack/internal/config"
)

// Process exit codes. Degraded math or skipped images still exit 0.
const (
	ExitSuccess   = 0
	ExitGeneral   = 1
	ExitUsage     = 2 // flags, config, input format, unterminated math
	ExitIO        = 3 // missing input, permissions, failed write
	ExitConverter = 4 // pandoc missing or failed
)

// exitClasses is checked in order; the first class with a matching
// sentinel decides the code.
var exitClasses = []struct {
	code    int
	targets []error
}{
	{ExitConverter, []error{
		doc2substack.ErrConverterMissing,
		doc2substack.ErrConverterFailed,
	}},
	{ExitUsage, []error{
		config.ErrConfigNotFound,
		config.ErrConfigParse,
		config.ErrFieldTooLong,
		config.ErrInvalidValue,
		config.ErrEmptyConfigName,
		doc2substack.ErrEmptyDocument,
		doc2substack.ErrUnsupportedFormat,
		doc2substack.ErrUnterminatedMath,
		doc2substack.ErrInvalidDPI,
		doc2substack.ErrInvalidRenderer,
		doc2substack.ErrInvalidQuoteStyle,
		doc2substack.ErrInvalidSymbol,
		doc2substack.ErrStyleNotFound,
		doc2substack.ErrTemplateNotFound,
		doc2substack.ErrInvalidAssetPath,
		ErrInvalidWorkerCount,
		ErrUnsupportedShell,
	}},
	{ExitIO, []error{
		os.ErrNotExist,
		os.ErrPermission,
		doc2substack.ErrReadInput,
		ErrWriteHTML,
		ErrNoInput,
	}},
}

// exitCodeFor maps err to a process exit code through errors.Is, so every
// layer must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	for _, class := range exitClasses {
		for _, target := range class.targets {
			if errors.Is(err, target) {
				return class.code
			}
		}
	}
	return ExitGeneral
}
