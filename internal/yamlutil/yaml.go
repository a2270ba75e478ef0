// Package yamlutil is the single place config YAML is encoded and decoded.
// Decoding is strict: an unknown key is an error reported with its line and
// column, so a typo in a config file never passes silently.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize bounds decoded documents. Config files are a few hundred bytes.
const MaxInputSize = 1 << 20

var (
	ErrEmptyInput    = errors.New("yamlutil: empty input")
	ErrNilTarget     = errors.New("yamlutil: nil target")
	ErrInputTooLarge = errors.New("yamlutil: input exceeds maximum size")
)

// Marshal encodes v as block-style YAML.
func Marshal(v any) ([]byte, error) {
	out, err := yaml.MarshalWithOptions(v, yaml.Indent(2))
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}

// UnmarshalStrict decodes data into v and rejects keys v has no field for.
func UnmarshalStrict(data []byte, v any) error {
	return decode(data, v, MaxInputSize)
}

func decode(data []byte, v any, limit int) error {
	switch {
	case len(data) == 0:
		return ErrEmptyInput
	case len(data) > limit:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), limit)
	case v == nil:
		return ErrNilTarget
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return &Error{Detail: yaml.FormatError(err, false, true), err: err}
	}
	return nil
}

// Error is a decoding failure. Detail quotes the offending line with its
// position, as the YAML library formats it.
type Error struct {
	Detail string
	err    error
}

func (e *Error) Error() string { return "yamlutil: " + e.Detail }

func (e *Error) Unwrap() error { return e.err }
