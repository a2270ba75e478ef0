package assets

import "fmt"

// maxAssetNameLength bounds style and template names.
const maxAssetNameLength = 64

// ValidateAssetName accepts names made of ASCII letters, digits, '-' and '_'.
// Separators, dots and spaces are rejected so a name from a config file can
// only ever address <dir>/<name>.css or <dir>/<name>.html.
func ValidateAssetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	case len(name) > maxAssetNameLength:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInvalidAssetName, len(name), maxAssetNameLength)
	}
	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
		}
	}
	return nil
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_'
}
