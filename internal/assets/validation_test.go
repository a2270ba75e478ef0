package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	valid := []string{
		"default",
		"my-style",
		"my_style",
		"style123",
		"MyStyle",
		strings.Repeat("a", maxAssetNameLength),
	}
	invalid := []string{
		"",
		"path/to/style",
		`path\to\style`,
		"../secret",
		`..\secret`,
		"../../etc/passwd",
		"/etc/passwd",
		`C:\Windows\System32`,
		"C:style",
		"style.css",
		"style.css.bak",
		".hidden",
		".",
		"..",
		"my style",
		"élégant",
		"tab\tname",
		strings.Repeat("a", maxAssetNameLength+1),
	}

	for _, name := range valid {
		t.Run("valid/"+name[:min(len(name), 16)], func(t *testing.T) {
			t.Parallel()

			if err := ValidateAssetName(name); err != nil {
				t.Errorf("ValidateAssetName(%q) error = %v", name, err)
			}
		})
	}
	for _, name := range invalid {
		t.Run("invalid/"+name[:min(len(name), 16)], func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(name)
			if !errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("ValidateAssetName(%q) error = %v, want ErrInvalidAssetName", name, err)
			}
		})
	}
}

func TestValidateAssetName_Message(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"", "empty name"},
		{"../evil", `"../evil"`},
		{strings.Repeat("x", 70), "max 64"},
	}

	for _, tt := range tests {
		err := ValidateAssetName(tt.name)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("ValidateAssetName(%.10q) error = %v, want it to mention %q", tt.name, err, tt.want)
		}
	}
}
