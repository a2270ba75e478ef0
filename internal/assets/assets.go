package assets

import (
	"fmt"
	"io/fs"
)

const (
	// DefaultStyleName is the built-in style used when none is configured.
	DefaultStyleName = "default"

	// DocumentTemplateName is the page template wrapping the converted body.
	DocumentTemplateName = "document"
)

// kind describes one family of assets: where it lives below a base
// directory, the extension of its files, and the error reported when a name
// does not exist.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind = kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
)

// path returns the slash-separated location of name, relative to a base.
func (k kind) path(name string) string {
	return k.dir + "/" + name + k.ext
}

// readFS loads name of kind k from fsys after validating the name.
func readFS(fsys fs.FS, k kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(fsys, k.path(name))
	if err != nil {
		return "", fmt.Errorf("%w: %q", k.notFound, name)
	}
	return string(data), nil
}

var builtin = NewEmbeddedLoader()

// LoadStyle returns a built-in style.
func LoadStyle(name string) (string, error) { return builtin.LoadStyle(name) }

// LoadTemplate returns a built-in template.
func LoadTemplate(name string) (string, error) { return builtin.LoadTemplate(name) }
