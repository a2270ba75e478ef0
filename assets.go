package doc2substack

import (
	"errors"

	"github.com/alnah/go-doc2substack/internal/assets"
)

const (
	// DefaultStyle is the built-in style applied when none is configured.
	DefaultStyle = assets.DefaultStyleName

	// DocumentTemplate is the template wrapping the converted body. It
	// receives {{.Title}} and {{.Body}}.
	DocumentTemplate = assets.DocumentTemplateName
)

// AssetLoader supplies page styles and the document template by name.
// Names carry no extension. Implement it to serve assets from somewhere other
// than a local directory.
type AssetLoader interface {
	// LoadStyle fails with ErrStyleNotFound for an unknown name.
	LoadStyle(name string) (string, error)

	// LoadTemplate fails with ErrTemplateNotFound for an unknown name.
	LoadTemplate(name string) (string, error)
}

// BuiltinStyles lists the styles compiled into the binary.
func BuiltinStyles() []string {
	return assets.NewEmbeddedLoader().StyleNames()
}

// NewAssetLoader returns a loader reading basePath/styles/<name>.css and
// basePath/templates/<name>.html, falling back to the built-in assets for
// names basePath lacks. An empty basePath serves the built-in assets only.
// Fails with ErrInvalidAssetPath when basePath is not a readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	r, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, publicAssetError(err)
	}
	return publicLoader{r}, nil
}

// publicLoader reports public sentinels instead of internal ones.
type publicLoader struct {
	inner assets.AssetLoader
}

func (l publicLoader) LoadStyle(name string) (string, error) {
	css, err := l.inner.LoadStyle(name)
	return css, publicAssetError(err)
}

func (l publicLoader) LoadTemplate(name string) (string, error) {
	tmpl, err := l.inner.LoadTemplate(name)
	return tmpl, publicAssetError(err)
}

// assetErrorMap pairs internal sentinels with the exported ones. An invalid
// name can never exist, so it reads as a missing style.
var assetErrorMap = []struct{ internal, public error }{
	{assets.ErrStyleNotFound, ErrStyleNotFound},
	{assets.ErrTemplateNotFound, ErrTemplateNotFound},
	{assets.ErrInvalidBasePath, ErrInvalidAssetPath},
	{assets.ErrPathTraversal, ErrInvalidAssetPath},
	{assets.ErrInvalidAssetName, ErrStyleNotFound},
}

// publicAssetError keeps err's message but makes errors.Is match the
// exported sentinel. Unknown errors pass through.
func publicAssetError(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range assetErrorMap {
		if errors.Is(err, m.internal) {
			return &assetError{public: m.public, msg: err.Error()}
		}
	}
	return err
}

type assetError struct {
	public error
	msg    string
}

func (e *assetError) Error() string { return e.msg }
func (e *assetError) Unwrap() error { return e.public }
