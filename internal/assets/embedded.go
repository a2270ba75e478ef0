package assets

import (
	"embed"
	"io/fs"
	"slices"
	"strings"
)

//go:embed styles/*.css templates/*.html
var embedded embed.FS

// EmbeddedLoader serves the styles and templates compiled into the binary.
type EmbeddedLoader struct {
	fsys fs.FS
}

func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsys: embedded}
}

func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return readFS(e.fsys, styleKind, name)
}

func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return readFS(e.fsys, templateKind, name)
}

// StyleNames lists the built-in style names in lexical order.
func (e *EmbeddedLoader) StyleNames() []string {
	matches, err := fs.Glob(e.fsys, styleKind.path("*"))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(m, styleKind.dir+"/"), styleKind.ext))
	}
	slices.Sort(names)
	return names
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
