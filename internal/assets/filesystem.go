package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader serves styles and templates from a directory laid out as
// styles/<name>.css and templates/<name>.html. A file whose symlinks lead
// outside that directory is refused with ErrPathTraversal.
type FilesystemLoader struct {
	root string
}

// NewFilesystemLoader fails with ErrInvalidBasePath unless dir is a readable
// directory.
func NewFilesystemLoader(dir string) (*FilesystemLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	_, err = os.ReadDir(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s does not exist", ErrInvalidBasePath, root)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	return &FilesystemLoader{root: root}, nil
}

func (l *FilesystemLoader) LoadStyle(name string) (string, error) {
	return l.load(styleKind, name)
}

func (l *FilesystemLoader) LoadTemplate(name string) (string, error) {
	return l.load(templateKind, name)
}

func (l *FilesystemLoader) load(k kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	path := filepath.Join(l.root, filepath.FromSlash(k.path(name)))
	resolved, err := filepath.EvalSymlinks(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %q", k.notFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	if !strings.HasPrefix(resolved, l.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s resolves outside %s", ErrPathTraversal, k.path(name), l.root)
	}

	data, err := os.ReadFile(resolved) // #nosec G304 -- contained in root above
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(data), nil
}

var _ AssetLoader = (*FilesystemLoader)(nil)
