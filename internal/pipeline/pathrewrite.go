package pipeline

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-doc2substack/internal/mathimg"
)

// MaxInlineImageSize caps a local image embedded as a data URI.
const MaxInlineImageSize = 10 << 20

var ErrImageSkipped = errors.New("local image not inlined")

// SkippedImageError is one image left as a file reference.
type SkippedImageError struct {
	Src    string
	Reason string
}

func (e *SkippedImageError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrImageSkipped, e.Src, e.Reason)
}

func (e *SkippedImageError) Unwrap() error { return ErrImageSkipped }

// InlineLocalImages embeds the images a document references by relative
// path, since a pasted post cannot point at files on the author's disk.
// URLs, data URIs and absolute paths are left alone. Images that are
// missing, outside sourceDir, too large or not images stay as they were and
// are reported as *SkippedImageError. An empty sourceDir disables the pass.
func InlineLocalImages(htmlContent, sourceDir string) (string, []error, error) {
	if sourceDir == "" {
		return htmlContent, nil, nil
	}
	root, err := os.OpenRoot(sourceDir)
	if err != nil {
		return "", nil, err
	}
	defer root.Close()

	t, err := parseTree(htmlContent)
	if err != nil {
		return "", nil, err
	}

	var skipped []error
	t.elements(atom.Img, func(img *html.Node) {
		for i, a := range img.Attr {
			if a.Key != "src" || !isRelativePath(a.Val) {
				continue
			}
			uri, err := imageDataURI(root, a.Val)
			if err != nil {
				skipped = append(skipped, &SkippedImageError{Src: a.Val, Reason: err.Error()})
				continue
			}
			img.Attr[i].Val = uri
		}
	})

	out, err := t.render()
	if err != nil {
		return "", nil, err
	}
	return out, skipped, nil
}

// imageDataURI reads src below root. os.Root refuses any path or symlink
// leading out of the directory.
func imageDataURI(root *os.Root, src string) (string, error) {
	// goldmark percent-encodes link destinations.
	rel, err := url.PathUnescape(src)
	if err != nil {
		rel = src
	}
	rel = path.Clean(rel)
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", errors.New("resolves outside the source directory")
	}

	mediaType, _, _ := strings.Cut(mime.TypeByExtension(strings.ToLower(path.Ext(rel))), ";")
	if !strings.HasPrefix(mediaType, "image/") {
		return "", errors.New("not an image")
	}

	f, err := root.Open(filepath.FromSlash(rel))
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.Size() > MaxInlineImageSize {
		return "", fmt.Errorf("%d bytes exceeds %d", info.Size(), MaxInlineImageSize)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return mathimg.DataURI(mediaType, data), nil
}

// isRelativePath reports whether src names a file relative to the document:
// no scheme, no host, not absolute and not a bare fragment.
func isRelativePath(src string) bool {
	if src == "" || strings.HasPrefix(src, "#") || strings.HasPrefix(src, "//") {
		return false
	}
	if u, err := url.Parse(src); err == nil && u.Scheme != "" {
		return false
	}
	return !filepath.IsAbs(src) && !strings.HasPrefix(src, "/")
}
