// Package fileutil holds the small path and file helpers shared by the
// converter, the config loader and the CLI.
package fileutil

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// WriteFileAtomic writes data next to path under a temporary name, syncs it
// and renames it over path. A reader sees either the old file or the new one.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".doc2substack-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// SwapExt replaces the extension of path's last element with ext, which
// includes its dot. A path without extension gets ext appended.
func SwapExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// FileExists reports whether path names something other than a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsFilePath reports whether s contains a path separator, which tells a
// style or config path apart from a bare name such as "minimal".
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, `/\`)
}

// IsCSS reports whether s holds inline CSS rather than a name or path.
func IsCSS(s string) bool {
	return strings.ContainsAny(s, "{}")
}

// IsURL reports whether s is an absolute http or https URL with a host.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
