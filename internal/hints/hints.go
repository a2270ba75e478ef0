// Package hints turns common failures into one actionable line. Every hint
// starts with "\n  hint: " so callers append it straight to an error message.
package hints

import (
	"fmt"
	"path/filepath"
	"strings"
)

const prefix = "\n  hint: "

// join renders suggestions as a single hint, or "" when there are none.
func join(suggestions ...string) string {
	var kept []string
	for _, s := range suggestions {
		if s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return prefix + strings.Join(kept, "; ")
}

// Browser describes what is known about the environment Chrome runs in.
type Browser struct {
	Sandboxed  bool   // ROD_NO_SANDBOX is not 1
	Isolated   bool   // container or CI, where the Chrome sandbox usually fails
	BrowserBin string // ROD_BROWSER_BIN
}

// ForBrowserConnect suggests the environment variables that make Chrome
// launch in the current environment.
func ForBrowserConnect(b Browser) string {
	var sandbox, bin string
	if b.Isolated && b.Sandboxed {
		sandbox = "set ROD_NO_SANDBOX=1 for Docker/CI"
	}
	if b.BrowserBin == "" {
		bin = "set ROD_BROWSER_BIN to use a custom Chrome"
	}
	return join(sandbox, bin)
}

func ForTimeout() string {
	return join("for slow image services, raise --image-timeout")
}

// ForConfigNotFound names --config and, when present among searched, the
// per-user location a config could be created at.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searched {
		if strings.Contains(filepath.ToSlash(p), "/doc2substack/") {
			hint += " or create " + p
			break
		}
	}
	return join(hint)
}

func ForOutputDirectory() string {
	return join("check the parent directory exists and is writable")
}

func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return join("available: " + strings.Join(available, ", "))
}

func ForPandocMissing() string {
	return join("install pandoc (https://pandoc.org/installing.html) or set pandoc.path in config")
}

// ForUnterminatedMath points at the opening delimiter when its position is
// known.
func ForUnterminatedMath(line, column int) string {
	const escape = `escape literal dollars such as prices as \$ (costs \$5 and \$10)`
	if line <= 0 {
		return join("close the math delimiter or " + escape)
	}
	return join(fmt.Sprintf("close the math delimiter opened at line %d, column %d, or %s", line, column, escape))
}

// ForImageFallback explains math shown as raw LaTeX for the given renderer.
func ForImageFallback(renderer string) string {
	if renderer == "browser" {
		return join("check Chrome is installed (doc2substack doctor)", "or use --renderer webtex")
	}
	return join("check network access to the image service or use --renderer browser")
}
