// Package assets supplies the page CSS and the HTML document template that
// wrap a converted article.
//
// Built-in assets are compiled in with go:embed. A user directory laid out as
//
//	styles/<name>.css
//	templates/<name>.html
//
// can override any of them: AssetResolver looks there first and falls back to
// the built-in copy only when a name is missing. Names are restricted to
// [A-Za-z0-9_-] and symlinks leading out of the directory are refused.
package assets
