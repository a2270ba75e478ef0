package assets

import "errors"

// Sentinel errors for style and template loading. The root package maps the
// not-found errors onto its own exported sentinels.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidBasePath  = errors.New("invalid base path") // not a readable directory
	ErrAssetRead        = errors.New("failed to read asset")
	ErrPathTraversal    = errors.New("path traversal detected") // symlink or name escaping the base path
)
