package assets

// AssetLoader supplies the page CSS and the HTML document template.
// The embedded loader, the directory loader and the resolver layering one
// over the other all implement it. Names are validated with ValidateAssetName.
type AssetLoader interface {
	// LoadStyle returns the CSS for a style name such as "default".
	// Fails with ErrStyleNotFound or ErrInvalidAssetName.
	LoadStyle(name string) (string, error)

	// LoadTemplate returns the html/template source for a name such as
	// DocumentTemplateName. Fails with ErrTemplateNotFound or ErrInvalidAssetName.
	LoadTemplate(name string) (string, error)
}
