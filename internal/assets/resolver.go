package assets

import "errors"

// AssetResolver tries a user directory first and falls back to the built-in
// assets when a name is missing there. Any other failure, such as an invalid
// name or an escaping symlink, is returned as is.
type AssetResolver struct {
	layers []AssetLoader
}

// NewAssetResolver layers dir over the embedded assets. An empty dir yields
// a resolver over the embedded assets alone.
func NewAssetResolver(dir string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if dir != "" {
		fsl, err := NewFilesystemLoader(dir)
		if err != nil {
			return nil, err
		}
		r.layers = append(r.layers, fsl)
	}
	r.layers = append(r.layers, NewEmbeddedLoader())
	return r, nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

func (r *AssetResolver) first(load func(AssetLoader) (string, error)) (string, error) {
	var err error
	for _, l := range r.layers {
		var content string
		content, err = load(l)
		if err == nil || !notFound(err) {
			return content, err
		}
	}
	return "", err
}

func notFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}

var _ AssetLoader = (*AssetResolver)(nil)
