package mathimg

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"io"
	"mime"
	"net/http"
	"strings"
)

// DefaultMaxImageBytes caps a single downloaded image.
const DefaultMaxImageBytes = 5 << 20

// Fetcher downloads images produced by a URL renderer and embeds them as
// data: URIs, so the output HTML has no external image dependencies.
type Fetcher struct {
	Source   Renderer
	Client   *http.Client
	MaxBytes int64
}

// NewFetcher wraps source. A nil client uses http.DefaultClient; timeouts
// come from the context passed to Render.
func NewFetcher(source Renderer, client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{Source: source, Client: client, MaxBytes: DefaultMaxImageBytes}
}

// Render asks Source for a URL, downloads it and returns a data: URI.
func (f *Fetcher) Render(ctx context.Context, latex string, dpi int) (Ref, error) {
	ref, err := f.Source.Render(ctx, latex, dpi)
	if err != nil {
		return Ref{}, err
	}
	if strings.HasPrefix(ref.Locator, "data:") {
		return ref, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.Locator, nil)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Ref{}, fmt.Errorf("%w: status %s", ErrFetch, resp.Status)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return Ref{}, fmt.Errorf("%w: content type %q", ErrNotImage, resp.Header.Get("Content-Type"))
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxImageBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return Ref{}, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	if int64(len(data)) > limit {
		return Ref{}, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, limit)
	}

	ref.Locator = DataURI(mediaType, data)
	if mediaType == "image/png" {
		if cfg, err := png.DecodeConfig(bytes.NewReader(data)); err == nil {
			ref.Width = cssSize(cfg.Width, dpi)
			ref.Height = cssSize(cfg.Height, dpi)
		}
	}
	return ref, nil
}

// DataURI encodes data as a base64 data: URI of the given media type.
func DataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
