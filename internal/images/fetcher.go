package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sitewizard/sitewizard/internal/models"
	"github.com/sitewizard/sitewizard/internal/storage"
)

// MaxImageSize bounds downloaded and uploaded images
const MaxImageSize = 10 * 1024 * 1024

var ErrImageTooLarge = errors.New("image too large (max 10MB)")

// Fetcher turns gateway image references (remote URLs or data: URIs) into
// bytes held by the image store.
type Fetcher struct {
	HTTPClient *http.Client
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Image is a decoded image payload
type Image struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Fetch resolves a data: URI or downloads an http(s) URL
func (f *Fetcher) Fetch(ctx context.Context, ref string) (*Image, error) {
	var img *Image
	var err error
	if strings.HasPrefix(ref, "data:") {
		img, err = decodeDataURI(ref)
	} else {
		img, err = f.download(ctx, ref)
	}
	if err != nil {
		return nil, err
	}

	width, height, err := dimensions(img.Data)
	if err != nil {
		slog.Debug("Failed to get image dimensions", "content_type", img.ContentType, "error", err)
	} else {
		img.Width, img.Height = width, height
	}
	return img, nil
}

// Save fetches ref and stores its bytes, returning a reference to the blob.
// When the download fails the remote URL is kept as the reference so the
// generated image is not lost; data: URIs must decode.
func (f *Fetcher) Save(ctx context.Context, store storage.ImageStore, ref string) (models.ImageRef, error) {
	img, err := f.Fetch(ctx, ref)
	if err != nil {
		if strings.HasPrefix(ref, "data:") {
			return models.ImageRef{}, err
		}
		slog.Warn("Failed to download image, keeping remote URL", "url", ref, "error", err)
		return models.ImageRef{URL: ref}, nil
	}
	return Put(ctx, store, img.Data, img.ContentType)
}

// Put stores raw bytes and returns a blob reference
func Put(ctx context.Context, store storage.ImageStore, data []byte, contentType string) (models.ImageRef, error) {
	if len(data) > MaxImageSize {
		return models.ImageRef{}, ErrImageTooLarge
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	id, err := store.PutImage(ctx, data, contentType)
	if err != nil {
		return models.ImageRef{}, fmt.Errorf("failed to save image: %w", err)
	}
	return models.ImageRef{BlobID: id, ContentType: contentType}, nil
}

// Load returns the bytes behind an image reference
func (f *Fetcher) Load(ctx context.Context, store storage.ImageStore, ref models.ImageRef) (*Image, error) {
	if ref.BlobID != "" {
		data, contentType, err := store.GetImage(ctx, ref.BlobID)
		if err != nil {
			return nil, err
		}
		img := &Image{Data: data, ContentType: contentType}
		if width, height, err := dimensions(data); err == nil {
			img.Width, img.Height = width, height
		}
		return img, nil
	}
	if ref.URL == "" {
		return nil, storage.ErrImageNotFound
	}
	return f.Fetch(ctx, ref.URL)
}

func (f *Fetcher) download(ctx context.Context, imageURL string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}

	return &Image{Data: data, ContentType: contentType}, nil
}

// decodeDataURI handles both base64 and percent-encoded payloads, e.g.
// "data:image/png;base64,..." and "data:image/svg+xml,%3Csvg...".
func decodeDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URI")
	}

	isBase64 := strings.HasSuffix(header, ";base64")
	contentType := strings.TrimSuffix(header, ";base64")
	if contentType == "" {
		contentType = "text/plain"
	}

	var data []byte
	var err error
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 image: %w", err)
		}
	} else {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data: %w", err)
		}
		data = []byte(decoded)
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	return &Image{Data: data, ContentType: contentType}, nil
}

func dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
