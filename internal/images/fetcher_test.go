package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sitewizard/sitewizard/internal/models"
	"github.com/sitewizard/sitewizard/internal/storage"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFetchDataURI(t *testing.T) {
	data := testPNG(t)

	tests := []struct {
		name        string
		uri         string
		contentType string
		width       int
	}{
		{
			name:        "base64 png",
			uri:         "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
			contentType: "image/png",
			width:       4,
		},
		{
			name:        "percent encoded svg",
			uri:         "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg'%3E%3C/svg%3E",
			contentType: "image/svg+xml",
		},
	}

	f := NewFetcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := f.Fetch(context.Background(), tt.uri)
			if err != nil {
				t.Fatalf("Fetch failed: %v", err)
			}
			if img.ContentType != tt.contentType {
				t.Errorf("Expected content type %s, got %s", tt.contentType, img.ContentType)
			}
			if img.Width != tt.width {
				t.Errorf("Expected width %d, got %d", tt.width, img.Width)
			}
		})
	}
}

func TestFetchMalformedDataURI(t *testing.T) {
	if _, err := NewFetcher().Fetch(context.Background(), "data:image/png;base64"); err == nil {
		t.Errorf("Expected error for data URI without payload")
	}
}

func TestSaveDownloadsIntoStore(t *testing.T) {
	data := testPNG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	store := storage.NewMemoryStore()
	ref, err := NewFetcher().Save(context.Background(), store, server.URL+"/logo.png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ref.BlobID == "" || ref.URL != "" {
		t.Fatalf("Expected blob reference, got %+v", ref)
	}

	got, contentType, err := store.GetImage(context.Background(), ref.BlobID)
	if err != nil {
		t.Fatalf("GetImage failed: %v", err)
	}
	if !bytes.Equal(got, data) || contentType != "image/png" {
		t.Errorf("Stored image mismatch: %d bytes, %s", len(got), contentType)
	}
}

func TestSaveKeepsURLWhenDownloadFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	ref, err := NewFetcher().Save(context.Background(), storage.NewMemoryStore(), server.URL+"/gone.png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ref.URL != server.URL+"/gone.png" || ref.BlobID != "" {
		t.Errorf("Expected URL reference, got %+v", ref)
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	data := testPNG(t)

	ref, err := Put(ctx, store, data, "")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if ref.ContentType != "image/png" {
		t.Errorf("Expected sniffed content type image/png, got %s", ref.ContentType)
	}

	img, err := NewFetcher().Load(ctx, store, ref)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(img.Data, data) {
		t.Errorf("Loaded bytes differ")
	}

	if _, err := NewFetcher().Load(ctx, store, models.ImageRef{}); err == nil {
		t.Errorf("Expected error for empty reference")
	}
}

func TestPutRejectsLargeImages(t *testing.T) {
	_, err := Put(context.Background(), storage.NewMemoryStore(), make([]byte, MaxImageSize+1), "image/png")
	if err != ErrImageTooLarge {
		t.Errorf("Expected ErrImageTooLarge, got %v", err)
	}
}
