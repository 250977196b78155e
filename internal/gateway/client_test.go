package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", 0)
}

func TestGenerateThemeVariations(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != pathTheme {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req["theme"] != "artisan coffee" || req["variations"] != float64(2) {
			t.Errorf("Unexpected request body: %v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"variations":[{"id":"1","title":"Bean There","description":"d","style":"Rustic"},{"id":"2","title":"Brew","description":"d","style":"Modern"}]}`)
	})

	result, err := client.GenerateThemeVariations(context.Background(), ThemeRequest{Theme: "artisan coffee", VariationCount: 2})
	if err != nil {
		t.Fatalf("GenerateThemeVariations failed: %v", err)
	}
	if len(result.Variations) != 2 {
		t.Fatalf("Expected 2 variations, got %d", len(result.Variations))
	}
	if result.Variations[0].Style != "Rustic" {
		t.Errorf("Expected style Rustic, got %s", result.Variations[0].Style)
	}
}

func TestArticleRequestWireNames(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		for _, key := range []string{"titre", "sujet", "article_length", "detail_level"} {
			if _, ok := req[key]; !ok {
				t.Errorf("Expected key %s in request, got %v", key, req)
			}
		}
		io.WriteString(w, `{"content":"# Body","sources":["a","b"]}`)
	})

	result, err := client.GenerateArticle(context.Background(), ArticleRequest{
		Title: "t", Subject: "s", LengthHint: 1500, DetailLevel: 3,
	})
	if err != nil {
		t.Fatalf("GenerateArticle failed: %v", err)
	}
	if result.Content != "# Body" || len(result.Sources) != 2 {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestNon2xxIsStatusError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "fastapi detail", status: 500, body: `{"detail":"API key not configured"}`, expected: "API key not configured"},
		{name: "plain text", status: 502, body: "bad gateway", expected: "bad gateway"},
		{name: "not found", status: 404, body: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := client.GenerateTitles(context.Background(), TitlesRequest{Subject: "x"})
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("Expected StatusError, got %v", err)
			}
			if statusErr.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, statusErr.StatusCode)
			}
			if statusErr.Body != tt.expected {
				t.Errorf("Expected body %q, got %q", tt.expected, statusErr.Body)
			}
			if !IsGatewayError(err) {
				t.Errorf("Expected IsGatewayError to be true")
			}
			if code, ok := AsStatus(err); !ok || code != tt.status {
				t.Errorf("AsStatus returned %d, %v", code, ok)
			}
		})
	}
}

func TestImageBodyError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error":"quota exceeded"}`)
	})

	_, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "cat"})
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("Expected RemoteError, got %v", err)
	}
	if remoteErr.Message != "quota exceeded" {
		t.Errorf("Expected message surfaced as-is, got %q", remoteErr.Message)
	}
}

func TestMalformedResponse(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>oops</html>`)
	})

	_, err := client.Translate(context.Background(), TranslateRequest{Content: "x", TargetLanguage: "en"})
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("Expected CallError, got %v", err)
	}
	if callErr.Path != pathTranslate {
		t.Errorf("Expected path %s, got %s", pathTranslate, callErr.Path)
	}
}

func TestExportWordPressStreamsFile(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="theme-v1.zip"`)
		w.Write([]byte("PK\x03\x04data"))
	})

	result, err := client.ExportWordPress(context.Background(), ExportRequest{VariationID: "v1"})
	if err != nil {
		t.Fatalf("ExportWordPress failed: %v", err)
	}
	defer result.Body.Close()

	data, _ := io.ReadAll(result.Body)
	if string(data) != "PK\x03\x04data" {
		t.Errorf("Expected file bytes passed through, got %q", data)
	}
	if result.Filename != "theme-v1.zip" {
		t.Errorf("Expected filename theme-v1.zip, got %s", result.Filename)
	}
}

func TestExportWordPressJSONError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		io.WriteString(w, `{"success":false,"error":"template missing"}`)
	})

	_, err := client.ExportWordPress(context.Background(), ExportRequest{VariationID: "v1"})
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) || remoteErr.Message != "template missing" {
		t.Fatalf("Expected RemoteError template missing, got %v", err)
	}
}

func TestTransportFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 0)
	_, err := client.GenerateLogos(context.Background(), LogoRequest{})
	if err == nil {
		t.Fatalf("Expected transport error")
	}
	if !IsGatewayError(err) {
		t.Errorf("Expected transport failure to count as a gateway error, got %v", err)
	}
}
