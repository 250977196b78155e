package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"
)

const (
	pathTheme            = "/api/generate-website-theme"
	pathLogos            = "/api/generate-logos"
	pathTitles           = "/api/titles"
	pathArticle          = "/api/article"
	pathImage            = "/api/generate-image"
	pathContentImage     = "/api/generate-content-image"
	pathTranslate        = "/api/translate"
	pathExportWordPress  = "/api/export-wordpress"
	pathPublishWordPress = "/api/publish-wordpress"
)

// maxErrorBody caps how much of a failed response is kept in StatusError
const maxErrorBody = 4096

// Client calls the generation gateway. Every operation is a single POST;
// nothing is retried.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client. A zero timeout leaves requests
// unbounded, matching the gateway's long-running generation calls.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateThemeVariations requests site concept variations for a theme
func (c *Client) GenerateThemeVariations(ctx context.Context, req ThemeRequest) (*ThemeResult, error) {
	var result ThemeResult
	if err := c.postJSON(ctx, pathTheme, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateLogos requests one logo per variation in the request
func (c *Client) GenerateLogos(ctx context.Context, req LogoRequest) (*LogoResult, error) {
	var result LogoResult
	if err := c.postJSON(ctx, pathLogos, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateTitles requests article titles for a subject
func (c *Client) GenerateTitles(ctx context.Context, req TitlesRequest) (*TitlesResult, error) {
	var result TitlesResult
	if err := c.postJSON(ctx, pathTitles, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateArticle generates (or regenerates) one article body
func (c *Client) GenerateArticle(ctx context.Context, req ArticleRequest) (*ArticleResult, error) {
	var result ArticleResult
	if err := c.postJSON(ctx, pathArticle, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateImage requests an illustration for an article
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	return c.generateImage(ctx, pathImage, req)
}

// GenerateContentImage requests an image for site-level content
func (c *Client) GenerateContentImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	return c.generateImage(ctx, pathContentImage, req)
}

func (c *Client) generateImage(ctx context.Context, path string, req ImageRequest) (*ImageResult, error) {
	var response struct {
		ImageURL string `json:"image_url"`
		Error    string `json:"error"`
	}
	if err := c.postJSON(ctx, path, req, &response); err != nil {
		return nil, err
	}
	if response.Error != "" {
		return nil, &RemoteError{Message: response.Error}
	}
	if response.ImageURL == "" {
		return nil, &RemoteError{Message: "no image URL returned"}
	}
	return &ImageResult{ImageURL: response.ImageURL}, nil
}

// Translate translates markdown content into the target language
func (c *Client) Translate(ctx context.Context, req TranslateRequest) (*TranslationResult, error) {
	var result TranslationResult
	if err := c.postJSON(ctx, pathTranslate, req, &result); err != nil {
		return nil, err
	}
	if result.TranslatedContent == "" {
		return nil, &RemoteError{Message: "no translated content returned"}
	}
	return &result, nil
}

// ExportWordPress requests a WordPress template for a variation. The file
// is streamed back untouched; the caller must close the body.
func (c *Client) ExportWordPress(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	resp, err := c.do(ctx, pathExportWordPress, req)
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, _ := mime.ParseMediaType(contentType); mediaType == "application/json" {
		defer resp.Body.Close()
		var response struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
			return nil, &CallError{Path: pathExportWordPress, Err: fmt.Errorf("failed to decode response body: %w", err)}
		}
		if response.Error != "" {
			return nil, &RemoteError{Message: response.Error}
		}
		return nil, &RemoteError{Message: "export returned no file"}
	}

	filename := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}

	return &ExportResult{
		Body:        resp.Body,
		ContentType: contentType,
		Filename:    filename,
	}, nil
}

// PublishWordPress asks the gateway to publish a variation
func (c *Client) PublishWordPress(ctx context.Context, req ExportRequest) (*PublishResult, error) {
	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := c.postJSON(ctx, pathPublishWordPress, req, &response); err != nil {
		return nil, err
	}
	if response.Error != "" {
		return nil, &RemoteError{Message: response.Error}
	}
	return &PublishResult{Success: response.Success, Message: response.Message}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.do(ctx, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &CallError{Path: path, Err: fmt.Errorf("failed to decode response body: %w", err)}
	}
	return nil
}

// do sends the request and returns the response only for 2xx statuses
func (c *Client) do(ctx context.Context, path string, body any) (*http.Response, error) {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &CallError{Path: path, Err: err}
	}
	slog.Debug("Gateway call", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: errorDetail(data)}
	}
	return resp, nil
}

// errorDetail extracts {"detail": ...} or {"error": ...} from an error body
// and falls back to the raw text.
func errorDetail(data []byte) string {
	var body struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if s, ok := body.Detail.(string); ok && s != "" {
			return s
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}

// AsStatus returns the HTTP status carried by err, if any
func AsStatus(err error) (int, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}
	return 0, false
}
