package wizard

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strings"

	"github.com/sitewizard/sitewizard/internal/export"
	"github.com/sitewizard/sitewizard/internal/gateway"
	"github.com/sitewizard/sitewizard/internal/images"
	"github.com/sitewizard/sitewizard/internal/models"
)

// ArticleDetailController edits, regenerates, validates, translates,
// illustrates and exports a single article.
type ArticleDetailController struct {
	w     *Wizard
	index int
}

// DetailView is the article as shown on the detail step
type DetailView struct {
	Index     int            `json:"index"`
	Article   models.Article `json:"article"`
	Editing   bool           `json:"editing"`
	Buffer    string         `json:"buffer,omitempty"`
	Language  string         `json:"language"`
	Topic     string         `json:"topic"`
	ImagePath string         `json:"image_path,omitempty"`
}

func (c *ArticleDetailController) load(ctx context.Context) (*models.Session, models.Article, error) {
	s, err := c.w.enter(ctx, StepArticleDetail, c.index)
	if err != nil {
		return nil, models.Article{}, err
	}
	a, _ := s.Article(c.index)
	return s, a, nil
}

// View returns the article together with its edit state
func (c *ArticleDetailController) View(ctx context.Context) (*DetailView, error) {
	s, a, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	buf, editing := c.w.editBuffer(s.ID, c.index)
	view := &DetailView{
		Index:    c.index,
		Article:  a,
		Editing:  editing,
		Buffer:   buf,
		Language: c.language(a),
		Topic:    s.Topic,
	}
	if a.Image != nil && a.Image.BlobID != "" {
		view.ImagePath = "/api/images/" + a.Image.BlobID
	}
	return view, nil
}

// BeginEdit enters edit mode with the stored content in the buffer
func (c *ArticleDetailController) BeginEdit(ctx context.Context) (string, error) {
	s, a, err := c.load(ctx)
	if err != nil {
		return "", err
	}
	c.w.setEditBuffer(s.ID, c.index, a.Content)
	return a.Content, nil
}

// SetBuffer replaces the edit buffer
func (c *ArticleDetailController) SetBuffer(ctx context.Context, text string) error {
	s, _, err := c.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := c.w.editBuffer(s.ID, c.index); !ok {
		return ErrNotEditing
	}
	c.w.setEditBuffer(s.ID, c.index, text)
	return nil
}

// Save stores the edit buffer as the article content and leaves edit mode
func (c *ArticleDetailController) Save(ctx context.Context) (*models.Session, error) {
	s, a, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	buf, ok := c.w.editBuffer(s.ID, c.index)
	if !ok {
		return nil, ErrNotEditing
	}
	a.Content = buf
	updated, err := c.w.saveArticle(ctx, s, c.index, a)
	if err != nil {
		return nil, err
	}
	c.w.clearEditBuffer(s.ID, c.index)
	return updated, nil
}

// Cancel discards the edit buffer
func (c *ArticleDetailController) Cancel(ctx context.Context) error {
	s, _, err := c.load(ctx)
	if err != nil {
		return err
	}
	c.w.clearEditBuffer(s.ID, c.index)
	return nil
}

// Regenerate replaces the article body with a fresh generation. Validated
// articles are refused without calling the gateway.
func (c *ArticleDetailController) Regenerate(ctx context.Context) (*models.Session, error) {
	s, a, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if a.IsValidated {
		return nil, ErrArticleValidated
	}

	length := s.ArticleLength
	if length <= 0 {
		length = c.w.opts.ArticleLength
	}
	detail := s.DetailLevel
	if detail <= 0 {
		detail = c.w.opts.DetailLevel
	}

	slog.Info("Regenerating article", "session_id", s.ID, "index", c.index)
	result, err := c.w.gateway.GenerateArticle(ctx, gateway.ArticleRequest{
		Title:             a.Title,
		Subject:           topic(s),
		Tone:              s.Tone,
		AdditionalContext: s.AdditionalContext,
		AvoidContext:      s.AvoidContext,
		LengthHint:        length,
		DetailLevel:       detail,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to regenerate article: %w", err)
	}

	a.Content = result.Content
	if len(result.Sources) > 0 {
		a.Sources = result.Sources
	}
	a.IsValidated = false
	a.CurrentLanguage = c.w.opts.DefaultLanguage
	updated, err := c.w.saveArticle(ctx, s, c.index, a)
	if err != nil {
		return nil, err
	}
	if _, editing := c.w.editBuffer(s.ID, c.index); editing {
		c.w.setEditBuffer(s.ID, c.index, a.Content)
	}
	return updated, nil
}

// Validate marks the article as final and leaves edit mode
func (c *ArticleDetailController) Validate(ctx context.Context) (*models.Session, error) {
	return c.setValidated(ctx, true)
}

func (c *ArticleDetailController) Unvalidate(ctx context.Context) (*models.Session, error) {
	return c.setValidated(ctx, false)
}

func (c *ArticleDetailController) setValidated(ctx context.Context, validated bool) (*models.Session, error) {
	s, a, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	a.IsValidated = validated
	updated, err := c.w.saveArticle(ctx, s, c.index, a)
	if err != nil {
		return nil, err
	}
	if validated {
		c.w.clearEditBuffer(s.ID, c.index)
	}
	slog.Info("Article validation changed", "session_id", s.ID, "index", c.index, "validated", validated)
	return updated, nil
}

// Translate replaces the content with its translation into lang. Asking for
// the language the content is already in is a no-op.
func (c *ArticleDetailController) Translate(ctx context.Context, lang string) (*models.Session, error) {
	target, err := CanonicalLanguage(lang)
	if err != nil {
		return nil, err
	}
	s, a, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if target == c.language(a) {
		return s, nil
	}

	slog.Info("Translating article", "session_id", s.ID, "index", c.index, "from", c.language(a), "to", target)
	result, err := c.w.gateway.Translate(ctx, gateway.TranslateRequest{
		Content:        a.Content,
		TargetLanguage: target,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to translate article: %w", err)
	}

	a.Content = result.TranslatedContent
	translations := maps.Clone(a.Translations)
	if translations == nil {
		translations = make(map[string]string, 1)
	}
	translations[target] = result.TranslatedContent
	a.Translations = translations
	a.CurrentLanguage = target

	updated, err := c.w.saveArticle(ctx, s, c.index, a)
	if err != nil {
		return nil, err
	}
	if _, editing := c.w.editBuffer(s.ID, c.index); editing {
		c.w.setEditBuffer(s.ID, c.index, a.Content)
	}
	return updated, nil
}

// GenerateImage requests an illustration and stores it with the article.
// An empty prompt uses a default built from the title and topic.
func (c *ArticleDetailController) GenerateImage(ctx context.Context, prompt string) (*models.Session, error) {
	s, a, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = defaultImagePrompt(a.Title, topic(s))
	}

	index := c.index
	result, err := c.w.gateway.GenerateImage(ctx, gateway.ImageRequest{
		Prompt:       prompt,
		Title:        a.Title,
		SessionID:    s.ID,
		ArticleIndex: &index,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}
	ref, err := c.w.fetcher.Save(ctx, c.w.images, result.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	a.Image = &ref
	return c.w.saveArticle(ctx, s, c.index, a)
}

// SetImage stores uploaded image bytes as the article image
func (c *ArticleDetailController) SetImage(ctx context.Context, data []byte, contentType string) (*models.Session, error) {
	s, a, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, contentType)
	}
	ref, err := images.Put(ctx, c.w.images, data, contentType)
	if err != nil {
		return nil, err
	}
	a.Image = &ref
	return c.w.saveArticle(ctx, s, c.index, a)
}

// ExportJSON writes the article document and returns its file name
func (c *ArticleDetailController) ExportJSON(ctx context.Context, out io.Writer) (string, error) {
	s, a, err := c.load(ctx)
	if err != nil {
		return "", err
	}
	doc := export.NewDocument(s, a, c.imageSource(ctx, a))
	if err := export.WriteJSON(out, doc); err != nil {
		return "", err
	}
	return export.Filename(a.Title, "json"), nil
}

// ExportPDF writes the article as a PDF and returns its file name. The
// only network access is resolving a remotely hosted image.
func (c *ArticleDetailController) ExportPDF(ctx context.Context, out io.Writer) (string, error) {
	_, a, err := c.load(ctx)
	if err != nil {
		return "", err
	}
	var img *images.Image
	if a.Image != nil && !a.Image.IsZero() {
		img, err = c.w.fetcher.Load(ctx, c.w.images, *a.Image)
		if err != nil {
			slog.Warn("Exporting PDF without image", "index", c.index, "error", err)
			img = nil
		}
	}
	if err := export.WritePDF(out, a.Title, a.Content, img); err != nil {
		return "", err
	}
	return export.Filename(a.Title, "pdf"), nil
}

// ExportHTML writes the article as a standalone HTML page
func (c *ArticleDetailController) ExportHTML(ctx context.Context, out io.Writer) (string, error) {
	_, a, err := c.load(ctx)
	if err != nil {
		return "", err
	}
	err = export.WriteHTML(out, export.Page{
		Title:   a.Title,
		Lang:    c.language(a),
		Image:   c.imageSource(ctx, a),
		Content: a.Content,
		Sources: a.Sources,
	})
	if err != nil {
		return "", err
	}
	return export.Filename(a.Title, "html"), nil
}

// imageSource returns a self-contained source for the article image: the
// remote URL, or a data URI for stored blobs.
func (c *ArticleDetailController) imageSource(ctx context.Context, a models.Article) string {
	if a.Image == nil || a.Image.IsZero() {
		return ""
	}
	if a.Image.BlobID == "" {
		return a.Image.URL
	}
	data, contentType, err := c.w.images.GetImage(ctx, a.Image.BlobID)
	if err != nil {
		slog.Warn("Image missing from store", "blob_id", a.Image.BlobID, "error", err)
		return a.Image.URL
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (c *ArticleDetailController) language(a models.Article) string {
	if a.CurrentLanguage != "" {
		return a.CurrentLanguage
	}
	return c.w.opts.DefaultLanguage
}
