package wizard

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sitewizard/sitewizard/internal/gateway"
	"github.com/sitewizard/sitewizard/internal/models"
	"github.com/sitewizard/sitewizard/internal/storage"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const pixelPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// fakeGateway answers like the generation gateway and records every call
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int

	articleRequests   []gateway.ArticleRequest
	translateRequests []gateway.TranslateRequest

	// failArticles lists titles whose generation fails
	failArticles map[string]bool
	// failLogos lists variation ids whose logo generation fails
	failLogos        map[string]bool
	failThemes       bool
	failContentImage bool
	published        bool
	noExportFilename bool
	// titleCount is the size of a full title list; 0 means three
	titleCount int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{calls: make(map[string]int), failArticles: make(map[string]bool), failLogos: make(map[string]bool), published: true}
}

func (g *fakeGateway) record(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[op]++
}

func (g *fakeGateway) count(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

func (g *fakeGateway) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}

func (g *fakeGateway) GenerateThemeVariations(ctx context.Context, req gateway.ThemeRequest) (*gateway.ThemeResult, error) {
	g.record("theme")
	if g.failThemes {
		return nil, &gateway.StatusError{StatusCode: 500, Body: "boom"}
	}
	styles := []string{"Rustic", "Modern", "Minimal", "Vintage", "Bold"}
	result := &gateway.ThemeResult{}
	for i := 0; i < req.VariationCount; i++ {
		result.Variations = append(result.Variations, models.Variation{
			ID:          fmt.Sprintf("%d", i+1),
			Title:       fmt.Sprintf("%s %d", cases.Title(language.English).String(req.Theme), i+1),
			Description: "A site about " + req.Theme,
			Style:       styles[i%len(styles)],
		})
	}
	return result, nil
}

func (g *fakeGateway) GenerateLogos(ctx context.Context, req gateway.LogoRequest) (*gateway.LogoResult, error) {
	g.record("logos")
	result := &gateway.LogoResult{}
	for _, v := range req.Variations {
		g.mu.Lock()
		fail := g.failLogos[v.ID]
		g.mu.Unlock()
		if fail {
			return nil, &gateway.StatusError{StatusCode: 503, Body: "image model unavailable"}
		}
		result.Logos = append(result.Logos, gateway.Logo{VariationID: v.ID, LogoURL: pixelPNG})
	}
	return result, nil
}

func (g *fakeGateway) GenerateTitles(ctx context.Context, req gateway.TitlesRequest) (*gateway.TitlesResult, error) {
	g.record("titles")
	if req.SingleTitle {
		return &gateway.TitlesResult{Titles: []string{"Fresh take on " + req.Subject}}, nil
	}
	titles := []string{
		"Choosing beans for " + req.Subject,
		"Roasting at home",
		"Brewing the perfect cup",
	}
	for i := len(titles); i < g.titleCount; i++ {
		titles = append(titles, fmt.Sprintf("Coffee tip #%d", i+1))
	}
	if g.titleCount > 0 && g.titleCount < len(titles) {
		titles = titles[:g.titleCount]
	}
	return &gateway.TitlesResult{Titles: titles}, nil
}

func (g *fakeGateway) GenerateArticle(ctx context.Context, req gateway.ArticleRequest) (*gateway.ArticleResult, error) {
	g.record("article")
	g.mu.Lock()
	g.articleRequests = append(g.articleRequests, req)
	fail := g.failArticles[req.Title]
	g.mu.Unlock()
	if fail {
		return nil, &gateway.StatusError{StatusCode: 502, Body: "model overloaded"}
	}
	return &gateway.ArticleResult{
		Content: "# " + req.Title + "\n\nAll about " + req.Subject + ".",
		Sources: []string{"https://example.com/" + strings.ReplaceAll(req.Title, " ", "-")},
	}, nil
}

func (g *fakeGateway) GenerateImage(ctx context.Context, req gateway.ImageRequest) (*gateway.ImageResult, error) {
	g.record("image")
	return &gateway.ImageResult{ImageURL: pixelPNG}, nil
}

func (g *fakeGateway) GenerateContentImage(ctx context.Context, req gateway.ImageRequest) (*gateway.ImageResult, error) {
	g.record("content-image")
	if g.failContentImage {
		return nil, &gateway.StatusError{StatusCode: 500, Body: "no image"}
	}
	return &gateway.ImageResult{ImageURL: pixelPNG}, nil
}

func (g *fakeGateway) Translate(ctx context.Context, req gateway.TranslateRequest) (*gateway.TranslationResult, error) {
	g.record("translate")
	g.mu.Lock()
	g.translateRequests = append(g.translateRequests, req)
	g.mu.Unlock()
	return &gateway.TranslationResult{TranslatedContent: "[" + req.TargetLanguage + "] " + req.Content}, nil
}

func (g *fakeGateway) ExportWordPress(ctx context.Context, req gateway.ExportRequest) (*gateway.ExportResult, error) {
	g.record("export")
	result := &gateway.ExportResult{
		Body:        io.NopCloser(strings.NewReader("PK-zip-bytes")),
		ContentType: "application/zip",
		Filename:    "site-" + req.VariationID + ".zip",
	}
	if g.noExportFilename {
		result.Filename = ""
	}
	return result, nil
}

func (g *fakeGateway) PublishWordPress(ctx context.Context, req gateway.ExportRequest) (*gateway.PublishResult, error) {
	g.record("publish")
	if !g.published {
		return &gateway.PublishResult{Success: false, Message: "invalid credentials"}, nil
	}
	return &gateway.PublishResult{Success: true, Message: "published"}, nil
}

func newTestWizard(t *testing.T) (*Wizard, *fakeGateway) {
	t.Helper()
	return newTestWizardWith(t, Options{PurgeOnHome: true})
}

func newTestWizardWith(t *testing.T, opts Options) (*Wizard, *fakeGateway) {
	t.Helper()
	gw := newFakeGateway()
	backend := storage.NewMemoryStore()
	t.Cleanup(func() { backend.Close() })
	return New(backend, gw, nil, opts), gw
}

// seed starts a session and walks it up to the Articles step
func seed(t *testing.T, w *Wizard) *models.Session {
	t.Helper()
	ctx := context.Background()
	if _, err := w.Home().Start(ctx, StartRequest{Theme: "artisan coffee", VariationCount: 3}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := w.Content().GenerateTitles(ctx); err != nil {
		t.Fatalf("GenerateTitles failed: %v", err)
	}
	_, s, err := w.Content().Continue(ctx)
	if err != nil {
		t.Fatalf("Continue failed: %v", err)
	}
	return s
}
