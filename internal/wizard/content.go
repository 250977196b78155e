package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sitewizard/sitewizard/internal/export"
	"github.com/sitewizard/sitewizard/internal/gateway"
	"github.com/sitewizard/sitewizard/internal/models"
)

// ContentController picks a variation and manages its article titles
type ContentController struct {
	w *Wizard
}

// GenerationContext holds the hints sent with title and article requests
type GenerationContext struct {
	Tone              string `json:"tone"`
	AdditionalContext string `json:"additional_context"`
	AvoidContext      string `json:"avoid_context"`
}

func (c *ContentController) SelectVariation(ctx context.Context, variationID string) (*models.Session, error) {
	s, err := c.w.enter(ctx, StepContent, 0)
	if err != nil {
		return nil, err
	}
	return c.w.selectVariation(ctx, s, variationID)
}

// SetContext stores the tone and context hints. An empty tone falls back to
// the configured default.
func (c *ContentController) SetContext(ctx context.Context, gc GenerationContext) (*models.Session, error) {
	s, err := c.w.enter(ctx, StepContent, 0)
	if err != nil {
		return nil, err
	}
	tone := strings.TrimSpace(gc.Tone)
	if tone == "" {
		tone = c.w.opts.DefaultTone
	}
	return c.w.store.Write(ctx, s.ID, models.Patch{
		Tone:              &tone,
		AdditionalContext: models.Ptr(gc.AdditionalContext),
		AvoidContext:      models.Ptr(gc.AvoidContext),
	})
}

// GenerateTitles replaces the title list of the selected variation
func (c *ContentController) GenerateTitles(ctx context.Context) (*models.Session, error) {
	s, err := c.w.enter(ctx, StepContent, 0)
	if err != nil {
		return nil, err
	}
	v, _ := s.Variation(s.SelectedVariation)

	slog.Info("Generating titles", "session_id", s.ID, "variation_id", v.ID)
	result, err := c.w.gateway.GenerateTitles(ctx, c.titlesRequest(s, v.Title, false))
	if err != nil {
		return nil, fmt.Errorf("failed to generate titles: %w", err)
	}
	titles := make([]string, 0, len(result.Titles))
	for _, t := range result.Titles {
		if t = strings.TrimSpace(t); t != "" {
			titles = append(titles, t)
		}
	}
	return c.w.store.Write(ctx, s.ID, models.Patch{Titles: map[string][]string{v.ID: titles}})
}

// EditTitle replaces title i of the selected variation. Articles already
// generated for that index keep their original title.
func (c *ContentController) EditTitle(ctx context.Context, index int, text string) (*models.Session, error) {
	s, err := c.w.enter(ctx, StepContent, 0)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty title", ErrTitleNotFound)
	}
	titles, err := replaceTitle(s.SelectedTitles(), index, text)
	if err != nil {
		return nil, err
	}
	return c.w.store.Write(ctx, s.ID, models.Patch{Titles: map[string][]string{s.SelectedVariation: titles}})
}

// RegenerateTitle asks for a single new title and replaces only title i
func (c *ContentController) RegenerateTitle(ctx context.Context, index int) (*models.Session, error) {
	s, err := c.w.enter(ctx, StepContent, 0)
	if err != nil {
		return nil, err
	}
	current := s.SelectedTitles()
	if index < 0 || index >= len(current) {
		return nil, fmt.Errorf("%w: index %d", ErrTitleNotFound, index)
	}
	v, _ := s.Variation(s.SelectedVariation)

	result, err := c.w.gateway.GenerateTitles(ctx, c.titlesRequest(s, v.Title, true))
	if err != nil {
		return nil, fmt.Errorf("failed to regenerate title: %w", err)
	}
	if len(result.Titles) == 0 || strings.TrimSpace(result.Titles[0]) == "" {
		return nil, &gateway.RemoteError{Message: "no title returned"}
	}
	titles, err := replaceTitle(current, index, strings.TrimSpace(result.Titles[0]))
	if err != nil {
		return nil, err
	}
	return c.w.store.Write(ctx, s.ID, models.Patch{Titles: map[string][]string{v.ID: titles}})
}

// Continue records the selected variation's title as the article topic and
// hands over to the Articles step.
func (c *ContentController) Continue(ctx context.Context) (Decision, *models.Session, error) {
	s, err := c.w.enter(ctx, StepContent, 0)
	if err != nil {
		return Decision{}, nil, err
	}
	if len(s.SelectedTitles()) == 0 {
		return Decision{}, nil, ErrNoTitles
	}
	v, _ := s.Variation(s.SelectedVariation)
	if _, err := c.w.store.Write(ctx, s.ID, models.Patch{Topic: models.Ptr(v.Title)}); err != nil {
		return Decision{}, nil, fmt.Errorf("failed to save topic: %w", err)
	}
	return c.w.Navigate(ctx, StepArticles, 0)
}

// ExportWordPress streams the gateway's WordPress export of a variation.
// The caller must close the returned body. When the gateway sends no file
// name one is derived from the variation title.
func (c *ContentController) ExportWordPress(ctx context.Context, variationID string) (*gateway.ExportResult, error) {
	req, err := c.exportRequest(ctx, variationID)
	if err != nil {
		return nil, err
	}
	result, err := c.w.gateway.ExportWordPress(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to export to WordPress: %w", err)
	}
	if result.Filename == "" {
		result.Filename = export.Filename(req.VariationData.Title, "zip")
	}
	return result, nil
}

// PublishWordPress asks the gateway to publish a variation to WordPress
func (c *ContentController) PublishWordPress(ctx context.Context, variationID string) (*gateway.PublishResult, error) {
	req, err := c.exportRequest(ctx, variationID)
	if err != nil {
		return nil, err
	}
	result, err := c.w.gateway.PublishWordPress(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to publish to WordPress: %w", err)
	}
	if !result.Success {
		return result, &gateway.RemoteError{Message: result.Message}
	}
	slog.Info("Published to WordPress", "session_id", req.SessionID, "variation_id", variationID)
	return result, nil
}

func (c *ContentController) exportRequest(ctx context.Context, variationID string) (gateway.ExportRequest, error) {
	s, err := c.w.enter(ctx, StepContent, 0)
	if err != nil {
		return gateway.ExportRequest{}, err
	}
	if variationID == "" {
		variationID = s.SelectedVariation
	}
	v, ok := s.Variation(variationID)
	if !ok {
		return gateway.ExportRequest{}, fmt.Errorf("%w: %s", ErrUnknownVariation, variationID)
	}
	return gateway.ExportRequest{VariationID: v.ID, VariationData: v, SessionID: s.ID}, nil
}

func (c *ContentController) titlesRequest(s *models.Session, subject string, single bool) gateway.TitlesRequest {
	tone := s.Tone
	if tone == "" {
		tone = c.w.opts.DefaultTone
	}
	return gateway.TitlesRequest{
		Subject:           subject,
		Tone:              tone,
		AdditionalContext: s.AdditionalContext,
		AvoidContext:      s.AvoidContext,
		SingleTitle:       single,
	}
}

func replaceTitle(titles []string, index int, text string) ([]string, error) {
	if index < 0 || index >= len(titles) {
		return nil, fmt.Errorf("%w: index %d", ErrTitleNotFound, index)
	}
	out := slices.Clone(titles)
	out[index] = text
	return out, nil
}
