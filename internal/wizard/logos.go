package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sitewizard/sitewizard/internal/gateway"
	"github.com/sitewizard/sitewizard/internal/images"
	"github.com/sitewizard/sitewizard/internal/models"
)

// MaxLogoSize bounds uploaded logos
const MaxLogoSize = 5 * 1024 * 1024

// LogosController generates one logo per variation
type LogosController struct {
	w *Wizard
}

// SetDescription stores the prompt used for a variation's logo
func (c *LogosController) SetDescription(ctx context.Context, variationID, text string) (*models.Session, error) {
	s, err := c.w.enter(ctx, StepLogos, 0)
	if err != nil {
		return nil, err
	}
	if _, ok := s.Variation(variationID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariation, variationID)
	}
	return c.w.store.Write(ctx, s.ID, models.Patch{
		LogoDescriptions: map[string]string{variationID: text},
	})
}

// GenerateOne requests a logo for a single variation and replaces any
// existing one.
func (c *LogosController) GenerateOne(ctx context.Context, variationID string) (*models.Session, error) {
	s, err := c.w.enter(ctx, StepLogos, 0)
	if err != nil {
		return nil, err
	}
	v, ok := s.Variation(variationID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariation, variationID)
	}
	ref, err := c.generate(ctx, s, v)
	if err != nil {
		return nil, err
	}
	return c.w.store.Write(ctx, s.ID, models.Patch{Logos: map[string]models.ImageRef{v.ID: ref}})
}

// GenerateAll requests logos for every variation that does not have one
// yet, one at a time. Failures are collected in the progress report.
func (c *LogosController) GenerateAll(ctx context.Context, onProgress ProgressFunc) (*models.Session, Progress, error) {
	s, err := c.w.enter(ctx, StepLogos, 0)
	if err != nil {
		return nil, Progress{}, err
	}

	progress := newProgress(len(s.Variations))
	for _, v := range s.Variations {
		if ref, ok := s.Logos[v.ID]; ok && !ref.IsZero() {
			progress.succeed()
			progress.report(onProgress)
			continue
		}
		if err := ctx.Err(); err != nil {
			return s, *progress, err
		}

		ref, err := c.generate(ctx, s, v)
		if err != nil {
			slog.Warn("Logo generation failed", "session_id", s.ID, "variation_id", v.ID, "error", err)
			progress.fail(v.ID, err)
			progress.report(onProgress)
			continue
		}
		s, err = c.w.store.Write(ctx, s.ID, models.Patch{Logos: map[string]models.ImageRef{v.ID: ref}})
		if err != nil {
			return nil, *progress, fmt.Errorf("failed to save logo: %w", err)
		}
		progress.succeed()
		progress.report(onProgress)
	}
	return s, *progress, nil
}

func (c *LogosController) generate(ctx context.Context, s *models.Session, v models.Variation) (models.ImageRef, error) {
	description := s.LogoDescriptions[v.ID]
	if description == "" {
		description = defaultLogoDescription(v)
	}

	slog.Info("Generating logo", "session_id", s.ID, "variation_id", v.ID)
	result, err := c.w.gateway.GenerateLogos(ctx, gateway.LogoRequest{
		Variations:       []models.Variation{v},
		LogoDescriptions: map[string]string{v.ID: description},
		SessionID:        s.ID,
	})
	if err != nil {
		return models.ImageRef{}, fmt.Errorf("failed to generate logo: %w", err)
	}

	logoURL := ""
	for _, logo := range result.Logos {
		if logo.VariationID == v.ID {
			logoURL = logo.LogoURL
			break
		}
	}
	if logoURL == "" && len(result.Logos) == 1 {
		logoURL = result.Logos[0].LogoURL
	}
	if logoURL == "" {
		return models.ImageRef{}, &gateway.RemoteError{Message: "no logo returned for variation " + v.ID}
	}

	ref, err := c.w.fetcher.Save(ctx, c.w.images, logoURL)
	if err != nil {
		return models.ImageRef{}, fmt.Errorf("failed to store logo: %w", err)
	}
	return ref, nil
}

// SetLogo stores uploaded image bytes as a variation's logo, replacing any
// generated one.
func (c *LogosController) SetLogo(ctx context.Context, variationID string, data []byte, contentType string) (*models.Session, error) {
	s, err := c.w.enter(ctx, StepLogos, 0)
	if err != nil {
		return nil, err
	}
	if _, ok := s.Variation(variationID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariation, variationID)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, contentType)
	}
	if len(data) > MaxLogoSize {
		return nil, ErrLogoTooLarge
	}
	ref, err := images.Put(ctx, c.w.images, data, contentType)
	if err != nil {
		return nil, err
	}
	slog.Info("Logo uploaded", "session_id", s.ID, "variation_id", variationID, "bytes", len(data))
	return c.w.store.Write(ctx, s.ID, models.Patch{Logos: map[string]models.ImageRef{variationID: ref}})
}

// SuggestDescription replaces a variation's logo prompt with one built from
// its title and style. Each call moves on to the next template, so asking
// again gives a different wording.
func (c *LogosController) SuggestDescription(ctx context.Context, variationID string) (*models.Session, error) {
	s, err := c.w.enter(ctx, StepLogos, 0)
	if err != nil {
		return nil, err
	}
	v, ok := s.Variation(variationID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariation, variationID)
	}
	return c.w.store.Write(ctx, s.ID, models.Patch{
		LogoDescriptions: map[string]string{v.ID: suggestDescription(v, s.LogoDescriptions[v.ID])},
	})
}

// SelectVariation marks a variation as the one to build content for
func (c *LogosController) SelectVariation(ctx context.Context, variationID string) (*models.Session, error) {
	s, err := c.w.enter(ctx, StepLogos, 0)
	if err != nil {
		return nil, err
	}
	return c.w.selectVariation(ctx, s, variationID)
}

// Continue hands over to the Content step. Missing logos do not block it.
func (c *LogosController) Continue(ctx context.Context) (Decision, *models.Session, error) {
	s, err := c.w.enter(ctx, StepLogos, 0)
	if err != nil {
		return Decision{}, nil, err
	}
	if missing := len(s.Variations) - len(s.Logos); missing > 0 {
		slog.Info("Continuing without every logo", "session_id", s.ID, "missing", missing)
	}
	return c.w.Navigate(ctx, StepContent, 0)
}

func (w *Wizard) selectVariation(ctx context.Context, s *models.Session, variationID string) (*models.Session, error) {
	if _, ok := s.Variation(variationID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariation, variationID)
	}
	return w.store.Write(ctx, s.ID, models.Patch{SelectedVariation: models.Ptr(variationID)})
}

var logoStyles = map[string]string{
	"minimal":      "clean, simple and elegant, with plenty of negative space",
	"modern":       "contemporary and geometric, with crisp lines",
	"professional": "serious and trustworthy, with clear typography",
	"creative":     "artistic and colorful, with organic shapes",
	"luxury":       "refined and sophisticated, with gold or silver details",
	"playful":      "fun and colorful, with rounded shapes",
}

// French style names the gateway may answer with
var logoStyleAliases = map[string]string{
	"minimaliste":   "minimal",
	"moderne":       "modern",
	"professionnel": "professional",
	"créatif":       "creative",
	"luxueux":       "luxury",
	"ludique":       "playful",
}

var logoTemplates = []string{
	"Logo for %q in a %s style. Use colors that convey trust and quality.",
	"Create a %[2]s logo for %[1]q. It should be memorable and capture the essence of the brand.",
	"A distinctive logo for %q in a %s style. Include visual elements that represent its field.",
	"A %[2]s logo for %[1]q. Use a harmonious palette and typography suited to the sector.",
	"Design a %[2]s logo for %[1]q that is both unique and easy to recognize.",
}

func styleDescription(style string) string {
	key := strings.ToLower(strings.TrimSpace(style))
	if alias, ok := logoStyleAliases[key]; ok {
		key = alias
	}
	if d, ok := logoStyles[key]; ok {
		return d
	}
	return "modern and professional"
}

// suggestDescription renders the template after the one current was built
// from, starting with the first.
func suggestDescription(v models.Variation, current string) string {
	style := styleDescription(v.Style)
	next := 0
	for i, tmpl := range logoTemplates {
		if fmt.Sprintf(tmpl, v.Title, style) == current {
			next = (i + 1) % len(logoTemplates)
			break
		}
	}
	return fmt.Sprintf(logoTemplates[next], v.Title, style)
}
