package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sitewizard/sitewizard/internal/gateway"
	"github.com/sitewizard/sitewizard/internal/models"
)

const (
	DefaultVariationCount = 3
	MaxVariationCount     = 10
)

// StartRequest is the Home form
type StartRequest struct {
	Theme           string `json:"theme"`
	VariationCount  int    `json:"variation_count"`
	CustomPrompt    string `json:"custom_prompt,omitempty"`
	ColorPreference string `json:"color_preference,omitempty"`
}

// HomeController starts new sessions
type HomeController struct {
	w *Wizard
}

// Start requests theme variations and creates a new current session from
// them. Stored sessions are purged first when the wizard is configured to
// do so; a gateway failure leaves the store untouched.
func (c *HomeController) Start(ctx context.Context, req StartRequest) (*models.Session, error) {
	theme := strings.TrimSpace(req.Theme)
	if theme == "" {
		return nil, ErrEmptyTheme
	}
	count := req.VariationCount
	if count <= 0 {
		count = DefaultVariationCount
	}
	count = min(count, MaxVariationCount)

	slog.Info("Generating theme variations", "theme", theme, "variations", count)
	result, err := c.w.gateway.GenerateThemeVariations(ctx, gateway.ThemeRequest{
		Theme:           theme,
		VariationCount:  count,
		CustomPrompt:    req.CustomPrompt,
		ColorPreference: req.ColorPreference,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate theme variations: %w", err)
	}

	if c.w.opts.PurgeOnHome {
		if err := c.w.ClearSessions(ctx); err != nil {
			return nil, fmt.Errorf("failed to purge sessions: %w", err)
		}
	}

	variations := repairVariationIDs(result.Variations)
	initial := &models.Session{
		Theme:            theme,
		Variations:       variations,
		LogoDescriptions: make(map[string]string, len(variations)),
		Tone:             c.w.opts.DefaultTone,
		ArticleLength:    c.w.opts.ArticleLength,
		DetailLevel:      c.w.opts.DetailLevel,
	}
	for _, v := range variations {
		initial.LogoDescriptions[v.ID] = defaultLogoDescription(v)
	}

	id, err := c.w.store.Create(ctx, initial)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	slog.Info("Session created", "session_id", id, "variations", len(variations))
	return c.w.store.Read(ctx, id)
}

// repairVariationIDs gives every variation a unique, non-empty id so that
// the per-variation maps stay addressable.
func repairVariationIDs(variations []models.Variation) []models.Variation {
	out := make([]models.Variation, len(variations))
	seen := make(map[string]bool, len(variations))
	for i, v := range variations {
		if v.ID == "" || seen[v.ID] {
			v.ID = fmt.Sprintf("variation-%d", i+1)
			for n := 2; seen[v.ID]; n++ {
				v.ID = fmt.Sprintf("variation-%d-%d", i+1, n)
			}
		}
		seen[v.ID] = true
		out[i] = v
	}
	return out
}

func defaultLogoDescription(v models.Variation) string {
	return fmt.Sprintf("Logo for %q in a %s style", v.Title, strings.ToLower(v.Style))
}
