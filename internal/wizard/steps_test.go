package wizard

import (
	"testing"
	"time"

	"github.com/sitewizard/sitewizard/internal/models"
)

func session(mutate func(s *models.Session)) *models.Session {
	s := &models.Session{
		ID:        "s1",
		CreatedAt: time.Now(),
		Variations: []models.Variation{
			{ID: "a", Title: "Bean There"},
			{ID: "b", Title: "Daily Grind"},
		},
		SelectedVariation: "a",
		Titles:            map[string][]string{"a": {"One", "Two"}},
		Articles:          map[int]models.Article{0: {Title: "One"}},
	}
	if mutate != nil {
		mutate(s)
	}
	return s
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		session    *models.Session
		target     Step
		index      int
		wantStep   Step
		redirected bool
		guard      string
		autoSelect string
	}{
		{
			name:     "home is always reachable",
			session:  nil,
			target:   StepHome,
			wantStep: StepHome,
		},
		{
			name:       "no session goes home",
			session:    nil,
			target:     StepArticles,
			wantStep:   StepHome,
			redirected: true,
			guard:      "session",
		},
		{
			name:       "empty session goes home",
			session:    models.Empty("s1"),
			target:     StepArticleDetail,
			wantStep:   StepHome,
			redirected: true,
			guard:      "session",
		},
		{
			name:       "no variations goes home",
			session:    session(func(s *models.Session) { s.Variations = nil }),
			target:     StepLogos,
			wantStep:   StepHome,
			redirected: true,
			guard:      "variations",
		},
		{
			name:     "logos with variations",
			session:  session(nil),
			target:   StepLogos,
			wantStep: StepLogos,
		},
		{
			name:       "content without selection falls back to first variation",
			session:    session(func(s *models.Session) { s.SelectedVariation = "" }),
			target:     StepContent,
			wantStep:   StepContent,
			autoSelect: "a",
		},
		{
			name:       "stale selection falls back to first variation",
			session:    session(func(s *models.Session) { s.SelectedVariation = "gone" }),
			target:     StepArticles,
			wantStep:   StepArticles,
			autoSelect: "a",
		},
		{
			name:       "articles without titles goes to content",
			session:    session(func(s *models.Session) { s.Titles = nil }),
			target:     StepArticles,
			wantStep:   StepContent,
			redirected: true,
			guard:      "titles",
		},
		{
			name:       "titles belong to another variation",
			session:    session(func(s *models.Session) { s.SelectedVariation = "b" }),
			target:     StepArticles,
			wantStep:   StepContent,
			redirected: true,
			guard:      "titles",
		},
		{
			name:     "articles with titles",
			session:  session(nil),
			target:   StepArticles,
			wantStep: StepArticles,
		},
		{
			name:       "missing article goes to articles",
			session:    session(nil),
			target:     StepArticleDetail,
			index:      1,
			wantStep:   StepArticles,
			redirected: true,
			guard:      "article",
		},
		{
			name:     "existing article",
			session:  session(nil),
			target:   StepArticleDetail,
			index:    0,
			wantStep: StepArticleDetail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.session, tt.target, tt.index)
			if d.Step != tt.wantStep {
				t.Errorf("Expected step %s, got %s", tt.wantStep, d.Step)
			}
			if d.Redirected != tt.redirected {
				t.Errorf("Expected redirected %v, got %v", tt.redirected, d.Redirected)
			}
			if d.Guard != tt.guard {
				t.Errorf("Expected guard %q, got %q", tt.guard, d.Guard)
			}
			if d.AutoSelected != tt.autoSelect {
				t.Errorf("Expected auto-selected %q, got %q", tt.autoSelect, d.AutoSelected)
			}
			if tt.autoSelect != "" && tt.session.SelectedVariation != tt.autoSelect {
				t.Errorf("Expected session selection %q, got %q", tt.autoSelect, tt.session.SelectedVariation)
			}
		})
	}
}

func TestParseStep(t *testing.T) {
	for _, name := range []string{"home", "logos", "content", "articles", "article"} {
		if _, err := ParseStep(name); err != nil {
			t.Errorf("Expected %q to parse, got %v", name, err)
		}
	}
	if _, err := ParseStep("checkout"); err == nil {
		t.Error("Expected error for unknown step")
	}
}

func TestStepNext(t *testing.T) {
	if StepHome.Next() != StepLogos || StepContent.Next() != StepArticles {
		t.Error("Expected forward order home, logos, content, articles")
	}
	if StepArticleDetail.Next() != StepArticleDetail {
		t.Error("Expected article detail to be terminal")
	}
}
