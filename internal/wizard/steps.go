package wizard

import (
	"fmt"
	"slices"

	"github.com/sitewizard/sitewizard/internal/models"
)

// Step is one wizard screen
type Step string

const (
	StepHome          Step = "home"
	StepLogos         Step = "logos"
	StepContent       Step = "content"
	StepArticles      Step = "articles"
	StepArticleDetail Step = "article"
)

var allSteps = []Step{StepHome, StepLogos, StepContent, StepArticles, StepArticleDetail}

// ParseStep validates a step name
func ParseStep(s string) (Step, error) {
	step := Step(s)
	if !slices.Contains(allSteps, step) {
		return "", fmt.Errorf("unknown step: %q", s)
	}
	return step, nil
}

// Next returns the step a successful controller hands over to
func (s Step) Next() Step {
	switch s {
	case StepHome:
		return StepLogos
	case StepLogos:
		return StepContent
	case StepContent:
		return StepArticles
	case StepArticles:
		return StepArticleDetail
	default:
		return s
	}
}

// Decision is the outcome of evaluating the transition table for one
// navigation request.
type Decision struct {
	Requested  Step `json:"requested"`
	Step       Step `json:"step"`
	Index      int  `json:"index,omitempty"`
	Redirected bool `json:"redirected"`
	// AutoSelected is the variation id chosen by the fallback rule, if it fired
	AutoSelected string `json:"auto_selected,omitempty"`
	// Guard names the rule that redirected
	Guard string `json:"guard,omitempty"`
}

type outcomeKind int

const (
	pass outcomeKind = iota
	redirect
	fallback
)

type outcome struct {
	kind outcomeKind
	to   Step
}

// guard is one row of the transition table: state × precondition → next state
type guard struct {
	name  string
	steps []Step
	check func(s *models.Session, index int) outcome
}

// transitions is evaluated top to bottom; the first redirect wins. A
// fallback repairs the session in place and evaluation continues.
var transitions = []guard{
	{
		name:  "session",
		steps: []Step{StepLogos, StepContent, StepArticles, StepArticleDetail},
		check: func(s *models.Session, _ int) outcome {
			if !s.HasSession() {
				return outcome{kind: redirect, to: StepHome}
			}
			return outcome{}
		},
	},
	{
		name:  "variations",
		steps: []Step{StepLogos, StepContent, StepArticles},
		check: func(s *models.Session, _ int) outcome {
			if len(s.Variations) == 0 {
				return outcome{kind: redirect, to: StepHome}
			}
			return outcome{}
		},
	},
	{
		name:  "selected-variation",
		steps: []Step{StepContent, StepArticles},
		check: func(s *models.Session, _ int) outcome {
			if _, ok := s.Variation(s.SelectedVariation); !ok {
				return outcome{kind: fallback}
			}
			return outcome{}
		},
	},
	{
		name:  "titles",
		steps: []Step{StepArticles},
		check: func(s *models.Session, _ int) outcome {
			if len(s.SelectedTitles()) == 0 {
				return outcome{kind: redirect, to: StepContent}
			}
			return outcome{}
		},
	},
	{
		name:  "article",
		steps: []Step{StepArticleDetail},
		check: func(s *models.Session, index int) outcome {
			if _, ok := s.Article(index); !ok {
				return outcome{kind: redirect, to: StepArticles}
			}
			return outcome{}
		},
	},
}

// Evaluate runs the transition table for a request to enter target. A nil
// session means there is no current session. When the selected-variation
// fallback fires, s is modified to select the first variation and the
// chosen id is reported in the decision so the caller can persist it.
func Evaluate(s *models.Session, target Step, index int) Decision {
	decision := Decision{Requested: target, Step: target}
	if target == StepArticleDetail {
		decision.Index = index
	}

	for _, g := range transitions {
		if !slices.Contains(g.steps, target) {
			continue
		}
		out := g.check(s, index)
		switch out.kind {
		case redirect:
			decision.Step = out.to
			decision.Index = 0
			decision.Redirected = true
			decision.Guard = g.name
			return decision
		case fallback:
			first := s.Variations[0].ID
			s.SelectedVariation = first
			decision.AutoSelected = first
		}
	}
	return decision
}
