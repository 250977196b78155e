package models

import "time"

// Session represents one end-to-end site generation run
type Session struct {
	ID                string              `json:"id"`
	Theme             string              `json:"theme,omitempty"`
	Topic             string              `json:"topic,omitempty"`
	Variations        []Variation         `json:"variations,omitempty"`
	Logos             map[string]ImageRef `json:"logos,omitempty"`
	LogoDescriptions  map[string]string   `json:"logoDescriptions,omitempty"`
	Titles            map[string][]string `json:"titles,omitempty"`
	Articles          map[int]Article     `json:"articles,omitempty"`
	SelectedVariation string              `json:"selectedVariation,omitempty"`
	AdditionalContext string              `json:"additionalContext,omitempty"`
	AvoidContext      string              `json:"avoidContext,omitempty"`
	Tone              string              `json:"tone,omitempty"`
	ArticleLength     int                 `json:"articleLength,omitempty"`
	DetailLevel       int                 `json:"detailLevel,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// Variation is one candidate site concept produced from a theme
type Variation struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Style       string            `json:"style"`
	Content     *VariationContent `json:"content,omitempty"`
}

// VariationContent holds site-level bulk content for a variation
type VariationContent struct {
	Articles []Article `json:"articles,omitempty"`
}

// Article is a single generated piece of content
type Article struct {
	Title           string            `json:"title"`
	Content         string            `json:"content"`
	Sources         []string          `json:"sources,omitempty"`
	Image           *ImageRef         `json:"image,omitempty"`
	IsValidated     bool              `json:"isValidated"`
	Translations    map[string]string `json:"translations,omitempty"`
	CurrentLanguage string            `json:"currentLanguage,omitempty"`
}

// ImageRef points at image data without embedding it: either a remote URL
// or the id of a blob held by the image store.
type ImageRef struct {
	URL         string `json:"url,omitempty"`
	BlobID      string `json:"blobId,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// IsZero reports whether the reference points nowhere
func (r ImageRef) IsZero() bool {
	return r.URL == "" && r.BlobID == ""
}

// Empty returns a session carrying only its id
func Empty(id string) *Session {
	return &Session{ID: id}
}

// HasSession reports whether the session holds any generated state
func (s *Session) HasSession() bool {
	return s != nil && s.ID != "" && !s.CreatedAt.IsZero()
}

// Variation returns the variation with the given id
func (s *Session) Variation(id string) (Variation, bool) {
	for _, v := range s.Variations {
		if v.ID == id {
			return v, true
		}
	}
	return Variation{}, false
}

// SelectedTitles returns the titles generated for the selected variation
func (s *Session) SelectedTitles() []string {
	if s.SelectedVariation == "" || s.Titles == nil {
		return nil
	}
	return s.Titles[s.SelectedVariation]
}

// Article returns the article stored at index i
func (s *Session) Article(i int) (Article, bool) {
	if s.Articles == nil {
		return Article{}, false
	}
	a, ok := s.Articles[i]
	return a, ok
}

// Patch is a partial session update. Each non-nil scalar or slice field
// replaces the stored value; each key present in a map field replaces only
// that key.
type Patch struct {
	Theme             *string
	Topic             *string
	Variations        []Variation
	Logos             map[string]ImageRef
	LogoDescriptions  map[string]string
	Titles            map[string][]string
	Articles          map[int]Article
	SelectedVariation *string
	AdditionalContext *string
	AvoidContext      *string
	Tone              *string
	ArticleLength     *int
	DetailLevel       *int
}

// Apply merges the patch into s
func (p Patch) Apply(s *Session) {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Topic != nil {
		s.Topic = *p.Topic
	}
	if p.Variations != nil {
		s.Variations = p.Variations
	}
	if len(p.Logos) > 0 {
		if s.Logos == nil {
			s.Logos = make(map[string]ImageRef, len(p.Logos))
		}
		for k, v := range p.Logos {
			s.Logos[k] = v
		}
	}
	if len(p.LogoDescriptions) > 0 {
		if s.LogoDescriptions == nil {
			s.LogoDescriptions = make(map[string]string, len(p.LogoDescriptions))
		}
		for k, v := range p.LogoDescriptions {
			s.LogoDescriptions[k] = v
		}
	}
	if len(p.Titles) > 0 {
		if s.Titles == nil {
			s.Titles = make(map[string][]string, len(p.Titles))
		}
		for k, v := range p.Titles {
			s.Titles[k] = v
		}
	}
	if len(p.Articles) > 0 {
		if s.Articles == nil {
			s.Articles = make(map[int]Article, len(p.Articles))
		}
		for k, v := range p.Articles {
			s.Articles[k] = v
		}
	}
	if p.SelectedVariation != nil {
		s.SelectedVariation = *p.SelectedVariation
	}
	if p.AdditionalContext != nil {
		s.AdditionalContext = *p.AdditionalContext
	}
	if p.AvoidContext != nil {
		s.AvoidContext = *p.AvoidContext
	}
	if p.Tone != nil {
		s.Tone = *p.Tone
	}
	if p.ArticleLength != nil {
		s.ArticleLength = *p.ArticleLength
	}
	if p.DetailLevel != nil {
		s.DetailLevel = *p.DetailLevel
	}
}

// Ptr returns a pointer to v, for building patches
func Ptr[T any](v T) *T {
	return &v
}

// SessionSummary is a short listing entry for a stored session
type SessionSummary struct {
	ID         string    `json:"id" yaml:"id"`
	Theme      string    `json:"theme" yaml:"theme"`
	Variations int       `json:"variations" yaml:"variations"`
	Articles   int       `json:"articles" yaml:"articles"`
	Current    bool      `json:"current" yaml:"current"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdat"`
}

// Summary builds a listing entry for s
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:         s.ID,
		Theme:      s.Theme,
		Variations: len(s.Variations),
		Articles:   len(s.Articles),
		CreatedAt:  s.CreatedAt,
	}
}
