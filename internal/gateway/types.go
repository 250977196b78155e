package gateway

import (
	"io"

	"github.com/sitewizard/sitewizard/internal/models"
)

// ThemeRequest asks for site concept variations of a theme
type ThemeRequest struct {
	Theme           string `json:"theme"`
	VariationCount  int    `json:"variations"`
	CustomPrompt    string `json:"custom_prompt,omitempty"`
	ColorPreference string `json:"color_preference,omitempty"`
}

type ThemeResult struct {
	Variations []models.Variation `json:"variations"`
}

type LogoRequest struct {
	Variations       []models.Variation `json:"variations"`
	LogoDescriptions map[string]string  `json:"logo_descriptions"`
	SessionID        string             `json:"session_id,omitempty"`
}

type Logo struct {
	VariationID string `json:"variation_id"`
	LogoURL     string `json:"logo_url"`
}

type LogoResult struct {
	Logos []Logo `json:"logos"`
}

// TitlesRequest field names follow the gateway's wire contract
type TitlesRequest struct {
	Subject           string `json:"sujet"`
	Tone              string `json:"tone"`
	AdditionalContext string `json:"additional_context,omitempty"`
	AvoidContext      string `json:"avoid_context,omitempty"`
	SingleTitle       bool   `json:"single_title,omitempty"`
}

type TitlesResult struct {
	Titles []string `json:"titles"`
}

type ArticleRequest struct {
	Title             string `json:"titre"`
	Subject           string `json:"sujet"`
	Tone              string `json:"tone,omitempty"`
	AdditionalContext string `json:"additional_context,omitempty"`
	AvoidContext      string `json:"avoid_context,omitempty"`
	LengthHint        int    `json:"article_length,omitempty"`
	DetailLevel       int    `json:"detail_level,omitempty"`
}

type ArticleResult struct {
	Content  string   `json:"content"`
	Sources  []string `json:"sources,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

type ImageRequest struct {
	Prompt       string `json:"prompt"`
	Title        string `json:"title,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
	ArticleIndex *int   `json:"article_index,omitempty"`
}

type ImageResult struct {
	ImageURL string `json:"image_url"`
}

type TranslateRequest struct {
	Content        string `json:"content"`
	TargetLanguage string `json:"target_language"`
}

type TranslationResult struct {
	TranslatedContent string `json:"translated_content"`
}

type ExportRequest struct {
	VariationID   string           `json:"variation_id"`
	VariationData models.Variation `json:"variation_data"`
	SessionID     string           `json:"session_id,omitempty"`
}

// ExportResult is an opaque file stream; the caller must close Body
type ExportResult struct {
	Body        io.ReadCloser
	ContentType string
	Filename    string
}

type PublishResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
