package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/sitewizard/sitewizard/internal/models"
)

// Document is the downloadable JSON form of a single article
type Document struct {
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	Topic             string    `json:"topic"`
	Tone              string    `json:"tone"`
	Image             string    `json:"image,omitempty"`
	AdditionalContext string    `json:"additionalContext"`
	AvoidContext      string    `json:"avoidContext"`
	CreatedAt         time.Time `json:"createdAt"`
}

// NewDocument builds the export document for an article. image is the
// already-resolved image source (a URL or a data URI), if any.
func NewDocument(s *models.Session, a models.Article, image string) Document {
	return Document{
		Title:             a.Title,
		Content:           a.Content,
		Topic:             s.Topic,
		Tone:              s.Tone,
		Image:             image,
		AdditionalContext: s.AdditionalContext,
		AvoidContext:      s.AvoidContext,
		CreatedAt:         time.Now().UTC(),
	}
}

// WriteJSON writes doc as indented JSON
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode article: %w", err)
	}
	return nil
}

// Filename derives a download name from an article title: every character
// outside [a-z0-9] (case-insensitive) becomes an underscore and the result
// is lowercased.
func Filename(title, ext string) string {
	var b strings.Builder
	for _, r := range title {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" {
		name = "article"
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}
