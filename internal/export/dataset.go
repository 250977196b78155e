package export

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/sitewizard/sitewizard/internal/models"
)

// DatasetRow is one article of a session, flattened for analysis
type DatasetRow struct {
	SessionID   string   `parquet:"session_id" json:"session_id"`
	Theme       string   `parquet:"theme" json:"theme"`
	Topic       string   `parquet:"topic" json:"topic"`
	VariationID string   `parquet:"variation_id" json:"variation_id"`
	Index       int64    `parquet:"index" json:"index"`
	Title       string   `parquet:"title" json:"title"`
	Content     string   `parquet:"content" json:"content"`
	Language    string   `parquet:"language" json:"language"`
	Validated   bool     `parquet:"validated" json:"validated"`
	Tone        string   `parquet:"tone" json:"tone"`
	Sources     []string `parquet:"sources,list" json:"sources"`
	HasImage    bool     `parquet:"has_image" json:"has_image"`
}

// DatasetRows flattens the session's articles in index order
func DatasetRows(s *models.Session) []DatasetRow {
	indexes := make([]int, 0, len(s.Articles))
	for i := range s.Articles {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	rows := make([]DatasetRow, 0, len(indexes))
	for _, i := range indexes {
		a := s.Articles[i]
		rows = append(rows, DatasetRow{
			SessionID:   s.ID,
			Theme:       s.Theme,
			Topic:       s.Topic,
			VariationID: s.SelectedVariation,
			Index:       int64(i),
			Title:       a.Title,
			Content:     a.Content,
			Language:    a.CurrentLanguage,
			Validated:   a.IsValidated,
			Tone:        s.Tone,
			Sources:     a.Sources,
			HasImage:    a.Image != nil && !a.Image.IsZero(),
		})
	}
	return rows
}

// DatasetFormat picks the dataset encoding from a file name, defaulting
// to JSONL.
func DatasetFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return "parquet"
	default:
		return "jsonl"
	}
}

// WriteDataset encodes rows as "parquet" or "jsonl"
func WriteDataset(w io.Writer, format string, rows []DatasetRow) error {
	switch format {
	case "parquet":
		return writeParquet(w, rows)
	case "jsonl", "json":
		return writeJSONL(w, rows)
	default:
		return fmt.Errorf("unsupported dataset format: %s (supported: parquet, jsonl)", format)
	}
}

func writeParquet(w io.Writer, rows []DatasetRow) error {
	writer := parquet.NewGenericWriter[DatasetRow](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

func writeJSONL(w io.Writer, rows []DatasetRow) error {
	enc := json.NewEncoder(w)
	for i, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
	}
	return nil
}
