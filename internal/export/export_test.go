package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"

	"github.com/sitewizard/sitewizard/internal/models"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		title    string
		ext      string
		expected string
	}{
		{"Brewing the Perfect Cup", "pdf", "brewing_the_perfect_cup.pdf"},
		{"Café & Crème: 5 tips!", "json", "caf____cr_me__5_tips_.json"},
		{"", ".html", "article.html"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			result := Filename(tt.title, tt.ext)
			if result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestBlocks(t *testing.T) {
	src := "# Roasting\n\nLight roasts keep  the\nacidity.\n\n- Ethiopia\n- Kenya\n\n> Drink it fresh\n\n```\nbrew --hot\n```\n"
	blocks, err := Blocks(src)
	require.NoError(t, err)

	expected := []Block{
		{Kind: Heading, Level: 1, Text: "Roasting"},
		{Kind: Paragraph, Text: "Light roasts keep the acidity."},
		{Kind: ListItem, Text: "Ethiopia"},
		{Kind: ListItem, Text: "Kenya"},
		{Kind: Quote, Text: "Drink it fresh"},
		{Kind: Code, Text: "brew --hot"},
	}
	if diff := cmp.Diff(expected, blocks); diff != "" {
		t.Errorf("Blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSON(t *testing.T) {
	s := &models.Session{Topic: "Bean There", Tone: "friendly", AdditionalContext: "fair trade"}
	doc := NewDocument(s, models.Article{Title: "Roasting", Content: "text"}, "https://img.example/1.png")

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, doc))
	require.Contains(t, buf.String(), "\n  \"title\": \"Roasting\"")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, key := range []string{"title", "content", "topic", "tone", "image", "additionalContext", "avoidContext", "createdAt"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected key %q in export", key)
		}
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHTML(&buf, Page{
		Title:   "Roasting <at> home",
		Lang:    "en",
		Image:   "data:image/png;base64,AAAA",
		Content: "Some **bold** text\n\n<script>alert(1)</script>",
		Sources: []string{"https://example.com"},
	})
	require.NoError(t, err)
	out := buf.String()

	require.Contains(t, out, "<title>Roasting &lt;at&gt; home</title>")
	require.Contains(t, out, "<strong>bold</strong>")
	require.Contains(t, out, `src="data:image/png;base64,AAAA"`)
	require.Contains(t, out, "<li>https://example.com</li>")
	require.NotContains(t, out, "<script>")
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	err := WritePDF(&buf, "Café crème", strings.Repeat("A long paragraph about coffee. ", 400), nil)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func datasetSession() *models.Session {
	return &models.Session{
		ID:                "s1",
		Theme:             "artisan coffee",
		Topic:             "Bean There",
		SelectedVariation: "v2",
		Tone:              "standard",
		CreatedAt:         time.Now(),
		Articles: map[int]models.Article{
			2: {Title: "Third", Content: "c", CurrentLanguage: "en"},
			0: {Title: "First", Content: "a", Sources: []string{"s1", "s2"}, IsValidated: true, Image: &models.ImageRef{BlobID: "x"}},
		},
	}
}

func TestDatasetRows(t *testing.T) {
	rows := DatasetRows(datasetSession())
	require.Len(t, rows, 2)
	require.Equal(t, "First", rows[0].Title)
	require.Equal(t, int64(2), rows[1].Index)
	require.True(t, rows[0].HasImage)
	require.False(t, rows[1].HasImage)
}

func TestWriteDatasetParquet(t *testing.T) {
	rows := DatasetRows(datasetSession())
	var buf bytes.Buffer
	require.NoError(t, WriteDataset(&buf, DatasetFormat("out.PARQUET"), rows))

	reader := parquet.NewGenericReader[DatasetRow](bytes.NewReader(buf.Bytes()))
	defer reader.Close()
	got := make([]DatasetRow, 4)
	n, _ := reader.Read(got)
	if diff := cmp.Diff(rows, got[:n], cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Parquet rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteDatasetJSONL(t *testing.T) {
	rows := DatasetRows(datasetSession())
	var buf bytes.Buffer
	require.NoError(t, WriteDataset(&buf, DatasetFormat("out.jsonl"), rows))

	scanner := bufio.NewScanner(&buf)
	lines := 0
	for scanner.Scan() {
		var row DatasetRow
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &row))
		require.Equal(t, rows[lines].Title, row.Title)
		lines++
	}
	require.Equal(t, 2, lines)

	require.Error(t, WriteDataset(&buf, "csv", rows))
}
