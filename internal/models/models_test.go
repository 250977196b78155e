package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPatchApply(t *testing.T) {
	s := &Session{
		ID:     "s1",
		Theme:  "artisan coffee",
		Tone:   "standard",
		Titles: map[string][]string{"1": {"a", "b"}, "2": {"c"}},
		Articles: map[int]Article{
			0: {Title: "a", Content: "old"},
			1: {Title: "b", Content: "keep"},
		},
	}

	Patch{
		Tone:              Ptr("playful"),
		SelectedVariation: Ptr("2"),
		Titles:            map[string][]string{"2": {"d", "e"}},
		Articles:          map[int]Article{0: {Title: "a", Content: "new"}},
		Logos:             map[string]ImageRef{"1": {BlobID: "abc"}},
	}.Apply(s)

	expected := &Session{
		ID:                "s1",
		Theme:             "artisan coffee",
		Tone:              "playful",
		SelectedVariation: "2",
		Titles:            map[string][]string{"1": {"a", "b"}, "2": {"d", "e"}},
		Articles: map[int]Article{
			0: {Title: "a", Content: "new"},
			1: {Title: "b", Content: "keep"},
		},
		Logos: map[string]ImageRef{"1": {BlobID: "abc"}},
	}
	if diff := cmp.Diff(expected, s); diff != "" {
		t.Errorf("Apply mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionAccessors(t *testing.T) {
	var nilSession *Session
	if nilSession.HasSession() {
		t.Error("Expected nil session to have no session")
	}
	if Empty("x").HasSession() {
		t.Error("Expected empty session to have no session")
	}

	s := &Session{
		Variations:        []Variation{{ID: "1"}, {ID: "2"}},
		SelectedVariation: "2",
		Titles:            map[string][]string{"2": {"t"}},
	}
	if _, ok := s.Variation("3"); ok {
		t.Error("Expected unknown variation to be missing")
	}
	if got := s.SelectedTitles(); len(got) != 1 || got[0] != "t" {
		t.Errorf("Expected selected titles [t], got %v", got)
	}
	if _, ok := s.Article(0); ok {
		t.Error("Expected no article in a session without articles")
	}
}
