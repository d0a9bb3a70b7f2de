package story

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `{
  "id": "s1",
  "title": "The Glass Harbor",
  "genre": "Fantasy",
  "mood": "Melancholic",
  "style": "Watercolor",
  "plot": "A keeper loses her lighthouse.",
  "cast": [{"id": "c1", "name": "Ivy", "role": "Keeper"}],
  "pages": [
    {"text": "The *tide* came in.", "imagePrompt": "harbor at dusk", "imageUrl": "data:image/png;base64,AAAA"},
    {"text": "Night fell.", "audioData": "UklGRg=="}
  ],
  "createdAt": 1718000000000,
  "isFavorite": true
}`

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Title != "The Glass Harbor" || s.Genre != "Fantasy" || !s.IsFavorite {
		t.Fatalf("unexpected story: %+v", s)
	}
	if len(s.Pages) != 2 || s.Pages[0].ImageURL == "" || s.Pages[1].AudioData == "" {
		t.Fatalf("pages not decoded: %+v", s.Pages)
	}
	if len(s.Cast) != 1 || s.Cast[0].Role != "Keeper" {
		t.Fatalf("cast not decoded: %+v", s.Cast)
	}
	if got := s.Created().UnixMilli(); got != 1718000000000 {
		t.Fatalf("created = %d", got)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	if _, err := Load(strings.NewReader(`{"title": `)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadFileAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.json")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatalf("write: %v", err)
	}
	again, err := Load(&buf)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Title != s.Title || len(again.Pages) != len(s.Pages) {
		t.Fatalf("round trip changed story: %+v", again)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	if err := (&Story{Title: "A"}).Validate(); err != nil {
		t.Fatalf("zero pages should be valid: %v", err)
	}
	for _, s := range []*Story{nil, {}, {Title: "   "}} {
		if err := s.Validate(); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid for %+v, got %v", s, err)
		}
	}
}
