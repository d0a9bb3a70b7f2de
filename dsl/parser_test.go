package dsl_test

import (
	"testing"

	"github.com/ByLCY/chronicle/dsl"
)

const sampleTheme = `
// a warmer variant of the default look
theme Dusk extends chronicle {
  page {
    margin: 20mm
    line-height: 1.5x; image-fit: stretch
  }

  colors {
    background: #101820
    placeholder: #E2E8F0
    spine: #ccc
  }

  font body { family: go; style: regular; size: 15pt }

  labels {
    folio: "FOLIO ${page} / ${total}"
  }
  # hash comments are elided too
}

theme Plain {
  border { enabled: false }
}
`

func TestParseThemeFile(t *testing.T) {
	file, err := dsl.ParseString(sampleTheme)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(file.Themes) != 2 {
		t.Fatalf("expected 2 themes, got %d", len(file.Themes))
	}

	dusk := file.Themes[0]
	if dusk.Name != "Dusk" || dusk.Extends != "chronicle" {
		t.Fatalf("unexpected header: name=%s extends=%s", dusk.Name, dusk.Extends)
	}

	page := dusk.Body.Lookup("page", "")
	if page == nil || page.Block == nil {
		t.Fatalf("page section missing")
	}
	if got := page.Block.Lookup("margin", "").Value.Raw(); got != "20mm" {
		t.Fatalf("margin = %q, want 20mm", got)
	}
	if got := page.Block.Lookup("line-height", "").Value.Raw(); got != "1.5x" {
		t.Fatalf("line-height = %q, want 1.5x", got)
	}
	if got := page.Block.Lookup("image-fit", "").Value.Raw(); got != "stretch" {
		t.Fatalf("image-fit = %q, want stretch", got)
	}

	colors := dusk.Body.Lookup("colors", "")
	if got := colors.Block.Lookup("background", "").Value.Raw(); got != "#101820" {
		t.Fatalf("background = %q, want #101820", got)
	}
	if got := colors.Block.Lookup("spine", "").Value.Raw(); got != "#ccc" {
		t.Fatalf("spine = %q, want #ccc", got)
	}

	body := dusk.Body.Lookup("font", "body")
	if body == nil || body.Qualifier != "body" {
		t.Fatalf("font body section missing: %+v", body)
	}
	if got := body.Block.Lookup("size", "").Value.Raw(); got != "15pt" {
		t.Fatalf("font size = %q, want 15pt", got)
	}

	labels := dusk.Body.Lookup("labels", "")
	if got := labels.Block.Lookup("folio", "").Value.Raw(); got != "FOLIO ${page} / ${total}" {
		t.Fatalf("folio label = %q", got)
	}

	plain := file.Themes[1]
	if plain.Extends != "" {
		t.Fatalf("Plain should not extend anything, got %q", plain.Extends)
	}
	if got := plain.Body.Lookup("border", "").Block.Lookup("enabled", "").Value.Raw(); got != "false" {
		t.Fatalf("border.enabled = %q, want false", got)
	}
}

func TestParseNegativeNumber(t *testing.T) {
	file, err := dsl.ParseString(`theme Bad { page { margin: -4mm } }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	got := file.Themes[0].Body.Lookup("page", "").Block.Lookup("margin", "").Value.Raw()
	if got != "-4mm" {
		t.Fatalf("margin = %q, want -4mm", got)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	if _, err := dsl.ParseString(`theme Broken { page { margin 4mm }`); err == nil {
		t.Fatalf("expected parse error")
	}
}
