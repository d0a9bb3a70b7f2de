package fonts

import (
	"testing"

	"github.com/ByLCY/chronicle/layout"
)

func TestLoadKnownFamilies(t *testing.T) {
	for _, family := range Families() {
		for _, style := range []layout.FontStyle{layout.FontRegular, layout.FontBold, layout.FontItalic, layout.FontBoldItalic} {
			data, err := Load(family, style)
			if err != nil {
				t.Fatalf("Load(%s, %s): %v", family, style, err)
			}
			if len(data) == 0 {
				t.Fatalf("Load(%s, %s) returned no data", family, style)
			}
		}
	}
}

func TestLoadUnknownFamily(t *testing.T) {
	if _, err := Load("comic-sans", layout.FontRegular); err == nil {
		t.Fatalf("expected unknown family error")
	}
	if Has("comic-sans") {
		t.Fatalf("Has should be false for unknown family")
	}
	if !Has("") {
		t.Fatalf("empty family should fall back to %s", Default)
	}
}

func TestAscentIsFractionOfEm(t *testing.T) {
	a, err := Ascent("go", layout.FontBold)
	if err != nil {
		t.Fatalf("Ascent: %v", err)
	}
	if a <= 0.5 || a >= 1.2 {
		t.Fatalf("ascent ratio %g outside plausible range", a)
	}
}
