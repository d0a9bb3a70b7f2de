package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in     string
		wantMM float64
	}{
		{"25mm", 25},
		{"2.5cm", 25},
		{"1in", 25.4},
		{"72pt", 72 * PtToMm},
		{"-3mm", -3},
	}
	for _, tc := range cases {
		l, ok := ParseLength(tc.in)
		if !ok {
			t.Fatalf("ParseLength(%q) failed", tc.in)
		}
		if diff := math.Abs(l.ToMM() - tc.wantMM); diff > 1e-9 {
			t.Fatalf("ParseLength(%q).ToMM() = %g, want %g", tc.in, l.ToMM(), tc.wantMM)
		}
	}
	if _, ok := ParseLength("wide"); ok {
		t.Fatalf("expected invalid length to fail")
	}
}

// TestLineHeightResolve 验证行高解析：倍数与绝对值两种语义在目标单位（mm）下的解析结果。
func TestLineHeightResolve(t *testing.T) {
	factor, ok := ParseLineHeight("1.6x")
	if !ok || factor.Kind != LineHeightFactor {
		t.Fatalf("1.6x 应解析为倍数，实际: %#v", factor)
	}
	got := factor.Resolve(16, UnitMM)
	want := 16 * 1.6 * PtToMm
	if diff := math.Abs(got - want); diff > 1e-9 {
		t.Fatalf("1.6x 解析为 mm 错误: got=%g want=%g", got, want)
	}

	bare, ok := ParseLineHeight("1.2")
	if !ok || bare.Kind != LineHeightFactor || bare.Factor != 1.2 {
		t.Fatalf("bare number should be a factor, got %#v", bare)
	}

	abs, ok := ParseLineHeight("9mm")
	if !ok || abs.Kind != LineHeightAbsolute {
		t.Fatalf("9mm 应解析为绝对行高，实际: %#v", abs)
	}
	if got := abs.Resolve(16, UnitMM); math.Abs(got-9) > 1e-9 {
		t.Fatalf("9mm 行高解析错误: got=%g", got)
	}
	if (LineHeightSpec{Kind: LineHeightFactor}).Positive() {
		t.Fatalf("zero factor must not be positive")
	}
}

func TestPageSizeLandscape(t *testing.T) {
	size, ok := PageSize("A4")
	if !ok {
		t.Fatalf("a4 should be known")
	}
	land := size.Landscape()
	if land.Width != 297 || land.Height != 210 {
		t.Fatalf("A4 landscape = %+v, want 297x210", land)
	}
	if land.Landscape() != land {
		t.Fatalf("Landscape must be idempotent")
	}
	if _, ok := PageSize("tabloid"); ok {
		t.Fatalf("unknown page size should not resolve")
	}
}

func TestLengthString(t *testing.T) {
	for in, want := range map[string]string{"12pt": "12pt", "2.5cm": "2.5cm", "-3mm": "-3mm", "1.6": "1.6"} {
		l, ok := ParseLength(in)
		if !ok {
			t.Fatalf("ParseLength(%q) failed", in)
		}
		if got := l.String(); got != want {
			t.Fatalf("String() = %q, want %q", got, want)
		}
	}
}
