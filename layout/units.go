package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for length and line-height.

// Unit represents the original unit of a length value as written in a theme file.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// String returns the unit suffix, empty for UnitNone.
func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// String formats the length the way it is written in a theme file, e.g. "12pt".
func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'g', -1, 64) + l.Unit.String()
}

// To converts this length to target unit. Supported targets: UnitMM, UnitPT.
// A unit-less length is returned as-is; callers decide what a bare number means.
func (l Length) To(target Unit) float64 {
	var mm float64
	switch l.Unit {
	case UnitMM:
		mm = l.Value
	case UnitCM:
		mm = l.Value * 10
	case UnitIN:
		mm = l.Value * 25.4
	case UnitPT:
		if target == UnitPT {
			return l.Value
		}
		return l.Value * PtToMm
	default:
		return l.Value
	}
	if target == UnitPT {
		return mm * MmToPt
	}
	return mm
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

// ParseLength parses a length string such as "12pt", "2.5cm" or "-3mm", preserving its unit.
// The boolean reports whether the numeric part was valid.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec is either a factor of the font size (1.6x) or an absolute length (24pt).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// Factor returns a factor-based line height.
func Factor(f float64) LineHeightSpec {
	return LineHeightSpec{Kind: LineHeightFactor, Factor: f}
}

// ParseLineHeight accepts "1.6", "1.6x" or an absolute length such as "9mm".
func ParseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if strings.HasSuffix(v, "x") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64)
		if err != nil {
			return LineHeightSpec{}, false
		}
		return Factor(f), true
	}
	l, ok := ParseLength(v)
	if !ok {
		return LineHeightSpec{}, false
	}
	if l.Unit == UnitNone {
		return Factor(l.Value), true
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
}

// Resolve computes the absolute line height in target unit for a font size given in points.
func (s LineHeightSpec) Resolve(fontSizePt float64, target Unit) float64 {
	size := Length{Value: fontSizePt, Unit: UnitPT}
	switch s.Kind {
	case LineHeightFactor:
		return size.To(target) * s.Factor
	case LineHeightAbsolute:
		return s.Len.To(target)
	default:
		return size.To(target) * 1.4
	}
}

// Positive reports whether s yields a usable, strictly positive line height.
func (s LineHeightSpec) Positive() bool {
	switch s.Kind {
	case LineHeightFactor:
		return s.Factor > 0
	case LineHeightAbsolute:
		return s.Len.Value > 0
	default:
		return false
	}
}

// Size is a physical page size in millimeters.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Landscape returns the size with the longer edge horizontal.
func (s Size) Landscape() Size {
	if s.Height > s.Width {
		return Size{Width: s.Height, Height: s.Width}
	}
	return s
}

var (
	A4     = Size{Width: 210, Height: 297}
	A5     = Size{Width: 148, Height: 210}
	Letter = Size{Width: 215.9, Height: 279.4}
)

// PageSize looks up a named paper size (a4, a5, letter) in portrait orientation.
func PageSize(name string) (Size, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "a4":
		return A4, true
	case "a5":
		return A5, true
	case "letter":
		return Letter, true
	default:
		return Size{}, false
	}
}
