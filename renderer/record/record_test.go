package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/ByLCY/chronicle/layout"
	"github.com/ByLCY/chronicle/renderer"
)

func TestRecordsOpsAndWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	b := New(Options{})
	d, err := b.NewDocument(&buf, renderer.DocumentOptions{Size: layout.A4.Landscape(), Meta: renderer.Meta{Title: "Dump"}})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	s, _ := d.AddPage()
	s.FillRect(layout.Rect{W: 10, H: 10}, layout.RGB(1, 2, 3))
	s.DrawText(5, 6, "hi", layout.TextStyle{Font: layout.FontSpec{Size: 10}})
	if err := s.DrawImage(layout.Rect{W: 10, H: 10}, image.NewRGBA(image.Rect(0, 0, 4, 3))); err != nil {
		t.Fatalf("DrawImage: %v", err)
	}
	if _, err := d.AddPage(); err != nil {
		t.Fatalf("AddPage: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	doc := b.Last()
	if len(doc.Pages) != 2 || len(doc.Pages[0].Ops) != 3 {
		t.Fatalf("unexpected recording: %+v", doc.Pages)
	}
	if got := doc.Pages[0].Find(OpImage)[0].Pixels; got != image.Pt(4, 3) {
		t.Fatalf("pixels = %v", got)
	}
	if got := doc.Pages[0].Texts(); len(got) != 1 || got[0] != "hi" {
		t.Fatalf("texts = %v", got)
	}

	var dump struct {
		Meta  renderer.Meta `json:"meta"`
		Pages []struct {
			Ops []Op `json:"ops"`
		} `json:"pages"`
	}
	if err := json.Unmarshal(buf.Bytes(), &dump); err != nil {
		t.Fatalf("dump is not JSON: %v", err)
	}
	if dump.Meta.Title != "Dump" || len(dump.Pages) != 2 {
		t.Fatalf("unexpected dump: %+v", dump)
	}
}

func TestDefaultMeasure(t *testing.T) {
	style := layout.TextStyle{Font: layout.FontSpec{Size: 10}}
	want := 4 * 10 * layout.PtToMm * 0.5
	if got := DefaultMeasure("abcd", style); math.Abs(got-want) > 1e-9 {
		t.Fatalf("measure = %g, want %g", got, want)
	}
}

func TestInjectedFailures(t *testing.T) {
	boom := errors.New("boom")
	b := New(Options{FailImages: map[int]error{1: boom}, PanicImages: map[int]bool{2: true}, FailClose: boom})
	d, _ := b.NewDocument(&bytes.Buffer{}, renderer.DocumentOptions{Size: layout.A5})
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))

	p0, _ := d.AddPage()
	if err := p0.DrawImage(layout.Rect{W: 1, H: 1}, img); err != nil {
		t.Fatalf("page 0 should succeed: %v", err)
	}
	p1, _ := d.AddPage()
	if err := p1.DrawImage(layout.Rect{W: 1, H: 1}, img); !errors.Is(err, boom) {
		t.Fatalf("page 1 should fail with boom, got %v", err)
	}
	p2, _ := d.AddPage()
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("page 2 should panic")
			}
		}()
		_ = p2.DrawImage(layout.Rect{W: 1, H: 1}, img)
	}()
	if err := d.Close(); !errors.Is(err, boom) {
		t.Fatalf("Close should fail with boom, got %v", err)
	}
}
