package fpdfrenderer

import (
	"bytes"
	"image"
	"testing"

	"rsc.io/pdf"

	"github.com/ByLCY/chronicle/layout"
	"github.com/ByLCY/chronicle/renderer"
)

var body = layout.TextStyle{
	Font:  layout.FontSpec{Family: "go", Size: 12},
	Color: layout.RGB(30, 41, 59),
}

func TestWritesOnePDFPagePerAddPage(t *testing.T) {
	var buf bytes.Buffer
	doc, err := New(Options{DPMM: 1}).NewDocument(&buf, renderer.DocumentOptions{
		Size:  layout.A4.Landscape(),
		Meta:  renderer.Meta{Title: "Fpdf — Test", Author: "chronicle"},
		Fonts: []layout.FontSpec{{Family: "go-smallcaps", Size: 20}},
	})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < 4; i++ {
		s, err := doc.AddPage()
		if err != nil {
			t.Fatalf("AddPage: %v", err)
		}
		s.FillRect(layout.Rect{W: 148.5, H: 210}, layout.RGB(241, 245, 249))
		s.DrawText(200, 20, "FOLIO — café", layout.TextStyle{Font: layout.FontSpec{Family: "go", Style: layout.FontBold, Size: 10}})
		s.DrawText(280, 190, "7", layout.TextStyle{Font: layout.FontSpec{Family: "go-smallcaps", Size: 11}, Align: layout.AlignRight})
		if err := s.DrawImage(layout.Rect{W: 148.5, H: 210}, img); err != nil {
			t.Fatalf("DrawImage: %v", err)
		}
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	r, err := pdf.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read back PDF: %v", err)
	}
	if got := r.NumPage(); got != 4 {
		t.Fatalf("expected 4 pages, got %d", got)
	}
}

func TestMeasureTextMatchesFontSize(t *testing.T) {
	doc, err := New(Options{}).NewDocument(&bytes.Buffer{}, renderer.DocumentOptions{Size: layout.A5})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	s, err := doc.AddPage()
	if err != nil {
		t.Fatalf("AddPage: %v", err)
	}
	w := s.MeasureText("hello", body)
	bigger := body
	bigger.Font.Size = 24
	if w2 := s.MeasureText("hello", bigger); w <= 0 || w2 < w*1.99 || w2 > w*2.01 {
		t.Fatalf("unexpected widths %g and %g", w, w2)
	}
	unknown := body
	unknown.Font.Family = "comic"
	if s.MeasureText("hello", unknown) != w {
		t.Fatalf("unknown family should fall back to the default font")
	}
}

func TestDrawImageRejectsUnusableInput(t *testing.T) {
	doc, err := New(Options{}).NewDocument(&bytes.Buffer{}, renderer.DocumentOptions{Size: layout.A5})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	s, _ := doc.AddPage()
	if err := s.DrawImage(layout.Rect{W: 10, H: 10}, nil); err == nil {
		t.Fatalf("nil image should fail")
	}
	if err := s.DrawImage(layout.Rect{}, image.NewRGBA(image.Rect(0, 0, 2, 2))); err == nil {
		t.Fatalf("empty rect should fail")
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("document should still close cleanly: %v", err)
	}
}

func TestCloseWithoutPagesStillWritesPDF(t *testing.T) {
	var buf bytes.Buffer
	doc, err := New(Options{}).NewDocument(&buf, renderer.DocumentOptions{Size: layout.Letter})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}
