package artwork

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLoadDataURL(t *testing.T) {
	data := pngBytes(t, 8, 4)
	src := NewSource(Options{})
	img, err := src.Load(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestLoadEmptyRefMeansNoImage(t *testing.T) {
	img, err := NewSource(Options{}).Load(context.Background(), "  ")
	if img != nil || err != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", img, err)
	}
}

func TestLoadCorruptDataURL(t *testing.T) {
	src := NewSource(Options{})
	if _, err := src.Load(context.Background(), "data:image/png;base64,bm90IGFuIGltYWdl"); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := src.Load(context.Background(), "data:image/png;base64,%%%"); err == nil {
		t.Fatalf("expected base64 error")
	}
}

func TestParseDataURLPercentEncoded(t *testing.T) {
	out, err := ParseDataURL("data:text/plain,hello%20world")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if string(out) != "hello world" {
		t.Fatalf("payload = %q", out)
	}
	if _, err := ParseDataURL("data:image/png;base64"); err == nil {
		t.Fatalf("expected error without comma")
	}
}

func TestLoadUnsupportedScheme(t *testing.T) {
	_, err := NewSource(Options{}).Load(context.Background(), "ftp://example.com/a.png")
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource, got %v", err)
	}
}

func TestLoadLocalFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "art.png"), pngBytes(t, 3, 3), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src := NewSource(Options{BaseDir: dir})
	if _, err := src.Load(context.Background(), "art.png"); err != nil {
		t.Fatalf("relative path: %v", err)
	}
	if _, err := src.Load(context.Background(), "file://"+filepath.ToSlash(filepath.Join(dir, "art.png"))); err != nil {
		t.Fatalf("file url: %v", err)
	}
	if _, err := src.Load(context.Background(), "missing.png"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadHTTP(t *testing.T) {
	data := pngBytes(t, 5, 7)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/art.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	src := NewSource(Options{Timeout: 2 * time.Second, Retries: -1})
	img, err := src.Load(context.Background(), srv.URL+"/art.png")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 5 || b.Dy() != 7 {
		t.Fatalf("unexpected bounds %v", b)
	}
	if _, err := src.Load(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestLoadHTTPRetriesServerErrors(t *testing.T) {
	data := pngBytes(t, 2, 2)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	src := NewSource(Options{Timeout: 2 * time.Second, Retries: 2})
	if _, err := src.Load(context.Background(), srv.URL); err != nil {
		t.Fatalf("load after retry: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
}

func TestLoadHTTPHonoursCancelledContext(t *testing.T) {
	data := pngBytes(t, 2, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSource(Options{Retries: -1}).Load(ctx, srv.URL); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestLoadRejectsOversizedImage(t *testing.T) {
	data := pngBytes(t, 16, 16)
	src := NewSource(Options{MaxBytes: 10})
	if _, err := src.Load(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(data)); err == nil {
		t.Fatalf("expected size limit error")
	}
}

func TestLoadHTTPStopsReadingAtByteLimit(t *testing.T) {
	const total = 64 << 20
	var sent atomic.Int64
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(done)
		w.Header().Set("Content-Type", "image/png")
		chunk := make([]byte, 64<<10)
		for sent.Load() < total {
			n, err := w.Write(chunk)
			sent.Add(int64(n))
			if err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	src := NewSource(Options{MaxBytes: 1 << 20, Retries: -1, Timeout: 10 * time.Second})
	_, err := src.Load(context.Background(), srv.URL)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("server kept streaming after the client gave up")
	}
	if n := sent.Load(); n >= total {
		t.Fatalf("client read the whole %d byte body", n)
	}
}

func TestLoadLocalFileByteLimit(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "big.png"), pngBytes(t, 16, 16), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src := NewSource(Options{BaseDir: dir, MaxBytes: 10})
	if _, err := src.Load(context.Background(), "big.png"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestLoadRejectsTooManyPixels(t *testing.T) {
	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 300, 200))
	if _, err := NewSource(Options{MaxPixels: 10_000}).Load(context.Background(), ref); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	img, err := NewSource(Options{}).Load(context.Background(), ref)
	if err != nil {
		t.Fatalf("default pixel cap should accept 300x200: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 200 {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestDecodeLimitedChecksHeaderOnly(t *testing.T) {
	// 只有头部的 PNG：DecodeConfig 能读出尺寸，完整解码会失败。
	data := pngBytes(t, 400, 400)[:33]
	if _, _, err := DecodeLimited(data, 1000); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("oversized header should be rejected before decoding, got %v", err)
	}
}

func TestCrop(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 100))
	wide := Crop(img, 2)
	if b := wide.Bounds(); b.Dx() != 200 || b.Dy() != 100 || b.Min.X != 100 {
		t.Fatalf("crop to 2:1 gave %v", b)
	}
	tall := Crop(image.NewRGBA(image.Rect(0, 0, 100, 400)), 1)
	if b := tall.Bounds(); b.Dx() != 100 || b.Dy() != 100 || b.Min.Y != 150 {
		t.Fatalf("crop to 1:1 gave %v", b)
	}
	if same := Crop(img, 4); same != image.Image(img) {
		t.Fatalf("matching aspect should return source unchanged")
	}
	if Crop(nil, 1) != nil {
		t.Fatalf("nil image should stay nil")
	}
}

func TestCropWithoutSubImage(t *testing.T) {
	src := opaqueImage{image.NewRGBA(image.Rect(0, 0, 30, 10))}
	got := Crop(src, 1)
	if b := got.Bounds(); b.Dx() != 10 || b.Dy() != 10 {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestResample(t *testing.T) {
	out := Resample(image.NewRGBA(image.Rect(0, 0, 50, 20)), 10, 30)
	if b := out.Bounds(); b.Dx() != 10 || b.Dy() != 30 {
		t.Fatalf("unexpected bounds %v", b)
	}
	if b := Resample(image.NewRGBA(image.Rect(0, 0, 5, 5)), 0, 0).Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Fatalf("degenerate target should clamp to 1x1, got %v", b)
	}
}

// opaqueImage hides SubImage so Crop must copy pixels.
type opaqueImage struct{ img *image.RGBA }

func (o opaqueImage) ColorModel() color.Model { return o.img.ColorModel() }
func (o opaqueImage) Bounds() image.Rectangle { return o.img.Bounds() }
func (o opaqueImage) At(x, y int) color.Color { return o.img.At(x, y) }
