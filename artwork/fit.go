package artwork

import (
	"image"

	"golang.org/x/image/draw"
)

// Crop 居中裁切 img，使其宽高比等于 aspect（宽/高）。aspect 非正时原样返回。
func Crop(img image.Image, aspect float64) image.Image {
	if img == nil || aspect <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return img
	}
	cw, ch := w, h
	if float64(w)/float64(h) > aspect {
		cw = int(float64(h)*aspect + 0.5)
	} else {
		ch = int(float64(w)/aspect + 0.5)
	}
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}
	if cw == w && ch == h {
		return img
	}
	x0 := b.Min.X + (w-cw)/2
	y0 := b.Min.Y + (h-ch)/2
	rect := image.Rect(x0, y0, x0+cw, y0+ch)
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect)
	}
	dst := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}

// Resample 把 img 缩放到 w×h 像素（不保持宽高比）。
func Resample(img image.Image, w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
