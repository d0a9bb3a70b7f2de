package canvasrenderer

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/chronicle/artwork"
	"github.com/ByLCY/chronicle/fonts"
	"github.com/ByLCY/chronicle/layout"
	"github.com/ByLCY/chronicle/renderer"
)

// DefaultDPMM 是插图栅格化的默认分辨率（约 150 dpi）。
const DefaultDPMM = 6.0

// Backend draws pages via github.com/tdewolff/canvas and writes PDF.
type Backend struct {
	dpmm float64

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var _ renderer.Backend = (*Backend)(nil)

// Options configures the canvas backend.
type Options struct {
	// DPMM 是插图重采样的像素密度（像素/毫米），<=0 时使用 DefaultDPMM。
	DPMM float64
}

// New creates a canvas backend. Font families are loaded lazily and shared across documents.
func New(opts Options) *Backend {
	if opts.DPMM <= 0 {
		opts.DPMM = DefaultDPMM
	}
	return &Backend{dpmm: opts.DPMM, fontFamilies: map[string]*canvas.FontFamily{}}
}

// Name implements renderer.Backend.
func (b *Backend) Name() string { return "canvas" }

// NewDocument implements renderer.Backend.
func (b *Backend) NewDocument(w io.Writer, opts renderer.DocumentOptions) (renderer.Document, error) {
	if w == nil {
		return nil, fmt.Errorf("输出为空")
	}
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %gx%g", opts.Size.Width, opts.Size.Height)
	}
	if _, err := b.family(fonts.Default); err != nil {
		return nil, err
	}
	for _, f := range opts.Fonts {
		if _, err := b.family(f.Family); err != nil {
			return nil, err
		}
	}
	writer := pdf.New(w, opts.Size.Width, opts.Size.Height, nil)
	meta := opts.Meta
	writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, meta.Creator)
	return &document{backend: b, writer: writer, size: opts.Size}, nil
}

type document struct {
	backend *Backend
	writer  *pdf.PDF
	size    layout.Size
	current *page
	pages   int
	closed  bool
}

// AddPage 先把上一页渲染进 PDF，再开始新的一页。
func (d *document) AddPage() (layout.Surface, error) {
	if d.closed {
		return nil, fmt.Errorf("文档已关闭")
	}
	d.flush()
	if d.pages > 0 {
		d.writer.NewPage(d.size.Width, d.size.Height)
	}
	c := canvas.New(d.size.Width, d.size.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	d.current = &page{backend: d.backend, canvas: c, ctx: ctx}
	d.pages++
	return d.current, nil
}

func (d *document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.flush()
	if err := d.writer.Close(); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return nil
}

func (d *document) flush() {
	if d.current == nil {
		return
	}
	d.current.canvas.RenderTo(d.writer)
	d.current = nil
}

type page struct {
	backend *Backend
	canvas  *canvas.Canvas
	ctx     *canvas.Context
}

var _ layout.Surface = (*page)(nil)

func (p *page) FillRect(r layout.Rect, c layout.Color) {
	if r.Empty() {
		return
	}
	p.ctx.SetFillColor(colorFromLayout(c))
	p.ctx.SetStrokeColor(canvas.Transparent)
	p.ctx.DrawPath(r.X, r.Y, canvas.Rectangle(r.W, r.H))
}

func (p *page) DrawText(x, y float64, text string, style layout.TextStyle) {
	if text == "" {
		return
	}
	face := p.backend.face(style.Font, style.Color)
	var align canvas.TextAlign
	switch style.Align {
	case layout.AlignCenter:
		align = canvas.Center
	case layout.AlignRight:
		align = canvas.Right
	default:
		align = canvas.Left
	}
	// 基线位置：以行顶部（y，mm）加上字体上升部（Ascent，mm）
	baseline := y + face.Metrics().Ascent
	p.ctx.DrawText(x, baseline, canvas.NewTextLine(face, text, align))
}

// DrawImage 按目标区域的像素尺寸重采样后绘制，使图片恰好填满 r。
func (p *page) DrawImage(r layout.Rect, img image.Image) error {
	if img == nil {
		return fmt.Errorf("图片为空")
	}
	if r.Empty() {
		return fmt.Errorf("图片区域为空: %+v", r)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("图片尺寸为零")
	}
	pw := int(math.Round(r.W * p.backend.dpmm))
	ph := int(math.Round(r.H * p.backend.dpmm))
	scaled := artwork.Resample(img, pw, ph)
	dpmm := float64(scaled.Bounds().Dx()) / r.W
	p.ctx.DrawImage(r.X, r.Y, scaled, canvas.DPMM(dpmm))
	return nil
}

func (p *page) MeasureText(text string, style layout.TextStyle) float64 {
	if text == "" {
		return 0
	}
	return p.backend.face(style.Font, style.Color).TextWidth(text)
}

func (b *Backend) face(spec layout.FontSpec, col layout.Color) *canvas.FontFace {
	family, err := b.family(spec.Family)
	if err != nil {
		// 字体族在 NewDocument 中已校验过，这里只可能是调用方绕过了主题校验。
		family, _ = b.family(fonts.Default)
	}
	return family.Face(spec.Size, colorFromLayout(col), fontStyle(spec.Style), canvas.FontNormal)
}

// family 加载并缓存一个内置字体族的全部样式。
func (b *Backend) family(name string) (*canvas.FontFamily, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = fonts.Default
	}
	b.fontMu.Lock()
	defer b.fontMu.Unlock()
	if family, ok := b.fontFamilies[key]; ok {
		return family, nil
	}
	family := canvas.NewFontFamily(key)
	for _, style := range []layout.FontStyle{layout.FontRegular, layout.FontBold, layout.FontItalic, layout.FontBoldItalic} {
		data, err := fonts.Load(key, style)
		if err != nil {
			return nil, err
		}
		if err := family.LoadFont(data, 0, fontStyle(style)); err != nil {
			return nil, fmt.Errorf("加载字体 %s %s 失败: %w", key, style, err)
		}
	}
	b.fontFamilies[key] = family
	return family, nil
}

func fontStyle(s layout.FontStyle) canvas.FontStyle {
	switch s {
	case layout.FontBold:
		return canvas.FontBold
	case layout.FontItalic:
		return canvas.FontRegular | canvas.FontItalic
	case layout.FontBoldItalic:
		return canvas.FontBold | canvas.FontItalic
	default:
		return canvas.FontRegular
	}
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
