// Package fpdfrenderer 使用 codeberg.org/go-pdf/fpdf 输出 PDF，作为 canvas 后端之外的另一种实现。
package fpdfrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/ByLCY/chronicle/artwork"
	"github.com/ByLCY/chronicle/fonts"
	"github.com/ByLCY/chronicle/layout"
	"github.com/ByLCY/chronicle/renderer"
)

// DefaultDPMM 与 canvas 后端保持一致。
const DefaultDPMM = 6.0

// Options configures the fpdf backend.
type Options struct {
	DPMM float64
	// Uncompressed 关闭内容流压缩，便于直接查看 PDF 源码。
	Uncompressed bool
}

// Backend writes PDF through fpdf.
type Backend struct {
	opts Options
}

var _ renderer.Backend = (*Backend)(nil)

// New creates an fpdf backend.
func New(opts Options) *Backend {
	if opts.DPMM <= 0 {
		opts.DPMM = DefaultDPMM
	}
	return &Backend{opts: opts}
}

// Name implements renderer.Backend.
func (b *Backend) Name() string { return "fpdf" }

// NewDocument implements renderer.Backend.
func (b *Backend) NewDocument(w io.Writer, opts renderer.DocumentOptions) (renderer.Document, error) {
	if w == nil {
		return nil, fmt.Errorf("输出为空")
	}
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %gx%g", opts.Size.Width, opts.Size.Height)
	}
	// 方向取 "P"，fpdf 才会按给定的宽高使用尺寸而不交换。
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: opts.Size.Width, Ht: opts.Size.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(!b.opts.Uncompressed)
	meta := opts.Meta
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetCreator(meta.Creator, true)
	pdf.SetKeywords(strings.Join(meta.Keywords, ", "), true)

	d := &document{pdf: pdf, w: w, dpmm: b.opts.DPMM, loaded: map[string]bool{}}
	for _, f := range append([]layout.FontSpec{{Family: fonts.Default}}, opts.Fonts...) {
		if err := d.ensureFamily(f.Family); err != nil {
			return nil, err
		}
	}
	return d, nil
}

type document struct {
	pdf    *fpdf.Fpdf
	w      io.Writer
	dpmm   float64
	loaded map[string]bool
	images int
	pages  int
	closed bool
}

var _ layout.Surface = (*document)(nil)

func (d *document) AddPage() (layout.Surface, error) {
	if d.closed {
		return nil, fmt.Errorf("文档已关闭")
	}
	d.pdf.AddPage()
	if err := d.pdf.Error(); err != nil {
		return nil, fmt.Errorf("新建页面失败: %w", err)
	}
	d.pages++
	return d, nil
}

func (d *document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.pages == 0 {
		d.pdf.AddPage()
	}
	if err := d.pdf.Output(d.w); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return nil
}

func (d *document) FillRect(r layout.Rect, c layout.Color) {
	if r.Empty() {
		return
	}
	d.pdf.SetFillColor(c.R, c.G, c.B)
	d.pdf.Rect(r.X, r.Y, r.W, r.H, "F")
}

func (d *document) DrawText(x, y float64, text string, style layout.TextStyle) {
	if text == "" {
		return
	}
	family := d.useFont(style.Font)
	switch style.Align {
	case layout.AlignCenter:
		x -= d.pdf.GetStringWidth(text) / 2
	case layout.AlignRight:
		x -= d.pdf.GetStringWidth(text)
	}
	ascent, err := fonts.Ascent(family, style.Font.Style)
	if err != nil {
		ascent = 0.8
	}
	d.pdf.SetTextColor(style.Color.R, style.Color.G, style.Color.B)
	d.pdf.Text(x, y+ascent*style.Font.SizeMM(), text)
}

func (d *document) MeasureText(text string, style layout.TextStyle) float64 {
	if text == "" {
		return 0
	}
	d.useFont(style.Font)
	return d.pdf.GetStringWidth(text)
}

// DrawImage 把图片重采样到目标分辨率后以 PNG 嵌入，恰好填满 r。
func (d *document) DrawImage(r layout.Rect, img image.Image) error {
	if img == nil {
		return fmt.Errorf("图片为空")
	}
	if r.Empty() {
		return fmt.Errorf("图片区域为空: %+v", r)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("图片尺寸为零")
	}
	scaled := artwork.Resample(img, int(math.Round(r.W*d.dpmm)), int(math.Round(r.H*d.dpmm)))
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return fmt.Errorf("编码图片失败: %w", err)
	}
	d.images++
	name := fmt.Sprintf("art-%d", d.images)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opts, &buf)
	if !d.pdf.Ok() {
		err := d.pdf.Error()
		d.pdf.ClearError()
		return fmt.Errorf("嵌入图片失败: %w", err)
	}
	d.pdf.ImageOptions(name, r.X, r.Y, r.W, r.H, false, opts, 0, "")
	if !d.pdf.Ok() {
		err := d.pdf.Error()
		d.pdf.ClearError()
		return fmt.Errorf("绘制图片失败: %w", err)
	}
	return nil
}

// useFont 切换当前字体并返回实际使用的字体族。
func (d *document) useFont(spec layout.FontSpec) string {
	family := strings.ToLower(strings.TrimSpace(spec.Family))
	if family == "" || d.ensureFamily(family) != nil {
		family = fonts.Default
	}
	d.pdf.SetFont(family, styleStr(spec.Style), spec.Size)
	return family
}

func (d *document) ensureFamily(name string) error {
	family := strings.ToLower(strings.TrimSpace(name))
	if family == "" {
		family = fonts.Default
	}
	if d.loaded[family] {
		return nil
	}
	for _, style := range []layout.FontStyle{layout.FontRegular, layout.FontBold, layout.FontItalic, layout.FontBoldItalic} {
		data, err := fonts.Load(family, style)
		if err != nil {
			return err
		}
		d.pdf.AddUTF8FontFromBytes(family, styleStr(style), data)
	}
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("加载字体 %s 失败: %w", family, err)
	}
	d.loaded[family] = true
	return nil
}

func styleStr(s layout.FontStyle) string {
	switch s {
	case layout.FontBold:
		return "B"
	case layout.FontItalic:
		return "I"
	case layout.FontBoldItalic:
		return "BI"
	default:
		return ""
	}
}
