// Package record 提供记录型后端：不生成 PDF，而是保存每一次绘制调用，
// 关闭时把页面结构写成 JSON，便于调试或可视化，也供测试断言使用。
package record

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/ByLCY/chronicle/layout"
	"github.com/ByLCY/chronicle/renderer"
)

// OpKind 标识一次绘制调用的类型。
type OpKind string

const (
	OpFill  OpKind = "fill"
	OpText  OpKind = "text"
	OpImage OpKind = "image"
)

// Op 是一次绘制调用。
type Op struct {
	Kind  OpKind           `json:"kind"`
	Rect  layout.Rect      `json:"rect,omitempty"`
	Color layout.Color     `json:"color,omitempty"`
	X     float64          `json:"x,omitempty"`
	Y     float64          `json:"y,omitempty"`
	Text  string           `json:"text,omitempty"`
	Style layout.TextStyle `json:"style,omitempty"`
	// Pixels 是绘制图片的像素尺寸。
	Pixels image.Point `json:"pixels,omitempty"`
}

// Options 配置记录型后端。
type Options struct {
	// Measure 替换默认的文本测量函数。
	Measure func(text string, style layout.TextStyle) float64
	// FailImages 让指定页（从 0 开始，含封面）的 DrawImage 返回给定错误。
	FailImages map[int]error
	// PanicImages 让指定页的 DrawImage 直接 panic。
	PanicImages map[int]bool
	// FailClose 让 Close 返回给定错误，模拟输出流写入失败。
	FailClose error
}

// DefaultMeasure 按字符数估算宽度：每个字符占半个字号。结果稳定，便于测试推算。
func DefaultMeasure(text string, style layout.TextStyle) float64 {
	return float64(utf8.RuneCountInString(text)) * style.Font.SizeMM() * 0.5
}

// Backend 记录它创建的每一个文档。
type Backend struct {
	opts Options

	mu   sync.Mutex
	docs []*Document
}

var _ renderer.Backend = (*Backend)(nil)

// New creates a recording backend.
func New(opts Options) *Backend {
	if opts.Measure == nil {
		opts.Measure = DefaultMeasure
	}
	return &Backend{opts: opts}
}

// Name implements renderer.Backend.
func (b *Backend) Name() string { return "debug" }

// NewDocument implements renderer.Backend.
func (b *Backend) NewDocument(w io.Writer, opts renderer.DocumentOptions) (renderer.Document, error) {
	if w == nil {
		return nil, fmt.Errorf("输出为空")
	}
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %gx%g", opts.Size.Width, opts.Size.Height)
	}
	doc := &Document{Size: opts.Size, Meta: opts.Meta, w: w, opts: b.opts}
	b.mu.Lock()
	b.docs = append(b.docs, doc)
	b.mu.Unlock()
	return doc, nil
}

// Last 返回最近创建的文档。
func (b *Backend) Last() *Document {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.docs) == 0 {
		return nil
	}
	return b.docs[len(b.docs)-1]
}

// Document 是记录下来的文档。
type Document struct {
	Size   layout.Size   `json:"size"`
	Meta   renderer.Meta `json:"meta"`
	Pages  []*Page       `json:"pages"`
	Closed bool          `json:"-"`

	w    io.Writer
	opts Options
}

// AddPage implements renderer.Document.
func (d *Document) AddPage() (layout.Surface, error) {
	if d.Closed {
		return nil, fmt.Errorf("文档已关闭")
	}
	p := &Page{Index: len(d.Pages), doc: d}
	d.Pages = append(d.Pages, p)
	return p, nil
}

// Close 将页面结构输出为 JSON。
func (d *Document) Close() error {
	if d.Closed {
		return nil
	}
	d.Closed = true
	if d.opts.FailClose != nil {
		return d.opts.FailClose
	}
	enc := json.NewEncoder(d.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("写入调试 JSON 失败: %w", err)
	}
	return nil
}

// Page 记录一页上的绘制调用。
type Page struct {
	Index int  `json:"index"`
	Ops   []Op `json:"ops"`

	doc *Document
}

var _ layout.Surface = (*Page)(nil)

func (p *Page) FillRect(r layout.Rect, c layout.Color) {
	p.Ops = append(p.Ops, Op{Kind: OpFill, Rect: r, Color: c})
}

func (p *Page) DrawText(x, y float64, text string, style layout.TextStyle) {
	p.Ops = append(p.Ops, Op{Kind: OpText, X: x, Y: y, Text: text, Style: style})
}

func (p *Page) DrawImage(r layout.Rect, img image.Image) error {
	if p.doc.opts.PanicImages[p.Index] {
		panic(fmt.Sprintf("page %d: image surface exploded", p.Index))
	}
	if err := p.doc.opts.FailImages[p.Index]; err != nil {
		return err
	}
	if img == nil {
		return fmt.Errorf("图片为空")
	}
	p.Ops = append(p.Ops, Op{Kind: OpImage, Rect: r, Pixels: img.Bounds().Size()})
	return nil
}

func (p *Page) MeasureText(text string, style layout.TextStyle) float64 {
	return p.doc.opts.Measure(text, style)
}

// Texts 返回本页按绘制顺序排列的全部文本。
func (p *Page) Texts() []string {
	var out []string
	for _, op := range p.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Find 返回本页所有指定类型的绘制调用。
func (p *Page) Find(kind OpKind) []Op {
	var out []Op
	for _, op := range p.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}
