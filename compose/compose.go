// Package compose 把一页内容按主题绘制到 layout.Surface 上：一张封面，或一张左图右文的内容页。
package compose

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ByLCY/chronicle/artwork"
	"github.com/ByLCY/chronicle/binding"
	"github.com/ByLCY/chronicle/layout"
	"github.com/ByLCY/chronicle/story"
	"github.com/ByLCY/chronicle/theme"
)

const (
	// titleLeading 是封面标题的行距倍数。
	titleLeading = 1.15
	// 标题放不下时每次缩小到原来的 titleShrink，最小不低于主题字号的 minTitleScale。
	titleShrink   = 0.9
	minTitleScale = 0.4
)

// Composer 只读地持有主题与页面尺寸，可以被多次调用。
type Composer struct {
	theme *theme.Theme
	size  layout.Size
	upper cases.Caser
}

// New 校验主题后创建 Composer。
func New(th *theme.Theme, size layout.Size) (*Composer, error) {
	if err := th.Validate(size); err != nil {
		return nil, err
	}
	return &Composer{theme: th, size: size, upper: cases.Upper(language.Und)}, nil
}

// Theme 返回 Composer 使用的主题。
func (c *Composer) Theme() *theme.Theme { return c.theme }

// Folio 描述一张内容页。
type Folio struct {
	Number int // 从 1 开始
	Total  int
	Text   string
	Image  image.Image // 为空时绘制占位色块
}

// Heading 返回封面上显示的标题文字。
func (c *Composer) Heading(st *story.Story) string {
	return c.upper.String(strings.TrimSpace(st.Title))
}

// TitlePage 绘制封面：背景、装饰边框、大写标题、副标题与可选的页脚署名。
func (c *Composer) TitlePage(s layout.Surface, st *story.Story) {
	th := c.theme
	w, h := c.size.Width, c.size.Height
	s.FillRect(layout.Rect{W: w, H: h}, th.Colors.Background)

	if b := th.Border; b.Enabled && b.Width > 0 {
		in, bw := b.Inset, b.Width
		col := th.Colors.Border
		s.FillRect(layout.Rect{X: in, Y: in, W: w - 2*in, H: bw}, col)
		s.FillRect(layout.Rect{X: in, Y: h - in - bw, W: w - 2*in, H: bw}, col)
		s.FillRect(layout.Rect{X: in, Y: in, W: bw, H: h - 2*in}, col)
		s.FillRect(layout.Rect{X: w - in - bw, Y: in, W: bw, H: h - 2*in}, col)
	}

	vars := c.vars(st, 0, len(st.Pages))
	cx := w / 2

	// 标题块的底边落在页面中线上方，多行标题向上生长，但不越过 top。
	top, bottom := c.titleTop(), h/2-6
	titleStyle, lines, advance := c.titleBlock(s, c.Heading(st), bottom-top)
	y := max(bottom-float64(len(lines))*advance, top)
	for _, ln := range lines {
		s.DrawText(cx, y, ln.Text, titleStyle)
		y += advance
	}

	if sub := binding.Interpolate(th.Labels.Subtitle, vars); sub != "" {
		s.DrawText(cx, h/2+3, sub, layout.TextStyle{Font: th.Fonts.Subtitle, Color: th.Colors.Subtitle, Align: layout.AlignCenter})
	}
	if brand := binding.Interpolate(th.Labels.Branding, vars); brand != "" {
		bottom := th.Border.Inset
		if !th.Border.Enabled || bottom < 10 {
			bottom = 10
		}
		s.DrawText(cx, h-bottom-8-th.Fonts.Branding.SizeMM(), brand,
			layout.TextStyle{Font: th.Fonts.Branding, Color: th.Colors.Branding, Align: layout.AlignCenter})
	}
}

// titleTop 是标题块允许的最高位置：边框内侧，无边框时距页边 10mm。
func (c *Composer) titleTop() float64 {
	if b := c.theme.Border; b.Enabled && b.Width > 0 {
		return b.Inset + b.Width + 4
	}
	return 10
}

// titleBlock 折行标题；标题块高于 room 时逐步缩小字号再折行。
func (c *Composer) titleBlock(s layout.Surface, heading string, room float64) (layout.TextStyle, []layout.Line, float64) {
	th := c.theme
	style := layout.TextStyle{Font: th.Fonts.Title, Color: th.Colors.Title, Align: layout.AlignCenter}
	minSize := th.Fonts.Title.Size * minTitleScale
	for {
		lines := layout.FitLines(heading, measurer(s, style), c.size.Width-2*th.TitleMargin)
		advance := style.Font.SizeMM() * titleLeading
		if float64(len(lines))*advance <= room || style.Font.Size*titleShrink < minSize {
			return style, lines, advance
		}
		style.Font.Size *= titleShrink
	}
}

// ContentPage 绘制一张左图右文的内容页。
//
// 插图缺失时直接绘制占位色块；插图无法绘制时同样回退到占位色块，并返回该错误供调用方记录。
// 返回的错误从不表示页面不完整：正文、章节标签与页码总会被绘制。
func (c *Composer) ContentPage(s layout.Surface, st *story.Story, f Folio) error {
	th := c.theme
	w, h := c.size.Width, c.size.Height
	split := w / 2

	artErr := c.drawArtwork(s, layout.Rect{W: split, H: h}, f.Image)

	text := layout.Rect{X: split, W: w - split, H: h}
	s.FillRect(text, th.Colors.Paper)
	s.FillRect(layout.Rect{X: split, W: th.SpineWidth, H: h}, th.Colors.Spine)

	vars := c.vars(st, f.Number, f.Total)
	left := text.X + th.Margin
	if folio := binding.Interpolate(th.Labels.Folio, vars); folio != "" {
		s.DrawText(left, th.FolioTop, folio, layout.TextStyle{Font: th.Fonts.Folio, Color: th.Colors.Folio})
	}

	bodyStyle := layout.TextStyle{Font: th.Fonts.Body, Color: th.Colors.Body}
	advance := th.BodyLineAdvance()
	y := th.BodyTop
	for _, ln := range c.BodyLines(s, f.Text) {
		if ln.Text != "" {
			s.DrawText(left, y, ln.Text, bodyStyle)
		}
		y += advance
	}

	if label := binding.Interpolate(th.Labels.PageNumber, vars); label != "" {
		style := layout.TextStyle{Font: th.Fonts.PageNumber, Color: th.Colors.PageNumber}
		top := h - th.PageNumber.Inset - th.Fonts.PageNumber.SizeMM()
		switch th.PageNumber.Anchor {
		case theme.AnchorBottomCenter:
			style.Align = layout.AlignCenter
			s.DrawText(text.X+text.W/2, top, label, style)
		default:
			style.Align = layout.AlignRight
			s.DrawText(w-th.PageNumber.Inset, top, label, style)
		}
	}
	return artErr
}

// BodyLines 去掉 markdown 控制字符后按文字栏宽度折行。
func (c *Composer) BodyLines(s layout.Surface, text string) []layout.Line {
	style := layout.TextStyle{Font: c.theme.Fonts.Body, Color: c.theme.Colors.Body}
	return layout.FitLines(layout.StripMarkup(text), measurer(s, style), c.ColumnWidth())
}

// ColumnWidth 返回正文可用宽度（mm）。
func (c *Composer) ColumnWidth() float64 {
	return (c.size.Width - c.size.Width/2) - 2*c.theme.Margin
}

// drawArtwork 填满图片区域；失败时用占位色块覆盖，保证区域不会留下半张图。
func (c *Composer) drawArtwork(s layout.Surface, r layout.Rect, img image.Image) (err error) {
	if img == nil {
		s.FillRect(r, c.theme.Colors.Placeholder)
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("绘制插图时发生 panic: %v", p)
		}
		if err != nil {
			s.FillRect(r, c.theme.Colors.Placeholder)
		}
	}()
	if c.theme.ImageFit == layout.ImageCover {
		img = artwork.Crop(img, r.W/r.H)
	}
	return s.DrawImage(r, img)
}

func (c *Composer) vars(st *story.Story, page, total int) binding.Vars {
	return binding.Vars{
		"page":  page,
		"total": total,
		"title": st.Title,
		"story": map[string]any{
			"title": st.Title,
			"genre": st.Genre,
			"mood":  st.Mood,
			"style": st.Style,
		},
	}
}

func measurer(s layout.Surface, style layout.TextStyle) func(string) float64 {
	return func(text string) float64 { return s.MeasureText(text, style) }
}
