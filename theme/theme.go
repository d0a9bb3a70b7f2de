// Package theme 定义页面合成所需的全部排版参数。Theme 只是配置，不包含任何绘制逻辑。
package theme

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ByLCY/chronicle/binding"
	"github.com/ByLCY/chronicle/fonts"
	"github.com/ByLCY/chronicle/layout"
)

// ErrInvalidTheme 表示主题配置无法用于当前页面尺寸。
var ErrInvalidTheme = errors.New("invalid theme")

// Anchor 决定页码的放置位置。
type Anchor string

const (
	// AnchorBottomRight 把页码右对齐放在页面右下角。
	AnchorBottomRight Anchor = "bottom-right"
	// AnchorBottomCenter 把页码居中放在文字栏底部。
	AnchorBottomCenter Anchor = "bottom-center"
)

// Palette 保存主题用到的全部颜色。
type Palette struct {
	Background  layout.Color `json:"background"`
	Border      layout.Color `json:"border"`
	Title       layout.Color `json:"title"`
	Subtitle    layout.Color `json:"subtitle"`
	Branding    layout.Color `json:"branding"`
	Paper       layout.Color `json:"paper"`
	Spine       layout.Color `json:"spine"`
	Folio       layout.Color `json:"folio"`
	Body        layout.Color `json:"body"`
	PageNumber  layout.Color `json:"pageNumber"`
	Placeholder layout.Color `json:"placeholder"`
}

// FontSet 为每种文本角色指定字体。
type FontSet struct {
	Title      layout.FontSpec `json:"title"`
	Subtitle   layout.FontSpec `json:"subtitle"`
	Branding   layout.FontSpec `json:"branding"`
	Folio      layout.FontSpec `json:"folio"`
	Body       layout.FontSpec `json:"body"`
	PageNumber layout.FontSpec `json:"pageNumber"`
}

// All 返回主题引用的全部字体，供后端预先加载。
func (f FontSet) All() []layout.FontSpec {
	return []layout.FontSpec{f.Title, f.Subtitle, f.Branding, f.Folio, f.Body, f.PageNumber}
}

// Labels 是文本模板，占位符见 binding 包：${page}、${total}、${story.genre} 等。
type Labels struct {
	Subtitle   string `json:"subtitle"`
	Branding   string `json:"branding"`
	Folio      string `json:"folio"`
	PageNumber string `json:"pageNumber"`
}

// Border 描述封面的装饰内框。
type Border struct {
	Enabled bool    `json:"enabled"`
	Inset   float64 `json:"inset"` // mm
	Width   float64 `json:"width"` // mm
}

// PageNumber 描述页码的位置。
type PageNumber struct {
	Anchor Anchor  `json:"anchor"`
	Inset  float64 `json:"inset"` // 距页面底边（以及右下角时的右边）的距离，mm
}

// Theme 是一次导出统一使用的样式集合，单位均为毫米（字号为 pt）。
type Theme struct {
	Name string `json:"name"`

	Margin      float64 `json:"margin"`      // 文字栏左右内边距
	TitleMargin float64 `json:"titleMargin"` // 封面标题折行的左右边界
	FolioTop    float64 `json:"folioTop"`    // 章节标签的行顶部位置
	BodyTop     float64 `json:"bodyTop"`     // 正文第一行的行顶部位置
	SpineWidth  float64 `json:"spineWidth"`

	LineHeight layout.LineHeightSpec `json:"lineHeight"`
	ImageFit   layout.ImageFit       `json:"imageFit"`

	Colors     Palette    `json:"colors"`
	Fonts      FontSet    `json:"fonts"`
	Labels     Labels     `json:"labels"`
	Border     Border     `json:"border"`
	PageNumber PageNumber `json:"pageNumber"`
}

// Clone 返回一份独立副本，用于 extends 派生新主题。
func (t *Theme) Clone() *Theme {
	c := *t
	return &c
}

// BodyLineAdvance 返回正文相邻两行行顶之间的距离（mm）。
func (t *Theme) BodyLineAdvance() float64 {
	return t.LineHeight.Resolve(t.Fonts.Body.Size, layout.UnitMM)
}

// Validate 在任何绘制开始之前检查主题能否用于给定页面。
func (t *Theme) Validate(size layout.Size) error {
	var problems []string
	add := func(format string, args ...any) { problems = append(problems, fmt.Sprintf(format, args...)) }

	if t == nil {
		return fmt.Errorf("%w: 主题为空", ErrInvalidTheme)
	}
	if size.Width <= 0 || size.Height <= 0 {
		add("页面尺寸必须为正: %gx%g", size.Width, size.Height)
	}
	for _, d := range []struct {
		name string
		v    float64
	}{
		{"margin", t.Margin}, {"title-margin", t.TitleMargin}, {"folio-top", t.FolioTop},
		{"body-top", t.BodyTop}, {"spine-width", t.SpineWidth},
		{"border.inset", t.Border.Inset}, {"border.width", t.Border.Width}, {"page-number.inset", t.PageNumber.Inset},
	} {
		if d.v < 0 {
			add("%s 不能为负: %g", d.name, d.v)
		}
	}
	if !t.LineHeight.Positive() {
		add("line-height 必须为正")
	}
	if t.ImageFit != layout.ImageCover && t.ImageFit != layout.ImageStretch {
		add("未知的 image-fit %q", t.ImageFit)
	}
	if t.PageNumber.Anchor != AnchorBottomRight && t.PageNumber.Anchor != AnchorBottomCenter {
		add("未知的页码位置 %q", t.PageNumber.Anchor)
	}
	roles := []string{"title", "subtitle", "branding", "folio", "body", "page-number"}
	for i, f := range t.Fonts.All() {
		if f.Size <= 0 {
			add("font %s 字号必须为正: %g", roles[i], f.Size)
		}
		if !fonts.Has(f.Family) {
			add("font %s 使用了未知字体族 %q", roles[i], f.Family)
		}
	}
	for _, label := range []string{t.Labels.Subtitle, t.Labels.Branding, t.Labels.Folio, t.Labels.PageNumber} {
		if err := binding.Validate(label); err != nil {
			add("%v", err)
		}
	}

	if size.Width > 0 && size.Height > 0 {
		column := size.Width / 2
		if column-2*t.Margin <= 0 {
			add("文字栏可用宽度为零: 栏宽 %gmm, margin %gmm", column, t.Margin)
		}
		if size.Width-2*t.TitleMargin <= 0 {
			add("标题可用宽度为零: 页宽 %gmm, title-margin %gmm", size.Width, t.TitleMargin)
		}
		if t.BodyTop >= size.Height || t.FolioTop >= size.Height {
			add("正文或章节标签起始位置超出页面高度 %gmm", size.Height)
		}
		if t.Border.Enabled && (2*t.Border.Inset >= size.Width || 2*t.Border.Inset >= size.Height) {
			add("border.inset %gmm 超出页面", t.Border.Inset)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w %q: %s", ErrInvalidTheme, t.Name, strings.Join(problems, "; "))
	}
	return nil
}
