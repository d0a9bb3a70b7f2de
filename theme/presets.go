package theme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ByLCY/chronicle/layout"
)

// DefaultName 是未指定主题时使用的预设。
const DefaultName = "chronicle"

// Chronicle 复刻原始导出样式：深色封面、金色内框、角落页码。
func Chronicle() *Theme {
	return &Theme{
		Name:        "chronicle",
		Margin:      25,
		TitleMargin: 30,
		FolioTop:    16,
		BodyTop:     39,
		SpineWidth:  1,
		LineHeight:  layout.Factor(1.6),
		ImageFit:    layout.ImageCover,
		Colors: Palette{
			Background:  layout.RGB(15, 23, 42),
			Border:      layout.RGB(199, 153, 0),
			Title:       layout.RGB(255, 255, 255),
			Subtitle:    layout.RGB(100, 116, 139),
			Branding:    layout.RGB(100, 116, 139),
			Paper:       layout.RGB(254, 253, 251),
			Spine:       layout.RGB(220, 220, 220),
			Folio:       layout.RGB(180, 180, 180),
			Body:        layout.RGB(30, 41, 59),
			PageNumber:  layout.RGB(210, 210, 210),
			Placeholder: layout.RGB(241, 245, 249),
		},
		Fonts: FontSet{
			Title:      layout.FontSpec{Family: "go", Style: layout.FontBold, Size: 54},
			Subtitle:   layout.FontSpec{Family: "go", Style: layout.FontItalic, Size: 24},
			Branding:   layout.FontSpec{Family: "go", Style: layout.FontRegular, Size: 9},
			Folio:      layout.FontSpec{Family: "go", Style: layout.FontBold, Size: 10},
			Body:       layout.FontSpec{Family: "go", Style: layout.FontRegular, Size: 16},
			PageNumber: layout.FontSpec{Family: "go", Style: layout.FontRegular, Size: 11},
		},
		Labels: Labels{
			Subtitle:   "A ${story.genre} Legend forged in Mythos",
			Folio:      "FOLIO ${page} OF ${total}",
			PageNumber: "${page}",
		},
		Border:     Border{Enabled: true, Inset: 15, Width: 0.5},
		PageNumber: PageNumber{Anchor: AnchorBottomRight, Inset: 15},
	}
}

// Parchment 是暖色纸张风格：小型大写标题、居中的装饰页码。
func Parchment() *Theme {
	return &Theme{
		Name:        "parchment",
		Margin:      22,
		TitleMargin: 35,
		FolioTop:    18,
		BodyTop:     40,
		SpineWidth:  0.6,
		LineHeight:  layout.Factor(1.5),
		ImageFit:    layout.ImageCover,
		Colors: Palette{
			Background:  layout.RGB(244, 236, 216),
			Border:      layout.RGB(120, 84, 48),
			Title:       layout.RGB(74, 48, 26),
			Subtitle:    layout.RGB(133, 102, 70),
			Branding:    layout.RGB(150, 120, 90),
			Paper:       layout.RGB(250, 244, 230),
			Spine:       layout.RGB(196, 178, 148),
			Folio:       layout.RGB(160, 136, 104),
			Body:        layout.RGB(58, 42, 28),
			PageNumber:  layout.RGB(133, 102, 70),
			Placeholder: layout.RGB(232, 222, 200),
		},
		Fonts: FontSet{
			Title:      layout.FontSpec{Family: "go-smallcaps", Style: layout.FontRegular, Size: 48},
			Subtitle:   layout.FontSpec{Family: "go", Style: layout.FontItalic, Size: 20},
			Branding:   layout.FontSpec{Family: "go-smallcaps", Style: layout.FontRegular, Size: 9},
			Folio:      layout.FontSpec{Family: "go", Style: layout.FontBold, Size: 9},
			Body:       layout.FontSpec{Family: "go", Style: layout.FontRegular, Size: 15},
			PageNumber: layout.FontSpec{Family: "go", Style: layout.FontItalic, Size: 11},
		},
		Labels: Labels{
			Subtitle:   "A ${story.mood} ${story.genre} Tale",
			Branding:   "Mythos Personal Archives",
			Folio:      "FOLIO ${page} / ${total}",
			PageNumber: "— ${page} —",
		},
		Border:     Border{Enabled: true, Inset: 12, Width: 0.8},
		PageNumber: PageNumber{Anchor: AnchorBottomCenter, Inset: 14},
	}
}

// Minimal 去掉封面装饰，正文更紧凑。
func Minimal() *Theme {
	return &Theme{
		Name:        "minimal",
		Margin:      18,
		TitleMargin: 25,
		FolioTop:    14,
		BodyTop:     30,
		SpineWidth:  0.3,
		LineHeight:  layout.Factor(1.4),
		ImageFit:    layout.ImageCover,
		Colors: Palette{
			Background:  layout.RGB(255, 255, 255),
			Border:      layout.RGB(0, 0, 0),
			Title:       layout.RGB(17, 17, 17),
			Subtitle:    layout.RGB(120, 120, 120),
			Branding:    layout.RGB(160, 160, 160),
			Paper:       layout.RGB(255, 255, 255),
			Spine:       layout.RGB(230, 230, 230),
			Folio:       layout.RGB(170, 170, 170),
			Body:        layout.RGB(34, 34, 34),
			PageNumber:  layout.RGB(170, 170, 170),
			Placeholder: layout.RGB(238, 238, 238),
		},
		Fonts: FontSet{
			Title:      layout.FontSpec{Family: "go", Style: layout.FontBold, Size: 40},
			Subtitle:   layout.FontSpec{Family: "go", Style: layout.FontRegular, Size: 16},
			Branding:   layout.FontSpec{Family: "go", Style: layout.FontRegular, Size: 8},
			Folio:      layout.FontSpec{Family: "go-mono", Style: layout.FontBold, Size: 8},
			Body:       layout.FontSpec{Family: "go", Style: layout.FontRegular, Size: 13},
			PageNumber: layout.FontSpec{Family: "go-mono", Style: layout.FontRegular, Size: 9},
		},
		Labels: Labels{
			Subtitle:   "${story.genre|lower} · ${story.mood|lower}",
			Folio:      "${page|roman|upper} / ${total}",
			PageNumber: "${page}",
		},
		PageNumber: PageNumber{Anchor: AnchorBottomRight, Inset: 10},
	}
}

var presets = map[string]func() *Theme{
	"chronicle": Chronicle,
	"parchment": Parchment,
	"minimal":   Minimal,
}

// Names 返回所有预设名称（已排序）。
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset 按名称返回预设主题的新副本；空名称返回默认预设。
func Preset(name string) (*Theme, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultName
	}
	build, ok := presets[key]
	if !ok {
		return nil, fmt.Errorf("未知主题 %q（可用: %s）", name, strings.Join(Names(), ", "))
	}
	return build(), nil
}
