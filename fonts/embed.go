// Package fonts 提供内置字体族，渲染后端无需读取外部字体文件即可工作。
package fonts

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/chronicle/layout"
)

// Default 是主题未指定字体族时使用的字体族。
const Default = "go"

// 每个字体族按 regular/bold/italic/bold-italic 顺序登记，缺失的样式回退到同族最接近的样式。
var families = map[string][4][]byte{
	"go":           {goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF},
	"go-mono":      {gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF},
	"go-smallcaps": {gosmallcaps.TTF, gosmallcaps.TTF, gosmallcapsitalic.TTF, gosmallcapsitalic.TTF},
}

// Families 返回所有内置字体族名称（已排序）。
func Families() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has 报告字体族是否存在。
func Has(family string) bool {
	_, ok := families[normalize(family)]
	return ok
}

// Load 返回字体族某个样式的 TTF 数据。
func Load(family string, style layout.FontStyle) ([]byte, error) {
	faces, ok := families[normalize(family)]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体族 %q（可用: %s）", family, strings.Join(Families(), ", "))
	}
	if style < layout.FontRegular || style > layout.FontBoldItalic {
		style = layout.FontRegular
	}
	return faces[style], nil
}

var (
	ascentMu    sync.Mutex
	ascentCache = map[string]float64{}
)

// Ascent 返回字体上升部占字号（em）的比例，用于从行顶部推算基线。
func Ascent(family string, style layout.FontStyle) (float64, error) {
	key := fmt.Sprintf("%s|%d", normalize(family), style)
	ascentMu.Lock()
	defer ascentMu.Unlock()
	if v, ok := ascentCache[key]; ok {
		return v, nil
	}
	data, err := Load(family, style)
	if err != nil {
		return 0, err
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("解析字体 %s 失败: %w", family, err)
	}
	upem := int(f.UnitsPerEm())
	var buf sfnt.Buffer
	m, err := f.Metrics(&buf, fixed.I(upem), font.HintingNone)
	if err != nil {
		return 0, fmt.Errorf("读取字体 %s 度量失败: %w", family, err)
	}
	ratio := float64(m.Ascent) / 64 / float64(upem)
	ascentCache[key] = ratio
	return ratio, nil
}

func normalize(family string) string {
	f := strings.ToLower(strings.TrimSpace(family))
	if f == "" {
		return Default
	}
	return f
}
