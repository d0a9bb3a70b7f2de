package layout

// 该文件定义排版与渲染共用的基础类型：颜色、矩形、字体与文本样式。

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// RGB 构造颜色。
func RGB(r, g, b int) Color { return Color{R: r, G: g, B: b} }

// Rect 以毫米为单位，原点在页面左上角，Y 轴向下。
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Empty 报告矩形是否没有可绘制面积。
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// FontStyle 描述字重与斜体组合。
type FontStyle int

const (
	FontRegular FontStyle = iota
	FontBold
	FontItalic
	FontBoldItalic
)

// String 返回主题文件中使用的写法。
func (s FontStyle) String() string {
	switch s {
	case FontBold:
		return "bold"
	case FontItalic:
		return "italic"
	case FontBoldItalic:
		return "bold-italic"
	default:
		return "regular"
	}
}

// ParseFontStyle 解析 regular/bold/italic/bold-italic。
func ParseFontStyle(s string) (FontStyle, bool) {
	switch s {
	case "", "regular", "normal":
		return FontRegular, true
	case "bold":
		return FontBold, true
	case "italic":
		return FontItalic, true
	case "bold-italic", "bolditalic":
		return FontBoldItalic, true
	default:
		return FontRegular, false
	}
}

// FontSpec 指向一个内置字体族的某个样式，Size 单位为 pt。
type FontSpec struct {
	Family string    `json:"family"`
	Style  FontStyle `json:"style"`
	Size   float64   `json:"size"`
}

// SizeMM 返回以毫米表示的字号。
func (f FontSpec) SizeMM() float64 { return f.Size * PtToMm }

// Align 决定 DrawText 的 x 坐标是行的左端、中点还是右端。
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextStyle 是一次文本绘制或测量所需的全部样式。
type TextStyle struct {
	Font  FontSpec `json:"font"`
	Color Color    `json:"color"`
	Align Align    `json:"align,omitempty"`
}

// ImageFit 决定插图如何填满图片区域。
type ImageFit string

const (
	// ImageCover 先按区域宽高比居中裁切，再缩放填满。
	ImageCover ImageFit = "cover"
	// ImageStretch 直接拉伸整张图片填满区域，不保持宽高比。
	ImageStretch ImageFit = "stretch"
)
