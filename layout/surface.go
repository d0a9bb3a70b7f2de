package layout

import "image"

// Surface 是页面绘制所需的最小能力集合，坐标与尺寸均为毫米。
// 排版与页面合成只依赖这四个操作，测试可以用记录型实现替换真实 PDF 后端。
type Surface interface {
	// FillRect 用纯色填充矩形，不描边。
	FillRect(r Rect, c Color)
	// DrawText 绘制单行文本；y 为行顶部，x 的含义由 style.Align 决定。
	DrawText(x, y float64, text string, style TextStyle)
	// DrawImage 将图片拉伸绘制到 r，恰好填满整个矩形。
	DrawImage(r Rect, img image.Image) error
	// MeasureText 返回文本在给定样式下的宽度（mm）。
	MeasureText(text string, style TextStyle) float64
}
