package layout

import (
	"strings"
)

// Line 表示排版后的一行文本内容及其宽度（mm）。
type Line struct {
	Text  string  `json:"text"`
	Width float64 `json:"width"`
}

// FitLines 使用贪心换行把 text 拆成宽度不超过 maxWidth 的行。
//
// 单词以空白分隔；候选行（当前行 + 空格 + 下一个词）整体测量，超出则另起一行。
// 自身宽度就超过 maxWidth 的单词独占一行，不做断字。显式换行符结束当前行，
// 空行保留为空的 Line。maxWidth <= 0 时不做宽度折行。
func FitLines(text string, measure func(string) float64, maxWidth float64) []Line {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil
	}
	var lines []Line
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, Line{})
			continue
		}
		lines = appendWrapped(lines, words, measure, maxWidth)
	}
	return lines
}

func appendWrapped(lines []Line, words []string, measure func(string) float64, maxWidth float64) []Line {
	current := words[0]
	currentWidth := measure(current)
	for _, word := range words[1:] {
		candidate := current + " " + word
		w := measure(candidate)
		if maxWidth <= 0 || w <= maxWidth {
			current, currentWidth = candidate, w
			continue
		}
		lines = append(lines, Line{Text: current, Width: currentWidth})
		current, currentWidth = word, measure(word)
	}
	return append(lines, Line{Text: current, Width: currentWidth})
}
