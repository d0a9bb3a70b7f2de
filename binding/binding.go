// Package binding 渲染主题中的文本模板，例如 "FOLIO ${page} OF ${total}"。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Vars 是模板可访问的数据，支持嵌套 map 与 story.genre 形式的路径。
type Vars map[string]any

// Interpolate 将文本中的 ${path.to.value|filter} 替换为 vars 中的值。
// 若路径不存在或过滤器未知，则保留原占位符。
func Interpolate(text string, vars Vars) string {
	if vars == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		parts := strings.Split(groups[1], "|")
		path := strings.TrimSpace(parts[0])
		if path == "" {
			return match
		}
		val, ok := resolvePath(map[string]any(vars), path)
		if !ok {
			return match
		}
		out := fmt.Sprint(val)
		for _, name := range parts[1:] {
			filtered, ok := applyFilter(strings.TrimSpace(name), out, val)
			if !ok {
				return match
			}
			out = filtered
		}
		return out
	})
}

// Validate 检查模板中的过滤器是否都受支持，便于在导出前尽早发现主题错误。
func Validate(text string) error {
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		parts := strings.Split(groups[1], "|")
		if strings.TrimSpace(parts[0]) == "" {
			return fmt.Errorf("模板 %q 含有空的占位符", text)
		}
		for _, name := range parts[1:] {
			if _, ok := filters[strings.TrimSpace(name)]; !ok {
				return fmt.Errorf("模板 %q 使用了未知过滤器 %q", text, strings.TrimSpace(name))
			}
		}
	}
	return nil
}

var filters = map[string]func(string, any) (string, bool){
	"upper": func(s string, _ any) (string, bool) { return strings.ToUpper(s), true },
	"lower": func(s string, _ any) (string, bool) { return strings.ToLower(s), true },
	"roman": func(s string, v any) (string, bool) {
		n, ok := toInt(v, s)
		if !ok || n <= 0 || n >= 4000 {
			return "", false
		}
		return roman(n), true
	},
}

func applyFilter(name, s string, v any) (string, bool) {
	fn, ok := filters[name]
	if !ok {
		return "", false
	}
	return fn(s, v)
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		segment = strings.TrimSpace(segment)
		switch c := current.(type) {
		case map[string]any:
			val, ok := c[segment]
			if !ok {
				return nil, false
			}
			current = val
		case Vars:
			val, ok := c[segment]
			if !ok {
				return nil, false
			}
			current = val
		default:
			return nil, false
		}
	}
	return current, true
}

func toInt(v any, s string) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		i, err := strconv.Atoi(s)
		return i, err == nil
	}
}

var romanNumerals = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

func roman(n int) string {
	var b strings.Builder
	for _, r := range romanNumerals {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}
