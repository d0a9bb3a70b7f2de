package theme

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ByLCY/chronicle/dsl"
	"github.com/ByLCY/chronicle/layout"
)

// LoadFile 读取 .theme 文件并求值其中的全部主题。
func LoadFile(path string) ([]*Theme, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开主题文件 %s: %w", path, err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse 解析主题定义。extends 可以引用预设，也可以引用同一文件中更早声明的主题。
// 每个主题都按默认页面（A4 横向）校验一次；导出时再按实际页面尺寸校验。
func Parse(r io.Reader) ([]*Theme, error) {
	file, err := dsl.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析主题文件失败: %w", err)
	}
	declared := map[string]*Theme{}
	themes := make([]*Theme, 0, len(file.Themes))
	for _, decl := range file.Themes {
		base, err := resolveBase(decl.Extends, declared)
		if err != nil {
			return nil, fmt.Errorf("%s: 主题 %s: %w", decl.Pos, decl.Name, err)
		}
		th := base.Clone()
		th.Name = decl.Name
		if err := applyBlock(th, decl.Body); err != nil {
			return nil, fmt.Errorf("主题 %s: %w", decl.Name, err)
		}
		if err := th.Validate(layout.A4.Landscape()); err != nil {
			return nil, fmt.Errorf("%s: %w", decl.Pos, err)
		}
		declared[strings.ToLower(decl.Name)] = th
		themes = append(themes, th)
	}
	return themes, nil
}

// Find 按名称在 themes 中查找，找不到时回退到预设。
func Find(name string, themes []*Theme) (*Theme, error) {
	for _, th := range themes {
		if strings.EqualFold(th.Name, name) {
			return th, nil
		}
	}
	return Preset(name)
}

func resolveBase(extends string, declared map[string]*Theme) (*Theme, error) {
	if extends == "" {
		return Preset(DefaultName)
	}
	if th, ok := declared[strings.ToLower(extends)]; ok {
		return th, nil
	}
	return Preset(extends)
}

func applyBlock(th *Theme, block *dsl.Block) error {
	if block == nil {
		return nil
	}
	for _, e := range block.Entries {
		if e.Block == nil {
			return entryError(e, "顶层只允许分组（page/colors/font/labels/border/page-number）")
		}
		var err error
		switch strings.ToLower(e.Key) {
		case "page":
			err = eachValue(e, func(key string, v *dsl.Value) error { return applyPage(th, key, v) })
		case "colors":
			err = eachValue(e, func(key string, v *dsl.Value) error { return applyColor(&th.Colors, key, v) })
		case "font":
			spec, ferr := fontRole(&th.Fonts, e.Qualifier)
			if ferr != nil {
				return entryError(e, ferr.Error())
			}
			err = eachValue(e, func(key string, v *dsl.Value) error { return applyFont(spec, key, v) })
		case "labels":
			err = eachValue(e, func(key string, v *dsl.Value) error { return applyLabel(&th.Labels, key, v) })
		case "border":
			err = eachValue(e, func(key string, v *dsl.Value) error { return applyBorder(&th.Border, key, v) })
		case "page-number":
			err = eachValue(e, func(key string, v *dsl.Value) error { return applyPageNumber(&th.PageNumber, key, v) })
		default:
			return entryError(e, fmt.Sprintf("未知分组 %q", e.Key))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func eachValue(section *dsl.Entry, fn func(key string, v *dsl.Value) error) error {
	for _, e := range section.Block.Entries {
		if e.Value == nil {
			return entryError(e, fmt.Sprintf("%s 中不允许嵌套分组", section.Key))
		}
		if err := fn(strings.ToLower(e.Key), e.Value); err != nil {
			return entryError(e, err.Error())
		}
	}
	return nil
}

func entryError(e *dsl.Entry, msg string) error {
	return fmt.Errorf("%s: %s: %s", e.Pos, e.Key, msg)
}

func applyPage(th *Theme, key string, v *dsl.Value) error {
	switch key {
	case "margin":
		return setLength(&th.Margin, v)
	case "title-margin":
		return setLength(&th.TitleMargin, v)
	case "folio-top":
		return setLength(&th.FolioTop, v)
	case "body-top":
		return setLength(&th.BodyTop, v)
	case "spine-width":
		return setLength(&th.SpineWidth, v)
	case "line-height":
		lh, ok := layout.ParseLineHeight(v.Raw())
		if !ok {
			return fmt.Errorf("无法解析行高 %q", v.Raw())
		}
		th.LineHeight = lh
		return nil
	case "image-fit":
		th.ImageFit = layout.ImageFit(strings.ToLower(v.Raw()))
		return nil
	default:
		return fmt.Errorf("未知属性")
	}
}

func applyColor(p *Palette, key string, v *dsl.Value) error {
	targets := map[string]*layout.Color{
		"background": &p.Background, "border": &p.Border, "title": &p.Title,
		"subtitle": &p.Subtitle, "branding": &p.Branding, "paper": &p.Paper,
		"spine": &p.Spine, "folio": &p.Folio, "body": &p.Body,
		"page-number": &p.PageNumber, "placeholder": &p.Placeholder,
	}
	target, ok := targets[key]
	if !ok {
		return fmt.Errorf("未知颜色")
	}
	c, err := parseColor(v.Raw())
	if err != nil {
		return err
	}
	*target = c
	return nil
}

func fontRole(f *FontSet, role string) (*layout.FontSpec, error) {
	switch strings.ToLower(role) {
	case "title":
		return &f.Title, nil
	case "subtitle":
		return &f.Subtitle, nil
	case "branding":
		return &f.Branding, nil
	case "folio":
		return &f.Folio, nil
	case "body":
		return &f.Body, nil
	case "page-number":
		return &f.PageNumber, nil
	default:
		return nil, fmt.Errorf("未知字体角色 %q", role)
	}
}

func applyFont(spec *layout.FontSpec, key string, v *dsl.Value) error {
	switch key {
	case "family":
		spec.Family = v.Raw()
		return nil
	case "style":
		style, ok := layout.ParseFontStyle(strings.ToLower(v.Raw()))
		if !ok {
			return fmt.Errorf("未知字体样式 %q", v.Raw())
		}
		spec.Style = style
		return nil
	case "size":
		l, ok := layout.ParseLength(v.Raw())
		if !ok {
			return fmt.Errorf("无法解析字号 %q", v.Raw())
		}
		if l.Unit == layout.UnitNone {
			spec.Size = l.Value
		} else {
			spec.Size = l.ToPT()
		}
		return nil
	default:
		return fmt.Errorf("未知属性")
	}
}

func applyLabel(l *Labels, key string, v *dsl.Value) error {
	switch key {
	case "subtitle":
		l.Subtitle = v.Raw()
	case "branding":
		l.Branding = v.Raw()
	case "folio":
		l.Folio = v.Raw()
	case "page-number":
		l.PageNumber = v.Raw()
	default:
		return fmt.Errorf("未知标签")
	}
	return nil
}

func applyBorder(b *Border, key string, v *dsl.Value) error {
	switch key {
	case "enabled":
		on, err := strconv.ParseBool(v.Raw())
		if err != nil {
			return fmt.Errorf("enabled 需要 true/false: %q", v.Raw())
		}
		b.Enabled = on
		return nil
	case "inset":
		return setLength(&b.Inset, v)
	case "width":
		return setLength(&b.Width, v)
	default:
		return fmt.Errorf("未知属性")
	}
}

func applyPageNumber(p *PageNumber, key string, v *dsl.Value) error {
	switch key {
	case "anchor":
		p.Anchor = Anchor(strings.ToLower(v.Raw()))
		return nil
	case "inset":
		return setLength(&p.Inset, v)
	default:
		return fmt.Errorf("未知属性")
	}
}

// setLength 接受带单位的长度；裸数字按毫米处理。
func setLength(target *float64, v *dsl.Value) error {
	l, ok := layout.ParseLength(v.Raw())
	if !ok {
		return fmt.Errorf("无法解析长度 %q", v.Raw())
	}
	if l.Value < 0 {
		return fmt.Errorf("长度不能为负数: %s", l)
	}
	*target = l.ToMM()
	return nil
}

func parseColor(value string) (layout.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 8 {
		hex = hex[:6]
	}
	if len(hex) != 6 {
		return layout.Color{}, fmt.Errorf("无效的颜色 %q", value)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return layout.Color{}, fmt.Errorf("无效的颜色 %q: %w", value, err)
	}
	return layout.RGB(int(n>>16&0xff), int(n>>8&0xff), int(n&0xff)), nil
}
