package layout

import "strings"

var markupStripper = strings.NewReplacer("*", "", "_", "", "#", "")

// StripMarkup 删除正文中的 markdown 控制字符 *、_、#，不解释其余语法。
func StripMarkup(text string) string {
	return markupStripper.Replace(text)
}
