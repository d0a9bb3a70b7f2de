// Package renderer 定义输出后端：导出器通过 Backend 打开文档，逐页获取绘制表面。
package renderer

import (
	"io"

	"github.com/ByLCY/chronicle/layout"
)

// Meta 是写入 PDF 文档信息字典的元数据。
type Meta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	Creator  string   `json:"creator,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// DocumentOptions 描述要创建的文档。所有页面使用同一尺寸（mm）。
type DocumentOptions struct {
	Size layout.Size
	Meta Meta
	// Fonts 列出主题会用到的字体，后端可以据此预先加载。
	Fonts []layout.FontSpec
}

// Backend 创建写入 w 的文档。
type Backend interface {
	Name() string
	NewDocument(w io.Writer, opts DocumentOptions) (Document, error)
}

// Document 按顺序产生页面。上一页的 Surface 在调用 AddPage 或 Close 之后不得再使用。
type Document interface {
	AddPage() (layout.Surface, error)
	// Close 完成文档并把剩余内容写入输出；返回错误时输出不完整。
	Close() error
}
