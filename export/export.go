// Package export 串联故事、主题与渲染后端，生成一份完整的插画故事 PDF。
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ByLCY/chronicle/artwork"
	"github.com/ByLCY/chronicle/compose"
	"github.com/ByLCY/chronicle/layout"
	"github.com/ByLCY/chronicle/renderer"
	"github.com/ByLCY/chronicle/story"
	"github.com/ByLCY/chronicle/theme"
)

// DefaultSuffix 是输出文件名中标题之后的固定部分。
const DefaultSuffix = "Chronicle"

// ErrInvalidStory 表示故事无法导出（例如标题为空）。
var ErrInvalidStory = story.ErrInvalid

// DefaultPageSize 是 A4 横向。
var DefaultPageSize = layout.A4.Landscape()

// Options 配置 Exporter。
type Options struct {
	Backend renderer.Backend
	// Loader 根据 ImageURL 获取插图；为空时只使用页面上已解码的 Image。
	Loader artwork.Loader
	// PageSize 为零值时使用 DefaultPageSize。
	PageSize layout.Size
	Suffix   string
	Creator  string
	Logger   *log.Logger
	Tracer   trace.Tracer
}

// Exporter 可以并发地用于多个导出，每次 Export 拥有自己的文档。
type Exporter struct {
	opts Options
}

// New 创建导出器。
func New(opts Options) (*Exporter, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("未指定渲染后端")
	}
	if opts.PageSize == (layout.Size{}) {
		opts.PageSize = DefaultPageSize
	}
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}
	if opts.Creator == "" {
		opts.Creator = "chronicle"
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("github.com/ByLCY/chronicle/export")
	}
	return &Exporter{opts: opts}, nil
}

// ArtworkFailure 记录一页插图无法使用的原因；该页已用占位色块代替。
type ArtworkFailure struct {
	Page int // 内容页序号，从 1 开始
	Err  error
}

func (f ArtworkFailure) Error() string {
	return fmt.Sprintf("第 %d 页插图: %v", f.Page, f.Err)
}

func (f ArtworkFailure) Unwrap() error { return f.Err }

// Report 描述一次成功的导出。
type Report struct {
	FileName        string
	Pages           int // 含封面
	ArtworkFailures []ArtworkFailure
	Elapsed         time.Duration
}

// Warnings 返回非致命问题的数量。
func (r *Report) Warnings() int { return len(r.ArtworkFailures) }

// Export 把故事写成 PDF：一张封面，随后每个故事页一张内容页，顺序不变。
//
// 插图问题只会让对应页面使用占位色块，不会中断导出；只有文档创建、写出失败
// 或 ctx 被取消时才返回错误，此时 w 中的内容不完整，调用方应丢弃。
func (e *Exporter) Export(ctx context.Context, st *story.Story, th *theme.Theme, w io.Writer) (rep *Report, err error) {
	start := time.Now()
	ctx, span := e.opts.Tracer.Start(ctx, "export.Export")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := st.Validate(); err != nil {
		return nil, err
	}
	comp, err := compose.New(th, e.opts.PageSize)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("story.title", st.Title),
		attribute.Int("story.pages", len(st.Pages)),
		attribute.String("theme", th.Name),
		attribute.String("backend", e.opts.Backend.Name()),
	)

	doc, err := e.opts.Backend.NewDocument(w, renderer.DocumentOptions{
		Size:  e.opts.PageSize,
		Meta:  e.meta(st),
		Fonts: th.Fonts.All(),
	})
	if err != nil {
		return nil, fmt.Errorf("创建文档失败: %w", err)
	}

	rep = &Report{FileName: FileName(st.Title, e.opts.Suffix)}
	surface, err := doc.AddPage()
	if err != nil {
		return nil, fmt.Errorf("创建封面失败: %w", err)
	}
	comp.TitlePage(surface, st)
	rep.Pages++

	total := len(st.Pages)
	for i, page := range st.Pages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("导出在第 %d 页前被取消: %w", i+1, err)
		}
		if err := e.contentPage(ctx, doc, comp, st, page, i+1, total, rep); err != nil {
			return nil, err
		}
		rep.Pages++
	}

	if err := doc.Close(); err != nil {
		return nil, fmt.Errorf("完成文档失败: %w", err)
	}
	rep.Elapsed = time.Since(start)
	span.SetAttributes(attribute.Int("export.artwork_failures", rep.Warnings()))
	return rep, nil
}

// contentPage 先获取插图，再绘制整页；插图在本页结束后即可释放。
func (e *Exporter) contentPage(ctx context.Context, doc renderer.Document, comp *compose.Composer, st *story.Story, page story.Page, n, total int, rep *Report) error {
	ctx, span := e.opts.Tracer.Start(ctx, "export.Page", trace.WithAttributes(attribute.Int("page", n)))
	defer span.End()

	img, artErr := e.acquire(ctx, page)
	surface, err := doc.AddPage()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("创建第 %d 页失败: %w", n, err)
	}
	if drawErr := comp.ContentPage(surface, st, compose.Folio{Number: n, Total: total, Text: page.Text, Image: img}); drawErr != nil {
		artErr = drawErr
	}
	if artErr != nil {
		rep.ArtworkFailures = append(rep.ArtworkFailures, ArtworkFailure{Page: n, Err: artErr})
		span.RecordError(artErr)
		e.opts.Logger.Printf("warn: 第 %d 页插图不可用，已使用占位色块: %v", n, artErr)
	}
	return nil
}

func (e *Exporter) acquire(ctx context.Context, page story.Page) (image.Image, error) {
	if page.Image != nil {
		return page.Image, nil
	}
	if strings.TrimSpace(page.ImageURL) == "" {
		return nil, nil
	}
	if e.opts.Loader == nil {
		return nil, errors.New("未配置插图加载器")
	}
	return e.opts.Loader.Load(ctx, page.ImageURL)
}

func (e *Exporter) meta(st *story.Story) renderer.Meta {
	var keywords []string
	for _, k := range []string{st.Genre, st.Mood, st.Style} {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	subject := "An illustrated story"
	if st.Genre != "" {
		subject = fmt.Sprintf("A %s legend", st.Genre)
	}
	return renderer.Meta{Title: st.Title, Subject: subject, Creator: e.opts.Creator, Keywords: keywords}
}

// ExportBytes 在内存中完成导出并返回 PDF 字节。
func (e *Exporter) ExportBytes(ctx context.Context, st *story.Story, th *theme.Theme) ([]byte, *Report, error) {
	var buf bytes.Buffer
	rep, err := e.Export(ctx, st, th, &buf)
	if err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), rep, nil
}

// 覆盖 unicode.IsSpace 认定的全部空白（含 NEL），另加 BOM。
var whitespace = regexp.MustCompile(`[\s\v\p{Z}\x{85}\x{FEFF}]+`)

// FileName 把标题中的每段连续空白替换为一个下划线，并附加 "_<suffix>.pdf"。
// 路径分隔符替换为 "-"，保证结果始终是单个文件名。
func FileName(title, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	name := whitespace.ReplaceAllString(title, "_") + "_" + whitespace.ReplaceAllString(suffix, "_") + ".pdf"
	return strings.NewReplacer("/", "-", "\\", "-").Replace(name)
}
