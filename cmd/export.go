package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ByLCY/chronicle/artwork"
	"github.com/ByLCY/chronicle/export"
	"github.com/ByLCY/chronicle/renderer"
	canvasrenderer "github.com/ByLCY/chronicle/renderer/canvas"
	fpdfrenderer "github.com/ByLCY/chronicle/renderer/fpdf"
	"github.com/ByLCY/chronicle/renderer/record"
	"github.com/ByLCY/chronicle/store"
	"github.com/ByLCY/chronicle/story"
	"github.com/ByLCY/chronicle/telemetry"
	"github.com/ByLCY/chronicle/theme"
)

func (a *app) exportCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "export [story.json]",
		Short: "把故事导出为 PDF",
		Long: "从 JSON 文件或故事库（--id）读取故事，按主题排版为一张封面加每页一张内容页的 PDF。\n" +
			"插图无法获取时使用占位色块，并在结束时报告数量。",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return a.runExport(cmd, path, id)
		},
	}
	f := cmd.Flags()
	f.StringVar(&id, "id", "", "从故事库按 id 导出")
	f.String("theme", "", "主题名称（CHRONICLE_THEME）")
	f.String("theme-file", "", "自定义主题文件（CHRONICLE_THEME_FILE）")
	f.String("backend", "", "渲染后端: canvas, fpdf, debug（CHRONICLE_BACKEND）")
	f.String("page-size", "", "纸张: a4, a5, letter，横向使用（CHRONICLE_PAGE_SIZE）")
	f.StringP("out", "o", "", "输出目录（CHRONICLE_OUTPUT_DIR）")
	f.String("suffix", "", "文件名后缀（CHRONICLE_SUFFIX）")
	f.String("asset-dir", "", "解析相对插图路径的目录（CHRONICLE_ASSET_DIR）")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, path, id string) (err error) {
	if (path == "") == (id == "") {
		return fmt.Errorf("需要且只能指定一个故事文件或 --id")
	}
	ctx := cmd.Context()

	shutdown, err := telemetry.Setup(ctx, "chronicle", Version, a.cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if serr := shutdown(ctx); serr != nil {
			a.logger.Printf("warn: 关闭链路追踪失败: %v", serr)
		}
	}()

	st, err := a.loadStory(cmd, path, id)
	if err != nil {
		return err
	}
	th, err := a.resolveTheme()
	if err != nil {
		return err
	}
	backend, err := newBackend(a.cfg.Backend)
	if err != nil {
		return err
	}

	assetDir := a.cfg.AssetDir
	if assetDir == "" && path != "" {
		assetDir = filepath.Dir(path)
	}
	retries := a.cfg.FetchRetries
	if retries == 0 {
		retries = -1
	}
	exp, err := export.New(export.Options{
		Backend:  backend,
		Loader:   artwork.NewSource(artwork.Options{BaseDir: assetDir, Timeout: a.cfg.FetchTimeout, Retries: retries}),
		PageSize: a.cfg.Size(),
		Suffix:   a.cfg.Suffix,
		Creator:  "chronicle " + Version,
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}

	name := export.FileName(st.Title, a.cfg.Suffix)
	if backend.Name() == "debug" {
		name = strings.TrimSuffix(name, ".pdf") + ".json"
	}
	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	target := filepath.Join(a.cfg.OutputDir, name)

	// 先写入同目录的临时文件，成功后再改名，失败时不留下半个文件。
	tmp, err := os.CreateTemp(a.cfg.OutputDir, ".chronicle-*")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	a.logger.Printf("导出 %q：%d 页，主题 %s，后端 %s", st.Title, len(st.Pages), th.Name, backend.Name())
	rep, err := exp.Export(ctx, st, th, tmp)
	if err != nil {
		return fmt.Errorf("导出失败: %w", err)
	}
	// CreateTemp 建出的文件只有属主可读，改回普通输出文件的权限。
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("设置 %s 权限失败: %w", target, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", target, err)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("保存 %s 失败: %w", target, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "已生成：%s（%d 页，用时 %s）\n", target, rep.Pages, rep.Elapsed.Round(time.Millisecond))
	if n := rep.Warnings(); n > 0 {
		fmt.Fprintf(out, "%d 页插图不可用，已使用占位色块\n", n)
		for _, f := range rep.ArtworkFailures {
			a.logger.Printf("warn: %v", f)
		}
	}
	return nil
}

func (a *app) loadStory(cmd *cobra.Command, path, id string) (*story.Story, error) {
	if path != "" {
		return story.LoadFile(path)
	}
	db, err := store.Open(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Get(cmd.Context(), id)
}

// resolveTheme 先在主题文件中查找，再回退到内置主题。
func (a *app) resolveTheme() (*theme.Theme, error) {
	var themes []*theme.Theme
	if a.cfg.ThemeFile != "" {
		var err error
		if themes, err = theme.LoadFile(a.cfg.ThemeFile); err != nil {
			return nil, err
		}
	}
	return theme.Find(a.cfg.Theme, themes)
}

func newBackend(name string) (renderer.Backend, error) {
	switch strings.ToLower(name) {
	case "", "canvas":
		return canvasrenderer.New(canvasrenderer.Options{}), nil
	case "fpdf":
		return fpdfrenderer.New(fpdfrenderer.Options{}), nil
	case "debug":
		return record.New(record.Options{}), nil
	default:
		return nil, fmt.Errorf("未知的渲染后端 %q", name)
	}
}
