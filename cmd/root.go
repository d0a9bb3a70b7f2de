// Package cmd 实现 chronicle 命令行。
package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ByLCY/chronicle/config"
)

// Version 在发布构建时通过 -ldflags 注入。
var Version = "dev"

// app 是一次命令执行共享的状态。
type app struct {
	cfg     config.Config
	verbose bool
	logger  *log.Logger
}

// 可以覆盖环境变量的字符串参数。
func (a *app) overrides() map[string]*string {
	return map[string]*string{
		"db":         &a.cfg.DBPath,
		"theme":      &a.cfg.Theme,
		"theme-file": &a.cfg.ThemeFile,
		"backend":    &a.cfg.Backend,
		"page-size":  &a.cfg.PageSize,
		"out":        &a.cfg.OutputDir,
		"suffix":     &a.cfg.Suffix,
		"asset-dir":  &a.cfg.AssetDir,
	}
}

// setup 读取环境配置，再用命令行上显式给出的参数覆盖。
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	for name, dst := range a.overrides() {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	a.cfg.Verbose = a.cfg.Verbose || a.verbose
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	a.logger = log.New(io.Discard, "", 0)
	if a.cfg.Verbose {
		a.logger = log.New(cmd.ErrOrStderr(), "chronicle: ", log.LstdFlags)
	}
	return nil
}

// NewRootCmd 创建完整的命令树。
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "chronicle",
		Short:         "把插画故事排版为 PDF",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().String("db", "", "故事数据库路径（CHRONICLE_DB）")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "输出详细日志（CHRONICLE_VERBOSE）")

	root.AddCommand(
		a.exportCmd(),
		a.importCmd(),
		a.listCmd(),
		a.deleteCmd(),
		a.favoriteCmd(),
		a.themesCmd(),
		versionCmd(),
	)
	return root
}

// Execute 运行命令行，收到中断信号时取消正在进行的导出。
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
