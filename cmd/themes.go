package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByLCY/chronicle/theme"
)

func (a *app) themesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "列出内置主题与主题文件中的主题",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, name := range theme.Names() {
				mark := ""
				if name == theme.DefaultName {
					mark = " (default)"
				}
				fmt.Fprintf(out, "%s%s\n", name, mark)
			}
			if a.cfg.ThemeFile == "" {
				return nil
			}
			themes, err := theme.LoadFile(a.cfg.ThemeFile)
			if err != nil {
				return err
			}
			for _, th := range themes {
				fmt.Fprintf(out, "%s (%s)\n", th.Name, a.cfg.ThemeFile)
			}
			return nil
		},
	}
	cmd.Flags().String("theme-file", "", "自定义主题文件（CHRONICLE_THEME_FILE）")
	return cmd
}
