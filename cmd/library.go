package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ByLCY/chronicle/store"
	"github.com/ByLCY/chronicle/story"
)

// withStore 打开故事库，执行 fn 后关闭。
func (a *app) withStore(fn func(*store.Store) error) error {
	db, err := store.Open(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func (a *app) importCmd() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <story.json>...",
		Short: "把故事 JSON 导入故事库",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(db *store.Store) error {
				for _, path := range args {
					st, err := story.LoadFile(path)
					if err != nil {
						return err
					}
					put := db.Create
					if replace {
						put = db.Put
					}
					id, err := put(cmd.Context(), st)
					if err != nil {
						return fmt.Errorf("导入 %s 失败: %w", path, err)
					}
					a.logger.Printf("导入 %s：%q，%d 页", path, st.Title, len(st.Pages))
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "覆盖 id 相同的故事")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var favorites bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "列出故事库中的故事，最新的在前",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(db *store.Store) error {
				items, err := db.List(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tGENRE\tPAGES\tCREATED\t")
				for _, it := range items {
					if favorites && !it.IsFavorite {
						continue
					}
					star := ""
					if it.IsFavorite {
						star = "★"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
						it.ID, it.Title, it.Genre, it.Pages, it.CreatedAt.Local().Format("2006-01-02 15:04"), star)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&favorites, "favorites", false, "只列出收藏的故事")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "从故事库删除故事",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(db *store.Store) error {
				for _, id := range args {
					if err := db.Delete(cmd.Context(), id); err != nil {
						return err
					}
					a.logger.Printf("已删除 %s", id)
				}
				return nil
			})
		},
	}
}

func (a *app) favoriteCmd() *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "favorite <id>",
		Short: "收藏一个故事（--off 取消）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(db *store.Store) error {
				return db.SetFavorite(cmd.Context(), args[0], !off)
			})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "取消收藏")
	return cmd
}
