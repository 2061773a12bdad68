package main

import (
	"fmt"

	"github.com/Zuo-Peng/chatlens/internal/render"
	"github.com/spf13/cobra"
)

func previewCmd() *cobra.Command {
	var author, query string
	var hitMsgID, context int
	var noStats bool

	cmd := &cobra.Command{
		Use:   "preview <run>",
		Short: "Preview a stored chat with context around a hit",
		Long: `Render the messages of a stored run. With --author only that author's messages are shown,
preceded by their statistics. <run> is a run id, a unique prefix or "latest".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			id := args[0]
			if id == "latest" {
				id = ""
			}
			run, err := resolveRun(db, id)
			if err != nil {
				return err
			}

			out, _, err := render.RenderAuthor(db, run.RunID, author, render.Options{
				HitMsgID: hitMsgID,
				Context:  context,
				Query:    query,
				NoStats:  noStats,
			})
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "Show only this author's messages")
	cmd.Flags().IntVar(&hitMsgID, "hit", -1, "Message ID to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after hit to show")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().BoolVar(&noStats, "no-stats", false, "Omit the author statistics header")

	return cmd
}
