package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Zuo-Peng/chatlens/internal/search"
	"github.com/Zuo-Peng/chatlens/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorCyan    = "\033[1;36m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func searchCmd() *cobra.Command {
	var runID, author, since string
	var limit int
	var perAuthor bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across stored chat runs",
		Long: `Search stored messages using FTS5. Output is TSV for fzf integration:
  runId, msgId, timestamp, author, chat, snippet

Recommended shell function (add to .zshrc):
  lensf() {
    lens search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'lens preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --preview-debounce=150 \
      --bind 'enter:execute(lens open {1} --hit {2})'
  }`,
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

			opts := search.Options{
				Author:    author,
				Since:     since,
				Limit:     limit,
				PerAuthor: perAuthor,
			}
			if runID != "" {
				run, err := resolveRun(db, runID)
				if err != nil {
					return err
				}
				opts.RunID = run.RunID
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				// first two fields (runID, msgID) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s%s%s\t%s\t%s\n",
					r.RunID,
					r.MsgID,
					sColorDim, r.Timestamp, sColorReset,
					sColorCyan, flatten(r.Author), sColorReset,
					flatten(r.ChatName),
					colorizeSnippet(flatten(r.Snippet)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Restrict to one run (id or unique prefix)")
	cmd.Flags().StringVar(&author, "author", "", "Filter by author")
	cmd.Flags().StringVar(&since, "since", "", "Filter messages sent since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")
	cmd.Flags().BoolVar(&perAuthor, "per-author", false, "Keep only the best hit per author")

	return cmd
}
