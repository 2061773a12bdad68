package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/chatlens/internal/index"
	"github.com/Zuo-Peng/chatlens/internal/search"
	"github.com/Zuo-Peng/chatlens/internal/tui"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var runID string
	var runs bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse the authors of a stored run",
		Long: `Opens a TUI panel showing the authors of a run sorted by message count. Type to filter by name.
Without --run the latest run is used. --runs prints the stored runs instead.`,
		Args: cobra.NoArgs,
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

			if runs {
				rows, err := db.ListRuns()
				if err != nil {
					return err
				}
				printRuns(rows)
				return nil
			}

			run, err := resolveRun(db, runID)
			if err != nil {
				return err
			}
			return tui.RunList(db, search.Options{RunID: run.RunID})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run id or unique prefix (default latest)")
	cmd.Flags().BoolVar(&runs, "runs", false, "Print stored runs and exit")

	return cmd
}

func printRuns(rows []index.RunRow) {
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No stored runs.")
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Run", "Chat", "Format", "Messages", "Files", "Created"})
	table.SetBorder(false)
	for _, r := range rows {
		table.Append([]string{
			r.RunID,
			r.ChatName,
			r.Format,
			strconv.Itoa(r.MessageCount),
			strings.Join(r.Files, ", "),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	table.Render()
}
