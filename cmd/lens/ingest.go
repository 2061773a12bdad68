package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/render"
	"github.com/spf13/cobra"
)

func ingestCmd() *cobra.Command {
	var format string
	var store bool
	var top, keep int

	cmd := &cobra.Command{
		Use:   "ingest <paths...>",
		Short: "Parse chat exports and print per-author statistics",
		Long: `Parse one chat export (WhatsApp .txt, Telegram .html pages or Telegram result.json),
merge and deduplicate its messages and aggregate them per author.

Paths may be files, directories or doublestar patterns such as 'export/**/*.html'.
Numbered Telegram pages (messages.html, messages2.html, ...) are read in numeric order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			ds, err := ingestArgs(cmd.Context(), cfg, log, args)
			if err != nil {
				return err
			}

			if store {
				db, err := openStore(cfg, log)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := db.SaveDataset(ds, time.Now()); err != nil {
					return fmt.Errorf("save run: %w", err)
				}
				if _, err := db.PruneRuns(keep); err != nil {
					return fmt.Errorf("prune runs: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Stored run %s\n", ds.RunID)
			}

			switch format {
			case "table":
				return render.RenderReport(os.Stdout, ds, render.ReportOptions{Top: top})
			default:
				return render.Export(os.Stdout, ds, format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format (table/json/yaml)")
	cmd.Flags().BoolVar(&store, "store", true, "Store the run for search, list and preview")
	cmd.Flags().IntVar(&top, "top", 5, "Entries per top-N list")
	cmd.Flags().IntVar(&keep, "keep", 20, "Stored runs to keep (0 = all)")

	return cmd
}
