package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/chatlens/internal/config"
	"github.com/Zuo-Peng/chatlens/internal/index"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, DB, FTS5, and show stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Println("=== Config ===")
			if path, err := config.Path(); err == nil {
				if _, err := os.Stat(path); err != nil {
					fmt.Printf("  File: %s (not found, using defaults)\n", path)
				} else {
					fmt.Printf("  File: %s (OK)\n", path)
				}
			}
			loc, err := cfg.Location()
			if err != nil {
				fmt.Printf("  Timezone: %v\n", err)
			} else {
				fmt.Printf("  Timezone: %s\n", loc)
			}
			fmt.Printf("  Date policy: %s\n", cfg.DatePolicy)
			fmt.Printf("  Dedup: %s\n", cfg.Dedup)
			fmt.Printf("  Initiation gap: %s\n", cfg.InitiationGap)
			if cfg.Analyst.APIKey == "" {
				fmt.Printf("  Analyst: %s (%s, NO API KEY)\n", cfg.Analyst.BaseURL, cfg.Analyst.Model)
			} else {
				fmt.Printf("  Analyst: %s (%s)\n", cfg.Analyst.BaseURL, cfg.Analyst.Model)
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'lens ingest' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath, log)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			runCount, err := db.RunCount()
			if err != nil {
				return fmt.Errorf("count runs: %w", err)
			}
			msgCount, err := db.MessageCount()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}

			fmt.Printf("  Runs:     %d\n", runCount)
			fmt.Printf("  Messages: %d\n", msgCount)

			fmt.Println("\n=== FTS5 ===")
			var ftsCount int
			err = db.Raw().QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&ftsCount)
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == msgCount {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (messages=%d, fts=%d)\n", msgCount, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}
