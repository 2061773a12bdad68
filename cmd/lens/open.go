package main

import (
	"github.com/Zuo-Peng/chatlens/internal/open"
	"github.com/spf13/cobra"
)

func openCmd() *cobra.Command {
	var hitMsgID int

	cmd := &cobra.Command{
		Use:   "open <run>",
		Short: "Open the source export file in $EDITOR at the hit message",
		Args:  cobra.ExactArgs(1),
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

			run, err := resolveRun(db, args[0])
			if err != nil {
				return err
			}
			return open.OpenMessage(db, run.RunID, hitMsgID)
		},
	}

	cmd.Flags().IntVar(&hitMsgID, "hit", -1, "Message ID to jump to")
	_ = cmd.MarkFlagRequired("hit")

	return cmd
}
