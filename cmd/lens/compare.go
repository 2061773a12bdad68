package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/chatlens/internal/profile"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type comparison struct {
	Profiles      map[string]profile.Profile `json:"profiles" yaml:"profiles"`
	Compatibility profile.Compatibility      `json:"compatibility" yaml:"compatibility"`
}

func compareCmd() *cobra.Command {
	var authors []string
	var format, language string

	cmd := &cobra.Command{
		Use:   "compare <paths...>",
		Short: "Profile two authors and estimate their compatibility",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(authors) != 2 || authors[0] == authors[1] {
				return fmt.Errorf("compare needs two different --author flags")
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			analyst, err := newAnalyst(cfg, log, language)
			if err != nil {
				return err
			}

			ds, err := ingestArgs(cmd.Context(), cfg, log, args)
			if err != nil {
				return err
			}
			ua, err := lookupAuthor(ds, authors[0])
			if err != nil {
				return err
			}
			ub, err := lookupAuthor(ds, authors[1])
			if err != nil {
				return err
			}

			var pa, pb profile.Profile
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() (err error) {
				pa, err = analyst.AnalyzeUser(ctx, ua, ds.ChatName)
				return err
			})
			g.Go(func() (err error) {
				pb, err = analyst.AnalyzeUser(ctx, ub, ds.ChatName)
				return err
			})
			if err := g.Wait(); err != nil {
				return fmt.Errorf("profile: %w", err)
			}

			c, err := analyst.Compare(cmd.Context(), ua, pa, ub, pb)
			if err != nil {
				return fmt.Errorf("compare: %w", err)
			}

			return writeValue(os.Stdout, comparison{
				Profiles:      map[string]profile.Profile{ua.Name: pa, ub.Name: pb},
				Compatibility: c,
			}, format)
		},
	}

	cmd.Flags().StringArrayVar(&authors, "author", nil, "Author to compare (give twice)")
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (json/yaml)")
	cmd.Flags().StringVar(&language, "language", "", "Answer language (default English)")

	return cmd
}
