package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Zuo-Peng/chatlens/internal/aggregate"
	"github.com/Zuo-Peng/chatlens/internal/config"
	"github.com/Zuo-Peng/chatlens/internal/errs"
	"github.com/Zuo-Peng/chatlens/internal/profile"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newAnalyst(cfg *config.Config, log *slog.Logger, language string) (*profile.Analyst, error) {
	if cfg.Analyst.APIKey == "" {
		return nil, fmt.Errorf("analyst api key is not set (CHATLENS_ANALYST_API_KEY or [analyst] api_key)")
	}
	return &profile.Analyst{
		Client:   profile.NewHTTPClient(cfg.Analyst.BaseURL, cfg.Analyst.APIKey, cfg.Analyst.Timeout),
		Model:    cfg.Analyst.Model,
		Language: language,
		Log:      log,
	}, nil
}

func lookupAuthor(ds *aggregate.Dataset, name string) (*aggregate.UserProfile, error) {
	u, ok := ds.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (authors: %v)", errs.ErrAuthorNotFound, name, ds.Authors())
	}
	return u, nil
}

func writeValue(w io.Writer, v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func profileCmd() *cobra.Command {
	var author, format, language string

	cmd := &cobra.Command{
		Use:   "profile <paths...>",
		Short: "Ask the configured model for an author's personality portrait",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			user, err := lookupAuthor(ds, author)
			if err != nil {
				return err
			}

			p, err := analyst.AnalyzeUser(cmd.Context(), user, ds.ChatName)
			if err != nil {
				return fmt.Errorf("profile %s: %w", author, err)
			}
			return writeValue(os.Stdout, p, format)
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "Author to profile")
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (json/yaml)")
	cmd.Flags().StringVar(&language, "language", "", "Answer language (default English)")
	_ = cmd.MarkFlagRequired("author")

	return cmd
}
