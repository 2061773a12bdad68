package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Zuo-Peng/chatlens/internal/aggregate"
	"github.com/Zuo-Peng/chatlens/internal/config"
	"github.com/Zuo-Peng/chatlens/internal/index"
	"github.com/Zuo-Peng/chatlens/internal/ingest"
	"github.com/Zuo-Peng/chatlens/internal/merge"
	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/Zuo-Peng/chatlens/internal/scan"
)

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	return cfg, log, nil
}

func newPipeline(cfg *config.Config, log *slog.Logger) (*ingest.Pipeline, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	phrases, err := aggregate.NewPhraseMatcher(cfg.TrackedPhrases)
	if err != nil {
		return nil, fmt.Errorf("tracked phrases: %w", err)
	}
	return &ingest.Pipeline{
		Parsing: parse.Options{
			Dates:      parse.DateNormalizer{Location: loc},
			DatePolicy: parse.DatePolicy(cfg.DatePolicy),
			Log:        log,
		},
		Signer: merge.SignerFor(cfg.Dedup),
		Aggregator: &aggregate.Aggregator{
			InitiationGap: cfg.InitiationGap,
			Phrases:       phrases,
		},
		Log:             log,
		ReadConcurrency: cfg.ReadConcurrency,
	}, nil
}

// ingestArgs expands the command-line paths and runs the pipeline.
func ingestArgs(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string) (*aggregate.Dataset, error) {
	files, err := scan.Expand(args)
	if err != nil {
		return nil, err
	}
	p, err := newPipeline(cfg, log)
	if err != nil {
		return nil, err
	}
	return p.RunFiles(ctx, files)
}

func openStore(cfg *config.Config, log *slog.Logger) (*index.DB, error) {
	db, err := index.OpenDB(cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

// resolveRun returns the run named by id, or the latest run when id is
// empty.
func resolveRun(db *index.DB, id string) (*index.RunRow, error) {
	if id == "" {
		run, err := db.LatestRun()
		if err != nil {
			return nil, err
		}
		if run == nil {
			return nil, fmt.Errorf("no stored runs (run 'lens ingest' first)")
		}
		return run, nil
	}
	run, err := db.GetRun(id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return run, nil
}
