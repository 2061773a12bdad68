// Package ingest runs one ingestion: read the export files, parse them with
// the matching variant, merge the timeline and aggregate it per author.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Zuo-Peng/chatlens/internal/aggregate"
	"github.com/Zuo-Peng/chatlens/internal/errs"
	"github.com/Zuo-Peng/chatlens/internal/merge"
	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/Zuo-Peng/chatlens/internal/scan"
	"golang.org/x/sync/errgroup"
)

const defaultReadConcurrency = 4

type Pipeline struct {
	Parsing         parse.Options
	Signer          merge.Signer
	Aggregator      *aggregate.Aggregator
	Log             *slog.Logger
	ReadConcurrency int
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.New(slog.DiscardHandler)
}

// Run ingests plain paths; the kind of each file is its extension.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*aggregate.Dataset, error) {
	files := make([]scan.FileInfo, len(paths))
	for i, path := range paths {
		files[i] = scan.FileInfo{Path: path, Kind: parse.Ext(path)}
	}
	return p.RunFiles(ctx, files)
}

// RunFiles ingests files found by scan.Expand.
func (p *Pipeline) RunFiles(ctx context.Context, files []scan.FileInfo) (*aggregate.Dataset, error) {
	if len(files) == 0 {
		return nil, errs.ErrNoFiles
	}
	log := p.logger()

	files = append([]scan.FileInfo(nil), files...)
	parse.SortByNumericSuffix(files, func(f scan.FileInfo) string { return f.Path })

	kinds := make([]string, len(files))
	for i, f := range files {
		kinds[i] = f.Kind
	}
	format := parse.DetectFormat(kinds)
	parser, err := parse.Select(format)
	if err != nil {
		return nil, err
	}
	log.Debug("ingest", "format", format, "files", len(files))

	inputs, err := p.read(ctx, files)
	if err != nil {
		return nil, err
	}

	opts := p.Parsing
	if opts.Log == nil {
		opts.Log = log
	}
	result, err := parser.Parse(inputs, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	signer := p.Signer
	if signer == nil {
		signer = merge.LengthSigner{}
	}
	timeline := merge.Merge(result.Messages, signer)
	log.Debug("merged timeline", "parsed", len(result.Messages), "kept", len(timeline))

	chatName := result.ChatName
	if chatName == "" {
		chatName = parse.ChatNameFromFile(files[0].Path)
	}

	ds := p.Aggregator.Aggregate(chatName, timeline)
	if len(ds.Users) == 0 {
		return nil, errs.ErrNoAuthors
	}
	ds.Format = format
	ds.Files = make([]string, len(files))
	for i, f := range files {
		ds.Files[i] = f.Path
	}

	log.Info("ingested", "chat", chatName, "format", format, "authors", len(ds.Users), "messages", len(timeline))
	return ds, nil
}

// read loads every file concurrently, keeping the order of files. The first
// failure cancels the remaining reads.
func (p *Pipeline) read(ctx context.Context, files []scan.FileInfo) ([]parse.Input, error) {
	limit := p.ReadConcurrency
	if limit <= 0 {
		limit = defaultReadConcurrency
	}

	inputs := make([]parse.Input, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(f.Path)
			if err != nil {
				return fmt.Errorf("read %s: %w", f.Path, err)
			}
			inputs[i] = parse.Input{Name: f.Path, Ext: f.Kind, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}
