package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/bookshelf/pkg/catalog"
	"github.com/shishobooks/bookshelf/pkg/config"
	"github.com/shishobooks/bookshelf/pkg/covers"
	"github.com/shishobooks/bookshelf/pkg/report"
	"github.com/shishobooks/bookshelf/pkg/scanner"
	"github.com/urfave/cli/v2"
)

type options struct {
	OutputPath string
	Format     report.Format
	CoversDir  string
	Catalog    catalog.Options
}

type summary struct {
	Processed int
	Kept      int
	Output    string
}

func (s summary) String() string {
	return fmt.Sprintf("Processed: %d books | After filtering: %d | Saved to: %s", s.Processed, s.Kept, s.Output)
}

// optionsFromFlags layers the command-line flags over cfg.
func optionsFromFlags(c *cli.Context, cfg *config.Config) (*options, error) {
	merged := *cfg
	merged.OutputPath = c.String("output")
	merged.Format = c.String("format")
	merged.CoversDir = c.String("covers-dir")
	merged.SortBy = c.String("sort")
	merged.Reverse = c.Bool("reverse")
	merged.BibliographicSort = c.Bool("bibliographic")
	if err := merged.Normalize(); err != nil {
		return nil, err
	}

	return buildOptions(&merged, catalog.Filters{
		catalog.FieldAuthor: c.String("filter-author"),
		catalog.FieldSeries: c.String("filter-series"),
		catalog.FieldGenre:  c.String("filter-genre"),
		catalog.FieldTitle:  c.String("filter-title"),
	})
}

func buildOptions(cfg *config.Config, filters catalog.Filters) (*options, error) {
	format := report.FormatForPath(cfg.OutputPath)
	if cfg.Format != "" {
		var err error
		format, err = report.ParseFormat(cfg.Format)
		if err != nil {
			return nil, err
		}
	}

	sortBy, err := catalog.ParseField(cfg.SortBy)
	if err != nil {
		return nil, err
	}

	return &options{
		OutputPath: cfg.OutputPath,
		Format:     format,
		CoversDir:  cfg.CoversDir,
		Catalog: catalog.Options{
			Filters:       filters,
			SortBy:        sortBy,
			Reverse:       cfg.Reverse,
			Bibliographic: cfg.BibliographicSort,
		},
	}, nil
}

// run scans input, filters and sorts the records and writes the report.
func run(ctx context.Context, input string, opts *options) (*summary, error) {
	log := logger.FromContext(ctx)
	log.Info("starting run", logger.Data{
		"input":      input,
		"output":     opts.OutputPath,
		"format":     string(opts.Format),
		"covers_dir": opts.CoversDir,
	})

	result, err := scanner.New(covers.New(opts.CoversDir)).Scan(ctx, input)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	records := catalog.Apply(result.Records, opts.Catalog)
	if err := report.Write(opts.OutputPath, opts.Format, records); err != nil {
		return nil, errors.WithStack(err)
	}

	log.Info("report written", logger.Data{"records": len(records), "path": opts.OutputPath})
	return &summary{Processed: len(result.Records), Kept: len(records), Output: opts.OutputPath}, nil
}
