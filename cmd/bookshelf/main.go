package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/shishobooks/bookshelf/pkg/config"
	"github.com/shishobooks/bookshelf/pkg/version"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	app := &cli.App{
		Name:      "bookshelf",
		Usage:     "extract metadata and covers from EPUB, FB2 and ZIP files into a catalog",
		ArgsUsage: "<file-or-directory>",
		Version:   version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: cfg.OutputPath, Usage: "report path"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: cfg.Format, Usage: "report format: html, markdown or json (default: from the output extension)"},
			&cli.StringFlag{Name: "covers-dir", Value: cfg.CoversDir, Usage: "directory extracted covers are written to"},
			&cli.StringFlag{Name: "sort", Value: cfg.SortBy, Usage: "sort by title, author, series or genre"},
			&cli.BoolFlag{Name: "reverse", Value: cfg.Reverse, Usage: "reverse the sort order"},
			&cli.BoolFlag{Name: "bibliographic", Value: cfg.BibliographicSort, Usage: "sort titles without leading articles and authors by surname"},
			&cli.StringFlag{Name: "filter-author", Usage: "only keep books whose author contains this text"},
			&cli.StringFlag{Name: "filter-series", Usage: "only keep books whose series contains this text"},
			&cli.StringFlag{Name: "filter-genre", Usage: "only keep books whose genre contains this text"},
			&cli.StringFlag{Name: "filter-title", Usage: "only keep books whose title contains this text"},
		},
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(_ *cli.Context) error {
					fmt.Println(version.Version)
					return nil
				},
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one file or directory, see --help", 2)
			}

			opts, err := optionsFromFlags(c, cfg)
			if err != nil {
				return err
			}

			id, err := uuid.NewRandom()
			if err != nil {
				return err
			}
			runLog := log.ID(id.String()).Root(logger.Data{"version": version.Version})
			ctx, cancel := context.WithCancel(runLog.WithContext(c.Context))
			defer cancel()

			graceful := signals.Setup()
			go func() {
				select {
				case <-graceful:
					runLog.Info("interrupted, stopping after the current file")
					cancel()
				case <-ctx.Done():
				}
			}()

			summary, err := run(ctx, c.Args().First(), opts)
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("bookshelf error")
	}
}
