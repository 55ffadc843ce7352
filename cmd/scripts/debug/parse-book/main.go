package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/bookshelf/pkg/covers"
	"github.com/shishobooks/bookshelf/pkg/mediafile"
	"github.com/shishobooks/bookshelf/pkg/scanner"
)

func main() {
	log := logger.New()

	var opts struct {
		CoversDir string `short:"c" long:"covers-dir" description:"A directory to write the cover image to" default:"tmp/covers"`
		Kind      string `short:"k" long:"kind" description:"Parse as this kind instead of guessing from the extension" choice:"epub" choice:"fb2"`
	}

	args, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}

	if len(args) != 1 {
		fmt.Println("go run ./cmd/scripts/debug/parse-book <path/to/book.{epub,fb2}>")
		os.Exit(1)
	}

	kind := mediafile.KindForPath(args[0])
	if opts.Kind != "" {
		kind = mediafile.Kind(opts.Kind)
	}

	s := scanner.New(covers.New(opts.CoversDir))
	record, err := s.ParseFile(log.WithContext(context.Background()), args[0], kind)
	if err != nil {
		log.Err(err).Fatal("parse error")
	}

	fmt.Printf("Kind: %s\nTitle: %s\nAuthor: %s\nSeries: %s\nGenre: %s\nCover: %s\nDescription:\n%s\n",
		record.Kind, record.Title, record.Author, record.Series, record.Genre, record.CoverPath, record.Description)
	if record.DescriptionHTML != "" {
		fmt.Printf("Description HTML:\n%s\n", record.DescriptionHTML)
	}
}
