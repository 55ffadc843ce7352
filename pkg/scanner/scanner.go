// Package scanner finds books on disk, dispatches each one to the parser for
// its kind and collects the resulting records.
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/bookshelf/pkg/covers"
	"github.com/shishobooks/bookshelf/pkg/epub"
	"github.com/shishobooks/bookshelf/pkg/errcodes"
	"github.com/shishobooks/bookshelf/pkg/fb2"
	"github.com/shishobooks/bookshelf/pkg/mediafile"
)

// ErrNoBooks is returned by Scan when no record could be extracted.
var ErrNoBooks = errors.New("no books found to process")

// ErrUnsupportedKind is returned by ParseFile for kinds without a parser.
var ErrUnsupportedKind = errors.New("unsupported kind")

// expectedMimeTypes maps each kind to the MIME type its content must detect as
// (or descend from). Files can carry any extension, so the content has the
// final say.
var expectedMimeTypes = map[mediafile.Kind]string{
	mediafile.KindEPUB: "application/zip",
	mediafile.KindZIP:  "application/zip",
	mediafile.KindFB2:  "text/plain",
}

// Result is the outcome of a scan.
type Result struct {
	Records []*mediafile.Record
	// Failed counts books that were found but couldn't be parsed.
	Failed int
	// Skipped counts files whose content didn't match their extension.
	Skipped int
}

type Scanner struct {
	saver covers.Saver
}

// New returns a Scanner writing covers through saver.
func New(saver covers.Saver) *Scanner {
	return &Scanner{saver: saver}
}

// ParseFile runs the parser for kind on the file at path.
func (s *Scanner) ParseFile(_ context.Context, path string, kind mediafile.Kind) (*mediafile.Record, error) {
	switch kind {
	case mediafile.KindEPUB:
		return epub.Parse(path, s.saver)
	case mediafile.KindFB2:
		return fb2.Parse(path, s.saver)
	default:
		return nil, errors.Wrapf(ErrUnsupportedKind, "%s", kind)
	}
}

// Scan extracts records from input, which is either a single book or archive,
// or a directory searched recursively. Files that fail to parse are logged and
// counted; only a scan without any record fails.
func (s *Scanner) Scan(ctx context.Context, input string) (*Result, error) {
	log := logger.FromContext(ctx).Data(logger.Data{"input": input})

	info, err := os.Stat(input)
	if err != nil {
		return nil, errcodes.IOFailure(err, "input path does not exist")
	}

	result := &Result{}
	paths := []string{input}
	if info.IsDir() {
		paths, err = s.collect(ctx, input, result)
		if err != nil {
			return nil, err
		}
	} else if !s.accept(ctx, input) {
		result.Skipped++
		paths = nil
	}

	log.Info("scanning files", logger.Data{"count": len(paths)})

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		records, failed := s.scanFile(ctx, path)
		result.Records = append(result.Records, records...)
		result.Failed += failed
	}

	log.Info("finished scan", logger.Data{
		"records": len(result.Records),
		"failed":  result.Failed,
		"skipped": result.Skipped,
	})

	if len(result.Records) == 0 {
		return result, errors.WithStack(ErrNoBooks)
	}
	return result, nil
}

// collect walks root and returns every file worth parsing, in lexical order.
func (s *Scanner) collect(ctx context.Context, root string, result *Result) ([]string, error) {
	paths := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WithStack(err)
		}
		if d.IsDir() {
			return nil
		}
		if mediafile.KindForPath(path) == mediafile.KindUnsupported {
			// We're only looking for certain files.
			return nil
		}
		if !s.accept(ctx, path) {
			result.Skipped++
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, errcodes.IOFailure(err, "walk input directory")
	}
	return paths, nil
}

// accept reports whether the content of path matches what its extension
// promises.
func (s *Scanner) accept(ctx context.Context, path string) bool {
	log := logger.FromContext(ctx).Data(logger.Data{"path": path})

	kind := mediafile.KindForPath(path)
	expected, ok := expectedMimeTypes[kind]
	if !ok {
		log.Warn("unsupported file type", logger.Data{"kind": kind.String()})
		return false
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		log.Err(err).Warn("can't detect the mime type of a file with a valid extension")
		return false
	}
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is(expected) {
			return true
		}
	}
	log.Warn("mime type is not expected for extension", logger.Data{"mimetype": mtype.String()})
	return false
}

// scanFile parses a single file, expanding archives into their members. It
// returns the records it produced and how many books failed.
func (s *Scanner) scanFile(ctx context.Context, path string) ([]*mediafile.Record, int) {
	log := logger.FromContext(ctx).Data(logger.Data{"path": path})

	kind := mediafile.KindForPath(path)
	if kind == mediafile.KindZIP {
		return s.scanArchive(ctx, path)
	}

	log.Info("processing file", logger.Data{"kind": kind.String()})
	record, err := s.ParseFile(ctx, path, kind)
	if err != nil {
		log.Err(err).Warn("parse failed", logger.Data{"code": string(errcodes.CodeOf(err))})
		return nil, 1
	}
	return []*mediafile.Record{record}, 0
}
