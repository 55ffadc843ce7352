package scanner

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/bookshelf/pkg/errcodes"
	"github.com/shishobooks/bookshelf/pkg/mediafile"
)

// scanArchive parses every EPUB and FB2 member of the ZIP at path, in archive
// order. Nested archives are not descended into.
func (s *Scanner) scanArchive(ctx context.Context, path string) ([]*mediafile.Record, int) {
	log := logger.FromContext(ctx).Data(logger.Data{"archive": path})
	log.Info("processing archive")

	zr, err := zip.OpenReader(path)
	if err != nil {
		err = errcodes.MalformedInput(err, "open zip")
		log.Err(err).Warn("parse failed", logger.Data{"code": string(errcodes.CodeOf(err))})
		return nil, 1
	}
	defer zr.Close()

	var records []*mediafile.Record
	failed := 0
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			break
		}
		if f.FileInfo().IsDir() {
			continue
		}
		kind := mediafile.KindForPath(f.Name)
		if !kind.IsBook() {
			continue
		}

		log := log.Data(logger.Data{"member": f.Name, "kind": kind.String()})
		log.Info("processing archive member")
		record, err := s.parseMember(ctx, f, kind)
		if err != nil {
			log.Err(err).Warn("parse failed", logger.Data{"code": string(errcodes.CodeOf(err))})
			failed++
			continue
		}
		records = append(records, record)
	}
	return records, failed
}

// parseMember extracts f into its own temporary directory, keeping the member's
// base name so records and covers are named after it, and removes the
// directory once the parser returns.
func (s *Scanner) parseMember(ctx context.Context, f *zip.File, kind mediafile.Kind) (*mediafile.Record, error) {
	dir, err := os.MkdirTemp("", "bookshelf-*")
	if err != nil {
		return nil, errcodes.IOFailure(err, "create temp dir")
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.FromContext(ctx).Err(err).Warn("failed to clean up temp dir", logger.Data{"dir": dir})
		}
	}()

	path := filepath.Join(dir, filepath.Base(filepath.FromSlash(f.Name)))
	if err := extract(f, path); err != nil {
		return nil, err
	}
	return s.ParseFile(ctx, path, kind)
}

func extract(f *zip.File, dest string) error {
	r, err := f.Open()
	if err != nil {
		return errcodes.MalformedInput(err, "open archive member")
	}
	defer r.Close()

	out, err := os.Create(dest)
	if err != nil {
		return errcodes.IOFailure(err, "create temp file")
	}
	if _, err := io.Copy(out, r); err != nil { //nolint:gosec
		out.Close()
		return errcodes.MalformedInput(err, "extract archive member")
	}
	if err := out.Close(); err != nil {
		return errcodes.IOFailure(errors.WithStack(err), "close temp file")
	}
	return nil
}
