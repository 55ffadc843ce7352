// Package covers materializes cover images extracted from books onto disk.
package covers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/shishobooks/bookshelf/pkg/errcodes"
)

// Prefix is prepended to the source filename to build the cover filename.
const Prefix = "cover_"

// fallbackExtension is used when the image format can't be sniffed.
const fallbackExtension = ".jpg"

// Saver persists cover image bytes and returns the path they were written to.
type Saver interface {
	Save(sourceName string, data []byte) (string, error)
}

// Store writes covers into a single output directory. Filenames are derived
// from the source filename only, so two books with the same basename in
// different directories share a cover file and the last write wins.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created on first Save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// PathFor returns the path a cover for sourceName with the given extension
// would be written to.
func (s *Store) PathFor(sourceName, ext string) string {
	return filepath.Join(s.dir, Prefix+filepath.Base(sourceName)+ext)
}

// Save writes data under the output directory and returns the file's path.
func (s *Store) Save(sourceName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errcodes.IOFailure(errors.New("no image data"), "cover resource is empty")
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", errcodes.IOFailure(err, "create covers directory")
	}

	path := s.PathFor(sourceName, Extension(data))
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec
		return "", errcodes.IOFailure(err, "write cover")
	}

	return path, nil
}

// Extension returns the file extension (with the leading dot) matching the
// image format of data.
func Extension(data []byte) string {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") || mtype.Extension() == "" {
		return fallbackExtension
	}
	return mtype.Extension()
}
