package report

import (
	"io"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/bookshelf/pkg/mediafile"
)

type jsonReport struct {
	Title string              `json:"title"`
	Count int                 `json:"count"`
	Books []*mediafile.Record `json:"books"`
}

func renderJSON(w io.Writer, records []*mediafile.Record, baseDir string) error {
	books := make([]*mediafile.Record, 0, len(records))
	for _, r := range records {
		// Records are never modified, so cover paths are rewritten on a copy.
		book := *r
		if book.HasCover() {
			book.CoverPath = relativePath(baseDir, r.CoverPath)
		}
		books = append(books, &book)
	}

	b, err := json.MarshalIndent(jsonReport{Title: Title, Count: len(books), Books: books}, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
