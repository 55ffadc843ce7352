// Package report renders extracted records into an HTML, Markdown or JSON
// catalog.
package report

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/shishobooks/bookshelf/pkg/covers"
	"github.com/shishobooks/bookshelf/pkg/errcodes"
	"github.com/shishobooks/bookshelf/pkg/htmlutil"
	"github.com/shishobooks/bookshelf/pkg/mediafile"
)

// Format is an output format of the report.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatHTML, FormatMarkdown, FormatJSON}

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown report format")

// Title is the heading of rendered reports.
const Title = "Book catalog"

// ParseFormat resolves a format name. "md" is accepted for Markdown.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "html", "htm":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", name)
}

// FormatForPath picks the format matching the extension of the report path,
// defaulting to HTML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".json":
		return FormatJSON
	default:
		return FormatHTML
	}
}

// Book is the view of a record the templates render.
type Book struct {
	Title       string
	Author      string
	Series      string
	Genre       string
	Description string
	// DescriptionMarkdown is the rich description converted to Markdown, or
	// the plain description when the source had no markup.
	DescriptionMarkdown string
	Source              string
	// Cover is the cover path relative to the report's directory, using
	// forward slashes. Empty when the book has no cover.
	Cover       string
	CoverWidth  int
	CoverHeight int
}

// DescriptionLines splits the plain description into its paragraphs.
func (b Book) DescriptionLines() []string {
	return strings.Split(b.Description, "\n")
}

// Render writes records to w in the given format. Cover paths are made
// relative to baseDir, the directory the report will live in.
func Render(w io.Writer, format Format, records []*mediafile.Record, baseDir string) error {
	switch format {
	case FormatHTML:
		return renderHTML(w, books(records, baseDir, true))
	case FormatMarkdown:
		return renderMarkdown(w, books(records, baseDir, false))
	case FormatJSON:
		return renderJSON(w, records, baseDir)
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
}

// Write renders records into the file at path, creating its directory when
// needed.
func Write(path string, format Format, records []*mediafile.Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errcodes.IOFailure(err, "create report directory")
	}

	f, err := os.Create(path)
	if err != nil {
		return errcodes.IOFailure(err, "create report")
	}

	if err := Render(f, format, records, dir); err != nil {
		f.Close()
		return errors.WithStack(err)
	}
	if err := f.Close(); err != nil {
		return errcodes.IOFailure(err, "close report")
	}
	return nil
}

func books(records []*mediafile.Record, baseDir string, withDimensions bool) []Book {
	out := make([]Book, 0, len(records))
	for _, r := range records {
		b := Book{
			Title:               r.Title,
			Author:              r.Author,
			Series:              r.Series,
			Genre:               r.Genre,
			Description:         r.Description,
			DescriptionMarkdown: r.Description,
			Source:              r.SourceFilename,
		}
		if r.DescriptionHTML != "" {
			b.DescriptionMarkdown = htmlutil.ToMarkdown(r.DescriptionHTML)
		}
		if r.HasCover() {
			b.Cover = relativePath(baseDir, r.CoverPath)
			if withDimensions {
				// Unreadable images still get linked, just without a size hint.
				if w, h, err := covers.Dimensions(r.CoverPath); err == nil {
					b.CoverWidth, b.CoverHeight = w, h
				}
			}
		}
		out = append(out, b)
	}
	return out
}

// relativePath returns target relative to baseDir with forward slashes, or
// target unchanged when no relative path exists.
func relativePath(baseDir, target string) string {
	if baseDir == "" {
		return filepath.ToSlash(target)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return filepath.ToSlash(target)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}
