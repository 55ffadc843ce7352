// Package catalog filters and orders extracted records before they are
// rendered into a report.
package catalog

import (
	"slices"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"github.com/shishobooks/bookshelf/pkg/mediafile"
	"github.com/shishobooks/bookshelf/pkg/sortname"
)

// Field names a record field that records can be filtered or sorted by.
type Field string

const (
	FieldNone   Field = ""
	FieldTitle  Field = "title"
	FieldAuthor Field = "author"
	FieldSeries Field = "series"
	FieldGenre  Field = "genre"
)

// Fields lists every filterable and sortable field.
var Fields = []Field{FieldTitle, FieldAuthor, FieldSeries, FieldGenre}

// ErrUnknownField is returned by ParseField for names outside Fields.
var ErrUnknownField = errors.New("unknown field")

// ParseField resolves a user-supplied field name. Matching is insensitive to
// case and word separators, so "Author", "AUTHOR" and "author" are the same.
// An empty name means no field.
func ParseField(name string) (Field, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return FieldNone, nil
	}
	f := Field(strcase.ToSnake(name))
	if !slices.Contains(Fields, f) {
		return FieldNone, errors.Wrapf(ErrUnknownField, "%q", name)
	}
	return f, nil
}

// Value returns the field's value on r.
func (f Field) Value(r *mediafile.Record) string {
	switch f {
	case FieldTitle:
		return r.Title
	case FieldAuthor:
		return r.Author
	case FieldSeries:
		return r.Series
	case FieldGenre:
		return r.Genre
	default:
		return ""
	}
}

// SortKey returns the case-folded value r is ordered by.
func (f Field) SortKey(r *mediafile.Record) string {
	return sortname.Key(f.Value(r))
}

// BibliographicKey is like SortKey, except titles sort without their leading
// article and authors by the first author's surname.
func (f Field) BibliographicKey(r *mediafile.Record) string {
	switch f {
	case FieldTitle:
		return sortname.Key(sortname.ForTitle(r.Title))
	case FieldAuthor:
		return sortname.Key(sortname.ForAuthors(r.Author))
	default:
		return f.SortKey(r)
	}
}

// Filters maps fields to the substring their values must contain. Empty
// substrings are ignored.
type Filters map[Field]string

// Match reports whether r satisfies every filter.
func (fs Filters) Match(r *mediafile.Record) bool {
	for field, needle := range fs {
		needle = sortname.Key(needle)
		if needle == "" {
			continue
		}
		if !strings.Contains(sortname.Key(field.Value(r)), needle) {
			return false
		}
	}
	return true
}

// Filter returns the records matching every filter, in their original order.
func Filter(records []*mediafile.Record, fs Filters) []*mediafile.Record {
	filtered := make([]*mediafile.Record, 0, len(records))
	for _, r := range records {
		if fs.Match(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Sort returns a copy of records ordered by field. Records with equal keys
// keep their relative order in both directions. FieldNone leaves the order
// unchanged.
func Sort(records []*mediafile.Record, field Field, reverse bool) []*mediafile.Record {
	return sortBy(records, field, field.SortKey, reverse)
}

// SortBibliographic is Sort using BibliographicKey.
func SortBibliographic(records []*mediafile.Record, field Field, reverse bool) []*mediafile.Record {
	return sortBy(records, field, field.BibliographicKey, reverse)
}

func sortBy(records []*mediafile.Record, field Field, key func(*mediafile.Record) string, reverse bool) []*mediafile.Record {
	sorted := slices.Clone(records)
	if field == FieldNone {
		return sorted
	}

	keys := make(map[*mediafile.Record]string, len(sorted))
	for _, r := range sorted {
		keys[r] = key(r)
	}
	slices.SortStableFunc(sorted, func(a, b *mediafile.Record) int {
		c := strings.Compare(keys[a], keys[b])
		if reverse {
			return -c
		}
		return c
	})
	return sorted
}

// Options bundles the filtering and ordering applied to a run.
type Options struct {
	Filters Filters
	SortBy  Field
	Reverse bool
	// Bibliographic switches to BibliographicKey ordering.
	Bibliographic bool
}

// Apply filters then sorts records.
func Apply(records []*mediafile.Record, opts Options) []*mediafile.Record {
	filtered := Filter(records, opts.Filters)
	if opts.Bibliographic {
		return SortBibliographic(filtered, opts.SortBy, opts.Reverse)
	}
	return Sort(filtered, opts.SortBy, opts.Reverse)
}
