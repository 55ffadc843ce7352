package catalog

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shishobooks/bookshelf/pkg/mediafile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records() []*mediafile.Record {
	return []*mediafile.Record{
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", Series: "", Genre: "fantasy", SourceFilename: "hobbit.epub"},
		{Title: "Dune", Author: "Frank Herbert", Series: "Dune (№1)", Genre: "sci-fi, classic", SourceFilename: "dune.fb2"},
		{Title: "Good Omens", Author: "Terry Pratchett, Neil Gaiman", Series: "", Genre: "Fantasy, humor", SourceFilename: "omens.epub"},
		{Title: "Children of Dune", Author: "Frank Herbert", Series: "Dune (№3)", Genre: "sci-fi", SourceFilename: "children.fb2"},
	}
}

func filenames(rs []*mediafile.Record) []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.SourceFilename
	}
	return names
}

func TestParseField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Field
	}{
		{"title", FieldTitle},
		{"Author", FieldAuthor},
		{"SERIES", FieldSeries},
		{" genre ", FieldGenre},
		{"", FieldNone},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			f, err := ParseField(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}

	_, err := ParseField("publisher")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filters  Filters
		expected []string
	}{
		{"no filters", nil, []string{"hobbit.epub", "dune.fb2", "omens.epub", "children.fb2"}},
		{"author substring", Filters{FieldAuthor: "herbert"}, []string{"dune.fb2", "children.fb2"}},
		{"case insensitive genre", Filters{FieldGenre: "FANTASY"}, []string{"hobbit.epub", "omens.epub"}},
		{"series", Filters{FieldSeries: "№3"}, []string{"children.fb2"}},
		{"title", Filters{FieldTitle: "dune"}, []string{"dune.fb2", "children.fb2"}},
		{"all filters must match", Filters{FieldAuthor: "herbert", FieldGenre: "classic"}, []string{"dune.fb2"}},
		{"empty value ignored", Filters{FieldAuthor: "  "}, []string{"hobbit.epub", "dune.fb2", "omens.epub", "children.fb2"}},
		{"no match", Filters{FieldAuthor: "asimov"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, filenames(Filter(records(), tt.filters)))
		})
	}
}

func TestSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		field    Field
		reverse  bool
		expected []string
	}{
		{"unsorted", FieldNone, false, []string{"hobbit.epub", "dune.fb2", "omens.epub", "children.fb2"}},
		{"title by whole value", FieldTitle, false, []string{"children.fb2", "dune.fb2", "omens.epub", "hobbit.epub"}},
		{"author by whole value", FieldAuthor, false, []string{"dune.fb2", "children.fb2", "hobbit.epub", "omens.epub"}},
		{"author reversed keeps ties stable", FieldAuthor, true, []string{"omens.epub", "hobbit.epub", "dune.fb2", "children.fb2"}},
		{"series with empty first", FieldSeries, false, []string{"hobbit.epub", "omens.epub", "dune.fb2", "children.fb2"}},
		{"genre case insensitive", FieldGenre, false, []string{"hobbit.epub", "omens.epub", "children.fb2", "dune.fb2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, filenames(Sort(records(), tt.field, tt.reverse)))
		})
	}
}

func TestSort_FirstNameOrder(t *testing.T) {
	t.Parallel()
	input := []*mediafile.Record{
		{Title: "A Tale of Two Cities", Author: "Zed Adams", SourceFilename: "tale.epub"},
		{Title: "Beowulf", Author: "Aaron Zimmer", SourceFilename: "beowulf.epub"},
	}

	assert.Equal(t, []string{"beowulf.epub", "tale.epub"}, filenames(Sort(input, FieldAuthor, false)))
	assert.Equal(t, []string{"tale.epub", "beowulf.epub"}, filenames(Sort(input, FieldTitle, false)))
}

func TestSortBibliographic(t *testing.T) {
	t.Parallel()
	input := []*mediafile.Record{
		{Title: "A Tale of Two Cities", Author: "Zed Adams", SourceFilename: "tale.epub"},
		{Title: "Beowulf", Author: "Aaron Zimmer", SourceFilename: "beowulf.epub"},
	}

	assert.Equal(t, []string{"tale.epub", "beowulf.epub"}, filenames(SortBibliographic(input, FieldAuthor, false)))
	assert.Equal(t, []string{"beowulf.epub", "tale.epub"}, filenames(SortBibliographic(input, FieldTitle, false)))
	assert.Equal(t, []string{"hobbit.epub", "omens.epub", "dune.fb2", "children.fb2"}, filenames(SortBibliographic(records(), FieldAuthor, true)))

	out := Apply(input, Options{SortBy: FieldAuthor, Bibliographic: true})
	assert.Equal(t, []string{"tale.epub", "beowulf.epub"}, filenames(out))
}

func TestSort_DoesNotModifyInput(t *testing.T) {
	t.Parallel()
	input := records()
	_ = Sort(input, FieldTitle, false)
	assert.Equal(t, []string{"hobbit.epub", "dune.fb2", "omens.epub", "children.fb2"}, filenames(input))
}

func TestApply(t *testing.T) {
	t.Parallel()
	out := Apply(records(), Options{
		Filters: Filters{FieldAuthor: "herbert"},
		SortBy:  FieldTitle,
		Reverse: true,
	})
	assert.Equal(t, []string{"dune.fb2", "children.fb2"}, filenames(out))
}
