package mediafile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		expected Kind
	}{
		{"book.epub", KindEPUB},
		{"/library/Book.EPUB", KindEPUB},
		{"dune.fb2", KindFB2},
		{"archive.zip", KindZIP},
		{"notes.txt", KindUnsupported},
		{"noext", KindUnsupported},
		{"dune.fb2.zip", KindZIP},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, KindForPath(tt.path))
		})
	}
}

func TestKindIsBook(t *testing.T) {
	t.Parallel()
	assert.True(t, KindEPUB.IsBook())
	assert.True(t, KindFB2.IsBook())
	assert.False(t, KindZIP.IsBook())
	assert.False(t, KindUnsupported.IsBook())
	assert.Equal(t, "unsupported", KindUnsupported.String())
}

func TestResolveWithDefault(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Dune", ResolveWithDefault("Dune", DefaultTitle))
	assert.Equal(t, "Dune", ResolveWithDefault("  Dune\n", DefaultTitle))
	assert.Equal(t, DefaultTitle, ResolveWithDefault("", DefaultTitle))
	assert.Equal(t, DefaultAuthor, ResolveWithDefault(" \t ", DefaultAuthor))
	assert.Equal(t, "", ResolveWithDefault("", ""))
}

func TestJoinNonEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "sci-fi, classic", JoinNonEmpty([]string{"sci-fi", "classic"}))
	assert.Equal(t, "sci-fi, classic", JoinNonEmpty([]string{" sci-fi ", "", "classic", "  "}))
	assert.Equal(t, "", JoinNonEmpty(nil))
}

func TestFormatSeries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		series   string
		number   string
		expected string
	}{
		{"name and number", "Dune Chronicles", "1", "Dune Chronicles (№1)"},
		{"name only", "Dune Chronicles", "", "Dune Chronicles"},
		{"empty name with number", "", "3", ""},
		{"blank name", "  ", "3", ""},
		{"nothing", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, FormatSeries(tt.series, tt.number))
		})
	}
}
