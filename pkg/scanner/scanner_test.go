package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/bookshelf/internal/testgen"
	"github.com/shishobooks/bookshelf/pkg/covers"
	"github.com/shishobooks/bookshelf/pkg/errcodes"
	"github.com/shishobooks/bookshelf/pkg/mediafile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() context.Context {
	return logger.New().WithContext(context.Background())
}

func titles(records []*mediafile.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}

func TestScan_Directory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	library := testgen.CreateSubDir(t, root, "library")
	nested := testgen.CreateSubDir(t, library, "nested")
	coversDir := filepath.Join(root, "covers")

	testgen.GenerateEPUB(t, library, "a-dune.epub", testgen.EPUBOptions{Title: "Dune", HasCover: true})
	testgen.GenerateFB2(t, nested, "b-master.fb2", testgen.FB2Options{
		Title:   "The Master and Margarita",
		Authors: []testgen.FB2Author{{FirstName: "Mikhail", LastName: "Bulgakov"}},
	})
	testgen.GenerateFB2(t, library, "c-broken.fb2", testgen.FB2Options{OmitTitleInfo: true})
	testgen.WriteFile(t, library, "d-fake.epub", []byte("this is not an archive"))
	testgen.WriteFile(t, library, "e-notes.txt", []byte("ignored"))

	result, err := New(covers.New(coversDir)).Scan(newContext(), library)
	require.NoError(t, err)

	assert.Equal(t, []string{"Dune", "The Master and Margarita"}, titles(result.Records))
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.True(t, testgen.FileExists(filepath.Join(coversDir, "cover_a-dune.epub.png")))
}

func TestScan_SingleFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := testgen.GenerateFB2(t, dir, "dune.fb2", testgen.FB2Options{Title: "Dune"})

	result, err := New(covers.New(filepath.Join(dir, "covers"))).Scan(newContext(), path)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "dune.fb2", result.Records[0].SourceFilename)
}

func TestScan_Archive(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	coversDir := filepath.Join(dir, "covers")
	src := testgen.CreateSubDir(t, dir, "src")

	epubPath := testgen.GenerateEPUB(t, src, "inner.epub", testgen.EPUBOptions{Title: "Inner EPUB"})
	fb2Doc := testgen.FB2Document(testgen.FB2Options{
		Title: "Inner FB2",
		Cover: testgen.GenerateImage(t, "image/jpeg"),
	})
	archive := testgen.GenerateZIP(t, dir, "bundle.zip", []testgen.ZIPEntry{
		{Name: "books/inner.fb2", Data: []byte(fb2Doc)},
		{Name: "readme.txt", Data: []byte("ignored")},
		{Name: "books/inner.epub", Data: testgen.ReadFile(t, epubPath)},
		{Name: "books/broken.fb2", Data: []byte("<FictionBook")},
	})

	result, err := New(covers.New(coversDir)).Scan(newContext(), archive)
	require.NoError(t, err)

	assert.Equal(t, []string{"Inner FB2", "Inner EPUB"}, titles(result.Records))
	assert.Equal(t, "inner.fb2", result.Records[0].SourceFilename)
	assert.Equal(t, 1, result.Failed)

	// The cover outlives the extracted member.
	require.True(t, result.Records[0].HasCover())
	assert.Equal(t, filepath.Join(coversDir, "cover_inner.fb2.jpg"), result.Records[0].CoverPath)
	assert.True(t, testgen.FileExists(result.Records[0].CoverPath))
}

func TestScan_ArchiveCleansUpTempFiles(t *testing.T) {
	dir := t.TempDir()
	tmp := testgen.CreateSubDir(t, dir, "tmp")
	t.Setenv("TMPDIR", tmp)

	archive := testgen.GenerateZIP(t, dir, "bundle.zip", []testgen.ZIPEntry{
		{Name: "one.fb2", Data: []byte(testgen.FB2Document(testgen.FB2Options{Title: "One"}))},
		{Name: "two.fb2", Data: []byte("not xml")},
	})

	result, err := New(covers.New(filepath.Join(dir, "covers"))).Scan(newContext(), archive)
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScan_NoBooks(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testgen.WriteFile(t, dir, "notes.txt", []byte("nothing here"))
	testgen.GenerateFB2(t, dir, "broken.fb2", testgen.FB2Options{OmitTitleInfo: true})

	result, err := New(covers.New(filepath.Join(dir, "covers"))).Scan(newContext(), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoBooks))
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Failed)
}

func TestScan_MissingInput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := New(covers.New(dir)).Scan(newContext(), filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Equal(t, errcodes.CodeIOFailure, errcodes.CodeOf(err))
}

func TestScan_Cancelled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testgen.GenerateFB2(t, dir, "dune.fb2", testgen.FB2Options{Title: "Dune"})

	ctx, cancel := context.WithCancel(newContext())
	cancel()

	_, err := New(covers.New(filepath.Join(dir, "covers"))).Scan(ctx, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := New(covers.New(filepath.Join(dir, "covers")))

	epubPath := testgen.GenerateEPUB(t, dir, "book.epub", testgen.EPUBOptions{Title: "From EPUB"})
	record, err := s.ParseFile(newContext(), epubPath, mediafile.KindEPUB)
	require.NoError(t, err)
	assert.Equal(t, mediafile.KindEPUB, record.Kind)

	fb2Path := testgen.GenerateFB2(t, dir, "book.fb2", testgen.FB2Options{Title: "From FB2"})
	record, err = s.ParseFile(newContext(), fb2Path, mediafile.KindFB2)
	require.NoError(t, err)
	assert.Equal(t, mediafile.KindFB2, record.Kind)

	_, err = s.ParseFile(newContext(), fb2Path, mediafile.KindZIP)
	assert.True(t, errors.Is(err, ErrUnsupportedKind))

	// The kind decides the parser, not the extension.
	_, err = s.ParseFile(newContext(), fb2Path, mediafile.KindEPUB)
	assert.Equal(t, errcodes.CodeMalformedInput, errcodes.CodeOf(err))
}
