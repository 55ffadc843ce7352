// Package testgen provides utilities for generating test books (EPUB, FB2) and
// ZIP archives with configurable metadata for testing the parsers and scanner.
package testgen

import (
	"os"
	"path/filepath"
	"testing"
)

// Cover styles for generated EPUBs.
const (
	// CoverStyleMeta references the cover through <meta name="cover">.
	CoverStyleMeta = "meta"
	// CoverStyleProperties marks the manifest item with properties="cover-image".
	CoverStyleProperties = "properties"
	// CoverStyleID only relies on the manifest item id containing "cover".
	CoverStyleID = "id"
)

// EPUBOptions configures the generated EPUB file.
type EPUBOptions struct {
	Title         string
	Authors       []string
	Subjects      []string
	Description   string
	Series        string
	SeriesNumber  *float64
	HasCover      bool
	CoverMimeType string // "image/jpeg" or "image/png", defaults to "image/png"
	CoverStyle    string // one of the CoverStyle constants, defaults to CoverStyleMeta
	// MissingCoverFile declares the cover in the manifest without adding the
	// image to the archive.
	MissingCoverFile bool
	// OmitContainer leaves out META-INF/container.xml.
	OmitContainer bool
	// OmitOPF leaves out the package document entirely.
	OmitOPF bool
	// OmitMetadata leaves out the <metadata> block of the package document.
	OmitMetadata bool
}

// FB2Author is a single <author> node.
type FB2Author struct {
	FirstName string
	LastName  string
	Nickname  string
}

// FB2Options configures the generated FB2 file.
type FB2Options struct {
	Title   string
	Authors []FB2Author
	Genres  []string
	// Annotation is inserted verbatim inside <annotation>. Empty omits the node.
	Annotation string
	// SequenceName and SequenceNumber are written when HasSequence is set.
	HasSequence    bool
	SequenceName   string
	SequenceNumber string
	// Cover is base64-encoded into a <binary> node with id CoverID.
	Cover   []byte
	CoverID string // defaults to "cover.jpg"
	// CoverBase64 overrides the encoded payload, e.g. to make it corrupt.
	CoverBase64 string
	// CoverPage references the cover binary from title-info/coverpage.
	CoverPage bool
	// CoverPageID points coverpage at another binary instead of CoverID.
	CoverPageID string
	// Binaries are written after the cover binary, in order.
	Binaries []FB2Binary
	// OmitTitleInfo leaves out <title-info>.
	OmitTitleInfo bool
	// Encoding is declared in the XML prolog; the content is written as-is.
	Encoding string
}

// FB2Binary is an extra <binary> node. Base64 overrides the encoded Data.
type FB2Binary struct {
	ID     string
	Data   []byte
	Base64 string
}

// ZIPEntry is one member of a generated archive.
type ZIPEntry struct {
	Name string
	Data []byte
}

// CreateSubDir creates a subdirectory within the given parent directory.
// Returns the full path to the created subdirectory.
func CreateSubDir(t *testing.T, parent, name string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create subdirectory %s: %v", dir, err)
	}
	return dir
}

// WriteFile creates a file with the given content in the specified directory.
// Returns the full path to the created file.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile reads and returns the contents of a file.
func ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return data
}

// Float64Ptr is a helper to create a pointer to a float64.
func Float64Ptr(f float64) *float64 {
	return &f
}
