package mediafile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Placeholders substituted when a source file doesn't carry the field.
const (
	DefaultTitle       = "Untitled"
	DefaultAuthor      = "Unknown"
	DefaultDescription = "No description"
)

// Separator joins multi-valued fields such as authors and genres.
const Separator = ", "

// Kind is the closed set of inputs the extractors know how to handle.
type Kind string

const (
	KindUnsupported Kind = ""
	KindEPUB        Kind = "epub"
	KindFB2         Kind = "fb2"
	// KindZIP is a container of other books, never a book itself.
	KindZIP Kind = "zip"
)

var extensionKinds = map[string]Kind{
	".epub": KindEPUB,
	".fb2":  KindFB2,
	".zip":  KindZIP,
}

// KindForPath determines the kind of file from its extension (case-insensitive).
func KindForPath(path string) Kind {
	return extensionKinds[strings.ToLower(filepath.Ext(path))]
}

// IsBook reports whether the kind can be parsed into a Record.
func (k Kind) IsBook() bool {
	return k == KindEPUB || k == KindFB2
}

func (k Kind) String() string {
	if k == KindUnsupported {
		return "unsupported"
	}
	return string(k)
}

// Record is the normalized metadata of a single book. It is produced by the
// EPUB and FB2 parsers and never modified afterwards.
type Record struct {
	Kind           Kind   `json:"kind"`
	CoverPath      string `json:"cover_path,omitempty"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	Series         string `json:"series"`
	Genre          string `json:"genre"`
	Description    string `json:"description"`
	SourceFilename string `json:"source_filename"`
	// DescriptionHTML is the annotation as HTML when the source had rich text.
	DescriptionHTML string `json:"-"`
}

// HasCover reports whether a cover image was materialized for the record.
func (r *Record) HasCover() bool {
	return r.CoverPath != ""
}

func (r *Record) String() string {
	return fmt.Sprintf("Title:       %s\nAuthor(s):   %s\nSeries:      %s\nGenre(s):    %s\nCover:       %s\nSource:      %s\nDescription: %s",
		r.Title, r.Author, r.Series, r.Genre, r.CoverPath, r.SourceFilename, r.Description)
}

// ResolveWithDefault trims value and returns def when nothing is left.
func ResolveWithDefault(value, def string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	return value
}

// JoinNonEmpty trims every value, drops the empty ones and joins the rest with
// Separator.
func JoinNonEmpty(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, Separator)
}

// FormatSeries combines a series name and its position. An empty name yields an
// empty string regardless of the number.
func FormatSeries(name, number string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return name
	}
	return fmt.Sprintf("%s (№%s)", name, number)
}
