package epub

import (
	"bytes"
	"encoding/xml"
	"io"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shishobooks/bookshelf/pkg/htmlutil"
	"github.com/shishobooks/bookshelf/pkg/mediafile"
	"golang.org/x/net/html/charset"
)

// OPF is the subset of the package document the record is built from.
type OPF struct {
	Title        string
	Authors      []string
	Series       string
	SeriesNumber string
	Subjects     []string
	Description  string
	// CoverFilepath is the archive path of the cover image, empty when the
	// manifest doesn't declare one.
	CoverFilepath string
	CoverMimeType string
}

type ManifestItem struct {
	Text       string `xml:",chardata"`
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type Package struct {
	XMLName          xml.Name `xml:"package"`
	Text             string   `xml:",chardata"`
	Xmlns            string   `xml:"xmlns,attr"`
	Version          string   `xml:"version,attr"`
	UniqueIdentifier string   `xml:"unique-identifier,attr"`
	Metadata         struct {
		Text  string `xml:",chardata"`
		Title []struct {
			Text string `xml:",chardata"`
			ID   string `xml:"id,attr"`
		} `xml:"title"`
		Creator []struct {
			Text   string `xml:",chardata"`
			ID     string `xml:"id,attr"`
			Role   string `xml:"role,attr"`
			FileAs string `xml:"file-as,attr"`
		} `xml:"creator"`
		Subject     []string `xml:"subject"`
		Description []string `xml:"description"`
		Publisher   string   `xml:"publisher"`
		Language    string   `xml:"language"`
		Meta        []struct {
			Text     string `xml:",chardata"`
			ID       string `xml:"id,attr"`
			Name     string `xml:"name,attr"`
			Content  string `xml:"content,attr"`
			Refines  string `xml:"refines,attr"`
			Property string `xml:"property,attr"`
		} `xml:"meta"`
	} `xml:"metadata"`
	Manifest struct {
		Text string         `xml:",chardata"`
		Item []ManifestItem `xml:"item"`
	} `xml:"manifest"`
}

// ParseOPF decodes a package document. filename is the document's path inside
// the archive and is used to resolve manifest hrefs.
func ParseOPF(filename string, r io.Reader) (*OPF, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pkg := &Package{}
	dec := xml.NewDecoder(bytes.NewReader(stripBOM(b)))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(pkg); err != nil {
		return nil, errors.WithStack(err)
	}

	// All manifest hrefs are relative to the directory holding the OPF.
	basePath := path.Dir(filename)
	if basePath == "." {
		basePath = ""
	} else {
		basePath += "/"
	}

	// Parse out metadata into a more lookup-friendly structure.
	metaProperties := map[string]map[string]string{}
	metaContent := map[string]string{}
	collections := []struct{ id, name string }{}
	for _, m := range pkg.Metadata.Meta {
		switch {
		case m.Refines != "":
			key := strings.TrimPrefix(m.Refines, "#")
			if _, ok := metaProperties[key]; !ok {
				metaProperties[key] = map[string]string{}
			}
			metaProperties[key][m.Property] = strings.TrimSpace(m.Text)
		case m.Property == "belongs-to-collection":
			collections = append(collections, struct{ id, name string }{m.ID, strings.TrimSpace(m.Text)})
		case m.Name != "":
			metaContent[m.Name] = strings.TrimSpace(m.Content)
		}
	}

	// Parse out the main title of the book.
	title := ""
	for _, t := range pkg.Metadata.Title {
		if t.ID != "" && metaProperties[t.ID]["title-type"] == "main" {
			title = t.Text
			break
		}
	}
	if title == "" && len(pkg.Metadata.Title) > 0 {
		title = pkg.Metadata.Title[0].Text
	}

	authors := make([]string, 0, len(pkg.Metadata.Creator))
	for _, creator := range pkg.Metadata.Creator {
		if name := strings.TrimSpace(creator.Text); name != "" {
			authors = append(authors, name)
		}
	}

	// Series from calibre meta tags, falling back to EPUB 3 collections.
	series := metaContent["calibre:series"]
	seriesNumber := formatSeriesIndex(metaContent["calibre:series_index"])
	if series == "" {
		for _, c := range collections {
			if c.name == "" {
				continue
			}
			if kind := metaProperties[c.id]["collection-type"]; kind != "" && kind != "series" {
				continue
			}
			series = c.name
			seriesNumber = formatSeriesIndex(metaProperties[c.id]["group-position"])
			break
		}
	}

	description := ""
	if len(pkg.Metadata.Description) > 0 {
		description = pkg.Metadata.Description[0]
	}

	opf := &OPF{
		Title:        strings.TrimSpace(title),
		Authors:      authors,
		Series:       series,
		SeriesNumber: seriesNumber,
		Subjects:     pkg.Metadata.Subject,
		Description:  strings.TrimSpace(description),
	}

	if item := findCoverItem(pkg.Manifest.Item, metaContent["cover"]); item != nil {
		opf.CoverFilepath = basePath + unescapeHref(item.Href)
		opf.CoverMimeType = item.MediaType
	}

	return opf, nil
}

// findCoverItem prefers an image explicitly marked as the cover, either through
// properties="cover-image" or <meta name="cover">, and otherwise settles for
// the first image whose id or href mentions "cover".
func findCoverItem(items []ManifestItem, metaCoverID string) *ManifestItem {
	for i := range items {
		item := &items[i]
		if !isImage(item.MediaType) {
			continue
		}
		if slices.Contains(strings.Fields(item.Properties), "cover-image") {
			return item
		}
		if metaCoverID != "" && (item.ID == metaCoverID || item.Href == metaCoverID) {
			return item
		}
	}
	for i := range items {
		item := &items[i]
		if !isImage(item.MediaType) {
			continue
		}
		if containsFold(item.ID, "cover") || containsFold(item.Href, "cover") {
			return item
		}
	}
	return nil
}

// Record converts the package document into a record, substituting
// placeholders for missing fields.
func (o *OPF) Record(sourceFilename, coverPath string) *mediafile.Record {
	description := htmlutil.StripTags(o.Description)
	descriptionHTML := ""
	if htmlutil.ContainsHTML(o.Description) {
		descriptionHTML = o.Description
	}

	return &mediafile.Record{
		Kind:            mediafile.KindEPUB,
		CoverPath:       coverPath,
		Title:           mediafile.ResolveWithDefault(o.Title, mediafile.DefaultTitle),
		Author:          mediafile.ResolveWithDefault(mediafile.JoinNonEmpty(o.Authors), mediafile.DefaultAuthor),
		Series:          mediafile.FormatSeries(o.Series, o.SeriesNumber),
		Genre:           mediafile.JoinNonEmpty(o.Subjects),
		Description:     mediafile.ResolveWithDefault(description, mediafile.DefaultDescription),
		SourceFilename:  sourceFilename,
		DescriptionHTML: descriptionHTML,
	}
}

// formatSeriesIndex renders "3.0" as "3" and keeps fractional positions.
// Values that aren't numbers are passed through.
func formatSeriesIndex(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(num, 'f', -1, 64)
}

func isImage(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
}
