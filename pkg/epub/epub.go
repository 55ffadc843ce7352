// Package epub extracts bibliographic metadata and the cover image from EPUB
// files.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/shishobooks/bookshelf/pkg/covers"
	"github.com/shishobooks/bookshelf/pkg/errcodes"
	"github.com/shishobooks/bookshelf/pkg/mediafile"
)

const (
	containerPath       = "META-INF/container.xml"
	packageDocumentType = "application/oebps-package+xml"
)

type container struct {
	XMLName   xml.Name `xml:"container"`
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

// Parse reads the EPUB at path and returns its record. When the manifest
// declares a cover image, the image is written through saver; a cover that is
// declared but can't be read fails the whole parse.
func Parse(path string, saver covers.Saver) (*mediafile.Record, error) {
	zipReader, err := zip.OpenReader(path)
	if err != nil {
		return nil, errcodes.MalformedInput(err, "open epub")
	}
	defer zipReader.Close()

	opfPath, err := findOPF(&zipReader.Reader)
	if err != nil {
		return nil, err
	}

	opfFile := findFile(&zipReader.Reader, opfPath)
	if opfFile == nil {
		return nil, errcodes.MalformedInput(errors.Errorf("%s not in archive", opfPath), "no opf file found")
	}
	r, err := opfFile.Open()
	if err != nil {
		return nil, errcodes.MalformedInput(err, "open opf")
	}
	opf, err := ParseOPF(opfFile.Name, r)
	r.Close()
	if err != nil {
		return nil, errcodes.MalformedInput(err, "parse opf")
	}

	sourceFilename := filepath.Base(path)
	coverPath := ""
	if opf.CoverFilepath != "" {
		data, err := readCover(&zipReader.Reader, opf.CoverFilepath)
		if err != nil {
			return nil, err
		}
		coverPath, err = saver.Save(sourceFilename, data)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return opf.Record(sourceFilename, coverPath), nil
}

// findOPF locates the package document through META-INF/container.xml and
// falls back to the first .opf entry for archives without one.
func findOPF(zr *zip.Reader) (string, error) {
	if f := findFile(zr, containerPath); f != nil {
		b, err := readFile(f)
		if err != nil {
			return "", errcodes.MalformedInput(err, "read container.xml")
		}
		c := &container{}
		if err := xml.Unmarshal(stripBOM(b), c); err != nil {
			return "", errcodes.MalformedInput(err, "parse container.xml")
		}
		fallback := ""
		for _, rf := range c.Rootfiles {
			fullPath := strings.TrimSpace(rf.FullPath)
			if fullPath == "" {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(rf.MediaType), packageDocumentType) {
				return fullPath, nil
			}
			if fallback == "" {
				fallback = fullPath
			}
		}
		if fallback != "" {
			return fallback, nil
		}
	}

	for _, f := range zr.File {
		if strings.EqualFold(filepath.Ext(f.Name), ".opf") {
			return f.Name, nil
		}
	}

	return "", errcodes.MalformedInput(errors.New("no package document"), "no opf file found")
}

func readCover(zr *zip.Reader, name string) ([]byte, error) {
	f := findFile(zr, name)
	if f == nil {
		return nil, errcodes.IOFailure(errors.Errorf("%s not in archive", name), "read cover")
	}
	data, err := readFile(f)
	if err != nil {
		return nil, errcodes.IOFailure(err, "read cover")
	}
	return data, nil
}

// findFile looks an entry up by exact name first, then case-insensitively.
func findFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

func readFile(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

// unescapeHref decodes percent-encoded manifest hrefs and drops fragments.
func unescapeHref(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		return decoded
	}
	return href
}
