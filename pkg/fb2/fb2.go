// Package fb2 extracts bibliographic metadata and the embedded cover image
// from FictionBook 2 documents.
package fb2

import (
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/pkg/errors"
	"github.com/shishobooks/bookshelf/pkg/covers"
	"github.com/shishobooks/bookshelf/pkg/errcodes"
	"github.com/shishobooks/bookshelf/pkg/htmlutil"
	"github.com/shishobooks/bookshelf/pkg/mediafile"
	"golang.org/x/net/html/charset"
)

// Namespace is the FictionBook 2.0 schema namespace every element is
// resolved against.
const Namespace = "http://www.gribuser.ru/xml/fictionbook/2.0"

// TitleInfo holds the fields read from description/title-info.
type TitleInfo struct {
	Title          string
	Authors        []string
	SequenceName   string
	SequenceNumber string
	Genres         []string
	// Annotation is the annotation rendered as HTML. Empty when the document
	// has no annotation.
	Annotation    string
	HasAnnotation bool
	// CoverHref is the binary id referenced from coverpage, without the "#".
	CoverHref string
}

// Parse reads the FB2 document at path and returns its record. The first
// cover binary found is decoded and written through saver.
func Parse(path string, saver covers.Saver) (*mediafile.Record, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromFile(path); err != nil {
		return nil, errcodes.MalformedInput(err, "read fb2")
	}
	return parseDocument(doc, filepath.Base(path), saver)
}

// ParseBytes is Parse for a document already held in memory. sourceFilename
// names the record and the cover file.
func ParseBytes(data []byte, sourceFilename string, saver covers.Saver) (*mediafile.Record, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errcodes.MalformedInput(err, "read fb2")
	}
	return parseDocument(doc, filepath.Base(sourceFilename), saver)
}

func parseDocument(doc *etree.Document, sourceFilename string, saver covers.Saver) (*mediafile.Record, error) {
	root := doc.Root()
	if root == nil || !is(root, "FictionBook") {
		return nil, errcodes.MalformedInput(errors.New("unexpected root element"), "not a FictionBook document")
	}

	titleInfoEl := child(child(root, "description"), "title-info")
	if titleInfoEl == nil {
		return nil, errcodes.MissingRequiredSection("missing title-info")
	}
	info := ParseTitleInfo(titleInfoEl)

	coverPath := ""
	if binary := findCoverBinary(root, info.CoverHref); binary != nil {
		data, err := decodeBinary(binary)
		if err != nil {
			return nil, err
		}
		coverPath, err = saver.Save(sourceFilename, data)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return info.Record(sourceFilename, coverPath), nil
}

// ParseTitleInfo reads the bibliographic fields out of a title-info element.
func ParseTitleInfo(el *etree.Element) *TitleInfo {
	info := &TitleInfo{}
	seenSequence := false
	for _, c := range el.ChildElements() {
		if c.NamespaceURI() != Namespace {
			continue
		}
		switch c.Tag {
		case "book-title":
			if info.Title == "" {
				info.Title = strings.TrimSpace(c.Text())
			}
		case "author":
			info.Authors = append(info.Authors, authorName(c))
		case "genre":
			if genre := strings.TrimSpace(c.Text()); genre != "" {
				info.Genres = append(info.Genres, genre)
			}
		case "sequence":
			// Only the first sequence counts.
			if !seenSequence {
				seenSequence = true
				info.SequenceName = strings.TrimSpace(c.SelectAttrValue("name", ""))
				info.SequenceNumber = strings.TrimSpace(c.SelectAttrValue("number", ""))
			}
		case "annotation":
			if !info.HasAnnotation {
				info.HasAnnotation = true
				info.Annotation = strings.TrimSpace(RenderHTML(c))
			}
		case "coverpage":
			if info.CoverHref == "" {
				if img := child(c, "image"); img != nil {
					info.CoverHref = strings.TrimPrefix(hrefAttr(img), "#")
				}
			}
		}
	}
	return info
}

// Record converts the title-info fields into a record, substituting
// placeholders for missing fields.
func (i *TitleInfo) Record(sourceFilename, coverPath string) *mediafile.Record {
	description := ""
	descriptionHTML := ""
	if i.HasAnnotation {
		description = htmlutil.StripTags(i.Annotation)
		if htmlutil.ContainsHTML(i.Annotation) {
			descriptionHTML = i.Annotation
		}
	}

	return &mediafile.Record{
		Kind:            mediafile.KindFB2,
		CoverPath:       coverPath,
		Title:           mediafile.ResolveWithDefault(i.Title, mediafile.DefaultTitle),
		Author:          mediafile.ResolveWithDefault(mediafile.JoinNonEmpty(i.Authors), mediafile.DefaultAuthor),
		Series:          mediafile.FormatSeries(i.SequenceName, i.SequenceNumber),
		Genre:           mediafile.JoinNonEmpty(i.Genres),
		Description:     mediafile.ResolveWithDefault(description, mediafile.DefaultDescription),
		SourceFilename:  sourceFilename,
		DescriptionHTML: descriptionHTML,
	}
}

// authorName joins first and last name. Authors known only by a nickname keep
// it, and an author node with no usable name still occupies a slot.
func authorName(el *etree.Element) string {
	var first, last, nickname string
	for _, c := range el.ChildElements() {
		if c.NamespaceURI() != Namespace {
			continue
		}
		switch c.Tag {
		case "first-name":
			first = strings.TrimSpace(c.Text())
		case "last-name":
			last = strings.TrimSpace(c.Text())
		case "nickname":
			nickname = strings.TrimSpace(c.Text())
		}
	}

	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		name = nickname
	}
	return mediafile.ResolveWithDefault(name, mediafile.DefaultAuthor)
}

func is(el *etree.Element, tag string) bool {
	return el.Tag == tag && el.NamespaceURI() == Namespace
}

// child returns the first child element with the given tag in the FictionBook
// namespace. A nil parent yields nil.
func child(el *etree.Element, tag string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if is(c, tag) {
			return c
		}
	}
	return nil
}

// hrefAttr returns the href attribute regardless of the prefix the document
// bound the xlink namespace to.
func hrefAttr(el *etree.Element) string {
	for _, attr := range el.Attr {
		if attr.Key == "href" {
			return strings.TrimSpace(attr.Value)
		}
	}
	return ""
}
