package testgen

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"testing"
)

// GenerateFB2 creates a FictionBook 2.0 document at dir/filename and returns
// its path.
func GenerateFB2(t *testing.T, dir, filename string, opts FB2Options) string {
	t.Helper()
	return WriteFile(t, dir, filename, []byte(FB2Document(opts)))
}

// FB2Document renders the FictionBook XML for opts.
func FB2Document(opts FB2Options) string {
	var buf bytes.Buffer

	encoding := opts.Encoding
	if encoding == "" {
		encoding = "UTF-8"
	}
	coverID := opts.CoverID
	if coverID == "" {
		coverID = "cover.jpg"
	}
	hasCover := len(opts.Cover) > 0 || opts.CoverBase64 != ""

	fmt.Fprintf(&buf, "<?xml version=\"1.0\" encoding=\"%s\"?>\n", encoding)
	buf.WriteString(`<FictionBook xmlns="http://www.gribuser.ru/xml/fictionbook/2.0" xmlns:l="http://www.w3.org/1999/xlink">
  <description>
`)
	if !opts.OmitTitleInfo {
		buf.WriteString("    <title-info>\n")
		for _, genre := range opts.Genres {
			fmt.Fprintf(&buf, "      <genre>%s</genre>\n", escapeXML(genre))
		}
		for _, author := range opts.Authors {
			buf.WriteString("      <author>\n")
			if author.FirstName != "" {
				fmt.Fprintf(&buf, "        <first-name>%s</first-name>\n", escapeXML(author.FirstName))
			}
			if author.LastName != "" {
				fmt.Fprintf(&buf, "        <last-name>%s</last-name>\n", escapeXML(author.LastName))
			}
			if author.Nickname != "" {
				fmt.Fprintf(&buf, "        <nickname>%s</nickname>\n", escapeXML(author.Nickname))
			}
			buf.WriteString("      </author>\n")
		}
		if opts.Title != "" {
			fmt.Fprintf(&buf, "      <book-title>%s</book-title>\n", escapeXML(opts.Title))
		}
		if opts.Annotation != "" {
			fmt.Fprintf(&buf, "      <annotation>%s</annotation>\n", opts.Annotation)
		}
		if opts.CoverPageID != "" {
			fmt.Fprintf(&buf, "      <coverpage><image l:href=\"#%s\"/></coverpage>\n", opts.CoverPageID)
		} else if hasCover && opts.CoverPage {
			fmt.Fprintf(&buf, "      <coverpage><image l:href=\"#%s\"/></coverpage>\n", coverID)
		}
		buf.WriteString("      <lang>en</lang>\n")
		if opts.HasSequence {
			fmt.Fprintf(&buf, "      <sequence name=\"%s\"", escapeXML(opts.SequenceName))
			if opts.SequenceNumber != "" {
				fmt.Fprintf(&buf, " number=\"%s\"", escapeXML(opts.SequenceNumber))
			}
			buf.WriteString("/>\n")
		}
		buf.WriteString("    </title-info>\n")
	}
	buf.WriteString(`    <document-info>
      <program-used>testgen</program-used>
    </document-info>
  </description>
  <body>
    <section><p>Chapter one.</p></section>
  </body>
`)
	if hasCover {
		payload := opts.CoverBase64
		if payload == "" {
			payload = wrapBase64(base64.StdEncoding.EncodeToString(opts.Cover))
		}
		fmt.Fprintf(&buf, "  <binary id=\"%s\" content-type=\"image/jpeg\">%s</binary>\n", coverID, payload)
	}
	for _, b := range opts.Binaries {
		payload := b.Base64
		if payload == "" {
			payload = wrapBase64(base64.StdEncoding.EncodeToString(b.Data))
		}
		fmt.Fprintf(&buf, "  <binary id=\"%s\" content-type=\"image/jpeg\">%s</binary>\n", b.ID, payload)
	}
	buf.WriteString("</FictionBook>\n")

	return buf.String()
}

// wrapBase64 splits the payload into 76 character lines like real FB2 files.
func wrapBase64(s string) string {
	var buf bytes.Buffer
	buf.WriteString("\n")
	for len(s) > 76 {
		buf.WriteString(s[:76])
		buf.WriteString("\n")
		s = s[76:]
	}
	buf.WriteString(s)
	buf.WriteString("\n")
	return buf.String()
}
