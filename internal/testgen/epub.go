package testgen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// GenerateEPUB creates an EPUB file at the specified path with the given options.
// The generated EPUB contains mimetype, container.xml, content.opf with metadata,
// chapter1.xhtml, and optionally a cover image.
func GenerateEPUB(t *testing.T, dir, filename string, opts EPUBOptions) string {
	t.Helper()

	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create EPUB file: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	// mimetype - must be first and uncompressed
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatalf("failed to create mimetype entry: %v", err)
	}
	if _, err := w.Write([]byte("application/epub+zip")); err != nil {
		t.Fatalf("failed to write mimetype: %v", err)
	}

	if !opts.OmitContainer {
		containerXML := `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`
		if err := writeZipFile(zw, "META-INF/container.xml", []byte(containerXML)); err != nil {
			t.Fatalf("failed to write container.xml: %v", err)
		}
	}

	coverMimeType := opts.CoverMimeType
	if coverMimeType == "" {
		coverMimeType = "image/png"
	}
	var coverFilename string
	if opts.HasCover {
		if coverMimeType == "image/jpeg" {
			coverFilename = "images/cover.jpg"
		} else {
			coverFilename = "images/cover.png"
		}
		if !opts.MissingCoverFile {
			if err := writeZipFile(zw, "OEBPS/"+coverFilename, GenerateImage(t, coverMimeType)); err != nil {
				t.Fatalf("failed to write cover image: %v", err)
			}
		}
	}

	if !opts.OmitOPF {
		opfContent := generateOPF(opts, coverFilename, coverMimeType)
		if err := writeZipFile(zw, "OEBPS/content.opf", []byte(opfContent)); err != nil {
			t.Fatalf("failed to write content.opf: %v", err)
		}
	}

	chapterContent := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <title>Chapter 1</title>
</head>
<body>
  <h1>Chapter 1</h1>
  <p>This is a test chapter.</p>
</body>
</html>`
	if err := writeZipFile(zw, "OEBPS/chapter1.xhtml", []byte(chapterContent)); err != nil {
		t.Fatalf("failed to write chapter1.xhtml: %v", err)
	}

	return path
}

func generateOPF(opts EPUBOptions, coverFilename, coverMimeType string) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<package version="3.0" xmlns="http://www.idpf.org/2007/opf" unique-identifier="bookid">
`)

	coverStyle := opts.CoverStyle
	if coverStyle == "" {
		coverStyle = CoverStyleMeta
	}

	if !opts.OmitMetadata {
		buf.WriteString(`  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
`)
		// Title - only include if provided (allows testing the placeholder)
		if opts.Title != "" {
			fmt.Fprintf(&buf, "    <dc:title id=\"title\">%s</dc:title>\n", escapeXML(opts.Title))
		}
		for i, author := range opts.Authors {
			fmt.Fprintf(&buf, "    <dc:creator id=\"creator%d\" opf:role=\"aut\">%s</dc:creator>\n", i, escapeXML(author))
		}
		for _, subject := range opts.Subjects {
			fmt.Fprintf(&buf, "    <dc:subject>%s</dc:subject>\n", escapeXML(subject))
		}
		if opts.Description != "" {
			fmt.Fprintf(&buf, "    <dc:description>%s</dc:description>\n", escapeXML(opts.Description))
		}
		buf.WriteString("    <dc:identifier id=\"bookid\">urn:uuid:test-book-id</dc:identifier>\n")
		buf.WriteString("    <dc:language>en</dc:language>\n")

		// Series (calibre format)
		if opts.Series != "" {
			fmt.Fprintf(&buf, "    <meta name=\"calibre:series\" content=\"%s\"/>\n", escapeXML(opts.Series))
			if opts.SeriesNumber != nil {
				fmt.Fprintf(&buf, "    <meta name=\"calibre:series_index\" content=\"%s\"/>\n", strconv.FormatFloat(*opts.SeriesNumber, 'f', 1, 64))
			}
		}

		if coverFilename != "" && coverStyle == CoverStyleMeta {
			buf.WriteString("    <meta name=\"cover\" content=\"book-image\"/>\n")
		}
		buf.WriteString("  </metadata>\n")
	}

	buf.WriteString("  <manifest>\n")
	buf.WriteString("    <item id=\"chapter1\" href=\"chapter1.xhtml\" media-type=\"application/xhtml+xml\"/>\n")
	if coverFilename != "" {
		switch coverStyle {
		case CoverStyleProperties:
			fmt.Fprintf(&buf, "    <item id=\"book-image\" href=\"%s\" media-type=\"%s\" properties=\"cover-image\"/>\n", coverFilename, coverMimeType)
		case CoverStyleID:
			fmt.Fprintf(&buf, "    <item id=\"Cover-Image\" href=\"%s\" media-type=\"%s\"/>\n", coverFilename, coverMimeType)
		default:
			fmt.Fprintf(&buf, "    <item id=\"book-image\" href=\"%s\" media-type=\"%s\"/>\n", coverFilename, coverMimeType)
		}
	}
	buf.WriteString("  </manifest>\n")

	buf.WriteString("  <spine>\n")
	buf.WriteString("    <itemref idref=\"chapter1\"/>\n")
	buf.WriteString("  </spine>\n")

	buf.WriteString("</package>")

	return buf.String()
}

func writeZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// GenerateImage returns a small solid-color image encoded as mimeType
// ("image/jpeg" or "image/png").
func GenerateImage(t *testing.T, mimeType string) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 60, 90))
	blue := color.RGBA{0, 100, 200, 255}
	for y := 0; y < 90; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, blue)
		}
	}

	var buf bytes.Buffer
	switch mimeType {
	case "image/jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			t.Fatalf("failed to encode JPEG: %v", err)
		}
	default: // image/png
		if err := png.Encode(&buf, img); err != nil {
			t.Fatalf("failed to encode PNG: %v", err)
		}
	}

	return buf.Bytes()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&apos;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
