package fb2

import (
	"encoding/base64"
	"strings"
	"unicode"

	"github.com/beevik/etree"
	"github.com/shishobooks/bookshelf/pkg/errcodes"
)

const coverIDPrefix = "cover"

// findCoverBinary returns the first binary whose id starts with "cover". The
// binary referenced from coverpage is only used when no such binary exists.
func findCoverBinary(root *etree.Element, href string) *etree.Element {
	var binaries []*etree.Element
	for _, c := range root.ChildElements() {
		if is(c, "binary") {
			binaries = append(binaries, c)
		}
	}

	for _, b := range binaries {
		if strings.HasPrefix(b.SelectAttrValue("id", ""), coverIDPrefix) {
			return b
		}
	}
	if href == "" {
		return nil
	}
	for _, b := range binaries {
		if b.SelectAttrValue("id", "") == href {
			return b
		}
	}
	return nil
}

// decodeBinary decodes the base64 payload of a binary element. Line breaks and
// indentation inside the payload are ignored.
func decodeBinary(el *etree.Element) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(normalizeBase64(el.Text()))
	if err != nil {
		return nil, errcodes.IOFailure(err, "decode cover binary "+el.SelectAttrValue("id", ""))
	}
	return data, nil
}

func normalizeBase64(input string) string {
	var builder strings.Builder
	builder.Grow(len(input))
	for _, r := range input {
		if !unicode.IsSpace(r) {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}
