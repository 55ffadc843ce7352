package fb2

import (
	"html"
	"strings"

	"github.com/beevik/etree"
)

// htmlTags maps FictionBook markup onto the HTML element it renders as.
// Elements that aren't listed contribute only their text.
var htmlTags = map[string]string{
	"p":             "p",
	"subtitle":      "p",
	"text-author":   "p",
	"v":             "p",
	"emphasis":      "em",
	"strong":        "strong",
	"strikethrough": "s",
	"sub":           "sub",
	"sup":           "sup",
	"code":          "code",
	"cite":          "blockquote",
	"poem":          "div",
	"stanza":        "div",
}

// RenderHTML renders the children of an annotation (or any other flow
// element) as HTML.
func RenderHTML(el *etree.Element) string {
	var b strings.Builder
	renderChildren(&b, el)
	return b.String()
}

func renderChildren(b *strings.Builder, el *etree.Element) {
	for _, token := range el.Child {
		switch t := token.(type) {
		case *etree.CharData:
			b.WriteString(html.EscapeString(t.Data))
		case *etree.Element:
			renderElement(b, t)
		}
	}
}

func renderElement(b *strings.Builder, el *etree.Element) {
	switch el.Tag {
	case "empty-line":
		b.WriteString("<br>")
		return
	case "image":
		return
	}

	tag, ok := htmlTags[el.Tag]
	if !ok {
		renderChildren(b, el)
		return
	}
	b.WriteString("<" + tag + ">")
	renderChildren(b, el)
	b.WriteString("</" + tag + ">")
}
