package report

import (
	"io"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

// markdownEscaper backslash-escapes the characters that would otherwise turn
// metadata into emphasis, links, headings, HTML or table cells.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`#`, `\#`,
	`<`, `\<`,
	`>`, `\>`,
	`|`, `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

var markdownTemplate = template.Must(template.New("report.md.tmpl").
	Funcs(template.FuncMap{"md": escapeMarkdown}).
	ParseFS(templates, "templates/report.md.tmpl"))

func renderMarkdown(w io.Writer, books []Book) error {
	if err := markdownTemplate.Execute(w, templateData{Title: Title, Books: books}); err != nil {
		return errors.Wrap(err, "render markdown report")
	}
	return nil
}
