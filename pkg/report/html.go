package report

import (
	"embed"
	"html/template"
	"io"

	"github.com/pkg/errors"
)

//go:embed templates/*.tmpl
var templates embed.FS

var htmlTemplate = template.Must(template.ParseFS(templates, "templates/report.html.tmpl"))

type templateData struct {
	Title string
	Books []Book
}

func renderHTML(w io.Writer, books []Book) error {
	if err := htmlTemplate.Execute(w, templateData{Title: Title, Books: books}); err != nil {
		return errors.Wrap(err, "render html report")
	}
	return nil
}
