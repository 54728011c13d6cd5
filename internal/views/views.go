// Package views holds the server-rendered HTML pages.
package views

import (
	"embed"
	"html/template"

	"cardhub/internal/models"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"enddate": func(d models.Date) string {
		if d.IsInfinite() {
			return "open"
		}
		return d.String()
	},
	"status": func(active bool) string {
		if active {
			return "active"
		}
		return "inactive"
	},
}

// Load parses every page template. It panics on a malformed template since
// the templates are compiled into the binary.
func Load() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/*.html"))
}
