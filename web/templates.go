// Package web embeds the dashboard HTML templates.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/dashboard/*.html
var templateFS embed.FS

// Templates parses every dashboard template with funcs; templates are addressed by file name.
func Templates(funcs template.FuncMap) *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/dashboard/*.html"))
}
