// Package web embeds the server-rendered pages.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates
var Assets embed.FS

// Templates holds every page template, keyed by file name.
var Templates = template.Must(template.ParseFS(Assets, "templates/*.html"))
