// Package web provides the embedded page templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed all:static
var staticFS embed.FS

// TemplateFS returns the page templates with "templates" as the root.
func TemplateFS() (fs.FS, error) {
	return fs.Sub(templateFS, "templates")
}

// StaticFS returns the stylesheet and scripts served under /static/.
func StaticFS() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
