package server

import (
	"embed"
	"fmt"
	"html/template"
	"path"
)

//go:embed templates/*.html
var templateFiles embed.FS

// ParseTemplate parses a page template from the embedded filesystem.
func ParseTemplate(name string) (*template.Template, error) {
	t, err := template.ParseFS(templateFiles, path.Join("templates", name))
	if err != nil {
		return nil, fmt.Errorf("[ParseTemplate] %s: %w", name, err)
	}
	return t, nil
}
