// Package renderer turns engine query results into markdown reports.
//
// Each report is a plain struct of pre-formatted fields, filled by a
// constructor that queries the store, and rendered through an embedded
// text/template. Keeping formatting out of the engine means the same
// query results can feed a terminal, a web dashboard or a test.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed *.md
var templates embed.FS

// renderTemplate is a generic utility to render a report template.
func renderTemplate(templateName, mainFile string, data any) string {
	content, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", mainFile, err)
	}
	tmpl, err := template.New(templateName).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", mainFile, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
