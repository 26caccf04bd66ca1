// Package renderer turns reports into markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/cryptofolio"
)

//go:embed *.md
var templates embed.FS

// RenderEntry renders a single entry as a card, used to confirm edits and deletions.
func RenderEntry(e cryptofolio.Entry) string {
	partials := map[string]string{
		"entry_cost": "entry_cost.md",
	}
	if e.Kind == cryptofolio.Staking {
		partials["entry_cost"] = "entry_staking.md"
	}
	return renderTemplate("entry", "entry.md", partials, entryView{Entry: e, Marker: TypeMarker(e.Type)})
}

type entryView struct {
	cryptofolio.Entry
	Marker string
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
