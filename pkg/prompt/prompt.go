// Package prompt renders system prompt templates.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// Renderer turns a template and its variables into a final prompt string.
type Renderer interface {
	Render(tmpl string, vars map[string]any) (string, error)
}

// TemplateRenderer is the text/template backed Renderer. Unknown variables
// are a render error rather than silent "<no value>" output.
type TemplateRenderer struct {
	funcs template.FuncMap
}

// NewTemplateRenderer builds a TemplateRenderer. Funcs may be nil.
func NewTemplateRenderer(funcs template.FuncMap) *TemplateRenderer {
	return &TemplateRenderer{funcs: funcs}
}

// Render implements Renderer.
func (r *TemplateRenderer) Render(tmpl string, vars map[string]any) (string, error) {
	t := template.New("prompt").Option("missingkey=error")
	if r.funcs != nil {
		t = t.Funcs(r.funcs)
	}
	t, err := t.Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("prompt: parse template: %w", err)
	}

	var buf strings.Builder
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("prompt: render template: %w", err)
	}
	return buf.String(), nil
}
