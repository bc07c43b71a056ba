package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"eventboard/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// A template named X is three files: X_subject.txt, X.html and X.txt.
var (
	htmlTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

// templateRenderer implements domain.EmailTemplateRenderer over the embedded templates.
type templateRenderer struct {
	html *template.Template
	text *texttemplate.Template
}

// NewTemplateRenderer returns an EmailTemplateRenderer backed by the templates
// folder, parsed once at start-up.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{html: htmlTemplates, text: textTemplates}
}

// Render executes the named template (e.g. "request_decision") with data and
// returns subject, html, and text bodies. HTML output is escaped.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	subject, err = executeText(r.text, templateName+"_subject.txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	htmlBody, err = executeHTML(r.html, templateName+".html", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	textBody, err = executeText(r.text, templateName+".txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return strings.TrimSpace(subject), htmlBody, textBody, nil
}

func executeHTML(set *template.Template, name string, data any) (string, error) {
	t := set.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func executeText(set *texttemplate.Template, name string, data any) (string, error) {
	t := set.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
