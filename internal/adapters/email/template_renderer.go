package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"videoinvites/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// mailTemplate is one message in three parts: templates/<name>_subject.txt,
// templates/<name>.txt and templates/<name>.html.
type mailTemplate struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

// templateRenderer serves the SES path; Brevo renders its own hosted templates.
type templateRenderer struct {
	templates map[string]mailTemplate
}

// NewTemplateRenderer parses every message the API sends, currently only the reset code.
// A missing parameter fails the render instead of mailing "<no value>".
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	r := &templateRenderer{templates: make(map[string]mailTemplate)}
	for _, name := range []string{domain.TemplateResetCode} {
		r.templates[name] = mailTemplate{
			subject: parseText(name + "_subject.txt"),
			text:    parseText(name + ".txt"),
			html: htmltemplate.Must(htmltemplate.New(name+".html").Option("missingkey=error").
				ParseFS(templateFS, "templates/"+name+".html")),
		}
	}
	return r
}

func parseText(file string) *texttemplate.Template {
	return texttemplate.Must(texttemplate.New(file).Option("missingkey=error").ParseFS(templateFS, "templates/"+file))
}

func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	t, ok := r.templates[templateName]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", templateName)
	}
	var buf bytes.Buffer
	if err := t.subject.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := t.html.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	htmlBody = buf.String()

	buf.Reset()
	if err := t.text.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return subject, htmlBody, buf.String(), nil
}
