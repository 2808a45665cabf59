// Package prompt renders the opening message of a conversation from a
// natural-language request and the contents of the files it concerns.
package prompt

import (
	"fmt"
	"os"
	"strings"
	"text/template"
)

// defaultTemplate frames the request and inlines each file in a fenced
// block. Map iteration in text/template is key-sorted, so output is
// deterministic.
const defaultTemplate = "{{.Request}}\n" +
	"{{range $name, $content := .Files}}\n" +
	"### {{$name}}\n\n" +
	"```\n" +
	"{{$content}}\n" +
	"```\n" +
	"{{end}}"

type promptData struct {
	Request string
	Files   map[string]string
}

// Render produces the opening prompt from the built-in template.
func Render(request string, files map[string]string) (string, error) {
	return render("bessie", defaultTemplate, request, files)
}

// RenderFile is Render with a user-supplied template file. The
// template sees {{.Request}} and {{.Files}}.
func RenderFile(path, request string, files map[string]string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", path, err)
	}
	return render(path, string(raw), request, files)
}

func render(name, text, request string, files map[string]string) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}

	normalized := make(map[string]string, len(files))
	for file, content := range files {
		normalized[file] = strings.TrimRight(content, "\n")
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, promptData{Request: request, Files: normalized}); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}
