package theme

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
)

//go:embed *.tmpl
var templates embed.FS

// RenderCSS emits the theme as CSS custom properties plus one class per
// festival card.
func RenderCSS(t *Theme) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("theme cannot be nil")
	}

	tmplContent, err := templates.ReadFile("theme.css.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read CSS template: %w", err)
	}

	tmpl, err := template.New("theme.css").Parse(string(tmplContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSS template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, t); err != nil {
		return nil, fmt.Errorf("failed to execute CSS template: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderJSON emits the theme as indented JSON for the frontend.
func RenderJSON(t *Theme) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("theme cannot be nil")
	}
	return json.MarshalIndent(t, "", "  ")
}
