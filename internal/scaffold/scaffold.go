// Where: internal/scaffold/scaffold.go
// What: Generates new action source files from the embedded template.
// Why: A one-command starting point for custom webhook logic.
package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/tvwb/tradingview-webhooks-bot/assets"
)

// DefaultActionDir is where generated actions land inside a source
// checkout, next to the built-in ones.
const DefaultActionDir = "internal/actions"

// RenderAction renders the action template for the given name.
func RenderAction(name Name) ([]byte, error) {
	tmpl, err := template.New("action.go.tmpl").
		Funcs(sprig.TxtFuncMap()).
		ParseFS(assets.TemplatesFS, "templates/action.go.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse action template: %w", err)
	}
	data := map[string]string{
		"Camel": name.Camel(),
		"Snake": name.Snake(),
		"Kebab": name.Kebab(),
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render action template: %w", err)
	}
	return buf.Bytes(), nil
}

// CreateAction writes a new action source file into dir and returns the
// written path. Refuses to overwrite an existing file.
func CreateAction(name Name, dir string) (string, error) {
	if dir == "" {
		dir = DefaultActionDir
	}
	source, err := RenderAction(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create action dir: %w", err)
	}
	path := filepath.Join(dir, name.Snake()+".go")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("action file already exists: %s", path)
	}
	if err := os.WriteFile(path, source, 0o644); err != nil {
		return "", fmt.Errorf("write action file: %w", err)
	}
	return path, nil
}
