// Where: internal/docker/image.go
// What: Service image recipe rendering and build.
// Why: The container image is how the bot ships with its port contract baked in.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/tvwb/tradingview-webhooks-bot/assets"
	"github.com/tvwb/tradingview-webhooks-bot/internal/meta"
)

const (
	defaultBuilderImage = "golang:1.25-alpine"
	defaultRuntimeImage = "alpine:3.20"
)

// BuildOptions parameterizes the image recipe and build.
type BuildOptions struct {
	Tag          string
	ContextDir   string
	RecipeDir    string
	BuilderImage string
	RuntimeImage string
	Binary       string
	Port         int
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.Tag == "" {
		o.Tag = meta.DefaultImageTag
	}
	if o.ContextDir == "" {
		o.ContextDir = "."
	}
	if o.BuilderImage == "" {
		o.BuilderImage = defaultBuilderImage
	}
	if o.RuntimeImage == "" {
		o.RuntimeImage = defaultRuntimeImage
	}
	if o.Binary == "" {
		o.Binary = meta.AppName
	}
	if o.Port == 0 {
		o.Port = meta.ContainerPort
	}
	return o
}

// RenderRecipe renders the embedded Dockerfile template.
func RenderRecipe(opts BuildOptions) ([]byte, error) {
	opts = opts.withDefaults()
	tmpl, err := template.New("dockerfile.tmpl").
		Funcs(sprig.TxtFuncMap()).
		ParseFS(assets.TemplatesFS, "templates/dockerfile.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse recipe template: %w", err)
	}
	var buf bytes.Buffer
	data := map[string]any{
		"Binary":       opts.Binary,
		"BuilderImage": opts.BuilderImage,
		"RuntimeImage": opts.RuntimeImage,
		"Port":         opts.Port,
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render recipe: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteRecipe renders the recipe and writes it under the recipe dir,
// returning the written path.
func WriteRecipe(opts BuildOptions) (string, error) {
	opts = opts.withDefaults()
	if opts.RecipeDir == "" {
		return "", fmt.Errorf("recipe dir is required")
	}
	recipe, err := RenderRecipe(opts)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(opts.RecipeDir, 0o755); err != nil {
		return "", fmt.Errorf("create recipe dir: %w", err)
	}
	path := filepath.Join(opts.RecipeDir, "Dockerfile")
	if err := os.WriteFile(path, recipe, 0o644); err != nil {
		return "", fmt.Errorf("write recipe: %w", err)
	}
	return path, nil
}

// Build writes the recipe and runs a docker build against the context
// dir. Returns the image tag that was built.
func Build(ctx context.Context, runner CommandRunner, opts BuildOptions) (string, error) {
	opts = opts.withDefaults()
	path, err := WriteRecipe(opts)
	if err != nil {
		return "", err
	}
	args := []string{"build", "-t", opts.Tag, "-f", path, opts.ContextDir}
	if err := runner.Run(ctx, "", "docker", args...); err != nil {
		return "", fmt.Errorf("docker build: %w", err)
	}
	return opts.Tag, nil
}
