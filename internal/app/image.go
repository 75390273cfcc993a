// Where: internal/app/image.go
// What: Image build command.
// Why: Produces the shippable container with the serve port baked in.
package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/tvwb/tradingview-webhooks-bot/internal/config"
	"github.com/tvwb/tradingview-webhooks-bot/internal/docker"
	"github.com/tvwb/tradingview-webhooks-bot/internal/ui"
)

type ImageCmd struct {
	Build ImageBuildCmd `cmd:"" help:"Build the service container image"`
}

type ImageBuildCmd struct {
	Tag        string `help:"Image tag (default: tvwb:latest)"`
	Context    string `name:"context" help:"Build context directory (default: current directory)"`
	Base       string `help:"Runtime base image (default: alpine)"`
	Port       int    `help:"Port the image exposes and serves on (default: 80)"`
	RecipeOnly bool   `name:"recipe-only" help:"Render the build recipe without building"`
}

func runImageBuild(cli CLI, deps Dependencies, out io.Writer) int {
	console := ui.New(out)

	home, err := config.HomeDir()
	if err != nil {
		return exitWithError(out, err)
	}
	opts := docker.BuildOptions{
		Tag:          cli.Image.Build.Tag,
		ContextDir:   cli.Image.Build.Context,
		RecipeDir:    filepath.Join(home, "build"),
		RuntimeImage: cli.Image.Build.Base,
		Port:         cli.Image.Build.Port,
	}

	if cli.Image.Build.RecipeOnly {
		path, err := docker.WriteRecipe(opts)
		if err != nil {
			return exitWithError(out, err)
		}
		console.Success("Recipe written")
		console.Item("Recipe", path)
		return 0
	}

	runner := deps.Image.Runner
	if runner == nil {
		runner = docker.ExecRunner{}
	}
	tag, err := docker.Build(context.Background(), runner, opts)
	if err != nil {
		return exitWithError(out, err)
	}
	console.Success(fmt.Sprintf("Image built: %s", tag))
	console.Info("Run it with: tvwb container up")
	return 0
}
