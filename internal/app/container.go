// Where: internal/app/container.go
// What: Server container lifecycle commands.
// Why: Run the built image without remembering docker flags.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/tvwb/tradingview-webhooks-bot/internal/config"
	"github.com/tvwb/tradingview-webhooks-bot/internal/docker"
	"github.com/tvwb/tradingview-webhooks-bot/internal/meta"
	"github.com/tvwb/tradingview-webhooks-bot/internal/state"
	"github.com/tvwb/tradingview-webhooks-bot/internal/ui"
)

type ContainerCmd struct {
	Up     ContainerUpCmd     `cmd:"" help:"Start the server container"`
	Down   ContainerDownCmd   `cmd:"" help:"Stop and remove the server containers"`
	Status ContainerStatusCmd `cmd:"" help:"Show container status"`
}

type ContainerUpCmd struct {
	Image string `help:"Image tag (default: tvwb:latest)"`
	Port  int    `help:"Host port to publish (default: configured port)"`
	Name  string `help:"Container name (default: tvwb-server)"`
}

type ContainerDownCmd struct {
	Force bool `short:"f" help:"Remove without confirmation"`
}

type ContainerStatusCmd struct{}

func runContainerUp(cli CLI, deps Dependencies, out io.Writer) int {
	client := deps.Container.Client
	if client == nil {
		return exitWithError(out, fmt.Errorf("docker is not available"))
	}
	console := ui.New(out)

	port := cli.Container.Up.Port
	if port == 0 {
		port = config.LoadGlobalConfigOrDefault().Port
	}
	info, err := docker.Up(context.Background(), client, docker.UpOptions{
		Image:    cli.Container.Up.Image,
		Name:     cli.Container.Up.Name,
		HostPort: port,
	})
	if err != nil {
		return exitWithError(out, err)
	}
	console.Success("Container running")
	console.Item("Name", info.Name)
	console.Item("Image", info.Image)
	console.Item("Publish", fmt.Sprintf("%d -> %d", port, meta.ContainerPort))
	return 0
}

func runContainerDown(cli CLI, deps Dependencies, out io.Writer) int {
	client := deps.Container.Client
	if client == nil {
		return exitWithError(out, fmt.Errorf("docker is not available"))
	}
	console := ui.New(out)

	containers, err := docker.List(context.Background(), client)
	if err != nil {
		return exitWithError(out, err)
	}
	if len(containers) == 0 {
		console.ItemPlain("Nothing to remove.")
		return 0
	}
	if !cli.Container.Down.Force && deps.Prompter != nil {
		answer, err := deps.Prompter.Confirm(fmt.Sprintf("Remove %d container(s)?", len(containers)))
		if err != nil {
			return exitWithError(out, err)
		}
		if !answer {
			console.ItemPlain("Aborted.")
			return 0
		}
	}

	removed, err := docker.Down(context.Background(), client)
	if err != nil {
		return exitWithError(out, err)
	}
	for _, name := range removed {
		console.Success(fmt.Sprintf("Removed: %s", name))
	}
	return 0
}

func runContainerStatus(_ CLI, deps Dependencies, out io.Writer) int {
	client := deps.Container.Client
	if client == nil {
		return exitWithError(out, fmt.Errorf("docker is not available"))
	}
	console := ui.New(out)
	console.Header("📦", "Containers")

	containers, err := docker.List(context.Background(), client)
	if err != nil {
		return exitWithError(out, err)
	}
	console.Item("Service", string(serviceState(containers)))
	if len(containers) == 0 {
		console.ItemPlain("No containers.")
		return 0
	}
	for _, ctr := range containers {
		console.Item(ctr.Name, fmt.Sprintf("%s (%s, %s)", ctr.State, ctr.Image, ctr.ID))
	}
	return 0
}

func serviceState(containers []docker.ContainerInfo) state.State {
	infos := make([]state.ContainerInfo, 0, len(containers))
	for _, ctr := range containers {
		infos = append(infos, state.ContainerInfo{Name: ctr.Name, State: ctr.State})
	}
	return state.Derive(infos)
}
