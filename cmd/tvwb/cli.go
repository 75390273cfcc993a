// Where: cmd/tvwb/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"io"
	"os"

	"github.com/tvwb/tradingview-webhooks-bot/internal/app"
	"github.com/tvwb/tradingview-webhooks-bot/internal/docker"
	"github.com/tvwb/tradingview-webhooks-bot/internal/journal"
	"github.com/tvwb/tradingview-webhooks-bot/internal/manifest"
)

var newDockerClient = docker.NewClient

// buildDependencies constructs all runtime dependencies required by the CLI.
// The Docker client is optional: start and prepare work without a daemon as
// long as the manifest has no image entries, so a connection failure here
// degrades those paths instead of aborting every command.
func buildDependencies() (app.Dependencies, io.Closer) {
	var puller manifest.ImagePuller
	client, err := newDockerClient()
	if err != nil {
		client = nil
	} else {
		puller = docker.Puller{Client: client}
	}

	deps := app.Dependencies{
		Out:      os.Stdout,
		Prompter: app.HuhPrompter{},
		Start: app.StartDeps{
			NewServer:   app.NewServerFactory(),
			OpenJournal: journal.Open,
			Waiter:      app.NewReadinessWaiter(),
			Signals:     app.NewSignalSource(),
		},
		Prepare: app.PrepareDeps{
			Resolver:  manifest.NewResolver(puller),
			Provision: journal.Provision,
		},
		Image: app.ImageDeps{
			Runner: docker.ExecRunner{},
		},
		Container: app.ContainerDeps{
			Client: client,
		},
	}

	return deps, asCloser(client)
}

// asCloser attempts to cast the Docker client to an io.Closer.
// Returns nil if the client does not implement the Closer interface.
func asCloser(client docker.Client) io.Closer {
	if closer, ok := client.(io.Closer); ok {
		return closer
	}
	return nil
}
