// Where: internal/app/prepare.go
// What: Host environment preparation.
// Why: A webhook server that cannot resolve its dependencies must fail loudly, up front.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tvwb/tradingview-webhooks-bot/internal/config"
	"github.com/tvwb/tradingview-webhooks-bot/internal/journal"
	"github.com/tvwb/tradingview-webhooks-bot/internal/manifest"
	"github.com/tvwb/tradingview-webhooks-bot/internal/meta"
	"github.com/tvwb/tradingview-webhooks-bot/internal/settings"
	"github.com/tvwb/tradingview-webhooks-bot/internal/ui"
)

// PrepareCmd prepares the host without starting the server.
type PrepareCmd struct {
	Manifest     string `help:"Dependency manifest path (default: tvwb.deps)"`
	GenerateKeys bool   `name:"generate-keys" help:"Generate fresh GUI and webhook keys, replacing stored ones"`
}

func runPrepare(cli CLI, deps Dependencies, out io.Writer) int {
	cfg := config.LoadGlobalConfigOrDefault()
	return prepareEnvironment(cli.Prepare.Manifest, cli.Prepare.GenerateKeys, cfg, deps, out)
}

// prepareEnvironment creates the state directory, settings and
// credentials, then resolves the dependency manifest and provisions the
// journal backend. Any unresolvable dependency is fatal.
func prepareEnvironment(manifestFlag string, generateKeys bool, cfg config.GlobalConfig, deps Dependencies, out io.Writer) int {
	console := ui.New(out)
	console.Header("🔧", "Preparing environment")

	home, err := config.HomeDir()
	if err != nil {
		return exitWithError(out, err)
	}
	if err := os.MkdirAll(home, 0o755); err != nil {
		return exitWithError(out, fmt.Errorf("create %s: %w", home, err))
	}
	console.Item("Home", home)

	if err := settings.Ensure(); err != nil {
		return exitWithError(out, err)
	}
	var creds config.Credentials
	if generateKeys {
		creds, err = config.RotateCredentials()
	} else {
		creds, err = config.EnsureCredentials()
	}
	if err != nil {
		return exitWithError(out, err)
	}
	if creds.Generated {
		console.ItemPlain("Generated GUI and webhook keys")
	}

	path := manifestFlag
	if path == "" {
		path = meta.DefaultManifest
	}
	m, err := manifest.Load(path)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx := context.Background()
	if len(m.Requirements) == 0 {
		console.ItemPlain("No manifest entries, skipping dependency resolution")
	} else {
		console.Item("Manifest", path)
		resolver := deps.Prepare.Resolver
		if resolver == nil {
			resolver = manifest.NewResolver(nil)
		}
		resolutions, err := resolver.Resolve(ctx, m)
		if err != nil {
			var resErr *manifest.ResolutionError
			if errors.As(err, &resErr) {
				for _, f := range resErr.Failures {
					console.Warn(fmt.Sprintf("%s: %v", f.Requirement, f.Err))
				}
			}
			return exitWithError(out, err)
		}
		for _, res := range resolutions {
			console.Success(fmt.Sprintf("%s -> %s", res.Requirement, res.Detail))
		}
	}

	if cfg.Journal.Backend == "dynamodb" || cfg.Journal.ArchiveBucket != "" {
		provision := deps.Prepare.Provision
		if provision == nil {
			provision = journal.Provision
		}
		if err := provision(ctx, journalOptions(cfg.Journal), out); err != nil {
			return exitWithError(out, err)
		}
	}

	console.Success("Environment ready")
	return 0
}
