// Where: internal/app/deps.go
// What: Injected dependencies and their default constructors.
// Why: Commands run against interfaces so tests never touch Docker, AWS or sockets.
package app

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tvwb/tradingview-webhooks-bot/internal/docker"
	"github.com/tvwb/tradingview-webhooks-bot/internal/engine"
	"github.com/tvwb/tradingview-webhooks-bot/internal/journal"
	"github.com/tvwb/tradingview-webhooks-bot/internal/manifest"
	"github.com/tvwb/tradingview-webhooks-bot/internal/server"
)

// Dependencies holds all injected dependencies required for CLI command
// execution. This structure enables dependency injection for testing and
// allows swapping implementations of various subsystems.
type Dependencies struct {
	Out      io.Writer
	Log      *logrus.Logger
	Now      func() time.Time
	Prompter Prompter

	Start     StartDeps
	Prepare   PrepareDeps
	Image     ImageDeps
	Container ContainerDeps
	Webhook   WebhookDeps
}

// StartDeps holds only the dependencies required by the start command.
type StartDeps struct {
	NewServer   ServerFactory
	OpenJournal JournalOpener
	Waiter      ReadinessWaiter
	Signals     SignalSource
}

// PrepareDeps holds only the dependencies required by the prepare command.
type PrepareDeps struct {
	Resolver  DependencyResolver
	Provision JournalProvisioner
}

// ImageDeps holds only the dependencies required by the image command.
type ImageDeps struct {
	Runner docker.CommandRunner
}

// ContainerDeps holds only the dependencies required by container commands.
type ContainerDeps struct {
	Client docker.Client
}

// WebhookDeps holds only the dependencies required by the webhook command.
type WebhookDeps struct {
	Client *http.Client
}

// WebServer is the slice of the server lifecycle the start command drives.
type WebServer interface {
	Start() error
	Err() <-chan error
	Shutdown(ctx context.Context) error
	Addr() string
}

// ServerFactory builds a web server from its configuration.
type ServerFactory func(cfg server.Config, eng *engine.Engine, jnl journal.Journal, log *logrus.Logger) (WebServer, error)

// NewServerFactory returns the factory backed by the real HTTP server.
func NewServerFactory() ServerFactory {
	return func(cfg server.Config, eng *engine.Engine, jnl journal.Journal, log *logrus.Logger) (WebServer, error) {
		srv, err := server.New(cfg, eng, jnl, log)
		if err != nil {
			return nil, err
		}
		return srv, nil
	}
}

// JournalOpener builds the configured journal backend.
type JournalOpener func(ctx context.Context, opts journal.Options) (journal.Journal, error)

// JournalProvisioner creates backend resources for the configured journal.
type JournalProvisioner func(ctx context.Context, opts journal.Options, out io.Writer) error

// DependencyResolver checks a manifest against the host.
type DependencyResolver interface {
	Resolve(ctx context.Context, m manifest.Manifest) ([]manifest.Resolution, error)
}

// SignalSource yields a channel that delivers termination signals.
type SignalSource func() <-chan os.Signal

// NewSignalSource subscribes to interrupt and terminate.
func NewSignalSource() SignalSource {
	return func() <-chan os.Signal {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		return ch
	}
}
