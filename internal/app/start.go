// Where: internal/app/start.go
// What: The start command, preparation plus the serve loop.
// Why: One command takes a fresh host to a serving webhook endpoint.
package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tvwb/tradingview-webhooks-bot/internal/actions"
	"github.com/tvwb/tradingview-webhooks-bot/internal/config"
	"github.com/tvwb/tradingview-webhooks-bot/internal/constants"
	"github.com/tvwb/tradingview-webhooks-bot/internal/engine"
	"github.com/tvwb/tradingview-webhooks-bot/internal/envutil"
	"github.com/tvwb/tradingview-webhooks-bot/internal/journal"
	"github.com/tvwb/tradingview-webhooks-bot/internal/meta"
	"github.com/tvwb/tradingview-webhooks-bot/internal/notify"
	"github.com/tvwb/tradingview-webhooks-bot/internal/server"
	"github.com/tvwb/tradingview-webhooks-bot/internal/settings"
	"github.com/tvwb/tradingview-webhooks-bot/internal/ui"
	"github.com/tvwb/tradingview-webhooks-bot/internal/version"
)

// StartCmd starts the webhook server. The port is declared as a string
// so a malformed value reaches our own validation and reports a startup
// failure instead of a generic flag parse error.
type StartCmd struct {
	Host           string        `help:"Bind address (default: configured host)"`
	Port           string        `help:"Port to serve on (1-65535)"`
	Manifest       string        `help:"Dependency manifest path (default: tvwb.deps)"`
	SkipPrepare    bool          `name:"skip-prepare" help:"Skip host dependency resolution"`
	StartupTimeout time.Duration `name:"startup-timeout" help:"How long to wait for the server to become ready (default: configured timeout)"`
}

func runStart(cli CLI, deps Dependencies, out io.Writer) int {
	cfg := config.LoadGlobalConfigOrDefault()
	log := deps.Log
	console := ui.New(out)

	host := firstNonEmpty(cli.Start.Host, envutil.GetHostEnv(constants.HostSuffixHost), cfg.Host, meta.DefaultHost)
	rawPort := firstNonEmpty(cli.Start.Port, envutil.GetHostEnv(constants.HostSuffixPort), strconv.Itoa(cfg.Port))

	port, err := parsePort(rawPort)
	if err != nil {
		return exitWithError(out, &server.StartupError{Reason: err.Error()})
	}

	timeout := cli.Start.StartupTimeout
	if timeout <= 0 {
		timeout = cfg.StartupTimeout
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	if !cli.Start.SkipPrepare {
		if code := prepareEnvironment(cli.Start.Manifest, false, cfg, deps, out); code != 0 {
			return code
		}
	}

	creds, err := config.EnsureCredentials()
	if err != nil {
		return exitWithError(out, &server.StartupError{Reason: "prepare credentials", Err: err})
	}

	ctx := context.Background()
	openJournal := deps.Start.OpenJournal
	if openJournal == nil {
		openJournal = journal.Open
	}
	jnl, err := openJournal(ctx, journalOptions(cfg.Journal))
	if err != nil {
		return exitWithError(out, &server.StartupError{Reason: "open journal", Err: err})
	}

	env := actions.Env{Log: log, Journal: jnl, Notifier: buildNotifier(cfg)}
	eng := buildEngine(log, settings.LoadOrDefault(), creds.WebhookKey, env)

	newServer := deps.Start.NewServer
	if newServer == nil {
		newServer = NewServerFactory()
	}
	srv, err := newServer(server.Config{
		Host:    host,
		Port:    port,
		GUIKey:  creds.GUIKey,
		Version: version.GetVersion(),
	}, eng, jnl, log)
	if err != nil {
		return exitWithError(out, asStartupError("initialize server", err))
	}

	if err := srv.Start(); err != nil {
		return exitWithError(out, asStartupError("start server", err))
	}

	baseURL := "http://" + probeAddr(srv.Addr())
	waiter := deps.Start.Waiter
	if waiter == nil {
		waiter = NewReadinessWaiter()
	}
	if err := waiter.Wait(baseURL, timeout); err != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
		return exitWithError(out, &server.StartupError{Reason: "server not ready", Err: err})
	}

	console.Success("Webhook server ready")
	console.Item("Address", srv.Addr())
	console.Item("Webhook", baseURL+"/webhook")
	console.Item("Dashboard", baseURL+"/?gui_key="+creds.GUIKey)
	console.Info("Press Ctrl+C to stop.")

	signals := deps.Start.Signals
	if signals == nil {
		signals = NewSignalSource()
	}

	select {
	case sig := <-signals():
		log.Infof("received %s, shutting down", sig)
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return exitWithError(out, fmt.Errorf("shutdown: %w", err))
		}
		console.Success("Server stopped")
		return 0
	case err := <-srv.Err():
		if err != nil {
			return exitWithError(out, err)
		}
		return 0
	}
}

// parsePort validates the CLI port value. Unlike the in-process server,
// the CLI refuses port 0; a launcher binding a random port would leave
// the published port metadata meaningless.
func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q (expected an integer between 1 and 65535)", raw)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range (expected 1-65535)", port)
	}
	return port, nil
}

// probeAddr rewrites a wildcard bind address into one a local HTTP
// probe can reach.
func probeAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

func asStartupError(reason string, err error) error {
	if _, ok := err.(*server.StartupError); ok {
		return err
	}
	return &server.StartupError{Reason: reason, Err: err}
}

func journalOptions(cfg config.JournalConfig) journal.Options {
	return journal.Options{
		Backend:       cfg.Backend,
		Endpoint:      cfg.Endpoint,
		Region:        cfg.Region,
		Table:         cfg.Table,
		ArchiveBucket: cfg.ArchiveBucket,
	}
}

func buildNotifier(cfg config.GlobalConfig) notify.Notifier {
	topic := os.Getenv(constants.EnvNtfyTopic)
	if topic == "" {
		topic = cfg.NtfyTopic
	}
	if topic == "" {
		return notify.Nop{}
	}
	return notify.NewNtfyPublisher("", topic)
}

// buildEngine assembles the runtime engine from persisted settings.
// Unknown action names are skipped with a warning so one stale entry
// cannot keep the server down.
func buildEngine(log *logrus.Logger, st settings.Settings, webhookKey string, env actions.Env) *engine.Engine {
	eng := engine.New(log)

	for _, name := range st.Actions {
		act, err := actions.New(name, env)
		if err != nil {
			log.Warnf("skipping action %q: %v", name, err)
			continue
		}
		if err := eng.Actions.Register(act); err != nil {
			log.Warnf("skipping action %q: %v", name, err)
		}
	}

	for _, ev := range st.Events {
		key := ev.Key
		if key == "" {
			key = webhookKey
		}
		event := engine.NewEvent(ev.Name, key)
		event.Active = ev.Active
		if err := eng.Events.Register(event); err != nil {
			log.Warnf("skipping event %q: %v", ev.Name, err)
		}
	}

	for _, link := range st.Links {
		if err := eng.Link(link.Action, link.Event); err != nil {
			log.Warnf("skipping link %s -> %s: %v", link.Event, link.Action, err)
		}
	}
	return eng
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
