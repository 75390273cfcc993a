// Where: internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/tvwb/tradingview-webhooks-bot/internal/actions"
	"github.com/tvwb/tradingview-webhooks-bot/internal/config"
	"github.com/tvwb/tradingview-webhooks-bot/internal/constants"
	"github.com/tvwb/tradingview-webhooks-bot/internal/envutil"
	"github.com/tvwb/tradingview-webhooks-bot/internal/logging"
	"github.com/tvwb/tradingview-webhooks-bot/internal/notify"
)

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	EnvFile  string `name:"env-file" help:"Path to .env file"`
	LogLevel string `name:"log-level" help:"Log level (debug|info|warn|error)"`

	Start     StartCmd     `cmd:"" help:"Prepare the environment and run the webhook server"`
	Prepare   PrepareCmd   `cmd:"" help:"Prepare the host environment without starting"`
	Action    ActionCmd    `cmd:"" help:"Manage actions"`
	Event     EventCmd     `cmd:"" help:"Manage events"`
	Webhook   WebhookCmd   `cmd:"" help:"Send a test webhook"`
	Image     ImageCmd     `cmd:"" help:"Build the service container image"`
	Container ContainerCmd `cmd:"" help:"Manage the server container"`
	Version   VersionCmd   `cmd:"" help:"Show version information"`
}

type VersionCmd struct{}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}

	// A flag and its value glued into one argument (a quoted "--port 80")
	// parses as an unknown flag with a space in its name. Reject it
	// explicitly; splitting it silently would mask a broken invocation.
	if fused, found := detectFusedToken(args); found {
		fmt.Fprintf(out, "invalid argument %q: flag and value are fused into a single token\n", fused)
		fmt.Fprintf(out, "Pass the flag and its value as separate arguments, e.g. %s\n", fused)
		return 1
	}

	if err := config.EnsureGlobalConfig(); err != nil {
		return exitWithError(out, err)
	}

	// Handle no arguments: show current configuration and state
	if len(args) == 0 {
		return runInfo(CLI{}, deps, out)
	}

	cli := CLI{}
	parser, err := kong.New(&cli)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return handleParseError(args, err, deps, out)
	}

	// Load environment file if provided or if .env exists in current directory
	if cli.EnvFile != "" {
		if err := godotenv.Load(cli.EnvFile); err != nil {
			fmt.Fprintf(out, "Warning: failed to load env file %s: %v\n", cli.EnvFile, err)
		}
	} else {
		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(); err != nil {
				fmt.Fprintf(out, "Warning: failed to load .env: %v\n", err)
			}
		}
	}

	if deps.Log == nil {
		deps.Log = buildLogger(cli)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	command := ctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, deps, out); handled {
		return exitCode
	}

	fmt.Fprintln(out, "unknown command")
	return 1
}

type commandHandler func(CLI, Dependencies, io.Writer) int

type prefixHandler struct {
	prefix  string
	handler commandHandler
}

func dispatchCommand(command string, cli CLI, deps Dependencies, out io.Writer) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"start":            runStart,
		"prepare":          runPrepare,
		"action list":      runActionList,
		"event list":       runEventList,
		"image build":      runImageBuild,
		"container up":     runContainerUp,
		"container down":   runContainerDown,
		"container status": runContainerStatus,
		"version":          func(_ CLI, _ Dependencies, out io.Writer) int { return runVersion(out) },
	}

	if handler, ok := exactHandlers[command]; ok {
		return handler(cli, deps, out), true
	}

	prefixHandlers := []prefixHandler{
		{prefix: "action create", handler: runActionCreate},
		{prefix: "action register", handler: runActionRegister},
		{prefix: "action link", handler: runActionLink},
		{prefix: "action unlink", handler: runActionUnlink},
		{prefix: "action remove", handler: runActionRemove},
		{prefix: "action unregister", handler: runActionRemove},
		{prefix: "event create", handler: runEventCreate},
		{prefix: "event register", handler: runEventCreate},
		{prefix: "event remove", handler: runEventRemove},
		{prefix: "event unregister", handler: runEventRemove},
		{prefix: "event trigger", handler: runEventTrigger},
		{prefix: "event activate", handler: runEventActivate},
		{prefix: "event deactivate", handler: runEventDeactivate},
		{prefix: "webhook send", handler: runWebhookSend},
	}

	for _, entry := range prefixHandlers {
		if strings.HasPrefix(command, entry.prefix) {
			return entry.handler(cli, deps, out), true
		}
	}

	return 1, false
}

// detectFusedToken scans raw arguments for a long flag carrying
// whitespace, the signature of a flag and value quoted together.
func detectFusedToken(args []string) (string, bool) {
	for _, arg := range args {
		if strings.HasPrefix(arg, "--") && strings.ContainsAny(arg, " \t") {
			return arg, true
		}
	}
	return "", false
}

// buildLogger constructs the logger from flag, environment and config,
// in that order, and attaches the ntfy hook when a topic is configured.
func buildLogger(cli CLI) *logrus.Logger {
	cfg := config.LoadGlobalConfigOrDefault()
	level := cli.LogLevel
	if level == "" {
		level = envutil.GetHostEnv(constants.HostSuffixLogLevel)
	}
	if level == "" {
		level = cfg.LogLevel
	}
	log := logging.New(level)

	topic := os.Getenv(constants.EnvNtfyTopic)
	if topic == "" {
		topic = cfg.NtfyTopic
	}
	if topic != "" {
		log.AddHook(logging.NewNotifyHook(notify.NewNtfyPublisher("", topic)))
	}
	return log
}

// commandName extracts the first non-flag argument from the command line,
// which represents the command name. Recognizes and skips known flag pairs.
func commandName(args []string) string {
	skipNext := false
	for _, arg := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.HasPrefix(arg, "-") {
			switch arg {
			case "--env-file", "--log-level":
				skipNext = true
			}
			continue
		}
		return arg
	}
	return ""
}

// handleParseError provides user-friendly error messages for parse failures.
func handleParseError(args []string, err error, deps Dependencies, out io.Writer) int {
	errStr := err.Error()

	if strings.Contains(errStr, "expected") {
		cmd := commandName(args)
		switch {
		case cmd == "action" && strings.Contains(errStr, "expected one of"):
			return runActionList(CLI{}, deps, out)

		case cmd == "action" && strings.Contains(errStr, "<name>"):
			return exitWithSuggestionAndAvailable(out, "Action name required.",
				[]string{"tvwb action create <Name>", "tvwb action list"}, actions.Names())

		case cmd == "event" && strings.Contains(errStr, "expected one of"):
			return runEventList(CLI{}, deps, out)

		case cmd == "event" && strings.Contains(errStr, "<name>"):
			return exitWithSuggestion(out, "Event name required.",
				[]string{"tvwb event create <Name>", "tvwb event list"})
		}
	}

	return exitWithError(out, err)
}
