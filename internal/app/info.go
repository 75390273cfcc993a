// Where: internal/app/info.go
// What: Info command for config/state output.
// Why: Give users a quick view of configuration and current status.
package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/tvwb/tradingview-webhooks-bot/internal/actions"
	"github.com/tvwb/tradingview-webhooks-bot/internal/config"
	"github.com/tvwb/tradingview-webhooks-bot/internal/meta"
	"github.com/tvwb/tradingview-webhooks-bot/internal/settings"
	"github.com/tvwb/tradingview-webhooks-bot/internal/version"
)

// runInfo displays configuration details and current environment state.
// Used when tvwb is invoked without arguments.
func runInfo(_ CLI, _ Dependencies, out io.Writer) int {
	home, err := config.HomeDir()
	if err != nil {
		fmt.Fprintln(out, err)
		return 1
	}
	configPath, err := config.GlobalConfigPath()
	if err != nil {
		fmt.Fprintln(out, err)
		return 1
	}
	cfg := config.LoadGlobalConfigOrDefault()
	st := settings.LoadOrDefault()

	fmt.Fprintln(out, "⚙️  Config")
	fmt.Fprintf(out, "   version: %s\n", version.GetVersion())
	fmt.Fprintf(out, "   home:    %s\n", home)
	fmt.Fprintf(out, "   path:    %s\n", configPath)
	fmt.Fprintf(out, "   listen:  %s:%d\n", cfg.Host, cfg.Port)

	fmt.Fprintln(out, "\n📡 Events")
	if len(st.Events) == 0 {
		fmt.Fprintln(out, "   none")
	}
	for _, ev := range st.Events {
		state := "active"
		if !ev.Active {
			state = "inactive"
		}
		linked := st.LinkedActions(ev.Name)
		detail := state
		if len(linked) > 0 {
			detail = fmt.Sprintf("%s, triggers %s", state, strings.Join(linked, ", "))
		}
		fmt.Fprintf(out, "   %-18s %s\n", ev.Name+":", detail)
	}

	fmt.Fprintln(out, "\n⚡ Actions")
	if len(st.Actions) == 0 {
		fmt.Fprintln(out, "   none")
	}
	for _, name := range st.Actions {
		detail := "ready"
		if !actions.Has(name) {
			detail = "not in catalog"
		}
		fmt.Fprintf(out, "   %-18s %s\n", name+":", detail)
	}

	fmt.Fprintln(out, "\n🗃️  Journal")
	fmt.Fprintf(out, "   backend: %s\n", cfg.Journal.Backend)
	if cfg.Journal.Backend == "dynamodb" {
		fmt.Fprintf(out, "   table:   %s\n", cfg.Journal.Table)
	}
	if cfg.Journal.ArchiveBucket != "" {
		fmt.Fprintf(out, "   archive: %s\n", cfg.Journal.ArchiveBucket)
	}

	fmt.Fprintf(out, "\nRun '%s --help' for the full command list.\n", meta.Slug)
	return 0
}

// runVersion prints the version information of the CLI.
func runVersion(out io.Writer) int {
	fmt.Fprintln(out, version.GetVersion())
	return 0
}
