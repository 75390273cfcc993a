// Where: internal/app/action.go
// What: Action management commands.
// Why: Settings mutations and scaffolding for custom webhook logic.
package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/tvwb/tradingview-webhooks-bot/internal/actions"
	"github.com/tvwb/tradingview-webhooks-bot/internal/scaffold"
	"github.com/tvwb/tradingview-webhooks-bot/internal/settings"
	"github.com/tvwb/tradingview-webhooks-bot/internal/ui"
)

type ActionCmd struct {
	Create   ActionCreateCmd   `cmd:"" help:"Create a new action source file from the template"`
	Register ActionRegisterCmd `cmd:"" help:"Register an action in settings"`
	Link     ActionLinkCmd     `cmd:"" help:"Link an action to an event"`
	Unlink   ActionUnlinkCmd   `cmd:"" help:"Unlink an action from an event"`
	Remove   ActionRemoveCmd   `cmd:"" help:"Remove an action and its links from settings" aliases:"unregister"`
	List     ActionListCmd     `cmd:"" help:"List registered and available actions"`
}

type ActionCreateCmd struct {
	Name     string `arg:"" help:"CamelCase action name, e.g. MyAction"`
	Register bool   `help:"Register the action in settings after creating it"`
	Dir      string `help:"Directory for the generated source file"`
}

type ActionRegisterCmd struct {
	Name string `arg:"" help:"Action name, e.g. my-action"`
}

type ActionLinkCmd struct {
	Action string `arg:"" help:"Action name"`
	Event  string `arg:"" help:"Event name"`
}

type ActionUnlinkCmd struct {
	Action string `arg:"" help:"Action name"`
	Event  string `arg:"" help:"Event name"`
}

type ActionRemoveCmd struct {
	Name string `arg:"" help:"Action name"`
}

type ActionListCmd struct{}

func runActionCreate(cli CLI, deps Dependencies, out io.Writer) int {
	console := ui.New(out)

	name, err := scaffold.ParseName(cli.Action.Create.Name)
	if err != nil {
		return exitWithError(out, err)
	}
	path, err := scaffold.CreateAction(name, cli.Action.Create.Dir)
	if err != nil {
		return exitWithError(out, err)
	}
	console.Success(fmt.Sprintf("Action created: %s", path))

	register := cli.Action.Create.Register
	if !register && deps.Prompter != nil {
		answer, err := deps.Prompter.Confirm("Register action?")
		if err != nil {
			return exitWithError(out, err)
		}
		register = answer
	}
	if register {
		if code := registerAction(name.Kebab(), console, out); code != 0 {
			return code
		}
	}
	console.Info("Rebuild the binary to compile the new action in.")
	return 0
}

func runActionRegister(cli CLI, _ Dependencies, out io.Writer) int {
	return registerAction(cli.Action.Register.Name, ui.New(out), out)
}

func registerAction(name string, console *ui.Console, out io.Writer) int {
	st := settings.LoadOrDefault()
	if err := st.RegisterAction(name); err != nil {
		return exitWithError(out, err)
	}
	if err := settings.Save(st); err != nil {
		return exitWithError(out, err)
	}
	console.Success(fmt.Sprintf("Action registered: %s", name))
	if !actions.Has(name) {
		console.Warn("action is not in the compiled catalog; the server skips it until rebuilt")
	}
	return 0
}

func runActionLink(cli CLI, _ Dependencies, out io.Writer) int {
	st := settings.LoadOrDefault()
	if err := st.LinkAction(cli.Action.Link.Action, cli.Action.Link.Event); err != nil {
		return exitWithError(out, err)
	}
	if err := settings.Save(st); err != nil {
		return exitWithError(out, err)
	}
	ui.New(out).Success(fmt.Sprintf("%s now triggers %s", cli.Action.Link.Event, cli.Action.Link.Action))
	return 0
}

func runActionUnlink(cli CLI, _ Dependencies, out io.Writer) int {
	st := settings.LoadOrDefault()
	if err := st.UnlinkAction(cli.Action.Unlink.Action, cli.Action.Unlink.Event); err != nil {
		return exitWithError(out, err)
	}
	if err := settings.Save(st); err != nil {
		return exitWithError(out, err)
	}
	ui.New(out).Success(fmt.Sprintf("%s no longer triggers %s", cli.Action.Unlink.Event, cli.Action.Unlink.Action))
	return 0
}

func runActionRemove(cli CLI, _ Dependencies, out io.Writer) int {
	st := settings.LoadOrDefault()
	if err := st.UnregisterAction(cli.Action.Remove.Name); err != nil {
		return exitWithError(out, err)
	}
	if err := settings.Save(st); err != nil {
		return exitWithError(out, err)
	}
	ui.New(out).Success(fmt.Sprintf("Action removed: %s", cli.Action.Remove.Name))
	return 0
}

func runActionList(_ CLI, _ Dependencies, out io.Writer) int {
	st := settings.LoadOrDefault()
	console := ui.New(out)
	console.Header("⚡", "Actions")

	for _, name := range st.Actions {
		detail := "registered"
		if events := eventsLinkedTo(st, name); len(events) > 0 {
			detail = "triggers on " + strings.Join(events, ", ")
		}
		if !actions.Has(name) {
			detail += " (not in catalog)"
		}
		console.Item(name, detail)
	}

	var available []string
	for _, name := range actions.Names() {
		if !st.HasAction(name) {
			available = append(available, name)
		}
	}
	if len(available) > 0 {
		console.Blank()
		console.ItemPlain("Available: " + strings.Join(available, ", "))
	}
	return 0
}

func eventsLinkedTo(st settings.Settings, action string) []string {
	var events []string
	for _, link := range st.Links {
		if link.Action == action {
			events = append(events, link.Event)
		}
	}
	return events
}
