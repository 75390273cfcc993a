// Where: internal/app/event.go
// What: Event management commands.
// Why: Events are settings data; these commands shape what webhooks can fire.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/tvwb/tradingview-webhooks-bot/internal/actions"
	"github.com/tvwb/tradingview-webhooks-bot/internal/config"
	"github.com/tvwb/tradingview-webhooks-bot/internal/engine"
	"github.com/tvwb/tradingview-webhooks-bot/internal/journal"
	"github.com/tvwb/tradingview-webhooks-bot/internal/scaffold"
	"github.com/tvwb/tradingview-webhooks-bot/internal/settings"
	"github.com/tvwb/tradingview-webhooks-bot/internal/ui"
)

type EventCmd struct {
	Create     EventCreateCmd     `cmd:"" help:"Create and register a new webhook event" aliases:"register"`
	Remove     EventRemoveCmd     `cmd:"" help:"Remove an event and its links" aliases:"unregister"`
	Trigger    EventTriggerCmd    `cmd:"" help:"Run an event's linked actions locally"`
	Activate   EventActivateCmd   `cmd:"" help:"Activate an event"`
	Deactivate EventDeactivateCmd `cmd:"" help:"Deactivate an event"`
	List       EventListCmd       `cmd:"" help:"List registered events"`
}

type EventCreateCmd struct {
	Name string `arg:"" help:"CamelCase event name, e.g. MyEvent"`
}

type EventRemoveCmd struct {
	Name string `arg:"" help:"Event name"`
}

type EventTriggerCmd struct {
	Name    string `arg:"" help:"Event name"`
	Payload string `help:"JSON payload for the synthetic delivery" default:"{\"test\": \"data\"}"`
}

type EventActivateCmd struct {
	Name string `arg:"" help:"Event name"`
}

type EventDeactivateCmd struct {
	Name string `arg:"" help:"Event name"`
}

type EventListCmd struct{}

func runEventCreate(cli CLI, _ Dependencies, out io.Writer) int {
	console := ui.New(out)

	name, err := scaffold.ParseName(cli.Event.Create.Name)
	if err != nil {
		return exitWithError(out, err)
	}
	ev := settings.Event{
		Name:   name.Kebab(),
		Active: true,
		Key:    newEventKey(name.Kebab()),
	}

	st := settings.LoadOrDefault()
	if err := st.RegisterEvent(ev); err != nil {
		return exitWithError(out, err)
	}
	if err := settings.Save(st); err != nil {
		return exitWithError(out, err)
	}

	console.Success(fmt.Sprintf("Event created: %s", ev.Name))
	console.Item("Webhook key", ev.Key)
	console.Info("Put this key in the alert payload's \"key\" field.")
	return 0
}

// newEventKey builds a per-event webhook key: the event name plus a
// random suffix, so keys are recognizable in alert configs yet unguessable.
func newEventKey(name string) string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return name + ":" + hex.EncodeToString(buf)
}

func runEventRemove(cli CLI, _ Dependencies, out io.Writer) int {
	st := settings.LoadOrDefault()
	if err := st.UnregisterEvent(cli.Event.Remove.Name); err != nil {
		return exitWithError(out, err)
	}
	if err := settings.Save(st); err != nil {
		return exitWithError(out, err)
	}
	ui.New(out).Success(fmt.Sprintf("Event removed: %s", cli.Event.Remove.Name))
	return 0
}

// runEventTrigger fires the named event in-process against a memory
// journal. It exercises the linked actions without a running server.
func runEventTrigger(cli CLI, deps Dependencies, out io.Writer) int {
	console := ui.New(out)
	cfg := config.LoadGlobalConfigOrDefault()

	creds, err := config.EnsureCredentials()
	if err != nil {
		return exitWithError(out, err)
	}

	env := actions.Env{
		Log:      deps.Log,
		Journal:  journal.NewMemory(50),
		Notifier: buildNotifier(cfg),
	}
	eng := buildEngine(deps.Log, settings.LoadOrDefault(), creds.WebhookKey, env)

	ev, err := eng.Events.Get(cli.Event.Trigger.Name)
	if err != nil {
		return exitWithError(out, err)
	}

	delivery := &engine.Delivery{
		ID:         uuid.NewString(),
		ReceivedAt: deps.Now(),
		Payload:    []byte(cli.Event.Trigger.Payload),
	}
	result := eng.Trigger(context.Background(), ev, delivery)

	for _, ar := range result.Results {
		if ar.Err != nil {
			console.Warn(fmt.Sprintf("%s: %v", ar.Action, ar.Err))
		} else {
			console.Success(ar.Action)
		}
	}
	if len(result.Results) == 0 {
		console.ItemPlain("No actions ran (event inactive or nothing linked).")
	}
	return 0
}

func runEventActivate(cli CLI, _ Dependencies, out io.Writer) int {
	return setEventActive(cli.Event.Activate.Name, true, out)
}

func runEventDeactivate(cli CLI, _ Dependencies, out io.Writer) int {
	return setEventActive(cli.Event.Deactivate.Name, false, out)
}

func setEventActive(name string, active bool, out io.Writer) int {
	st := settings.LoadOrDefault()
	found := false
	for i := range st.Events {
		if st.Events[i].Name == name {
			st.Events[i].Active = active
			found = true
			break
		}
	}
	if !found {
		return exitWithError(out, settings.ErrEventNotFound)
	}
	if err := settings.Save(st); err != nil {
		return exitWithError(out, err)
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	ui.New(out).Success(fmt.Sprintf("Event %s: %s", state, name))
	return 0
}

func runEventList(_ CLI, _ Dependencies, out io.Writer) int {
	st := settings.LoadOrDefault()
	console := ui.New(out)
	console.Header("📅", "Events")

	for _, ev := range st.Events {
		var parts []string
		if ev.Active {
			parts = append(parts, "active")
		} else {
			parts = append(parts, "inactive")
		}
		if ev.Key != "" {
			parts = append(parts, "key "+ev.Key)
		} else {
			parts = append(parts, "shared webhook key")
		}
		if linked := st.LinkedActions(ev.Name); len(linked) > 0 {
			parts = append(parts, "triggers "+strings.Join(linked, ", "))
		}
		console.Item(ev.Name, strings.Join(parts, ", "))
	}
	return 0
}
