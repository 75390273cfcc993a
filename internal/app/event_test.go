// Where: internal/app/event_test.go
// What: Tests for event management commands.
// Why: Events gate which webhook payloads reach actions; their lifecycle must be exact.
package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tvwb/tradingview-webhooks-bot/internal/logging"
	"github.com/tvwb/tradingview-webhooks-bot/internal/settings"
)

func TestRunEventCreateRegistersKeyedEvent(t *testing.T) {
	testHome(t)

	var out bytes.Buffer
	exitCode := Run([]string{"event", "create", "PriceAlert"}, Dependencies{Out: &out})
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "Event created: price-alert") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if !strings.Contains(out.String(), "Webhook key") {
		t.Fatalf("expected webhook key in output, got %q", out.String())
	}

	cur := settings.LoadOrDefault()
	ev, ok := cur.FindEvent("price-alert")
	if !ok {
		t.Fatalf("expected event persisted")
	}
	if !ev.Active {
		t.Fatalf("expected new event active")
	}
	if !strings.HasPrefix(ev.Key, "price-alert:") {
		t.Fatalf("unexpected event key: %q", ev.Key)
	}
}

func TestNewEventKeyFormat(t *testing.T) {
	key := newEventKey("price-alert")
	if !strings.HasPrefix(key, "price-alert:") {
		t.Fatalf("unexpected key prefix: %q", key)
	}
	suffix := strings.TrimPrefix(key, "price-alert:")
	if len(suffix) != 6 {
		t.Fatalf("expected 6 hex chars, got %q", suffix)
	}
	if key == newEventKey("price-alert") {
		t.Fatalf("expected random suffix to differ between calls")
	}
}

func TestRunEventCreateDuplicate(t *testing.T) {
	testHome(t)

	var out bytes.Buffer
	if exitCode := Run([]string{"event", "create", "PriceAlert"}, Dependencies{Out: &out}); exitCode != 0 {
		t.Fatalf("first create failed: %q", out.String())
	}

	out.Reset()
	exitCode := Run([]string{"event", "create", "PriceAlert"}, Dependencies{Out: &out})
	if exitCode == 0 {
		t.Fatalf("expected non-zero exit code for duplicate event")
	}
	if !strings.Contains(out.String(), "already registered") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunEventCreateRejectsInvalidName(t *testing.T) {
	testHome(t)

	var out bytes.Buffer
	exitCode := Run([]string{"event", "create", "price-alert"}, Dependencies{Out: &out})
	if exitCode == 0 {
		t.Fatalf("expected non-zero exit code for non-CamelCase name")
	}
	if !strings.Contains(out.String(), "CamelCase") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunEventRemoveCleansLinks(t *testing.T) {
	testHome(t)

	var out bytes.Buffer
	exitCode := Run([]string{"event", "remove", "webhook-received"}, Dependencies{Out: &out})
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}

	st := settings.LoadOrDefault()
	if _, ok := st.FindEvent("webhook-received"); ok {
		t.Fatalf("expected event removed")
	}
	for _, link := range st.Links {
		if link.Event == "webhook-received" {
			t.Fatalf("expected links cleaned, found %+v", link)
		}
	}

	out.Reset()
	if exitCode := Run([]string{"event", "remove", "webhook-received"}, Dependencies{Out: &out}); exitCode == 0 {
		t.Fatalf("expected non-zero exit code for missing event")
	}
}

func TestRunEventRegisterUnregisterAliases(t *testing.T) {
	testHome(t)

	var out bytes.Buffer
	if exitCode := Run([]string{"event", "register", "SellSignal"}, Dependencies{Out: &out}); exitCode != 0 {
		t.Fatalf("register failed: %q", out.String())
	}
	cur := settings.LoadOrDefault()
	if _, ok := cur.FindEvent("sell-signal"); !ok {
		t.Fatalf("expected event persisted via register alias")
	}

	out.Reset()
	if exitCode := Run([]string{"event", "unregister", "sell-signal"}, Dependencies{Out: &out}); exitCode != 0 {
		t.Fatalf("unregister failed: %q", out.String())
	}
	cur = settings.LoadOrDefault()
	if _, ok := cur.FindEvent("sell-signal"); ok {
		t.Fatalf("expected event removed via unregister alias")
	}
}

func TestRunEventActivateDeactivate(t *testing.T) {
	testHome(t)

	var out bytes.Buffer
	if exitCode := Run([]string{"event", "deactivate", "webhook-received"}, Dependencies{Out: &out}); exitCode != 0 {
		t.Fatalf("deactivate failed: %q", out.String())
	}
	cur := settings.LoadOrDefault()
	if ev, _ := cur.FindEvent("webhook-received"); ev.Active {
		t.Fatalf("expected event deactivated")
	}

	out.Reset()
	if exitCode := Run([]string{"event", "activate", "webhook-received"}, Dependencies{Out: &out}); exitCode != 0 {
		t.Fatalf("activate failed: %q", out.String())
	}
	cur = settings.LoadOrDefault()
	if ev, _ := cur.FindEvent("webhook-received"); !ev.Active {
		t.Fatalf("expected event activated")
	}

	out.Reset()
	if exitCode := Run([]string{"event", "activate", "ghost-event"}, Dependencies{Out: &out}); exitCode == 0 {
		t.Fatalf("expected non-zero exit code for unknown event")
	}
}

func TestRunEventList(t *testing.T) {
	testHome(t)

	var out bytes.Buffer
	exitCode := Run([]string{"event", "list"}, Dependencies{Out: &out})
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	for _, want := range []string{"webhook-received", "active", "shared webhook key", "triggers print-data"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected output to include %q, got %q", want, out.String())
		}
	}
}

func TestRunEventTriggerRunsLinkedActions(t *testing.T) {
	testHome(t)

	var out bytes.Buffer
	deps := Dependencies{Out: &out, Log: logging.NewSilent()}

	exitCode := Run([]string{"event", "trigger", "webhook-received"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "print-data") {
		t.Fatalf("expected linked action to run, got %q", out.String())
	}
}

func TestRunEventTriggerWithPayload(t *testing.T) {
	testHome(t)

	var out bytes.Buffer
	deps := Dependencies{Out: &out, Log: logging.NewSilent()}

	exitCode := Run([]string{"event", "trigger", "webhook-received", "--payload", `{"ticker": "AAPL"}`}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %q)", exitCode, out.String())
	}
}

func TestRunEventTriggerInactiveEvent(t *testing.T) {
	testHome(t)

	var out bytes.Buffer
	if exitCode := Run([]string{"event", "deactivate", "webhook-received"}, Dependencies{Out: &out}); exitCode != 0 {
		t.Fatalf("deactivate failed: %q", out.String())
	}

	out.Reset()
	deps := Dependencies{Out: &out, Log: logging.NewSilent()}
	exitCode := Run([]string{"event", "trigger", "webhook-received"}, deps)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(out.String(), "No actions ran") {
		t.Fatalf("expected inactive notice, got %q", out.String())
	}
}

func TestRunEventTriggerUnknownEvent(t *testing.T) {
	testHome(t)

	var out bytes.Buffer
	deps := Dependencies{Out: &out, Log: logging.NewSilent()}

	exitCode := Run([]string{"event", "trigger", "ghost-event"}, deps)
	if exitCode == 0 {
		t.Fatalf("expected non-zero exit code for unknown event")
	}
	if !strings.Contains(out.String(), "cannot find event") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}
