// Where: internal/server/handlers_test.go
// What: Tests for HTTP handlers.
// Why: TradingView only speaks this exact contract; regressions break live alerts.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tvwb/tradingview-webhooks-bot/internal/engine"
	"github.com/tvwb/tradingview-webhooks-bot/internal/journal"
)

type testAction struct {
	name     string
	payloads []string
	err      error
}

func (a *testAction) Name() string { return a.name }

func (a *testAction) Run(_ context.Context, d *engine.Delivery) error {
	a.payloads = append(a.payloads, string(d.Payload))
	return a.err
}

type handlerFixture struct {
	srv     *Server
	handler http.Handler
	action  *testAction
	journal *journal.Memory
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	eng := engine.New(silentLogger())
	action := &testAction{name: "record"}
	if err := eng.Actions.Register(action); err != nil {
		t.Fatal(err)
	}
	if err := eng.Events.Register(engine.NewEvent("signal", "signal:abc123")); err != nil {
		t.Fatal(err)
	}
	if err := eng.Link("record", "signal"); err != nil {
		t.Fatal(err)
	}

	jnl := journal.NewMemory(50)
	srv, err := New(Config{Host: "127.0.0.1", Port: 0, GUIKey: "gui-secret", Version: "test"}, eng, jnl, silentLogger())
	if err != nil {
		t.Fatal(err)
	}
	return &handlerFixture{srv: srv, handler: srv.routes(), action: action, journal: jnl}
}

func (f *handlerFixture) post(t *testing.T, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

type webhookResponse struct {
	ID        string   `json:"id"`
	Triggered []string `json:"triggered"`
}

func decodeWebhookResponse(t *testing.T, rec *httptest.ResponseRecorder) webhookResponse {
	t.Helper()
	var resp webhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestWebhookRejectsNonJSONContentType(t *testing.T) {
	f := newHandlerFixture(t)
	for _, ct := range []string{"text/plain", "application/x-www-form-urlencoded", ""} {
		rec := f.post(t, ct, `{"key":"signal:abc123"}`)
		if rec.Code != http.StatusUnsupportedMediaType {
			t.Fatalf("content type %q: expected 415, got %d", ct, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Unsupported Media Type") {
			t.Fatalf("content type %q: unexpected body %q", ct, rec.Body.String())
		}
	}
	if len(f.action.payloads) != 0 {
		t.Fatalf("expected no action runs, got %v", f.action.payloads)
	}
}

func TestWebhookAcceptsContentTypeWithCharset(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.post(t, "application/json; charset=utf-8", `{"key":"signal:abc123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestWebhookRejectsInvalidJSON(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.post(t, "application/json", `{"key": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWebhookRejectsOversizedBody(t *testing.T) {
	f := newHandlerFixture(t)
	big := `{"pad":"` + strings.Repeat("x", maxPayloadBytes) + `"}`
	rec := f.post(t, "application/json", big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestWebhookTriggersMatchingEvent(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.post(t, "application/json", `{"key":"signal:abc123","ticker":"SPY"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeWebhookResponse(t, rec)
	if resp.ID == "" {
		t.Fatal("expected delivery id")
	}
	if len(resp.Triggered) != 1 || resp.Triggered[0] != "signal" {
		t.Fatalf("expected signal triggered, got %v", resp.Triggered)
	}
	if len(f.action.payloads) != 1 || !strings.Contains(f.action.payloads[0], `"ticker":"SPY"`) {
		t.Fatalf("expected action to see payload, got %v", f.action.payloads)
	}

	entries, err := f.journal.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 journal entry, got %d", len(entries))
	}
	if entries[0].Kind != journal.KindDelivery || entries[0].Outcome != "triggered: signal" {
		t.Fatalf("unexpected journal entry: %+v", entries[0])
	}
}

func TestWebhookWithoutKeyStillAccepted(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.post(t, "application/json", `{"test":"data"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeWebhookResponse(t, rec)
	if len(resp.Triggered) != 0 {
		t.Fatalf("expected nothing triggered, got %v", resp.Triggered)
	}
	if len(f.action.payloads) != 0 {
		t.Fatalf("expected no action runs, got %v", f.action.payloads)
	}

	entries, err := f.journal.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Outcome != "no matching event" {
		t.Fatalf("unexpected journal entries: %+v", entries)
	}
}

func TestWebhookUnknownKeyTriggersNothing(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.post(t, "application/json", `{"key":"wrong-key"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeWebhookResponse(t, rec)
	if len(resp.Triggered) != 0 {
		t.Fatalf("expected nothing triggered, got %v", resp.Triggered)
	}
}

func TestDashboardRequiresGUIKey(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.get(t, "/")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = f.get(t, "/?gui_key=wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong key, got %d", rec.Code)
	}

	rec = f.get(t, "/?gui_key=gui-secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "signal") || !strings.Contains(body, "record") {
		t.Fatalf("expected events and actions on dashboard, got: %.200s", body)
	}
}

func TestAPIEventsGatedAndListed(t *testing.T) {
	f := newHandlerFixture(t)
	if rec := f.get(t, "/api/events"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec := f.get(t, "/api/events?gui_key=gui-secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var views []eventView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	if len(views) != 1 || views[0].Name != "signal" || !views[0].Active {
		t.Fatalf("unexpected views: %+v", views)
	}
	if len(views[0].Actions) != 1 || views[0].Actions[0] != "record" {
		t.Fatalf("expected linked action, got %+v", views[0])
	}
}

func TestAPIActionsIncludesRuns(t *testing.T) {
	f := newHandlerFixture(t)
	f.post(t, "application/json", `{"key":"signal:abc123"}`)

	rec := f.get(t, "/api/actions?gui_key=gui-secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var views []actionView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 || views[0].Name != "record" {
		t.Fatalf("unexpected views: %+v", views)
	}
	if len(views[0].Runs) != 1 || !views[0].Runs[0].OK {
		t.Fatalf("expected one successful run, got %+v", views[0].Runs)
	}
}

func TestHealthz(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.get(t, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestMetricsExposed(t *testing.T) {
	f := newHandlerFixture(t)
	f.post(t, "application/json", `{"key":"signal:abc123"}`)

	rec := f.get(t, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	text := string(body)
	for _, metric := range []string{
		"tvwb_webhook_deliveries_total 1",
		`tvwb_event_triggers_total{event="signal"} 1`,
		`tvwb_action_runs_total{action="record",outcome="ok"} 1`,
	} {
		if !strings.Contains(text, metric) {
			t.Fatalf("expected %q in metrics output:\n%.500s", metric, text)
		}
	}
}

func TestKeyHint(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"short", "short"},
		{"12345678", "12345678"},
		{"signal:abc123", "signal…"},
	}
	for _, tc := range cases {
		if got := keyHint(tc.key); got != tc.want {
			t.Fatalf("keyHint(%q): expected %q, got %q", tc.key, tc.want, got)
		}
	}
}
