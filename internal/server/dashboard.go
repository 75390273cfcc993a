// Where: internal/server/dashboard.go
// What: Embedded HTML dashboard.
// Why: A gated one-page overview of events, actions and recent runs.
package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/Masterminds/sprig/v3"

	"github.com/tvwb/tradingview-webhooks-bot/assets"
	"github.com/tvwb/tradingview-webhooks-bot/internal/engine"
	"github.com/tvwb/tradingview-webhooks-bot/internal/schema"
)

type dashboardEvent struct {
	Name    string
	Active  bool
	KeyHint string
	Actions []string
}

type dashboardAction struct {
	Name string
	Runs []engine.RunRecord
}

type dashboardData struct {
	Version string
	Events  []dashboardEvent
	Actions []dashboardAction
	Schemas map[string]string
}

func parseDashboard() (*template.Template, error) {
	return template.New("dashboard.html.tmpl").
		Funcs(sprig.FuncMap()).
		ParseFS(assets.WebFS, "web/dashboard.html.tmpl")
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("gui_key") != s.cfg.GUIKey {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	data := dashboardData{
		Version: s.cfg.Version,
		Schemas: map[string]string{},
	}
	for _, ev := range s.engine.Events.All() {
		data.Events = append(data.Events, dashboardEvent{
			Name:    ev.Name,
			Active:  ev.Active,
			KeyHint: keyHint(ev.Key),
			Actions: ev.LinkedActions(),
		})
	}
	for _, name := range s.engine.Actions.Names() {
		data.Actions = append(data.Actions, dashboardAction{
			Name: name,
			Runs: s.engine.Runs.For(name),
		})
	}
	if names, err := schema.Names(); err == nil {
		for _, name := range names {
			if js, err := schema.JSON(name); err == nil {
				data.Schemas[name] = js
			}
		}
	}

	// Render to a buffer first so a template fault becomes a clean 500
	// instead of a half-written page.
	var buf bytes.Buffer
	if err := s.dash.Execute(&buf, data); err != nil {
		s.log.WithError(err).Error("dashboard render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// keyHint shortens a webhook key for display. Short keys pass through,
// long ones keep enough of a prefix to tell events apart.
func keyHint(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:6] + "…"
}
