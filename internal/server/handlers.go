// Where: internal/server/handlers.go
// What: HTTP routes and handlers.
// Why: The webhook contract TradingView alerts depend on lives here.
package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/tidwall/gjson"

	"github.com/tvwb/tradingview-webhooks-bot/internal/engine"
	"github.com/tvwb/tradingview-webhooks-bot/internal/journal"
)

// maxPayloadBytes caps webhook bodies. TradingView alerts are tiny;
// anything near this size is not an alert.
const maxPayloadBytes = 1 << 20

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.instrument)
	r.HandleFunc("/webhook", s.handleWebhook).Methods(http.MethodPost)
	r.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/events", s.requireGUIKey(s.handleAPIEvents)).Methods(http.MethodGet)
	r.HandleFunc("/api/actions", s.requireGUIKey(s.handleAPIActions)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	return r
}

// statusRecorder captures the response status for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.metrics.observeHTTP(r.Method, route, rec.status, time.Since(start))
	})
}

// requireGUIKey gates a handler behind the gui_key query parameter.
func (s *Server) requireGUIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("gui_key") != s.cfg.GUIKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(ct); err != nil || mediaType != "application/json" {
		http.Error(w, "Unsupported Media Type", http.StatusUnsupportedMediaType)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}
	if !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "body is not valid JSON"})
		return
	}

	s.metrics.countDelivery()
	delivery := &engine.Delivery{
		ID:         uuid.NewString(),
		ReceivedAt: time.Now().UTC(),
		Payload:    body,
	}
	log := s.log.WithField("delivery", delivery.ID)

	key := gjson.GetBytes(body, "key")
	var triggered []string
	if !key.Exists() {
		log.Warn("payload has no 'key' field, nothing to trigger")
	} else {
		results := s.engine.TriggerKey(r.Context(), key.String(), delivery)
		for _, res := range results {
			triggered = append(triggered, res.Event)
			s.metrics.countTrigger(res.Event)
			for _, ar := range res.Results {
				s.metrics.countActionRun(ar.Action, ar.Err)
			}
		}
		if len(triggered) == 0 {
			log.Warnf("no active event matches key %q", key.String())
		}
	}

	s.journalDelivery(r, delivery, triggered)

	if triggered == nil {
		triggered = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        delivery.ID,
		"triggered": triggered,
	})
}

func (s *Server) journalDelivery(r *http.Request, d *engine.Delivery, triggered []string) {
	if s.journal == nil {
		return
	}
	outcome := "no matching event"
	if len(triggered) > 0 {
		outcome = "triggered: " + strings.Join(triggered, ", ")
	}
	entry := journal.Entry{
		ID:      d.ID,
		Kind:    journal.KindDelivery,
		Time:    d.ReceivedAt,
		Event:   strings.Join(triggered, ","),
		Payload: d.Payload,
		Outcome: outcome,
	}
	if err := s.journal.Record(r.Context(), entry); err != nil {
		s.log.WithError(err).Warn("journal write failed")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type eventView struct {
	Name    string   `json:"name"`
	Active  bool     `json:"active"`
	Webhook bool     `json:"webhook"`
	Key     string   `json:"key"`
	Actions []string `json:"actions"`
}

func (s *Server) handleAPIEvents(w http.ResponseWriter, r *http.Request) {
	events := s.engine.Events.All()
	views := make([]eventView, 0, len(events))
	for _, ev := range events {
		views = append(views, eventView{
			Name:    ev.Name,
			Active:  ev.Active,
			Webhook: ev.Webhook,
			Key:     ev.Key,
			Actions: ev.LinkedActions(),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

type runView struct {
	Time    time.Time `json:"time"`
	Event   string    `json:"event"`
	OK      bool      `json:"ok"`
	Outcome string    `json:"outcome"`
}

type actionView struct {
	Name string    `json:"name"`
	Runs []runView `json:"runs"`
}

func (s *Server) handleAPIActions(w http.ResponseWriter, r *http.Request) {
	names := s.engine.Actions.Names()
	views := make([]actionView, 0, len(names))
	for _, name := range names {
		view := actionView{Name: name, Runs: []runView{}}
		for _, rec := range s.engine.Runs.For(name) {
			view.Runs = append(view.Runs, runView{
				Time:    rec.Time,
				Event:   rec.Event,
				OK:      rec.OK,
				Outcome: rec.Outcome,
			})
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
