// Where: internal/server/server.go
// What: HTTP server lifecycle around the webhook engine.
// Why: Binding, serving and shutdown failures each need a distinct, testable surface.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tvwb/tradingview-webhooks-bot/internal/engine"
	"github.com/tvwb/tradingview-webhooks-bot/internal/journal"
	"github.com/tvwb/tradingview-webhooks-bot/internal/logging"
)

// StartupError reports a failure before the server reached the serving
// state: an invalid port, a bind failure, a broken template.
type StartupError struct {
	Reason string
	Err    error
}

func (e *StartupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("startup failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("startup failed: %s", e.Reason)
}

func (e *StartupError) Unwrap() error { return e.Err }

// Config carries the listen address and dashboard settings.
type Config struct {
	Host    string
	Port    int
	GUIKey  string
	Version string
}

// Server routes webhook deliveries into the engine and serves the
// dashboard, API, health and metrics endpoints.
type Server struct {
	cfg     Config
	engine  *engine.Engine
	journal journal.Journal
	log     *logrus.Entry
	metrics *Metrics
	dash    *template.Template

	httpSrv *http.Server
	ln      net.Listener
	errCh   chan error
}

// New builds a server around the engine. The journal may be nil when
// delivery auditing is disabled.
func New(cfg Config, eng *engine.Engine, jnl journal.Journal, log *logrus.Logger) (*Server, error) {
	dash, err := parseDashboard()
	if err != nil {
		return nil, &StartupError{Reason: "load dashboard template", Err: err}
	}
	s := &Server{
		cfg:     cfg,
		engine:  eng,
		journal: jnl,
		log:     logging.WithComponent(log, "server"),
		metrics: NewMetrics(),
		dash:    dash,
	}
	s.httpSrv = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Start binds the listener and begins serving in the background.
// The bind happens synchronously so callers learn about port problems
// here, not from the error channel. Port 0 binds an ephemeral port.
func (s *Server) Start() error {
	if s.cfg.Port < 0 || s.cfg.Port > 65535 {
		return &StartupError{Reason: fmt.Sprintf("invalid port %d (valid range 0-65535)", s.cfg.Port)}
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &StartupError{Reason: fmt.Sprintf("bind %s", addr), Err: err}
	}
	s.ln = ln
	s.errCh = make(chan error, 1)

	s.log.Infof("listening on %s", ln.Addr())
	go func() {
		err := s.httpSrv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.errCh <- err
	}()
	return nil
}

// Err reports the serve loop's exit. It yields nil after a clean
// Shutdown and the serve error otherwise.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Addr returns the bound address. Useful with port 0.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down")
	return s.httpSrv.Shutdown(ctx)
}
