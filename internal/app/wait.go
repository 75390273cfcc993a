// Where: internal/app/wait.go
// What: Server readiness waiting helpers.
// Why: Start must not report success until the health endpoint answers.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ReadinessWaiter polls a server until it is ready or the deadline passes.
type ReadinessWaiter interface {
	Wait(baseURL string, timeout time.Duration) error
}

type readinessWaiter struct {
	client   *http.Client
	interval time.Duration
}

// NewReadinessWaiter builds a waiter polling once per second with a
// short per-request timeout, so a hung accept loop cannot stall it.
func NewReadinessWaiter() ReadinessWaiter {
	return readinessWaiter{
		client:   &http.Client{Timeout: 1 * time.Second},
		interval: 1 * time.Second,
	}
}

func (w readinessWaiter) Wait(baseURL string, timeout time.Duration) error {
	if w.client == nil {
		return fmt.Errorf("readiness waiter client not configured")
	}
	url := baseURL + "/healthz"
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := w.client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(w.interval)
	}

	return fmt.Errorf("server did not become ready within %s", timeout)
}
