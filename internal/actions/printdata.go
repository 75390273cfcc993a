// Where: internal/actions/printdata.go
// What: Default action, logs the webhook payload.
// Why: Fresh installs need a visible sign the pipeline works end to end.
package actions

import (
	"context"

	"github.com/tvwb/tradingview-webhooks-bot/internal/engine"
)

func init() {
	Register("print-data", func(env Env) engine.Action {
		return &PrintData{env: env}
	})
}

// PrintData writes the delivery payload to the log and nothing else.
type PrintData struct {
	env Env
}

func (a *PrintData) Name() string { return "print-data" }

func (a *PrintData) Run(_ context.Context, d *engine.Delivery) error {
	a.env.Log.WithField("action", a.Name()).Infof("data from webhook: %s", string(d.Payload))
	return nil
}
