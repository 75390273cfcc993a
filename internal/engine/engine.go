// Where: internal/engine/engine.go
// What: Event to action dispatch.
// Why: One place owns the "webhook key fires events, events run actions" rule.
package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tvwb/tradingview-webhooks-bot/internal/logging"
)

// ActionResult is the outcome of one action run within a trigger.
type ActionResult struct {
	Action string
	Err    error
}

// TriggerResult is the outcome of one event trigger.
type TriggerResult struct {
	Event   string
	Results []ActionResult
}

// Engine dispatches deliveries to events and their linked actions.
type Engine struct {
	Actions *ActionRegistry
	Events  *EventRegistry
	Runs    *RunLog

	log *logrus.Entry
}

// New creates an engine with empty registries.
func New(log *logrus.Logger) *Engine {
	return &Engine{
		Actions: NewActionRegistry(),
		Events:  NewEventRegistry(),
		Runs:    NewRunLog(50),
		log:     logging.WithComponent(log, "engine"),
	}
}

// Link binds an action to an event. Both must be registered.
func (e *Engine) Link(action, event string) error {
	if _, err := e.Actions.Get(action); err != nil {
		return err
	}
	ev, err := e.Events.Get(event)
	if err != nil {
		return err
	}
	ev.LinkAction(action)
	return nil
}

// Unlink removes the binding between an action and an event.
func (e *Engine) Unlink(action, event string) error {
	ev, err := e.Events.Get(event)
	if err != nil {
		return err
	}
	ev.UnlinkAction(action)
	return nil
}

// TriggerKey fires every active webhook event whose key matches and
// returns one result per fired event. A delivery matching no event
// returns an empty slice; the caller decides how loudly to complain.
func (e *Engine) TriggerKey(ctx context.Context, key string, d *Delivery) []TriggerResult {
	var results []TriggerResult
	for _, ev := range e.Events.All() {
		if !ev.Webhook || ev.Key != key {
			continue
		}
		results = append(results, e.Trigger(ctx, ev, d))
	}
	return results
}

// Trigger runs every action linked to the event, in link order.
// A failing action is recorded and logged but does not stop the rest.
// Inactive events log and skip.
func (e *Engine) Trigger(ctx context.Context, ev *Event, d *Delivery) TriggerResult {
	result := TriggerResult{Event: ev.Name}
	if !ev.Active {
		e.log.Infof("event not triggered (event is inactive) ---> %s", ev.Name)
		return result
	}
	e.log.Infof("event triggered ---> %s", ev.Name)

	for _, name := range ev.LinkedActions() {
		action, err := e.Actions.Get(name)
		if err != nil {
			e.log.WithError(err).Errorf("skipping unresolvable action %q", name)
			result.Results = append(result.Results, ActionResult{Action: name, Err: err})
			continue
		}

		e.log.Infof("action triggered ---> %s", name)
		runErr := action.Run(ctx, d)
		rec := RunRecord{
			Time:    d.ReceivedAt,
			Event:   ev.Name,
			Action:  name,
			OK:      runErr == nil,
			Outcome: "ok",
		}
		if runErr != nil {
			rec.Outcome = runErr.Error()
			e.log.WithError(runErr).Errorf("action %q failed", name)
		}
		e.Runs.Add(rec)
		result.Results = append(result.Results, ActionResult{Action: name, Err: runErr})
	}
	return result
}
