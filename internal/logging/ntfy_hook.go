// Where: internal/logging/ntfy_hook.go
// What: Logrus hook forwarding error-level entries to the notifier.
// Why: A trading bot failing silently costs money; errors should reach the operator.
package logging

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tvwb/tradingview-webhooks-bot/internal/notify"
)

// NotifyHook pushes error entries to a Notifier. Delivery failures are
// swallowed so a broken notification channel can never break logging.
type NotifyHook struct {
	Notifier notify.Notifier
	Timeout  time.Duration
}

// NewNotifyHook wires a hook around the given notifier.
func NewNotifyHook(n notify.Notifier) *NotifyHook {
	return &NotifyHook{Notifier: n, Timeout: 5 * time.Second}
}

// Levels restricts the hook to error and worse.
func (h *NotifyHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel}
}

// Fire pushes the entry message. Always returns nil.
func (h *NotifyHook) Fire(entry *logrus.Entry) error {
	if h.Notifier == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.Timeout)
	defer cancel()

	_ = h.Notifier.Push(ctx, notify.Notification{
		Title:   "tvwb error",
		Message: entry.Message,
		Tags:    []string{"rotating_light"},
	})
	return nil
}
