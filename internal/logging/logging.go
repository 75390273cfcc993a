// Where: internal/logging/logging.go
// What: Shared logrus logger construction.
// Why: One place for format, level, and the error push hook.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New builds a logger with the project's text format. Unknown level
// strings fall back to info rather than failing startup.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}

// NewSilent builds a logger that discards all output. Used in tests.
func NewSilent() *logrus.Logger {
	log := New("panic")
	log.SetOutput(io.Discard)
	return log
}

// WithComponent tags entries with the subsystem that produced them.
func WithComponent(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}
