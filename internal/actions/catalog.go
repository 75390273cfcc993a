// Where: internal/actions/catalog.go
// What: Compile-time catalog of available actions.
// Why: Actions self-register at init, settings decide which ones run.
package actions

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tvwb/tradingview-webhooks-bot/internal/engine"
	"github.com/tvwb/tradingview-webhooks-bot/internal/journal"
	"github.com/tvwb/tradingview-webhooks-bot/internal/notify"
)

// Env carries the shared facilities an action may use.
type Env struct {
	Log      *logrus.Logger
	Journal  journal.Journal
	Notifier notify.Notifier
}

// Factory builds an action instance bound to an Env.
type Factory func(Env) engine.Action

var (
	catalogMu sync.RWMutex
	catalog   = map[string]Factory{}
)

// Register adds a factory to the catalog. Called from init functions, so
// a duplicate name is a programming error and panics.
func Register(name string, f Factory) {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	if _, ok := catalog[name]; ok {
		panic(fmt.Sprintf("actions: %q registered twice", name))
	}
	catalog[name] = f
}

// New builds the named action.
func New(name string, env Env) (engine.Action, error) {
	catalogMu.RLock()
	f, ok := catalog[name]
	catalogMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("cannot find action with name %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return f(env), nil
}

// Names lists the catalog alphabetically.
func Names() []string {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the catalog knows the name.
func Has(name string) bool {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	_, ok := catalog[name]
	return ok
}
