// Where: internal/engine/action.go
// What: Action interface and registry.
// Why: Actions are the bot's verbs; events look them up by name at trigger time.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Delivery is one webhook payload moving through the engine.
type Delivery struct {
	ID         string
	ReceivedAt time.Time
	Payload    []byte
}

// Action runs custom logic for a delivery.
type Action interface {
	Name() string
	Run(ctx context.Context, d *Delivery) error
}

// ActionRegistry holds registered actions by name.
type ActionRegistry struct {
	mu      sync.RWMutex
	actions map[string]Action
	order   []string
}

// NewActionRegistry creates an empty registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{actions: map[string]Action{}}
}

// Register adds an action. Registering the same name twice is an error.
func (r *ActionRegistry) Register(a Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := a.Name()
	if _, exists := r.actions[name]; exists {
		return fmt.Errorf("action %q is already registered", name)
	}
	r.actions[name] = a
	r.order = append(r.order, name)
	return nil
}

// Get returns the action with the given name. Unknown names error with
// the list of registered actions to make typos easy to spot.
func (r *ActionRegistry) Get(name string) (Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.actions[name]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("cannot find action with name %q (registered: %s)",
		name, strings.Join(r.sortedNamesLocked(), ", "))
}

// Names returns registered action names in registration order.
func (r *ActionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *ActionRegistry) sortedNamesLocked() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}
