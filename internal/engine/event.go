// Where: internal/engine/event.go
// What: Event type and registry.
// Why: Events route incoming webhooks to the actions linked to them.
package engine

import (
	"fmt"
	"strings"
	"sync"
)

// Event is a named trigger point. Webhook events carry a key that
// incoming payloads must present to fire them.
type Event struct {
	Name    string
	Active  bool
	Webhook bool
	Key     string

	mu      sync.RWMutex
	actions []string
}

// NewEvent creates an active webhook event listening on the given key.
func NewEvent(name, key string) *Event {
	return &Event{Name: name, Active: true, Webhook: true, Key: key}
}

// LinkAction appends an action name to the event's trigger list.
func (e *Event) LinkAction(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, existing := range e.actions {
		if existing == name {
			return
		}
	}
	e.actions = append(e.actions, name)
}

// UnlinkAction removes an action name from the event's trigger list.
func (e *Event) UnlinkAction(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, existing := range e.actions {
		if existing == name {
			e.actions = append(e.actions[:i], e.actions[i+1:]...)
			return
		}
	}
}

// LinkedActions returns the linked action names in link order.
func (e *Event) LinkedActions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.actions...)
}

// EventRegistry holds registered events by name.
type EventRegistry struct {
	mu     sync.RWMutex
	events map[string]*Event
	order  []string
}

// NewEventRegistry creates an empty registry.
func NewEventRegistry() *EventRegistry {
	return &EventRegistry{events: map[string]*Event{}}
}

// Register adds an event. Registering the same name twice is an error.
func (r *EventRegistry) Register(e *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.events[e.Name]; exists {
		return fmt.Errorf("event %q is already registered", e.Name)
	}
	r.events[e.Name] = e
	r.order = append(r.order, e.Name)
	return nil
}

// Get returns the event with the given name.
func (r *EventRegistry) Get(name string) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.events[name]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("cannot find event with name %q (registered: %s)",
		name, strings.Join(r.order, ", "))
}

// All returns registered events in registration order.
func (r *EventRegistry) All() []*Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*Event, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.events[name])
	}
	return all
}
