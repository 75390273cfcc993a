// Where: internal/settings/settings.go
// What: Registered actions, events, and links between them.
// Why: The registry decides what the bot can do; both CLI and server read it.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tvwb/tradingview-webhooks-bot/internal/config"
)

var (
	ErrActionRegistered = errors.New("action is already registered")
	ErrActionNotFound   = errors.New("action is not registered")
	ErrEventRegistered  = errors.New("event is already registered")
	ErrEventNotFound    = errors.New("event is not registered")
	ErrLinkExists       = errors.New("link already exists")
	ErrLinkNotFound     = errors.New("link does not exist")
)

// Settings is the persisted registry at ~/.tvwb/settings.yaml.
type Settings struct {
	Version int      `yaml:"version"`
	Actions []string `yaml:"actions"`
	Events  []Event  `yaml:"events"`
	Links   []Link   `yaml:"links"`
}

// Event describes a registered webhook event.
// An empty Key means the event listens on the shared WEBHOOK_KEY.
type Event struct {
	Name   string `yaml:"name"`
	Active bool   `yaml:"active"`
	Key    string `yaml:"key,omitempty"`
}

// Link binds an action to an event it should run for.
type Link struct {
	Action string `yaml:"action"`
	Event  string `yaml:"event"`
}

// Default returns the registry a fresh install starts with: the
// print-data action wired to the webhook-received event.
func Default() Settings {
	return Settings{
		Version: 1,
		Actions: []string{"print-data"},
		Events: []Event{
			{Name: "webhook-received", Active: true},
		},
		Links: []Link{
			{Action: "print-data", Event: "webhook-received"},
		},
	}
}

// Path returns the registry file location.
func Path() (string, error) {
	dir, err := config.HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.yaml"), nil
}

// Ensure creates the registry file with defaults if it doesn't exist.
func Ensure() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Save(Default())
		}
		return err
	}
	return nil
}

// Load reads and parses the registry file.
func Load() (Settings, error) {
	path, err := Path()
	if err != nil {
		return Settings{}, err
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(payload, &s); err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// LoadOrDefault loads the registry, falling back to defaults when the
// file is missing.
func LoadOrDefault() Settings {
	s, err := Load()
	if err != nil {
		return Default()
	}
	return s
}

// Save writes the registry file.
func Save(s Settings) error {
	path, err := Path()
	if err != nil {
		return err
	}
	payload, err := yaml.Marshal(&s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

// HasAction reports whether the action name is registered.
func (s *Settings) HasAction(name string) bool {
	for _, a := range s.Actions {
		if a == name {
			return true
		}
	}
	return false
}

// FindEvent returns the registered event with the given name.
func (s *Settings) FindEvent(name string) (Event, bool) {
	for _, e := range s.Events {
		if e.Name == name {
			return e, true
		}
	}
	return Event{}, false
}

// RegisterAction adds an action name to the registry.
func (s *Settings) RegisterAction(name string) error {
	if s.HasAction(name) {
		return fmt.Errorf("%w: %s", ErrActionRegistered, name)
	}
	s.Actions = append(s.Actions, name)
	return nil
}

// UnregisterAction removes an action and any links that reference it.
func (s *Settings) UnregisterAction(name string) error {
	if !s.HasAction(name) {
		return fmt.Errorf("%w: %s", ErrActionNotFound, name)
	}
	kept := s.Actions[:0]
	for _, a := range s.Actions {
		if a != name {
			kept = append(kept, a)
		}
	}
	s.Actions = kept
	s.dropLinks(func(l Link) bool { return l.Action == name })
	return nil
}

// RegisterEvent adds an event to the registry.
func (s *Settings) RegisterEvent(ev Event) error {
	if _, ok := s.FindEvent(ev.Name); ok {
		return fmt.Errorf("%w: %s", ErrEventRegistered, ev.Name)
	}
	s.Events = append(s.Events, ev)
	return nil
}

// UnregisterEvent removes an event and any links that reference it.
func (s *Settings) UnregisterEvent(name string) error {
	if _, ok := s.FindEvent(name); !ok {
		return fmt.Errorf("%w: %s", ErrEventNotFound, name)
	}
	kept := s.Events[:0]
	for _, e := range s.Events {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	s.Events = kept
	s.dropLinks(func(l Link) bool { return l.Event == name })
	return nil
}

// LinkAction binds an action to an event. Both sides must be registered.
func (s *Settings) LinkAction(action, event string) error {
	if !s.HasAction(action) {
		return fmt.Errorf("%w: %s", ErrActionNotFound, action)
	}
	if _, ok := s.FindEvent(event); !ok {
		return fmt.Errorf("%w: %s", ErrEventNotFound, event)
	}
	for _, l := range s.Links {
		if l.Action == action && l.Event == event {
			return fmt.Errorf("%w: %s -> %s", ErrLinkExists, action, event)
		}
	}
	s.Links = append(s.Links, Link{Action: action, Event: event})
	return nil
}

// UnlinkAction removes the binding between an action and an event.
func (s *Settings) UnlinkAction(action, event string) error {
	for i, l := range s.Links {
		if l.Action == action && l.Event == event {
			s.Links = append(s.Links[:i], s.Links[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrLinkNotFound, action, event)
}

// LinkedActions returns the action names linked to the given event,
// in registration order.
func (s *Settings) LinkedActions(event string) []string {
	var names []string
	for _, l := range s.Links {
		if l.Event == event {
			names = append(names, l.Action)
		}
	}
	return names
}

func (s *Settings) dropLinks(match func(Link) bool) {
	kept := s.Links[:0]
	for _, l := range s.Links {
		if !match(l) {
			kept = append(kept, l)
		}
	}
	s.Links = kept
}
