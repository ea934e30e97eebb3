// Package commands maps database command identifiers to the screens that carry them
// out. A screen is created from its factory each time its command is dispatched.
package commands

import (
	"context"
	"strings"
	"sync"

	"github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/workspace"
)

// CommandID identifies a database command
type CommandID string

const (
	Select  CommandID = "SELECT"
	Update  CommandID = "UPDATE"
	Default CommandID = "DEFAULT"
)

// ParseCommandID parses a command name case-insensitively
func ParseCommandID(s string) (CommandID, error) {
	id := CommandID(strings.ToUpper(strings.TrimSpace(s)))

	switch id {
	case Select, Update, Default:
		return id, nil
	default:
		return "", errors.Newf(errors.ErrTypeValidation, "unknown command %q", s).
			WithSuggestion("Use SELECT or UPDATE")
	}
}

// OpenContext carries the arguments a screen is opened with
type OpenContext struct {
	Table string
}

// Screen is the handler behind a command
type Screen interface {
	Name() string
	HelpText() string
	OnOpen(ctx context.Context, oc OpenContext) error
}

// Factory creates a screen bound to a session
type Factory func(session *workspace.Session) Screen

// Registry looks up command factories at dispatch time and remembers the screen that
// was opened last
type Registry struct {
	mu        sync.Mutex
	session   *workspace.Session
	factories map[CommandID]Factory
	order     []CommandID
	currentID CommandID
	current   Screen
}

// NewRegistry returns a registry with SELECT, UPDATE and DEFAULT registered. The
// DEFAULT screen starts out current.
func NewRegistry(session *workspace.Session) *Registry {
	r := &Registry{
		session:   session,
		factories: make(map[CommandID]Factory),
	}

	r.mustRegister(Select, func(s *workspace.Session) Screen { return NewSelectScreen(s) })
	r.mustRegister(Update, func(s *workspace.Session) Screen { return NewUpdateScreen(s) })
	r.mustRegister(Default, func(_ *workspace.Session) Screen { return DefaultScreen{} })

	r.currentID = Default
	r.current = DefaultScreen{}

	return r
}

func (r *Registry) mustRegister(id CommandID, factory Factory) {
	if err := r.Register(id, factory); err != nil {
		panic(err)
	}
}

// Register adds a command. Registering an id twice is an error.
func (r *Registry) Register(id CommandID, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" || factory == nil {
		return errors.New(errors.ErrTypeValidation, "command id and factory are required")
	}

	if _, exists := r.factories[id]; exists {
		return errors.Newf(errors.ErrTypeValidation, "command %s is already registered", id)
	}

	r.factories[id] = factory
	r.order = append(r.order, id)

	return nil
}

// Commands returns the user-facing commands in registration order. DEFAULT is omitted.
func (r *Registry) Commands() []CommandID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]CommandID, 0, len(r.order))
	for _, id := range r.order {
		if id != Default {
			ids = append(ids, id)
		}
	}

	return ids
}

// Dispatch creates the screen for id and opens it. The screen becomes current only
// when OnOpen succeeds.
func (r *Registry) Dispatch(ctx context.Context, id CommandID, oc OpenContext) (Screen, error) {
	r.mu.Lock()
	factory, ok := r.factories[id]
	r.mu.Unlock()

	if !ok {
		return nil, errors.Newf(errors.ErrTypeNotFound, "no command registered for %s", id)
	}

	screen := factory(r.session)

	if err := screen.OnOpen(ctx, oc); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.currentID = id
	r.current = screen
	r.mu.Unlock()

	return screen, nil
}

// Current returns the id and screen that were opened last
func (r *Registry) Current() (CommandID, Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.currentID, r.current
}

func requireTable(command CommandID, oc OpenContext) error {
	if strings.TrimSpace(oc.Table) == "" {
		return errors.Newf(errors.ErrTypeValidation, "%s needs a table", command).
			WithSuggestion("Pick the table the command works on")
	}

	return nil
}
