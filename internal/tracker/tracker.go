// Package tracker follows whether an open database has uncommitted changes and tells
// the presentation layer when that changes.
package tracker

import (
	"sync"
	"time"
)

// State is the save state of a connection
type State int

const (
	Saved State = iota
	Unsaved
)

func (s State) String() string {
	if s == Saved {
		return "saved"
	}

	return "unsaved"
}

// MemoryName is the data source name of a database with no backing file
const MemoryName = ":memory:"

// MemoryLabel is shown for a database with no backing file, whatever its state
const MemoryLabel = "Unsaved memory database"

// ModifiedMarker prefixes the name of an unsaved database
const ModifiedMarker = "*"

// dirtyThreshold is the affected-row count a statement must exceed to mark the
// database unsaved. Single-row writes do not count.
const dirtyThreshold = 1

// Notifier receives the status label on every state change
type Notifier interface {
	OnConnectionStatusChanged(label string)
}

// Tracker is the save-state machine of one connection
type Tracker struct {
	mu       sync.Mutex
	name     string
	state    State
	lastSave time.Time
	notifier Notifier
	now      func() time.Time
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock replaces time.Now for save timestamps
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New starts tracking the data source called name. Named sources start Saved and the
// in-memory source starts Unsaved. The initial label is sent to notifier immediately.
func New(name string, notifier Notifier, opts ...Option) *Tracker {
	if name == "" {
		name = MemoryName
	}

	t := &Tracker{
		name:     name,
		state:    Saved,
		notifier: notifier,
		now:      time.Now,
	}

	if name == MemoryName {
		t.state = Unsaved
	}

	for _, opt := range opts {
		opt(t)
	}

	t.notify(t.label())

	return t
}

// RecordExecution updates the state after a statement affected rowsAffected rows.
// Row-returning statements report a negative count and never change the state.
func (t *Tracker) RecordExecution(rowsAffected int64) {
	t.mu.Lock()

	if rowsAffected <= dirtyThreshold || t.state == Unsaved {
		t.mu.Unlock()
		return
	}

	t.state = Unsaved
	label := t.label()
	t.mu.Unlock()

	t.notify(label)
}

// MarkSaved records a successful commit
func (t *Tracker) MarkSaved() {
	t.mu.Lock()

	t.lastSave = t.now()
	changed := t.state != Saved
	t.state = Saved
	label := t.label()
	t.mu.Unlock()

	if changed {
		t.notify(label)
	}
}

// State returns the current state
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}

// LastSave returns when MarkSaved last ran, or the zero time
func (t *Tracker) LastSave() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.lastSave
}

// Name returns the tracked data source name
func (t *Tracker) Name() string {
	return t.name
}

// Label returns the human-readable status label
func (t *Tracker) Label() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.label()
}

func (t *Tracker) label() string {
	switch {
	case t.name == MemoryName:
		return MemoryLabel
	case t.state == Unsaved:
		return ModifiedMarker + t.name
	default:
		return t.name
	}
}

// notify runs outside the lock so a notifier may call back into the tracker
func (t *Tracker) notify(label string) {
	if t.notifier != nil {
		t.notifier.OnConnectionStatusChanged(label)
	}
}
