// Package interaction models what the user is currently doing with a single
// value, so that at most one entity is being edited or assigned at a time.
package interaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Mode names the variants of State.
type Mode string

const (
	ModeIdle              Mode = "idle"
	ModeEditing           Mode = "editing"
	ModeSelectingAssignee Mode = "selectingAssignee"
)

var ErrNoTarget = errors.New("interaction target is required")

// State is one of Idle, Editing or SelectingAssignee. The zero value is Idle.
type State interface {
	Mode() Mode
	isState()
}

type Idle struct{}

// Editing means the entity with Target is being renamed.
type Editing struct {
	Target string
}

// SelectingAssignee means the assignee picker is open for Target.
type SelectingAssignee struct {
	Target string
}

func (Idle) Mode() Mode              { return ModeIdle }
func (Editing) Mode() Mode           { return ModeEditing }
func (SelectingAssignee) Mode() Mode { return ModeSelectingAssignee }

func (Idle) isState()              {}
func (Editing) isState()           {}
func (SelectingAssignee) isState() {}

// Target returns the id a state refers to, or "" for Idle.
func Target(s State) string {
	switch v := s.(type) {
	case Editing:
		return v.Target
	case SelectingAssignee:
		return v.Target
	default:
		return ""
	}
}

type wire struct {
	Mode   Mode   `json:"mode"`
	Target string `json:"target,omitempty"`
}

// Encode renders a state as {"mode": ..., "target": ...}.
func Encode(s State) ([]byte, error) {
	if s == nil {
		s = Idle{}
	}
	return json.Marshal(wire{Mode: s.Mode(), Target: Target(s)})
}

// Parse builds a state from a mode and target.
func Parse(mode Mode, target string) (State, error) {
	switch mode {
	case ModeIdle, "":
		return Idle{}, nil
	case ModeEditing, ModeSelectingAssignee:
		if target == "" {
			return nil, ErrNoTarget
		}
		if mode == ModeEditing {
			return Editing{Target: target}, nil
		}
		return SelectingAssignee{Target: target}, nil
	default:
		return nil, fmt.Errorf("unknown interaction mode %q", mode)
	}
}

// Holder guards the state of one workspace.
type Holder struct {
	mu    sync.RWMutex
	state State
}

func (h *Holder) Get() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.state == nil {
		return Idle{}
	}
	return h.state
}

// Set replaces the current state; starting a new interaction ends the
// previous one.
func (h *Holder) Set(s State) {
	if s == nil {
		s = Idle{}
	}
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

func (h *Holder) BeginEdit(target string) error {
	if target == "" {
		return ErrNoTarget
	}
	h.Set(Editing{Target: target})
	return nil
}

func (h *Holder) BeginSelect(target string) error {
	if target == "" {
		return ErrNoTarget
	}
	h.Set(SelectingAssignee{Target: target})
	return nil
}

func (h *Holder) Cancel() {
	h.Set(Idle{})
}

// Forget returns to Idle when the current state refers to target, as when the
// target is deleted.
func (h *Holder) Forget(target string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != nil && Target(h.state) == target {
		h.state = Idle{}
	}
}

// MarshalJSON encodes the current state.
func (h *Holder) MarshalJSON() ([]byte, error) {
	return Encode(h.Get())
}
