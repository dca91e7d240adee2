// internal/contact/state.go
//
// Contact-form submission state machine.
//
// Context
// -------
// Four states and five events.  Transition is a pure table lookup; the
// Controller owns the side effects (validation, send, timers).
//
//	Idle ──Submit──▶ Submitting ──SendSucceeded──▶ Success ──Reset|Dismiss──▶ Idle
//	  ▲                  │
//	  │             SendFailed
//	  │                  ▼
//	  └────Dismiss───── Error ──Submit──▶ Submitting
package contact

import (
	"errors"
	"fmt"
)

// State is the form's submission state.
type State int

const (
	Idle State = iota
	Submitting
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText lets JSON responses carry the state name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{Idle, Submitting, Success, Error} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("contact: unknown state %q", b)
}

// Event drives a transition.
type Event int

const (
	EventSubmit Event = iota
	EventSendSucceeded
	EventSendFailed
	EventReset
	EventDismiss
)

func (e Event) String() string {
	switch e {
	case EventSubmit:
		return "submit"
	case EventSendSucceeded:
		return "send_succeeded"
	case EventSendFailed:
		return "send_failed"
	case EventReset:
		return "reset"
	case EventDismiss:
		return "dismiss"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ErrTransition rejects an event the current state does not accept.
var ErrTransition = errors.New("contact: invalid state transition")

type edge struct {
	from State
	on   Event
}

var transitions = map[edge]State{
	{Idle, EventSubmit}:              Submitting,
	{Error, EventSubmit}:             Submitting,
	{Submitting, EventSendSucceeded}: Success,
	{Submitting, EventSendFailed}:    Error,
	{Success, EventReset}:            Idle,
	{Success, EventDismiss}:          Idle,
	{Error, EventDismiss}:            Idle,
}

// Transition returns the state s moves to on e.  Unknown pairs leave s
// unchanged and return ErrTransition.
func Transition(s State, e Event) (State, error) {
	next, ok := transitions[edge{s, e}]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrTransition, e, s)
	}
	return next, nil
}
