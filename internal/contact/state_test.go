package contact

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		from State
		on   Event
		want State
		ok   bool
	}{
		{Idle, EventSubmit, Submitting, true},
		{Error, EventSubmit, Submitting, true},
		{Submitting, EventSendSucceeded, Success, true},
		{Submitting, EventSendFailed, Error, true},
		{Success, EventReset, Idle, true},
		{Success, EventDismiss, Idle, true},
		{Error, EventDismiss, Idle, true},

		{Submitting, EventSubmit, Submitting, false},
		{Success, EventSubmit, Success, false},
		{Idle, EventReset, Idle, false},
		{Idle, EventSendSucceeded, Idle, false},
		{Error, EventReset, Error, false},
	}
	for _, c := range cases {
		got, err := Transition(c.from, c.on)
		if got != c.want {
			t.Errorf("%s on %s: got %s, want %s", c.from, c.on, got, c.want)
		}
		if c.ok && err != nil {
			t.Errorf("%s on %s: unexpected error %v", c.from, c.on, err)
		}
		if !c.ok && !errors.Is(err, ErrTransition) {
			t.Errorf("%s on %s: want ErrTransition, got %v", c.from, c.on, err)
		}
	}
}

func TestStateText(t *testing.T) {
	b, _ := Submitting.MarshalText()
	if string(b) != "submitting" {
		t.Fatalf("MarshalText = %q", b)
	}
	if State(9).String() != "state(9)" {
		t.Fatalf("unknown state = %q", State(9).String())
	}
}

func TestStateUnmarshalText(t *testing.T) {
	var s State
	if err := s.UnmarshalText([]byte("success")); err != nil || s != Success {
		t.Fatalf("got %v, %v", s, err)
	}
	if err := s.UnmarshalText([]byte("bogus")); err == nil {
		t.Fatal("expected error")
	}
}
