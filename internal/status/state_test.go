package status

import (
	"testing"

	"github.com/pcordeiro/parley/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Booting {
		t.Errorf("initial state = %v, want Booting", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	m := NewMachine(nil)

	steps := []State{Ready, Degraded, Ready, ShuttingDown}
	for _, s := range steps {
		if err := m.Transition(s); err != nil {
			t.Fatalf("Transition(%v) error = %v", s, err)
		}
	}
	if m.Current() != ShuttingDown {
		t.Errorf("state = %v, want ShuttingDown", m.Current())
	}
}

func TestInvalidTransition(t *testing.T) {
	m := NewMachine(nil)

	if err := m.Transition(Degraded); err == nil {
		t.Error("Booting -> Degraded should be rejected")
	}
	if m.Current() != Booting {
		t.Errorf("failed transition must not change state, got %v", m.Current())
	}

	if err := m.Transition(Ready); err != nil {
		t.Fatal(err)
	}
	if err := m.Transition(ShuttingDown); err != nil {
		t.Fatal(err)
	}
	if err := m.Transition(Ready); err == nil {
		t.Error("ShuttingDown is terminal")
	}
}

func TestTransitionPublishesEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("daemon.", 1)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Ready); err != nil {
		t.Fatal(err)
	}

	evt := <-ch
	if evt.Kind != "daemon.status_changed" {
		t.Errorf("kind = %q", evt.Kind)
	}
	change, ok := evt.Payload.(StatusChange)
	if !ok || change.From != Booting || change.To != Ready {
		t.Errorf("payload = %+v", evt.Payload)
	}
}
