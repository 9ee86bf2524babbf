package shutdown

import (
	"sync"
	"testing"
	"time"

	"effects-studio/internal/logger"
)

type recordingComponent struct {
	mu    *sync.Mutex
	order *[]string
	name  string
}

func (r *recordingComponent) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.order = append(*r.order, r.name)
}

func TestShutdownRunsInReverseRegistrationOrder(t *testing.T) {
	m := NewManager(logger.NewSilent())

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		m.Register(name, &recordingComponent{mu: &mu, order: &order, name: name})
	}

	m.Shutdown()

	want := []string{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("expected %d shutdowns, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], order[i])
		}
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	m := NewManager(logger.NewSilent())

	var mu sync.Mutex
	var order []string
	m.Register("only", &recordingComponent{mu: &mu, order: &order, name: "only"})

	m.Shutdown()
	m.Shutdown()

	if len(order) != 1 {
		t.Errorf("component shut down %d times, expected once", len(order))
	}
}

func TestShutdownCancelsContextAndClosesDone(t *testing.T) {
	m := NewManager(logger.NewSilent())

	m.Shutdown()

	select {
	case <-m.Context().Done():
	case <-time.After(time.Second):
		t.Error("context not cancelled by shutdown")
	}

	select {
	case <-m.Done():
	case <-time.After(time.Second):
		t.Error("done channel not closed by shutdown")
	}
}
