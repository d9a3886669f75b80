package flowscale

import (
	"testing"
	"time"
)

func TestIdle_ObserveStartsTimer(t *testing.T) {
	tracker := NewIdleTracker()
	base := time.Now()

	duration, idle := tracker.Observe("htex-local", 0, base)
	if !idle {
		t.Fatal("expected idle tracking to answer true but got false")
	}
	if duration != 0 {
		t.Fatalf("expected a zero duration on first observation, got %v", duration)
	}

	duration, idle = tracker.Observe("htex-local", 0, base.Add(30*time.Second))
	if !idle || duration != 30*time.Second {
		t.Fatalf("expected 30s idle duration, got %v (tracking %v)", duration, idle)
	}

	// The duration must be non-decreasing while the executor stays idle.
	later, _ := tracker.Observe("htex-local", 0, base.Add(45*time.Second))
	if later < duration {
		t.Fatalf("expected a non-decreasing idle duration, got %v after %v", later, duration)
	}
}

func TestIdle_ResetOnActiveTasks(t *testing.T) {
	tracker := NewIdleTracker()
	base := time.Now()

	tracker.Observe("htex-local", 0, base)

	duration, idle := tracker.Observe("htex-local", 3, base.Add(10*time.Second))
	if idle {
		t.Fatal("expected idle tracking to answer false but got true")
	}
	if duration != 0 {
		t.Fatalf("expected a zero duration, got %v", duration)
	}

	// A fresh idle window must start from scratch.
	duration, idle = tracker.Observe("htex-local", 0, base.Add(20*time.Second))
	if !idle || duration != 0 {
		t.Fatalf("expected a restarted timer with zero duration, got %v (tracking %v)",
			duration, idle)
	}
}

func TestIdle_Clear(t *testing.T) {
	tracker := NewIdleTracker()
	base := time.Now()

	tracker.Observe("htex-local", 0, base)
	tracker.Clear("htex-local")

	duration, idle := tracker.Observe("htex-local", 0, base.Add(time.Minute))
	if !idle || duration != 0 {
		t.Fatalf("expected a restarted timer after Clear, got %v (tracking %v)",
			duration, idle)
	}
}

func TestIdle_IndependentLabels(t *testing.T) {
	tracker := NewIdleTracker()
	base := time.Now()

	tracker.Observe("htex-a", 0, base)
	tracker.Observe("htex-b", 0, base.Add(10*time.Second))

	duration, _ := tracker.Observe("htex-a", 0, base.Add(20*time.Second))
	if duration != 20*time.Second {
		t.Fatalf("expected 20s for htex-a, got %v", duration)
	}

	duration, _ = tracker.Observe("htex-b", 0, base.Add(20*time.Second))
	if duration != 10*time.Second {
		t.Fatalf("expected 10s for htex-b, got %v", duration)
	}
}
