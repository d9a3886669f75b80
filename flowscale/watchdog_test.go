package flowscale

import (
	"testing"

	"github.com/meridian-compute/flowscale/flowscale/structs"
	"github.com/meridian-compute/flowscale/notifier"
	"github.com/meridian-compute/flowscale/testutil"
)

// recordingNotifier captures messages instead of paging anyone.
type recordingNotifier struct {
	messages []notifier.FailureMessage
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) SendNotification(m notifier.FailureMessage) {
	r.messages = append(r.messages, m)
}

func watchdogConfig(threshold int, n notifier.Notifier) *structs.Config {
	return &structs.Config{
		Scaling: &structs.Scaling{
			Strategy:         "simple",
			PendingThreshold: threshold,
		},
		Notification: &structs.Notification{
			AlertUID:          "uid-1",
			RuntimeIdentifier: "flow-test",
			Notifiers:         []notifier.Notifier{n},
		},
	}
}

func pendingSnapshot(executor structs.ExecutorHandle, ids ...string) *structs.ExecutorSnapshot {
	blocks := make(map[string]string)
	for _, id := range ids {
		blocks[id] = structs.BlockStatePending
	}
	return &structs.ExecutorSnapshot{Executor: executor, Blocks: blocks}
}

func TestWatchdog_NotifiesOnceOnStuckPending(t *testing.T) {
	recorder := &recordingNotifier{}
	w := NewPendingWatchdog(watchdogConfig(2, recorder))

	executor := testutil.NewSimExecutor("htex-local")
	snap := pendingSnapshot(executor, "block-0", "block-1")

	// First sighting arms the record; the threshold is not met yet.
	w.Check([]*structs.ExecutorSnapshot{snap})
	if len(recorder.messages) != 0 {
		t.Fatalf("expected no notification after 1 cycle got %v", len(recorder.messages))
	}

	// Second sighting of the identical set crosses the threshold.
	w.Check([]*structs.ExecutorSnapshot{snap})
	if len(recorder.messages) != 1 {
		t.Fatalf("expected 1 notification after 2 cycles got %v", len(recorder.messages))
	}
	if recorder.messages[0].ResourceID != "htex-local" {
		t.Fatalf("expected the notification to name the executor, got %+v",
			recorder.messages[0])
	}

	// Further identical sightings must not re-notify.
	w.Check([]*structs.ExecutorSnapshot{snap})
	if len(recorder.messages) != 1 {
		t.Fatalf("expected the notification to be held got %v", len(recorder.messages))
	}
}

func TestWatchdog_ResetsWhenPendingSetChanges(t *testing.T) {
	recorder := &recordingNotifier{}
	w := NewPendingWatchdog(watchdogConfig(2, recorder))

	executor := testutil.NewSimExecutor("htex-local")

	w.Check([]*structs.ExecutorSnapshot{pendingSnapshot(executor, "block-0")})
	w.Check([]*structs.ExecutorSnapshot{pendingSnapshot(executor, "block-1")})
	w.Check([]*structs.ExecutorSnapshot{pendingSnapshot(executor, "block-2")})

	if len(recorder.messages) != 0 {
		t.Fatalf("expected no notification for a moving pending set got %v",
			len(recorder.messages))
	}
}

func TestWatchdog_ClearsWhenPendingDrains(t *testing.T) {
	recorder := &recordingNotifier{}
	w := NewPendingWatchdog(watchdogConfig(2, recorder))

	executor := testutil.NewSimExecutor("htex-local")
	stuck := pendingSnapshot(executor, "block-0")

	w.Check([]*structs.ExecutorSnapshot{stuck})

	// The block comes up; tracking must be discarded.
	running := &structs.ExecutorSnapshot{
		Executor: executor,
		Blocks:   map[string]string{"block-0": structs.BlockStateRunning},
	}
	w.Check([]*structs.ExecutorSnapshot{running})

	w.Check([]*structs.ExecutorSnapshot{stuck})
	w.Check([]*structs.ExecutorSnapshot{stuck})

	// Two fresh sightings are required again after the reset, so exactly
	// one notification fires at the end.
	if len(recorder.messages) != 1 {
		t.Fatalf("expected 1 notification got %v", len(recorder.messages))
	}
}

func TestWatchdog_DisabledByZeroThreshold(t *testing.T) {
	recorder := &recordingNotifier{}
	w := NewPendingWatchdog(watchdogConfig(0, recorder))

	executor := testutil.NewSimExecutor("htex-local")
	snap := pendingSnapshot(executor, "block-0")

	for i := 0; i < 5; i++ {
		w.Check([]*structs.ExecutorSnapshot{snap})
	}

	if len(recorder.messages) != 0 {
		t.Fatalf("expected a zero threshold to disable the watchdog got %v",
			len(recorder.messages))
	}
}
