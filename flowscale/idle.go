package flowscale

import (
	"time"

	"github.com/meridian-compute/flowscale/logging"
)

// IdleTracker records, per executor label, the time at which the executor
// was first observed with zero active tasks. It implements the hysteresis
// window that delays scale-in until an executor has been continuously idle
// for the configured grace period.
//
// The tracker is exclusively owned and mutated by the Strategy and is not
// safe for concurrent use.
type IdleTracker struct {
	idleSince map[string]time.Time
}

// NewIdleTracker returns an initialized IdleTracker.
func NewIdleTracker() *IdleTracker {
	return &IdleTracker{
		idleSince: make(map[string]time.Time),
	}
}

// Observe records the active task count for an executor. If the executor has
// active tasks, any running idle timer is discarded and tracking stops. If
// the executor has no active tasks, the idle timer is started on first
// observation and the accumulated idle duration is returned on subsequent
// observations. The boolean return reports whether an idle duration is
// being tracked.
func (t *IdleTracker) Observe(label string, activeTasks int, now time.Time) (time.Duration, bool) {
	if activeTasks > 0 {
		if _, ok := t.idleSince[label]; ok {
			delete(t.idleSince, label)
		}
		return 0, false
	}

	since, ok := t.idleSince[label]
	if !ok {
		logging.Debug("core/idle: executor %v has 0 active tasks, starting "+
			"idle timer", label)
		t.idleSince[label] = now
		return 0, true
	}

	return now.Sub(since), true
}

// Clear discards the idle timer for an executor so that a fresh idle window
// begins on the next zero-task observation. It is called after any issued
// scale-in to avoid immediately re-triggering against a still-warm timer.
func (t *IdleTracker) Clear(label string) {
	delete(t.idleSince, label)
}
