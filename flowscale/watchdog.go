package flowscale

import (
	"fmt"
	"sort"

	"github.com/meridian-compute/flowscale/flowscale/structs"
	"github.com/meridian-compute/flowscale/helper"
	"github.com/meridian-compute/flowscale/logging"
	"github.com/meridian-compute/flowscale/notifier"
)

// pendingRecord tracks the pending block set observed for one executor and
// the number of consecutive cycles it has remained unchanged.
type pendingRecord struct {
	blocks   []string
	cycles   int
	notified bool
}

// PendingWatchdog watches for scale-out requests the provider never
// fulfils. The daemon has no direct visibility into provider failures, so a
// block stuck in the pending state across consecutive cycles is the only
// signal a requested allocation is not arriving. When an identical
// non-empty pending set persists past the configured threshold, a single
// notification is sent and held until the set changes.
type PendingWatchdog struct {
	config    *structs.Config
	threshold int
	tracked   map[string]*pendingRecord
}

// NewPendingWatchdog sets up the watchdog from the daemon configuration.
func NewPendingWatchdog(config *structs.Config) *PendingWatchdog {
	return &PendingWatchdog{
		config:    config,
		threshold: config.Scaling.PendingThreshold,
		tracked:   make(map[string]*pendingRecord),
	}
}

// Check inspects the pending block sets in the supplied snapshots and fires
// notifications for executors whose pending set has not moved within the
// threshold. A threshold of zero disables the watchdog.
func (w *PendingWatchdog) Check(snapshots []*structs.ExecutorSnapshot) {
	if w.threshold <= 0 {
		return
	}

	for _, snap := range snapshots {
		if snap == nil || snap.Executor == nil {
			continue
		}
		label := snap.Executor.Label()

		pending := snap.PendingBlocks()
		if len(pending) == 0 {
			delete(w.tracked, label)
			continue
		}
		sort.Strings(pending)

		rec, ok := w.tracked[label]
		if !ok {
			w.tracked[label] = &pendingRecord{blocks: pending, cycles: 1}
			continue
		}

		changed, err := helper.HasObjectChanged(rec.blocks, pending)
		if err != nil {
			logging.Error("core/watchdog: unable to compare pending block "+
				"sets for executor %v: %v", label, err)
			continue
		}

		if changed {
			rec.blocks = pending
			rec.cycles = 1
			rec.notified = false
			continue
		}

		rec.cycles++
		if rec.cycles < w.threshold || rec.notified {
			continue
		}

		logging.Warning("core/watchdog: executor %v has had the same %v "+
			"pending block(s) for %v consecutive evaluation cycles, the "+
			"provider may be failing to allocate", label, len(pending),
			rec.cycles)

		w.notify(label, len(pending))
		rec.notified = true
	}
}

func (w *PendingWatchdog) notify(label string, blocks int) {
	if w.config.Notification == nil {
		return
	}

	msg := notifier.FailureMessage{
		AlertUID:          w.config.Notification.AlertUID,
		RuntimeIdentifier: w.config.Notification.RuntimeIdentifier,
		Reason: fmt.Sprintf("%v requested block(s) stuck pending past %v cycles",
			blocks, w.threshold),
		ResourceID: label,
	}

	for _, n := range w.config.Notification.Notifiers {
		n.SendNotification(msg)
	}
}
