package flowscale

import (
	"fmt"
	"time"

	"github.com/meridian-compute/flowscale/flowscale/structs"
	"github.com/meridian-compute/flowscale/logging"
)

// Runner is the main runner struct. It owns the cadence of the control
// loop; each tick runs exactly one evaluation cycle, so cycles can never
// overlap.
type Runner struct {
	// doneChan is where finish notifications occur.
	doneChan chan struct{}

	// config is the Config that created this Runner. It is used internally
	// to construct other objects and pass data.
	config *structs.Config

	strategy *Strategy
	watchdog *PendingWatchdog
}

// NewRunner sets up the Runner type. Configuration problems, including an
// unknown scaling strategy name, fail here rather than once the loop is
// running.
func NewRunner(config *structs.Config) (*Runner, error) {
	if config.SnapshotSource == nil {
		return nil, fmt.Errorf("core/runner: a snapshot source is required")
	}

	strategy, err := NewStrategy(config)
	if err != nil {
		return nil, err
	}

	runner := &Runner{
		doneChan: make(chan struct{}),
		config:   config,
		strategy: strategy,
		watchdog: NewPendingWatchdog(config),
	}
	return runner, nil
}

// Strategy exposes the strategy under management, primarily so the status
// API can report the most recent decisions.
func (r *Runner) Strategy() *Strategy {
	return r.strategy
}

// Start blocks and runs evaluation cycles on a fixed interval until the
// doneChan is closed, at which point the ticker is stopped.
func (r *Runner) Start() {
	ticker := time.NewTicker(time.Second * time.Duration(r.config.ScalingInterval))

	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cycle()

		case <-r.doneChan:
			return
		}
	}
}

// Stop halts the execution of this runner.
func (r *Runner) Stop() {
	close(r.doneChan)
}

// cycle runs a single evaluation pass: pull snapshots from the registered
// source, evaluate scaling for every executor, then check for stuck
// provisioning.
func (r *Runner) cycle() {
	snapshots, err := r.config.SnapshotSource.Snapshots()
	if err != nil {
		logging.Error("core/runner: unable to obtain executor snapshots, no "+
			"scaling evaluations will be performed this cycle: %v", err)
		return
	}

	if err := r.strategy.Evaluate(snapshots); err != nil {
		logging.Warning("core/runner: one or more executors were skipped "+
			"during evaluation: %v", err)
	}

	r.watchdog.Check(snapshots)
}
