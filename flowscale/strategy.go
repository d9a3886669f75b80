package flowscale

import (
	"fmt"
	"strings"
	"sync"
	"time"

	metrics "github.com/armon/go-metrics"
	"github.com/dariubs/percent"
	multierror "github.com/hashicorp/go-multierror"

	"github.com/meridian-compute/flowscale/flowscale/structs"
	"github.com/meridian-compute/flowscale/logging"
)

// Mode identifies the scaling policy the strategy runs. The set of policies
// is closed; an unrecognized policy name is a configuration error raised at
// construction time.
type Mode int

const (
	// ModeNoOp takes no scaling actions and performs no bookkeeping.
	ModeNoOp Mode = iota

	// ModeSimple scales out on demand and scales in only through the
	// idle-timeout collapse.
	ModeSimple

	// ModeAutoScaleDrain behaves like ModeSimple on scale-out and
	// additionally drains one block per cycle while over-provisioned.
	ModeAutoScaleDrain
)

// ParseMode resolves a policy name from the configuration into a Mode. An
// empty name selects the no-op policy.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return ModeNoOp, nil
	case "simple":
		return ModeSimple, nil
	case "auto-scale-drain":
		return ModeAutoScaleDrain, nil
	default:
		return ModeNoOp, fmt.Errorf("unknown scaling strategy %q", name)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeSimple:
		return "simple"
	case ModeAutoScaleDrain:
		return "auto-scale-drain"
	default:
		return "none"
	}
}

// Strategy orchestrates one evaluation cycle across all registered
// executors: it reads snapshots, updates idleness state, invokes the
// decision engine and dispatches the resulting actions on each executor's
// control handle.
//
// Evaluate must not be invoked concurrently; the idle tracker it owns is
// deliberately single-caller.
type Strategy struct {
	mode        Mode
	maxIdleTime time.Duration

	idle      *IdleTracker
	executors map[string]structs.ExecutorHandle

	lastLock      sync.RWMutex
	lastDecisions []*structs.ExecutorDecision
}

// NewStrategy sets up the Strategy from the daemon configuration. An
// unknown policy name fails here, never at evaluation time.
func NewStrategy(config *structs.Config) (*Strategy, error) {
	if config.Scaling == nil {
		return nil, fmt.Errorf("core/strategy: scaling configuration is required")
	}

	mode, err := ParseMode(config.Scaling.Strategy)
	if err != nil {
		return nil, fmt.Errorf("core/strategy: %v", err)
	}

	s := &Strategy{
		mode:        mode,
		maxIdleTime: time.Duration(config.Scaling.MaxIdleTime) * time.Second,
		idle:        NewIdleTracker(),
		executors:   make(map[string]structs.ExecutorHandle),
	}

	logging.Debug("core/strategy: scaling strategy: %v", mode)

	return s, nil
}

// Mode returns the policy the strategy was constructed with.
func (s *Strategy) Mode() Mode {
	return s.mode
}

// AddExecutors extends the managed executor set at runtime. Idle state for
// executors already under management is left untouched.
func (s *Strategy) AddExecutors(executors []structs.ExecutorHandle) {
	for _, executor := range executors {
		label := executor.Label()
		if _, ok := s.executors[label]; !ok {
			logging.Debug("core/strategy: registering executor %v for "+
				"scaling management", label)
		}
		s.executors[label] = executor
	}
}

// LastDecisions returns the per-executor outcomes of the most recent
// evaluation cycle.
func (s *Strategy) LastDecisions() []*structs.ExecutorDecision {
	s.lastLock.RLock()
	defer s.lastLock.RUnlock()
	return s.lastDecisions
}

// Evaluate runs one evaluation cycle over the supplied snapshots. Executors
// with scaling disabled are skipped entirely, with no idle-timer
// bookkeeping. Snapshots missing required capacity information are skipped
// for the current cycle only; the failures are aggregated into the returned
// error without aborting the evaluation.
func (s *Strategy) Evaluate(snapshots []*structs.ExecutorSnapshot) error {
	if s.mode == ModeNoOp {
		return nil
	}

	var mErr *multierror.Error
	now := time.Now()

	decisions := make([]*structs.ExecutorDecision, 0, len(snapshots))

	for _, snap := range snapshots {
		if snap == nil || snap.Executor == nil {
			mErr = multierror.Append(mErr, fmt.Errorf("snapshot is missing its executor handle"))
			continue
		}

		executor := snap.Executor
		label := executor.Label()

		if !executor.ScalingEnabled() {
			logging.Debug("core/strategy: scaling is disabled for executor "+
				"%v, skipping evaluation", label)
			continue
		}

		provider := executor.Provider()
		if provider == nil {
			logging.Warning("core/strategy: snapshot for executor %v is "+
				"missing its provider capacity parameters, skipping this cycle", label)
			mErr = multierror.Append(mErr, fmt.Errorf(
				"executor %s: snapshot is missing provider capacity parameters", label))
			continue
		}

		capacity, ok := executor.(structs.NodeCapacityProvider)
		if !ok {
			logging.Warning("core/strategy: executor %v does not report its "+
				"node task capacity, skipping this cycle", label)
			mErr = multierror.Append(mErr, fmt.Errorf(
				"executor %s: does not implement node capacity reporting", label))
			continue
		}

		activeTasks := executor.OutstandingTasks()
		running, pending := snap.CountBlocks()
		slotsPerBlock := capacity.TasksPerNode() * provider.NodesPerBlock()

		if workers, ok := executor.(structs.ConnectedWorkerCounter); ok {
			logging.Debug("core/strategy: executor %v has %v active tasks, "+
				"%v/%v running/pending blocks and %v connected workers", label,
				activeTasks, running, pending, workers.ConnectedWorkers())
		} else {
			logging.Debug("core/strategy: executor %v has %v active tasks "+
				"and %v/%v running/pending blocks", label, activeTasks,
				running, pending)
		}

		idleDuration, idle := s.idle.Observe(label, activeTasks, now)

		action := Decide(&DecisionInput{
			Label:         label,
			ActiveTasks:   activeTasks,
			RunningBlocks: running,
			PendingBlocks: pending,
			MinBlocks:     provider.MinBlocks(),
			MaxBlocks:     provider.MaxBlocks(),
			SlotsPerBlock: slotsPerBlock,
			Parallelism:   provider.Parallelism(),
			Idle:          idle,
			IdleDuration:  idleDuration,
			MaxIdleTime:   s.maxIdleTime,
		}, s.mode)

		s.dispatch(executor, action)

		decisions = append(decisions, &structs.ExecutorDecision{
			Label:           label,
			Direction:       action.Direction,
			Count:           action.Count,
			ActiveTasks:     activeTasks,
			RunningBlocks:   running,
			PendingBlocks:   pending,
			SlotUtilization: percent.PercentOf(activeTasks, (running+pending)*slotsPerBlock),
		})
	}

	s.lastLock.Lock()
	s.lastDecisions = decisions
	s.lastLock.Unlock()

	return mErr.ErrorOrNil()
}

// dispatch issues the computed action on the executor's control handle. The
// calls are fire-and-forget; a failed request is re-computed naturally on
// the next cycle, so there is no retry logic here.
func (s *Strategy) dispatch(executor structs.ExecutorHandle, action structs.ScalingAction) {
	label := executor.Label()

	switch action.Direction {
	case structs.ScalingDirectionOut:
		logging.Info("core/strategy: requesting %v additional block(s) for "+
			"executor %v", action.Count, label)

		if err := executor.ScaleOut(action.Count); err != nil {
			logging.Error("core/strategy: unable to successfully initiate a "+
				"scaling operation (out) against executor %v: %v", label, err)
			metrics.IncrCounter([]string{"executor", label, "scale_out", "failure"}, 1)
			return
		}
		metrics.IncrCounter([]string{"executor", label, "scale_out", "success"}, 1)

	case structs.ScalingDirectionIn:
		logging.Info("core/strategy: releasing %v block(s) from executor %v "+
			"(force: %v, grace period: %v)", action.Count, label, action.Force,
			action.GracePeriod)

		if err := executor.ScaleIn(action.Count, action.Force, action.GracePeriod); err != nil {
			logging.Error("core/strategy: unable to successfully initiate a "+
				"scaling operation (in) against executor %v: %v", label, err)
			metrics.IncrCounter([]string{"executor", label, "scale_in", "failure"}, 1)
			return
		}

		// Restart the idle window so remaining blocks get a clean grace
		// period on the next cycle.
		s.idle.Clear(label)
		metrics.IncrCounter([]string{"executor", label, "scale_in", "success"}, 1)
	}
}
