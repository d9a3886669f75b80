package structs

import (
	"time"
)

// Set of possible provider-reported states for an execution block.
const (
	BlockStatePending = "pending"
	BlockStateRunning = "running"
	BlockStateOther   = "other"
)

// ExecutorHandle exposes the control surface of a single task executor as
// registered with the surrounding runtime. flowscale holds references to
// executors but never owns their lifetime.
type ExecutorHandle interface {
	// Label returns the unique identifier of the executor.
	Label() string

	// ScalingEnabled indicates whether the executor participates in elastic
	// scaling. Disabled executors are skipped entirely during evaluation.
	ScalingEnabled() bool

	// OutstandingTasks returns the number of tasks that are pending or
	// running against the executor.
	OutstandingTasks() int

	// Provider returns a handle on the resource provider backing the
	// executor.
	Provider() ProviderHandle

	// ScaleOut requests count additional blocks from the resource provider.
	// The request is fire-and-forget; failures surface through subsequent
	// block status snapshots.
	ScaleOut(count int) error

	// ScaleIn requests the release of count blocks. When force is false the
	// provider is expected to drain tasks gracefully, waiting up to
	// gracePeriod before terminating a block.
	ScaleIn(count int, force bool, gracePeriod time.Duration) error
}

// ProviderHandle exposes the static capacity parameters of the resource
// provider backing an executor. These values are read-only from the
// daemon's point of view.
type ProviderHandle interface {
	// MinBlocks is the minimum number of blocks the provider maintains.
	MinBlocks() int

	// MaxBlocks is the maximum number of blocks the provider may allocate.
	MaxBlocks() int

	// NodesPerBlock is the number of nodes contained in a single block.
	NodesPerBlock() int

	// Parallelism is the target ratio of execution slots to active tasks.
	Parallelism() float64
}

// NodeCapacityProvider is the capability interface executors implement to
// report how many tasks a single node can execute concurrently. Executors
// that do not implement it cannot be sized and are skipped during
// evaluation.
type NodeCapacityProvider interface {
	TasksPerNode() int
}

// ConnectedWorkerCounter is an optional capability interface for executors
// that track how many workers have connected back to them. It is used for
// reporting only and plays no part in scaling decisions.
type ConnectedWorkerCounter interface {
	ConnectedWorkers() int
}

// ExecutorSnapshot is a point-in-time view of one executor, pairing its
// handle with the provider-reported state of every allocated block. A fresh
// snapshot is supplied for each executor on every evaluation cycle.
type ExecutorSnapshot struct {
	// Executor is the handle of the executor the snapshot describes.
	Executor ExecutorHandle

	// Blocks maps block IDs to their provider-reported states.
	Blocks map[string]string
}

// CountBlocks returns the number of running and pending blocks recorded in
// the snapshot. States other than running and pending are terminal and do
// not count towards consumed capacity.
func (s *ExecutorSnapshot) CountBlocks() (running, pending int) {
	for _, state := range s.Blocks {
		switch state {
		case BlockStateRunning:
			running++
		case BlockStatePending:
			pending++
		}
	}
	return running, pending
}

// PendingBlocks returns the IDs of all blocks the provider reports as
// pending.
func (s *ExecutorSnapshot) PendingBlocks() []string {
	var pending []string
	for id, state := range s.Blocks {
		if state == BlockStatePending {
			pending = append(pending, id)
		}
	}
	return pending
}

// SnapshotSource is implemented by the surrounding runtime's poller and
// supplies the per-executor snapshots consumed on each evaluation cycle.
type SnapshotSource interface {
	Snapshots() ([]*ExecutorSnapshot, error)
}
