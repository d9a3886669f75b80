package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/meridian-compute/flowscale/flowscale/structs"
)

// SimExecutor is an in-memory executor backed by a simulated resource
// provider. It implements the ExecutorHandle, ProviderHandle and
// NodeCapacityProvider interfaces and honors scale requests against its own
// block table, which makes it usable both from package tests and from the
// agent's dev mode.
type SimExecutor struct {
	mu sync.Mutex

	label       string
	enabled     bool
	outstanding int

	minBlocks     int
	maxBlocks     int
	nodesPerBlock int
	tasksPerNode  int
	parallelism   float64

	blocks    map[string]string
	nextBlock int

	// Recorded control calls for test assertions.
	ScaleOutCalls []int
	ScaleInCalls  []ScaleInCall
}

// ScaleInCall records the arguments of a single ScaleIn invocation.
type ScaleInCall struct {
	Count       int
	Force       bool
	GracePeriod time.Duration
}

// NewSimExecutor returns a simulated executor with scaling enabled and a
// small default capacity envelope.
func NewSimExecutor(label string) *SimExecutor {
	return &SimExecutor{
		label:         label,
		enabled:       true,
		minBlocks:     0,
		maxBlocks:     4,
		nodesPerBlock: 1,
		tasksPerNode:  2,
		parallelism:   1,
		blocks:        make(map[string]string),
	}
}

// SetEnabled toggles whether the executor participates in scaling.
func (e *SimExecutor) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// SetOutstanding sets the simulated task backlog.
func (e *SimExecutor) SetOutstanding(tasks int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outstanding = tasks
}

// SetCapacity adjusts the provider capacity envelope.
func (e *SimExecutor) SetCapacity(min, max, nodesPerBlock int, parallelism float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.minBlocks = min
	e.maxBlocks = max
	e.nodesPerBlock = nodesPerBlock
	e.parallelism = parallelism
}

// SetTasksPerNode adjusts the per-node task capacity.
func (e *SimExecutor) SetTasksPerNode(tasks int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasksPerNode = tasks
}

// AddBlock inserts a block with the given state into the provider's block
// table.
func (e *SimExecutor) AddBlock(state string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addBlockLocked(state)
}

func (e *SimExecutor) addBlockLocked(state string) string {
	id := fmt.Sprintf("%s-block-%d", e.label, e.nextBlock)
	e.nextBlock++
	e.blocks[id] = state
	return id
}

// Label returns the unique identifier of the executor.
func (e *SimExecutor) Label() string {
	return e.label
}

// ScalingEnabled indicates whether the executor participates in scaling.
func (e *SimExecutor) ScalingEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// OutstandingTasks returns the simulated task backlog.
func (e *SimExecutor) OutstandingTasks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outstanding
}

// Provider returns the provider handle, which SimExecutor implements
// itself.
func (e *SimExecutor) Provider() structs.ProviderHandle {
	return e
}

// MinBlocks returns the block floor.
func (e *SimExecutor) MinBlocks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.minBlocks
}

// MaxBlocks returns the block ceiling.
func (e *SimExecutor) MaxBlocks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxBlocks
}

// NodesPerBlock returns the number of nodes in each block.
func (e *SimExecutor) NodesPerBlock() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nodesPerBlock
}

// Parallelism returns the target slots-to-tasks ratio.
func (e *SimExecutor) Parallelism() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parallelism
}

// TasksPerNode returns the per-node task capacity.
func (e *SimExecutor) TasksPerNode() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasksPerNode
}

// ScaleOut records the request and adds count pending blocks to the block
// table.
func (e *SimExecutor) ScaleOut(count int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ScaleOutCalls = append(e.ScaleOutCalls, count)
	for i := 0; i < count; i++ {
		e.addBlockLocked(structs.BlockStatePending)
	}
	return nil
}

// ScaleIn records the request and removes up to count blocks from the block
// table, preferring pending blocks over running ones.
func (e *SimExecutor) ScaleIn(count int, force bool, gracePeriod time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ScaleInCalls = append(e.ScaleInCalls, ScaleInCall{
		Count:       count,
		Force:       force,
		GracePeriod: gracePeriod,
	})

	for _, state := range []string{structs.BlockStatePending, structs.BlockStateRunning} {
		for id, s := range e.blocks {
			if count == 0 {
				return nil
			}
			if s == state {
				delete(e.blocks, id)
				count--
			}
		}
	}
	return nil
}

// Snapshot produces a point-in-time snapshot of the executor, promoting any
// pending blocks to running first to simulate the resource manager
// fulfilling earlier requests.
func (e *SimExecutor) Snapshot() *structs.ExecutorSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	blocks := make(map[string]string, len(e.blocks))
	for id, state := range e.blocks {
		if state == structs.BlockStatePending {
			state = structs.BlockStateRunning
			e.blocks[id] = state
		}
		blocks[id] = state
	}

	return &structs.ExecutorSnapshot{
		Executor: e,
		Blocks:   blocks,
	}
}

// SimSource is a SnapshotSource over a fixed set of simulated executors.
type SimSource struct {
	Executors []*SimExecutor
}

// Snapshots returns a fresh snapshot for every simulated executor.
func (s *SimSource) Snapshots() ([]*structs.ExecutorSnapshot, error) {
	snaps := make([]*structs.ExecutorSnapshot, 0, len(s.Executors))
	for _, e := range s.Executors {
		snaps = append(snaps, e.Snapshot())
	}
	return snaps, nil
}
