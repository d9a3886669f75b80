package structs

import (
	"time"
)

// Set of scaling directions an evaluation can produce.
const (
	ScalingDirectionOut  = "Out"
	ScalingDirectionIn   = "In"
	ScalingDirectionNone = "None"
)

// ScalingAction describes the single scaling operation computed for an
// executor during one evaluation cycle. Actions are disposable; they are
// dispatched immediately and never retained across cycles.
type ScalingAction struct {
	// Direction is the direction of the scaling operation.
	Direction string

	// Count is the number of blocks to request or release. It is always
	// positive for Out and In actions and zero for None.
	Count int

	// Force indicates whether the provider may terminate blocks without
	// draining their tasks first. Only meaningful on scale-in.
	Force bool

	// GracePeriod is a hint to the provider about how long a draining block
	// may take before it is forcibly terminated. Only meaningful on
	// scale-in; the daemon itself never enforces it.
	GracePeriod time.Duration
}

// NoAction returns the no-op scaling action.
func NoAction() ScalingAction {
	return ScalingAction{Direction: ScalingDirectionNone}
}

// ExecutorDecision records the outcome of one executor's evaluation for
// status reporting. A slice of these is retained for the most recent cycle
// only.
type ExecutorDecision struct {
	// Label is the executor the decision applies to.
	Label string `json:"label"`

	// Direction is the direction of the computed action.
	Direction string `json:"direction"`

	// Count is the number of blocks requested or released.
	Count int `json:"count"`

	// ActiveTasks is the task backlog observed for the executor.
	ActiveTasks int `json:"active_tasks"`

	// RunningBlocks and PendingBlocks are the block counts observed for the
	// executor.
	RunningBlocks int `json:"running_blocks"`
	PendingBlocks int `json:"pending_blocks"`

	// SlotUtilization is the percentage of available execution slots
	// consumed by active tasks.
	SlotUtilization float64 `json:"slot_utilization"`
}

// StatusResponse is returned by the agent status endpoint.
type StatusResponse struct {
	Version string `json:"version"`
	Mode    string `json:"mode"`
}

// DecisionsResponse is returned by the agent decisions endpoint and carries
// the per-executor outcomes of the most recent evaluation cycle.
type DecisionsResponse struct {
	Decisions []*ExecutorDecision `json:"decisions"`
}
