package flowscale

import (
	"math"
	"time"

	"github.com/dariubs/percent"

	"github.com/meridian-compute/flowscale/flowscale/structs"
	"github.com/meridian-compute/flowscale/helper"
	"github.com/meridian-compute/flowscale/logging"
)

// DecisionInput carries one executor's observed state and static capacity
// parameters into the decision engine. All values describe a single
// evaluation cycle.
type DecisionInput struct {
	// Label identifies the executor and is used for logging only.
	Label string

	// ActiveTasks is the pending plus running task count for the executor.
	ActiveTasks int

	// RunningBlocks and PendingBlocks are the provider-reported block
	// counts. Pending blocks count as consumed capacity because they will
	// eventually become capacity.
	RunningBlocks int
	PendingBlocks int

	// MinBlocks and MaxBlocks are the inclusive bounds on concurrently
	// allocated blocks.
	MinBlocks int
	MaxBlocks int

	// SlotsPerBlock is the number of concurrent task execution slots a
	// single block provides.
	SlotsPerBlock int

	// Parallelism is the target ratio of slots to active tasks.
	Parallelism float64

	// Idle indicates whether an idle duration is being tracked for the
	// executor, and IdleDuration carries it when set.
	Idle         bool
	IdleDuration time.Duration

	// MaxIdleTime is the configured idle grace period.
	MaxIdleTime time.Duration
}

// Decide computes the single scaling action for one executor. It is a pure
// function of its inputs; the cases are evaluated in strict priority order
// and the first match wins.
//
// A scaling controller misfiring is worse than one doing nothing for a
// cycle, so malformed inputs produce a logged warning and no action rather
// than an error.
func Decide(in *DecisionInput, mode Mode) structs.ScalingAction {
	if in.ActiveTasks < 0 || in.RunningBlocks < 0 || in.PendingBlocks < 0 ||
		in.SlotsPerBlock <= 0 || in.Parallelism < 0 || in.MinBlocks < 0 ||
		in.MaxBlocks < in.MinBlocks {

		logging.Warning("core/decide: malformed capacity input for executor "+
			"%v (tasks: %v, blocks: %v/%v, bounds: %v-%v, slots per block: %v, "+
			"parallelism: %v), declining to take a scaling action", in.Label,
			in.ActiveTasks, in.RunningBlocks, in.PendingBlocks, in.MinBlocks,
			in.MaxBlocks, in.SlotsPerBlock, in.Parallelism)
		return structs.NoAction()
	}

	activeBlocks := in.RunningBlocks + in.PendingBlocks
	activeSlots := activeBlocks * in.SlotsPerBlock

	logging.Debug("core/decide: executor %v has %v active tasks and %v/%v "+
		"running/pending blocks (%v slots, %v%% utilized)", in.Label,
		in.ActiveTasks, in.RunningBlocks, in.PendingBlocks, activeSlots,
		percent.PercentOf(in.ActiveTasks, activeSlots))

	// Case 1: no tasks. This case must dominate so that idle timers make
	// progress even when other conditions would technically match.
	if in.ActiveTasks == 0 {
		if activeBlocks <= in.MinBlocks {
			return structs.NoAction()
		}

		if in.Idle && in.IdleDuration > in.MaxIdleTime {
			logging.Debug("core/decide: idle time for executor %v has reached "+
				"%v, releasing all %v block(s) above the floor", in.Label,
				in.MaxIdleTime, activeBlocks-in.MinBlocks)

			return structs.ScalingAction{
				Direction: structs.ScalingDirectionIn,
				Count:     activeBlocks - in.MinBlocks,
				Force:     true,
			}
		}

		// Timer is running but the grace period has not expired.
		return structs.NoAction()
	}

	// Case 2: under-provisioned. With zero slots and a positive
	// parallelism the ratio below is zero and this case fires; the
	// dedicated zero-slot case after it only handles parallelism = 0.
	if float64(activeSlots)/float64(in.ActiveTasks) < in.Parallelism {
		if activeBlocks >= in.MaxBlocks {
			return structs.NoAction()
		}

		excessSlots := int(math.Ceil(float64(in.ActiveTasks)*in.Parallelism - float64(activeSlots)))
		excessBlocks := helper.CeilDiv(excessSlots, in.SlotsPerBlock)
		excessBlocks = helper.MinInt(excessBlocks, in.MaxBlocks-activeBlocks)

		if excessBlocks <= 0 {
			return structs.NoAction()
		}

		return structs.ScalingAction{
			Direction: structs.ScalingDirectionOut,
			Count:     excessBlocks,
		}
	}

	// Case 3: zero capacity with pending work. Bootstrap a single block to
	// break the deadlock the ratio test cannot express.
	if activeSlots == 0 && in.ActiveTasks > 0 {
		if activeBlocks < in.MaxBlocks {
			return structs.ScalingAction{
				Direction: structs.ScalingDirectionOut,
				Count:     1,
			}
		}
		return structs.NoAction()
	}

	// Case 4: over-provisioned. The drain strategy releases a single block
	// per cycle and defers to the provider's graceful drain; overlapping
	// task placement makes it unsafe to assume any specific block is idle.
	if activeSlots > 0 && activeSlots > in.ActiveTasks {
		if mode == ModeAutoScaleDrain && activeBlocks > in.MinBlocks {
			return structs.ScalingAction{
				Direction:   structs.ScalingDirectionIn,
				Count:       1,
				Force:       false,
				GracePeriod: in.MaxIdleTime,
			}
		}
		return structs.NoAction()
	}

	// Case 5: balanced.
	return structs.NoAction()
}
