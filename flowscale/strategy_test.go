package flowscale

import (
	"strings"
	"testing"
	"time"

	"github.com/meridian-compute/flowscale/flowscale/structs"
	"github.com/meridian-compute/flowscale/testutil"
)

func testConfig(strategy string) *structs.Config {
	return &structs.Config{
		LogLevel:        "ERR",
		ScalingInterval: 10,
		Scaling: &structs.Scaling{
			Strategy:         strategy,
			MaxIdleTime:      60,
			PendingThreshold: 3,
		},
	}
}

// noCapacityExecutor hides the NodeCapacityProvider implementation of the
// executor it wraps.
type noCapacityExecutor struct {
	structs.ExecutorHandle
}

func TestStrategy_ParseMode(t *testing.T) {
	type modeTest struct {
		input    string
		expected Mode
	}

	var modeTests = []modeTest{
		{"", ModeNoOp}, {"none", ModeNoOp}, {"simple", ModeSimple},
		{"auto-scale-drain", ModeAutoScaleDrain},
	}

	for _, test := range modeTests {
		actual, err := ParseMode(test.input)
		if err != nil {
			t.Fatalf("expected no error for %q, got %v", test.input, err)
		}
		if actual != test.expected {
			t.Fatalf("expected mode %v for %q got %v", test.expected, test.input, actual)
		}
	}

	if _, err := ParseMode("htex_auto_scale"); err == nil {
		t.Fatal("expected an error for an unknown strategy name but got nil")
	}
}

func TestStrategy_NewStrategyUnknownMode(t *testing.T) {
	_, err := NewStrategy(testConfig("elastic-everything"))
	if err == nil {
		t.Fatal("expected an unknown strategy to fail construction but got nil")
	}
	if !strings.Contains(err.Error(), "unknown scaling strategy") {
		t.Fatalf("expected an unknown strategy error, got %v", err)
	}
}

func TestStrategy_EvaluateScaleOut(t *testing.T) {
	s, err := NewStrategy(testConfig("simple"))
	if err != nil {
		t.Fatal(err)
	}

	executor := testutil.NewSimExecutor("htex-local")
	executor.SetOutstanding(5)

	snap := &structs.ExecutorSnapshot{
		Executor: executor,
		Blocks: map[string]string{
			"htex-local-block-0": structs.BlockStateRunning,
			"htex-local-block-1": structs.BlockStateRunning,
		},
	}

	if err := s.Evaluate([]*structs.ExecutorSnapshot{snap}); err != nil {
		t.Fatal(err)
	}

	if len(executor.ScaleOutCalls) != 1 || executor.ScaleOutCalls[0] != 1 {
		t.Fatalf("expected a single scale-out request for 1 block got %v",
			executor.ScaleOutCalls)
	}

	decisions := s.LastDecisions()
	if len(decisions) != 1 {
		t.Fatalf("expected 1 recorded decision got %v", len(decisions))
	}
	if decisions[0].Direction != structs.ScalingDirectionOut || decisions[0].Count != 1 {
		t.Fatalf("expected a recorded scale-out of 1 block got %+v", decisions[0])
	}
}

func TestStrategy_EvaluateSkipsDisabled(t *testing.T) {
	s, err := NewStrategy(testConfig("simple"))
	if err != nil {
		t.Fatal(err)
	}

	executor := testutil.NewSimExecutor("htex-local")
	executor.SetOutstanding(5)
	executor.SetEnabled(false)

	snap := &structs.ExecutorSnapshot{Executor: executor}

	if err := s.Evaluate([]*structs.ExecutorSnapshot{snap}); err != nil {
		t.Fatal(err)
	}

	if len(executor.ScaleOutCalls) != 0 {
		t.Fatalf("expected no scale requests for a disabled executor got %v",
			executor.ScaleOutCalls)
	}
	if _, tracked := s.idle.idleSince["htex-local"]; tracked {
		t.Fatal("expected no idle bookkeeping for a disabled executor")
	}
}

func TestStrategy_EvaluateSkipsInconsistentSnapshot(t *testing.T) {
	s, err := NewStrategy(testConfig("simple"))
	if err != nil {
		t.Fatal(err)
	}

	broken := &noCapacityExecutor{testutil.NewSimExecutor("htex-broken")}
	healthy := testutil.NewSimExecutor("htex-local")
	healthy.SetOutstanding(5)

	snaps := []*structs.ExecutorSnapshot{
		{Executor: broken},
		{Executor: healthy},
	}

	err = s.Evaluate(snaps)
	if err == nil {
		t.Fatal("expected an aggregated snapshot error but got nil")
	}
	if !strings.Contains(err.Error(), "htex-broken") {
		t.Fatalf("expected the error to name the broken executor, got %v", err)
	}

	// The healthy executor must still have been evaluated.
	if len(healthy.ScaleOutCalls) != 1 {
		t.Fatalf("expected the healthy executor to be scaled got %v",
			healthy.ScaleOutCalls)
	}
}

func TestStrategy_EvaluateIdleCollapse(t *testing.T) {
	config := testConfig("simple")
	config.Scaling.MaxIdleTime = 0

	s, err := NewStrategy(config)
	if err != nil {
		t.Fatal(err)
	}

	executor := testutil.NewSimExecutor("htex-local")
	snap := &structs.ExecutorSnapshot{
		Executor: executor,
		Blocks: map[string]string{
			"htex-local-block-0": structs.BlockStateRunning,
			"htex-local-block-1": structs.BlockStateRunning,
			"htex-local-block-2": structs.BlockStateRunning,
		},
	}

	// First cycle starts the idle timer; no scale-in may happen yet.
	if err := s.Evaluate([]*structs.ExecutorSnapshot{snap}); err != nil {
		t.Fatal(err)
	}
	if len(executor.ScaleInCalls) != 0 {
		t.Fatalf("expected no scale-in on the first idle cycle got %v",
			executor.ScaleInCalls)
	}

	// Second cycle sees an expired timer and collapses to the floor.
	time.Sleep(5 * time.Millisecond)
	if err := s.Evaluate([]*structs.ExecutorSnapshot{snap}); err != nil {
		t.Fatal(err)
	}

	if len(executor.ScaleInCalls) != 1 {
		t.Fatalf("expected a single scale-in got %v", executor.ScaleInCalls)
	}
	call := executor.ScaleInCalls[0]
	if call.Count != 3 || !call.Force {
		t.Fatalf("expected a forced release of 3 blocks got %+v", call)
	}

	// The idle timer must restart cleanly after a scale-in.
	if _, tracked := s.idle.idleSince["htex-local"]; tracked {
		t.Fatal("expected the idle timer to be cleared after scale-in")
	}
}

func TestStrategy_EvaluateDrain(t *testing.T) {
	s, err := NewStrategy(testConfig("auto-scale-drain"))
	if err != nil {
		t.Fatal(err)
	}

	executor := testutil.NewSimExecutor("htex-local")
	executor.SetOutstanding(2)

	snap := &structs.ExecutorSnapshot{
		Executor: executor,
		Blocks: map[string]string{
			"htex-local-block-0": structs.BlockStateRunning,
			"htex-local-block-1": structs.BlockStateRunning,
		},
	}

	if err := s.Evaluate([]*structs.ExecutorSnapshot{snap}); err != nil {
		t.Fatal(err)
	}

	if len(executor.ScaleInCalls) != 1 {
		t.Fatalf("expected a single drain request got %v", executor.ScaleInCalls)
	}
	call := executor.ScaleInCalls[0]
	if call.Count != 1 || call.Force || call.GracePeriod != 60*time.Second {
		t.Fatalf("expected ScaleIn(1, force=false, grace=60s) got %+v", call)
	}
}

func TestStrategy_NoOpMode(t *testing.T) {
	s, err := NewStrategy(testConfig("none"))
	if err != nil {
		t.Fatal(err)
	}

	executor := testutil.NewSimExecutor("htex-local")
	snap := &structs.ExecutorSnapshot{Executor: executor}

	if err := s.Evaluate([]*structs.ExecutorSnapshot{snap}); err != nil {
		t.Fatal(err)
	}

	if len(executor.ScaleOutCalls) != 0 || len(executor.ScaleInCalls) != 0 {
		t.Fatal("expected no scaling activity in no-op mode")
	}
	if len(s.idle.idleSince) != 0 {
		t.Fatal("expected no idle bookkeeping in no-op mode")
	}
}

func TestStrategy_AddExecutors(t *testing.T) {
	s, err := NewStrategy(testConfig("simple"))
	if err != nil {
		t.Fatal(err)
	}

	first := testutil.NewSimExecutor("htex-a")
	s.AddExecutors([]structs.ExecutorHandle{first})

	// Start an idle window for the first executor.
	s.idle.Observe("htex-a", 0, time.Now().Add(-time.Minute))

	second := testutil.NewSimExecutor("htex-b")
	s.AddExecutors([]structs.ExecutorHandle{second})

	if len(s.executors) != 2 {
		t.Fatalf("expected 2 managed executors got %v", len(s.executors))
	}
	if _, tracked := s.idle.idleSince["htex-a"]; !tracked {
		t.Fatal("expected existing idle state to survive AddExecutors")
	}
}
