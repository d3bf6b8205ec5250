package bench

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/lapwatch/lapwatch/pkg/logging"
	"github.com/lapwatch/lapwatch/pkg/stopwatch"
)

type sleepExecutor struct {
	delay time.Duration
	calls int
}

func (e *sleepExecutor) Execute(ctx context.Context, command []string) error {
	e.calls++
	time.Sleep(e.delay)
	return nil
}

type failingExecutor struct{}

func (failingExecutor) Execute(ctx context.Context, command []string) error {
	return errors.New("command exploded")
}

func quietLogger() *logging.Logger {
	log := logging.NewLogger(logging.ERROR, false)
	log.SetOutput(io.Discard)
	return log
}

func TestSummarize(t *testing.T) {
	laps := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
	}
	stats := Summarize(laps)

	if stats.Min != 10*time.Millisecond {
		t.Errorf("Min = %v, want 10ms", stats.Min)
	}
	if stats.Max != 30*time.Millisecond {
		t.Errorf("Max = %v, want 30ms", stats.Max)
	}
	if stats.Mean != 20*time.Millisecond {
		t.Errorf("Mean = %v, want 20ms", stats.Mean)
	}
	if stats.Total != 60*time.Millisecond {
		t.Errorf("Total = %v, want 60ms", stats.Total)
	}
	// Population stddev of {10,20,30}ms is sqrt(200/3) ≈ 8.165ms.
	if stats.Stddev < 8*time.Millisecond || stats.Stddev > 9*time.Millisecond {
		t.Errorf("Stddev = %v, want ≈8.16ms", stats.Stddev)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if stats := Summarize(nil); stats != (Stats{}) {
		t.Errorf("Summarize(nil) = %+v, want zero stats", stats)
	}
}

func TestRunRecordsOneLapPerIteration(t *testing.T) {
	registry := stopwatch.NewRegistry()
	executor := &sleepExecutor{delay: 2 * time.Millisecond}
	runner := NewRunnerWithExecutor(registry, quietLogger(), executor)

	report, err := runner.Run(context.Background(), Scenario{
		Name:       "sleepy",
		Command:    []string{"ignored"},
		Iterations: 3,
		Warmup:     1,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if executor.calls != 4 {
		t.Errorf("executor ran %d times, want 4 (1 warmup + 3 timed)", executor.calls)
	}
	if len(report.Iterations) != 3 {
		t.Fatalf("report has %d iterations, want 3", len(report.Iterations))
	}
	for i, lap := range report.Iterations {
		if lap < 2*time.Millisecond {
			t.Errorf("iteration %d = %v, want >= 2ms", i, lap)
		}
	}
	if report.Stats.Total < 6*time.Millisecond {
		t.Errorf("Total = %v, want >= 6ms", report.Stats.Total)
	}
	if report.RunID == "" || report.Scenario != "sleepy" {
		t.Errorf("report identity incomplete: %+v", report)
	}

	// The backing timer must end Idle with exactly the reported laps.
	sw, ok := registry.Get("bench/sleepy/" + report.RunID)
	if !ok {
		t.Fatal("benchmark timer missing from registry")
	}
	if sw.Running() {
		t.Error("benchmark timer still running after Run")
	}
	if laps := sw.LapTimes(); len(laps) != 3 {
		t.Errorf("backing timer has %d laps, want 3", len(laps))
	}
}

func TestRunSameScenarioTwice(t *testing.T) {
	registry := stopwatch.NewRegistry()
	runner := NewRunnerWithExecutor(registry, quietLogger(), &sleepExecutor{})
	sc := Scenario{Name: "repeat", Command: []string{"ignored"}, Iterations: 1}

	first, err := runner.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	second, err := runner.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if first.RunID == second.RunID {
		t.Error("runs of the same scenario must get distinct run ids")
	}
	if registry.Len() != 2 {
		t.Errorf("registry holds %d timers, want 2", registry.Len())
	}
}

func TestRunCommandFailure(t *testing.T) {
	registry := stopwatch.NewRegistry()
	runner := NewRunnerWithExecutor(registry, quietLogger(), failingExecutor{})

	_, err := runner.Run(context.Background(), Scenario{
		Name:       "broken",
		Command:    []string{"ignored"},
		Iterations: 2,
	})
	if err == nil {
		t.Fatal("Run should fail when the command fails")
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	registry := stopwatch.NewRegistry()
	runner := NewRunnerWithExecutor(registry, quietLogger(), &sleepExecutor{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, Scenario{
		Name:       "canceled",
		Command:    []string{"ignored"},
		Iterations: 5,
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run with canceled context: got %v, want context.Canceled", err)
	}
}
