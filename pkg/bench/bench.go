// Package bench runs command benchmarks on top of the stopwatch library:
// each iteration of a scenario is recorded as one lap, and the lap times
// feed a summary report.
package bench

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/lapwatch/lapwatch/pkg/logging"
	"github.com/lapwatch/lapwatch/pkg/stopwatch"
	"github.com/lapwatch/lapwatch/pkg/sysinfo"
)

// Executor runs one benchmark iteration.
type Executor interface {
	Execute(ctx context.Context, command []string) error
}

type commandExecutor struct{}

func (commandExecutor) Execute(ctx context.Context, command []string) error {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	return cmd.Run()
}

// Stats summarizes a sequence of lap durations.
type Stats struct {
	Min    time.Duration `json:"min_ns"`
	Max    time.Duration `json:"max_ns"`
	Mean   time.Duration `json:"mean_ns"`
	Stddev time.Duration `json:"stddev_ns"`
	Total  time.Duration `json:"total_ns"`
}

// Summarize computes aggregate statistics over lap durations.
func Summarize(laps []time.Duration) Stats {
	if len(laps) == 0 {
		return Stats{}
	}

	stats := Stats{Min: laps[0], Max: laps[0]}
	for _, lap := range laps {
		if lap < stats.Min {
			stats.Min = lap
		}
		if lap > stats.Max {
			stats.Max = lap
		}
		stats.Total += lap
	}
	stats.Mean = stats.Total / time.Duration(len(laps))

	var variance float64
	mean := float64(stats.Mean)
	for _, lap := range laps {
		diff := float64(lap) - mean
		variance += diff * diff
	}
	variance /= float64(len(laps))
	stats.Stddev = time.Duration(math.Sqrt(variance))

	return stats
}

// Report is the outcome of one scenario run.
type Report struct {
	RunID      string           `json:"run_id"`
	Scenario   string           `json:"scenario"`
	StartedAt  time.Time        `json:"started_at"`
	Iterations []time.Duration  `json:"iterations_ns"`
	Stats      Stats            `json:"stats"`
	System     sysinfo.Snapshot `json:"system"`
}

// Runner executes scenarios, timing them through stopwatches created in a
// shared registry so concurrent runs never collide on timer state.
type Runner struct {
	registry *stopwatch.Registry
	executor Executor
	log      *logging.Logger
}

// NewRunner creates a runner that executes scenario commands on the host.
func NewRunner(registry *stopwatch.Registry, log *logging.Logger) *Runner {
	return NewRunnerWithExecutor(registry, log, commandExecutor{})
}

// NewRunnerWithExecutor creates a runner with a custom iteration executor.
func NewRunnerWithExecutor(registry *stopwatch.Registry, log *logging.Logger, executor Executor) *Runner {
	return &Runner{
		registry: registry,
		executor: executor,
		log:      log,
	}
}

// Run executes one scenario and returns its report. The context aborts the
// run between iterations and cancels an in-flight command.
func (r *Runner) Run(ctx context.Context, sc Scenario) (*Report, error) {
	runID := uuid.New().String()
	sw, err := r.registry.Create("bench/" + sc.Name + "/" + runID)
	if err != nil {
		return nil, fmt.Errorf("create benchmark timer: %w", err)
	}

	r.log.Info("Running scenario", map[string]interface{}{
		"scenario":   sc.Name,
		"run_id":     runID,
		"iterations": sc.Iterations,
		"warmup":     sc.Warmup,
	})

	for i := 0; i < sc.Warmup; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.executor.Execute(ctx, sc.Command); err != nil {
			return nil, fmt.Errorf("scenario %q: warmup iteration %d: %w", sc.Name, i+1, err)
		}
	}

	startedAt := time.Now()
	if err := sw.Start(); err != nil {
		return nil, err
	}
	for i := 0; i < sc.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			sw.Reset()
			return nil, err
		}
		if err := r.executor.Execute(ctx, sc.Command); err != nil {
			sw.Reset()
			return nil, fmt.Errorf("scenario %q: iteration %d: %w", sc.Name, i+1, err)
		}
		if i == sc.Iterations-1 {
			err = sw.Stop()
		} else {
			err = sw.Lap()
		}
		if err != nil {
			return nil, err
		}
	}

	laps := sw.LapTimes()
	report := &Report{
		RunID:      runID,
		Scenario:   sc.Name,
		StartedAt:  startedAt,
		Iterations: laps,
		Stats:      Summarize(laps),
		System:     sysinfo.Collect(),
	}
	r.log.Info("Scenario complete", map[string]interface{}{
		"scenario": sc.Name,
		"run_id":   runID,
		"total":    report.Stats.Total.String(),
		"mean":     report.Stats.Mean.String(),
	})
	return report, nil
}
