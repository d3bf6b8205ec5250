package stopwatch

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestStopwatch(t *testing.T) *Stopwatch {
	t.Helper()
	sw, err := NewRegistry().Create("test")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return sw
}

func TestFreshStopwatchIsIdle(t *testing.T) {
	sw := newTestStopwatch(t)

	if sw.Running() {
		t.Error("fresh stopwatch should be idle")
	}
	if err := sw.Lap(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Lap on idle stopwatch: got %v, want ErrNotRunning", err)
	}
	if err := sw.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop on idle stopwatch: got %v, want ErrNotRunning", err)
	}
	if laps := sw.LapTimes(); len(laps) != 0 {
		t.Errorf("expected no laps, got %d", len(laps))
	}
}

func TestStartTransitions(t *testing.T) {
	sw := newTestStopwatch(t)

	if err := sw.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !sw.Running() {
		t.Error("stopwatch should be running after Start")
	}
	if err := sw.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start: got %v, want ErrAlreadyRunning", err)
	}
	// Failed Start must not disturb state.
	if !sw.Running() {
		t.Error("failed Start changed state")
	}
}

func TestLapAppendsDisjointIntervals(t *testing.T) {
	sw := newTestStopwatch(t)

	if err := sw.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := sw.Lap(); err != nil {
		t.Fatalf("Lap failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := sw.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	laps := sw.LapTimes()
	if len(laps) != 2 {
		t.Fatalf("expected 2 laps, got %d", len(laps))
	}
	if laps[0] < 10*time.Millisecond {
		t.Errorf("first lap %v shorter than sleep of 10ms", laps[0])
	}
	if laps[1] < 5*time.Millisecond {
		t.Errorf("second lap %v shorter than sleep of 5ms", laps[1])
	}
	// Laps measure disjoint intervals: the second lap must not include the
	// first interval.
	if laps[1] >= laps[0]+10*time.Millisecond {
		t.Errorf("second lap %v looks cumulative (first was %v)", laps[1], laps[0])
	}
	if sw.Running() {
		t.Error("stopwatch should be idle after Stop")
	}
}

func TestStopRecordsFinalLap(t *testing.T) {
	sw := newTestStopwatch(t)

	if err := sw.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sw.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	laps := sw.LapTimes()
	if len(laps) != 1 {
		t.Fatalf("expected 1 lap after Start+Stop, got %d", len(laps))
	}
	if laps[0] < 0 {
		t.Errorf("negative lap duration %v", laps[0])
	}
	if err := sw.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop on idle stopwatch: got %v, want ErrNotRunning", err)
	}
}

func TestResetFromAnyState(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*Stopwatch)
	}{
		{"idle", func(sw *Stopwatch) {}},
		{"running", func(sw *Stopwatch) {
			sw.Start()
		}},
		{"with laps", func(sw *Stopwatch) {
			sw.Start()
			sw.Lap()
			sw.Lap()
		}},
		{"stopped with laps", func(sw *Stopwatch) {
			sw.Start()
			sw.Lap()
			sw.Stop()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw := newTestStopwatch(t)
			tt.prepare(sw)

			sw.Reset()

			if sw.Running() {
				t.Error("stopwatch should be idle after Reset")
			}
			if laps := sw.LapTimes(); len(laps) != 0 {
				t.Errorf("expected no laps after Reset, got %d", len(laps))
			}
			// Must be restartable after Reset.
			if err := sw.Start(); err != nil {
				t.Errorf("Start after Reset failed: %v", err)
			}
		})
	}
}

func TestLapTimesReturnsSnapshot(t *testing.T) {
	sw := newTestStopwatch(t)

	sw.Start()
	sw.Lap()
	sw.Lap()

	first := sw.LapTimes()
	if len(first) != 2 {
		t.Fatalf("expected 2 laps, got %d", len(first))
	}

	// Mutating the returned slice must not affect internal state.
	first[0] = -time.Hour
	again := sw.LapTimes()
	if again[0] == -time.Hour {
		t.Error("mutating a snapshot leaked into internal state")
	}

	// Later operations must not retroactively change an earlier snapshot.
	sw.Lap()
	if len(first) != 2 {
		t.Errorf("earlier snapshot grew to %d entries", len(first))
	}
	sw.Reset()
	if len(again) != 2 {
		t.Errorf("Reset emptied a previously returned snapshot")
	}
}

func TestEqualityByID(t *testing.T) {
	ra, rb := NewRegistry(), NewRegistry()
	a1, _ := ra.Create("a")
	a2, _ := rb.Create("a")
	b, _ := rb.Create("b")

	if !a1.Equal(a2) {
		t.Error("stopwatches with equal ids must be equal")
	}
	if a1.Equal(b) {
		t.Error("stopwatches with different ids must not be equal")
	}
	if a1.Equal(nil) {
		t.Error("stopwatch must not equal nil")
	}
}

func TestStringIncludesIDAndLaps(t *testing.T) {
	sw := newTestStopwatch(t)
	if got := sw.String(); got != "stopwatch test" {
		t.Errorf("String() = %q, want %q", got, "stopwatch test")
	}
	sw.Start()
	sw.Lap()
	if got := sw.String(); len(got) <= len("stopwatch test") {
		t.Errorf("String() after a lap should include the lap, got %q", got)
	}
}

func TestConcurrentStopExactlyOneSucceeds(t *testing.T) {
	const workers = 32

	sw := newTestStopwatch(t)
	if err := sw.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failed    int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := sw.Stop()
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrNotRunning):
				failed++
			default:
				t.Errorf("unexpected error from Stop: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful Stop, got %d", succeeded)
	}
	if failed != workers-1 {
		t.Errorf("expected %d ErrNotRunning failures, got %d", workers-1, failed)
	}
	if laps := sw.LapTimes(); len(laps) != 1 {
		t.Errorf("expected exactly 1 recorded lap, got %d", len(laps))
	}
}

func TestConcurrentLapAndStopStayConsistent(t *testing.T) {
	const (
		cycles  = 50
		lappers = 8
	)

	sw := newTestStopwatch(t)
	for cycle := 0; cycle < cycles; cycle++ {
		if err := sw.Start(); err != nil {
			t.Fatalf("Start failed on cycle %d: %v", cycle, err)
		}

		var wg sync.WaitGroup
		for i := 0; i < lappers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// Racing Lap against Stop: either outcome is legal, the
				// state must simply stay consistent.
				sw.Lap()
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			sw.Stop()
		}()
		wg.Wait()

		if sw.Running() {
			// Stop lost every race; settle the state for the next cycle.
			if err := sw.Stop(); err != nil {
				t.Fatalf("final Stop failed on cycle %d: %v", cycle, err)
			}
		}
		for _, lap := range sw.LapTimes() {
			if lap < 0 {
				t.Fatalf("negative lap duration %v on cycle %d", lap, cycle)
			}
		}
		sw.Reset()
	}
}

func TestEndToEndScenario(t *testing.T) {
	reg := NewRegistry()
	sw, err := reg.Create("race")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := sw.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := sw.Lap(); err != nil {
		t.Fatalf("Lap failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := sw.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	laps := sw.LapTimes()
	if len(laps) != 2 {
		t.Fatalf("expected 2 laps, got %d", len(laps))
	}
	if laps[0] < 10*time.Millisecond {
		t.Errorf("lap 1 = %v, want >= 10ms", laps[0])
	}
	if laps[1] < 5*time.Millisecond {
		t.Errorf("lap 2 = %v, want >= 5ms", laps[1])
	}
	if sw.Running() {
		t.Error("stopwatch should be idle at end of scenario")
	}
}
