// Package stopwatch provides thread-safe named stopwatches and a registry
// that creates them under unique identifiers.
//
// A Stopwatch records lap durations: each Lap measures the interval since
// the previous Lap (or Start), not the cumulative time since Start. All
// operations are safe for concurrent use; each check-then-mutate sequence
// runs as a single critical section.
package stopwatch

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Stopwatch is a single named stopwatch with Idle/Running state and a list
// of recorded lap durations. The zero value is not usable; stopwatches are
// created through a Registry.
type Stopwatch struct {
	id string

	mu      sync.Mutex
	running bool
	started time.Time // monotonic origin of the current interval, valid while running
	laps    []time.Duration
}

func newStopwatch(id string) *Stopwatch {
	return &Stopwatch{id: id}
}

// ID returns the immutable identifier of the stopwatch.
func (s *Stopwatch) ID() string {
	return s.id
}

// Start transitions the stopwatch from Idle to Running and records the
// current monotonic time as the origin of the first interval. It returns
// ErrAlreadyRunning, leaving state unchanged, if the stopwatch is Running.
func (s *Stopwatch) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("stopwatch %q: %w", s.id, ErrAlreadyRunning)
	}
	s.started = time.Now()
	s.running = true
	return nil
}

// Lap records the duration elapsed since the previous Lap (or Start) and
// resets the interval origin to now, so successive laps measure disjoint
// intervals. It returns ErrNotRunning if the stopwatch is Idle.
func (s *Stopwatch) Lap() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return fmt.Errorf("stopwatch %q: %w", s.id, ErrNotRunning)
	}
	now := time.Now()
	s.laps = append(s.laps, now.Sub(s.started))
	s.started = now
	return nil
}

// Stop records the duration elapsed since the previous Lap (or Start) as
// the final interval and returns the stopwatch to Idle. It returns
// ErrNotRunning if the stopwatch is Idle.
func (s *Stopwatch) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return fmt.Errorf("stopwatch %q: %w", s.id, ErrNotRunning)
	}
	s.laps = append(s.laps, time.Since(s.started))
	s.running = false
	return nil
}

// Reset unconditionally returns the stopwatch to Idle and clears all
// recorded laps. It is valid in any state and never fails.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.laps = nil
}

// Running reports whether the stopwatch is currently Running.
func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LapTimes returns an independent snapshot of the recorded lap durations in
// recording order. Mutating the returned slice does not affect the
// stopwatch, and later operations do not affect previously returned
// snapshots.
func (s *Stopwatch) LapTimes() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]time.Duration, len(s.laps))
	copy(out, s.laps)
	return out
}

// Equal reports whether two stopwatches have the same identifier. Identity
// is defined solely by ID.
func (s *Stopwatch) Equal(other *Stopwatch) bool {
	return other != nil && s.id == other.id
}

// String renders the identifier followed by the recorded laps, one per line.
func (s *Stopwatch) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stopwatch %s", s.id)
	for _, lap := range s.LapTimes() {
		fmt.Fprintf(&b, "\n  %s", lap)
	}
	return b.String()
}
