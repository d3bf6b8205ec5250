package stopwatch

import "errors"

// Error kinds surfaced by Registry and Stopwatch operations. Callers branch
// on these with errors.Is rather than by parsing messages.
var (
	// ErrInvalidID is returned by Create when the identifier is empty.
	ErrInvalidID = errors.New("stopwatch id must not be empty")

	// ErrDuplicateID is returned by Create when the identifier is already
	// registered.
	ErrDuplicateID = errors.New("stopwatch id already registered")

	// ErrAlreadyRunning is returned by Start on a running stopwatch.
	ErrAlreadyRunning = errors.New("stopwatch already running")

	// ErrNotRunning is returned by Lap and Stop on an idle stopwatch.
	ErrNotRunning = errors.New("stopwatch not running")
)
