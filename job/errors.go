package job

import "errors"

var (
	// ErrNotFound is returned when no entry exists for the given job id.
	ErrNotFound = errors.New("chime: job not found")

	// ErrRunning is returned when a run is requested while an execution
	// sequence is already in flight for the job.
	ErrRunning = errors.New("chime: job already running")

	// ErrPaused is returned when a run is requested for a paused job.
	ErrPaused = errors.New("chime: job paused")

	// ErrInvalidState is returned when a bookkeeping call arrives in a
	// state it cannot apply to, e.g. ending a run that never began.
	// Callers log it and move on; it never crashes the scheduler.
	ErrInvalidState = errors.New("chime: invalid state transition")
)
