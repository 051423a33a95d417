package chime

import (
	"errors"

	"github.com/xraph/chime/job"
	"github.com/xraph/chime/trigger"
)

var (
	// Registration errors.
	ErrEmptyJobID = errors.New("chime: empty job id")
	ErrNilHandler = errors.New("chime: nil job handler")

	// Lifecycle errors.
	ErrNotInitialized = errors.New("chime: scheduler not initialized")
)

// Subsystem sentinels re-exported at the root so callers matching with
// errors.Is rarely need the subpackages.
var (
	ErrInvalidSchedule = trigger.ErrInvalidSpec
	ErrJobNotFound     = job.ErrNotFound
	ErrJobRunning      = job.ErrRunning
	ErrJobPaused       = job.ErrPaused
)
