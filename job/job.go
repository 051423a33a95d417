package job

import (
	"time"

	"github.com/xraph/chime/id"
)

// Status represents the lifecycle state of a registered job.
type Status string

const (
	// StatusIdle means the job is waiting for its next trigger fire.
	StatusIdle Status = "idle"
	// StatusRunning means an execution sequence is currently in flight.
	StatusRunning Status = "running"
	// StatusPaused means trigger fires and manual runs are suspended
	// until the job is resumed.
	StatusPaused Status = "paused"
	// StatusFailed means the last execution sequence exhausted its
	// retries. Failed is informational: the job still fires on its
	// next scheduled trigger.
	StatusFailed Status = "failed"
)

// Execution records one physical handler attempt. Attempt 0 is the
// initial run of a sequence; attempts 1..MaxRetries are its retries.
type Execution struct {
	ID        id.RunID      `json:"id"`
	JobID     string        `json:"job_id"`
	JobName   string        `json:"job_name"`
	Attempt   int           `json:"attempt"`
	Manual    bool          `json:"manual"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// RetryState tracks an in-flight retry sequence. It is present on an
// entry only between the initial failure and the terminal outcome.
type RetryState struct {
	// Attempts is the number of retries performed so far (1-indexed).
	Attempts int `json:"attempts"`
	// LastError is the message of the most recent failed attempt.
	LastError string `json:"last_error"`
}

// RunningJob is a point-in-time record of an in-flight execution,
// used by the stall monitor and the shutdown drain.
type RunningJob struct {
	ID        string
	Name      string
	StartedAt time.Time
	Timeout   time.Duration
}
