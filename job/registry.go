package job

import (
	"sync"
	"time"
)

// Entry is the registry's runtime record for one registered job. Entries
// live inside the Registry and are mutated only under its lock; state
// leaves the registry as copies, never as live references.
type Entry struct {
	ID         string
	Definition Definition
	Options    Options

	// Schedule is the cron expression as registered.
	Schedule string

	// TriggerID is the trigger engine's handle for this job's entry.
	TriggerID int

	Status       Status
	LastRunAt    time.Time
	NextRunAt    time.Time
	LastDuration time.Duration
	LastResult   any
	LastError    string

	RunCount     int
	SuccessCount int
	FailureCount int

	Retry *RetryState

	// running guards against overlapping execution sequences. It is
	// distinct from Status: a pause or resume landing mid-run changes
	// Status without releasing the guard.
	running bool

	history *ring
}

// NewEntry creates an idle entry with a private copy of the definition.
func NewEntry(jobID string, def Definition, opts Options) *Entry {
	return &Entry{
		ID:         jobID,
		Definition: def.clone(),
		Options:    opts,
		Status:     StatusIdle,
		history:    newRing(MaxHistory),
	}
}

// Run is the execution grant handed out by a successful BeginRun. It
// carries copies of everything the executor needs to drive the sequence
// without touching the live entry.
type Run struct {
	JobID      string
	Name       string
	Handler    HandlerFunc
	Params     Params
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Manual     bool
	StartedAt  time.Time
}

// Registry owns all runtime job state. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Put stores an entry under its id, displacing any existing entry with
// the same id. The displaced entry is returned so the caller can tear
// down its trigger; it is exclusively owned by the caller afterwards.
func (r *Registry) Put(e *Entry) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.entries[e.ID]
	if e.history == nil {
		e.history = newRing(MaxHistory)
	}
	r.entries[e.ID] = e
	return prev
}

// Remove deletes the entry for jobID and returns it. In-flight
// bookkeeping for a removed entry fails with ErrNotFound and is
// discarded by the executor.
func (r *Registry) Remove(jobID string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[jobID]
	if !ok {
		return nil, false
	}
	delete(r.entries, jobID)
	return e, true
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// SetTrigger records the trigger engine handle and the initial next-fire
// time for a registered job.
func (r *Registry) SetTrigger(jobID string, triggerID int, next time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[jobID]
	if !ok {
		return ErrNotFound
	}
	e.TriggerID = triggerID
	e.NextRunAt = next
	return nil
}

// TriggerHandle returns the trigger engine handle recorded for jobID.
func (r *Registry) TriggerHandle(jobID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[jobID]
	if !ok {
		return 0, ErrNotFound
	}
	return e.TriggerID, nil
}

// SetNextRun updates the next scheduled fire time after a run completes.
func (r *Registry) SetNextRun(jobID string, next time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[jobID]
	if !ok {
		return ErrNotFound
	}
	e.NextRunAt = next
	return nil
}

// BeginRun is the compare-and-set entry point for every execution
// sequence, trigger-fired or manual. It succeeds only when no sequence
// is in flight and the job is not paused; a Failed status does not block
// the next run. On success the entry is Running with LastRunAt = now.
func (r *Registry) BeginRun(jobID string, manual bool, now time.Time) (Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[jobID]
	if !ok {
		return Run{}, ErrNotFound
	}
	if e.running {
		return Run{}, ErrRunning
	}
	if e.Status == StatusPaused {
		return Run{}, ErrPaused
	}

	e.running = true
	e.Status = StatusRunning
	e.LastRunAt = now

	return Run{
		JobID:      e.ID,
		Name:       e.Definition.Name,
		Handler:    e.Definition.Handler,
		Params:     Params(nil).Merge(e.Definition.DefaultParams),
		Timeout:    e.Options.Timeout,
		MaxRetries: e.Options.MaxRetries,
		RetryDelay: e.Options.RetryDelay,
		Manual:     manual,
		StartedAt:  now,
	}, nil
}

// RecordAttempt appends one finished attempt to the job's history and
// updates last-outcome fields. RunCount counts every physical attempt.
// bumpSuccess and bumpFailure mark the logical outcome of the sequence:
// the terminal success, or the initial triggering failure. Intermediate
// retry failures bump neither.
func (r *Registry) RecordAttempt(jobID string, exec Execution, result any, bumpSuccess, bumpFailure bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[jobID]
	if !ok {
		return ErrNotFound
	}

	e.history.push(exec)
	e.RunCount++
	e.LastDuration = exec.Duration
	if exec.Success {
		e.LastResult = result
		e.LastError = ""
	} else {
		e.LastError = exec.Error
	}
	if bumpSuccess {
		e.SuccessCount++
	}
	if bumpFailure {
		e.FailureCount++
	}
	return nil
}

// SetRetrying records that retry attempt n is in flight for the job.
func (r *Registry) SetRetrying(jobID string, attempt int, lastErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[jobID]
	if !ok {
		return ErrNotFound
	}
	e.Retry = &RetryState{Attempts: attempt, LastError: lastErr}
	return nil
}

// ClearRetry removes the retry state after a terminal outcome.
func (r *Registry) ClearRetry(jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[jobID]
	if !ok {
		return ErrNotFound
	}
	e.Retry = nil
	return nil
}

// EndRun releases the run guard and applies the terminal status: Idle on
// success, Failed on exhausted retries. A pause that landed mid-run
// wins: the entry stays Paused.
func (r *Registry) EndRun(jobID string, success bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[jobID]
	if !ok {
		return ErrNotFound
	}
	if !e.running {
		return ErrInvalidState
	}

	e.running = false
	if e.Status == StatusPaused {
		return nil
	}
	if success {
		e.Status = StatusIdle
	} else {
		e.Status = StatusFailed
	}
	return nil
}

// Pause suspends trigger fires and manual runs for one job. An in-flight
// sequence is not interrupted. Pausing a paused job is a no-op.
func (r *Registry) Pause(jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[jobID]
	if !ok {
		return ErrNotFound
	}
	e.Status = StatusPaused
	return nil
}

// Resume lifts a pause. The entry returns to Running when a sequence is
// still in flight, otherwise to Idle. Resuming a job that is not paused
// is a no-op.
func (r *Registry) Resume(jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[jobID]
	if !ok {
		return ErrNotFound
	}
	if e.Status != StatusPaused {
		return nil
	}
	if e.running {
		e.Status = StatusRunning
	} else {
		e.Status = StatusIdle
	}
	return nil
}

// PauseAll pauses every registered job and reports how many changed.
func (r *Registry) PauseAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for _, e := range r.entries {
		if e.Status != StatusPaused {
			e.Status = StatusPaused
			changed++
		}
	}
	return changed
}

// ResumeAll resumes every paused job and reports how many changed.
func (r *Registry) ResumeAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for _, e := range r.entries {
		if e.Status != StatusPaused {
			continue
		}
		if e.running {
			e.Status = StatusRunning
		} else {
			e.Status = StatusIdle
		}
		changed++
	}
	return changed
}

// Running returns a point-in-time record of every in-flight execution.
func (r *Registry) Running() []RunningJob {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RunningJob, 0)
	for _, e := range r.entries {
		if !e.running {
			continue
		}
		out = append(out, RunningJob{
			ID:        e.ID,
			Name:      e.Definition.Name,
			StartedAt: e.LastRunAt,
			Timeout:   e.Options.Timeout,
		})
	}
	return out
}

// RunningCount returns the number of in-flight execution sequences.
func (r *Registry) RunningCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, e := range r.entries {
		if e.running {
			count++
		}
	}
	return count
}

// History returns a copy of the job's retained execution records in
// chronological order.
func (r *Registry) History(jobID string) ([]Execution, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[jobID]
	if !ok {
		return nil, false
	}
	return e.history.last(e.history.len()), true
}

// Clear removes every entry and returns the removed set so the caller
// can tear down their triggers. Ownership follows Remove semantics.
func (r *Registry) Clear() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.entries = make(map[string]*Entry)
	return out
}
