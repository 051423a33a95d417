package job

import (
	"sort"
	"time"
)

// View is a read-only projection of a registry entry: identity,
// schedule, status, last/next run data, counters, retry state, and the
// most recent execution records in chronological order.
type View struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Schedule     string        `json:"schedule"`
	Timezone     string        `json:"timezone,omitempty"`
	Status       Status        `json:"status"`
	LastRunAt    time.Time     `json:"last_run_at"`
	NextRunAt    time.Time     `json:"next_run_at"`
	LastDuration time.Duration `json:"last_duration"`
	LastResult   any           `json:"last_result,omitempty"`
	LastError    string        `json:"last_error,omitempty"`
	RunCount     int           `json:"run_count"`
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	Retry        *RetryState   `json:"retry,omitempty"`
	Recent       []Execution   `json:"recent"`
}

// View returns the current projection of one job.
func (r *Registry) View(jobID string) (View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[jobID]
	if !ok {
		return View{}, false
	}
	return e.view(), true
}

// List returns projections of all registered jobs ordered by id.
func (r *Registry) List() []View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]View, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.view())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// view builds the projection. The caller holds the registry lock.
func (e *Entry) view() View {
	v := View{
		ID:           e.ID,
		Name:         e.Definition.Name,
		Description:  e.Definition.Description,
		Schedule:     e.Schedule,
		Timezone:     e.Options.Timezone,
		Status:       e.Status,
		LastRunAt:    e.LastRunAt,
		NextRunAt:    e.NextRunAt,
		LastDuration: e.LastDuration,
		LastResult:   e.LastResult,
		LastError:    e.LastError,
		RunCount:     e.RunCount,
		SuccessCount: e.SuccessCount,
		FailureCount: e.FailureCount,
		Recent:       e.history.last(RecentHistory),
	}
	if e.Retry != nil {
		retry := *e.Retry
		v.Retry = &retry
	}
	return v
}
