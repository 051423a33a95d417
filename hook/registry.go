package hook

import (
	"context"
	"log/slog"

	"github.com/xraph/chime/job"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type jobScheduledEntry struct {
	name string
	hook JobScheduled
}

type jobStartedEntry struct {
	name string
	hook JobStarted
}

type jobCompletedEntry struct {
	name string
	hook JobCompleted
}

type jobFailedEntry struct {
	name string
	hook JobFailed
}

type retrySucceededEntry struct {
	name string
	hook RetrySucceeded
}

type retryFailedEntry struct {
	name string
	hook RetryFailed
}

type jobStalledEntry struct {
	name string
	hook JobStalled
}

type initializedEntry struct {
	name string
	hook SchedulerInitialized
}

type pausedEntry struct {
	name string
	hook SchedulerPaused
}

type resumedEntry struct {
	name string
	hook SchedulerResumed
}

type healthcheckEntry struct {
	name string
	hook Healthcheck
}

type shutdownEntry struct {
	name string
	hook SchedulerShutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	jobScheduled   []jobScheduledEntry
	jobStarted     []jobStartedEntry
	jobCompleted   []jobCompletedEntry
	jobFailed      []jobFailedEntry
	retrySucceeded []retrySucceededEntry
	retryFailed    []retryFailedEntry
	jobStalled     []jobStalledEntry
	initialized    []initializedEntry
	paused         []pausedEntry
	resumed        []resumedEntry
	healthcheck    []healthcheckEntry
	shutdown       []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(JobScheduled); ok {
		r.jobScheduled = append(r.jobScheduled, jobScheduledEntry{name, h})
	}
	if h, ok := e.(JobStarted); ok {
		r.jobStarted = append(r.jobStarted, jobStartedEntry{name, h})
	}
	if h, ok := e.(JobCompleted); ok {
		r.jobCompleted = append(r.jobCompleted, jobCompletedEntry{name, h})
	}
	if h, ok := e.(JobFailed); ok {
		r.jobFailed = append(r.jobFailed, jobFailedEntry{name, h})
	}
	if h, ok := e.(RetrySucceeded); ok {
		r.retrySucceeded = append(r.retrySucceeded, retrySucceededEntry{name, h})
	}
	if h, ok := e.(RetryFailed); ok {
		r.retryFailed = append(r.retryFailed, retryFailedEntry{name, h})
	}
	if h, ok := e.(JobStalled); ok {
		r.jobStalled = append(r.jobStalled, jobStalledEntry{name, h})
	}
	if h, ok := e.(SchedulerInitialized); ok {
		r.initialized = append(r.initialized, initializedEntry{name, h})
	}
	if h, ok := e.(SchedulerPaused); ok {
		r.paused = append(r.paused, pausedEntry{name, h})
	}
	if h, ok := e.(SchedulerResumed); ok {
		r.resumed = append(r.resumed, resumedEntry{name, h})
	}
	if h, ok := e.(Healthcheck); ok {
		r.healthcheck = append(r.healthcheck, healthcheckEntry{name, h})
	}
	if h, ok := e.(SchedulerShutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Job event emitters
// ──────────────────────────────────────────────────

// EmitJobScheduled notifies all extensions that implement JobScheduled.
func (r *Registry) EmitJobScheduled(ctx context.Context, view job.View) {
	for _, e := range r.jobScheduled {
		if err := e.hook.OnJobScheduled(ctx, view); err != nil {
			r.logHookError("OnJobScheduled", e.name, err)
		}
	}
}

// EmitJobStarted notifies all extensions that implement JobStarted.
func (r *Registry) EmitJobStarted(ctx context.Context, exec *job.Execution) {
	for _, e := range r.jobStarted {
		if err := e.hook.OnJobStarted(ctx, exec); err != nil {
			r.logHookError("OnJobStarted", e.name, err)
		}
	}
}

// EmitJobCompleted notifies all extensions that implement JobCompleted.
func (r *Registry) EmitJobCompleted(ctx context.Context, exec *job.Execution, result any) {
	for _, e := range r.jobCompleted {
		if err := e.hook.OnJobCompleted(ctx, exec, result); err != nil {
			r.logHookError("OnJobCompleted", e.name, err)
		}
	}
}

// EmitJobFailed notifies all extensions that implement JobFailed.
func (r *Registry) EmitJobFailed(ctx context.Context, exec *job.Execution, jobErr error) {
	for _, e := range r.jobFailed {
		if err := e.hook.OnJobFailed(ctx, exec, jobErr); err != nil {
			r.logHookError("OnJobFailed", e.name, err)
		}
	}
}

// EmitRetrySucceeded notifies all extensions that implement RetrySucceeded.
func (r *Registry) EmitRetrySucceeded(ctx context.Context, exec *job.Execution, result any) {
	for _, e := range r.retrySucceeded {
		if err := e.hook.OnRetrySucceeded(ctx, exec, result); err != nil {
			r.logHookError("OnRetrySucceeded", e.name, err)
		}
	}
}

// EmitRetryFailed notifies all extensions that implement RetryFailed.
func (r *Registry) EmitRetryFailed(ctx context.Context, exec *job.Execution, jobErr error) {
	for _, e := range r.retryFailed {
		if err := e.hook.OnRetryFailed(ctx, exec, jobErr); err != nil {
			r.logHookError("OnRetryFailed", e.name, err)
		}
	}
}

// EmitJobStalled notifies all extensions that implement JobStalled.
func (r *Registry) EmitJobStalled(ctx context.Context, stall Stall) {
	for _, e := range r.jobStalled {
		if err := e.hook.OnJobStalled(ctx, stall); err != nil {
			r.logHookError("OnJobStalled", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Scheduler event emitters
// ──────────────────────────────────────────────────

// EmitSchedulerInitialized notifies all extensions that implement
// SchedulerInitialized.
func (r *Registry) EmitSchedulerInitialized(ctx context.Context, jobs int) {
	for _, e := range r.initialized {
		if err := e.hook.OnSchedulerInitialized(ctx, jobs); err != nil {
			r.logHookError("OnSchedulerInitialized", e.name, err)
		}
	}
}

// EmitSchedulerPaused notifies all extensions that implement SchedulerPaused.
func (r *Registry) EmitSchedulerPaused(ctx context.Context) {
	for _, e := range r.paused {
		if err := e.hook.OnSchedulerPaused(ctx); err != nil {
			r.logHookError("OnSchedulerPaused", e.name, err)
		}
	}
}

// EmitSchedulerResumed notifies all extensions that implement SchedulerResumed.
func (r *Registry) EmitSchedulerResumed(ctx context.Context) {
	for _, e := range r.resumed {
		if err := e.hook.OnSchedulerResumed(ctx); err != nil {
			r.logHookError("OnSchedulerResumed", e.name, err)
		}
	}
}

// EmitHealthcheck notifies all extensions that implement Healthcheck.
func (r *Registry) EmitHealthcheck(ctx context.Context, health Health) {
	for _, e := range r.healthcheck {
		if err := e.hook.OnHealthcheck(ctx, health); err != nil {
			r.logHookError("OnHealthcheck", e.name, err)
		}
	}
}

// EmitSchedulerShutdown notifies all extensions that implement
// SchedulerShutdown.
func (r *Registry) EmitSchedulerShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnSchedulerShutdown(ctx); err != nil {
			r.logHookError("OnSchedulerShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hookName, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hookName),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
