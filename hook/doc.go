// Package hook defines the extension system for Chime.
//
// Extensions are notified of scheduler lifecycle events and can react to
// them — recording metrics, emitting webhooks, writing audit logs, etc.
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about. Delivery is synchronous and in-process;
// hook errors are logged, never propagated.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	// Opt in to specific hooks by implementing their interfaces.
//	func (e *MyExtension) OnJobCompleted(ctx context.Context, exec *job.Execution, result any) error {
//	    log.Printf("job %s completed in %s", exec.JobID, exec.Duration)
//	    return nil
//	}
//
// # Job Lifecycle Hooks
//
//   - [JobScheduled] — a job was registered with a valid schedule
//   - [JobStarted] — an execution sequence began
//   - [JobCompleted] — the initial attempt finished successfully
//   - [JobFailed] — the initial attempt failed (retries may follow)
//   - [RetrySucceeded] — a retry attempt recovered the sequence
//   - [RetryFailed] — a retry attempt failed
//   - [JobStalled] — a running job exceeded its advisory stall deadline
//
// # Scheduler Lifecycle Hooks
//
//   - [SchedulerInitialized] — the scheduler finished initializing
//   - [SchedulerPaused] — all jobs were paused
//   - [SchedulerResumed] — all jobs were resumed
//   - [Healthcheck] — the stall monitor completed a sweep
//   - [SchedulerShutdown] — the scheduler is shutting down
package hook
