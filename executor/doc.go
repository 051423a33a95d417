// Package executor drives execution sequences: the initial attempt plus
// any retries for one fire of a job.
//
// Each attempt runs the job's middleware chain and handler in its own
// goroutine, raced against the attempt's timeout. When the deadline
// passes first the executor stops waiting and records a timeout; the
// handler goroutine is not killed. It keeps running with an expired
// context, and its eventual completion is logged and discarded.
// Handlers that honor ctx.Done() stop early; handlers that do not will
// simply burn a goroutine until they return.
//
// After a failed initial attempt the retry controller sleeps on an
// exponential backoff schedule and re-runs the attempt, up to the job's
// retry budget. All registry bookkeeping (history, counters, retry
// state, the terminal status transition) happens here, as do the
// per-attempt lifecycle hooks.
package executor
