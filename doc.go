// Package chime provides an in-process cron job scheduler for Go
// services: registration with standard cron expressions, per-job
// timeouts, exponential backoff retries, pause and resume, bounded
// execution history, stall detection, and graceful shutdown.
//
// Chime is designed as a library, not a service. Import it, register
// jobs as ordinary Go functions, and initialize.
//
// # Quick Start
//
//	s, err := chime.New(chime.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = s.Register("claim-aging-sweep", "30 2 * * *", job.Definition{
//	    Name: "Claim Aging Sweep",
//	    Handler: func(ctx context.Context, params job.Params) (any, error) {
//	        return sweepAgedClaims(ctx)
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Architecture
//
// The scheduler composes small subsystem packages: trigger (cron
// engine), executor (timeout, retry, and middleware pipeline), gate
// (concurrency and rate admission), monitor (advisory stall sweeps),
// and hook (typed lifecycle extensions). All state is in-memory; a
// restart starts from a clean slate.
//
// A timed-out attempt is abandoned, not killed: the scheduler stops
// waiting and moves on while the handler keeps running until it honors
// context cancellation. Overlap is prevented per job, so a trigger
// firing while the previous sequence is still in flight is skipped.
//
// Execution IDs use TypeID — type-prefixed, K-sortable, UUIDv7-based
// identifiers.
package chime
