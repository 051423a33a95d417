// Package job defines the scheduled job entity, its lifecycle state
// machine, and the in-memory registry that owns all runtime job state.
//
// # Job Entity
//
// A job is registered once with an id, a cron expression, a [Definition]
// (handler plus default parameters), and per-job [Options]. The registry
// keeps one [Entry] per id and tracks its full runtime record: lifecycle
// status, last/next run times, outcome counters, retry state, and a
// bounded history of execution attempts.
//
// Lifecycle states:
//
//	idle → running → idle        (success)
//	idle → running → failed      (retries exhausted)
//	failed → running → ...       (a failed job stays eligible for the next fire)
//	any  → paused  → idle        (pause / resume)
//
// Paused is sticky: nothing but Resume leaves it. A pause that lands while
// a run is in flight lets the run finish its bookkeeping but keeps the
// entry paused.
//
// # Defining a Job
//
// Handlers are ordinary Go functions taking a parameter map and returning
// a result:
//
//	def := job.Definition{
//	    Name: "claim-aging-sweep",
//	    Handler: func(ctx context.Context, params job.Params) (any, error) {
//	        return sweepClaims(ctx, params["cutoff_days"].(int))
//	    },
//	    DefaultParams: job.Params{"cutoff_days": 30},
//	}
//
// # Registry
//
// [Registry] is safe for concurrent use. All mutations happen under its
// lock; reads hand out copies ([View], [Execution] slices), never live
// entries. The begin-run transition is a compare-and-set: at most one
// execution sequence per entry is in flight at any time, and overlapping
// fire attempts are rejected rather than queued.
package job
