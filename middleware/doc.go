// Package middleware provides composable middleware for job execution.
//
// A [Middleware] is a function that wraps an execution attempt. Middleware
// are composed into a chain using [Chain] and applied around every attempt,
// initial and retry alike. They are applied right-to-left: the first
// middleware in the slice is the outermost wrapper.
//
//	// logging → recover → handler
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging] — logs attempt start, duration, and outcome
//   - [Recover] — catches panics and converts them to errors
//   - [Tracing] — wraps the attempt in an OpenTelemetry span
//   - [Metrics] — records per-attempt duration and outcome counters
//
// # Writing Custom Middleware
//
//	func MyMiddleware() middleware.Middleware {
//	    return func(ctx context.Context, exec *job.Execution, next middleware.Handler) error {
//	        // pre-processing
//	        err := next(ctx)
//	        // post-processing
//	        return err
//	    }
//	}
//
// Middleware MUST call next to continue the chain unless intentionally
// short-circuiting (e.g., circuit breaker, rate limiting).
package middleware
