package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	cronlib "github.com/robfig/cron/v3"
)

// ErrInvalidSpec is returned when a cron expression or its timezone
// cannot be parsed.
var ErrInvalidSpec = errors.New("chime: invalid cron spec")

// ID identifies one scheduled entry within the engine.
type ID = cronlib.EntryID

// specParser supports standard 5-field cron and descriptors like "@every 30s".
var specParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseSpec validates a cron expression and returns its schedule. A
// non-empty tz is applied as a CRON_TZ prefix, so wall-clock fields are
// evaluated in that location. The returned schedule computes next-fire
// times independently of the engine, which lets callers report a job's
// first fire time before the engine starts.
func ParseSpec(expr, tz string) (cronlib.Schedule, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidSpec)
	}
	spec := expr
	if tz != "" {
		spec = "CRON_TZ=" + tz + " " + expr
	}
	sched, err := specParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSpec, expr, err)
	}
	return sched, nil
}

// cronLogger adapts cron's logging interface to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	attrs := make([]slog.Attr, 0, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			key, _ := keysAndValues[i].(string)
			attrs = append(attrs, slog.Any(key, keysAndValues[i+1]))
		}
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	attrs := make([]slog.Attr, 0, len(keysAndValues)/2+1)
	attrs = append(attrs, slog.Any("error", err))
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			key, _ := keysAndValues[i].(string)
			attrs = append(attrs, slog.Any(key, keysAndValues[i+1]))
		}
	}
	l.logger.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}

// Engine owns the shared cron runner behind all scheduled jobs.
// Entries may be added and removed while the runner is live.
type Engine struct {
	cron   *cronlib.Cron
	logger *slog.Logger
}

// NewEngine creates an Engine. The runner is idle until Start.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cron: cronlib.New(
			cronlib.WithLogger(cronLogger{logger: logger.With(slog.String("component", "trigger"))}),
		),
		logger: logger,
	}
}

// Start launches the runner in its own goroutine.
func (e *Engine) Start() {
	e.cron.Start()
	e.logger.Info("trigger engine started")
}

// Stop halts scheduling and waits for in-flight fire callbacks to
// return. Callbacks hand job work off asynchronously, so this does not
// wait for running jobs.
func (e *Engine) Stop() {
	ctx := e.cron.Stop()
	<-ctx.Done()
	e.logger.Info("trigger engine stopped")
}

// Schedule adds an entry that invokes cmd on the given schedule and
// returns its handle. The schedule comes from [ParseSpec], which has
// already validated the expression, so Schedule cannot fail.
func (e *Engine) Schedule(sched cronlib.Schedule, cmd func()) ID {
	return e.cron.Schedule(sched, cronlib.FuncJob(cmd))
}

// Remove drops the entry. Unknown handles are a no-op.
func (e *Engine) Remove(id ID) {
	e.cron.Remove(id)
}

// Next returns the entry's next fire time, or the zero time if the
// handle is unknown or the engine has not started yet.
func (e *Engine) Next(id ID) time.Time {
	return e.cron.Entry(id).Next
}
