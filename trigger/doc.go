// Package trigger drives scheduled job fires through one shared cron
// runner (github.com/robfig/cron/v3).
//
// Each registered job owns a single entry in the runner. The entry's
// callback is supplied by the scheduler and performs admission and
// state checks before handing the run to the executor, so the runner's
// goroutine is never blocked by job work.
//
// # Expressions
//
// Standard 5-field cron expressions and descriptors are accepted:
//
//	"*/5 * * * *"    every five minutes
//	"30 2 * * *"     02:30 daily
//	"@hourly"        top of every hour
//	"@every 90s"     fixed 90-second interval
//
// # Timezones
//
// [ParseSpec] takes an optional IANA timezone name. When set, wall-clock
// fields are evaluated in that location (a job scheduled for 02:30 in
// America/New_York fires at 02:30 New York time). Interval descriptors
// like "@every" are unaffected by timezones.
//
// The runner's internal logging is routed through slog.
package trigger
