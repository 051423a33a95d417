package job

import "time"

// Options configures per-job execution behavior. The scheduler seeds
// Options from its configured defaults and applies the caller's Option
// setters on top, so Options held by the registry always carry concrete
// effective values.
type Options struct {
	// Timezone is the IANA zone name the cron expression is evaluated
	// in. Empty means the scheduler's default zone.
	Timezone string

	// Timeout is the maximum duration one attempt may run before the
	// scheduler stops waiting for it.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after a failed
	// initial run. Zero disables retries.
	MaxRetries int

	// RetryDelay is the backoff base: retry n waits RetryDelay * 2^(n-1).
	RetryDelay time.Duration
}

// DefaultOptions returns Options with the scheduler's standard defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
	}
}

// Option is a functional option for configuring a job registration.
type Option func(*Options)

// WithTimezone sets the IANA timezone the job's schedule is evaluated in.
func WithTimezone(tz string) Option {
	return func(o *Options) {
		o.Timezone = tz
	}
}

// WithTimeout sets the maximum duration of one execution attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithMaxRetries sets the number of retry attempts after a failed
// initial run. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(o *Options) {
		o.MaxRetries = n
	}
}

// WithRetryDelay sets the exponential backoff base delay.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) {
		o.RetryDelay = d
	}
}
