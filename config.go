package chime

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds configuration for the Scheduler. Zero values are
// meaningful: 0 disables the cap, timeout, retries, or rate limit they
// configure. DefaultConfig returns the opinionated defaults.
type Config struct {
	// MaxConcurrentJobs caps how many trigger-fired execution sequences
	// may be in flight at once. Zero means no cap. Manual runs bypass it.
	MaxConcurrentJobs int `validate:"gte=0"`

	// DefaultJobTimeout bounds one attempt of any job that does not set
	// its own timeout. Zero means attempts are never timed out.
	DefaultJobTimeout time.Duration `validate:"gte=0"`

	// DefaultMaxRetries is the retry budget for jobs that do not set
	// their own. Zero disables retries.
	DefaultMaxRetries int `validate:"gte=0"`

	// DefaultRetryDelay is the exponential backoff base for jobs that
	// do not set their own: retry n waits RetryDelay * 2^(n-1).
	DefaultRetryDelay time.Duration `validate:"gte=0"`

	// HealthCheckInterval is how often the stall monitor sweeps running
	// jobs. Zero means one minute.
	HealthCheckInterval time.Duration `validate:"gte=0"`

	// ShutdownGracePeriod is how long a graceful Shutdown waits for
	// in-flight sequences to finish before proceeding anyway.
	ShutdownGracePeriod time.Duration `validate:"gte=0"`

	// AutoStart makes Initialize start the trigger engine immediately.
	// When false, registered jobs do not fire until Start is called.
	AutoStart bool

	// FireRate limits trigger fires per second across all jobs. Zero
	// means unlimited. FireBurst is the bucket size; zero means 1.
	FireRate  float64 `validate:"gte=0"`
	FireBurst int     `validate:"gte=0"`

	// Timezone is the IANA zone cron expressions are evaluated in when
	// a job does not set its own. Empty means the local zone.
	Timezone string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentJobs:   10,
		DefaultJobTimeout:   30 * time.Second,
		DefaultMaxRetries:   3,
		DefaultRetryDelay:   1 * time.Second,
		HealthCheckInterval: 1 * time.Minute,
		ShutdownGracePeriod: 30 * time.Second,
		AutoStart:           true,
	}
}

var validate = validator.New()

// Validate checks the configuration for impossible values.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("chime: invalid config: %w", err)
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("chime: invalid config timezone %q: %w", c.Timezone, err)
		}
	}
	return nil
}
