// Package gate bounds how many jobs the scheduler runs at once.
//
// The trigger path asks the gate for admission before starting a run.
// Admission combines an active-count cap with an optional token-bucket
// fire-rate limiter (golang.org/x/time/rate). A fire that is refused is
// skipped, not queued; the job runs again at its next scheduled time.
//
//	g := gate.New(10, 0, 0) // at most 10 concurrent runs, no rate limit
//	if g.Acquire() {
//	    defer g.Release()
//	    // run the job
//	}
//
// Manual runs started with ExecuteNow do not pass through the gate.
package gate

import (
	"sync"

	"golang.org/x/time/rate"
)

// Gate admits scheduled job runs up to a concurrency cap and an optional
// sustained fire rate. It is safe for concurrent use.
type Gate struct {
	mu      sync.Mutex
	max     int
	limiter *rate.Limiter
	active  int
}

// New creates a Gate. maxConcurrent caps simultaneous admitted runs; zero
// means no cap. fireRate is the maximum sustained admissions per second;
// zero disables rate limiting. fireBurst is the token-bucket burst size
// and defaults to 1 when fireRate is set but fireBurst is zero.
func New(maxConcurrent int, fireRate float64, fireBurst int) *Gate {
	g := &Gate{max: maxConcurrent}
	if fireRate > 0 {
		burst := fireBurst
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(fireRate), burst)
	}
	return g
}

// Acquire checks the rate limiter and the concurrency cap. If the run is
// allowed to proceed it increments the active counter and returns true.
// The caller MUST call Release when the run completes.
func (g *Gate) Acquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.limiter != nil && !g.limiter.Allow() {
		return false
	}
	if g.max > 0 && g.active >= g.max {
		return false
	}

	g.active++
	return true
}

// Release decrements the active run count.
func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active > 0 {
		g.active--
	}
}

// ActiveCount returns the current number of admitted runs.
func (g *Gate) ActiveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}
