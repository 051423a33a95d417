// Package backoff provides pluggable delay strategies for job retry
// sequences. All strategies are safe for concurrent use (they are stateless).
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Strategy computes the delay before a retry attempt.
type Strategy interface {
	// Delay returns how long to wait before retry attempt n (1-indexed).
	// Attempt 1 is the first retry after the initial failure.
	Delay(attempt int) time.Duration
}

// ──────────────────────────────────────────────────
// Constant
// ──────────────────────────────────────────────────

// Constant waits the same duration before every retry.
type Constant time.Duration

// NewConstant creates a constant backoff strategy.
func NewConstant(interval time.Duration) Constant {
	return Constant(interval)
}

// Delay returns the fixed interval for every attempt.
func (c Constant) Delay(_ int) time.Duration {
	return time.Duration(c)
}

// ──────────────────────────────────────────────────
// Linear
// ──────────────────────────────────────────────────

// Linear grows the delay by a fixed step each attempt:
// Step, 2*Step, 3*Step, ... capped at Max when Max is set.
type Linear struct {
	Step time.Duration
	Max  time.Duration
}

// NewLinear creates a linear backoff strategy.
func NewLinear(step, maxDelay time.Duration) Linear {
	return Linear{Step: step, Max: maxDelay}
}

// Delay returns Step * attempt, capped at Max when Max is set.
func (l Linear) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := l.Step * time.Duration(attempt)
	if l.Max > 0 && d > l.Max {
		return l.Max
	}
	return d
}

// ──────────────────────────────────────────────────
// Exponential
// ──────────────────────────────────────────────────

// Exponential doubles the delay each attempt:
// Initial, 2*Initial, 4*Initial, ... capped at Max when Max is set.
// A Max of zero leaves the doubling uncapped.
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
}

// NewExponential creates an exponential backoff strategy.
func NewExponential(initial, maxDelay time.Duration) Exponential {
	return Exponential{Initial: initial, Max: maxDelay}
}

// Delay returns Initial * 2^(attempt-1), capped at Max when Max is set.
// Doubling saturates instead of overflowing on absurd attempt counts.
func (e Exponential) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := e.Initial
	for i := 1; i < attempt; i++ {
		if d > math.MaxInt64/2 {
			d = math.MaxInt64 - 1
			break
		}
		d *= 2
	}
	if e.Max > 0 && d > e.Max {
		return e.Max
	}
	return d
}

// ──────────────────────────────────────────────────
// ExponentialWithJitter (full jitter)
// ──────────────────────────────────────────────────

// ExponentialWithJitter draws a uniform delay from [0, b] where b is the
// exponential delay for the attempt. Spreading retries across the window
// keeps simultaneous failures from retrying in lockstep.
type ExponentialWithJitter struct {
	Exponential
}

// NewExponentialWithJitter creates an exponential backoff with full jitter.
func NewExponentialWithJitter(initial, maxDelay time.Duration) ExponentialWithJitter {
	return ExponentialWithJitter{Exponential{Initial: initial, Max: maxDelay}}
}

// Delay returns a random duration in [0, Exponential.Delay(attempt)].
func (e ExponentialWithJitter) Delay(attempt int) time.Duration {
	bound := e.Exponential.Delay(attempt)
	if bound <= 0 {
		return 0
	}
	if bound < math.MaxInt64 {
		bound++ // inclusive upper bound
	}
	return rand.N(bound) //nolint:gosec // jitter draws from non-crypto rand
}
