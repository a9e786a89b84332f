package surrealengine

import (
	"math"
	"math/rand"
	"time"
)

// Retryer decides how long to wait before retrying an operation, such as
// re-establishing a live query after its notification channel closed.
type Retryer interface {
	// NextDelay returns the delay before retry number attempt (0-based)
	// and whether to keep retrying.
	NextDelay(attempt int, lastErr error) (time.Duration, bool)

	// Reset clears any retry state after a success.
	Reset()
}

// ExponentialBackoff is a Retryer with exponentially growing delays,
// capped at MaxDelay, with optional jitter.
type ExponentialBackoff struct {
	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the computed delay.
	MaxDelay time.Duration

	// Multiplier grows the delay between attempts.
	Multiplier float64

	// MaxRetries limits the number of attempts. Zero means unlimited.
	MaxRetries int

	// Jitter randomizes the delay to avoid thundering herds.
	Jitter bool

	// JitterFactor is the maximum jitter as a fraction of the delay.
	JitterFactor float64
}

// NewExponentialBackoff returns an ExponentialBackoff with defaults suited
// to recovering live queries: 1s initial delay doubling up to 30s, with
// jitter, retrying until it succeeds.
func NewExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		JitterFactor: 0.3,
	}
}

// NextDelay implements Retryer.
func (b *ExponentialBackoff) NextDelay(attempt int, lastErr error) (time.Duration, bool) {
	if b.MaxRetries > 0 && attempt >= b.MaxRetries {
		return 0, false
	}

	delay := float64(b.InitialDelay) * math.Pow(b.Multiplier, float64(attempt))
	if delay > float64(b.MaxDelay) {
		delay = float64(b.MaxDelay)
	}

	if b.Jitter && b.JitterFactor > 0 {
		//nolint:gosec // jitter is not security-critical
		delay += delay * b.JitterFactor * (2*rand.Float64() - 1)
		if delay < 0 {
			delay = float64(b.InitialDelay)
		}
	}

	return time.Duration(delay), true
}

// Reset implements Retryer.
func (b *ExponentialBackoff) Reset() {}

// FixedDelay is a Retryer that waits the same duration between attempts.
type FixedDelay struct {
	// Delay is the wait between attempts.
	Delay time.Duration

	// MaxRetries limits the number of attempts. Zero means unlimited.
	MaxRetries int
}

// NextDelay implements Retryer.
func (f *FixedDelay) NextDelay(attempt int, lastErr error) (time.Duration, bool) {
	if f.MaxRetries > 0 && attempt >= f.MaxRetries {
		return 0, false
	}
	return f.Delay, true
}

// Reset implements Retryer.
func (f *FixedDelay) Reset() {}
