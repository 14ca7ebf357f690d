package stream

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultInitialDelay = 1000 * time.Millisecond
	DefaultMaxDelay     = 30000 * time.Millisecond
	DefaultMultiplier   = 1.5
)

// Backoff produces reconnect delays. Each Next grows the delay by the
// multiplier up to the ceiling; Reset returns it to the floor. There is no
// jitter and no retry limit.
type Backoff struct {
	exp *backoff.ExponentialBackOff
}

// NewBackoff returns a Backoff starting at initial and capped at max.
// Non-positive arguments select the defaults.
func NewBackoff(initial, max time.Duration, multiplier float64) *Backoff {
	if initial <= 0 {
		initial = DefaultInitialDelay
	}
	if max <= 0 {
		max = DefaultMaxDelay
	}
	if max < initial {
		max = initial
	}
	if multiplier < 1 {
		multiplier = DefaultMultiplier
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = initial
	exp.MaxInterval = max
	exp.Multiplier = multiplier
	exp.RandomizationFactor = 0
	exp.Reset()
	return &Backoff{exp: exp}
}

// DefaultBackoff returns the 1s ×1.5 policy capped at 30s.
func DefaultBackoff() *Backoff {
	return NewBackoff(DefaultInitialDelay, DefaultMaxDelay, DefaultMultiplier)
}

// Next returns the delay before the next attempt and advances the policy.
func (b *Backoff) Next() time.Duration {
	d := b.exp.NextBackOff()
	if d > b.exp.MaxInterval {
		d = b.exp.MaxInterval
	}
	return d
}

// Reset returns the policy to its initial delay.
func (b *Backoff) Reset() {
	b.exp.Reset()
}
