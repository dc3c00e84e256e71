// Package resilience guards calls to flaky upstream services.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the position of a circuit breaker.
type State string

const (
	StateClosed   State = "closed"    // calls pass through
	StateOpen     State = "open"      // calls are rejected
	StateHalfOpen State = "half_open" // one trial call is allowed
)

// ErrOpen is returned while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker is open")

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	// Threshold is the number of consecutive failures that opens the breaker.
	// Zero disables the breaker.
	Threshold int
	// Cooldown is how long the breaker stays open before a trial call.
	Cooldown time.Duration
	// Trips reports whether err counts as a failure. Nil counts every error.
	Trips func(err error) bool
}

// Breaker is a consecutive-failure circuit breaker. It is safe for
// concurrent use.
type Breaker struct {
	name string
	cfg  BreakerConfig
	now  func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trial    bool
	rejected int64
}

// NewBreaker creates a closed breaker.
func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	return &Breaker{name: name, cfg: cfg, now: time.Now, state: StateClosed}
}

// WithClock replaces the breaker's time source.
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	b.now = now
	return b
}

// Execute runs fn under b and returns its result.
func Execute[T any](b *Breaker, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.allow(); err != nil {
		return zero, err
	}
	v, err := fn(ctx)
	b.record(err)
	if err != nil {
		return zero, err
	}
	return v, nil
}

func (b *Breaker) allow() error {
	if b.cfg.Threshold <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			b.rejected++
			return ErrOpen
		}
		b.state = StateHalfOpen
		b.trial = true
		return nil
	case StateHalfOpen:
		if b.trial {
			b.rejected++
			return ErrOpen
		}
		b.trial = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	if b.cfg.Threshold <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	failed := err != nil && (b.cfg.Trips == nil || b.cfg.Trips(err))
	if b.state == StateHalfOpen {
		b.trial = false
		if failed {
			b.open()
		} else {
			b.state = StateClosed
			b.failures = 0
		}
		return
	}

	if !failed {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.cfg.Threshold {
		b.open()
	}
}

// open must be called with mu held.
func (b *Breaker) open() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.failures = 0
}

// Stats is a snapshot of a breaker.
type Stats struct {
	Name     string `json:"name"`
	State    State  `json:"state"`
	Failures int    `json:"consecutive_failures"`
	Rejected int64  `json:"rejected"`
}

// Stats returns the current breaker state.
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{Name: b.name, State: b.state, Failures: b.failures, Rejected: b.rejected}
}
