// Package poll waits for a condition with a bounded number of checks.
package poll

import (
	"context"
	"errors"
	"time"
)

var ErrExhausted = errors.New("condition not met within poll bound")

// Bound limits how long Until keeps checking. The total wait is at most
// (Attempts-1) * Interval plus the time spent in the probe itself.
type Bound struct {
	Interval time.Duration
	Attempts int
}

// Max returns the longest time Until can sleep under this bound.
func (b Bound) Max() time.Duration {
	if b.Attempts <= 1 {
		return 0
	}
	return time.Duration(b.Attempts-1) * b.Interval
}

// Until calls probe until it reports done, returns an error, the attempts run
// out (ErrExhausted) or ctx ends (ctx.Err()). The first check happens
// immediately.
func Until[T any](ctx context.Context, b Bound, probe func() (T, bool, error)) (T, error) {
	attempts := b.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var zero T
	for attempt := 1; ; attempt++ {
		v, done, err := probe()
		if err != nil {
			return zero, err
		}
		if done {
			return v, nil
		}
		if attempt >= attempts {
			return zero, ErrExhausted
		}
		if !sleep(ctx, b.Interval) {
			return zero, ctx.Err()
		}
	}
}

// sleep waits for delay or exits early if ctx is canceled.
func sleep(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
