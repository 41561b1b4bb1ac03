package season

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacer blocks between two season fetches.
type Pacer interface {
	Wait(ctx context.Context) error
}

// RandomPacer waits a uniformly random duration in [Min, Max].
type RandomPacer struct {
	Min time.Duration
	Max time.Duration
}

// DefaultPacer waits between 2 and 5 seconds.
func DefaultPacer() RandomPacer {
	return RandomPacer{Min: 2 * time.Second, Max: 5 * time.Second}
}

// Delay returns the next wait duration.
func (p RandomPacer) Delay() time.Duration {
	if p.Max <= p.Min {
		return p.Min
	}
	return p.Min + rand.N(p.Max-p.Min+1)
}

// Wait sleeps for Delay or until ctx is done.
func (p RandomPacer) Wait(ctx context.Context) error {
	d := p.Delay()
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoPacer never waits.
type NoPacer struct{}

func (NoPacer) Wait(ctx context.Context) error { return ctx.Err() }
