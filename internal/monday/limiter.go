package monday

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces calls to the board API. A nil Limiter never waits.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter allows reqPerSec sustained calls; zero or less means unlimited.
func NewLimiter(reqPerSec float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	r := rate.Limit(reqPerSec)
	if reqPerSec <= 0 {
		r = rate.Inf
	}
	return &Limiter{lim: rate.NewLimiter(r, burst)}
}

func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.lim.Wait(ctx)
}
