package eyaml

import (
	"context"

	"golang.org/x/time/rate"
)

// throttle spaces out eyaml invocations. A rate of zero or less disables it.
type throttle struct {
	limiter *rate.Limiter
}

func newThrottle(perSecond float64) *throttle {
	if perSecond <= 0 {
		return &throttle{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	// A burst of one lets the first invocation through immediately.
	return &throttle{limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

func (t *throttle) wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// perSecond reports the configured rate, 0 meaning unlimited.
func (t *throttle) perSecond() float64 {
	limit := t.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}
