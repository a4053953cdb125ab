package icc

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token-bucket pacing gate shared by every request a Client
// issues during one run. A token accrues every period, up to burst. Wait
// blocks until a token is available and debits it.
//
// The zero value is not usable; construct with NewLimiter. Clock access goes
// through the now/sleep fields so tests can drive time without sleeping.
type Limiter struct {
	mu        sync.Mutex
	period    time.Duration
	burst     int
	tokens    int
	currentTo time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLimiter returns a limiter that accrues one token per period up to
// burst. The bucket starts empty, so the first request waits up to one
// full period.
func NewLimiter(period time.Duration, burst int) *Limiter {
	if period <= 0 {
		period = time.Second
	}
	if burst < 1 {
		burst = 1
	}
	l := &Limiter{
		period: period,
		burst:  burst,
		now:    time.Now,
		sleep:  sleepContext,
	}
	l.currentTo = l.now()
	return l
}

// Wait blocks until a token is available, then takes it. It returns early
// with the context's error if ctx is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// True up the token count for whole periods elapsed since the
		// last accounting point, keeping the partial remainder.
		now := l.now()
		elapsed := now.Sub(l.currentTo)
		whole := int(elapsed / l.period)
		remainder := elapsed % l.period

		l.tokens += whole
		if l.tokens > l.burst {
			l.tokens = l.burst
		}
		l.currentTo = now.Add(-remainder)

		if l.tokens > 0 {
			l.tokens--
			return nil
		}

		// Wait out the rest of the current period and account again.
		if err := l.sleep(ctx, l.period-remainder); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
