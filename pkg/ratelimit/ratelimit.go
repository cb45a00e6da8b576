package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRate is the allowed requests per second before any throttle signal.
	DefaultRate = 5.0
	// FloorRate is the rate the limiter clamps to on the first throttle signal.
	FloorRate = 3.0
	// MaxInterval caps how far repeated throttle signals can stretch the
	// inter-request interval.
	MaxInterval = 2 * time.Second
)

// Limiter enforces a minimum interval between outbound requests. Throttle
// signals tighten the pacing for the remainder of the run; the limiter never
// speeds back up within a run.
type Limiter struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	rps      float64
	interval time.Duration
	hits     int
}

// New creates a limiter allowing requestsPerSecond evenly spaced requests.
// Burst is fixed at one so consecutive calls are always at least one interval
// apart.
func New(requestsPerSecond float64) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRate
	}
	return &Limiter{
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		rps:      requestsPerSecond,
		interval: intervalFor(requestsPerSecond),
	}
}

// Wait blocks until the next request is permitted under the current pacing,
// or until ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// OnThrottled records a throttle signal from the remote service and tightens
// the pacing. The first signal clamps the rate to FloorRate; each subsequent
// signal stretches the interval by half again, capped at MaxInterval. The
// resulting interval sequence is monotone non-decreasing.
func (l *Limiter) OnThrottled() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.hits++
	if l.rps > FloorRate {
		l.rps = FloorRate
		l.interval = intervalFor(FloorRate)
	} else {
		stretched := time.Duration(float64(l.interval) * 1.5)
		if stretched > MaxInterval {
			stretched = MaxInterval
		}
		l.interval = stretched
		l.rps = float64(time.Second) / float64(l.interval)
	}
	l.limiter.SetLimit(rate.Every(l.interval))
}

// Rate returns the current allowed requests per second.
func (l *Limiter) Rate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rps
}

// Interval returns the current minimum spacing between requests.
func (l *Limiter) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval
}

// ThrottleHits returns how many throttle signals were observed.
func (l *Limiter) ThrottleHits() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hits
}

func intervalFor(rps float64) time.Duration {
	return time.Duration(float64(time.Second) / rps)
}
