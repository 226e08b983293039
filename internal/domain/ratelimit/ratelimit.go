// Package ratelimit bounds how often a client may hit an endpoint using a
// sliding window log per client key.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Defaults match the submission endpoint: five requests per minute.
const (
	DefaultLimit  = 5
	DefaultWindow = time.Minute
)

// Info describes the state of one client's window after a decision.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter keeps a timestamp log per client and admits a request while fewer
// than limit requests fall inside the trailing window.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	hits   map[string][]time.Time
}

// New creates a Limiter.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		limit:  DefaultLimit,
		window: DefaultWindow,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records an attempt for key and reports whether it is admitted.
// Rejected attempts are not recorded.
func (l *Limiter) Allow(key string) Info {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	log := l.prune(key, now)
	if len(log) >= l.limit {
		return Info{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			RetryAfter: log[0].Add(l.window).Sub(now),
		}
	}
	log = append(log, now)
	l.hits[key] = log
	return Info{Allowed: true, Limit: l.limit, Remaining: l.limit - len(log)}
}

// Check is Allow returning ErrLimited when the attempt is rejected.
func (l *Limiter) Check(key string) (Info, error) {
	info := l.Allow(key)
	if !info.Allowed {
		return info, fmt.Errorf("%w: retry after %s", ErrLimited, info.RetryAfter.Round(time.Second))
	}
	return info, nil
}

// Sweep drops clients whose log is entirely outside the window and returns
// how many keys remain.
func (l *Limiter) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.hits {
		l.prune(key, now)
	}
	return len(l.hits)
}

// Limit returns the per-window budget.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the window length.
func (l *Limiter) Window() time.Duration { return l.window }

// prune drops expired entries for key; l.mu must be held.
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	log := l.hits[key]
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	log = log[i:]
	if len(log) == 0 {
		delete(l.hits, key)
		return nil
	}
	l.hits[key] = log
	return log
}
