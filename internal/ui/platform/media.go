package platform

import "sync"

// Common media queries.
const (
	QueryPrefersDark          = "(prefers-color-scheme: dark)"
	QueryPrefersReducedMotion = "(prefers-reduced-motion: reduce)"
)

// StaticMediaQuery is a MediaQuery whose value is set by the host.
type StaticMediaQuery struct {
	mu      sync.Mutex
	matches bool
	nextID  int
	subs    map[int]func(bool)
}

// NewMediaQuery returns a query with an initial value.
func NewMediaQuery(matches bool) *StaticMediaQuery {
	return &StaticMediaQuery{matches: matches, subs: make(map[int]func(bool))}
}

// Matches implements MediaQuery.
func (q *StaticMediaQuery) Matches() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.matches
}

// Subscribe implements MediaQuery.
func (q *StaticMediaQuery) Subscribe(fn func(bool)) func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextID
	q.nextID++
	q.subs[id] = fn
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.subs, id)
	}
}

// Set changes the value and notifies subscribers when it differs.
func (q *StaticMediaQuery) Set(matches bool) {
	q.mu.Lock()
	if q.matches == matches {
		q.mu.Unlock()
		return
	}
	q.matches = matches
	subs := make([]func(bool), 0, len(q.subs))
	for _, fn := range q.subs {
		subs = append(subs, fn)
	}
	q.mu.Unlock()
	for _, fn := range subs {
		fn(matches)
	}
}

// Subscribers returns the number of active subscriptions.
func (q *StaticMediaQuery) Subscribers() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.subs)
}
