package platform

import "sync"

// ManualIntersection is an IntersectionSource driven by the host, which
// reports visibility with Set.
type ManualIntersection struct {
	mu     sync.Mutex
	nextID int
	obs    map[int]observation
}

type observation struct {
	target Element
	opts   IntersectionOptions
	fn     func(IntersectionEntry)
}

// NewManualIntersection returns an empty source.
func NewManualIntersection() *ManualIntersection {
	return &ManualIntersection{obs: make(map[int]observation)}
}

// Observe implements IntersectionSource.
func (m *ManualIntersection) Observe(target Element, opts IntersectionOptions, fn func(IntersectionEntry)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.obs[id] = observation{target: target, opts: opts, fn: fn}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.obs, id)
	}
}

// Set reports the visible ratio of target. Observers fire when the ratio
// crosses their threshold.
func (m *ManualIntersection) Set(target Element, ratio float64) {
	m.mu.Lock()
	var fire []observation
	for _, o := range m.obs {
		if o.target == target {
			fire = append(fire, o)
		}
	}
	m.mu.Unlock()
	for _, o := range fire {
		o.fn(IntersectionEntry{Target: target, Ratio: ratio, IsIntersecting: ratio > 0 && ratio >= o.opts.Threshold})
	}
}

// Observed returns the options of every active observation.
func (m *ManualIntersection) Observed() []IntersectionOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]IntersectionOptions, 0, len(m.obs))
	for _, o := range m.obs {
		out = append(out, o.opts)
	}
	return out
}
