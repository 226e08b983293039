package monitor

import (
	"time"

	"github.com/okian/portfolio/internal/ui/platform"
	"github.com/okian/portfolio/pkg/logger"
)

// Option applies a configuration option to the Monitor.
type Option func(*Monitor)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock sets the clock driving the polls.
func WithClock(c platform.Clock) Option {
	return func(m *Monitor) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithReporter sets where alerts are sent.
func WithReporter(r Reporter) Option {
	return func(m *Monitor) { m.reporter = r }
}

// WithThresholds replaces the default limits.
func WithThresholds(t Thresholds) Option {
	return func(m *Monitor) { m.thresholds = t }
}

// WithDocument lets the monitor reflect health onto a page and run the
// accessibility poll and debug panel.
func WithDocument(doc platform.Document) Option {
	return func(m *Monitor) { m.doc = doc }
}

// WithMemorySource enables the memory poll.
func WithMemorySource(src MemorySource) Option {
	return func(m *Monitor) { m.memory = src }
}

// WithEnvironment sets the capabilities reported in Report and the panel.
func WithEnvironment(env Environment) Option {
	return func(m *Monitor) { m.env = env }
}

// WithReportTimeout bounds each Reporter call.
func WithReportTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.reportTimeout = d
		}
	}
}

// WithMaxAlerts keeps only the newest n alerts. n <= 0 keeps every alert.
func WithMaxAlerts(n int) Option {
	return func(m *Monitor) { m.maxAlerts = n }
}

// WithIDGenerator replaces the alert id source.
func WithIDGenerator(fn func() string) Option {
	return func(m *Monitor) {
		if fn != nil {
			m.newID = fn
		}
	}
}
