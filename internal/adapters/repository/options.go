package repository

import "os"

// Option applies a configuration option to the JSONFileStore.
type Option func(*JSONFileStore)

// WithFileMode sets the permissions used when the file is created.
func WithFileMode(mode os.FileMode) Option {
	return func(s *JSONFileStore) {
		if mode != 0 {
			s.mode = mode
		}
	}
}

// WithMetrics toggles store latency and size metrics.
func WithMetrics(enabled bool) Option {
	return func(s *JSONFileStore) {
		s.metrics = enabled
	}
}
