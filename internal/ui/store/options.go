package store

import (
	"github.com/okian/portfolio/internal/ui/platform"
	"github.com/okian/portfolio/pkg/logger"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for notification expiry and the theme
// switching class.
func WithClock(c platform.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithColorScheme sets the system dark mode preference signal.
func WithColorScheme(q platform.MediaQuery) Option {
	return func(s *Store) {
		s.colorScheme = q
	}
}

// WithReducedMotion sets the system reduced motion preference signal.
func WithReducedMotion(q platform.MediaQuery) Option {
	return func(s *Store) {
		s.reducedMotion = q
	}
}

// WithIDGenerator replaces the notification and modal id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}
