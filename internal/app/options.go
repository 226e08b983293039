package app

import (
	"time"

	"github.com/okian/portfolio/internal/adapters/mq/worker"
	"github.com/okian/portfolio/internal/adapters/repository"
	"github.com/okian/portfolio/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the submission store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used for submittedAt and rate limiting.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRateLimit bounds submissions per client within a sliding window.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(s *Service) {
		if limit > 0 {
			s.rateLimit = limit
		}
		if window > 0 {
			s.rateWindow = window
		}
	}
}

// WithAlertRateLimit bounds alert and vitals reports per client within a
// sliding window.
func WithAlertRateLimit(limit int, window time.Duration) Option {
	return func(s *Service) {
		if limit > 0 {
			s.alertLimit = limit
		}
		if window > 0 {
			s.alertWin = window
		}
	}
}

// WithAlertHistory caps how many alerts the service keeps in memory.
func WithAlertHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAlerts = n
		}
	}
}

// WithDeliverer sets where queued alerts are forwarded.
func WithDeliverer(d worker.Deliverer) Option {
	return func(s *Service) {
		if d != nil {
			s.deliverer = d
		}
	}
}

// WithAlertQueueSize sets the alert queue capacity.
func WithAlertQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithAlertWorkers sets the number of delivery goroutines.
func WithAlertWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithDedupeSize sets how many alert ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShellHTML sets the page the diagnostics battery runs against.
func WithShellHTML(html string) Option {
	return func(s *Service) {
		if html != "" {
			s.shellHTML = html
		}
	}
}
