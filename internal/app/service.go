// Package app wires the submission pipeline, the theme alert pipeline and
// the diagnostics battery behind the HTTP API.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/portfolio/internal/adapters/mq/queue"
	"github.com/okian/portfolio/internal/adapters/mq/worker"
	"github.com/okian/portfolio/internal/adapters/repository"
	"github.com/okian/portfolio/internal/domain/dedupe"
	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/internal/domain/ratelimit"
	"github.com/okian/portfolio/internal/domain/theme"
	"github.com/okian/portfolio/internal/ui/monitor"
	"github.com/okian/portfolio/internal/ui/platform"
	"github.com/okian/portfolio/pkg/logger"
	"github.com/okian/portfolio/pkg/metrics"
)

const (
	defaultSubmissionsPath = "submissions.json"
	defaultQueueSize       = 1024
	defaultWorkers         = 2
	defaultDedupeSize      = 10_000
	defaultAlertLimit      = 60
	defaultAlertWindow     = time.Minute
	defaultAlertHistory    = 1000
	defaultShellHTML       = `<!doctype html><html><head></head><body></body></html>`
)

// Service implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	limiter  *ratelimit.Limiter
	alertLim *ratelimit.Limiter
	validate *validator.Validate
	deduper  dedupe.Deduper
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	monitor  *monitor.Monitor

	// Configuration
	deliverer  worker.Deliverer
	rateLimit  int
	rateWindow time.Duration
	alertLimit int
	alertWin   time.Duration
	maxAlerts  int
	queueSize  int
	workers    int
	dedupeSize int
	shellHTML  string
	now        func() time.Time

	// State
	started bool
	stopped bool

	logger logger.Logger
}

// New constructs a Service. Components are built eagerly so alerts can be
// queued before Start; delivery begins once Start is called.
func New(opts ...Option) *Service {
	s := &Service{
		store:      repository.NewJSONFileStore(defaultSubmissionsPath),
		rateLimit:  ratelimit.DefaultLimit,
		rateWindow: ratelimit.DefaultWindow,
		alertLimit: defaultAlertLimit,
		alertWin:   defaultAlertWindow,
		maxAlerts:  defaultAlertHistory,
		queueSize:  defaultQueueSize,
		workers:    defaultWorkers,
		dedupeSize: defaultDedupeSize,
		shellHTML:  defaultShellHTML,
		now:        time.Now,
		logger:     logger.NamedOrNop("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.deliverer == nil {
		s.deliverer = worker.LogDeliverer{Logger: s.logger.Named("alerts")}
	}
	s.validate = newValidator()
	s.limiter = ratelimit.New(
		ratelimit.WithLimit(s.rateLimit),
		ratelimit.WithWindow(s.rateWindow),
		ratelimit.WithClock(s.now),
	)
	s.alertLim = ratelimit.New(
		ratelimit.WithLimit(s.alertLimit),
		ratelimit.WithWindow(s.alertWin),
		ratelimit.WithClock(s.now),
	)
	s.deduper = dedupe.New(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.queue, s.deliverer,
		worker.WithWorkers(s.workers),
		worker.WithLogger(s.logger.Named("alert-worker")),
	)
	s.monitor = monitor.New(
		monitor.WithLogger(s.logger.Named("theme-monitor")),
		monitor.WithReporter(monitor.ReporterFunc(s.enqueueAlert)),
		monitor.WithMaxAlerts(s.maxAlerts),
	)
	return s
}

// Start launches alert delivery. Calling it again is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.stopped {
		return nil
	}
	s.pool.Start(ctx)
	s.started = true
	s.logger.Info(ctx, "portfolio service started",
		logger.Int("alertWorkers", s.workers),
		logger.Int("alertQueueSize", s.queueSize),
		logger.Int("rateLimit", s.rateLimit),
		logger.Duration("rateWindow", s.rateWindow),
	)
	return nil
}

// Stop flushes in-flight alerts, closes the queue and waits for the
// workers to drain it. It is idempotent.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	s.started = false

	s.logger.Info(ctx, "stopping portfolio service...")
	s.monitor.Stop()
	if err := s.pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("stop alert pool: %w", err)
	}
	s.logger.Info(ctx, "portfolio service stopped")
	return nil
}

// AllowSubmission charges one attempt against the client's window.
func (s *Service) AllowSubmission(ctx context.Context, clientKey string) ratelimit.Info {
	info, err := s.limiter.Check(clientKey)
	if err != nil {
		metrics.RecordSubmission(metrics.OutcomeRateLimited)
		s.logger.Warn(ctx, "client rate limited",
			logger.String("client", clientKey),
			logger.Error(err),
		)
	}
	return info
}

// AllowAlert charges one alert or vitals report against the client's
// window, which is separate from the submission window.
func (s *Service) AllowAlert(ctx context.Context, clientKey string) ratelimit.Info {
	info, err := s.alertLim.Check(clientKey)
	if err != nil {
		metrics.RecordErrorByType("alert_rate_limited", "low")
		s.logger.Debug(ctx, "alert reporter rate limited",
			logger.String("client", clientKey),
			logger.Error(err),
		)
	}
	return info
}

// List returns every stored submission.
func (s *Service) List(ctx context.Context) ([]model.SubmissionRecord, error) {
	return s.store.List(ctx)
}

// Themes returns the theme catalog.
func (s *Service) Themes() []model.ThemeDescriptor {
	return theme.All()
}

// Diagnostics runs the diagnostics battery against a fresh copy of the
// page shell.
func (s *Service) Diagnostics(ctx context.Context, env monitor.Environment) ([]model.DiagnosticResult, error) {
	doc, err := platform.ParseHTMLString(s.shellHTML)
	if err != nil {
		return nil, fmt.Errorf("parse page shell: %w", err)
	}
	return monitor.NewDebugger(doc, s.monitor, s.logger.Named("theme-debugger")).RunDiagnostics(ctx, env)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	stats := map[string]any{
		"started":             started,
		"alertWorkers":        s.workers,
		"alertQueueLength":    s.queue.Len(),
		"alertQueueCapacity":  s.queue.Capacity(),
		"alertsRaised":        len(s.monitor.Alerts()),
		"dedupeSize":          s.deduper.Size(),
		"rateLimit":           s.limiter.Limit(),
		"rateWindowMs":        s.limiter.Window().Milliseconds(),
		"rateTrackedClients":  s.limiter.Sweep(),
		"alertRateLimit":      s.alertLim.Limit(),
		"alertTrackedClients": s.alertLim.Sweep(),
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Error(ctx, "failed to count submissions", logger.Error(err))
		return stats
	}
	stats["storedRecords"] = count
	metrics.UpdateStoredRecords(count)
	return stats
}
