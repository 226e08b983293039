package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/portfolio/internal/adapters/mq/queue"
	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/pkg/logger"
	"github.com/okian/portfolio/pkg/metrics"
)

// IngestAlert records an alert sent by a browser and queues it for
// delivery. An id seen before is rejected with ErrDuplicate.
func (s *Service) IngestAlert(ctx context.Context, a model.Alert) (model.Alert, error) {
	if a.ID != "" && s.deduper.SeenAndRecord(ctx, a.ID) {
		metrics.RecordErrorByType("duplicate_alert", "low")
		s.logger.Debug(ctx, "duplicate alert skipped", logger.String("id", a.ID))
		return a, fmt.Errorf("%w: %s", ErrDuplicate, a.ID)
	}
	return s.monitor.Ingest(a), nil
}

// RecordVitals feeds one browser performance snapshot into the server
// side monitor and returns the alerts it raised.
func (s *Service) RecordVitals(_ context.Context, snap model.PerformanceSnapshot, memoryLimit float64) []model.Alert {
	return s.monitor.RecordSnapshot(snap, memoryLimit)
}

// Alerts returns the retained alert history, oldest first.
func (s *Service) Alerts() []model.Alert {
	return s.monitor.Alerts()
}

// enqueueAlert hands an alert to the delivery workers. When the queue is
// full the id is forgotten so the browser may send it again.
func (s *Service) enqueueAlert(ctx context.Context, a model.Alert) error {
	err := s.queue.Enqueue(ctx, a)
	if errors.Is(err, queue.ErrFull) {
		s.deduper.Unrecord(ctx, a.ID)
	}
	return err
}
