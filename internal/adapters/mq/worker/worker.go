// Package worker forwards queued theme alerts to a reporting endpoint.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/pkg/logger"
	"github.com/okian/portfolio/pkg/metrics"
)

const defaultWorkers = 2

// Queue defines how workers receive alerts.
type Queue interface {
	Dequeue() <-chan model.Alert
	Close() error
}

// Pool runs delivery goroutines over a queue until it is closed and drained.
type Pool struct {
	queue     Queue
	deliverer Deliverer
	workers   int
	logger    logger.Logger

	startOnce sync.Once
	wg        sync.WaitGroup
	done      chan struct{}
}

// NewPool creates a delivery pool.
func NewPool(q Queue, d Deliverer, opts ...Option) *Pool {
	p := &Pool{
		queue:     q,
		deliverer: d,
		workers:   defaultWorkers,
		logger:    logger.NamedOrNop("alert-worker"),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers. Calling it again is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.run(ctx)
		}
		go func() {
			p.wg.Wait()
			close(p.done)
		}()
	})
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-p.queue.Dequeue():
			if !ok {
				return
			}
			p.deliver(ctx, a)
		}
	}
}

func (p *Pool) deliver(ctx context.Context, a model.Alert) {
	if err := p.deliverer.Deliver(ctx, a); err != nil {
		metrics.RecordAlertDelivery("failed")
		p.logger.Error(ctx, "alert delivery failed",
			logger.String("id", a.ID),
			logger.String("message", a.Message),
			logger.Error(err),
		)
		return
	}
	metrics.RecordAlertDelivery("ok")
}

// Shutdown closes the queue and waits for queued alerts to be delivered.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing alert queue", logger.Error(err))
	}
	// never started: nothing to wait for
	p.startOnce.Do(func() { close(p.done) })
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "alert pool shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
