// Package queue buffers theme alerts between the HTTP layer and delivery workers.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Alert is the payload flowing through the queue.
type Alert = model.Alert

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an alert. It never blocks; a full or closed queue is an error.
	Enqueue(ctx context.Context, a Alert) error

	// Dequeue returns the receive side. It is closed after Close once drained.
	Dequeue() <-chan Alert

	// Len returns the current number of queued alerts.
	Len() int

	// Close stops accepting alerts. Queued alerts stay readable.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	alerts   chan Alert
	capacity int
	mu       sync.RWMutex
	closed   bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.alerts = make(chan Alert, q.capacity)
	metrics.UpdateAlertQueue(0, q.capacity)
	return q
}

// Enqueue implements Queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, a Alert) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByType("alert_queue_closed", "medium")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case q.alerts <- a:
		metrics.UpdateAlertQueue(len(q.alerts), q.capacity)
		return nil
	default:
		metrics.RecordErrorByType("alert_queue_full", "medium")
		return fmt.Errorf("%w: capacity %d", ErrFull, q.capacity)
	}
}

// Dequeue implements Queue.
func (q *InMemoryQueue) Dequeue() <-chan Alert {
	return q.alerts
}

// Len implements Queue.
func (q *InMemoryQueue) Len() int {
	size := len(q.alerts)
	metrics.UpdateAlertQueue(size, q.capacity)
	return size
}

// Capacity returns the configured capacity.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close implements Queue. Closing twice is a no-op.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.alerts)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
