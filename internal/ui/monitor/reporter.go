package monitor

import (
	"context"

	"github.com/okian/portfolio/internal/domain/model"
)

// Reporter forwards alerts to a monitoring service.
type Reporter interface {
	Deliver(ctx context.Context, a model.Alert) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, a model.Alert) error

// Deliver implements Reporter.
func (f ReporterFunc) Deliver(ctx context.Context, a model.Alert) error { return f(ctx, a) }

// MemorySource reports heap usage and the heap limit in bytes. ok is false
// when the host cannot tell.
type MemorySource interface {
	Memory() (used, limit float64, ok bool)
}

// MemorySourceFunc adapts a function to MemorySource.
type MemorySourceFunc func() (used, limit float64, ok bool)

// Memory implements MemorySource.
func (f MemorySourceFunc) Memory() (float64, float64, bool) { return f() }
