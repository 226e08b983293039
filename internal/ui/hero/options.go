package hero

import (
	"github.com/okian/portfolio/internal/ui/platform"
	"github.com/okian/portfolio/pkg/logger"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithConfig sets the controller configuration.
func WithConfig(cfg Config) Option {
	return func(c *Controller) { c.cfg = cfg }
}

// WithAnimationsEnabled sets the caller side animation switch.
func WithAnimationsEnabled(enabled bool) Option {
	return func(c *Controller) { c.callerEnabled = enabled }
}

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the clock used for delays and performance measurements.
func WithClock(clock platform.Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIntersection sets the viewport intersection source. Without one the
// controller never becomes visible.
func WithIntersection(src platform.IntersectionSource) Option {
	return func(c *Controller) { c.intersection = src }
}

// WithReducedMotion sets the reduced motion preference signal.
func WithReducedMotion(q platform.MediaQuery) Option {
	return func(c *Controller) { c.reducedMotion = q }
}

// WithAnimator replaces the animator picked from the browser capabilities.
func WithAnimator(a Animator) Option {
	return func(c *Controller) { c.animator = a }
}
