package hero

import (
	"context"
	"strings"
	"time"

	"github.com/okian/portfolio/internal/ui/platform"
	"github.com/okian/portfolio/pkg/logger"
)

// FallbackImage replaces profile images that fail to load.
const FallbackImage = "/profile-photo.svg"

const slowMeasurement = 100 * time.Millisecond

// HandleImageError swaps a broken image for the fallback and reports
// whether it did.
func (c *Controller) HandleImageError(img platform.Element) bool {
	if img == nil {
		return false
	}
	src, _ := img.Attr("src")
	if strings.Contains(src, strings.TrimPrefix(FallbackImage, "/")) {
		return false
	}
	img.SetAttr("src", FallbackImage)
	c.logger.Warn(context.Background(), "profile image failed to load, using fallback", logger.String("src", src))
	return true
}

// OptimalImageSize picks the srcset width descriptor for a viewport width.
func OptimalImageSize(viewportWidth int) string {
	switch {
	case viewportWidth >= 1280:
		return "140w"
	case viewportWidth >= 1024:
		return "120w"
	case viewportWidth >= 768:
		return "100w"
	default:
		return "80w"
	}
}

// MeasurePerformance records the time since start under metric.
func (c *Controller) MeasurePerformance(metric string, start time.Time) time.Duration {
	elapsed := c.clock.Now().Sub(start)
	c.mu.Lock()
	c.perf[metric] = float64(elapsed) / float64(time.Millisecond)
	c.mu.Unlock()
	if elapsed > slowMeasurement {
		c.logger.Warn(context.Background(), "slow hero measurement",
			logger.String("metric", metric),
			logger.Duration("elapsed", elapsed),
		)
	}
	return elapsed
}

// PerformanceMetrics returns recorded measurements in milliseconds.
func (c *Controller) PerformanceMetrics() map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]float64, len(c.perf))
	for k, v := range c.perf {
		out[k] = v
	}
	return out
}
