package hero

import (
	"time"

	"github.com/okian/portfolio/internal/domain/model"
)

// Effect names understood by the animators.
const (
	EffectFadeInUp = "fadeInUp"
	EffectFadeIn   = "fadeIn"
	EffectScaleIn  = "scaleIn"
)

// entranceSelectors lists the hero parts in play order.
var entranceSelectors = []string{
	".premium-hero__profile",
	".premium-hero__content h1",
	".premium-hero__content h2",
	".premium-hero__content p",
	".premium-hero__stats",
	".premium-hero__actions",
}

// BuildTimeline returns the entrance sequence for cfg. Entry i starts after
// i times the stagger.
func BuildTimeline(cfg Config) []model.TimelineEntry {
	out := make([]model.TimelineEntry, len(entranceSelectors))
	for i, sel := range entranceSelectors {
		out[i] = model.TimelineEntry{
			Selector: sel,
			Delay:    time.Duration(i) * cfg.Animations.Stagger,
			Duration: cfg.Animations.Duration,
			Effect:   EffectFadeInUp,
			Easing:   cfg.Animations.Easing,
		}
	}
	return out
}

// TotalDuration is the time until the last entry finishes.
func TotalDuration(timeline []model.TimelineEntry) time.Duration {
	var total time.Duration
	for _, e := range timeline {
		if end := e.Delay + e.Duration; end > total {
			total = end
		}
	}
	return total
}
