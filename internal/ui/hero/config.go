package hero

import "time"

// Default configuration values.
const (
	DefaultDuration         = 800 * time.Millisecond
	DefaultStagger          = 200 * time.Millisecond
	DefaultEasing           = "cubic-bezier(0.4, 0, 0.2, 1)"
	DefaultParticleCount    = 8
	DefaultParticleSpeed    = 8
	DefaultParticleOpacity  = 0.6
	DefaultMouseSensitivity = 0.5
)

// AnimationConfig controls the entrance sequence.
type AnimationConfig struct {
	Enabled  bool
	Duration time.Duration
	Stagger  time.Duration
	Easing   string
}

// ParticleConfig controls the decorative particles.
type ParticleConfig struct {
	Count   int
	Speed   float64
	Opacity float64
}

// MouseConfig controls parallax tracking.
type MouseConfig struct {
	Enabled     bool
	Sensitivity float64
}

// Config is the hero controller configuration.
type Config struct {
	Animations AnimationConfig
	Particles  ParticleConfig
	Mouse      MouseConfig
}

// ConfigOption adjusts a Config after merging.
type ConfigOption func(*Config)

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Animations: AnimationConfig{
			Enabled:  true,
			Duration: DefaultDuration,
			Stagger:  DefaultStagger,
			Easing:   DefaultEasing,
		},
		Particles: ParticleConfig{
			Count:   DefaultParticleCount,
			Speed:   DefaultParticleSpeed,
			Opacity: DefaultParticleOpacity,
		},
		Mouse: MouseConfig{
			Enabled:     true,
			Sensitivity: DefaultMouseSensitivity,
		},
	}
}

// MergeConfig overlays the non-zero fields of partial onto the defaults.
// The Enabled switches cannot be cleared through partial, since false is
// their zero value; use DisableAnimations and DisableMouse instead.
func MergeConfig(partial Config, opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	if partial.Animations.Duration > 0 {
		cfg.Animations.Duration = partial.Animations.Duration
	}
	if partial.Animations.Stagger > 0 {
		cfg.Animations.Stagger = partial.Animations.Stagger
	}
	if partial.Animations.Easing != "" {
		cfg.Animations.Easing = partial.Animations.Easing
	}
	if partial.Particles.Count > 0 {
		cfg.Particles.Count = partial.Particles.Count
	}
	if partial.Particles.Speed > 0 {
		cfg.Particles.Speed = partial.Particles.Speed
	}
	if partial.Particles.Opacity > 0 {
		cfg.Particles.Opacity = partial.Particles.Opacity
	}
	if partial.Mouse.Sensitivity > 0 {
		cfg.Mouse.Sensitivity = partial.Mouse.Sensitivity
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// DisableAnimations turns the entrance sequence off.
func DisableAnimations() ConfigOption {
	return func(c *Config) { c.Animations.Enabled = false }
}

// DisableMouse turns parallax tracking off.
func DisableMouse() ConfigOption {
	return func(c *Config) { c.Mouse.Enabled = false }
}
