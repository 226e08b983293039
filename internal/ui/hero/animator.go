package hero

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/portfolio/internal/ui/platform"
)

// Animator plays one effect on one element and returns when it completes.
type Animator interface {
	Animate(ctx context.Context, el platform.Element, effect string, opts platform.AnimationOptions) error
}

var effects = map[string][]platform.Keyframe{
	EffectFadeInUp: {
		{"opacity": "0", "transform": "translateY(30px)"},
		{"opacity": "1", "transform": "translateY(0)"},
	},
	EffectFadeIn: {
		{"opacity": "0"},
		{"opacity": "1"},
	},
	EffectScaleIn: {
		{"opacity": "0", "transform": "scale(0.95)"},
		{"opacity": "1", "transform": "scale(1)"},
	},
}

// Keyframes returns the frames of effect, defaulting to fadeInUp.
func Keyframes(effect string) []platform.Keyframe {
	if f, ok := effects[effect]; ok {
		return f
	}
	return effects[EffectFadeInUp]
}

// KeyframeAnimator drives the platform animation engine.
type KeyframeAnimator struct{}

// Animate implements Animator. Cancelling ctx cancels the animation.
func (KeyframeAnimator) Animate(ctx context.Context, el platform.Element, effect string, opts platform.AnimationOptions) error {
	opts.Fill = "forwards"
	a, err := el.Animate(Keyframes(effect), opts)
	if err != nil {
		return err
	}
	select {
	case <-a.Done():
		return nil
	case <-ctx.Done():
		a.Cancel()
		return ctx.Err()
	}
}

// TransitionAnimator sets CSS transition styles toward the last frame of
// the effect and resolves after the duration elapses on its clock.
type TransitionAnimator struct {
	Clock platform.Clock
}

// Animate implements Animator.
func (t TransitionAnimator) Animate(ctx context.Context, el platform.Element, effect string, opts platform.AnimationOptions) error {
	el.SetStyle("transition", fmt.Sprintf("all %dms %s", opts.Duration.Milliseconds(), opts.Easing))
	frames := Keyframes(effect)
	end := frames[len(frames)-1]
	props := make([]string, 0, len(end))
	for prop := range end {
		props = append(props, prop)
	}
	sort.Strings(props)
	for _, prop := range props {
		el.SetStyle(prop, end[prop])
	}
	clock := t.Clock
	if clock == nil {
		clock = platform.RealClock{}
	}
	return clock.Sleep(ctx, opts.Duration)
}

// fallbackAnimator tries the primary animator and falls back per element
// when the primary reports an error other than cancellation.
type fallbackAnimator struct {
	primary  Animator
	fallback Animator
}

func (f fallbackAnimator) Animate(ctx context.Context, el platform.Element, effect string, opts platform.AnimationOptions) error {
	err := f.primary.Animate(ctx, el, effect, opts)
	if err == nil || ctx.Err() != nil {
		return err
	}
	return f.fallback.Animate(ctx, el, effect, opts)
}

// NewAnimator picks the keyframe engine when doc supports it, with a
// transition fallback, and the transition animator otherwise.
func NewAnimator(doc platform.Document, clock platform.Clock) Animator {
	transition := TransitionAnimator{Clock: clock}
	if doc != nil && doc.SupportsAnimations() {
		return fallbackAnimator{primary: KeyframeAnimator{}, fallback: transition}
	}
	return transition
}

func animationOptions(duration time.Duration, easing string) platform.AnimationOptions {
	return platform.AnimationOptions{Duration: duration, Easing: easing, Fill: "forwards"}
}
