// Package platform confines every browser-facing capability the UI layer
// needs behind small interfaces: the document tree, storage, media queries,
// timers, viewport intersection and the keyframe animation engine.
package platform

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupported is returned when the host lacks a capability.
var ErrUnsupported = errors.New("platform capability unsupported")

// Rect is an element bounding box in viewport coordinates.
type Rect struct {
	Left, Top, Width, Height float64
}

// Event is a pointer or generic DOM event.
type Event struct {
	Type    string
	ClientX float64
	ClientY float64
	Target  Element
}

// Keyframe maps CSS properties to values at one point of an animation.
type Keyframe map[string]string

// AnimationOptions control a keyframe animation.
type AnimationOptions struct {
	Duration time.Duration
	Delay    time.Duration
	Easing   string
	// Fill "forwards" keeps the final keyframe applied after completion.
	Fill string
}

// Animation is a running keyframe animation.
type Animation interface {
	// Done is closed when the animation finishes or is cancelled.
	Done() <-chan struct{}
	Cancel()
}

// Element is a node of the document tree.
type Element interface {
	Tag() string
	ID() string
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)
	HasClass(class string) bool
	AddClass(classes ...string)
	RemoveClass(classes ...string)
	// ToggleClass flips class and reports whether it is now present.
	ToggleClass(class string) bool
	Style(prop string) string
	SetStyle(prop, value string)
	Text() string
	SetText(text string)
	BoundingRect() Rect
	QueryAll(selector string) []Element
	Query(selector string) Element
	AppendHTML(html string)
	Remove()
	// On registers an event listener; the returned func removes it.
	On(eventType string, fn func(Event)) (off func())
	// Animate runs keyframes. It returns ErrUnsupported when the host has no
	// animation engine.
	Animate(frames []Keyframe, opts AnimationOptions) (Animation, error)
}

// AttributeChange describes one attribute mutation.
type AttributeChange struct {
	Target  Element
	Name    string
	Value   string
	Present bool
}

// Document is the root of a page.
type Document interface {
	Root() Element
	Head() Element
	Body() Element
	QueryAll(selector string) []Element
	Query(selector string) Element
	// ObserveAttributes calls fn for attribute changes on target whose name
	// is in names. The returned func stops observing.
	ObserveAttributes(target Element, names []string, fn func(AttributeChange)) (stop func())
	// SupportsAnimations reports whether Element.Animate can succeed.
	SupportsAnimations() bool
	// HTML serializes the document.
	HTML() (string, error)
}

// Storage is a string key/value store persisted across reloads.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// MediaQuery is a boolean preference signal such as prefers-reduced-motion.
type MediaQuery interface {
	Matches() bool
	// Subscribe calls fn with the new value on every change.
	Subscribe(fn func(matches bool)) (unsubscribe func())
}

// Timer is a scheduled callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks and measures time.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
	// Sleep waits d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// IntersectionEntry reports a visibility change of an observed element.
type IntersectionEntry struct {
	Target         Element
	IsIntersecting bool
	Ratio          float64
}

// IntersectionOptions mirror IntersectionObserver init options.
type IntersectionOptions struct {
	Threshold  float64
	RootMargin string
}

// IntersectionSource observes viewport intersection of elements.
type IntersectionSource interface {
	Observe(target Element, opts IntersectionOptions, fn func(IntersectionEntry)) (disconnect func())
}

// Every runs fn every interval on clock until the returned stop is called.
func Every(clock Clock, interval time.Duration, fn func()) (stop func()) {
	s := &repeater{clock: clock, interval: interval, fn: fn}
	s.arm()
	return s.stop
}
