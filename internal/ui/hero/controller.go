// Package hero drives the animated hero section: viewport visibility,
// the staggered entrance sequence, pointer parallax and theme driven
// particle colours.
package hero

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/internal/domain/theme"
	"github.com/okian/portfolio/internal/ui/platform"
	"github.com/okian/portfolio/pkg/logger"
)

// Intersection observer settings.
const (
	VisibilityThreshold = 0.1
	VisibilityMargin    = "50px"
)

// State is the controller lifecycle state.
type State int

// Controller states.
const (
	Unobserved State = iota
	ObservedHidden
	ObservedVisible
	Animating
	Settled
)

func (s State) String() string {
	switch s {
	case Unobserved:
		return "unobserved"
	case ObservedHidden:
		return "observed"
	case ObservedVisible:
		return "visible"
	case Animating:
		return "animating"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// Position is a pointer position normalised to the host box.
type Position struct {
	X, Y float64
}

// EventKind names a controller notification.
type EventKind string

// Controller events.
const (
	VisibilityChanged EventKind = "visibility_changed"
	PlayStarted       EventKind = "play_started"
	PlayFinished      EventKind = "play_finished"
	ThemeChanged      EventKind = "theme_changed"
	MouseMoved        EventKind = "mouse_moved"
)

// Event is delivered to subscribers.
type Event struct {
	Kind EventKind
}

// Controller is owned by one hero instance. Mount attaches it, Cleanup
// detaches it.
type Controller struct {
	doc           platform.Document
	host          platform.Element
	cfg           Config
	callerEnabled bool
	clock         platform.Clock
	logger        logger.Logger
	intersection  platform.IntersectionSource
	reducedMotion platform.MediaQuery
	animator      Animator
	timeline      []model.TimelineEntry

	playing atomic.Bool

	mu             sync.Mutex
	state          State
	visible        bool
	reduced        bool
	mouse          Position
	themeName      string
	particleColors []string
	perf           map[string]float64
	mounted        bool
	observing      bool
	closed         bool
	ctx            context.Context
	cancel         context.CancelFunc
	stops          []func()
	subs           map[int]func(Event)
	nextSub        int

	wg          sync.WaitGroup
	cleanupOnce sync.Once
}

// New builds a controller for host inside doc. Either may be nil, in which
// case the matching features stay inert.
func New(doc platform.Document, host platform.Element, opts ...Option) *Controller {
	c := &Controller{
		doc:           doc,
		host:          host,
		cfg:           DefaultConfig(),
		callerEnabled: true,
		clock:         platform.RealClock{},
		logger:        logger.NamedOrNop("hero"),
		mouse:         Position{X: 0.5, Y: 0.5},
		themeName:     theme.DefaultThemeName,
		perf:          make(map[string]float64),
		subs:          make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.animator == nil {
		c.animator = NewAnimator(doc, c.clock)
	}
	c.timeline = BuildTimeline(c.cfg)
	c.particleColors = theme.Resolve(c.themeName).Colors()
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Mount attaches observers and listeners. It returns immediately; entrance
// plays started by visibility changes run until ctx or Cleanup stops them.
// Calling Mount again is a no-op.
func (c *Controller) Mount(ctx context.Context) {
	c.mu.Lock()
	if c.mounted || c.closed {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	c.cancel()
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	if c.reducedMotion != nil {
		c.setReduced(c.reducedMotion.Matches())
		c.addStop(c.reducedMotion.Subscribe(c.setReduced))
	}

	if c.host != nil && c.intersection != nil {
		c.mu.Lock()
		c.observing = true
		c.state = ObservedHidden
		c.mu.Unlock()
		c.addStop(c.intersection.Observe(c.host, platform.IntersectionOptions{
			Threshold:  VisibilityThreshold,
			RootMargin: VisibilityMargin,
		}, c.onIntersect))
	}

	if c.cfg.Mouse.Enabled && c.host != nil {
		c.addStop(c.host.On("mousemove", func(ev platform.Event) {
			c.HandleMouseMove(ev.ClientX, ev.ClientY)
		}))
	}

	if c.doc != nil {
		if root := c.doc.Root(); root != nil {
			if name, ok := root.Attr("data-theme"); ok && name != "" {
				c.applyTheme(name)
			}
			c.addStop(c.doc.ObserveAttributes(root, []string{"data-theme"}, c.onThemeAttr))
		}
	}
}

func (c *Controller) addStop(fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.stops = append(c.stops, fn)
	c.mu.Unlock()
}

// Cleanup detaches every observer and listener and cancels running plays.
// It is safe to call more than once.
func (c *Controller) Cleanup() {
	c.cleanupOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		stops := c.stops
		c.stops = nil
		cancel := c.cancel
		c.mu.Unlock()

		cancel()
		for _, stop := range stops {
			stop()
		}
	})
}

// Wait blocks until plays scheduled by visibility or theme changes return.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Subscribe registers fn for controller events. The returned func removes it.
func (c *Controller) Subscribe(fn func(Event)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Controller) emit(kind EventKind) {
	c.mu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(Event{Kind: kind})
	}
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) setReduced(reduced bool) {
	c.mu.Lock()
	c.reduced = reduced
	c.mu.Unlock()
}

// Config returns the effective configuration.
func (c *Controller) Config() Config { return c.cfg }

// Timeline returns a copy of the entrance sequence.
func (c *Controller) Timeline() []model.TimelineEntry {
	out := make([]model.TimelineEntry, len(c.timeline))
	copy(out, c.timeline)
	return out
}

// AnimationsEnabled is the caller switch and the configured switch, unless
// the platform asks for reduced motion.
func (c *Controller) AnimationsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callerEnabled && c.cfg.Animations.Enabled && !c.reduced
}

// Visible reports the last intersection result.
func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// IsPlaying reports whether an entrance sequence is running.
func (c *Controller) IsPlaying() bool {
	return c.playing.Load()
}

// ShouldAnimate reports whether an entrance would play right now.
func (c *Controller) ShouldAnimate() bool {
	return c.AnimationsEnabled() && c.Visible()
}

func (c *Controller) onIntersect(entry platform.IntersectionEntry) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.visible = entry.IsIntersecting
	if c.state != Animating {
		if entry.IsIntersecting {
			c.state = ObservedVisible
		} else {
			c.state = ObservedHidden
		}
	}
	c.mu.Unlock()
	c.emit(VisibilityChanged)

	if entry.IsIntersecting && c.AnimationsEnabled() {
		c.schedulePlay()
	}
}

// schedulePlay runs PlayEntrance on its own goroutine, after the current
// callback returns.
func (c *Controller) schedulePlay() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	ctx := c.ctx
	c.wg.Add(1)
	c.mu.Unlock()
	go func() {
		defer c.wg.Done()
		_ = c.PlayEntrance(ctx)
	}()
}

// PlayEntrance runs the entrance sequence and returns once every animated
// node has finished. A call while a sequence is running returns at once.
// Animation failures are logged; only cancellation is returned.
func (c *Controller) PlayEntrance(ctx context.Context) error {
	if c.host == nil || !c.AnimationsEnabled() {
		return nil
	}
	if !c.playing.CompareAndSwap(false, true) {
		return nil
	}
	defer c.playing.Store(false)

	c.setState(Animating)
	c.emit(PlayStarted)

	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range c.timeline {
		nodes := c.host.QueryAll(entry.Selector)
		if len(nodes) == 0 {
			continue
		}
		g.Go(func() error {
			if err := c.clock.Sleep(gctx, entry.Delay); err != nil {
				return err
			}
			var nodesGroup errgroup.Group
			for _, node := range nodes {
				nodesGroup.Go(func() error {
					return c.animateNode(gctx, node, entry)
				})
			}
			return nodesGroup.Wait()
		})
	}
	err := g.Wait()

	c.mu.Lock()
	closed := c.closed
	c.state = c.settledStateLocked()
	c.mu.Unlock()
	if !closed {
		c.emit(PlayFinished)
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn(ctx, "animation failed", logger.Error(err))
	}
	return nil
}

// settledStateLocked is Settled unless the host is observed and left the
// viewport during the play. c.mu must be held.
func (c *Controller) settledStateLocked() State {
	if c.observing && !c.visible {
		return ObservedHidden
	}
	return Settled
}

func (c *Controller) animateNode(ctx context.Context, node platform.Element, entry model.TimelineEntry) error {
	if !c.AnimationsEnabled() {
		return nil
	}
	err := c.animator.Animate(ctx, node, entry.Effect, animationOptions(entry.Duration, entry.Easing))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		c.logger.Warn(ctx, "element animation failed",
			logger.String("selector", entry.Selector),
			logger.Error(err),
		)
		return nil
	}
}

// HandleMouseMove projects a pointer position onto the host box and clamps
// it to [0,1] on both axes. A zero sized host leaves the position as is.
func (c *Controller) HandleMouseMove(clientX, clientY float64) {
	if !c.cfg.Mouse.Enabled || c.host == nil {
		return
	}
	rect := c.host.BoundingRect()
	if rect.Width <= 0 || rect.Height <= 0 {
		return
	}
	pos := Position{
		X: clamp01((clientX - rect.Left) / rect.Width),
		Y: clamp01((clientY - rect.Top) / rect.Height),
	}
	c.mu.Lock()
	c.mouse = pos
	c.mu.Unlock()
	c.emit(MouseMoved)
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

// MousePosition returns the last normalised pointer position.
func (c *Controller) MousePosition() Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mouse
}

func (c *Controller) onThemeAttr(ch platform.AttributeChange) {
	name := theme.DefaultThemeName
	if ch.Present && ch.Value != "" {
		name = ch.Value
	}
	c.applyTheme(name)
	c.emit(ThemeChanged)
	if c.ShouldAnimate() {
		c.schedulePlay()
	}
}

func (c *Controller) applyTheme(name string) {
	colors := theme.Resolve(name).Colors()
	c.mu.Lock()
	c.themeName = name
	c.particleColors = colors
	c.mu.Unlock()
}

// ParticleColors returns the particle palette of the current theme.
func (c *Controller) ParticleColors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.particleColors))
	copy(out, c.particleColors)
	return out
}

// CurrentTheme returns the theme named on the document root.
func (c *Controller) CurrentTheme() string {
	if c.doc != nil {
		if root := c.doc.Root(); root != nil {
			if name, ok := root.Attr("data-theme"); ok && name != "" {
				return name
			}
		}
	}
	return theme.DefaultThemeName
}
