// Package store holds process-wide UI state: the active theme, dark mode,
// toast notifications, the modal stack and animation preferences. State is
// persisted to platform storage and reflected onto the document root, whose
// data-theme and data-mode attributes are what the stylesheets select on.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/internal/domain/theme"
	"github.com/okian/portfolio/internal/ui/platform"
	"github.com/okian/portfolio/pkg/logger"
)

// Storage keys.
const (
	KeyTheme             = "theme"
	KeyDarkMode          = "darkMode"
	KeyAnimationSettings = "animationSettings"
	KeyAuthToken         = "auth_token"
)

// Document root attributes and classes written by ApplyTheme.
const (
	AttrTheme           = "data-theme"
	AttrMode            = "data-mode"
	ClassThemeSwitching = "theme-switching"
	VarSpeedMultiplier  = "--animation-speed-multiplier"
)

// Notification defaults.
const (
	DefaultNotificationDuration = 5 * time.Second
	ErrorNotificationDuration   = 8 * time.Second
	themeSwitchingDuration      = 50 * time.Millisecond
)

// Animation speeds.
const (
	SpeedSlow   = 0
	SpeedNormal = 1
	SpeedFast   = 2
)

// AnimationSettings are the user's animation preferences.
type AnimationSettings struct {
	Enabled               bool `json:"enabled"`
	Speed                 int  `json:"speed"`
	OverrideReducedMotion bool `json:"overrideReducedMotion,omitempty"`
}

// AnimationSettingsPatch updates the non-nil fields of AnimationSettings.
type AnimationSettingsPatch struct {
	Enabled               *bool
	Speed                 *int
	OverrideReducedMotion *bool
}

// Store is the global UI store. All mutation goes through its methods.
type Store struct {
	mu            sync.Mutex
	doc           platform.Document
	storage       platform.Storage
	clock         platform.Clock
	logger        logger.Logger
	colorScheme   platform.MediaQuery
	reducedMotion platform.MediaQuery
	newID         func() string

	themeName      string
	darkMode       bool
	notifications  []model.Notification
	expiry         map[string]platform.Timer
	modals         []model.Modal
	loading        bool
	loadingMessage string
	animation      AnimationSettings

	switchTimer platform.Timer
	stopSystem  func()
	subs        map[int]func(Event)
	nextSub     int
}

// New builds a store from persisted state. It writes the animation speed
// variable onto the document root but does not apply the theme; call
// InitializeTheme once the application starts.
func New(doc platform.Document, storage platform.Storage, opts ...Option) *Store {
	s := &Store{
		doc:     doc,
		storage: storage,
		clock:   platform.RealClock{},
		logger:  logger.NamedOrNop("ui-store"),
		newID:   newID,
		expiry:  make(map[string]platform.Timer),
		subs:    make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.storage == nil {
		s.storage = platform.NewMemoryStorage(nil)
	}

	s.themeName = theme.DefaultThemeName
	if name, ok := s.storage.Get(KeyTheme); ok {
		if _, known := theme.Lookup(name); known {
			s.themeName = name
		} else {
			s.logger.Warn(context.Background(), "ignoring unknown stored theme", logger.String("theme", name))
		}
	}
	if v, ok := s.storage.Get(KeyDarkMode); ok {
		s.darkMode = v == "true"
	}
	s.animation = s.loadAnimationSettings()
	s.writeSpeedVar(s.animation.Speed)
	return s
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *Store) loadAnimationSettings() AnimationSettings {
	def := AnimationSettings{Enabled: !s.prefersReducedMotion(), Speed: SpeedNormal}
	raw, ok := s.storage.Get(KeyAnimationSettings)
	if !ok || raw == "" {
		return def
	}
	var stored AnimationSettings
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Warn(context.Background(), "invalid stored animation settings", logger.Error(err))
		return def
	}
	return stored
}

func (s *Store) prefersReducedMotion() bool {
	return s.reducedMotion != nil && s.reducedMotion.Matches()
}

func (s *Store) root() platform.Element {
	if s.doc == nil {
		return nil
	}
	return s.doc.Root()
}

// Theme returns the active theme name.
func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.themeName
}

// DarkMode reports whether dark mode is on.
func (s *Store) DarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.darkMode
}

// CurrentTheme returns the descriptor of the active theme, falling back to
// the first catalog entry.
func (s *Store) CurrentTheme() model.ThemeDescriptor {
	return theme.Resolve(s.Theme())
}

// Themes returns the theme catalog.
func (s *Store) Themes() []model.ThemeDescriptor {
	return theme.All()
}

// SetTheme activates a catalog theme. Unknown names leave state unchanged.
func (s *Store) SetTheme(name string) error {
	if _, ok := theme.Lookup(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	s.mu.Lock()
	s.themeName = name
	s.mu.Unlock()
	s.storage.Set(KeyTheme, name)
	s.ApplyTheme()
	s.emit(ThemeChanged)
	return nil
}

// NextTheme switches to the following catalog theme and returns its name.
func (s *Store) NextTheme() string {
	next := theme.Next(s.Theme()).Name
	_ = s.SetTheme(next)
	return next
}

// ToggleTheme flips between the light and dark variant of the active theme.
func (s *Store) ToggleTheme() { s.ToggleDarkMode() }

// ToggleDarkMode flips dark mode and persists the choice.
func (s *Store) ToggleDarkMode() {
	s.mu.Lock()
	dark := !s.darkMode
	s.mu.Unlock()
	s.SetDarkMode(dark)
}

// SetDarkMode sets dark mode and persists the choice.
func (s *Store) SetDarkMode(dark bool) {
	s.storage.Set(KeyDarkMode, strconv.FormatBool(dark))
	s.setDarkMode(dark)
}

func (s *Store) setDarkMode(dark bool) {
	s.mu.Lock()
	s.darkMode = dark
	s.mu.Unlock()
	s.ApplyTheme()
	s.emit(ThemeChanged)
}

// ApplyTheme writes the theme attributes onto the document root. The
// theme-switching class stays on for a short moment afterwards, so effects
// are not complete when ApplyTheme returns.
func (s *Store) ApplyTheme() {
	root := s.root()
	if root == nil {
		return
	}
	s.mu.Lock()
	name, dark := s.themeName, s.darkMode
	if s.switchTimer != nil {
		s.switchTimer.Stop()
	}
	s.mu.Unlock()

	root.AddClass(ClassThemeSwitching)
	root.SetAttr(AttrTheme, name)
	if dark {
		root.SetAttr(AttrMode, "dark")
	} else {
		root.RemoveAttr(AttrMode)
	}

	t := s.clock.AfterFunc(themeSwitchingDuration, func() {
		root.RemoveClass(ClassThemeSwitching)
	})
	s.mu.Lock()
	s.switchTimer = t
	s.mu.Unlock()
	s.logger.Debug(context.Background(), "theme applied", logger.String("theme", name), logger.Bool("dark", dark))
}

// InitializeTheme applies the stored theme. Without a stored theme the system
// dark preference is read once. Later system changes are followed for as long
// as the user has not stored an explicit dark mode choice. System derived
// values are not persisted.
func (s *Store) InitializeTheme() {
	if _, ok := s.storage.Get(KeyTheme); !ok && s.colorScheme != nil && s.colorScheme.Matches() {
		s.mu.Lock()
		s.darkMode = true
		s.mu.Unlock()
	}
	s.ApplyTheme()

	if s.colorScheme == nil {
		return
	}
	unsub := s.colorScheme.Subscribe(func(dark bool) {
		if _, userSet := s.storage.Get(KeyDarkMode); userSet {
			return
		}
		s.setDarkMode(dark)
	})
	s.mu.Lock()
	prev := s.stopSystem
	s.stopSystem = unsub
	s.mu.Unlock()
	if prev != nil {
		prev()
	}
}

// SetLoading sets the global loading indicator.
func (s *Store) SetLoading(loading bool, message string) {
	s.mu.Lock()
	s.loading = loading
	s.loadingMessage = message
	s.mu.Unlock()
	s.emit(LoadingChanged)
}

// Loading returns the loading flag and message.
func (s *Store) Loading() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading, s.loadingMessage
}

// AnimationSettings returns the current animation preferences.
func (s *Store) AnimationSettings() AnimationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animation
}

// SetAnimationSettings merges patch into the preferences, persists them and
// updates the speed multiplier variable.
func (s *Store) SetAnimationSettings(patch AnimationSettingsPatch) {
	s.mu.Lock()
	if patch.Enabled != nil {
		s.animation.Enabled = *patch.Enabled
	}
	if patch.Speed != nil {
		s.animation.Speed = *patch.Speed
	}
	if patch.OverrideReducedMotion != nil {
		s.animation.OverrideReducedMotion = *patch.OverrideReducedMotion
	}
	settings := s.animation
	s.mu.Unlock()

	raw, err := json.Marshal(settings)
	if err != nil {
		s.logger.Error(context.Background(), "encode animation settings", logger.Error(err))
	} else {
		s.storage.Set(KeyAnimationSettings, string(raw))
	}
	s.writeSpeedVar(settings.Speed)
	s.emit(AnimationSettingsChanged)
}

// ShouldEnableAnimations honours the system reduced motion preference unless
// the user overrode it, then the user's own switch.
func (s *Store) ShouldEnableAnimations() bool {
	settings := s.AnimationSettings()
	if s.prefersReducedMotion() && !settings.OverrideReducedMotion {
		return false
	}
	return settings.Enabled
}

// SpeedMultiplier maps an animation speed to the CSS duration multiplier.
func SpeedMultiplier(speed int) float64 {
	switch speed {
	case SpeedSlow:
		return 1.5
	case SpeedFast:
		return 0.65
	default:
		return 1
	}
}

func (s *Store) writeSpeedVar(speed int) {
	if root := s.root(); root != nil {
		root.SetStyle(VarSpeedMultiplier, strconv.FormatFloat(SpeedMultiplier(speed), 'f', -1, 64))
	}
}

// Close stops pending timers and the system preference subscription.
func (s *Store) Close() {
	s.mu.Lock()
	stop := s.stopSystem
	s.stopSystem = nil
	if s.switchTimer != nil {
		s.switchTimer.Stop()
	}
	for id, t := range s.expiry {
		t.Stop()
		delete(s.expiry, id)
	}
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}
