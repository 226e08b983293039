package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/internal/domain/theme"
	"github.com/okian/portfolio/internal/ui/platform"
	"github.com/okian/portfolio/pkg/logger"
)

// Environment describes the browser a diagnostics run targets.
type Environment struct {
	BackdropFilter       bool    `json:"backdropFilter"`
	WebkitBackdropFilter bool    `json:"webkitBackdropFilter"`
	CSSGrid              bool    `json:"cssGrid"`
	Flexbox              bool    `json:"flexbox"`
	CustomProperties     bool    `json:"customProperties"`
	UserAgent            string  `json:"userAgent"`
	DevicePixelRatio     float64 `json:"devicePixelRatio"`
	HardwareConcurrency  int     `json:"hardwareConcurrency"`
	ConnectionType       string  `json:"connectionType,omitempty"`
	ViewportWidth        int     `json:"viewportWidth"`
	PrefersHighContrast  bool    `json:"prefersHighContrast"`
	PrefersReducedMotion bool    `json:"prefersReducedMotion"`
	MemoryUsed           float64 `json:"memoryUsed,omitempty"`
	MemoryLimit          float64 `json:"memoryLimit,omitempty"`
}

// ModernEnvironment is a current desktop browser with every feature.
func ModernEnvironment(userAgent string) Environment {
	return Environment{
		BackdropFilter:       true,
		WebkitBackdropFilter: true,
		CSSGrid:              true,
		Flexbox:              true,
		CustomProperties:     true,
		UserAgent:            userAgent,
		DevicePixelRatio:     1,
		HardwareConcurrency:  8,
		ViewportWidth:        1280,
	}
}

// Debugger toggles debug classes and runs the diagnostics battery.
type Debugger struct {
	doc     platform.Document
	monitor *Monitor
	logger  logger.Logger

	mu          sync.Mutex
	diagnostics []model.DiagnosticResult
}

// NewDebugger creates a debugger for doc. monitor may be nil.
func NewDebugger(doc platform.Document, monitor *Monitor, l logger.Logger) *Debugger {
	if l == nil {
		l = logger.NamedOrNop("theme-debugger")
	}
	return &Debugger{doc: doc, monitor: monitor, logger: l}
}

func (d *Debugger) toggle(class string) bool {
	root := d.doc.Root()
	if root == nil {
		return false
	}
	on := root.ToggleClass(class)
	d.logger.Info(context.Background(), "debug class toggled", logger.String("class", class), logger.Bool("on", on))
	return on
}

// ToggleDebugMode flips the debug-mode class.
func (d *Debugger) ToggleDebugMode() bool { return d.toggle("debug-mode") }

// TogglePerformanceMode flips the performance-testing-mode class.
func (d *Debugger) TogglePerformanceMode() bool { return d.toggle("performance-testing-mode") }

// ToggleA11yMode flips the accessibility-audit-mode class.
func (d *Debugger) ToggleA11yMode() bool { return d.toggle("accessibility-audit-mode") }

// ToggleVisualTestingMode flips the visual-testing-mode class.
func (d *Debugger) ToggleVisualTestingMode() bool { return d.toggle("visual-testing-mode") }

// RunDiagnostics runs every check against the document and env. Checks run
// concurrently; results keep a fixed order.
func (d *Debugger) RunDiagnostics(ctx context.Context, env Environment) ([]model.DiagnosticResult, error) {
	checks := []func(Environment) model.DiagnosticResult{
		d.glassEffects,
		d.performance,
		d.textContrast,
		d.accessibility,
		browserCompatibility,
	}
	results := make([]model.DiagnosticResult, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = check(env)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run diagnostics: %w", err)
	}

	d.mu.Lock()
	d.diagnostics = results
	d.mu.Unlock()
	d.logger.Info(ctx, "diagnostics complete", logger.Int("checks", len(results)))
	return results, nil
}

// Diagnostics returns the results of the last run.
func (d *Debugger) Diagnostics() []model.DiagnosticResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.DiagnosticResult, len(d.diagnostics))
	copy(out, d.diagnostics)
	return out
}

func (d *Debugger) rootAttr(name string) string {
	if root := d.doc.Root(); root != nil {
		v, _ := root.Attr(name)
		return v
	}
	return ""
}

func (d *Debugger) rootHasClass(class string) bool {
	root := d.doc.Root()
	return root != nil && root.HasClass(class)
}

func (d *Debugger) rootStyle(prop string) string {
	if root := d.doc.Root(); root != nil {
		return root.Style(prop)
	}
	return ""
}

func (d *Debugger) glassEffects(env Environment) model.DiagnosticResult {
	r := model.DiagnosticResult{Test: "Glass Effects", Status: model.DiagnosticPass}
	themeActive := d.rootAttr("data-theme") == theme.CreativeGradient
	r.Details = map[string]any{
		"backdropFilterSupport":       env.BackdropFilter,
		"webkitBackdropFilterSupport": env.WebkitBackdropFilter,
		"themeActive":                 themeActive,
		"glassMedium":                 d.rootStyle("--glass-medium"),
		"glassBlur":                   d.rootStyle("--glass-blur-medium"),
		"glassElementsCount":          len(d.doc.QueryAll(".glass-card")),
	}
	if !env.BackdropFilter && !env.WebkitBackdropFilter {
		r.Status = model.DiagnosticWarning
		r.Message = "Backdrop filter not supported - using fallback styles"
	}
	if !themeActive {
		r.Status = model.DiagnosticFail
		r.Message = "Creative Gradient theme not active"
	}
	return r
}

func (d *Debugger) performance(env Environment) model.DiagnosticResult {
	r := model.DiagnosticResult{Test: "Performance", Status: model.DiagnosticPass}
	perfMode := d.rootHasClass("performance-mode")
	r.Details = map[string]any{
		"glassElements":       len(d.doc.QueryAll(`[class*="glass-"]`)),
		"animatedElements":    len(d.doc.QueryAll(`[class*="animated"], [class*="pulse"], [class*="floating"]`)),
		"devicePixelRatio":    env.DevicePixelRatio,
		"hardwareConcurrency": env.HardwareConcurrency,
		"connectionType":      env.ConnectionType,
		"performanceMode":     perfMode,
	}
	if env.MemoryLimit > 0 {
		r.Details["memoryUsage"] = fmt.Sprintf("%d MB", int(math.Round(env.MemoryUsed/mib)))
		r.Details["memoryLimit"] = fmt.Sprintf("%d MB", int(math.Round(env.MemoryLimit/mib)))
		if env.MemoryUsed/env.MemoryLimit > leakRatio {
			r.Status = model.DiagnosticWarning
			r.Message = "High memory usage detected"
		}
	}
	lowEnd := env.HardwareConcurrency <= 2 || env.ConnectionType == "2g" || env.ViewportWidth < 768
	if lowEnd && !perfMode {
		r.Status = model.DiagnosticWarning
		r.Message = "Consider enabling performance mode for low-end device"
	}
	return r
}

func (d *Debugger) textContrast(env Environment) model.DiagnosticResult {
	r := model.DiagnosticResult{Test: "Text Contrast", Status: model.DiagnosticPass, Details: map[string]any{}}
	for i, el := range d.doc.QueryAll(".hero-name-centered, .hero-title-centered, .hero-description-centered") {
		class, _ := el.Attr("class")
		r.Details[fmt.Sprintf("element_%d", i)] = map[string]any{
			"className":       class,
			"color":           el.Style("color"),
			"backgroundColor": el.Style("background-color"),
			"textShadow":      el.Style("text-shadow"),
		}
	}
	r.Details["highContrastMode"] = d.rootHasClass("high-contrast-mode")
	r.Details["prefersHighContrast"] = env.PrefersHighContrast
	return r
}

func (d *Debugger) accessibility(env Environment) model.DiagnosticResult {
	r := model.DiagnosticResult{Test: "Accessibility", Status: model.DiagnosticPass}
	focusable := d.doc.QueryAll(focusableSelector)
	missingFocus := 0
	for _, el := range focusable {
		if !hasVisibleFocus(el) {
			missingFocus++
		}
	}
	missingAria := 0
	for _, card := range d.doc.QueryAll(".glass-card") {
		if missingARIA(card) {
			missingAria++
		}
	}
	r.Details = map[string]any{
		"focusableElementsCount": len(focusable),
		"missingFocusIndicators": missingFocus,
		"missingAriaAttributes":  missingAria,
		"prefersReducedMotion":   env.PrefersReducedMotion,
		"reducedMotionMode":      d.rootHasClass("reduced-motion"),
	}
	if missingFocus > 0 || missingAria > 0 {
		r.Status = model.DiagnosticWarning
		r.Message = fmt.Sprintf("%d missing focus indicators, %d missing ARIA attributes", missingFocus, missingAria)
	}
	return r
}

func browserCompatibility(env Environment) model.DiagnosticResult {
	r := model.DiagnosticResult{Test: "Browser Compatibility", Status: model.DiagnosticPass}
	r.Details = map[string]any{
		"backdropFilter":   env.BackdropFilter,
		"cssGrid":          env.CSSGrid,
		"flexbox":          env.Flexbox,
		"customProperties": env.CustomProperties,
		"userAgent":        env.UserAgent,
	}
	ua := env.UserAgent
	switch {
	case strings.Contains(ua, "Firefox"):
		r.Details["browser"] = "Firefox"
		if !env.BackdropFilter {
			r.Status = model.DiagnosticWarning
			r.Message = "Firefox fallback styles active"
		}
	case strings.Contains(ua, "Safari") && !strings.Contains(ua, "Chrome"):
		r.Details["browser"] = "Safari"
	case strings.Contains(ua, "Chrome"):
		r.Details["browser"] = "Chrome"
	case strings.Contains(ua, "Edge"):
		r.Details["browser"] = "Edge"
	}
	return r
}

func (d *Debugger) fallbackModeActive() bool {
	return d.rootHasClass("browser-fallback-active")
}

// LogExport is the document written by ExportLogs.
type LogExport struct {
	Timestamp   string                    `json:"timestamp"`
	Diagnostics []model.DiagnosticResult  `json:"diagnostics"`
	Alerts      []model.Alert             `json:"alerts"`
	Metrics     model.PerformanceSnapshot `json:"metrics"`
	ThemeInfo   map[string]any            `json:"themeInfo"`
}

// ExportLogs writes the last diagnostics, the monitor alerts and readings
// as indented JSON.
func (d *Debugger) ExportLogs(w io.Writer, timestamp string) error {
	export := LogExport{
		Timestamp:   timestamp,
		Diagnostics: d.Diagnostics(),
		Alerts:      []model.Alert{},
		ThemeInfo: map[string]any{
			"version":       d.rootStyle("--theme-version"),
			"buildDate":     d.rootStyle("--theme-build-date"),
			"compatibility": d.rootStyle("--theme-compatibility"),
			"fallbackMode":  d.fallbackModeActive(),
		},
	}
	if d.monitor != nil {
		export.Alerts = d.monitor.Alerts()
		export.Metrics = d.monitor.Snapshot()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("export logs: %w", err)
	}
	return nil
}

// ClearAlerts clears the monitor alert history.
func (d *Debugger) ClearAlerts() {
	if d.monitor != nil {
		d.monitor.ClearAlerts()
	}
}
