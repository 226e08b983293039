// Package monitor watches client performance and theme health: frame rate,
// heap usage, Core Web Vitals and accessibility markers. Readings past
// their threshold raise alerts that are kept in memory and forwarded to a
// Reporter. The package also holds the diagnostics battery and the manual
// emergency procedures.
package monitor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/internal/ui/platform"
	"github.com/okian/portfolio/pkg/logger"
	"github.com/okian/portfolio/pkg/metrics"
)

// Poll intervals.
const (
	fpsWindow             = time.Second
	memoryInterval        = 5 * time.Second
	accessibilityInterval = 30 * time.Second
	panelInterval         = time.Second
	defaultReportTimeout  = 5 * time.Second
)

// Root classes written by the monitor.
const (
	ClassHealthWarning = "theme-health-warning"
	ClassHealthError   = "theme-health-error"
	ClassMemoryLeak    = "memory-leak-detected"
)

// Alert messages.
const (
	MsgLowFPS           = "Low FPS detected"
	MsgLCP              = "LCP exceeds target"
	MsgFID              = "FID exceeds target"
	MsgCLS              = "CLS exceeds target"
	MsgHighMemory       = "High memory usage detected"
	MsgMemoryLeak       = "Potential memory leak detected"
	MsgMissingFocus     = "Missing focus indicator"
	MsgMissingARIA      = "Missing ARIA attributes"
	MsgThemeError       = "Theme-related error"
	MsgThemeCSSFailed   = "Theme CSS failed to load"
	themeStylesheetMark = "creative-gradient"
)

// Monitor collects readings and raises alerts. Alerts accumulate until
// ClearAlerts; WithMaxAlerts bounds the history, dropping the oldest.
type Monitor struct {
	clock         platform.Clock
	logger        logger.Logger
	reporter      Reporter
	thresholds    Thresholds
	doc           platform.Document
	memory        MemorySource
	env           Environment
	reportTimeout time.Duration
	maxAlerts     int
	newID         func() string

	mu          sync.Mutex
	metrics     model.PerformanceSnapshot
	cls         float64
	alerts      []model.Alert
	running     bool
	frames      int
	windowStart time.Time
	stops       []func()

	reports sync.WaitGroup
}

// New creates a stopped monitor.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		clock:         platform.RealClock{},
		logger:        logger.NamedOrNop("theme-monitor"),
		thresholds:    DefaultThresholds(),
		reportTimeout: defaultReportTimeout,
		newID:         newID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Start begins the frame window and the periodic polls. Calling it while
// running is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.frames = 0
	m.windowStart = m.clock.Now()
	m.mu.Unlock()
	m.logger.Info(ctx, "theme monitoring started")

	if m.memory != nil {
		m.checkMemory()
		m.addStop(platform.Every(m.clock, memoryInterval, m.checkMemory))
	}
	if m.doc != nil {
		m.checkAccessibility()
		m.addStop(platform.Every(m.clock, accessibilityInterval, m.checkAccessibility))
		m.createPanel()
		m.renderPanel()
		m.addStop(platform.Every(m.clock, panelInterval, m.renderPanel))
	}
}

func (m *Monitor) addStop(fn func()) {
	m.mu.Lock()
	m.stops = append(m.stops, fn)
	m.mu.Unlock()
}

// Stop ends the polls and waits for in-flight reports. It is idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	wasRunning := m.running
	m.running = false
	stops := m.stops
	m.stops = nil
	m.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
	m.reports.Wait()
	if wasRunning {
		m.logger.Info(context.Background(), "theme monitoring stopped")
	}
}

// Running reports whether Start is in effect.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Frame counts one rendered frame. Once a second of frames has been seen
// the frame rate is recomputed.
func (m *Monitor) Frame(now time.Time) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.frames++
	elapsed := now.Sub(m.windowStart)
	if elapsed < fpsWindow {
		m.mu.Unlock()
		return
	}
	fps := math.Round(float64(m.frames) * float64(time.Second) / float64(elapsed))
	m.metrics.FPS = fps
	m.frames = 0
	m.windowStart = now
	m.mu.Unlock()

	metrics.UpdateVital("fps", fps)
	if fps < m.thresholds.FPS {
		m.Alert(MsgLowFPS, map[string]any{"fps": fps, "threshold": m.thresholds.FPS})
	}
}

// ObserveLCP records a largest-contentful-paint entry.
func (m *Monitor) ObserveLCP(startMs float64) {
	m.observeLCP(startMs)
}

func (m *Monitor) observeLCP(startMs float64) []model.Alert {
	m.mu.Lock()
	m.metrics.LCPMs = startMs
	m.mu.Unlock()
	metrics.UpdateVital("lcp", startMs)
	if startMs > m.thresholds.LCPMs {
		return []model.Alert{m.Alert(MsgLCP, map[string]any{"lcp": startMs, "threshold": m.thresholds.LCPMs})}
	}
	return nil
}

// ObserveFirstInput records a first-input entry.
func (m *Monitor) ObserveFirstInput(startMs, processingStartMs float64) {
	m.observeFID(processingStartMs - startMs)
}

func (m *Monitor) observeFID(fid float64) []model.Alert {
	m.mu.Lock()
	m.metrics.FIDMs = fid
	m.mu.Unlock()
	metrics.UpdateVital("fid", fid)
	if fid > m.thresholds.FIDMs {
		return []model.Alert{m.Alert(MsgFID, map[string]any{"fid": fid, "threshold": m.thresholds.FIDMs})}
	}
	return nil
}

// ObserveLayoutShift adds a layout shift to the cumulative score. Shifts
// right after user input do not count.
func (m *Monitor) ObserveLayoutShift(value float64, hadRecentInput bool) {
	m.mu.Lock()
	if !hadRecentInput {
		m.cls += value
	}
	cls := m.cls
	m.metrics.CLS = cls
	m.mu.Unlock()
	m.checkCLS(cls)
}

func (m *Monitor) checkCLS(cls float64) []model.Alert {
	metrics.UpdateVital("cls", cls)
	if cls > m.thresholds.CLS {
		return []model.Alert{m.Alert(MsgCLS, map[string]any{"cls": cls, "threshold": m.thresholds.CLS})}
	}
	return nil
}

// ObserveError raises an alert for script errors that mention the theme.
func (m *Monitor) ObserveError(message, filename string, line int) bool {
	if !containsAny(message, "theme", "glass", themeStylesheetMark) {
		return false
	}
	m.Alert(MsgThemeError, map[string]any{"message": message, "filename": filename, "lineno": line})
	return true
}

// ObserveStylesheetError raises an alert when the theme stylesheet fails.
func (m *Monitor) ObserveStylesheetError(href string) bool {
	if !containsAny(href, themeStylesheetMark) {
		return false
	}
	m.Alert(MsgThemeCSSFailed, map[string]any{"href": href})
	return true
}

func (m *Monitor) checkMemory() {
	used, limit, ok := m.memory.Memory()
	if ok {
		m.ObserveMemory(used, limit)
	}
}

// ObserveMemory records heap usage against the threshold and, when the
// limit is known, against the leak ratio.
func (m *Monitor) ObserveMemory(used, limit float64) {
	m.observeMemory(used, limit)
}

func (m *Monitor) observeMemory(used, limit float64) []model.Alert {
	m.mu.Lock()
	m.metrics.MemoryBytes = used
	m.mu.Unlock()
	metrics.UpdateVital("memory_bytes", used)

	var raised []model.Alert
	if used > m.thresholds.MemoryBytes {
		raised = append(raised, m.Alert(MsgHighMemory, map[string]any{
			"used":      fmt.Sprintf("%d MB", int(math.Round(used/mib))),
			"threshold": fmt.Sprintf("%d MB", int(math.Round(m.thresholds.MemoryBytes/mib))),
		}))
	}
	if limit > 0 && used/limit > leakRatio {
		raised = append(raised, m.Alert(MsgMemoryLeak, map[string]any{
			"usage": fmt.Sprintf("%d%%", int(math.Round(used/limit*100))),
		}))
		if root := m.root(); root != nil {
			root.AddClass(ClassMemoryLeak)
		}
	}
	return raised
}

// RecordSnapshot applies a full set of readings, as sent by a browser, and
// returns the alerts it raised. Zero readings are skipped; CLS is taken as
// the page total.
func (m *Monitor) RecordSnapshot(s model.PerformanceSnapshot, memoryLimit float64) []model.Alert {
	var raised []model.Alert
	if s.FPS > 0 {
		m.mu.Lock()
		m.metrics.FPS = s.FPS
		m.mu.Unlock()
		metrics.UpdateVital("fps", s.FPS)
		if s.FPS < m.thresholds.FPS {
			raised = append(raised, m.Alert(MsgLowFPS, map[string]any{"fps": s.FPS, "threshold": m.thresholds.FPS}))
		}
	}
	if s.MemoryBytes > 0 {
		raised = append(raised, m.observeMemory(s.MemoryBytes, memoryLimit)...)
	}
	if s.LCPMs > 0 {
		raised = append(raised, m.observeLCP(s.LCPMs)...)
	}
	if s.FIDMs > 0 {
		raised = append(raised, m.observeFID(s.FIDMs)...)
	}
	if s.CLS > 0 {
		m.mu.Lock()
		m.cls = s.CLS
		m.metrics.CLS = s.CLS
		m.mu.Unlock()
		raised = append(raised, m.checkCLS(s.CLS)...)
	}
	return raised
}

// Alert raises an alert, updates the page health indicator and sends the
// alert to the reporter in the background.
func (m *Monitor) Alert(message string, data map[string]any) model.Alert {
	a := model.Alert{
		ID:        m.newID(),
		Timestamp: m.clock.Now().UTC().Format(model.SubmissionTimeLayout),
		Message:   message,
		Data:      data,
		Severity:  SeverityOf(message),
	}
	m.record(a)
	m.updateHealth(a.Severity)
	return a
}

// Ingest records an alert raised elsewhere, such as by a browser. Missing
// id, timestamp and severity are filled in.
func (m *Monitor) Ingest(a model.Alert) model.Alert {
	if a.ID == "" {
		a.ID = m.newID()
	}
	if a.Timestamp == "" {
		a.Timestamp = m.clock.Now().UTC().Format(model.SubmissionTimeLayout)
	}
	if a.Severity == "" {
		a.Severity = SeverityOf(a.Message)
	}
	m.record(a)
	return a
}

func (m *Monitor) record(a model.Alert) {
	m.mu.Lock()
	m.alerts = append(m.alerts, a)
	if m.maxAlerts > 0 && len(m.alerts) > m.maxAlerts {
		n := copy(m.alerts, m.alerts[len(m.alerts)-m.maxAlerts:])
		clear(m.alerts[n:])
		m.alerts = m.alerts[:n]
	}
	m.mu.Unlock()

	metrics.RecordAlert(string(a.Severity))
	m.logger.Warn(context.Background(), "theme alert",
		logger.String("id", a.ID),
		logger.String("message", a.Message),
		logger.String("severity", string(a.Severity)),
		logger.Any("data", a.Data),
	)
	m.report(a)
}

func (m *Monitor) report(a model.Alert) {
	if m.reporter == nil {
		return
	}
	m.reports.Add(1)
	go func() {
		defer m.reports.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.reportTimeout)
		defer cancel()
		if err := m.reporter.Deliver(ctx, a); err != nil {
			m.logger.Error(ctx, "failed to send alert to monitoring service",
				logger.String("id", a.ID),
				logger.Error(err),
			)
		}
	}()
}

// Flush waits for background reports to finish.
func (m *Monitor) Flush() {
	m.reports.Wait()
}

// Alerts returns the retained alerts raised since the last ClearAlerts.
func (m *Monitor) Alerts() []model.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// ClearAlerts drops the alert history.
func (m *Monitor) ClearAlerts() {
	m.mu.Lock()
	m.alerts = nil
	m.mu.Unlock()
}

// Snapshot returns the latest readings.
func (m *Monitor) Snapshot() model.PerformanceSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}

// Thresholds returns the active limits.
func (m *Monitor) Thresholds() Thresholds { return m.thresholds }

func (m *Monitor) root() platform.Element {
	if m.doc == nil {
		return nil
	}
	return m.doc.Root()
}

func (m *Monitor) updateHealth(sev model.Severity) {
	if m.doc == nil {
		return
	}
	status := m.doc.Query(".theme-health-status")
	root := m.doc.Root()
	if status == nil || root == nil {
		return
	}
	root.RemoveClass(ClassHealthWarning, ClassHealthError)
	switch sev {
	case model.SeverityHigh:
		root.AddClass(ClassHealthError)
		status.SetText("!")
	case model.SeverityMedium:
		root.AddClass(ClassHealthWarning)
		status.SetText("⚠")
	default:
		status.SetText("✓")
	}
}

// ThemeInfo describes the page theme state in a Report.
type ThemeInfo struct {
	Active          string `json:"active"`
	GlassSupport    bool   `json:"glassSupport"`
	GridSupport     bool   `json:"gridSupport"`
	PerformanceMode bool   `json:"performanceMode"`
	DebugMode       bool   `json:"debugMode"`
}

// Report is the monitoring summary.
type Report struct {
	Timestamp  string                    `json:"timestamp"`
	Metrics    model.PerformanceSnapshot `json:"metrics"`
	Thresholds Thresholds                `json:"thresholds"`
	Alerts     []model.Alert             `json:"alerts"`
	ThemeInfo  ThemeInfo                 `json:"themeInfo"`
}

// Report summarises readings, limits, alerts and theme state.
func (m *Monitor) Report() Report {
	r := Report{
		Timestamp:  m.clock.Now().UTC().Format(model.SubmissionTimeLayout),
		Metrics:    m.Snapshot(),
		Thresholds: m.thresholds,
		Alerts:     m.Alerts(),
		ThemeInfo: ThemeInfo{
			GlassSupport: m.env.BackdropFilter,
			GridSupport:  m.env.CSSGrid,
		},
	}
	if root := m.root(); root != nil {
		r.ThemeInfo.Active, _ = root.Attr("data-theme")
		r.ThemeInfo.PerformanceMode = root.HasClass("performance-mode")
		r.ThemeInfo.DebugMode = root.HasClass("debug-mode")
	}
	return r
}
