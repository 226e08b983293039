package monitor

import (
	"fmt"
	"math"
	"strconv"

	"github.com/okian/portfolio/internal/ui/platform"
)

const focusableSelector = `button, [href], input, select, textarea, [tabindex]:not([tabindex="-1"])`

// hasVisibleFocus reports whether el shows a focus ring. Headless documents
// have no computed styles, so only an inline outline of none without a box
// shadow counts as missing.
func hasVisibleFocus(el platform.Element) bool {
	if el.HasClass("glass-focusable") {
		return true
	}
	outline := el.Style("outline")
	shadow := el.Style("box-shadow")
	outlineOff := outline == "none" || outline == "0"
	shadowOff := shadow == "" || shadow == "none"
	return !(outlineOff && shadowOff)
}

func missingARIA(el platform.Element) bool {
	_, role := el.Attr("role")
	_, label := el.Attr("aria-label")
	return !role && !label
}

func (m *Monitor) checkAccessibility() {
	for _, el := range m.doc.QueryAll(focusableSelector) {
		if !hasVisibleFocus(el) {
			class, _ := el.Attr("class")
			m.Alert(MsgMissingFocus, map[string]any{"element": el.Tag(), "className": class})
		}
	}
	for _, card := range m.doc.QueryAll(".glass-card") {
		if missingARIA(card) {
			m.Alert(MsgMissingARIA, map[string]any{"element": "glass-card", "suggestion": "Add role or aria-label"})
		}
	}
}

// PanelState is what the debug overlay shows.
type PanelState struct {
	Theme             string  `json:"theme"`
	GlassSupport      bool    `json:"glassSupport"`
	PerformanceMode   bool    `json:"performanceMode"`
	AnimationSettings string  `json:"animationSettings"`
	FPS               float64 `json:"fps"`
	FPSWarning        bool    `json:"fpsWarning"`
	LCPMs             float64 `json:"lcpMs"`
	LCPWarning        bool    `json:"lcpWarning"`
	FIDMs             float64 `json:"fidMs"`
	FIDWarning        bool    `json:"fidWarning"`
	CLS               float64 `json:"cls"`
	CLSWarning        bool    `json:"clsWarning"`
	MemoryMB          int     `json:"memoryMb"`
	MemoryWarning     bool    `json:"memoryWarning"`
}

// Panel computes the debug overlay values.
func (m *Monitor) Panel() PanelState {
	s := m.Snapshot()
	t := m.thresholds
	p := PanelState{
		Theme:             "none",
		GlassSupport:      m.env.BackdropFilter,
		AnimationSettings: "enabled",
		FPS:               s.FPS,
		FPSWarning:        s.FPS < t.FPS,
		LCPMs:             s.LCPMs,
		LCPWarning:        s.LCPMs > t.LCPMs,
		FIDMs:             s.FIDMs,
		FIDWarning:        s.FIDMs > t.FIDMs,
		CLS:               s.CLS,
		CLSWarning:        s.CLS > t.CLS,
		MemoryMB:          int(math.Round(s.MemoryBytes / mib)),
		MemoryWarning:     s.MemoryBytes > t.MemoryBytes,
	}
	if root := m.root(); root != nil {
		if v, ok := root.Attr("data-theme"); ok && v != "" {
			p.Theme = v
		}
		if v, ok := root.Attr("data-animations"); ok && v != "" {
			p.AnimationSettings = v
		}
		p.PerformanceMode = root.HasClass("performance-mode")
	}
	return p
}

const panelHTML = `<div class="debug-panel">
  <h4>Theme Debug Panel</h4>
  <div>Theme: <span id="current-theme">--</span></div>
  <div>Glass Support: <span id="glass-support">--</span></div>
  <div>Performance Mode: <span id="performance-mode">--</span></div>
  <div>Animation Settings: <span id="animation-settings">--</span></div>
</div>
<div class="performance-metrics">
  <h4>Performance Metrics</h4>
  <div><span class="metric-label">FPS:</span> <span id="fps-counter" class="metric-value">--</span></div>
  <div><span class="metric-label">LCP:</span> <span id="lcp-value" class="metric-value">--</span>ms</div>
  <div><span class="metric-label">FID:</span> <span id="fid-value" class="metric-value">--</span>ms</div>
  <div><span class="metric-label">CLS:</span> <span id="cls-value" class="metric-value">--</span></div>
  <div><span class="metric-label">Memory:</span> <span id="memory-usage" class="metric-value">--</span>MB</div>
</div>
<div class="theme-health-status" title="Theme Health Status">✓</div>`

func (m *Monitor) createPanel() {
	if m.doc.Query(".debug-panel") != nil {
		return
	}
	if body := m.doc.Body(); body != nil {
		body.AppendHTML(panelHTML)
	}
}

func (m *Monitor) renderPanel() {
	p := m.Panel()
	set := func(id, text string) {
		if el := m.doc.Query("#" + id); el != nil {
			el.SetText(text)
		}
	}
	metric := func(id, text string, warn bool) {
		el := m.doc.Query("#" + id)
		if el == nil {
			return
		}
		el.SetText(text)
		class := "metric-value"
		if warn {
			class += " metric-warning"
		}
		el.SetAttr("class", class)
	}

	set("current-theme", p.Theme)
	set("glass-support", yesNo(p.GlassSupport, "Yes", "No"))
	set("performance-mode", yesNo(p.PerformanceMode, "On", "Off"))
	set("animation-settings", p.AnimationSettings)
	metric("fps-counter", strconv.FormatFloat(p.FPS, 'f', -1, 64), p.FPSWarning)
	metric("lcp-value", strconv.Itoa(int(math.Round(p.LCPMs))), p.LCPWarning)
	metric("fid-value", strconv.Itoa(int(math.Round(p.FIDMs))), p.FIDWarning)
	metric("cls-value", fmt.Sprintf("%.3f", p.CLS), p.CLSWarning)
	metric("memory-usage", strconv.Itoa(p.MemoryMB), p.MemoryWarning)
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
