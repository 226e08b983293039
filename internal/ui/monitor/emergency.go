package monitor

import (
	"context"
	"time"

	"github.com/okian/portfolio/internal/ui/platform"
	"github.com/okian/portfolio/pkg/logger"
)

// Emergency stylesheet and notification ids.
const (
	PerformanceStyleID   = "emergency-performance-style"
	AccessibilityStyleID = "emergency-accessibility-style"
	NotificationID       = "emergency-notification"
	notificationLifetime = 10 * time.Second
)

const performanceCSS = `* {
  animation: none !important;
  transition: none !important;
  transform: none !important;
}`

const accessibilityCSS = `.emergency-high-contrast * {
  background: white !important;
  color: black !important;
  border: 1px solid black !important;
  backdrop-filter: none !important;
  -webkit-backdrop-filter: none !important;
}`

const notificationStyle = "position: fixed; top: 20px; left: 50%; transform: translateX(-50%); " +
	"background: #ff0000; color: white; padding: 1rem 2rem; border-radius: 4px; z-index: 10000; " +
	"font-family: monospace; font-size: 14px; box-shadow: 0 4px 12px rgba(0,0,0,0.3)"

// Emergency holds the manual escape hatches. None of them can be undone
// short of a reload.
type Emergency struct {
	doc    platform.Document
	clock  platform.Clock
	logger logger.Logger
}

// NewEmergency creates the procedures for doc.
func NewEmergency(doc platform.Document, clock platform.Clock, l logger.Logger) *Emergency {
	if clock == nil {
		clock = platform.RealClock{}
	}
	if l == nil {
		l = logger.NamedOrNop("theme-emergency")
	}
	return &Emergency{doc: doc, clock: clock, logger: l}
}

// Rollback strips the theme and falls back to plain black on white.
func (e *Emergency) Rollback() {
	ctx := context.Background()
	e.logger.Warn(ctx, "initiating emergency theme rollback")
	if root := e.doc.Root(); root != nil {
		root.RemoveAttr("data-theme")
	}
	for _, link := range e.doc.QueryAll(`link[href*="creative-gradient"]`) {
		link.Remove()
	}
	if body := e.doc.Body(); body != nil {
		body.SetStyle("background", "#ffffff")
		body.SetStyle("color", "#000000")
	}
	e.notify("Theme temporarily disabled due to technical issues")
	e.logger.Warn(ctx, "emergency rollback complete")
}

// PerformanceMode disables every animation and transition.
func (e *Emergency) PerformanceMode() {
	e.logger.Warn(context.Background(), "activating emergency performance mode")
	e.addStyle(PerformanceStyleID, performanceCSS)
	if root := e.doc.Root(); root != nil {
		root.AddClass("emergency-mode")
	}
}

// AccessibilityMode forces a high contrast style.
func (e *Emergency) AccessibilityMode() {
	e.logger.Warn(context.Background(), "activating emergency accessibility mode")
	if root := e.doc.Root(); root != nil {
		root.AddClass("emergency-high-contrast")
	}
	e.addStyle(AccessibilityStyleID, accessibilityCSS)
}

func (e *Emergency) addStyle(id, css string) {
	head := e.doc.Head()
	if head == nil || e.doc.Query("#"+id) != nil {
		return
	}
	head.AppendHTML(`<style id="` + id + `"></style>`)
	if style := e.doc.Query("#" + id); style != nil {
		style.SetText(css)
	}
}

func (e *Emergency) notify(message string) {
	body := e.doc.Body()
	if body == nil {
		return
	}
	if old := e.doc.Query("#" + NotificationID); old != nil {
		old.Remove()
	}
	body.AppendHTML(`<div id="` + NotificationID + `" style="` + notificationStyle + `"></div>`)
	n := e.doc.Query("#" + NotificationID)
	if n == nil {
		return
	}
	n.SetText(message)
	e.clock.AfterFunc(notificationLifetime, n.Remove)
}
