// Package model contains domain models passed between layers.
package model

import "time"

// SubmissionTimeLayout is the ISO-8601 form used for SubmittedAt.
const SubmissionTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// SubmissionRecord is one accepted portfolio request as persisted on disk.
// Records are append-only; duplicates are allowed.
type SubmissionRecord struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	ResumeHeader string `json:"resumeHeader"`
	Skills       string `json:"skills"`
	SubmittedAt  string `json:"submittedAt"`
}

// SubmittedTime parses SubmittedAt.
func (r SubmissionRecord) SubmittedTime() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, r.SubmittedAt)
}

// ThemeDescriptor describes one entry of the fixed theme catalog.
type ThemeDescriptor struct {
	Name           string `json:"name"`
	DisplayName    string `json:"displayName"`
	Description    string `json:"description"`
	PrimaryColor   string `json:"primary"`
	SecondaryColor string `json:"secondary"`
	AccentColor    string `json:"accent"`
}

// Colors returns primary, secondary and accent in that order.
func (t ThemeDescriptor) Colors() []string {
	return []string{t.PrimaryColor, t.SecondaryColor, t.AccentColor}
}

// TimelineEntry is one step of an entrance animation sequence.
type TimelineEntry struct {
	Selector string        `json:"selector"`
	Delay    time.Duration `json:"delay"`
	Duration time.Duration `json:"duration"`
	Effect   string        `json:"effect"`
	Easing   string        `json:"easing"`
}

// NotificationType classifies toast notifications.
type NotificationType string

// Notification types.
const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// Notification is a transient toast.
type Notification struct {
	ID         string           `json:"id"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Duration   time.Duration    `json:"duration"`
	Persistent bool             `json:"persistent"`
}

// Modal is one entry of the modal stack.
type Modal struct {
	ID         string         `json:"id"`
	Component  string         `json:"component"`
	Props      map[string]any `json:"props,omitempty"`
	Persistent bool           `json:"persistent"`
}

// PerformanceSnapshot holds the latest client performance readings.
type PerformanceSnapshot struct {
	FPS         float64 `json:"fps"`
	MemoryBytes float64 `json:"memoryBytes"`
	LCPMs       float64 `json:"lcpMs"`
	FIDMs       float64 `json:"fidMs"`
	CLS         float64 `json:"cls"`
}

// Severity of a monitor alert.
type Severity string

// Alert severities.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Alert is raised by the theme monitor when a reading crosses a threshold.
type Alert struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Severity  Severity       `json:"severity"`
}

// DiagnosticStatus is the outcome of one diagnostic check.
type DiagnosticStatus string

// Diagnostic outcomes.
const (
	DiagnosticPass    DiagnosticStatus = "PASS"
	DiagnosticWarning DiagnosticStatus = "WARNING"
	DiagnosticFail    DiagnosticStatus = "FAIL"
)

// DiagnosticResult is one row of the diagnostics report.
type DiagnosticResult struct {
	Test    string           `json:"test"`
	Status  DiagnosticStatus `json:"status"`
	Details map[string]any   `json:"details"`
	Message string           `json:"message,omitempty"`
}
