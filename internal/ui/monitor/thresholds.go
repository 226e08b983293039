package monitor

import (
	"strings"

	"github.com/okian/portfolio/internal/domain/model"
)

const mib = 1 << 20

// Thresholds are the limits past which a reading raises an alert.
type Thresholds struct {
	FPS         float64 `json:"fps"`
	MemoryBytes float64 `json:"memory"`
	LCPMs       float64 `json:"lcp"`
	FIDMs       float64 `json:"fid"`
	CLS         float64 `json:"cls"`
}

// DefaultThresholds returns the stock limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FPS:         30,
		MemoryBytes: 50 * mib,
		LCPMs:       2500,
		FIDMs:       100,
		CLS:         0.1,
	}
}

// leakRatio is the heap usage share that counts as a potential leak.
const leakRatio = 0.8

// SeverityOf classifies an alert message by keyword.
func SeverityOf(message string) model.Severity {
	m := strings.ToLower(message)
	switch {
	case containsAny(m, "error", "critical", "failed"):
		return model.SeverityHigh
	case containsAny(m, "performance", "memory", "accessibility"):
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
