package domain

import "time"

// Severity is the dashboard alert level of an active ticket.
type Severity string

const (
	SeverityNormal  Severity = "normal"
	SeverityWarning Severity = "warning"
	SeverityOverdue Severity = "overdue"
)

// Classify compares the estimated exit with now. It keeps no state and must be
// called against the current clock on every render.
func Classify(estimatedExit, now time.Time, warningMinutes int) Severity {
	diffMinutes := estimatedExit.Sub(now).Minutes()
	switch {
	case diffMinutes < 0:
		return SeverityOverdue
	case diffMinutes < float64(warningMinutes):
		return SeverityWarning
	default:
		return SeverityNormal
	}
}
