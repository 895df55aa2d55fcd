package types

import "strings"

// Severity is the severity level stamped on findings forwarded through a
// sink. Alerts carry no intrinsic severity; the level is configured per sink.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity normalizes a severity string case-insensitively. The second
// return value is false for values outside the enum.
func ParseSeverity(s string) (Severity, bool) {
	switch sev := Severity(strings.ToLower(s)); sev {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return sev, true
	default:
		return "", false
	}
}

// RiskScore maps the severity to the fixed numeric risk score staircase used
// by security-event backends. Unknown severities score 0.
func (s Severity) RiskScore() float64 {
	switch s {
	case SeverityLow:
		return 3.9
	case SeverityMedium:
		return 6.9
	case SeverityHigh:
		return 8.9
	case SeverityCritical:
		return 10.0
	default:
		return 0
	}
}
