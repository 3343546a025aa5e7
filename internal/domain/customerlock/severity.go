// Package customerlock holds the customer lock domain: lock severities, the
// per-document form lock state and the customer lock aggregate maintained by
// the overdue scan.
package customerlock

import (
	"fmt"
	"strings"
)

// Severity is the lock tier of a customer account
type Severity string

const (
	SeverityNone Severity = "none"
	SeveritySoft Severity = "soft" // 40-49 days past due, informational
	SeverityHard Severity = "hard" // 50+ days past due, blocking
)

// Days-past-due thresholds for each tier
const (
	SoftLockThresholdDays = 40
	HardLockThresholdDays = 50
)

// Status descriptors stored on the customer record
const (
	StatusSoftLocked = "Soft Locked"
	StatusHardLocked = "Hard Locked"
)

// ParseSeverity parses the explicit severity enum returned by the status service.
// An empty value maps to SeverityNone.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case "", SeverityNone:
		return SeverityNone, nil
	case SeveritySoft:
		return SeveritySoft, nil
	case SeverityHard:
		return SeverityHard, nil
	default:
		return SeverityNone, fmt.Errorf("unknown lock severity %q", s)
	}
}

// SeverityFromStatusText derives the severity of a locked customer from a
// free-text status descriptor. Only used for status services that predate the
// explicit severity field: anything mentioning "hard" is HARD, the rest SOFT.
func SeverityFromStatusText(status string) Severity {
	if strings.Contains(strings.ToLower(status), "hard") {
		return SeverityHard
	}
	return SeveritySoft
}

// SeverityForDays returns the lock tier for the given number of days past due
func SeverityForDays(days int) Severity {
	switch {
	case days >= HardLockThresholdDays:
		return SeverityHard
	case days >= SoftLockThresholdDays:
		return SeveritySoft
	default:
		return SeverityNone
	}
}

// IsLocked reports whether the severity represents a lock
func (s Severity) IsLocked() bool {
	return s == SeveritySoft || s == SeverityHard
}

// StatusText returns the status descriptor stored on the customer record
func (s Severity) StatusText() string {
	switch s {
	case SeverityHard:
		return StatusHardLocked
	case SeveritySoft:
		return StatusSoftLocked
	default:
		return ""
	}
}

// String implements fmt.Stringer
func (s Severity) String() string {
	if s == "" {
		return string(SeverityNone)
	}
	return string(s)
}
