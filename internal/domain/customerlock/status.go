package customerlock

// LockStatus is the answer of the status service for one customer
type LockStatus struct {
	Locked      bool     `json:"locked"`
	Severity    Severity `json:"severity"`
	Status      string   `json:"status,omitempty"` // human-readable descriptor, e.g. "Hard Locked"
	DaysOverdue int      `json:"days_overdue,omitempty"`
}

// Unlocked returns the status used for unlocked, unknown and fail-open cases
func Unlocked() LockStatus {
	return LockStatus{Severity: SeverityNone}
}

// Normalize makes Locked and Severity agree with each other. A locked status
// without an explicit severity falls back to the status text; an unlocked
// status never carries a severity.
func (s LockStatus) Normalize() LockStatus {
	if !s.Locked {
		return LockStatus{Severity: SeverityNone, Status: s.Status, DaysOverdue: s.DaysOverdue}
	}
	if !s.Severity.IsLocked() {
		s.Severity = SeverityFromStatusText(s.Status)
	}
	return s
}
