package customerlock

// FormLockState is the transient lock state of one document being edited.
// It lives only as long as the editing session and is never persisted.
type FormLockState struct {
	// LastWarnedSeverity is the last severity already announced with a notice.
	// SeverityNone means nothing was announced yet.
	LastWarnedSeverity Severity
	// Blocked is consulted at save time
	Blocked bool
	// Banner is the banner currently displayed, zero if none
	Banner Banner
}

// Decision is what the form has to render after a status was applied
type Decision struct {
	Banner        Banner  // banner to render when ShowBanner is set
	ShowBanner    bool    // banner changed and must be rendered
	ClearBanner   bool    // banner must be removed
	Notice        *Notice // one-time notice, nil if already announced
	ClearCustomer bool    // customer field must be emptied
	Blocked       bool    // save gate after this decision
}

// Reset returns the state to unknown/unlocked. The returned decision clears the banner.
func (s *FormLockState) Reset() Decision {
	*s = FormLockState{LastWarnedSeverity: SeverityNone}
	return Decision{ClearBanner: true}
}

// Apply folds a status answer into the state for the given document and
// returns what has to change on the form. Repeating the same status yields a
// decision with nothing new to render.
func (s *FormLockState) Apply(status LockStatus, doc DocumentType, policy Policy) Decision {
	status = status.Normalize()
	if !status.Locked {
		return s.Reset()
	}

	sev := status.Severity
	banner, _ := BannerFor(sev)

	d := Decision{Banner: banner}
	if banner != s.Banner {
		d.ShowBanner = true
		s.Banner = banner
	}
	if sev != s.LastWarnedSeverity {
		n := NoticeFor(doc, sev)
		d.Notice = &n
		s.LastWarnedSeverity = sev
	}

	s.Blocked = policy.Blocks(sev)
	d.Blocked = s.Blocked
	d.ClearCustomer = policy.ClearsCustomer(sev)
	return d
}
