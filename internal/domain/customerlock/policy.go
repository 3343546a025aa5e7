package customerlock

// Policy decides how a lock is enforced on a document form.
//
// The default blocks saving only for HARD locks and leaves the customer field
// alone; SOFT locks are informational. BlockSoft and ClearOnHard switch on the
// stricter enforcement some deployments want.
type Policy struct {
	BlockSoft   bool // block saving on SOFT locks too
	ClearOnHard bool // clear the customer field on HARD locks
}

// DefaultPolicy returns the reconciled enforcement policy
func DefaultPolicy() Policy {
	return Policy{}
}

// Blocks reports whether saving is blocked at the given severity
func (p Policy) Blocks(sev Severity) bool {
	switch sev {
	case SeverityHard:
		return true
	case SeveritySoft:
		return p.BlockSoft
	default:
		return false
	}
}

// ClearsCustomer reports whether the customer field is cleared at the given severity
func (p Policy) ClearsCustomer(sev Severity) bool {
	return sev == SeverityHard && p.ClearOnHard
}
