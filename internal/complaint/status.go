package complaint

// Status is the complaint lifecycle state. Transitions are forward-only along
// the investigative path; rejected is terminal and reachable from any
// non-terminal state.
type Status string

const (
	StatusSubmitted          Status = "submitted"
	StatusVerified           Status = "verified"
	StatusUnderInvestigation Status = "under_investigation"
	StatusReportFiled        Status = "report_filed"
	StatusClosed             Status = "closed"
	StatusRejected           Status = "rejected"
)

// statusRank orders the investigative path for the monotonicity check.
var statusRank = map[Status]int{
	StatusSubmitted:          0,
	StatusVerified:           1,
	StatusUnderInvestigation: 2,
	StatusReportFiled:        3,
	StatusClosed:             4,
}

// ValidStatus reports whether s is a known status.
func ValidStatus(s Status) bool {
	if s == StatusRejected {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// IsTerminal reports whether s admits no outbound transitions.
func IsTerminal(s Status) bool {
	return s == StatusClosed || s == StatusRejected
}

// CanTransition reports whether moving from one status to another is legal.
// Rules: terminal states never transition; rejected and closed are reachable
// from any non-terminal state; otherwise the investigative path only moves
// forward, and report_filed is only reachable through the report-filing
// workflow (never by a bare status update).
func CanTransition(from, to Status) bool {
	if IsTerminal(from) {
		return false
	}
	if from == to {
		return false
	}
	if to == StatusRejected || to == StatusClosed {
		return true
	}
	if to == StatusReportFiled {
		// Reserved for the report-filing workflow; see CanFileReport.
		return false
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// CanFileReport reports whether an incident report may be filed at the
// current status.
func CanFileReport(from Status) bool {
	switch from {
	case StatusSubmitted, StatusVerified, StatusUnderInvestigation:
		return true
	default:
		return false
	}
}

// LedgerStatusCode is the numeric status encoding shared with both ledgers.
func LedgerStatusCode(s Status) uint8 {
	switch s {
	case StatusSubmitted:
		return 0
	case StatusVerified:
		return 1
	case StatusUnderInvestigation:
		return 2
	case StatusReportFiled:
		return 3
	case StatusClosed:
		return 4
	default:
		return 5
	}
}
