package domain

// ApplicationStatus enumerates the hiring stages an application moves
// through. The graph is strictly forward: pending -> under_review ->
// shortlisted -> interview_scheduled -> approved, with rejected reachable
// from every non-terminal state. approved and rejected are terminal.
type ApplicationStatus string

const (
	StatusPending            ApplicationStatus = "pending"
	StatusUnderReview        ApplicationStatus = "under_review"
	StatusShortlisted        ApplicationStatus = "shortlisted"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusApproved           ApplicationStatus = "approved"
	StatusRejected           ApplicationStatus = "rejected"
)

// transitionTable is the static successor map; behavior stays in the
// methods below, the graph itself is pure data.
var transitionTable = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:            {StatusUnderReview, StatusRejected},
	StatusUnderReview:        {StatusShortlisted, StatusRejected},
	StatusShortlisted:        {StatusInterviewScheduled, StatusRejected},
	StatusInterviewScheduled: {StatusApproved, StatusRejected},
	StatusApproved:           {},
	StatusRejected:           {},
}

// AllStatuses lists every status in stage order.
var AllStatuses = []ApplicationStatus{
	StatusPending,
	StatusUnderReview,
	StatusShortlisted,
	StatusInterviewScheduled,
	StatusApproved,
	StatusRejected,
}

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	_, ok := transitionTable[s]
	return ok
}

// IsTerminal reports whether no further transitions are possible.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// AllowedTransitions returns a copy of the legal successor set for s.
// Terminal or unknown statuses yield an empty slice.
func (s ApplicationStatus) AllowedTransitions() []ApplicationStatus {
	next := transitionTable[s]
	out := make([]ApplicationStatus, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo reports whether s -> to is a legal move.
func (s ApplicationStatus) CanTransitionTo(to ApplicationStatus) bool {
	for _, n := range transitionTable[s] {
		if n == to {
			return true
		}
	}
	return false
}
