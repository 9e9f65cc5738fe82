package models

// Status is the lifecycle state of a complaint.
type Status string

const (
	StatusSubmitted  Status = "SUBMITTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusEscalated  Status = "ESCALATED"
	StatusResolved   Status = "RESOLVED"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusSubmitted, StatusInProgress, StatusEscalated, StatusResolved}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusInProgress, StatusEscalated, StatusResolved:
		return true
	default:
		return false
	}
}

// IsTransitionTarget reports whether s may be requested as the target of a
// transition. SUBMITTED is only ever the initial state.
func (s Status) IsTransitionTarget() bool {
	switch s {
	case StatusInProgress, StatusEscalated, StatusResolved:
		return true
	case StatusSubmitted:
		return false
	default:
		return false
	}
}

// CanTransitionTo reports whether the lifecycle graph has an edge s -> next.
//
//	SUBMITTED   -> IN_PROGRESS
//	IN_PROGRESS -> RESOLVED | ESCALATED
//	ESCALATED   -> IN_PROGRESS | RESOLVED
//	RESOLVED    -> (terminal)
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusSubmitted:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusResolved || next == StatusEscalated
	case StatusEscalated:
		return next == StatusInProgress || next == StatusResolved
	case StatusResolved:
		return false
	default:
		return false
	}
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusResolved
}
