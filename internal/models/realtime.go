package models

import "time"

// EventType names what happened to a complaint.
type EventType string

const (
	EventComplaintSubmitted EventType = "COMPLAINT_SUBMITTED"
	EventStatusChanged      EventType = "STATUS_CHANGED"
	EventCommentPosted      EventType = "COMMENT_POSTED"
)

// ComplaintEvent is broadcast after a mutation commits. It never carries
// internal notes.
type ComplaintEvent struct {
	Type        EventType `json:"type"`
	ComplaintID string    `json:"complaintId"`
	ActorID     string    `json:"actorId"`
	Status      Status    `json:"status"`
	Details     string    `json:"details,omitempty"`
	At          time.Time `json:"at"`
}
