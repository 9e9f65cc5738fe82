package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions recorded against a complaint.
const (
	AuditActionSubmitted = "SUBMITTED"
	auditStatusPrefix    = "STATUS_CHANGED_TO_"
)

// StatusChangedAction is the audit action tag for a transition into s.
func StatusChangedAction(s Status) string {
	return auditStatusPrefix + string(s)
}

// AuditLog is an immutable record of one mutating operation on a complaint.
type AuditLog struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	ComplaintID string         `gorm:"type:uuid;not null;index:idx_audit_complaint" json:"complaintId"`
	Action      string         `gorm:"type:text;not null" json:"action"`
	ActorID     string         `gorm:"type:uuid;not null;index" json:"actorId"`
	Details     string         `gorm:"type:text" json:"details"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"index:idx_audit_complaint" json:"createdAt"`

	Complaint *Complaint `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}
