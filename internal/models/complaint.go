package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Complaint is a ticket raised by a complainant and worked by the officers of
// its assigned department.
type Complaint struct {
	ID                string  `gorm:"primaryKey;type:uuid" json:"id"`
	Title             string  `gorm:"not null" json:"title"`
	Description       string  `gorm:"type:text;not null" json:"description"`
	Category          string  `gorm:"not null;index" json:"category"`
	Status            Status  `gorm:"type:text;not null;default:SUBMITTED;index" json:"status"`
	ComplainantID     string  `gorm:"type:uuid;not null;index" json:"complainantId"`
	AssignedDeptID    *string `gorm:"type:uuid;index" json:"assignedDeptId"`
	AssignedOfficerID *string `gorm:"type:uuid;index" json:"assignedOfficerId"`
	ResolutionSummary string  `gorm:"type:text" json:"resolutionSummary,omitempty"`
	// InternalNotes are visible to officers and admins only.
	InternalNotes    string    `gorm:"type:text" json:"internalNotes,omitempty"`
	EscalationReason string    `gorm:"type:text" json:"escalationReason,omitempty"`
	CreatedAt        time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	Complainant     *User        `gorm:"foreignKey:ComplainantID;constraint:OnDelete:CASCADE;" json:"complainant,omitempty"`
	AssignedDept    *Department  `gorm:"foreignKey:AssignedDeptID;constraint:OnDelete:SET NULL;" json:"assignedDept,omitempty"`
	AssignedOfficer *User        `gorm:"foreignKey:AssignedOfficerID;constraint:OnDelete:SET NULL;" json:"assignedOfficer,omitempty"`
	Attachments     []Attachment `gorm:"constraint:OnDelete:CASCADE;" json:"attachments"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// Attachment is a file uploaded elsewhere and linked to a complaint at
// submission time. Immutable once created.
type Attachment struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	ComplaintID string    `gorm:"type:uuid;not null;index" json:"complaintId"`
	URL         string    `gorm:"not null" json:"url"`
	Name        string    `gorm:"not null" json:"name"`
	Size        int64     `gorm:"not null" json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}
