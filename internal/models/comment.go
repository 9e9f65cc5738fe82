package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is one message of a complaint thread. Comments are append-only.
type Comment struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	ComplaintID string    `gorm:"type:uuid;not null;index:idx_comment_thread" json:"complaintId"`
	AuthorID    string    `gorm:"type:uuid;not null" json:"authorId"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time `gorm:"index:idx_comment_thread" json:"createdAt"`

	Author    *User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;" json:"-"`
	Complaint *Complaint `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// CommentView is a comment with its author denormalized for display.
type CommentView struct {
	ID          string    `json:"id"`
	ComplaintID string    `json:"complaintId"`
	AuthorID    string    `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	AuthorRole  Role      `json:"authorRole"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

// View flattens c. Author must be loaded for the name and role to be set.
func (c *Comment) View() CommentView {
	v := CommentView{
		ID:          c.ID,
		ComplaintID: c.ComplaintID,
		AuthorID:    c.AuthorID,
		Content:     c.Content,
		CreatedAt:   c.CreatedAt,
	}
	if c.Author != nil {
		v.AuthorName = c.Author.Name
		v.AuthorRole = c.Author.Role
	}
	return v
}
