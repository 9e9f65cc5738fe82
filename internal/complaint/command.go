package complaint

import (
	"strings"
	"unicode/utf8"

	"github.com/shahmeerabdul/GIKomplain/internal/apperr"
	"github.com/shahmeerabdul/GIKomplain/internal/config"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
)

// AttachmentInput references a file already stored by the upload endpoint.
type AttachmentInput struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// SubmitCommand is the payload of a new complaint.
type SubmitCommand struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Attachments []AttachmentInput `json:"attachments"`
}

func (c SubmitCommand) normalized() SubmitCommand {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.Category = strings.TrimSpace(c.Category)
	return c
}

// Validate checks field lengths and attachment references. Every failing
// field is reported at once.
func (c SubmitCommand) Validate() error {
	c = c.normalized()
	fields := map[string]string{}
	if utf8.RuneCountInString(c.Title) < config.MinTitleLength {
		fields["title"] = "must be at least 5 characters"
	}
	if utf8.RuneCountInString(c.Description) < config.MinDescriptionLength {
		fields["description"] = "must be at least 10 characters"
	}
	if c.Category == "" {
		fields["category"] = "is required"
	}
	if len(c.Attachments) > config.MaxAttachments {
		fields["attachments"] = "at most 3 attachments are allowed"
	} else {
		for _, a := range c.Attachments {
			if strings.TrimSpace(a.URL) == "" || strings.TrimSpace(a.Name) == "" || a.Size < 0 {
				fields["attachments"] = "each attachment needs a url, a name and a non-negative size"
				break
			}
		}
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid complaint", fields)
	}
	return nil
}

// TransitionCommand moves a complaint to Target. ResolutionSummary is
// required for RESOLVED and EscalationReason for ESCALATED. InternalNotes,
// when non-blank, replace the stored notes.
type TransitionCommand struct {
	Target            models.Status `json:"status"`
	ResolutionSummary string        `json:"resolutionSummary"`
	EscalationReason  string        `json:"escalationReason"`
	InternalNotes     string        `json:"internalNotes"`
}

func (c TransitionCommand) normalized() TransitionCommand {
	c.ResolutionSummary = strings.TrimSpace(c.ResolutionSummary)
	c.EscalationReason = strings.TrimSpace(c.EscalationReason)
	c.InternalNotes = strings.TrimSpace(c.InternalNotes)
	return c
}

func (c TransitionCommand) notesSupplied() bool {
	return strings.TrimSpace(c.InternalNotes) != ""
}

// checkTarget rejects targets outside the transition enum. It runs before
// any lookup.
func (c TransitionCommand) checkTarget() error {
	if !c.Target.IsTransitionTarget() {
		return apperr.Validation("invalid status", map[string]string{
			"status": "must be one of IN_PROGRESS, ESCALATED, RESOLVED",
		})
	}
	return nil
}

// Validate checks the payload for its target.
func (c TransitionCommand) Validate() error {
	if err := c.checkTarget(); err != nil {
		return err
	}
	c = c.normalized()
	switch c.Target {
	case models.StatusResolved:
		if c.ResolutionSummary == "" {
			return apperr.Validation("resolution summary is required when resolving", map[string]string{
				"resolutionSummary": "is required",
			})
		}
	case models.StatusEscalated:
		if c.EscalationReason == "" {
			return apperr.Validation("escalation reason is required when escalating", map[string]string{
				"escalationReason": "is required",
			})
		}
	case models.StatusInProgress, models.StatusSubmitted:
	}
	return nil
}

// auditDetails describes the transition for the audit trail.
func (c TransitionCommand) auditDetails() string {
	c = c.normalized()
	var details string
	switch c.Target {
	case models.StatusInProgress:
		details = "Complaint claimed by officer"
	case models.StatusResolved:
		details = "Resolved: " + c.ResolutionSummary
	case models.StatusEscalated:
		details = "Escalated: " + c.EscalationReason
	case models.StatusSubmitted:
		details = "Complaint submitted"
	}
	if c.notesSupplied() {
		details += "; internal notes updated"
	}
	return details
}
