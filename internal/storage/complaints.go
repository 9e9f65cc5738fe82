package storage

import (
	"context"

	"github.com/lib/pq"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
	"gorm.io/gorm"
)

func (s *Service) CreateComplaint(ctx context.Context, c *models.Complaint, entry *models.AuditLog) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Complainant", "AssignedDept", "AssignedOfficer").Create(c).Error; err != nil {
			return err
		}
		entry.ComplaintID = c.ID
		return tx.Create(entry).Error
	})
	if err != nil {
		s.log.Error().Err(err).Str("complainant_id", c.ComplainantID).Msg("failed to create complaint")
		return translate(err)
	}
	return nil
}

// GetComplaint loads a complaint with its attachments, department, officer
// and complainant.
func (s *Service) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var c models.Complaint
	err := s.DB.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("AssignedDept").
		Preload("AssignedOfficer").
		Preload("Complainant").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ListComplaintsByComplainant returns a user's complaints, newest first.
func (s *Service) ListComplaintsByComplainant(ctx context.Context, userID string) ([]models.Complaint, error) {
	var out []models.Complaint
	if !validID(userID) {
		return out, nil
	}
	err := s.DB.WithContext(ctx).
		Preload("Attachments").
		Preload("AssignedDept").
		Where("complainant_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to list complaints")
		return nil, err
	}
	return out, nil
}

func (s *Service) ListComplaints(ctx context.Context, f ComplaintFilter) ([]models.Complaint, error) {
	q := s.DB.WithContext(ctx).Preload("Complainant").Preload("AssignedDept").Preload("AssignedOfficer")
	if f.DepartmentID != nil {
		q = q.Where("assigned_dept_id = ?", *f.DepartmentID)
	}
	if len(f.Statuses) > 0 {
		statuses := make(pq.StringArray, 0, len(f.Statuses))
		for _, st := range f.Statuses {
			statuses = append(statuses, string(st))
		}
		q = q.Where("status = ANY(?)", statuses)
	}
	if f.OldestFirst {
		q = q.Order("created_at asc")
	} else {
		q = q.Order("created_at desc")
	}

	var out []models.Complaint
	if err := q.Find(&out).Error; err != nil {
		s.log.Error().Err(err).Msg("failed to list complaints")
		return nil, err
	}
	return out, nil
}

func (s *Service) ApplyTransition(ctx context.Context, c *models.Complaint, entry *models.AuditLog) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Complaint{}).
			Where("id = ? AND status NOT IN ?", c.ID, terminalStatuses()).
			Updates(map[string]any{
				"status":              c.Status,
				"assigned_officer_id": c.AssignedOfficerID,
				"resolution_summary":  c.ResolutionSummary,
				"escalation_reason":   c.EscalationReason,
				"internal_notes":      c.InternalNotes,
				"updated_at":          c.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.Complaint{}).Where("id = ?", c.ID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrTerminal
		}
		entry.ComplaintID = c.ID
		return tx.Create(entry).Error
	})
	if err != nil {
		err = translate(err)
		if err != ErrNotFound && err != ErrTerminal {
			s.log.Error().Err(err).Str("complaint_id", c.ID).Msg("failed to apply transition")
		}
		return err
	}
	return nil
}

// ListAuditLogs returns a complaint's audit trail, oldest first.
func (s *Service) ListAuditLogs(ctx context.Context, complaintID string) ([]models.AuditLog, error) {
	var out []models.AuditLog
	if !validID(complaintID) {
		return out, nil
	}
	err := s.DB.WithContext(ctx).
		Where("complaint_id = ?", complaintID).
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		s.log.Error().Err(err).Str("complaint_id", complaintID).Msg("failed to list audit logs")
		return nil, err
	}
	return out, nil
}

func terminalStatuses() []string {
	var out []string
	for _, st := range models.Statuses {
		if st.IsTerminal() {
			out = append(out, string(st))
		}
	}
	return out
}
