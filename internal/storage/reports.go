package storage

import (
	"context"

	"github.com/shahmeerabdul/GIKomplain/internal/models"
)

func (s *Service) countBy(ctx context.Context, column string) ([]CountRow, error) {
	var rows []CountRow
	err := s.DB.WithContext(ctx).
		Model(&models.Complaint{}).
		Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Order(column).
		Scan(&rows).Error
	if err != nil {
		s.log.Error().Err(err).Str("group_by", column).Msg("failed to count complaints")
		return nil, err
	}
	return rows, nil
}

func (s *Service) CountComplaintsByCategory(ctx context.Context) ([]CountRow, error) {
	return s.countBy(ctx, "category")
}

func (s *Service) CountComplaintsByStatus(ctx context.Context) ([]CountRow, error) {
	return s.countBy(ctx, "status")
}

const resolutionSamplesSQL = `
	SELECT d.id AS department_id,
	       d.name AS department_name,
	       c.created_at AS submitted_at,
	       MIN(a.created_at) AS resolved_at
	FROM complaints c
	JOIN departments d ON d.id = c.assigned_dept_id
	JOIN audit_logs a ON a.complaint_id = c.id AND a.action = ?
	WHERE c.status = ?
	GROUP BY d.id, d.name, c.id, c.created_at
`

// ResolutionSamples returns every resolved, routed complaint with the time
// of its first RESOLVED audit entry.
func (s *Service) ResolutionSamples(ctx context.Context) ([]ResolutionSample, error) {
	var out []ResolutionSample
	err := s.DB.WithContext(ctx).
		Raw(resolutionSamplesSQL, models.StatusChangedAction(models.StatusResolved), models.StatusResolved).
		Scan(&out).Error
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load resolution samples")
		return nil, err
	}
	return out, nil
}
