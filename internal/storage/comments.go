package storage

import (
	"context"

	"github.com/shahmeerabdul/GIKomplain/internal/models"
)

func (s *Service) CreateComment(ctx context.Context, cm *models.Comment) error {
	db := s.DB.WithContext(ctx)
	if err := db.Omit("Author", "Complaint").Create(cm).Error; err != nil {
		s.log.Error().Err(err).Str("complaint_id", cm.ComplaintID).Msg("failed to save comment")
		return translate(err)
	}
	var author models.User
	if err := db.First(&author, "id = ?", cm.AuthorID).Error; err != nil {
		return translate(err)
	}
	cm.Author = &author
	return nil
}

// ListComments returns a thread in creation order with authors loaded.
func (s *Service) ListComments(ctx context.Context, complaintID string) ([]models.Comment, error) {
	var out []models.Comment
	if !validID(complaintID) {
		return out, nil
	}
	err := s.DB.WithContext(ctx).
		Preload("Author").
		Where("complaint_id = ?", complaintID).
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		s.log.Error().Err(err).Str("complaint_id", complaintID).Msg("failed to get comments")
		return nil, err
	}
	return out, nil
}
