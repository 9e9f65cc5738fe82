// Package comment is the append-only discussion thread of a complaint.
package comment

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shahmeerabdul/GIKomplain/internal/access"
	"github.com/shahmeerabdul/GIKomplain/internal/apperr"
	"github.com/shahmeerabdul/GIKomplain/internal/auth"
	"github.com/shahmeerabdul/GIKomplain/internal/livefeed"
	"github.com/shahmeerabdul/GIKomplain/internal/metrics"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
	"github.com/shahmeerabdul/GIKomplain/internal/storage"
)

type Store interface {
	storage.CommentStore
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
}

type Service struct {
	store  Store
	events livefeed.Publisher
	log    zerolog.Logger
}

func NewService(store Store, events livefeed.Publisher, log zerolog.Logger) *Service {
	return &Service{store: store, events: events, log: log}
}

// Post appends content to the thread of complaint complaintID.
func (s *Service) Post(ctx context.Context, actor auth.Identity, complaintID, content string) (*models.CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("comment cannot be empty", map[string]string{"content": "is required"})
	}
	c, err := s.complaint(ctx, actor, complaintID)
	if err != nil {
		return nil, err
	}

	cm := &models.Comment{ComplaintID: c.ID, AuthorID: actor.UserID, Content: content}
	if err := s.store.CreateComment(ctx, cm); err != nil {
		return nil, apperr.Internal(err)
	}
	metrics.RecordComment()

	if s.events != nil {
		ev := models.ComplaintEvent{
			Type:        models.EventCommentPosted,
			ComplaintID: c.ID,
			ActorID:     actor.UserID,
			Status:      c.Status,
			At:          cm.CreatedAt,
		}
		if err := s.events.Publish(ctx, ev); err != nil {
			s.log.Warn().Err(err).Str("complaint_id", c.ID).Msg("failed to publish comment event")
		}
	}

	v := cm.View()
	return &v, nil
}

// List returns the thread in posting order.
func (s *Service) List(ctx context.Context, actor auth.Identity, complaintID string) ([]models.CommentView, error) {
	if _, err := s.complaint(ctx, actor, complaintID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, complaintID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		out = append(out, comments[i].View())
	}
	return out, nil
}

func (s *Service) complaint(ctx context.Context, actor auth.Identity, id string) (*models.Complaint, error) {
	c, err := s.store.GetComplaint(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("complaint")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !access.CanComment(actor, c) {
		return nil, apperr.Forbidden("you cannot access this complaint")
	}
	return c, nil
}
