// Package complaint is the complaint lifecycle engine: submission, the
// status state machine, role-gated reads and the audit trail.
package complaint

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shahmeerabdul/GIKomplain/internal/access"
	"github.com/shahmeerabdul/GIKomplain/internal/apperr"
	"github.com/shahmeerabdul/GIKomplain/internal/auth"
	"github.com/shahmeerabdul/GIKomplain/internal/config"
	"github.com/shahmeerabdul/GIKomplain/internal/livefeed"
	"github.com/shahmeerabdul/GIKomplain/internal/metrics"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
	"github.com/shahmeerabdul/GIKomplain/internal/storage"
	"gorm.io/datatypes"
)

// Store is the persistence the engine needs.
type Store interface {
	storage.ComplaintStore
	storage.DepartmentStore
}

// Service handles the business logic for complaints.
type Service struct {
	store  Store
	cache  storage.Cache
	events livefeed.Publisher
	log    zerolog.Logger
	now    func() time.Time
}

// NewService creates a new complaint service. cache and events may be nil.
func NewService(store Store, cache storage.Cache, events livefeed.Publisher, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// WithClock replaces the clock stamped on transitions.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// QueueFilter narrows the department queue.
type QueueFilter struct {
	Statuses    []models.Status
	OldestFirst bool
}

// Submit files a new complaint for actor, routes it to a department and
// records the SUBMITTED audit entry with it.
func (s *Service) Submit(ctx context.Context, actor auth.Identity, cmd SubmitCommand) (*models.Complaint, error) {
	if actor.UserID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	cmd = cmd.normalized()

	departments, err := s.store.ListDepartments(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	c := &models.Complaint{
		Title:          cmd.Title,
		Description:    cmd.Description,
		Category:       cmd.Category,
		Status:         models.StatusSubmitted,
		ComplainantID:  actor.UserID,
		AssignedDeptID: RouteDepartment(departments, cmd.Category),
		Attachments:    make([]models.Attachment, 0, len(cmd.Attachments)),
	}
	for _, a := range cmd.Attachments {
		c.Attachments = append(c.Attachments, models.Attachment{URL: a.URL, Name: a.Name, Size: a.Size})
	}
	entry := &models.AuditLog{
		Action:  models.AuditActionSubmitted,
		ActorID: actor.UserID,
		Details: "Complaint submitted",
	}
	if err := s.store.CreateComplaint(ctx, c, entry); err != nil {
		return nil, apperr.Internal(err)
	}

	metrics.RecordSubmitted(c.AssignedDeptID != nil)
	s.afterCommit(ctx, models.ComplaintEvent{
		Type:        models.EventComplaintSubmitted,
		ComplaintID: c.ID,
		ActorID:     actor.UserID,
		Status:      c.Status,
		Details:     entry.Details,
		At:          c.CreatedAt,
	})
	return c, nil
}

// Transition moves complaint id along the lifecycle graph on behalf of actor.
// The updated complaint and its audit entry are written together.
func (s *Service) Transition(ctx context.Context, actor auth.Identity, id string, cmd TransitionCommand) (*models.Complaint, error) {
	if err := cmd.checkTarget(); err != nil {
		return nil, err
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanWrite(actor, c) {
		return nil, apperr.Forbidden("you cannot update this complaint")
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if !c.Status.CanTransitionTo(cmd.Target) {
		return nil, apperr.Validation("invalid status transition", map[string]string{
			"status": "cannot move from " + string(c.Status) + " to " + string(cmd.Target),
		})
	}

	from := c.Status
	cmd = cmd.normalized()
	updated := *c
	updated.Status = cmd.Target
	updated.UpdatedAt = s.now()
	switch cmd.Target {
	case models.StatusInProgress:
		officer := actor.UserID
		updated.AssignedOfficerID = &officer
	case models.StatusResolved:
		updated.ResolutionSummary = cmd.ResolutionSummary
	case models.StatusEscalated:
		updated.EscalationReason = cmd.EscalationReason
	case models.StatusSubmitted:
	}
	if cmd.notesSupplied() {
		updated.InternalNotes = cmd.InternalNotes
	}

	meta, err := json.Marshal(map[string]any{
		"from":         from,
		"to":           cmd.Target,
		"notesUpdated": cmd.notesSupplied(),
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	entry := &models.AuditLog{
		Action:    models.StatusChangedAction(cmd.Target),
		ActorID:   actor.UserID,
		Details:   cmd.auditDetails(),
		Metadata:  datatypes.JSON(meta),
		CreatedAt: updated.UpdatedAt,
	}

	if err := s.store.ApplyTransition(ctx, &updated, entry); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("complaint")
		}
		if errors.Is(err, storage.ErrTerminal) {
			return nil, apperr.Validation("invalid status transition", map[string]string{
				"status": "complaint was closed before this change could be saved",
			})
		}
		return nil, apperr.Internal(err)
	}

	metrics.RecordTransition(string(from), string(cmd.Target))
	s.afterCommit(ctx, models.ComplaintEvent{
		Type:        models.EventStatusChanged,
		ComplaintID: updated.ID,
		ActorID:     actor.UserID,
		Status:      updated.Status,
		Details:     entry.Details,
		At:          updated.UpdatedAt,
	})

	if updated.AssignedOfficerID != nil && (c.AssignedOfficerID == nil || *c.AssignedOfficerID != *updated.AssignedOfficerID) {
		// The preloaded officer belongs to the previous assignee.
		updated.AssignedOfficer = nil
	}
	return &updated, nil
}

// Get returns complaint id if actor may read it. Internal notes are blanked
// for actors who may not see them.
func (s *Service) Get(ctx context.Context, actor auth.Identity, id string) (*models.Complaint, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanRead(actor, c) {
		return nil, apperr.Forbidden("you cannot view this complaint")
	}
	redact(actor, c)
	return c, nil
}

// ListMine returns actor's own complaints, newest first.
func (s *Service) ListMine(ctx context.Context, actor auth.Identity) ([]models.Complaint, error) {
	if actor.UserID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}
	list, err := s.store.ListComplaintsByComplainant(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	for i := range list {
		redact(actor, &list[i])
	}
	return list, nil
}

// ListForDepartment returns the queue actor works on: their department's
// complaints for an officer, every complaint for an admin.
func (s *Service) ListForDepartment(ctx context.Context, actor auth.Identity, f QueueFilter) ([]models.Complaint, error) {
	if !access.CanListDepartmentQueue(actor) {
		return nil, apperr.Forbidden("only department officers and admins can view the queue")
	}
	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, apperr.Validation("invalid status filter", map[string]string{"status": "unknown status " + string(st)})
		}
	}
	filter := storage.ComplaintFilter{Statuses: f.Statuses, OldestFirst: f.OldestFirst}
	if !actor.IsAdmin() {
		filter.DepartmentID = actor.DepartmentID
	}
	list, err := s.store.ListComplaints(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

// AuditTrail returns the audit entries of complaint id, oldest first, to
// actors with write access.
func (s *Service) AuditTrail(ctx context.Context, actor auth.Identity, id string) ([]models.AuditLog, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanWrite(actor, c) {
		return nil, apperr.Forbidden("you cannot view this audit trail")
	}
	logs, err := s.store.ListAuditLogs(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return logs, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.Complaint, error) {
	c, err := s.store.GetComplaint(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("complaint")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func redact(actor auth.Identity, c *models.Complaint) {
	if !access.CanSeeInternalNotes(actor, c) {
		c.InternalNotes = ""
	}
}

// afterCommit runs the best-effort side effects of a committed mutation.
func (s *Service) afterCommit(ctx context.Context, ev models.ComplaintEvent) {
	if s.cache != nil {
		if err := s.cache.CacheDelete(ctx, config.ReportCacheKey); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate report cache")
		}
	}
	if s.events != nil {
		if err := s.events.Publish(ctx, ev); err != nil {
			s.log.Warn().Err(err).Str("complaint_id", ev.ComplaintID).Str("event", string(ev.Type)).Msg("failed to publish complaint event")
		}
	}
}
