// Package memory is an in-process implementation of the storage interfaces.
// It backs STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
	"github.com/shahmeerabdul/GIKomplain/internal/storage"
)

// Store keeps every record in maps guarded by one mutex. Records are copied
// on the way in and out so callers never share memory with the store.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	seq int64

	users       map[string]*models.User
	departments map[string]*models.Department
	complaints  map[string]*models.Complaint
	comments    map[string]*models.Comment
	audit       map[string]*models.AuditLog
	order       map[string]int64

	*Bus
	*KV
}

var (
	_ storage.Storage       = (*Store)(nil)
	_ storage.TokenDenyList = (*Store)(nil)
	_ storage.Cache         = (*Store)(nil)
	_ storage.EventBus      = (*Store)(nil)
)

func New() *Store {
	return &Store{
		now:         time.Now,
		users:       make(map[string]*models.User),
		departments: make(map[string]*models.Department),
		complaints:  make(map[string]*models.Complaint),
		comments:    make(map[string]*models.Comment),
		audit:       make(map[string]*models.AuditLog),
		order:       make(map[string]int64),
		Bus:         NewBus(),
		KV:          NewKV(),
	}
}

// WithClock replaces the clock used for CreatedAt/UpdatedAt defaults.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	s.KV.now = now
	return s
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) track(id string) {
	s.seq++
	s.order[id] = s.seq
}

// before orders by time, then by insertion.
func (s *Store) before(at, bt time.Time, aid, bid string) bool {
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return s.order[aid] < s.order[bid]
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

func stamp(t *time.Time, now time.Time) {
	if t.IsZero() {
		*t = now
	}
}

// ---- users & departments ----

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return storage.ErrDuplicate
		}
	}
	u.ID = newID(u.ID)
	now := s.now()
	stamp(&u.CreatedAt, now)
	stamp(&u.UpdatedAt, now)
	cp := *u
	cp.Department = nil
	s.users[u.ID] = &cp
	s.track(u.ID)
	return nil
}

func (s *Store) userLocked(id string) *models.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	cp := *u
	if u.DepartmentID != nil {
		if d, ok := s.departments[*u.DepartmentID]; ok {
			dc := *d
			cp.Department = &dc
		}
	}
	return &cp
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u := s.userLocked(id); u != nil {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for id, u := range s.users {
		if u.Email == email {
			return s.userLocked(id), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[u.ID]
	if !ok {
		return storage.ErrNotFound
	}
	existing.Name = u.Name
	existing.Role = u.Role
	existing.DepartmentID = copyPtr(u.DepartmentID)
	existing.UpdatedAt = s.now()
	return nil
}

// DeleteUser removes the user with the same cascade the database applies:
// their complaints and comments go, complaints they were assigned to are
// unassigned.
func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)

	for cid, c := range s.complaints {
		if c.ComplainantID == id {
			s.deleteComplaintLocked(cid)
			continue
		}
		if c.AssignedOfficerID != nil && *c.AssignedOfficerID == id {
			c.AssignedOfficerID = nil
		}
	}
	for cmid, cm := range s.comments {
		if cm.AuthorID == id {
			delete(s.comments, cmid)
		}
	}
	return nil
}

func (s *Store) deleteComplaintLocked(id string) {
	delete(s.complaints, id)
	for cmid, cm := range s.comments {
		if cm.ComplaintID == id {
			delete(s.comments, cmid)
		}
	}
	for aid, a := range s.audit {
		if a.ComplaintID == id {
			delete(s.audit, aid)
		}
	}
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for id := range s.users {
		out = append(out, *s.userLocked(id))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return s.order[out[i].ID] < s.order[out[j].ID]
	})
	return out, nil
}

func (s *Store) ListDepartments(_ context.Context) ([]models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Department, 0, len(s.departments))
	for _, d := range s.departments {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetDepartmentByID(_ context.Context, id string) (*models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.departments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *Store) EnsureDepartment(_ context.Context, name string) (*models.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.departments {
		if d.Name == name {
			cp := *d
			return &cp, nil
		}
	}
	d := &models.Department{ID: uuid.New().String(), Name: name, CreatedAt: s.now()}
	s.departments[d.ID] = d
	s.track(d.ID)
	cp := *d
	return &cp, nil
}

// ---- complaints ----

func (s *Store) CreateComplaint(_ context.Context, c *models.Complaint, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[c.ComplainantID]; !ok {
		return storage.ErrNotFound
	}

	now := s.now()
	c.ID = newID(c.ID)
	stamp(&c.CreatedAt, now)
	stamp(&c.UpdatedAt, now)
	if c.Status == "" {
		c.Status = models.StatusSubmitted
	}
	for i := range c.Attachments {
		a := &c.Attachments[i]
		a.ID = newID(a.ID)
		a.ComplaintID = c.ID
		stamp(&a.CreatedAt, now)
	}
	cp := *c
	cp.Complainant, cp.AssignedDept, cp.AssignedOfficer = nil, nil, nil
	cp.Attachments = append([]models.Attachment(nil), c.Attachments...)
	s.complaints[c.ID] = &cp
	s.track(c.ID)

	entry.ComplaintID = c.ID
	s.insertAuditLocked(entry, now)
	return nil
}

func (s *Store) insertAuditLocked(entry *models.AuditLog, now time.Time) {
	entry.ID = newID(entry.ID)
	stamp(&entry.CreatedAt, now)
	cp := *entry
	cp.Complaint = nil
	s.audit[entry.ID] = &cp
	s.track(entry.ID)
}

// complaintLocked returns a copy of complaint id with its relations loaded.
func (s *Store) complaintLocked(id string) *models.Complaint {
	c, ok := s.complaints[id]
	if !ok {
		return nil
	}
	cp := *c
	cp.Attachments = append([]models.Attachment{}, c.Attachments...)
	cp.Complainant = s.userLocked(c.ComplainantID)
	if c.AssignedDeptID != nil {
		if d, ok := s.departments[*c.AssignedDeptID]; ok {
			dc := *d
			cp.AssignedDept = &dc
		}
	}
	if c.AssignedOfficerID != nil {
		cp.AssignedOfficer = s.userLocked(*c.AssignedOfficerID)
	}
	return &cp
}

func (s *Store) GetComplaint(_ context.Context, id string) (*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c := s.complaintLocked(id); c != nil {
		return c, nil
	}
	return nil, storage.ErrNotFound
}

func (s *Store) sortComplaints(list []models.Complaint, oldestFirst bool) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if oldestFirst {
			return s.before(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
		}
		return s.before(b.CreatedAt, a.CreatedAt, b.ID, a.ID)
	})
}

func (s *Store) ListComplaintsByComplainant(_ context.Context, userID string) ([]models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Complaint{}
	for id, c := range s.complaints {
		if c.ComplainantID == userID {
			out = append(out, *s.complaintLocked(id))
		}
	}
	s.sortComplaints(out, false)
	return out, nil
}

func (s *Store) ListComplaints(_ context.Context, f storage.ComplaintFilter) ([]models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Complaint{}
	for id, c := range s.complaints {
		if f.DepartmentID != nil && (c.AssignedDeptID == nil || *c.AssignedDeptID != *f.DepartmentID) {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, c.Status) {
			continue
		}
		out = append(out, *s.complaintLocked(id))
	}
	s.sortComplaints(out, f.OldestFirst)
	return out, nil
}

func containsStatus(list []models.Status, st models.Status) bool {
	for _, v := range list {
		if v == st {
			return true
		}
	}
	return false
}

func (s *Store) ApplyTransition(_ context.Context, c *models.Complaint, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.complaints[c.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if existing.Status.IsTerminal() {
		return storage.ErrTerminal
	}
	now := s.now()
	existing.Status = c.Status
	existing.AssignedOfficerID = copyPtr(c.AssignedOfficerID)
	existing.ResolutionSummary = c.ResolutionSummary
	existing.EscalationReason = c.EscalationReason
	existing.InternalNotes = c.InternalNotes
	existing.UpdatedAt = c.UpdatedAt
	stamp(&existing.UpdatedAt, now)

	entry.ComplaintID = c.ID
	s.insertAuditLocked(entry, now)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, complaintID string) ([]models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.AuditLog{}
	for _, a := range s.audit {
		if a.ComplaintID == complaintID {
			out = append(out, *a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return s.before(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

// ---- comments ----

func (s *Store) CreateComment(_ context.Context, cm *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.complaints[cm.ComplaintID]; !ok {
		return storage.ErrNotFound
	}
	author := s.userLocked(cm.AuthorID)
	if author == nil {
		return storage.ErrNotFound
	}
	cm.ID = newID(cm.ID)
	stamp(&cm.CreatedAt, s.now())
	cp := *cm
	cp.Author, cp.Complaint = nil, nil
	s.comments[cm.ID] = &cp
	s.track(cm.ID)
	cm.Author = author
	return nil
}

func (s *Store) ListComments(_ context.Context, complaintID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Comment{}
	for _, cm := range s.comments {
		if cm.ComplaintID == complaintID {
			cp := *cm
			cp.Author = s.userLocked(cm.AuthorID)
			out = append(out, cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return s.before(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

// ---- reports ----

func (s *Store) countBy(key func(*models.Complaint) string) []storage.CountRow {
	counts := map[string]int64{}
	for _, c := range s.complaints {
		counts[key(c)]++
	}
	out := make([]storage.CountRow, 0, len(counts))
	for label, n := range counts {
		out = append(out, storage.CountRow{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func (s *Store) CountComplaintsByCategory(_ context.Context) ([]storage.CountRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countBy(func(c *models.Complaint) string { return c.Category }), nil
}

func (s *Store) CountComplaintsByStatus(_ context.Context) ([]storage.CountRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countBy(func(c *models.Complaint) string { return string(c.Status) }), nil
}

func (s *Store) ResolutionSamples(_ context.Context) ([]storage.ResolutionSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resolvedAction := models.StatusChangedAction(models.StatusResolved)
	firstResolved := map[string]time.Time{}
	for _, a := range s.audit {
		if a.Action != resolvedAction {
			continue
		}
		if t, ok := firstResolved[a.ComplaintID]; !ok || a.CreatedAt.Before(t) {
			firstResolved[a.ComplaintID] = a.CreatedAt
		}
	}

	out := []storage.ResolutionSample{}
	for id, c := range s.complaints {
		if c.Status != models.StatusResolved || c.AssignedDeptID == nil {
			continue
		}
		d, ok := s.departments[*c.AssignedDeptID]
		if !ok {
			continue
		}
		at, ok := firstResolved[id]
		if !ok {
			continue
		}
		out = append(out, storage.ResolutionSample{
			DepartmentID:   d.ID,
			DepartmentName: d.Name,
			SubmittedAt:    c.CreatedAt,
			ResolvedAt:     at,
		})
	}
	return out, nil
}

func copyPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
