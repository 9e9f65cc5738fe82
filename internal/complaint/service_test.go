package complaint_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shahmeerabdul/GIKomplain/internal/apperr"
	"github.com/shahmeerabdul/GIKomplain/internal/auth"
	"github.com/shahmeerabdul/GIKomplain/internal/complaint"
	"github.com/shahmeerabdul/GIKomplain/internal/config"
	"github.com/shahmeerabdul/GIKomplain/internal/livefeed"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
	"github.com/shahmeerabdul/GIKomplain/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []models.ComplaintEvent
}

func (r *recorder) Publish(_ context.Context, ev models.ComplaintEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	svc      *complaint.Service
	events   *recorder
	cs       *models.Department
	ee       *models.Department
	student  auth.Identity
	other    auth.Identity
	officer  auth.Identity
	eeOff    auth.Identity
	admin    auth.Identity
	deptless auth.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	f := &fixture{ctx: ctx, store: store, events: &recorder{}}

	var err error
	f.cs, err = store.EnsureDepartment(ctx, "Computer Science")
	require.NoError(t, err)
	f.ee, err = store.EnsureDepartment(ctx, "Electrical Engineering")
	require.NoError(t, err)
	_, err = store.EnsureDepartment(ctx, "Maintenance")
	require.NoError(t, err)

	mk := func(email string, role models.Role, dept *string) auth.Identity {
		u := &models.User{Email: email, Name: email, Role: role, DepartmentID: dept}
		require.NoError(t, store.CreateUser(ctx, u))
		return auth.IdentityOf(u)
	}
	f.student = mk("student@giki.edu.pk", models.RoleStudent, nil)
	f.other = mk("other@giki.edu.pk", models.RoleFaculty, nil)
	f.officer = mk("cs.officer@giki.edu.pk", models.RoleDeptOfficer, &f.cs.ID)
	f.eeOff = mk("ee.officer@giki.edu.pk", models.RoleDeptOfficer, &f.ee.ID)
	f.admin = mk("admin@giki.edu.pk", models.RoleAdmin, nil)
	f.deptless = mk("floating@giki.edu.pk", models.RoleDeptOfficer, nil)

	f.svc = complaint.NewService(store, store, f.events, zerolog.Nop())
	return f
}

func (f *fixture) submit(t *testing.T, category string) *models.Complaint {
	t.Helper()
	c, err := f.svc.Submit(f.ctx, f.student, complaint.SubmitCommand{
		Title:       "Lab PCs broken",
		Description: "Half of the machines in lab 3 do not boot.",
		Category:    category,
	})
	require.NoError(t, err)
	return c
}

func TestSubmit_RoutesAndAudits(t *testing.T) {
	f := newFixture(t)

	c, err := f.svc.Submit(f.ctx, f.student, complaint.SubmitCommand{
		Title:       "  Lab PCs broken ",
		Description: "Half of the machines in lab 3 do not boot.",
		Category:    "Computer",
		Attachments: []complaint.AttachmentInput{{URL: "/uploads/a.png", Name: "a.png", Size: 10}},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusSubmitted, c.Status)
	assert.Equal(t, "Lab PCs broken", c.Title)
	assert.Equal(t, f.student.UserID, c.ComplainantID)
	require.NotNil(t, c.AssignedDeptID)
	assert.Equal(t, f.cs.ID, *c.AssignedDeptID)
	assert.Nil(t, c.AssignedOfficerID)
	require.Len(t, c.Attachments, 1)

	logs, err := f.svc.AuditTrail(f.ctx, f.admin, c.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionSubmitted, logs[0].Action)
	assert.Equal(t, f.student.UserID, logs[0].ActorID)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, models.EventComplaintSubmitted, f.events.events[0].Type)
}

func TestSubmit_UnmatchedCategoryIsUnassigned(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "IT")
	assert.Nil(t, c.AssignedDeptID)

	// Case-sensitive substring match.
	c = f.submit(t, "computer")
	assert.Nil(t, c.AssignedDeptID)
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t)
	att := complaint.AttachmentInput{URL: "/uploads/x", Name: "x", Size: 1}

	cases := []struct {
		name  string
		cmd   complaint.SubmitCommand
		field string
	}{
		{"short title", complaint.SubmitCommand{Title: "Lab", Description: "long enough text", Category: "Computer"}, "title"},
		{"padded short title", complaint.SubmitCommand{Title: "  ab   ", Description: "long enough text", Category: "Computer"}, "title"},
		{"short description", complaint.SubmitCommand{Title: "Broken lab", Description: "too short", Category: "Computer"}, "description"},
		{"blank category", complaint.SubmitCommand{Title: "Broken lab", Description: "long enough text", Category: "  "}, "category"},
		{"four attachments", complaint.SubmitCommand{Title: "Broken lab", Description: "long enough text", Category: "Computer",
			Attachments: []complaint.AttachmentInput{att, att, att, att}}, "attachments"},
		{"attachment without url", complaint.SubmitCommand{Title: "Broken lab", Description: "long enough text", Category: "Computer",
			Attachments: []complaint.AttachmentInput{{Name: "x", Size: 1}}}, "attachments"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Submit(f.ctx, f.student, tc.cmd)
			require.Error(t, err)
			ae := apperr.From(err)
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			assert.Contains(t, ae.Fields, tc.field)
		})
	}

	mine, err := f.svc.ListMine(f.ctx, f.student)
	require.NoError(t, err)
	assert.Empty(t, mine, "nothing persisted on validation failure")
}

func TestSubmit_ThreeAttachmentsAllowed(t *testing.T) {
	f := newFixture(t)
	att := complaint.AttachmentInput{URL: "/uploads/x", Name: "x", Size: 0}
	c, err := f.svc.Submit(f.ctx, f.student, complaint.SubmitCommand{
		Title: "Broken lab", Description: "long enough text", Category: "Computer",
		Attachments: []complaint.AttachmentInput{att, att, att},
	})
	require.NoError(t, err)
	assert.Len(t, c.Attachments, 3)
}

func TestTransition_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "Computer")

	// Arrange / Act: claim
	got, err := f.svc.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{Target: models.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	require.NotNil(t, got.AssignedOfficerID)
	assert.Equal(t, f.officer.UserID, *got.AssignedOfficerID)

	// escalate
	got, err = f.svc.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{
		Target: models.StatusEscalated, EscalationReason: "Needs vendor", InternalNotes: "called vendor",
	})
	require.NoError(t, err)
	assert.Equal(t, "Needs vendor", got.EscalationReason)
	assert.Equal(t, "called vendor", got.InternalNotes)

	// admin takes it back and resolves
	_, err = f.svc.Transition(f.ctx, f.admin, c.ID, complaint.TransitionCommand{Target: models.StatusInProgress})
	require.NoError(t, err)
	got, err = f.svc.Transition(f.ctx, f.admin, c.ID, complaint.TransitionCommand{
		Target: models.StatusResolved, ResolutionSummary: "Replaced PSUs",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status)
	assert.Equal(t, "Replaced PSUs", got.ResolutionSummary)
	assert.Equal(t, f.admin.UserID, *got.AssignedOfficerID)
	assert.Equal(t, "called vendor", got.InternalNotes, "notes kept when not supplied")

	// Assert: audit trail
	logs, err := f.svc.AuditTrail(f.ctx, f.officer, c.ID)
	require.NoError(t, err)
	require.Len(t, logs, 5)
	actions := make([]string, len(logs))
	for i, l := range logs {
		actions[i] = l.Action
	}
	assert.Equal(t, []string{
		"SUBMITTED",
		"STATUS_CHANGED_TO_IN_PROGRESS",
		"STATUS_CHANGED_TO_ESCALATED",
		"STATUS_CHANGED_TO_IN_PROGRESS",
		"STATUS_CHANGED_TO_RESOLVED",
	}, actions)
	assert.Equal(t, "Complaint claimed by officer", logs[1].Details)
	assert.Equal(t, "Escalated: Needs vendor; internal notes updated", logs[2].Details)
	assert.Equal(t, "Resolved: Replaced PSUs", logs[4].Details)
	assert.Equal(t, f.admin.UserID, logs[4].ActorID)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(logs[2].Metadata, &meta))
	assert.Equal(t, "IN_PROGRESS", meta["from"])
	assert.Equal(t, "ESCALATED", meta["to"])
	assert.Equal(t, true, meta["notesUpdated"])
}

func TestTransition_GraphIsEnforced(t *testing.T) {
	f := newFixture(t)
	full := func(target models.Status) complaint.TransitionCommand {
		return complaint.TransitionCommand{Target: target, ResolutionSummary: "done", EscalationReason: "why"}
	}

	path := map[models.Status][]models.Status{
		models.StatusSubmitted:  nil,
		models.StatusInProgress: {models.StatusInProgress},
		models.StatusEscalated:  {models.StatusInProgress, models.StatusEscalated},
		models.StatusResolved:   {models.StatusInProgress, models.StatusResolved},
	}
	for from, steps := range path {
		for _, to := range []models.Status{models.StatusInProgress, models.StatusEscalated, models.StatusResolved} {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				c := f.submit(t, "Computer")
				for _, st := range steps {
					_, err := f.svc.Transition(f.ctx, f.admin, c.ID, full(st))
					require.NoError(t, err)
				}
				before, err := f.svc.AuditTrail(f.ctx, f.admin, c.ID)
				require.NoError(t, err)

				_, err = f.svc.Transition(f.ctx, f.admin, c.ID, full(to))
				if from.CanTransitionTo(to) {
					assert.NoError(t, err)
					return
				}
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
				after, err := f.svc.AuditTrail(f.ctx, f.admin, c.ID)
				require.NoError(t, err)
				assert.Len(t, after, len(before), "no audit entry on rejected transition")
				got, err := f.svc.Get(f.ctx, f.admin, c.ID)
				require.NoError(t, err)
				assert.Equal(t, from, got.Status)
			})
		}
	}
}

func TestTransition_ResolvedIsTerminal(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "Computer")
	_, err := f.svc.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{Target: models.StatusInProgress})
	require.NoError(t, err)
	_, err = f.svc.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{Target: models.StatusResolved, ResolutionSummary: "fixed"})
	require.NoError(t, err)

	for _, target := range []models.Status{models.StatusInProgress, models.StatusEscalated, models.StatusResolved} {
		_, err := f.svc.Transition(f.ctx, f.admin, c.ID, complaint.TransitionCommand{
			Target: target, ResolutionSummary: "again", EscalationReason: "again",
		})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), string(target))
	}
}

func TestTransition_Authorization(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "Computer")

	for name, actor := range map[string]auth.Identity{
		"complainant":      f.student,
		"unrelated":        f.other,
		"other dept":       f.eeOff,
		"officer w/o dept": f.deptless,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Transition(f.ctx, actor, c.ID, complaint.TransitionCommand{Target: models.StatusInProgress})
			assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
		})
	}

	logs, err := f.svc.AuditTrail(f.ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestTransition_AssignedOfficerAloneCannotWrite(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "Computer")
	_, err := f.svc.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{Target: models.StatusInProgress})
	require.NoError(t, err)

	// The officer moves to another department.
	u, err := f.store.GetUserByID(f.ctx, f.officer.UserID)
	require.NoError(t, err)
	u.DepartmentID = &f.ee.ID
	require.NoError(t, f.store.UpdateUser(f.ctx, u))
	moved := auth.IdentityOf(u)

	_, err = f.svc.Transition(f.ctx, moved, c.ID, complaint.TransitionCommand{Target: models.StatusEscalated, EscalationReason: "x"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// Still readable as the assigned officer.
	_, err = f.svc.Get(f.ctx, moved, c.ID)
	assert.NoError(t, err)
}

func TestTransition_PayloadRequirements(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "Computer")
	_, err := f.svc.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{Target: models.StatusInProgress})
	require.NoError(t, err)

	_, err = f.svc.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{Target: models.StatusResolved, ResolutionSummary: "   "})
	require.Error(t, err)
	assert.Contains(t, apperr.From(err).Fields, "resolutionSummary")

	_, err = f.svc.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{Target: models.StatusEscalated})
	require.Error(t, err)
	assert.Contains(t, apperr.From(err).Fields, "escalationReason")

	got, err := f.svc.Get(f.ctx, f.officer, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
}

func TestTransition_CheckOrder(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "Computer")

	// Unknown target is rejected before the lookup.
	_, err := f.svc.Transition(f.ctx, f.student, "missing", complaint.TransitionCommand{Target: "CLOSED"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.svc.Transition(f.ctx, f.student, c.ID, complaint.TransitionCommand{Target: models.StatusSubmitted})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// Missing complaint before authorization.
	_, err = f.svc.Transition(f.ctx, f.student, "missing", complaint.TransitionCommand{Target: models.StatusInProgress})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// Authorization before payload.
	_, err = f.svc.Transition(f.ctx, f.student, c.ID, complaint.TransitionCommand{Target: models.StatusResolved})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

// interleavedStore runs between once, right after the first complaint read,
// so a competing change lands between a transition's read and its write.
type interleavedStore struct {
	*memory.Store
	once    sync.Once
	between func()
}

func (s *interleavedStore) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	c, err := s.Store.GetComplaint(ctx, id)
	s.once.Do(s.between)
	return c, err
}

func countActions(logs []models.AuditLog, action string) int {
	n := 0
	for _, l := range logs {
		if l.Action == action {
			n++
		}
	}
	return n
}

func TestTransition_ConcurrentClaimsLastWriteWins(t *testing.T) {
	// Arrange
	f := newFixture(t)
	c := f.submit(t, "Computer")
	u := &models.User{Email: "cs.officer2@giki.edu.pk", Name: "Second Officer", Role: models.RoleDeptOfficer, DepartmentID: &f.cs.ID}
	require.NoError(t, f.store.CreateUser(f.ctx, u))
	second := auth.IdentityOf(u)

	racing := complaint.NewService(&interleavedStore{Store: f.store, between: func() {
		_, err := f.svc.Transition(f.ctx, second, c.ID, complaint.TransitionCommand{Target: models.StatusInProgress})
		require.NoError(t, err)
	}}, f.store, nil, zerolog.Nop())

	// Act
	_, err := racing.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{Target: models.StatusInProgress})

	// Assert
	require.NoError(t, err)
	got, err := f.svc.Get(f.ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	require.NotNil(t, got.AssignedOfficerID)
	assert.Equal(t, f.officer.UserID, *got.AssignedOfficerID, "the later write wins")

	logs, err := f.svc.AuditTrail(f.ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, countActions(logs, models.StatusChangedAction(models.StatusInProgress)), "every claim is audited")
}

func TestTransition_StaleClaimCannotReopenResolvedComplaint(t *testing.T) {
	// Arrange
	f := newFixture(t)
	c := f.submit(t, "Computer")
	_, err := f.svc.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{Target: models.StatusInProgress})
	require.NoError(t, err)
	_, err = f.svc.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{Target: models.StatusEscalated, EscalationReason: "needs budget"})
	require.NoError(t, err)

	racing := complaint.NewService(&interleavedStore{Store: f.store, between: func() {
		_, err := f.svc.Transition(f.ctx, f.admin, c.ID, complaint.TransitionCommand{
			Target:            models.StatusResolved,
			ResolutionSummary: "Replaced the PCs",
		})
		require.NoError(t, err)
	}}, f.store, nil, zerolog.Nop())

	// Act
	_, err = racing.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{Target: models.StatusInProgress, InternalNotes: "taking it back"})

	// Assert
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	got, err := f.svc.Get(f.ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status)
	assert.Equal(t, "Replaced the PCs", got.ResolutionSummary)
	assert.NotEqual(t, "taking it back", got.InternalNotes)

	logs, err := f.svc.AuditTrail(f.ctx, f.admin, c.ID)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, models.StatusChangedAction(models.StatusResolved), logs[len(logs)-1].Action)
	assert.Equal(t, 1, countActions(logs, models.StatusChangedAction(models.StatusInProgress)))
}

func TestGet_ReadAccessAndNotes(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "Computer")
	_, err := f.svc.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{Target: models.StatusInProgress, InternalNotes: "secret"})
	require.NoError(t, err)

	got, err := f.svc.Get(f.ctx, f.student, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.InternalNotes, "complainant never sees internal notes")

	got, err = f.svc.Get(f.ctx, f.officer, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.InternalNotes)

	got, err = f.svc.Get(f.ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.InternalNotes)

	_, err = f.svc.Get(f.ctx, f.other, c.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.svc.Get(f.ctx, f.eeOff, c.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.svc.Get(f.ctx, f.deptless, c.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.svc.Get(f.ctx, f.admin, "nope")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	mine, err := f.svc.ListMine(f.ctx, f.student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Empty(t, mine[0].InternalNotes)
}

func TestGet_UnroutedComplaintOnlyForAdminAndComplainant(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "IT")

	_, err := f.svc.Get(f.ctx, f.deptless, c.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.svc.Get(f.ctx, f.officer, c.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.svc.Get(f.ctx, f.admin, c.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(f.ctx, f.student, c.ID)
	assert.NoError(t, err)
}

func TestListForDepartment(t *testing.T) {
	f := newFixture(t)
	a := f.submit(t, "Computer")
	b := f.submit(t, "Electrical")
	d := f.submit(t, "Computer")
	_, err := f.svc.Transition(f.ctx, f.officer, d.ID, complaint.TransitionCommand{Target: models.StatusInProgress})
	require.NoError(t, err)

	list, err := f.svc.ListForDepartment(f.ctx, f.officer, complaint.QueueFilter{})
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, c := range list {
		ids[c.ID] = true
	}
	assert.True(t, ids[a.ID])
	assert.True(t, ids[d.ID])
	assert.False(t, ids[b.ID])

	list, err = f.svc.ListForDepartment(f.ctx, f.officer, complaint.QueueFilter{Statuses: []models.Status{models.StatusInProgress}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, d.ID, list[0].ID)

	list, err = f.svc.ListForDepartment(f.ctx, f.admin, complaint.QueueFilter{OldestFirst: true})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, a.ID, list[0].ID)

	_, err = f.svc.ListForDepartment(f.ctx, f.student, complaint.QueueFilter{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.svc.ListForDepartment(f.ctx, f.deptless, complaint.QueueFilter{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.svc.ListForDepartment(f.ctx, f.admin, complaint.QueueFilter{Statuses: []models.Status{"CLOSED"}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAuditTrail_RequiresWriteAccess(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "Computer")

	_, err := f.svc.AuditTrail(f.ctx, f.student, c.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.svc.AuditTrail(f.ctx, f.eeOff, c.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.svc.AuditTrail(f.ctx, f.officer, c.ID)
	assert.NoError(t, err)
}

func TestMutationsInvalidateReportCache(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.CacheSet(f.ctx, config.ReportCacheKey, []byte("stale"), time.Minute))

	c := f.submit(t, "Computer")
	_, ok, _ := f.store.CacheGet(f.ctx, config.ReportCacheKey)
	assert.False(t, ok)

	require.NoError(t, f.store.CacheSet(f.ctx, config.ReportCacheKey, []byte("stale"), time.Minute))
	_, err := f.svc.Transition(f.ctx, f.officer, c.ID, complaint.TransitionCommand{Target: models.StatusInProgress})
	require.NoError(t, err)
	_, ok, _ = f.store.CacheGet(f.ctx, config.ReportCacheKey)
	assert.False(t, ok)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	failing := livefeed.PublisherFunc(func(context.Context, models.ComplaintEvent) error {
		return assert.AnError
	})
	svc := complaint.NewService(f.store, f.store, failing, zerolog.Nop())

	_, err := svc.Submit(f.ctx, f.student, complaint.SubmitCommand{
		Title: "Broken lab", Description: "long enough text", Category: "Computer",
	})
	assert.NoError(t, err)
}
