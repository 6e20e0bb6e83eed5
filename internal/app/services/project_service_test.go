package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okan/urcp/internal/app/engine"
	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/app/models/dto"
	"github.com/okan/urcp/internal/app/repositories"
	"github.com/okan/urcp/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	studentAlice = models.Actor{ID: 1, Name: "Alice", Role: models.RoleStudent, Department: "Physics"}
	studentBob   = models.Actor{ID: 2, Name: "Bob", Role: models.RoleStudent, Department: "Physics"}
	facultyFiona = models.Actor{ID: 10, Name: "Prof. Fiona", Role: models.RoleFaculty, Department: "Physics"}
)

type fakeProjectStore struct {
	projects  map[int64]*models.Project
	nextID    int64
	nextAttID int64
	saveErr   error
	saves     int
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: map[int64]*models.Project{}, nextID: 1, nextAttID: 1}
}

func (f *fakeProjectStore) Create(_ context.Context, p *models.Project) (int64, error) {
	p.ID = f.nextID
	f.nextID++
	f.projects[p.ID] = p
	return p.ID, nil
}

func (f *fakeProjectStore) GetAggregate(_ context.Context, id int64) (*models.Project, error) {
	return f.projects[id], nil
}

func (f *fakeProjectStore) SaveAggregate(_ context.Context, p *models.Project) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	for i := range p.Attachments {
		if p.Attachments[i].ID == 0 {
			p.Attachments[i].ID = f.nextAttID
			f.nextAttID++
		}
	}
	f.projects[p.ID] = p
	return nil
}

func (f *fakeProjectStore) DeleteAttachment(_ context.Context, projectID, attachmentID int64) error {
	p, ok := f.projects[projectID]
	if !ok {
		return apperrors.ErrResourceNotFound
	}
	kept := p.Attachments[:0]
	for _, att := range p.Attachments {
		if att.ID != attachmentID {
			kept = append(kept, att)
		}
	}
	p.Attachments = kept
	return nil
}

func (f *fakeProjectStore) Delete(_ context.Context, id int64) error {
	delete(f.projects, id)
	return nil
}

func (f *fakeProjectStore) GetAll(_ context.Context, _ repositories.ProjectFilter) ([]*models.Project, int64, error) {
	var out []*models.Project
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProjectStore) GetByMember(_ context.Context, userID int64, _, _ int) ([]*models.Project, int64, error) {
	var out []*models.Project
	for _, p := range f.projects {
		if p.IsInitiatorOrMentor(userID) || p.IsAcceptedParticipant(userID) {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeProjectStore) GetPending(_ context.Context, _, _ int) ([]*models.Project, int64, error) {
	var out []*models.Project
	for _, p := range f.projects {
		if p.Status == models.StatusProposed && p.MentorID == nil {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

type fakeUserStore struct {
	users map[int64]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{users: map[int64]*models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) (int64, error) {
	id := int64(len(f.users) + 1)
	u.ID = id
	f.users[id] = u
	return id, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, u *models.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) GetAll(_ context.Context, _, _, _ string, _, _ int) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

type fakeNotificationStore struct {
	created   []*models.Notification
	createErr error
}

func (f *fakeNotificationStore) Create(_ context.Context, n *models.Notification) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	n.ID = int64(len(f.created) + 1)
	f.created = append(f.created, n)
	return n.ID, nil
}

func (f *fakeNotificationStore) GetByRecipient(_ context.Context, recipientID int64, _, _ int) ([]*models.Notification, int64, error) {
	var out []*models.Notification
	for _, n := range f.created {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotificationStore) UnreadCount(_ context.Context, recipientID int64) (int64, error) {
	var count int64
	for _, n := range f.created {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, recipientID, notificationID int64) error {
	for _, n := range f.created {
		if n.ID == notificationID && n.RecipientID == recipientID {
			n.IsRead = true
			return nil
		}
	}
	return apperrors.ErrResourceNotFound
}

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, recipientID int64) error {
	for _, n := range f.created {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

type serviceFixture struct {
	projects      *fakeProjectStore
	users         *fakeUserStore
	notifications *fakeNotificationStore
	service       ProjectService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	projects := newFakeProjectStore()
	users := newFakeUserStore(
		&models.User{ID: studentAlice.ID, Name: "Alice", Email: "alice@uni.edu", Role: models.RoleStudent, Department: "Physics"},
		&models.User{ID: studentBob.ID, Name: "Bob", Email: "bob@uni.edu", Role: models.RoleStudent, Department: "Physics"},
		&models.User{ID: facultyFiona.ID, Name: "Prof. Fiona", Email: "fiona@uni.edu", Role: models.RoleFaculty, Department: "Physics"},
	)
	notifications := &fakeNotificationStore{}

	return &serviceFixture{
		projects:      projects,
		users:         users,
		notifications: notifications,
		service:       NewProjectService(projects, users, NewNotificationService(notifications)),
	}
}

func (fx *serviceFixture) createMentoredProject(t *testing.T) *models.Project {
	t.Helper()
	ctx := context.Background()

	p, err := fx.service.Create(ctx, studentAlice, &dto.CreateProjectRequest{
		Title:       "Quantum Sensing",
		Description: "Low-noise magnetometry",
		Department:  "Physics",
	})
	require.NoError(t, err)

	p, err = fx.service.ApproveAsMentor(ctx, facultyFiona, p.ID)
	require.NoError(t, err)
	return p
}

func TestCreatePersistsAndReloads(t *testing.T) {
	fx := newServiceFixture(t)

	p, err := fx.service.Create(context.Background(), facultyFiona, &dto.CreateProjectRequest{
		Title:       "Lab Automation",
		Description: "Robotic pipetting",
		Department:  "Physics",
		Tags:        []string{"robotics"},
	})
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.Equal(t, models.StatusApproved, p.Status)
	require.NotNil(t, p.MentorID)
	assert.Equal(t, facultyFiona.ID, *p.MentorID)
}

func TestMutationDispatchesAfterSave(t *testing.T) {
	fx := newServiceFixture(t)
	p := fx.createMentoredProject(t)

	_, err := fx.service.Participate(context.Background(), studentBob, p.ID, &dto.ParticipationRequest{
		Action: "request",
		Role:   "Research Assistant",
	})
	require.NoError(t, err)

	// Initiator and mentor each receive a stored notification carrying the
	// project reference
	require.Len(t, fx.notifications.created, 2)
	for _, n := range fx.notifications.created {
		assert.Equal(t, models.NotifyNewRoleRequest, n.Type)
		require.NotNil(t, n.ProjectID)
		assert.Equal(t, p.ID, *n.ProjectID)
		require.NotNil(t, n.FromUserID)
		assert.Equal(t, studentBob.ID, *n.FromUserID)
		assert.False(t, n.IsRead)
	}
}

func TestFailedSaveSuppressesDispatch(t *testing.T) {
	fx := newServiceFixture(t)
	p := fx.createMentoredProject(t)
	fx.projects.saveErr = errors.New("connection reset")

	_, err := fx.service.Participate(context.Background(), studentBob, p.ID, &dto.ParticipationRequest{
		Action: "request",
		Role:   "Research Assistant",
	})
	require.Error(t, err)
	assert.Empty(t, fx.notifications.created, "nothing is dispatched when the save fails")
}

func TestNotificationFailureDoesNotFailMutation(t *testing.T) {
	fx := newServiceFixture(t)
	p := fx.createMentoredProject(t)
	fx.notifications.createErr = errors.New("sink unavailable")

	updated, err := fx.service.Participate(context.Background(), studentBob, p.ID, &dto.ParticipationRequest{
		Action: "request",
		Role:   "Research Assistant",
	})
	require.NoError(t, err, "notification delivery is best effort")
	require.Len(t, updated.Participants, 1)
	assert.Equal(t, models.ParticipantRequested, updated.Participants[0].Status)
}

func TestMutateMissingProject(t *testing.T) {
	fx := newServiceFixture(t)

	_, err := fx.service.SetStatus(context.Background(), facultyFiona, 404, string(models.StatusOngoing))
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)
}

func TestInviteUnknownUser(t *testing.T) {
	fx := newServiceFixture(t)
	p := fx.createMentoredProject(t)

	_, err := fx.service.Participate(context.Background(), facultyFiona, p.ID, &dto.ParticipationRequest{
		Action:       "invite",
		Role:         "Data Analyst",
		TargetUserID: 999,
	})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestDeleteRequiresInitiator(t *testing.T) {
	fx := newServiceFixture(t)
	p := fx.createMentoredProject(t)
	ctx := context.Background()

	err := fx.service.Delete(ctx, facultyFiona, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, fx.service.Delete(ctx, studentAlice, p.ID))
	_, err = fx.service.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)
}

func TestGetPendingExcludesMentoredProposals(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	proposal, err := fx.service.Create(ctx, studentAlice, &dto.CreateProjectRequest{
		Title:       "Quantum Sensing",
		Description: "Low-noise magnetometry",
		Department:  "Physics",
	})
	require.NoError(t, err)

	// A mentored project moved back to proposed keeps its mentor and can
	// never be approved again, so it must not show up as pending
	mentored := fx.createMentoredProject(t)
	mentored, err = fx.service.SetStatus(ctx, facultyFiona, mentored.ID, string(models.StatusProposed))
	require.NoError(t, err)
	require.NotNil(t, mentored.MentorID)
	_, err = fx.service.ApproveAsMentor(ctx, facultyFiona, mentored.ID)
	require.ErrorIs(t, err, apperrors.ErrConflict)

	resp, err := fx.service.GetPending(ctx, facultyFiona, 1, 10)
	require.NoError(t, err)
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, proposal.ID, resp.Projects[0].ID)
}

func TestGetPendingFacultyOnly(t *testing.T) {
	fx := newServiceFixture(t)

	_, err := fx.service.GetPending(context.Background(), studentAlice, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	resp, err := fx.service.GetPending(context.Background(), facultyFiona, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, resp.Projects)
}

func TestFullWorkflowThroughService(t *testing.T) {
	fx := newServiceFixture(t)
	p := fx.createMentoredProject(t)
	ctx := context.Background()

	_, err := fx.service.Participate(ctx, studentBob, p.ID, &dto.ParticipationRequest{
		Action: "request", Role: "Research Assistant",
	})
	require.NoError(t, err)

	_, err = fx.service.Participate(ctx, facultyFiona, p.ID, &dto.ParticipationRequest{
		Action: "accept", TargetUserID: studentBob.ID,
	})
	require.NoError(t, err)

	updated, err := fx.service.SetStatus(ctx, facultyFiona, p.ID, string(models.StatusFinished))
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, updated.Status)

	// Bob holds: approval of his own request plus the completion notice
	bobNotifications, _, err := fx.notifications.GetByRecipient(ctx, studentBob.ID, 1, 10)
	require.NoError(t, err)
	types := make([]models.NotificationType, 0, len(bobNotifications))
	for _, n := range bobNotifications {
		types = append(types, n.Type)
	}
	assert.ElementsMatch(t, []models.NotificationType{
		models.NotifyRoleRequestApproved,
		models.NotifyProjectCompleted,
	}, types)
}

func TestAttachmentAddAndRemove(t *testing.T) {
	fx := newServiceFixture(t)
	p := fx.createMentoredProject(t)
	ctx := context.Background()

	_, err := fx.service.AddAttachment(ctx, studentBob, p.ID, "Protocol", "http://files/p.pdf", "p.pdf")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, "non-members cannot attach files")

	att, err := fx.service.AddAttachment(ctx, studentAlice, p.ID, "Protocol", "http://files/p.pdf", "p.pdf")
	require.NoError(t, err)
	require.NotZero(t, att.ID)

	_, err = fx.service.RemoveAttachment(ctx, studentBob, p.ID, att.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	removed, err := fx.service.RemoveAttachment(ctx, facultyFiona, p.ID, att.ID)
	require.NoError(t, err)
	assert.Equal(t, "p.pdf", removed.FileKey)

	_, err = fx.service.RemoveAttachment(ctx, facultyFiona, p.ID, att.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestNotificationServiceReadFlow(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store)
	ctx := context.Background()

	svc.Dispatch(ctx, 7, []engine.NotificationIntent{
		{RecipientID: studentBob.ID, Type: models.NotifyNewComment, Message: "m1", FromUserID: studentAlice.ID},
		{RecipientID: studentBob.ID, Type: models.NotifyNewReply, Message: "m2", FromUserID: studentAlice.ID},
	})

	count, err := svc.UnreadCount(ctx, studentBob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkRead(ctx, studentBob, store.created[0].ID))
	count, err = svc.UnreadCount(ctx, studentBob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Someone else's notification reads as missing
	err = svc.MarkRead(ctx, studentAlice, store.created[1].ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	require.NoError(t, svc.MarkAllRead(ctx, studentBob))
	count, err = svc.UnreadCount(ctx, studentBob)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDispatchStampsCreatedAt(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store)

	before := time.Now()
	svc.Dispatch(context.Background(), 7, []engine.NotificationIntent{
		{RecipientID: 1, Type: models.NotifyProjectUpdate, Message: "m"},
	})

	require.Len(t, store.created, 1)
	assert.False(t, store.created[0].CreatedAt.Before(before))
}
