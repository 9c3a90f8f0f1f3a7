package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slices-events/slices-api/internal/domain"
	"github.com/slices-events/slices-api/internal/repository"
)

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]domain.Notification
	batches       [][]domain.Notification
}

func newFakeNotificationRepo(ns ...domain.Notification) *fakeNotificationRepo {
	repo := &fakeNotificationRepo{notifications: map[string]domain.Notification{}}
	for _, n := range ns {
		repo.notifications[n.ID] = n
	}

	return repo
}

func (r *fakeNotificationRepo) Create(_ context.Context, n domain.Notification) (domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications[n.ID] = n

	return n, nil
}

func (r *fakeNotificationRepo) CreateBatch(_ context.Context, ns []domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.batches = append(r.batches, ns)

	return nil
}

func (r *fakeNotificationRepo) FindByID(_ context.Context, id string) (domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return domain.Notification{}, repository.ErrNotificationNotFound
	}

	return n, nil
}

func (r *fakeNotificationRepo) FindByRecipient(_ context.Context, recipientID uint) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}

	return out, nil
}

func (r *fakeNotificationRepo) FindByEvent(_ context.Context, eventID uint, typ domain.NotificationType) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Notification
	for _, n := range r.notifications {
		if n.EventID == eventID && (typ == "" || n.Type == typ) {
			out = append(out, n)
		}
	}

	return out, nil
}

func (r *fakeNotificationRepo) Update(_ context.Context, n domain.Notification) (domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notifications[n.ID]; !ok {
		return domain.Notification{}, repository.ErrNotificationNotFound
	}
	r.notifications[n.ID] = n

	return n, nil
}

func (r *fakeNotificationRepo) get(t *testing.T, id string) domain.Notification {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	require.True(t, ok)

	return n
}

func invitation(id string, eventID, recipientID uint) domain.Notification {
	return domain.Notification{
		ID:          id,
		Type:        domain.NotificationInvitation,
		EventID:     eventID,
		RecipientID: recipientID,
		Title:       "Congratulations!",
	}
}

func notSelected(id string, eventID, recipientID uint) domain.Notification {
	return domain.Notification{
		ID:          id,
		Type:        domain.NotificationNotSelected,
		EventID:     eventID,
		RecipientID: recipientID,
		Title:       "Sorry!",
	}
}

func TestNotificationService_AcceptInvitation(t *testing.T) {
	events := newFakeEventRepo(testInfo(5))
	events.waitlist = []uint{10}
	events.invited[10] = true
	repo := newFakeNotificationRepo(invitation("n1", 1, 10))
	svc := NewNotificationService(repo, events)

	require.NoError(t, svc.AcceptInvitation(context.Background(), "n1"))

	assert.Equal(t, []uint{10}, events.roster)
	assert.Empty(t, events.waitlist)
	assert.Empty(t, events.invited)

	n := repo.get(t, "n1")
	assert.True(t, n.Accepted)
	assert.False(t, n.Declined)
}

func TestNotificationService_AcceptInvitation_AlreadyResolved(t *testing.T) {
	events := newFakeEventRepo(testInfo(5))
	events.waitlist = []uint{10}
	events.invited[10] = true
	n := invitation("n1", 1, 10)
	n.Declined = true
	repo := newFakeNotificationRepo(n)
	svc := NewNotificationService(repo, events)

	err := svc.AcceptInvitation(context.Background(), "n1")
	assert.ErrorIs(t, err, ErrInvitationResolved)

	// Membership is untouched.
	assert.Empty(t, events.roster)
	assert.Equal(t, []uint{10}, events.waitlist)
}

func TestNotificationService_AcceptInvitation_WrongType(t *testing.T) {
	events := newFakeEventRepo(testInfo(5))
	repo := newFakeNotificationRepo(notSelected("n1", 1, 10))
	svc := NewNotificationService(repo, events)

	err := svc.AcceptInvitation(context.Background(), "n1")
	assert.ErrorIs(t, err, ErrWrongNotificationType)
}

func TestNotificationService_AcceptInvitation_EventFull(t *testing.T) {
	events := newFakeEventRepo(testInfo(1))
	events.roster = []uint{1}
	events.waitlist = []uint{10}
	events.invited[10] = true
	repo := newFakeNotificationRepo(invitation("n1", 1, 10))
	svc := NewNotificationService(repo, events)

	err := svc.AcceptInvitation(context.Background(), "n1")
	assert.ErrorIs(t, err, ErrEventFull)

	// The failed accept resolves nothing; the entrant stays invited.
	n := repo.get(t, "n1")
	assert.False(t, n.Accepted)
	assert.Equal(t, []uint{10}, events.waitlist)
	assert.True(t, events.invited[10])
}

func TestNotificationService_AcceptInvitation_NotFound(t *testing.T) {
	svc := NewNotificationService(newFakeNotificationRepo(), newFakeEventRepo(testInfo(5)))

	err := svc.AcceptInvitation(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestNotificationService_DeclineInvitation(t *testing.T) {
	events := newFakeEventRepo(testInfo(5))
	events.waitlist = []uint{10}
	events.invited[10] = true
	repo := newFakeNotificationRepo(invitation("n1", 1, 10))
	svc := NewNotificationService(repo, events)

	require.NoError(t, svc.DeclineInvitation(context.Background(), "n1"))

	assert.Empty(t, events.roster)
	assert.Empty(t, events.waitlist)
	assert.Empty(t, events.invited)
	assert.True(t, events.cancelled[10])

	n := repo.get(t, "n1")
	assert.True(t, n.Declined)
	assert.False(t, n.Accepted)
}

func TestNotificationService_StayNotSelected(t *testing.T) {
	events := newFakeEventRepo(testInfo(5))
	events.waitlist = []uint{10}
	repo := newFakeNotificationRepo(notSelected("n1", 1, 10))
	svc := NewNotificationService(repo, events)

	require.NoError(t, svc.StayNotSelected(context.Background(), "n1"))

	// Staying changes the record, never the membership.
	assert.Equal(t, []uint{10}, events.waitlist)
	n := repo.get(t, "n1")
	assert.True(t, n.Stayed)

	err := svc.StayNotSelected(context.Background(), "n1")
	assert.ErrorIs(t, err, ErrInvitationResolved)
}

func TestNotificationService_StayNotSelected_WrongType(t *testing.T) {
	events := newFakeEventRepo(testInfo(5))
	repo := newFakeNotificationRepo(invitation("n1", 1, 10))
	svc := NewNotificationService(repo, events)

	err := svc.StayNotSelected(context.Background(), "n1")
	assert.ErrorIs(t, err, ErrWrongNotificationType)
}

func TestNotificationService_LeaveNotSelected(t *testing.T) {
	events := newFakeEventRepo(testInfo(5))
	events.waitlist = []uint{10, 11}
	repo := newFakeNotificationRepo(notSelected("n1", 1, 10))
	svc := NewNotificationService(repo, events)

	require.NoError(t, svc.LeaveNotSelected(context.Background(), "n1"))

	assert.Equal(t, []uint{11}, events.waitlist)
	n := repo.get(t, "n1")
	assert.True(t, n.Declined)
}

func TestNotificationService_MarkRead(t *testing.T) {
	events := newFakeEventRepo(testInfo(5))
	repo := newFakeNotificationRepo(invitation("n1", 1, 10))
	svc := NewNotificationService(repo, events)

	require.NoError(t, svc.MarkRead(context.Background(), "n1"))

	n := repo.get(t, "n1")
	assert.True(t, n.Read)
	assert.False(t, n.Resolved())
}

func TestNotificationService_SendBulk(t *testing.T) {
	events := newFakeEventRepo(testInfo(5))
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, events)

	require.NoError(t, svc.SendBulk(context.Background(), 1, 2, []uint{10, 11, 12}, "Update", "Venue changed"))

	require.Len(t, repo.batches, 1)
	batch := repo.batches[0]
	require.Len(t, batch, 3)
	for i, n := range batch {
		assert.Equal(t, domain.NotificationGeneral, n.Type)
		assert.Equal(t, uint(10+i), n.RecipientID)
		assert.Equal(t, uint(2), n.SenderID)
		assert.Equal(t, "Update", n.Title)
	}
}

func TestNotificationService_SendBulk_NoRecipients(t *testing.T) {
	events := newFakeEventRepo(testInfo(5))
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, events)

	require.NoError(t, svc.SendBulk(context.Background(), 1, 2, nil, "Update", "Venue changed"))
	assert.Empty(t, repo.batches)
}

func TestNotificationService_NotificationsForEvent_TypeFilter(t *testing.T) {
	events := newFakeEventRepo(testInfo(5))
	repo := newFakeNotificationRepo(
		invitation("n1", 1, 10),
		notSelected("n2", 1, 11),
		notSelected("n3", 2, 12),
	)
	svc := NewNotificationService(repo, events)

	all, err := svc.NotificationsForEvent(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	losers, err := svc.NotificationsForEvent(context.Background(), 1, domain.NotificationNotSelected)
	require.NoError(t, err)
	require.Len(t, losers, 1)
	assert.Equal(t, "n2", losers[0].ID)
}
