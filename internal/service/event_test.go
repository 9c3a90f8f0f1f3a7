package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slices-events/slices-api/internal/domain"
	"github.com/slices-events/slices-api/internal/repository"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testInfo(capacity int) domain.EventInfo {
	return domain.EventInfo{
		Name:                 "Pottery Workshop",
		Capacity:             capacity,
		WaitlistCapacity:     100,
		EventDate:            testNow.AddDate(1, 0, 0),
		RegistrationDeadline: testNow.AddDate(0, 6, 0),
		OrganizerID:          1,
	}
}

// fakeEventRepo keeps membership state as raw id sets and rebuilds the
// aggregate on every read, the same way the real repository hydrates from
// its join tables.
type fakeEventRepo struct {
	mu        sync.Mutex
	id        uint
	info      domain.EventInfo
	roster    []uint
	waitlist  []uint
	invited   map[uint]bool
	cancelled map[uint]bool

	markInvitedErr map[uint]error
	deleted        bool
}

func newFakeEventRepo(info domain.EventInfo) *fakeEventRepo {
	return &fakeEventRepo{
		id:             1,
		info:           info,
		invited:        map[uint]bool{},
		cancelled:      map[uint]bool{},
		markInvitedErr: map[uint]error{},
	}
}

func entrantsFromIDs(ids []uint) []domain.Entrant {
	out := make([]domain.Entrant, len(ids))
	for i, id := range ids {
		out[i] = domain.Entrant{ID: id}
	}

	return out
}

func idsFromSet(set map[uint]bool) []uint {
	var out []uint
	for id := range set {
		out = append(out, id)
	}

	return out
}

func removeID(ids []uint, id uint) ([]uint, bool) {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...), true
		}
	}

	return ids, false
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.Event) (*domain.Event, error) {
	return event, nil
}

func (r *fakeEventRepo) FindByID(_ context.Context, id uint) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != r.id || r.deleted {
		return nil, repository.ErrEventNotFound
	}

	return domain.RestoreEvent(r.id, r.info, domain.Memberships{
		Roster:       entrantsFromIDs(r.roster),
		Waitlist:     entrantsFromIDs(r.waitlist),
		InvitedIDs:   idsFromSet(r.invited),
		CancelledIDs: idsFromSet(r.cancelled),
	}), nil
}

func (r *fakeEventRepo) FindAllFuture(context.Context, time.Time) ([]*domain.Event, error) {
	return nil, nil
}

func (r *fakeEventRepo) FindByOrganizer(context.Context, uint) ([]*domain.Event, error) {
	return nil, nil
}

func (r *fakeEventRepo) FindForEntrant(context.Context, uint) ([]*domain.Event, error) {
	return nil, nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != r.id || r.deleted {
		return repository.ErrEventNotFound
	}
	r.deleted = true

	return nil
}

func (r *fakeEventRepo) RosterEntrants(_ context.Context, _ uint) ([]domain.Entrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return entrantsFromIDs(r.roster), nil
}

func (r *fakeEventRepo) WaitlistEntrants(_ context.Context, _ uint) ([]domain.Entrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return entrantsFromIDs(r.waitlist), nil
}

func (r *fakeEventRepo) AddToRoster(_ context.Context, _, entrantID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.roster) >= r.info.Capacity {
		return repository.ErrEventFull
	}
	r.roster = append(r.roster, entrantID)

	return nil
}

func (r *fakeEventRepo) AddToWaitlist(_ context.Context, _, entrantID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.waitlist {
		if id == entrantID {
			return repository.ErrDuplicateMembership
		}
	}
	r.waitlist = append(r.waitlist, entrantID)

	return nil
}

func (r *fakeEventRepo) RemoveFromWaitlist(_ context.Context, _, entrantID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ok bool
	if r.waitlist, ok = removeID(r.waitlist, entrantID); !ok {
		return repository.ErrNotInWaitlist
	}

	return nil
}

func (r *fakeEventRepo) MarkInvited(_ context.Context, _, entrantID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.markInvitedErr[entrantID]; err != nil {
		return err
	}
	if r.invited[entrantID] {
		return repository.ErrDuplicateMembership
	}
	r.invited[entrantID] = true

	return nil
}

func (r *fakeEventRepo) ClearInvited(_ context.Context, _, entrantID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.invited[entrantID] {
		return repository.ErrMembershipNotFound
	}
	delete(r.invited, entrantID)

	return nil
}

func (r *fakeEventRepo) AddCancelled(_ context.Context, _, entrantID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancelled[entrantID] {
		return repository.ErrDuplicateMembership
	}
	r.cancelled[entrantID] = true

	return nil
}

func (r *fakeEventRepo) RemoveCancelled(_ context.Context, _, entrantID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.cancelled[entrantID] {
		return repository.ErrMembershipNotFound
	}
	delete(r.cancelled, entrantID)

	return nil
}

type fakeEntrantReader struct {
	entrants map[uint]domain.Entrant
}

func (r *fakeEntrantReader) FindByID(_ context.Context, id uint) (domain.Entrant, error) {
	ent, ok := r.entrants[id]
	if !ok {
		return domain.Entrant{}, ErrEntrantNotFound
	}

	return ent, nil
}

type fakeNotificationStore struct {
	mu      sync.Mutex
	created []domain.Notification
	batches [][]domain.Notification
	deleted []uint
}

func (s *fakeNotificationStore) Create(_ context.Context, n domain.Notification) (domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.created = append(s.created, n)

	return n, nil
}

func (s *fakeNotificationStore) CreateBatch(_ context.Context, ns []domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches = append(s.batches, ns)

	return nil
}

func (s *fakeNotificationStore) DeleteByEvent(_ context.Context, eventID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, eventID)

	return nil
}

func (s *fakeNotificationStore) byType(typ domain.NotificationType) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Notification
	for _, n := range s.created {
		if n.Type == typ {
			out = append(out, n)
		}
	}

	return out
}

func newLotteryService(repo *fakeEventRepo, notifications *fakeNotificationStore, entrants ...domain.Entrant) *EventService {
	reader := &fakeEntrantReader{entrants: map[uint]domain.Entrant{}}
	for _, ent := range entrants {
		reader.entrants[ent.ID] = ent
	}

	return NewEventService(repo, reader, notifications, domain.NewLottery(rand.NewSource(42)))
}

func TestEventService_CreateEvent_InvalidDates(t *testing.T) {
	repo := newFakeEventRepo(testInfo(5))
	svc := newLotteryService(repo, &fakeNotificationStore{})

	info := testInfo(5)
	info.EventDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateEvent(context.Background(), info)
	assert.ErrorIs(t, err, ErrInvalidDates)
}

func TestEventService_JoinWaitlist(t *testing.T) {
	repo := newFakeEventRepo(testInfo(5))
	svc := newLotteryService(repo, &fakeNotificationStore{}, domain.Entrant{ID: 10})

	require.NoError(t, svc.JoinWaitlist(context.Background(), 1, 10))
	assert.Equal(t, []uint{10}, repo.waitlist)

	err := svc.JoinWaitlist(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	err = svc.JoinWaitlist(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrEntrantNotFound)

	err = svc.JoinWaitlist(context.Background(), 2, 10)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventService_JoinWaitlist_CancelledRejoins(t *testing.T) {
	repo := newFakeEventRepo(testInfo(5))
	repo.cancelled[10] = true
	svc := newLotteryService(repo, &fakeNotificationStore{}, domain.Entrant{ID: 10})

	require.NoError(t, svc.JoinWaitlist(context.Background(), 1, 10))

	assert.Equal(t, []uint{10}, repo.waitlist)
	assert.Empty(t, repo.cancelled)
}

func TestEventService_LeaveWaitlist_DropsInvitedMark(t *testing.T) {
	repo := newFakeEventRepo(testInfo(5))
	repo.waitlist = []uint{10}
	repo.invited[10] = true
	svc := newLotteryService(repo, &fakeNotificationStore{})

	require.NoError(t, svc.LeaveWaitlist(context.Background(), 1, 10))

	assert.Empty(t, repo.waitlist)
	assert.Empty(t, repo.invited)
}

func TestEventService_DoLottery(t *testing.T) {
	repo := newFakeEventRepo(testInfo(3))
	repo.waitlist = []uint{1, 2, 3, 4, 5, 6, 7, 8}
	notifications := &fakeNotificationStore{}
	svc := newLotteryService(repo, notifications)

	require.NoError(t, svc.DoLottery(context.Background(), 1))

	// Three seats, three winners. Winners stay in the waitlist.
	assert.Len(t, repo.invited, 3)
	assert.Len(t, repo.waitlist, 8)
	assert.Empty(t, repo.roster)

	invitations := notifications.byType(domain.NotificationInvitation)
	require.Len(t, invitations, 3)
	for _, n := range invitations {
		assert.True(t, repo.invited[n.RecipientID])
		assert.Equal(t, "Congratulations!", n.Title)
		assert.Equal(t, "You have won the lottery for Pottery Workshop!", n.Body)
	}

	require.Len(t, notifications.batches, 1)
	losers := notifications.batches[0]
	assert.Len(t, losers, 5)
	for _, n := range losers {
		assert.Equal(t, domain.NotificationNotSelected, n.Type)
		assert.False(t, repo.invited[n.RecipientID])
		assert.Equal(t, "Sorry!", n.Title)
		assert.Equal(t, "You have lost the lottery for Pottery Workshop!", n.Body)
	}
}

func TestEventService_DoLottery_FewerEntrantsThanSeats(t *testing.T) {
	repo := newFakeEventRepo(testInfo(10))
	repo.waitlist = []uint{1, 2}
	notifications := &fakeNotificationStore{}
	svc := newLotteryService(repo, notifications)

	require.NoError(t, svc.DoLottery(context.Background(), 1))

	assert.Len(t, repo.invited, 2)
	assert.Empty(t, notifications.batches)
}

func TestEventService_EntrantStatus(t *testing.T) {
	repo := newFakeEventRepo(testInfo(5))
	repo.roster = []uint{1}
	repo.waitlist = []uint{2, 3}
	repo.invited[3] = true
	repo.cancelled[4] = true
	svc := newLotteryService(repo, &fakeNotificationStore{},
		domain.Entrant{ID: 1}, domain.Entrant{ID: 2}, domain.Entrant{ID: 3},
		domain.Entrant{ID: 4}, domain.Entrant{ID: 5})

	for id, want := range map[uint]domain.EntrantStatus{
		1: domain.StatusParticipant,
		2: domain.StatusWaitlisted,
		3: domain.StatusInvited,
		4: domain.StatusCancelled,
		5: domain.StatusNotInvolved,
	} {
		status, err := svc.EntrantStatus(context.Background(), 1, id)
		require.NoError(t, err)
		assert.Equalf(t, want, status, "entrant %d", id)
	}

	_, err := svc.EntrantStatus(context.Background(), 2, 1)
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = svc.EntrantStatus(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrEntrantNotFound)
}

func TestEventService_DoLottery_NoSeats(t *testing.T) {
	repo := newFakeEventRepo(testInfo(1))
	repo.roster = []uint{1}
	repo.waitlist = []uint{2, 3}
	svc := newLotteryService(repo, &fakeNotificationStore{})

	err := svc.DoLottery(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEventFull)
}

func TestEventService_DoReplacementLottery_NoSeats(t *testing.T) {
	repo := newFakeEventRepo(testInfo(1))
	repo.roster = []uint{1}
	repo.waitlist = []uint{2, 3}
	svc := newLotteryService(repo, &fakeNotificationStore{})

	err := svc.DoReplacementLottery(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEventFull)
}

func TestEventService_DoLottery_EmptyWaitlist(t *testing.T) {
	repo := newFakeEventRepo(testInfo(5))
	svc := newLotteryService(repo, &fakeNotificationStore{})

	err := svc.DoLottery(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEmptyWaitlist)
}

func TestEventService_DoLottery_PartialFailure(t *testing.T) {
	repo := newFakeEventRepo(testInfo(3))
	repo.waitlist = []uint{1, 2, 3}
	storeErr := errors.New("connection reset")
	repo.markInvitedErr[2] = storeErr
	notifications := &fakeNotificationStore{}
	svc := newLotteryService(repo, notifications)

	err := svc.DoLottery(context.Background(), 1)

	var batchErr *domain.PartialBatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Outcomes, 3)

	failed := batchErr.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, uint(2), failed[0].EntrantID)
	assert.ErrorIs(t, failed[0].Err, storeErr)

	// The other winners' writes went through and are not rolled back.
	assert.Len(t, repo.invited, 2)
	// Losers are not notified while winner writes are unresolved.
	assert.Empty(t, notifications.batches)
}

func TestEventService_ReplacementLottery_SkipsInvitedAndCancelled(t *testing.T) {
	repo := newFakeEventRepo(testInfo(5))
	repo.roster = []uint{1, 2, 3, 4}
	repo.waitlist = []uint{5, 6, 7}
	repo.invited[5] = true
	repo.cancelled[6] = true
	notifications := &fakeNotificationStore{}
	svc := newLotteryService(repo, notifications)

	require.NoError(t, svc.DoReplacementLottery(context.Background(), 1))

	// One seat, one eligible candidate.
	assert.True(t, repo.invited[7])

	invitations := notifications.byType(domain.NotificationInvitation)
	require.Len(t, invitations, 1)
	assert.Equal(t, uint(7), invitations[0].RecipientID)
}

func TestEventService_ReplacementLottery_NoEligible(t *testing.T) {
	repo := newFakeEventRepo(testInfo(5))
	repo.waitlist = []uint{5}
	repo.invited[5] = true
	svc := newLotteryService(repo, &fakeNotificationStore{})

	err := svc.DoReplacementLottery(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoEligibleEntrants)
}

func TestEventService_CancelEntrants(t *testing.T) {
	repo := newFakeEventRepo(testInfo(5))
	repo.waitlist = []uint{1, 2}
	repo.invited[1] = true
	repo.invited[2] = true
	notifications := &fakeNotificationStore{}
	svc := newLotteryService(repo, notifications)

	require.NoError(t, svc.CancelEntrants(context.Background(), 1, []uint{1, 2}))

	assert.Empty(t, repo.invited)
	assert.Empty(t, repo.waitlist)
	assert.True(t, repo.cancelled[1])
	assert.True(t, repo.cancelled[2])
	assert.Len(t, notifications.created, 2)
}

func TestEventService_CancelEntrants_PartialFailure(t *testing.T) {
	repo := newFakeEventRepo(testInfo(5))
	repo.waitlist = []uint{1, 2}
	repo.invited[1] = true
	// Entrant 2 is waitlisted but was never invited.
	svc := newLotteryService(repo, &fakeNotificationStore{})

	err := svc.CancelEntrants(context.Background(), 1, []uint{1, 2})

	var batchErr *domain.PartialBatchError
	require.ErrorAs(t, err, &batchErr)

	failed := batchErr.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, uint(2), failed[0].EntrantID)
	assert.ErrorIs(t, failed[0].Err, ErrNotInvited)

	// The invited entrant was still cancelled.
	assert.True(t, repo.cancelled[1])
}

func TestEventService_CancelEntrant_NotInvited(t *testing.T) {
	repo := newFakeEventRepo(testInfo(5))
	repo.waitlist = []uint{1}
	svc := newLotteryService(repo, &fakeNotificationStore{})

	err := svc.CancelEntrant(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrNotInvited)
}

func TestEventService_ReAdmitEntrant(t *testing.T) {
	repo := newFakeEventRepo(testInfo(5))
	repo.cancelled[10] = true
	svc := newLotteryService(repo, &fakeNotificationStore{}, domain.Entrant{ID: 10})

	require.NoError(t, svc.ReAdmitEntrant(context.Background(), 1, 10))

	assert.Empty(t, repo.cancelled)
	assert.Equal(t, []uint{10}, repo.waitlist)

	err := svc.ReAdmitEntrant(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrNotCancelled)
}

func TestEventService_DeleteEvent_RemovesNotifications(t *testing.T) {
	repo := newFakeEventRepo(testInfo(5))
	notifications := &fakeNotificationStore{}
	svc := newLotteryService(repo, notifications)

	require.NoError(t, svc.DeleteEvent(context.Background(), 1))
	assert.Equal(t, []uint{1}, notifications.deleted)

	err := svc.DeleteEvent(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
