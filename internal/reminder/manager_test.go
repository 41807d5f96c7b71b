package reminder

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/store"
)

type fakeStore struct {
	user  *domain.User
	notes map[string]*domain.Notification
	seq   int
}

func newFakeStore(u *domain.User) *fakeStore {
	return &fakeStore{user: u, notes: make(map[string]*domain.Notification)}
}

func (f *fakeStore) GetUser(_ context.Context, chatID int64) (*domain.User, error) {
	if f.user == nil || f.user.ChatID != chatID {
		return nil, store.ErrNotFound
	}
	cp := *f.user
	return &cp, nil
}

func (f *fakeStore) CreateNotification(_ context.Context, n *domain.Notification) error {
	if n.ID == "" {
		f.seq++
		n.ID = "n-" + strconv.Itoa(f.seq)
	}
	cp := *n
	f.notes[n.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateNotification(_ context.Context, n *domain.Notification) error {
	if _, ok := f.notes[n.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *n
	f.notes[n.ID] = &cp
	return nil
}

func (f *fakeStore) GetNotification(_ context.Context, id string) (*domain.Notification, error) {
	n, ok := f.notes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeStore) DeleteNotification(_ context.Context, id string) error {
	delete(f.notes, id)
	return nil
}

func (f *fakeStore) FindNotification(_ context.Context, userID int64, cat domain.Category, template bool) (*domain.Notification, error) {
	for _, n := range f.notes {
		if n.UserID == userID && n.Category == cat && n.Template == template {
			cp := *n
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListUserNotifications(_ context.Context, userID int64, cat domain.Category) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range f.notes {
		if n.UserID == userID && n.Category == cat {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeStore) ListActive(_ context.Context, userID int64) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range f.notes {
		if n.UserID == userID && n.Active {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeStore) DeactivateByCategory(_ context.Context, userID int64, cat domain.Category) (int, error) {
	count := 0
	for _, n := range f.notes {
		if n.UserID == userID && n.Category == cat && n.Active {
			n.Active = false
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) activeByCategory(cat domain.Category) []*domain.Notification {
	var out []*domain.Notification
	for _, n := range f.notes {
		if n.Category == cat && n.Active {
			out = append(out, n)
		}
	}
	return out
}

func newManager(fs *fakeStore, now time.Time) *Manager {
	return NewWithClock(fs, zap.NewNop(), time.UTC, func() time.Time { return now })
}

func TestSetDailyReminderUpserts(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	fs := newFakeStore(&domain.User{ChatID: 7, TZOffset: 3})
	m := newManager(fs, now)

	n1, err := m.SetDailyReminder(context.Background(), 7, domain.TimeOfDay{Hour: 7})
	require.NoError(t, err)
	assert.Equal(t, domain.TimeOfDay{Hour: 4}, n1.Canonical)

	n2, err := m.SetDailyReminder(context.Background(), 7, domain.TimeOfDay{Hour: 8, Minute: 30})
	require.NoError(t, err)
	assert.Equal(t, n1.ID, n2.ID, "daily reminder must stay a single record")
	assert.Equal(t, domain.TimeOfDay{Hour: 5, Minute: 30}, n2.Canonical)
	assert.Len(t, fs.activeByCategory(domain.CategoryDaily), 1)
}

func TestSetGymReminderReplacesPrevious(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	fs := newFakeStore(&domain.User{ChatID: 7, TZOffset: 0})
	m := newManager(fs, now)

	_, err := m.SetGymReminder(context.Background(), 7, domain.TimeOfDay{Hour: 17})
	require.NoError(t, err)
	n2, err := m.SetGymReminder(context.Background(), 7, domain.TimeOfDay{Hour: 19, Minute: 15})
	require.NoError(t, err)

	active := fs.activeByCategory(domain.CategoryGym)
	require.Len(t, active, 1)
	assert.Equal(t, n2.ID, active[0].ID)
	require.NotNil(t, active[0].Meta.Gym)
	assert.Equal(t, "19:15", active[0].Meta.Gym.GymTime)
}

func TestScheduleFollowUpDedupesByDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)
	fs := newFakeStore(&domain.User{ChatID: 7, TZOffset: 2})
	m := newManager(fs, now)
	w := &domain.Workout{ID: "wrk-1", UserID: 7}

	n1, err := m.ScheduleFollowUp(context.Background(), w)
	require.NoError(t, err)
	require.NotNil(t, n1.Meta.FollowUp)
	assert.Equal(t, "wrk-1", n1.Meta.FollowUp.SessionID)
	assert.Equal(t, "2025-03-11", n1.Meta.FollowUp.ScheduledDate)
	assert.Equal(t, DefaultFollowUpTime, n1.Local)

	n2, err := m.ScheduleFollowUp(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, n1.ID, n2.ID, "second completion event must not double-book")

	// One template plus one instance.
	all, err := fs.ListUserNotifications(context.Background(), 7, domain.CategoryFollowUp)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestScheduleFollowUpDateIsCanonical(t *testing.T) {
	// Completion at 00:30 canonical wall clock (22:30 UTC the previous
	// calendar day). "Tomorrow" must be the next canonical date, otherwise
	// the dispatcher fires the follow-up the same day it was scheduled.
	canonical := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2025, 3, 10, 22, 30, 0, 0, time.UTC) // 00:30 Mar 11 canonical
	fs := newFakeStore(&domain.User{ChatID: 7})
	m := NewWithClock(fs, zap.NewNop(), canonical, func() time.Time { return now })

	n, err := m.ScheduleFollowUp(context.Background(), &domain.Workout{ID: "wrk-1", UserID: 7})
	require.NoError(t, err)
	require.NotNil(t, n.Meta.FollowUp)
	assert.Equal(t, "2025-03-12", n.Meta.FollowUp.ScheduledDate)
}

func TestCompleteFollowUp(t *testing.T) {
	now := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)
	fs := newFakeStore(&domain.User{ChatID: 7})
	m := newManager(fs, now)

	n, err := m.ScheduleFollowUp(context.Background(), &domain.Workout{ID: "wrk-1", UserID: 7})
	require.NoError(t, err)

	require.NoError(t, m.CompleteFollowUp(context.Background(), 7, "wrk-1"))
	got, err := fs.GetNotification(context.Background(), n.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	// Unknown session and repeated completion are no-ops.
	require.NoError(t, m.CompleteFollowUp(context.Background(), 7, "nope"))
	require.NoError(t, m.CompleteFollowUp(context.Background(), 7, "wrk-1"))
}

func TestRetimeAllRecomputesFromLocal(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	fs := newFakeStore(&domain.User{ChatID: 7, TZOffset: 3})
	m := newManager(fs, now)

	daily, err := m.SetDailyReminder(context.Background(), 7, domain.TimeOfDay{Hour: 7})
	require.NoError(t, err)
	require.Equal(t, domain.TimeOfDay{Hour: 4}, daily.Canonical)

	custom, err := m.CreateCustomReminder(context.Background(), 7, "stretch",
		domain.Recurrence{Kind: domain.RecurWeekly, Weekdays: []time.Weekday{time.Monday, time.Wednesday}},
		domain.TimeOfDay{Hour: 7, Minute: 30}, false)
	require.NoError(t, err)
	require.Equal(t, "30 4 * * 1,3", custom.CronSpec)

	// The user moved two hours west of the canonical zone.
	fs.user.TZOffset = -2
	require.NoError(t, m.RetimeAll(context.Background(), 7, -2))

	got, err := fs.GetNotification(context.Background(), daily.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TimeOfDay{Hour: 7}, got.Local, "local time is authoritative and untouched")
	assert.Equal(t, domain.TimeOfDay{Hour: 9}, got.Canonical)

	gotCustom, err := fs.GetNotification(context.Background(), custom.ID)
	require.NoError(t, err)
	assert.Equal(t, "30 9 * * 1,3", gotCustom.CronSpec)
}

func TestRetimeAllIncludesTemplates(t *testing.T) {
	now := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)
	fs := newFakeStore(&domain.User{ChatID: 7, TZOffset: 3})
	m := newManager(fs, now)

	// Scheduling a follow-up creates the template at the default 15:00
	// local, canonical 12:00 at offset +3.
	_, err := m.ScheduleFollowUp(context.Background(), &domain.Workout{ID: "wrk-1", UserID: 7})
	require.NoError(t, err)
	tpl, err := fs.FindNotification(context.Background(), 7, domain.CategoryFollowUp, true)
	require.NoError(t, err)
	require.Equal(t, domain.TimeOfDay{Hour: 12}, tpl.Canonical)

	fs.user.TZOffset = -2
	require.NoError(t, m.RetimeAll(context.Background(), 7, -2))

	tpl, err = fs.FindNotification(context.Background(), 7, domain.CategoryFollowUp, true)
	require.NoError(t, err)
	assert.Equal(t, domain.TimeOfDay{Hour: 17}, tpl.Canonical, "templates retime too")
}

func TestCreateCustomReminderOnce(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	fs := newFakeStore(&domain.User{ChatID: 7})
	m := newManager(fs, now)

	n, err := m.CreateCustomReminder(context.Background(), 7, "pick up shoes",
		domain.Recurrence{Kind: domain.RecurDaily}, domain.TimeOfDay{Hour: 12}, true)
	require.NoError(t, err)
	assert.True(t, n.Once)
	got, err := fs.GetNotification(context.Background(), n.ID)
	require.NoError(t, err)
	assert.True(t, got.Once, "execute-once flag survives storage")
}

func TestRetimeAllRejectsBadOffset(t *testing.T) {
	fs := newFakeStore(&domain.User{ChatID: 7})
	m := newManager(fs, time.Now())
	err := m.RetimeAll(context.Background(), 7, 15)
	assert.ErrorIs(t, err, domain.ErrOffsetOutOfRange)
}

func TestToggleAndDelete(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	fs := newFakeStore(&domain.User{ChatID: 7})
	m := newManager(fs, now)

	n, err := m.CreateCustomReminder(context.Background(), 7, "water",
		domain.Recurrence{Kind: domain.RecurDaily}, domain.TimeOfDay{Hour: 10}, false)
	require.NoError(t, err)
	require.True(t, n.Active)

	off, err := m.Toggle(context.Background(), n.ID)
	require.NoError(t, err)
	assert.False(t, off.Active)
	on, err := m.Toggle(context.Background(), n.ID)
	require.NoError(t, err)
	assert.True(t, on.Active)

	_, err = m.Toggle(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, m.Delete(context.Background(), n.ID))
	_, err = fs.GetNotification(context.Background(), n.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, m.Delete(context.Background(), n.ID))
}
