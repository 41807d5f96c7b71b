package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestUserRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetUser(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	u := &domain.User{
		ChatID:   42,
		FullName: "Alex",
		Username: "alex_fit",
		Goal:     domain.GoalBuildMuscle,
		TZOffset: 3,
	}
	require.NoError(t, repo.UpsertUser(ctx, u))

	got, err := repo.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Alex", got.FullName)
	assert.Equal(t, domain.GoalBuildMuscle, got.Goal)
	assert.Equal(t, 3, got.TZOffset)
	assert.False(t, got.Verified)

	u.Verified = true
	u.FullName = "Alexandra"
	require.NoError(t, repo.UpsertUser(ctx, u))
	got, err = repo.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Equal(t, "Alexandra", got.FullName)

	require.NoError(t, repo.SetCurrentNode(ctx, 42, "ask_goal"))
	require.NoError(t, repo.SetTimezoneOffset(ctx, 42, -2))
	got, err = repo.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "ask_goal", got.CurrentNode)
	assert.Equal(t, -2, got.TZOffset)
}

func TestCheckinRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	created := time.Date(2025, 3, 10, 5, 0, 0, 0, time.UTC)

	c := &domain.Checkin{UserID: 42, CreatedAt: created}
	require.NoError(t, repo.CreateCheckin(ctx, c))
	require.NotEmpty(t, c.ID)

	require.NoError(t, c.SetFeeling(8))
	require.NoError(t, c.SetSleepHours(7.5))
	require.NoError(t, c.SetGoingToGym(true))
	require.NoError(t, c.SetGymTime(domain.TimeOfDay{Hour: 18, Minute: 30}))
	require.NoError(t, repo.UpdateCheckin(ctx, c))

	got, err := repo.GetCheckin(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Feeling)
	assert.Equal(t, 8, *got.Feeling)
	require.NotNil(t, got.SleepHours)
	assert.Equal(t, 7.5, *got.SleepHours)
	require.NotNil(t, got.GymTime)
	assert.Equal(t, domain.TimeOfDay{Hour: 18, Minute: 30}, *got.GymTime)
	assert.False(t, got.Completed)

	// Open within the creation day, none once completed.
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Second)
	open, err := repo.FindOpenCheckin(ctx, 42, false, start, end)
	require.NoError(t, err)
	assert.Equal(t, c.ID, open.ID)

	require.NoError(t, got.SetWeight(72.5))
	require.True(t, got.Completed)
	require.NoError(t, repo.UpdateCheckin(ctx, got))
	_, err = repo.FindOpenCheckin(ctx, 42, false, start, end)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkoutRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	started := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	w := &domain.Workout{UserID: 42, CreatedAt: started}
	w.Begin(started)
	require.NoError(t, repo.CreateWorkout(ctx, w))

	require.NoError(t, w.SetFeelBefore(6))
	require.NoError(t, w.SetHardness(9))
	require.NoError(t, w.SetPain(false, started.Add(45*time.Minute)))
	require.True(t, w.Completed)
	require.NoError(t, repo.UpdateWorkout(ctx, w))

	got, err := repo.GetWorkout(ctx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DurationM)
	assert.Equal(t, 45, *got.DurationM)
	require.NotNil(t, got.Pain)
	assert.False(t, *got.Pain)
	assert.True(t, got.Completed)
}

func TestNotificationRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	n := &domain.Notification{
		UserID:    42,
		Category:  domain.CategoryCustom,
		Local:     domain.TimeOfDay{Hour: 7, Minute: 30},
		Canonical: domain.TimeOfDay{Hour: 4, Minute: 30},
		Text:      "stretch",
		Active:    true,
		CronSpec:  "30 4 * * 1,3",
	}
	require.NoError(t, repo.CreateNotification(ctx, n))

	got, err := repo.GetNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TimeOfDay{Hour: 7, Minute: 30}, got.Local)
	assert.Equal(t, "30 4 * * 1,3", got.CronSpec)

	got.Active = false
	require.NoError(t, repo.UpdateNotification(ctx, got))
	got, err = repo.GetNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	require.NoError(t, repo.DeleteNotification(ctx, n.ID))
	_, err = repo.GetNotification(ctx, n.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationMetaSurvivesStorage(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	n := &domain.Notification{
		UserID:    42,
		Category:  domain.CategoryFollowUp,
		Local:     domain.TimeOfDay{Hour: 15},
		Canonical: domain.TimeOfDay{Hour: 13},
		Text:      "How was training?",
		Active:    true,
		Meta: domain.Meta{FollowUp: &domain.FollowUpMeta{
			SessionID:     "wrk-1",
			ScheduledDate: "2025-03-11",
		}},
	}
	require.NoError(t, repo.CreateNotification(ctx, n))

	got, err := repo.GetNotification(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Meta.FollowUp)
	assert.Equal(t, "wrk-1", got.Meta.FollowUp.SessionID)
	assert.Nil(t, got.Meta.Daily)
	assert.Nil(t, got.Meta.Gym)
}

func TestNotificationQueries(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	mk := func(userID int64, cat domain.Category, template, active bool) *domain.Notification {
		n := &domain.Notification{
			UserID:    userID,
			Category:  cat,
			Local:     domain.TimeOfDay{Hour: 9},
			Canonical: domain.TimeOfDay{Hour: 9},
			Text:      "ping",
			Active:    active,
			Template:  template,
		}
		require.NoError(t, repo.CreateNotification(ctx, n))
		return n
	}

	gym1 := mk(42, domain.CategoryGym, false, true)
	mk(42, domain.CategoryGym, false, true)
	tpl := mk(42, domain.CategoryFollowUp, true, true)
	mk(42, domain.CategoryCustom, false, false)
	other := mk(99, domain.CategoryGym, false, true)

	found, err := repo.FindNotification(ctx, 42, domain.CategoryFollowUp, true)
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, found.ID)

	active, err := repo.ListActive(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, active, 3, "templates included, inactive records excluded")

	byCat, err := repo.ListActiveByCategory(ctx, domain.CategoryGym)
	require.NoError(t, err)
	assert.Len(t, byCat, 3, "spans users")

	count, err := repo.DeactivateByCategory(ctx, 42, domain.CategoryGym)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	g, err := repo.GetNotification(ctx, gym1.ID)
	require.NoError(t, err)
	assert.False(t, g.Active)
	o, err := repo.GetNotification(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, o.Active, "other users untouched")
}
