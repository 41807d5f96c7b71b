// Package session enforces the at-most-one-open-record-per-scope-per-day
// rule and the one-daily-prompt-per-local-day rule.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/store"
)

// Store is the slice of the repository the guard needs.
type Store interface {
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)
	CreateCheckin(ctx context.Context, c *domain.Checkin) error
	FindOpenCheckin(ctx context.Context, userID int64, test bool, start, end time.Time) (*domain.Checkin, error)
	CreateWorkout(ctx context.Context, w *domain.Workout) error
	FindOpenWorkout(ctx context.Context, userID int64, start, end time.Time) (*domain.Workout, error)
	FindNotification(ctx context.Context, userID int64, cat domain.Category, template bool) (*domain.Notification, error)
}

// Guard decides create-vs-resume for questionnaire records. The scope key
// is (user, mode, calendar day in the user's local time); the local day is
// an instant window derived from the canonical timezone plus the user's
// offset before querying.
type Guard struct {
	store Store
	loc   *time.Location // canonical scheduling timezone
	now   func() time.Time
}

// New creates a Guard using the wall clock.
func New(s Store, loc *time.Location) *Guard {
	return &Guard{store: s, loc: loc, now: time.Now}
}

// NewWithClock creates a Guard with an injected clock, for tests.
func NewWithClock(s Store, loc *time.Location, now func() time.Time) *Guard {
	return &Guard{store: s, loc: loc, now: now}
}

// FindOrCreateCheckin returns the open check-in for the user's current
// local day, creating one when none exists. isNew reports which happened.
func (g *Guard) FindOrCreateCheckin(ctx context.Context, userID int64, test bool) (*domain.Checkin, bool, error) {
	u, err := g.store.GetUser(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("load user: %w", err)
	}
	start, end := u.LocalDayWindow(g.now(), g.loc)

	c, err := g.store.FindOpenCheckin(ctx, userID, test, start, end)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	c = &domain.Checkin{UserID: userID, Test: test, CreatedAt: g.now().UTC()}
	if err := g.store.CreateCheckin(ctx, c); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// FindOrCreateWorkout returns the open workout for the user's current
// local day, creating one when none exists.
func (g *Guard) FindOrCreateWorkout(ctx context.Context, userID int64) (*domain.Workout, bool, error) {
	u, err := g.store.GetUser(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("load user: %w", err)
	}
	start, end := u.LocalDayWindow(g.now(), g.loc)

	w, err := g.store.FindOpenWorkout(ctx, userID, start, end)
	if err == nil {
		return w, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	w = &domain.Workout{UserID: userID, CreatedAt: g.now().UTC()}
	w.Begin(g.now())
	if err := g.store.CreateWorkout(ctx, w); err != nil {
		return nil, false, err
	}
	return w, true, nil
}

// OpenCheckin returns the open check-in for the user's current local day
// without creating one; store.ErrNotFound when the flow was never started
// or is already completed.
func (g *Guard) OpenCheckin(ctx context.Context, userID int64, test bool) (*domain.Checkin, error) {
	u, err := g.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	start, end := u.LocalDayWindow(g.now(), g.loc)
	return g.store.FindOpenCheckin(ctx, userID, test, start, end)
}

// OpenWorkout returns the open workout for the user's current local day
// without creating one.
func (g *Guard) OpenWorkout(ctx context.Context, userID int64) (*domain.Workout, error) {
	u, err := g.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	start, end := u.LocalDayWindow(g.now(), g.loc)
	return g.store.FindOpenWorkout(ctx, userID, start, end)
}

// AlreadyNotifiedToday reports whether the daily prompt was already sent
// within the user's current local day, by comparing the daily reminder's
// last-sent date against the user-local date. Missing records mean "not
// yet sent".
func (g *Guard) AlreadyNotifiedToday(ctx context.Context, userID int64) (bool, error) {
	u, err := g.store.GetUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}
	n, err := g.store.FindNotification(ctx, userID, domain.CategoryDaily, false)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if n.Meta.Daily == nil || n.Meta.Daily.LastSentDate == "" {
		return false, nil
	}
	return n.Meta.Daily.LastSentDate == u.LocalDate(g.now(), g.loc), nil
}
