// Package reminder owns the lifecycle of notification records: creation,
// replacement, retiming on timezone changes, toggling and deletion. It
// never fires timers itself; the scheduler package reads what it writes.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/store"
)

// DefaultFollowUpTime is the fallback local time for the day-after-training
// questionnaire when the user has no followup template yet.
var DefaultFollowUpTime = domain.TimeOfDay{Hour: 15}

// Store is the slice of the repository the manager needs.
type Store interface {
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)
	CreateNotification(ctx context.Context, n *domain.Notification) error
	UpdateNotification(ctx context.Context, n *domain.Notification) error
	GetNotification(ctx context.Context, id string) (*domain.Notification, error)
	DeleteNotification(ctx context.Context, id string) error
	FindNotification(ctx context.Context, userID int64, cat domain.Category, template bool) (*domain.Notification, error)
	ListUserNotifications(ctx context.Context, userID int64, cat domain.Category) ([]domain.Notification, error)
	ListActive(ctx context.Context, userID int64) ([]domain.Notification, error)
	DeactivateByCategory(ctx context.Context, userID int64, cat domain.Category) (int, error)
}

// Manager orchestrates reminder records. All operations are best-effort
// single writes: a store failure is returned to the caller untouched and
// never retried here.
type Manager struct {
	store Store
	log   *zap.Logger
	loc   *time.Location // canonical scheduling timezone
	now   func() time.Time
}

// New creates a Manager using the wall clock.
func New(s Store, log *zap.Logger, loc *time.Location) *Manager {
	return &Manager{store: s, log: log, loc: loc, now: time.Now}
}

// NewWithClock creates a Manager with an injected clock, for tests.
func NewWithClock(s Store, log *zap.Logger, loc *time.Location, now func() time.Time) *Manager {
	return &Manager{store: s, log: log, loc: loc, now: now}
}

// canonicalFor recomputes the canonical time from an authoritative local
// time and the user's current offset.
func (m *Manager) canonicalFor(ctx context.Context, userID int64, local domain.TimeOfDay) (domain.TimeOfDay, error) {
	u, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return domain.TimeOfDay{}, fmt.Errorf("load user: %w", err)
	}
	return domain.ToCanonical(local, u.TZOffset)
}

// SetDailyReminder upserts the single fixed daily check-in reminder for a
// user at the given local time.
func (m *Manager) SetDailyReminder(ctx context.Context, userID int64, local domain.TimeOfDay) (*domain.Notification, error) {
	canonical, err := m.canonicalFor(ctx, userID, local)
	if err != nil {
		return nil, err
	}

	n, err := m.store.FindNotification(ctx, userID, domain.CategoryDaily, false)
	switch {
	case err == nil:
		n.Local = local
		n.Canonical = canonical
		n.Active = true
		if err := m.store.UpdateNotification(ctx, n); err != nil {
			return nil, err
		}
	case errors.Is(err, store.ErrNotFound):
		n = &domain.Notification{
			UserID:    userID,
			Category:  domain.CategoryDaily,
			Local:     local,
			Canonical: canonical,
			Text:      "Morning check-in time!",
			Active:    true,
			Meta:      domain.Meta{Daily: &domain.DailyMeta{}},
		}
		if err := m.store.CreateNotification(ctx, n); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	m.log.Info("daily reminder set",
		zap.Int64("user", userID),
		zap.String("local", local.String()),
		zap.String("canonical", canonical.String()),
	)
	return n, nil
}

// SetGymReminder replaces the user's gym-attendance reminder: any previous
// one is deactivated first, then exactly one fresh record is created. Gym
// time can be re-declared mid-day, so replacement rather than update keeps
// the record's bookkeeping clean.
func (m *Manager) SetGymReminder(ctx context.Context, userID int64, local domain.TimeOfDay) (*domain.Notification, error) {
	canonical, err := m.canonicalFor(ctx, userID, local)
	if err != nil {
		return nil, err
	}

	if _, err := m.store.DeactivateByCategory(ctx, userID, domain.CategoryGym); err != nil {
		return nil, fmt.Errorf("deactivate previous gym reminders: %w", err)
	}

	u, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	n := &domain.Notification{
		UserID:    userID,
		Category:  domain.CategoryGym,
		Local:     local,
		Canonical: canonical,
		Text:      "Training time: " + local.String(),
		Active:    true,
		Meta: domain.Meta{Gym: &domain.GymMeta{
			GymTime:     local.String(),
			CreatedDate: u.LocalDate(m.now(), m.loc),
		}},
	}
	if err := m.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	m.log.Info("gym reminder replaced",
		zap.Int64("user", userID),
		zap.String("local", local.String()),
	)
	return n, nil
}

// followUpTemplate returns the user's followup template, creating it with
// the default local time when missing. The template itself is never
// dispatched; it only supplies the default time for instances.
func (m *Manager) followUpTemplate(ctx context.Context, userID int64) (*domain.Notification, error) {
	tpl, err := m.store.FindNotification(ctx, userID, domain.CategoryFollowUp, true)
	if err == nil {
		return tpl, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	canonical, err := m.canonicalFor(ctx, userID, DefaultFollowUpTime)
	if err != nil {
		return nil, err
	}
	tpl = &domain.Notification{
		UserID:    userID,
		Category:  domain.CategoryFollowUp,
		Local:     DefaultFollowUpTime,
		Canonical: canonical,
		Text:      "How was yesterday's training?",
		Active:    true,
		Template:  true,
	}
	if err := m.store.CreateNotification(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// ScheduleFollowUp derives the next-day follow-up questionnaire reminder
// for a completed workout from the user's followup template. At most one
// instance exists per (user, scheduled date); a duplicate completion event
// is a no-op.
func (m *Manager) ScheduleFollowUp(ctx context.Context, w *domain.Workout) (*domain.Notification, error) {
	tpl, err := m.followUpTemplate(ctx, w.UserID)
	if err != nil {
		return nil, err
	}

	// The dispatcher compares scheduled dates in the canonical timezone, so
	// "tomorrow" is derived there too, not in UTC.
	scheduled := m.now().In(m.loc).Add(24 * time.Hour).Format("2006-01-02")

	instances, err := m.store.ListUserNotifications(ctx, w.UserID, domain.CategoryFollowUp)
	if err != nil {
		return nil, err
	}
	for i := range instances {
		n := &instances[i]
		if n.Template || !n.Active || n.Meta.FollowUp == nil {
			continue
		}
		if n.Meta.FollowUp.ScheduledDate == scheduled {
			return n, nil
		}
	}

	canonical, err := m.canonicalFor(ctx, w.UserID, tpl.Local)
	if err != nil {
		return nil, err
	}
	n := &domain.Notification{
		UserID:    w.UserID,
		Category:  domain.CategoryFollowUp,
		Local:     tpl.Local,
		Canonical: canonical,
		Text:      tpl.Text,
		Active:    true,
		Meta: domain.Meta{FollowUp: &domain.FollowUpMeta{
			SessionID:     w.ID,
			ScheduledDate: scheduled,
		}},
	}
	if err := m.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	m.log.Info("follow-up scheduled",
		zap.Int64("user", w.UserID),
		zap.String("session", w.ID),
		zap.String("date", scheduled),
	)
	return n, nil
}

// CompleteFollowUp deactivates the follow-up instance for a session once
// its questionnaire is answered. Unknown sessions are a no-op.
func (m *Manager) CompleteFollowUp(ctx context.Context, userID int64, sessionID string) error {
	instances, err := m.store.ListUserNotifications(ctx, userID, domain.CategoryFollowUp)
	if err != nil {
		return err
	}
	for i := range instances {
		n := &instances[i]
		if n.Template || n.Meta.FollowUp == nil || n.Meta.FollowUp.SessionID != sessionID {
			continue
		}
		if !n.Active {
			return nil
		}
		n.Active = false
		return m.store.UpdateNotification(ctx, n)
	}
	return nil
}

// RetimeAll recomputes the canonical time of every active reminder,
// templates included, from its stored user-local time and the new offset.
// Local times are authoritative and are never derived back from canonical
// time, so repeated timezone changes cannot drift.
func (m *Manager) RetimeAll(ctx context.Context, userID int64, newOffset int) error {
	if newOffset < -domain.MaxOffsetHours || newOffset > domain.MaxOffsetHours {
		return fmt.Errorf("%w: %d", domain.ErrOffsetOutOfRange, newOffset)
	}

	active, err := m.store.ListActive(ctx, userID)
	if err != nil {
		return err
	}
	for i := range active {
		n := &active[i]
		canonical, err := domain.ToCanonical(n.Local, newOffset)
		if err != nil {
			return fmt.Errorf("retime %s: %w", n.ID, err)
		}
		if canonical == n.Canonical {
			continue
		}
		n.Canonical = canonical
		if n.CronSpec != "" {
			// Keep the cron expression in canonical time too.
			kind, recur := recurrenceFromSpec(n.CronSpec)
			if kind {
				spec, err := domain.BuildCronSpec(recur, canonical)
				if err != nil {
					return fmt.Errorf("rebuild cron for %s: %w", n.ID, err)
				}
				n.CronSpec = spec
			}
		}
		if err := m.store.UpdateNotification(ctx, n); err != nil {
			return err
		}
	}

	m.log.Info("reminders retimed",
		zap.Int64("user", userID),
		zap.Int("offset", newOffset),
		zap.Int("count", len(active)),
	)
	return nil
}

// CreateCustomReminder builds the schedule expression from the canonical
// time and stores the ad-hoc reminder active. A once reminder deactivates
// after its first fire.
func (m *Manager) CreateCustomReminder(ctx context.Context, userID int64, text string, rec domain.Recurrence, local domain.TimeOfDay, once bool) (*domain.Notification, error) {
	canonical, err := m.canonicalFor(ctx, userID, local)
	if err != nil {
		return nil, err
	}
	spec, err := domain.BuildCronSpec(rec, canonical)
	if err != nil {
		return nil, err
	}

	n := &domain.Notification{
		UserID:    userID,
		Category:  domain.CategoryCustom,
		Local:     local,
		Canonical: canonical,
		Text:      text,
		Active:    true,
		CronSpec:  spec,
		Once:      once,
	}
	if err := m.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	m.log.Info("custom reminder created",
		zap.Int64("user", userID),
		zap.String("cron", spec),
		zap.Bool("once", once),
	)
	return n, nil
}

// Toggle flips the active flag of a record. Toggling twice restores the
// original state; toggling a missing id returns store.ErrNotFound.
func (m *Manager) Toggle(ctx context.Context, id string) (*domain.Notification, error) {
	n, err := m.store.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	n.Active = !n.Active
	if err := m.store.UpdateNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Delete hard-deletes an ad-hoc reminder. Deleting an already-deleted id
// is a no-op.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.DeleteNotification(ctx, id)
}

// recurrenceFromSpec reverses BuildCronSpec far enough to rebuild the spec
// at a new time. ok is false for shapes the builder never emits.
func recurrenceFromSpec(spec string) (ok bool, r domain.Recurrence) {
	fields := splitFields(spec)
	if len(fields) != 5 {
		return false, r
	}
	switch {
	case fields[2] == "*" && fields[4] == "*":
		return true, domain.Recurrence{Kind: domain.RecurDaily}
	case fields[2] == "*":
		days, ok := parseDayList(fields[4], 0, 6)
		if !ok {
			return false, r
		}
		wds := make([]time.Weekday, len(days))
		for i, d := range days {
			wds[i] = time.Weekday(d)
		}
		return true, domain.Recurrence{Kind: domain.RecurWeekly, Weekdays: wds}
	case fields[4] == "*":
		days, ok := parseDayList(fields[2], 1, 31)
		if !ok {
			return false, r
		}
		return true, domain.Recurrence{Kind: domain.RecurMonthly, Monthdays: days}
	default:
		return false, r
	}
}
