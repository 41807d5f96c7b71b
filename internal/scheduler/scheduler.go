// Package scheduler is the dispatch loop: it periodically reads active
// notification records whose canonical time (or cron expression) matches
// now and hands them to the sender. It owns no record lifecycle; the
// reminder package does.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
)

// Sender is the minimal interface the scheduler needs to deliver prompts.
// telegram.Router implements it.
type Sender interface {
	SendText(chatID int64, text string) error
	SendCheckinPrompt(chatID int64, text string) error
	SendFollowUpPrompt(chatID int64, sessionID, text string) error
}

// Store is the slice of the repository the scheduler reads and updates.
type Store interface {
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)
	ListActiveByCategory(ctx context.Context, cat domain.Category) ([]domain.Notification, error)
	UpdateNotification(ctx context.Context, n *domain.Notification) error
}

// DailyGuard prevents more than one daily prompt per user-local day.
type DailyGuard interface {
	AlreadyNotifiedToday(ctx context.Context, userID int64) (bool, error)
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler polls the store and dispatches due notifications.
type Scheduler struct {
	store    Store
	guard    DailyGuard
	sender   Sender
	log      *zap.Logger
	loc      *time.Location // canonical scheduling timezone
	interval time.Duration
	lastTick time.Time
	now      func() time.Time
}

// New creates a Scheduler. The poll interval is fixed at 30s; cron-based
// reminders are matched against the window since the previous tick, so the
// interval only bounds delivery latency.
func New(store Store, guard DailyGuard, sender Sender, log *zap.Logger, loc *time.Location) *Scheduler {
	return &Scheduler{
		store:    store,
		guard:    guard,
		sender:   sender,
		log:      log,
		loc:      loc,
		interval: 30 * time.Second,
		now:      time.Now,
	}
}

// Run starts the loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.lastTick = s.now()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one dispatch cycle across all categories.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now()
	s.dispatchDaily(ctx, now)
	s.dispatchGym(ctx, now)
	s.dispatchFollowUps(ctx, now)
	s.dispatchCustom(ctx, now)
	s.lastTick = now
}

// canonicalClock returns the canonical-timezone time of day for an instant.
func (s *Scheduler) canonicalClock(t time.Time) domain.TimeOfDay {
	lt := t.In(s.loc)
	return domain.TimeOfDay{Hour: lt.Hour(), Minute: lt.Minute()}
}

func (s *Scheduler) canonicalDate(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02")
}

func (s *Scheduler) dispatchDaily(ctx context.Context, now time.Time) {
	due, err := s.store.ListActiveByCategory(ctx, domain.CategoryDaily)
	if err != nil {
		s.log.Error("list daily reminders failed", zap.Error(err))
		return
	}
	tod := s.canonicalClock(now)
	for i := range due {
		n := &due[i]
		if n.Canonical != tod {
			continue
		}
		sent, err := s.guard.AlreadyNotifiedToday(ctx, n.UserID)
		if err != nil {
			s.log.Error("daily guard failed", zap.Error(err), zap.Int64("user", n.UserID))
			continue
		}
		if sent {
			continue
		}
		if err := s.sender.SendCheckinPrompt(n.UserID, n.Text); err != nil {
			s.log.Error("send daily prompt failed", zap.Error(err), zap.Int64("user", n.UserID))
			continue
		}
		u, err := s.store.GetUser(ctx, n.UserID)
		if err != nil {
			s.log.Error("load user failed", zap.Error(err), zap.Int64("user", n.UserID))
			continue
		}
		if n.Meta.Daily == nil {
			n.Meta.Daily = &domain.DailyMeta{}
		}
		n.Meta.Daily.LastSentDate = u.LocalDate(now, s.loc)
		if err := s.store.UpdateNotification(ctx, n); err != nil {
			s.log.Error("mark daily sent failed", zap.Error(err), zap.Int64("user", n.UserID))
		}
	}
}

func (s *Scheduler) dispatchGym(ctx context.Context, now time.Time) {
	due, err := s.store.ListActiveByCategory(ctx, domain.CategoryGym)
	if err != nil {
		s.log.Error("list gym reminders failed", zap.Error(err))
		return
	}
	tod := s.canonicalClock(now)
	today := s.canonicalDate(now)
	for i := range due {
		n := &due[i]
		if n.Canonical != tod {
			continue
		}
		if n.Meta.Gym != nil && n.Meta.Gym.SentDate == today {
			continue
		}
		if err := s.sender.SendText(n.UserID, n.Text); err != nil {
			s.log.Error("send gym reminder failed", zap.Error(err), zap.Int64("user", n.UserID))
			continue
		}
		if n.Meta.Gym == nil {
			n.Meta.Gym = &domain.GymMeta{}
		}
		n.Meta.Gym.SentDate = today
		// A gym reminder is for one declared attendance only.
		n.Active = false
		if err := s.store.UpdateNotification(ctx, n); err != nil {
			s.log.Error("mark gym sent failed", zap.Error(err), zap.Int64("user", n.UserID))
		}
	}
}

func (s *Scheduler) dispatchFollowUps(ctx context.Context, now time.Time) {
	due, err := s.store.ListActiveByCategory(ctx, domain.CategoryFollowUp)
	if err != nil {
		s.log.Error("list follow-ups failed", zap.Error(err))
		return
	}
	tod := s.canonicalClock(now)
	today := s.canonicalDate(now)
	for i := range due {
		n := &due[i]
		fu := n.Meta.FollowUp
		if fu == nil || fu.Sent || fu.ScheduledDate != today {
			continue
		}
		if !reached(tod, n.Canonical) {
			continue
		}
		if err := s.sender.SendFollowUpPrompt(n.UserID, fu.SessionID, n.Text); err != nil {
			s.log.Error("send follow-up failed", zap.Error(err), zap.Int64("user", n.UserID))
			continue
		}
		fu.Sent = true
		if err := s.store.UpdateNotification(ctx, n); err != nil {
			s.log.Error("mark follow-up sent failed", zap.Error(err), zap.Int64("user", n.UserID))
		}
	}
}

func (s *Scheduler) dispatchCustom(ctx context.Context, now time.Time) {
	due, err := s.store.ListActiveByCategory(ctx, domain.CategoryCustom)
	if err != nil {
		s.log.Error("list custom reminders failed", zap.Error(err))
		return
	}
	prev := s.lastTick
	if prev.IsZero() {
		prev = now.Add(-s.interval)
	}
	for i := range due {
		n := &due[i]
		if n.CronSpec == "" {
			continue
		}
		sched, err := cronParser.Parse(n.CronSpec)
		if err != nil {
			s.log.Warn("bad cron spec", zap.String("id", n.ID), zap.String("spec", n.CronSpec))
			continue
		}
		// Due when the next activation after the previous tick has passed.
		next := sched.Next(prev.In(s.loc))
		if next.After(now.In(s.loc)) {
			continue
		}
		if err := s.sender.SendText(n.UserID, n.Text); err != nil {
			s.log.Error("send custom reminder failed", zap.Error(err), zap.Int64("user", n.UserID))
			continue
		}
		if n.Once {
			n.Active = false
			if err := s.store.UpdateNotification(ctx, n); err != nil {
				s.log.Error("deactivate one-shot failed", zap.Error(err), zap.String("id", n.ID))
			}
		}
	}
}

// reached reports whether the clock has passed the target time today.
func reached(now, target domain.TimeOfDay) bool {
	return now.Hour > target.Hour || (now.Hour == target.Hour && now.Minute >= target.Minute)
}
