package store

import (
	"context"
	"errors"
	"time"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// Repo defines storage operations for profiles, questionnaire records and
// notifications. All writes are single-document; per-record atomicity comes
// from SQLite itself.
type Repo interface {
	UpsertUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)
	SetCurrentNode(ctx context.Context, chatID int64, node string) error
	SetTimezoneOffset(ctx context.Context, chatID int64, offset int) error

	CreateCheckin(ctx context.Context, c *domain.Checkin) error
	UpdateCheckin(ctx context.Context, c *domain.Checkin) error
	GetCheckin(ctx context.Context, id string) (*domain.Checkin, error)
	// FindOpenCheckin returns the newest non-completed check-in of the given
	// mode whose created-at falls inside [start, end] in canonical time.
	FindOpenCheckin(ctx context.Context, userID int64, test bool, start, end time.Time) (*domain.Checkin, error)

	CreateWorkout(ctx context.Context, w *domain.Workout) error
	UpdateWorkout(ctx context.Context, w *domain.Workout) error
	GetWorkout(ctx context.Context, id string) (*domain.Workout, error)
	FindOpenWorkout(ctx context.Context, userID int64, start, end time.Time) (*domain.Workout, error)

	CreateNotification(ctx context.Context, n *domain.Notification) error
	UpdateNotification(ctx context.Context, n *domain.Notification) error
	GetNotification(ctx context.Context, id string) (*domain.Notification, error)
	DeleteNotification(ctx context.Context, id string) error
	// FindNotification returns the newest record of the given category and
	// template flag for a user.
	FindNotification(ctx context.Context, userID int64, cat domain.Category, template bool) (*domain.Notification, error)
	ListUserNotifications(ctx context.Context, userID int64, cat domain.Category) ([]domain.Notification, error)
	// ListActive returns all active records for a user, templates included.
	ListActive(ctx context.Context, userID int64) ([]domain.Notification, error)
	// ListActiveByCategory returns all active non-template records of a
	// category across users, for the dispatcher tick.
	ListActiveByCategory(ctx context.Context, cat domain.Category) ([]domain.Notification, error)
	// DeactivateByCategory flips active off on every matching record and
	// returns how many were touched.
	DeactivateByCategory(ctx context.Context, userID int64, cat domain.Category) (int, error)

	Close() error
}
