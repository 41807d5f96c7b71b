package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
)

const notificationColumns = `id, user_id, category, local_time, canonical_time,
	text, active, template, cron_spec, once, meta, created_at`

// CreateNotification inserts a new reminder record, assigning an id and
// created-at if unset.
func (r *SQLiteRepo) CreateNotification(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return errors.New("nil notification")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	meta, err := json.Marshal(n.Meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, string(n.Category), n.Local.String(), n.Canonical.String(),
		n.Text, boolToInt(n.Active), boolToInt(n.Template), n.CronSpec,
		boolToInt(n.Once), string(meta), n.CreatedAt.Unix(),
	)
	return err
}

// UpdateNotification rewrites every mutable field of a reminder record.
func (r *SQLiteRepo) UpdateNotification(ctx context.Context, n *domain.Notification) error {
	meta, err := json.Marshal(n.Meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE notifications SET
			local_time = ?, canonical_time = ?, text = ?, active = ?,
			template = ?, cron_spec = ?, once = ?, meta = ?
		WHERE id = ?`,
		n.Local.String(), n.Canonical.String(), n.Text, boolToInt(n.Active),
		boolToInt(n.Template), n.CronSpec, boolToInt(n.Once), string(meta), n.ID,
	)
	return err
}

// GetNotification returns a reminder record by id or ErrNotFound.
func (r *SQLiteRepo) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	return scanNotification(row.Scan)
}

// DeleteNotification hard-deletes a record. Deleting a missing id is a no-op.
func (r *SQLiteRepo) DeleteNotification(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	return err
}

// FindNotification returns the newest record of the given category and
// template flag for a user, or ErrNotFound.
func (r *SQLiteRepo) FindNotification(ctx context.Context, userID int64, cat domain.Category, template bool) (*domain.Notification, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = ? AND category = ? AND template = ?
		ORDER BY created_at DESC
		LIMIT 1`,
		userID, string(cat), boolToInt(template),
	)
	return scanNotification(row.Scan)
}

// ListUserNotifications returns every record of a category for a user,
// newest first, templates included.
func (r *SQLiteRepo) ListUserNotifications(ctx context.Context, userID int64, cat domain.Category) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = ? AND category = ?
		ORDER BY created_at DESC`,
		userID, string(cat),
	)
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

// ListActive returns all active records for a user, templates included, so
// a retime pass touches every record whose canonical time matters.
func (r *SQLiteRepo) ListActive(ctx context.Context, userID int64) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = ? AND active = 1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

// ListActiveByCategory returns all active non-template records of a
// category across users.
func (r *SQLiteRepo) ListActiveByCategory(ctx context.Context, cat domain.Category) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE category = ? AND active = 1 AND template = 0
		ORDER BY created_at ASC`,
		string(cat),
	)
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

// DeactivateByCategory flips active off on every non-template record of a
// category for a user and returns how many rows were touched.
func (r *SQLiteRepo) DeactivateByCategory(ctx context.Context, userID int64, cat domain.Category) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET active = 0
		WHERE user_id = ? AND category = ? AND template = 0 AND active = 1`,
		userID, string(cat),
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func collectNotifications(rows *sql.Rows) ([]domain.Notification, error) {
	defer rows.Close()
	var res []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func scanNotification(scan func(...any) error) (*domain.Notification, error) {
	var (
		n           domain.Notification
		category    string
		localStr    string
		canonStr    string
		activeInt   int
		templateInt int
		onceInt     int
		metaStr     string
		createdAt   int64
	)
	if err := scan(
		&n.ID, &n.UserID, &category, &localStr, &canonStr,
		&n.Text, &activeInt, &templateInt, &n.CronSpec, &onceInt, &metaStr, &createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	local, err := domain.ParseClock(localStr)
	if err != nil {
		return nil, err
	}
	canonical, err := domain.ParseClock(canonStr)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metaStr), &n.Meta); err != nil {
		return nil, fmt.Errorf("unmarshal meta: %w", err)
	}
	n.Category = domain.Category(category)
	n.Local = local
	n.Canonical = canonical
	n.Active = activeInt != 0
	n.Template = templateInt != 0
	n.Once = onceInt != 0
	n.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &n, nil
}
