package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
)

// UpsertUser inserts or updates a profile. If the chat_id exists, profile
// fields are updated; otherwise a new row is inserted.
func (r *SQLiteRepo) UpsertUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("nil user")
	}

	created := u.CreatedAt.UTC().Unix()
	if u.CreatedAt.IsZero() {
		created = time.Now().UTC().Unix()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			chat_id, full_name, username, verified, goal,
			tz_offset, current_node, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			full_name    = excluded.full_name,
			username     = excluded.username,
			verified     = excluded.verified,
			goal         = excluded.goal,
			tz_offset    = excluded.tz_offset,
			current_node = excluded.current_node`,
		u.ChatID, u.FullName, u.Username, boolToInt(u.Verified), string(u.Goal),
		u.TZOffset, u.CurrentNode, created,
	)
	return err
}

// GetUser returns a profile by chat id or ErrNotFound.
func (r *SQLiteRepo) GetUser(ctx context.Context, chatID int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT chat_id, full_name, username, verified, goal,
		       tz_offset, current_node, created_at
		FROM users
		WHERE chat_id = ?`,
		chatID,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u           domain.User
		verifiedInt int
		goal        string
		createdAt   int64
	)
	if err := row.Scan(
		&u.ChatID, &u.FullName, &u.Username, &verifiedInt, &goal,
		&u.TZOffset, &u.CurrentNode, &createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Verified = verifiedInt != 0
	u.Goal = domain.TrainingGoal(goal)
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &u, nil
}

// SetCurrentNode persists the conversation-graph position for a chat.
func (r *SQLiteRepo) SetCurrentNode(ctx context.Context, chatID int64, node string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET current_node = ? WHERE chat_id = ?`,
		node, chatID,
	)
	return err
}

// SetTimezoneOffset updates the signed hour offset for a chat.
func (r *SQLiteRepo) SetTimezoneOffset(ctx context.Context, chatID int64, offset int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET tz_offset = ? WHERE chat_id = ?`,
		offset, chatID,
	)
	return err
}
