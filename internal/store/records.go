package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iSlob-hub/islob-aio-bot-sub000/internal/domain"
)

const checkinColumns = `id, user_id, feeling, sleep_hours, going_to_gym,
	gym_time, weight, is_test, completed, created_at, updated_at`

// CreateCheckin inserts a new check-in, assigning an id and timestamps if
// they are unset.
func (r *SQLiteRepo) CreateCheckin(ctx context.Context, c *domain.Checkin) error {
	if c == nil {
		return errors.New("nil checkin")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = c.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checkins (`+checkinColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, nullInt(c.Feeling), nullFloat(c.SleepHours), nullBool(c.GoingToGym),
		nullClock(c.GymTime), nullFloat(c.Weight), boolToInt(c.Test), boolToInt(c.Completed),
		c.CreatedAt.Unix(), c.UpdatedAt.Unix(),
	)
	return err
}

// UpdateCheckin rewrites the mutable slots of an existing check-in.
func (r *SQLiteRepo) UpdateCheckin(ctx context.Context, c *domain.Checkin) error {
	c.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE checkins SET
			feeling = ?, sleep_hours = ?, going_to_gym = ?, gym_time = ?,
			weight = ?, completed = ?, updated_at = ?
		WHERE id = ?`,
		nullInt(c.Feeling), nullFloat(c.SleepHours), nullBool(c.GoingToGym),
		nullClock(c.GymTime), nullFloat(c.Weight), boolToInt(c.Completed),
		c.UpdatedAt.Unix(), c.ID,
	)
	return err
}

// GetCheckin returns a check-in by id or ErrNotFound.
func (r *SQLiteRepo) GetCheckin(ctx context.Context, id string) (*domain.Checkin, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+checkinColumns+` FROM checkins WHERE id = ?`, id)
	return scanCheckin(row.Scan)
}

// FindOpenCheckin returns the newest non-completed check-in of the given
// mode created inside [start, end], or ErrNotFound.
func (r *SQLiteRepo) FindOpenCheckin(ctx context.Context, userID int64, test bool, start, end time.Time) (*domain.Checkin, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+checkinColumns+`
		FROM checkins
		WHERE user_id = ? AND is_test = ? AND completed = 0
		  AND created_at >= ? AND created_at <= ?
		ORDER BY created_at DESC
		LIMIT 1`,
		userID, boolToInt(test), start.UTC().Unix(), end.UTC().Unix(),
	)
	return scanCheckin(row.Scan)
}

func scanCheckin(scan func(...any) error) (*domain.Checkin, error) {
	var (
		c          domain.Checkin
		feeling    sql.NullInt64
		sleep      sql.NullFloat64
		goingToGym sql.NullInt64
		gymTime    sql.NullString
		weight     sql.NullFloat64
		testInt    int
		doneInt    int
		createdAt  int64
		updatedAt  int64
	)
	if err := scan(
		&c.ID, &c.UserID, &feeling, &sleep, &goingToGym,
		&gymTime, &weight, &testInt, &doneInt, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.Feeling = fromNullInt(feeling)
	c.SleepHours = fromNullFloat(sleep)
	c.GoingToGym = fromNullBool(goingToGym)
	gt, err := fromNullClock(gymTime)
	if err != nil {
		return nil, err
	}
	c.GymTime = gt
	c.Weight = fromNullFloat(weight)
	c.Test = testInt != 0
	c.Completed = doneInt != 0
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	c.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &c, nil
}

const workoutColumns = `id, user_id, feel_before, hardness, pain, started_at,
	ended_at, duration_min, soreness, stress, completed, created_at, updated_at`

// CreateWorkout inserts a new workout session.
func (r *SQLiteRepo) CreateWorkout(ctx context.Context, w *domain.Workout) error {
	if w == nil {
		return errors.New("nil workout")
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	w.UpdatedAt = w.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workouts (`+workoutColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, nullInt(w.FeelBefore), nullInt(w.Hardness), nullBool(w.Pain),
		nullUnix(w.StartedAt), nullUnix(w.EndedAt), nullInt(w.DurationM),
		nullBool(w.Soreness), nullInt(w.Stress), boolToInt(w.Completed),
		w.CreatedAt.Unix(), w.UpdatedAt.Unix(),
	)
	return err
}

// UpdateWorkout rewrites the mutable slots of an existing workout.
func (r *SQLiteRepo) UpdateWorkout(ctx context.Context, w *domain.Workout) error {
	w.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE workouts SET
			feel_before = ?, hardness = ?, pain = ?, started_at = ?, ended_at = ?,
			duration_min = ?, soreness = ?, stress = ?, completed = ?, updated_at = ?
		WHERE id = ?`,
		nullInt(w.FeelBefore), nullInt(w.Hardness), nullBool(w.Pain),
		nullUnix(w.StartedAt), nullUnix(w.EndedAt), nullInt(w.DurationM),
		nullBool(w.Soreness), nullInt(w.Stress), boolToInt(w.Completed),
		w.UpdatedAt.Unix(), w.ID,
	)
	return err
}

// GetWorkout returns a workout by id or ErrNotFound.
func (r *SQLiteRepo) GetWorkout(ctx context.Context, id string) (*domain.Workout, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id)
	return scanWorkout(row.Scan)
}

// FindOpenWorkout returns the newest non-completed workout created inside
// [start, end], or ErrNotFound.
func (r *SQLiteRepo) FindOpenWorkout(ctx context.Context, userID int64, start, end time.Time) (*domain.Workout, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE user_id = ? AND completed = 0
		  AND created_at >= ? AND created_at <= ?
		ORDER BY created_at DESC
		LIMIT 1`,
		userID, start.UTC().Unix(), end.UTC().Unix(),
	)
	return scanWorkout(row.Scan)
}

func scanWorkout(scan func(...any) error) (*domain.Workout, error) {
	var (
		w          domain.Workout
		feelBefore sql.NullInt64
		hardness   sql.NullInt64
		pain       sql.NullInt64
		startedAt  sql.NullInt64
		endedAt    sql.NullInt64
		duration   sql.NullInt64
		soreness   sql.NullInt64
		stress     sql.NullInt64
		doneInt    int
		createdAt  int64
		updatedAt  int64
	)
	if err := scan(
		&w.ID, &w.UserID, &feelBefore, &hardness, &pain, &startedAt,
		&endedAt, &duration, &soreness, &stress, &doneInt, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	w.FeelBefore = fromNullInt(feelBefore)
	w.Hardness = fromNullInt(hardness)
	w.Pain = fromNullBool(pain)
	w.StartedAt = fromNullUnix(startedAt)
	w.EndedAt = fromNullUnix(endedAt)
	w.DurationM = fromNullInt(duration)
	w.Soreness = fromNullBool(soreness)
	w.Stress = fromNullInt(stress)
	w.Completed = doneInt != 0
	w.CreatedAt = time.Unix(createdAt, 0).UTC()
	w.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &w, nil
}
