package domain

import "time"

// TrainingGoal is the user's declared objective, set during onboarding.
type TrainingGoal string

const (
	GoalLoseWeight  TrainingGoal = "lose_weight"
	GoalBuildMuscle TrainingGoal = "build_muscle"
	GoalMaintain    TrainingGoal = "maintain"
)

// User is a per-chat profile. TZOffset is the signed hour offset relative
// to the canonical scheduling timezone; it changes only through the
// explicit set-timezone operation and every time conversion reads it.
// CurrentNode is the persisted conversation-graph position.
type User struct {
	ChatID      int64
	FullName    string
	Username    string
	Verified    bool
	Goal        TrainingGoal
	TZOffset    int
	CurrentNode string
	CreatedAt   time.Time // UTC
}

// LocalDate returns the user-local calendar date for the given instant,
// formatted "2006-01-02". The user's wall clock is the canonical zone's
// wall clock shifted by TZOffset, so the instant is read in the canonical
// location first.
func (u *User) LocalDate(now time.Time, canonical *time.Location) string {
	off := time.Duration(u.TZOffset) * time.Hour
	return now.In(canonical).Add(off).Format("2006-01-02")
}

// LocalDayWindow returns the instant bounds of the user's current local
// calendar day: the user-local midnight happens when the canonical wall
// clock reads midnight minus the offset.
func (u *User) LocalDayWindow(now time.Time, canonical *time.Location) (start, end time.Time) {
	off := time.Duration(u.TZOffset) * time.Hour
	localNow := now.In(canonical).Add(off)
	y, m, d := localNow.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, canonical).Add(-off)
	end = start.Add(24*time.Hour - time.Second)
	return start, end
}
