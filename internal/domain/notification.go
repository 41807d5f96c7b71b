package domain

import "time"

// Category classifies a notification record. Each category carries its own
// typed bookkeeping in Meta, so lifecycle operations stay exhaustive.
type Category string

const (
	CategoryDaily    Category = "daily"    // fixed daily check-in prompt
	CategoryFollowUp Category = "followup" // day-after-training questionnaire
	CategoryGym      Category = "gym"      // today's gym-attendance reminder
	CategoryCustom   Category = "custom"   // ad-hoc user reminder
)

// Notification is a reminder record. Canonical is the time the dispatcher
// matches against; Local is the user-local time it was derived from. Local
// is authoritative: whenever the local time or the user's offset changes,
// Canonical is recomputed and never hand-edited.
type Notification struct {
	ID        string
	UserID    int64
	Category  Category
	Local     TimeOfDay
	Canonical TimeOfDay
	Text      string
	Active    bool
	// Template marks a followup record that is never dispatched itself; it
	// only supplies the default local time for future instance records.
	Template bool
	// CronSpec holds the five-field schedule expression for custom
	// reminders with weekly/monthly cadence.
	CronSpec string
	// Once marks a custom reminder that deactivates after its first fire.
	Once      bool
	Meta      Meta
	CreatedAt time.Time
}

// Meta is the per-category bookkeeping union; exactly the variant matching
// the record's category is set.
type Meta struct {
	Daily    *DailyMeta    `json:"daily,omitempty"`
	FollowUp *FollowUpMeta `json:"followup,omitempty"`
	Gym      *GymMeta      `json:"gym,omitempty"`
}

// DailyMeta tracks the last user-local date the daily prompt was sent,
// guarding against double sends within one local day.
type DailyMeta struct {
	LastSentDate string `json:"last_sent_date,omitempty"` // "2006-01-02"
}

// FollowUpMeta ties a follow-up instance to its originating workout.
type FollowUpMeta struct {
	SessionID     string `json:"session_id"`
	ScheduledDate string `json:"scheduled_date"` // "2006-01-02", canonical tz
	Sent          bool   `json:"sent"`
}

// GymMeta records the declared gym time and dispatch state for today's
// gym reminder.
type GymMeta struct {
	GymTime     string `json:"gym_time"`     // user-local "HH:MM"
	CreatedDate string `json:"created_date"` // "2006-01-02"
	SentDate    string `json:"sent_date,omitempty"`
}
