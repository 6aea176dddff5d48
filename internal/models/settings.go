package models

import "time"

// Unit systems supported for weights and distances.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// CoachSettings stores per-account preferences.
type CoachSettings struct {
	UserID             string    `db:"user_id" json:"user_id"`
	Units              string    `db:"units" json:"units"`
	DefaultPageSize    int       `db:"default_page_size" json:"default_page_size"`
	EmailNotifications bool      `db:"email_notifications" json:"email_notifications"`
	WeekStartsOn       string    `db:"week_starts_on" json:"week_starts_on"`
	Timezone           string    `db:"timezone" json:"timezone"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultCoachSettings returns preferences for accounts that never saved any.
func DefaultCoachSettings(userID string) CoachSettings {
	return CoachSettings{
		UserID:             userID,
		Units:              UnitsMetric,
		DefaultPageSize:    20,
		EmailNotifications: true,
		WeekStartsOn:       "sunday",
		Timezone:           "UTC",
	}
}

// AccountSettings is the combined settings view returned to the coach.
type AccountSettings struct {
	Profile     UserInfo      `json:"profile"`
	Phone       string        `json:"phone"`
	Bio         string        `json:"bio"`
	Preferences CoachSettings `json:"preferences"`
}
