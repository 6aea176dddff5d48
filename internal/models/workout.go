package models

import "time"

// WorkoutStatus is derived from the completion flag.
type WorkoutStatus string

const (
	WorkoutStatusCompleted WorkoutStatus = "completed"
	WorkoutStatusPending   WorkoutStatus = "pending"
)

// Workout is a scheduled training session for a client.
type Workout struct {
	ID              string     `db:"id" json:"id"`
	CoachID         string     `db:"coach_id" json:"coach_id"`
	ClientID        string     `db:"client_id" json:"client_id"`
	ClientName      string     `db:"client_name" json:"client_name"`
	Title           string     `db:"title" json:"title"`
	Description     string     `db:"description" json:"description"`
	ScheduledFor    time.Time  `db:"scheduled_for" json:"scheduled_for"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	Completed       bool       `db:"completed" json:"completed"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Exercises       []Exercise `db:"-" json:"exercises"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Exercise is one movement prescribed within a workout.
type Exercise struct {
	ID          string  `db:"id" json:"id"`
	WorkoutID   string  `db:"workout_id" json:"workout_id"`
	Name        string  `db:"name" json:"name"`
	Sets        int     `db:"sets" json:"sets"`
	Reps        int     `db:"reps" json:"reps"`
	WeightKg    float64 `db:"weight_kg" json:"weight_kg"`
	RestSeconds int     `db:"rest_seconds" json:"rest_seconds"`
	Notes       string  `db:"notes" json:"notes"`
	Position    int     `db:"position" json:"position"`
}

// Status reports the lifecycle state of the workout.
func (w Workout) Status() WorkoutStatus {
	if w.Completed {
		return WorkoutStatusCompleted
	}
	return WorkoutStatusPending
}

func (w Workout) RecordID() string     { return w.ID }
func (w Workout) RecordStatus() string { return string(w.Status()) }
func (w Workout) OwnerID() string      { return w.ClientID }

// SearchFields are the workout attributes matched by free-text search.
func (w Workout) SearchFields() []string {
	return []string{w.Title, w.Description, w.ClientName}
}

// NestedSearchFields exposes exercise names to free-text search.
func (w Workout) NestedSearchFields() []string {
	names := make([]string, 0, len(w.Exercises))
	for _, e := range w.Exercises {
		names = append(names, e.Name)
	}
	return names
}

// WorkoutQuery carries list parameters for workouts.
type WorkoutQuery struct {
	Search    string
	Status    string
	ClientID  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
