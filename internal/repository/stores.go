package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fitcoach-api/internal/models"
)

// ClientStore persists a coach's clients.
type ClientStore interface {
	ListByCoach(ctx context.Context, coachID string) ([]models.Client, error)
	FindByID(ctx context.Context, coachID, id string) (*models.Client, error)
	ExistsByEmail(ctx context.Context, coachID, email, excludeID string) (bool, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, coachID, id string) error
	Touch(ctx context.Context, id string, at time.Time) error
}

// WorkoutStore persists workouts and their exercises.
type WorkoutStore interface {
	ListByCoach(ctx context.Context, coachID string) ([]models.Workout, error)
	FindByID(ctx context.Context, coachID, id string) (*models.Workout, error)
	Create(ctx context.Context, workout *models.Workout) error
	Update(ctx context.Context, workout *models.Workout) error
	Delete(ctx context.Context, coachID, id string) error
	Complete(ctx context.Context, id string, at time.Time) error
}

// UserStore persists coach accounts.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

// SettingsStore persists per-account preferences.
type SettingsStore interface {
	Get(ctx context.Context, userID string) (*models.CoachSettings, error)
	Upsert(ctx context.Context, settings *models.CoachSettings) error
}

// Stores bundles the repositories backing the API.
type Stores struct {
	Clients  ClientStore
	Workouts WorkoutStore
	Users    UserStore
	Settings SettingsStore
}

// NewPostgresStores returns the sqlx-backed repositories.
func NewPostgresStores(db *sqlx.DB) Stores {
	return Stores{
		Clients:  NewClientRepository(db),
		Workouts: NewWorkoutRepository(db),
		Users:    NewUserRepository(db),
		Settings: NewSettingsRepository(db),
	}
}

// Stores returns the in-memory repositories.
func (s *MemoryStore) Stores() Stores {
	return Stores{
		Clients:  s.Clients(),
		Workouts: s.Workouts(),
		Users:    s.Users(),
		Settings: s.Settings(),
	}
}
