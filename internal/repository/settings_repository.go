package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fitcoach-api/internal/models"
)

// SettingsRepository persists per-account preferences.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs a SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns stored settings or sql.ErrNoRows when none were saved.
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*models.CoachSettings, error) {
	const query = `SELECT user_id, units, default_page_size, email_notifications, week_starts_on, timezone, updated_at FROM coach_settings WHERE user_id = $1`
	var settings models.CoachSettings
	if err := r.db.GetContext(ctx, &settings, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &settings, nil
}

// Upsert inserts or replaces settings for the account.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.CoachSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO coach_settings (user_id, units, default_page_size, email_notifications, week_starts_on, timezone, updated_at)
VALUES (:user_id, :units, :default_page_size, :email_notifications, :week_starts_on, :timezone, :updated_at)
ON CONFLICT (user_id)
DO UPDATE SET units = EXCLUDED.units, default_page_size = EXCLUDED.default_page_size,
              email_notifications = EXCLUDED.email_notifications, week_starts_on = EXCLUDED.week_starts_on,
              timezone = EXCLUDED.timezone, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
