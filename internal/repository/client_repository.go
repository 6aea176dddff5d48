package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fitcoach-api/internal/models"
)

const clientColumns = `id, coach_id, name, email, phone, program_type, status, goals, start_date, last_active, created_at, updated_at`

// ClientRepository handles persistence for coaching clients.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository constructs a ClientRepository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// ListByCoach returns every client of the coach, newest first. Filtering,
// search and paging happen in the list pipeline.
func (r *ClientRepository) ListByCoach(ctx context.Context, coachID string) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE coach_id = $1 ORDER BY created_at DESC, id`
	var clients []models.Client
	if err := r.db.SelectContext(ctx, &clients, query, coachID); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// FindByID returns a client owned by coachID.
func (r *ClientRepository) FindByID(ctx context.Context, coachID, id string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 AND coach_id = $2`
	var client models.Client
	if err := r.db.GetContext(ctx, &client, query, id, coachID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &client, nil
}

// ExistsByEmail checks whether the coach already has a client with email.
func (r *ClientRepository) ExistsByEmail(ctx context.Context, coachID, email, excludeID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM clients WHERE coach_id = $1 AND LOWER(email) = LOWER($2) AND id <> $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, coachID, email, excludeID); err != nil {
		return false, fmt.Errorf("check client email: %w", err)
	}
	return exists, nil
}

// Create inserts a new client record.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now

	const query = `INSERT INTO clients (id, coach_id, name, email, phone, program_type, status, goals, start_date, last_active, created_at, updated_at)
VALUES (:id, :coach_id, :name, :email, :phone, :program_type, :status, :goals, :start_date, :last_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

// Update modifies an existing client.
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	client.UpdatedAt = time.Now().UTC()
	const query = `UPDATE clients SET name = :name, email = :email, phone = :phone, program_type = :program_type, status = :status, goals = :goals, start_date = :start_date, updated_at = :updated_at WHERE id = :id AND coach_id = :coach_id`
	res, err := r.db.NamedExecContext(ctx, query, client)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a client. Workouts cascade in the schema.
func (r *ClientRepository) Delete(ctx context.Context, coachID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1 AND coach_id = $2`, id, coachID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return requireAffected(res)
}

// Touch records client activity.
func (r *ClientRepository) Touch(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE clients SET last_active = $2 WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("touch client: %w", err)
	}
	return nil
}
