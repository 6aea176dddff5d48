package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/fitcoach-api/internal/models"
)

const workoutSelect = `SELECT w.id, w.coach_id, w.client_id, COALESCE(c.name, '') AS client_name, w.title, w.description,
w.scheduled_for, w.duration_minutes, w.completed, w.completed_at, w.created_at, w.updated_at
FROM workouts w LEFT JOIN clients c ON c.id = w.client_id`

const exerciseColumns = `id, workout_id, name, sets, reps, weight_kg, rest_seconds, notes, position`

// WorkoutRepository handles persistence for workouts and their exercises.
type WorkoutRepository struct {
	db *sqlx.DB
}

// NewWorkoutRepository constructs a WorkoutRepository.
func NewWorkoutRepository(db *sqlx.DB) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

// ListByCoach returns every workout of the coach with exercises loaded,
// latest schedule first.
func (r *WorkoutRepository) ListByCoach(ctx context.Context, coachID string) ([]models.Workout, error) {
	query := workoutSelect + ` WHERE w.coach_id = $1 ORDER BY w.scheduled_for DESC, w.id`
	var workouts []models.Workout
	if err := r.db.SelectContext(ctx, &workouts, query, coachID); err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	if err := r.attachExercises(ctx, workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// FindByID returns a workout owned by coachID.
func (r *WorkoutRepository) FindByID(ctx context.Context, coachID, id string) (*models.Workout, error) {
	query := workoutSelect + ` WHERE w.id = $1 AND w.coach_id = $2`
	var workout models.Workout
	if err := r.db.GetContext(ctx, &workout, query, id, coachID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get workout: %w", err)
	}
	list := []models.Workout{workout}
	if err := r.attachExercises(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *WorkoutRepository) attachExercises(ctx context.Context, workouts []models.Workout) error {
	if len(workouts) == 0 {
		return nil
	}
	ids := make([]string, len(workouts))
	index := make(map[string]int, len(workouts))
	for i := range workouts {
		ids[i] = workouts[i].ID
		index[workouts[i].ID] = i
		workouts[i].Exercises = []models.Exercise{}
	}

	query := `SELECT ` + exerciseColumns + ` FROM workout_exercises WHERE workout_id = ANY($1) ORDER BY workout_id, position`
	var exercises []models.Exercise
	if err := r.db.SelectContext(ctx, &exercises, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list workout exercises: %w", err)
	}
	for _, e := range exercises {
		if i, ok := index[e.WorkoutID]; ok {
			workouts[i].Exercises = append(workouts[i].Exercises, e)
		}
	}
	return nil
}

// Create inserts a workout with its exercises in one transaction.
func (r *WorkoutRepository) Create(ctx context.Context, workout *models.Workout) error {
	if workout.ID == "" {
		workout.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = now
	}
	workout.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin workout tx: %w", err)
	}
	const insert = `INSERT INTO workouts (id, coach_id, client_id, title, description, scheduled_for, duration_minutes, completed, completed_at, created_at, updated_at)
VALUES (:id, :coach_id, :client_id, :title, :description, :scheduled_for, :duration_minutes, :completed, :completed_at, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, workout); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create workout: %w", err)
	}
	if err := r.replaceExercisesTx(ctx, tx, workout); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit workout: %w", err)
	}
	return nil
}

// Update modifies a workout and replaces its exercise list.
func (r *WorkoutRepository) Update(ctx context.Context, workout *models.Workout) error {
	workout.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin workout tx: %w", err)
	}
	const update = `UPDATE workouts SET client_id = :client_id, title = :title, description = :description, scheduled_for = :scheduled_for,
duration_minutes = :duration_minutes, updated_at = :updated_at WHERE id = :id AND coach_id = :coach_id`
	res, err := tx.NamedExecContext(ctx, update, workout)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update workout: %w", err)
	}
	if err := requireAffected(res); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := r.replaceExercisesTx(ctx, tx, workout); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit workout: %w", err)
	}
	return nil
}

func (r *WorkoutRepository) replaceExercisesTx(ctx context.Context, tx *sqlx.Tx, workout *models.Workout) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM workout_exercises WHERE workout_id = $1`, workout.ID); err != nil {
		return fmt.Errorf("clear workout exercises: %w", err)
	}
	assignExerciseIDs(workout)
	const insert = `INSERT INTO workout_exercises (` + exerciseColumns + `)
VALUES (:id, :workout_id, :name, :sets, :reps, :weight_kg, :rest_seconds, :notes, :position)`
	for i := range workout.Exercises {
		if _, err := tx.NamedExecContext(ctx, insert, workout.Exercises[i]); err != nil {
			return fmt.Errorf("insert workout exercise: %w", err)
		}
	}
	return nil
}

// Delete removes a workout. Exercises cascade in the schema.
func (r *WorkoutRepository) Delete(ctx context.Context, coachID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = $1 AND coach_id = $2`, id, coachID)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return requireAffected(res)
}

// Complete flags a workout as done.
func (r *WorkoutRepository) Complete(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE workouts SET completed = TRUE, completed_at = $2, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("complete workout: %w", err)
	}
	return requireAffected(res)
}
