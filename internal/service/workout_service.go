package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/fitcoach-api/internal/models"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
	"github.com/noah-isme/fitcoach-api/pkg/listquery"
)

type workoutLister interface {
	ListByCoach(ctx context.Context, coachID string) ([]models.Workout, error)
}

type workoutRepository interface {
	workoutLister
	FindByID(ctx context.Context, coachID, id string) (*models.Workout, error)
	Create(ctx context.Context, workout *models.Workout) error
	Update(ctx context.Context, workout *models.Workout) error
	Delete(ctx context.Context, coachID, id string) error
	Complete(ctx context.Context, id string, at time.Time) error
}

type workoutClientRepository interface {
	FindByID(ctx context.Context, coachID, id string) (*models.Client, error)
	Touch(ctx context.Context, id string, at time.Time) error
}

// ExerciseRequest describes one prescribed movement.
type ExerciseRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Sets        int     `json:"sets" validate:"gte=0,lte=100"`
	Reps        int     `json:"reps" validate:"gte=0,lte=1000"`
	WeightKg    float64 `json:"weight_kg" validate:"gte=0,lte=1000"`
	RestSeconds int     `json:"rest_seconds" validate:"gte=0,lte=3600"`
	Notes       string  `json:"notes" validate:"omitempty,max=500"`
}

// WorkoutRequest holds payload for creating or replacing a workout.
type WorkoutRequest struct {
	ClientID        string            `json:"client_id" validate:"required"`
	Title           string            `json:"title" validate:"required,max=160"`
	Description     string            `json:"description" validate:"omitempty,max=1000"`
	ScheduledFor    time.Time         `json:"scheduled_for"`
	DurationMinutes int               `json:"duration_minutes" validate:"gte=0,lte=600"`
	Exercises       []ExerciseRequest `json:"exercises" validate:"omitempty,dive"`
}

// WorkoutServiceParams groups constructor dependencies.
type WorkoutServiceParams struct {
	Repo      workoutRepository
	Clients   workoutClientRepository
	Fallback  workoutLister
	Settings  settingsReader
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Lists     ListConfig
}

// WorkoutService handles workout scheduling and tracking.
type WorkoutService struct {
	repo      workoutRepository
	clients   workoutClientRepository
	loader    collectionLoader[models.Workout]
	settings  settingsReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	lists     ListConfig
	now       func() time.Time
}

// NewWorkoutService constructs the workout service.
func NewWorkoutService(params WorkoutServiceParams) *WorkoutService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loader := collectionLoader[models.Workout]{
		entity:  "workouts",
		primary: params.Repo,
		metrics: params.Metrics,
		logger:  logger,
	}
	if params.Fallback != nil {
		loader.fallback = params.Fallback
	}
	return &WorkoutService{
		repo:      params.Repo,
		clients:   params.Clients,
		loader:    loader,
		settings:  params.Settings,
		cache:     params.Cache,
		validator: validate,
		logger:    logger,
		lists:     params.Lists.withDefaults(),
		now:       time.Now,
	}
}

// Query converts wire list parameters into an engine query.
func (s *WorkoutService) Query(q models.WorkoutQuery) (listquery.Query, error) {
	return s.lists.query(q.Search, q.Status, strings.TrimSpace(q.ClientID), q.Page, q.PageSize, q.SortBy, q.SortOrder, models.WorkoutSortFields)
}

// List returns one page of the coach's workouts.
func (s *WorkoutService) List(ctx context.Context, coachID string, q models.WorkoutQuery) (*ListResult[models.Workout], error) {
	q.PageSize = preferredPageSize(ctx, s.settings, coachID, q.PageSize, s.logger)
	query, err := s.Query(q)
	if err != nil {
		return nil, err
	}
	return evaluate(ctx, s.loader, coachID, query, models.SortWorkouts)
}

// All returns every workout matching the query, ignoring pagination.
func (s *WorkoutService) All(ctx context.Context, coachID string, q models.WorkoutQuery) ([]models.Workout, string, error) {
	query, err := s.Query(q)
	if err != nil {
		return nil, "", err
	}
	return filterAll(ctx, s.loader, coachID, query, models.SortWorkouts)
}

// Get returns a workout owned by the coach.
func (s *WorkoutService) Get(ctx context.Context, coachID, id string) (*models.Workout, error) {
	workout, err := s.repo.FindByID(ctx, coachID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workout not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workout")
	}
	return workout, nil
}

// Create schedules a workout for one of the coach's clients.
func (s *WorkoutService) Create(ctx context.Context, coachID string, req WorkoutRequest) (*models.Workout, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	client, err := s.ownedClient(ctx, coachID, req.ClientID)
	if err != nil {
		return nil, err
	}

	workout := &models.Workout{CoachID: coachID}
	applyWorkoutRequest(workout, req)
	workout.ClientName = client.Name
	if err := s.repo.Create(ctx, workout); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create workout")
	}
	s.invalidateDashboard(ctx, coachID)
	return workout, nil
}

// Update replaces a workout's details and exercise list.
func (s *WorkoutService) Update(ctx context.Context, coachID, id string, req WorkoutRequest) (*models.Workout, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	workout, err := s.Get(ctx, coachID, id)
	if err != nil {
		return nil, err
	}
	client, err := s.ownedClient(ctx, coachID, req.ClientID)
	if err != nil {
		return nil, err
	}

	applyWorkoutRequest(workout, req)
	workout.ClientName = client.Name
	if err := s.repo.Update(ctx, workout); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workout not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update workout")
	}
	s.invalidateDashboard(ctx, coachID)
	return workout, nil
}

// Delete removes a workout.
func (s *WorkoutService) Delete(ctx context.Context, coachID, id string) error {
	if err := s.repo.Delete(ctx, coachID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "workout not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete workout")
	}
	s.invalidateDashboard(ctx, coachID)
	return nil
}

// Complete marks a workout as done and records client activity. Completing
// an already completed workout returns it unchanged.
func (s *WorkoutService) Complete(ctx context.Context, coachID, id string) (*models.Workout, error) {
	workout, err := s.Get(ctx, coachID, id)
	if err != nil {
		return nil, err
	}
	if workout.Completed {
		return workout, nil
	}

	at := s.now().UTC()
	if err := s.repo.Complete(ctx, id, at); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete workout")
	}
	workout.Completed = true
	workout.CompletedAt = &at
	workout.UpdatedAt = at

	if s.clients != nil {
		if err := s.clients.Touch(ctx, workout.ClientID, at); err != nil {
			s.logger.Warn("failed to record client activity", zap.String("client_id", workout.ClientID), zap.Error(err))
		}
	}
	s.invalidateDashboard(ctx, coachID)
	return workout, nil
}

func (s *WorkoutService) validate(req WorkoutRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workout payload")
	}
	if req.ScheduledFor.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "scheduled_for is required")
	}
	return nil
}

func (s *WorkoutService) ownedClient(ctx context.Context, coachID, clientID string) (*models.Client, error) {
	if s.clients == nil {
		return &models.Client{ID: clientID}, nil
	}
	client, err := s.clients.FindByID(ctx, coachID, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "client not found for coach")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	return client, nil
}

func (s *WorkoutService) invalidateDashboard(ctx context.Context, coachID string) {
	_ = s.cache.Evict(ctx, DashboardCacheKey(coachID))
}

func applyWorkoutRequest(w *models.Workout, req WorkoutRequest) {
	w.ClientID = req.ClientID
	w.Title = strings.TrimSpace(req.Title)
	w.Description = req.Description
	w.ScheduledFor = req.ScheduledFor.UTC()
	w.DurationMinutes = req.DurationMinutes
	w.Exercises = make([]models.Exercise, len(req.Exercises))
	for i, e := range req.Exercises {
		w.Exercises[i] = models.Exercise{
			Name:        strings.TrimSpace(e.Name),
			Sets:        e.Sets,
			Reps:        e.Reps,
			WeightKg:    e.WeightKg,
			RestSeconds: e.RestSeconds,
			Notes:       e.Notes,
			Position:    i,
		}
	}
}
