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

type clientLister interface {
	ListByCoach(ctx context.Context, coachID string) ([]models.Client, error)
}

type clientRepository interface {
	clientLister
	FindByID(ctx context.Context, coachID, id string) (*models.Client, error)
	ExistsByEmail(ctx context.Context, coachID, email, excludeID string) (bool, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, coachID, id string) error
}

// CreateClientRequest holds payload for registering a client.
type CreateClientRequest struct {
	Name        string              `json:"name" validate:"required,max=120"`
	Email       string              `json:"email" validate:"required,email"`
	Phone       string              `json:"phone" validate:"omitempty,max=32"`
	ProgramType string              `json:"program_type" validate:"omitempty,max=64"`
	Status      models.ClientStatus `json:"status" validate:"omitempty,oneof=active pending inactive"`
	Goals       string              `json:"goals" validate:"omitempty,max=500"`
	StartDate   *time.Time          `json:"start_date"`
}

// UpdateClientRequest holds payload for updating a client.
type UpdateClientRequest struct {
	Name        string              `json:"name" validate:"required,max=120"`
	Email       string              `json:"email" validate:"required,email"`
	Phone       string              `json:"phone" validate:"omitempty,max=32"`
	ProgramType string              `json:"program_type" validate:"omitempty,max=64"`
	Status      models.ClientStatus `json:"status" validate:"required,oneof=active pending inactive"`
	Goals       string              `json:"goals" validate:"omitempty,max=500"`
	StartDate   *time.Time          `json:"start_date"`
}

// ClientServiceParams groups constructor dependencies.
type ClientServiceParams struct {
	Repo      clientRepository
	Fallback  clientLister
	Settings  settingsReader
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Lists     ListConfig
}

// ClientService handles client use-cases.
type ClientService struct {
	repo      clientRepository
	loader    collectionLoader[models.Client]
	settings  settingsReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	lists     ListConfig
	now       func() time.Time
}

// NewClientService constructs the client service.
func NewClientService(params ClientServiceParams) *ClientService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loader := collectionLoader[models.Client]{
		entity:  "clients",
		primary: params.Repo,
		metrics: params.Metrics,
		logger:  logger,
	}
	if params.Fallback != nil {
		loader.fallback = params.Fallback
	}
	return &ClientService{
		repo:      params.Repo,
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
func (s *ClientService) Query(q models.ClientQuery) (listquery.Query, error) {
	return s.lists.query(q.Search, q.Status, "", q.Page, q.PageSize, q.SortBy, q.SortOrder, models.ClientSortFields)
}

// List returns one page of the coach's clients.
func (s *ClientService) List(ctx context.Context, coachID string, q models.ClientQuery) (*ListResult[models.Client], error) {
	q.PageSize = preferredPageSize(ctx, s.settings, coachID, q.PageSize, s.logger)
	query, err := s.Query(q)
	if err != nil {
		return nil, err
	}
	return evaluate(ctx, s.loader, coachID, query, models.SortClients)
}

// All returns every client matching the query, ignoring pagination.
func (s *ClientService) All(ctx context.Context, coachID string, q models.ClientQuery) ([]models.Client, string, error) {
	query, err := s.Query(q)
	if err != nil {
		return nil, "", err
	}
	return filterAll(ctx, s.loader, coachID, query, models.SortClients)
}

// Get returns a client owned by the coach.
func (s *ClientService) Get(ctx context.Context, coachID, id string) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, coachID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	return client, nil
}

// Create registers a new client for the coach.
func (s *ClientService) Create(ctx context.Context, coachID string, req CreateClientRequest) (*models.Client, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid client payload")
	}
	email := strings.TrimSpace(req.Email)
	if err := s.ensureUniqueEmail(ctx, coachID, email, ""); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.ClientStatusPending
	}
	startDate := s.now().UTC()
	if req.StartDate != nil {
		startDate = req.StartDate.UTC()
	}
	client := &models.Client{
		CoachID:     coachID,
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Phone:       strings.TrimSpace(req.Phone),
		ProgramType: strings.TrimSpace(req.ProgramType),
		Status:      status,
		Goals:       req.Goals,
		StartDate:   startDate,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create client")
	}
	s.invalidateDashboard(ctx, coachID)
	return client, nil
}

// Update modifies an existing client.
func (s *ClientService) Update(ctx context.Context, coachID, id string, req UpdateClientRequest) (*models.Client, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid client payload")
	}
	client, err := s.Get(ctx, coachID, id)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)
	if err := s.ensureUniqueEmail(ctx, coachID, email, id); err != nil {
		return nil, err
	}

	client.Name = strings.TrimSpace(req.Name)
	client.Email = email
	client.Phone = strings.TrimSpace(req.Phone)
	client.ProgramType = strings.TrimSpace(req.ProgramType)
	client.Status = req.Status
	client.Goals = req.Goals
	if req.StartDate != nil {
		client.StartDate = req.StartDate.UTC()
	}
	if err := s.repo.Update(ctx, client); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update client")
	}
	s.invalidateDashboard(ctx, coachID)
	return client, nil
}

// Delete removes a client and its workouts.
func (s *ClientService) Delete(ctx context.Context, coachID, id string) error {
	if err := s.repo.Delete(ctx, coachID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete client")
	}
	s.invalidateDashboard(ctx, coachID)
	return nil
}

func (s *ClientService) ensureUniqueEmail(ctx context.Context, coachID, email, excludeID string) error {
	exists, err := s.repo.ExistsByEmail(ctx, coachID, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "client email already registered")
	}
	return nil
}

func (s *ClientService) invalidateDashboard(ctx context.Context, coachID string) {
	_ = s.cache.Evict(ctx, DashboardCacheKey(coachID))
}
