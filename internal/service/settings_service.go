package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/fitcoach-api/internal/models"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
)

type settingsUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

type settingsRepository interface {
	Get(ctx context.Context, userID string) (*models.CoachSettings, error)
	Upsert(ctx context.Context, settings *models.CoachSettings) error
}

// UpdateProfileRequest holds editable account profile fields.
type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Bio      string `json:"bio" validate:"omitempty,max=1000"`
}

// UpdatePreferencesRequest is a partial update; nil fields are unchanged.
type UpdatePreferencesRequest struct {
	Units              *string `json:"units" validate:"omitempty,oneof=metric imperial"`
	DefaultPageSize    *int    `json:"default_page_size" validate:"omitempty,min=5,max=100"`
	EmailNotifications *bool   `json:"email_notifications"`
	WeekStartsOn       *string `json:"week_starts_on" validate:"omitempty,oneof=sunday monday"`
	Timezone           *string `json:"timezone" validate:"omitempty,max=64"`
}

// SettingsService manages the coach's profile, preferences and password.
type SettingsService struct {
	users     settingsUserRepository
	settings  settingsRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSettingsService constructs a settings service.
func NewSettingsService(users settingsUserRepository, settings settingsRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{users: users, settings: settings, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// Get returns the combined account settings.
func (s *SettingsService) Get(ctx context.Context, userID string) (*models.AccountSettings, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	return accountSettings(user, *prefs), nil
}

// Preferences returns stored preferences or defaults when none were saved.
func (s *SettingsService) Preferences(ctx context.Context, userID string) (*models.CoachSettings, error) {
	prefs, err := s.settings.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			defaults := models.DefaultCoachSettings(userID)
			return &defaults, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	return prefs, nil
}

// UpdateProfile changes name, email, phone and bio.
func (s *SettingsService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.AccountSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)
	if !strings.EqualFold(email, user.Email) {
		exists, err := s.users.ExistsByEmail(ctx, email, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
	}

	user.FullName = strings.TrimSpace(req.FullName)
	user.Email = email
	user.Phone = strings.TrimSpace(req.Phone)
	user.Bio = req.Bio
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	return accountSettings(user, *prefs), nil
}

// UpdatePreferences applies a partial preferences update.
func (s *SettingsService) UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (*models.CoachSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preferences payload")
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown timezone")
		}
	}
	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Units != nil {
		prefs.Units = *req.Units
	}
	if req.DefaultPageSize != nil {
		prefs.DefaultPageSize = *req.DefaultPageSize
	}
	if req.EmailNotifications != nil {
		prefs.EmailNotifications = *req.EmailNotifications
	}
	if req.WeekStartsOn != nil {
		prefs.WeekStartsOn = *req.WeekStartsOn
	}
	if req.Timezone != nil {
		prefs.Timezone = *req.Timezone
	}
	if err := s.settings.Upsert(ctx, prefs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save preferences")
	}
	_ = s.cache.Evict(ctx, DashboardCacheKey(userID))
	return prefs, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *SettingsService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change password payload")
	}
	if req.OldPassword == req.NewPassword {
		return appErrors.Clone(appErrors.ErrValidation, "new password must differ from the current one")
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "old password does not match")
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, userID, hash, s.now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

func (s *SettingsService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func accountSettings(user *models.User, prefs models.CoachSettings) *models.AccountSettings {
	return &models.AccountSettings{
		Profile:     userInfo(user),
		Phone:       user.Phone,
		Bio:         user.Bio,
		Preferences: prefs,
	}
}
