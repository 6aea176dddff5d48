package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fitcoach-api/internal/middleware"
	"github.com/noah-isme/fitcoach-api/internal/models"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
)

func claimsOf(c *gin.Context) (*models.JWTClaims, bool) {
	return middleware.Claims(c)
}

// coachID returns the authenticated account whose records are in scope.
func coachID(c *gin.Context) (string, error) {
	claims, ok := middleware.Claims(c)
	if !ok || claims.UserID == "" {
		return "", appErrors.ErrUnauthorized
	}
	return claims.UserID, nil
}

// intQuery parses an optional integer query parameter; absent means zero.
func intQuery(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a non-negative integer")
	}
	return v, nil
}

func pageParams(c *gin.Context) (page, size int, err error) {
	if page, err = intQuery(c, "page"); err != nil {
		return 0, 0, err
	}
	if size, err = intQuery(c, "limit"); err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

func clientQuery(c *gin.Context) (models.ClientQuery, error) {
	page, size, err := pageParams(c)
	if err != nil {
		return models.ClientQuery{}, err
	}
	return models.ClientQuery{
		Search:    strings.TrimSpace(c.Query("search")),
		Status:    c.Query("status"),
		Page:      page,
		PageSize:  size,
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}, nil
}

func workoutQuery(c *gin.Context) (models.WorkoutQuery, error) {
	page, size, err := pageParams(c)
	if err != nil {
		return models.WorkoutQuery{}, err
	}
	return models.WorkoutQuery{
		Search:    strings.TrimSpace(c.Query("search")),
		Status:    c.Query("status"),
		ClientID:  c.Query("clientId"),
		Page:      page,
		PageSize:  size,
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}, nil
}

func bindError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}
