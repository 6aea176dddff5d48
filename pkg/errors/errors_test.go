package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", Clone(ErrNotFound, "client not found"))
	got := FromError(wrapped)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "client not found", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, sql.ErrConnDone)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutatePredefined(t *testing.T) {
	c := Clone(ErrConflict, "email already used")
	assert.Equal(t, "email already used", c.Message)
	assert.Equal(t, "conflict", ErrConflict.Message)
	assert.Equal(t, "conflict", Clone(ErrConflict, "").Message)
}

func TestWrapMessage(t *testing.T) {
	err := Wrap(sql.ErrNoRows, ErrInternal.Code, ErrInternal.Status, "failed to list workouts")
	assert.Equal(t, "failed to list workouts: sql: no rows in result set", err.Error())
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("update client: %w", Clone(ErrNotFound, "client not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(sql.ErrNoRows, ErrNotFound))
}
