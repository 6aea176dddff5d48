package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fitcoach-api/internal/models"
)

var clientRowColumns = []string{"id", "coach_id", "name", "email", "phone", "program_type", "status", "goals", "start_date", "last_active", "created_at", "updated_at"}

func TestClientRepositoryListByCoach(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(clientRowColumns).
		AddRow("c1", "coach", "Ronit", "r@example.com", "050", "Strength", "active", "", now, nil, now, now).
		AddRow("c2", "coach", "Alon", "a@example.com", "054", "Weight Loss", "pending", "", now, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE coach_id = $1 ORDER BY created_at DESC, id")).
		WithArgs("coach").
		WillReturnRows(rows)

	clients, err := repo.ListByCoach(context.Background(), "coach")
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, models.ClientStatusPending, clients[1].Status)
	assert.Nil(t, clients[0].LastActive)
	assert.NotNil(t, clients[1].LastActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepositoryListError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	mock.ExpectQuery("FROM clients").WillReturnError(errors.New("connection refused"))

	_, err := repo.ListByCoach(context.Background(), "coach")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list clients")
}

func TestClientRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	mock.ExpectExec("INSERT INTO clients").WillReturnResult(sqlmock.NewResult(1, 1))

	client := &models.Client{CoachID: "coach", Name: "Noa", Email: "noa@example.com", Status: models.ClientStatusActive}
	require.NoError(t, repo.Create(context.Background(), client))
	assert.NotEmpty(t, client.ID)
	assert.False(t, client.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM clients WHERE id = $1 AND coach_id = $2")).
		WithArgs("c9", "coach").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "coach", "c9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	mock.ExpectQuery("SELECT EXISTS").WithArgs("coach", "noa@example.com", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.ExistsByEmail(context.Background(), "coach", "noa@example.com", "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
