package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/fitcoach-api/internal/models"
	"github.com/noah-isme/fitcoach-api/internal/repository"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
)

func TestListConfigQueryConvertsPages(t *testing.T) {
	cfg := ListConfig{DefaultPageSize: 10, MaxPageSize: 50}.withDefaults()

	q, err := cfg.query(" squat ", "Active", "c1", 3, 0, "title", "DESC", models.WorkoutSortFields)
	require.NoError(t, err)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 10, q.PageSize)
	assert.Equal(t, "active", q.Status)
	assert.Equal(t, "c1", q.Owner)
	assert.True(t, q.Descending())

	q, err = cfg.query("", "", "", 0, 500, "", "", models.WorkoutSortFields)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Page)
	assert.Equal(t, 50, q.PageSize)
	assert.Equal(t, "all", q.Status)
}

func TestListConfigQueryRejectsUnknownSort(t *testing.T) {
	cfg := ListConfig{}.withDefaults()

	_, err := cfg.query("", "", "", 1, 10, "password", "", models.ClientSortFields)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	_, err = cfg.query("", "", "", 1, 10, "name", "sideways", models.ClientSortFields)
	require.Error(t, err)
}

func TestCollectionLoaderFallsBackToFixtures(t *testing.T) {
	f := demoFixtures(t)
	primary := &failingLister[models.Client]{}
	metrics := NewMetricsService()
	loader := collectionLoader[models.Client]{
		entity:   "clients",
		primary:  primary,
		fallback: repository.NewStaticClients(f.Clients),
		metrics:  metrics,
		logger:   zap.NewNop(),
	}

	records, source, err := loader.load(context.Background(), "coach-x")
	require.NoError(t, err)
	assert.Equal(t, SourceFixture, source)
	assert.Len(t, records, len(f.Clients))
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, uint64(1), metrics.Snapshot().FixtureFallbacks)
}

func TestCollectionLoaderWithoutFallbackIsUnavailable(t *testing.T) {
	loader := collectionLoader[models.Client]{
		entity:  "clients",
		primary: &failingLister[models.Client]{},
		logger:  zap.NewNop(),
	}

	_, _, err := loader.load(context.Background(), "coach-x")
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, appErrors.FromError(err).Status)
	assert.ErrorIs(t, err, errDBDown)
}

func TestListResultPaginationIsOneBased(t *testing.T) {
	store := demoStore(t)
	svc := NewClientService(ClientServiceParams{Repo: store.Clients()})

	res, err := svc.List(context.Background(), repository.DemoCoachID, models.ClientQuery{Page: 2, PageSize: 4})
	require.NoError(t, err)
	p := res.Pagination()
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 4, p.PageSize)
	assert.Equal(t, 6, p.TotalCount)
	assert.Equal(t, 2, p.TotalPages)
	assert.Len(t, res.Items, 2)
}

type failingSettings struct{}

func (failingSettings) Get(context.Context, string) (*models.CoachSettings, error) {
	return nil, errDBDown
}

func TestListPageSizeFollowsCoachPreference(t *testing.T) {
	store := demoStore(t)
	svc := NewClientService(ClientServiceParams{Repo: store.Clients(), Settings: store.Settings(), Lists: ListConfig{DefaultPageSize: 4}})
	ctx := context.Background()

	res, err := svc.List(ctx, repository.DemoCoachID, models.ClientQuery{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.PageSize, "unsaved preferences keep the configured default")

	prefs := models.DefaultCoachSettings(repository.DemoCoachID)
	prefs.DefaultPageSize = 5
	require.NoError(t, store.Settings().Upsert(ctx, &prefs))

	res, err = svc.List(ctx, repository.DemoCoachID, models.ClientQuery{})
	require.NoError(t, err)
	assert.Equal(t, 5, res.PageSize)
	assert.Len(t, res.Items, 5)
	assert.Equal(t, 2, res.PageCount)

	res, err = svc.List(ctx, repository.DemoCoachID, models.ClientQuery{PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, res.PageSize)
}

func TestListPageSizeIgnoresUnreadablePreferences(t *testing.T) {
	store := demoStore(t)
	svc := NewWorkoutService(WorkoutServiceParams{Repo: store.Workouts(), Clients: store.Clients(), Settings: failingSettings{}, Lists: ListConfig{DefaultPageSize: 2}})

	res, err := svc.List(context.Background(), repository.DemoCoachID, models.WorkoutQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.PageSize)
	assert.Len(t, res.Items, 2)
}
