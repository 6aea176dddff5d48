package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fitcoach-api/internal/models"
	"github.com/noah-isme/fitcoach-api/internal/repository"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
)

const (
	workoutLowerBody = "a1b2c3d4-2222-4f00-9c00-000000000001"
	workoutPush      = "a1b2c3d4-2222-4f00-9c00-000000000002"
)

type touchFailingClients struct {
	workoutClientRepository
}

func (touchFailingClients) Touch(context.Context, string, time.Time) error {
	return errors.New("touch failed")
}

type workoutFixture struct {
	store   *repository.MemoryStore
	cache   *memoryCache
	metrics *MetricsService
	svc     *WorkoutService
}

func newWorkoutFixture(t *testing.T) workoutFixture {
	t.Helper()
	store := demoStore(t)
	cache := newMemoryCache()
	metrics := NewMetricsService()
	svc := NewWorkoutService(WorkoutServiceParams{
		Repo:    store.Workouts(),
		Clients: store.Clients(),
		Cache:   newTestCache(cache, metrics),
		Metrics: metrics,
	})
	svc.now = fixedClock()
	return workoutFixture{store: store, cache: cache, metrics: metrics, svc: svc}
}

func workoutTitles(workouts []models.Workout) []string {
	titles := make([]string, len(workouts))
	for i, w := range workouts {
		titles[i] = w.Title
	}
	return titles
}

func TestWorkoutServiceListSearchesExercises(t *testing.T) {
	f := newWorkoutFixture(t)

	res, err := f.svc.List(context.Background(), repository.DemoCoachID, models.WorkoutQuery{Search: "squat", SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Intro Assessment", "Leg Day", "Lower Body Strength"}, workoutTitles(res.Items))
	assert.Equal(t, uint64(1), f.metrics.Snapshot().ListQueries)
}

func TestWorkoutServiceListByClientAndStatus(t *testing.T) {
	f := newWorkoutFixture(t)

	res, err := f.svc.List(context.Background(), repository.DemoCoachID, models.WorkoutQuery{ClientID: clientRonit})
	require.NoError(t, err)
	assert.Equal(t, []string{"Upper Body Push", "Lower Body Strength"}, workoutTitles(res.Items))

	res, err = f.svc.List(context.Background(), repository.DemoCoachID, models.WorkoutQuery{ClientID: clientRonit, Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lower Body Strength"}, workoutTitles(res.Items))
}

func TestWorkoutServiceListPagination(t *testing.T) {
	f := newWorkoutFixture(t)

	res, err := f.svc.List(context.Background(), repository.DemoCoachID, models.WorkoutQuery{Page: 3, PageSize: 2, SortBy: "scheduled_for", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hypertrophy Pull", "Leg Day"}, workoutTitles(res.Items))
	assert.Equal(t, 3, res.Pagination().Page)
	assert.Equal(t, 3, res.PageCount)

	res, err = f.svc.List(context.Background(), repository.DemoCoachID, models.WorkoutQuery{Page: 9, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 6, res.Total)
}

func TestWorkoutServiceListFallbackToFixtures(t *testing.T) {
	fx := demoFixtures(t)
	metrics := NewMetricsService()
	svc := NewWorkoutService(WorkoutServiceParams{
		Repo:     repository.NewMemoryStore(repository.Fixtures{}).Workouts(),
		Fallback: repository.NewStaticWorkouts(fx.Workouts),
		Metrics:  metrics,
	})
	svc.loader.primary = &failingLister[models.Workout]{}

	res, err := svc.List(context.Background(), "coach-x", models.WorkoutQuery{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, SourceFixture, res.Source)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, uint64(1), metrics.Snapshot().FixtureFallbacks)
}

func TestWorkoutServiceCreate(t *testing.T) {
	f := newWorkoutFixture(t)
	scheduled := testNow.Add(48 * time.Hour)

	workout, err := f.svc.Create(context.Background(), repository.DemoCoachID, WorkoutRequest{
		ClientID:        clientNoa,
		Title:           " Long Run ",
		ScheduledFor:    scheduled,
		DurationMinutes: 90,
		Exercises: []ExerciseRequest{
			{Name: "Easy Run", Sets: 1, Reps: 1},
			{Name: "Strides", Sets: 6, Reps: 1},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, workout.ID)
	assert.Equal(t, "Long Run", workout.Title)
	assert.Equal(t, "Noa Bar", workout.ClientName)
	require.Len(t, workout.Exercises, 2)
	assert.Equal(t, 1, workout.Exercises[1].Position)
	assert.Equal(t, workout.ID, workout.Exercises[0].WorkoutID)
	assert.NotEmpty(t, workout.Exercises[0].ID)

	stored, err := f.svc.Get(context.Background(), repository.DemoCoachID, workout.ID)
	require.NoError(t, err)
	assert.Equal(t, scheduled, stored.ScheduledFor)
}

func TestWorkoutServiceCreateRejectsForeignClient(t *testing.T) {
	f := newWorkoutFixture(t)

	_, err := f.svc.Create(context.Background(), "another-coach", WorkoutRequest{
		ClientID:     clientNoa,
		Title:        "Sneaky",
		ScheduledFor: testNow,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Message, "client not found")
}

func TestWorkoutServiceCreateRequiresSchedule(t *testing.T) {
	f := newWorkoutFixture(t)

	_, err := f.svc.Create(context.Background(), repository.DemoCoachID, WorkoutRequest{ClientID: clientNoa, Title: "Undated"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	_, err = f.svc.Create(context.Background(), repository.DemoCoachID, WorkoutRequest{
		ClientID:     clientNoa,
		Title:        "Bad exercise",
		ScheduledFor: testNow,
		Exercises:    []ExerciseRequest{{Sets: 3}},
	})
	require.Error(t, err)
}

func TestWorkoutServiceUpdateReplacesExercises(t *testing.T) {
	f := newWorkoutFixture(t)

	workout, err := f.svc.Update(context.Background(), repository.DemoCoachID, workoutPush, WorkoutRequest{
		ClientID:     clientMaya,
		Title:        "Push Day",
		ScheduledFor: testNow.Add(24 * time.Hour),
		Exercises:    []ExerciseRequest{{Name: "Dips", Sets: 3, Reps: 12}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Maya Friedman", workout.ClientName)

	stored, err := f.svc.Get(context.Background(), repository.DemoCoachID, workoutPush)
	require.NoError(t, err)
	require.Len(t, stored.Exercises, 1)
	assert.Equal(t, "Dips", stored.Exercises[0].Name)
	assert.Equal(t, clientMaya, stored.ClientID)
}

func TestWorkoutServiceCompleteTouchesClient(t *testing.T) {
	f := newWorkoutFixture(t)
	key := DashboardCacheKey(repository.DemoCoachID)
	require.NoError(t, f.cache.Set(context.Background(), key, "stale", 0))

	workout, err := f.svc.Complete(context.Background(), repository.DemoCoachID, workoutPush)
	require.NoError(t, err)
	assert.True(t, workout.Completed)
	require.NotNil(t, workout.CompletedAt)
	assert.Equal(t, testNow, *workout.CompletedAt)
	assert.False(t, f.cache.has(key))

	client, err := f.store.Clients().FindByID(context.Background(), repository.DemoCoachID, clientRonit)
	require.NoError(t, err)
	require.NotNil(t, client.LastActive)
	assert.Equal(t, testNow, *client.LastActive)
}

func TestWorkoutServiceCompleteIsIdempotent(t *testing.T) {
	f := newWorkoutFixture(t)

	before, err := f.svc.Get(context.Background(), repository.DemoCoachID, workoutLowerBody)
	require.NoError(t, err)
	require.True(t, before.Completed)

	after, err := f.svc.Complete(context.Background(), repository.DemoCoachID, workoutLowerBody)
	require.NoError(t, err)
	assert.Equal(t, *before.CompletedAt, *after.CompletedAt)
	assert.Empty(t, f.cache.evicted)
}

func TestWorkoutServiceCompleteIgnoresTouchFailure(t *testing.T) {
	f := newWorkoutFixture(t)
	f.svc.clients = touchFailingClients{workoutClientRepository: f.store.Clients()}

	workout, err := f.svc.Complete(context.Background(), repository.DemoCoachID, workoutPush)
	require.NoError(t, err)
	assert.True(t, workout.Completed)
}

func TestWorkoutServiceDelete(t *testing.T) {
	f := newWorkoutFixture(t)

	require.NoError(t, f.svc.Delete(context.Background(), repository.DemoCoachID, workoutPush))
	_, err := f.svc.Get(context.Background(), repository.DemoCoachID, workoutPush)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	err = f.svc.Delete(context.Background(), "another-coach", workoutLowerBody)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}
