package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fitcoach-api/internal/models"
	"github.com/noah-isme/fitcoach-api/internal/repository"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
	"github.com/noah-isme/fitcoach-api/pkg/export"
)

func newExportFixture(t *testing.T) (*ExportService, *repository.MemoryStore) {
	t.Helper()
	store := demoStore(t)
	clients := NewClientService(ClientServiceParams{Repo: store.Clients()})
	workouts := NewWorkoutService(WorkoutServiceParams{Repo: store.Workouts(), Clients: store.Clients()})
	svc := NewExportService(clients, workouts, store.Settings(), nil)
	svc.now = fixedClock()
	return svc, store
}

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportClientsCSVAppliesFilters(t *testing.T) {
	svc, _ := newExportFixture(t)

	file, err := svc.Clients(context.Background(), repository.DemoCoachID, export.FormatCSV, models.ClientQuery{
		Status:   "active",
		SortBy:   "name",
		PageSize: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "clients_20240515_100000.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Equal(t, 3, file.Rows)
	assert.Equal(t, SourcePrimary, file.Source)

	records := readCSV(t, file.Body)
	require.Len(t, records, 4)
	assert.Equal(t, "Name", records[0][0])
	assert.Equal(t, []string{"Maya Friedman", "Noa Bar", "Ronit Cohen"}, []string{records[1][0], records[2][0], records[3][0]})
	assert.Equal(t, "2024-01-16", records[3][5])
}

func TestExportWorkoutsCSVMetric(t *testing.T) {
	svc, _ := newExportFixture(t)

	file, err := svc.Workouts(context.Background(), repository.DemoCoachID, export.FormatCSV, models.WorkoutQuery{ClientID: clientNoa})
	require.NoError(t, err)
	records := readCSV(t, file.Body)
	require.Len(t, records, 2)
	assert.Equal(t, "Tempo Run", records[1][1])
	assert.Equal(t, "completed", records[1][3])
	assert.Equal(t, "Warm-up Jog 1x1; Tempo Intervals 4x1", records[1][5])
}

func TestExportWorkoutsUsesImperialPreference(t *testing.T) {
	svc, store := newExportFixture(t)
	prefs := models.DefaultCoachSettings(repository.DemoCoachID)
	prefs.Units = models.UnitsImperial
	require.NoError(t, store.Settings().Upsert(context.Background(), &prefs))

	file, err := svc.Workouts(context.Background(), repository.DemoCoachID, export.FormatCSV, models.WorkoutQuery{
		ClientID: clientRonit,
		SortBy:   "scheduled_for",
	})
	require.NoError(t, err)
	records := readCSV(t, file.Body)
	require.Len(t, records, 3)
	assert.Equal(t, "Lower Body Strength", records[1][1])
	assert.Contains(t, records[1][5], "Back Squat 5x5 @198.4lb")
	assert.Contains(t, records[2][5], "Bench Press 5x5 @121.3lb")
}

func TestExportWorkoutsPDF(t *testing.T) {
	svc, _ := newExportFixture(t)

	file, err := svc.Workouts(context.Background(), repository.DemoCoachID, export.FormatPDF, models.WorkoutQuery{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "workouts_20240515_100000.pdf", file.Filename)
	assert.Equal(t, 6, file.Rows)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc, _ := newExportFixture(t)

	_, err := svc.Clients(context.Background(), repository.DemoCoachID, export.Format("xlsx"), models.ClientQuery{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestExportPropagatesSortValidation(t *testing.T) {
	svc, _ := newExportFixture(t)

	_, err := svc.Workouts(context.Background(), repository.DemoCoachID, export.FormatCSV, models.WorkoutQuery{SortBy: "unknown"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestFormatWeight(t *testing.T) {
	assert.Equal(t, "82.5kg", formatWeight(82.5, false))
	assert.Equal(t, "44.1lb", formatWeight(20, true))
}
