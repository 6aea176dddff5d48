package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/fitcoach-api/internal/models"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
	"github.com/noah-isme/fitcoach-api/pkg/export"
)

const kgToLb = 2.20462

type clientExportSource interface {
	All(ctx context.Context, coachID string, q models.ClientQuery) ([]models.Client, string, error)
}

type workoutExportSource interface {
	All(ctx context.Context, coachID string, q models.WorkoutQuery) ([]models.Workout, string, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
	Source      string
}

// ExportService renders filtered client rosters and workout logs.
type ExportService struct {
	clients   clientExportSource
	workouts  workoutExportSource
	settings  settingsReader
	renderers map[export.Format]export.Renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with CSV and PDF renderers.
func NewExportService(clients clientExportSource, workouts workoutExportSource, settings settingsReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		clients:  clients,
		workouts: workouts,
		settings: settings,
		renderers: map[export.Format]export.Renderer{
			export.FormatCSV: export.NewCSVExporter(),
			export.FormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// Clients renders every client matching q.
func (s *ExportService) Clients(ctx context.Context, coachID string, format export.Format, q models.ClientQuery) (*ExportFile, error) {
	clients, source, err := s.clients.All(ctx, coachID, q)
	if err != nil {
		return nil, err
	}
	dataset := export.Dataset{
		Title: "Client roster",
		Columns: []export.Column{
			{Key: "name", Label: "Name", Weight: 1.4},
			{Key: "email", Label: "Email", Weight: 1.8},
			{Key: "phone", Label: "Phone"},
			{Key: "program", Label: "Program"},
			{Key: "status", Label: "Status", Weight: 0.7},
			{Key: "start_date", Label: "Start date", Weight: 0.8},
			{Key: "last_active", Label: "Last active", Weight: 0.8},
		},
		Rows: make([]map[string]string, 0, len(clients)),
	}
	for _, c := range clients {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"name":        c.Name,
			"email":       c.Email,
			"phone":       c.Phone,
			"program":     c.ProgramType,
			"status":      string(c.Status),
			"start_date":  formatDate(&c.StartDate),
			"last_active": formatDate(c.LastActive),
		})
	}
	return s.render(dataset, format, "clients", source)
}

// Workouts renders every workout matching q. Weights follow the coach's
// unit preference.
func (s *ExportService) Workouts(ctx context.Context, coachID string, format export.Format, q models.WorkoutQuery) (*ExportFile, error) {
	workouts, source, err := s.workouts.All(ctx, coachID, q)
	if err != nil {
		return nil, err
	}
	imperial := s.units(ctx, coachID) == models.UnitsImperial
	dataset := export.Dataset{
		Title: "Workout log",
		Columns: []export.Column{
			{Key: "scheduled_for", Label: "Scheduled", Weight: 1.1},
			{Key: "title", Label: "Title", Weight: 1.3},
			{Key: "client", Label: "Client", Weight: 1.2},
			{Key: "status", Label: "Status", Weight: 0.8},
			{Key: "duration", Label: "Minutes", Weight: 0.6},
			{Key: "exercises", Label: "Exercises", Weight: 3},
		},
		Rows: make([]map[string]string, 0, len(workouts)),
	}
	for _, w := range workouts {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"scheduled_for": w.ScheduledFor.UTC().Format("2006-01-02 15:04"),
			"title":         w.Title,
			"client":        w.ClientName,
			"status":        string(w.Status()),
			"duration":      strconv.Itoa(w.DurationMinutes),
			"exercises":     describeExercises(w.Exercises, imperial),
		})
	}
	return s.render(dataset, format, "workouts", source)
}

func (s *ExportService) render(dataset export.Dataset, format export.Format, name, source string) (*ExportFile, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	body, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Debug("export rendered", zap.String("dataset", name), zap.String("format", string(format)), zap.Int("rows", len(dataset.Rows)))
	return &ExportFile{
		Filename:    fmt.Sprintf("%s_%s.%s", name, s.now().UTC().Format("20060102_150405"), format),
		ContentType: format.ContentType(),
		Body:        body,
		Rows:        len(dataset.Rows),
		Source:      source,
	}, nil
}

func (s *ExportService) units(ctx context.Context, coachID string) string {
	if s.settings == nil {
		return models.UnitsMetric
	}
	prefs, err := s.settings.Get(ctx, coachID)
	if err != nil {
		return models.UnitsMetric
	}
	return prefs.Units
}

func describeExercises(exercises []models.Exercise, imperial bool) string {
	parts := make([]string, 0, len(exercises))
	for _, e := range exercises {
		part := fmt.Sprintf("%s %dx%d", e.Name, e.Sets, e.Reps)
		if e.WeightKg > 0 {
			part += " @" + formatWeight(e.WeightKg, imperial)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

func formatWeight(kg float64, imperial bool) string {
	if imperial {
		return strconv.FormatFloat(math.Round(kg*kgToLb*10)/10, 'f', -1, 64) + "lb"
	}
	return strconv.FormatFloat(kg, 'f', -1, 64) + "kg"
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
