package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/fitcoach-api/internal/dto"
	"github.com/noah-isme/fitcoach-api/internal/models"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
)

const dashboardKeyPrefix = "dash:coach:"

// DashboardCacheKey is the cache key holding a coach's dashboard summary.
func DashboardCacheKey(coachID string) string {
	return dashboardKeyPrefix + coachID
}

type settingsReader interface {
	Get(ctx context.Context, userID string) (*models.CoachSettings, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL      time.Duration
	UpcomingLimit int
	RecentLimit   int
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Clients         clientLister
	Workouts        workoutLister
	ClientFallback  clientLister
	WorkoutFallback workoutLister
	Settings        settingsReader
	Cache           *CacheService
	Metrics         *MetricsService
	Logger          *zap.Logger
	Config          DashboardServiceConfig
}

// DashboardService composes the coach dashboard.
type DashboardService struct {
	clients  collectionLoader[models.Client]
	workouts collectionLoader[models.Workout]
	settings settingsReader
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = 5
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clients := collectionLoader[models.Client]{entity: "clients", primary: params.Clients, metrics: params.Metrics, logger: logger}
	if params.ClientFallback != nil {
		clients.fallback = params.ClientFallback
	}
	workouts := collectionLoader[models.Workout]{entity: "workouts", primary: params.Workouts, metrics: params.Metrics, logger: logger}
	if params.WorkoutFallback != nil {
		workouts.fallback = params.WorkoutFallback
	}
	return &DashboardService{
		clients:  clients,
		workouts: workouts,
		settings: params.Settings,
		cache:    params.Cache,
		logger:   logger,
		now:      time.Now,
		cfg:      cfg,
	}
}

// Summary returns the coach dashboard and whether it came from cache.
func (s *DashboardService) Summary(ctx context.Context, coachID string) (*dto.CoachDashboardResponse, bool, error) {
	if coachID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "coach id is required")
	}
	key := DashboardCacheKey(coachID)
	if summary, hit := s.tryCache(ctx, key); hit {
		return summary, true, nil
	}

	summary, err := s.compose(ctx, coachID, s.now())
	if err != nil {
		return nil, false, err
	}
	// Fixture-backed summaries are never cached.
	if summary.Source == SourcePrimary {
		s.persistCache(ctx, key, summary)
	}
	return summary, false, nil
}

func (s *DashboardService) tryCache(ctx context.Context, key string) (*dto.CoachDashboardResponse, bool) {
	var cached dto.CoachDashboardResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil || !hit {
		return nil, false
	}
	return &cached, true
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *DashboardService) compose(ctx context.Context, coachID string, now time.Time) (*dto.CoachDashboardResponse, error) {
	clients, clientSource, err := s.clients.load(ctx, coachID)
	if err != nil {
		return nil, err
	}
	workouts, workoutSource, err := s.workouts.load(ctx, coachID)
	if err != nil {
		return nil, err
	}
	source := SourcePrimary
	if clientSource == SourceFixture || workoutSource == SourceFixture {
		source = SourceFixture
	}

	firstDay, loc := s.calendar(ctx, coachID)
	weekStart := startOfWeek(now.In(loc), firstDay)
	return &dto.CoachDashboardResponse{
		CoachID:        coachID,
		GeneratedAt:    now.UTC(),
		Source:         source,
		Clients:        countClients(clients),
		Week:           weekStats(workouts, weekStart),
		CompletionRate: completionRate(workouts, now),
		Upcoming:       upcoming(workouts, now, s.cfg.UpcomingLimit),
		RecentClients:  recentClients(clients, s.cfg.RecentLimit),
	}, nil
}

// calendar resolves the coach's first weekday and timezone. Week windows
// start at local midnight; unsaved or unreadable settings mean Sunday in UTC.
func (s *DashboardService) calendar(ctx context.Context, coachID string) (time.Weekday, *time.Location) {
	if s.settings == nil {
		return time.Sunday, time.UTC
	}
	settings, err := s.settings.Get(ctx, coachID)
	if err != nil {
		return time.Sunday, time.UTC
	}
	first := time.Sunday
	if strings.EqualFold(settings.WeekStartsOn, "monday") {
		first = time.Monday
	}
	loc := time.UTC
	if tz := strings.TrimSpace(settings.Timezone); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		} else {
			s.logger.Warn("ignoring unknown timezone", zap.String("coach_id", coachID), zap.String("timezone", tz))
		}
	}
	return first, loc
}

func countClients(clients []models.Client) dto.ClientCounts {
	counts := dto.ClientCounts{Total: len(clients)}
	for _, c := range clients {
		switch c.Status {
		case models.ClientStatusActive:
			counts.Active++
		case models.ClientStatusPending:
			counts.Pending++
		case models.ClientStatusInactive:
			counts.Inactive++
		}
	}
	return counts
}

func startOfWeek(now time.Time, first time.Weekday) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(day.Weekday()) - int(first) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

func weekStats(workouts []models.Workout, start time.Time) dto.WeekStats {
	end := start.AddDate(0, 0, 7)
	stats := dto.WeekStats{Start: start, End: end}
	for _, w := range workouts {
		if w.ScheduledFor.Before(start) || !w.ScheduledFor.Before(end) {
			continue
		}
		stats.Scheduled++
		if w.Completed {
			stats.Completed++
		} else {
			stats.Pending++
		}
	}
	return stats
}

// completionRate is the percentage of workouts due by now that were
// completed, rounded to one decimal.
func completionRate(workouts []models.Workout, now time.Time) float64 {
	due, done := 0, 0
	for _, w := range workouts {
		if w.ScheduledFor.After(now) && !w.Completed {
			continue
		}
		due++
		if w.Completed {
			done++
		}
	}
	if due == 0 {
		return 0
	}
	return math.Round(float64(done)/float64(due)*1000) / 10
}

func upcoming(workouts []models.Workout, now time.Time, limit int) []dto.UpcomingWorkout {
	pending := make([]models.Workout, 0, len(workouts))
	for _, w := range workouts {
		if !w.Completed && !w.ScheduledFor.Before(now) {
			pending = append(pending, w)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].ScheduledFor.Before(pending[j].ScheduledFor)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	out := make([]dto.UpcomingWorkout, len(pending))
	for i, w := range pending {
		out[i] = dto.UpcomingWorkout{
			ID:           w.ID,
			Title:        w.Title,
			ClientID:     w.ClientID,
			ClientName:   w.ClientName,
			ScheduledFor: w.ScheduledFor,
			Exercises:    len(w.Exercises),
		}
	}
	return out
}

func recentClients(clients []models.Client, limit int) []dto.RecentClient {
	ordered := make([]models.Client, len(clients))
	copy(ordered, clients)
	models.SortClients(ordered, "created_at", true)
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	out := make([]dto.RecentClient, len(ordered))
	for i, c := range ordered {
		out[i] = dto.RecentClient{ID: c.ID, Name: c.Name, Status: string(c.Status), CreatedAt: c.CreatedAt}
	}
	return out
}
