package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/fitcoach-api/internal/models"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
	"github.com/noah-isme/fitcoach-api/pkg/listquery"
)

// Data source labels reported with list results.
const (
	SourcePrimary = "primary"
	SourceFixture = "fixture"
)

// ListResult is one evaluated list page plus the source that served it.
type ListResult[T any] struct {
	listquery.Result[T]
	Source string `json:"source"`
}

// Pagination converts the engine's 0-based cursor into 1-based response
// metadata.
func (r ListResult[T]) Pagination() *models.Pagination {
	return &models.Pagination{
		Page:       r.Page + 1,
		PageSize:   r.PageSize,
		TotalCount: r.Total,
		TotalPages: r.PageCount,
	}
}

// ListConfig bounds page sizes for list endpoints.
type ListConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

func (c ListConfig) withDefaults() ListConfig {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = listquery.DefaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = 100
	}
	if c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}
	return c
}

// query builds an engine query from wire parameters. page is 1-based.
func (c ListConfig) query(search, status, owner string, page, size int, sortBy, order string, sortable []string) (listquery.Query, error) {
	if size <= 0 {
		size = c.DefaultPageSize
	}
	if size > c.MaxPageSize {
		size = c.MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	sortBy = strings.TrimSpace(sortBy)
	if sortBy != "" && !models.ValidSortField(sortBy, sortable) {
		return listquery.Query{}, appErrors.Clone(appErrors.ErrValidation, "unsupported sort field "+sortBy)
	}
	order = strings.ToLower(strings.TrimSpace(order))
	if order != "" && order != "asc" && order != "desc" {
		return listquery.Query{}, appErrors.Clone(appErrors.ErrValidation, "order must be asc or desc")
	}

	q := listquery.NewQuery(size).
		WithSearch(search).
		WithStatus(strings.ToLower(status)).
		WithOwner(owner).
		WithSort(sortBy, order).
		WithPage(page - 1)
	return q, nil
}

// preferredPageSize resolves the page size of a list request. An explicit
// size wins, then the coach's saved default_page_size. Zero leaves the
// configured default to ListConfig.query.
func preferredPageSize(ctx context.Context, settings settingsReader, coachID string, requested int, logger *zap.Logger) int {
	if requested > 0 || settings == nil {
		return requested
	}
	prefs, err := settings.Get(ctx, coachID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Warn("failed to load list preferences", zap.String("coach_id", coachID), zap.Error(err))
		}
		return requested
	}
	return prefs.DefaultPageSize
}

type collectionFetcher[T any] interface {
	ListByCoach(ctx context.Context, coachID string) ([]T, error)
}

// collectionLoader fetches a coach's full collection and falls back to the
// fixture collection when the primary source fails.
type collectionLoader[T any] struct {
	entity   string
	primary  collectionFetcher[T]
	fallback collectionFetcher[T]
	metrics  *MetricsService
	logger   *zap.Logger
}

func (l collectionLoader[T]) load(ctx context.Context, coachID string) ([]T, string, error) {
	records, err := l.primary.ListByCoach(ctx, coachID)
	if err == nil {
		return records, SourcePrimary, nil
	}
	if l.fallback == nil || ctx.Err() != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to load "+l.entity)
	}

	l.logger.Warn("primary source failed, serving fixtures", zap.String("entity", l.entity), zap.String("coach_id", coachID), zap.Error(err))
	l.metrics.RecordFallback(l.entity)
	records, fbErr := l.fallback.ListByCoach(ctx, coachID)
	if fbErr != nil {
		return nil, "", appErrors.Wrap(fbErr, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to load "+l.entity)
	}
	return records, SourceFixture, nil
}

// evaluate loads the collection and runs the list pipeline over it.
func evaluate[T listquery.Record](ctx context.Context, l collectionLoader[T], coachID string, q listquery.Query, sorter listquery.Sorter[T]) (*ListResult[T], error) {
	start := time.Now()
	records, source, err := l.load(ctx, coachID)
	if err != nil {
		return nil, err
	}
	res := listquery.Apply(records, q, sorter)
	l.metrics.ObserveListQuery(l.entity, source, res.Total, time.Since(start))
	return &ListResult[T]{Result: res, Source: source}, nil
}

// filterAll loads the collection and returns every match in sorted order.
func filterAll[T listquery.Record](ctx context.Context, l collectionLoader[T], coachID string, q listquery.Query, sorter listquery.Sorter[T]) ([]T, string, error) {
	records, source, err := l.load(ctx, coachID)
	if err != nil {
		return nil, "", err
	}
	return listquery.All(records, q, sorter), source, nil
}
