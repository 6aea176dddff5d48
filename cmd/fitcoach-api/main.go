package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/fitcoach-api/api/swagger"
	"github.com/noah-isme/fitcoach-api/internal/handler"
	"github.com/noah-isme/fitcoach-api/internal/middleware"
	"github.com/noah-isme/fitcoach-api/internal/repository"
	"github.com/noah-isme/fitcoach-api/internal/service"
	"github.com/noah-isme/fitcoach-api/pkg/cache"
	"github.com/noah-isme/fitcoach-api/pkg/config"
	"github.com/noah-isme/fitcoach-api/pkg/database"
	"github.com/noah-isme/fitcoach-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/fitcoach-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/fitcoach-api/pkg/middleware/requestid"
)

// @title FitCoach API
// @version 1.0.0
// @description Coach-facing API for clients, workouts, dashboard, settings and exports.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const (
	dbConnectTimeout = 10 * time.Second
	shutdownTimeout  = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "fitcoach-api")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	demoHash, err := service.HashPassword(cfg.Data.DemoPassword)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	fixtures := repository.DemoFixtures(time.Now(), demoHash)

	stores, db, err := openStores(ctx, cfg, fixtures, logr)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Dashboard.CacheTTL, logr, true)
	}

	var clientFallback *repository.StaticClients
	var workoutFallback *repository.StaticWorkouts
	if cfg.Data.FallbackToMock {
		clientFallback = repository.NewStaticClients(fixtures.Clients)
		workoutFallback = repository.NewStaticWorkouts(fixtures.Workouts)
	}

	validate := validator.New()
	lists := service.ListConfig{DefaultPageSize: cfg.Lists.DefaultPageSize, MaxPageSize: cfg.Lists.MaxPageSize}

	clientParams := service.ClientServiceParams{Repo: stores.Clients, Settings: stores.Settings, Cache: cacheSvc, Metrics: metrics, Validator: validate, Logger: logr, Lists: lists}
	workoutParams := service.WorkoutServiceParams{Repo: stores.Workouts, Clients: stores.Clients, Settings: stores.Settings, Cache: cacheSvc, Metrics: metrics, Validator: validate, Logger: logr, Lists: lists}
	dashboardParams := service.DashboardServiceParams{
		Clients:  stores.Clients,
		Workouts: stores.Workouts,
		Settings: stores.Settings,
		Cache:    cacheSvc,
		Metrics:  metrics,
		Logger:   logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:      cfg.Dashboard.CacheTTL,
			UpcomingLimit: cfg.Dashboard.UpcomingLimit,
			RecentLimit:   cfg.Dashboard.RecentLimit,
		},
	}
	if clientFallback != nil {
		clientParams.Fallback = clientFallback
		workoutParams.Fallback = workoutFallback
		dashboardParams.ClientFallback = clientFallback
		dashboardParams.WorkoutFallback = workoutFallback
	}

	authSvc := service.NewAuthService(stores.Users, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	clientSvc := service.NewClientService(clientParams)
	workoutSvc := service.NewWorkoutService(workoutParams)
	dashboardSvc := service.NewDashboardService(dashboardParams)
	settingsSvc := service.NewSettingsService(stores.Users, stores.Settings, cacheSvc, validate, logr)
	exportSvc := service.NewExportService(clientSvc, workoutSvc, stores.Settings, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	loginLimit, err := middleware.RateLimit(middleware.RateLimitOptions{
		Rate:   cfg.RateLimit.Login,
		Prefix: "ratelimit:login",
		Redis:  redisClient,
		Logger: logr,
	})
	if err != nil {
		return fmt.Errorf("login rate limit: %w", err)
	}

	handler.Router{
		Auth:      handler.NewAuthHandler(authSvc),
		Clients:   handler.NewClientHandler(clientSvc),
		Workouts:  handler.NewWorkoutHandler(workoutSvc),
		Dashboard: handler.NewDashboardHandler(dashboardSvc),
		Settings:  handler.NewSettingsHandler(settingsSvc),
		Exports:   handler.NewExportHandler(exportSvc),
		Metrics:   handler.NewMetricsHandler(metrics, readinessChecks(db, redisClient)),
	}.Register(r, handler.RouteOptions{
		Prefix:     cfg.APIPrefix,
		Auth:       middleware.JWT(authSvc),
		LoginLimit: loginLimit,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "data_source", cfg.Data.Source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStores connects the configured data source. When Postgres is
// unreachable and fixture fallback is enabled the in-memory store is used.
func openStores(ctx context.Context, cfg *config.Config, fixtures repository.Fixtures, logr *zap.Logger) (repository.Stores, *sqlx.DB, error) {
	if cfg.Data.Source == config.DataSourceMock {
		logr.Info("serving in-memory fixture data")
		return repository.NewMemoryStore(fixtures).Stores(), nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.Database, dbConnectTimeout)
	if err != nil {
		if !cfg.Data.FallbackToMock {
			return repository.Stores{}, nil, fmt.Errorf("connect postgres: %w", err)
		}
		logr.Warn("postgres unavailable, serving in-memory fixture data", zap.Error(err))
		return repository.NewMemoryStore(fixtures).Stores(), nil, nil
	}
	return repository.NewPostgresStores(db), db, nil
}

func readinessChecks(db *sqlx.DB, rdb *redis.Client) map[string]handler.ReadinessCheck {
	checks := make(map[string]handler.ReadinessCheck)
	if db != nil {
		checks["postgres"] = func(ctx context.Context) error { return db.PingContext(ctx) }
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}
