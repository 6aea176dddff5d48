package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fitcoach-api/internal/middleware"
	"github.com/noah-isme/fitcoach-api/internal/models"
)

// Router groups the HTTP handlers served by the API.
type Router struct {
	Auth      *AuthHandler
	Clients   *ClientHandler
	Workouts  *WorkoutHandler
	Dashboard *DashboardHandler
	Settings  *SettingsHandler
	Exports   *ExportHandler
	Metrics   *MetricsHandler
}

// RouteOptions carries the middleware that guards the API.
type RouteOptions struct {
	Prefix string
	// Auth authenticates the caller, normally middleware.JWT.
	Auth gin.HandlerFunc
	// LoginLimit throttles the login endpoint; nil disables it.
	LoginLimit gin.HandlerFunc
}

// Register mounts probes at the root and the API under opts.Prefix.
func (rt Router) Register(r *gin.Engine, opts RouteOptions) {
	r.GET("/health", rt.Metrics.Health)
	r.GET("/ready", rt.Metrics.Ready)
	r.GET("/metrics", rt.Metrics.Prometheus)

	api := r.Group(opts.Prefix)
	login := []gin.HandlerFunc{rt.Auth.Login}
	if opts.LoginLimit != nil {
		login = append([]gin.HandlerFunc{opts.LoginLimit}, login...)
	}
	api.POST("/auth/login", login...)

	api.GET("/metrics/summary", opts.Auth, middleware.RequireRoles(models.RoleAdmin), rt.Metrics.Summary)

	secured := api.Group("", opts.Auth, middleware.RequireRoles(models.RoleCoach, models.RoleAdmin))
	secured.GET("/auth/me", rt.Auth.Me)

	clients := secured.Group("/clients")
	clients.GET("", rt.Clients.List)
	clients.POST("", rt.Clients.Create)
	clients.GET("/:id", rt.Clients.Get)
	clients.PUT("/:id", rt.Clients.Update)
	clients.DELETE("/:id", rt.Clients.Delete)

	workouts := secured.Group("/workouts")
	workouts.GET("", rt.Workouts.List)
	workouts.POST("", rt.Workouts.Create)
	workouts.GET("/:id", rt.Workouts.Get)
	workouts.PUT("/:id", rt.Workouts.Update)
	workouts.DELETE("/:id", rt.Workouts.Delete)
	workouts.POST("/:id/complete", rt.Workouts.Complete)

	secured.GET("/dashboard", rt.Dashboard.Summary)

	settings := secured.Group("/settings")
	settings.GET("", rt.Settings.Get)
	settings.PUT("/profile", rt.Settings.UpdateProfile)
	settings.PUT("/preferences", rt.Settings.UpdatePreferences)
	settings.POST("/password", rt.Settings.ChangePassword)

	exports := secured.Group("/exports")
	exports.GET("/clients", rt.Exports.Clients)
	exports.GET("/workouts", rt.Exports.Workouts)
}
