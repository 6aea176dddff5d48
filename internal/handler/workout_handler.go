package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fitcoach-api/internal/middleware"
	"github.com/noah-isme/fitcoach-api/internal/service"
	"github.com/noah-isme/fitcoach-api/pkg/response"
)

// WorkoutHandler exposes workout endpoints.
type WorkoutHandler struct {
	workouts *service.WorkoutService
}

// NewWorkoutHandler constructs WorkoutHandler.
func NewWorkoutHandler(workouts *service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workouts: workouts}
}

// List godoc
// @Summary List workouts
// @Tags Workouts
// @Produce json
// @Param search query string false "Search title, description, client or exercise names"
// @Param status query string false "completed, pending or all"
// @Param clientId query string false "Only workouts for this client"
// @Param sort query string false "scheduled_for, title, client_name or created_at"
// @Param order query string false "asc or desc"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /workouts [get]
func (h *WorkoutHandler) List(c *gin.Context) {
	coach, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	q, err := workoutQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.workouts.List(c.Request.Context(), coach, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetDataSource(c, res.Source)
	response.JSON(c, http.StatusOK, res.Items, res.Pagination(), middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get workout with exercises
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /workouts/{id} [get]
func (h *WorkoutHandler) Get(c *gin.Context) {
	coach, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	workout, err := h.workouts.Get(c.Request.Context(), coach, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workout, nil)
}

// Create godoc
// @Summary Schedule workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Param payload body service.WorkoutRequest true "Workout payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /workouts [post]
func (h *WorkoutHandler) Create(c *gin.Context) {
	coach, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	workout, err := h.workouts.Create(c.Request.Context(), coach, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, workout)
}

// Update godoc
// @Summary Replace workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Param id path string true "Workout ID"
// @Param payload body service.WorkoutRequest true "Workout payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /workouts/{id} [put]
func (h *WorkoutHandler) Update(c *gin.Context) {
	coach, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	workout, err := h.workouts.Update(c.Request.Context(), coach, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workout, nil)
}

// Delete godoc
// @Summary Delete workout
// @Tags Workouts
// @Param id path string true "Workout ID"
// @Success 204
// @Security BearerAuth
// @Router /workouts/{id} [delete]
func (h *WorkoutHandler) Delete(c *gin.Context) {
	coach, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.workouts.Delete(c.Request.Context(), coach, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Complete godoc
// @Summary Mark workout completed
// @Description Completing an already completed workout returns it unchanged.
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /workouts/{id}/complete [post]
func (h *WorkoutHandler) Complete(c *gin.Context) {
	coach, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	workout, err := h.workouts.Complete(c.Request.Context(), coach, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workout, nil)
}
