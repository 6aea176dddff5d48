package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fitcoach-api/internal/middleware"
	"github.com/noah-isme/fitcoach-api/internal/service"
	"github.com/noah-isme/fitcoach-api/pkg/response"
)

// ClientHandler exposes client endpoints.
type ClientHandler struct {
	clients *service.ClientService
}

// NewClientHandler constructs ClientHandler.
func NewClientHandler(clients *service.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// List godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Param search query string false "Search name, email, phone or program"
// @Param status query string false "active, pending, inactive or all"
// @Param sort query string false "name, start_date, last_active, created_at or status"
// @Param order query string false "asc or desc"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	coach, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	q, err := clientQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.clients.List(c.Request.Context(), coach, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetDataSource(c, res.Source)
	response.JSON(c, http.StatusOK, res.Items, res.Pagination(), middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	coach, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	client, err := h.clients.Get(c.Request.Context(), coach, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client, nil)
}

// Create godoc
// @Summary Create client
// @Tags Clients
// @Accept json
// @Produce json
// @Param payload body service.CreateClientRequest true "Client payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	coach, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	client, err := h.clients.Create(c.Request.Context(), coach, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, client)
}

// Update godoc
// @Summary Update client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param payload body service.UpdateClientRequest true "Client payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	coach, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	client, err := h.clients.Update(c.Request.Context(), coach, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client, nil)
}

// Delete godoc
// @Summary Delete client and their workouts
// @Tags Clients
// @Param id path string true "Client ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	coach, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.clients.Delete(c.Request.Context(), coach, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
