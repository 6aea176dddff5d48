package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fitcoach-api/internal/service"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
	"github.com/noah-isme/fitcoach-api/pkg/export"
	"github.com/noah-isme/fitcoach-api/pkg/response"
)

const (
	headerExportRows   = "X-Export-Rows"
	headerExportSource = "X-Data-Source"
)

// ExportHandler streams CSV and PDF downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Clients godoc
// @Summary Export client roster
// @Description Applies the same filters as the list endpoint, without pagination.
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param search query string false "Search term"
// @Param status query string false "Status filter"
// @Param sort query string false "Sort field"
// @Param order query string false "asc or desc"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /exports/clients [get]
func (h *ExportHandler) Clients(c *gin.Context) {
	coach, format, err := exportParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	q, err := clientQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Clients(c.Request.Context(), coach, format, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeExport(c, file)
}

// Workouts godoc
// @Summary Export workout log
// @Description Applies the same filters as the list endpoint, without pagination.
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param search query string false "Search term"
// @Param status query string false "Status filter"
// @Param clientId query string false "Client filter"
// @Param sort query string false "Sort field"
// @Param order query string false "asc or desc"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /exports/workouts [get]
func (h *ExportHandler) Workouts(c *gin.Context) {
	coach, format, err := exportParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	q, err := workoutQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Workouts(c.Request.Context(), coach, format, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeExport(c, file)
}

func exportParams(c *gin.Context) (string, export.Format, error) {
	coach, err := coachID(c)
	if err != nil {
		return "", "", err
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	return coach, format, nil
}

func writeExport(c *gin.Context, file *service.ExportFile) {
	c.Header(headerExportRows, strconv.Itoa(file.Rows))
	c.Header(headerExportSource, file.Source)
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
