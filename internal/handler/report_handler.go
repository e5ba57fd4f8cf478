package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nippo-hub/nippo-api/internal/dto"
	"github.com/nippo-hub/nippo-api/internal/service"
	appErrors "github.com/nippo-hub/nippo-api/pkg/errors"
	"github.com/nippo-hub/nippo-api/pkg/response"
)

// ReportHandler exposes report-body operations within a session.
type ReportHandler struct {
	sessions *service.SessionService
}

// NewReportHandler constructs handler.
func NewReportHandler(sessions *service.SessionService) *ReportHandler {
	return &ReportHandler{sessions: sessions}
}

// Set godoc
// @Summary Replace the report body
// @Tags Report
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SetReportRequest true "Body text"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/report [put]
func (h *ReportHandler) Set(c *gin.Context) {
	var req dto.SetReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	state, err := h.sessions.SetReport(c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// QuickInsert godoc
// @Summary Append a template snippet to the report body
// @Tags Report
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.QuickInsertRequest true "Template text"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/report/quick-insert [post]
func (h *ReportHandler) QuickInsert(c *gin.Context) {
	var req dto.QuickInsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	state, err := h.sessions.QuickInsert(c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}
