package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nippo-hub/nippo-api/internal/dto"
	"github.com/nippo-hub/nippo-api/internal/service"
	appErrors "github.com/nippo-hub/nippo-api/pkg/errors"
	"github.com/nippo-hub/nippo-api/pkg/response"
)

// EventHandler exposes schedule-event mutations within a session.
type EventHandler struct {
	sessions *service.SessionService
}

// NewEventHandler constructs handler.
func NewEventHandler(sessions *service.SessionService) *EventHandler {
	return &EventHandler{sessions: sessions}
}

// Add godoc
// @Summary Add a manual event to the schedule
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.CreateEventRequest true "Event"
// @Success 201 {object} response.Envelope
// @Router /sessions/{id}/events [post]
func (h *EventHandler) Add(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	ev, err := h.sessions.AddEvent(c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ev)
}

// Edit godoc
// @Summary Patch an event's title or time range
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param eventId path string true "Event ID"
// @Param payload body dto.UpdateEventRequest true "Patch"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/events/{eventId} [patch]
func (h *EventHandler) Edit(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	ev, err := h.sessions.EditEvent(c.Param("id"), c.Param("eventId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ev)
}

// Remove godoc
// @Summary Remove an event regardless of source
// @Tags Events
// @Param id path string true "Session ID"
// @Param eventId path string true "Event ID"
// @Success 204
// @Router /sessions/{id}/events/{eventId} [delete]
func (h *EventHandler) Remove(c *gin.Context) {
	if err := h.sessions.RemoveEvent(c.Param("id"), c.Param("eventId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
