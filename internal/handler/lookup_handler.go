package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nippo-hub/nippo-api/internal/dto"
	"github.com/nippo-hub/nippo-api/internal/service"
	"github.com/nippo-hub/nippo-api/pkg/dateutil"
	appErrors "github.com/nippo-hub/nippo-api/pkg/errors"
	"github.com/nippo-hub/nippo-api/pkg/response"
	"github.com/nippo-hub/nippo-api/pkg/timegrid"
)

// LookupHandler serves form-support lookups that need no session:
// the quarter-hour time options, relative date resolution, and the
// configured quick-insert templates.
type LookupHandler struct {
	sessions *service.SessionService
	resolver *dateutil.Resolver
}

// NewLookupHandler constructs handler.
func NewLookupHandler(sessions *service.SessionService, resolver *dateutil.Resolver) *LookupHandler {
	return &LookupHandler{sessions: sessions, resolver: resolver}
}

// TimeOptions godoc
// @Summary List selectable start/end times in quarter-hour steps
// @Tags Lookups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /time-options [get]
func (h *LookupHandler) TimeOptions(c *gin.Context) {
	response.JSON(c, http.StatusOK, timegrid.GenerateTimeOptions())
}

// ResolveDate godoc
// @Summary Resolve a date relative to a base date in the report timezone
// @Tags Lookups
// @Produce json
// @Param base query string false "Base date, defaults to today"
// @Param offset query int false "Day offset, defaults to 0"
// @Success 200 {object} response.Envelope
// @Router /dates [get]
func (h *LookupHandler) ResolveDate(c *gin.Context) {
	base := h.resolver.Today()
	if raw := c.Query("base"); raw != "" {
		parsed, err := h.resolver.ParseDate(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "base must be formatted as YYYY-MM-DD"))
			return
		}
		base = parsed
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "offset must be an integer"))
			return
		}
		offset = parsed
	}
	resolved := h.resolver.ResolveRelativeDate(base, offset)
	response.JSON(c, http.StatusOK, dto.DateResponse{
		Base:   dateutil.FormatDate(base),
		Offset: offset,
		Date:   dateutil.FormatDate(resolved),
	})
}

// Templates godoc
// @Summary List the configured quick-insert templates
// @Tags Lookups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /templates [get]
func (h *LookupHandler) Templates(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.sessions.Templates())
}
