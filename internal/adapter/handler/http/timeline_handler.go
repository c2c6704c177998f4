package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/flmanager/flmanager/internal/usecase"
)

// TimelineHandler handles audit log HTTP requests
type TimelineHandler struct {
	logger          *zap.Logger
	timelineService *usecase.TimelineService
	revertService   *usecase.RevertService
}

// NewTimelineHandler creates a new timeline handler instance
func NewTimelineHandler(
	logger *zap.Logger,
	timelineService *usecase.TimelineService,
	revertService *usecase.RevertService,
) *TimelineHandler {
	return &TimelineHandler{
		logger:          logger,
		timelineService: timelineService,
		revertService:   revertService,
	}
}

// List handles GET /api/v1/timeline
func (h *TimelineHandler) List(c echo.Context) error {
	limit := 0
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid limit parameter", Code: "INVALID_ARGUMENT"})
		}
		limit = parsed
	}

	events, err := h.timelineService.List(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, events)
}

// Get handles GET /api/v1/timeline/:id
func (h *TimelineHandler) Get(c echo.Context) error {
	event, err := h.timelineService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, event)
}

// Revert handles POST /api/v1/timeline/:id/revert
func (h *TimelineHandler) Revert(c echo.Context) error {
	if err := h.revertService.Revert(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
