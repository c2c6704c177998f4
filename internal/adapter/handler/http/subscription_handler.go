package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/flmanager/flmanager/internal/domain/dto"
	"github.com/flmanager/flmanager/internal/usecase"
)

// SubscriptionHandler handles subscription-related HTTP requests
type SubscriptionHandler struct {
	logger              *zap.Logger
	subscriptionService *usecase.SubscriptionService
	settingsService     *usecase.SettingsService
}

// NewSubscriptionHandler creates a new subscription handler instance
func NewSubscriptionHandler(
	logger *zap.Logger,
	subscriptionService *usecase.SubscriptionService,
	settingsService *usecase.SettingsService,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		logger:              logger,
		subscriptionService: subscriptionService,
		settingsService:     settingsService,
	}
}

// Save handles POST /api/v1/subscriptions
func (h *SubscriptionHandler) Save(c echo.Context) error {
	var req dto.SaveSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "INVALID_ARGUMENT"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Code: "INVALID_ARGUMENT"})
	}

	ctx := c.Request().Context()
	settings, err := h.settingsService.Get(ctx)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	created := req.ID == ""
	sub, err := h.subscriptionService.Save(ctx, req, settings)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if created {
		return c.JSON(http.StatusCreated, sub)
	}
	return c.JSON(http.StatusOK, sub)
}

// Renew handles POST /api/v1/subscriptions/:id/renew
func (h *SubscriptionHandler) Renew(c echo.Context) error {
	ctx := c.Request().Context()
	settings, err := h.settingsService.Get(ctx)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	sub, err := h.subscriptionService.Renew(ctx, c.Param("id"), settings)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, sub)
}

// Delete handles DELETE /api/v1/subscriptions/:id
func (h *SubscriptionHandler) Delete(c echo.Context) error {
	if err := h.subscriptionService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
