package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/flmanager/flmanager/internal/domain/dto"
	"github.com/flmanager/flmanager/internal/domain/model"
	"github.com/flmanager/flmanager/internal/middleware/auth"
	"github.com/flmanager/flmanager/internal/usecase"
)

// SettingsHandler handles settings and PIN unlock HTTP requests
type SettingsHandler struct {
	logger          *zap.Logger
	settingsService *usecase.SettingsService
	tokenIssuer     *auth.TokenIssuer
}

// NewSettingsHandler creates a new settings handler instance
func NewSettingsHandler(
	logger *zap.Logger,
	settingsService *usecase.SettingsService,
	tokenIssuer *auth.TokenIssuer,
) *SettingsHandler {
	return &SettingsHandler{
		logger:          logger,
		settingsService: settingsService,
		tokenIssuer:     tokenIssuer,
	}
}

// Get handles GET /api/v1/settings
func (h *SettingsHandler) Get(c echo.Context) error {
	settings, err := h.settingsService.Get(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// Update handles PUT /api/v1/settings
func (h *SettingsHandler) Update(c echo.Context) error {
	var settings model.AppSettings
	if err := c.Bind(&settings); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "INVALID_ARGUMENT"})
	}

	if err := h.settingsService.Update(c.Request().Context(), &settings); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// Unlock handles POST /api/v1/auth/unlock: it exchanges the PIN for a
// short-lived token that opens the destructive routes.
func (h *SettingsHandler) Unlock(c echo.Context) error {
	var req dto.UnlockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "INVALID_ARGUMENT"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Code: "INVALID_ARGUMENT"})
	}

	if err := h.settingsService.VerifyPIN(c.Request().Context(), req.PIN); err != nil {
		return respondError(c, h.logger, err)
	}

	token, err := h.tokenIssuer.Issue()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
