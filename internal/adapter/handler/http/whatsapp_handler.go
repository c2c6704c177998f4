package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/flmanager/flmanager/internal/domain/dto"
	"github.com/flmanager/flmanager/internal/domain/model"
	"github.com/flmanager/flmanager/internal/usecase"
)

// WhatsappHandler handles message template and log HTTP requests
type WhatsappHandler struct {
	logger          *zap.Logger
	whatsappService *usecase.WhatsappService
	settingsService *usecase.SettingsService
}

// NewWhatsappHandler creates a new whatsapp handler instance
func NewWhatsappHandler(
	logger *zap.Logger,
	whatsappService *usecase.WhatsappService,
	settingsService *usecase.SettingsService,
) *WhatsappHandler {
	return &WhatsappHandler{
		logger:          logger,
		whatsappService: whatsappService,
		settingsService: settingsService,
	}
}

// renderRequest asks for a rendered message. TemplateName may be empty when
// subscription ids are given: the template is then picked from the first
// stream's status.
type renderRequest struct {
	CustomerID      string            `json:"customer_id" validate:"required"`
	TemplateName    string            `json:"template_name"`
	SubscriptionIDs []string          `json:"subscription_ids"`
	Extra           map[string]string `json:"extra"`
}

// Render handles POST /api/v1/whatsapp/render
func (h *WhatsappHandler) Render(c echo.Context) error {
	var req renderRequest
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

	message, templateName, err := h.whatsappService.Render(ctx, req.CustomerID, req.TemplateName, req.SubscriptionIDs, req.Extra, settings)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       message,
		"template_name": templateName,
	})
}

// LogMessage handles POST /api/v1/whatsapp/logs
func (h *WhatsappHandler) LogMessage(c echo.Context) error {
	var req dto.LogWhatsappRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "INVALID_ARGUMENT"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Code: "INVALID_ARGUMENT"})
	}

	entry, err := h.whatsappService.LogMessage(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// ListTemplates handles GET /api/v1/whatsapp/templates
func (h *WhatsappHandler) ListTemplates(c echo.Context) error {
	templates, err := h.whatsappService.ListTemplates(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, templates)
}

// SaveTemplate handles PUT /api/v1/whatsapp/templates
func (h *WhatsappHandler) SaveTemplate(c echo.Context) error {
	var template model.WhatsappTemplate
	if err := c.Bind(&template); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "INVALID_ARGUMENT"})
	}
	if template.Name == "" || template.Message == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "name and message are required", Code: "INVALID_ARGUMENT"})
	}

	if err := h.whatsappService.SaveTemplate(c.Request().Context(), &template); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, template)
}

// DeleteTemplate handles DELETE /api/v1/whatsapp/templates/:id
func (h *WhatsappHandler) DeleteTemplate(c echo.Context) error {
	if err := h.whatsappService.DeleteTemplate(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCountryTemplates handles GET /api/v1/country-templates
func (h *WhatsappHandler) ListCountryTemplates(c echo.Context) error {
	templates, err := h.whatsappService.ListCountryTemplates(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, templates)
}

// SaveCountryTemplate handles PUT /api/v1/country-templates
func (h *WhatsappHandler) SaveCountryTemplate(c echo.Context) error {
	var template model.CountryTemplate
	if err := c.Bind(&template); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "INVALID_ARGUMENT"})
	}
	if template.Name == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "name is required", Code: "INVALID_ARGUMENT"})
	}

	if err := h.whatsappService.SaveCountryTemplate(c.Request().Context(), &template); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, template)
}

// DeleteCountryTemplate handles DELETE /api/v1/country-templates/:id
func (h *WhatsappHandler) DeleteCountryTemplate(c echo.Context) error {
	if err := h.whatsappService.DeleteCountryTemplate(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
