package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/flmanager/flmanager/internal/domain/dto"
	"github.com/flmanager/flmanager/internal/usecase"
)

// GiftCodeHandler handles gift code HTTP requests
type GiftCodeHandler struct {
	logger          *zap.Logger
	giftCodeService *usecase.GiftCodeService
}

// NewGiftCodeHandler creates a new gift code handler instance
func NewGiftCodeHandler(logger *zap.Logger, giftCodeService *usecase.GiftCodeService) *GiftCodeHandler {
	return &GiftCodeHandler{logger: logger, giftCodeService: giftCodeService}
}

// List handles GET /api/v1/gift-codes
func (h *GiftCodeHandler) List(c echo.Context) error {
	codes, err := h.giftCodeService.List(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, codes)
}

// Create handles POST /api/v1/gift-codes
func (h *GiftCodeHandler) Create(c echo.Context) error {
	var req dto.CreateGiftCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "INVALID_ARGUMENT"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Code: "INVALID_ARGUMENT"})
	}

	code, err := h.giftCodeService.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, code)
}

// Get handles GET /api/v1/gift-codes/:id
func (h *GiftCodeHandler) Get(c echo.Context) error {
	code, err := h.giftCodeService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, code)
}

// Delete handles DELETE /api/v1/gift-codes/:id
func (h *GiftCodeHandler) Delete(c echo.Context) error {
	if err := h.giftCodeService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
