package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/flmanager/flmanager/internal/usecase"
)

// PaymentHandler handles payment ledger HTTP requests
type PaymentHandler struct {
	logger         *zap.Logger
	paymentService *usecase.PaymentService
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(logger *zap.Logger, paymentService *usecase.PaymentService) *PaymentHandler {
	return &PaymentHandler{logger: logger, paymentService: paymentService}
}

// List handles GET /api/v1/payments
func (h *PaymentHandler) List(c echo.Context) error {
	payments, err := h.paymentService.List(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, payments)
}

// TotalRevenue handles GET /api/v1/payments/revenue
func (h *PaymentHandler) TotalRevenue(c echo.Context) error {
	total, err := h.paymentService.TotalRevenue(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total})
}
