package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/flmanager/flmanager/internal/domain/dto"
	"github.com/flmanager/flmanager/internal/usecase"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	logger           *zap.Logger
	customerService  *usecase.CustomerService
	timelineService  *usecase.TimelineService
	paymentService   *usecase.PaymentService
	whatsappService  *usecase.WhatsappService
	subscriptionSvc  *usecase.SubscriptionService
}

// NewCustomerHandler creates a new customer handler instance
func NewCustomerHandler(
	logger *zap.Logger,
	customerService *usecase.CustomerService,
	timelineService *usecase.TimelineService,
	paymentService *usecase.PaymentService,
	whatsappService *usecase.WhatsappService,
	subscriptionSvc *usecase.SubscriptionService,
) *CustomerHandler {
	return &CustomerHandler{
		logger:          logger,
		customerService: customerService,
		timelineService: timelineService,
		paymentService:  paymentService,
		whatsappService: whatsappService,
		subscriptionSvc: subscriptionSvc,
	}
}

// List handles GET /api/v1/customers
func (h *CustomerHandler) List(c echo.Context) error {
	customers, err := h.customerService.List(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, customers)
}

// Create handles POST /api/v1/customers
func (h *CustomerHandler) Create(c echo.Context) error {
	var req dto.CreateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "INVALID_ARGUMENT"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Code: "INVALID_ARGUMENT"})
	}

	customer, err := h.customerService.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, customer)
}

// Get handles GET /api/v1/customers/:id
func (h *CustomerHandler) Get(c echo.Context) error {
	customer, err := h.customerService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// Update handles PATCH /api/v1/customers/:id
func (h *CustomerHandler) Update(c echo.Context) error {
	var req dto.UpdateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "INVALID_ARGUMENT"})
	}

	customer, err := h.customerService.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// Delete handles DELETE /api/v1/customers/:id
func (h *CustomerHandler) Delete(c echo.Context) error {
	if err := h.customerService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSubscriptions handles GET /api/v1/customers/:id/subscriptions
func (h *CustomerHandler) ListSubscriptions(c echo.Context) error {
	subs, err := h.subscriptionSvc.ListByCustomer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, subs)
}

// ListTimeline handles GET /api/v1/customers/:id/timeline
func (h *CustomerHandler) ListTimeline(c echo.Context) error {
	events, err := h.timelineService.ListByCustomer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, events)
}

// ListPayments handles GET /api/v1/customers/:id/payments
func (h *CustomerHandler) ListPayments(c echo.Context) error {
	payments, err := h.paymentService.ListByCustomer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, payments)
}

// ListWhatsappLogs handles GET /api/v1/customers/:id/whatsapp-logs
func (h *CustomerHandler) ListWhatsappLogs(c echo.Context) error {
	logs, err := h.whatsappService.ListLogs(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, logs)
}
