package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/flmanager/flmanager/internal/domain/dto"
	"github.com/flmanager/flmanager/internal/usecase"
)

// RewardsHandler handles referral reward HTTP requests
type RewardsHandler struct {
	logger          *zap.Logger
	rewardsService  *usecase.RewardsService
	settingsService *usecase.SettingsService
}

// NewRewardsHandler creates a new rewards handler instance
func NewRewardsHandler(
	logger *zap.Logger,
	rewardsService *usecase.RewardsService,
	settingsService *usecase.SettingsService,
) *RewardsHandler {
	return &RewardsHandler{
		logger:          logger,
		rewardsService:  rewardsService,
		settingsService: settingsService,
	}
}

// ListClaimable handles GET /api/v1/rewards/claimable
func (h *RewardsHandler) ListClaimable(c echo.Context) error {
	ctx := c.Request().Context()
	settings, err := h.settingsService.Get(ctx)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	rewards, err := h.rewardsService.ClaimableRewards(ctx, settings)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if rewards == nil {
		rewards = []dto.ClaimableReward{}
	}
	return c.JSON(http.StatusOK, rewards)
}

// ListMilestones handles GET /api/v1/customers/:id/milestones
func (h *RewardsHandler) ListMilestones(c echo.Context) error {
	ctx := c.Request().Context()
	settings, err := h.settingsService.Get(ctx)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	milestones, err := h.rewardsService.ClaimableMilestones(ctx, c.Param("id"), settings)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if milestones == nil {
		milestones = []dto.ClaimableMilestone{}
	}
	return c.JSON(http.StatusOK, milestones)
}

// ClaimYear handles POST /api/v1/rewards/claim-year
func (h *RewardsHandler) ClaimYear(c echo.Context) error {
	var req dto.ClaimRewardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "INVALID_ARGUMENT"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Code: "INVALID_ARGUMENT"})
	}
	if req.SubscriptionID == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "subscription_id is required", Code: "INVALID_ARGUMENT"})
	}

	ctx := c.Request().Context()
	settings, err := h.settingsService.Get(ctx)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	sub, err := h.rewardsService.ClaimRewardYear(ctx, req, settings)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, sub)
}

// ClaimGiftCode handles POST /api/v1/rewards/claim-code
func (h *RewardsHandler) ClaimGiftCode(c echo.Context) error {
	var req dto.ClaimRewardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "INVALID_ARGUMENT"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Code: "INVALID_ARGUMENT"})
	}

	code, err := h.rewardsService.ClaimRewardGiftCode(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, code)
}
