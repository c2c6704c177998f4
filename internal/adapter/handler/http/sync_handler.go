package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/flmanager/flmanager/internal/usecase"
)

// SyncHandler handles cloud synchronization HTTP requests
type SyncHandler struct {
	logger      *zap.Logger
	syncService *usecase.SyncService
}

// NewSyncHandler creates a new sync handler instance
func NewSyncHandler(logger *zap.Logger, syncService *usecase.SyncService) *SyncHandler {
	return &SyncHandler{logger: logger, syncService: syncService}
}

// FullSync handles POST /api/v1/sync
func (h *SyncHandler) FullSync(c echo.Context) error {
	if err := h.syncService.FullSync(c.Request().Context()); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "synced"})
}

// RestoreFromCloud handles POST /api/v1/sync/restore
func (h *SyncHandler) RestoreFromCloud(c echo.Context) error {
	if err := h.syncService.RestoreFromCloud(c.Request().Context()); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "restored"})
}
