package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/flmanager/flmanager/internal/usecase"
)

// maxBackupSize caps import payloads at 64 MiB.
const maxBackupSize = 64 << 20

// BackupHandler handles JSON file backup HTTP requests
type BackupHandler struct {
	logger        *zap.Logger
	backupService *usecase.BackupService
}

// NewBackupHandler creates a new backup handler instance
func NewBackupHandler(logger *zap.Logger, backupService *usecase.BackupService) *BackupHandler {
	return &BackupHandler{logger: logger, backupService: backupService}
}

// Export handles GET /api/v1/backup/export
func (h *BackupHandler) Export(c echo.Context) error {
	doc, err := h.backupService.Export(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="flmanager_backup.json"`)
	return c.JSON(http.StatusOK, doc)
}

// Import handles POST /api/v1/backup/import
func (h *BackupHandler) Import(c echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBackupSize))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "failed to read request body", Code: "INVALID_ARGUMENT"})
	}

	if err := h.backupService.Import(c.Request().Context(), raw); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "imported"})
}
