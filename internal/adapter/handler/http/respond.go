package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	pkgErrors "github.com/flmanager/flmanager/pkg/errors"
)

// errorBody is the uniform error payload
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// toAppError lifts a domain error into the shared coded error type; the
// domain sentinel stays reachable through the error chain.
func toAppError(err error) pkgErrors.Error {
	switch {
	case pkgErrors.Is(err, domainErrors.ErrCustomerNotFound),
		pkgErrors.Is(err, domainErrors.ErrSubscriptionNotFound),
		pkgErrors.Is(err, domainErrors.ErrGiftCodeNotFound),
		pkgErrors.Is(err, domainErrors.ErrEventNotFound),
		pkgErrors.Is(err, domainErrors.ErrSettingsNotFound):
		return pkgErrors.NewAppError(pkgErrors.ErrNotFound, "record not found", err)
	case pkgErrors.Is(err, domainErrors.ErrGiftCodeAlreadyUsed),
		pkgErrors.Is(err, domainErrors.ErrEventAlreadyReverted),
		pkgErrors.Is(err, domainErrors.ErrRewardAlreadyClaimed):
		return pkgErrors.NewAppError(pkgErrors.ErrConflict, "conflicting state", err)
	case pkgErrors.Is(err, domainErrors.ErrGiftCodeExpired),
		pkgErrors.Is(err, domainErrors.ErrEventNotRevertible),
		pkgErrors.Is(err, domainErrors.ErrRemoteNotConfigured):
		return pkgErrors.NewAppError(pkgErrors.ErrFailedPrecondition, "precondition failed", err)
	case pkgErrors.Is(err, domainErrors.ErrInvalidBackup):
		return pkgErrors.NewAppError(pkgErrors.ErrInvalidArgument, "invalid request", err)
	case pkgErrors.Is(err, domainErrors.ErrInvalidPIN):
		return pkgErrors.NewAppError(pkgErrors.ErrUnauthenticated, "authentication failed", err)
	case pkgErrors.Is(err, domainErrors.ErrRemoteUnreachable),
		pkgErrors.Is(err, domainErrors.ErrRemoteRejected):
		return pkgErrors.NewAppError(pkgErrors.ErrUnavailable, "remote store unavailable", err)
	default:
		return pkgErrors.NewAppError(pkgErrors.ErrInternal, "internal error", err)
	}
}

// respondError writes a domain error as JSON. A partial sync failure gets a
// richer payload so the operator can see how far the push got.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	var partial *domainErrors.PartialSyncError
	if pkgErrors.As(err, &partial) {
		return c.JSON(http.StatusBadGateway, echo.Map{
			"error":     partial.Error(),
			"code":      pkgErrors.ErrUnavailable,
			"completed": partial.Completed,
			"failed": echo.Map{
				"table": partial.Failed.Table,
				"phase": partial.Failed.Phase,
				"chunk": partial.Failed.Chunk,
			},
		})
	}

	appErr := toAppError(err)
	status := pkgErrors.HTTPStatus(appErr.Code())
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", c.Path()),
			zap.String("code", appErr.Code()),
			zap.Error(appErr))
	}
	return c.JSON(status, errorBody{Error: appErr.Error(), Code: appErr.Code()})
}
