package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	pkgErrors "github.com/flmanager/flmanager/pkg/errors"
)

func TestToAppError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"customer not found", domainErrors.ErrCustomerNotFound, pkgErrors.ErrNotFound},
		{"gift code already used", domainErrors.ErrGiftCodeAlreadyUsed, pkgErrors.ErrConflict},
		{"already reverted", domainErrors.ErrEventAlreadyReverted, pkgErrors.ErrConflict},
		{"not revertible", domainErrors.ErrEventNotRevertible, pkgErrors.ErrFailedPrecondition},
		{"remote not configured", domainErrors.ErrRemoteNotConfigured, pkgErrors.ErrFailedPrecondition},
		{"invalid backup", domainErrors.ErrInvalidBackup, pkgErrors.ErrInvalidArgument},
		{"invalid pin", domainErrors.ErrInvalidPIN, pkgErrors.ErrUnauthenticated},
		{"remote unreachable", domainErrors.ErrRemoteUnreachable, pkgErrors.ErrUnavailable},
		{"unknown error", errors.New("boom"), pkgErrors.ErrInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appErr := toAppError(tc.err)
			assert.Equal(t, tc.code, appErr.Code())
			// The domain sentinel stays reachable through the chain.
			assert.ErrorIs(t, appErr, tc.err)
		})
	}

	t.Run("wrapped sentinel keeps its code", func(t *testing.T) {
		wrapped := toAppError(domainErrors.ErrGiftCodeExpired)
		assert.Equal(t, pkgErrors.ErrFailedPrecondition, wrapped.Code())
		assert.Contains(t, wrapped.Error(), domainErrors.ErrGiftCodeExpired.Error())
	})
}

func newErrorContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/x", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRespondError(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		c, rec := newErrorContext(t)
		require.NoError(t, respondError(c, zap.NewNop(), domainErrors.ErrCustomerNotFound))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
	})

	t.Run("conflict", func(t *testing.T) {
		c, rec := newErrorContext(t)
		require.NoError(t, respondError(c, zap.NewNop(), domainErrors.ErrRewardAlreadyClaimed))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"CONFLICT"`)
	})

	t.Run("unknown errors stay internal", func(t *testing.T) {
		c, rec := newErrorContext(t)
		require.NoError(t, respondError(c, zap.NewNop(), errors.New("boom")))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"INTERNAL"`)
	})

	t.Run("partial sync failure carries progress", func(t *testing.T) {
		c, rec := newErrorContext(t)
		err := &domainErrors.PartialSyncError{
			Completed: []string{"customers"},
			Failed: &domainErrors.SyncError{
				Table: "subscriptions",
				Phase: domainErrors.SyncPhasePush,
				Chunk: 2,
				Err:   domainErrors.ErrRemoteRejected,
			},
		}
		require.NoError(t, respondError(c, zap.NewNop(), err))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), `"completed":["customers"]`)
		assert.Contains(t, rec.Body.String(), `"table":"subscriptions"`)
		assert.Contains(t, rec.Body.String(), `"chunk":2`)
	})
}
