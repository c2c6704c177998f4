package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flmanager/flmanager/internal/domain/dto"
	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
	"github.com/flmanager/flmanager/internal/usecase"
)

func TestGiftCodeService_Create(t *testing.T) {
	db := newTestDB(t)
	service := usecase.NewGiftCodeService(db, zap.NewNop())
	ctx := context.Background()

	t.Run("generates a code when none given", func(t *testing.T) {
		code, err := service.Create(ctx, dto.CreateGiftCodeRequest{
			Reason: model.GiftCodeReasonPromotie,
			Note:   "Lanceringsactie",
		})
		require.NoError(t, err)
		assert.Regexp(t, `^FLM-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`, code.ID)

		// No owner: the event lands on the SYSTEM timeline.
		event := lastEvent(t, db, model.SystemCustomerID)
		assert.Equal(t, model.EventGiftCodeCreated, event.Type)
		assert.True(t, event.Meta.Before.Created)
		assert.Equal(t, code.ID, event.Meta.GiftCodeID)
	})

	t.Run("event follows the earner", func(t *testing.T) {
		require.NoError(t, db.Create(&model.Customer{ID: "werver", Name: "Werver"}).Error)

		code, err := service.Create(ctx, dto.CreateGiftCodeRequest{
			Reason:     model.GiftCodeReasonWerving,
			ReferrerID: "werver",
			ExpiresAt:  time.Now().AddDate(1, 0, 0).UnixMilli(),
		})
		require.NoError(t, err)

		event := lastEvent(t, db, "werver")
		assert.Equal(t, model.EventGiftCodeCreated, event.Type)
		assert.Equal(t, code.ID, event.Meta.GiftCodeID)
	})
}

func TestGiftCodeService_Delete(t *testing.T) {
	db := newTestDB(t)
	service := usecase.NewGiftCodeService(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, db.Create(&model.GiftCode{ID: "FLM-AAAA-BBBB-CCCC"}).Error)

	require.NoError(t, service.Delete(ctx, "FLM-AAAA-BBBB-CCCC"))

	var gone model.GiftCode
	assert.ErrorIs(t, db.First(&gone, "id = ?", "FLM-AAAA-BBBB-CCCC").Error, gorm.ErrRecordNotFound)

	event := lastEvent(t, db, model.SystemCustomerID)
	assert.Equal(t, model.EventGiftCodeDeleted, event.Type)
	require.NotNil(t, event.Meta.Before.GiftCode)
	assert.Equal(t, "FLM-AAAA-BBBB-CCCC", event.Meta.Before.GiftCode.ID)
	assert.False(t, event.Meta.Before.Created)

	t.Run("unknown code", func(t *testing.T) {
		assert.ErrorIs(t, service.Delete(ctx, "FLM-XXXX-XXXX-XXXX"), domainErrors.ErrGiftCodeNotFound)
	})
}
