package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flmanager/flmanager/internal/domain/dto"
	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
	"github.com/flmanager/flmanager/internal/usecase"
)

func TestSubscriptionService_Save_Create(t *testing.T) {
	db := newTestDB(t)
	settings := testSettings()
	service := usecase.NewSubscriptionService(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, db.Create(&model.Customer{ID: "cust-1", Name: "Jan"}).Error)

	t.Run("active subscription gets a year", func(t *testing.T) {
		sub, err := service.Save(ctx, dto.SaveSubscriptionRequest{
			CustomerID:    "cust-1",
			Label:         "Stream 1",
			Status:        model.SubscriptionStatusActive,
			PaymentMethod: model.PaymentMethodTikkie,
			Countries:     []string{"NL", "BE"},
		}, settings)
		require.NoError(t, err)
		assert.NotEmpty(t, sub.ID)

		wantEnd := time.UnixMilli(sub.StartAt).AddDate(0, 0, settings.YearDays).UnixMilli()
		assert.Equal(t, wantEnd, sub.EndAt)

		event := lastEvent(t, db, "cust-1")
		assert.Equal(t, model.EventSubscriptionCreated, event.Type)
		assert.True(t, event.Meta.Before.Created)
	})

	t.Run("test subscription gets test hours", func(t *testing.T) {
		sub, err := service.Save(ctx, dto.SaveSubscriptionRequest{
			CustomerID:    "cust-1",
			Label:         "Proef",
			Status:        model.SubscriptionStatusTest,
			PaymentMethod: model.PaymentMethodGratis,
		}, settings)
		require.NoError(t, err)

		wantEnd := time.UnixMilli(sub.StartAt).Add(time.Duration(settings.TestHours) * time.Hour).UnixMilli()
		assert.Equal(t, wantEnd, sub.EndAt)
	})
}

func TestSubscriptionService_Save_WithGiftCode(t *testing.T) {
	db := newTestDB(t)
	settings := testSettings()
	service := usecase.NewSubscriptionService(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, db.Create(&model.Customer{ID: "cust-1", Name: "Jan"}).Error)

	t.Run("valid code is redeemed with a zero payment", func(t *testing.T) {
		require.NoError(t, db.Create(&model.GiftCode{
			ID:        "FLM-AAAA-BBBB-CCCC",
			ExpiresAt: time.Now().AddDate(1, 0, 0).UnixMilli(),
		}).Error)

		sub, err := service.Save(ctx, dto.SaveSubscriptionRequest{
			CustomerID:    "cust-1",
			Label:         "Cadeau",
			Status:        model.SubscriptionStatusActive,
			PaymentMethod: model.PaymentMethodGratis,
			GiftCodeID:    "FLM-AAAA-BBBB-CCCC",
		}, settings)
		require.NoError(t, err)

		var code model.GiftCode
		require.NoError(t, db.First(&code, "id = ?", "FLM-AAAA-BBBB-CCCC").Error)
		assert.True(t, code.Redeemed())
		assert.Equal(t, "cust-1", code.UsedByCustomerID)
		assert.Equal(t, sub.ID, code.UsedForSubscriptionID)

		var payment model.Payment
		require.NoError(t, db.First(&payment, "subscription_id = ?", sub.ID).Error)
		assert.True(t, payment.Amount.IsZero())
		assert.Equal(t, model.PaymentMethodGratis, payment.PaymentMethod)
	})

	t.Run("spent code fails the whole save", func(t *testing.T) {
		require.NoError(t, db.Create(&model.GiftCode{
			ID:               "FLM-USED-USED-USED",
			UsedAt:           time.Now().UnixMilli(),
			UsedByCustomerID: "someone",
		}).Error)

		var subsBefore int64
		require.NoError(t, db.Model(&model.Subscription{}).Count(&subsBefore).Error)

		_, err := service.Save(ctx, dto.SaveSubscriptionRequest{
			CustomerID:    "cust-1",
			Label:         "Mislukt",
			Status:        model.SubscriptionStatusActive,
			PaymentMethod: model.PaymentMethodGratis,
			GiftCodeID:    "FLM-USED-USED-USED",
		}, settings)
		assert.ErrorIs(t, err, domainErrors.ErrGiftCodeAlreadyUsed)

		// The transaction rolled back: no subscription was created.
		var subsAfter int64
		require.NoError(t, db.Model(&model.Subscription{}).Count(&subsAfter).Error)
		assert.Equal(t, subsBefore, subsAfter)
	})

	t.Run("expired code is rejected", func(t *testing.T) {
		require.NoError(t, db.Create(&model.GiftCode{
			ID:        "FLM-EXPI-RED1-2345",
			ExpiresAt: time.Now().AddDate(0, 0, -1).UnixMilli(),
		}).Error)

		_, err := service.Save(ctx, dto.SaveSubscriptionRequest{
			CustomerID:    "cust-1",
			Label:         "Te laat",
			Status:        model.SubscriptionStatusActive,
			PaymentMethod: model.PaymentMethodGratis,
			GiftCodeID:    "FLM-EXPI-RED1-2345",
		}, settings)
		assert.ErrorIs(t, err, domainErrors.ErrGiftCodeExpired)
	})
}

func TestSubscriptionService_Renew(t *testing.T) {
	db := newTestDB(t)
	settings := testSettings()
	service := usecase.NewSubscriptionService(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, db.Create(&model.Customer{ID: "cust-1", Name: "Jan"}).Error)

	t.Run("active subscription extends from its end date", func(t *testing.T) {
		endAt := time.Now().AddDate(0, 1, 0).UnixMilli()
		require.NoError(t, db.Create(&model.Subscription{
			ID:            "sub-active",
			CustomerID:    "cust-1",
			Label:         "Stream 1",
			Status:        model.SubscriptionStatusActive,
			EndAt:         endAt,
			PaymentMethod: model.PaymentMethodTikkie,
		}).Error)

		renewed, err := service.Renew(ctx, "sub-active", settings)
		require.NoError(t, err)

		wantEnd := time.UnixMilli(endAt).AddDate(0, 0, settings.YearDays).UnixMilli()
		assert.Equal(t, wantEnd, renewed.EndAt)
		assert.True(t, renewed.Paid)
		assert.False(t, renewed.Free)
		assert.Equal(t, model.SubscriptionStatusActive, renewed.Status)

		var payment model.Payment
		require.NoError(t, db.First(&payment, "subscription_id = ?", "sub-active").Error)
		assert.True(t, payment.Amount.Equal(settings.PriceStandard))

		event := lastEvent(t, db, "cust-1")
		assert.Equal(t, model.EventSubscriptionRenewed, event.Type)
		assert.Equal(t, endAt, event.Meta.Before.Subscription.EndAt)
	})

	t.Run("expired subscription extends from today", func(t *testing.T) {
		endAt := time.Now().AddDate(0, -2, 0).UnixMilli()
		require.NoError(t, db.Create(&model.Subscription{
			ID:            "sub-expired",
			CustomerID:    "cust-1",
			Label:         "Stream 2",
			Status:        model.SubscriptionStatusExpired,
			EndAt:         endAt,
			Erotiek:       true,
			PaymentMethod: model.PaymentMethodVrienden,
		}).Error)

		before := time.Now()
		renewed, err := service.Renew(ctx, "sub-expired", settings)
		require.NoError(t, err)

		// Dead time must not stack: the new end is about a year from now.
		lower := before.AddDate(0, 0, settings.YearDays).UnixMilli()
		upper := time.Now().AddDate(0, 0, settings.YearDays).UnixMilli()
		assert.GreaterOrEqual(t, renewed.EndAt, lower)
		assert.LessOrEqual(t, renewed.EndAt, upper)

		// Vrienden price plus the erotiek addon.
		var payment model.Payment
		require.NoError(t, db.First(&payment, "subscription_id = ?", "sub-expired").Error)
		assert.True(t, payment.Amount.Equal(settings.PriceVrienden.Add(settings.PriceErotiekAddon)))
	})

	t.Run("unknown subscription", func(t *testing.T) {
		_, err := service.Renew(ctx, "missing", settings)
		assert.ErrorIs(t, err, domainErrors.ErrSubscriptionNotFound)
	})
}

func TestSubscriptionService_Delete(t *testing.T) {
	db := newTestDB(t)
	service := usecase.NewSubscriptionService(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, db.Create(&model.Customer{ID: "cust-1", Name: "Jan"}).Error)
	require.NoError(t, db.Create(&model.Subscription{
		ID:         "sub-1",
		CustomerID: "cust-1",
		Label:      "Stream 1",
		Status:     model.SubscriptionStatusActive,
	}).Error)

	require.NoError(t, service.Delete(ctx, "sub-1"))

	var count int64
	require.NoError(t, db.Model(&model.Subscription{}).Count(&count).Error)
	assert.Zero(t, count)

	event := lastEvent(t, db, "cust-1")
	assert.Equal(t, model.EventSubscriptionDeleted, event.Type)
	assert.Equal(t, "sub-1", event.Meta.Before.Subscription.ID)
	assert.False(t, event.Meta.Before.Created)
}
