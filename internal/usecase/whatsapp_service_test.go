package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flmanager/flmanager/internal/domain/dto"
	"github.com/flmanager/flmanager/internal/domain/model"
	"github.com/flmanager/flmanager/internal/usecase"
)

func TestWhatsappService_LogMessage(t *testing.T) {
	db := newTestDB(t)
	service := usecase.NewWhatsappService(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, db.Create(&model.Customer{ID: "cust-1", Name: "Jan"}).Error)

	entry, err := service.LogMessage(ctx, dto.LogWhatsappRequest{
		CustomerID:   "cust-1",
		Message:      "Hoi Jan, je abonnement loopt bijna af.",
		TemplateName: "A5. Jaar bijna verlopen (reminder)",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.NotZero(t, entry.Timestamp)

	event := lastEvent(t, db, "cust-1")
	assert.Equal(t, model.EventWhatsappSent, event.Type)
	assert.Contains(t, event.Message, "A5. Jaar bijna verlopen (reminder)")
	require.NotNil(t, event.Meta.Before)
	assert.Equal(t, entry.ID, event.Meta.Before.WhatsappLogID)

	t.Run("free-form message", func(t *testing.T) {
		_, err := service.LogMessage(ctx, dto.LogWhatsappRequest{
			CustomerID: "cust-1",
			Message:    "Even een vraagje",
		})
		require.NoError(t, err)

		event := lastEvent(t, db, "cust-1")
		assert.Contains(t, event.Message, "vrij bericht")
	})
}

func TestWhatsappService_Render(t *testing.T) {
	db := newTestDB(t)
	settings := testSettings()
	service := usecase.NewWhatsappService(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, db.Create(&model.Customer{ID: "cust-1", Name: "Jan"}).Error)
	require.NoError(t, db.Create(&model.WhatsappTemplate{
		ID:      "tpl-1",
		Name:    "B. Cadeaucode",
		Message: "Hoi {customer_name}, hier is je code: {gift_code}.",
	}).Error)
	require.NoError(t, db.Create(&model.WhatsappTemplate{
		ID:      "tpl-2",
		Name:    "A1. Test 6u (geen erotiek)",
		Message: "Hoi {customer_name}!\n\n{SUBSCRIPTION_DETAILS}",
	}).Error)

	t.Run("named template with extras", func(t *testing.T) {
		message, name, err := service.Render(ctx, "cust-1", "B. Cadeaucode", nil,
			map[string]string{"gift_code": "FLM-AAAA-BBBB-CCCC"}, settings)
		require.NoError(t, err)
		assert.Equal(t, "B. Cadeaucode", name)
		assert.Equal(t, "Hoi Jan, hier is je code: FLM-AAAA-BBBB-CCCC.", message)
	})

	t.Run("template picked from subscription", func(t *testing.T) {
		require.NoError(t, db.Create(&model.Subscription{
			ID: "sub-1", CustomerID: "cust-1", Label: "Proef",
			Status: model.SubscriptionStatusTest,
			EndAt:  time.Now().Add(6 * time.Hour).UnixMilli(),
		}).Error)

		message, name, err := service.Render(ctx, "cust-1", "", []string{"sub-1"}, nil, settings)
		require.NoError(t, err)
		assert.Equal(t, "A1. Test 6u (geen erotiek)", name)
		assert.Contains(t, message, "Hoi Jan!")
		assert.Contains(t, message, "Status abonnement:")
	})

	t.Run("unknown template", func(t *testing.T) {
		_, _, err := service.Render(ctx, "cust-1", "bestaat niet", nil, nil, settings)
		assert.Error(t, err)
	})
}

func TestWhatsappService_Templates(t *testing.T) {
	db := newTestDB(t)
	service := usecase.NewWhatsappService(db, zap.NewNop())
	ctx := context.Background()

	template := &model.WhatsappTemplate{Name: "G. Handleiding", Message: "Zo werkt het."}
	require.NoError(t, service.SaveTemplate(ctx, template))
	assert.NotEmpty(t, template.ID)

	templates, err := service.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)

	template.Message = "Zo werkt het echt."
	require.NoError(t, service.SaveTemplate(ctx, template))
	templates, err = service.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Zo werkt het echt.", templates[0].Message)

	require.NoError(t, service.DeleteTemplate(ctx, template.ID))
	templates, err = service.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestWhatsappService_CountryTemplates(t *testing.T) {
	db := newTestDB(t)
	service := usecase.NewWhatsappService(db, zap.NewNop())
	ctx := context.Background()

	template := &model.CountryTemplate{
		Name:         "Benelux",
		CountryCodes: []string{"NL", "BE", "LU"},
	}
	require.NoError(t, service.SaveCountryTemplate(ctx, template))
	assert.NotEmpty(t, template.ID)

	templates, err := service.ListCountryTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.ElementsMatch(t, []string{"NL", "BE", "LU"}, []string(templates[0].CountryCodes))

	require.NoError(t, service.DeleteCountryTemplate(ctx, template.ID))
	templates, err = service.ListCountryTemplates(ctx)
	require.NoError(t, err)
	assert.Empty(t, templates)
}
