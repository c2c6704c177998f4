package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
	"github.com/flmanager/flmanager/internal/usecase"
)

func TestBackupService_ExportImport(t *testing.T) {
	db := newTestDB(t)
	service := usecase.NewBackupService(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, db.Create(&model.Customer{ID: "cust-1", Name: "Jan"}).Error)
	require.NoError(t, db.Create(&model.Subscription{
		ID: "sub-1", CustomerID: "cust-1", Label: "Stream 1",
		Status: model.SubscriptionStatusActive,
	}).Error)
	require.NoError(t, db.Create(&model.TimelineEvent{
		ID: "evt-1", CustomerID: "cust-1", Type: model.EventCustomerCreated,
		Meta: &model.EventMeta{Before: &model.Snapshot{Created: true}},
	}).Error)
	require.NoError(t, db.Create(&model.GiftCode{ID: "FLM-AAAA-BBBB-CCCC"}).Error)

	doc, err := service.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Customers, 1)
	assert.Len(t, doc.Subscriptions, 1)
	assert.Len(t, doc.Timeline, 1)
	assert.Len(t, doc.GiftCodes, 1)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	// Drift the store away from the backup, then import it back.
	require.NoError(t, db.Create(&model.Customer{ID: "cust-2", Name: "Piet"}).Error)
	require.NoError(t, db.Delete(&model.GiftCode{}, "id = ?", "FLM-AAAA-BBBB-CCCC").Error)

	require.NoError(t, service.Import(ctx, raw))

	var customers []model.Customer
	require.NoError(t, db.Find(&customers).Error)
	require.Len(t, customers, 1)
	assert.Equal(t, "cust-1", customers[0].ID)

	var code model.GiftCode
	require.NoError(t, db.First(&code, "id = ?", "FLM-AAAA-BBBB-CCCC").Error)

	// The typed snapshot survives the JSON round trip.
	var event model.TimelineEvent
	require.NoError(t, db.First(&event, "id = ?", "evt-1").Error)
	require.NotNil(t, event.Meta)
	require.NotNil(t, event.Meta.Before)
	assert.True(t, event.Meta.Before.Created)
}

func TestBackupService_Import_Invalid(t *testing.T) {
	db := newTestDB(t)
	service := usecase.NewBackupService(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, db.Create(&model.Customer{ID: "cust-1", Name: "Jan"}).Error)

	t.Run("not json", func(t *testing.T) {
		assert.ErrorIs(t, service.Import(ctx, []byte("geen json")), domainErrors.ErrInvalidBackup)
	})

	t.Run("wrong document", func(t *testing.T) {
		assert.ErrorIs(t, service.Import(ctx, []byte(`{"foo": []}`)), domainErrors.ErrInvalidBackup)
	})

	// A rejected import never touches the store.
	var count int64
	require.NoError(t, db.Model(&model.Customer{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestBackupService_Import_SkipsSettings(t *testing.T) {
	db := newTestDB(t)
	service := usecase.NewBackupService(db, zap.NewNop())
	ctx := context.Background()

	seedSettings(t, db)

	require.NoError(t, service.Import(ctx, []byte(`{"customers": []}`)))

	var settings model.AppSettings
	require.NoError(t, db.First(&settings, "id = ?", model.SettingsID).Error)
	assert.Equal(t, "0000", settings.PIN)
}
