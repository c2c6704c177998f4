package usecase_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/flmanager/flmanager/internal/domain/model"
)

// newTestDB opens a fresh in-memory store. A single connection keeps every
// query on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Customer{},
		&model.Subscription{},
		&model.Payment{},
		&model.TimelineEvent{},
		&model.GiftCode{},
		&model.WhatsappTemplate{},
		&model.CountryTemplate{},
		&model.WhatsappLog{},
		&model.Country{},
		&model.AppSettings{},
	))
	return db
}

// testSettings returns the factory defaults used across the service tests.
func testSettings() *model.AppSettings {
	return &model.AppSettings{
		ID:                 model.SettingsID,
		TestHours:          6,
		YearDays:           365,
		RewardMilestones:   datatypes.NewJSONSlice([]int{5, 10, 15, 20, 25, 50}),
		PriceStandard:      decimal.NewFromInt(55),
		PriceVrienden:      decimal.NewFromInt(40),
		PriceErotiekAddon:  decimal.NewFromInt(5),
		ReferralResetYears: 1,
		PIN:                "0000",
	}
}

// seedSettings writes the settings row for services that read it from the
// store.
func seedSettings(t *testing.T, db *gorm.DB) *model.AppSettings {
	t.Helper()
	settings := testSettings()
	require.NoError(t, db.Create(settings).Error)
	return settings
}

// lastEvent returns the most recent timeline event for a customer.
func lastEvent(t *testing.T, db *gorm.DB, customerID string) *model.TimelineEvent {
	t.Helper()
	var event model.TimelineEvent
	require.NoError(t, db.
		Where("customer_id = ?", customerID).
		Order("timestamp DESC, rowid DESC").
		First(&event).Error)
	return &event
}
