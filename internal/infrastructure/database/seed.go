package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/flmanager/flmanager/internal/domain/model"
)

// defaultSettings returns the factory settings. The remote store stays
// unconfigured until the operator fills in their own project credentials.
func defaultSettings() *model.AppSettings {
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
		PINLockEnabled:     false,
	}
}

var defaultCountries = []model.Country{
	{Code: "NL", Name: "Nederland"},
	{Code: "BE", Name: "België"},
	{Code: "DE", Name: "Duitsland"},
	{Code: "TR", Name: "Turkije"},
	{Code: "FR", Name: "Frankrijk"},
	{Code: "ES", Name: "Spanje"},
	{Code: "IT", Name: "Italië"},
	{Code: "GB", Name: "Verenigd Koninkrijk"},
	{Code: "PT", Name: "Portugal"},
	{Code: "MA", Name: "Marokko"},
	{Code: "PL", Name: "Polen"},
	{Code: "US", Name: "Verenigde Staten"},
	{Code: "CA", Name: "Canada"},
	{Code: "KU", Name: "Koerdistan"},
}

var defaultCountryTemplates = []model.CountryTemplate{
	{Name: "Nederland Standaard", CountryCodes: datatypes.NewJSONSlice([]string{"NL", "BE", "DE", "TR"})},
	{Name: "Europa Basis", CountryCodes: datatypes.NewJSONSlice([]string{"NL", "BE", "DE", "FR", "ES", "IT", "GB", "PT"})},
	{Name: "Volledig Pakket", CountryCodes: datatypes.NewJSONSlice([]string{"NL", "BE", "DE", "TR", "FR", "ES", "IT", "GB", "PT", "MA", "PL", "US", "CA"})},
}

var defaultWhatsappTemplates = []model.WhatsappTemplate{
	{
		Name: "A1. Test 6u (geen erotiek)",
		Message: "📺 Beste {customer_name},\n\n{SUBSCRIPTION_DETAILS}\n\n" +
			"Wil je verder kijken met een 1 jaar abonnement voor €55?\nStuur me even een berichtje.\n\n" +
			"ℹ️ Betalen kan via: Tikkie\n\n{XTREAM_BLOCK}",
	},
	{
		Name: "A2. Test 6u (met erotiek)",
		Message: "📺 Beste {customer_name},\n\n{SUBSCRIPTION_DETAILS}\n\n" +
			"Wil je verder kijken met een 1 jaar abonnement voor €60?\nStuur me even een berichtje.\n\n" +
			"ℹ️ Betalen kan via: Tikkie\n\n{XTREAM_BLOCK}",
	},
	{
		Name:    "A3. Jaarabonnement (geen erotiek)",
		Message: "📺 Beste {customer_name},\n\n{SUBSCRIPTION_DETAILS}\n\n{XTREAM_BLOCK}",
	},
	{
		Name:    "A4. Jaarabonnement (met erotiek)",
		Message: "📺 Beste {customer_name},\n\n{SUBSCRIPTION_DETAILS}\n\n{XTREAM_BLOCK}",
	},
	{
		Name: "A5. Jaar bijna verlopen (reminder)",
		Message: "📺 Beste {customer_name},\n\n{SUBSCRIPTION_DETAILS}\n\n" +
			"❗ Dit abonnement verloopt binnenkort.\nWil je verlengen met 1 jaar voor €55/€60?\nStuur me even een berichtje.\n\n" +
			"ℹ️ Betalen kan via: Tikkie\n\n{XTREAM_BLOCK}",
	},
	{
		Name: "A6. Jaar verlopen (EXPIRED)",
		Message: "📺 Beste {customer_name},\n\n{SUBSCRIPTION_DETAILS}\n\n" +
			"⚠️ Let op: dit abonnement is verlopen.\nJe kunt verlengen met 1 jaar abonnement voor €55/€60.\nNa betaling activeer ik direct opnieuw.\n\n" +
			"ℹ️ Betalen kan via: Tikkie\n\n{XTREAM_BLOCK}",
	},
	{
		Name: "B. Multi-stream Overzicht",
		Message: "📺 Beste {customer_name},\n\nHierbij een kort overzicht van jouw IPTV-abonnementen bij TV Flamingo:\n\n" +
			"{MULTI_STREAM_BLOCK}\n\nℹ️ Betalen kan via: Tikkie",
	},
	{
		Name: "F4. Werving Beloning (Zelf)",
		Message: "🎉 Gefeliciteerd!\nJe hebt {milestone} klanten succesvol aangebracht.\n" +
			"Daarom krijg jij nu 1 jaar gratis verlenging van je eigen abonnement.\n" +
			"Je hoeft zelf niets te doen – de einddatum is aangepast.\nBedankt voor je inzet! 🙌",
	},
	{
		Name: "F5. Werving Beloning (Code)",
		Message: "🎉 Gefeliciteerd!\nJe hebt {milestone} klanten succesvol aangebracht.\n" +
			"Daarom krijg jij nu een cadeaucode van 1 jaar gratis stream.\n\nCadeaucode: {gift_code}\n\n" +
			"Je kunt deze code weggeven aan wie je wilt.\nDie persoon kan hem inwisselen bij ons en krijgt meteen 1 jaar toegang.\nBedankt voor je inzet! 🙌",
	},
	{
		Name: "G. Cadeaucode",
		Message: "🎁 Beste {customer_name},\n\nJe ontvangt een cadeaucode: {gift_code}\n" +
			"Gebruik: stuur deze code terug samen met je MAC en Apparaatsleutel. Dan activeer ik direct een gratis jaarabonnement.\n\n" +
			"Let op: {expiry_line}",
	},
}

// Seed fills empty reference tables with their defaults. Existing rows are
// never overwritten: templates the operator edited stay edited.
func Seed(db *gorm.DB, logger *zap.Logger) error {
	var settingsCount int64
	if err := db.Model(&model.AppSettings{}).Count(&settingsCount).Error; err != nil {
		return fmt.Errorf("failed to check settings: %w", err)
	}
	if settingsCount == 0 {
		if err := db.Create(defaultSettings()).Error; err != nil {
			return fmt.Errorf("failed to seed settings: %w", err)
		}
		logger.Info("Seeded default settings")
	}

	var countryCount int64
	if err := db.Model(&model.Country{}).Count(&countryCount).Error; err != nil {
		return fmt.Errorf("failed to check countries: %w", err)
	}
	if countryCount == 0 {
		if err := db.Create(defaultCountries).Error; err != nil {
			return fmt.Errorf("failed to seed countries: %w", err)
		}
		logger.Info("Seeded countries", zap.Int("count", len(defaultCountries)))
	}

	var templateCount int64
	if err := db.Model(&model.WhatsappTemplate{}).Count(&templateCount).Error; err != nil {
		return fmt.Errorf("failed to check whatsapp templates: %w", err)
	}
	if templateCount == 0 {
		templates := make([]model.WhatsappTemplate, len(defaultWhatsappTemplates))
		copy(templates, defaultWhatsappTemplates)
		for i := range templates {
			templates[i].ID = uuid.NewString()
		}
		if err := db.Create(templates).Error; err != nil {
			return fmt.Errorf("failed to seed whatsapp templates: %w", err)
		}
		logger.Info("Seeded whatsapp templates", zap.Int("count", len(templates)))
	}

	var countryTemplateCount int64
	if err := db.Model(&model.CountryTemplate{}).Count(&countryTemplateCount).Error; err != nil {
		return fmt.Errorf("failed to check country templates: %w", err)
	}
	if countryTemplateCount == 0 {
		templates := make([]model.CountryTemplate, len(defaultCountryTemplates))
		copy(templates, defaultCountryTemplates)
		for i := range templates {
			templates[i].ID = uuid.NewString()
		}
		if err := db.Create(templates).Error; err != nil {
			return fmt.Errorf("failed to seed country templates: %w", err)
		}
		logger.Info("Seeded country templates", zap.Int("count", len(templates)))
	}

	return nil
}
