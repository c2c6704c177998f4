package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
)

// SettingsService manages the singleton settings row. Settings are
// configuration, not customer data, so updates bypass the timeline.
type SettingsService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(db *gorm.DB, logger *zap.Logger) *SettingsService {
	return &SettingsService{db: db, logger: logger}
}

// Get loads the settings row.
func (s *SettingsService) Get(ctx context.Context) (*model.AppSettings, error) {
	var settings model.AppSettings
	if err := s.db.WithContext(ctx).First(&settings, "id = ?", model.SettingsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &settings, nil
}

// Update replaces the settings row. The id is pinned so a malformed payload
// cannot create a second row.
func (s *SettingsService) Update(ctx context.Context, settings *model.AppSettings) error {
	settings.ID = model.SettingsID
	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	s.logger.Info("Settings updated")
	return nil
}

// VerifyPIN checks the PIN for destructive operations. When the PIN lock is
// disabled every attempt passes.
func (s *SettingsService) VerifyPIN(ctx context.Context, pin string) error {
	settings, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if !settings.PINLockEnabled {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(settings.PIN), []byte(pin)) != 1 {
		s.logger.Warn("Rejected PIN attempt")
		return domainErrors.ErrInvalidPIN
	}
	return nil
}
