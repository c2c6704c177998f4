package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
)

// BackupDocument is the JSON file format for full exports. The top-level
// keys keep the wire schema's camelCase spelling so backups and the remote
// store stay interchangeable.
type BackupDocument struct {
	Customers         []model.Customer         `json:"customers"`
	Subscriptions     []model.Subscription     `json:"subscriptions"`
	Timeline          []model.TimelineEvent    `json:"timeline"`
	CountryTemplates  []model.CountryTemplate  `json:"countryTemplates"`
	WhatsappTemplates []model.WhatsappTemplate `json:"whatsappTemplates"`
	GiftCodes         []model.GiftCode         `json:"giftCodes"`
	WhatsappLogs      []model.WhatsappLog      `json:"whatsappLogs"`
	Payments          []model.Payment          `json:"payments"`
}

// BackupService exports and imports the full dataset as a single JSON
// document. Settings are excluded: a backup restored on another machine
// should not overwrite that machine's PIN or remote credentials.
type BackupService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *gorm.DB, logger *zap.Logger) *BackupService {
	return &BackupService{db: db, logger: logger}
}

// Export reads every user table into one document.
func (s *BackupService) Export(ctx context.Context) (*BackupDocument, error) {
	doc := &BackupDocument{}
	db := s.db.WithContext(ctx)

	collect := func(dest any, table string) error {
		if err := db.Find(dest).Error; err != nil {
			return fmt.Errorf("failed to export %s: %w", table, err)
		}
		return nil
	}
	if err := collect(&doc.Customers, "customers"); err != nil {
		return nil, err
	}
	if err := collect(&doc.Subscriptions, "subscriptions"); err != nil {
		return nil, err
	}
	if err := collect(&doc.Timeline, "timeline"); err != nil {
		return nil, err
	}
	if err := collect(&doc.CountryTemplates, "countryTemplates"); err != nil {
		return nil, err
	}
	if err := collect(&doc.WhatsappTemplates, "whatsappTemplates"); err != nil {
		return nil, err
	}
	if err := collect(&doc.GiftCodes, "giftCodes"); err != nil {
		return nil, err
	}
	if err := collect(&doc.WhatsappLogs, "whatsappLogs"); err != nil {
		return nil, err
	}
	if err := collect(&doc.Payments, "payments"); err != nil {
		return nil, err
	}

	s.logger.Info("Backup exported",
		zap.Int("customers", len(doc.Customers)),
		zap.Int("subscriptions", len(doc.Subscriptions)))
	return doc, nil
}

// Import validates the document and replaces the user tables with its
// contents in one transaction. The raw payload is checked for the customers
// key before anything is cleared, so a wrong file never wipes the store.
func (s *BackupService) Import(ctx context.Context, raw []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrInvalidBackup, err)
	}
	if _, ok := keys["customers"]; !ok {
		return domainErrors.ErrInvalidBackup
	}

	var doc BackupDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrInvalidBackup, err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		replace := func(clearModel any, rows any, count int, table string) error {
			if err := tx.Where("1 = 1").Delete(clearModel).Error; err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
			if count == 0 {
				return nil
			}
			if err := tx.CreateInBatches(rows, bulkPutBatchSize).Error; err != nil {
				return fmt.Errorf("failed to import %s: %w", table, err)
			}
			return nil
		}
		if err := replace(&model.Customer{}, doc.Customers, len(doc.Customers), "customers"); err != nil {
			return err
		}
		if err := replace(&model.Subscription{}, doc.Subscriptions, len(doc.Subscriptions), "subscriptions"); err != nil {
			return err
		}
		if err := replace(&model.TimelineEvent{}, doc.Timeline, len(doc.Timeline), "timeline"); err != nil {
			return err
		}
		if err := replace(&model.CountryTemplate{}, doc.CountryTemplates, len(doc.CountryTemplates), "countryTemplates"); err != nil {
			return err
		}
		if err := replace(&model.WhatsappTemplate{}, doc.WhatsappTemplates, len(doc.WhatsappTemplates), "whatsappTemplates"); err != nil {
			return err
		}
		if err := replace(&model.GiftCode{}, doc.GiftCodes, len(doc.GiftCodes), "giftCodes"); err != nil {
			return err
		}
		if err := replace(&model.WhatsappLog{}, doc.WhatsappLogs, len(doc.WhatsappLogs), "whatsappLogs"); err != nil {
			return err
		}
		return replace(&model.Payment{}, doc.Payments, len(doc.Payments), "payments")
	})
	if err != nil {
		return err
	}

	s.logger.Info("Backup imported",
		zap.Int("customers", len(doc.Customers)),
		zap.Int("subscriptions", len(doc.Subscriptions)))
	return nil
}
