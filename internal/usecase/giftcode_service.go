package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flmanager/flmanager/internal/domain/dto"
	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
	"github.com/flmanager/flmanager/internal/domain/policy"
)

// GiftCodeService issues and retires gift codes. Events land on the owning
// customer's timeline when one exists, otherwise on the SYSTEM timeline.
type GiftCodeService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGiftCodeService creates a new gift code service
func NewGiftCodeService(db *gorm.DB, logger *zap.Logger) *GiftCodeService {
	return &GiftCodeService{db: db, logger: logger}
}

// Create issues a gift code, generating the code string when none is given.
func (s *GiftCodeService) Create(ctx context.Context, req dto.CreateGiftCodeRequest) (*model.GiftCode, error) {
	code := &model.GiftCode{
		ID:         req.ID,
		CreatedAt:  nowMillis(),
		ExpiresAt:  req.ExpiresAt,
		Reason:     req.Reason,
		Note:       req.Note,
		ReferrerID: req.ReferrerID,
		Milestone:  req.Milestone,
		ReceiverID: req.ReceiverID,
	}
	if code.ID == "" {
		code.ID = policy.GenerateGiftCode()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(code).Error; err != nil {
			return fmt.Errorf("failed to create gift code: %w", err)
		}
		return appendTimelineEvent(tx, eventSubject(code), model.EventGiftCodeCreated,
			fmt.Sprintf("Cadeaucode %s aangemaakt (%s).", code.ID, code.Reason),
			&model.EventMeta{
				GiftCodeID: code.ID,
				Before:     &model.Snapshot{Created: true, GiftCode: code},
			})
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Gift code created",
		zap.String("gift_code_id", code.ID),
		zap.String("reason", string(code.Reason)))
	return code, nil
}

// Delete retires a gift code and logs GIFT_CODE_DELETED with its snapshot.
func (s *GiftCodeService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var code model.GiftCode
		if err := tx.First(&code, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrGiftCodeNotFound
			}
			return fmt.Errorf("failed to load gift code: %w", err)
		}

		if err := tx.Delete(&model.GiftCode{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete gift code: %w", err)
		}

		return appendTimelineEvent(tx, eventSubject(&code), model.EventGiftCodeDeleted,
			fmt.Sprintf("Cadeaucode %s verwijderd.", code.ID),
			&model.EventMeta{
				GiftCodeID: code.ID,
				Before:     &model.Snapshot{GiftCode: &code},
			})
	})
}

// Get loads one gift code by its code string.
func (s *GiftCodeService) Get(ctx context.Context, id string) (*model.GiftCode, error) {
	var code model.GiftCode
	if err := s.db.WithContext(ctx).First(&code, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrGiftCodeNotFound
		}
		return nil, fmt.Errorf("failed to get gift code: %w", err)
	}
	return &code, nil
}

// List returns all gift codes, newest first.
func (s *GiftCodeService) List(ctx context.Context) ([]model.GiftCode, error) {
	var codes []model.GiftCode
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to list gift codes: %w", err)
	}
	return codes, nil
}

// eventSubject picks the timeline a gift code event belongs to: the earner,
// then the designated receiver, then the SYSTEM timeline.
func eventSubject(code *model.GiftCode) string {
	if code.ReferrerID != "" {
		return code.ReferrerID
	}
	if code.ReceiverID != "" {
		return code.ReceiverID
	}
	return model.SystemCustomerID
}
