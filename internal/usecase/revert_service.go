package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
)

// RevertService undoes logged actions by restoring their before snapshots.
// The timeline stays append-only: a successful revert appends an
// ACTION_REVERTED event instead of touching the original record.
type RevertService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRevertService creates a new revert service
func NewRevertService(db *gorm.DB, logger *zap.Logger) *RevertService {
	return &RevertService{db: db, logger: logger}
}

// Revert undoes one timeline event. It fails when the event is unknown, of a
// non-revertible type, missing its before snapshot, or already reverted.
func (s *RevertService) Revert(ctx context.Context, eventID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event model.TimelineEvent
		if err := tx.First(&event, "id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrEventNotFound
			}
			return fmt.Errorf("failed to load event: %w", err)
		}
		if !event.Revertible() {
			return domainErrors.ErrEventNotRevertible
		}

		// meta is stored as a JSON text column, so the reverse lookup for an
		// existing ACTION_REVERTED pointer is a substring match on the
		// serialized key.
		var count int64
		if err := tx.Model(&model.TimelineEvent{}).
			Where("type = ? AND meta LIKE ?", model.EventActionReverted,
				fmt.Sprintf(`%%"reverted_event_id":"%s"%%`, eventID)).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check revert state: %w", err)
		}
		if count > 0 {
			return domainErrors.ErrEventAlreadyReverted
		}

		if err := s.restore(tx, &event); err != nil {
			return err
		}

		return appendTimelineEvent(tx, event.CustomerID, model.EventActionReverted,
			fmt.Sprintf("Actie '%s' ongedaan gemaakt.", event.Type),
			&model.EventMeta{RevertedEventID: eventID})
	})
	if err != nil {
		return err
	}
	s.logger.Info("Event reverted", zap.String("event_id", eventID))
	return nil
}

// restore dispatches on the event type. Snapshots marked Created describe
// records that did not exist before the action, so reverting deletes them;
// everything else is written back verbatim under its original id.
func (s *RevertService) restore(tx *gorm.DB, event *model.TimelineEvent) error {
	before := event.Meta.Before

	switch event.Type {
	case model.EventCustomerDeleted:
		return s.restoreCustomerCascade(tx, before)

	case model.EventSubscriptionCreated:
		if before.Subscription == nil {
			return domainErrors.ErrEventNotRevertible
		}
		if err := tx.Delete(&model.Subscription{}, "id = ?", before.Subscription.ID).Error; err != nil {
			return fmt.Errorf("failed to remove created subscription: %w", err)
		}
		return nil

	case model.EventSubscriptionModified, model.EventSubscriptionRenewed, model.EventRewardYearApplied:
		if before.Subscription == nil {
			return domainErrors.ErrEventNotRevertible
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).
			Create(before.Subscription).Error; err != nil {
			return fmt.Errorf("failed to restore subscription: %w", err)
		}
		return nil

	case model.EventSubscriptionDeleted:
		if before.Subscription == nil {
			return domainErrors.ErrEventNotRevertible
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).
			Create(before.Subscription).Error; err != nil {
			return fmt.Errorf("failed to restore subscription: %w", err)
		}
		return nil

	case model.EventGiftCodeCreated:
		if before.GiftCode == nil {
			return domainErrors.ErrEventNotRevertible
		}
		if err := tx.Delete(&model.GiftCode{}, "id = ?", before.GiftCode.ID).Error; err != nil {
			return fmt.Errorf("failed to remove created gift code: %w", err)
		}
		return nil

	case model.EventGiftCodeDeleted:
		if before.GiftCode == nil {
			return domainErrors.ErrEventNotRevertible
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).
			Create(before.GiftCode).Error; err != nil {
			return fmt.Errorf("failed to restore gift code: %w", err)
		}
		return nil

	case model.EventWhatsappSent:
		if before.WhatsappLogID == "" {
			return domainErrors.ErrEventNotRevertible
		}
		if err := tx.Delete(&model.WhatsappLog{}, "id = ?", before.WhatsappLogID).Error; err != nil {
			return fmt.Errorf("failed to remove whatsapp log: %w", err)
		}
		return nil

	default:
		return domainErrors.ErrEventNotRevertible
	}
}

// restoreCustomerCascade re-inserts the customer and every dependent record
// from the deletion bundle under their original ids, and re-links codes that
// were orphaned instead of deleted.
func (s *RevertService) restoreCustomerCascade(tx *gorm.DB, before *model.Snapshot) error {
	if before.Customer == nil {
		return domainErrors.ErrEventNotRevertible
	}

	if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(before.Customer).Error; err != nil {
		return fmt.Errorf("failed to restore customer: %w", err)
	}
	if len(before.Subscriptions) > 0 {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(before.Subscriptions).Error; err != nil {
			return fmt.Errorf("failed to restore subscriptions: %w", err)
		}
	}
	if len(before.Payments) > 0 {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(before.Payments).Error; err != nil {
			return fmt.Errorf("failed to restore payments: %w", err)
		}
	}
	if len(before.Timeline) > 0 {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(before.Timeline).Error; err != nil {
			return fmt.Errorf("failed to restore timeline: %w", err)
		}
	}
	if len(before.GiftCodes) > 0 {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(before.GiftCodes).Error; err != nil {
			return fmt.Errorf("failed to restore gift codes: %w", err)
		}
	}
	if len(before.WhatsappLogs) > 0 {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(before.WhatsappLogs).Error; err != nil {
			return fmt.Errorf("failed to restore whatsapp logs: %w", err)
		}
	}
	for i := range before.OrphanedGiftCodes {
		code := &before.OrphanedGiftCodes[i]
		if err := tx.Model(&model.GiftCode{}).
			Where("id = ?", code.ID).
			Update("referrer_id", code.ReferrerID).Error; err != nil {
			return fmt.Errorf("failed to re-link gift code %s: %w", code.ID, err)
		}
	}
	return nil
}
