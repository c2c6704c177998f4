package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/flmanager/flmanager/internal/domain/dto"
	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
	"github.com/flmanager/flmanager/internal/domain/policy"
)

// SubscriptionService handles subscription mutations, including gift code
// redemption and renewals. Pricing and duration policy come from the
// settings passed in by the caller, never from a global.
type SubscriptionService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(db *gorm.DB, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{db: db, logger: logger}
}

// Save creates the subscription when req.ID is empty and updates it
// otherwise. On create with a gift code, the code is marked redeemed in the
// same transaction; a spent or expired code fails the whole operation.
func (s *SubscriptionService) Save(ctx context.Context, req dto.SaveSubscriptionRequest, settings *model.AppSettings) (*model.Subscription, error) {
	var saved *model.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.ID != "" {
			return s.update(tx, req, &saved)
		}
		return s.create(tx, req, settings, &saved)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *SubscriptionService) update(tx *gorm.DB, req dto.SaveSubscriptionRequest, saved **model.Subscription) error {
	var sub model.Subscription
	if err := tx.First(&sub, "id = ?", req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainErrors.ErrSubscriptionNotFound
		}
		return fmt.Errorf("failed to load subscription: %w", err)
	}

	before := sub
	sub.Label = req.Label
	sub.Status = req.Status
	sub.StartAt = req.StartAt
	sub.EndAt = req.EndAt
	sub.Paid = req.Paid
	sub.Free = req.Free
	sub.Erotiek = req.Erotiek
	sub.Countries = datatypes.NewJSONSlice(req.Countries)
	sub.PaymentMethod = req.PaymentMethod
	sub.MAC = req.MAC
	sub.AppCode = req.AppCode
	sub.M3UURL = req.M3UURL
	sub.UpdatedAt = nowMillis()

	if err := tx.Save(&sub).Error; err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	*saved = &sub

	return appendTimelineEvent(tx, sub.CustomerID, model.EventSubscriptionModified,
		fmt.Sprintf("Stream '%s' bijgewerkt.", before.Label),
		&model.EventMeta{
			Before: &model.Snapshot{Subscription: &before},
			After:  &model.Snapshot{Subscription: &sub},
		})
}

func (s *SubscriptionService) create(tx *gorm.DB, req dto.SaveSubscriptionRequest, settings *model.AppSettings, saved **model.Subscription) error {
	now := nowMillis()
	startAt := req.StartAt
	if startAt == 0 {
		startAt = now
	}
	endAt := req.EndAt
	if endAt == 0 {
		endAt = policy.ComputeEndDate(startAt, req.Status, settings)
	}

	sub := &model.Subscription{
		ID:            newID(),
		CustomerID:    req.CustomerID,
		Label:         req.Label,
		Status:        req.Status,
		StartAt:       startAt,
		EndAt:         endAt,
		Paid:          req.Paid,
		Free:          req.Free,
		Erotiek:       req.Erotiek,
		Countries:     datatypes.NewJSONSlice(req.Countries),
		PaymentMethod: req.PaymentMethod,
		MAC:           req.MAC,
		AppCode:       req.AppCode,
		M3UURL:        req.M3UURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := tx.Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	*saved = sub

	if err := appendTimelineEvent(tx, sub.CustomerID, model.EventSubscriptionCreated,
		fmt.Sprintf("Nieuwe stream '%s' aangemaakt.", sub.Label),
		&model.EventMeta{Before: &model.Snapshot{Created: true, Subscription: sub}}); err != nil {
		return err
	}

	if req.GiftCodeID != "" {
		if err := s.redeemGiftCode(tx, req.GiftCodeID, sub); err != nil {
			return err
		}
	}
	return nil
}

// redeemGiftCode marks the code used and records the zero-amount activation
// payment. The three used_* fields are set together; the guarded update
// fails against a concurrently spent code.
func (s *SubscriptionService) redeemGiftCode(tx *gorm.DB, codeID string, sub *model.Subscription) error {
	var code model.GiftCode
	if err := tx.First(&code, "id = ?", codeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainErrors.ErrGiftCodeNotFound
		}
		return fmt.Errorf("failed to load gift code: %w", err)
	}
	if code.Redeemed() {
		return domainErrors.ErrGiftCodeAlreadyUsed
	}
	now := nowMillis()
	if code.ExpiresAt != 0 && now >= code.ExpiresAt {
		return domainErrors.ErrGiftCodeExpired
	}

	res := tx.Model(&model.GiftCode{}).
		Where("id = ? AND (used_at = 0 OR used_at IS NULL)", codeID).
		Updates(map[string]any{
			"used_at":                  now,
			"used_by_customer_id":      sub.CustomerID,
			"used_for_subscription_id": sub.ID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to redeem gift code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domainErrors.ErrGiftCodeAlreadyUsed
	}

	payment := &model.Payment{
		ID:             newID(),
		CustomerID:     sub.CustomerID,
		SubscriptionID: sub.ID,
		Amount:         decimal.Zero,
		PaymentDate:    now,
		PaymentMethod:  model.PaymentMethodGratis,
		Notes:          fmt.Sprintf("Geactiveerd met cadeaucode %s", codeID),
	}
	if err := tx.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to record gift code payment: %w", err)
	}
	return nil
}

// Renew extends a subscription by the policy duration: from its current
// expiry when still active, from today when already expired. Status flips
// to ACTIVE, paid to true, and the computed price is recorded as a payment.
func (s *SubscriptionService) Renew(ctx context.Context, id string, settings *model.AppSettings) (*model.Subscription, error) {
	var renewed *model.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub model.Subscription
		if err := tx.First(&sub, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrSubscriptionNotFound
			}
			return fmt.Errorf("failed to load subscription: %w", err)
		}

		before := sub
		newEnd := policy.ComputeRenewalDate(sub.EndAt, time.Now(), settings)

		sub.EndAt = newEnd
		sub.Status = model.SubscriptionStatusActive
		sub.Paid = true
		sub.Free = false
		sub.UpdatedAt = nowMillis()
		if err := tx.Save(&sub).Error; err != nil {
			return fmt.Errorf("failed to renew subscription: %w", err)
		}
		renewed = &sub

		price := policy.SubscriptionPrice(&sub, settings)
		payment := &model.Payment{
			ID:             newID(),
			CustomerID:     sub.CustomerID,
			SubscriptionID: sub.ID,
			Amount:         price,
			PaymentDate:    nowMillis(),
			PaymentMethod:  sub.PaymentMethod,
			Notes:          "Automatische betaling voor verlenging.",
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to record renewal payment: %w", err)
		}

		return appendTimelineEvent(tx, sub.CustomerID, model.EventSubscriptionRenewed,
			fmt.Sprintf("Stream '%s' verlengd. Nieuwe einddatum: %s.",
				sub.Label, time.UnixMilli(newEnd).Format("02-01-2006")),
			&model.EventMeta{
				Before: &model.Snapshot{Subscription: &before},
				After:  &model.Snapshot{Subscription: &sub},
			})
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Subscription renewed",
		zap.String("subscription_id", id),
		zap.Int64("new_end_at", renewed.EndAt))
	return renewed, nil
}

// Delete removes a subscription and logs SUBSCRIPTION_DELETED with the full
// before snapshot.
func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub model.Subscription
		if err := tx.First(&sub, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrSubscriptionNotFound
			}
			return fmt.Errorf("failed to load subscription: %w", err)
		}

		if err := tx.Delete(&model.Subscription{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}

		return appendTimelineEvent(tx, sub.CustomerID, model.EventSubscriptionDeleted,
			fmt.Sprintf("Stream '%s' verwijderd.", sub.Label),
			&model.EventMeta{Before: &model.Snapshot{Subscription: &sub}})
	})
}

// ListByCustomer returns a customer's subscriptions ordered by creation.
func (s *SubscriptionService) ListByCustomer(ctx context.Context, customerID string) ([]model.Subscription, error) {
	var subs []model.Subscription
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// ListExpiring returns active subscriptions ending within the window.
func (s *SubscriptionService) ListExpiring(ctx context.Context, within time.Duration) ([]model.Subscription, error) {
	now := time.Now().UnixMilli()
	until := time.Now().Add(within).UnixMilli()
	var subs []model.Subscription
	if err := s.db.WithContext(ctx).
		Where("status = ? AND end_at > ? AND end_at <= ?", model.SubscriptionStatusActive, now, until).
		Order("end_at").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list expiring subscriptions: %w", err)
	}
	return subs, nil
}
