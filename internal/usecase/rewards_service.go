package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flmanager/flmanager/internal/domain/dto"
	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
	"github.com/flmanager/flmanager/internal/domain/policy"
)

// RewardsService computes referral milestones and applies claimed rewards.
// A referral only counts while the referred customer holds an ACTIVE
// subscription started within the reset window, so lapsed referrals age out.
type RewardsService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRewardsService creates a new rewards service
func NewRewardsService(db *gorm.DB, logger *zap.Logger) *RewardsService {
	return &RewardsService{db: db, logger: logger}
}

// ClaimableMilestones returns the thresholds the customer has reached but not
// yet claimed, each paired with the current valid referral count.
func (s *RewardsService) ClaimableMilestones(ctx context.Context, customerID string, settings *model.AppSettings) ([]dto.ClaimableMilestone, error) {
	return s.claimableMilestones(s.db.WithContext(ctx), customerID, settings)
}

func (s *RewardsService) claimableMilestones(db *gorm.DB, customerID string, settings *model.AppSettings) ([]dto.ClaimableMilestone, error) {
	if len(settings.RewardMilestones) == 0 {
		return nil, nil
	}

	count, err := s.validReferralCount(db, customerID, settings)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	claimed, err := s.claimedMilestones(db, customerID)
	if err != nil {
		return nil, err
	}

	var claimable []dto.ClaimableMilestone
	for _, milestone := range settings.RewardMilestones {
		if count >= int64(milestone) && !claimed[milestone] {
			claimable = append(claimable, dto.ClaimableMilestone{
				Milestone:     milestone,
				ReferralCount: int(count),
			})
		}
	}
	return claimable, nil
}

// validReferralCount counts ACTIVE subscriptions held by customers the
// referrer brought in, restricted to subscriptions started inside the reset
// window.
func (s *RewardsService) validReferralCount(db *gorm.DB, customerID string, settings *model.AppSettings) (int64, error) {
	var threshold int64
	if settings.ReferralResetYears > 0 {
		threshold = time.Now().AddDate(-settings.ReferralResetYears, 0, 0).UnixMilli()
	}

	var count int64
	err := db.Model(&model.Subscription{}).
		Joins("JOIN customers ON customers.id = subscriptions.customer_id").
		Where("customers.referrer_id = ?", customerID).
		Where("subscriptions.status = ?", model.SubscriptionStatusActive).
		Where("subscriptions.start_at >= ?", threshold).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}
	return count, nil
}

// claimedMilestones collects the milestone numbers already rewarded to this
// customer, across both reward forms.
func (s *RewardsService) claimedMilestones(db *gorm.DB, customerID string) (map[int]bool, error) {
	var events []model.TimelineEvent
	err := db.
		Where("customer_id = ? AND type IN ?", customerID, []model.TimelineEventType{
			model.EventRewardYearApplied,
			model.EventRewardGiftCodeGenerated,
		}).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reward events: %w", err)
	}

	claimed := make(map[int]bool, len(events))
	for _, event := range events {
		if event.Meta != nil && event.Meta.Milestone > 0 {
			claimed[event.Meta.Milestone] = true
		}
	}
	return claimed, nil
}

// ClaimableRewards scans every customer and returns all open milestones,
// sorted by customer name then milestone.
func (s *RewardsService) ClaimableRewards(ctx context.Context, settings *model.AppSettings) ([]dto.ClaimableReward, error) {
	db := s.db.WithContext(ctx)

	var customers []model.Customer
	if err := db.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	var rewards []dto.ClaimableReward
	for i := range customers {
		milestones, err := s.claimableMilestones(db, customers[i].ID, settings)
		if err != nil {
			s.logger.Warn("Failed to compute milestones for customer",
				zap.String("customer_id", customers[i].ID), zap.Error(err))
			continue
		}
		for _, m := range milestones {
			rewards = append(rewards, dto.ClaimableReward{
				Customer:      customers[i],
				ReferralCount: m.ReferralCount,
				Milestone:     m.Milestone,
			})
		}
	}

	sort.Slice(rewards, func(i, j int) bool {
		if rewards[i].Customer.Name != rewards[j].Customer.Name {
			return rewards[i].Customer.Name < rewards[j].Customer.Name
		}
		return rewards[i].Milestone < rewards[j].Milestone
	})
	return rewards, nil
}

// ClaimRewardYear grants a free year on one of the customer's own streams:
// the subscription's end date is pushed out by the renewal policy and the
// milestone is marked claimed, with no payment recorded.
func (s *RewardsService) ClaimRewardYear(ctx context.Context, req dto.ClaimRewardRequest, settings *model.AppSettings) (*model.Subscription, error) {
	var extended *model.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.guardUnclaimed(tx, req.CustomerID, req.Milestone); err != nil {
			return err
		}

		var sub model.Subscription
		if err := tx.First(&sub, "id = ?", req.SubscriptionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrSubscriptionNotFound
			}
			return fmt.Errorf("failed to load subscription: %w", err)
		}
		if sub.CustomerID != req.CustomerID {
			// The free year only applies to the claimant's own stream.
			return domainErrors.ErrSubscriptionNotFound
		}

		before := sub
		sub.EndAt = policy.ComputeRenewalDate(sub.EndAt, time.Now(), settings)
		sub.UpdatedAt = nowMillis()
		if err := tx.Save(&sub).Error; err != nil {
			return fmt.Errorf("failed to extend subscription: %w", err)
		}
		extended = &sub

		return appendTimelineEvent(tx, req.CustomerID, model.EventRewardYearApplied,
			fmt.Sprintf("Beloning voor mijlpaal %d toegepast: 1 jaar gratis voor stream %s.",
				req.Milestone, sub.Label),
			&model.EventMeta{
				Milestone:      req.Milestone,
				SubscriptionID: sub.ID,
				Before:         &model.Snapshot{Subscription: &before},
				After:          &model.Snapshot{Subscription: &sub},
			})
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Reward year applied",
		zap.String("customer_id", req.CustomerID),
		zap.Int("milestone", req.Milestone))
	return extended, nil
}

// ClaimRewardGiftCode converts a milestone into a transferable gift code that
// expires after a year. The issued code keeps pointing at the earner through
// referrer_id.
func (s *RewardsService) ClaimRewardGiftCode(ctx context.Context, req dto.ClaimRewardRequest) (*model.GiftCode, error) {
	var code *model.GiftCode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.guardUnclaimed(tx, req.CustomerID, req.Milestone); err != nil {
			return err
		}

		var customer model.Customer
		if err := tx.First(&customer, "id = ?", req.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrCustomerNotFound
			}
			return fmt.Errorf("failed to load customer: %w", err)
		}

		now := nowMillis()
		code = &model.GiftCode{
			ID:         policy.GenerateGiftCode(),
			CreatedAt:  now,
			ExpiresAt:  time.UnixMilli(now).AddDate(1, 0, 0).UnixMilli(),
			Reason:     model.GiftCodeReasonWerving,
			Note:       fmt.Sprintf("Verdiend door %s voor mijlpaal %d", customer.Name, req.Milestone),
			ReferrerID: customer.ID,
			Milestone:  req.Milestone,
		}
		if err := tx.Create(code).Error; err != nil {
			return fmt.Errorf("failed to create reward gift code: %w", err)
		}

		if err := appendTimelineEvent(tx, customer.ID, model.EventGiftCodeCreated,
			fmt.Sprintf("Cadeaucode %s aangemaakt (%s).", code.ID, code.Reason),
			&model.EventMeta{
				GiftCodeID: code.ID,
				Before:     &model.Snapshot{Created: true, GiftCode: code},
			}); err != nil {
			return err
		}

		return appendTimelineEvent(tx, customer.ID, model.EventRewardGiftCodeGenerated,
			fmt.Sprintf("Beloning voor mijlpaal %d geclaimd: cadeaucode %s gegenereerd.",
				req.Milestone, code.ID),
			&model.EventMeta{
				Milestone:  req.Milestone,
				GiftCodeID: code.ID,
			})
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Reward gift code generated",
		zap.String("customer_id", req.CustomerID),
		zap.Int("milestone", req.Milestone),
		zap.String("gift_code_id", code.ID))
	return code, nil
}

// guardUnclaimed rejects a second claim of the same milestone.
func (s *RewardsService) guardUnclaimed(tx *gorm.DB, customerID string, milestone int) error {
	claimed, err := s.claimedMilestones(tx, customerID)
	if err != nil {
		return err
	}
	if claimed[milestone] {
		return domainErrors.ErrRewardAlreadyClaimed
	}
	return nil
}
