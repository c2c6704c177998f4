package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flmanager/flmanager/internal/domain/dto"
	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
)

// CustomerService handles customer mutations. Every mutation pairs its data
// write with exactly one timeline event inside a single transaction.
type CustomerService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(db *gorm.DB, logger *zap.Logger) *CustomerService {
	return &CustomerService{db: db, logger: logger}
}

// Create adds a customer and logs CUSTOMER_CREATED.
func (s *CustomerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*model.Customer, error) {
	now := nowMillis()
	customer := &model.Customer{
		ID:         newID(),
		Name:       req.Name,
		Phone:      req.Phone,
		Notes:      req.Notes,
		ReferrerID: req.ReferrerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(customer).Error; err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}
		return appendTimelineEvent(tx, customer.ID, model.EventCustomerCreated,
			fmt.Sprintf("Klant aangemaakt: %s.", customer.Name),
			&model.EventMeta{Before: &model.Snapshot{Created: true, Customer: customer}})
	})
	if err != nil {
		s.logger.Error("Failed to create customer", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}
	return customer, nil
}

// Update applies a partial-field patch. A no-op patch (no fields differ)
// writes no timeline event.
func (s *CustomerService) Update(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*model.Customer, error) {
	var updated *model.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := tx.First(&customer, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrCustomerNotFound
			}
			return fmt.Errorf("failed to load customer: %w", err)
		}

		before := customer
		var changed []string
		if req.Name != nil && *req.Name != customer.Name {
			customer.Name = *req.Name
			changed = append(changed, "name")
		}
		if req.Phone != nil && *req.Phone != customer.Phone {
			customer.Phone = *req.Phone
			changed = append(changed, "phone")
		}
		if req.Notes != nil && *req.Notes != customer.Notes {
			customer.Notes = *req.Notes
			changed = append(changed, "notes")
		}
		if len(changed) == 0 {
			updated = &before
			return nil
		}

		customer.UpdatedAt = nowMillis()
		if err := tx.Save(&customer).Error; err != nil {
			return fmt.Errorf("failed to update customer: %w", err)
		}
		updated = &customer

		return appendTimelineEvent(tx, id, model.EventCustomerModified,
			fmt.Sprintf("Klantgegevens bijgewerkt (%s).", strings.Join(changed, ", ")),
			&model.EventMeta{
				Before:        &model.Snapshot{Customer: &before},
				After:         &model.Snapshot{Customer: &customer},
				ChangedFields: strings.Join(changed, ","),
			})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a customer and cascades to every dependent record. The
// full bundle is snapshotted before anything is deleted so the logged
// CUSTOMER_DELETED event can restore all of it in one revert. Gift codes the
// customer redeemed are deleted; codes they merely earned are orphaned by
// clearing referrer_id, since an unused code retains standalone value.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := tx.First(&customer, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrCustomerNotFound
			}
			return fmt.Errorf("failed to load customer: %w", err)
		}

		// Gather the snapshot bundle before deleting anything.
		var subscriptions []model.Subscription
		if err := tx.Where("customer_id = ?", id).Find(&subscriptions).Error; err != nil {
			return fmt.Errorf("failed to collect subscriptions: %w", err)
		}
		var payments []model.Payment
		if err := tx.Where("customer_id = ?", id).Find(&payments).Error; err != nil {
			return fmt.Errorf("failed to collect payments: %w", err)
		}
		var timeline []model.TimelineEvent
		if err := tx.Where("customer_id = ?", id).Find(&timeline).Error; err != nil {
			return fmt.Errorf("failed to collect timeline: %w", err)
		}
		var whatsappLogs []model.WhatsappLog
		if err := tx.Where("customer_id = ?", id).Find(&whatsappLogs).Error; err != nil {
			return fmt.Errorf("failed to collect whatsapp logs: %w", err)
		}
		var redeemedCodes []model.GiftCode
		if err := tx.Where("used_by_customer_id = ?", id).Find(&redeemedCodes).Error; err != nil {
			return fmt.Errorf("failed to collect redeemed gift codes: %w", err)
		}
		var earnedCodes []model.GiftCode
		if err := tx.Where("referrer_id = ? AND used_by_customer_id <> ?", id, id).Find(&earnedCodes).Error; err != nil {
			return fmt.Errorf("failed to collect earned gift codes: %w", err)
		}

		if err := tx.Where("customer_id = ?", id).Delete(&model.Subscription{}).Error; err != nil {
			return fmt.Errorf("failed to delete subscriptions: %w", err)
		}
		if err := tx.Where("customer_id = ?", id).Delete(&model.Payment{}).Error; err != nil {
			return fmt.Errorf("failed to delete payments: %w", err)
		}
		if err := tx.Where("customer_id = ?", id).Delete(&model.TimelineEvent{}).Error; err != nil {
			return fmt.Errorf("failed to delete timeline: %w", err)
		}
		if err := tx.Where("customer_id = ?", id).Delete(&model.WhatsappLog{}).Error; err != nil {
			return fmt.Errorf("failed to delete whatsapp logs: %w", err)
		}
		if len(redeemedCodes) > 0 {
			if err := tx.Where("used_by_customer_id = ?", id).Delete(&model.GiftCode{}).Error; err != nil {
				return fmt.Errorf("failed to delete redeemed gift codes: %w", err)
			}
		}
		if len(earnedCodes) > 0 {
			if err := tx.Model(&model.GiftCode{}).
				Where("referrer_id = ? AND used_by_customer_id <> ?", id, id).
				Update("referrer_id", "").Error; err != nil {
				return fmt.Errorf("failed to orphan earned gift codes: %w", err)
			}
		}
		if err := tx.Delete(&model.Customer{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete customer: %w", err)
		}

		return appendTimelineEvent(tx, id, model.EventCustomerDeleted,
			fmt.Sprintf("Klant '%s' en alle bijbehorende data verwijderd.", customer.Name),
			&model.EventMeta{Before: &model.Snapshot{
				Customer:          &customer,
				Subscriptions:     subscriptions,
				Payments:          payments,
				Timeline:          timeline,
				GiftCodes:         redeemedCodes,
				WhatsappLogs:      whatsappLogs,
				OrphanedGiftCodes: earnedCodes,
			}})
	})
	if err != nil {
		if !errors.Is(err, domainErrors.ErrCustomerNotFound) {
			s.logger.Error("Failed to delete customer", zap.String("customer_id", id), zap.Error(err))
		}
		return err
	}
	s.logger.Info("Customer deleted", zap.String("customer_id", id))
	return nil
}

// Get loads one customer by id.
func (s *CustomerService) Get(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	if err := s.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}

// List returns all customers ordered by name.
func (s *CustomerService) List(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	if err := s.db.WithContext(ctx).Order("name").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}
