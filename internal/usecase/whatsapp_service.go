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

// WhatsappService archives sent messages and renders templates. The app
// never talks to WhatsApp itself; the operator copies rendered text into
// their own client and this service keeps the paper trail.
type WhatsappService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWhatsappService creates a new whatsapp service
func NewWhatsappService(db *gorm.DB, logger *zap.Logger) *WhatsappService {
	return &WhatsappService{db: db, logger: logger}
}

// LogMessage archives a sent message and logs WHATSAPP_SENT. The snapshot
// holds only the log id: reverting means deleting the archived copy.
func (s *WhatsappService) LogMessage(ctx context.Context, req dto.LogWhatsappRequest) (*model.WhatsappLog, error) {
	entry := &model.WhatsappLog{
		ID:           newID(),
		CustomerID:   req.CustomerID,
		Timestamp:    nowMillis(),
		Message:      req.Message,
		TemplateName: req.TemplateName,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to archive whatsapp message: %w", err)
		}
		label := entry.TemplateName
		if label == "" {
			label = "vrij bericht"
		}
		return appendTimelineEvent(tx, entry.CustomerID, model.EventWhatsappSent,
			fmt.Sprintf("WhatsApp-bericht verstuurd (%s).", label),
			&model.EventMeta{Before: &model.Snapshot{WhatsappLogID: entry.ID}})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListLogs returns a customer's archived messages, newest first.
func (s *WhatsappService) ListLogs(ctx context.Context, customerID string) ([]model.WhatsappLog, error) {
	var logs []model.WhatsappLog
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("timestamp DESC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list whatsapp logs: %w", err)
	}
	return logs, nil
}

// Render produces a message for a customer from a named template. When
// templateName is empty, the template is chosen from the first
// subscription's status.
func (s *WhatsappService) Render(ctx context.Context, customerID, templateName string, subscriptionIDs []string, extra map[string]string, settings *model.AppSettings) (string, string, error) {
	db := s.db.WithContext(ctx)

	var customer model.Customer
	if err := db.First(&customer, "id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", domainErrors.ErrCustomerNotFound
		}
		return "", "", fmt.Errorf("failed to load customer: %w", err)
	}

	var subs []model.Subscription
	if len(subscriptionIDs) > 0 {
		if err := db.Where("id IN ?", subscriptionIDs).Order("created_at").Find(&subs).Error; err != nil {
			return "", "", fmt.Errorf("failed to load subscriptions: %w", err)
		}
	}

	if templateName == "" && len(subs) > 0 {
		templateName = policy.PickTemplateNameForStream(&subs[0])
	}

	var template model.WhatsappTemplate
	if err := db.First(&template, "name = ?", templateName).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", fmt.Errorf("whatsapp template %q not found", templateName)
		}
		return "", "", fmt.Errorf("failed to load template: %w", err)
	}

	rendered := policy.RenderWhatsappTemplate(template.Message, &customer, settings, subs, extra)
	return rendered, template.Name, nil
}

// ListTemplates returns all message templates ordered by name.
func (s *WhatsappService) ListTemplates(ctx context.Context) ([]model.WhatsappTemplate, error) {
	var templates []model.WhatsappTemplate
	if err := s.db.WithContext(ctx).Order("name").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// SaveTemplate creates or updates a message template.
func (s *WhatsappService) SaveTemplate(ctx context.Context, template *model.WhatsappTemplate) error {
	if template.ID == "" {
		template.ID = newID()
	}
	if err := s.db.WithContext(ctx).Save(template).Error; err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

// DeleteTemplate removes a message template.
func (s *WhatsappService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&model.WhatsappTemplate{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// ListCountryTemplates returns the reusable country sets ordered by name.
func (s *WhatsappService) ListCountryTemplates(ctx context.Context) ([]model.CountryTemplate, error) {
	var templates []model.CountryTemplate
	if err := s.db.WithContext(ctx).Order("name").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list country templates: %w", err)
	}
	return templates, nil
}

// SaveCountryTemplate creates or updates a country set.
func (s *WhatsappService) SaveCountryTemplate(ctx context.Context, template *model.CountryTemplate) error {
	if template.ID == "" {
		template.ID = newID()
	}
	if err := s.db.WithContext(ctx).Save(template).Error; err != nil {
		return fmt.Errorf("failed to save country template: %w", err)
	}
	return nil
}

// DeleteCountryTemplate removes a country set.
func (s *WhatsappService) DeleteCountryTemplate(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&model.CountryTemplate{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete country template: %w", err)
	}
	return nil
}
