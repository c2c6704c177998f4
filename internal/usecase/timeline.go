package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domainErrors "github.com/flmanager/flmanager/internal/domain/errors"
	"github.com/flmanager/flmanager/internal/domain/model"
)

func newID() string {
	return uuid.NewString()
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// appendTimelineEvent writes one audit event inside the caller's transaction.
// Errors must propagate so the surrounding transaction rolls back; a data
// write without its audit pair must never commit.
func appendTimelineEvent(tx *gorm.DB, customerID string, eventType model.TimelineEventType, message string, meta *model.EventMeta) error {
	event := &model.TimelineEvent{
		ID:         newID(),
		CustomerID: customerID,
		Timestamp:  nowMillis(),
		Type:       eventType,
		Message:    message,
		Meta:       meta,
	}
	return tx.Create(event).Error
}

// TimelineService reads the audit log. Writing happens inside the mutation
// services; this service never appends events of its own.
type TimelineService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTimelineService creates a new timeline service
func NewTimelineService(db *gorm.DB, logger *zap.Logger) *TimelineService {
	return &TimelineService{db: db, logger: logger}
}

// Get loads one event by id.
func (s *TimelineService) Get(ctx context.Context, id string) (*model.TimelineEvent, error) {
	var event model.TimelineEvent
	if err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

// ListByCustomer returns a customer's events, newest first.
func (s *TimelineService) ListByCustomer(ctx context.Context, customerID string) ([]model.TimelineEvent, error) {
	var events []model.TimelineEvent
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("timestamp DESC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}
	return events, nil
}

// List returns the most recent events across all customers, bounded by
// limit. A non-positive limit returns the default page of 100.
func (s *TimelineService) List(ctx context.Context, limit int) ([]model.TimelineEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []model.TimelineEvent
	if err := s.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}
	return events, nil
}
