package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flmanager/flmanager/internal/domain/model"
)

// PaymentService reads the payment ledger. Payments are written by the
// subscription and rewards flows, never directly.
type PaymentService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *gorm.DB, logger *zap.Logger) *PaymentService {
	return &PaymentService{db: db, logger: logger}
}

// ListByCustomer returns a customer's payments, newest first.
func (s *PaymentService) ListByCustomer(ctx context.Context, customerID string) ([]model.Payment, error) {
	var payments []model.Payment
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("payment_date DESC").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// List returns all payments, newest first.
func (s *PaymentService) List(ctx context.Context) ([]model.Payment, error) {
	var payments []model.Payment
	if err := s.db.WithContext(ctx).
		Order("payment_date DESC").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// TotalRevenue sums all recorded payments.
func (s *PaymentService) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var payments []model.Payment
	if err := s.db.WithContext(ctx).Find(&payments).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to load payments: %w", err)
	}
	total := decimal.Zero
	for i := range payments {
		total = total.Add(payments[i].Amount)
	}
	return total, nil
}
