package model

import "github.com/shopspring/decimal"

func init() {
	// Payment amounts must cross the sync and backup boundaries as JSON
	// numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Payment is an immutable financial record tied to one customer and one
// subscription. The mutation layer only ever adds payments.
type Payment struct {
	ID             string          `gorm:"primaryKey" json:"id"`
	CustomerID     string          `gorm:"not null;index" json:"customer_id"`
	SubscriptionID string          `gorm:"index" json:"subscription_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	PaymentDate    int64           `gorm:"index" json:"payment_date"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Notes          string          `json:"notes,omitempty"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}
