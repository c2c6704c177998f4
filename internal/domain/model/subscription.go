package model

import "gorm.io/datatypes"

// SubscriptionStatus is the lifecycle state of a stream entitlement
type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "ACTIVE"
	SubscriptionStatusTest    SubscriptionStatus = "TEST"
	SubscriptionStatusExpired SubscriptionStatus = "EXPIRED"
	SubscriptionStatusBlocked SubscriptionStatus = "BLOCKED"
)

// PaymentMethod enumerates how the operator gets paid
type PaymentMethod string

const (
	PaymentMethodTikkie   PaymentMethod = "Tikkie"
	PaymentMethodContant  PaymentMethod = "Contant"
	PaymentMethodGratis   PaymentMethod = "Gratis"
	PaymentMethodVrienden PaymentMethod = "Vrienden prijs"
)

// Subscription is a stream entitlement owned by exactly one customer.
// All timestamps are epoch milliseconds, matching the wire and backup shapes.
type Subscription struct {
	ID            string                      `gorm:"primaryKey" json:"id"`
	CustomerID    string                      `gorm:"not null;index" json:"customer_id"`
	Label         string                      `json:"label"`
	Status        SubscriptionStatus          `gorm:"index" json:"status"`
	StartAt       int64                       `json:"start_at"`
	EndAt         int64                       `gorm:"index" json:"end_at"`
	Paid          bool                        `json:"paid"`
	Free          bool                        `json:"free"`
	Erotiek       bool                        `json:"erotiek"`
	Countries     datatypes.JSONSlice[string] `json:"countries"`
	PaymentMethod PaymentMethod               `json:"payment_method"`
	MAC           string                      `gorm:"column:mac;index" json:"mac,omitempty"`
	AppCode       string                      `json:"app_code,omitempty"`
	M3UURL        string                      `gorm:"column:m3u_url" json:"m3u_url,omitempty"`
	CreatedAt     int64                       `json:"created_at"`
	UpdatedAt     int64                       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}
