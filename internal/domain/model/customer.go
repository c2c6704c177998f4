package model

// Customer is a node in the referral graph. ReferrerID is a weak reference:
// the referenced customer may be deleted without touching this row.
type Customer struct {
	ID         string `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"not null;index" json:"name"`
	Phone      string `json:"phone,omitempty"`
	Notes      string `json:"notes,omitempty"`
	ReferrerID string `gorm:"index" json:"referrer_id,omitempty"`
	CreatedAt  int64  `gorm:"index" json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Customer) TableName() string {
	return "customers"
}
