package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SettingsID is the fixed primary key of the singleton settings row.
const SettingsID = "app"

// AppSettings holds pricing policy, duration policy, referral-reset policy,
// the PIN and the remote store credentials. It is configuration, not customer
// data: updates bypass the audit-logged mutation layer.
type AppSettings struct {
	ID                 string                   `gorm:"primaryKey" json:"id"`
	TestHours          int                      `json:"test_hours"`
	YearDays           int                      `json:"year_days"`
	RewardMilestones   datatypes.JSONSlice[int] `json:"reward_milestones"`
	PriceStandard      decimal.Decimal          `gorm:"type:decimal(10,2)" json:"price_standard"`
	PriceVrienden      decimal.Decimal          `gorm:"type:decimal(10,2)" json:"price_vrienden"`
	PriceErotiekAddon  decimal.Decimal          `gorm:"type:decimal(10,2)" json:"price_erotiek_addon"`
	ReferralResetYears int                      `json:"referral_reset_years"`
	PIN                string                   `gorm:"column:pin" json:"pin"`
	PINLockEnabled     bool                     `gorm:"column:pin_lock_enabled" json:"pin_lock_enabled"`
	SupabaseURL        string                   `json:"supabase_url"`
	SupabaseAnonKey    string                   `json:"supabase_anon_key"`
	LastSync           int64                    `json:"last_sync,omitempty"`
}

// TableName specifies the table name for GORM
func (AppSettings) TableName() string {
	return "settings"
}
