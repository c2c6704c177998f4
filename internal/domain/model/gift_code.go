package model

// GiftCodeReason enumerates why a code was issued
type GiftCodeReason string

const (
	GiftCodeReasonPromotie    GiftCodeReason = "Promotie"
	GiftCodeReasonCompensatie GiftCodeReason = "Compensatie"
	GiftCodeReasonSocial      GiftCodeReason = "Social"
	GiftCodeReasonWerving     GiftCodeReason = "Wervingsbeloning"
	GiftCodeReasonAnders      GiftCodeReason = "Anders"
)

// GiftCode is a redeemable credential. The human-typed code string is the
// primary key. A code is redeemable iff UsedAt is zero and now < ExpiresAt;
// once redeemed, the three used_* fields are set together and never cleared.
type GiftCode struct {
	ID                    string         `gorm:"primaryKey" json:"id"`
	CreatedAt             int64          `json:"created_at"`
	ExpiresAt             int64          `gorm:"index" json:"expires_at"`
	Reason                GiftCodeReason `json:"reason"`
	Note                  string         `json:"note,omitempty"`
	ReferrerID            string         `gorm:"index" json:"referrer_id,omitempty"`
	Milestone             int            `json:"milestone,omitempty"`
	ReceiverID            string         `json:"receiver_id,omitempty"`
	UsedAt                int64          `json:"used_at,omitempty"`
	UsedByCustomerID      string         `gorm:"index" json:"used_by_customer_id,omitempty"`
	UsedForSubscriptionID string         `json:"used_for_subscription_id,omitempty"`
}

// TableName specifies the table name for GORM
func (GiftCode) TableName() string {
	return "gift_codes"
}

// Redeemed reports whether the code has already been used.
func (g *GiftCode) Redeemed() bool {
	return g.UsedAt != 0
}
