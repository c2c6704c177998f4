package dto

import "github.com/flmanager/flmanager/internal/domain/model"

// CreateCustomerRequest is the payload for creating a customer
type CreateCustomerRequest struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone"`
	Notes      string `json:"notes"`
	ReferrerID string `json:"referrer_id"`
}

// UpdateCustomerRequest is a partial-field patch; nil means "leave unchanged"
type UpdateCustomerRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

// SaveSubscriptionRequest creates a subscription when ID is empty and
// updates it otherwise. GiftCodeID redeems a gift code as part of the same
// transaction on create.
type SaveSubscriptionRequest struct {
	ID            string                   `json:"id"`
	CustomerID    string                   `json:"customer_id" validate:"required"`
	Label         string                   `json:"label"`
	Status        model.SubscriptionStatus `json:"status" validate:"required,oneof=ACTIVE TEST EXPIRED BLOCKED"`
	StartAt       int64                    `json:"start_at"`
	EndAt         int64                    `json:"end_at"`
	Paid          bool                     `json:"paid"`
	Free          bool                     `json:"free"`
	Erotiek       bool                     `json:"erotiek"`
	Countries     []string                 `json:"countries"`
	PaymentMethod model.PaymentMethod      `json:"payment_method" validate:"required"`
	MAC           string                   `json:"mac"`
	AppCode       string                   `json:"app_code"`
	M3UURL        string                   `json:"m3u_url"`
	GiftCodeID    string                   `json:"gift_code_id"`
}

// CreateGiftCodeRequest creates a gift code; ID is generated when empty.
type CreateGiftCodeRequest struct {
	ID         string               `json:"id"`
	ExpiresAt  int64                `json:"expires_at"`
	Reason     model.GiftCodeReason `json:"reason" validate:"required"`
	Note       string               `json:"note"`
	ReferrerID string               `json:"referrer_id"`
	Milestone  int                  `json:"milestone"`
	ReceiverID string               `json:"receiver_id"`
}

// ClaimRewardRequest claims a referral milestone for a customer, either as
// a free year on one of their own streams or as a generated gift code.
type ClaimRewardRequest struct {
	CustomerID     string `json:"customer_id" validate:"required"`
	Milestone      int    `json:"milestone" validate:"required,gt=0"`
	SubscriptionID string `json:"subscription_id"`
}

// LogWhatsappRequest archives a sent message
type LogWhatsappRequest struct {
	CustomerID   string `json:"customer_id" validate:"required"`
	Message      string `json:"message" validate:"required"`
	TemplateName string `json:"template_name"`
}

// UnlockRequest exchanges the PIN for a short-lived unlock token
type UnlockRequest struct {
	PIN string `json:"pin" validate:"required"`
}

// ClaimableMilestone is one newly claimable referral threshold
type ClaimableMilestone struct {
	Milestone     int `json:"milestone"`
	ReferralCount int `json:"referralCount"`
}

// ClaimableReward pairs a customer with one claimable milestone
type ClaimableReward struct {
	Customer      model.Customer `json:"customer"`
	ReferralCount int            `json:"referralCount"`
	Milestone     int            `json:"milestone"`
}
