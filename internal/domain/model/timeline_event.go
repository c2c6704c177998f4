package model

// TimelineEventType is the closed set of audit event kinds
type TimelineEventType string

const (
	EventCustomerCreated         TimelineEventType = "CUSTOMER_CREATED"
	EventCustomerModified        TimelineEventType = "CUSTOMER_MODIFIED"
	EventCustomerDeleted         TimelineEventType = "CUSTOMER_DELETED"
	EventSubscriptionCreated     TimelineEventType = "SUBSCRIPTION_CREATED"
	EventSubscriptionModified    TimelineEventType = "SUBSCRIPTION_MODIFIED"
	EventSubscriptionRenewed     TimelineEventType = "SUBSCRIPTION_RENEWED"
	EventSubscriptionDeleted     TimelineEventType = "SUBSCRIPTION_DELETED"
	EventSubscriptionStatus      TimelineEventType = "SUBSCRIPTION_STATUS_CHANGED"
	EventGiftCodeCreated         TimelineEventType = "GIFT_CODE_CREATED"
	EventGiftCodeDeleted         TimelineEventType = "GIFT_CODE_DELETED"
	EventRewardYearApplied       TimelineEventType = "REWARD_YEAR_APPLIED"
	EventRewardGiftCodeGenerated TimelineEventType = "REWARD_GIFT_CODE_GENERATED"
	EventWhatsappSent            TimelineEventType = "WHATSAPP_SENT"
	EventNoteAdded               TimelineEventType = "NOTE_ADDED"
	EventActionReverted          TimelineEventType = "ACTION_REVERTED"
)

// SystemCustomerID is used as the event subject for records that are not
// owned by a customer, such as promotional gift codes.
const SystemCustomerID = "SYSTEM"

// Snapshot carries the pre-mutation state captured by a timeline event.
// Exactly one of the single-record fields, or the cascade bundle, is
// populated depending on the event type. Created marks records that did not
// exist before the logged action: reverting them means deleting them.
type Snapshot struct {
	Created bool `json:"created,omitempty"`

	Customer      *Customer     `json:"customer,omitempty"`
	Subscription  *Subscription `json:"subscription,omitempty"`
	GiftCode      *GiftCode     `json:"gift_code,omitempty"`
	WhatsappLogID string        `json:"whatsapp_log_id,omitempty"`

	// Cascade bundle for customer deletion. Original ids are preserved, so
	// restoring is a plain re-insert with no re-linking.
	Subscriptions []Subscription  `json:"subscriptions,omitempty"`
	Payments      []Payment       `json:"payments,omitempty"`
	Timeline      []TimelineEvent `json:"timeline,omitempty"`
	GiftCodes     []GiftCode      `json:"gift_codes,omitempty"`
	WhatsappLogs  []WhatsappLog   `json:"whatsapp_logs,omitempty"`

	// Codes the deleted customer earned but never redeemed keep existing
	// with their referrer_id cleared; the snapshot remembers the original
	// link so a revert can restore it.
	OrphanedGiftCodes []GiftCode `json:"orphaned_gift_codes,omitempty"`
}

// EventMeta is the typed payload attached to a timeline event. Which fields
// are set depends on the event type; Before is what the revert engine
// restores.
type EventMeta struct {
	Before *Snapshot `json:"before,omitempty"`
	After  *Snapshot `json:"after,omitempty"`

	Milestone       int    `json:"milestone,omitempty"`
	SubscriptionID  string `json:"subscription_id,omitempty"`
	GiftCodeID      string `json:"gift_code_id,omitempty"`
	ChangedFields   string `json:"changed_fields,omitempty"`
	RevertedEventID string `json:"reverted_event_id,omitempty"`
}

// TimelineEvent is an immutable audit record. Events are append-only: a
// revert appends an ACTION_REVERTED event instead of touching the original.
type TimelineEvent struct {
	ID         string            `gorm:"primaryKey" json:"id"`
	CustomerID string            `gorm:"not null;index" json:"customer_id"`
	Timestamp  int64             `gorm:"index" json:"timestamp"`
	Type       TimelineEventType `gorm:"index" json:"type"`
	Message    string            `json:"message"`
	Meta       *EventMeta        `gorm:"serializer:json" json:"meta,omitempty"`
}

// TableName specifies the table name for GORM
func (TimelineEvent) TableName() string {
	return "timeline"
}

// revertibleTypes is the allow-list of event types the revert engine knows
// how to undo. ACTION_REVERTED is deliberately absent.
var revertibleTypes = map[TimelineEventType]bool{
	EventCustomerDeleted:      true,
	EventSubscriptionCreated:  true,
	EventSubscriptionModified: true,
	EventSubscriptionRenewed:  true,
	EventSubscriptionDeleted:  true,
	EventRewardYearApplied:    true,
	EventGiftCodeCreated:      true,
	EventGiftCodeDeleted:      true,
	EventWhatsappSent:         true,
}

// Revertible reports whether the event can be undone: its type must be in
// the allow-list and a before snapshot must be present.
func (e *TimelineEvent) Revertible() bool {
	return revertibleTypes[e.Type] && e.Meta != nil && e.Meta.Before != nil
}
