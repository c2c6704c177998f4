package errors

import "errors"

var (
	// ErrCustomerNotFound indicates the target customer does not exist
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrSubscriptionNotFound indicates the target subscription does not exist
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrGiftCodeNotFound indicates the referenced gift code does not exist
	ErrGiftCodeNotFound = errors.New("gift code not found")

	// ErrGiftCodeAlreadyUsed indicates a redemption attempt on a spent code
	ErrGiftCodeAlreadyUsed = errors.New("gift code already used")

	// ErrGiftCodeExpired indicates a redemption attempt past expires_at
	ErrGiftCodeExpired = errors.New("gift code expired")

	// ErrEventNotFound indicates the timeline event does not exist
	ErrEventNotFound = errors.New("timeline event not found")

	// ErrEventNotRevertible indicates the event carries no before snapshot
	// or its type is outside the revert allow-list
	ErrEventNotRevertible = errors.New("timeline event is not revertible")

	// ErrEventAlreadyReverted indicates an ACTION_REVERTED event already
	// references this event
	ErrEventAlreadyReverted = errors.New("timeline event already reverted")

	// ErrRewardAlreadyClaimed indicates the milestone was claimed before,
	// either as a free year or as a generated gift code
	ErrRewardAlreadyClaimed = errors.New("reward milestone already claimed")

	// ErrSettingsNotFound indicates the settings row has not been seeded
	ErrSettingsNotFound = errors.New("settings not found")

	// ErrRemoteNotConfigured indicates sync was requested without a remote
	// URL and key in the settings
	ErrRemoteNotConfigured = errors.New("remote store not configured")

	// ErrInvalidBackup indicates a backup document missing the expected
	// top-level table keys
	ErrInvalidBackup = errors.New("invalid backup file format")

	// ErrInvalidPIN indicates a failed PIN check on a gated operation
	ErrInvalidPIN = errors.New("invalid pin")
)
