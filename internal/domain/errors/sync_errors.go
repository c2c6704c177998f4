package errors

import (
	"errors"
	"fmt"
)

// Sync phases for error context
const (
	SyncPhasePush    = "push"
	SyncPhasePull    = "pull"
	SyncPhaseRestore = "restore"
	SyncPhaseHealth  = "health"
)

var (
	// ErrRemoteUnreachable indicates the remote store could not be reached
	// at the transport level
	ErrRemoteUnreachable = errors.New("remote store unreachable")

	// ErrRemoteRejected indicates the remote store answered but refused
	// the request or the data
	ErrRemoteRejected = errors.New("remote store rejected request")
)

// SyncError wraps a sync failure with the table and phase it occurred in.
// Chunk is the 1-based chunk index for push failures, 0 otherwise.
type SyncError struct {
	Table string
	Phase string
	Chunk int
	Err   error
}

func (e *SyncError) Error() string {
	if e.Chunk > 0 {
		return fmt.Sprintf("sync %s failed for table %q (chunk %d): %v", e.Phase, e.Table, e.Chunk, e.Err)
	}
	if e.Table == "" {
		return fmt.Sprintf("sync %s failed: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("sync %s failed for table %q: %v", e.Phase, e.Table, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// PartialSyncError is the named terminal state of a push that failed midway:
// chunks already upserted are not rolled back. Completed lists the tables
// that were pushed in full before the failure.
type PartialSyncError struct {
	Completed []string
	Failed    *SyncError
}

func (e *PartialSyncError) Error() string {
	return fmt.Sprintf("partial sync: %d table(s) pushed, then %v", len(e.Completed), e.Failed)
}

func (e *PartialSyncError) Unwrap() error {
	return e.Failed
}
