package repository

import "context"

// RemoteStore is the sync engine's view of the cloud backend: an opaque
// record store keyed by table name with upsert-by-primary-key semantics.
// Implementations must keep upserts conflict-free (last write wins).
type RemoteStore interface {
	// Health validates connectivity and schema readiness before any data
	// transfer begins.
	Health(ctx context.Context) error

	// Upsert inserts-or-updates a slice of records into the named table.
	// records is any JSON-marshalable slice.
	Upsert(ctx context.Context, table string, records any) error

	// SelectAll fetches the full remote table into dest, a pointer to a
	// slice of the table's record type.
	SelectAll(ctx context.Context, table string, dest any) error
}
