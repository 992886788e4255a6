package notification

import (
	"context"
	"time"
)

// LedgerRepository persists dispatch-ledger entries.
//
// Exists is the admission check: callers invoke it immediately before a send
// attempt. Commit happens immediately after a successful send and must be an
// atomic insert-if-absent on the composite key, so that two overlapping runs
// can never both record the same occurrence; the loser receives
// ErrDuplicateLedgerEntry from the storage layer.
type LedgerRepository interface {
	Exists(ctx context.Context, key LedgerKey) (bool, error)
	Commit(ctx context.Context, entry *LedgerEntry) error
	// PruneBefore deletes entries dispatched before cutoff. Keys older than
	// any plausible re-delivery window are dead weight.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// LogRepository persists user-facing notification records.
type LogRepository interface {
	Append(ctx context.Context, entry *LogEntry) error
	ListByUser(ctx context.Context, userID int64) ([]*LogEntry, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}
