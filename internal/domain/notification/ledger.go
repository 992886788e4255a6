package notification

import (
	"time"

	"fintrack_notifier/internal/domain/billing"
)

// LedgerKey is the composite idempotency key identifying one notifiable
// occurrence: the same card, for the same kind of deadline, on the same date.
type LedgerKey struct {
	CardID    int64
	Kind      billing.EventKind
	EventDate time.Time
}

// LedgerEntry is durable proof that the occurrence identified by its key was
// dispatched. Entries are insert-only; the unique key is what converts the
// engine's at-least-once re-evaluation into effectively-exactly-once
// delivery.
type LedgerEntry struct {
	LedgerKey
	DispatchedAt time.Time
}

// KeyFor derives the ledger key for a candidate event.
func KeyFor(e billing.Event) LedgerKey {
	return LedgerKey{CardID: e.CardID, Kind: e.Kind, EventDate: billing.DateOnly(e.Date)}
}
