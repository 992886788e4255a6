package billing

import (
	"fmt"
	"time"
)

// EventKind identifies the deadline a notification is about.
type EventKind string

const (
	KindStatementClose  EventKind = "STATEMENT_CLOSE"
	KindPaymentDue      EventKind = "PAYMENT_DUE"
	KindPaymentReminder EventKind = "PAYMENT_REMINDER"
)

// Event is a candidate deadline occurrence for one card. Events are derived
// fresh on every evaluation and are never persisted; the dispatch ledger is
// what records that one was acted on.
type Event struct {
	CardID   int64
	UserID   int64
	Kind     EventKind
	Date     time.Time // The calendar date the event pertains to
	Amount   float64
	Label    string
	Issuer   string
	LeadDays int // Only set for KindPaymentReminder
}

// SlotKey returns the stable per-(card, kind) notification slot. A later
// event of the same kind for the same card replaces the prior notification
// instead of stacking a new one.
func (e Event) SlotKey() string {
	return fmt.Sprintf("card.%d.%s", e.CardID, e.Kind)
}
