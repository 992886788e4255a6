package database

import "fmt"

var (
	ErrCardNotFound         = fmt.Errorf("credit card not found")
	ErrUserNotFound         = fmt.Errorf("user not found")
	ErrLogEntryNotFound     = fmt.Errorf("notification log entry not found")
	ErrDuplicateLedgerEntry = fmt.Errorf("duplicate dispatch ledger entry (card_id, event_kind, event_date)")
)
