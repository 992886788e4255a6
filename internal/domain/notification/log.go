package notification

import (
	"database/sql"
	"time"
)

// Notification type tags, matching the values the main application stores.
const (
	TypeCard    = "CARD"
	TypeGeneral = "GENERAL"
)

// LogEntry is the user-facing notification record. The engine only appends
// these; reading and marking them is done through the HTTP API on behalf of
// the client application.
type LogEntry struct {
	ID            int64
	UserID        int64
	Title         string
	Message       string
	Type          string
	RelatedCardID sql.NullInt64
	IsRead        bool
	CreatedAt     time.Time
}
