package user

import (
	"database/sql"
	"time"
)

// User represents an account holder who may receive card notifications.
type User struct {
	ID                   int64
	FirstName            string
	TelegramChatID       sql.NullInt64 // Set once the user links the Telegram bot
	NotificationsEnabled bool
	CreatedAt            time.Time
}
