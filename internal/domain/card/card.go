package card

import "time"

// Card represents a credit card tracked for statement and payment deadlines.
type Card struct {
	ID               int64
	UserID           int64
	Issuer           string // Issuing bank (e.g., "BBVA", "Santander")
	Label            string // User-facing alias (e.g., "Tarjeta Principal")
	CurrentBalance   float64
	StatementDay     int // Day of month the statement closes (1-31, clamped to month length)
	PaymentTermsDays int // Days from statement close to payment due
	ReminderLeadDays int // Days before payment due to send a reminder; 0 disables it
	Archived         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
