package billing

import (
	"fmt"
	"time"

	"fintrack_notifier/internal/domain/card"
)

// ErrInvalidCycleConfig marks a card whose billing configuration cannot be
// evaluated. The run coordinator skips such cards without aborting the batch.
var ErrInvalidCycleConfig = fmt.Errorf("invalid billing cycle configuration")

// Evaluate produces the deadline events that are newly relevant for one card
// on the given day. It is stateless: relevance is re-derived purely from the
// calendar, which is what makes re-evaluation after a crash or a duplicate
// trigger firing safe.
//
// Cards that are archived or carry no balance produce nothing; with nothing
// owed there is nothing to notify.
func Evaluate(c *card.Card, today time.Time) ([]Event, error) {
	if c.StatementDay < 1 || c.StatementDay > 31 {
		return nil, fmt.Errorf("%w: statement day %d out of range for card %d", ErrInvalidCycleConfig, c.StatementDay, c.ID)
	}
	if c.PaymentTermsDays < 0 {
		return nil, fmt.Errorf("%w: negative payment terms %d for card %d", ErrInvalidCycleConfig, c.PaymentTermsDays, c.ID)
	}
	if c.ReminderLeadDays < 0 {
		return nil, fmt.Errorf("%w: negative reminder lead %d for card %d", ErrInvalidCycleConfig, c.ReminderLeadDays, c.ID)
	}

	if c.Archived || c.CurrentBalance <= 0 {
		return nil, nil
	}

	today = DateOnly(today)
	closeDate, dueDate := CycleDates(c.StatementDay, c.PaymentTermsDays, today)

	var events []Event
	if today.Equal(closeDate) {
		events = append(events, newEvent(c, KindStatementClose, closeDate, 0))
	}
	if today.Equal(dueDate) {
		events = append(events, newEvent(c, KindPaymentDue, dueDate, 0))
	}
	if c.ReminderLeadDays > 0 && today.Equal(dueDate.AddDate(0, 0, -c.ReminderLeadDays)) {
		events = append(events, newEvent(c, KindPaymentReminder, dueDate, c.ReminderLeadDays))
	}
	return events, nil
}

func newEvent(c *card.Card, kind EventKind, date time.Time, leadDays int) Event {
	return Event{
		CardID:   c.ID,
		UserID:   c.UserID,
		Kind:     kind,
		Date:     date,
		Amount:   c.CurrentBalance,
		Label:    c.Label,
		Issuer:   c.Issuer,
		LeadDays: leadDays,
	}
}
