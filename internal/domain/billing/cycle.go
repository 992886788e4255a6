package billing

import "time"

// CycleDates computes the billing-cycle dates governing a reference date: the
// most recent statement-close date that is on or before ref, and the payment
// due date derived from it.
//
// statementDay is interpreted against each month's actual length; a card that
// closes on the 31st closes on the 28th/29th in February. The due date uses
// full calendar arithmetic, so payment terms that cross a month boundary land
// on the correct day of the following month.
func CycleDates(statementDay, paymentTermsDays int, ref time.Time) (closeDate, dueDate time.Time) {
	ref = DateOnly(ref)

	closeDate = closeDateFor(ref.Year(), ref.Month(), statementDay, ref.Location())
	if closeDate.After(ref) {
		prev := ref.AddDate(0, 0, -ref.Day()) // last day of previous month
		closeDate = closeDateFor(prev.Year(), prev.Month(), statementDay, ref.Location())
	}

	dueDate = closeDate.AddDate(0, 0, paymentTermsDays)
	return closeDate, dueDate
}

// closeDateFor returns the statement-close date within the given month,
// clamping the configured day to the month's last day.
func closeDateFor(year int, month time.Month, statementDay int, loc *time.Location) time.Time {
	day := statementDay
	if last := daysIn(year, month, loc); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// DateOnly truncates a time to midnight in its own location. All engine date
// comparisons happen on truncated values so the time of day a run fires at
// never affects which events it produces.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
