package app

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fintrack_notifier/internal/domain/billing"
	"fintrack_notifier/internal/domain/notification"
	"fintrack_notifier/internal/domain/push"
	"fintrack_notifier/internal/infra/logger"
	"fintrack_notifier/internal/infra/metrics"
)

// Dispatcher turns an admitted deadline event into its user-visible side
// effects: a fire-and-forget push, a persisted notification-log entry, and
// the ledger commit that marks the occurrence as handled.
//
// The push and the log entry are independent side effects; there is no shared
// transaction. If the push goes out but the ledger commit fails, the next run
// re-dispatches the event — a rare duplicate the slot key makes harmless.
type Dispatcher struct {
	sender  push.Sender
	logRepo notification.LogRepository
	ledger  notification.LedgerRepository
	metrics *metrics.Metrics
}

func NewDispatcher(
	sender push.Sender,
	logRepo notification.LogRepository,
	ledger notification.LedgerRepository,
	m *metrics.Metrics,
) *Dispatcher {
	return &Dispatcher{sender: sender, logRepo: logRepo, ledger: ledger, metrics: m}
}

// Dispatch performs steps (b)-(d) for one admitted event. A push failure is
// logged and swallowed; a log or ledger failure is returned so the caller
// leaves the key un-admitted and the next run retries.
func (d *Dispatcher) Dispatch(ctx context.Context, ev billing.Event) error {
	title, message, subtext := formatEvent(ev)

	msg := push.Message{
		SlotKey:  ev.SlotKey(),
		UserID:   ev.UserID,
		Title:    title,
		Body:     message,
		Subtext:  subtext,
		Priority: push.PriorityHigh,
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		logger.Log.WithError(err).WithField("slot", msg.SlotKey).Warn("Push send failed; notification will still be logged")
	}

	entry := &notification.LogEntry{
		UserID:        ev.UserID,
		Title:         title,
		Message:       message,
		Type:          notification.TypeCard,
		RelatedCardID: sql.NullInt64{Int64: ev.CardID, Valid: true},
	}
	if err := d.logRepo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append notification log for card %d: %w", ev.CardID, err)
	}

	ledgerEntry := &notification.LedgerEntry{
		LedgerKey:    notification.KeyFor(ev),
		DispatchedAt: time.Now(),
	}
	if err := d.ledger.Commit(ctx, ledgerEntry); err != nil {
		return fmt.Errorf("failed to commit ledger entry for card %d: %w", ev.CardID, err)
	}

	d.metrics.IncDispatched(string(ev.Kind))
	return nil
}

// formatEvent builds the notification copy. Wording and currency format match
// what the FinTrack client shows elsewhere, so engine-generated entries blend
// into the in-app notification list.
func formatEvent(ev billing.Event) (title, message, subtext string) {
	amount := formatMXN(ev.Amount)
	switch ev.Kind {
	case billing.KindStatementClose:
		title = "Fecha de Corte - " + ev.Label
		message = fmt.Sprintf("Tu tarjeta %s (%s) tiene un saldo de %s. Fecha de corte hoy.", ev.Label, ev.Issuer, amount)
		subtext = "Revisa el estado de tu tarjeta"
	case billing.KindPaymentDue:
		title = "Fecha de Pago - " + ev.Label
		message = fmt.Sprintf("¡Fecha límite de pago! Tu tarjeta %s (%s) tiene un saldo de %s que debes pagar hoy.", ev.Label, ev.Issuer, amount)
		subtext = "Realiza tu pago ahora"
	case billing.KindPaymentReminder:
		title = "Recordatorio de Pago - " + ev.Label
		message = fmt.Sprintf("Quedan %d días para pagar tu tarjeta %s. Saldo: %s", ev.LeadDays, ev.Label, amount)
		subtext = "Planifica tu pago"
	}
	return title, message, subtext
}

// formatMXN renders an amount the way the client does ("$12,345.67").
func formatMXN(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
