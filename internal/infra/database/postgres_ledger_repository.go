package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack_notifier/internal/domain/notification"
)

// PostgresLedgerRepository stores dispatch-ledger entries. The composite
// primary key (card_id, event_kind, event_date) is the idempotency guarantee:
// Commit relies on ON CONFLICT DO NOTHING so that concurrent runs racing on
// the same key resolve inside the database, not in application code.
type PostgresLedgerRepository struct {
	db *sql.DB
}

func NewPostgresLedgerRepository(db *sql.DB) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

func (r *PostgresLedgerRepository) Exists(ctx context.Context, key notification.LedgerKey) (bool, error) {
	query := `SELECT EXISTS(
               SELECT 1 FROM dispatch_ledger
               WHERE card_id = $1 AND event_kind = $2 AND event_date = $3)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, key.CardID, string(key.Kind), dateOnly(key.EventDate)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking dispatch ledger: %w", err)
	}
	return exists, nil
}

func (r *PostgresLedgerRepository) Commit(ctx context.Context, entry *notification.LedgerEntry) error {
	query := `INSERT INTO dispatch_ledger (card_id, event_kind, event_date, dispatched_at)
               VALUES ($1, $2, $3, $4)
               ON CONFLICT (card_id, event_kind, event_date) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query,
		entry.CardID, string(entry.Kind), dateOnly(entry.EventDate), entry.DispatchedAt)
	if err != nil {
		return fmt.Errorf("error committing dispatch ledger entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading commit result: %w", err)
	}
	if affected == 0 {
		return ErrDuplicateLedgerEntry
	}
	return nil
}

func (r *PostgresLedgerRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM dispatch_ledger WHERE dispatched_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error pruning dispatch ledger: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading prune result: %w", err)
	}
	return n, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
