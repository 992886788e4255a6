package database

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack_notifier/internal/domain/notification"
)

type PostgresLogRepository struct {
	db *sql.DB
}

func NewPostgresLogRepository(db *sql.DB) *PostgresLogRepository {
	return &PostgresLogRepository{db: db}
}

func (r *PostgresLogRepository) Append(ctx context.Context, entry *notification.LogEntry) error {
	query := `INSERT INTO notifications (user_id, title, message, type, related_card_id, is_read)
               VALUES ($1, $2, $3, $4, $5, FALSE)
               RETURNING notification_id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		entry.UserID, entry.Title, entry.Message, entry.Type, entry.RelatedCardID,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("error appending notification log entry: %w", err)
	}
	return nil
}

func (r *PostgresLogRepository) ListByUser(ctx context.Context, userID int64) ([]*notification.LogEntry, error) {
	query := `SELECT notification_id, user_id, title, message, type, related_card_id, is_read, created_at
               FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	var entries []*notification.LogEntry
	for rows.Next() {
		e := notification.LogEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Message, &e.Type, &e.RelatedCardID, &e.IsRead, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return entries, nil
}

func (r *PostgresLogRepository) MarkRead(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE notification_id = $1`, id)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading mark-read result: %w", err)
	}
	if affected == 0 {
		return ErrLogEntryNotFound
	}
	return nil
}

func (r *PostgresLogRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error marking all notifications read: %w", err)
	}
	return nil
}

func (r *PostgresLogRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("error clearing notifications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading clear result: %w", err)
	}
	return n, nil
}
