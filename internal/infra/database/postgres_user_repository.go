package database

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack_notifier/internal/domain/user"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT user_id, first_name, telegram_chat_id, notifications_enabled, created_at
               FROM users WHERE user_id = $1`
	u := user.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.FirstName, &u.TelegramChatID, &u.NotificationsEnabled, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepository) ListNotifiable(ctx context.Context) ([]*user.User, error) {
	query := `SELECT user_id, first_name, telegram_chat_id, notifications_enabled, created_at
               FROM users WHERE notifications_enabled = TRUE ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing notifiable users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u := user.User{}
		if err := rows.Scan(&u.ID, &u.FirstName, &u.TelegramChatID, &u.NotificationsEnabled, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
