package database

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack_notifier/internal/domain/card"
)

type PostgresCardRepository struct {
	db *sql.DB
}

func NewPostgresCardRepository(db *sql.DB) *PostgresCardRepository {
	return &PostgresCardRepository{db: db}
}

const cardColumns = `card_id, user_id, issuer, label, current_balance, statement_day,
       payment_terms_days, reminder_lead_days, archived, created_at, updated_at`

func (r *PostgresCardRepository) GetByID(ctx context.Context, id int64) (*card.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM credit_cards WHERE card_id = $1`
	c, err := scanCard(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("error getting card by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCardRepository) ListActive(ctx context.Context) ([]*card.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM credit_cards WHERE archived = FALSE ORDER BY card_id`
	return r.list(ctx, query)
}

func (r *PostgresCardRepository) ListActiveByUser(ctx context.Context, userID int64) ([]*card.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM credit_cards WHERE archived = FALSE AND user_id = $1 ORDER BY card_id`
	return r.list(ctx, query, userID)
}

func (r *PostgresCardRepository) list(ctx context.Context, query string, args ...interface{}) ([]*card.Card, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing cards: %w", err)
	}
	defer rows.Close()

	var cards []*card.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning card row: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card rows: %w", err)
	}
	return cards, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCard(row rowScanner) (*card.Card, error) {
	c := card.Card{}
	err := row.Scan(
		&c.ID, &c.UserID, &c.Issuer, &c.Label, &c.CurrentBalance, &c.StatementDay,
		&c.PaymentTermsDays, &c.ReminderLeadDays, &c.Archived, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
