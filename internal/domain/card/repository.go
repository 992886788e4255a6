package card

import "context"

// Repository defines read access to credit cards. The notification engine
// never mutates cards; they are owned by the main application.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Card, error)
	ListActive(ctx context.Context) ([]*Card, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]*Card, error)
}
