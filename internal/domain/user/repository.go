package user

import "context"

// Repository defines read access to users for notification fan-out.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	// ListNotifiable returns users with notifications enabled.
	ListNotifiable(ctx context.Context) ([]*User, error)
}
