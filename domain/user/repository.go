package user

import "context"

type Repository interface {
	// FindByID returns ErrUserNotFound when the user does not exist.
	FindByID(ctx context.Context, id int64) (*User, error)

	Count(ctx context.Context) (int64, error)
}
