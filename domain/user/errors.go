package user

import (
	"errors"
	"fmt"

	"jewelry/domain/shared"
)

var ErrUserNotFound = errors.New("user not found")

func NewUserNotFoundError(id int64) error {
	return &shared.DomainError{
		Err:     ErrUserNotFound,
		Entity:  "User",
		Message: fmt.Sprintf("user %d not found", id),
	}
}
