package mocks

import (
	"context"

	"jewelry/domain/user"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	dto, ok := r.store.users[id]
	if !ok {
		return nil, user.NewUserNotFoundError(id)
	}
	return user.RebuildFromDTO(dto), nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.users)), nil
}

var _ user.Repository = (*UserRepository)(nil)
