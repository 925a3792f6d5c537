package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"jewelry/domain/user"
	"jewelry/infrastructure/persistence"
	"jewelry/infrastructure/persistence/mysql/po"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	var userPO po.UserPO
	if err := r.getDB(ctx).First(&userPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.NewUserNotFoundError(id)
		}
		return nil, err
	}
	return userPO.ToDomain(), nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.getDB(ctx).Model(&po.UserPO{}).Count(&n).Error
	return n, err
}

var _ user.Repository = (*UserRepository)(nil)
