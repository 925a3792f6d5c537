package po

import (
	"time"

	"jewelry/domain/user"
)

type UserPO struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"size:100;not null"`
	Email     string    `gorm:"size:255;uniqueIndex;not null"`
	Role      string    `gorm:"size:20;not null;default:USER"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (UserPO) TableName() string {
	return "users"
}

func (po *UserPO) ToDomain() *user.User {
	return user.RebuildFromDTO(user.ReconstructionDTO{
		ID:        po.ID,
		Name:      po.Name,
		Email:     po.Email,
		Role:      po.Role,
		CreatedAt: po.CreatedAt,
	})
}
