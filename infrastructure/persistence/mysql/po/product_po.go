package po

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"jewelry/domain/product"
)

// ProductPO maps the catalog table. Only the columns orders need are mapped.
type ProductPO struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	Name      string          `gorm:"size:255;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency  string          `gorm:"size:3;not null;default:MNT"`
	Stock     int             `gorm:"not null;default:0"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	DeletedAt gorm.DeletedAt  `gorm:"index"`
}

func (ProductPO) TableName() string {
	return "products"
}

func (po *ProductPO) ToDomain() *product.Product {
	dto := product.ReconstructionDTO{
		ID:       po.ID,
		Name:     po.Name,
		Price:    po.Price,
		Currency: po.Currency,
		Stock:    po.Stock,
	}
	if po.DeletedAt.Valid {
		deletedAt := po.DeletedAt.Time
		dto.DeletedAt = &deletedAt
	}
	return product.RebuildFromDTO(dto)
}
