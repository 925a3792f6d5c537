// Package product is the catalog as orders see it: names, live prices and
// stock counts. Catalog management is out of scope here.
package product

import (
	"time"

	"github.com/shopspring/decimal"

	"jewelry/domain/shared"
)

type Product struct {
	id        int64
	name      string
	price     shared.Money
	stock     int
	deletedAt *time.Time
}

type ReconstructionDTO struct {
	ID        int64
	Name      string
	Price     decimal.Decimal
	Currency  string
	Stock     int
	DeletedAt *time.Time
}

func RebuildFromDTO(dto ReconstructionDTO) *Product {
	return &Product{
		id:        dto.ID,
		name:      dto.Name,
		price:     shared.NewMoney(dto.Price, dto.Currency),
		stock:     dto.Stock,
		deletedAt: dto.DeletedAt,
	}
}

func (p *Product) ID() int64           { return p.id }
func (p *Product) Name() string        { return p.name }
func (p *Product) Price() shared.Money { return p.price }
func (p *Product) Stock() int          { return p.stock }
func (p *Product) IsDeleted() bool     { return p.deletedAt != nil }

// CanFulfil reports whether qty units are in stock.
func (p *Product) CanFulfil(qty int) bool {
	return qty > 0 && p.stock >= qty
}

// PriceDiffers reports whether submitted is more than tolerance away from
// the live price.
func (p *Product) PriceDiffers(submitted decimal.Decimal, tolerance decimal.Decimal) bool {
	return submitted.Sub(p.price.Amount()).Abs().GreaterThan(tolerance)
}
