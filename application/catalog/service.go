// Package catalog answers the storefront's stock questions before checkout.
package catalog

import (
	"context"

	"jewelry/domain/product"
	"jewelry/domain/shared"
)

const maxStockQuery = 200

type StockRequest struct {
	ProductIDs []int64 `json:"productIds"`
}

type Service struct {
	products product.Repository
}

func NewService(products product.Repository) *Service {
	return &Service{products: products}
}

// Stock returns the stock of each non-deleted product among ids. Unknown
// and deleted products are left out.
func (s *Service) Stock(ctx context.Context, ids []int64) (map[int64]int, error) {
	if len(ids) == 0 {
		return nil, shared.NewValidationError("Product", "productIds", "productIds is required")
	}
	if len(ids) > maxStockQuery {
		return nil, shared.NewValidationError("Product", "productIds", "too many productIds")
	}
	return s.products.StockLevels(ctx, ids)
}
