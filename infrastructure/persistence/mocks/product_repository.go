package mocks

import (
	"cmp"
	"context"
	"slices"

	"jewelry/domain/product"
)

type ProductRepository struct {
	store *Store
}

func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*product.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	found := make(map[int64]*product.Product, len(ids))
	for _, id := range ids {
		dto, ok := r.store.products[id]
		if ok && dto.DeletedAt == nil {
			found[id] = product.RebuildFromDTO(dto)
		}
	}
	return found, nil
}

func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, qty int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	dto, ok := r.store.products[id]
	if !ok || dto.DeletedAt != nil || dto.Stock < qty {
		return &product.InsufficientStockError{ProductID: id, Requested: qty}
	}
	dto.Stock -= qty
	r.store.products[id] = dto
	return nil
}

func (r *ProductRepository) StockLevels(ctx context.Context, ids []int64) (map[int64]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	levels := make(map[int64]int, len(ids))
	for _, id := range ids {
		if dto, ok := r.store.products[id]; ok && dto.DeletedAt == nil {
			levels[id] = dto.Stock
		}
	}
	return levels, nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var n int64
	for _, dto := range r.store.products {
		if dto.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (r *ProductRepository) TopSelling(ctx context.Context, limit int) ([]product.Sales, error) {
	r.store.mu.RLock()
	counts := make(map[int64]int64)
	for _, o := range r.store.orders {
		for _, l := range o.Lines {
			counts[l.ProductID()]++
		}
	}
	sales := make([]product.Sales, 0, len(counts))
	for id, n := range counts {
		name := r.store.products[id].Name
		sales = append(sales, product.Sales{ProductID: id, Name: name, LineCount: n})
	}
	r.store.mu.RUnlock()

	slices.SortFunc(sales, func(a, b product.Sales) int {
		if c := cmp.Compare(b.LineCount, a.LineCount); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

var _ product.Repository = (*ProductRepository)(nil)
