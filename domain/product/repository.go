package product

import "context"

// Sales is one row of the best-seller ranking.
type Sales struct {
	ProductID int64
	Name      string
	LineCount int64
}

type Repository interface {
	// FindByIDs returns the non-deleted products among ids, keyed by ID.
	// Missing IDs are simply absent from the map.
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*Product, error)

	// DecrementStock removes qty units only if at least qty are in stock.
	// Otherwise it returns an *InsufficientStockError and changes nothing.
	DecrementStock(ctx context.Context, id int64, qty int) error

	// StockLevels returns the stock of each non-deleted product among ids.
	StockLevels(ctx context.Context, ids []int64) (map[int64]int, error)

	Count(ctx context.Context) (int64, error)

	// TopSelling ranks products by the number of order lines referencing them.
	TopSelling(ctx context.Context, limit int) ([]Sales, error)
}
