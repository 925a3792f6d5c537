package mysql

import (
	"context"

	"gorm.io/gorm"

	"jewelry/domain/product"
	"jewelry/infrastructure/persistence"
	"jewelry/infrastructure/persistence/mysql/po"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*product.Product, error) {
	result := make(map[int64]*product.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var productPOs []po.ProductPO
	if err := r.getDB(ctx).Where("id IN ?", ids).Find(&productPOs).Error; err != nil {
		return nil, err
	}
	for i := range productPOs {
		result[productPOs[i].ID] = productPOs[i].ToDomain()
	}
	return result, nil
}

// DecrementStock is a single conditional UPDATE, so stock never goes below
// zero even without a prior read.
func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, qty int) error {
	result := r.getDB(ctx).
		Model(&po.ProductPO{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &product.InsufficientStockError{ProductID: id, Requested: qty}
	}
	return nil
}

func (r *ProductRepository) StockLevels(ctx context.Context, ids []int64) (map[int64]int, error) {
	levels := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return levels, nil
	}

	var rows []struct {
		ID    int64
		Stock int
	}
	if err := r.getDB(ctx).Model(&po.ProductPO{}).Select("id, stock").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		levels[row.ID] = row.Stock
	}
	return levels, nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.getDB(ctx).Model(&po.ProductPO{}).Count(&n).Error
	return n, err
}

func (r *ProductRepository) TopSelling(ctx context.Context, limit int) ([]product.Sales, error) {
	var rows []struct {
		ProductID int64
		Name      string
		LineCount int64
	}
	err := r.getDB(ctx).
		Table("order_lines").
		Select("order_lines.product_id AS product_id, products.name AS name, COUNT(*) AS line_count").
		Joins("JOIN products ON products.id = order_lines.product_id AND products.deleted_at IS NULL").
		Group("order_lines.product_id, products.name").
		Order("line_count DESC, order_lines.product_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sales := make([]product.Sales, len(rows))
	for i, row := range rows {
		sales[i] = product.Sales{ProductID: row.ProductID, Name: row.Name, LineCount: row.LineCount}
	}
	return sales, nil
}

var _ product.Repository = (*ProductRepository)(nil)
