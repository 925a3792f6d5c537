package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jewelry/domain/order"
	"jewelry/domain/shared"
	"jewelry/infrastructure/persistence"
	"jewelry/infrastructure/persistence/mysql/po"
	"jewelry/infrastructure/persistence/specification"
)

// OrderRepository MySQL/GORM implementation of order.Repository.
// Lines are written and read explicitly; GORM associations are not used.
type OrderRepository struct {
	db         *gorm.DB
	translator *specification.GormTranslator
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db, translator: specification.NewGormTranslator()}
}

// getDB returns the transaction from context if available, otherwise the default db
func (r *OrderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Create uses the caller's transaction when there is one, otherwise its own.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.createWithTx(tx, o)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.createWithTx(tx, o)
	})
}

func (r *OrderRepository) createWithTx(tx *gorm.DB, o *order.Order) error {
	orderPO, linePOs := po.FromOrderDomain(o)
	orderPO.ID = 0

	if err := tx.Create(orderPO).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for i := range linePOs {
		linePOs[i].OrderID = orderPO.ID
	}
	if err := tx.Create(&linePOs).Error; err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}

	o.AssignID(orderPO.ID)
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	return r.findOne(r.getDB(ctx), id)
}

// FindByIDForUpdate must run inside a unit of work; the row lock is held
// until that transaction ends.
func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	db := r.getDB(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	return r.findOne(db, id)
}

func (r *OrderRepository) findOne(db *gorm.DB, id int64) (*order.Order, error) {
	var orderPO po.OrderPO
	if err := db.First(&orderPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewOrderNotFoundError(id)
		}
		return nil, err
	}

	orders, err := r.attachLines(db.Session(&gorm.Session{NewDB: true}), []po.OrderPO{orderPO})
	if err != nil {
		return nil, err
	}
	return orders[0], nil
}

func (r *OrderRepository) FindByOwner(ctx context.Context, ownerID int64) ([]*order.Order, error) {
	return r.findMany(r.getDB(ctx).Where("owner_id = ?", ownerID))
}

func (r *OrderRepository) FindByPhone(ctx context.Context, phone string) ([]*order.Order, error) {
	return r.findMany(r.getDB(ctx).Where("phone = ?", phone))
}

func (r *OrderRepository) findMany(db *gorm.DB) ([]*order.Order, error) {
	var orderPOs []po.OrderPO
	if err := db.Order("created_at DESC, id DESC").Find(&orderPOs).Error; err != nil {
		return nil, err
	}
	return r.attachLines(db.Session(&gorm.Session{NewDB: true}), orderPOs)
}

// attachLines loads the lines of all given orders in one query.
func (r *OrderRepository) attachLines(db *gorm.DB, orderPOs []po.OrderPO) ([]*order.Order, error) {
	if len(orderPOs) == 0 {
		return []*order.Order{}, nil
	}

	ids := make([]int64, len(orderPOs))
	for i, o := range orderPOs {
		ids[i] = o.ID
	}

	var linePOs []po.OrderLinePO
	if err := db.Where("order_id IN ?", ids).Order("id ASC").Find(&linePOs).Error; err != nil {
		return nil, err
	}
	byOrder := make(map[int64][]po.OrderLinePO, len(orderPOs))
	for _, l := range linePOs {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}

	orders := make([]*order.Order, len(orderPOs))
	for i := range orderPOs {
		o, err := orderPOs[i].ToDomain(byOrder[orderPOs[i].ID])
		if err != nil {
			return nil, err
		}
		orders[i] = o
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	result := r.getDB(ctx).
		Model(&po.OrderPO{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status.String(),
			"updated_at": time.Now(),
		})
	return result.Error
}

func (r *OrderRepository) AttachInvoice(ctx context.Context, id int64, ref, qr string) error {
	result := r.getDB(ctx).
		Model(&po.OrderPO{}).
		Where("id = ? AND (invoice_ref IS NULL OR invoice_ref = '')", id).
		Updates(map[string]any{
			"invoice_ref": ref,
			"invoice_qr":  qr,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.getDB(ctx).Model(&po.OrderPO{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return order.NewOrderNotFoundError(id)
	}
	return order.NewInvoiceAttachedError(id)
}

func (r *OrderRepository) FindByInvoiceRef(ctx context.Context, ref string) (*order.Order, error) {
	db := r.getDB(ctx)
	var orderPO po.OrderPO
	if err := db.First(&orderPO, "invoice_ref = ?", ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewOrderNotFoundError(0)
		}
		return nil, err
	}
	orders, err := r.attachLines(db.Session(&gorm.Session{NewDB: true}), []po.OrderPO{orderPO})
	if err != nil {
		return nil, err
	}
	return orders[0], nil
}

func (r *OrderRepository) List(ctx context.Context, spec shared.Specification[*order.Order], page shared.Page) ([]*order.Order, int64, error) {
	scope, err := r.translator.TranslateOrder(spec)
	if err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	db := r.getDB(ctx)

	var total int64
	if err := db.Model(&po.OrderPO{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*order.Order{}, 0, nil
	}

	query := db.Session(&gorm.Session{NewDB: true}).
		Model(&po.OrderPO{}).
		Scopes(scope).
		Offset(page.Offset()).
		Limit(page.Size)
	orders, err := r.findMany(query)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.getDB(ctx).Model(&po.OrderPO{}).Count(&n).Error
	return n, err
}

func (r *OrderRepository) SumTotalByStatus(ctx context.Context, status order.Status) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	row := r.getDB(ctx).
		Model(&po.OrderPO{}).
		Select("SUM(total)").
		Where("status = ?", status.String()).
		Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

var _ order.Repository = (*OrderRepository)(nil)
