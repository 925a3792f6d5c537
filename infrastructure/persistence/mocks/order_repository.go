package mocks

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"jewelry/domain/order"
	"jewelry/domain/shared"
)

type OrderRepository struct {
	store *Store
}

func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	r.store.mu.Lock()
	id := r.store.nextOrderID
	r.store.nextOrderID++
	dto := toDTO(o)
	dto.ID = id
	r.store.orders[id] = dto
	r.store.mu.Unlock()

	o.AssignID(id)
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	dto, ok := r.store.orders[id]
	if !ok {
		return nil, order.NewOrderNotFoundError(id)
	}
	return order.RebuildFromDTO(dto), nil
}

// FindByIDForUpdate needs no lock of its own: the unit of work already holds
// the store for the whole transaction.
func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *OrderRepository) FindByOwner(ctx context.Context, ownerID int64) ([]*order.Order, error) {
	return r.filter(ctx, order.NewByOwnerSpecification(ownerID)), nil
}

func (r *OrderRepository) FindByPhone(ctx context.Context, phone string) ([]*order.Order, error) {
	return r.filter(ctx, phoneSpecification(phone)), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	return r.update(id, func(dto *order.ReconstructionDTO) error {
		dto.Status = status
		return nil
	})
}

func (r *OrderRepository) AttachInvoice(ctx context.Context, id int64, ref, qr string) error {
	return r.update(id, func(dto *order.ReconstructionDTO) error {
		if dto.InvoiceRef != "" {
			return order.NewInvoiceAttachedError(id)
		}
		dto.InvoiceRef = ref
		dto.InvoiceQR = qr
		return nil
	})
}

func (r *OrderRepository) update(id int64, fn func(dto *order.ReconstructionDTO) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	dto, ok := r.store.orders[id]
	if !ok {
		return order.NewOrderNotFoundError(id)
	}
	if err := fn(&dto); err != nil {
		return err
	}
	dto.UpdatedAt = time.Now().UTC()
	r.store.orders[id] = dto
	return nil
}

func (r *OrderRepository) FindByInvoiceRef(ctx context.Context, ref string) (*order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if ref != "" {
		for _, dto := range r.store.orders {
			if dto.InvoiceRef == ref {
				return order.RebuildFromDTO(dto), nil
			}
		}
	}
	return nil, order.NewOrderNotFoundError(0)
}

func (r *OrderRepository) List(ctx context.Context, spec shared.Specification[*order.Order], page shared.Page) ([]*order.Order, int64, error) {
	all := r.filter(ctx, spec)
	total := int64(len(all))

	page = page.Normalize()
	start := min(page.Offset(), len(all))
	end := min(start+page.Size, len(all))
	return all[start:end], total, nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.orders)), nil
}

func (r *OrderRepository) SumTotalByStatus(ctx context.Context, status order.Status) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sum := decimal.Zero
	for _, dto := range r.store.orders {
		if dto.Status == status {
			sum = sum.Add(dto.Total.Amount())
		}
	}
	return sum, nil
}

// filter returns matching orders, newest first. A nil spec matches all.
func (r *OrderRepository) filter(ctx context.Context, spec shared.Specification[*order.Order]) []*order.Order {
	r.store.mu.RLock()
	var orders []*order.Order
	for _, dto := range r.store.orders {
		o := order.RebuildFromDTO(dto)
		if spec == nil || spec.IsSatisfiedBy(ctx, o) {
			orders = append(orders, o)
		}
	}
	r.store.mu.RUnlock()

	slices.SortFunc(orders, func(a, b *order.Order) int {
		if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
			return c
		}
		return cmp.Compare(b.ID(), a.ID())
	})
	return orders
}

type phoneSpecification string

func (p phoneSpecification) IsSatisfiedBy(_ context.Context, o *order.Order) bool {
	return o.Customer().Phone == string(p)
}

func toDTO(o *order.Order) order.ReconstructionDTO {
	ownerID, _ := o.OwnerID()
	return order.ReconstructionDTO{
		ID:         o.ID(),
		Customer:   o.Customer(),
		Lines:      o.Lines(),
		Total:      o.Total(),
		Status:     o.Status(),
		OwnerID:    ownerID,
		GuestToken: o.GuestToken(),
		InvoiceRef: o.InvoiceRef(),
		InvoiceQR:  o.InvoiceQR(),
		CreatedAt:  o.CreatedAt(),
		UpdatedAt:  o.UpdatedAt(),
	}
}

var _ order.Repository = (*OrderRepository)(nil)
