package po

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"jewelry/domain/order"
	"jewelry/domain/shared"
)

// OrderPO Order persistence object.
// Lines are stored and loaded by the repository; no GORM associations.
type OrderPO struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	CustomerName string          `gorm:"size:100;not null"`
	LastName     string          `gorm:"size:100;not null"`
	Phone        string          `gorm:"size:32;index;not null"`
	Email        string          `gorm:"size:255;not null"`
	Address      string          `gorm:"size:500;not null"`
	District     string          `gorm:"size:100;not null"`
	City         string          `gorm:"size:100;not null"`
	Total        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency     string          `gorm:"size:3;not null"`
	Status       string          `gorm:"size:20;index;not null"`
	OwnerID      *int64          `gorm:"index"`
	GuestToken   *string         `gorm:"size:36"`
	InvoiceRef   *string         `gorm:"size:128;uniqueIndex"`
	InvoiceQR    string          `gorm:"type:text"`
	CreatedAt    time.Time       `gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

func (OrderPO) TableName() string {
	return "orders"
}

type OrderLinePO struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	OrderID     int64           `gorm:"index;not null"`
	ProductID   int64           `gorm:"index;not null"`
	ProductName string          `gorm:"size:255;not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency    string          `gorm:"size:3;not null"`
}

func (OrderLinePO) TableName() string {
	return "order_lines"
}

// FromOrderDomain converts an order into its rows. Line OrderIDs are set by
// the repository once the order row has its ID.
func FromOrderDomain(o *order.Order) (*OrderPO, []OrderLinePO) {
	c := o.Customer()
	orderPO := &OrderPO{
		ID:           o.ID(),
		CustomerName: c.FirstName,
		LastName:     c.LastName,
		Phone:        c.Phone,
		Email:        c.Email,
		Address:      c.Address,
		District:     c.District,
		City:         c.City,
		Total:        o.Total().Amount(),
		Currency:     o.Total().Currency(),
		Status:       o.Status().String(),
		InvoiceQR:    o.InvoiceQR(),
		CreatedAt:    o.CreatedAt(),
		UpdatedAt:    o.UpdatedAt(),
	}
	if id, ok := o.OwnerID(); ok {
		orderPO.OwnerID = &id
	}
	if token := o.GuestToken(); token != "" {
		orderPO.GuestToken = &token
	}
	if ref := o.InvoiceRef(); ref != "" {
		orderPO.InvoiceRef = &ref
	}

	lines := o.Lines()
	linePOs := make([]OrderLinePO, len(lines))
	for i, l := range lines {
		linePOs[i] = OrderLinePO{
			OrderID:     o.ID(),
			ProductID:   l.ProductID(),
			ProductName: l.ProductName(),
			Quantity:    l.Quantity(),
			UnitPrice:   l.UnitPrice().Amount(),
			Currency:    l.UnitPrice().Currency(),
		}
	}
	return orderPO, linePOs
}

// ToDomain fails only on a status value the enum does not know.
func (po *OrderPO) ToDomain(linePOs []OrderLinePO) (*order.Order, error) {
	status, err := order.ParseStatus(po.Status)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", po.ID, err)
	}

	lines := make([]order.Line, len(linePOs))
	for i, l := range linePOs {
		lines[i] = order.RebuildLine(l.ProductID, l.ProductName, l.Quantity, shared.NewMoney(l.UnitPrice, l.Currency))
	}

	dto := order.ReconstructionDTO{
		ID: po.ID,
		Customer: order.Customer{
			FirstName: po.CustomerName,
			LastName:  po.LastName,
			Phone:     po.Phone,
			Email:     po.Email,
			Address:   po.Address,
			District:  po.District,
			City:      po.City,
		},
		Lines:     lines,
		Total:     shared.NewMoney(po.Total, po.Currency),
		Status:    status,
		InvoiceQR: po.InvoiceQR,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
	if po.OwnerID != nil {
		dto.OwnerID = *po.OwnerID
	}
	if po.GuestToken != nil {
		dto.GuestToken = *po.GuestToken
	}
	if po.InvoiceRef != nil {
		dto.InvoiceRef = *po.InvoiceRef
	}
	return order.RebuildFromDTO(dto), nil
}
