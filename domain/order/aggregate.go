/*
Package order is the order subdomain: the Order aggregate with its lines, the
closed Status enum and its transition table, domain events, and the
repository port.

An order is created once with all of its lines, then only its status and its
payment invoice reference change. Totals and line prices are snapshots taken
at checkout and are never recomputed.
*/
package order

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"jewelry/domain/shared"
)

// Order aggregate root.
type Order struct {
	id         int64
	customer   Customer
	lines      []Line
	total      shared.Money
	status     Status
	ownerID    int64
	guestToken string
	invoiceRef string
	invoiceQR  string
	createdAt  time.Time
	updatedAt  time.Time

	events []shared.DomainEvent
}

// Customer is the contact and delivery data captured at checkout.
type Customer struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Address   string
	District  string
	City      string
}

// Line is one product-quantity-price entry. The unit price is the price at
// the moment of purchase.
type Line struct {
	productID   int64
	productName string
	quantity    int
	unitPrice   shared.Money
}

// LineDraft is a cart line as submitted by the storefront.
type LineDraft struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   shared.Money
}

// Draft is everything needed to place an order. Exactly one of OwnerID and
// GuestToken must be set.
type Draft struct {
	Customer   Customer
	Lines      []LineDraft
	OwnerID    int64
	GuestToken string
	Currency   string
}

// NewOrder validates the draft and builds a PENDING order. The ID is assigned
// later by the repository.
func NewOrder(d Draft) (*Order, error) {
	if len(d.Lines) == 0 {
		return nil, NewEmptyCartError()
	}

	customer, err := normalizeCustomer(d.Customer)
	if err != nil {
		return nil, err
	}

	if (d.OwnerID > 0) == (d.GuestToken != "") {
		return nil, ErrOwnership
	}

	currency := d.Currency
	if currency == "" {
		currency = shared.DefaultCurrency
	}

	lines := make([]Line, len(d.Lines))
	total := shared.ZeroMoney(currency)
	for i, ld := range d.Lines {
		if ld.Quantity <= 0 {
			return nil, NewInvalidQuantityError(ld.ProductID)
		}
		if ld.UnitPrice.IsNegative() {
			return nil, NewInvalidPriceError(ld.ProductID)
		}
		if amount := ld.UnitPrice.Amount(); !amount.Equal(amount.Round(PriceScale)) {
			return nil, NewPricePrecisionError(ld.ProductID)
		}
		price := shared.NewMoney(ld.UnitPrice.Amount(), currency)
		lines[i] = Line{
			productID:   ld.ProductID,
			productName: ld.ProductName,
			quantity:    ld.Quantity,
			unitPrice:   price,
		}
		total, err = total.Add(price.Multiply(ld.Quantity))
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	return &Order{
		customer:   customer,
		lines:      lines,
		total:      total,
		status:     StatusPending,
		ownerID:    d.OwnerID,
		guestToken: d.GuestToken,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// PriceScale is the number of decimal places stored for every amount.
const PriceScale = 2

func normalizeCustomer(c Customer) (Customer, error) {
	fields := []struct {
		name   string
		value  *string
		maxLen int
	}{
		{"customerName", &c.FirstName, 100},
		{"lastName", &c.LastName, 100},
		{"phone", &c.Phone, 32},
		{"address", &c.Address, 500},
		{"district", &c.District, 100},
		{"city", &c.City, 100},
		{"email", &c.Email, 255},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return Customer{}, NewFieldError(f.name, f.name+" is required")
		}
		if utf8.RuneCountInString(*f.value) > f.maxLen {
			return Customer{}, NewFieldError(f.name, f.name+" must be at most "+strconv.Itoa(f.maxLen)+" characters")
		}
	}

	email, err := shared.NewEmail(c.Email)
	if err != nil {
		return Customer{}, NewFieldError("email", "email is invalid")
	}
	c.Email = email.Value()
	return c, nil
}

// AssignID is called by the repository once the row exists. It records the
// OrderPlaced event, which needs the final ID.
func (o *Order) AssignID(id int64) {
	o.id = id
	o.events = append(o.events, NewOrderPlacedEvent(o))
}

// StatusChange describes the effect of ChangeStatus.
type StatusChange struct {
	From Status
	To   Status

	// DecrementStock is true only on the edge into PAID from any other status.
	DecrementStock bool
}

// ChangeStatus moves the order to status `to` if the table allows the edge.
// Re-applying PAID is accepted and reports no stock decrement.
func (o *Order) ChangeStatus(to Status, table TransitionTable) (StatusChange, error) {
	from := o.status
	change := StatusChange{From: from, To: to}

	switch to {
	case StatusPaid:
		change.DecrementStock = from != StatusPaid
	case StatusPending, StatusShipped, StatusCancelled:
	default:
		return StatusChange{}, NewInvalidStatusError(to.String())
	}

	if !table.Allows(from, to) {
		return StatusChange{}, NewIllegalTransitionError(from, to)
	}

	o.status = to
	o.updatedAt = time.Now().UTC()
	if from != to {
		o.events = append(o.events, NewStatusChangedEvent(o.id, from, to))
	}
	if change.DecrementStock {
		o.events = append(o.events, NewOrderPaidEvent(o))
	}
	return change, nil
}

// CheckPayable allows payment requests only for PENDING orders.
func (o *Order) CheckPayable() error {
	if o.status != StatusPending {
		return NewNotPayableError(o.id, o.status)
	}
	return nil
}

// AttachInvoice stores the payment provider's reference for this order.
func (o *Order) AttachInvoice(ref, qr string) {
	o.invoiceRef = ref
	o.invoiceQR = qr
	o.updatedAt = time.Now().UTC()
	o.events = append(o.events, NewInvoiceAttachedEvent(o.id, ref))
}

// ReconstructionDTO rebuilds an order from storage. Repository use only.
type ReconstructionDTO struct {
	ID         int64
	Customer   Customer
	Lines      []Line
	Total      shared.Money
	Status     Status
	OwnerID    int64
	GuestToken string
	InvoiceRef string
	InvoiceQR  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func RebuildFromDTO(dto ReconstructionDTO) *Order {
	return &Order{
		id:         dto.ID,
		customer:   dto.Customer,
		lines:      dto.Lines,
		total:      dto.Total,
		status:     dto.Status,
		ownerID:    dto.OwnerID,
		guestToken: dto.GuestToken,
		invoiceRef: dto.InvoiceRef,
		invoiceQR:  dto.InvoiceQR,
		createdAt:  dto.CreatedAt,
		updatedAt:  dto.UpdatedAt,
	}
}

func RebuildLine(productID int64, productName string, quantity int, unitPrice shared.Money) Line {
	return Line{
		productID:   productID,
		productName: productName,
		quantity:    quantity,
		unitPrice:   unitPrice,
	}
}

func (o *Order) ID() int64              { return o.id }
func (o *Order) AggregateID() string    { return strconv.FormatInt(o.id, 10) }
func (o *Order) Customer() Customer     { return o.customer }
func (o *Order) Total() shared.Money    { return o.total }
func (o *Order) Status() Status         { return o.status }
func (o *Order) GuestToken() string     { return o.guestToken }
func (o *Order) InvoiceRef() string     { return o.invoiceRef }
func (o *Order) InvoiceQR() string      { return o.invoiceQR }
func (o *Order) CreatedAt() time.Time   { return o.createdAt }
func (o *Order) UpdatedAt() time.Time   { return o.updatedAt }
func (o *Order) IsGuestOrder() bool     { return o.guestToken != "" }
func (o *Order) OwnerID() (int64, bool) { return o.ownerID, o.ownerID > 0 }

// Lines returns a copy.
func (o *Order) Lines() []Line {
	lines := make([]Line, len(o.lines))
	copy(lines, o.lines)
	return lines
}

func (o *Order) PullEvents() []shared.DomainEvent {
	events := o.events
	o.events = nil
	return events
}

func (l Line) ProductID() int64        { return l.productID }
func (l Line) ProductName() string     { return l.productName }
func (l Line) Quantity() int           { return l.quantity }
func (l Line) UnitPrice() shared.Money { return l.unitPrice }
func (l Line) Subtotal() shared.Money  { return l.unitPrice.Multiply(l.quantity) }

var _ shared.AggregateRoot = (*Order)(nil)
