package order

import (
	"strconv"
	"time"

	"jewelry/domain/shared"
)

const (
	EventOrderPlaced     = "order.placed"
	EventStatusChanged   = "order.status_changed"
	EventOrderPaid       = "order.paid"
	EventInvoiceAttached = "order.invoice_attached"
)

// PaidLine is the stock-relevant part of a line, carried by OrderPaidEvent.
type PaidLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type OrderPlacedEvent struct {
	orderID    int64
	total      shared.Money
	guest      bool
	lineCount  int
	occurredOn time.Time
}

func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		orderID:    o.id,
		total:      o.total,
		guest:      o.IsGuestOrder(),
		lineCount:  len(o.lines),
		occurredOn: time.Now().UTC(),
	}
}

func (e *OrderPlacedEvent) EventName() string      { return EventOrderPlaced }
func (e *OrderPlacedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderPlacedEvent) GetAggregateID() string { return strconv.FormatInt(e.orderID, 10) }
func (e *OrderPlacedEvent) OrderID() int64         { return e.orderID }
func (e *OrderPlacedEvent) Total() shared.Money    { return e.total }
func (e *OrderPlacedEvent) Guest() bool            { return e.guest }
func (e *OrderPlacedEvent) LineCount() int         { return e.lineCount }

type StatusChangedEvent struct {
	orderID    int64
	from       Status
	to         Status
	occurredOn time.Time
}

func NewStatusChangedEvent(orderID int64, from, to Status) *StatusChangedEvent {
	return &StatusChangedEvent{orderID: orderID, from: from, to: to, occurredOn: time.Now().UTC()}
}

func (e *StatusChangedEvent) EventName() string      { return EventStatusChanged }
func (e *StatusChangedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *StatusChangedEvent) GetAggregateID() string { return strconv.FormatInt(e.orderID, 10) }
func (e *StatusChangedEvent) OrderID() int64         { return e.orderID }
func (e *StatusChangedEvent) From() Status           { return e.from }
func (e *StatusChangedEvent) To() Status             { return e.to }

// OrderPaidEvent is recorded once per order, on the edge into PAID.
type OrderPaidEvent struct {
	orderID    int64
	total      shared.Money
	lines      []PaidLine
	occurredOn time.Time
}

func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	lines := make([]PaidLine, len(o.lines))
	for i, l := range o.lines {
		lines[i] = PaidLine{ProductID: l.productID, Quantity: l.quantity}
	}
	return &OrderPaidEvent{orderID: o.id, total: o.total, lines: lines, occurredOn: time.Now().UTC()}
}

func (e *OrderPaidEvent) EventName() string      { return EventOrderPaid }
func (e *OrderPaidEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderPaidEvent) GetAggregateID() string { return strconv.FormatInt(e.orderID, 10) }
func (e *OrderPaidEvent) OrderID() int64         { return e.orderID }
func (e *OrderPaidEvent) Total() shared.Money    { return e.total }
func (e *OrderPaidEvent) Lines() []PaidLine      { return e.lines }

type InvoiceAttachedEvent struct {
	orderID    int64
	invoiceRef string
	occurredOn time.Time
}

func NewInvoiceAttachedEvent(orderID int64, ref string) *InvoiceAttachedEvent {
	return &InvoiceAttachedEvent{orderID: orderID, invoiceRef: ref, occurredOn: time.Now().UTC()}
}

func (e *InvoiceAttachedEvent) EventName() string      { return EventInvoiceAttached }
func (e *InvoiceAttachedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *InvoiceAttachedEvent) GetAggregateID() string { return strconv.FormatInt(e.orderID, 10) }
func (e *InvoiceAttachedEvent) OrderID() int64         { return e.orderID }
func (e *InvoiceAttachedEvent) InvoiceRef() string     { return e.invoiceRef }
