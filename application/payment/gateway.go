// Package payment connects orders to an external payment provider: it
// requests invoices for pending orders and turns provider confirmations
// into the regular PAID transition.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

type InvoiceRequest struct {
	OrderID     int64
	Reference   string // our own invoice number, ORDER_{id}
	Amount      decimal.Decimal
	Currency    string
	Phone       string
	Description string
}

type Invoice struct {
	Ref          string
	QR           string
	PaymentURL   string
	ClientSecret string
}

// Gateway creates invoices at a payment provider.
type Gateway interface {
	Name() string
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
}

// Checker asks the provider whether an invoice is really paid. Callbacks
// that arrive without a signature are confirmed through it.
type Checker interface {
	IsPaid(ctx context.Context, invoiceRef string) (bool, error)
}
