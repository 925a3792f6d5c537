package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerForm is the checkout form. Blank fields are rejected by the
// domain with a message naming the field.
type CustomerForm struct {
	CustomerName string `json:"customerName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	District     string `json:"district"`
	City         string `json:"city"`
	Email        string `json:"email"`
}

// CartItem carries the price the storefront showed the customer.
type CartItem struct {
	ProductID int64           `json:"productId" binding:"required,gt=0"`
	Price     decimal.Decimal `json:"price" binding:"decimal_gte0"`
	Quantity  int             `json:"quantity" binding:"gte=1"`
}

type CreateOrderRequest struct {
	Form  CustomerForm `json:"form"`
	Items []CartItem   `json:"items" binding:"dive"`
}

// PlaceOrderResponse never carries the raw order ID.
type PlaceOrderResponse struct {
	OrderID    string `json:"orderId"`
	GuestToken string `json:"guestToken,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TrackRequest struct {
	Phone string `json:"phone"`
}

type OrderResponse struct {
	ID           int64               `json:"id"`
	HashedID     string              `json:"hashedId"`
	CustomerName string              `json:"customerName"`
	LastName     string              `json:"lastName"`
	Phone        string              `json:"phone"`
	Email        string              `json:"email"`
	Address      string              `json:"address"`
	District     string              `json:"district"`
	City         string              `json:"city"`
	Total        decimal.Decimal     `json:"total"`
	Currency     string              `json:"currency"`
	Status       string              `json:"status"`
	Guest        bool                `json:"guest"`
	InvoiceRef   string              `json:"invoiceRef,omitempty"`
	InvoiceQR    string              `json:"invoiceQr,omitempty"`
	Items        []OrderItemResponse `json:"items"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

type OrderItemResponse struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}
